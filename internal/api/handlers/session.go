package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/kraft-solutions/kraftchat/internal/api"
	"github.com/kraft-solutions/kraftchat/internal/api/middleware"
	"github.com/kraft-solutions/kraftchat/internal/domain"
)

type SessionServiceInterface interface {
	CreateSession(ctx context.Context, identity domain.Identity, remoteIP string) (*domain.Session, error)
	ListSessions(ctx context.Context, identity domain.Identity, limit, offset int) ([]*domain.SessionSummary, int64, error)
	GetMessages(ctx context.Context, identity domain.Identity, sessionID string) ([]*domain.Message, error)
	RenameSession(ctx context.Context, identity domain.Identity, sessionID, title string) (*domain.Session, error)
	DeleteSession(ctx context.Context, identity domain.Identity, sessionID string) error
	RequestHandoff(ctx context.Context, identity domain.Identity, sessionID string) (*domain.Session, error)
}

type SessionHandler struct {
	svc SessionServiceInterface
}

func NewSessionHandler(svc SessionServiceInterface) *SessionHandler {
	return &SessionHandler{svc: svc}
}

const (
	defaultSessionPageSize = 20
	maxSessionPageSize     = 100
)

type SessionResponse struct {
	SessionID string `json:"session_id"`
	Context   string `json:"context"`
	Title     string `json:"title,omitempty"`
	HandoffAt string `json:"handoff_at,omitempty"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

type SessionSummaryResponse struct {
	SessionID          string `json:"session_id"`
	Title              string `json:"title,omitempty"`
	LastMessagePreview string `json:"last_message_preview,omitempty"`
	UpdatedAt          string `json:"updated_at"`
}

type SessionListResponse struct {
	Sessions []*SessionSummaryResponse `json:"sessions"`
	Total    int64                     `json:"total"`
	Limit    int                       `json:"limit"`
	Offset   int                       `json:"offset"`
}

type MessageListResponse struct {
	Messages []*MessageResponse `json:"messages"`
}

type RenameSessionRequest struct {
	Title string `json:"title"`
}

func sessionToResponse(s *domain.Session) *SessionResponse {
	resp := &SessionResponse{
		SessionID: s.SessionID,
		Context:   s.Context,
		Title:     s.Title,
		CreatedAt: s.CreatedAt.Format(time.RFC3339),
		UpdatedAt: s.UpdatedAt.Format(time.RFC3339),
	}
	if s.HandoffAt != nil {
		resp.HandoffAt = s.HandoffAt.Format(time.RFC3339)
	}
	return resp
}

// Create starts a new member conversation session.
func (h *SessionHandler) Create(w http.ResponseWriter, r *http.Request) {
	identity := middleware.GetIdentity(r.Context())
	session, err := h.svc.CreateSession(r.Context(), identity, middleware.ClientIP(r))
	if err != nil {
		api.HandleError(w, err)
		return
	}
	api.Success(w, http.StatusCreated, sessionToResponse(session))
}

// List returns the caller's sessions, newest activity first.
func (h *SessionHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := defaultSessionPageSize
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}
	if limit > maxSessionPageSize {
		limit = maxSessionPageSize
	}

	offset := 0
	if v := r.URL.Query().Get("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			offset = n
		}
	}

	identity := middleware.GetIdentity(r.Context())
	sessions, total, err := h.svc.ListSessions(r.Context(), identity, limit, offset)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	out := make([]*SessionSummaryResponse, 0, len(sessions))
	for _, s := range sessions {
		out = append(out, &SessionSummaryResponse{
			SessionID:          s.SessionID,
			Title:              s.Title,
			LastMessagePreview: s.LastMessagePreview,
			UpdatedAt:          s.UpdatedAt.Format(time.RFC3339),
		})
	}

	api.Success(w, http.StatusOK, SessionListResponse{
		Sessions: out,
		Total:    total,
		Limit:    limit,
		Offset:   offset,
	})
}

// Messages returns the full transcript of one owned session.
func (h *SessionHandler) Messages(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	identity := middleware.GetIdentity(r.Context())

	messages, err := h.svc.GetMessages(r.Context(), identity, sessionID)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	out := make([]*MessageResponse, 0, len(messages))
	for _, m := range messages {
		out = append(out, messageToResponse(m))
	}
	api.Success(w, http.StatusOK, MessageListResponse{Messages: out})
}

// Rename sets the session title.
func (h *SessionHandler) Rename(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	var req RenameSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, domain.ErrCodeValidation, "invalid request body")
		return
	}

	identity := middleware.GetIdentity(r.Context())
	session, err := h.svc.RenameSession(r.Context(), identity, sessionID, req.Title)
	if err != nil {
		api.HandleError(w, err)
		return
	}
	api.Success(w, http.StatusOK, sessionToResponse(session))
}

// Delete removes a session and its transcript.
func (h *SessionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	identity := middleware.GetIdentity(r.Context())

	if err := h.svc.DeleteSession(r.Context(), identity, sessionID); err != nil {
		api.HandleError(w, err)
		return
	}
	api.Success(w, http.StatusOK, map[string]bool{"deleted": true})
}

// Handoff flags a session for human follow-up.
func (h *SessionHandler) Handoff(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	identity := middleware.GetIdentity(r.Context())

	session, err := h.svc.RequestHandoff(r.Context(), identity, sessionID)
	if err != nil {
		api.HandleError(w, err)
		return
	}
	api.Success(w, http.StatusOK, sessionToResponse(session))
}
