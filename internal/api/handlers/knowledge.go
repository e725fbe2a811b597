package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/kraft-solutions/kraftchat/internal/api"
	"github.com/kraft-solutions/kraftchat/internal/domain"
	"github.com/kraft-solutions/kraftchat/internal/service"
)

type KnowledgeServiceInterface interface {
	Create(ctx context.Context, input service.CreateEntryInput) (*domain.KnowledgeEntry, error)
	GetByID(ctx context.Context, id string) (*domain.KnowledgeEntry, error)
	List(ctx context.Context) ([]*domain.KnowledgeEntry, error)
	Update(ctx context.Context, id string, input service.CreateEntryInput) (*domain.KnowledgeEntry, error)
	Delete(ctx context.Context, id string) error
}

type KnowledgeHandler struct {
	svc KnowledgeServiceInterface
}

func NewKnowledgeHandler(svc KnowledgeServiceInterface) *KnowledgeHandler {
	return &KnowledgeHandler{svc: svc}
}

type KnowledgeEntryRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
	Scope   string `json:"scope"`
}

type KnowledgeEntryResponse struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Content   string `json:"content"`
	Scope     string `json:"scope"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

type KnowledgeListResponse struct {
	Entries []*KnowledgeEntryResponse `json:"entries"`
}

func entryToResponse(e *domain.KnowledgeEntry) *KnowledgeEntryResponse {
	return &KnowledgeEntryResponse{
		ID:        e.ID,
		Title:     e.Title,
		Content:   e.Content,
		Scope:     e.Scope.String(),
		CreatedAt: e.CreatedAt.Format(time.RFC3339),
		UpdatedAt: e.UpdatedAt.Format(time.RFC3339),
	}
}

func (h *KnowledgeHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req KnowledgeEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, domain.ErrCodeValidation, "invalid request body")
		return
	}

	entry, err := h.svc.Create(r.Context(), service.CreateEntryInput{
		Title:   req.Title,
		Content: req.Content,
		Scope:   req.Scope,
	})
	if err != nil {
		api.HandleError(w, err)
		return
	}
	api.Success(w, http.StatusCreated, entryToResponse(entry))
}

func (h *KnowledgeHandler) Get(w http.ResponseWriter, r *http.Request) {
	entry, err := h.svc.GetByID(r.Context(), chi.URLParam(r, "entryID"))
	if err != nil {
		api.HandleError(w, err)
		return
	}
	api.Success(w, http.StatusOK, entryToResponse(entry))
}

func (h *KnowledgeHandler) List(w http.ResponseWriter, r *http.Request) {
	entries, err := h.svc.List(r.Context())
	if err != nil {
		api.HandleError(w, err)
		return
	}

	out := make([]*KnowledgeEntryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, entryToResponse(e))
	}
	api.Success(w, http.StatusOK, KnowledgeListResponse{Entries: out})
}

func (h *KnowledgeHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req KnowledgeEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, domain.ErrCodeValidation, "invalid request body")
		return
	}

	entry, err := h.svc.Update(r.Context(), chi.URLParam(r, "entryID"), service.CreateEntryInput{
		Title:   req.Title,
		Content: req.Content,
		Scope:   req.Scope,
	})
	if err != nil {
		api.HandleError(w, err)
		return
	}
	api.Success(w, http.StatusOK, entryToResponse(entry))
}

func (h *KnowledgeHandler) Delete(w http.ResponseWriter, r *http.Request) {
	entryID := chi.URLParam(r, "entryID")
	if err := h.svc.Delete(r.Context(), entryID); err != nil {
		api.HandleError(w, err)
		return
	}
	api.Success(w, http.StatusOK, map[string]string{"id": entryID, "status": "deleted"})
}
