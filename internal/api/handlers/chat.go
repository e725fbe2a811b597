package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/kraft-solutions/kraftchat/internal/api"
	"github.com/kraft-solutions/kraftchat/internal/api/middleware"
	"github.com/kraft-solutions/kraftchat/internal/domain"
	"github.com/kraft-solutions/kraftchat/internal/service"
)

type ChatServiceInterface interface {
	AnswerFAQ(ctx context.Context, identity domain.Identity, input service.FAQInput) (*service.Answer, error)
	HandleMemberMessage(ctx context.Context, identity domain.Identity, input service.MemberMessageInput) (*service.MessageExchange, error)
}

type ChatHandler struct {
	svc ChatServiceInterface
}

func NewChatHandler(svc ChatServiceInterface) *ChatHandler {
	return &ChatHandler{svc: svc}
}

type FAQQueryRequest struct {
	Query string `json:"query"`
}

type AnswerResponse struct {
	Answer     string                 `json:"answer"`
	Sources    []domain.MessageSource `json:"sources"`
	Confidence float32                `json:"confidence"`
	QueryID    string                 `json:"query_id,omitempty"`
}

type MemberMessageRequest struct {
	SessionID   string `json:"session_id"`
	Message     string `json:"message"`
	ClientMsgID string `json:"client_msg_id,omitempty"`
}

type MessageResponse struct {
	ID                 string                 `json:"id"`
	SessionID          string                 `json:"session_id"`
	Sender             string                 `json:"sender"`
	Content            string                 `json:"content"`
	Sources            []domain.MessageSource `json:"sources,omitempty"`
	ClientMsgID        string                 `json:"client_msg_id,omitempty"`
	ReplyToClientMsgID string                 `json:"reply_to_client_msg_id,omitempty"`
	CreatedAt          string                 `json:"created_at"`
}

type MessageExchangeResponse struct {
	UserMessage *MessageResponse `json:"user_message"`
	BotResponse *MessageResponse `json:"bot_response"`
	QueryID     string           `json:"query_id,omitempty"`
}

func messageToResponse(m *domain.Message) *MessageResponse {
	return &MessageResponse{
		ID:                 m.ID,
		SessionID:          m.SessionID,
		Sender:             m.Sender,
		Content:            m.Content,
		Sources:            m.Sources,
		ClientMsgID:        m.ClientMsgID,
		ReplyToClientMsgID: m.ReplyToClientMsgID,
		CreatedAt:          m.CreatedAt.Format(time.RFC3339),
	}
}

// FAQQuery answers an anonymous question against the public corpus.
// No authentication is required; authenticated callers still go through
// the same path but with their wider scope set.
func (h *ChatHandler) FAQQuery(w http.ResponseWriter, r *http.Request) {
	var req FAQQueryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, domain.ErrCodeValidation, "invalid request body")
		return
	}

	identity := middleware.GetIdentity(r.Context())
	answer, err := h.svc.AnswerFAQ(r.Context(), identity, service.FAQInput{
		Query:    req.Query,
		RemoteIP: middleware.ClientIP(r),
	})
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, AnswerResponse{
		Answer:     answer.Answer,
		Sources:    answer.Sources,
		Confidence: answer.Confidence,
		QueryID:    answer.EventID,
	})
}

// MemberMessage handles one turn of an authenticated conversation and
// returns both the persisted user message and the bot reply.
func (h *ChatHandler) MemberMessage(w http.ResponseWriter, r *http.Request) {
	var req MemberMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, domain.ErrCodeValidation, "invalid request body")
		return
	}

	if req.SessionID == "" {
		api.Error(w, http.StatusBadRequest, domain.ErrCodeValidation, "session_id is required")
		return
	}

	identity := middleware.GetIdentity(r.Context())
	exchange, err := h.svc.HandleMemberMessage(r.Context(), identity, service.MemberMessageInput{
		SessionID:   req.SessionID,
		Message:     req.Message,
		ClientMsgID: req.ClientMsgID,
		RemoteIP:    middleware.ClientIP(r),
	})
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, MessageExchangeResponse{
		UserMessage: messageToResponse(exchange.UserMessage),
		BotResponse: messageToResponse(exchange.BotResponse),
		QueryID:     exchange.QueryID,
	})
}
