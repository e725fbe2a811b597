package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/kraft-solutions/kraftchat/internal/domain"
	"github.com/kraft-solutions/kraftchat/internal/telemetry"
)

// KnowledgeSearcher is the retrieval surface consumed by the pipeline.
type KnowledgeSearcher interface {
	Search(ctx context.Context, query string, allowedScopes []domain.Scope, limit int) ([]*domain.SearchResult, error)
}

// MessageStore persists conversation state for the member path.
type MessageStore interface {
	GetByID(ctx context.Context, sessionID string) (*domain.Session, error)
	AppendMessage(ctx context.Context, m *domain.Message) error
}

// AnalyticsRecorder logs query outcomes.
type AnalyticsRecorder interface {
	Create(ctx context.Context, e *domain.AnalyticsEvent) error
}

const (
	searchLimit = 5
	maxSources  = 3

	// FallbackAnswer is returned when the corpus has no match.
	FallbackAnswer = "We could not find an answer to your question. Please contact our support team for further help."
)

// ChatService runs the query pipeline: rate-limit check, scope
// resolution, knowledge search, response synthesis, message persistence
// (member path), analytics logging.
type ChatService struct {
	knowledge KnowledgeSearcher
	sessions  MessageStore
	analytics AnalyticsRecorder
	limiter   QuotaChecker
}

func NewChatService(knowledge KnowledgeSearcher, sessions MessageStore, analytics AnalyticsRecorder, limiter QuotaChecker) *ChatService {
	return &ChatService{
		knowledge: knowledge,
		sessions:  sessions,
		analytics: analytics,
		limiter:   limiter,
	}
}

// Answer is the synthesized response to a query. EventID identifies the
// logged analytics event so the caller can rate the answer later.
type Answer struct {
	Answer     string
	Sources    []domain.MessageSource
	Confidence float32
	EventID    string
}

// FAQInput is an anonymous query against the public corpus.
type FAQInput struct {
	Query    string
	RemoteIP string
}

// AnswerFAQ handles the anonymous FAQ path. Guests only ever see public
// entries regardless of what the corpus holds.
func (s *ChatService) AnswerFAQ(ctx context.Context, identity domain.Identity, input FAQInput) (*Answer, error) {
	ctx, span := telemetry.StartSpan(ctx, "ChatService.AnswerFAQ", telemetry.SpanAttributes{
		UserID:    identity.UserID,
		Operation: "faq_query",
	})
	defer span.End()

	query := strings.TrimSpace(input.Query)
	if query == "" {
		return nil, domain.ErrMissingQuery
	}

	start := time.Now()

	decision := s.limiter.Check(ctx, EndpointFAQQuery, identity.RateLimitKey(input.RemoteIP))
	if !decision.Allowed {
		s.recordEvent(ctx, query, false, start)
		return nil, &domain.RateLimitError{RetryAfter: decision.RetryAfter}
	}

	scopes := ResolveScopes(identity)
	results, err := s.knowledge.Search(ctx, query, scopes, searchLimit)
	if err != nil {
		span.SetError(err)
		s.recordEvent(ctx, query, false, start)
		return nil, domain.NewStorageError("knowledge search", err)
	}

	answer := synthesize(results, false)
	answer.EventID = s.recordEvent(ctx, query, len(results) > 0, start)
	return answer, nil
}

// MemberMessageInput is one turn of an authenticated conversation.
type MemberMessageInput struct {
	SessionID   string
	Message     string
	ClientMsgID string
	RemoteIP    string
}

// MessageExchange pairs the persisted user message with the bot's reply.
// QueryID identifies the logged analytics event for later feedback.
type MessageExchange struct {
	UserMessage *domain.Message
	BotResponse *domain.Message
	QueryID     string
}

// HandleMemberMessage handles one member conversation turn. Persistence
// failures after the answer is computed are logged but never suppress the
// answer: the caller still gets the response.
func (s *ChatService) HandleMemberMessage(ctx context.Context, identity domain.Identity, input MemberMessageInput) (*MessageExchange, error) {
	ctx, span := telemetry.StartSpan(ctx, "ChatService.HandleMemberMessage", telemetry.SpanAttributes{
		UserID:    identity.UserID,
		SessionID: input.SessionID,
		Operation: "member_message",
	})
	defer span.End()

	if !identity.Authenticated {
		return nil, domain.ErrUnauthorized
	}

	message := strings.TrimSpace(input.Message)
	if input.SessionID == "" || message == "" {
		return nil, domain.ErrMissingMessage
	}

	start := time.Now()

	decision := s.limiter.Check(ctx, EndpointMemberMessage, identity.RateLimitKey(input.RemoteIP))
	if !decision.Allowed {
		s.recordEvent(ctx, message, false, start)
		return nil, &domain.RateLimitError{RetryAfter: decision.RetryAfter}
	}

	session, err := s.sessions.GetByID(ctx, input.SessionID)
	if err != nil {
		s.recordEvent(ctx, message, false, start)
		if err == domain.ErrSessionNotFound {
			return nil, err
		}
		span.SetError(err)
		return nil, domain.NewStorageError("load session", err)
	}
	if session.UserID != identity.UserID || session.Context != domain.SessionContextMember {
		s.recordEvent(ctx, message, false, start)
		return nil, domain.ErrSessionForbidden
	}

	scopes := ResolveScopes(identity)
	results, err := s.knowledge.Search(ctx, message, scopes, searchLimit)
	if err != nil {
		span.SetError(err)
		s.recordEvent(ctx, message, false, start)
		return nil, domain.NewStorageError("knowledge search", err)
	}

	answer := synthesize(results, true)

	userMsg := &domain.Message{
		ID:          uuid.NewString(),
		SessionID:   input.SessionID,
		Sender:      domain.SenderUser,
		Content:     message,
		ClientMsgID: input.ClientMsgID,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.sessions.AppendMessage(ctx, userMsg); err != nil {
		log.Printf("chat: failed to persist user message (session %s): %v", input.SessionID, err)
		telemetry.CaptureError(ctx, err)
	}

	botCreated := time.Now().UTC()
	if !botCreated.After(userMsg.CreatedAt) {
		// Keep transcript ordering stable when the clock does not advance.
		botCreated = userMsg.CreatedAt.Add(time.Millisecond)
	}
	botMsg := &domain.Message{
		ID:                 uuid.NewString(),
		SessionID:          input.SessionID,
		Sender:             domain.SenderBot,
		Content:            answer.Answer,
		Sources:            answer.Sources,
		ClientMsgID:        newBotMsgID(),
		ReplyToClientMsgID: input.ClientMsgID,
		CreatedAt:          botCreated,
	}
	if err := s.sessions.AppendMessage(ctx, botMsg); err != nil {
		log.Printf("chat: failed to persist bot message (session %s): %v", input.SessionID, err)
		telemetry.CaptureError(ctx, err)
	}

	eventID := s.recordEvent(ctx, message, len(results) > 0, start)

	return &MessageExchange{UserMessage: userMsg, BotResponse: botMsg, QueryID: eventID}, nil
}

// synthesize builds the response from ranked results: the top result's
// content becomes the answer, the top few results become the sources.
// Member responses additionally expose each source's scope.
func synthesize(results []*domain.SearchResult, includeScope bool) *Answer {
	if len(results) == 0 {
		return &Answer{
			Answer:     FallbackAnswer,
			Sources:    []domain.MessageSource{},
			Confidence: 0,
		}
	}

	n := len(results)
	if n > maxSources {
		n = maxSources
	}
	sources := make([]domain.MessageSource, 0, n)
	for _, res := range results[:n] {
		src := domain.MessageSource{Title: res.Title, Score: res.Score}
		if includeScope {
			src.Scope = res.Scope.String()
		}
		sources = append(sources, src)
	}

	return &Answer{
		Answer:     results[0].Content,
		Sources:    sources,
		Confidence: results[0].Score,
	}
}

// recordEvent emits exactly one analytics event per pipeline invocation,
// rate-limited requests included, and returns the event id. A failed
// write only logs; analytics never breaks request serving.
func (s *ChatService) recordEvent(ctx context.Context, query string, answered bool, start time.Time) string {
	event := &domain.AnalyticsEvent{
		ID:        uuid.NewString(),
		Query:     query,
		QueryHash: domain.HashQuery(query),
		Answered:  answered,
		LatencyMS: time.Since(start).Milliseconds(),
		CreatedAt: time.Now().UTC(),
	}
	if err := s.analytics.Create(ctx, event); err != nil {
		log.Printf("chat: failed to record analytics event: %v", err)
	}
	return event.ID
}

func newBotMsgID() string {
	buf := make([]byte, 8)
	_, _ = rand.Read(buf)
	return "bot_" + hex.EncodeToString(buf)
}
