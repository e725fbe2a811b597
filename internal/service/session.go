package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"strings"
	"time"

	"github.com/kraft-solutions/kraftchat/internal/domain"
	"github.com/kraft-solutions/kraftchat/internal/ratelimit"
	"github.com/kraft-solutions/kraftchat/internal/telemetry"
)

// SessionRepositoryInterface defines the persistence operations the
// session service needs.
type SessionRepositoryInterface interface {
	Create(ctx context.Context, s *domain.Session) error
	GetByID(ctx context.Context, sessionID string) (*domain.Session, error)
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]*domain.SessionSummary, int64, error)
	UpdateTitle(ctx context.Context, sessionID, title string, updatedAt time.Time) error
	MarkHandoff(ctx context.Context, sessionID string, at time.Time) error
	Delete(ctx context.Context, sessionID string) error
	ListMessages(ctx context.Context, sessionID string) ([]*domain.Message, error)
}

// QuotaChecker is the rate limiter surface consumed by services.
type QuotaChecker interface {
	Check(ctx context.Context, endpoint, identifier string) ratelimit.Decision
}

// Rate-limited endpoint names.
const (
	EndpointMemberSession = "member_session"
	EndpointMemberMessage = "member_message"
	EndpointFAQQuery      = "faq_query"
)

// SessionService manages member conversation sessions. Ownership is the
// sole authorization mechanism: every operation verifies the stored user
// id and member context against the requester.
type SessionService struct {
	repo    SessionRepositoryInterface
	limiter QuotaChecker
}

func NewSessionService(repo SessionRepositoryInterface, limiter QuotaChecker) *SessionService {
	return &SessionService{repo: repo, limiter: limiter}
}

// NewSessionID returns an opaque session token.
func NewSessionID() string {
	buf := make([]byte, 16)
	_, _ = rand.Read(buf)
	return "sess_" + hex.EncodeToString(buf)
}

func (s *SessionService) CreateSession(ctx context.Context, identity domain.Identity, remoteIP string) (*domain.Session, error) {
	ctx, span := telemetry.StartSpan(ctx, "SessionService.CreateSession", telemetry.SpanAttributes{
		UserID:    identity.UserID,
		Operation: "create_session",
	})
	defer span.End()

	if !identity.Authenticated {
		return nil, domain.ErrUnauthorized
	}

	decision := s.limiter.Check(ctx, EndpointMemberSession, identity.RateLimitKey(remoteIP))
	if !decision.Allowed {
		return nil, &domain.RateLimitError{RetryAfter: decision.RetryAfter}
	}

	now := time.Now().UTC()
	session := &domain.Session{
		SessionID: NewSessionID(),
		UserID:    identity.UserID,
		Context:   domain.SessionContextMember,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.Create(ctx, session); err != nil {
		span.SetError(err)
		return nil, domain.NewStorageError("create session", err)
	}
	return session, nil
}

func (s *SessionService) ListSessions(ctx context.Context, identity domain.Identity, limit, offset int) ([]*domain.SessionSummary, int64, error) {
	ctx, span := telemetry.StartSpan(ctx, "SessionService.ListSessions", telemetry.SpanAttributes{
		UserID:    identity.UserID,
		Operation: "list_sessions",
	})
	defer span.End()

	if !identity.Authenticated {
		return nil, 0, domain.ErrUnauthorized
	}

	sessions, total, err := s.repo.ListByUser(ctx, identity.UserID, limit, offset)
	if err != nil {
		span.SetError(err)
		return nil, 0, domain.NewStorageError("list sessions", err)
	}
	return sessions, total, nil
}

func (s *SessionService) GetMessages(ctx context.Context, identity domain.Identity, sessionID string) ([]*domain.Message, error) {
	ctx, span := telemetry.StartSpan(ctx, "SessionService.GetMessages", telemetry.SpanAttributes{
		UserID:    identity.UserID,
		SessionID: sessionID,
		Operation: "get_messages",
	})
	defer span.End()

	if _, err := s.loadOwned(ctx, identity, sessionID); err != nil {
		return nil, err
	}

	messages, err := s.repo.ListMessages(ctx, sessionID)
	if err != nil {
		span.SetError(err)
		return nil, domain.NewStorageError("list messages", err)
	}
	return messages, nil
}

func (s *SessionService) RenameSession(ctx context.Context, identity domain.Identity, sessionID, title string) (*domain.Session, error) {
	ctx, span := telemetry.StartSpan(ctx, "SessionService.RenameSession", telemetry.SpanAttributes{
		UserID:    identity.UserID,
		SessionID: sessionID,
		Operation: "rename_session",
	})
	defer span.End()

	title = truncateTitle(title)
	if title == "" {
		return nil, domain.ErrEmptyTitle
	}

	session, err := s.loadOwned(ctx, identity, sessionID)
	if err != nil {
		return nil, err
	}

	session.Title = title
	session.UpdatedAt = time.Now().UTC()
	if err := s.repo.UpdateTitle(ctx, sessionID, title, session.UpdatedAt); err != nil {
		span.SetError(err)
		return nil, domain.NewStorageError("rename session", err)
	}
	return session, nil
}

func (s *SessionService) DeleteSession(ctx context.Context, identity domain.Identity, sessionID string) error {
	ctx, span := telemetry.StartSpan(ctx, "SessionService.DeleteSession", telemetry.SpanAttributes{
		UserID:    identity.UserID,
		SessionID: sessionID,
		Operation: "delete_session",
	})
	defer span.End()

	if _, err := s.loadOwned(ctx, identity, sessionID); err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, sessionID); err != nil {
		span.SetError(err)
		return domain.NewStorageError("delete session", err)
	}
	return nil
}

// RequestHandoff marks a session for support follow-up.
func (s *SessionService) RequestHandoff(ctx context.Context, identity domain.Identity, sessionID string) (*domain.Session, error) {
	ctx, span := telemetry.StartSpan(ctx, "SessionService.RequestHandoff", telemetry.SpanAttributes{
		UserID:    identity.UserID,
		SessionID: sessionID,
		Operation: "handoff",
	})
	defer span.End()

	session, err := s.loadOwned(ctx, identity, sessionID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	if err := s.repo.MarkHandoff(ctx, sessionID, now); err != nil {
		span.SetError(err)
		return nil, domain.NewStorageError("mark handoff", err)
	}
	session.HandoffAt = &now
	session.UpdatedAt = now
	return session, nil
}

// loadOwned fetches a session and enforces the ownership invariant.
func (s *SessionService) loadOwned(ctx context.Context, identity domain.Identity, sessionID string) (*domain.Session, error) {
	if !identity.Authenticated {
		return nil, domain.ErrUnauthorized
	}

	session, err := s.repo.GetByID(ctx, sessionID)
	if err != nil {
		if err == domain.ErrSessionNotFound {
			return nil, err
		}
		return nil, domain.NewStorageError("load session", err)
	}
	if session.UserID != identity.UserID || session.Context != domain.SessionContextMember {
		return nil, domain.ErrSessionForbidden
	}
	return session, nil
}

func truncateTitle(title string) string {
	runes := []rune(strings.TrimSpace(title))
	if len(runes) > domain.MaxSessionTitleLen {
		runes = runes[:domain.MaxSessionTitleLen]
	}
	return string(runes)
}
