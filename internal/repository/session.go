package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/kraft-solutions/kraftchat/internal/domain"
)

// SessionRepository persists conversation sessions and their messages.
type SessionRepository struct {
	pool *pgxpool.Pool
}

func NewSessionRepository(pool *pgxpool.Pool) *SessionRepository {
	return &SessionRepository{pool: pool}
}

func (r *SessionRepository) Create(ctx context.Context, s *domain.Session) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO sessions (session_id, user_id, context, title, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		s.SessionID, s.UserID, s.Context, nullableString(s.Title), s.CreatedAt, s.UpdatedAt,
	)
	return err
}

func (r *SessionRepository) GetByID(ctx context.Context, sessionID string) (*domain.Session, error) {
	var s domain.Session
	var title *string
	err := r.pool.QueryRow(ctx,
		`SELECT session_id, user_id, context, title, handoff_at, created_at, updated_at
		 FROM sessions WHERE session_id = $1`,
		sessionID,
	).Scan(&s.SessionID, &s.UserID, &s.Context, &title, &s.HandoffAt, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrSessionNotFound
		}
		return nil, err
	}
	if title != nil {
		s.Title = *title
	}
	return &s, nil
}

// ListByUser returns the user's sessions ordered by last activity, newest
// first, each with a preview of its most recent message.
func (r *SessionRepository) ListByUser(ctx context.Context, userID string, limit, offset int) ([]*domain.SessionSummary, int64, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	var total int64
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM sessions WHERE user_id = $1 AND context = $2`,
		userID, domain.SessionContextMember,
	).Scan(&total)
	if err != nil {
		return nil, 0, err
	}

	rows, err := r.pool.Query(ctx,
		`SELECT s.session_id, s.title, COALESCE(m.content, ''), s.updated_at
		 FROM sessions s
		 LEFT JOIN LATERAL (
		     SELECT content FROM messages
		     WHERE session_id = s.session_id
		     ORDER BY created_at DESC, id DESC
		     LIMIT 1
		 ) m ON true
		 WHERE s.user_id = $1 AND s.context = $2
		 ORDER BY s.updated_at DESC
		 LIMIT $3 OFFSET $4`,
		userID, domain.SessionContextMember, limit, offset,
	)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	summaries := []*domain.SessionSummary{}
	for rows.Next() {
		var sum domain.SessionSummary
		var title *string
		if err := rows.Scan(&sum.SessionID, &title, &sum.LastMessagePreview, &sum.UpdatedAt); err != nil {
			return nil, 0, err
		}
		if title != nil {
			sum.Title = *title
		}
		sum.LastMessagePreview = previewOf(sum.LastMessagePreview)
		summaries = append(summaries, &sum)
	}
	return summaries, total, rows.Err()
}

func (r *SessionRepository) UpdateTitle(ctx context.Context, sessionID, title string, updatedAt time.Time) error {
	cmdTag, err := r.pool.Exec(ctx,
		`UPDATE sessions SET title = $1, updated_at = $2 WHERE session_id = $3`,
		title, updatedAt, sessionID,
	)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return domain.ErrSessionNotFound
	}
	return nil
}

func (r *SessionRepository) MarkHandoff(ctx context.Context, sessionID string, at time.Time) error {
	cmdTag, err := r.pool.Exec(ctx,
		`UPDATE sessions SET handoff_at = $1, updated_at = $1 WHERE session_id = $2`,
		at, sessionID,
	)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return domain.ErrSessionNotFound
	}
	return nil
}

// Delete removes the session's messages first, then the session itself.
func (r *SessionRepository) Delete(ctx context.Context, sessionID string) error {
	if _, err := r.pool.Exec(ctx,
		`DELETE FROM messages WHERE session_id = $1`, sessionID,
	); err != nil {
		return err
	}
	cmdTag, err := r.pool.Exec(ctx,
		`DELETE FROM sessions WHERE session_id = $1`, sessionID,
	)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return domain.ErrSessionNotFound
	}
	return nil
}

// AppendMessage inserts a message and bumps the session's updated_at.
// The two statements are independent; a failed bump is not fatal to the
// already-inserted message.
func (r *SessionRepository) AppendMessage(ctx context.Context, m *domain.Message) error {
	var sourcesJSON []byte
	if len(m.Sources) > 0 {
		sourcesJSON, _ = json.Marshal(m.Sources)
	}

	_, err := r.pool.Exec(ctx,
		`INSERT INTO messages (id, session_id, sender, content, sources, client_msg_id, reply_to_client_msg_id, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		m.ID, m.SessionID, m.Sender, m.Content, sourcesJSON,
		nullableString(m.ClientMsgID), nullableString(m.ReplyToClientMsgID), m.CreatedAt,
	)
	if err != nil {
		return err
	}

	_, err = r.pool.Exec(ctx,
		`UPDATE sessions SET updated_at = $1 WHERE session_id = $2`,
		m.CreatedAt, m.SessionID,
	)
	return err
}

func (r *SessionRepository) ListMessages(ctx context.Context, sessionID string) ([]*domain.Message, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, session_id, sender, content, sources, client_msg_id, reply_to_client_msg_id, created_at
		 FROM messages
		 WHERE session_id = $1
		 ORDER BY created_at ASC, id ASC`,
		sessionID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	messages := []*domain.Message{}
	for rows.Next() {
		var m domain.Message
		var sourcesJSON []byte
		var clientMsgID, replyTo *string
		if err := rows.Scan(&m.ID, &m.SessionID, &m.Sender, &m.Content, &sourcesJSON, &clientMsgID, &replyTo, &m.CreatedAt); err != nil {
			return nil, err
		}
		if len(sourcesJSON) > 0 {
			if err := json.Unmarshal(sourcesJSON, &m.Sources); err != nil {
				return nil, err
			}
		}
		if clientMsgID != nil {
			m.ClientMsgID = *clientMsgID
		}
		if replyTo != nil {
			m.ReplyToClientMsgID = *replyTo
		}
		messages = append(messages, &m)
	}
	return messages, rows.Err()
}

const previewMaxChars = 80

func previewOf(content string) string {
	runes := []rune(content)
	if len(runes) <= previewMaxChars {
		return content
	}
	return string(runes[:previewMaxChars])
}

func nullableString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
