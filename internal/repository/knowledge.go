package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/kraft-solutions/kraftchat/internal/domain"
)

// KnowledgeRepository persists and searches scoped knowledge entries.
type KnowledgeRepository struct {
	pool *pgxpool.Pool
}

func NewKnowledgeRepository(pool *pgxpool.Pool) *KnowledgeRepository {
	return &KnowledgeRepository{pool: pool}
}

func (r *KnowledgeRepository) Create(ctx context.Context, e *domain.KnowledgeEntry) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO knowledge_entries (id, title, content, scope, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		e.ID, e.Title, e.Content, e.Scope.String(), e.CreatedAt, e.UpdatedAt,
	)
	return err
}

func (r *KnowledgeRepository) GetByID(ctx context.Context, id string) (*domain.KnowledgeEntry, error) {
	var e domain.KnowledgeEntry
	var scope string
	err := r.pool.QueryRow(ctx,
		`SELECT id, title, content, scope, created_at, updated_at
		 FROM knowledge_entries WHERE id = $1`,
		id,
	).Scan(&e.ID, &e.Title, &e.Content, &scope, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrKnowledgeNotFound
		}
		return nil, err
	}
	e.Scope, err = domain.ParseScope(scope)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *KnowledgeRepository) List(ctx context.Context) ([]*domain.KnowledgeEntry, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, title, content, scope, created_at, updated_at
		 FROM knowledge_entries ORDER BY updated_at DESC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanEntryRows(rows)
}

func (r *KnowledgeRepository) Update(ctx context.Context, e *domain.KnowledgeEntry) error {
	e.UpdatedAt = time.Now().UTC()
	cmdTag, err := r.pool.Exec(ctx,
		`UPDATE knowledge_entries SET title = $1, content = $2, scope = $3, updated_at = $4
		 WHERE id = $5`,
		e.Title, e.Content, e.Scope.String(), e.UpdatedAt, e.ID,
	)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return domain.ErrKnowledgeNotFound
	}
	return nil
}

func (r *KnowledgeRepository) Delete(ctx context.Context, id string) error {
	cmdTag, err := r.pool.Exec(ctx,
		`DELETE FROM knowledge_entries WHERE id = $1`,
		id,
	)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return domain.ErrKnowledgeNotFound
	}
	return nil
}

// Search ranks entries against the query with Postgres fulltext scoring,
// restricted to the caller's allowed scopes. Ties break on id so the same
// corpus and query always rank identically.
func (r *KnowledgeRepository) Search(ctx context.Context, query string, allowedScopes []domain.Scope, limit int) ([]*domain.SearchResult, error) {
	if limit <= 0 {
		limit = 5
	}

	rows, err := r.pool.Query(ctx,
		`SELECT id, title, content, scope,
		        ts_rank(to_tsvector('simple', title || ' ' || content),
		                plainto_tsquery('simple', $1)) AS score
		 FROM knowledge_entries
		 WHERE scope = ANY($2)
		   AND to_tsvector('simple', title || ' ' || content) @@ plainto_tsquery('simple', $1)
		 ORDER BY score DESC, id ASC
		 LIMIT $3`,
		query, domain.ScopeStrings(allowedScopes), limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	results := []*domain.SearchResult{}
	for rows.Next() {
		var res domain.SearchResult
		var scope string
		if err := rows.Scan(&res.ID, &res.Title, &res.Content, &scope, &res.Score); err != nil {
			return nil, err
		}
		if res.Scope, err = domain.ParseScope(scope); err != nil {
			return nil, err
		}
		results = append(results, &res)
	}
	return results, rows.Err()
}

func scanEntryRows(rows pgx.Rows) ([]*domain.KnowledgeEntry, error) {
	var results []*domain.KnowledgeEntry
	for rows.Next() {
		var e domain.KnowledgeEntry
		var scope string
		if err := rows.Scan(&e.ID, &e.Title, &e.Content, &scope, &e.CreatedAt, &e.UpdatedAt); err != nil {
			return nil, err
		}
		parsed, err := domain.ParseScope(scope)
		if err != nil {
			return nil, err
		}
		e.Scope = parsed
		results = append(results, &e)
	}
	return results, rows.Err()
}
