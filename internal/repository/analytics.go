package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/kraft-solutions/kraftchat/internal/domain"
)

// AnalyticsRepository stores query events and aggregates them into
// time-windowed summaries.
type AnalyticsRepository struct {
	pool *pgxpool.Pool
}

func NewAnalyticsRepository(pool *pgxpool.Pool) *AnalyticsRepository {
	return &AnalyticsRepository{pool: pool}
}

func (r *AnalyticsRepository) Create(ctx context.Context, e *domain.AnalyticsEvent) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO analytics_events (id, query, query_hash, answered, feedback, latency_ms, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		e.ID, e.Query, e.QueryHash, e.Answered, nullableString(string(e.Feedback)), e.LatencyMS, e.CreatedAt,
	)
	return err
}

// SetFeedback records the caller's rating on an existing event.
func (r *AnalyticsRepository) SetFeedback(ctx context.Context, eventID string, feedback domain.Feedback) error {
	cmdTag, err := r.pool.Exec(ctx,
		`UPDATE analytics_events SET feedback = $1 WHERE id = $2`,
		string(feedback), eventID,
	)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return domain.ErrEventNotFound
	}
	return nil
}

const topQueryCount = 10

// Summarize aggregates events created on or after the cutoff. Queries are
// grouped by their normalized hash so textual variants merge; the display
// string is the lexicographically smallest variant for determinism.
func (r *AnalyticsRepository) Summarize(ctx context.Context, since time.Time) (*domain.AnalyticsSummary, error) {
	summary := &domain.AnalyticsSummary{
		TopQueries:        []domain.QueryCount{},
		UnansweredQueries: []domain.QueryCount{},
		DailyTrend:        []domain.DailyCount{},
	}

	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*), COUNT(*) FILTER (WHERE answered)
		 FROM analytics_events WHERE created_at >= $1`,
		since,
	).Scan(&summary.Total, &summary.Answered)
	if err != nil {
		return nil, err
	}
	summary.Unanswered = summary.Total - summary.Answered

	summary.TopQueries, err = r.groupedQueries(ctx, since, false)
	if err != nil {
		return nil, err
	}
	summary.UnansweredQueries, err = r.groupedQueries(ctx, since, true)
	if err != nil {
		return nil, err
	}

	rows, err := r.pool.Query(ctx,
		`SELECT date_trunc('day', created_at)::date AS day,
		        COUNT(*),
		        COUNT(*) FILTER (WHERE answered)
		 FROM analytics_events
		 WHERE created_at >= $1
		 GROUP BY day
		 ORDER BY day ASC`,
		since,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var d domain.DailyCount
		if err := rows.Scan(&d.Day, &d.Total, &d.Answered); err != nil {
			return nil, err
		}
		summary.DailyTrend = append(summary.DailyTrend, d)
	}
	return summary, rows.Err()
}

func (r *AnalyticsRepository) groupedQueries(ctx context.Context, since time.Time, unansweredOnly bool) ([]domain.QueryCount, error) {
	query := `SELECT MIN(query), COUNT(*) AS cnt
	          FROM analytics_events
	          WHERE created_at >= $1`
	if unansweredOnly {
		query += ` AND NOT answered`
	}
	query += ` GROUP BY query_hash
	           ORDER BY cnt DESC, MIN(query) ASC
	           LIMIT $2`

	rows, err := r.pool.Query(ctx, query, since, topQueryCount)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := []domain.QueryCount{}
	for rows.Next() {
		var qc domain.QueryCount
		if err := rows.Scan(&qc.Query, &qc.Count); err != nil {
			return nil, err
		}
		counts = append(counts, qc)
	}
	return counts, rows.Err()
}

// DeleteOlderThan prunes raw events past the retention window. Returns the
// number of rows removed.
func (r *AnalyticsRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	cmdTag, err := r.pool.Exec(ctx,
		`DELETE FROM analytics_events WHERE created_at < $1`,
		cutoff,
	)
	if err != nil {
		return 0, err
	}
	return cmdTag.RowsAffected(), nil
}
