//go:build integration

package repository

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/kraft-solutions/kraftchat/internal/domain"
	"github.com/kraft-solutions/kraftchat/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEvent(query string, answered bool, createdAt time.Time) *domain.AnalyticsEvent {
	return &domain.AnalyticsEvent{
		ID:        uuid.NewString(),
		Query:     query,
		QueryHash: domain.HashQuery(query),
		Answered:  answered,
		LatencyMS: 12,
		CreatedAt: createdAt,
	}
}

func TestAnalyticsRepository_Summarize(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)
	pool := testutil.NewTestPool(ctx, t, pc, migrationsDir)
	defer pool.Close()

	repo := NewAnalyticsRepository(pool)

	now := time.Now().UTC().Truncate(time.Microsecond)
	since := now.Add(-7 * 24 * time.Hour)

	// Three textual variants of the same question plus one distinct one.
	require.NoError(t, repo.Create(ctx, newEvent("Wie hoch ist der Beitrag?", true, now.Add(-time.Hour))))
	require.NoError(t, repo.Create(ctx, newEvent("wie hoch ist der beitrag?", true, now.Add(-2*time.Hour))))
	require.NoError(t, repo.Create(ctx, newEvent("  Wie hoch ist der Beitrag?  ", false, now.Add(-3*time.Hour))))
	require.NoError(t, repo.Create(ctx, newEvent("Wann ist die Versammlung?", false, now.Add(-25*time.Hour))))
	// Outside the window, must not count.
	require.NoError(t, repo.Create(ctx, newEvent("alte Frage", true, since.Add(-time.Hour))))

	summary, err := repo.Summarize(ctx, since)
	require.NoError(t, err)

	t.Run("totals split into answered and unanswered", func(t *testing.T) {
		assert.EqualValues(t, 4, summary.Total)
		assert.EqualValues(t, 2, summary.Answered)
		assert.EqualValues(t, 2, summary.Unanswered)
		assert.Equal(t, summary.Total, summary.Answered+summary.Unanswered)
	})

	t.Run("variants group by normalized hash", func(t *testing.T) {
		require.Len(t, summary.TopQueries, 2)
		assert.EqualValues(t, 3, summary.TopQueries[0].Count)
		// The display string is one of the stored variants of the question.
		assert.Equal(t, domain.HashQuery("Wie hoch ist der Beitrag?"), domain.HashQuery(summary.TopQueries[0].Query))
		assert.EqualValues(t, 1, summary.TopQueries[1].Count)
	})

	t.Run("unanswered list only counts unanswered events", func(t *testing.T) {
		require.Len(t, summary.UnansweredQueries, 2)
		for _, qc := range summary.UnansweredQueries {
			assert.EqualValues(t, 1, qc.Count)
		}
	})

	t.Run("daily trend is ascending by day", func(t *testing.T) {
		require.Len(t, summary.DailyTrend, 2)
		assert.True(t, summary.DailyTrend[0].Day.Before(summary.DailyTrend[1].Day))
		assert.EqualValues(t, 1, summary.DailyTrend[0].Total)
		assert.EqualValues(t, 3, summary.DailyTrend[1].Total)
		assert.EqualValues(t, 2, summary.DailyTrend[1].Answered)
	})
}

func TestAnalyticsRepository_SummarizeEmptyWindow(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)
	pool := testutil.NewTestPool(ctx, t, pc, migrationsDir)
	defer pool.Close()

	repo := NewAnalyticsRepository(pool)

	summary, err := repo.Summarize(ctx, time.Now().UTC().Add(-24*time.Hour))
	require.NoError(t, err)
	assert.Zero(t, summary.Total)
	assert.Empty(t, summary.TopQueries)
	assert.Empty(t, summary.UnansweredQueries)
	assert.Empty(t, summary.DailyTrend)
}

func TestAnalyticsRepository_TopQueriesLimit(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)
	pool := testutil.NewTestPool(ctx, t, pc, migrationsDir)
	defer pool.Close()

	repo := NewAnalyticsRepository(pool)

	now := time.Now().UTC().Truncate(time.Microsecond)
	for i := 0; i < 15; i++ {
		require.NoError(t, repo.Create(ctx, newEvent(fmt.Sprintf("Frage %02d", i), true, now)))
	}

	summary, err := repo.Summarize(ctx, now.Add(-time.Hour))
	require.NoError(t, err)
	assert.Len(t, summary.TopQueries, 10)
}

func TestAnalyticsRepository_SetFeedback(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)
	pool := testutil.NewTestPool(ctx, t, pc, migrationsDir)
	defer pool.Close()

	repo := NewAnalyticsRepository(pool)

	event := newEvent("Wie hoch ist der Beitrag?", true, time.Now().UTC().Truncate(time.Microsecond))
	require.NoError(t, repo.Create(ctx, event))

	require.NoError(t, repo.SetFeedback(ctx, event.ID, domain.FeedbackUp))

	var stored string
	require.NoError(t, pool.QueryRow(ctx,
		`SELECT feedback FROM analytics_events WHERE id = $1`, event.ID,
	).Scan(&stored))
	assert.Equal(t, "up", stored)

	require.NoError(t, repo.SetFeedback(ctx, event.ID, domain.FeedbackDown))
	require.NoError(t, pool.QueryRow(ctx,
		`SELECT feedback FROM analytics_events WHERE id = $1`, event.ID,
	).Scan(&stored))
	assert.Equal(t, "down", stored)

	assert.ErrorIs(t, repo.SetFeedback(ctx, uuid.NewString(), domain.FeedbackUp), domain.ErrEventNotFound)
}

func TestAnalyticsRepository_DeleteOlderThan(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)
	pool := testutil.NewTestPool(ctx, t, pc, migrationsDir)
	defer pool.Close()

	repo := NewAnalyticsRepository(pool)

	now := time.Now().UTC().Truncate(time.Microsecond)
	cutoff := now.Add(-90 * 24 * time.Hour)
	require.NoError(t, repo.Create(ctx, newEvent("alt", true, cutoff.Add(-time.Hour))))
	require.NoError(t, repo.Create(ctx, newEvent("noch älter", false, cutoff.Add(-48*time.Hour))))
	require.NoError(t, repo.Create(ctx, newEvent("frisch", true, now)))

	deleted, err := repo.DeleteOlderThan(ctx, cutoff)
	require.NoError(t, err)
	assert.EqualValues(t, 2, deleted)

	summary, err := repo.Summarize(ctx, cutoff.Add(-100*24*time.Hour))
	require.NoError(t, err)
	assert.EqualValues(t, 1, summary.Total)

	deleted, err = repo.DeleteOlderThan(ctx, cutoff)
	require.NoError(t, err)
	assert.Zero(t, deleted)
}
