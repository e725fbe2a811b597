package service

import (
	"context"
	"time"

	"github.com/kraft-solutions/kraftchat/internal/domain"
	"github.com/kraft-solutions/kraftchat/internal/telemetry"
)

// AnalyticsRepositoryInterface defines the aggregation surface.
type AnalyticsRepositoryInterface interface {
	Summarize(ctx context.Context, since time.Time) (*domain.AnalyticsSummary, error)
	SetFeedback(ctx context.Context, eventID string, feedback domain.Feedback) error
}

const (
	defaultSummaryDays = 7
	maxSummaryDays     = 365
)

// AnalyticsService produces time-windowed summaries over logged queries.
type AnalyticsService struct {
	repo AnalyticsRepositoryInterface
}

func NewAnalyticsService(repo AnalyticsRepositoryInterface) *AnalyticsService {
	return &AnalyticsService{repo: repo}
}

// Summary aggregates events within the last windowDays calendar days.
// Out-of-range windows fall back to the default.
func (s *AnalyticsService) Summary(ctx context.Context, windowDays int) (*domain.AnalyticsSummary, error) {
	ctx, span := telemetry.StartSpan(ctx, "AnalyticsService.Summary", telemetry.SpanAttributes{
		Operation: "analytics_summary",
	})
	defer span.End()

	if windowDays <= 0 || windowDays > maxSummaryDays {
		windowDays = defaultSummaryDays
	}
	since := time.Now().UTC().AddDate(0, 0, -windowDays)

	summary, err := s.repo.Summarize(ctx, since)
	if err != nil {
		span.SetError(err)
		return nil, domain.NewStorageError("analytics summary", err)
	}
	return summary, nil
}

// RecordFeedback rates a previously answered query. The event id comes
// back to the caller as query_id on the answer payload.
func (s *AnalyticsService) RecordFeedback(ctx context.Context, eventID, value string) error {
	ctx, span := telemetry.StartSpan(ctx, "AnalyticsService.RecordFeedback", telemetry.SpanAttributes{
		Operation: "record_feedback",
	})
	defer span.End()

	if eventID == "" {
		return domain.ErrEventNotFound
	}
	feedback, err := domain.ParseFeedback(value)
	if err != nil {
		return err
	}

	if err := s.repo.SetFeedback(ctx, eventID, feedback); err != nil {
		if err == domain.ErrEventNotFound {
			return err
		}
		span.SetError(err)
		return domain.NewStorageError("record feedback", err)
	}
	return nil
}
