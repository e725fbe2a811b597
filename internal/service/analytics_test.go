package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/kraft-solutions/kraftchat/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockAnalyticsRepository is a mock implementation of AnalyticsRepositoryInterface
type MockAnalyticsRepository struct {
	mock.Mock
}

func (m *MockAnalyticsRepository) Summarize(ctx context.Context, since time.Time) (*domain.AnalyticsSummary, error) {
	args := m.Called(ctx, since)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AnalyticsSummary), args.Error(1)
}

func (m *MockAnalyticsRepository) SetFeedback(ctx context.Context, eventID string, feedback domain.Feedback) error {
	args := m.Called(ctx, eventID, feedback)
	return args.Error(0)
}

func TestAnalyticsService_Summary(t *testing.T) {
	ctx := context.Background()

	t.Run("uses the requested window", func(t *testing.T) {
		repo := new(MockAnalyticsRepository)
		want := &domain.AnalyticsSummary{Total: 10, Answered: 8, Unanswered: 2}
		repo.On("Summarize", mock.Anything, mock.MatchedBy(func(since time.Time) bool {
			expected := time.Now().UTC().AddDate(0, 0, -30)
			return since.Sub(expected).Abs() < time.Minute
		})).Return(want, nil)
		svc := NewAnalyticsService(repo)

		summary, err := svc.Summary(ctx, 30)

		require.NoError(t, err)
		assert.Equal(t, want, summary)
		repo.AssertExpectations(t)
	})

	t.Run("out-of-range windows fall back to the default", func(t *testing.T) {
		for _, days := range []int{0, -5, 400} {
			repo := new(MockAnalyticsRepository)
			repo.On("Summarize", mock.Anything, mock.MatchedBy(func(since time.Time) bool {
				expected := time.Now().UTC().AddDate(0, 0, -defaultSummaryDays)
				return since.Sub(expected).Abs() < time.Minute
			})).Return(&domain.AnalyticsSummary{}, nil)
			svc := NewAnalyticsService(repo)

			_, err := svc.Summary(ctx, days)

			require.NoError(t, err, "days=%d", days)
			repo.AssertExpectations(t)
		}
	})

	t.Run("wraps repository failures", func(t *testing.T) {
		repo := new(MockAnalyticsRepository)
		repo.On("Summarize", mock.Anything, mock.Anything).Return(nil, errors.New("query failed"))
		svc := NewAnalyticsService(repo)

		_, err := svc.Summary(ctx, 7)

		var domainErr *domain.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, domain.ErrCodeStorage, domainErr.Code)
	})
}

func TestAnalyticsService_RecordFeedback(t *testing.T) {
	ctx := context.Background()

	t.Run("stores a valid rating", func(t *testing.T) {
		repo := new(MockAnalyticsRepository)
		repo.On("SetFeedback", mock.Anything, "ev-1", domain.FeedbackUp).Return(nil)
		svc := NewAnalyticsService(repo)

		err := svc.RecordFeedback(ctx, "ev-1", "up")

		require.NoError(t, err)
		repo.AssertExpectations(t)
	})

	t.Run("rejects unknown ratings before touching the store", func(t *testing.T) {
		repo := new(MockAnalyticsRepository)
		svc := NewAnalyticsService(repo)

		err := svc.RecordFeedback(ctx, "ev-1", "meh")

		assert.ErrorIs(t, err, domain.ErrInvalidFeedback)
		repo.AssertNotCalled(t, "SetFeedback", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("missing query id is not found", func(t *testing.T) {
		svc := NewAnalyticsService(new(MockAnalyticsRepository))

		err := svc.RecordFeedback(ctx, "", "down")

		assert.ErrorIs(t, err, domain.ErrEventNotFound)
	})

	t.Run("unknown event passes through as not found", func(t *testing.T) {
		repo := new(MockAnalyticsRepository)
		repo.On("SetFeedback", mock.Anything, "ev-gone", domain.FeedbackDown).Return(domain.ErrEventNotFound)
		svc := NewAnalyticsService(repo)

		err := svc.RecordFeedback(ctx, "ev-gone", "down")

		assert.ErrorIs(t, err, domain.ErrEventNotFound)
	})

	t.Run("wraps storage failures", func(t *testing.T) {
		repo := new(MockAnalyticsRepository)
		repo.On("SetFeedback", mock.Anything, "ev-1", domain.FeedbackUp).Return(errors.New("update failed"))
		svc := NewAnalyticsService(repo)

		err := svc.RecordFeedback(ctx, "ev-1", "up")

		var domainErr *domain.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, domain.ErrCodeStorage, domainErr.Code)
	})
}
