package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"
)

// Feedback is the optional tri-state rating on an analytics event.
type Feedback string

const (
	FeedbackNone Feedback = ""
	FeedbackUp   Feedback = "up"
	FeedbackDown Feedback = "down"
)

// ParseFeedback validates a caller-supplied rating.
func ParseFeedback(s string) (Feedback, error) {
	switch Feedback(s) {
	case FeedbackUp:
		return FeedbackUp, nil
	case FeedbackDown:
		return FeedbackDown, nil
	default:
		return FeedbackNone, ErrInvalidFeedback
	}
}

// AnalyticsEvent records one query pipeline invocation.
type AnalyticsEvent struct {
	ID        string
	Query     string
	QueryHash string
	Answered  bool
	Feedback  Feedback
	LatencyMS int64
	CreatedAt time.Time
}

// HashQuery normalizes a query (lower-cased, trimmed) and hashes it so
// textual variants group together in analytics.
func HashQuery(query string) string {
	normalized := strings.ToLower(strings.TrimSpace(query))
	sum := sha256.Sum256([]byte(normalized))
	return hex.EncodeToString(sum[:])
}

// QueryCount is a grouped query with its occurrence count.
type QueryCount struct {
	Query string
	Count int64
}

// DailyCount buckets events by calendar day.
type DailyCount struct {
	Day      time.Time
	Total    int64
	Answered int64
}

// AnalyticsSummary is the time-windowed aggregation over logged queries.
type AnalyticsSummary struct {
	Total             int64
	Answered          int64
	Unanswered        int64
	TopQueries        []QueryCount
	UnansweredQueries []QueryCount
	DailyTrend        []DailyCount
}
