package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/kraft-solutions/kraftchat/internal/api"
	"github.com/kraft-solutions/kraftchat/internal/domain"
)

type AnalyticsServiceInterface interface {
	Summary(ctx context.Context, windowDays int) (*domain.AnalyticsSummary, error)
	RecordFeedback(ctx context.Context, eventID, value string) error
}

type AnalyticsHandler struct {
	svc AnalyticsServiceInterface
}

func NewAnalyticsHandler(svc AnalyticsServiceInterface) *AnalyticsHandler {
	return &AnalyticsHandler{svc: svc}
}

type QueryCountResponse struct {
	Query string `json:"query"`
	Count int64  `json:"count"`
}

type DailyCountResponse struct {
	Day      string `json:"day"`
	Total    int64  `json:"total"`
	Answered int64  `json:"answered"`
}

type AnalyticsSummaryResponse struct {
	Total             int64                 `json:"total"`
	Answered          int64                 `json:"answered"`
	Unanswered        int64                 `json:"unanswered"`
	TopQueries        []QueryCountResponse `json:"top_queries"`
	UnansweredQueries []QueryCountResponse `json:"unanswered_queries"`
	DailyTrend        []DailyCountResponse `json:"daily_trend"`
}

func queryCounts(in []domain.QueryCount) []QueryCountResponse {
	out := make([]QueryCountResponse, 0, len(in))
	for _, q := range in {
		out = append(out, QueryCountResponse{Query: q.Query, Count: q.Count})
	}
	return out
}

// Summary returns the aggregated query statistics for the requested
// window. Days defaults service-side when absent or out of range.
func (h *AnalyticsHandler) Summary(w http.ResponseWriter, r *http.Request) {
	days := 0
	if v := r.URL.Query().Get("days"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			api.Error(w, http.StatusBadRequest, domain.ErrCodeValidation, "days must be an integer")
			return
		}
		days = n
	}

	summary, err := h.svc.Summary(r.Context(), days)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	trend := make([]DailyCountResponse, 0, len(summary.DailyTrend))
	for _, d := range summary.DailyTrend {
		trend = append(trend, DailyCountResponse{
			Day:      d.Day.Format("2006-01-02"),
			Total:    d.Total,
			Answered: d.Answered,
		})
	}

	api.Success(w, http.StatusOK, AnalyticsSummaryResponse{
		Total:             summary.Total,
		Answered:          summary.Answered,
		Unanswered:        summary.Unanswered,
		TopQueries:        queryCounts(summary.TopQueries),
		UnansweredQueries: queryCounts(summary.UnansweredQueries),
		DailyTrend:        trend,
	})
}

type FeedbackRequest struct {
	QueryID  string `json:"query_id"`
	Feedback string `json:"feedback"`
}

// Feedback records an up/down rating on a previously answered query.
// Open to guests: FAQ callers hold a query_id too.
func (h *AnalyticsHandler) Feedback(w http.ResponseWriter, r *http.Request) {
	var req FeedbackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, domain.ErrCodeValidation, "invalid request body")
		return
	}

	if err := h.svc.RecordFeedback(r.Context(), req.QueryID, req.Feedback); err != nil {
		api.HandleError(w, err)
		return
	}
	api.Success(w, http.StatusOK, map[string]bool{"recorded": true})
}
