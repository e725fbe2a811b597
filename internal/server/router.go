package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/kraft-solutions/kraftchat/internal/api"
	"github.com/kraft-solutions/kraftchat/internal/api/handlers"
	"github.com/kraft-solutions/kraftchat/internal/api/middleware"
)

type RouterConfig struct {
	JWTSecret        string
	AnalyticsRole    string
	ChatHandler      *handlers.ChatHandler
	SessionHandler   *handlers.SessionHandler
	KnowledgeHandler *handlers.KnowledgeHandler
	AnalyticsHandler *handlers.AnalyticsHandler
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	const maxBodyBytes int64 = 1 * 1024 * 1024

	r.Use(middleware.RequestID)
	r.Use(middleware.SentryMiddleware)
	r.Use(middleware.Identity(cfg.JWTSecret))
	r.Use(middleware.AccessLog)
	r.Use(middleware.MaxBodyBytes(maxBodyBytes))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		api.Success(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	// The FAQ path is open to guests; identity, when present, only
	// widens the search scope. Feedback is open for the same reason.
	r.Post("/faq/query", cfg.ChatHandler.FAQQuery)
	r.Post("/feedback", cfg.AnalyticsHandler.Feedback)

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth)

		r.Post("/member/message", cfg.ChatHandler.MemberMessage)

		r.Post("/member/session", cfg.SessionHandler.Create)
		r.Get("/member/sessions", cfg.SessionHandler.List)
		r.Route("/member/session/{sessionID}", func(r chi.Router) {
			r.Get("/messages", cfg.SessionHandler.Messages)
			r.Patch("/", cfg.SessionHandler.Rename)
			r.Delete("/", cfg.SessionHandler.Delete)
			r.Post("/handoff", cfg.SessionHandler.Handoff)
		})
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireRole(cfg.AnalyticsRole))

		r.Route("/knowledge", func(r chi.Router) {
			r.Post("/", cfg.KnowledgeHandler.Create)
			r.Get("/", cfg.KnowledgeHandler.List)
			r.Get("/{entryID}", cfg.KnowledgeHandler.Get)
			r.Put("/{entryID}", cfg.KnowledgeHandler.Update)
			r.Delete("/{entryID}", cfg.KnowledgeHandler.Delete)
		})

		r.Get("/analytics/summary", cfg.AnalyticsHandler.Summary)
	})

	return r
}
