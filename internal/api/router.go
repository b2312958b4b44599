package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mjubilee1/Ai-Agent-Demo/internal/actions"
	"github.com/mjubilee1/Ai-Agent-Demo/internal/chat"
	"github.com/mjubilee1/Ai-Agent-Demo/internal/transcript"
)

// Deps are the services the router dispatches to. Transcripts and Metrics
// are optional.
type Deps struct {
	Chat        *chat.Service
	Actions     *actions.Service
	Transcripts *transcript.Store
	Health      *HealthHandler
	Metrics     http.Handler
}

// NewRouter creates the Chi router with all routes and middleware.
func NewRouter(deps Deps, apiKey string, logger *slog.Logger) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware (runs on ALL routes including /health)
	r.Use(CORS)
	r.Use(RequestID)
	r.Use(Logger(logger))
	r.Use(Recovery(logger))

	chatH := NewChatHandler(deps.Chat, logger)
	actionH := NewActionHandler(deps.Actions)

	// Unauthenticated routes
	r.Get("/", Root)
	if deps.Health != nil {
		r.Get("/health", deps.Health.Health)
	}
	if deps.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", deps.Metrics)
	}

	// Authenticated routes
	r.Group(func(r chi.Router) {
		r.Use(BearerAuth(apiKey))

		r.Post("/chat", chatH.Chat)
		r.Post("/approve", actionH.Approve)
		r.Get("/actions", actionH.List)

		if deps.Transcripts != nil {
			sessionH := NewSessionHandler(deps.Transcripts)
			r.Route("/sessions", func(r chi.Router) {
				r.Get("/", sessionH.ListSessions)
				r.Get("/{id}/turns", sessionH.ListTurns)
			})
		}
	})

	return r
}
