package api

import (
	"context"
	"net/http"
	"time"

	"github.com/mjubilee1/Ai-Agent-Demo/internal/actions"
	"github.com/mjubilee1/Ai-Agent-Demo/internal/models"
)

// HealthChecker is a dependency that can report its own reachability.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

type HealthHandler struct {
	db       HealthChecker
	embedder HealthChecker
	vectors  HealthChecker
	registry actions.Registry
}

// NewHealthHandler builds the health handler. A nil vectors checker means the
// vector store runs in-process.
func NewHealthHandler(db, embedder, vectors HealthChecker, registry actions.Registry) *HealthHandler {
	return &HealthHandler{db: db, embedder: embedder, vectors: vectors, registry: registry}
}

func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	resp := models.HealthResponse{
		Status:           "ok",
		RegistrySessions: h.registry.Sessions(),
	}

	resp.Embedding = check(ctx, h.embedder, &resp.Status)
	resp.VectorStore = check(ctx, h.vectors, &resp.Status)
	resp.DB = check(ctx, h.db, &resp.Status)

	status := http.StatusOK
	if resp.Status != "ok" {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, resp)
}

func check(ctx context.Context, c HealthChecker, overall *string) models.ServiceCheck {
	if c == nil {
		return models.ServiceCheck{Status: "ok", Message: "in-process"}
	}
	if err := c.HealthCheck(ctx); err != nil {
		*overall = "degraded"
		return models.ServiceCheck{Status: "error", Message: err.Error()}
	}
	return models.ServiceCheck{Status: "ok"}
}

// Root handles GET /.
func Root(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("🤖 AI Agent backend running!"))
}
