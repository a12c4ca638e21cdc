package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/applytrack/applytrack/internal/apperr"
	"github.com/applytrack/applytrack/internal/response"
)

// readinessTimeout bounds the dependency pings of /readyz.
const readinessTimeout = 2 * time.Second

// HealthChecker defines an interface for checking service health.
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// HealthHandler manages health check endpoints.
type HealthHandler struct {
	db        HealthChecker
	cache     HealthChecker
	responder *response.Responder
	logger    *slog.Logger
}

// NewHealthHandler creates a new HealthHandler.
// Pass nil for db or cache if they are not configured.
func NewHealthHandler(db, cache HealthChecker, responder *response.Responder, logger *slog.Logger) *HealthHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &HealthHandler{db: db, cache: cache, responder: responder, logger: logger}
}

// HealthResponse is the data of a successful health check envelope.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// Healthz is the liveness probe. It never checks dependencies.
//
// GET /healthz
func (h *HealthHandler) Healthz(w http.ResponseWriter, r *http.Request) {
	h.responder.Success(w, r, "Service is alive", http.StatusOK, HealthResponse{Status: "ok"})
}

// Readyz is the readiness probe. It answers 200 only when Postgres and
// Redis both respond, and 503 SERVICE_UNAVAILABLE otherwise. Ping errors
// are logged, not returned.
//
// GET /readyz
func (h *HealthHandler) Readyz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
	defer cancel()

	checks := map[string]string{
		"postgres": h.check(ctx, "postgres", h.db),
		"redis":    h.check(ctx, "redis", h.cache),
	}

	for _, result := range checks {
		if result == "unavailable" {
			h.responder.Fail(w, r, apperr.Unavailable("Service is not ready", checks))
			return
		}
	}

	h.responder.Success(w, r, "Service is ready", http.StatusOK, HealthResponse{Status: "ok", Checks: checks})
}

func (h *HealthHandler) check(ctx context.Context, name string, checker HealthChecker) string {
	if checker == nil {
		return "not configured"
	}
	if err := checker.Ping(ctx); err != nil {
		h.logger.Error("readiness check failed",
			slog.String("dependency", name),
			slog.String("error", err.Error()),
		)
		return "unavailable"
	}
	return "ok"
}
