package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/applytrack/applytrack/internal/auth"
	"github.com/applytrack/applytrack/internal/handler/dto"
	"github.com/applytrack/applytrack/internal/metrics"
	"github.com/applytrack/applytrack/internal/middleware"
	"github.com/applytrack/applytrack/internal/pipeline"
	"github.com/applytrack/applytrack/internal/response"
	"github.com/applytrack/applytrack/internal/validation"
)

// RouterConfig collects everything the router mounts.
type RouterConfig struct {
	Logger    *slog.Logger
	Responder *response.Responder
	Validator *validation.Validator
	Provider  auth.Provider

	Health       *HealthHandler
	Auth         *AuthHandler
	Applications *ApplicationHandler

	Metrics metrics.Recorder
	// MetricsHandler serves /metrics when set.
	MetricsHandler http.Handler

	RateLimit   middleware.RateLimitConfig
	Security    middleware.SecurityConfig
	CORS        middleware.CORSConfig
	MaxBodySize int64
}

// NewRouter builds the chi router with global middleware and all routes.
func NewRouter(cfg RouterConfig) *chi.Mux {
	if cfg.Validator == nil {
		cfg.Validator = validation.New()
	}
	base := pipeline.New(cfg.Responder)
	guarded := base.With(auth.Guard(cfg.Provider, cfg.Logger))

	r := chi.NewRouter()
	fallback := New(cfg.Responder, r)

	// Global middleware
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(cfg.Logger))
	r.Use(middleware.Metrics(cfg.Metrics))
	r.Use(middleware.Recoverer(cfg.Logger, cfg.Responder))
	r.Use(middleware.Security(cfg.Security))
	r.Use(middleware.CORS(cfg.CORS))
	r.Use(middleware.MaxBodySize(cfg.MaxBodySize, cfg.Responder))

	// Probes and metrics
	r.Get("/healthz", cfg.Health.Healthz)
	r.Get("/readyz", cfg.Health.Readyz)
	if cfg.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", cfg.MetricsHandler)
	}

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Use(middleware.RateLimitAuth(cfg.RateLimit))

			r.Post("/register", base.With(validation.Body[dto.RegisterRequest](cfg.Validator)).Handle(cfg.Auth.Register))
			r.Post("/login", base.With(validation.Body[dto.LoginRequest](cfg.Validator)).Handle(cfg.Auth.Login))
			r.Post("/logout", base.Handle(cfg.Auth.Logout))
			r.Get("/me", base.Handle(cfg.Auth.Me))
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.RateLimitAPI(cfg.RateLimit))

			r.Get("/applications", guarded.With(validation.Query[dto.ListApplicationsQuery](cfg.Validator)).Handle(cfg.Applications.List))
		})
	})

	r.NotFound(fallback.NotFound)
	r.MethodNotAllowed(fallback.MethodNotAllowed)

	return r
}
