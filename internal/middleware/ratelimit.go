package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/applytrack/applytrack/internal/apperr"
	"github.com/applytrack/applytrack/internal/auth"
	"github.com/applytrack/applytrack/internal/cache"
	"github.com/applytrack/applytrack/internal/metrics"
	"github.com/applytrack/applytrack/internal/response"
)

// Rate limit scopes, used as log and metric labels.
const (
	ScopeAuth = "auth"
	ScopeAPI  = "api"
)

// Limiter checks token buckets. *cache.Cache implements it.
type Limiter interface {
	CheckIPRateLimit(ctx context.Context, ip string, ratePerSecond, burst int) (*cache.RateLimitResult, error)
	CheckSessionRateLimit(ctx context.Context, tokenHash string, ratePerMinute, burst int) (*cache.RateLimitResult, error)
}

// RateLimitConfig holds configuration for the rate limiting middleware.
type RateLimitConfig struct {
	Logger    *slog.Logger
	Limiter   Limiter
	Responder *response.Responder
	Metrics   metrics.Recorder
	// CookieName is the session cookie read by RateLimitAPI.
	CookieName string

	// Auth endpoints are limited per client IP.
	AuthEnabled bool
	AuthRPS     int
	AuthBurst   int

	// API endpoints are limited per session token.
	APIEnabled bool
	APIRPM     int
	APIBurst   int
}

func (cfg RateLimitConfig) withDefaults() RateLimitConfig {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Metrics == nil {
		cfg.Metrics = metrics.NewNoop()
	}
	if cfg.Responder == nil {
		cfg.Responder = response.New(cfg.Logger, false)
	}
	return cfg
}

// RateLimitAuth limits the auth endpoints per client IP. Apply it behind
// chi's RealIP middleware when the API sits behind a proxy.
func RateLimitAuth(cfg RateLimitConfig) func(http.Handler) http.Handler {
	cfg = cfg.withDefaults()
	return func(next http.Handler) http.Handler {
		if !cfg.AuthEnabled || cfg.Limiter == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := clientIP(r)
			result, err := cfg.Limiter.CheckIPRateLimit(r.Context(), ip, cfg.AuthRPS, cfg.AuthBurst)
			if err != nil {
				cfg.Logger.Error("ip rate limit check failed",
					slog.String("error", err.Error()),
					slog.String("request_id", RequestIDFromContext(r.Context())),
				)
			}
			if result == nil || result.Allowed {
				next.ServeHTTP(w, r)
				return
			}

			cfg.reject(w, r, ScopeAuth, result)
		})
	}
}

// RateLimitAPI limits API endpoints per session token. Requests without a
// well-formed token pass through; the session guard rejects them.
func RateLimitAPI(cfg RateLimitConfig) func(http.Handler) http.Handler {
	cfg = cfg.withDefaults()
	return func(next http.Handler) http.Handler {
		if !cfg.APIEnabled || cfg.Limiter == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := auth.TokenFromHeader(r.Header, cfg.CookieName)
			if !auth.ValidateTokenFormat(token) {
				next.ServeHTTP(w, r)
				return
			}

			result, err := cfg.Limiter.CheckSessionRateLimit(r.Context(), auth.QuickHash(token), cfg.APIRPM, cfg.APIBurst)
			if err != nil {
				cfg.Logger.Error("session rate limit check failed",
					slog.String("error", err.Error()),
					slog.String("request_id", RequestIDFromContext(r.Context())),
				)
			}
			if result == nil {
				next.ServeHTTP(w, r)
				return
			}

			setRateLimitHeaders(w, cfg.APIBurst, result.Remaining, result.ResetAt)
			if result.Allowed {
				next.ServeHTTP(w, r)
				return
			}

			cfg.reject(w, r, ScopeAPI, result)
		})
	}
}

// reject answers with a 429 error envelope and a Retry-After header.
func (cfg RateLimitConfig) reject(w http.ResponseWriter, r *http.Request, scope string, result *cache.RateLimitResult) {
	retryAfter := int(result.RetryAfter / time.Second)
	if retryAfter < 1 {
		retryAfter = 1
	}

	cfg.Logger.Warn("rate limit exceeded",
		slog.String("scope", scope),
		slog.String("endpoint", r.Method+" "+r.URL.Path),
		slog.Int("retry_after_seconds", retryAfter),
		slog.String("request_id", RequestIDFromContext(r.Context())),
	)
	cfg.Metrics.IncRateLimited(scope)

	w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
	cfg.Responder.Fail(w, r, apperr.RateLimited(
		fmt.Sprintf("Too many requests. Retry after %d seconds.", retryAfter),
	))
}

// setRateLimitHeaders sets the standard rate limit response headers.
func setRateLimitHeaders(w http.ResponseWriter, limit int, remaining int64, resetAt time.Time) {
	if limit <= 0 {
		return
	}
	w.Header().Set("X-RateLimit-Limit", strconv.Itoa(limit))
	w.Header().Set("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))
	w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(resetAt.Unix(), 10))
}

// clientIP returns the host part of RemoteAddr.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
