package auth

import (
	"log/slog"
	"net/http"

	"github.com/applytrack/applytrack/internal/apperr"
	"github.com/applytrack/applytrack/internal/pipeline"
)

// ErrAuthenticationRequired is returned by Guard when no valid session exists.
var ErrAuthenticationRequired = apperr.Authentication("Authentication required. Please log in.", apperr.CodeUnauthenticated)

// Guard returns a pipeline stage that requires a valid session. The session
// is resolved from the request headers on every call and attached to the
// request context.
func Guard(provider Provider, logger *slog.Logger) pipeline.Stage {
	if logger == nil {
		logger = slog.Default()
	}
	return func(r *http.Request) (*http.Request, error) {
		payload, err := provider.GetSession(r.Context(), r.Header)
		if err != nil {
			logger.Error("session lookup failed",
				slog.String("path", r.URL.Path),
				slog.String("error", err.Error()),
			)
			return nil, ErrAuthenticationRequired.WithCause(err)
		}
		if payload == nil {
			return nil, ErrAuthenticationRequired
		}

		return r.WithContext(ContextWithSession(r.Context(), payload)), nil
	}
}
