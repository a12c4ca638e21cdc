package middleware

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/applytrack/applytrack/internal/apperr"
	"github.com/applytrack/applytrack/internal/response"
)

// Recoverer recovers from panics in later handlers and answers with a
// 500 error envelope. http.ErrAbortHandler is re-panicked.
func Recoverer(logger *slog.Logger, responder *response.Responder) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rvr := recover()
				if rvr == nil {
					return
				}
				if rvr == http.ErrAbortHandler {
					panic(rvr)
				}

				logger.Error("panic recovered",
					slog.String("request_id", RequestIDFromContext(r.Context())),
					slog.Any("panic", rvr),
				)
				responder.Fail(w, r, apperr.Server("", fmt.Errorf("panic: %v", rvr)))
			}()

			next.ServeHTTP(w, r)
		})
	}
}
