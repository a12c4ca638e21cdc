package auth

import (
	"context"

	"github.com/applytrack/applytrack/internal/model"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

const sessionContextKey contextKey = "session"

// ContextWithSession adds the resolved session to the context.
func ContextWithSession(ctx context.Context, s *model.SessionPayload) context.Context {
	return context.WithValue(ctx, sessionContextKey, s)
}

// SessionFromContext retrieves the session from the context.
// Returns nil if not present.
func SessionFromContext(ctx context.Context) *model.SessionPayload {
	s, ok := ctx.Value(sessionContextKey).(*model.SessionPayload)
	if !ok {
		return nil
	}
	return s
}

// MustSessionFromContext retrieves the session from the context.
// Panics if not present (use only behind Guard).
func MustSessionFromContext(ctx context.Context) *model.SessionPayload {
	s := SessionFromContext(ctx)
	if s == nil {
		panic("session not found in context - ensure the session guard runs first")
	}
	return s
}

// UserIDFromContext returns the authenticated user ID, or "" when absent.
func UserIDFromContext(ctx context.Context) string {
	s := SessionFromContext(ctx)
	if s == nil {
		return ""
	}
	return s.User.ID
}
