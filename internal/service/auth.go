// Package service translates collaborator results into the application
// error taxonomy.
package service

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/applytrack/applytrack/internal/apperr"
	"github.com/applytrack/applytrack/internal/auth"
	"github.com/applytrack/applytrack/internal/model"
)

// AuthService wraps the session provider.
type AuthService struct {
	provider auth.Provider
	logger   *slog.Logger
}

// NewAuthService creates a new AuthService.
func NewAuthService(provider auth.Provider, logger *slog.Logger) *AuthService {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthService{provider: provider, logger: logger}
}

// Register creates an account and its first session.
func (s *AuthService) Register(ctx context.Context, in auth.SignUpInput) (*model.SessionPayload, error) {
	payload, err := s.provider.SignUp(ctx, in)
	if err != nil {
		if errors.Is(err, auth.ErrUserExists) {
			return nil, apperr.Conflict("User with this email already exists").WithCause(err)
		}
		return nil, apperr.Server("Failed to sign up", err)
	}
	return payload, nil
}

// Login opens a session for valid credentials.
func (s *AuthService) Login(ctx context.Context, in auth.SignInInput) (*model.SessionPayload, error) {
	payload, err := s.provider.SignIn(ctx, in)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			return nil, apperr.Authentication("Invalid email or password", apperr.CodeInvalidCredentials)
		}
		return nil, apperr.Server("Failed to sign in", err)
	}
	return payload, nil
}

// Logout ends the session carried by h, if any.
func (s *AuthService) Logout(ctx context.Context, h http.Header) error {
	if err := s.provider.SignOut(ctx, h); err != nil {
		return apperr.Server("Failed to sign out", err)
	}
	return nil
}

// CurrentSession returns the session carried by h. Lookup failures are
// logged and reported as a missing session.
func (s *AuthService) CurrentSession(ctx context.Context, h http.Header) (*model.SessionPayload, error) {
	payload, err := s.provider.GetSession(ctx, h)
	if err != nil {
		s.logger.Error("session lookup failed", slog.String("error", err.Error()))
		payload = nil
	}
	if payload == nil {
		return nil, apperr.Authentication("No active session found", apperr.CodeUnauthenticated)
	}
	return payload, nil
}
