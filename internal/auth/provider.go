package auth

import (
	"context"
	"errors"
	"net/http"

	"github.com/applytrack/applytrack/internal/model"
)

// Provider errors. Callers map these into HTTP responses.
var (
	ErrUserExists         = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")
)

// ClientInfo describes the client opening a session.
type ClientInfo struct {
	IPAddress string
	UserAgent string
}

// SignUpInput holds the fields for creating an account.
type SignUpInput struct {
	Name     string
	Email    string
	Password string
	Image    *string
	Client   ClientInfo
}

// SignInInput holds email/password credentials.
type SignInInput struct {
	Email    string
	Password string
	Client   ClientInfo
}

// Provider manages accounts and sessions.
type Provider interface {
	// SignUp creates an account and opens a session for it.
	SignUp(ctx context.Context, in SignUpInput) (*model.SessionPayload, error)
	// SignIn verifies credentials and opens a session.
	SignIn(ctx context.Context, in SignInInput) (*model.SessionPayload, error)
	// SignOut ends the session carried by the headers, if any.
	SignOut(ctx context.Context, h http.Header) error
	// GetSession resolves the session carried by the headers.
	// Returns nil without error when there is no valid session.
	GetSession(ctx context.Context, h http.Header) (*model.SessionPayload, error)
}
