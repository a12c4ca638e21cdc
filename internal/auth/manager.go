package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/applytrack/applytrack/internal/metrics"
	"github.com/applytrack/applytrack/internal/model"
	"github.com/applytrack/applytrack/internal/repository"
)

const (
	// DefaultSessionTTL is the lifetime of a new session.
	DefaultSessionTTL = 7 * 24 * time.Hour
	// DefaultMinAuthDuration is the minimum time spent on a sign-in attempt
	// so that unknown emails and wrong passwords take equally long.
	DefaultMinAuthDuration = 200 * time.Millisecond
)

// UserStore persists accounts.
type UserStore interface {
	CreateUser(ctx context.Context, user *model.User) error
	GetUserByID(ctx context.Context, id string) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
}

// SessionStore persists sessions keyed by token hash.
type SessionStore interface {
	SetSession(ctx context.Context, tokenHash string, s *model.Session) error
	// GetSession returns nil without error when the session does not exist.
	GetSession(ctx context.Context, tokenHash string) (*model.Session, error)
	DeleteSession(ctx context.Context, tokenHash string) error
}

// ManagerConfig holds the dependencies of a Manager.
type ManagerConfig struct {
	Users           UserStore
	Sessions        SessionStore
	Logger          *slog.Logger
	Metrics         metrics.Recorder
	SessionTTL      time.Duration
	CookieName      string
	MinAuthDuration time.Duration
	PasswordParams  *PasswordParams
	Now             func() time.Time
}

// Manager is the Provider backed by a user store and a session store.
type Manager struct {
	users           UserStore
	sessions        SessionStore
	logger          *slog.Logger
	metrics         metrics.Recorder
	sessionTTL      time.Duration
	cookieName      string
	minAuthDuration time.Duration
	passwordParams  PasswordParams
	now             func() time.Time
}

var _ Provider = (*Manager)(nil)

// NewManager creates a Manager, filling defaults for unset fields.
func NewManager(cfg ManagerConfig) *Manager {
	m := &Manager{
		users:           cfg.Users,
		sessions:        cfg.Sessions,
		logger:          cfg.Logger,
		metrics:         cfg.Metrics,
		sessionTTL:      cfg.SessionTTL,
		cookieName:      cfg.CookieName,
		minAuthDuration: cfg.MinAuthDuration,
		passwordParams:  DefaultPasswordParams,
		now:             cfg.Now,
	}
	if m.logger == nil {
		m.logger = slog.Default()
	}
	if m.metrics == nil {
		m.metrics = metrics.NewNoop()
	}
	if m.sessionTTL <= 0 {
		m.sessionTTL = DefaultSessionTTL
	}
	if m.cookieName == "" {
		m.cookieName = DefaultCookieName
	}
	if m.minAuthDuration == 0 {
		m.minAuthDuration = DefaultMinAuthDuration
	}
	if cfg.PasswordParams != nil {
		m.passwordParams = *cfg.PasswordParams
	}
	if m.now == nil {
		m.now = time.Now
	}
	return m
}

// CookieName returns the name of the session cookie.
func (m *Manager) CookieName() string {
	return m.cookieName
}

// SignUp creates the user and signs them in.
func (m *Manager) SignUp(ctx context.Context, in SignUpInput) (*model.SessionPayload, error) {
	hash, err := HashPasswordWith(in.Password, m.passwordParams)
	if err != nil {
		m.metrics.IncAuthEvent(metrics.EventSignUp, metrics.OutcomeError)
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := m.now().UTC()
	user := &model.User{
		ID:           ulid.Make().String(),
		Name:         strings.TrimSpace(in.Name),
		Email:        normalizeEmail(in.Email),
		Image:        in.Image,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := m.users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			m.metrics.IncAuthEvent(metrics.EventSignUp, metrics.OutcomeFailure)
			return nil, ErrUserExists
		}
		m.metrics.IncAuthEvent(metrics.EventSignUp, metrics.OutcomeError)
		return nil, fmt.Errorf("create user: %w", err)
	}

	payload, err := m.openSession(ctx, user, in.Client)
	if err != nil {
		m.metrics.IncAuthEvent(metrics.EventSignUp, metrics.OutcomeError)
		return nil, err
	}

	m.metrics.IncAuthEvent(metrics.EventSignUp, metrics.OutcomeSuccess)
	m.logger.Info("user registered",
		slog.String("user_id", user.ID),
		slog.String("session_id", payload.Session.ID),
	)
	return payload, nil
}

// SignIn verifies credentials. Unknown emails and wrong passwords both
// return ErrInvalidCredentials after at least the minimum auth duration.
func (m *Manager) SignIn(ctx context.Context, in SignInInput) (*model.SessionPayload, error) {
	startTime := time.Now()

	// Ensure consistent timing regardless of outcome
	defer func() {
		elapsed := time.Since(startTime)
		if elapsed < m.minAuthDuration {
			time.Sleep(m.minAuthDuration - elapsed)
		}
	}()

	user, err := m.users.GetUserByEmail(ctx, normalizeEmail(in.Email))
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			m.rejectSignIn("unknown_email")
			return nil, ErrInvalidCredentials
		}
		m.metrics.IncAuthEvent(metrics.EventSignIn, metrics.OutcomeError)
		return nil, fmt.Errorf("get user: %w", err)
	}

	match, err := VerifyPassword(in.Password, user.PasswordHash)
	if err != nil {
		m.logger.Error("stored password hash is unreadable",
			slog.String("user_id", user.ID),
			slog.String("error", err.Error()),
		)
		m.rejectSignIn("bad_hash")
		return nil, ErrInvalidCredentials
	}
	if !match {
		m.rejectSignIn("wrong_password")
		return nil, ErrInvalidCredentials
	}

	payload, err := m.openSession(ctx, user, in.Client)
	if err != nil {
		m.metrics.IncAuthEvent(metrics.EventSignIn, metrics.OutcomeError)
		return nil, err
	}

	m.metrics.IncAuthEvent(metrics.EventSignIn, metrics.OutcomeSuccess)
	m.logger.Info("user signed in",
		slog.String("user_id", user.ID),
		slog.String("session_id", payload.Session.ID),
	)
	return payload, nil
}

// SignOut deletes the session carried by h. A missing or unknown token is a no-op.
func (m *Manager) SignOut(ctx context.Context, h http.Header) error {
	token := TokenFromHeader(h, m.cookieName)
	if token == "" || !ValidateTokenFormat(token) {
		return nil
	}

	if err := m.sessions.DeleteSession(ctx, QuickHash(token)); err != nil {
		m.metrics.IncAuthEvent(metrics.EventSignOut, metrics.OutcomeError)
		return fmt.Errorf("delete session: %w", err)
	}

	m.metrics.IncAuthEvent(metrics.EventSignOut, metrics.OutcomeSuccess)
	return nil
}

// GetSession resolves the session carried by h. Absent, malformed, unknown
// and expired tokens all yield (nil, nil). Store failures are returned.
func (m *Manager) GetSession(ctx context.Context, h http.Header) (*model.SessionPayload, error) {
	token := TokenFromHeader(h, m.cookieName)
	if token == "" || !ValidateTokenFormat(token) {
		m.metrics.IncSessionLookup(metrics.OutcomeFailure)
		return nil, nil
	}
	tokenHash := QuickHash(token)

	session, err := m.sessions.GetSession(ctx, tokenHash)
	if err != nil {
		m.metrics.IncSessionLookup(metrics.OutcomeError)
		return nil, fmt.Errorf("get session: %w", err)
	}
	if session == nil {
		m.metrics.IncSessionLookup(metrics.OutcomeFailure)
		return nil, nil
	}

	if session.IsExpired(m.now()) {
		_ = m.sessions.DeleteSession(ctx, tokenHash)
		m.metrics.IncSessionLookup(metrics.OutcomeFailure)
		return nil, nil
	}

	user, err := m.users.GetUserByID(ctx, session.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			// Orphaned session
			_ = m.sessions.DeleteSession(ctx, tokenHash)
			m.metrics.IncSessionLookup(metrics.OutcomeFailure)
			return nil, nil
		}
		m.metrics.IncSessionLookup(metrics.OutcomeError)
		return nil, fmt.Errorf("get session user: %w", err)
	}

	m.metrics.IncSessionLookup(metrics.OutcomeSuccess)
	return &model.SessionPayload{User: user.Public(), Session: *session}, nil
}

// openSession creates and stores a new session for user. The returned
// payload carries the plaintext token.
func (m *Manager) openSession(ctx context.Context, user *model.User, client ClientInfo) (*model.SessionPayload, error) {
	token, err := GenerateSessionToken()
	if err != nil {
		return nil, err
	}

	now := m.now().UTC()
	session := &model.Session{
		ID:        ulid.Make().String(),
		UserID:    user.ID,
		CreatedAt: now,
		ExpiresAt: now.Add(m.sessionTTL),
		IPAddress: client.IPAddress,
		UserAgent: client.UserAgent,
	}

	if err := m.sessions.SetSession(ctx, token.Hash, session); err != nil {
		return nil, fmt.Errorf("store session: %w", err)
	}

	session.Token = token.Plaintext
	return &model.SessionPayload{User: user.Public(), Session: *session}, nil
}

func (m *Manager) rejectSignIn(reason string) {
	m.metrics.IncAuthEvent(metrics.EventSignIn, metrics.OutcomeFailure)
	m.logger.Warn("sign in failed", slog.String("reason", reason))
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
