package handler

import (
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/applytrack/applytrack/internal/apperr"
	"github.com/applytrack/applytrack/internal/auth"
	"github.com/applytrack/applytrack/internal/handler/dto"
	"github.com/applytrack/applytrack/internal/response"
	"github.com/applytrack/applytrack/internal/service"
	"github.com/applytrack/applytrack/internal/validation"
)

// errMissingBody means a route was mounted without its body stage.
var errMissingBody = errors.New("validated body missing from context")

// CookieConfig controls the session cookie.
type CookieConfig struct {
	Name   string
	Secure bool
}

// AuthHandler handles the /api/auth routes.
type AuthHandler struct {
	svc       *service.AuthService
	responder *response.Responder
	cookie    CookieConfig
	logger    *slog.Logger
	now       func() time.Time
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(svc *service.AuthService, responder *response.Responder, cookie CookieConfig, logger *slog.Logger) *AuthHandler {
	if cookie.Name == "" {
		cookie.Name = auth.DefaultCookieName
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthHandler{
		svc:       svc,
		responder: responder,
		cookie:    cookie,
		logger:    logger,
		now:       time.Now,
	}
}

// Register handles POST /api/auth/register.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) error {
	req, ok := validation.BodyFrom[dto.RegisterRequest](r.Context())
	if !ok {
		return apperr.Server("Failed to sign up", errMissingBody)
	}

	payload, err := h.svc.Register(r.Context(), auth.SignUpInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Image:    req.Image,
		Client:   clientInfo(r),
	})
	if err != nil {
		return err
	}

	h.setSessionCookie(w, payload.Session.Token, payload.Session.ExpiresAt)
	h.responder.Created(w, r, "User registered successfully", dto.ToAuthResponse(payload))
	return nil
}

// Login handles POST /api/auth/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) error {
	req, ok := validation.BodyFrom[dto.LoginRequest](r.Context())
	if !ok {
		return apperr.Server("Failed to sign in", errMissingBody)
	}

	payload, err := h.svc.Login(r.Context(), auth.SignInInput{
		Email:    req.Email,
		Password: req.Password,
		Client:   clientInfo(r),
	})
	if err != nil {
		return err
	}

	h.setSessionCookie(w, payload.Session.Token, payload.Session.ExpiresAt)
	h.responder.Success(w, r, "Login successful", http.StatusOK, dto.ToAuthResponse(payload))
	return nil
}

// Logout handles POST /api/auth/logout. It succeeds without a session.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) error {
	if err := h.svc.Logout(r.Context(), r.Header); err != nil {
		return err
	}

	h.clearSessionCookie(w)
	h.responder.Success(w, r, "Logout successful", http.StatusOK, nil)
	return nil
}

// Me handles GET /api/auth/me.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) error {
	payload, err := h.svc.CurrentSession(r.Context(), r.Header)
	if err != nil {
		return err
	}

	h.responder.Success(w, r, "Current user session retrieved", http.StatusOK, payload)
	return nil
}

func (h *AuthHandler) setSessionCookie(w http.ResponseWriter, token string, expiresAt time.Time) {
	if token == "" {
		h.logger.Warn("session opened without a token")
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     h.cookie.Name,
		Value:    token,
		Path:     "/",
		Expires:  expiresAt,
		MaxAge:   int(expiresAt.Sub(h.now()).Seconds()),
		HttpOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *AuthHandler) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     h.cookie.Name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// clientInfo records where a session was opened from. RemoteAddr is
// already rewritten by chi's RealIP middleware.
func clientInfo(r *http.Request) auth.ClientInfo {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		ip = r.RemoteAddr
	}
	return auth.ClientInfo{IPAddress: ip, UserAgent: r.UserAgent()}
}
