// Package dto provides Data Transfer Objects for API requests and responses.
package dto

import (
	"strings"

	"github.com/applytrack/applytrack/internal/model"
)

// RegisterRequest is the body of POST /api/auth/register.
type RegisterRequest struct {
	Name     string  `json:"name" validate:"required,min=2,max=64"`
	Email    string  `json:"email" validate:"required,email"`
	Password string  `json:"password" validate:"required,min=8,max=128"`
	Image    *string `json:"image,omitempty" validate:"omitempty,url"`
}

// Normalize trims input. A present but blank image stays set so that it
// fails URL validation; only an absent or null image is optional.
func (r *RegisterRequest) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	if r.Image != nil {
		image := strings.TrimSpace(*r.Image)
		r.Image = &image
	}
}

// LoginRequest is the body of POST /api/auth/login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

// Normalize trims and lowercases the email.
func (r *LoginRequest) Normalize() {
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
}

// AuthResponse is returned by register and login. Token is the session
// token for clients that send it as a bearer token instead of the cookie.
type AuthResponse struct {
	User    model.PublicUser `json:"user"`
	Session model.Session    `json:"session"`
	Token   string           `json:"token"`
}

// ToAuthResponse lifts the one-time token out of the session.
func ToAuthResponse(p *model.SessionPayload) AuthResponse {
	session := p.Session
	token := session.Token
	session.Token = ""
	return AuthResponse{User: p.User, Session: session, Token: token}
}
