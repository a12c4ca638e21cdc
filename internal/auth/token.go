package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strings"
)

// Token format: ses_{64 hex chars}
const (
	TokenPrefix   = "ses_"
	tokenBytesLen = 32
)

// DefaultCookieName is the cookie carrying the session token.
const DefaultCookieName = "applytrack.session_token"

var (
	// ErrInvalidTokenFormat indicates the token format is invalid.
	ErrInvalidTokenFormat = errors.New("invalid session token format")
	tokenFormatRegex      = regexp.MustCompile(`^ses_[a-f0-9]{64}$`)
)

// GeneratedToken is a new session token and the hash it is stored under.
type GeneratedToken struct {
	Plaintext string // returned to the client once
	Hash      string // storage key
}

// GenerateSessionToken creates a random opaque session token.
func GenerateSessionToken() (*GeneratedToken, error) {
	b := make([]byte, tokenBytesLen)
	if _, err := rand.Read(b); err != nil {
		return nil, fmt.Errorf("generate token: %w", err)
	}
	plaintext := TokenPrefix + hex.EncodeToString(b)
	return &GeneratedToken{Plaintext: plaintext, Hash: QuickHash(plaintext)}, nil
}

// ValidateTokenFormat checks if the token matches the expected format.
func ValidateTokenFormat(token string) bool {
	return tokenFormatRegex.MatchString(token)
}

// QuickHash returns a SHA256 hash of the input for storage keys.
// This is NOT for password storage.
func QuickHash(input string) string {
	hash := sha256.Sum256([]byte(input))
	return hex.EncodeToString(hash[:16]) // first 16 bytes (32 hex chars)
}

// TokenFromHeader extracts the session token from the session cookie or,
// failing that, from "Authorization: Bearer <token>".
func TokenFromHeader(h http.Header, cookieName string) string {
	if cookieName == "" {
		cookieName = DefaultCookieName
	}

	r := http.Request{Header: h}
	if c, err := r.Cookie(cookieName); err == nil && c.Value != "" {
		return c.Value
	}

	authHeader := h.Get("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
	}
	return ""
}
