package model

import "time"

// Session is a server-side login session. The token itself is never stored;
// it is addressed by its hash.
type Session struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	ExpiresAt time.Time `json:"expiresAt"`
	CreatedAt time.Time `json:"createdAt"`
	IPAddress string    `json:"ipAddress,omitempty"`
	UserAgent string    `json:"userAgent,omitempty"`
	// Token is set only on the response that created the session.
	Token string `json:"token,omitempty"`
}

// IsExpired reports whether the session is past its expiry at now.
func (s *Session) IsExpired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// TTL returns the remaining lifetime at now, zero if expired.
func (s *Session) TTL(now time.Time) time.Duration {
	if s.IsExpired(now) {
		return 0
	}
	return s.ExpiresAt.Sub(now)
}

// SessionPayload is a resolved session together with its user.
type SessionPayload struct {
	User    PublicUser `json:"user"`
	Session Session    `json:"session"`
}
