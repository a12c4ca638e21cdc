package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/applytrack/applytrack/internal/model"
)

// sessionPrefix is the Redis key prefix for sessions, keyed by token hash.
const sessionPrefix = "session:"

// storedSession is the Redis representation of a session.
type storedSession struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
	IPAddress string    `json:"ip_address,omitempty"`
	UserAgent string    `json:"user_agent,omitempty"`
}

func sessionKey(tokenHash string) string {
	return sessionPrefix + tokenHash
}

// SetSession stores a session under its token hash until it expires.
func (c *Cache) SetSession(ctx context.Context, tokenHash string, s *model.Session) error {
	ttl := s.TTL(c.now())
	if ttl <= 0 {
		return fmt.Errorf("session %s already expired", s.ID)
	}

	data, err := json.Marshal(storedSession{
		ID:        s.ID,
		UserID:    s.UserID,
		ExpiresAt: s.ExpiresAt,
		CreatedAt: s.CreatedAt,
		IPAddress: s.IPAddress,
		UserAgent: s.UserAgent,
	})
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}

	if err := c.client.Set(ctx, sessionKey(tokenHash), data, ttl).Err(); err != nil {
		return fmt.Errorf("store session: %w", err)
	}
	return nil
}

// GetSession looks up a session by token hash.
// Returns nil without error if the session does not exist.
func (c *Cache) GetSession(ctx context.Context, tokenHash string) (*model.Session, error) {
	data, err := c.client.Get(ctx, sessionKey(tokenHash)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("load session: %w", err)
	}

	s, err := decodeSession(data)
	if err != nil {
		// Corrupted entry - drop it and treat as absent
		_ = c.client.Del(ctx, sessionKey(tokenHash)).Err()
		return nil, nil
	}
	return s, nil
}

// DeleteSession removes a session. Deleting a missing session is not an error.
func (c *Cache) DeleteSession(ctx context.Context, tokenHash string) error {
	if err := c.client.Del(ctx, sessionKey(tokenHash)).Err(); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

func decodeSession(data []byte) (*model.Session, error) {
	var stored storedSession
	if err := json.Unmarshal(data, &stored); err != nil {
		return nil, err
	}
	if stored.ID == "" || stored.UserID == "" {
		return nil, errors.New("incomplete session")
	}
	return &model.Session{
		ID:        stored.ID,
		UserID:    stored.UserID,
		ExpiresAt: stored.ExpiresAt,
		CreatedAt: stored.CreatedAt,
		IPAddress: stored.IPAddress,
		UserAgent: stored.UserAgent,
	}, nil
}
