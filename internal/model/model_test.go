package model

import (
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func TestSession_IsExpired(t *testing.T) {
	now := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)

	testCases := []struct {
		name      string
		expiresAt time.Time
		want      bool
		wantTTL   time.Duration
	}{
		{"future", now.Add(time.Hour), false, time.Hour},
		{"exactly now", now, true, 0},
		{"past", now.Add(-time.Minute), true, 0},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			s := &Session{ExpiresAt: tc.expiresAt}
			if got := s.IsExpired(now); got != tc.want {
				t.Errorf("IsExpired() = %v, want %v", got, tc.want)
			}
			if got := s.TTL(now); got != tc.wantTTL {
				t.Errorf("TTL() = %v, want %v", got, tc.wantTTL)
			}
		})
	}
}

func TestUser_PublicOmitsPasswordHash(t *testing.T) {
	u := &User{ID: "u1", Name: "Ada", Email: "ada@example.com", PasswordHash: "$argon2id$secret"}

	raw, err := json.Marshal(u.Public())
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if strings.Contains(string(raw), "argon2id") {
		t.Errorf("public user leaked the password hash: %s", raw)
	}

	raw, _ = json.Marshal(u)
	if strings.Contains(string(raw), "argon2id") {
		t.Errorf("user leaked the password hash: %s", raw)
	}
}

func TestApplicationStatus_IsValid(t *testing.T) {
	for _, s := range ValidStatuses {
		if !s.IsValid() {
			t.Errorf("expected %q to be valid", s)
		}
	}
	if ApplicationStatus("ghosted").IsValid() {
		t.Error("expected unknown status to be invalid")
	}
	if !PriorityHigh.IsValid() || Priority("urgent").IsValid() {
		t.Error("unexpected priority validity")
	}
}
