package handler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"slices"
	"sync"

	"github.com/applytrack/applytrack/internal/model"
	"github.com/applytrack/applytrack/internal/repository"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// memoryUsers is an in-memory auth.UserStore.
type memoryUsers struct {
	mu    sync.Mutex
	users map[string]*model.User
}

func newMemoryUsers() *memoryUsers {
	return &memoryUsers{users: make(map[string]*model.User)}
}

func (m *memoryUsers) CreateUser(ctx context.Context, user *model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == user.Email {
			return repository.ErrEmailExists
		}
	}
	cp := *user
	m.users[user.ID] = &cp
	return nil
}

func (m *memoryUsers) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.users[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, repository.ErrUserNotFound
}

func (m *memoryUsers) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

// memorySessions is an in-memory auth.SessionStore.
type memorySessions struct {
	mu       sync.Mutex
	sessions map[string]*model.Session
}

func newMemorySessions() *memorySessions {
	return &memorySessions{sessions: make(map[string]*model.Session)}
}

func (m *memorySessions) SetSession(ctx context.Context, tokenHash string, s *model.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *s
	m.sessions[tokenHash] = &cp
	return nil
}

func (m *memorySessions) GetSession(ctx context.Context, tokenHash string) (*model.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.sessions[tokenHash]; ok {
		cp := *s
		return &cp, nil
	}
	return nil, nil
}

func (m *memorySessions) DeleteSession(ctx context.Context, tokenHash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, tokenHash)
	return nil
}

func (m *memorySessions) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// memoryApplications is an in-memory service.ApplicationStore ordered
// newest first, like the Postgres repository.
type memoryApplications struct {
	mu   sync.Mutex
	apps  []*model.JobApplication
	err   error
	calls int
}

func (m *memoryApplications) add(apps ...*model.JobApplication) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.apps = append(m.apps, apps...)
	slices.SortFunc(m.apps, func(a, b *model.JobApplication) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		switch {
		case a.ID > b.ID:
			return -1
		case a.ID < b.ID:
			return 1
		}
		return 0
	})
}

func (m *memoryApplications) matching(filter model.ApplicationFilter) []*model.JobApplication {
	var out []*model.JobApplication
	for _, app := range m.apps {
		if app.UserID != filter.UserID {
			continue
		}
		if len(filter.Statuses) > 0 && !slices.Contains(filter.Statuses, app.ApplicationStatus) {
			continue
		}
		out = append(out, app)
	}
	return out
}

func (m *memoryApplications) ListApplications(ctx context.Context, filter model.ApplicationFilter) ([]*model.JobApplication, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	if filter.Skip < 0 {
		return nil, errNegativeOffset
	}
	rows := m.matching(filter)
	if filter.Skip >= len(rows) {
		return nil, nil
	}
	end := filter.Skip + filter.Take
	if end > len(rows) {
		end = len(rows)
	}
	return rows[filter.Skip:end], nil
}

func (m *memoryApplications) CountApplications(ctx context.Context, filter model.ApplicationFilter) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.err != nil {
		return 0, m.err
	}
	return int64(len(m.matching(filter))), nil
}

func (m *memoryApplications) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

var (
	errStoreDown      = errors.New("connection refused")
	errNegativeOffset = errors.New("OFFSET must not be negative")
)
