// Package testutil holds helpers for integration tests that need a real
// Postgres or Redis. Tests skip when the backing service is not configured.
package testutil

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/lib/pq" // postgres driver for database/sql
	"github.com/oklog/ulid/v2"
	"github.com/redis/go-redis/v9"

	"github.com/applytrack/applytrack/internal/model"
	"github.com/applytrack/applytrack/internal/repository/migrations"
)

// RequireEnv returns an environment variable or skips the test if missing.
func RequireEnv(t testing.TB, key string) string {
	t.Helper()
	value := os.Getenv(key)
	if value == "" {
		t.Skipf("%s not set", key)
	}
	return value
}

const advisoryLockID int64 = 572600

// AcquireDBLock grabs a global advisory lock to serialize DB tests.
func AcquireDBLock(ctx context.Context, pool *pgxpool.Pool) (func() error, error) {
	conn, err := pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}

	if _, err := conn.Exec(ctx, "SELECT pg_advisory_lock($1)", advisoryLockID); err != nil {
		conn.Release()
		return nil, fmt.Errorf("acquire advisory lock: %w", err)
	}

	unlock := func() error {
		defer conn.Release()
		if _, err := conn.Exec(ctx, "SELECT pg_advisory_unlock($1)", advisoryLockID); err != nil {
			return fmt.Errorf("release advisory lock: %w", err)
		}
		return nil
	}

	return unlock, nil
}

// ApplyMigrations runs the embedded schema against databaseURL.
func ApplyMigrations(ctx context.Context, databaseURL string) error {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	return migrations.Apply(ctx, db)
}

// ResetData removes all rows written by tests.
func ResetData(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, "TRUNCATE job_applications, users CASCADE"); err != nil {
		return fmt.Errorf("truncate tables: %w", err)
	}
	return nil
}

// FlushRedis clears the current Redis database.
func FlushRedis(ctx context.Context, client *redis.Client) error {
	return client.FlushDB(ctx).Err()
}

// ============================================================================
// Test Data Factories
// ============================================================================

// NewTestUser creates a test user with sensible defaults.
func NewTestUser(t testing.TB, email string) *model.User {
	t.Helper()
	now := time.Now().UTC().Truncate(time.Microsecond)
	return &model.User{
		ID:           ulid.Make().String(),
		Name:         "Test User",
		Email:        email,
		PasswordHash: "$argon2id$v=19$m=65536,t=3,p=4$c2FsdA$aGFzaA",
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// NewTestApplication creates a test application owned by userID.
func NewTestApplication(t testing.TB, userID string, status model.ApplicationStatus, createdAt time.Time) *model.JobApplication {
	t.Helper()
	return &model.JobApplication{
		ID:                ulid.Make().String(),
		UserID:            userID,
		CompanyName:       "Acme",
		JobTitle:          "Backend Engineer",
		JobType:           "full-time",
		Location:          "Remote",
		ApplicationStatus: status,
		Priority:          model.PriorityMedium,
		CreatedAt:         createdAt.UTC().Truncate(time.Microsecond),
	}
}

// InsertApplication writes an application row directly. The API itself
// has no write path for applications.
func InsertApplication(ctx context.Context, pool *pgxpool.Pool, app *model.JobApplication) error {
	_, err := pool.Exec(ctx, `
		INSERT INTO job_applications (id, user_id, company_name, job_title, job_type, location, application_status, priority, job_url, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`,
		app.ID, app.UserID, app.CompanyName, app.JobTitle, app.JobType, app.Location,
		string(app.ApplicationStatus), string(app.Priority), app.JobURL, app.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert application: %w", err)
	}
	return nil
}

// UniqueEmail generates a unique email address for tests.
func UniqueEmail(prefix string) string {
	return fmt.Sprintf("%s-%d@example.com", prefix, time.Now().UnixNano())
}
