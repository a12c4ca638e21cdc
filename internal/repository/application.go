package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/lib/pq"

	"github.com/applytrack/applytrack/internal/model"
)

// ListApplications returns one page of a user's applications, newest first.
func (r *Repository) ListApplications(ctx context.Context, filter model.ApplicationFilter) ([]*model.JobApplication, error) {
	where, args := applicationWhere(filter)

	query := `
		SELECT id, user_id, company_name, job_title, job_type, location, application_status, priority, job_url, created_at
		FROM job_applications
	` + where
	query += fmt.Sprintf(" ORDER BY created_at DESC, id DESC OFFSET $%d LIMIT $%d", len(args)+1, len(args)+2)
	args = append(args, filter.Skip, filter.Take)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list applications: %w", err)
	}
	defer rows.Close()

	var apps []*model.JobApplication
	for rows.Next() {
		app, err := scanApplication(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan application: %w", err)
		}
		apps = append(apps, app)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating applications: %w", err)
	}

	return apps, nil
}

// CountApplications returns the total number of applications matching the
// filter, ignoring skip and take.
func (r *Repository) CountApplications(ctx context.Context, filter model.ApplicationFilter) (int64, error) {
	where, args := applicationWhere(filter)

	var total int64
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM job_applications `+where, args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("failed to count applications: %w", err)
	}
	return total, nil
}

// applicationWhere builds the WHERE clause shared by list and count.
func applicationWhere(filter model.ApplicationFilter) (string, []any) {
	where := "WHERE user_id = $1"
	args := []any{filter.UserID}

	if len(filter.Statuses) > 0 {
		statuses := make([]string, len(filter.Statuses))
		for i, s := range filter.Statuses {
			statuses[i] = string(s)
		}
		where += fmt.Sprintf(" AND application_status = ANY($%d)", len(args)+1)
		args = append(args, pq.Array(statuses))
	}

	return where, args
}

func scanApplication(row pgx.Row) (*model.JobApplication, error) {
	var app model.JobApplication
	err := row.Scan(
		&app.ID,
		&app.UserID,
		&app.CompanyName,
		&app.JobTitle,
		&app.JobType,
		&app.Location,
		&app.ApplicationStatus,
		&app.Priority,
		&app.JobURL,
		&app.CreatedAt,
	)
	return &app, err
}
