package dto

import "github.com/applytrack/applytrack/internal/model"

// ListApplicationsQuery is the query string of GET /api/applications.
// Page and limit stay raw strings; unparsable values fall back to the
// first page.
type ListApplicationsQuery struct {
	Page   string `json:"page,omitempty"`
	Limit  string `json:"limit,omitempty"`
	Status string `json:"status,omitempty" validate:"omitempty,oneof=saved applied interviewing offer rejected"`
}

// Statuses returns the status filter, empty for all statuses.
func (q ListApplicationsQuery) Statuses() []model.ApplicationStatus {
	if q.Status == "" {
		return nil
	}
	return []model.ApplicationStatus{model.ApplicationStatus(q.Status)}
}
