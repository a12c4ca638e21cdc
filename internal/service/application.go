package service

import (
	"context"

	"github.com/applytrack/applytrack/internal/apperr"
	"github.com/applytrack/applytrack/internal/metrics"
	"github.com/applytrack/applytrack/internal/model"
	"github.com/applytrack/applytrack/internal/pagination"
)

// ApplicationStore reads job applications.
type ApplicationStore interface {
	ListApplications(ctx context.Context, filter model.ApplicationFilter) ([]*model.JobApplication, error)
	CountApplications(ctx context.Context, filter model.ApplicationFilter) (int64, error)
}

// ApplicationService handles application listing.
type ApplicationService struct {
	store             ApplicationStore
	metrics           metrics.Recorder
	emptyPageNotFound bool
}

// NewApplicationService creates a new ApplicationService. When
// emptyPageNotFound is set, a page with no rows is reported as not found.
func NewApplicationService(store ApplicationStore, recorder metrics.Recorder, emptyPageNotFound bool) *ApplicationService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &ApplicationService{
		store:             store,
		metrics:           recorder,
		emptyPageNotFound: emptyPageNotFound,
	}
}

// ListResult is one page of applications and the total across all pages.
type ListResult struct {
	Applications []*model.JobApplication
	Total        int64
}

// List returns the page of userID's applications selected by page.
func (s *ApplicationService) List(ctx context.Context, userID string, page pagination.Params, statuses []model.ApplicationStatus) (*ListResult, error) {
	filter := model.ApplicationFilter{
		UserID:   userID,
		Statuses: statuses,
		Skip:     page.Skip,
		Take:     page.Take,
	}

	apps, err := s.store.ListApplications(ctx, filter)
	if err != nil {
		return nil, apperr.Database("Failed to retrieve applications", err)
	}

	total, err := s.store.CountApplications(ctx, filter)
	if err != nil {
		return nil, apperr.Database("Failed to retrieve applications", err)
	}

	s.metrics.ObserveApplicationsListed(len(apps))

	if len(apps) == 0 && s.emptyPageNotFound {
		return nil, apperr.NotFound("No applications found for this user")
	}

	return &ListResult{Applications: apps, Total: total}, nil
}
