package handler

import (
	"net/http"

	"github.com/applytrack/applytrack/internal/auth"
	"github.com/applytrack/applytrack/internal/handler/dto"
	"github.com/applytrack/applytrack/internal/pagination"
	"github.com/applytrack/applytrack/internal/response"
	"github.com/applytrack/applytrack/internal/service"
	"github.com/applytrack/applytrack/internal/validation"
)

// PageConfig bounds list requests. MaxLimit <= 0 disables the upper bound.
type PageConfig struct {
	DefaultLimit int
	MaxLimit     int
}

// ApplicationHandler handles the /api/applications routes.
type ApplicationHandler struct {
	svc       *service.ApplicationService
	responder *response.Responder
	page      PageConfig
}

// NewApplicationHandler creates a new ApplicationHandler.
func NewApplicationHandler(svc *service.ApplicationService, responder *response.Responder, page PageConfig) *ApplicationHandler {
	if page.DefaultLimit <= 0 {
		page.DefaultLimit = pagination.DefaultLimit
	}
	return &ApplicationHandler{svc: svc, responder: responder, page: page}
}

// List handles GET /api/applications. Must be mounted behind auth.Guard.
func (h *ApplicationHandler) List(w http.ResponseWriter, r *http.Request) error {
	session := auth.MustSessionFromContext(r.Context())
	query, _ := validation.QueryFrom[dto.ListApplicationsQuery](r.Context())

	page := pagination.FromQuery(query.Page, query.Limit, h.page.DefaultLimit).
		Bounded(h.page.MaxLimit, h.page.DefaultLimit)

	result, err := h.svc.List(r.Context(), session.User.ID, page, query.Statuses())
	if err != nil {
		return err
	}

	response.Paginated(h.responder, w, r, result.Applications, "Applications retrieved successfully", page.Page, page.Limit, result.Total)
	return nil
}
