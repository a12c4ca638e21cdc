// Package response writes the uniform JSON envelopes returned by every route.
// A response is always exactly one of: success, paginated or error.
package response

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/applytrack/applytrack/internal/apperr"
	"github.com/applytrack/applytrack/internal/pagination"
)

// SuccessBody is the envelope for single-payload responses.
type SuccessBody struct {
	Message   string `json:"message"`
	Data      any    `json:"data"`
	Timestamp string `json:"timestamp"`
	Path      string `json:"path,omitempty"`
}

// ErrorBody is the envelope for every failed request.
type ErrorBody struct {
	Message   string            `json:"message"`
	Code      apperr.Code       `json:"code"`
	Status    int               `json:"status"`
	Timestamp string            `json:"timestamp"`
	Path      string            `json:"path,omitempty"`
	Details   map[string]string `json:"details,omitempty"`
}

// Meta describes the page returned in a paginated envelope.
type Meta struct {
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
	Pages int64 `json:"pages"`
}

// PaginatedBody is the envelope for list responses.
type PaginatedBody[T any] struct {
	Success    bool   `json:"success"`
	Message    string `json:"message"`
	Data       []T    `json:"data"`
	Pagination Meta   `json:"pagination"`
	Timestamp  string `json:"timestamp"`
	Path       string `json:"path,omitempty"`
}

// Responder builds and writes envelopes.
type Responder struct {
	logger     *slog.Logger
	production bool
	now        func() time.Time
}

// Option configures a Responder.
type Option func(*Responder)

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) Option {
	return func(rs *Responder) {
		rs.now = now
	}
}

// New creates a Responder. In production, messages of server errors are
// replaced with a generic string.
func New(logger *slog.Logger, production bool, opts ...Option) *Responder {
	if logger == nil {
		logger = slog.Default()
	}
	rs := &Responder{
		logger:     logger,
		production: production,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(rs)
	}
	return rs
}

// Success writes a success envelope with the given status.
func (rs *Responder) Success(w http.ResponseWriter, r *http.Request, message string, status int, data any) {
	path := requestPath(r)
	body := SuccessBody{
		Message:   message,
		Data:      data,
		Timestamp: rs.timestamp(),
		Path:      path,
	}

	rs.logger.Info("success response",
		slog.String("message", message),
		slog.Int("status", status),
		slog.String("path", path),
	)
	rs.write(w, status, body)
}

// Created writes a 201 success envelope.
func (rs *Responder) Created(w http.ResponseWriter, r *http.Request, message string, data any) {
	rs.Success(w, r, message, http.StatusCreated, data)
}

// Error writes an error envelope.
func (rs *Responder) Error(w http.ResponseWriter, r *http.Request, message string, code apperr.Code, status int, details map[string]string) {
	path := requestPath(r)
	body := ErrorBody{
		Message:   message,
		Code:      code,
		Status:    status,
		Timestamp: rs.timestamp(),
		Path:      path,
		Details:   details,
	}

	rs.logger.Error("error response",
		slog.String("message", message),
		slog.String("code", string(code)),
		slog.Int("status", status),
		slog.String("path", path),
	)
	rs.write(w, status, body)
}

// Fail is the error boundary: it normalizes err into the taxonomy, logs it
// and writes the error envelope. Server errors also log their cause and stack.
func (rs *Responder) Fail(w http.ResponseWriter, r *http.Request, err error) {
	appErr := apperr.Normalize(err, rs.production)
	if appErr == nil {
		appErr = apperr.Server("", nil)
	}

	attrs := []any{
		slog.String("code", string(appErr.Code)),
		slog.String("kind", appErr.Kind.String()),
		slog.String("message", appErr.Message),
		slog.String("path", requestPath(r)),
	}
	switch {
	case appErr.Status >= http.StatusInternalServerError:
		if appErr.Err != nil {
			attrs = append(attrs, slog.String("error", appErr.Err.Error()))
		}
		attrs = append(attrs, slog.String("stack", string(debug.Stack())))
		rs.logger.Error("request failed", attrs...)
	case appErr.Kind == apperr.KindValidation:
		rs.logger.Warn("validation failed", attrs...)
	default:
		rs.logger.Warn("request rejected", attrs...)
	}

	rs.Error(w, r, appErr.Message, appErr.Code, appErr.Status, appErr.Details)
}

// Paginated writes a 200 list envelope. pages is ceil(total/limit), zero
// when there are no items.
func Paginated[T any](rs *Responder, w http.ResponseWriter, r *http.Request, data []T, message string, page, limit int, total int64) {
	if data == nil {
		data = []T{}
	}
	path := requestPath(r)
	body := PaginatedBody[T]{
		Success: true,
		Message: message,
		Data:    data,
		Pagination: Meta{
			Page:  page,
			Limit: limit,
			Total: total,
			Pages: pagination.Pages(total, limit),
		},
		Timestamp: rs.timestamp(),
		Path:      path,
	}

	rs.logger.Info("paginated response",
		slog.String("message", message),
		slog.Int("page", page),
		slog.Int64("total", total),
		slog.String("path", path),
	)
	rs.write(w, http.StatusOK, body)
}

func (rs *Responder) timestamp() string {
	return rs.now().UTC().Format(time.RFC3339Nano)
}

// write encodes body as JSON with the given status code.
func (rs *Responder) write(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		rs.logger.Error("failed to encode response", slog.String("error", err.Error()))
	}
}

func requestPath(r *http.Request) string {
	if r == nil || r.URL == nil {
		return ""
	}
	return r.URL.RequestURI()
}
