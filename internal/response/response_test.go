package response

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/applytrack/applytrack/internal/apperr"
)

var fixedTime = time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)

func newTestResponder(production bool, logs io.Writer) *Responder {
	if logs == nil {
		logs = io.Discard
	}
	logger := slog.New(slog.NewJSONHandler(logs, nil))
	return New(logger, production, WithClock(func() time.Time { return fixedTime }))
}

func TestSuccess(t *testing.T) {
	rs := newTestResponder(false, nil)
	req := httptest.NewRequest(http.MethodGet, "/api/auth/me?x=1", nil)
	rec := httptest.NewRecorder()

	rs.Success(rec, req, "Current user session retrieved", http.StatusOK, map[string]string{"id": "u1"})

	if rec.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("expected Content-Type application/json, got %s", ct)
	}

	var body map[string]any
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if body["message"] != "Current user session retrieved" {
		t.Errorf("unexpected message: %v", body["message"])
	}
	if body["path"] != "/api/auth/me?x=1" {
		t.Errorf("unexpected path: %v", body["path"])
	}
	if body["timestamp"] != "2026-03-14T09:26:53Z" {
		t.Errorf("unexpected timestamp: %v", body["timestamp"])
	}
	if _, ok := body["success"]; ok {
		t.Error("success envelope must not carry a success flag")
	}
	data, ok := body["data"].(map[string]any)
	if !ok || data["id"] != "u1" {
		t.Errorf("unexpected data: %v", body["data"])
	}
}

func TestSuccess_NullData(t *testing.T) {
	rs := newTestResponder(false, nil)
	req := httptest.NewRequest(http.MethodPost, "/api/auth/logout", nil)
	rec := httptest.NewRecorder()

	rs.Success(rec, req, "Logout successful", http.StatusOK, nil)

	if !strings.Contains(rec.Body.String(), `"data":null`) {
		t.Errorf("expected null data, got %s", rec.Body.String())
	}
}

func TestCreated(t *testing.T) {
	rs := newTestResponder(false, nil)
	req := httptest.NewRequest(http.MethodPost, "/api/auth/register", nil)
	rec := httptest.NewRecorder()

	rs.Created(rec, req, "User registered successfully", map[string]string{"id": "u1"})

	if rec.Code != http.StatusCreated {
		t.Errorf("expected status 201, got %d", rec.Code)
	}
}

func TestError(t *testing.T) {
	rs := newTestResponder(false, nil)
	req := httptest.NewRequest(http.MethodPost, "/api/auth/register", nil)
	rec := httptest.NewRecorder()

	rs.Error(rec, req, "Validation failed", apperr.CodeValidation, http.StatusBadRequest,
		map[string]string{"email": "Invalid email address"})

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected status 400, got %d", rec.Code)
	}

	var body ErrorBody
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if body.Code != apperr.CodeValidation || body.Status != http.StatusBadRequest {
		t.Errorf("unexpected body: %+v", body)
	}
	if body.Details["email"] != "Invalid email address" {
		t.Errorf("unexpected details: %v", body.Details)
	}
	if body.Path != "/api/auth/register" {
		t.Errorf("unexpected path: %s", body.Path)
	}
}

func TestPaginated(t *testing.T) {
	rs := newTestResponder(false, nil)
	req := httptest.NewRequest(http.MethodGet, "/api/applications?page=2&limit=5", nil)
	rec := httptest.NewRecorder()

	Paginated(rs, rec, req, []string{"a", "b"}, "Applications retrieved successfully", 2, 5, 12)

	if rec.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", rec.Code)
	}

	var body PaginatedBody[string]
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if !body.Success {
		t.Error("expected success flag")
	}
	want := Meta{Page: 2, Limit: 5, Total: 12, Pages: 3}
	if body.Pagination != want {
		t.Errorf("pagination = %+v, want %+v", body.Pagination, want)
	}
	if len(body.Data) != 2 {
		t.Errorf("expected 2 items, got %d", len(body.Data))
	}
}

func TestPaginated_EmptyTotal(t *testing.T) {
	rs := newTestResponder(false, nil)
	req := httptest.NewRequest(http.MethodGet, "/api/applications", nil)
	rec := httptest.NewRecorder()

	var none []int
	Paginated(rs, rec, req, none, "Applications retrieved successfully", 1, 10, 0)

	if !strings.Contains(rec.Body.String(), `"data":[]`) {
		t.Errorf("expected empty array, got %s", rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), `"pages":0`) {
		t.Errorf("expected zero pages, got %s", rec.Body.String())
	}
}

func TestFail_ServerErrorSuppressedInProduction(t *testing.T) {
	var logs bytes.Buffer
	rs := newTestResponder(true, &logs)
	req := httptest.NewRequest(http.MethodGet, "/api/applications", nil)
	rec := httptest.NewRecorder()

	rs.Fail(rec, req, errors.New("dial tcp 10.0.0.5:5432: connection refused"))

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("expected status 500, got %d", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "10.0.0.5") {
		t.Errorf("internal details leaked: %s", rec.Body.String())
	}

	var body ErrorBody
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if body.Message != "An error occurred" || body.Code != apperr.CodeServer {
		t.Errorf("unexpected body: %+v", body)
	}

	if !strings.Contains(logs.String(), "10.0.0.5") {
		t.Error("expected the internal error to be logged")
	}
	if !strings.Contains(logs.String(), `"stack"`) {
		t.Error("expected a stack trace in the log")
	}
}

func TestFail_DevelopmentKeepsMessage(t *testing.T) {
	rs := newTestResponder(false, nil)
	req := httptest.NewRequest(http.MethodGet, "/api/applications", nil)
	rec := httptest.NewRecorder()

	rs.Fail(rec, req, errors.New("boom"))

	var body ErrorBody
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if body.Message != "boom" {
		t.Errorf("expected raw message in development, got %q", body.Message)
	}
}

func TestFail_TaxonomyError(t *testing.T) {
	rs := newTestResponder(true, nil)
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", nil)
	rec := httptest.NewRecorder()

	rs.Fail(rec, req, apperr.Authentication("Invalid email or password", apperr.CodeInvalidCredentials))

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected status 401, got %d", rec.Code)
	}

	var body ErrorBody
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if body.Code != apperr.CodeInvalidCredentials || body.Message != "Invalid email or password" {
		t.Errorf("unexpected body: %+v", body)
	}
}
