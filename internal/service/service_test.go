package service

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/applytrack/applytrack/internal/apperr"
	"github.com/applytrack/applytrack/internal/auth"
	"github.com/applytrack/applytrack/internal/model"
	"github.com/applytrack/applytrack/internal/pagination"
)

type stubProvider struct {
	signUpErr  error
	signInErr  error
	signOutErr error
	session    *model.SessionPayload
	sessionErr error
}

func (s *stubProvider) SignUp(ctx context.Context, in auth.SignUpInput) (*model.SessionPayload, error) {
	if s.signUpErr != nil {
		return nil, s.signUpErr
	}
	return &model.SessionPayload{User: model.PublicUser{Email: in.Email}}, nil
}

func (s *stubProvider) SignIn(ctx context.Context, in auth.SignInInput) (*model.SessionPayload, error) {
	if s.signInErr != nil {
		return nil, s.signInErr
	}
	return &model.SessionPayload{User: model.PublicUser{Email: in.Email}}, nil
}

func (s *stubProvider) SignOut(ctx context.Context, h http.Header) error {
	return s.signOutErr
}

func (s *stubProvider) GetSession(ctx context.Context, h http.Header) (*model.SessionPayload, error) {
	return s.session, s.sessionErr
}

func assertAppErr(t *testing.T, err error, wantStatus int, wantCode apperr.Code, wantMessage string) {
	t.Helper()
	appErr, ok := apperr.As(err)
	if !ok {
		t.Fatalf("expected *apperr.Error, got %T (%v)", err, err)
	}
	if appErr.Status != wantStatus || appErr.Code != wantCode {
		t.Errorf("got %d %s, want %d %s", appErr.Status, appErr.Code, wantStatus, wantCode)
	}
	if wantMessage != "" && appErr.Message != wantMessage {
		t.Errorf("message = %q, want %q", appErr.Message, wantMessage)
	}
}

func TestAuthService_Register(t *testing.T) {
	ctx := context.Background()

	svc := NewAuthService(&stubProvider{}, nil)
	payload, err := svc.Register(ctx, auth.SignUpInput{Email: "ada@example.com"})
	if err != nil || payload.User.Email != "ada@example.com" {
		t.Fatalf("Register() = %+v, %v", payload, err)
	}

	svc = NewAuthService(&stubProvider{signUpErr: auth.ErrUserExists}, nil)
	_, err = svc.Register(ctx, auth.SignUpInput{})
	assertAppErr(t, err, http.StatusBadRequest, apperr.CodeResourceAlreadyExists, "User with this email already exists")

	svc = NewAuthService(&stubProvider{signUpErr: errors.New("db down")}, nil)
	_, err = svc.Register(ctx, auth.SignUpInput{})
	assertAppErr(t, err, http.StatusInternalServerError, apperr.CodeServer, "Failed to sign up")
}

func TestAuthService_Login(t *testing.T) {
	ctx := context.Background()

	svc := NewAuthService(&stubProvider{signInErr: auth.ErrInvalidCredentials}, nil)
	_, err := svc.Login(ctx, auth.SignInInput{})
	assertAppErr(t, err, http.StatusUnauthorized, apperr.CodeInvalidCredentials, "Invalid email or password")

	svc = NewAuthService(&stubProvider{signInErr: errors.New("redis down")}, nil)
	_, err = svc.Login(ctx, auth.SignInInput{})
	assertAppErr(t, err, http.StatusInternalServerError, apperr.CodeServer, "Failed to sign in")
}

func TestAuthService_Logout(t *testing.T) {
	ctx := context.Background()

	if err := NewAuthService(&stubProvider{}, nil).Logout(ctx, http.Header{}); err != nil {
		t.Errorf("Logout() = %v, want nil", err)
	}

	err := NewAuthService(&stubProvider{signOutErr: errors.New("redis down")}, nil).Logout(ctx, http.Header{})
	assertAppErr(t, err, http.StatusInternalServerError, apperr.CodeServer, "Failed to sign out")
}

func TestAuthService_CurrentSession(t *testing.T) {
	ctx := context.Background()

	want := &model.SessionPayload{User: model.PublicUser{ID: "u1"}}
	got, err := NewAuthService(&stubProvider{session: want}, nil).CurrentSession(ctx, http.Header{})
	if err != nil || got != want {
		t.Fatalf("CurrentSession() = %+v, %v", got, err)
	}

	_, err = NewAuthService(&stubProvider{}, nil).CurrentSession(ctx, http.Header{})
	assertAppErr(t, err, http.StatusUnauthorized, apperr.CodeUnauthenticated, "")

	_, err = NewAuthService(&stubProvider{sessionErr: errors.New("redis down")}, nil).CurrentSession(ctx, http.Header{})
	assertAppErr(t, err, http.StatusUnauthorized, apperr.CodeUnauthenticated, "")
}

type stubStore struct {
	apps      []*model.JobApplication
	total     int64
	listErr   error
	countErr  error
	gotFilter model.ApplicationFilter
}

func (s *stubStore) ListApplications(ctx context.Context, filter model.ApplicationFilter) ([]*model.JobApplication, error) {
	s.gotFilter = filter
	return s.apps, s.listErr
}

func (s *stubStore) CountApplications(ctx context.Context, filter model.ApplicationFilter) (int64, error) {
	return s.total, s.countErr
}

func TestApplicationService_List(t *testing.T) {
	ctx := context.Background()
	page := pagination.FromQuery("2", "5", 10)

	store := &stubStore{apps: []*model.JobApplication{{ID: "a1"}, {ID: "a2"}}, total: 7}
	svc := NewApplicationService(store, nil, true)

	res, err := svc.List(ctx, "user-1", page, []model.ApplicationStatus{model.StatusApplied})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(res.Applications) != 2 || res.Total != 7 {
		t.Errorf("unexpected result: %+v", res)
	}
	if store.gotFilter.UserID != "user-1" || store.gotFilter.Skip != 5 || store.gotFilter.Take != 5 {
		t.Errorf("unexpected filter: %+v", store.gotFilter)
	}
	if len(store.gotFilter.Statuses) != 1 {
		t.Errorf("status filter not forwarded: %+v", store.gotFilter)
	}
}

func TestApplicationService_EmptyPage(t *testing.T) {
	ctx := context.Background()
	page := pagination.FromQuery("", "", 10)

	_, err := NewApplicationService(&stubStore{}, nil, true).List(ctx, "user-1", page, nil)
	assertAppErr(t, err, http.StatusNotFound, apperr.CodeResourceNotFound, "No applications found for this user")

	res, err := NewApplicationService(&stubStore{}, nil, false).List(ctx, "user-1", page, nil)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(res.Applications) != 0 || res.Total != 0 {
		t.Errorf("expected empty result, got %+v", res)
	}
}

func TestApplicationService_StoreErrors(t *testing.T) {
	ctx := context.Background()
	page := pagination.FromQuery("", "", 10)

	_, err := NewApplicationService(&stubStore{listErr: errors.New("timeout")}, nil, true).List(ctx, "u", page, nil)
	assertAppErr(t, err, http.StatusInternalServerError, apperr.CodeDatabase, "Failed to retrieve applications")

	_, err = NewApplicationService(&stubStore{apps: []*model.JobApplication{{ID: "a"}}, countErr: errors.New("timeout")}, nil, true).List(ctx, "u", page, nil)
	assertAppErr(t, err, http.StatusInternalServerError, apperr.CodeDatabase, "")
}
