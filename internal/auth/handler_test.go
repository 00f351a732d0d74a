package auth_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"

	"github.com/pelita-edu/pelita/internal/auth"
	"github.com/pelita-edu/pelita/internal/authz"
	"github.com/pelita-edu/pelita/internal/shared"
	_ "github.com/pelita-edu/pelita/testing"
)

type stubRepo struct {
	user *auth.User
}

func (s *stubRepo) FindByEmail(ctx context.Context, email string) (*auth.User, error) {
	if s.user == nil {
		return nil, shared.ErrInvalidCredentials
	}
	return s.user, nil
}

func (s *stubRepo) CreateSession(ctx context.Context, id string, userID int64, expiresAt time.Time, ip, ua string) error {
	return nil
}

func (s *stubRepo) DeleteSession(ctx context.Context, id string) error {
	return nil
}

func newAuthHandler(t *testing.T, repo auth.Repository) (*auth.Handler, *shared.SessionManager) {
	t.Helper()
	mr := miniredis.RunT(t)
	redisClient := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	sessionManager := shared.NewSessionManager(redisClient, "test_session", "secret", time.Hour, false)
	csrfManager := shared.NewCSRFManager("csrfsecret")
	handler := auth.NewHandler(nil, auth.NewService(repo), sessionManager, csrfManager)
	return handler, sessionManager
}

func withSession(t *testing.T, sm *shared.SessionManager, req *http.Request) (*http.Request, *shared.Session) {
	t.Helper()
	sess, err := sm.Load(context.Background(), req)
	if err != nil {
		t.Fatalf("load session: %v", err)
	}
	ctx := shared.ContextWithSession(req.Context(), sess)
	return req.WithContext(ctx), sess
}

func TestShowSessionUnauthenticated(t *testing.T) {
	handler, sessionManager := newAuthHandler(t, &stubRepo{})

	req := httptest.NewRequest(http.MethodGet, "/auth/session", nil)
	req, sess := withSession(t, sessionManager, req)

	res := httptest.NewRecorder()
	handler.ShowSessionForTest(res, req)
	if err := sessionManager.Commit(req.Context(), res, req, sess); err != nil {
		t.Fatalf("commit session: %v", err)
	}

	if res.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", res.Code)
	}
	if !strings.Contains(res.Body.String(), `"authenticated":false`) {
		t.Fatalf("expected unauthenticated session, got %s", res.Body.String())
	}
	if !strings.Contains(res.Body.String(), "csrf_token") {
		t.Fatalf("expected csrf token in body")
	}
}

func TestLoginInvalidCredentials(t *testing.T) {
	hashed, err := bcrypt.GenerateFromPassword([]byte("correctpass"), bcrypt.DefaultCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	handler, sessionManager := newAuthHandler(t, &stubRepo{user: &auth.User{
		ID: 1, Email: "user@test.local", PasswordHash: string(hashed),
		Role: authz.RoleStaff, IsActive: true,
	}})

	body := strings.NewReader(`{"email":"user@test.local","password":"wrongpass1"}`)
	req := httptest.NewRequest(http.MethodPost, "/auth/login", body)
	req.Header.Set("Content-Type", "application/json")
	req, sess := withSession(t, sessionManager, req)

	res := httptest.NewRecorder()
	handler.HandleLoginForTest(res, req)
	if err := sessionManager.Commit(req.Context(), res, req, sess); err != nil {
		t.Fatalf("commit session: %v", err)
	}

	if res.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", res.Code)
	}
	if sess.User() != "" {
		t.Fatalf("session must not carry a user after failed login")
	}
}

func TestLoginSuccessBindsSessionUser(t *testing.T) {
	hashed, err := bcrypt.GenerateFromPassword([]byte("correctpass"), bcrypt.DefaultCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	handler, sessionManager := newAuthHandler(t, &stubRepo{user: &auth.User{
		ID: 7, Email: "guru@test.local", Name: "Guru Satu", PasswordHash: string(hashed),
		Role: authz.RoleTeacher, IsActive: true,
	}})

	body := strings.NewReader(`{"email":"guru@test.local","password":"correctpass"}`)
	req := httptest.NewRequest(http.MethodPost, "/auth/login", body)
	req.Header.Set("Content-Type", "application/json")
	req, sess := withSession(t, sessionManager, req)

	res := httptest.NewRecorder()
	handler.HandleLoginForTest(res, req)
	if err := sessionManager.Commit(req.Context(), res, req, sess); err != nil {
		t.Fatalf("commit session: %v", err)
	}

	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", res.Code, res.Body.String())
	}
	if sess.User() != "7" {
		t.Fatalf("expected session user 7, got %q", sess.User())
	}
	if !strings.Contains(res.Body.String(), `"role":"teacher"`) {
		t.Fatalf("expected role in response, got %s", res.Body.String())
	}
}

func TestLoginInactiveAccountRejected(t *testing.T) {
	hashed, _ := bcrypt.GenerateFromPassword([]byte("correctpass"), bcrypt.DefaultCost)
	handler, sessionManager := newAuthHandler(t, &stubRepo{user: &auth.User{
		ID: 2, Email: "off@test.local", PasswordHash: string(hashed),
		Role: authz.RoleStaff, IsActive: false,
	}})

	body := strings.NewReader(`{"email":"off@test.local","password":"correctpass"}`)
	req := httptest.NewRequest(http.MethodPost, "/auth/login", body)
	req.Header.Set("Content-Type", "application/json")
	req, sess := withSession(t, sessionManager, req)

	res := httptest.NewRecorder()
	handler.HandleLoginForTest(res, req)
	_ = sessionManager.Commit(req.Context(), res, req, sess)

	if res.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for inactive account, got %d", res.Code)
	}
}
