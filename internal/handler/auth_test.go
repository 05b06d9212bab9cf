package handler

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/chefserge/chefsite-go/internal/middleware"
	"github.com/chefserge/chefsite-go/internal/store"
)

func setupAuthHandler(t *testing.T) (*AuthHandler, *testDeps) {
	t.Helper()
	deps := newTestDeps(t)
	return NewAuthHandler(deps.db, deps.renderer, deps.sm), deps
}

func postForm(t *testing.T, target string, form url.Values) *http.Request {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func TestRegisterCreatesUserAndLogsIn(t *testing.T) {
	h, deps := setupAuthHandler(t)

	req := requestWithSession(deps.sm, postForm(t, "/register", url.Values{
		"name":     {"Alice"},
		"email":    {"alice@example.com"},
		"password": {"s3cret-pass"},
	}))
	rec := httptest.NewRecorder()
	h.Register(rec, req)

	assertRedirect(t, rec, "/")

	user, err := store.New(deps.db).GetUserByEmail(req.Context(), "alice@example.com")
	if err != nil {
		t.Fatalf("expected user to exist: %v", err)
	}
	if user.Role != store.RoleUser {
		t.Errorf("role = %q; want %q", user.Role, store.RoleUser)
	}
	if got := deps.sm.GetInt64(req.Context(), middleware.SessionKeyUserID); got != user.ID {
		t.Errorf("session user_id = %d; want %d", got, user.ID)
	}
}

func TestRegisterDuplicateEmailCreatesNoAccount(t *testing.T) {
	h, deps := setupAuthHandler(t)
	createTestUser(t, deps.db, testUser{Email: "alice@example.com", Name: "Alice"})

	req := requestWithSession(deps.sm, postForm(t, "/register", url.Values{
		"name":     {"Imposter"},
		"email":    {"alice@example.com"},
		"password": {"whatever123"},
	}))
	rec := httptest.NewRecorder()
	h.Register(rec, req)

	assertRedirect(t, rec, "/login")

	count, err := store.New(deps.db).CountUsers(req.Context())
	if err != nil {
		t.Fatalf("counting users: %v", err)
	}
	if count != 1 {
		t.Errorf("user count = %d; want 1", count)
	}
	if got := deps.sm.GetInt64(req.Context(), middleware.SessionKeyUserID); got != 0 {
		t.Errorf("session user_id = %d; want 0", got)
	}
}

func TestRegisterRejectsInvalidEmail(t *testing.T) {
	h, deps := setupAuthHandler(t)

	req := requestWithSession(deps.sm, postForm(t, "/register", url.Values{
		"name":     {"Alice"},
		"email":    {"not-an-email"},
		"password": {"s3cret-pass"},
	}))
	rec := httptest.NewRecorder()
	h.Register(rec, req)

	assertRedirect(t, rec, "/register")
}

func TestLoginSuccess(t *testing.T) {
	h, deps := setupAuthHandler(t)
	user := createTestUser(t, deps.db, testUser{
		Email: "alice@example.com", Name: "Alice", Password: "s3cret-pass",
	})

	req := requestWithSession(deps.sm, postForm(t, "/login", url.Values{
		"email":    {"alice@example.com"},
		"password": {"s3cret-pass"},
	}))
	rec := httptest.NewRecorder()
	h.Login(rec, req)

	assertRedirect(t, rec, "/")
	if got := deps.sm.GetInt64(req.Context(), middleware.SessionKeyUserID); got != user.ID {
		t.Errorf("session user_id = %d; want %d", got, user.ID)
	}
}

// The login error message must not reveal whether the email exists.
func TestLoginGenericError(t *testing.T) {
	h, deps := setupAuthHandler(t)
	createTestUser(t, deps.db, testUser{
		Email: "alice@example.com", Name: "Alice", Password: "s3cret-pass",
	})

	cases := []struct {
		name  string
		email string
	}{
		{"unknown email", "nobody@example.com"},
		{"wrong password", "alice@example.com"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := requestWithSession(deps.sm, postForm(t, "/login", url.Values{
				"email":    {tc.email},
				"password": {"wrong-password"},
			}))
			rec := httptest.NewRecorder()
			h.Login(rec, req)

			assertRedirect(t, rec, "/login")
			if flash := deps.sm.PopString(req.Context(), "flash"); flash != msgInvalidCredentials {
				t.Errorf("flash = %q; want %q", flash, msgInvalidCredentials)
			}
		})
	}
}

func TestLoginFormRedirectsWhenLoggedIn(t *testing.T) {
	h, deps := setupAuthHandler(t)

	req := requestWithSession(deps.sm, httptest.NewRequest(http.MethodGet, "/login", nil))
	deps.sm.Put(req.Context(), middleware.SessionKeyUserID, int64(1))
	rec := httptest.NewRecorder()
	h.LoginForm(rec, req)

	assertRedirect(t, rec, "/")
}

func TestLogoutDestroysSession(t *testing.T) {
	h, deps := setupAuthHandler(t)

	req := requestWithSession(deps.sm, httptest.NewRequest(http.MethodPost, "/logout", nil))
	deps.sm.Put(req.Context(), middleware.SessionKeyUserID, int64(1))
	rec := httptest.NewRecorder()
	h.Logout(rec, req)

	assertRedirect(t, rec, "/")
	if got := deps.sm.GetInt64(req.Context(), middleware.SessionKeyUserID); got != 0 {
		t.Errorf("session user_id = %d after logout; want 0", got)
	}
}
