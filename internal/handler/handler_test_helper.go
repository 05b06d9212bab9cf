package handler

import (
	"context"
	"database/sql"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/go-chi/chi/v5"
	_ "modernc.org/sqlite"

	"github.com/chefserge/chefsite-go/internal/auth"
	"github.com/chefserge/chefsite-go/internal/middleware"
	"github.com/chefserge/chefsite-go/internal/render"
	"github.com/chefserge/chefsite-go/internal/store"
	"github.com/chefserge/chefsite-go/web"
)

// testDB creates an in-memory SQLite database with the required schema for testing.
func testDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	schema := `
		CREATE TABLE users (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			email TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL,
			role TEXT NOT NULL DEFAULT 'user',
			name TEXT NOT NULL,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX idx_users_email ON users(email);

		CREATE TABLE sessions (
			token TEXT PRIMARY KEY,
			data BLOB NOT NULL,
			expiry REAL NOT NULL
		);
		CREATE INDEX idx_sessions_expiry ON sessions(expiry);

		CREATE TABLE blog_posts (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			author_id INTEGER NOT NULL REFERENCES users(id),
			title TEXT NOT NULL UNIQUE,
			subtitle TEXT NOT NULL,
			date TEXT NOT NULL,
			body TEXT NOT NULL,
			img_url TEXT NOT NULL
		);

		CREATE TABLE comments (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			text TEXT NOT NULL,
			author_id INTEGER NOT NULL REFERENCES users(id),
			post_id INTEGER NOT NULL
		);
		CREATE INDEX idx_comments_post_id ON comments(post_id);

		CREATE TABLE menus (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			title TEXT NOT NULL,
			subtitle TEXT,
			img_url TEXT,
			slug TEXT UNIQUE,
			is_active BOOLEAN NOT NULL DEFAULT 1
		);
		CREATE INDEX idx_menus_slug ON menus(slug);

		CREATE TABLE menu_sections (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			menu_id INTEGER NOT NULL REFERENCES menus(id) ON DELETE CASCADE,
			title TEXT NOT NULL,
			subtitle TEXT,
			position INTEGER NOT NULL DEFAULT 0
		);
		CREATE INDEX idx_menu_sections_menu_id ON menu_sections(menu_id);

		CREATE TABLE menu_items (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			section_id INTEGER NOT NULL REFERENCES menu_sections(id) ON DELETE CASCADE,
			name TEXT NOT NULL,
			description TEXT,
			price TEXT,
			img_url TEXT,
			position INTEGER NOT NULL DEFAULT 0
		);
		CREATE INDEX idx_menu_items_section_id ON menu_items(section_id);

		CREATE TABLE contact_messages (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL,
			email TEXT NOT NULL,
			phone TEXT,
			event_date TEXT,
			number_of_people TEXT,
			occasion TEXT,
			allergies TEXT,
			menus_interested TEXT,
			message TEXT NOT NULL,
			is_read BOOLEAN NOT NULL DEFAULT 0,
			date_sent TEXT NOT NULL
		);
		CREATE INDEX idx_contact_messages_is_read ON contact_messages(is_read);
	`

	if _, err := db.Exec(schema); err != nil {
		t.Fatalf("failed to create test schema: %v", err)
	}

	t.Cleanup(func() {
		_ = db.Close()
	})

	return db
}

// testSessionManager creates a session manager for testing.
func testSessionManager(t *testing.T) *scs.SessionManager {
	t.Helper()
	sm := scs.New()
	sm.Lifetime = 24 * time.Hour
	return sm
}

// testRenderer parses the real embedded templates against the given
// session manager.
func testRenderer(t *testing.T, sm *scs.SessionManager) *render.Renderer {
	t.Helper()
	r, err := render.New(render.Config{
		TemplatesFS:    web.Templates(),
		SessionManager: sm,
		IsDev:          true,
	})
	if err != nil {
		t.Fatalf("failed to build renderer: %v", err)
	}
	return r
}

// testDeps bundles the database, session manager, and renderer every
// handler needs.
type testDeps struct {
	db       *sql.DB
	sm       *scs.SessionManager
	renderer *render.Renderer
}

func newTestDeps(t *testing.T) *testDeps {
	t.Helper()
	db := testDB(t)
	sm := testSessionManager(t)
	return &testDeps{db: db, sm: sm, renderer: testRenderer(t, sm)}
}

// testUser describes a user to seed into the test database.
type testUser struct {
	Email    string
	Name     string
	Role     string
	Password string
}

// createTestUser creates a user row with a real argon2id hash.
func createTestUser(t *testing.T, db *sql.DB, user testUser) store.User {
	t.Helper()

	if user.Password == "" {
		user.Password = "password123"
	}
	if user.Role == "" {
		user.Role = store.RoleUser
	}

	hash, err := auth.HashPassword(user.Password)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	result, err := db.Exec(
		`INSERT INTO users (email, password_hash, role, name) VALUES (?, ?, ?, ?)`,
		user.Email, hash, user.Role, user.Name,
	)
	if err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}

	id, _ := result.LastInsertId()
	return store.User{
		ID:           id,
		Email:        user.Email,
		PasswordHash: hash,
		Role:         user.Role,
		Name:         user.Name,
	}
}

// requestWithURLParams adds chi URL parameters to a request.
func requestWithURLParams(r *http.Request, params map[string]string) *http.Request {
	rctx := chi.NewRouteContext()
	for key, value := range params {
		rctx.URLParams.Add(key, value)
	}
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// requestWithSession wraps a request with session context.
func requestWithSession(sm *scs.SessionManager, r *http.Request) *http.Request {
	ctx, err := sm.Load(r.Context(), "")
	if err != nil {
		return r
	}
	return r.WithContext(ctx)
}

// requestWithUser places a user into the request context the way the
// LoadUser middleware does.
func requestWithUser(r *http.Request, user store.User) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), middleware.ContextKeyUser, user))
}

// assertStatus checks if the response status code matches the expected value.
func assertStatus(t *testing.T, got, want int) {
	t.Helper()
	if got != want {
		t.Errorf("status = %d; want %d", got, want)
	}
}

// assertRedirect checks for a 303 redirect to the expected location.
func assertRedirect(t *testing.T, rec *httptest.ResponseRecorder, want string) {
	t.Helper()
	assertStatus(t, rec.Code, http.StatusSeeOther)
	if got := rec.Header().Get("Location"); got != want {
		t.Errorf("redirect location = %q; want %q", got, want)
	}
}
