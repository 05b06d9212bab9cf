// Package session configures the server-side session manager backed by
// the application database.
package session

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/alexedwards/scs/postgresstore"
	"github.com/alexedwards/scs/sqlite3store"
	"github.com/alexedwards/scs/v2"

	"github.com/chefserge/chefsite-go/internal/store"
)

// New creates a session manager persisting sessions in the given
// database. The store is chosen by dialect so both backends share the
// sessions table created by the migrations.
func New(db *sql.DB, dialect store.Dialect, isDev bool) *scs.SessionManager {
	sm := scs.New()

	switch dialect {
	case store.DialectPostgres:
		sm.Store = postgresstore.New(db)
	default:
		sm.Store = sqlite3store.New(db)
	}

	sm.Lifetime = 24 * time.Hour
	sm.Cookie.HttpOnly = true
	sm.Cookie.SameSite = http.SameSiteLaxMode
	sm.Cookie.Secure = !isDev // secure cookies in production only
	if !isDev {
		// __Host- prefix binds the cookie to this host over HTTPS.
		sm.Cookie.Name = "__Host-session"
		sm.Cookie.Path = "/"
	}

	return sm
}
