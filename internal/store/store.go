// Package store provides database access: connection setup, embedded
// goose migrations, and a query layer over database/sql for every
// record type the site persists.
package store

import (
	"context"
	"database/sql"
	"strconv"
	"strings"
)

// DBTX is the subset of *sql.DB / *sql.Tx the query layer needs.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Queries exposes all persistence operations. Construct one per handler
// with New; use WithTx to run a group of operations in a transaction.
type Queries struct {
	db DBTX
}

// New creates a Queries bound to the given database or transaction.
func New(db DBTX) *Queries {
	return &Queries{db: db}
}

// WithTx returns a Queries bound to the transaction.
func (q *Queries) WithTx(tx *sql.Tx) *Queries {
	return &Queries{db: tx}
}

// Dialect identifies the SQL dialect in use.
type Dialect string

// Supported dialects.
const (
	DialectSQLite   Dialect = "sqlite"
	DialectPostgres Dialect = "postgres"
)

// activeDialect is set once at startup via SetDialect. Queries are written
// with ? placeholders and rebound to $N for Postgres.
var activeDialect = DialectSQLite

// SetDialect selects the placeholder style for the query layer. Call once
// during application startup, before any query runs.
func SetDialect(d Dialect) {
	activeDialect = d
}

// rebind rewrites ? placeholders to $1..$N when running against Postgres.
// Our SQL never embeds ? inside literals, so a plain scan suffices.
func rebind(query string) string {
	if activeDialect != DialectPostgres {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for i := 0; i < len(query); i++ {
		if query[i] == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteByte(query[i])
	}
	return b.String()
}
