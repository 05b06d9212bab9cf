package util

import "database/sql"

// NullString returns a sql.NullString that is valid only when s is non-empty.
// Optional form fields map empty input to NULL columns this way.
func NullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// StringOrEmpty unwraps a sql.NullString, returning "" when invalid.
func StringOrEmpty(ns sql.NullString) string {
	if ns.Valid {
		return ns.String
	}
	return ""
}
