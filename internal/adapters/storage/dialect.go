package storage

import (
	"strconv"
	"strings"
)

// Dialect names a database/sql driver and its SQL flavour.
type Dialect string

const (
	DialectSQLite   Dialect = "sqlite" // modernc.org/sqlite
	DialectPostgres Dialect = "pgx"    // github.com/jackc/pgx/v5/stdlib
)

// Valid reports whether d is a supported driver.
func (d Dialect) Valid() bool {
	return d == DialectSQLite || d == DialectPostgres
}

// Rebind rewrites the ? placeholders stores are written with into the
// dialect's native form. Question marks inside single-quoted literals are left
// alone.
func (d Dialect) Rebind(query string) string {
	if d != DialectPostgres || !strings.Contains(query, "?") {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	quoted := false
	for i := 0; i < len(query); i++ {
		c := query[i]
		switch {
		case c == '\'':
			quoted = !quoted
			b.WriteByte(c)
		case c == '?' && !quoted:
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

// Placeholders returns "?, ?, ?" with n markers, for IN lists.
// PRE: n > 0
func Placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.Repeat("?, ", n-1) + "?"
}

// Int64Args converts ids into a query argument list.
func Int64Args(ids []int64) []any {
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	return args
}

// primaryKey is the auto-increment id column definition.
func (d Dialect) primaryKey() string {
	if d == DialectPostgres {
		return "BIGSERIAL PRIMARY KEY"
	}
	return "INTEGER PRIMARY KEY AUTOINCREMENT"
}
