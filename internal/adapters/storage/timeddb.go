package storage

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/arno-o/ksa-petegem-admin-sub000/internal/adapters/http/perf"
)

// ErrNotFound is wrapped by stores when a lookup matches no row.
var ErrNotFound = errors.New("not found")

// SQLDB is the database interface used by all stores. Queries are written with
// ? placeholders; implementations rebind them for the active dialect.
type SQLDB interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	BeginTx(ctx context.Context, opts *sql.TxOptions) (*Tx, error)
}

// DefaultSlowQuery is the default threshold for slow query warnings.
const DefaultSlowQuery = 50 * time.Millisecond

// TimedDB wraps a *sql.DB to rebind placeholders, log slow queries and
// optionally record timings for the perf page.
type TimedDB struct {
	db        *sql.DB
	dialect   Dialect
	recorder  *perf.Recorder
	threshold time.Duration
}

// Compile-time check that *TimedDB satisfies SQLDB.
var _ SQLDB = (*TimedDB)(nil)

// NewTimedDB wraps db. recorder may be nil.
// PRE: db is a valid database connection opened with dialect's driver
// POST: Returns a TimedDB using DefaultSlowQuery
func NewTimedDB(db *sql.DB, dialect Dialect, recorder *perf.Recorder) *TimedDB {
	return &TimedDB{
		db:        db,
		dialect:   dialect,
		recorder:  recorder,
		threshold: DefaultSlowQuery,
	}
}

// SetSlowThreshold changes the duration above which queries log at WARN.
func (t *TimedDB) SetSlowThreshold(d time.Duration) {
	if d > 0 {
		t.threshold = d
	}
}

// RawDB returns the underlying *sql.DB (needed for migrations and pool config).
func (t *TimedDB) RawDB() *sql.DB {
	return t.db
}

// Dialect returns the SQL flavour of the connection.
func (t *TimedDB) Dialect() Dialect {
	return t.dialect
}

func (t *TimedDB) observe(op, query string, start time.Time) {
	took := time.Since(start)
	name := op + " " + queryTarget(query)

	if took >= t.threshold {
		slog.Warn("slow_query",
			"op", name,
			"duration_ms", took.Milliseconds(),
		)
	} else {
		slog.Debug("query",
			"op", name,
			"duration_ms", took.Milliseconds(),
		)
	}

	if t.recorder != nil {
		t.recorder.Record(perf.Sample{
			Kind: perf.KindQuery,
			Name: name,
			Took: took,
			At:   start,
		})
	}
}

// ExecContext runs a statement with timing.
// PRE: ctx is valid, query is non-empty
// POST: statement executed, timing recorded
func (t *TimedDB) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	start := time.Now()
	result, err := t.db.ExecContext(ctx, t.dialect.Rebind(query), args...)
	t.observe("exec", query, start)
	return result, err
}

// QueryContext runs a query with timing.
func (t *TimedDB) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	start := time.Now()
	rows, err := t.db.QueryContext(ctx, t.dialect.Rebind(query), args...)
	t.observe("query", query, start)
	return rows, err
}

// QueryRowContext runs a single-row query with timing.
func (t *TimedDB) QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row {
	start := time.Now()
	row := t.db.QueryRowContext(ctx, t.dialect.Rebind(query), args...)
	t.observe("query", query, start)
	return row
}

// BeginTx starts a transaction whose statements are rebound like TimedDB's.
// PRE: ctx is valid
// POST: caller must Commit or Rollback the returned Tx
func (t *TimedDB) BeginTx(ctx context.Context, opts *sql.TxOptions) (*Tx, error) {
	tx, err := t.db.BeginTx(ctx, opts)
	if err != nil {
		return nil, err
	}
	return &Tx{tx: tx, db: t}, nil
}

// Close closes the underlying database connection.
func (t *TimedDB) Close() error {
	return t.db.Close()
}

// Ping verifies the database connection.
func (t *TimedDB) Ping(ctx context.Context) error {
	return t.db.PingContext(ctx)
}

// Tx is a transaction that rebinds and times its statements.
type Tx struct {
	tx *sql.Tx
	db *TimedDB
}

func (x *Tx) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	start := time.Now()
	result, err := x.tx.ExecContext(ctx, x.db.dialect.Rebind(query), args...)
	x.db.observe("tx.exec", query, start)
	return result, err
}

func (x *Tx) QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row {
	start := time.Now()
	row := x.tx.QueryRowContext(ctx, x.db.dialect.Rebind(query), args...)
	x.db.observe("tx.query", query, start)
	return row
}

func (x *Tx) Commit() error { return x.tx.Commit() }

// Rollback aborts the transaction. Safe to defer after Commit.
func (x *Tx) Rollback() error { return x.tx.Rollback() }

// queryTarget returns "VERB table" for a statement, e.g. "UPDATE leiding".
func queryTarget(query string) string {
	fields := strings.Fields(query)
	if len(fields) == 0 {
		return ""
	}
	verb := strings.ToUpper(fields[0])
	for i := 0; i < len(fields)-1; i++ {
		switch strings.ToUpper(fields[i]) {
		case "FROM", "INTO", "UPDATE", "TABLE":
			next := i + 1
			if strings.EqualFold(fields[next], "IF") && next+3 < len(fields) {
				next += 3 // IF NOT EXISTS
			}
			table := strings.TrimLeft(fields[next], "(")
			if j := strings.IndexAny(table, "( "); j >= 0 {
				table = table[:j]
			}
			return verb + " " + table
		}
	}
	return verb
}
