package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib" // registers "pgx"
	_ "modernc.org/sqlite"             // registers "sqlite"
)

// sqlitePragmas are appended to file-backed SQLite DSNs.
const sqlitePragmas = "_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(ON)&_pragma=synchronous(NORMAL)"

// Open connects to the database named by dsn using dialect's driver.
// PRE: dialect.Valid()
// POST: returns a pinged connection pool
func Open(ctx context.Context, dialect Dialect, dsn string) (*sql.DB, error) {
	if !dialect.Valid() {
		return nil, fmt.Errorf("unsupported database driver %q", dialect)
	}
	if dialect == DialectSQLite && !strings.Contains(dsn, "_pragma") && !strings.Contains(dsn, ":memory:") {
		sep := "?"
		if strings.Contains(dsn, "?") {
			sep = "&"
		}
		dsn += sep + sqlitePragmas
	}
	db, err := sql.Open(string(dialect), dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", dialect, err)
	}
	if dialect == DialectSQLite {
		// one writer at a time; readers share the WAL
		db.SetMaxOpenConns(8)
	} else {
		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(25)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping %s: %w", dialect, err)
	}
	return db, nil
}

// migration is one schema step. {{pk}} in stmts expands to the dialect's
// auto-increment primary key.
type migration struct {
	version int
	name    string
	stmts   []string
}

var migrations = []migration{
	{
		version: 1,
		name:    "baseline",
		stmts: []string{
			`CREATE TABLE IF NOT EXISTS groups (
				id {{pk}},
				name TEXT NOT NULL,
				description TEXT NOT NULL DEFAULT '',
				color TEXT NOT NULL DEFAULT 'grey',
				active INTEGER NOT NULL DEFAULT 1
			)`,
			`CREATE TABLE IF NOT EXISTS leiding (
				id {{pk}},
				first_name TEXT NOT NULL,
				last_name TEXT NOT NULL DEFAULT '',
				birth_date TEXT,
				work TEXT NOT NULL DEFAULT '',
				studies TEXT NOT NULL DEFAULT '',
				is_team_lead INTEGER NOT NULL DEFAULT 0,
				is_head_staff INTEGER NOT NULL DEFAULT 0,
				group_id BIGINT REFERENCES groups(id),
				tenure_start TEXT,
				experience TEXT NOT NULL DEFAULT '',
				about TEXT NOT NULL DEFAULT '',
				photo_url TEXT NOT NULL DEFAULT '',
				active INTEGER NOT NULL DEFAULT 1
			)`,
			`CREATE INDEX IF NOT EXISTS idx_leiding_active ON leiding(active)`,
			`CREATE INDEX IF NOT EXISTS idx_leiding_group ON leiding(group_id)`,
			`CREATE TABLE IF NOT EXISTS events (
				id {{pk}},
				title TEXT NOT NULL,
				description TEXT NOT NULL DEFAULT '',
				location TEXT NOT NULL DEFAULT '',
				start_date TEXT NOT NULL,
				end_date TEXT,
				start_time TEXT NOT NULL DEFAULT '',
				end_time TEXT NOT NULL DEFAULT '',
				group_ids TEXT NOT NULL DEFAULT '[]'
			)`,
			`CREATE INDEX IF NOT EXISTS idx_events_start ON events(start_date)`,
			`CREATE TABLE IF NOT EXISTS posts (
				id {{pk}},
				title TEXT NOT NULL,
				body TEXT NOT NULL,
				description TEXT NOT NULL DEFAULT '',
				cover_url TEXT NOT NULL DEFAULT '',
				published INTEGER NOT NULL DEFAULT 0,
				published_at TEXT,
				author_id TEXT NOT NULL,
				author_name TEXT NOT NULL DEFAULT '',
				created_at TEXT NOT NULL,
				updated_at TEXT NOT NULL
			)`,
			`CREATE TABLE IF NOT EXISTS settings (
				key TEXT PRIMARY KEY,
				value TEXT NOT NULL DEFAULT '',
				type TEXT NOT NULL,
				description TEXT NOT NULL DEFAULT ''
			)`,
			`CREATE TABLE IF NOT EXISTS profiles (
				id TEXT PRIMARY KEY,
				email TEXT NOT NULL UNIQUE,
				password_hash TEXT NOT NULL DEFAULT '',
				first_name TEXT NOT NULL DEFAULT '',
				last_name TEXT NOT NULL DEFAULT '',
				permission INTEGER NOT NULL DEFAULT 0,
				created_at TEXT NOT NULL,
				failed_logins INTEGER NOT NULL DEFAULT 0,
				locked_until TEXT
			)`,
		},
	},
	{
		version: 2,
		name:    "audit_event",
		stmts: []string{
			`CREATE TABLE IF NOT EXISTS audit_event (
				id TEXT PRIMARY KEY,
				timestamp TEXT NOT NULL,
				category TEXT NOT NULL,
				action TEXT NOT NULL,
				actor_id TEXT NOT NULL DEFAULT '',
				actor_email TEXT NOT NULL DEFAULT '',
				resource_type TEXT NOT NULL DEFAULT '',
				resource_id TEXT NOT NULL DEFAULT '',
				description TEXT NOT NULL DEFAULT '',
				ip_address TEXT NOT NULL DEFAULT ''
			)`,
			`CREATE INDEX IF NOT EXISTS idx_audit_event_timestamp ON audit_event(timestamp)`,
		},
	},
}

// LatestSchemaVersion returns the version MigrateDB brings a database to.
func LatestSchemaVersion() int {
	return migrations[len(migrations)-1].version
}

// SchemaVersion returns the applied version, 0 for an empty database.
func SchemaVersion(ctx context.Context, db SQLDB) (int, error) {
	if _, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS schema_version (version INTEGER NOT NULL)`); err != nil {
		return 0, fmt.Errorf("create schema_version: %w", err)
	}
	var v sql.NullInt64
	if err := db.QueryRowContext(ctx, `SELECT MAX(version) FROM schema_version`).Scan(&v); err != nil {
		return 0, fmt.Errorf("read schema_version: %w", err)
	}
	return int(v.Int64), nil
}

// MigrateDB applies every migration newer than the stored version, each in
// its own transaction.
// PRE: db is connected
// POST: SchemaVersion(db) == LatestSchemaVersion()
func MigrateDB(ctx context.Context, db *TimedDB) error {
	current, err := SchemaVersion(ctx, db)
	if err != nil {
		return err
	}
	for _, m := range migrations {
		if m.version <= current {
			continue
		}
		if err := applyMigration(ctx, db, m); err != nil {
			return fmt.Errorf("migration %d (%s): %w", m.version, m.name, err)
		}
		slog.Info("schema_migrated", "version", m.version, "name", m.name, "dialect", db.Dialect())
	}
	return nil
}

func applyMigration(ctx context.Context, db *TimedDB, m migration) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	pk := db.Dialect().primaryKey()
	for _, stmt := range m.stmts {
		if _, err := tx.ExecContext(ctx, strings.ReplaceAll(stmt, "{{pk}}", pk)); err != nil {
			return err
		}
	}
	if _, err := tx.ExecContext(ctx, `INSERT INTO schema_version (version) VALUES (?)`, m.version); err != nil {
		return err
	}
	return tx.Commit()
}
