// Package storagetest opens migrated in-memory databases for store tests.
package storagetest

import (
	"context"
	"database/sql"
	"testing"

	_ "modernc.org/sqlite"

	"github.com/arno-o/ksa-petegem-admin-sub000/internal/adapters/storage"
)

// Open returns a migrated in-memory SQLite database closed at test cleanup.
func Open(t testing.TB) *storage.TimedDB {
	t.Helper()
	raw, err := sql.Open("sqlite", ":memory:?_pragma=foreign_keys(ON)")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	// every connection to :memory: is a separate database
	raw.SetMaxOpenConns(1)
	t.Cleanup(func() { raw.Close() })

	db := storage.NewTimedDB(raw, storage.DialectSQLite, nil)
	if err := storage.MigrateDB(context.Background(), db); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	return db
}
