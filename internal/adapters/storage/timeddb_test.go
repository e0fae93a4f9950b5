package storage

import (
	"context"
	"testing"
	"time"

	"github.com/arno-o/ksa-petegem-admin-sub000/internal/adapters/http/perf"
)

func timedWithTable(t *testing.T) (*TimedDB, *perf.Recorder) {
	t.Helper()
	rec := perf.NewRecorder(100)
	db := openTestDB(t, rec)
	if _, err := db.RawDB().Exec("CREATE TABLE test (id TEXT PRIMARY KEY, val TEXT)"); err != nil {
		t.Fatalf("create table: %v", err)
	}
	return db, rec
}

// TestTimedDB_RecordsEveryCall verifies exec, query and row queries are timed.
func TestTimedDB_RecordsEveryCall(t *testing.T) {
	ctx := context.Background()
	db, rec := timedWithTable(t)

	if _, err := db.ExecContext(ctx, "INSERT INTO test (id, val) VALUES (?, ?)", "1", "hello"); err != nil {
		t.Fatalf("ExecContext: %v", err)
	}
	rows, err := db.QueryContext(ctx, "SELECT id, val FROM test")
	if err != nil {
		t.Fatalf("QueryContext: %v", err)
	}
	rows.Close()
	var val string
	if err := db.QueryRowContext(ctx, "SELECT val FROM test WHERE id = ?", "1").Scan(&val); err != nil || val != "hello" {
		t.Fatalf("QueryRowContext: %q, %v", val, err)
	}

	if rec.Total() != 3 {
		t.Errorf("Total = %d, want 3", rec.Total())
	}
	rep := rec.Report(time.Time{}, 10)
	names := map[string]bool{}
	for _, s := range rep.SlowQueries {
		names[s.Name] = true
	}
	if !names["exec INSERT test"] || !names["query SELECT test"] {
		t.Errorf("sample names = %v", names)
	}
}

// TestTimedDB_TxCommitAndRollback verifies Tx statements apply only on Commit.
func TestTimedDB_TxCommitAndRollback(t *testing.T) {
	ctx := context.Background()
	db, _ := timedWithTable(t)

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := tx.ExecContext(ctx, "INSERT INTO test (id, val) VALUES (?, ?)", "a", "x"); err != nil {
		t.Fatal(err)
	}
	if err := tx.Rollback(); err != nil {
		t.Fatal(err)
	}

	tx, err = db.BeginTx(ctx, nil)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := tx.ExecContext(ctx, "INSERT INTO test (id, val) VALUES (?, ?)", "b", "y"); err != nil {
		t.Fatal(err)
	}
	if err := tx.Commit(); err != nil {
		t.Fatal(err)
	}

	var n int
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM test").Scan(&n); err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Errorf("rows = %d, want 1 (rolled back insert must not persist)", n)
	}
}

func TestTimedDB_NilRecorder(t *testing.T) {
	db := openTestDB(t, nil)
	if _, err := db.ExecContext(context.Background(), "SELECT 1"); err != nil {
		t.Fatalf("ExecContext with nil recorder: %v", err)
	}
}

func TestQueryTarget(t *testing.T) {
	tests := map[string]string{
		"SELECT id FROM leiding WHERE active = 1":       "SELECT leiding",
		"  update leiding SET group_id = NULL":          "UPDATE leiding",
		"INSERT INTO groups(name) VALUES (?)":           "INSERT groups",
		"CREATE TABLE IF NOT EXISTS posts (id INTEGER)": "CREATE posts",
		"SELECT 1":                                      "SELECT",
		"":                                              "",
	}
	for in, want := range tests {
		if got := queryTarget(in); got != want {
			t.Errorf("queryTarget(%q) = %q, want %q", in, got, want)
		}
	}
}
