package storage

import (
	"context"
	"database/sql"
	"testing"
	"time"

	_ "modernc.org/sqlite"

	"academy/internal/adapters/http/perf"
)

func openTimedTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db := openTestDB(t)
	if _, err := db.Exec("CREATE TABLE test (id TEXT PRIMARY KEY, val TEXT)"); err != nil {
		t.Fatalf("create table: %v", err)
	}
	return db
}

func TestTimedDB_RecordsEveryStatement(t *testing.T) {
	db := openTimedTestDB(t)
	collector := perf.NewCollector(100)
	tdb := NewTimedDB(db, collector, time.Second)
	ctx := context.Background()

	if _, err := tdb.ExecContext(ctx, "INSERT INTO test (id, val) VALUES (?, ?)", "1", "hello"); err != nil {
		t.Fatalf("ExecContext: %v", err)
	}
	rows, err := tdb.QueryContext(ctx, "SELECT id, val FROM test")
	if err != nil {
		t.Fatalf("QueryContext: %v", err)
	}
	rows.Close()

	var val string
	if err := tdb.QueryRowContext(ctx, "SELECT val FROM test WHERE id = ?", "1").Scan(&val); err != nil {
		t.Fatalf("QueryRowContext: %v", err)
	}
	if val != "hello" {
		t.Errorf("val = %q, want hello", val)
	}
	if collector.TotalRecorded() != 3 {
		t.Errorf("TotalRecorded = %d, want 3", collector.TotalRecorded())
	}

	snap := collector.Snapshot(time.Now().Add(-time.Minute), 10)
	labels := map[string]bool{}
	for _, s := range snap.SlowestQueries {
		labels[s.Path] = true
	}
	if !labels["INSERT test"] || !labels["SELECT test"] {
		t.Errorf("labels = %v, want INSERT test and SELECT test", labels)
	}
}

func TestTimedDB_NilCollector(t *testing.T) {
	db := openTimedTestDB(t)
	tdb := NewTimedDB(db, nil, 0)

	if _, err := tdb.ExecContext(context.Background(), "INSERT INTO test (id, val) VALUES ('a', 'b')"); err != nil {
		t.Fatalf("ExecContext with nil collector: %v", err)
	}
	if tdb.RawDB() != db {
		t.Error("RawDB should return the wrapped connection")
	}
}

func TestQueryLabel(t *testing.T) {
	cases := map[string]string{
		"SELECT id FROM academy_question WHERE id = ?":     "SELECT academy_question",
		"insert into audit_event (id) values (?)":          "INSERT audit_event",
		"UPDATE academy_question SET archived = 1":         "UPDATE academy_question",
		"DELETE FROM audit_event":                          "DELETE audit_event",
		"  \n SELECT COUNT(*) FROM\n  academy_question   ": "SELECT academy_question",
		"PRAGMA journal_mode=WAL":                          "PRAGMA",
		"":                                                 "empty",
	}
	for in, want := range cases {
		if got := QueryLabel(in); got != want {
			t.Errorf("QueryLabel(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestSlowQueryThreshold_Env(t *testing.T) {
	t.Setenv("ACADEMY_SLOW_QUERY_MS", "250")
	if got := SlowQueryThreshold(); got != 250*time.Millisecond {
		t.Errorf("threshold = %v, want 250ms", got)
	}
	t.Setenv("ACADEMY_SLOW_QUERY_MS", "nope")
	if got := SlowQueryThreshold(); got != DefaultSlowQueryMs*time.Millisecond {
		t.Errorf("threshold = %v, want default", got)
	}
}
