package storage

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"academy/internal/adapters/http/perf"
)

// SQLDB is the database interface used by the SQLite stores.
// Both *sql.DB and *TimedDB satisfy it.
type SQLDB interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

var _ SQLDB = (*sql.DB)(nil)

// DefaultSlowQueryMs is the slow query warning threshold when ACADEMY_SLOW_QUERY_MS is unset.
const DefaultSlowQueryMs = 50

// SlowQueryThreshold reads ACADEMY_SLOW_QUERY_MS, falling back to the default.
func SlowQueryThreshold() time.Duration {
	ms := DefaultSlowQueryMs
	if v := os.Getenv("ACADEMY_SLOW_QUERY_MS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			ms = n
		}
	}
	return time.Duration(ms) * time.Millisecond
}

// TimedDB wraps a *sql.DB to warn on slow statements and feed the perf collector.
type TimedDB struct {
	db        *sql.DB
	collector *perf.Collector
	threshold time.Duration
}

var _ SQLDB = (*TimedDB)(nil)

// NewTimedDB wraps db. A nil collector only logs.
// PRE: db is a valid database connection
// POST: every statement is timed and labelled by verb and table
func NewTimedDB(db *sql.DB, collector *perf.Collector, threshold time.Duration) *TimedDB {
	if threshold <= 0 {
		threshold = DefaultSlowQueryMs * time.Millisecond
	}
	return &TimedDB{db: db, collector: collector, threshold: threshold}
}

// RawDB returns the underlying *sql.DB for migrations.
func (t *TimedDB) RawDB() *sql.DB {
	return t.db
}

// Close closes the underlying database.
func (t *TimedDB) Close() error {
	return t.db.Close()
}

func (t *TimedDB) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	start := time.Now()
	result, err := t.db.ExecContext(ctx, query, args...)
	t.observe(query, start, err)
	return result, err
}

func (t *TimedDB) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	start := time.Now()
	rows, err := t.db.QueryContext(ctx, query, args...)
	t.observe(query, start, err)
	return rows, err
}

func (t *TimedDB) QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row {
	start := time.Now()
	row := t.db.QueryRowContext(ctx, query, args...)
	t.observe(query, start, row.Err())
	return row
}

func (t *TimedDB) observe(query string, start time.Time, err error) {
	elapsed := time.Since(start)
	label := QueryLabel(query)
	durationMs := float64(elapsed.Microseconds()) / 1000.0
	failed := err != nil && !errors.Is(err, sql.ErrNoRows)

	switch {
	case failed:
		slog.Warn("query_failed", "query", label, "duration_ms", durationMs, "error", err)
	case elapsed >= t.threshold:
		slog.Warn("slow_query", "query", label, "duration_ms", durationMs)
	default:
		slog.Debug("query", "query", label, "duration_ms", durationMs)
	}

	if t.collector != nil {
		t.collector.Record(perf.Entry{
			Kind:       perf.KindQuery,
			Path:       label,
			Failed:     failed,
			DurationMs: durationMs,
			Timestamp:  start,
		})
	}
}

// QueryLabel reduces a SQL statement to "VERB table" so perf entries group by shape
// rather than by literal text.
func QueryLabel(query string) string {
	fields := strings.Fields(query)
	if len(fields) == 0 {
		return "empty"
	}
	verb := strings.ToUpper(fields[0])
	var marker string
	switch verb {
	case "SELECT", "DELETE":
		marker = "FROM"
	case "INSERT":
		marker = "INTO"
	case "UPDATE":
		if len(fields) > 1 {
			return verb + " " + fields[1]
		}
		return verb
	default:
		return verb
	}
	for i, f := range fields {
		if strings.EqualFold(f, marker) && i+1 < len(fields) {
			return verb + " " + strings.Trim(fields[i+1], "(")
		}
	}
	return verb
}
