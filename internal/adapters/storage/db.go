package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// TimeLayout is the fixed-width UTC layout used for every timestamp column in SQLite,
// so lexical order equals chronological order.
const TimeLayout = "2006-01-02T15:04:05.000000000Z"

// FormatTime renders t for a TEXT column. The zero time becomes NULL.
func FormatTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t.UTC().Format(TimeLayout)
}

// ParseTime reads a nullable TEXT timestamp column.
func ParseTime(s sql.NullString) time.Time {
	if !s.Valid || s.String == "" {
		return time.Time{}
	}
	t, err := time.Parse(TimeLayout, s.String)
	if err != nil {
		// rows written by older tooling used RFC3339
		t, _ = time.Parse(time.RFC3339Nano, s.String)
	}
	return t
}

// NullString maps "" to NULL.
func NullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// migration is one forward-only schema step.
type migration struct {
	version     int
	description string
	stmts       []string
}

var migrations = []migration{
	{
		version:     1,
		description: "questions and audit trail",
		stmts: []string{
			`CREATE TABLE IF NOT EXISTS academy_question (
				id TEXT PRIMARY KEY,
				member_id TEXT NOT NULL,
				member_name TEXT NOT NULL DEFAULT '',
				member_email TEXT NOT NULL DEFAULT '',
				question TEXT NOT NULL,
				page_url TEXT NOT NULL,
				status TEXT NOT NULL DEFAULT 'queued',
				answer TEXT,
				answer_source TEXT,
				answered_by TEXT,
				answered_at TEXT,
				ai_answer TEXT,
				ai_answered_at TEXT,
				ai_model TEXT,
				archived INTEGER NOT NULL DEFAULT 0,
				is_example INTEGER NOT NULL DEFAULT 0,
				created_at TEXT NOT NULL,
				updated_at TEXT NOT NULL,
				member_notified_at TEXT
			)`,
			`CREATE TABLE IF NOT EXISTS audit_event (
				id TEXT PRIMARY KEY,
				timestamp TEXT NOT NULL,
				category TEXT NOT NULL,
				action TEXT NOT NULL,
				severity TEXT NOT NULL DEFAULT 'info',
				actor_id TEXT NOT NULL DEFAULT '',
				actor_email TEXT NOT NULL DEFAULT '',
				actor_role TEXT NOT NULL DEFAULT '',
				resource_id TEXT NOT NULL DEFAULT '',
				resource_type TEXT NOT NULL DEFAULT '',
				description TEXT NOT NULL DEFAULT '',
				metadata TEXT NOT NULL DEFAULT ''
			)`,
		},
	},
	{
		version:     2,
		description: "listing indexes",
		stmts: []string{
			`CREATE INDEX IF NOT EXISTS idx_question_member_created ON academy_question(member_id, created_at)`,
			`CREATE INDEX IF NOT EXISTS idx_question_status ON academy_question(status)`,
			`CREATE INDEX IF NOT EXISTS idx_audit_resource ON audit_event(resource_id, timestamp)`,
		},
	},
}

// LatestSchemaVersion is the version MigrateDB brings a database to.
func LatestSchemaVersion() int {
	return migrations[len(migrations)-1].version
}

// SchemaVersion returns the applied schema version, 0 for an untracked database.
// PRE: db is a valid SQLite connection
// POST: returns the highest recorded version
func SchemaVersion(db *sql.DB) (int, error) {
	var exists int
	err := db.QueryRow(`SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='schema_version'`).Scan(&exists)
	if err != nil {
		return 0, fmt.Errorf("check schema_version: %w", err)
	}
	if exists == 0 {
		return 0, nil
	}
	var v sql.NullInt64
	if err := db.QueryRow(`SELECT MAX(version) FROM schema_version`).Scan(&v); err != nil {
		return 0, fmt.Errorf("read schema_version: %w", err)
	}
	return int(v.Int64), nil
}

// MigrateDB applies every pending migration, each in its own transaction.
// PRE: db is a valid SQLite connection
// POST: schema is at LatestSchemaVersion; re-running is a no-op
func MigrateDB(db *sql.DB) error {
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS schema_version (
		version INTEGER PRIMARY KEY,
		description TEXT NOT NULL,
		applied_at TEXT NOT NULL
	)`); err != nil {
		return fmt.Errorf("create schema_version: %w", err)
	}

	current, err := SchemaVersion(db)
	if err != nil {
		return err
	}

	for _, m := range migrations {
		if m.version <= current {
			continue
		}
		if err := applyMigration(db, m); err != nil {
			return fmt.Errorf("migration %d (%s): %w", m.version, m.description, err)
		}
		slog.Info("schema_migrated", "version", m.version, "description", m.description)
	}
	return nil
}

func applyMigration(db *sql.DB, m migration) (err error) {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			err = errors.Join(err, tx.Rollback())
		}
	}()
	for _, stmt := range m.stmts {
		if _, err = tx.Exec(stmt); err != nil {
			return err
		}
	}
	if _, err = tx.Exec(`INSERT INTO schema_version (version, description, applied_at) VALUES (?, ?, ?)`,
		m.version, m.description, time.Now().UTC().Format(TimeLayout)); err != nil {
		return err
	}
	return tx.Commit()
}
