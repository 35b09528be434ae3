package storage

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

var postgresSchema = []string{
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
		answered_at TIMESTAMPTZ,
		ai_answer TEXT,
		ai_answered_at TIMESTAMPTZ,
		ai_model TEXT,
		archived BOOLEAN NOT NULL DEFAULT FALSE,
		is_example BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		member_notified_at TIMESTAMPTZ
	)`,
	`CREATE INDEX IF NOT EXISTS idx_question_member_created ON academy_question(member_id, created_at)`,
	`CREATE INDEX IF NOT EXISTS idx_question_status ON academy_question(status)`,
	`CREATE TABLE IF NOT EXISTS audit_event (
		id TEXT PRIMARY KEY,
		timestamp TIMESTAMPTZ NOT NULL,
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
	`CREATE INDEX IF NOT EXISTS idx_audit_resource ON audit_event(resource_id, timestamp)`,
}

// OpenPostgres connects a pool and ensures the schema exists.
// PRE: dsn is a valid Postgres connection string
// POST: returns a pinged pool with tables created
func OpenPostgres(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("database unreachable: %w", err)
	}
	if err := MigratePostgres(ctx, pool); err != nil {
		pool.Close()
		return nil, err
	}
	return pool, nil
}

// MigratePostgres creates the tables if they do not exist.
// POST: re-running is a no-op
func MigratePostgres(ctx context.Context, pool *pgxpool.Pool) error {
	for _, q := range postgresSchema {
		if _, err := pool.Exec(ctx, q); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}
	return nil
}
