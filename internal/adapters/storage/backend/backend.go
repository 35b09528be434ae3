// Package backend opens the configured question and audit stores.
package backend

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	_ "modernc.org/sqlite"

	"academy/internal/adapters/http/perf"
	"academy/internal/adapters/storage"
	auditStore "academy/internal/adapters/storage/audit"
	questionStore "academy/internal/adapters/storage/question"
	"academy/internal/config"
)

// Stores is an opened backend. Close releases its connections.
type Stores struct {
	Kind      string
	Questions questionStore.Store
	Audit     auditStore.Store
	Close     func()
}

// SQLiteDSN adds the pragmas every connection needs: WAL, busy timeout and
// synchronous NORMAL.
func SQLiteDSN(path string) string {
	return path + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(ON)&_pragma=synchronous(NORMAL)"
}

// Open connects and migrates the store selected by cfg.Store.
// PRE: cfg passed Validate
// POST: schema is current; Close is non-nil
func Open(ctx context.Context, cfg config.Config, collector *perf.Collector) (*Stores, error) {
	switch cfg.Store {
	case config.StorePostgres:
		pool, err := storage.OpenPostgres(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		slog.Info("store_opened", "kind", cfg.Store)
		return &Stores{
			Kind:      cfg.Store,
			Questions: questionStore.NewPostgresStore(pool),
			Audit:     auditStore.NewPostgresStore(pool),
			Close:     pool.Close,
		}, nil

	case config.StoreMemory:
		slog.Warn("store_opened", "kind", cfg.Store, "note", "data is lost on restart")
		return &Stores{
			Kind:      cfg.Store,
			Questions: questionStore.NewMemoryStore(),
			Audit:     auditStore.NewMemoryStore(),
			Close:     func() {},
		}, nil

	case config.StoreSQLite:
		db, err := sql.Open("sqlite", SQLiteDSN(cfg.SQLitePath))
		if err != nil {
			return nil, fmt.Errorf("open sqlite: %w", err)
		}
		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(25)
		if err := db.PingContext(ctx); err != nil {
			db.Close()
			return nil, fmt.Errorf("database unreachable: %w", err)
		}
		if err := storage.MigrateDB(db); err != nil {
			db.Close()
			return nil, fmt.Errorf("migrate: %w", err)
		}
		timed := storage.NewTimedDB(db, collector, storage.SlowQueryThreshold())
		slog.Info("store_opened", "kind", cfg.Store, "path", cfg.SQLitePath, "schema", storage.LatestSchemaVersion())
		return &Stores{
			Kind:      cfg.Store,
			Questions: questionStore.NewSQLiteStore(timed),
			Audit:     auditStore.NewSQLiteStore(timed),
			Close:     func() { db.Close() },
		}, nil
	}
	return nil, fmt.Errorf("unknown store %q", cfg.Store)
}
