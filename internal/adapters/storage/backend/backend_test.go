package backend

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"academy/internal/adapters/http/perf"
	"academy/internal/config"
	"academy/internal/domain/question"
)

// TestOpen_SQLiteMigratesAndRecordsQueries verifies the sqlite backend is usable and timed.
func TestOpen_SQLiteMigratesAndRecordsQueries(t *testing.T) {
	ctx := context.Background()
	collector := perf.NewCollector(100)
	cfg := config.Config{Store: config.StoreSQLite, SQLitePath: filepath.Join(t.TempDir(), "academy.db")}

	s, err := Open(ctx, cfg, collector)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer s.Close()

	q, err := question.New("q1", "mem_1", "Ada", "ada@example.com", "Which lens for portraits?", "/lessons/portraits", time.Now().UTC())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := s.Questions.Create(ctx, q); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := s.Questions.GetByID(ctx, "q1"); err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if collector.TotalRecorded() == 0 {
		t.Error("expected queries recorded by the collector")
	}

	// reopening an existing file is a no-op migration
	s2, err := Open(ctx, cfg, nil)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	s2.Close()
}

// TestOpen_Memory verifies the memory backend.
func TestOpen_Memory(t *testing.T) {
	s, err := Open(context.Background(), config.Config{Store: config.StoreMemory}, nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer s.Close()
	if s.Questions == nil || s.Audit == nil {
		t.Error("stores not set")
	}
}

// TestOpen_Unknown verifies unknown kinds are rejected.
func TestOpen_Unknown(t *testing.T) {
	if _, err := Open(context.Background(), config.Config{Store: "mongo"}, nil); err == nil {
		t.Error("expected error")
	}
}
