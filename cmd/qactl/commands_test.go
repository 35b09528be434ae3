package main

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"academy/internal/adapters/storage/backend"
	questionStore "academy/internal/adapters/storage/question"
	"academy/internal/application/projections"
	"academy/internal/domain/question"
)

var cliNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func memoryStores(t *testing.T) *backend.Stores {
	t.Helper()
	s := &backend.Stores{Kind: "memory", Questions: questionStore.NewMemoryStore(), Close: func() {}}
	ctx := context.Background()

	waiting, _ := question.New("q-waiting", "mem_1", "Ada", "ada@example.com", "How do I focus stack macro shots?", "/lessons/macro", cliNow.Add(-3*time.Hour))
	answered, _ := question.New("q-answered", "mem_2", "Bob", "bob@example.com", "Is a polariser worth it?", "/lessons/filters", cliNow.Add(-5*time.Hour))
	_ = answered.ApplyManualAnswer("Yes, for skies and water.", "Alan", cliNow.Add(-3*time.Hour))
	for _, q := range []question.Question{waiting, answered} {
		if err := s.Questions.Create(ctx, q); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}
	return s
}

// TestRunStats_JSON verifies the JSON output matches the stats projection.
func TestRunStats_JSON(t *testing.T) {
	var buf bytes.Buffer
	if err := runStats(context.Background(), &buf, memoryStores(t), "7d", true, cliNow); err != nil {
		t.Fatalf("runStats: %v", err)
	}
	var stats projections.QuestionStats
	if err := json.Unmarshal(buf.Bytes(), &stats); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if stats.Posted != 2 || stats.Answered != 1 || stats.Outstanding != 1 || stats.MembersWaiting != 1 {
		t.Errorf("stats = %+v", stats)
	}
	if stats.AvgResponseHours == nil || *stats.AvgResponseHours != 2 {
		t.Errorf("avg = %v, want 2", stats.AvgResponseHours)
	}
}

// TestRunStats_Text verifies the table output and window validation.
func TestRunStats_Text(t *testing.T) {
	var buf bytes.Buffer
	if err := runStats(context.Background(), &buf, memoryStores(t), "all", false, cliNow); err != nil {
		t.Fatalf("runStats: %v", err)
	}
	if !strings.Contains(buf.String(), "Avg response:") || !strings.Contains(buf.String(), "2.0h") {
		t.Errorf("output = %s", buf.String())
	}
	if err := runStats(context.Background(), &buf, memoryStores(t), "1y", false, cliNow); err == nil {
		t.Error("expected error for unknown window")
	}
}

// TestRunList_Outstanding verifies the default status filter.
func TestRunList_Outstanding(t *testing.T) {
	var buf bytes.Buffer
	if err := runList(context.Background(), &buf, memoryStores(t), "outstanding", "", 50); err != nil {
		t.Fatalf("runList: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "q-waiting") || strings.Contains(out, "q-answered") {
		t.Errorf("output = %s", out)
	}
	if !strings.Contains(out, "1 of 1") {
		t.Errorf("missing total: %s", out)
	}
}

// TestRunList_InvalidStatus verifies bad statuses are rejected.
func TestRunList_InvalidStatus(t *testing.T) {
	if err := runList(context.Background(), &bytes.Buffer{}, memoryStores(t), "pending", "", 10); err == nil {
		t.Error("expected error")
	}
}

// TestTruncate verifies long questions are shortened on one line.
func TestTruncate(t *testing.T) {
	if got := truncate("short\nquestion", 60); got != "short question" {
		t.Errorf("truncate = %q", got)
	}
	if got := truncate(strings.Repeat("a", 80), 10); len([]rune(got)) != 10 {
		t.Errorf("truncate length = %d", len([]rune(got)))
	}
}
