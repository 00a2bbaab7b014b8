package metrics

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"dinner-planner/internal/database"
	"dinner-planner/internal/llm"
)

func TestStore(t *testing.T) {
	ctx := context.Background()
	db, err := database.NewDB(filepath.Join(t.TempDir(), "metrics.db"))
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	now := time.Date(2026, 3, 14, 18, 30, 0, 0, time.UTC)
	store := NewStore(db.SQL)
	store.now = func() time.Time { return now }

	records := []ExecutionMetric{
		{AgentName: "clipper", Model: "gemini", PromptTokens: 100, CompletionTokens: 10, Timestamp: now.Add(-time.Hour)},
		{AgentName: "clipper", Model: "gemini", PromptTokens: 50, CompletionTokens: 5, Timestamp: now.Add(-2 * time.Hour)},
		{AgentName: "clipper", Model: "groq", PromptTokens: 7, CompletionTokens: 1, Timestamp: now.AddDate(0, 0, -40)},
	}
	for _, r := range records {
		if err := store.Record(ctx, r); err != nil {
			t.Fatalf("Record failed: %v", err)
		}
	}

	t.Run("RecordMetaSkipsEmptyUsage", func(t *testing.T) {
		if err := store.RecordMeta(ctx, llm.Meta{AgentName: "clipper"}); err != nil {
			t.Fatal(err)
		}
	})

	t.Run("GetDailyUsage", func(t *testing.T) {
		usage, err := store.GetDailyUsage(ctx, 7)
		if err != nil {
			t.Fatalf("GetDailyUsage failed: %v", err)
		}
		if len(usage) != 1 {
			t.Fatalf("Expected 1 day of usage, got %d: %+v", len(usage), usage)
		}
		u := usage[0]
		if u.Date != "2026-03-14" {
			t.Errorf("Expected date 2026-03-14, got %s", u.Date)
		}
		if u.TotalPrompt != 150 || u.TotalCompletion != 15 || u.TotalExecution != 2 {
			t.Errorf("Unexpected totals: %+v", u)
		}
	})

	t.Run("Cleanup", func(t *testing.T) {
		deleted, err := store.Cleanup(ctx, 30)
		if err != nil {
			t.Fatalf("Cleanup failed: %v", err)
		}
		if deleted != 1 {
			t.Errorf("Expected 1 deleted record, got %d", deleted)
		}
		usage, _ := store.GetDailyUsage(ctx, 365)
		if len(usage) != 1 {
			t.Errorf("Expected only today's usage to remain, got %+v", usage)
		}
	})
}

func TestMapUsage(t *testing.T) {
	m := MapUsage("clipper", llm.TokenUsage{PromptTokens: 3, CompletionTokens: 4, Model: "m"}, 1500*time.Millisecond)
	if m.LatencyMS != 1500 || m.Model != "m" || m.PromptTokens != 3 {
		t.Errorf("Unexpected metric: %+v", m)
	}
}

func TestGetSysHealth(t *testing.T) {
	dir := t.TempDir()
	health := GetSysHealth(dir)
	if health.Goroutines < 1 {
		t.Errorf("Expected at least one goroutine, got %d", health.Goroutines)
	}
	if health.DataDirSize != "0 B" {
		t.Errorf("Expected empty dir to be '0 B', got %s", health.DataDirSize)
	}
}

func TestFormatBytes(t *testing.T) {
	cases := map[int64]string{
		512:             "512 B",
		2048:            "2.0 KB",
		5 * 1024 * 1024: "5.0 MB",
	}
	for in, want := range cases {
		if got := formatBytes(in); got != want {
			t.Errorf("formatBytes(%d): expected %s, got %s", in, want, got)
		}
	}
}
