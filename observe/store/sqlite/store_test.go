package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/arbiterhq/arbiter-go/observe"
	obsstore "github.com/arbiterhq/arbiter-go/observe/store"
)

func TestStore_SaveListAndMetrics(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "audit.db")
	store, err := New(dbPath)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	defer func() { _ = store.Close() }()

	ctx := context.Background()
	now := time.Now().UTC()
	inputs := []observe.Event{
		{BatchID: "b1", Level: observe.LevelInfo, Category: observe.CategoryBatch, Message: "batch started: goal 1 wins within 5 attempts", Timestamp: now},
		{BatchID: "b1", RunID: "r1", Level: observe.LevelDebug, Category: observe.CategoryGenerate, Message: "test generation started", Timestamp: now.Add(time.Millisecond)},
		{BatchID: "b1", RunID: "r1", Level: observe.LevelInfo, Category: observe.CategoryScore, Message: "run completed: win", Timestamp: now.Add(2 * time.Millisecond)},
		{BatchID: "b1", RunID: "r2", Level: observe.LevelError, Category: observe.CategoryJudge, Message: "run failed", Error: "judge timed out", Timestamp: now.Add(3 * time.Millisecond)},
	}
	for _, in := range inputs {
		if err := store.SaveEvent(ctx, in); err != nil {
			t.Fatalf("save event: %v", err)
		}
	}

	byRun, err := store.ListEventsByRun(ctx, "r1", obsstore.ListQuery{Limit: 20})
	if err != nil {
		t.Fatalf("list by run: %v", err)
	}
	if len(byRun) != 2 {
		t.Fatalf("expected 2 events for r1, got %d", len(byRun))
	}
	if byRun[0].Message != "test generation started" {
		t.Fatalf("expected chronological order, got %q first", byRun[0].Message)
	}
	if byRun[0].ID == "" {
		t.Fatal("expected a generated event id")
	}

	byBatch, err := store.ListEventsByBatch(ctx, "b1", obsstore.ListQuery{Limit: 20})
	if err != nil {
		t.Fatalf("list by batch: %v", err)
	}
	if len(byBatch) != len(inputs) {
		t.Fatalf("expected %d events for b1, got %d", len(inputs), len(byBatch))
	}

	metrics, err := store.AggregateMetrics(ctx, obsstore.MetricsQuery{})
	if err != nil {
		t.Fatalf("aggregate metrics: %v", err)
	}
	if metrics.BatchesStarted != 1 || metrics.RunsCompleted != 1 || metrics.RunsFailed != 1 || metrics.JudgeFailures != 1 {
		t.Fatalf("unexpected metrics: %+v", metrics)
	}
	if metrics.GenerateFailures != 0 || metrics.ParseFailures != 0 {
		t.Fatalf("unexpected failure counters: %+v", metrics)
	}
}

func TestStore_ListPagination(t *testing.T) {
	store, err := New(filepath.Join(t.TempDir(), "audit.db"))
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	defer func() { _ = store.Close() }()

	ctx := context.Background()
	now := time.Now().UTC()
	for i := 0; i < 5; i++ {
		event := observe.Event{
			BatchID:   "b1",
			RunID:     "r1",
			Category:  observe.CategoryRun,
			Message:   "step",
			Timestamp: now.Add(time.Duration(i) * time.Millisecond),
		}
		if err := store.SaveEvent(ctx, event); err != nil {
			t.Fatalf("save event: %v", err)
		}
	}

	page, err := store.ListEventsByRun(ctx, "r1", obsstore.ListQuery{Limit: 2, Offset: 2})
	if err != nil {
		t.Fatalf("list by run: %v", err)
	}
	if len(page) != 2 {
		t.Fatalf("expected page of 2, got %d", len(page))
	}
}

func TestStore_MetricsSince(t *testing.T) {
	store, err := New(filepath.Join(t.TempDir(), "audit.db"))
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	defer func() { _ = store.Close() }()

	ctx := context.Background()
	old := time.Now().UTC().Add(-time.Hour)
	recent := time.Now().UTC()
	events := []observe.Event{
		{BatchID: "b1", Level: observe.LevelInfo, Category: observe.CategoryBatch, Message: "batch started", Timestamp: old},
		{BatchID: "b2", Level: observe.LevelInfo, Category: observe.CategoryBatch, Message: "batch started", Timestamp: recent},
	}
	for _, event := range events {
		if err := store.SaveEvent(ctx, event); err != nil {
			t.Fatalf("save event: %v", err)
		}
	}

	since := recent.Add(-time.Minute)
	metrics, err := store.AggregateMetrics(ctx, obsstore.MetricsQuery{Since: &since})
	if err != nil {
		t.Fatalf("aggregate metrics: %v", err)
	}
	if metrics.BatchesStarted != 1 {
		t.Fatalf("expected only the recent batch, got %d", metrics.BatchesStarted)
	}
}

func TestNewRejectsEmptyPath(t *testing.T) {
	if _, err := New("  "); err == nil {
		t.Fatal("expected error for empty path")
	}
}
