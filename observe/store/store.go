package store

import (
	"context"
	"time"

	"github.com/arbiterhq/arbiter-go/observe"
)

type ListQuery struct {
	Limit  int
	Offset int
}

type MetricsQuery struct {
	Since *time.Time
}

type MetricsSummary struct {
	BatchesStarted   int64 `json:"batchesStarted"`
	RunsCompleted    int64 `json:"runsCompleted"`
	RunsFailed       int64 `json:"runsFailed"`
	GenerateFailures int64 `json:"generateFailures"`
	JudgeFailures    int64 `json:"judgeFailures"`
	ParseFailures    int64 `json:"parseFailures"`
}

// Store persists progress notifications so a completed batch retains a full
// audit trail per run.
type Store interface {
	SaveEvent(ctx context.Context, event observe.Event) error
	ListEventsByRun(ctx context.Context, runID string, query ListQuery) ([]observe.Event, error)
	ListEventsByBatch(ctx context.Context, batchID string, query ListQuery) ([]observe.Event, error)
	AggregateMetrics(ctx context.Context, query MetricsQuery) (MetricsSummary, error)
	Close() error
}

// SinkFor adapts a Store into an observe.Sink.
func SinkFor(s Store) observe.Sink {
	return observe.SinkFunc(func(ctx context.Context, event observe.Event) error {
		return s.SaveEvent(ctx, event)
	})
}
