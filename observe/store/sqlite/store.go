package sqlite

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/arbiterhq/arbiter-go/observe"
	obsstore "github.com/arbiterhq/arbiter-go/observe/store"
)

//go:embed schema.sql
var schemaSQL string

const defaultLimit = 200

type Store struct {
	db *sql.DB
}

func New(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("sqlite audit path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create audit db dir: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open audit sqlite db: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL;"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable wal: %w", err)
	}
	if _, err := db.ExecContext(context.Background(), schemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize audit schema: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) SaveEvent(ctx context.Context, event observe.Event) error {
	if s == nil || s.db == nil {
		return nil
	}
	event.Normalize()
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	attrs, err := json.Marshal(event.Attributes)
	if err != nil {
		return fmt.Errorf("failed to encode event attributes: %w", err)
	}
	const q = `
INSERT INTO progress_events (
  event_id, batch_id, run_id, level, category, message, error, attributes, timestamp
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?);
`
	_, err = s.db.ExecContext(
		ctx,
		q,
		event.ID,
		event.BatchID,
		event.RunID,
		string(event.Level),
		string(event.Category),
		event.Message,
		event.Error,
		string(attrs),
		event.Timestamp.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("failed to save progress event: %w", err)
	}
	return nil
}

func (s *Store) ListEventsByRun(ctx context.Context, runID string, query obsstore.ListQuery) ([]observe.Event, error) {
	if strings.TrimSpace(runID) == "" {
		return nil, fmt.Errorf("runID is required")
	}
	return s.list(ctx, "run_id = ?", runID, query)
}

func (s *Store) ListEventsByBatch(ctx context.Context, batchID string, query obsstore.ListQuery) ([]observe.Event, error) {
	if strings.TrimSpace(batchID) == "" {
		return nil, fmt.Errorf("batchID is required")
	}
	return s.list(ctx, "batch_id = ?", batchID, query)
}

func (s *Store) list(ctx context.Context, predicate string, value string, query obsstore.ListQuery) ([]observe.Event, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	limit := query.Limit
	if limit <= 0 {
		limit = defaultLimit
	}
	offset := query.Offset
	if offset < 0 {
		offset = 0
	}

	q := fmt.Sprintf(`
SELECT event_id, batch_id, run_id, level, category, message, error, attributes, timestamp
FROM progress_events
WHERE %s
ORDER BY timestamp ASC
LIMIT ? OFFSET ?;
`, predicate)

	rows, err := s.db.QueryContext(ctx, q, value, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list progress events: %w", err)
	}
	defer rows.Close()

	out := make([]observe.Event, 0, limit)
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate progress events: %w", err)
	}
	return out, nil
}

func scanEvent(scanner interface{ Scan(dest ...any) error }) (observe.Event, error) {
	var (
		e        observe.Event
		level    string
		category string
		attrs    string
		tsRaw    string
	)
	if err := scanner.Scan(
		&e.ID,
		&e.BatchID,
		&e.RunID,
		&level,
		&category,
		&e.Message,
		&e.Error,
		&attrs,
		&tsRaw,
	); err != nil {
		return observe.Event{}, fmt.Errorf("failed to scan progress event: %w", err)
	}
	e.Level = observe.Level(level)
	e.Category = observe.Category(category)
	if tsRaw != "" {
		ts, err := time.Parse(time.RFC3339Nano, tsRaw)
		if err == nil {
			e.Timestamp = ts
		}
	}
	if attrs != "" {
		_ = json.Unmarshal([]byte(attrs), &e.Attributes)
	}
	e.Normalize()
	return e, nil
}

func (s *Store) AggregateMetrics(ctx context.Context, query obsstore.MetricsQuery) (obsstore.MetricsSummary, error) {
	if s == nil || s.db == nil {
		return obsstore.MetricsSummary{}, nil
	}
	args := []any{}
	where := ""
	if query.Since != nil {
		where = " AND timestamp >= ?"
		args = append(args, query.Since.UTC().Format(time.RFC3339Nano))
	}

	counter := func(category observe.Category, level observe.Level, messagePrefix string) (int64, error) {
		q := "SELECT COUNT(*) FROM progress_events WHERE level = ?"
		qArgs := []any{string(level)}
		if category != "" {
			q += " AND category = ?"
			qArgs = append(qArgs, string(category))
		}
		if messagePrefix != "" {
			q += " AND message LIKE ?"
			qArgs = append(qArgs, messagePrefix+"%")
		}
		q += where
		qArgs = append(qArgs, args...)
		var n int64
		if err := s.db.QueryRowContext(ctx, q, qArgs...).Scan(&n); err != nil {
			return 0, err
		}
		return n, nil
	}

	metrics := obsstore.MetricsSummary{}
	var err error
	if metrics.BatchesStarted, err = counter(observe.CategoryBatch, observe.LevelInfo, "batch started"); err != nil {
		return obsstore.MetricsSummary{}, fmt.Errorf("metrics batches started: %w", err)
	}
	if metrics.RunsCompleted, err = counter(observe.CategoryScore, observe.LevelInfo, "run completed"); err != nil {
		return obsstore.MetricsSummary{}, fmt.Errorf("metrics runs completed: %w", err)
	}
	if metrics.RunsFailed, err = counter("", observe.LevelError, "run failed"); err != nil {
		return obsstore.MetricsSummary{}, fmt.Errorf("metrics runs failed: %w", err)
	}
	if metrics.GenerateFailures, err = counter(observe.CategoryGenerate, observe.LevelError, ""); err != nil {
		return obsstore.MetricsSummary{}, fmt.Errorf("metrics generate failures: %w", err)
	}
	if metrics.JudgeFailures, err = counter(observe.CategoryJudge, observe.LevelError, ""); err != nil {
		return obsstore.MetricsSummary{}, fmt.Errorf("metrics judge failures: %w", err)
	}
	if metrics.ParseFailures, err = counter(observe.CategoryParse, observe.LevelError, ""); err != nil {
		return obsstore.MetricsSummary{}, fmt.Errorf("metrics parse failures: %w", err)
	}

	return metrics, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

var _ obsstore.Store = (*Store)(nil)
