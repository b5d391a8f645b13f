// Package redistream fans progress events out to a Redis Stream so external
// consumers (dashboards, workers) can follow batches without coupling to the
// engine process.
package redistream

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	goredis "github.com/redis/go-redis/v9"

	"github.com/arbiterhq/arbiter-go/observe"
)

const defaultStream = "arbiter:events"

type Sink struct {
	client   *goredis.Client
	addr     string
	password string
	db       int
	stream   string
	maxLen   int64
}

type Option func(*Sink)

func WithClient(client *goredis.Client) Option {
	return func(s *Sink) {
		if client != nil {
			s.client = client
		}
	}
}

func WithStream(stream string) Option {
	return func(s *Sink) {
		stream = strings.TrimSpace(stream)
		if stream != "" {
			s.stream = stream
		}
	}
}

func WithPassword(password string) Option {
	return func(s *Sink) { s.password = password }
}

func WithDB(db int) Option {
	return func(s *Sink) { s.db = db }
}

// WithMaxLen caps the stream with approximate trimming.
func WithMaxLen(maxLen int64) Option {
	return func(s *Sink) {
		if maxLen > 0 {
			s.maxLen = maxLen
		}
	}
}

func New(addr string, opts ...Option) (*Sink, error) {
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return nil, fmt.Errorf("redis addr is required")
	}
	s := &Sink{
		addr:   addr,
		stream: defaultStream,
		maxLen: 10000,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.client == nil {
		s.client = goredis.NewClient(&goredis.Options{Addr: s.addr, Password: s.password, DB: s.db})
	}
	if err := s.client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return s, nil
}

func (s *Sink) Emit(ctx context.Context, event observe.Event) error {
	if s == nil || s.client == nil {
		return nil
	}
	event.Normalize()
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal progress event: %w", err)
	}
	err = s.client.XAdd(ctx, &goredis.XAddArgs{
		Stream: s.stream,
		MaxLen: s.maxLen,
		Approx: true,
		Values: map[string]any{
			"payload":  string(payload),
			"batch_id": event.BatchID,
			"run_id":   event.RunID,
			"level":    string(event.Level),
			"category": string(event.Category),
		},
	}).Err()
	if err != nil {
		return fmt.Errorf("failed to publish progress event: %w", err)
	}
	return nil
}

func (s *Sink) Close() error {
	if s == nil || s.client == nil {
		return nil
	}
	return s.client.Close()
}

var _ observe.Sink = (*Sink)(nil)
