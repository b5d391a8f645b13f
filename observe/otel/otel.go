// Package otel bridges the observe.Sink to OpenTelemetry tracing.
//
// It converts engine progress events into OTel spans so that batches, runs,
// and generate/judge calls are visible in any OpenTelemetry-compatible
// backend (Jaeger, Zipkin, Grafana, etc.).
package otel

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/arbiterhq/arbiter-go/observe"
)

const instrumentationName = "github.com/arbiterhq/arbiter-go"

// Sink implements observe.Sink by emitting OpenTelemetry spans.
type Sink struct {
	tracer trace.Tracer
}

// NewSink creates an OTel sink using the given TracerProvider.
// If tp is nil, it uses a noop tracer provider.
func NewSink(tp trace.TracerProvider) *Sink {
	if tp == nil {
		tp = noop.NewTracerProvider()
	}
	return &Sink{
		tracer: tp.Tracer(instrumentationName),
	}
}

// Emit converts a progress event into an OTel span.
func (s *Sink) Emit(_ context.Context, event observe.Event) error {
	event.Normalize()

	_, span := s.tracer.Start(context.Background(), spanNameFor(event), trace.WithTimestamp(event.Timestamp))

	attrs := []attribute.KeyValue{
		attribute.String("eval.event.category", string(event.Category)),
		attribute.String("eval.event.level", string(event.Level)),
	}
	if event.BatchID != "" {
		attrs = append(attrs, attribute.String("eval.batch.id", event.BatchID))
	}
	if event.RunID != "" {
		attrs = append(attrs, attribute.String("eval.run.id", event.RunID))
	}
	if event.Message != "" {
		attrs = append(attrs, attribute.String("eval.message", truncate(event.Message, 1024)))
	}
	for k, v := range event.Attributes {
		attrs = append(attrs, attribute.String("eval.attr."+k, fmt.Sprintf("%v", v)))
	}
	span.SetAttributes(attrs...)

	if event.Level == observe.LevelError {
		span.SetStatus(codes.Error, event.Error)
		if event.Error != "" {
			span.RecordError(fmt.Errorf("%s", event.Error))
		}
	} else {
		span.SetStatus(codes.Ok, "")
	}

	span.End(trace.WithTimestamp(event.Timestamp))
	return nil
}

func spanNameFor(event observe.Event) string {
	switch event.Category {
	case observe.CategoryBatch:
		return "eval.batch"
	case observe.CategoryRun:
		return "eval.run"
	case observe.CategoryGenerate:
		return "eval.generate"
	case observe.CategoryJudge:
		return "eval.judge"
	case observe.CategoryParse:
		return "eval.parse"
	case observe.CategoryScore:
		return "eval.score"
	default:
		return "eval.event"
	}
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "…"
}
