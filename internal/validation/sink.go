package validation

import (
	"context"
	"log/slog"
	"time"

	id "complia/pkg/domain"
)

// Trigger records what initiated a validation run.
type Trigger string

const (
	TriggerAdHoc     Trigger = "AD_HOC"
	TriggerScheduled Trigger = "SCHEDULED"
)

// Event is the structured observability record emitted once per Validate
// call. The engine does not format or export telemetry itself; an external
// adapter wires sinks to whatever backend is in use.
type Event struct {
	TenantID      id.TenantID
	Sectors       []id.Sector
	Jurisdictions []string
	Trigger       Trigger
	Duration      time.Duration
	OutcomeCounts map[id.Outcome]int
	Score         float64
	IRR           id.IRRLevel
	Err           error
}

// Sink consumes validation events. Implementations must be non-blocking or
// fast; the orchestrator calls Emit synchronously after the join point.
type Sink interface {
	Emit(ctx context.Context, event Event)
}

// MultiSink fans one event out to several sinks.
type MultiSink []Sink

func (m MultiSink) Emit(ctx context.Context, event Event) {
	for _, s := range m {
		s.Emit(ctx, event)
	}
}

// LogSink writes events to structured logs.
type LogSink struct {
	logger *slog.Logger
}

// NewLogSink builds a sink over the given logger.
func NewLogSink(logger *slog.Logger) *LogSink {
	return &LogSink{logger: logger}
}

func (s *LogSink) Emit(ctx context.Context, event Event) {
	if s.logger == nil {
		return
	}
	attrs := []any{
		"tenant_id", event.TenantID,
		"sectors", event.Sectors,
		"trigger", event.Trigger,
		"duration_ms", event.Duration.Milliseconds(),
		"pass", event.OutcomeCounts[id.OutcomePass],
		"fail", event.OutcomeCounts[id.OutcomeFail],
		"partial", event.OutcomeCounts[id.OutcomePartial],
		"score", event.Score,
		"irr", event.IRR,
	}
	if event.Err != nil {
		attrs = append(attrs, "error", event.Err)
		s.logger.ErrorContext(ctx, "validation run failed", attrs...)
		return
	}
	s.logger.InfoContext(ctx, "validation run completed", attrs...)
}
