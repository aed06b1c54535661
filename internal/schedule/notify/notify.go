// Package notify delivers scheduled-run failure notices to a tenant's
// configured targets.
package notify

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"complia/internal/platform/kafka"
	id "complia/pkg/domain"
)

// Failure describes one failed scheduled run.
type Failure struct {
	ScheduleID id.ScheduleID
	TenantID   id.TenantID
	Targets    []string
	Reason     string
	OccurredAt time.Time
}

// Notifier delivers failure notices. Delivery problems are the notifier's
// own concern; the scheduler tick never fails because a notice could not be
// sent.
type Notifier interface {
	NotifyFailure(ctx context.Context, f Failure)
}

// LogNotifier writes notices to structured logs. It is the fallback when no
// broker is configured.
type LogNotifier struct {
	logger *slog.Logger
}

// NewLogNotifier builds a notifier over the given logger.
func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) NotifyFailure(ctx context.Context, f Failure) {
	if n.logger == nil {
		return
	}
	n.logger.ErrorContext(ctx, "scheduled validation failed",
		"schedule_id", f.ScheduleID,
		"tenant_id", f.TenantID,
		"targets", f.Targets,
		"reason", f.Reason,
	)
}

// KafkaNotifier publishes notices to the configured topic, keyed by tenant
// so one tenant's notices stay ordered.
type KafkaNotifier struct {
	producer *kafka.Producer
	topic    string
	logger   *slog.Logger
}

// NewKafkaNotifier builds a notifier over the shared producer.
func NewKafkaNotifier(producer *kafka.Producer, topic string, logger *slog.Logger) *KafkaNotifier {
	return &KafkaNotifier{producer: producer, topic: topic, logger: logger}
}

type failureMessage struct {
	ScheduleID string    `json:"schedule_id"`
	TenantID   string    `json:"tenant_id"`
	Targets    []string  `json:"targets"`
	Reason     string    `json:"reason"`
	OccurredAt time.Time `json:"occurred_at"`
}

func (n *KafkaNotifier) NotifyFailure(ctx context.Context, f Failure) {
	payload, err := json.Marshal(failureMessage{
		ScheduleID: f.ScheduleID.String(),
		TenantID:   f.TenantID.String(),
		Targets:    f.Targets,
		Reason:     f.Reason,
		OccurredAt: f.OccurredAt,
	})
	if err != nil {
		n.logError(ctx, f, err)
		return
	}
	if err := n.producer.Publish(ctx, n.topic, []byte(f.TenantID.String()), payload); err != nil {
		n.logError(ctx, f, err)
	}
}

func (n *KafkaNotifier) logError(ctx context.Context, f Failure, err error) {
	if n.logger != nil {
		n.logger.ErrorContext(ctx, "failure notice delivery failed",
			"schedule_id", f.ScheduleID,
			"tenant_id", f.TenantID,
			"error", err,
		)
	}
}

// Multi fans one notice out to several notifiers.
type Multi []Notifier

func (m Multi) NotifyFailure(ctx context.Context, f Failure) {
	for _, n := range m {
		n.NotifyFailure(ctx, f)
	}
}

var (
	_ Notifier = (*LogNotifier)(nil)
	_ Notifier = (*KafkaNotifier)(nil)
	_ Notifier = (Multi)(nil)
)
