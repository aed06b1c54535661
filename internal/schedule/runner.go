package schedule

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"complia/internal/schedule/lock"
	"complia/internal/schedule/metrics"
	"complia/internal/schedule/notify"
	"complia/internal/validation"
	id "complia/pkg/domain"
	"complia/pkg/platform/sentinel"
	"complia/pkg/requestcontext"
)

// Validator runs one scheduled validation. Implemented by the validation
// service.
type Validator interface {
	ValidateScheduled(ctx context.Context, tenantID id.TenantID, sectors []id.Sector, jurisdictions []string) (*validation.AggregatedReport, error)
}

// History records scheduled runs. Implemented by the history service.
type History interface {
	Record(ctx context.Context, trigger validation.Trigger, report *validation.AggregatedReport) (id.RunID, error)
	RecordFailure(ctx context.Context, trigger validation.Trigger, tenantID id.TenantID, reason string) (id.RunID, error)
}

const (
	defaultInterval = time.Minute
	defaultLockTTL  = 5 * time.Minute
	tickLockKey     = "tick"
)

// Runner drives the scheduler: a periodic tick scans due entries, claims
// each one and runs the orchestrator for it.
type Runner struct {
	store     Store
	validator Validator
	history   History
	notifier  notify.Notifier
	locker    lock.Locker
	metrics   *metrics.Metrics
	logger    *slog.Logger

	interval time.Duration
	lockTTL  time.Duration
}

// RunnerOption configures optional runner collaborators.
type RunnerOption func(*Runner)

// WithNotifier wires the failure notifier.
func WithNotifier(n notify.Notifier) RunnerOption {
	return func(r *Runner) { r.notifier = n }
}

// WithLocker wires the cross-instance tick lock.
func WithLocker(l lock.Locker) RunnerOption {
	return func(r *Runner) { r.locker = l }
}

// WithMetrics wires prometheus metrics.
func WithMetrics(m *metrics.Metrics) RunnerOption {
	return func(r *Runner) { r.metrics = m }
}

// WithLogger wires the structured logger.
func WithLogger(l *slog.Logger) RunnerOption {
	return func(r *Runner) { r.logger = l }
}

// WithInterval sets the tick interval.
func WithInterval(d time.Duration) RunnerOption {
	return func(r *Runner) {
		if d > 0 {
			r.interval = d
		}
	}
}

// NewRunner builds the scheduler runner.
func NewRunner(store Store, validator Validator, history History, opts ...RunnerOption) *Runner {
	r := &Runner{
		store:     store,
		validator: validator,
		history:   history,
		interval:  defaultInterval,
		lockTTL:   defaultLockTTL,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run ticks until the context is cancelled.
func (r *Runner) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case now := <-ticker.C:
			r.Tick(ctx, now.UTC())
		}
	}
}

// Tick scans entries due at now and runs each one. One entry's failure
// never aborts the tick; the tick itself has no error to return.
func (r *Runner) Tick(ctx context.Context, now time.Time) (processed int) {
	start := time.Now()
	defer func() { r.metrics.ObserveTick(time.Since(start)) }()

	if r.locker != nil {
		held, err := r.locker.Acquire(ctx, tickLockKey, r.lockTTL)
		if err != nil {
			r.logError(ctx, "tick lock unavailable", "error", err)
			return 0
		}
		if !held {
			return 0
		}
		defer func() { _ = r.locker.Release(ctx, tickLockKey) }()
	}

	due, err := r.store.ListDue(ctx, now)
	if err != nil {
		r.logError(ctx, "due scan failed", "error", err)
		return 0
	}
	r.metrics.SetDueDepth(len(due))

	for i := range due {
		if ctx.Err() != nil {
			return processed
		}
		if r.runEntry(ctx, &due[i]) {
			processed++
		}
	}
	return processed
}

// runEntry claims the entry, executes it, records the run and advances the
// due timestamp. Reports whether this tick owned the entry.
func (r *Runner) runEntry(ctx context.Context, due *Entry) bool {
	e, err := r.store.Claim(ctx, due.ID)
	switch {
	case errors.Is(err, sentinel.ErrClaimed):
		r.metrics.IncrementEntry("claim_lost")
		return false
	case errors.Is(err, sentinel.ErrNotFound):
		// Deleted between scan and claim.
		return false
	case err != nil:
		r.logError(ctx, "schedule claim failed", "schedule_id", due.ID, "error", err)
		return false
	}

	runErr := r.execute(ctx, e)

	// A failed run does not retry immediately; it waits for the next
	// natural period. Advancement starts from the previous due value so a
	// delayed tick never compresses the following interval.
	next := e.Periodicity.Next(e.NextDue)
	if err := r.store.Complete(ctx, e.ID, next); err != nil {
		r.logError(ctx, "schedule completion failed", "schedule_id", e.ID, "error", err)
	}

	if runErr != nil {
		r.metrics.IncrementEntry("failure")
		if r.notifier != nil {
			r.notifier.NotifyFailure(ctx, notify.Failure{
				ScheduleID: e.ID,
				TenantID:   e.TenantID,
				Targets:    e.NotifyTargets,
				Reason:     runErr.Error(),
				OccurredAt: requestcontext.Now(ctx).UTC(),
			})
		}
		return true
	}

	r.metrics.IncrementEntry("success")
	if r.logger != nil {
		r.logger.InfoContext(ctx, "scheduled validation completed",
			"schedule_id", e.ID,
			"tenant_id", e.TenantID,
			"next_due", next,
		)
	}
	return true
}

// execute runs the orchestrator and records the outcome to history, with
// panic containment so a misbehaving entry cannot take the tick down.
func (r *Runner) execute(ctx context.Context, e *Entry) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("scheduled run panicked: %v", rec)
			r.recordFailure(ctx, e, err)
		}
	}()

	report, err := r.validator.ValidateScheduled(ctx, e.TenantID, e.Sectors, e.Jurisdictions)
	if err != nil {
		r.recordFailure(ctx, e, err)
		return err
	}

	if _, err := r.history.Record(ctx, validation.TriggerScheduled, report); err != nil {
		return fmt.Errorf("record scheduled run: %w", err)
	}
	return nil
}

// recordFailure keeps the audit trail complete: scheduled runs land in
// history whether they succeeded or not.
func (r *Runner) recordFailure(ctx context.Context, e *Entry, cause error) {
	if _, err := r.history.RecordFailure(ctx, validation.TriggerScheduled, e.TenantID, cause.Error()); err != nil {
		r.logError(ctx, "failure record not persisted",
			"schedule_id", e.ID,
			"tenant_id", e.TenantID,
			"error", err,
		)
	}
}

func (r *Runner) logError(ctx context.Context, msg string, args ...any) {
	if r.logger != nil {
		r.logger.ErrorContext(ctx, msg, args...)
	}
}
