package schedule

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"complia/internal/schedule/lock"
	"complia/internal/schedule/notify"
	"complia/internal/validation"
	id "complia/pkg/domain"
	dErrors "complia/pkg/domain-errors"
)

type fakeValidator struct {
	mu    sync.Mutex
	calls int
	fn    func(tenantID id.TenantID) (*validation.AggregatedReport, error)
}

func (f *fakeValidator) ValidateScheduled(_ context.Context, tenantID id.TenantID, _ []id.Sector, _ []string) (*validation.AggregatedReport, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	return f.fn(tenantID)
}

func (f *fakeValidator) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type fakeHistory struct {
	mu       sync.Mutex
	reports  []*validation.AggregatedReport
	failures []string
}

func (f *fakeHistory) Record(_ context.Context, trigger validation.Trigger, report *validation.AggregatedReport) (id.RunID, error) {
	if trigger != validation.TriggerScheduled {
		return id.RunID{}, dErrors.New(dErrors.CodeBadRequest, "scheduler must record with the scheduled trigger")
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reports = append(f.reports, report)
	return id.RunID(uuid.New()), nil
}

func (f *fakeHistory) RecordFailure(_ context.Context, trigger validation.Trigger, _ id.TenantID, reason string) (id.RunID, error) {
	if trigger != validation.TriggerScheduled {
		return id.RunID{}, dErrors.New(dErrors.CodeBadRequest, "scheduler must record with the scheduled trigger")
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failures = append(f.failures, reason)
	return id.RunID(uuid.New()), nil
}

type captureNotifier struct {
	mu       sync.Mutex
	failures []notify.Failure
}

func (c *captureNotifier) NotifyFailure(_ context.Context, f notify.Failure) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.failures = append(c.failures, f)
}

func okReport(tenantID id.TenantID) (*validation.AggregatedReport, error) {
	return &validation.AggregatedReport{
		TenantID: tenantID,
		Score:    100,
		IRR:      id.IRR1,
	}, nil
}

func mustCreate(t *testing.T, store Store, e *Entry) {
	t.Helper()
	require.NoError(t, store.Create(context.Background(), e))
}

func dueEntry(nextDue time.Time, periodicity id.Periodicity) *Entry {
	return &Entry{
		ID:          id.ScheduleID(uuid.New()),
		TenantID:    id.TenantID(uuid.New()),
		Sectors:     []id.Sector{id.SectorHealthcare},
		Periodicity: periodicity,
		NextDue:     nextDue,
		Format:      id.FormatJSON,
		State:       StateIdle,
	}
}

func TestTickRunsDueEntries(t *testing.T) {
	store := NewInMemory()
	validator := &fakeValidator{fn: okReport}
	history := &fakeHistory{}
	runner := NewRunner(store, validator, history,
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))

	now := time.Date(2025, 1, 31, 8, 0, 0, 0, time.UTC)
	due := dueEntry(now.Add(-time.Minute), id.PeriodMonthly)
	notDue := dueEntry(now.Add(time.Hour), id.PeriodDaily)
	mustCreate(t, store, due)
	mustCreate(t, store, notDue)

	processed := runner.Tick(context.Background(), now)
	assert.Equal(t, 1, processed)
	assert.Equal(t, 1, validator.callCount())
	require.Len(t, history.reports, 1)

	// Next due advances from the previous due value, month-end clamped.
	got, err := store.Get(context.Background(), due.ID)
	require.NoError(t, err)
	assert.Equal(t, StateIdle, got.State)
	assert.Equal(t, time.Date(2025, 2, 28, 7, 59, 0, 0, time.UTC), got.NextDue)

	// The untouched entry keeps its due timestamp.
	untouched, err := store.Get(context.Background(), notDue.ID)
	require.NoError(t, err)
	assert.True(t, untouched.NextDue.Equal(notDue.NextDue))
}

// TestTickIsolatesFailures: one entry failing never aborts the tick, the
// failed run still lands in history, targets get notified, and the next due
// still advances so the entry waits for its natural period.
func TestTickIsolatesFailures(t *testing.T) {
	store := NewInMemory()
	failing := dueEntry(time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC), id.PeriodDaily)
	failing.NotifyTargets = []string{"oncall@acme.example"}
	healthy := dueEntry(time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC), id.PeriodDaily)
	mustCreate(t, store, failing)
	mustCreate(t, store, healthy)

	validator := &fakeValidator{fn: func(tenantID id.TenantID) (*validation.AggregatedReport, error) {
		if tenantID == failing.TenantID {
			return nil, dErrors.New(dErrors.CodeNoApplicableRegulations, "no regulation applies")
		}
		return okReport(tenantID)
	}}
	history := &fakeHistory{}
	notifier := &captureNotifier{}
	runner := NewRunner(store, validator, history, WithNotifier(notifier))

	processed := runner.Tick(context.Background(), time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	assert.Equal(t, 2, processed)

	require.Len(t, history.reports, 1, "healthy entry recorded")
	require.Len(t, history.failures, 1, "failed entry recorded too")
	require.Len(t, notifier.failures, 1)
	assert.Equal(t, failing.ID, notifier.failures[0].ScheduleID)
	assert.Equal(t, []string{"oncall@acme.example"}, notifier.failures[0].Targets)

	got, err := store.Get(context.Background(), failing.ID)
	require.NoError(t, err)
	assert.Equal(t, StateIdle, got.State)
	assert.Equal(t, failing.NextDue.AddDate(0, 0, 1), got.NextDue, "failure still advances the period")
}

func TestTickContainsPanics(t *testing.T) {
	store := NewInMemory()
	entry := dueEntry(time.Now().Add(-time.Minute), id.PeriodDaily)
	mustCreate(t, store, entry)

	validator := &fakeValidator{fn: func(id.TenantID) (*validation.AggregatedReport, error) {
		panic("rule engine exploded")
	}}
	history := &fakeHistory{}
	runner := NewRunner(store, validator, history)

	processed := runner.Tick(context.Background(), time.Now())
	assert.Equal(t, 1, processed)
	require.Len(t, history.failures, 1)
	assert.Contains(t, history.failures[0], "panicked")

	got, err := store.Get(context.Background(), entry.ID)
	require.NoError(t, err)
	assert.Equal(t, StateIdle, got.State)
}

// TestConcurrentTicks: overlapping ticks must not double-trigger the same
// due entry; the claim is exclusive.
func TestConcurrentTicks(t *testing.T) {
	store := NewInMemory()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	const entries = 8
	for i := 0; i < entries; i++ {
		mustCreate(t, store, dueEntry(now.Add(-time.Minute), id.PeriodDaily))
	}

	validator := &fakeValidator{fn: okReport}
	history := &fakeHistory{}
	runner := NewRunner(store, validator, history)

	const ticks = 4
	results := make(chan int, ticks)
	var wg sync.WaitGroup
	for i := 0; i < ticks; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results <- runner.Tick(context.Background(), now)
		}()
	}
	wg.Wait()
	close(results)

	total := 0
	for n := range results {
		total += n
	}
	assert.Equal(t, entries, total, "each entry runs exactly once across overlapping ticks")
	assert.Equal(t, entries, validator.callCount())
	assert.Len(t, history.reports, entries)
}

func TestTickLockSkipsWhenHeld(t *testing.T) {
	store := NewInMemory()
	mustCreate(t, store, dueEntry(time.Now().Add(-time.Minute), id.PeriodDaily))

	locker := lock.NewMemoryLocker()
	held, err := locker.Acquire(context.Background(), "tick", time.Minute)
	require.NoError(t, err)
	require.True(t, held)

	validator := &fakeValidator{fn: okReport}
	runner := NewRunner(store, validator, &fakeHistory{}, WithLocker(locker))

	processed := runner.Tick(context.Background(), time.Now())
	assert.Zero(t, processed, "a held lock skips the whole tick")
	assert.Zero(t, validator.callCount())
}
