// Package schedule stores recurring validation requests and runs them when
// due.
package schedule

import (
	"context"
	"time"

	id "complia/pkg/domain"
)

// State is the lifecycle position of one entry. Due-ness is derived from
// NextDue, not stored; Running marks an entry claimed by a tick so
// concurrent ticks never double-fire it.
type State string

const (
	StateIdle    State = "IDLE"
	StateRunning State = "RUNNING"
)

// Entry is one recurring validation request.
type Entry struct {
	ID            id.ScheduleID
	TenantID      id.TenantID
	Sectors       []id.Sector
	Jurisdictions []string
	Periodicity   id.Periodicity
	NextDue       time.Time
	NotifyTargets []string
	Format        id.ReportFormat
	State         State
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Clone returns an independent copy.
func (e *Entry) Clone() *Entry {
	out := *e
	out.Sectors = append([]id.Sector(nil), e.Sectors...)
	out.Jurisdictions = append([]string(nil), e.Jurisdictions...)
	out.NotifyTargets = append([]string(nil), e.NotifyTargets...)
	return &out
}

// Store persists schedule entries.
//
// Claim and Complete form the tick-side state machine: Claim flips
// Idle to Running atomically (compare-and-set) and returns
// sentinel.ErrClaimed when another tick got there first; Complete flips
// back to Idle and advances NextDue in the same write.
type Store interface {
	Create(ctx context.Context, e *Entry) error
	Get(ctx context.Context, scheduleID id.ScheduleID) (*Entry, error)
	Update(ctx context.Context, e *Entry) error
	Delete(ctx context.Context, scheduleID id.ScheduleID) error
	ListByTenant(ctx context.Context, tenantID id.TenantID) ([]Entry, error)
	ListDue(ctx context.Context, now time.Time) ([]Entry, error)
	Claim(ctx context.Context, scheduleID id.ScheduleID) (*Entry, error)
	Complete(ctx context.Context, scheduleID id.ScheduleID, nextDue time.Time) error
}
