// Package history is the append-only ledger of past validation runs.
// Records are never mutated or deleted once appended.
package history

import (
	"context"
	"time"

	"complia/internal/validation"
	id "complia/pkg/domain"
)

// Record is one validation run. The report is a snapshot frozen at append
// time; a failed run carries no report and a non-empty failure reason.
type Record struct {
	ID         id.RunID
	TenantID   id.TenantID
	Trigger    validation.Trigger
	Report     *validation.AggregatedReport
	Failure    string
	RecordedAt time.Time
}

// Query selects a tenant's records. Zero From/To bounds mean unbounded;
// bounds are inclusive.
type Query struct {
	TenantID id.TenantID
	From     time.Time
	To       time.Time
}

// Matches reports whether the record falls inside the query window.
func (q Query) Matches(r *Record) bool {
	if r.TenantID != q.TenantID {
		return false
	}
	if !q.From.IsZero() && r.RecordedAt.Before(q.From) {
		return false
	}
	if !q.To.IsZero() && r.RecordedAt.After(q.To) {
		return false
	}
	return true
}

// Store persists history records. Append is the only write.
type Store interface {
	Append(ctx context.Context, rec *Record) error
	ListByTenant(ctx context.Context, q Query) ([]Record, error)
}
