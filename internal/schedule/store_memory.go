package schedule

import (
	"context"
	"sync"
	"time"

	id "complia/pkg/domain"
	"complia/pkg/platform/sentinel"
)

// InMemory is the development and test implementation of Store.
type InMemory struct {
	mu      sync.Mutex
	entries map[id.ScheduleID]*Entry
}

// NewInMemory returns an empty in-memory store.
func NewInMemory() *InMemory {
	return &InMemory{entries: make(map[id.ScheduleID]*Entry)}
}

func (s *InMemory) Create(_ context.Context, e *Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.entries[e.ID]; exists {
		return sentinel.ErrConflict
	}
	s.entries[e.ID] = e.Clone()
	return nil
}

func (s *InMemory) Get(_ context.Context, scheduleID id.ScheduleID) (*Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[scheduleID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return e.Clone(), nil
}

func (s *InMemory) Update(_ context.Context, e *Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.entries[e.ID]; !ok {
		return sentinel.ErrNotFound
	}
	s.entries[e.ID] = e.Clone()
	return nil
}

func (s *InMemory) Delete(_ context.Context, scheduleID id.ScheduleID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.entries[scheduleID]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.entries, scheduleID)
	return nil
}

func (s *InMemory) ListByTenant(_ context.Context, tenantID id.TenantID) ([]Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []Entry
	for _, e := range s.entries {
		if e.TenantID == tenantID {
			out = append(out, *e.Clone())
		}
	}
	return out, nil
}

func (s *InMemory) ListDue(_ context.Context, now time.Time) ([]Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []Entry
	for _, e := range s.entries {
		if e.State == StateIdle && !e.NextDue.After(now) {
			out = append(out, *e.Clone())
		}
	}
	return out, nil
}

func (s *InMemory) Claim(_ context.Context, scheduleID id.ScheduleID) (*Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[scheduleID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	if e.State != StateIdle {
		return nil, sentinel.ErrClaimed
	}
	e.State = StateRunning
	return e.Clone(), nil
}

func (s *InMemory) Complete(_ context.Context, scheduleID id.ScheduleID, nextDue time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[scheduleID]
	if !ok {
		return sentinel.ErrNotFound
	}
	if e.State != StateRunning {
		return sentinel.ErrInvalidState
	}
	e.State = StateIdle
	e.NextDue = nextDue
	e.UpdatedAt = time.Now()
	return nil
}

var _ Store = (*InMemory)(nil)
