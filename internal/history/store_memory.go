package history

import (
	"context"
	"sync"

	"complia/internal/validation"
	id "complia/pkg/domain"
	"complia/pkg/platform/sentinel"
)

// InMemory is the development and test implementation of Store.
type InMemory struct {
	mu      sync.RWMutex
	records map[id.TenantID][]Record
	ids     map[id.RunID]struct{}
}

// NewInMemory returns an empty in-memory ledger.
func NewInMemory() *InMemory {
	return &InMemory{
		records: make(map[id.TenantID][]Record),
		ids:     make(map[id.RunID]struct{}),
	}
}

func (s *InMemory) Append(_ context.Context, rec *Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, dup := s.ids[rec.ID]; dup {
		return sentinel.ErrConflict
	}
	s.ids[rec.ID] = struct{}{}
	s.records[rec.TenantID] = append(s.records[rec.TenantID], snapshot(rec))
	return nil
}

func (s *InMemory) ListByTenant(_ context.Context, q Query) ([]Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []Record
	for i := range s.records[q.TenantID] {
		rec := s.records[q.TenantID][i]
		if q.Matches(&rec) {
			out = append(out, snapshot(&rec))
		}
	}
	return out, nil
}

// snapshot deep-copies the record so callers can never mutate the ledger.
func snapshot(rec *Record) Record {
	out := *rec
	if rec.Report != nil {
		report := *rec.Report
		report.Sectors = append([]id.Sector(nil), rec.Report.Sectors...)
		report.Jurisdictions = append([]string(nil), rec.Report.Jurisdictions...)
		report.Results = append([]validation.Result(nil), rec.Report.Results...)
		out.Report = &report
	}
	return out
}
