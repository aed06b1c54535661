package schedule

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	id "complia/pkg/domain"
	"complia/pkg/platform/sentinel"
)

type ScheduleStoreSuite struct {
	suite.Suite
	store *InMemory
	ctx   context.Context
}

func (s *ScheduleStoreSuite) SetupTest() {
	s.store = NewInMemory()
	s.ctx = context.Background()
}

func TestScheduleStoreSuite(t *testing.T) {
	suite.Run(t, new(ScheduleStoreSuite))
}

func (s *ScheduleStoreSuite) newEntry(tenantID id.TenantID, nextDue time.Time) *Entry {
	now := time.Now().UTC()
	return &Entry{
		ID:          id.ScheduleID(uuid.New()),
		TenantID:    tenantID,
		Sectors:     []id.Sector{id.SectorHealthcare},
		Periodicity: id.PeriodDaily,
		NextDue:     nextDue,
		Format:      id.FormatJSON,
		State:       StateIdle,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func (s *ScheduleStoreSuite) TestCRUD() {
	tenantID := id.TenantID(uuid.New())
	e := s.newEntry(tenantID, time.Now().Add(time.Hour))

	s.Run("get before create", func() {
		_, err := s.store.Get(s.ctx, e.ID)
		s.Require().ErrorIs(err, sentinel.ErrNotFound)
	})

	s.Run("create then get", func() {
		s.Require().NoError(s.store.Create(s.ctx, e))
		got, err := s.store.Get(s.ctx, e.ID)
		s.Require().NoError(err)
		s.Equal(e.Sectors, got.Sectors)

		s.Require().ErrorIs(s.store.Create(s.ctx, e), sentinel.ErrConflict)
	})

	s.Run("update", func() {
		e.Periodicity = id.PeriodWeekly
		s.Require().NoError(s.store.Update(s.ctx, e))
		got, err := s.store.Get(s.ctx, e.ID)
		s.Require().NoError(err)
		s.Equal(id.PeriodWeekly, got.Periodicity)
	})

	s.Run("list by tenant", func() {
		entries, err := s.store.ListByTenant(s.ctx, tenantID)
		s.Require().NoError(err)
		s.Len(entries, 1)

		entries, err = s.store.ListByTenant(s.ctx, id.TenantID(uuid.New()))
		s.Require().NoError(err)
		s.Empty(entries)
	})

	s.Run("delete", func() {
		s.Require().NoError(s.store.Delete(s.ctx, e.ID))
		s.Require().ErrorIs(s.store.Delete(s.ctx, e.ID), sentinel.ErrNotFound)
	})
}

func (s *ScheduleStoreSuite) TestListDue() {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	tenantID := id.TenantID(uuid.New())

	overdue := s.newEntry(tenantID, now.Add(-time.Hour))
	exactlyDue := s.newEntry(tenantID, now)
	future := s.newEntry(tenantID, now.Add(time.Hour))
	for _, e := range []*Entry{overdue, exactlyDue, future} {
		s.Require().NoError(s.store.Create(s.ctx, e))
	}

	due, err := s.store.ListDue(s.ctx, now)
	s.Require().NoError(err)
	s.Require().Len(due, 2, "due means next_due <= now")

	// A running entry disappears from the due scan.
	_, err = s.store.Claim(s.ctx, overdue.ID)
	s.Require().NoError(err)
	due, err = s.store.ListDue(s.ctx, now)
	s.Require().NoError(err)
	s.Require().Len(due, 1)
	s.Equal(exactlyDue.ID, due[0].ID)
}

func (s *ScheduleStoreSuite) TestClaimStateMachine() {
	e := s.newEntry(id.TenantID(uuid.New()), time.Now())
	s.Require().NoError(s.store.Create(s.ctx, e))

	claimed, err := s.store.Claim(s.ctx, e.ID)
	s.Require().NoError(err)
	s.Equal(StateRunning, claimed.State)

	_, err = s.store.Claim(s.ctx, e.ID)
	s.Require().ErrorIs(err, sentinel.ErrClaimed)

	next := e.NextDue.AddDate(0, 0, 1)
	s.Require().NoError(s.store.Complete(s.ctx, e.ID, next))

	got, err := s.store.Get(s.ctx, e.ID)
	s.Require().NoError(err)
	s.Equal(StateIdle, got.State)
	s.True(got.NextDue.Equal(next))

	s.Require().ErrorIs(s.store.Complete(s.ctx, e.ID, next), sentinel.ErrInvalidState)

	_, err = s.store.Claim(s.ctx, id.ScheduleID(uuid.New()))
	s.Require().ErrorIs(err, sentinel.ErrNotFound)
}

// TestConcurrentClaims verifies the compare-and-set: exactly one claimant
// wins per entry no matter how many race.
func (s *ScheduleStoreSuite) TestConcurrentClaims() {
	e := s.newEntry(id.TenantID(uuid.New()), time.Now())
	s.Require().NoError(s.store.Create(s.ctx, e))

	const claimants = 32
	var wins, losses atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < claimants; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.store.Claim(s.ctx, e.ID)
			switch err {
			case nil:
				wins.Add(1)
			case sentinel.ErrClaimed:
				losses.Add(1)
			}
		}()
	}
	wg.Wait()

	s.Equal(int32(1), wins.Load())
	s.Equal(int32(claimants-1), losses.Load())
}
