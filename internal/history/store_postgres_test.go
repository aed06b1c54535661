//go:build integration

package history

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"complia/internal/validation"
	id "complia/pkg/domain"
	"complia/pkg/platform/sentinel"
	"complia/pkg/testutil/containers"
)

const historySchema = `
CREATE TABLE IF NOT EXISTS validation_history (
    id          UUID PRIMARY KEY,
    tenant_id   UUID NOT NULL,
    trigger_by  TEXT NOT NULL,
    report      JSONB,
    failure     TEXT NOT NULL DEFAULT '',
    recorded_at TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS validation_history_tenant_time
    ON validation_history (tenant_id, recorded_at);`

type PostgresStoreSuite struct {
	suite.Suite
	pg    *containers.PostgresContainer
	store *PostgresStore
}

func TestPostgresStoreSuite(t *testing.T) {
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	s.pg = containers.NewPostgresContainer(s.T())
	_, err := s.pg.DB.ExecContext(context.Background(), historySchema)
	s.Require().NoError(err)
	s.store = NewPostgresStore(s.pg.DB)
}

func (s *PostgresStoreSuite) SetupTest() {
	s.Require().NoError(s.pg.TruncateAll(context.Background(), "validation_history"))
}

func (s *PostgresStoreSuite) record(tenantID id.TenantID, at time.Time) *Record {
	return &Record{
		ID:       id.RunID(uuid.New()),
		TenantID: tenantID,
		Trigger:  validation.TriggerAdHoc,
		Report: &validation.AggregatedReport{
			TenantID: tenantID,
			Sectors:  []id.Sector{"HEALTHCARE"},
			Results: []validation.Result{
				{
					Sector:       "HEALTHCARE",
					Regulation:   "HIPAA",
					Jurisdiction: "US",
					Outcome:      id.OutcomePass,
					Score:        100,
					Timestamp:    at,
				},
			},
			Score:       100,
			IRR:         id.IRR1,
			GeneratedAt: at,
		},
		RecordedAt: at,
	}
}

func (s *PostgresStoreSuite) TestAppendAndList() {
	ctx := context.Background()
	tenantID := id.TenantID(uuid.New())
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	first := s.record(tenantID, base)
	second := s.record(tenantID, base.Add(24*time.Hour))
	s.Require().NoError(s.store.Append(ctx, first))
	s.Require().NoError(s.store.Append(ctx, second))
	s.Require().NoError(s.store.Append(ctx, s.record(id.TenantID(uuid.New()), base)))

	records, err := s.store.ListByTenant(ctx, Query{TenantID: tenantID})
	s.Require().NoError(err)
	s.Require().Len(records, 2)
	s.Equal(first.ID, records[0].ID)
	s.Equal(second.ID, records[1].ID)
	s.Require().NotNil(records[0].Report)
	s.Equal(first.Report.Results, records[0].Report.Results)

	windowed, err := s.store.ListByTenant(ctx, Query{
		TenantID: tenantID,
		From:     base.Add(24 * time.Hour),
		To:       base.Add(48 * time.Hour),
	})
	s.Require().NoError(err)
	s.Require().Len(windowed, 1)
	s.Equal(second.ID, windowed[0].ID)
}

func (s *PostgresStoreSuite) TestFailureRecord() {
	ctx := context.Background()
	tenantID := id.TenantID(uuid.New())

	rec := &Record{
		ID:         id.RunID(uuid.New()),
		TenantID:   tenantID,
		Trigger:    validation.TriggerScheduled,
		Failure:    "evaluator backend unreachable",
		RecordedAt: time.Now().UTC(),
	}
	s.Require().NoError(s.store.Append(ctx, rec))

	records, err := s.store.ListByTenant(ctx, Query{TenantID: tenantID})
	s.Require().NoError(err)
	s.Require().Len(records, 1)
	s.Nil(records[0].Report)
	s.Equal(rec.Failure, records[0].Failure)
}

func (s *PostgresStoreSuite) TestDuplicateRunID() {
	ctx := context.Background()
	rec := s.record(id.TenantID(uuid.New()), time.Now().UTC())

	s.Require().NoError(s.store.Append(ctx, rec))
	s.ErrorIs(s.store.Append(ctx, rec), sentinel.ErrConflict)
}
