package schedule

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	id "complia/pkg/domain"
	"complia/pkg/platform/sentinel"
	"complia/pkg/platform/tx"
)

// PostgresStore persists scheduled validations.
//
// Schema:
//
//	CREATE TABLE scheduled_validations (
//	    id             UUID PRIMARY KEY,
//	    tenant_id      UUID NOT NULL,
//	    sectors        TEXT[] NOT NULL,
//	    jurisdictions  TEXT[] NOT NULL,
//	    periodicity    TEXT NOT NULL,
//	    next_due       TIMESTAMPTZ NOT NULL,
//	    notify_targets TEXT[] NOT NULL,
//	    format         TEXT NOT NULL,
//	    state          TEXT NOT NULL,
//	    created_at     TIMESTAMPTZ NOT NULL,
//	    updated_at     TIMESTAMPTZ NOT NULL
//	);
//	CREATE INDEX scheduled_validations_due ON scheduled_validations (state, next_due);
//	CREATE INDEX scheduled_validations_tenant ON scheduled_validations (tenant_id);
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore wraps an open database handle.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// querier lets store methods run inside an ambient transaction when one is
// carried in the context.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *PostgresStore) q(ctx context.Context) querier {
	if t, ok := tx.From(ctx); ok {
		return t
	}
	return s.db
}

const entryColumns = "id, tenant_id, sectors, jurisdictions, periodicity, next_due, notify_targets, format, state, created_at, updated_at"

func (s *PostgresStore) Create(ctx context.Context, e *Entry) error {
	query := `
		INSERT INTO scheduled_validations (` + entryColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err := s.q(ctx).ExecContext(ctx, query,
		uuid.UUID(e.ID),
		uuid.UUID(e.TenantID),
		sectorArray(e.Sectors),
		pq.StringArray(e.Jurisdictions),
		e.Periodicity.String(),
		e.NextDue,
		pq.StringArray(e.NotifyTargets),
		e.Format.String(),
		string(e.State),
		e.CreatedAt,
		e.UpdatedAt,
	)
	if isUniqueViolation(err) {
		return sentinel.ErrConflict
	}
	if err != nil {
		return fmt.Errorf("insert schedule: %w", err)
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, scheduleID id.ScheduleID) (*Entry, error) {
	query := `SELECT ` + entryColumns + ` FROM scheduled_validations WHERE id = $1`
	return scanEntry(s.q(ctx).QueryRowContext(ctx, query, uuid.UUID(scheduleID)))
}

func (s *PostgresStore) Update(ctx context.Context, e *Entry) error {
	query := `
		UPDATE scheduled_validations
		SET sectors = $2, jurisdictions = $3, periodicity = $4, next_due = $5,
		    notify_targets = $6, format = $7, updated_at = $8
		WHERE id = $1
	`
	res, err := s.q(ctx).ExecContext(ctx, query,
		uuid.UUID(e.ID),
		sectorArray(e.Sectors),
		pq.StringArray(e.Jurisdictions),
		e.Periodicity.String(),
		e.NextDue,
		pq.StringArray(e.NotifyTargets),
		e.Format.String(),
		e.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update schedule: %w", err)
	}
	return requireRow(res)
}

func (s *PostgresStore) Delete(ctx context.Context, scheduleID id.ScheduleID) error {
	res, err := s.q(ctx).ExecContext(ctx, `DELETE FROM scheduled_validations WHERE id = $1`, uuid.UUID(scheduleID))
	if err != nil {
		return fmt.Errorf("delete schedule: %w", err)
	}
	return requireRow(res)
}

func (s *PostgresStore) ListByTenant(ctx context.Context, tenantID id.TenantID) ([]Entry, error) {
	query := `SELECT ` + entryColumns + ` FROM scheduled_validations WHERE tenant_id = $1 ORDER BY created_at`
	rows, err := s.q(ctx).QueryContext(ctx, query, uuid.UUID(tenantID))
	if err != nil {
		return nil, fmt.Errorf("query schedules: %w", err)
	}
	return scanEntries(rows)
}

func (s *PostgresStore) ListDue(ctx context.Context, now time.Time) ([]Entry, error) {
	query := `
		SELECT ` + entryColumns + `
		FROM scheduled_validations
		WHERE state = $1 AND next_due <= $2
		ORDER BY next_due
	`
	rows, err := s.q(ctx).QueryContext(ctx, query, string(StateIdle), now)
	if err != nil {
		return nil, fmt.Errorf("query due schedules: %w", err)
	}
	return scanEntries(rows)
}

// Claim flips an idle entry to Running with one compare-and-set statement,
// so two overlapping ticks can never both win the same entry.
func (s *PostgresStore) Claim(ctx context.Context, scheduleID id.ScheduleID) (*Entry, error) {
	query := `
		UPDATE scheduled_validations
		SET state = $2, updated_at = now()
		WHERE id = $1 AND state = $3
		RETURNING ` + entryColumns
	e, err := scanEntry(s.q(ctx).QueryRowContext(ctx, query, uuid.UUID(scheduleID), string(StateRunning), string(StateIdle)))
	if errors.Is(err, sentinel.ErrNotFound) {
		// Either already claimed or gone; disambiguate for the caller.
		if _, getErr := s.Get(ctx, scheduleID); getErr == nil {
			return nil, sentinel.ErrClaimed
		}
		return nil, sentinel.ErrNotFound
	}
	return e, err
}

func (s *PostgresStore) Complete(ctx context.Context, scheduleID id.ScheduleID, nextDue time.Time) error {
	query := `
		UPDATE scheduled_validations
		SET state = $2, next_due = $3, updated_at = now()
		WHERE id = $1 AND state = $4
	`
	res, err := s.q(ctx).ExecContext(ctx, query,
		uuid.UUID(scheduleID), string(StateIdle), nextDue, string(StateRunning))
	if err != nil {
		return fmt.Errorf("complete schedule: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("complete schedule: %w", err)
	}
	if n == 0 {
		return sentinel.ErrInvalidState
	}
	return nil
}

func scanEntry(row *sql.Row) (*Entry, error) {
	var (
		e             Entry
		entryID       uuid.UUID
		tenantID      uuid.UUID
		sectors       pq.StringArray
		jurisdictions pq.StringArray
		targets       pq.StringArray
		periodicity   string
		format        string
		state         string
	)
	err := row.Scan(&entryID, &tenantID, &sectors, &jurisdictions, &periodicity,
		&e.NextDue, &targets, &format, &state, &e.CreatedAt, &e.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan schedule: %w", err)
	}
	fillEntry(&e, entryID, tenantID, sectors, jurisdictions, targets, periodicity, format, state)
	return &e, nil
}

func scanEntries(rows *sql.Rows) ([]Entry, error) {
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var (
			e             Entry
			entryID       uuid.UUID
			tenantID      uuid.UUID
			sectors       pq.StringArray
			jurisdictions pq.StringArray
			targets       pq.StringArray
			periodicity   string
			format        string
			state         string
		)
		if err := rows.Scan(&entryID, &tenantID, &sectors, &jurisdictions, &periodicity,
			&e.NextDue, &targets, &format, &state, &e.CreatedAt, &e.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan schedule: %w", err)
		}
		fillEntry(&e, entryID, tenantID, sectors, jurisdictions, targets, periodicity, format, state)
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate schedules: %w", err)
	}
	return out, nil
}

func fillEntry(e *Entry, entryID, tenantID uuid.UUID, sectors, jurisdictions, targets pq.StringArray, periodicity, format, state string) {
	e.ID = id.ScheduleID(entryID)
	e.TenantID = id.TenantID(tenantID)
	e.Sectors = make([]id.Sector, 0, len(sectors))
	for _, s := range sectors {
		e.Sectors = append(e.Sectors, id.Sector(s))
	}
	e.Jurisdictions = []string(jurisdictions)
	e.NotifyTargets = []string(targets)
	e.Periodicity = id.Periodicity(periodicity)
	e.Format = id.ReportFormat(format)
	e.State = State(state)
}

func sectorArray(sectors []id.Sector) pq.StringArray {
	out := make(pq.StringArray, 0, len(sectors))
	for _, s := range sectors {
		out = append(out, s.String())
	}
	return out
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}

var _ Store = (*PostgresStore)(nil)
