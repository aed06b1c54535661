package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"complia/internal/validation"
	id "complia/pkg/domain"
	"complia/pkg/platform/sentinel"
)

// PostgresStore persists the validation history ledger.
//
// Schema:
//
//	CREATE TABLE validation_history (
//	    id          UUID PRIMARY KEY,
//	    tenant_id   UUID NOT NULL,
//	    trigger_by  TEXT NOT NULL,
//	    report      JSONB,
//	    failure     TEXT NOT NULL DEFAULT '',
//	    recorded_at TIMESTAMPTZ NOT NULL
//	);
//	CREATE INDEX validation_history_tenant_time
//	    ON validation_history (tenant_id, recorded_at);
//
// Rows are insert-only; there is deliberately no UPDATE or DELETE path.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore wraps an open database handle.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Append(ctx context.Context, rec *Record) error {
	var report []byte
	if rec.Report != nil {
		var err error
		report, err = json.Marshal(rec.Report)
		if err != nil {
			return fmt.Errorf("encode report snapshot: %w", err)
		}
	}

	query := `
		INSERT INTO validation_history (id, tenant_id, trigger_by, report, failure, recorded_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := s.db.ExecContext(ctx, query,
		uuid.UUID(rec.ID),
		uuid.UUID(rec.TenantID),
		string(rec.Trigger),
		nullBytes(report),
		rec.Failure,
		rec.RecordedAt,
	)
	if isUniqueViolation(err) {
		return sentinel.ErrConflict
	}
	if err != nil {
		return fmt.Errorf("append history record: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListByTenant(ctx context.Context, q Query) ([]Record, error) {
	query := `
		SELECT id, tenant_id, trigger_by, report, failure, recorded_at
		FROM validation_history
		WHERE tenant_id = $1
		  AND ($2::timestamptz IS NULL OR recorded_at >= $2)
		  AND ($3::timestamptz IS NULL OR recorded_at <= $3)
		ORDER BY recorded_at
	`
	rows, err := s.db.QueryContext(ctx, query, uuid.UUID(q.TenantID), nullTime(q.From), nullTime(q.To))
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var (
			rec       Record
			recID     uuid.UUID
			tenantID  uuid.UUID
			trigger   string
			rawReport []byte
		)
		if err := rows.Scan(&recID, &tenantID, &trigger, &rawReport, &rec.Failure, &rec.RecordedAt); err != nil {
			return nil, fmt.Errorf("scan history record: %w", err)
		}
		rec.ID = id.RunID(recID)
		rec.TenantID = id.TenantID(tenantID)
		rec.Trigger = validation.Trigger(trigger)
		if len(rawReport) > 0 {
			rec.Report = &validation.AggregatedReport{}
			if err := json.Unmarshal(rawReport, rec.Report); err != nil {
				return nil, fmt.Errorf("decode report snapshot: %w", err)
			}
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate history: %w", err)
	}
	return out, nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}

func nullBytes(b []byte) any {
	if len(b) == 0 {
		return nil
	}
	return b
}

func nullTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t
}

var _ Store = (*PostgresStore)(nil)
