package history

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"complia/internal/validation"
	id "complia/pkg/domain"
	dErrors "complia/pkg/domain-errors"
	"complia/pkg/platform/sentinel"
	"complia/pkg/requestcontext"
)

// Service appends validation runs to the ledger and serves audit lookups.
type Service struct {
	store   Store
	tenants validation.TenantConfigs
	logger  *slog.Logger
}

// NewService builds the history service. tenants may be nil when no tenant
// configuration store is wired; the active-sector check is then limited to
// the report's own sector list.
func NewService(store Store, tenants validation.TenantConfigs, logger *slog.Logger) *Service {
	return &Service{store: store, tenants: tenants, logger: logger}
}

// Record appends a successful run. A report whose results fall outside the
// tenant's active sectors is rejected and never persisted.
func (s *Service) Record(ctx context.Context, trigger validation.Trigger, report *validation.AggregatedReport) (id.RunID, error) {
	if report == nil {
		return id.RunID{}, dErrors.New(dErrors.CodeBadRequest, "report is required")
	}
	if err := s.checkSectors(ctx, report); err != nil {
		return id.RunID{}, err
	}

	rec := &Record{
		ID:         id.RunID(uuid.New()),
		TenantID:   report.TenantID,
		Trigger:    trigger,
		Report:     report,
		RecordedAt: requestcontext.Now(ctx).UTC(),
	}
	if err := s.append(ctx, rec); err != nil {
		return id.RunID{}, err
	}

	if s.logger != nil {
		s.logger.InfoContext(ctx, "validation run recorded",
			"run_id", rec.ID,
			"tenant_id", rec.TenantID,
			"trigger", rec.Trigger,
			"score", report.Score,
			"irr", report.IRR,
		)
	}
	return rec.ID, nil
}

// RecordFailure appends a run that produced no report, preserving the audit
// trail for failed scheduled executions.
func (s *Service) RecordFailure(ctx context.Context, trigger validation.Trigger, tenantID id.TenantID, reason string) (id.RunID, error) {
	if tenantID.IsNil() {
		return id.RunID{}, dErrors.New(dErrors.CodeBadRequest, "tenant id is required")
	}
	if reason == "" {
		return id.RunID{}, dErrors.New(dErrors.CodeBadRequest, "failure reason is required")
	}

	rec := &Record{
		ID:         id.RunID(uuid.New()),
		TenantID:   tenantID,
		Trigger:    trigger,
		Failure:    reason,
		RecordedAt: requestcontext.Now(ctx).UTC(),
	}
	if err := s.append(ctx, rec); err != nil {
		return id.RunID{}, err
	}

	if s.logger != nil {
		s.logger.InfoContext(ctx, "failed validation run recorded",
			"run_id", rec.ID,
			"tenant_id", rec.TenantID,
			"trigger", rec.Trigger,
			"failure", reason,
		)
	}
	return rec.ID, nil
}

// ListByTenant returns the tenant's records inside the inclusive time
// window. Zero bounds are unbounded.
func (s *Service) ListByTenant(ctx context.Context, tenantID id.TenantID, from, to time.Time) ([]Record, error) {
	if tenantID.IsNil() {
		return nil, dErrors.New(dErrors.CodeBadRequest, "tenant id is required")
	}
	if !from.IsZero() && !to.IsZero() && to.Before(from) {
		return nil, dErrors.New(dErrors.CodeValidation, "time range end precedes start")
	}

	records, err := s.store.ListByTenant(ctx, Query{TenantID: tenantID, From: from, To: to})
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "history lookup failed")
	}
	return records, nil
}

func (s *Service) append(ctx context.Context, rec *Record) error {
	err := s.store.Append(ctx, rec)
	switch {
	case errors.Is(err, sentinel.ErrConflict):
		return dErrors.New(dErrors.CodeConflict, "history record already exists")
	case err != nil:
		return dErrors.Wrap(err, dErrors.CodeInternal, "history append failed")
	}
	return nil
}

// checkSectors enforces the audit invariant: every result's sector must be
// covered by the report's requested sectors, and by the tenant's configured
// active sectors when a configuration exists.
func (s *Service) checkSectors(ctx context.Context, report *validation.AggregatedReport) error {
	allowed := make(map[id.Sector]struct{}, len(report.Sectors))
	for _, sec := range report.Sectors {
		allowed[sec] = struct{}{}
	}
	for _, r := range report.Results {
		if _, ok := allowed[r.Sector]; !ok {
			return dErrors.New(dErrors.CodeInvariantViolation,
				"report contains a result outside its requested sectors: "+r.Sector.String())
		}
	}

	if s.tenants == nil {
		return nil
	}
	active, err := s.tenants.ActiveSectors(ctx, report.TenantID)
	if dErrors.HasCode(err, dErrors.CodeNotFound) {
		// Unconfigured tenant: the run was requested with explicit sectors.
		return nil
	}
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "active sector lookup failed")
	}

	configured := make(map[id.Sector]struct{}, len(active))
	for _, sec := range active {
		configured[sec] = struct{}{}
	}
	for _, r := range report.Results {
		if _, ok := configured[r.Sector]; !ok {
			return dErrors.New(dErrors.CodeInvariantViolation,
				"report contains a result outside the tenant's active sectors: "+r.Sector.String())
		}
	}
	return nil
}
