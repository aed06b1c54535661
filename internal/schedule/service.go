package schedule

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"complia/internal/registry"
	id "complia/pkg/domain"
	dErrors "complia/pkg/domain-errors"
	"complia/pkg/platform/sentinel"
	"complia/pkg/requestcontext"
)

// Draft carries the caller-supplied fields of a schedule create or update.
type Draft struct {
	TenantID      id.TenantID
	Sectors       []id.Sector
	Jurisdictions []string
	Periodicity   id.Periodicity
	NextDue       time.Time
	NotifyTargets []string
	Format        id.ReportFormat
}

// Service validates schedule changes against the registry before they reach
// the store. Unknown sector or jurisdiction identifiers are rejected at this
// boundary and never reach the orchestrator.
type Service struct {
	store    Store
	registry *registry.Registry
	logger   *slog.Logger
}

// NewService builds the schedule service.
func NewService(store Store, reg *registry.Registry, logger *slog.Logger) *Service {
	return &Service{store: store, registry: reg, logger: logger}
}

// Create stores a new schedule. A zero NextDue defaults to one period from
// the request time.
func (s *Service) Create(ctx context.Context, draft Draft) (*Entry, error) {
	if err := s.validate(&draft); err != nil {
		return nil, err
	}

	now := requestcontext.Now(ctx).UTC()
	if draft.NextDue.IsZero() {
		draft.NextDue = draft.Periodicity.Next(now)
	}

	e := &Entry{
		ID:            id.ScheduleID(uuid.New()),
		TenantID:      draft.TenantID,
		Sectors:       draft.Sectors,
		Jurisdictions: draft.Jurisdictions,
		Periodicity:   draft.Periodicity,
		NextDue:       draft.NextDue,
		NotifyTargets: draft.NotifyTargets,
		Format:        draft.Format,
		State:         StateIdle,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.store.Create(ctx, e); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to store schedule")
	}

	if s.logger != nil {
		s.logger.InfoContext(ctx, "schedule created",
			"schedule_id", e.ID,
			"tenant_id", e.TenantID,
			"periodicity", e.Periodicity,
			"next_due", e.NextDue,
		)
	}
	return e, nil
}

// Get returns one schedule.
func (s *Service) Get(ctx context.Context, scheduleID id.ScheduleID) (*Entry, error) {
	if scheduleID.IsNil() {
		return nil, dErrors.New(dErrors.CodeBadRequest, "schedule id is required")
	}
	e, err := s.store.Get(ctx, scheduleID)
	if errors.Is(err, sentinel.ErrNotFound) {
		return nil, dErrors.New(dErrors.CodeNotFound, "schedule not found")
	}
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load schedule")
	}
	return e, nil
}

// Update replaces the schedule's mutable fields. The tenant cannot change;
// next-due may be moved explicitly.
func (s *Service) Update(ctx context.Context, scheduleID id.ScheduleID, draft Draft) (*Entry, error) {
	e, err := s.Get(ctx, scheduleID)
	if err != nil {
		return nil, err
	}
	draft.TenantID = e.TenantID
	if err := s.validate(&draft); err != nil {
		return nil, err
	}

	e.Sectors = draft.Sectors
	e.Jurisdictions = draft.Jurisdictions
	e.Periodicity = draft.Periodicity
	if !draft.NextDue.IsZero() {
		e.NextDue = draft.NextDue
	}
	e.NotifyTargets = draft.NotifyTargets
	e.Format = draft.Format
	e.UpdatedAt = requestcontext.Now(ctx).UTC()

	if err := s.store.Update(ctx, e); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "schedule not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to update schedule")
	}
	return e, nil
}

// Delete removes the schedule. Deletion only ever happens by explicit
// tenant action; the scheduler never deletes entries.
func (s *Service) Delete(ctx context.Context, scheduleID id.ScheduleID) error {
	if scheduleID.IsNil() {
		return dErrors.New(dErrors.CodeBadRequest, "schedule id is required")
	}
	err := s.store.Delete(ctx, scheduleID)
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.New(dErrors.CodeNotFound, "schedule not found")
	}
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to delete schedule")
	}
	if s.logger != nil {
		s.logger.InfoContext(ctx, "schedule deleted", "schedule_id", scheduleID)
	}
	return nil
}

// ListByTenant returns the tenant's schedules.
func (s *Service) ListByTenant(ctx context.Context, tenantID id.TenantID) ([]Entry, error) {
	if tenantID.IsNil() {
		return nil, dErrors.New(dErrors.CodeBadRequest, "tenant id is required")
	}
	entries, err := s.store.ListByTenant(ctx, tenantID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list schedules")
	}
	return entries, nil
}

func (s *Service) validate(draft *Draft) error {
	if draft.TenantID.IsNil() {
		return dErrors.New(dErrors.CodeBadRequest, "tenant id is required")
	}
	if len(draft.Sectors) == 0 {
		return dErrors.New(dErrors.CodeValidation, "at least one sector is required")
	}
	seen := make(map[id.Sector]struct{}, len(draft.Sectors))
	for _, sec := range draft.Sectors {
		if !sec.IsValid() {
			return dErrors.New(dErrors.CodeValidation, "unknown sector: "+sec.String())
		}
		if len(s.registry.RegulationsFor(sec)) == 0 {
			return dErrors.New(dErrors.CodeValidation, "sector has no registered regulations: "+sec.String())
		}
		if _, dup := seen[sec]; dup {
			return dErrors.New(dErrors.CodeValidation, "duplicate sector: "+sec.String())
		}
		seen[sec] = struct{}{}
	}
	for _, j := range draft.Jurisdictions {
		if !s.registry.KnownJurisdiction(j) {
			return dErrors.New(dErrors.CodeValidation, "unknown jurisdiction: "+j)
		}
	}
	if !draft.Periodicity.IsValid() {
		return dErrors.New(dErrors.CodeValidation, "unknown periodicity: "+draft.Periodicity.String())
	}
	if draft.Format == "" {
		draft.Format = id.DefaultFormat()
	}
	if !draft.Format.IsValid() {
		return dErrors.New(dErrors.CodeValidation, "unsupported report format: "+draft.Format.String())
	}
	return nil
}
