package tenantcfg

import (
	"context"
	"errors"
	"log/slog"

	"complia/internal/registry"
	id "complia/pkg/domain"
	dErrors "complia/pkg/domain-errors"
	"complia/pkg/platform/sentinel"
	"complia/pkg/requestcontext"
)

// Service validates configuration changes against the registry before they
// reach the store. Unknown sector identifiers are rejected at this boundary
// and never reach the orchestrator.
type Service struct {
	store    Store
	registry *registry.Registry
	logger   *slog.Logger
}

// NewService builds the tenant configuration service.
func NewService(store Store, reg *registry.Registry, logger *slog.Logger) *Service {
	return &Service{store: store, registry: reg, logger: logger}
}

// Get returns the tenant's validator configuration.
func (s *Service) Get(ctx context.Context, tenantID id.TenantID) (*Config, error) {
	if tenantID.IsNil() {
		return nil, dErrors.New(dErrors.CodeBadRequest, "tenant id is required")
	}
	cfg, err := s.store.Get(ctx, tenantID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "tenant has no validator configuration")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load tenant configuration")
	}
	return cfg, nil
}

// Set replaces the tenant's active sector set. Created on first call,
// replaced (not merged) on subsequent calls.
func (s *Service) Set(ctx context.Context, tenantID id.TenantID, sectors []id.Sector) (*Config, error) {
	if tenantID.IsNil() {
		return nil, dErrors.New(dErrors.CodeBadRequest, "tenant id is required")
	}
	if len(sectors) == 0 {
		return nil, dErrors.New(dErrors.CodeValidation, "at least one active sector is required")
	}
	seen := make(map[id.Sector]struct{}, len(sectors))
	for _, sec := range sectors {
		if !sec.IsValid() {
			return nil, dErrors.New(dErrors.CodeValidation, "unknown sector: "+sec.String())
		}
		if len(s.registry.RegulationsFor(sec)) == 0 {
			return nil, dErrors.New(dErrors.CodeValidation, "sector has no registered regulations: "+sec.String())
		}
		if _, dup := seen[sec]; dup {
			return nil, dErrors.New(dErrors.CodeValidation, "duplicate sector: "+sec.String())
		}
		seen[sec] = struct{}{}
	}

	cfg := &Config{
		TenantID:  tenantID,
		Sectors:   sectors,
		UpdatedAt: requestcontext.Now(ctx).UTC(),
	}
	if err := s.store.Put(ctx, cfg); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to store tenant configuration")
	}

	if s.logger != nil {
		s.logger.InfoContext(ctx, "tenant validator configuration replaced",
			"tenant_id", tenantID,
			"sectors", sectors,
		)
	}
	return cfg, nil
}

// ActiveSectors implements validation.TenantConfigs.
func (s *Service) ActiveSectors(ctx context.Context, tenantID id.TenantID) ([]id.Sector, error) {
	cfg, err := s.Get(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	return cfg.Sectors, nil
}
