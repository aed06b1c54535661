package tenantcfg

import (
	"context"
	"sync"

	id "complia/pkg/domain"
	"complia/pkg/platform/sentinel"
)

// InMemory is the development and test implementation of Store.
type InMemory struct {
	mu      sync.RWMutex
	configs map[id.TenantID]Config
}

// NewInMemory returns an empty in-memory store.
func NewInMemory() *InMemory {
	return &InMemory{configs: make(map[id.TenantID]Config)}
}

func (s *InMemory) Get(_ context.Context, tenantID id.TenantID) (*Config, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cfg, ok := s.configs[tenantID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	out := cfg
	out.Sectors = append([]id.Sector(nil), cfg.Sectors...)
	return &out, nil
}

func (s *InMemory) Put(_ context.Context, cfg *Config) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := *cfg
	stored.Sectors = append([]id.Sector(nil), cfg.Sectors...)
	s.configs[cfg.TenantID] = stored
	return nil
}

var _ Store = (*InMemory)(nil)
