// Package tenantcfg manages each tenant's validator configuration: the set
// of sectors the tenant is actively validated against.
package tenantcfg

import (
	"context"
	"time"

	id "complia/pkg/domain"
)

// Config is a tenant's validator configuration.
//
// Invariants:
//   - Sectors is non-empty and contains only known sector identifiers
//   - Writes replace the whole sector set atomically (replace semantics,
//     never partial field merges)
//   - The record is owned by the tenant's lifecycle and never auto-deleted
type Config struct {
	TenantID  id.TenantID `json:"tenant_id"`
	Sectors   []id.Sector `json:"sectors"`
	UpdatedAt time.Time   `json:"updated_at"`
}

// HasSector reports whether the sector is in the tenant's active set.
func (c *Config) HasSector(s id.Sector) bool {
	for _, sec := range c.Sectors {
		if sec == s {
			return true
		}
	}
	return false
}

// Store persists tenant validator configurations. Put is an atomic
// per-tenant replace; concurrent writers resolve last-writer-wins.
type Store interface {
	Get(ctx context.Context, tenantID id.TenantID) (*Config, error)
	Put(ctx context.Context, cfg *Config) error
}
