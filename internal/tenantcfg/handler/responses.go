package handler

import (
	"time"

	"complia/internal/tenantcfg"
)

// ConfigResponse is the HTTP representation of a tenant's validator
// configuration.
type ConfigResponse struct {
	TenantID  string    `json:"tenant_id"`
	Sectors   []string  `json:"sectors"`
	UpdatedAt time.Time `json:"updated_at"`
}

// FromConfig converts a domain configuration to its HTTP representation.
func FromConfig(cfg *tenantcfg.Config) ConfigResponse {
	sectors := make([]string, len(cfg.Sectors))
	for i, s := range cfg.Sectors {
		sectors[i] = s.String()
	}
	return ConfigResponse{
		TenantID:  cfg.TenantID.String(),
		Sectors:   sectors,
		UpdatedAt: cfg.UpdatedAt,
	}
}
