package handler

import (
	id "complia/pkg/domain"
	dErrors "complia/pkg/domain-errors"
)

// ConfigRequest is the HTTP request body for PUT /tenants/{tenantID}/config.
type ConfigRequest struct {
	Sectors []string `json:"sectors"`

	// Parsed values (populated by Validate)
	parsedSectors []id.Sector
}

// Validate validates and parses the request. The sector set must be non-empty;
// deeper checks (known sectors, duplicates) belong to the service.
func (r *ConfigRequest) Validate() error {
	if len(r.Sectors) == 0 {
		return dErrors.New(dErrors.CodeValidation, "sectors is required")
	}
	sectors, err := id.ParseSectors(r.Sectors)
	if err != nil {
		return err
	}
	r.parsedSectors = sectors
	return nil
}

// ParsedSectors returns the validated sectors.
func (r *ConfigRequest) ParsedSectors() []id.Sector {
	return r.parsedSectors
}
