package handler

import (
	"strings"

	id "complia/pkg/domain"
	dErrors "complia/pkg/domain-errors"
)

var errPersistUnavailable = dErrors.New(dErrors.CodeInternal, "history persistence is not configured")

// ValidateRequest is the HTTP request body for POST /validate.
type ValidateRequest struct {
	TenantID      string   `json:"tenant_id"`
	Sectors       []string `json:"sectors"`
	Jurisdictions []string `json:"jurisdictions"`
	Persist       bool     `json:"persist"`

	// Parsed values (populated by Validate)
	parsedTenantID id.TenantID
	parsedSectors  []id.Sector
}

// Validate validates and parses the request. Sectors and jurisdictions are
// optional; an empty sectors list means "the tenant's configured sectors"
// and an empty jurisdictions list means "all jurisdictions".
func (r *ValidateRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}

	r.TenantID = strings.TrimSpace(r.TenantID)
	if r.TenantID == "" {
		return dErrors.New(dErrors.CodeValidation, "tenant_id is required")
	}
	tenantID, err := id.ParseTenantID(r.TenantID)
	if err != nil {
		return err
	}
	r.parsedTenantID = tenantID

	sectors, err := id.ParseSectors(r.Sectors)
	if err != nil {
		return err
	}
	r.parsedSectors = sectors

	for i, j := range r.Jurisdictions {
		r.Jurisdictions[i] = strings.TrimSpace(j)
		if r.Jurisdictions[i] == "" {
			return dErrors.New(dErrors.CodeValidation, "jurisdictions must not contain empty entries")
		}
	}

	return nil
}

// ParsedTenantID returns the validated tenant ID.
func (r *ValidateRequest) ParsedTenantID() id.TenantID {
	return r.parsedTenantID
}

// ParsedSectors returns the validated sectors.
func (r *ValidateRequest) ParsedSectors() []id.Sector {
	return r.parsedSectors
}
