package handler

import (
	"strings"
	"time"

	"complia/internal/schedule"
	id "complia/pkg/domain"
	dErrors "complia/pkg/domain-errors"
)

// ScheduleRequest is the HTTP request body for POST /schedules and
// PUT /schedules/{scheduleID}.
type ScheduleRequest struct {
	TenantID      string     `json:"tenant_id"`
	Sectors       []string   `json:"sectors"`
	Jurisdictions []string   `json:"jurisdictions"`
	Periodicity   string     `json:"periodicity"`
	NextDue       *time.Time `json:"next_due,omitempty"`
	NotifyTargets []string   `json:"notify_targets"`
	Format        string     `json:"format"`

	// Parsed values (populated by Validate)
	parsedTenantID    id.TenantID
	parsedSectors     []id.Sector
	parsedPeriodicity id.Periodicity
	parsedFormat      id.ReportFormat
}

// Validate validates and parses the request. requireTenant is false on
// updates, where the tenant comes from the stored entry.
func (r *ScheduleRequest) Validate(requireTenant bool) error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}

	r.TenantID = strings.TrimSpace(r.TenantID)
	if r.TenantID != "" {
		tenantID, err := id.ParseTenantID(r.TenantID)
		if err != nil {
			return err
		}
		r.parsedTenantID = tenantID
	} else if requireTenant {
		return dErrors.New(dErrors.CodeValidation, "tenant_id is required")
	}

	if len(r.Sectors) == 0 {
		return dErrors.New(dErrors.CodeValidation, "at least one sector is required")
	}
	sectors, err := id.ParseSectors(r.Sectors)
	if err != nil {
		return err
	}
	r.parsedSectors = sectors

	periodicity, err := id.ParsePeriodicity(r.Periodicity)
	if err != nil {
		return err
	}
	r.parsedPeriodicity = periodicity

	r.parsedFormat = id.DefaultFormat()
	if strings.TrimSpace(r.Format) != "" {
		format, err := id.ParseReportFormat(r.Format)
		if err != nil {
			return err
		}
		r.parsedFormat = format
	}

	for i, j := range r.Jurisdictions {
		r.Jurisdictions[i] = strings.TrimSpace(j)
		if r.Jurisdictions[i] == "" {
			return dErrors.New(dErrors.CodeValidation, "jurisdictions must not contain empty entries")
		}
	}
	return nil
}

// Draft converts the validated request into a service draft.
func (r *ScheduleRequest) Draft() schedule.Draft {
	draft := schedule.Draft{
		TenantID:      r.parsedTenantID,
		Sectors:       r.parsedSectors,
		Jurisdictions: r.Jurisdictions,
		Periodicity:   r.parsedPeriodicity,
		NotifyTargets: r.NotifyTargets,
		Format:        r.parsedFormat,
	}
	if r.NextDue != nil {
		draft.NextDue = r.NextDue.UTC()
	}
	return draft
}
