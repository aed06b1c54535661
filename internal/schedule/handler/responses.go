package handler

import (
	"time"

	"complia/internal/schedule"
	id "complia/pkg/domain"
)

// ScheduleResponse is the HTTP representation of one schedule entry.
type ScheduleResponse struct {
	ID            string    `json:"id"`
	TenantID      string    `json:"tenant_id"`
	Sectors       []string  `json:"sectors"`
	Jurisdictions []string  `json:"jurisdictions"`
	Periodicity   string    `json:"periodicity"`
	NextDue       time.Time `json:"next_due"`
	NotifyTargets []string  `json:"notify_targets"`
	Format        string    `json:"format"`
	State         string    `json:"state"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// ListResponse is the HTTP response for GET /tenants/{tenantID}/schedules.
type ListResponse struct {
	TenantID  string             `json:"tenant_id"`
	Schedules []ScheduleResponse `json:"schedules"`
}

// FromEntry converts a schedule entry to its HTTP representation.
func FromEntry(e *schedule.Entry) *ScheduleResponse {
	sectors := make([]string, len(e.Sectors))
	for i, s := range e.Sectors {
		sectors[i] = s.String()
	}
	return &ScheduleResponse{
		ID:            e.ID.String(),
		TenantID:      e.TenantID.String(),
		Sectors:       sectors,
		Jurisdictions: e.Jurisdictions,
		Periodicity:   e.Periodicity.String(),
		NextDue:       e.NextDue,
		NotifyTargets: e.NotifyTargets,
		Format:        e.Format.String(),
		State:         string(e.State),
		CreatedAt:     e.CreatedAt,
		UpdatedAt:     e.UpdatedAt,
	}
}

// FromEntries converts a tenant's schedules to the list response.
func FromEntries(tenantID id.TenantID, entries []schedule.Entry) *ListResponse {
	resp := &ListResponse{
		TenantID:  tenantID.String(),
		Schedules: make([]ScheduleResponse, len(entries)),
	}
	for i := range entries {
		resp.Schedules[i] = *FromEntry(&entries[i])
	}
	return resp
}
