package handler

import (
	"time"

	"complia/internal/history"
	"complia/internal/validation"
	id "complia/pkg/domain"
)

// ListResponse is the HTTP response for GET /reports/{tenantID}.
type ListResponse struct {
	TenantID string           `json:"tenant_id"`
	Records  []RecordResponse `json:"records"`
}

// RecordResponse is one history entry. Failure and Report are mutually
// exclusive.
type RecordResponse struct {
	RunID      string                       `json:"run_id"`
	Trigger    string                       `json:"trigger"`
	RecordedAt time.Time                    `json:"recorded_at"`
	Failure    string                       `json:"failure,omitempty"`
	Report     *validation.AggregatedReport `json:"report,omitempty"`
}

// FromRecords converts history records to the HTTP response.
func FromRecords(tenantID id.TenantID, records []history.Record) *ListResponse {
	resp := &ListResponse{
		TenantID: tenantID.String(),
		Records:  make([]RecordResponse, len(records)),
	}
	for i, rec := range records {
		resp.Records[i] = RecordResponse{
			RunID:      rec.ID.String(),
			Trigger:    string(rec.Trigger),
			RecordedAt: rec.RecordedAt,
			Failure:    rec.Failure,
			Report:     rec.Report,
		}
	}
	return resp
}
