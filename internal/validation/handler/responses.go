package handler

import (
	"time"

	"complia/internal/validation"
	id "complia/pkg/domain"
)

// ValidateResponse is the HTTP response for POST /validate.
type ValidateResponse struct {
	RunID         string              `json:"run_id,omitempty"`
	Tenant        string              `json:"tenant"`
	Sectors       []string            `json:"sectors"`
	Jurisdictions []string            `json:"jurisdictions"`
	Results       []validation.Result `json:"results"`
	Score         float64             `json:"score"`
	IRR           string              `json:"irr"`
	GeneratedAt   time.Time           `json:"generatedAt"`
}

// FromReport converts an aggregated report to an HTTP response. A zero run
// ID means the report was not persisted.
func FromReport(report *validation.AggregatedReport, runID id.RunID) *ValidateResponse {
	sectors := make([]string, len(report.Sectors))
	for i, s := range report.Sectors {
		sectors[i] = s.String()
	}

	resp := &ValidateResponse{
		Tenant:        report.TenantID.String(),
		Sectors:       sectors,
		Jurisdictions: report.Jurisdictions,
		Results:       report.Results,
		Score:         report.Score,
		IRR:           report.IRR.String(),
		GeneratedAt:   report.GeneratedAt,
	}
	if !runID.IsNil() {
		resp.RunID = runID.String()
	}
	return resp
}
