// Package report renders aggregated validation reports into the supported
// export formats. JSON is the canonical format and round-trips back into an
// equivalent report; XML and CSV are write-only.
package report

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"encoding/xml"
	"strconv"
	"time"

	"complia/internal/validation"
	id "complia/pkg/domain"
	dErrors "complia/pkg/domain-errors"
)

// Render serializes the report in the given format. An unknown format is a
// caller error, never a panic.
func Render(rep *validation.AggregatedReport, format id.ReportFormat) ([]byte, error) {
	if rep == nil {
		return nil, dErrors.New(dErrors.CodeBadRequest, "report is required")
	}
	switch format {
	case id.FormatJSON:
		return renderJSON(rep)
	case id.FormatXML:
		return renderXML(rep)
	case id.FormatCSV:
		return renderCSV(rep)
	default:
		return nil, dErrors.New(dErrors.CodeUnsupportedFormat, "unsupported report format: "+format.String())
	}
}

// jsonReport fixes the canonical field order: tenant, sectors,
// jurisdictions, results, score, irr, generatedAt.
type jsonReport struct {
	Tenant        string       `json:"tenant"`
	Sectors       []string     `json:"sectors"`
	Jurisdictions []string     `json:"jurisdictions"`
	Results       []jsonResult `json:"results"`
	Score         json.Number  `json:"score"`
	IRR           string       `json:"irr"`
	GeneratedAt   time.Time    `json:"generatedAt"`
}

type jsonResult struct {
	Sector       string      `json:"sector"`
	Regulation   string      `json:"regulation"`
	Jurisdiction string      `json:"jurisdiction"`
	Outcome      string      `json:"outcome"`
	Score        json.Number `json:"score"`
	Evidence     string      `json:"evidence,omitempty"`
	Timestamp    time.Time   `json:"timestamp"`
}

// formatScore renders scores with fixed two-decimal precision.
func formatScore(v float64) json.Number {
	return json.Number(strconv.FormatFloat(v, 'f', 2, 64))
}

func renderJSON(rep *validation.AggregatedReport) ([]byte, error) {
	out := jsonReport{
		Tenant:        rep.TenantID.String(),
		Sectors:       sectorStrings(rep.Sectors),
		Jurisdictions: rep.Jurisdictions,
		Results:       make([]jsonResult, len(rep.Results)),
		Score:         formatScore(rep.Score),
		IRR:           rep.IRR.String(),
		GeneratedAt:   rep.GeneratedAt,
	}
	for i, r := range rep.Results {
		out.Results[i] = jsonResult{
			Sector:       r.Sector.String(),
			Regulation:   r.Regulation,
			Jurisdiction: r.Jurisdiction,
			Outcome:      r.Outcome.String(),
			Score:        formatScore(r.Score),
			Evidence:     r.Evidence,
			Timestamp:    r.Timestamp,
		}
	}
	return json.MarshalIndent(out, "", "  ")
}

// ParseJSON decodes a JSON report produced by Render back into an
// AggregatedReport. Scores carry at most the serialized two-decimal
// precision.
func ParseJSON(data []byte) (*validation.AggregatedReport, error) {
	var wire jsonReport
	if err := json.Unmarshal(data, &wire); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInvalidInput, "malformed report JSON")
	}

	tenantID, err := id.ParseTenantID(wire.Tenant)
	if err != nil {
		return nil, err
	}
	sectors, err := id.ParseSectors(wire.Sectors)
	if err != nil {
		return nil, err
	}
	score, err := parseScore(wire.Score)
	if err != nil {
		return nil, err
	}
	irr, err := id.ParseIRRLevel(wire.IRR)
	if err != nil {
		return nil, err
	}

	rep := &validation.AggregatedReport{
		TenantID:      tenantID,
		Sectors:       sectors,
		Jurisdictions: wire.Jurisdictions,
		Results:       make([]validation.Result, len(wire.Results)),
		Score:         score,
		IRR:           irr,
		GeneratedAt:   wire.GeneratedAt,
	}
	for i, r := range wire.Results {
		sector, err := id.ParseSector(r.Sector)
		if err != nil {
			return nil, err
		}
		outcome, err := id.ParseOutcome(r.Outcome)
		if err != nil {
			return nil, err
		}
		subScore, err := parseScore(r.Score)
		if err != nil {
			return nil, err
		}
		rep.Results[i] = validation.Result{
			Sector:       sector,
			Regulation:   r.Regulation,
			Jurisdiction: r.Jurisdiction,
			Outcome:      outcome,
			Score:        subScore,
			Evidence:     r.Evidence,
			Timestamp:    r.Timestamp,
		}
	}
	return rep, nil
}

func parseScore(n json.Number) (float64, error) {
	v, err := n.Float64()
	if err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeInvalidInput, "malformed score: "+n.String())
	}
	if v < 0 || v > 100 {
		return 0, dErrors.New(dErrors.CodeInvalidInput, "score out of range: "+n.String())
	}
	return v, nil
}

// xmlReport is the write-only XML schema. Changes must stay additive.
type xmlReport struct {
	XMLName       xml.Name    `xml:"complianceReport"`
	Tenant        string      `xml:"tenant"`
	Sectors       []string    `xml:"sectors>sector"`
	Jurisdictions []string    `xml:"jurisdictions>jurisdiction"`
	Results       []xmlResult `xml:"results>result"`
	Score         string      `xml:"score"`
	IRR           string      `xml:"irr"`
	GeneratedAt   string      `xml:"generatedAt"`
}

type xmlResult struct {
	Sector       string `xml:"sector,attr"`
	Regulation   string `xml:"regulation,attr"`
	Jurisdiction string `xml:"jurisdiction,attr"`
	Outcome      string `xml:"outcome"`
	Score        string `xml:"score"`
	Evidence     string `xml:"evidence,omitempty"`
	Timestamp    string `xml:"timestamp"`
}

func renderXML(rep *validation.AggregatedReport) ([]byte, error) {
	out := xmlReport{
		Tenant:        rep.TenantID.String(),
		Sectors:       sectorStrings(rep.Sectors),
		Jurisdictions: rep.Jurisdictions,
		Results:       make([]xmlResult, len(rep.Results)),
		Score:         string(formatScore(rep.Score)),
		IRR:           rep.IRR.String(),
		GeneratedAt:   rep.GeneratedAt.Format(time.RFC3339),
	}
	for i, r := range rep.Results {
		out.Results[i] = xmlResult{
			Sector:       r.Sector.String(),
			Regulation:   r.Regulation,
			Jurisdiction: r.Jurisdiction,
			Outcome:      r.Outcome.String(),
			Score:        string(formatScore(r.Score)),
			Evidence:     r.Evidence,
			Timestamp:    r.Timestamp.Format(time.RFC3339),
		}
	}

	body, err := xml.MarshalIndent(out, "", "  ")
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "xml rendering failed")
	}
	return append([]byte(xml.Header), body...), nil
}

// csvHeader precedes one row per result and a trailing SUMMARY row that
// carries the consolidated score in the score column and the IRR level in
// the outcome column.
var csvHeader = []string{"sector", "regulation", "jurisdiction", "outcome", "score", "evidence", "timestamp"}

func renderCSV(rep *validation.AggregatedReport) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(csvHeader); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "csv rendering failed")
	}
	for _, r := range rep.Results {
		row := []string{
			r.Sector.String(),
			r.Regulation,
			r.Jurisdiction,
			r.Outcome.String(),
			string(formatScore(r.Score)),
			r.Evidence,
			r.Timestamp.Format(time.RFC3339),
		}
		if err := w.Write(row); err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "csv rendering failed")
		}
	}
	summary := []string{
		"SUMMARY", "", "",
		rep.IRR.String(),
		string(formatScore(rep.Score)),
		"",
		rep.GeneratedAt.Format(time.RFC3339),
	}
	if err := w.Write(summary); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "csv rendering failed")
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "csv rendering failed")
	}
	return buf.Bytes(), nil
}

func sectorStrings(sectors []id.Sector) []string {
	out := make([]string, len(sectors))
	for i, s := range sectors {
		out[i] = s.String()
	}
	return out
}
