package report

import (
	"bytes"
	"encoding/csv"
	"encoding/xml"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"complia/internal/validation"
	id "complia/pkg/domain"
	dErrors "complia/pkg/domain-errors"
)

func sampleReport() *validation.AggregatedReport {
	generatedAt := time.Date(2025, 6, 15, 9, 30, 0, 0, time.UTC)
	return &validation.AggregatedReport{
		TenantID:      id.TenantID(uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8")),
		Sectors:       []id.Sector{id.SectorHealthcare, id.SectorFinancial},
		Jurisdictions: []string{"EU"},
		Results: []validation.Result{
			{
				Sector:       id.SectorFinancial,
				Regulation:   "PSD2",
				Jurisdiction: "EU",
				Outcome:      id.OutcomeFail,
				Score:        0,
				Evidence:     "strong customer authentication <not> enforced & logged",
				Timestamp:    generatedAt,
			},
			{
				Sector:       id.SectorHealthcare,
				Regulation:   "GDPR_HEALTH",
				Jurisdiction: "EU",
				Outcome:      id.OutcomePass,
				Score:        100,
				Timestamp:    generatedAt,
			},
		},
		Score:       50,
		IRR:         id.IRR4,
		GeneratedAt: generatedAt,
	}
}

func TestRenderJSONCanonicalOrder(t *testing.T) {
	out, err := Render(sampleReport(), id.FormatJSON)
	require.NoError(t, err)

	doc := string(out)
	keys := []string{`"tenant"`, `"sectors"`, `"jurisdictions"`, `"results"`, `"irr"`, `"generatedAt"`}
	prev := -1
	for _, key := range keys {
		idx := strings.Index(doc, key)
		require.GreaterOrEqual(t, idx, 0, "missing key %s", key)
		assert.Greater(t, idx, prev, "key %s out of canonical order", key)
		prev = idx
	}
	// Top-level score sits between the results array and the irr field.
	scoreIdx := strings.LastIndex(doc, `"score"`)
	assert.Greater(t, scoreIdx, strings.Index(doc, `"results"`))
	assert.Less(t, scoreIdx, strings.Index(doc, `"irr"`))
}

func TestRenderJSONScorePrecision(t *testing.T) {
	rep := sampleReport()
	rep.Score = 66.66666666
	out, err := Render(rep, id.FormatJSON)
	require.NoError(t, err)
	assert.Contains(t, string(out), `"score": 66.67`)
	assert.Contains(t, string(out), `"score": 100.00`)
}

func TestJSONRoundTrip(t *testing.T) {
	original := sampleReport()
	out, err := Render(original, id.FormatJSON)
	require.NoError(t, err)

	parsed, err := ParseJSON(out)
	require.NoError(t, err)
	assert.Equal(t, original, parsed)
}

func TestParseJSONRejectsBadInput(t *testing.T) {
	cases := []struct {
		name string
		doc  string
	}{
		{"not json", `tenant: yaml`},
		{"bad tenant id", `{"tenant":"nope","sectors":[],"results":[],"score":0.00,"irr":"R4"}`},
		{"unknown sector", `{"tenant":"6ba7b810-9dad-11d1-80b4-00c04fd430c8","sectors":["RETAIL"],"results":[],"score":0.00,"irr":"R4"}`},
		{"score out of range", `{"tenant":"6ba7b810-9dad-11d1-80b4-00c04fd430c8","sectors":[],"results":[],"score":250.00,"irr":"R4"}`},
		{"unknown irr", `{"tenant":"6ba7b810-9dad-11d1-80b4-00c04fd430c8","sectors":[],"results":[],"score":0.00,"irr":"R9"}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseJSON([]byte(tc.doc))
			require.Error(t, err)
		})
	}
}

func TestRenderXML(t *testing.T) {
	out, err := Render(sampleReport(), id.FormatXML)
	require.NoError(t, err)

	assert.True(t, bytes.HasPrefix(out, []byte(xml.Header)))

	var decoded xmlReport
	require.NoError(t, xml.Unmarshal(out, &decoded), "output must stay well-formed")
	require.Len(t, decoded.Results, 2)
	assert.Equal(t, "PSD2", decoded.Results[0].Regulation)
	assert.Equal(t, "50.00", decoded.Score)
	assert.Equal(t, "R4", decoded.IRR)

	// Evidence text must be escaped in the raw document.
	assert.Contains(t, string(out), "&lt;not&gt; enforced &amp; logged")
	assert.NotContains(t, string(out), "<not>")
}

func TestRenderCSV(t *testing.T) {
	out, err := Render(sampleReport(), id.FormatCSV)
	require.NoError(t, err)

	rows, err := csv.NewReader(bytes.NewReader(out)).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 4, "header, two results, summary")

	assert.Equal(t, csvHeader, rows[0])
	assert.Equal(t, "PSD2", rows[1][1])
	assert.Equal(t, "GDPR_HEALTH", rows[2][1])

	summary := rows[3]
	assert.Equal(t, "SUMMARY", summary[0])
	assert.Equal(t, "R4", summary[3])
	assert.Equal(t, "50.00", summary[4])
}

func TestRenderUnsupportedFormat(t *testing.T) {
	_, err := Render(sampleReport(), id.ReportFormat("PDF"))
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnsupportedFormat))

	_, err = id.ParseReportFormat("yaml")
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnsupportedFormat))
}
