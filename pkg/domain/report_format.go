package domain

import (
	"strings"

	dErrors "complia/pkg/domain-errors"
)

// ReportFormat selects the serialization of an aggregated report.
type ReportFormat string

const (
	FormatJSON ReportFormat = "JSON"
	FormatXML  ReportFormat = "XML"
	FormatCSV  ReportFormat = "CSV"
)

var knownFormats = map[ReportFormat]string{
	FormatJSON: "application/json",
	FormatXML:  "application/xml",
	FormatCSV:  "text/csv",
}

// ParseReportFormat validates and returns a ReportFormat.
// An unknown format is a caller error, never a panic downstream.
func ParseReportFormat(s string) (ReportFormat, error) {
	f := ReportFormat(strings.ToUpper(strings.TrimSpace(s)))
	if _, ok := knownFormats[f]; !ok {
		return "", dErrors.New(dErrors.CodeUnsupportedFormat, "unsupported report format: "+s)
	}
	return f, nil
}

func (f ReportFormat) String() string {
	return string(f)
}

// IsValid reports whether the format is supported.
func (f ReportFormat) IsValid() bool {
	_, ok := knownFormats[f]
	return ok
}

// ContentType returns the MIME type for HTTP responses.
func (f ReportFormat) ContentType() string {
	return knownFormats[f]
}

// DefaultFormat is used when a schedule or request does not specify one.
func DefaultFormat() ReportFormat {
	return FormatJSON
}
