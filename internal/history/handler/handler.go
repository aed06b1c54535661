package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"complia/internal/history"
	"complia/internal/report"
	"complia/internal/validation"
	id "complia/pkg/domain"
	dErrors "complia/pkg/domain-errors"
	"complia/pkg/platform/httputil"
	"complia/pkg/requestcontext"
)

// Service defines the interface for history lookups.
type Service interface {
	ListByTenant(ctx context.Context, tenantID id.TenantID, from, to time.Time) ([]history.Record, error)
}

// Handler wires report retrieval endpoints to the history service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs a history handler with its dependencies.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts report endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/reports/{tenantID}", h.HandleListReports)
}

// HandleListReports handles GET /reports/{tenantID}?from=&to=&format=.
//
// JSON returns every record in range. XML and CSV are single-document
// export formats, so they render the most recent successful report in the
// range.
func (h *Handler) HandleListReports(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	tenantID, err := id.ParseTenantID(chi.URLParam(r, "tenantID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	from, err := parseTimeParam(r, "from")
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	to, err := parseTimeParam(r, "to")
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	format := id.DefaultFormat()
	if raw := r.URL.Query().Get("format"); raw != "" {
		format, err = id.ParseReportFormat(raw)
		if err != nil {
			httputil.WriteError(w, err)
			return
		}
	}

	records, err := h.service.ListByTenant(ctx, tenantID, from, to)
	if err != nil {
		h.logger.ErrorContext(ctx, "history lookup failed",
			"request_id", requestID,
			"tenant_id", tenantID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	if format == id.FormatJSON {
		httputil.WriteJSON(w, http.StatusOK, FromRecords(tenantID, records))
		return
	}

	latest := latestReport(records)
	if latest == nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeNotFound, "no report in the requested range"))
		return
	}
	body, err := report.Render(latest, format)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	w.Header().Set("Content-Type", format.ContentType())
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

func parseTimeParam(r *http.Request, name string) (time.Time, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, dErrors.New(dErrors.CodeValidation, name+" must be RFC 3339")
	}
	return t, nil
}

func latestReport(records []history.Record) *validation.AggregatedReport {
	for i := len(records) - 1; i >= 0; i-- {
		if records[i].Report != nil {
			return records[i].Report
		}
	}
	return nil
}
