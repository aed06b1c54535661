package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"complia/internal/validation"
	id "complia/pkg/domain"
	"complia/pkg/platform/httputil"
	"complia/pkg/requestcontext"
)

// Service defines the interface for validation operations.
type Service interface {
	Validate(ctx context.Context, tenantID id.TenantID, sectors []id.Sector, jurisdictions []string) (*validation.AggregatedReport, error)
}

// Recorder persists a finished report to the validation history. Implemented
// by the history service.
type Recorder interface {
	Record(ctx context.Context, trigger validation.Trigger, report *validation.AggregatedReport) (id.RunID, error)
}

// Handler wires validation endpoints to the orchestrator.
type Handler struct {
	service  Service
	recorder Recorder
	logger   *slog.Logger
}

// New constructs a validation handler with its dependencies.
func New(service Service, recorder Recorder, logger *slog.Logger) *Handler {
	return &Handler{
		service:  service,
		recorder: recorder,
		logger:   logger,
	}
}

// Register mounts validation endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/validate", h.HandleValidate)
}

// HandleValidate handles POST /validate requests.
func (h *Handler) HandleValidate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	start := time.Now()

	req, ok := httputil.Decode[ValidateRequest](w, r, h.logger)
	if !ok {
		return
	}
	if err := req.Validate(); err != nil {
		httputil.WriteError(w, err)
		return
	}

	report, err := h.service.Validate(ctx, req.ParsedTenantID(), req.ParsedSectors(), req.Jurisdictions)
	if err != nil {
		h.logger.ErrorContext(ctx, "validation run failed",
			"request_id", requestID,
			"tenant_id", req.TenantID,
			"sectors", req.Sectors,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	var runID id.RunID
	if req.Persist {
		if h.recorder == nil {
			httputil.WriteError(w, errPersistUnavailable)
			return
		}
		runID, err = h.recorder.Record(ctx, validation.TriggerAdHoc, report)
		if err != nil {
			h.logger.ErrorContext(ctx, "report persistence failed",
				"request_id", requestID,
				"tenant_id", req.TenantID,
				"error", err,
			)
			httputil.WriteError(w, err)
			return
		}
	}

	h.logger.InfoContext(ctx, "validation run completed",
		"request_id", requestID,
		"tenant_id", req.TenantID,
		"sectors", req.Sectors,
		"score", report.Score,
		"irr", report.IRR,
		"persisted", req.Persist,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	httputil.WriteJSON(w, http.StatusOK, FromReport(report, runID))
}
