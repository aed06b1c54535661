package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"complia/internal/schedule"
	id "complia/pkg/domain"
	"complia/pkg/platform/httputil"
)

// Service defines the interface for schedule administration.
type Service interface {
	Create(ctx context.Context, draft schedule.Draft) (*schedule.Entry, error)
	Get(ctx context.Context, scheduleID id.ScheduleID) (*schedule.Entry, error)
	Update(ctx context.Context, scheduleID id.ScheduleID, draft schedule.Draft) (*schedule.Entry, error)
	Delete(ctx context.Context, scheduleID id.ScheduleID) error
	ListByTenant(ctx context.Context, tenantID id.TenantID) ([]schedule.Entry, error)
}

// Handler wires schedule CRUD endpoints to the schedule service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs a schedule handler with its dependencies.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts schedule endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/schedules", h.HandleCreate)
	r.Get("/schedules/{scheduleID}", h.HandleGet)
	r.Put("/schedules/{scheduleID}", h.HandleUpdate)
	r.Delete("/schedules/{scheduleID}", h.HandleDelete)
	r.Get("/tenants/{tenantID}/schedules", h.HandleListByTenant)
}

// HandleCreate handles POST /schedules.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	req, ok := httputil.Decode[ScheduleRequest](w, r, h.logger)
	if !ok {
		return
	}
	if err := req.Validate(true); err != nil {
		httputil.WriteError(w, err)
		return
	}

	entry, err := h.service.Create(ctx, req.Draft())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, FromEntry(entry))
}

// HandleGet handles GET /schedules/{scheduleID}.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	scheduleID, err := id.ParseScheduleID(chi.URLParam(r, "scheduleID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	entry, err := h.service.Get(r.Context(), scheduleID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromEntry(entry))
}

// HandleUpdate handles PUT /schedules/{scheduleID}.
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	scheduleID, err := id.ParseScheduleID(chi.URLParam(r, "scheduleID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, ok := httputil.Decode[ScheduleRequest](w, r, h.logger)
	if !ok {
		return
	}
	if err := req.Validate(false); err != nil {
		httputil.WriteError(w, err)
		return
	}

	entry, err := h.service.Update(r.Context(), scheduleID, req.Draft())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromEntry(entry))
}

// HandleDelete handles DELETE /schedules/{scheduleID}.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	scheduleID, err := id.ParseScheduleID(chi.URLParam(r, "scheduleID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if err := h.service.Delete(r.Context(), scheduleID); err != nil {
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleListByTenant handles GET /tenants/{tenantID}/schedules.
func (h *Handler) HandleListByTenant(w http.ResponseWriter, r *http.Request) {
	tenantID, err := id.ParseTenantID(chi.URLParam(r, "tenantID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	entries, err := h.service.ListByTenant(r.Context(), tenantID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromEntries(tenantID, entries))
}
