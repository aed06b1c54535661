// Package handler exposes tenant validator configuration over HTTP.
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"complia/internal/tenantcfg"
	id "complia/pkg/domain"
	"complia/pkg/platform/httputil"
)

// Service manages tenant validator configurations.
type Service interface {
	Get(ctx context.Context, tenantID id.TenantID) (*tenantcfg.Config, error)
	Set(ctx context.Context, tenantID id.TenantID, sectors []id.Sector) (*tenantcfg.Config, error)
}

// Handler serves the tenant configuration endpoints.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// NewHandler builds the tenant configuration handler.
func NewHandler(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts the tenant configuration routes.
func (h *Handler) Register(r chi.Router) {
	r.Get("/tenants/{tenantID}/config", h.HandleGetConfig)
	r.Put("/tenants/{tenantID}/config", h.HandlePutConfig)
}

// HandleGetConfig returns the tenant's validator configuration.
func (h *Handler) HandleGetConfig(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	tenantID, err := id.ParseTenantID(chi.URLParam(r, "tenantID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	cfg, err := h.service.Get(ctx, tenantID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, FromConfig(cfg))
}

// HandlePutConfig replaces the tenant's active sector set.
func (h *Handler) HandlePutConfig(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	tenantID, err := id.ParseTenantID(chi.URLParam(r, "tenantID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	req, ok := httputil.Decode[ConfigRequest](w, r, h.logger)
	if !ok {
		return
	}
	if err := req.Validate(); err != nil {
		httputil.WriteError(w, err)
		return
	}

	cfg, err := h.service.Set(ctx, tenantID, req.ParsedSectors())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "tenant validator configuration updated",
		"tenant_id", tenantID,
		"sectors", cfg.Sectors,
	)

	httputil.WriteJSON(w, http.StatusOK, FromConfig(cfg))
}
