package handler

import (
	"net/http"

	"marketplace/internal/middleware"
	"marketplace/internal/service"

	"github.com/rs/zerolog"
)

// DashboardHandler serves the per-role overview pages.
type DashboardHandler struct {
	service service.DashboardService
	logger  zerolog.Logger
}

// NewDashboardHandler creates a new dashboard handler.
func NewDashboardHandler(service service.DashboardService, logger zerolog.Logger) *DashboardHandler {
	return &DashboardHandler{
		service: service,
		logger:  logger.With().Str("handler", "dashboard").Logger(),
	}
}

// Buyer handles GET /api/dashboard/buyer requests.
func (h *DashboardHandler) Buyer(w http.ResponseWriter, r *http.Request) {
	d, err := h.service.Buyer(r.Context(), middleware.PrincipalFrom(r.Context()))
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

// Seller handles GET /api/dashboard/seller requests.
func (h *DashboardHandler) Seller(w http.ResponseWriter, r *http.Request) {
	d, err := h.service.Seller(r.Context(), middleware.PrincipalFrom(r.Context()))
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

// Admin handles GET /api/dashboard/admin requests.
func (h *DashboardHandler) Admin(w http.ResponseWriter, r *http.Request) {
	d, err := h.service.Admin(r.Context(), middleware.PrincipalFrom(r.Context()))
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

// Sidebar handles GET /api/dashboard/sidebar requests. It always answers 200;
// the state field tells whether figures are present.
func (h *DashboardHandler) Sidebar(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.service.Sidebar(r.Context(), middleware.PrincipalFrom(r.Context())))
}
