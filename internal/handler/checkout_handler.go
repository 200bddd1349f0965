package handler

import (
	"net/http"

	"marketplace/internal/middleware"
	"marketplace/internal/model"
	"marketplace/internal/pricing"
	"marketplace/internal/service"

	"github.com/rs/zerolog"
)

// CheckoutHandler handles checkout preview and order placement.
type CheckoutHandler struct {
	service service.CheckoutService
	logger  zerolog.Logger
}

// NewCheckoutHandler creates a new checkout handler.
func NewCheckoutHandler(service service.CheckoutService, logger zerolog.Logger) *CheckoutHandler {
	return &CheckoutHandler{
		service: service,
		logger:  logger.With().Str("handler", "checkout").Logger(),
	}
}

// Preview handles GET /api/checkout requests. Optional lat and lng query
// parameters price delivery by distance; malformed values are ignored.
func (h *CheckoutHandler) Preview(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := r.URL.Query()
	dest := pricing.ParsePoint(q.Get("lat"), q.Get("lng"))

	quote, err := h.service.Preview(ctx, middleware.PrincipalFrom(ctx), middleware.SessionIDFrom(ctx), dest)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, quote)
}

// Checkout handles POST /api/checkout requests.
func (h *CheckoutHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	var req model.CheckoutRequest
	if err := decodeJSON(r, &req); err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	ctx := r.Context()
	order, err := h.service.Checkout(ctx, middleware.PrincipalFrom(ctx), middleware.SessionIDFrom(ctx), &req)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusCreated, order)
}
