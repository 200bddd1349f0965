package handler

import (
	"net/http"

	"marketplace/internal/middleware"
	"marketplace/internal/model"
	"marketplace/internal/service"

	"github.com/rs/zerolog"
)

// CartHandler handles the session cart and buy-now requests.
type CartHandler struct {
	service service.CartService
	logger  zerolog.Logger
}

// NewCartHandler creates a new cart handler.
func NewCartHandler(service service.CartService, logger zerolog.Logger) *CartHandler {
	return &CartHandler{
		service: service,
		logger:  logger.With().Str("handler", "cart").Logger(),
	}
}

// View handles GET /api/cart requests.
func (h *CartHandler) View(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	quote, err := h.service.View(ctx, middleware.PrincipalFrom(ctx), middleware.SessionIDFrom(ctx))
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, quote)
}

// AddItem handles POST /api/cart/items requests.
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req model.LineRequest
	if err := decodeJSON(r, &req); err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	ctx := r.Context()
	quote, err := h.service.AddItem(ctx, middleware.PrincipalFrom(ctx), middleware.SessionIDFrom(ctx), &req)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, quote)
}

// SetQuantity handles PUT /api/cart/items/{productId} requests.
func (h *CartHandler) SetQuantity(w http.ResponseWriter, r *http.Request) {
	var req model.QuantityRequest
	if err := decodeJSON(r, &req); err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	ctx := r.Context()
	quote, err := h.service.SetQuantity(ctx, middleware.PrincipalFrom(ctx), middleware.SessionIDFrom(ctx), r.PathValue("productId"), req.Quantity)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, quote)
}

// RemoveItem handles DELETE /api/cart/items/{productId} requests.
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	quote, err := h.service.RemoveItem(ctx, middleware.PrincipalFrom(ctx), middleware.SessionIDFrom(ctx), r.PathValue("productId"))
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, quote)
}

// BuyNow handles POST /api/buy-now requests.
func (h *CartHandler) BuyNow(w http.ResponseWriter, r *http.Request) {
	var req model.LineRequest
	if err := decodeJSON(r, &req); err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	ctx := r.Context()
	quote, err := h.service.BuyNow(ctx, middleware.PrincipalFrom(ctx), middleware.SessionIDFrom(ctx), &req)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, quote)
}
