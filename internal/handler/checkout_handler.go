package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"rosemary-store/internal/cart"
	"rosemary-store/internal/middleware"
	"rosemary-store/internal/model"
	"rosemary-store/internal/service"

	"github.com/rs/zerolog"
)

// CheckoutHandler places the session cart as an order.
type CheckoutHandler struct {
	carts   *cart.Store
	service service.CheckoutService
	logger  zerolog.Logger
}

// NewCheckoutHandler creates a new checkout handler.
func NewCheckoutHandler(carts *cart.Store, service service.CheckoutService, logger zerolog.Logger) *CheckoutHandler {
	return &CheckoutHandler{
		carts:   carts,
		service: service,
		logger:  logger.With().Str("handler", "checkout").Logger(),
	}
}

// Checkout handles POST /api/checkout requests. The body is optional and
// defaults to an online checkout.
func (h *CheckoutHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r, h.logger)
	if !ok {
		return
	}

	sessionID := middleware.SessionFrom(r.Context())
	if sessionID == "" {
		writeError(w, r, http.StatusBadRequest, model.ErrCodeMissingField, "cart session is required", h.logger)
		return
	}

	var req model.CheckoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, r, http.StatusBadRequest, model.ErrCodeInvalidJSON, "invalid request body", h.logger)
		return
	}

	entry, err := model.ParseCheckoutEntry(req.Entry)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, model.ErrCodeInvalidJSON, err.Error(), h.logger)
		return
	}

	c := h.carts.Load(sessionID)
	result, err := h.service.Checkout(r.Context(), actor, c, entry)
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}
	h.carts.Save(sessionID, c)

	h.logger.Info().
		Int64("order_id", result.OrderID).
		Str("actor", actor.String()).
		Str("entry", string(entry)).
		Msg("checkout completed")

	writeJSON(w, http.StatusCreated, result)
}
