package handler

import (
	"encoding/json"
	"net/http"

	"rosemary-store/internal/cart"
	"rosemary-store/internal/middleware"
	"rosemary-store/internal/model"
	"rosemary-store/internal/service"

	"github.com/rs/zerolog"
)

// CartHandler serves the session cart. Each request loads the session's
// cart, applies one edit and saves it back.
type CartHandler struct {
	carts   *cart.Store
	service service.CartService
	logger  zerolog.Logger
}

// NewCartHandler creates a new cart handler.
func NewCartHandler(carts *cart.Store, service service.CartService, logger zerolog.Logger) *CartHandler {
	return &CartHandler{
		carts:   carts,
		service: service,
		logger:  logger.With().Str("handler", "cart").Logger(),
	}
}

// Get handles GET /api/cart requests.
func (h *CartHandler) Get(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := h.session(w, r)
	if !ok {
		return
	}

	view, err := h.service.View(r.Context(), h.carts.Load(sessionID))
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, view)
}

// AddItem handles POST /api/cart/items requests.
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := h.session(w, r)
	if !ok {
		return
	}

	var req model.CartItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, model.ErrCodeInvalidJSON, "invalid request body", h.logger)
		return
	}
	if req.ProductID <= 0 {
		writeError(w, r, http.StatusBadRequest, model.ErrCodeMissingField, "productId is required", h.logger)
		return
	}

	c := h.carts.Load(sessionID)
	result, err := h.service.Add(r.Context(), c, req.ProductID, req.Quantity)
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}
	h.carts.Save(sessionID, c)

	writeJSON(w, http.StatusOK, result)
}

// SetItem handles PUT /api/cart/items/{productID} requests.
func (h *CartHandler) SetItem(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := h.session(w, r)
	if !ok {
		return
	}

	productID, ok := pathID(r, "productID")
	if !ok {
		writeError(w, r, http.StatusBadRequest, model.ErrCodeMissingField, "invalid product ID", h.logger)
		return
	}

	var req model.CartItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, model.ErrCodeInvalidJSON, "invalid request body", h.logger)
		return
	}

	c := h.carts.Load(sessionID)
	result, err := h.service.SetQuantity(r.Context(), c, productID, req.Quantity)
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}
	h.carts.Save(sessionID, c)

	writeJSON(w, http.StatusOK, result)
}

// RemoveItem handles DELETE /api/cart/items/{productID} requests.
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := h.session(w, r)
	if !ok {
		return
	}

	productID, ok := pathID(r, "productID")
	if !ok {
		writeError(w, r, http.StatusBadRequest, model.ErrCodeMissingField, "invalid product ID", h.logger)
		return
	}

	c := h.carts.Load(sessionID)
	h.service.Remove(c, productID)
	h.carts.Save(sessionID, c)

	w.WriteHeader(http.StatusNoContent)
}

func (h *CartHandler) session(w http.ResponseWriter, r *http.Request) (string, bool) {
	sessionID := middleware.SessionFrom(r.Context())
	if sessionID == "" {
		writeError(w, r, http.StatusBadRequest, model.ErrCodeMissingField, "cart session is required", h.logger)
		return "", false
	}
	return sessionID, true
}
