package handler

import (
	"context"
	"net/http"

	"rosemary-store/internal/model"
	"rosemary-store/internal/service"

	"github.com/rs/zerolog"
)

// OrderHandler handles order lookups and the employee fulfillment workflow.
type OrderHandler struct {
	service service.FulfillmentService
	logger  zerolog.Logger
}

// NewOrderHandler creates a new order handler.
func NewOrderHandler(service service.FulfillmentService, logger zerolog.Logger) *OrderHandler {
	return &OrderHandler{
		service: service,
		logger:  logger.With().Str("handler", "order").Logger(),
	}
}

// GetByID handles GET /api/orders/{id} requests.
func (h *OrderHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r, h.logger)
	if !ok {
		return
	}

	orderID, ok := pathID(r, "id")
	if !ok {
		writeError(w, r, http.StatusBadRequest, model.ErrCodeMissingField, "invalid order ID", h.logger)
		return
	}

	order, err := h.service.Get(r.Context(), actor, orderID)
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, order)
}

// List handles GET /api/employee/orders?status= requests. Status defaults to pending.
func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r, h.logger)
	if !ok {
		return
	}

	status := model.OrderStatusPending
	if raw := r.URL.Query().Get("status"); raw != "" {
		parsed, err := model.ParseOrderStatus(raw)
		if err != nil {
			writeError(w, r, http.StatusBadRequest, model.ErrCodeMissingField, err.Error(), h.logger)
			return
		}
		status = parsed
	}

	limit, err := queryInt(r, "limit", 10)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, model.ErrCodeMissingField, "invalid limit parameter", h.logger)
		return
	}
	offset, err := queryInt(r, "offset", 0)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, model.ErrCodeMissingField, "invalid offset parameter", h.logger)
		return
	}

	orders, err := h.service.ListByStatus(r.Context(), actor, status, limit, offset)
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, orders)
}

// Accept handles POST /api/employee/orders/{id}/accept requests.
func (h *OrderHandler) Accept(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.service.Accept)
}

// Reject handles POST /api/employee/orders/{id}/reject requests.
func (h *OrderHandler) Reject(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.service.Reject)
}

func (h *OrderHandler) transition(
	w http.ResponseWriter,
	r *http.Request,
	fn func(ctx context.Context, actor model.Actor, orderID int64) (*model.Order, error),
) {
	actor, ok := requireActor(w, r, h.logger)
	if !ok {
		return
	}

	orderID, ok := pathID(r, "id")
	if !ok {
		writeError(w, r, http.StatusBadRequest, model.ErrCodeMissingField, "invalid order ID", h.logger)
		return
	}

	order, err := fn(r.Context(), actor, orderID)
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, order)
}
