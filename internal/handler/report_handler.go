package handler

import (
	"net/http"

	"rosemary-store/internal/model"
	"rosemary-store/internal/service"

	"github.com/rs/zerolog"
)

// ReportHandler serves read-only reports to employees.
type ReportHandler struct {
	service service.ReportService
	logger  zerolog.Logger
}

// NewReportHandler creates a new report handler.
func NewReportHandler(service service.ReportService, logger zerolog.Logger) *ReportHandler {
	return &ReportHandler{
		service: service,
		logger:  logger.With().Str("handler", "report").Logger(),
	}
}

// LowStock handles GET /api/reports/low-stock?threshold= requests.
func (h *ReportHandler) LowStock(w http.ResponseWriter, r *http.Request) {
	if !h.requireEmployee(w, r) {
		return
	}

	threshold, err := queryInt(r, "threshold", 0)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, model.ErrCodeMissingField, "invalid threshold parameter", h.logger)
		return
	}

	items, err := h.service.LowStock(r.Context(), threshold)
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, items)
}

// MonthlySales handles GET /api/reports/monthly-sales?months= requests.
func (h *ReportHandler) MonthlySales(w http.ResponseWriter, r *http.Request) {
	if !h.requireEmployee(w, r) {
		return
	}

	months, err := queryInt(r, "months", 0)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, model.ErrCodeMissingField, "invalid months parameter", h.logger)
		return
	}

	sales, err := h.service.MonthlySales(r.Context(), months)
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, sales)
}

// EmployeeSales handles GET /api/reports/employee-sales requests.
func (h *ReportHandler) EmployeeSales(w http.ResponseWriter, r *http.Request) {
	if !h.requireEmployee(w, r) {
		return
	}

	sales, err := h.service.EmployeeSales(r.Context())
	if err != nil {
		writeServiceError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, sales)
}

func (h *ReportHandler) requireEmployee(w http.ResponseWriter, r *http.Request) bool {
	actor, ok := requireActor(w, r, h.logger)
	if !ok {
		return false
	}
	if _, ok := actor.EmployeeID(); !ok {
		writeServiceError(w, r, model.ErrActorNotAllowed, h.logger)
		return false
	}
	return true
}
