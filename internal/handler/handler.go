package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"rosemary-store/internal/middleware"
	"rosemary-store/internal/model"

	"github.com/rs/zerolog"
)

// retryAfterSeconds is advertised on 503 responses after a rolled-back transaction.
const retryAfterSeconds = "1"

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		// Headers are already sent; nothing useful left to tell the client
		return
	}
}

// writeError writes an error response with the given status code, code and message.
func writeError(w http.ResponseWriter, r *http.Request, status int, code, message string, logger zerolog.Logger) {
	writeErrorDetails(w, r, status, code, message, nil, logger)
}

func writeErrorDetails(w http.ResponseWriter, r *http.Request, status int, code, message string, details map[string]any, logger zerolog.Logger) {
	event := logger.Warn()
	if status >= http.StatusInternalServerError {
		event = logger.Error()
	}
	requestID := middleware.RequestIDFrom(r.Context())
	event.Str("error", message).
		Str("code", code).
		Int("status", status).
		Str("request_id", requestID).
		Msg("handler error")

	writeJSON(w, status, model.ErrorResponse{
		Error:         code,
		Message:       message,
		CorrelationID: requestID,
		Details:       details,
	})
}

// writeServiceError maps an error returned by a service to an HTTP response.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error, logger zerolog.Logger) {
	var stockErr *model.InsufficientStockError
	if errors.As(err, &stockErr) {
		writeErrorDetails(w, r, http.StatusConflict, model.ErrCodeInsufficientStock, stockErr.Error(), map[string]any{
			"productId":   stockErr.ProductID,
			"productName": stockErr.ProductName,
			"available":   stockErr.Available,
			"requested":   stockErr.Requested,
		}, logger)
		return
	}

	if errors.Is(err, model.ErrTransactionFailed) {
		logger.Error().Err(err).Msg("transaction rolled back")
		w.Header().Set("Retry-After", retryAfterSeconds)
		writeError(w, r, http.StatusServiceUnavailable, model.ErrCodeTransactionFailed, model.ErrTransactionFailed.Message, logger)
		return
	}

	var domainErr *model.DomainError
	if errors.As(err, &domainErr) {
		writeError(w, r, statusFor(domainErr.Code), domainErr.Code, domainErr.Message, logger)
		return
	}

	logger.Error().Err(err).Msg("unexpected service error")
	writeError(w, r, http.StatusInternalServerError, model.ErrCodeInternalError, "internal server error", logger)
}

func statusFor(code string) int {
	switch code {
	case model.ErrCodeProductNotFound, model.ErrCodeOrderNotFound:
		return http.StatusNotFound
	case model.ErrCodeInvalidQuantity, model.ErrCodeEmptyCart, model.ErrCodeInvalidJSON, model.ErrCodeMissingField,
		model.ErrCodeInvalidProduct:
		return http.StatusBadRequest
	case model.ErrCodeInsufficientStock, model.ErrCodeOrderNotPending, model.ErrCodeBarcodeExists, model.ErrCodeProductInUse:
		return http.StatusConflict
	case model.ErrCodeTransactionFailed:
		return http.StatusServiceUnavailable
	case model.ErrCodeForbidden, model.ErrCodeActorUnknown:
		return http.StatusForbidden
	case model.ErrCodeUnauthorised:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// pathID parses a positive integer path value.
func pathID(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// queryInt parses an optional integer query parameter.
func queryInt(r *http.Request, name string, defaultValue int) (int, error) {
	value := r.URL.Query().Get(name)
	if value == "" {
		return defaultValue, nil
	}
	return strconv.Atoi(value)
}

// requireActor returns the request's actor or writes a 401.
func requireActor(w http.ResponseWriter, r *http.Request, logger zerolog.Logger) (model.Actor, bool) {
	actor, ok := middleware.ActorFrom(r.Context())
	if !ok {
		writeError(w, r, http.StatusUnauthorized, model.ErrCodeUnauthorised, "actor headers are required", logger)
		return model.Actor{}, false
	}
	return actor, true
}
