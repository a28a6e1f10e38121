package model

import (
	"errors"
	"fmt"
)

// ErrorResponse represents a standardised error response.
type ErrorResponse struct {
	Error         string         `json:"error"`
	Message       string         `json:"message"`
	CorrelationID string         `json:"correlationId,omitempty"`
	Details       map[string]any `json:"details,omitempty"`
}

// Standard error codes for API responses
const (
	ErrCodeInvalidJSON       = "INVALID_JSON"
	ErrCodeMissingField      = "MISSING_FIELD"
	ErrCodeProductNotFound   = "PRODUCT_NOT_FOUND"
	ErrCodeOrderNotFound     = "ORDER_NOT_FOUND"
	ErrCodeInvalidQuantity   = "INVALID_QUANTITY"
	ErrCodeEmptyCart         = "EMPTY_CART"
	ErrCodeInsufficientStock = "INSUFFICIENT_STOCK"
	ErrCodeOrderNotPending   = "ORDER_NOT_PENDING"
	ErrCodeTransactionFailed = "TRANSACTION_FAILED"
	ErrCodeUnauthorised      = "UNAUTHORIZED"
	ErrCodeForbidden         = "FORBIDDEN"
	ErrCodeActorUnknown      = "ACTOR_UNKNOWN"
	ErrCodeInvalidProduct    = "INVALID_PRODUCT"
	ErrCodeBarcodeExists     = "BARCODE_EXISTS"
	ErrCodeProductInUse      = "PRODUCT_IN_USE"
	ErrCodeInternalError     = "INTERNAL_ERROR"
)

// Domain errors for business logic
type DomainError struct {
	Code    string
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Common domain errors
var (
	ErrProductNotFound   = NewDomainError(ErrCodeProductNotFound, "Product not found")
	ErrOrderNotFound     = NewDomainError(ErrCodeOrderNotFound, "Order not found")
	ErrInvalidQuantity   = NewDomainError(ErrCodeInvalidQuantity, "Quantity must be greater than zero")
	ErrEmptyCart         = NewDomainError(ErrCodeEmptyCart, "Cart is empty")
	ErrInsufficientStock = NewDomainError(ErrCodeInsufficientStock, "Not enough stock to fulfil the request")
	ErrOrderNotPending   = NewDomainError(ErrCodeOrderNotPending, "Order already handled")
	ErrTransactionFailed = NewDomainError(ErrCodeTransactionFailed, "Transaction failed, please retry")
	ErrActorNotAllowed   = NewDomainError(ErrCodeForbidden, "Actor is not allowed to perform this action")
	ErrActorUnknown      = NewDomainError(ErrCodeActorUnknown, "Actor is not registered with the store")
	ErrBarcodeExists     = NewDomainError(ErrCodeBarcodeExists, "Another product already uses this barcode")
	ErrProductInUse      = NewDomainError(ErrCodeProductInUse, "Product appears on existing orders and cannot be deleted")
)

// InsufficientStockError names the product whose requested quantity exceeds
// the stock on hand. It matches ErrInsufficientStock with errors.Is.
type InsufficientStockError struct {
	ProductID   int64
	ProductName string
	Available   int
	Requested   int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %q (product %d): requested %d, available %d",
		e.ProductName, e.ProductID, e.Requested, e.Available)
}

// Is reports whether target is ErrInsufficientStock.
func (e *InsufficientStockError) Is(target error) bool {
	return target == ErrInsufficientStock
}

// TransactionError reports a store-level failure that rolled the whole
// transaction back. The caller may retry from scratch.
type TransactionError struct {
	Op  string
	Err error
}

func (e *TransactionError) Error() string {
	return fmt.Sprintf("transaction failed during %s: %v", e.Op, e.Err)
}

func (e *TransactionError) Unwrap() error {
	return e.Err
}

// Is reports whether target is ErrTransactionFailed.
func (e *TransactionError) Is(target error) bool {
	return target == ErrTransactionFailed
}

// NewTransactionError wraps err as a TransactionError for the given operation.
func NewTransactionError(op string, err error) *TransactionError {
	return &TransactionError{Op: op, Err: err}
}

// CodeOf returns the API error code carried by err, or ErrCodeInternalError.
func CodeOf(err error) string {
	switch {
	case errors.Is(err, ErrInsufficientStock):
		return ErrCodeInsufficientStock
	case errors.Is(err, ErrTransactionFailed):
		return ErrCodeTransactionFailed
	}

	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Code
	}
	return ErrCodeInternalError
}
