package repository

import (
	"errors"
	"fmt"
	"time"

	"rosemary-store/internal/model"

	"github.com/jackc/pgx/v5/pgconn"
)

// PostgreSQL error codes the store reacts to.
const (
	pgCheckViolation       = "23514"
	pgForeignKeyViolation  = "23503"
	pgUniqueViolation      = "23505"
	pgSerializationFailure = "40001"
	pgDeadlockDetected     = "40P01"
	pgLockNotAvailable     = "55P03"
	pgQueryCanceled        = "57014"
)

// ErrStockUnavailable is returned when a guarded stock decrement matched no
// row, either because the stock row is missing or because it would go negative.
var ErrStockUnavailable = errors.New("stock unavailable for decrement")

// Constraints whose violation means the request itself is wrong, so a retry
// cannot help.
const (
	constraintOrderCustomer   = "orders_customer_id_fkey"
	constraintOrderEmployee   = "orders_employee_id_fkey"
	constraintLineItemProduct = "order_line_items_product_id_fkey"
	constraintProductBarcode  = "products_barcode_key"
)

// IsTransient reports whether err is a store failure that rolls the
// transaction back but may succeed on a fresh attempt: lost stock races,
// check violations caused by concurrent writers, lock timeouts, deadlocks
// and serialization failures. Foreign key violations are never transient.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrStockUnavailable) {
		return true
	}

	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	switch pgErr.Code {
	case pgCheckViolation, pgSerializationFailure,
		pgDeadlockDetected, pgLockNotAvailable, pgQueryCanceled:
		return true
	}
	return false
}

// domainError translates a violated constraint into the domain error it
// stands for. Other errors are returned unchanged.
func domainError(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}

	switch {
	case pgErr.Code == pgForeignKeyViolation &&
		(pgErr.ConstraintName == constraintOrderCustomer || pgErr.ConstraintName == constraintOrderEmployee):
		return fmt.Errorf("%w: %s", model.ErrActorUnknown, pgErr.Detail)
	case pgErr.Code == pgForeignKeyViolation && pgErr.ConstraintName == constraintLineItemProduct:
		return fmt.Errorf("%w: %s", model.ErrProductInUse, pgErr.Detail)
	case pgErr.Code == pgUniqueViolation && pgErr.ConstraintName == constraintProductBarcode:
		return fmt.Errorf("%w: %s", model.ErrBarcodeExists, pgErr.Detail)
	}
	return err
}

// lockTimeoutValue renders a duration as a PostgreSQL lock_timeout setting.
func lockTimeoutValue(d time.Duration) string {
	if d <= 0 {
		return "0"
	}
	ms := d.Milliseconds()
	if ms == 0 {
		ms = 1
	}
	return fmt.Sprintf("%dms", ms)
}
