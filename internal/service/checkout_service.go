package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"rosemary-store/internal/cart"
	"rosemary-store/internal/model"
	"rosemary-store/internal/repository"

	"github.com/rs/zerolog"
)

// CheckoutOptions tune the checkout transaction.
type CheckoutOptions struct {
	// SystemEmployeeID attributes self-checkout orders. Zero leaves them
	// unattributed; see ResolveSystemEmployee.
	SystemEmployeeID int64
	// LockTimeout bounds row lock waits inside the transaction.
	LockTimeout time.Duration
}

// checkoutService implements CheckoutService.
type checkoutService struct {
	orderRepo repository.OrderRepository
	opts      CheckoutOptions
	logger    zerolog.Logger
}

// NewCheckoutService creates a new checkout service.
func NewCheckoutService(orderRepo repository.OrderRepository, opts CheckoutOptions, logger zerolog.Logger) CheckoutService {
	return &checkoutService{
		orderRepo: orderRepo,
		opts:      opts,
		logger:    logger.With().Str("service", "checkout").Logger(),
	}
}

// Checkout re-validates the cart against locked stock, writes the order and
// its items, and decrements stock, all in one transaction.
func (s *checkoutService) Checkout(ctx context.Context, actor model.Actor, c *cart.Cart, entry model.CheckoutEntry) (result *model.CheckoutResult, err error) {
	customerID, ok := actor.CustomerID()
	if !ok {
		s.logger.Warn().Str("actor", actor.String()).Msg("checkout attempted by non-customer")
		return nil, model.ErrActorNotAllowed
	}
	if c == nil || c.IsEmpty() {
		return nil, model.ErrEmptyCart
	}

	tx, err := s.orderRepo.BeginTx(ctx)
	if err != nil {
		return nil, s.txFailure("begin", err)
	}

	// Ensure transaction is rolled back on error
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				s.logger.Error().Err(rbErr).Msg("failed to rollback transaction")
			}
		}
	}()

	if err = s.orderRepo.SetLockTimeout(ctx, tx, s.opts.LockTimeout); err != nil {
		return nil, s.txFailure("lock timeout", err)
	}

	locked, err := s.orderRepo.LockProducts(ctx, tx, c.ProductIDs())
	if err != nil {
		return nil, s.txFailure("lock products", err)
	}

	priced := make([]model.PricedLine, 0, len(locked))
	totalQuantity := 0
	for _, p := range locked {
		qty := c.Quantity(p.ID)
		if qty > p.Stock {
			s.logger.Warn().
				Int64("product_id", p.ID).
				Int("requested", qty).
				Int("available", p.Stock).
				Msg("insufficient stock at checkout")
			return nil, &model.InsufficientStockError{
				ProductID:   p.ID,
				ProductName: p.Name,
				Available:   p.Stock,
				Requested:   qty,
			}
		}
		priced = append(priced, model.PricedLine{Product: p.Product, Quantity: qty})
		totalQuantity += qty
	}

	if len(priced) == 0 {
		s.logger.Debug().Msg("cart only held deleted products")
		return nil, model.ErrEmptyCart
	}

	totals := model.ComputeTotals(priced)

	order := &model.Order{
		CustomerID:    &customerID,
		EmployeeID:    s.attribution(entry),
		TotalPrice:    totals.Total,
		TotalDiscount: totals.TotalDiscount,
		Status:        model.OrderStatusPending,
	}
	if err = s.orderRepo.CreateOrder(ctx, tx, order); err != nil {
		return nil, s.txFailure("create order", err)
	}

	items := make([]model.OrderLineItem, len(priced))
	for i, line := range priced {
		items[i] = model.OrderLineItem{
			OrderID:   order.ID,
			ProductID: line.Product.ID,
			Quantity:  line.Quantity,
		}
	}

	if err = s.orderRepo.CreateOrderItems(ctx, tx, items); err != nil {
		return nil, s.txFailure("create order items", err)
	}

	if err = s.orderRepo.DecrementStock(ctx, tx, items); err != nil {
		return nil, s.txFailure("decrement stock", err)
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, s.txFailure("commit", err)
	}

	c.Clear()

	s.logger.Info().
		Int64("order_id", order.ID).
		Int64("customer_id", customerID).
		Str("entry", string(entry)).
		Int("item_count", len(items)).
		Float64("total", totals.Total).
		Msg("order placed")

	return &model.CheckoutResult{
		OrderID:       order.ID,
		Status:        order.Status,
		Subtotal:      totals.Subtotal,
		TotalDiscount: totals.TotalDiscount,
		TotalPrice:    totals.Total,
		TotalQuantity: totalQuantity,
		Items:         items,
	}, nil
}

// ResolveSystemEmployee returns the employee that self-checkout orders are
// attributed to. A configured id must name an existing employee; zero
// provisions the online system employee.
func ResolveSystemEmployee(ctx context.Context, employees repository.EmployeeRepository, configured int64) (int64, error) {
	if configured <= 0 {
		return employees.EnsureSystemEmployee(ctx)
	}

	ok, err := employees.Exists(ctx, configured)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, fmt.Errorf("system employee %d does not exist: %w", configured, model.ErrActorUnknown)
	}
	return configured, nil
}

// attribution picks the employee recorded on a new order.
func (s *checkoutService) attribution(entry model.CheckoutEntry) *int64 {
	if entry != model.EntrySelfCheckout || s.opts.SystemEmployeeID <= 0 {
		return nil
	}
	id := s.opts.SystemEmployeeID
	return &id
}

func (s *checkoutService) txFailure(op string, err error) error {
	return transactionFailure(s.logger, op, err)
}

// transactionFailure logs a failed store step and wraps it as retryable.
// Domain errors raised by the store, such as an unknown actor, are returned
// as they are since retrying cannot change their outcome.
func transactionFailure(logger zerolog.Logger, op string, err error) error {
	var domainErr *model.DomainError
	if errors.As(err, &domainErr) {
		logger.Warn().Err(err).Str("op", op).Str("code", domainErr.Code).Msg("transaction rejected")
		return err
	}
	if repository.IsTransient(err) {
		logger.Warn().Err(err).Str("op", op).Msg("transaction aborted by concurrent update")
	} else {
		logger.Error().Err(err).Str("op", op).Msg("transaction failed")
	}
	return model.NewTransactionError(op, err)
}
