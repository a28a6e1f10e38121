package service

import (
	"context"
	"fmt"
	"time"

	"rosemary-store/internal/model"
	"rosemary-store/internal/repository"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

// fulfillmentService implements FulfillmentService.
type fulfillmentService struct {
	orderRepo   repository.OrderRepository
	lockTimeout time.Duration
	logger      zerolog.Logger
}

// NewFulfillmentService creates a new fulfillment service.
func NewFulfillmentService(orderRepo repository.OrderRepository, lockTimeout time.Duration, logger zerolog.Logger) FulfillmentService {
	return &fulfillmentService{
		orderRepo:   orderRepo,
		lockTimeout: lockTimeout,
		logger:      logger.With().Str("service", "fulfillment").Logger(),
	}
}

// Accept records the acting employee on a pending order. Stock is untouched.
func (s *fulfillmentService) Accept(ctx context.Context, actor model.Actor, orderID int64) (*model.Order, error) {
	employeeID, ok := actor.EmployeeID()
	if !ok {
		return nil, model.ErrActorNotAllowed
	}

	return s.transition(ctx, orderID, model.OrderStatusAccepted, func(tx pgx.Tx, order *model.Order) error {
		if err := s.orderRepo.UpdateStatus(ctx, tx, order.ID, model.OrderStatusAccepted, &employeeID); err != nil {
			return err
		}
		order.EmployeeID = &employeeID
		return nil
	})
}

// Reject restores every line item's quantity to stock and clears the
// employee attribution.
func (s *fulfillmentService) Reject(ctx context.Context, actor model.Actor, orderID int64) (*model.Order, error) {
	if _, ok := actor.EmployeeID(); !ok {
		return nil, model.ErrActorNotAllowed
	}

	return s.transition(ctx, orderID, model.OrderStatusRejected, func(tx pgx.Tx, order *model.Order) error {
		items, err := s.orderRepo.GetItems(ctx, tx, order.ID)
		if err != nil {
			return err
		}
		if err := s.orderRepo.RestoreStock(ctx, tx, items); err != nil {
			return err
		}
		if err := s.orderRepo.UpdateStatus(ctx, tx, order.ID, model.OrderStatusRejected, nil); err != nil {
			return err
		}
		order.EmployeeID = nil
		return nil
	})
}

// transition locks the order, checks it is pending, applies fn and commits.
func (s *fulfillmentService) transition(
	ctx context.Context,
	orderID int64,
	to model.OrderStatus,
	fn func(tx pgx.Tx, order *model.Order) error,
) (order *model.Order, err error) {
	tx, err := s.orderRepo.BeginTx(ctx)
	if err != nil {
		return nil, transactionFailure(s.logger, "begin", err)
	}

	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				s.logger.Error().Err(rbErr).Msg("failed to rollback transaction")
			}
		}
	}()

	if err = s.orderRepo.SetLockTimeout(ctx, tx, s.lockTimeout); err != nil {
		return nil, transactionFailure(s.logger, "lock timeout", err)
	}

	order, err = s.orderRepo.GetForUpdate(ctx, tx, orderID)
	if err != nil {
		return nil, transactionFailure(s.logger, "lock order", err)
	}
	if order == nil {
		return nil, model.ErrOrderNotFound
	}
	if order.Status != model.OrderStatusPending {
		s.logger.Warn().
			Int64("order_id", orderID).
			Str("status", string(order.Status)).
			Str("target", string(to)).
			Msg("order already handled")
		return nil, model.ErrOrderNotPending
	}

	if err = fn(tx, order); err != nil {
		return nil, transactionFailure(s.logger, string(to), err)
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, transactionFailure(s.logger, "commit", err)
	}

	order.Status = to
	s.logger.Info().
		Int64("order_id", orderID).
		Str("status", string(to)).
		Msg("order status changed")

	return order, nil
}

// ListByStatus lists orders for review. Employees only.
func (s *fulfillmentService) ListByStatus(ctx context.Context, actor model.Actor, status model.OrderStatus, limit, offset int) ([]model.OrderSummary, error) {
	if _, ok := actor.EmployeeID(); !ok {
		return nil, model.ErrActorNotAllowed
	}

	limit, offset = normalisePage(limit, offset)
	orders, err := s.orderRepo.ListByStatus(ctx, status, limit, offset)
	if err != nil {
		s.logger.Error().Err(err).Str("status", string(status)).Msg("failed to list orders")
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	return orders, nil
}

// Get returns an order with its items.
func (s *fulfillmentService) Get(ctx context.Context, actor model.Actor, orderID int64) (*model.OrderDetail, error) {
	order, items, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		s.logger.Error().Err(err).Int64("order_id", orderID).Msg("failed to get order")
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	if order == nil {
		return nil, model.ErrOrderNotFound
	}

	switch actor.Kind {
	case model.ActorEmployee:
	case model.ActorCustomer:
		// another customer's order reads as absent
		customerID, _ := actor.CustomerID()
		if order.CustomerID == nil || *order.CustomerID != customerID {
			return nil, model.ErrOrderNotFound
		}
	default:
		return nil, model.ErrActorNotAllowed
	}

	return model.NewOrderDetail(*order, items), nil
}
