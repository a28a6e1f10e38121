package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"rosemary-store/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// orderRepository implements the OrderRepository interface using PostgreSQL.
type orderRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewOrderRepository creates a new PostgreSQL-backed order repository.
func NewOrderRepository(pool *pgxpool.Pool, logger zerolog.Logger) OrderRepository {
	return &orderRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "order").Logger(),
	}
}

// BeginTx starts a new database transaction.
func (r *orderRepository) BeginTx(ctx context.Context) (pgx.Tx, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to begin transaction")
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	return tx, nil
}

// SetLockTimeout applies lock_timeout to the current transaction only.
func (r *orderRepository) SetLockTimeout(ctx context.Context, tx pgx.Tx, timeout time.Duration) error {
	if _, err := tx.Exec(ctx, `SELECT set_config('lock_timeout', $1, true)`, lockTimeoutValue(timeout)); err != nil {
		return fmt.Errorf("failed to set lock timeout: %w", err)
	}
	return nil
}

// LockProducts share-locks the product rows so price and existence cannot
// change under the checkout, then exclusively locks the stock rows. Both
// passes take locks in ascending product id order.
func (r *orderRepository) LockProducts(ctx context.Context, tx pgx.Tx, ids []int64) ([]model.ProductStock, error) {
	if len(ids) == 0 {
		return []model.ProductStock{}, nil
	}

	productQuery := `
		SELECT id, name, price, barcode, discount_percent, created_at
		FROM products
		WHERE id = ANY($1)
		ORDER BY id
		FOR SHARE
	`

	rows, err := tx.Query(ctx, productQuery, ids)
	if err != nil {
		r.logger.Error().Err(err).Int("count", len(ids)).Msg("failed to lock products")
		return nil, fmt.Errorf("failed to lock products: %w", err)
	}

	products, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.ProductStock, error) {
		var p model.ProductStock
		err := row.Scan(&p.ID, &p.Name, &p.Price, &p.Barcode, &p.DiscountPercent, &p.CreatedAt)
		return p, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan locked products: %w", err)
	}

	stockQuery := `
		SELECT product_id, quantity
		FROM stock_records
		WHERE product_id = ANY($1)
		ORDER BY product_id
		FOR UPDATE
	`

	rows, err = tx.Query(ctx, stockQuery, ids)
	if err != nil {
		r.logger.Error().Err(err).Int("count", len(ids)).Msg("failed to lock stock records")
		return nil, fmt.Errorf("failed to lock stock records: %w", err)
	}

	stock := make(map[int64]int, len(ids))
	var productID int64
	var quantity int
	_, err = pgx.ForEachRow(rows, []any{&productID, &quantity}, func() error {
		stock[productID] = quantity
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan stock records: %w", err)
	}

	for i := range products {
		products[i].Stock = stock[products[i].ID]
	}

	r.logger.Debug().
		Int("requested", len(ids)).
		Int("locked", len(products)).
		Msg("products locked for checkout")

	return products, nil
}

// CreateOrder inserts a new order within the provided transaction.
func (r *orderRepository) CreateOrder(ctx context.Context, tx pgx.Tx, order *model.Order) error {
	query := `
		INSERT INTO orders (customer_id, employee_id, total_price, total_discount, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, placed_at
	`

	err := tx.QueryRow(ctx, query,
		order.CustomerID,
		order.EmployeeID,
		order.TotalPrice,
		order.TotalDiscount,
		string(order.Status),
	).Scan(&order.ID, &order.PlacedAt)
	if err != nil {
		if derr := domainError(err); derr != err {
			r.logger.Warn().Err(err).Msg("order references an unknown actor")
			return derr
		}
		r.logger.Error().Err(err).Msg("failed to create order")
		return fmt.Errorf("failed to create order: %w", err)
	}

	r.logger.Debug().Int64("order_id", order.ID).Msg("order created")
	return nil
}

// CreateOrderItems inserts multiple order items within the provided transaction.
func (r *orderRepository) CreateOrderItems(ctx context.Context, tx pgx.Tx, items []model.OrderLineItem) error {
	if len(items) == 0 {
		return nil
	}

	query := `
		INSERT INTO order_line_items (order_id, product_id, quantity)
		VALUES ($1, $2, $3)
	`

	batch := &pgx.Batch{}
	for _, item := range items {
		batch.Queue(query, item.OrderID, item.ProductID, item.Quantity)
	}

	results := tx.SendBatch(ctx, batch)
	defer results.Close()

	for _, item := range items {
		if _, err := results.Exec(); err != nil {
			r.logger.Error().
				Err(err).
				Int64("order_id", item.OrderID).
				Int64("product_id", item.ProductID).
				Msg("failed to create order item")
			return fmt.Errorf("failed to create order item: %w", err)
		}
	}

	r.logger.Debug().Int("count", len(items)).Msg("order items created")
	return nil
}

// DecrementStock runs one guarded update per item. The quantity >= n guard
// makes a lost race surface as zero affected rows instead of a negative stock.
func (r *orderRepository) DecrementStock(ctx context.Context, tx pgx.Tx, items []model.OrderLineItem) error {
	if len(items) == 0 {
		return nil
	}

	query := `
		UPDATE stock_records
		SET quantity = quantity - $1, updated_at = NOW()
		WHERE product_id = $2 AND quantity >= $1
	`

	batch := &pgx.Batch{}
	for _, item := range items {
		batch.Queue(query, item.Quantity, item.ProductID)
	}

	results := tx.SendBatch(ctx, batch)
	defer results.Close()

	for _, item := range items {
		tag, err := results.Exec()
		if err != nil {
			r.logger.Error().Err(err).Int64("product_id", item.ProductID).Msg("failed to decrement stock")
			return fmt.Errorf("failed to decrement stock for product %d: %w", item.ProductID, err)
		}
		if tag.RowsAffected() == 0 {
			r.logger.Warn().
				Int64("product_id", item.ProductID).
				Int("quantity", item.Quantity).
				Msg("guarded stock decrement matched no row")
			return fmt.Errorf("product %d: %w", item.ProductID, ErrStockUnavailable)
		}
	}

	return nil
}

// RestoreStock adds quantities back. A missing stock row is created at zero
// and incremented in the same statement.
func (r *orderRepository) RestoreStock(ctx context.Context, tx pgx.Tx, items []model.OrderLineItem) error {
	if len(items) == 0 {
		return nil
	}

	query := `
		INSERT INTO stock_records (product_id, quantity, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (product_id) DO UPDATE
		SET quantity = stock_records.quantity + EXCLUDED.quantity, updated_at = NOW()
	`

	batch := &pgx.Batch{}
	for _, item := range items {
		batch.Queue(query, item.ProductID, item.Quantity)
	}

	results := tx.SendBatch(ctx, batch)
	defer results.Close()

	for _, item := range items {
		if _, err := results.Exec(); err != nil {
			r.logger.Error().Err(err).Int64("product_id", item.ProductID).Msg("failed to restore stock")
			return fmt.Errorf("failed to restore stock for product %d: %w", item.ProductID, err)
		}
	}

	return nil
}

// GetForUpdate locks the order row for a status transition.
func (r *orderRepository) GetForUpdate(ctx context.Context, tx pgx.Tx, id int64) (*model.Order, error) {
	query := `
		SELECT id, customer_id, employee_id, placed_at, total_price, total_discount, status
		FROM orders
		WHERE id = $1
		FOR UPDATE
	`

	order, err := scanOrder(tx.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		r.logger.Error().Err(err).Int64("order_id", id).Msg("failed to lock order")
		return nil, fmt.Errorf("failed to lock order: %w", err)
	}
	return order, nil
}

// GetItems returns the line items of an order inside tx.
func (r *orderRepository) GetItems(ctx context.Context, tx pgx.Tx, orderID int64) ([]model.OrderLineItem, error) {
	return r.queryItems(ctx, tx, orderID)
}

// UpdateStatus sets the status and employee attribution of an order.
func (r *orderRepository) UpdateStatus(ctx context.Context, tx pgx.Tx, id int64, status model.OrderStatus, employeeID *int64) error {
	query := `
		UPDATE orders
		SET status = $2, employee_id = $3
		WHERE id = $1
	`

	tag, err := tx.Exec(ctx, query, id, string(status), employeeID)
	if err != nil {
		if derr := domainError(err); derr != err {
			r.logger.Warn().Err(err).Int64("order_id", id).Msg("order attributed to an unknown employee")
			return derr
		}
		r.logger.Error().Err(err).Int64("order_id", id).Msg("failed to update order status")
		return fmt.Errorf("failed to update order status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("failed to update order status: order %d vanished", id)
	}
	return nil
}

// GetByID retrieves an order by its ID along with its items.
func (r *orderRepository) GetByID(ctx context.Context, id int64) (*model.Order, []model.OrderLineItem, error) {
	query := `
		SELECT id, customer_id, employee_id, placed_at, total_price, total_discount, status
		FROM orders
		WHERE id = $1
	`

	order, err := scanOrder(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Debug().Int64("order_id", id).Msg("order not found")
			return nil, nil, nil
		}
		r.logger.Error().Err(err).Int64("order_id", id).Msg("failed to query order")
		return nil, nil, fmt.Errorf("failed to query order: %w", err)
	}

	items, err := r.queryItems(ctx, r.pool, id)
	if err != nil {
		return nil, nil, err
	}

	return order, items, nil
}

// ListByStatus lists orders in a status with customer name and derived quantity.
func (r *orderRepository) ListByStatus(ctx context.Context, status model.OrderStatus, limit, offset int) ([]model.OrderSummary, error) {
	query := `
		SELECT o.id, o.customer_id, o.employee_id, o.placed_at, o.total_price, o.total_discount, o.status,
			COALESCE(c.name, ''), COALESCE(SUM(li.quantity), 0)
		FROM orders o
		LEFT JOIN customers c ON c.id = o.customer_id
		LEFT JOIN order_line_items li ON li.order_id = o.id
		WHERE o.status = $1
		GROUP BY o.id, c.name
		ORDER BY o.placed_at, o.id
		LIMIT $2 OFFSET $3
	`

	rows, err := r.pool.Query(ctx, query, string(status), limit, offset)
	if err != nil {
		r.logger.Error().Err(err).Str("status", string(status)).Msg("failed to list orders")
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	defer rows.Close()

	summaries := []model.OrderSummary{}
	for rows.Next() {
		var s model.OrderSummary
		var st string
		if err := rows.Scan(
			&s.ID, &s.CustomerID, &s.EmployeeID, &s.PlacedAt, &s.TotalPrice, &s.TotalDiscount, &st,
			&s.CustomerName, &s.TotalQuantity,
		); err != nil {
			return nil, fmt.Errorf("failed to scan order summary: %w", err)
		}
		s.Status = model.OrderStatus(st)
		summaries = append(summaries, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating orders: %w", err)
	}
	return summaries, nil
}

type queryer interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

func (r *orderRepository) queryItems(ctx context.Context, q queryer, orderID int64) ([]model.OrderLineItem, error) {
	query := `
		SELECT order_id, product_id, quantity
		FROM order_line_items
		WHERE order_id = $1
		ORDER BY product_id
	`

	rows, err := q.Query(ctx, query, orderID)
	if err != nil {
		r.logger.Error().Err(err).Int64("order_id", orderID).Msg("failed to query order items")
		return nil, fmt.Errorf("failed to query order items: %w", err)
	}
	defer rows.Close()

	items := []model.OrderLineItem{}
	for rows.Next() {
		var item model.OrderLineItem
		if err := rows.Scan(&item.OrderID, &item.ProductID, &item.Quantity); err != nil {
			return nil, fmt.Errorf("failed to scan order item: %w", err)
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating order items: %w", err)
	}
	return items, nil
}

func scanOrder(row pgx.Row) (*model.Order, error) {
	var o model.Order
	var status string
	if err := row.Scan(&o.ID, &o.CustomerID, &o.EmployeeID, &o.PlacedAt, &o.TotalPrice, &o.TotalDiscount, &status); err != nil {
		return nil, err
	}
	o.Status = model.OrderStatus(status)
	return &o, nil
}
