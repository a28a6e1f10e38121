package repository

import (
	"context"
	"time"

	"rosemary-store/internal/model"

	"github.com/jackc/pgx/v5"
)

// ProductRepository is the catalog store: products joined with their stock.
type ProductRepository interface {
	// GetAll retrieves products with their stock, ordered by name.
	GetAll(ctx context.Context, limit, offset int) ([]model.ProductStock, error)

	// GetByID retrieves a single product with its stock. Returns nil, nil if
	// the product does not exist.
	GetByID(ctx context.Context, id int64) (*model.ProductStock, error)

	// GetByIDs retrieves the existing products among ids. Unknown ids are
	// omitted from the result.
	GetByIDs(ctx context.Context, ids []int64) ([]model.ProductStock, error)

	// UpsertCatalog inserts or updates products by barcode and sets their
	// stock, all in one transaction. Returns the number of entries written.
	UpsertCatalog(ctx context.Context, entries []model.CatalogEntry) (int, error)

	// Create inserts a product and its stock row. Returns
	// model.ErrBarcodeExists if the barcode is taken.
	Create(ctx context.Context, in model.ProductInput) (*model.ProductStock, error)

	// Update replaces a product's fields and stock on hand. Returns nil, nil
	// if the product does not exist.
	Update(ctx context.Context, id int64, in model.ProductInput) (*model.ProductStock, error)

	// Delete removes a product and its stock row, reporting whether it
	// existed. Returns model.ErrProductInUse if any order references it.
	Delete(ctx context.Context, id int64) (bool, error)
}

// OrderRepository is the order ledger. Methods taking a pgx.Tx run inside the
// caller's transaction.
type OrderRepository interface {
	// BeginTx starts a new database transaction.
	BeginTx(ctx context.Context) (pgx.Tx, error)

	// SetLockTimeout bounds row lock waits for the rest of the transaction.
	SetLockTimeout(ctx context.Context, tx pgx.Tx, timeout time.Duration) error

	// LockProducts locks the products and stock rows of ids in ascending id
	// order and returns the products that still exist with their stock.
	LockProducts(ctx context.Context, tx pgx.Tx, ids []int64) ([]model.ProductStock, error)

	// CreateOrder inserts order and fills in its generated id and placement time.
	CreateOrder(ctx context.Context, tx pgx.Tx, order *model.Order) error

	// CreateOrderItems inserts the line items of an order.
	CreateOrderItems(ctx context.Context, tx pgx.Tx, items []model.OrderLineItem) error

	// DecrementStock subtracts each item's quantity from its stock row.
	// Returns ErrStockUnavailable if any row is missing or would go negative.
	DecrementStock(ctx context.Context, tx pgx.Tx, items []model.OrderLineItem) error

	// RestoreStock adds each item's quantity back, creating missing stock rows.
	RestoreStock(ctx context.Context, tx pgx.Tx, items []model.OrderLineItem) error

	// GetForUpdate locks and returns an order. Returns nil, nil if absent.
	GetForUpdate(ctx context.Context, tx pgx.Tx, id int64) (*model.Order, error)

	// GetItems returns the line items of an order inside tx.
	GetItems(ctx context.Context, tx pgx.Tx, orderID int64) ([]model.OrderLineItem, error)

	// UpdateStatus sets the status and employee attribution of an order.
	UpdateStatus(ctx context.Context, tx pgx.Tx, id int64, status model.OrderStatus, employeeID *int64) error

	// GetByID retrieves an order and its items. Returns nil, nil, nil if absent.
	GetByID(ctx context.Context, id int64) (*model.Order, []model.OrderLineItem, error)

	// ListByStatus lists orders in a status, oldest first.
	ListByStatus(ctx context.Context, status model.OrderStatus, limit, offset int) ([]model.OrderSummary, error)
}

// EmployeeRepository resolves the employees orders are attributed to.
type EmployeeRepository interface {
	// EnsureSystemEmployee provisions the online system employee and returns its id.
	EnsureSystemEmployee(ctx context.Context) (int64, error)

	// Exists reports whether an employee with id exists.
	Exists(ctx context.Context, id int64) (bool, error)
}

// ReportRepository runs read-only aggregate queries.
type ReportRepository interface {
	// LowStock lists products whose stock is below threshold. Products
	// without a stock row count as zero.
	LowStock(ctx context.Context, threshold int) ([]model.LowStockItem, error)

	// MonthlySales aggregates accepted orders per calendar month, newest first.
	MonthlySales(ctx context.Context, months int) ([]model.MonthlySales, error)

	// EmployeeSales aggregates accepted orders per employee.
	EmployeeSales(ctx context.Context) ([]model.EmployeeSales, error)
}
