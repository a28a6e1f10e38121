package service

import (
	"context"

	"rosemary-store/internal/cart"
	"rosemary-store/internal/model"
)

// ProductService reads the catalog and lets employees administer it.
type ProductService interface {
	// GetAll retrieves products with pricing and stock, paginated.
	GetAll(ctx context.Context, limit, offset int) ([]model.ProductView, error)

	// GetByID retrieves a single product by ID.
	GetByID(ctx context.Context, id int64) (*model.ProductView, error)

	// Create adds a product with its initial stock. Employees only.
	Create(ctx context.Context, actor model.Actor, in model.ProductInput) (*model.ProductView, error)

	// Update replaces a product's fields and stock on hand. Employees only.
	Update(ctx context.Context, actor model.Actor, id int64, in model.ProductInput) (*model.ProductView, error)

	// Delete removes a product that no order references. Employees only.
	Delete(ctx context.Context, actor model.Actor, id int64) error
}

// CartService validates cart edits against the catalog. It mutates only the
// cart it is given and never touches stock.
type CartService interface {
	// Add merges qty into the product's line, clamped to current stock.
	Add(ctx context.Context, c *cart.Cart, productID int64, qty int) (*model.CartUpdateResult, error)

	// Remove drops the product's line. Removing an absent line is a no-op.
	Remove(c *cart.Cart, productID int64)

	// SetQuantity replaces the product's line; qty <= 0 removes it.
	SetQuantity(ctx context.Context, c *cart.Cart, productID int64, qty int) (*model.CartUpdateResult, error)

	// Totals prices the cart, silently dropping lines of deleted products.
	Totals(ctx context.Context, c *cart.Cart) (model.CartTotals, error)

	// View returns the cart lines joined with catalog data, and the totals.
	View(ctx context.Context, c *cart.Cart) (*model.CartView, error)
}

// CheckoutService turns a cart into a pending order.
type CheckoutService interface {
	// Checkout places the cart as one order, decrementing stock atomically.
	// On success the cart is cleared; on failure nothing is changed.
	Checkout(ctx context.Context, actor model.Actor, c *cart.Cart, entry model.CheckoutEntry) (*model.CheckoutResult, error)
}

// FulfillmentService drives the pending -> accepted | rejected workflow.
type FulfillmentService interface {
	// Accept marks a pending order accepted by the acting employee.
	Accept(ctx context.Context, actor model.Actor, orderID int64) (*model.Order, error)

	// Reject marks a pending order rejected and restores its stock.
	Reject(ctx context.Context, actor model.Actor, orderID int64) (*model.Order, error)

	// ListByStatus lists orders for employee review.
	ListByStatus(ctx context.Context, actor model.Actor, status model.OrderStatus, limit, offset int) ([]model.OrderSummary, error)

	// Get returns an order with its items. Customers only see their own orders.
	Get(ctx context.Context, actor model.Actor, orderID int64) (*model.OrderDetail, error)
}

// ReportService exposes read-only analytics.
type ReportService interface {
	LowStock(ctx context.Context, threshold int) ([]model.LowStockItem, error)
	MonthlySales(ctx context.Context, months int) ([]model.MonthlySales, error)
	EmployeeSales(ctx context.Context) ([]model.EmployeeSales, error)
}
