package handler

import (
	"context"

	"rosemary-store/internal/cart"
	"rosemary-store/internal/model"

	"github.com/stretchr/testify/mock"
)

// MockProductService is a mock implementation of ProductService.
type MockProductService struct {
	mock.Mock
}

func (m *MockProductService) GetAll(ctx context.Context, limit, offset int) ([]model.ProductView, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.ProductView), args.Error(1)
}

func (m *MockProductService) GetByID(ctx context.Context, id int64) (*model.ProductView, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ProductView), args.Error(1)
}

func (m *MockProductService) Create(ctx context.Context, actor model.Actor, in model.ProductInput) (*model.ProductView, error) {
	args := m.Called(ctx, actor, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ProductView), args.Error(1)
}

func (m *MockProductService) Update(ctx context.Context, actor model.Actor, id int64, in model.ProductInput) (*model.ProductView, error) {
	args := m.Called(ctx, actor, id, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ProductView), args.Error(1)
}

func (m *MockProductService) Delete(ctx context.Context, actor model.Actor, id int64) error {
	args := m.Called(ctx, actor, id)
	return args.Error(0)
}

// MockCartService is a mock implementation of CartService. Mutations the
// real service would make are applied through the Run hooks of each test.
type MockCartService struct {
	mock.Mock
}

func (m *MockCartService) Add(ctx context.Context, c *cart.Cart, productID int64, qty int) (*model.CartUpdateResult, error) {
	args := m.Called(ctx, c, productID, qty)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.CartUpdateResult), args.Error(1)
}

func (m *MockCartService) Remove(c *cart.Cart, productID int64) {
	m.Called(c, productID)
}

func (m *MockCartService) SetQuantity(ctx context.Context, c *cart.Cart, productID int64, qty int) (*model.CartUpdateResult, error) {
	args := m.Called(ctx, c, productID, qty)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.CartUpdateResult), args.Error(1)
}

func (m *MockCartService) Totals(ctx context.Context, c *cart.Cart) (model.CartTotals, error) {
	args := m.Called(ctx, c)
	return args.Get(0).(model.CartTotals), args.Error(1)
}

func (m *MockCartService) View(ctx context.Context, c *cart.Cart) (*model.CartView, error) {
	args := m.Called(ctx, c)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.CartView), args.Error(1)
}

// MockCheckoutService is a mock implementation of CheckoutService.
type MockCheckoutService struct {
	mock.Mock
}

func (m *MockCheckoutService) Checkout(ctx context.Context, actor model.Actor, c *cart.Cart, entry model.CheckoutEntry) (*model.CheckoutResult, error) {
	args := m.Called(ctx, actor, c, entry)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.CheckoutResult), args.Error(1)
}

// MockFulfillmentService is a mock implementation of FulfillmentService.
type MockFulfillmentService struct {
	mock.Mock
}

func (m *MockFulfillmentService) Accept(ctx context.Context, actor model.Actor, orderID int64) (*model.Order, error) {
	args := m.Called(ctx, actor, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Order), args.Error(1)
}

func (m *MockFulfillmentService) Reject(ctx context.Context, actor model.Actor, orderID int64) (*model.Order, error) {
	args := m.Called(ctx, actor, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Order), args.Error(1)
}

func (m *MockFulfillmentService) ListByStatus(ctx context.Context, actor model.Actor, status model.OrderStatus, limit, offset int) ([]model.OrderSummary, error) {
	args := m.Called(ctx, actor, status, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.OrderSummary), args.Error(1)
}

func (m *MockFulfillmentService) Get(ctx context.Context, actor model.Actor, orderID int64) (*model.OrderDetail, error) {
	args := m.Called(ctx, actor, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.OrderDetail), args.Error(1)
}

// MockReportService is a mock implementation of ReportService.
type MockReportService struct {
	mock.Mock
}

func (m *MockReportService) LowStock(ctx context.Context, threshold int) ([]model.LowStockItem, error) {
	args := m.Called(ctx, threshold)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.LowStockItem), args.Error(1)
}

func (m *MockReportService) MonthlySales(ctx context.Context, months int) ([]model.MonthlySales, error) {
	args := m.Called(ctx, months)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.MonthlySales), args.Error(1)
}

func (m *MockReportService) EmployeeSales(ctx context.Context) ([]model.EmployeeSales, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.EmployeeSales), args.Error(1)
}
