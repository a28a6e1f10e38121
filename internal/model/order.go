package model

import (
	"fmt"
	"time"
)

// OrderStatus is the fulfillment state of an order.
type OrderStatus string

const (
	OrderStatusPending  OrderStatus = "pending"
	OrderStatusAccepted OrderStatus = "accepted"
	OrderStatusRejected OrderStatus = "rejected"
)

// ParseOrderStatus converts a string to an OrderStatus.
func ParseOrderStatus(s string) (OrderStatus, error) {
	switch OrderStatus(s) {
	case OrderStatusPending, OrderStatusAccepted, OrderStatusRejected:
		return OrderStatus(s), nil
	default:
		return "", fmt.Errorf("invalid order status %q", s)
	}
}

// Terminal reports whether no further transition is allowed.
func (s OrderStatus) Terminal() bool {
	return s == OrderStatusAccepted || s == OrderStatusRejected
}

// Order represents a placed customer order.
type Order struct {
	ID            int64       `json:"id" db:"id"`
	CustomerID    *int64      `json:"customerId,omitempty" db:"customer_id"`
	EmployeeID    *int64      `json:"employeeId,omitempty" db:"employee_id"`
	PlacedAt      time.Time   `json:"placedAt" db:"placed_at"`
	TotalPrice    float64     `json:"totalPrice" db:"total_price"`
	TotalDiscount float64     `json:"totalDiscount" db:"total_discount"`
	Status        OrderStatus `json:"status" db:"status"`
}

// OrderLineItem is one product line of an order.
type OrderLineItem struct {
	OrderID   int64 `json:"orderId" db:"order_id"`
	ProductID int64 `json:"productId" db:"product_id"`
	Quantity  int   `json:"quantity" db:"quantity"`
}

// OrderDetail is an order with its line items. TotalQuantity is derived
// from the items.
type OrderDetail struct {
	Order
	Items         []OrderLineItem `json:"items"`
	TotalQuantity int             `json:"totalQuantity"`
}

// NewOrderDetail builds an OrderDetail and derives its total quantity.
func NewOrderDetail(order Order, items []OrderLineItem) *OrderDetail {
	total := 0
	for _, it := range items {
		total += it.Quantity
	}
	if items == nil {
		items = []OrderLineItem{}
	}
	return &OrderDetail{Order: order, Items: items, TotalQuantity: total}
}

// CheckoutEntry identifies how a checkout was started.
type CheckoutEntry string

const (
	// EntryOnline leaves the order unattributed until an employee accepts it.
	EntryOnline CheckoutEntry = "online"
	// EntrySelfCheckout attributes the order to the default system employee.
	EntrySelfCheckout CheckoutEntry = "self_checkout"
)

// ParseCheckoutEntry converts a string to a CheckoutEntry; empty means online.
func ParseCheckoutEntry(s string) (CheckoutEntry, error) {
	switch CheckoutEntry(s) {
	case "", EntryOnline:
		return EntryOnline, nil
	case EntrySelfCheckout:
		return EntrySelfCheckout, nil
	default:
		return "", fmt.Errorf("invalid checkout entry %q", s)
	}
}

// CheckoutRequest is the request payload for POST /api/checkout.
type CheckoutRequest struct {
	Entry string `json:"entry,omitempty"`
}

// CheckoutResult is returned after a successful checkout.
type CheckoutResult struct {
	OrderID       int64           `json:"orderId"`
	Status        OrderStatus     `json:"status"`
	Subtotal      float64         `json:"subtotal"`
	TotalDiscount float64         `json:"totalDiscount"`
	TotalPrice    float64         `json:"totalPrice"`
	TotalQuantity int             `json:"totalQuantity"`
	Items         []OrderLineItem `json:"items"`
}

// OrderSummary is a row of the employee review list.
type OrderSummary struct {
	Order
	CustomerName  string `json:"customerName" db:"customer_name"`
	TotalQuantity int    `json:"totalQuantity" db:"total_quantity"`
}
