package model

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Product represents an item on the supermarket shelf.
type Product struct {
	ID              int64     `json:"id" db:"id"`
	Name            string    `json:"name" db:"name"`
	Price           float64   `json:"price" db:"price"`
	Barcode         string    `json:"barcode" db:"barcode"`
	DiscountPercent int       `json:"discountPercent" db:"discount_percent"`
	CreatedAt       time.Time `json:"createdAt" db:"created_at"`
}

// StockRecord holds the on-hand quantity of a product.
// A missing record means zero stock.
type StockRecord struct {
	ProductID int64     `json:"productId" db:"product_id"`
	Quantity  int       `json:"quantity" db:"quantity"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}

// ProductStock is a product joined with its current stock level.
type ProductStock struct {
	Product
	Stock int `json:"stock" db:"stock"`
}

// UnitPrice returns the list price as a decimal.
func (p Product) UnitPrice() decimal.Decimal {
	return decimal.NewFromFloat(p.Price)
}

// DiscountedPrice returns price × (1 − discount/100) rounded to 2 decimals.
func (p Product) DiscountedPrice() decimal.Decimal {
	factor := hundred.Sub(decimal.NewFromInt(int64(clampPercent(p.DiscountPercent)))).Div(hundred)
	return p.UnitPrice().Mul(factor).Round(2)
}

// DiscountAmount returns the per-unit saving, price − discounted price.
func (p Product) DiscountAmount() decimal.Decimal {
	return p.UnitPrice().Sub(p.DiscountedPrice())
}

func clampPercent(pct int) int {
	if pct < 0 {
		return 0
	}
	if pct > 100 {
		return 100
	}
	return pct
}

// ProductPrice is the JSON view of a product's pricing.
type ProductPrice struct {
	Product
	DiscountedPrice float64 `json:"discountedPrice"`
	DiscountAmount  float64 `json:"discountAmount"`
}

// WithPricing returns the product together with its derived prices.
func (p Product) WithPricing() ProductPrice {
	return ProductPrice{
		Product:         p,
		DiscountedPrice: p.DiscountedPrice().InexactFloat64(),
		DiscountAmount:  p.DiscountAmount().InexactFloat64(),
	}
}

// CatalogEntry is one row of a catalog seed file.
type CatalogEntry struct {
	Barcode         string
	Name            string
	Price           float64
	DiscountPercent int
	Quantity        int
}

// ProductView is the JSON view of a product with pricing and stock.
type ProductView struct {
	ProductPrice
	Stock int `json:"stock"`
}

// View returns the priced view of a product and its stock.
func (p ProductStock) View() ProductView {
	return ProductView{ProductPrice: p.Product.WithPricing(), Stock: p.Stock}
}

// ProductInput is the payload an employee sends to create or update a product.
// Quantity replaces the stock on hand.
type ProductInput struct {
	Name            string  `json:"name"`
	Price           float64 `json:"price"`
	Barcode         string  `json:"barcode"`
	DiscountPercent int     `json:"discountPercent"`
	Quantity        int     `json:"quantity"`
}

// Validate trims the text fields and checks the input against catalog rules.
func (in *ProductInput) Validate() error {
	in.Name = strings.TrimSpace(in.Name)
	in.Barcode = strings.TrimSpace(in.Barcode)

	switch {
	case in.Name == "":
		return NewDomainError(ErrCodeInvalidProduct, "Product name is required")
	case in.Barcode == "":
		return NewDomainError(ErrCodeInvalidProduct, "Product barcode is required")
	case in.Price < 0:
		return NewDomainError(ErrCodeInvalidProduct, "Price cannot be negative")
	case in.DiscountPercent < 0 || in.DiscountPercent > 100:
		return NewDomainError(ErrCodeInvalidProduct, "Discount must be between 0 and 100")
	case in.Quantity < 0:
		return NewDomainError(ErrCodeInvalidProduct, "Quantity cannot be negative")
	}
	return nil
}
