package model

import "github.com/shopspring/decimal"

// CartTotals are the rounded monetary totals of a cart.
type CartTotals struct {
	Subtotal      float64 `json:"subtotal"`
	TotalDiscount float64 `json:"totalDiscount"`
	Total         float64 `json:"total"`
}

// PricedLine is a product and a quantity to be priced.
type PricedLine struct {
	Product  Product
	Quantity int
}

// ComputeTotals returns (pre-discount subtotal, discount, post-discount total),
// each rounded to 2 decimals.
func ComputeTotals(lines []PricedLine) CartTotals {
	subtotal := decimal.Zero
	discount := decimal.Zero
	for _, l := range lines {
		q := decimal.NewFromInt(int64(l.Quantity))
		subtotal = subtotal.Add(l.Product.UnitPrice().Mul(q))
		discount = discount.Add(l.Product.DiscountAmount().Mul(q))
	}
	subtotal = subtotal.Round(2)
	discount = discount.Round(2)
	return CartTotals{
		Subtotal:      subtotal.InexactFloat64(),
		TotalDiscount: discount.InexactFloat64(),
		Total:         subtotal.Sub(discount).Round(2).InexactFloat64(),
	}
}

// CartLine is a cart entry joined with current catalog data.
type CartLine struct {
	ProductID       int64   `json:"productId"`
	Name            string  `json:"name"`
	Quantity        int     `json:"quantity"`
	UnitPrice       float64 `json:"unitPrice"`
	DiscountedPrice float64 `json:"discountedPrice"`
	Available       int     `json:"available"`
}

// CartView is the JSON view of a cart.
type CartView struct {
	Lines  []CartLine `json:"lines"`
	Totals CartTotals `json:"totals"`
}

// CartItemRequest is the payload for adding or updating a cart line.
type CartItemRequest struct {
	ProductID int64 `json:"productId"`
	Quantity  int   `json:"quantity"`
}

// CartUpdateResult reports the quantity stored after an add or set.
type CartUpdateResult struct {
	ProductID int64 `json:"productId"`
	Quantity  int   `json:"quantity"`
	Available int   `json:"available"`
	Clamped   bool  `json:"clamped"`
}
