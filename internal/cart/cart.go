// Package cart holds the customer's provisional selections for the lifetime
// of a session. A Cart never touches stock; clamping against the catalog is
// done by the service layer.
package cart

import "sort"

// Line is one product selection.
type Line struct {
	ProductID int64 `json:"productId"`
	Quantity  int   `json:"quantity"`
}

// Cart maps product ids to requested quantities (always >= 1).
type Cart struct {
	items map[int64]int
}

// New returns an empty cart.
func New() *Cart {
	return &Cart{items: make(map[int64]int)}
}

// FromLines builds a cart from lines, skipping non-positive quantities.
func FromLines(lines []Line) *Cart {
	c := New()
	for _, l := range lines {
		c.Set(l.ProductID, l.Quantity)
	}
	return c
}

// Quantity returns the quantity held for a product, or 0.
func (c *Cart) Quantity(productID int64) int {
	return c.items[productID]
}

// Set stores qty for a product; qty <= 0 removes the line.
func (c *Cart) Set(productID int64, qty int) {
	if qty <= 0 {
		delete(c.items, productID)
		return
	}
	c.items[productID] = qty
}

// Remove deletes a line. Removing an absent product is a no-op.
func (c *Cart) Remove(productID int64) {
	delete(c.items, productID)
}

// Lines returns the cart lines ordered by product id.
func (c *Cart) Lines() []Line {
	lines := make([]Line, 0, len(c.items))
	for id, qty := range c.items {
		lines = append(lines, Line{ProductID: id, Quantity: qty})
	}
	sort.Slice(lines, func(i, j int) bool { return lines[i].ProductID < lines[j].ProductID })
	return lines
}

// ProductIDs returns the product ids in ascending order.
func (c *Cart) ProductIDs() []int64 {
	lines := c.Lines()
	ids := make([]int64, len(lines))
	for i, l := range lines {
		ids[i] = l.ProductID
	}
	return ids
}

// Len returns the number of distinct products.
func (c *Cart) Len() int {
	return len(c.items)
}

// IsEmpty reports whether the cart has no lines.
func (c *Cart) IsEmpty() bool {
	return len(c.items) == 0
}

// Clear removes every line.
func (c *Cart) Clear() {
	clear(c.items)
}

// Clone returns an independent copy.
func (c *Cart) Clone() *Cart {
	out := New()
	for id, qty := range c.items {
		out.items[id] = qty
	}
	return out
}
