package service

import (
	"context"
	"fmt"

	"rosemary-store/internal/cart"
	"rosemary-store/internal/model"
	"rosemary-store/internal/repository"

	"github.com/rs/zerolog"
)

// cartService implements CartService.
type cartService struct {
	productRepo repository.ProductRepository
	logger      zerolog.Logger
}

// NewCartService creates a new cart service.
func NewCartService(productRepo repository.ProductRepository, logger zerolog.Logger) CartService {
	return &cartService{
		productRepo: productRepo,
		logger:      logger.With().Str("service", "cart").Logger(),
	}
}

// Add merges qty with any existing quantity and clamps the sum to stock.
func (s *cartService) Add(ctx context.Context, c *cart.Cart, productID int64, qty int) (*model.CartUpdateResult, error) {
	if qty < 1 {
		return nil, model.ErrInvalidQuantity
	}

	product, err := s.lookup(ctx, productID)
	if err != nil {
		return nil, err
	}

	return s.store(c, product, c.Quantity(productID)+qty), nil
}

// Remove drops the product's line.
func (s *cartService) Remove(c *cart.Cart, productID int64) {
	c.Remove(productID)
}

// SetQuantity replaces the product's line, clamped to stock.
func (s *cartService) SetQuantity(ctx context.Context, c *cart.Cart, productID int64, qty int) (*model.CartUpdateResult, error) {
	if qty <= 0 {
		c.Remove(productID)
		return &model.CartUpdateResult{ProductID: productID}, nil
	}

	product, err := s.lookup(ctx, productID)
	if err != nil {
		return nil, err
	}

	return s.store(c, product, qty), nil
}

// Totals prices the cart against the current catalog.
func (s *cartService) Totals(ctx context.Context, c *cart.Cart) (model.CartTotals, error) {
	lines, _, err := s.price(ctx, c)
	if err != nil {
		return model.CartTotals{}, err
	}
	return model.ComputeTotals(lines), nil
}

// View joins each line with catalog data.
func (s *cartService) View(ctx context.Context, c *cart.Cart) (*model.CartView, error) {
	lines, products, err := s.price(ctx, c)
	if err != nil {
		return nil, err
	}

	view := &model.CartView{
		Lines:  make([]model.CartLine, 0, len(lines)),
		Totals: model.ComputeTotals(lines),
	}
	for _, l := range lines {
		p := products[l.Product.ID]
		view.Lines = append(view.Lines, model.CartLine{
			ProductID:       p.ID,
			Name:            p.Name,
			Quantity:        l.Quantity,
			UnitPrice:       p.Price,
			DiscountedPrice: p.DiscountedPrice().InexactFloat64(),
			Available:       p.Stock,
		})
	}
	return view, nil
}

func (s *cartService) lookup(ctx context.Context, productID int64) (*model.ProductStock, error) {
	product, err := s.productRepo.GetByID(ctx, productID)
	if err != nil {
		s.logger.Error().Err(err).Int64("product_id", productID).Msg("failed to look up product")
		return nil, fmt.Errorf("failed to look up product: %w", err)
	}
	if product == nil {
		s.logger.Debug().Int64("product_id", productID).Msg("product not found")
		return nil, model.ErrProductNotFound
	}
	return product, nil
}

// store writes min(want, stock) into the cart. A zero result leaves no line.
func (s *cartService) store(c *cart.Cart, product *model.ProductStock, want int) *model.CartUpdateResult {
	qty := want
	clamped := false
	if qty > product.Stock {
		qty = max(product.Stock, 0)
		clamped = true
	}
	c.Set(product.ID, qty)

	if clamped {
		s.logger.Debug().
			Int64("product_id", product.ID).
			Int("requested", want).
			Int("stored", qty).
			Msg("cart quantity clamped to stock")
	}

	return &model.CartUpdateResult{
		ProductID: product.ID,
		Quantity:  qty,
		Available: product.Stock,
		Clamped:   clamped,
	}
}

// price loads the cart's products. Lines whose product no longer exists are
// skipped; a failed query is an error, never an empty cart.
func (s *cartService) price(ctx context.Context, c *cart.Cart) ([]model.PricedLine, map[int64]model.ProductStock, error) {
	if c.IsEmpty() {
		return nil, map[int64]model.ProductStock{}, nil
	}

	products, err := s.productRepo.GetByIDs(ctx, c.ProductIDs())
	if err != nil {
		s.logger.Error().Err(err).Int("lines", c.Len()).Msg("failed to load cart products")
		return nil, nil, fmt.Errorf("failed to load cart products: %w", err)
	}

	byID := make(map[int64]model.ProductStock, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	lines := make([]model.PricedLine, 0, c.Len())
	for _, line := range c.Lines() {
		p, ok := byID[line.ProductID]
		if !ok {
			continue
		}
		lines = append(lines, model.PricedLine{Product: p.Product, Quantity: line.Quantity})
	}
	return lines, byID, nil
}
