package service

import (
	"context"
	"errors"
	"fmt"

	"rosemary-store/internal/model"
	"rosemary-store/internal/repository"

	"github.com/rs/zerolog"
)

// productService implements ProductService.
type productService struct {
	productRepo repository.ProductRepository
	logger      zerolog.Logger
}

// NewProductService creates a new product service.
func NewProductService(productRepo repository.ProductRepository, logger zerolog.Logger) ProductService {
	return &productService{
		productRepo: productRepo,
		logger:      logger.With().Str("service", "product").Logger(),
	}
}

// GetAll retrieves products with pagination.
func (s *productService) GetAll(ctx context.Context, limit, offset int) ([]model.ProductView, error) {
	limit, offset = normalisePage(limit, offset)

	products, err := s.productRepo.GetAll(ctx, limit, offset)
	if err != nil {
		s.logger.Error().Err(err).
			Int("limit", limit).
			Int("offset", offset).
			Msg("failed to get all products")
		return nil, fmt.Errorf("failed to get products: %w", err)
	}

	views := make([]model.ProductView, len(products))
	for i, p := range products {
		views[i] = p.View()
	}

	s.logger.Debug().
		Int("count", len(views)).
		Int("limit", limit).
		Int("offset", offset).
		Msg("retrieved products")

	return views, nil
}

// GetByID retrieves a single product by ID.
func (s *productService) GetByID(ctx context.Context, id int64) (*model.ProductView, error) {
	if id <= 0 {
		return nil, model.ErrProductNotFound
	}

	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		s.logger.Error().Err(err).Int64("product_id", id).Msg("failed to get product by ID")
		return nil, fmt.Errorf("failed to get product: %w", err)
	}

	if product == nil {
		s.logger.Debug().Int64("product_id", id).Msg("product not found")
		return nil, model.ErrProductNotFound
	}

	view := product.View()
	return &view, nil
}

// Create adds a product with its initial stock.
func (s *productService) Create(ctx context.Context, actor model.Actor, in model.ProductInput) (*model.ProductView, error) {
	employeeID, ok := actor.EmployeeID()
	if !ok {
		return nil, model.ErrActorNotAllowed
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}

	product, err := s.productRepo.Create(ctx, in)
	if err != nil {
		return nil, s.adminFailure(err, "create", 0)
	}

	s.logger.Info().
		Int64("product_id", product.ID).
		Int64("employee_id", employeeID).
		Msg("product created")

	view := product.View()
	return &view, nil
}

// Update replaces a product's fields and stock on hand.
func (s *productService) Update(ctx context.Context, actor model.Actor, id int64, in model.ProductInput) (*model.ProductView, error) {
	employeeID, ok := actor.EmployeeID()
	if !ok {
		return nil, model.ErrActorNotAllowed
	}
	if id <= 0 {
		return nil, model.ErrProductNotFound
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}

	product, err := s.productRepo.Update(ctx, id, in)
	if err != nil {
		return nil, s.adminFailure(err, "update", id)
	}
	if product == nil {
		return nil, model.ErrProductNotFound
	}

	s.logger.Info().
		Int64("product_id", id).
		Int64("employee_id", employeeID).
		Int("stock", product.Stock).
		Msg("product updated")

	view := product.View()
	return &view, nil
}

// Delete removes a product. Carts still holding it drop the line at pricing
// and checkout time.
func (s *productService) Delete(ctx context.Context, actor model.Actor, id int64) error {
	employeeID, ok := actor.EmployeeID()
	if !ok {
		return model.ErrActorNotAllowed
	}
	if id <= 0 {
		return model.ErrProductNotFound
	}

	deleted, err := s.productRepo.Delete(ctx, id)
	if err != nil {
		return s.adminFailure(err, "delete", id)
	}
	if !deleted {
		return model.ErrProductNotFound
	}

	s.logger.Info().
		Int64("product_id", id).
		Int64("employee_id", employeeID).
		Msg("product deleted")
	return nil
}

// adminFailure passes domain errors through and wraps store failures.
func (s *productService) adminFailure(err error, op string, id int64) error {
	var domainErr *model.DomainError
	if errors.As(err, &domainErr) {
		return err
	}
	s.logger.Error().Err(err).Int64("product_id", id).Str("op", op).Msg("catalog change failed")
	return fmt.Errorf("failed to %s product: %w", op, err)
}

// normalisePage clamps pagination parameters to 1..100 and >= 0.
func normalisePage(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = 10
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
