package repository

import (
	"context"
	"errors"
	"fmt"

	"rosemary-store/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

const productStockColumns = `
	p.id, p.name, p.price, p.barcode, p.discount_percent, p.created_at,
	COALESCE(s.quantity, 0)
`

// productRepository implements the ProductRepository interface using PostgreSQL.
type productRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewProductRepository creates a new PostgreSQL-backed product repository.
func NewProductRepository(pool *pgxpool.Pool, logger zerolog.Logger) ProductRepository {
	return &productRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "product").Logger(),
	}
}

// GetAll retrieves products with their stock, ordered by name.
func (r *productRepository) GetAll(ctx context.Context, limit, offset int) ([]model.ProductStock, error) {
	query := `SELECT` + productStockColumns + `
		FROM products p
		LEFT JOIN stock_records s ON s.product_id = p.id
		ORDER BY p.name, p.id
		LIMIT $1 OFFSET $2
	`

	rows, err := r.pool.Query(ctx, query, limit, offset)
	if err != nil {
		r.logger.Error().Err(err).
			Int("limit", limit).
			Int("offset", offset).
			Msg("failed to query products")
		return nil, fmt.Errorf("failed to query products: %w", err)
	}

	products, err := scanProductStocks(rows)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to read product rows")
		return nil, err
	}
	return products, nil
}

// GetByID retrieves a single product with its stock.
func (r *productRepository) GetByID(ctx context.Context, id int64) (*model.ProductStock, error) {
	query := `SELECT` + productStockColumns + `
		FROM products p
		LEFT JOIN stock_records s ON s.product_id = p.id
		WHERE p.id = $1
	`

	var p model.ProductStock
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&p.ID, &p.Name, &p.Price, &p.Barcode, &p.DiscountPercent, &p.CreatedAt, &p.Stock,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Debug().Int64("product_id", id).Msg("product not found")
			return nil, nil
		}
		r.logger.Error().Err(err).Int64("product_id", id).Msg("failed to query product")
		return nil, fmt.Errorf("failed to query product: %w", err)
	}

	return &p, nil
}

// GetByIDs retrieves the existing products among ids, ordered by id.
func (r *productRepository) GetByIDs(ctx context.Context, ids []int64) ([]model.ProductStock, error) {
	if len(ids) == 0 {
		return []model.ProductStock{}, nil
	}

	query := `SELECT` + productStockColumns + `
		FROM products p
		LEFT JOIN stock_records s ON s.product_id = p.id
		WHERE p.id = ANY($1)
		ORDER BY p.id
	`

	rows, err := r.pool.Query(ctx, query, ids)
	if err != nil {
		r.logger.Error().Err(err).Int("count", len(ids)).Msg("failed to query products by IDs")
		return nil, fmt.Errorf("failed to query products by IDs: %w", err)
	}

	products, err := scanProductStocks(rows)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to read product rows")
		return nil, err
	}
	return products, nil
}

// UpsertCatalog writes products and stock keyed by barcode in one transaction.
func (r *productRepository) UpsertCatalog(ctx context.Context, entries []model.CatalogEntry) (written int, err error) {
	if len(entries) == 0 {
		return 0, nil
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				r.logger.Error().Err(rbErr).Msg("failed to rollback catalog upsert")
			}
		}
	}()

	productQuery := `
		INSERT INTO products (name, price, barcode, discount_percent)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (barcode) DO UPDATE
		SET name = EXCLUDED.name,
			price = EXCLUDED.price,
			discount_percent = EXCLUDED.discount_percent
		RETURNING id
	`
	for _, e := range entries {
		var id int64
		if err = tx.QueryRow(ctx, productQuery, e.Name, e.Price, e.Barcode, e.DiscountPercent).Scan(&id); err != nil {
			r.logger.Error().Err(err).Str("barcode", e.Barcode).Msg("failed to upsert product")
			return 0, fmt.Errorf("failed to upsert product %s: %w", e.Barcode, err)
		}
		if _, err = tx.Exec(ctx, setStockQuery, id, e.Quantity); err != nil {
			r.logger.Error().Err(err).Str("barcode", e.Barcode).Msg("failed to upsert stock")
			return 0, fmt.Errorf("failed to upsert stock for %s: %w", e.Barcode, err)
		}
	}

	if err = tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("failed to commit catalog upsert: %w", err)
	}

	r.logger.Info().Int("count", len(entries)).Msg("catalog upserted")
	return len(entries), nil
}

const setStockQuery = `
	INSERT INTO stock_records (product_id, quantity, updated_at)
	VALUES ($1, $2, NOW())
	ON CONFLICT (product_id) DO UPDATE
	SET quantity = EXCLUDED.quantity, updated_at = NOW()
`

// Create inserts a product and its stock row in one transaction.
func (r *productRepository) Create(ctx context.Context, in model.ProductInput) (product *model.ProductStock, err error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				r.logger.Error().Err(rbErr).Msg("failed to rollback product create")
			}
		}
	}()

	query := `
		INSERT INTO products (name, price, barcode, discount_percent)
		VALUES ($1, $2, $3, $4)
		RETURNING id, name, price, barcode, discount_percent, created_at
	`

	var p model.ProductStock
	err = tx.QueryRow(ctx, query, in.Name, in.Price, in.Barcode, in.DiscountPercent).Scan(
		&p.ID, &p.Name, &p.Price, &p.Barcode, &p.DiscountPercent, &p.CreatedAt,
	)
	if err != nil {
		if derr := domainError(err); derr != err {
			r.logger.Warn().Str("barcode", in.Barcode).Msg("barcode already in use")
			return nil, derr
		}
		r.logger.Error().Err(err).Str("barcode", in.Barcode).Msg("failed to create product")
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	if _, err = tx.Exec(ctx, setStockQuery, p.ID, in.Quantity); err != nil {
		r.logger.Error().Err(err).Int64("product_id", p.ID).Msg("failed to set stock")
		return nil, fmt.Errorf("failed to set stock for product %d: %w", p.ID, err)
	}
	p.Stock = in.Quantity

	if err = tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit product create: %w", err)
	}

	r.logger.Info().Int64("product_id", p.ID).Str("barcode", p.Barcode).Msg("product created")
	return &p, nil
}

// Update overwrites a product's fields and upserts its stock row. The update
// waits for any checkout holding the product row, so an order is priced
// entirely before or entirely after the change.
func (r *productRepository) Update(ctx context.Context, id int64, in model.ProductInput) (product *model.ProductStock, err error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil || product == nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				r.logger.Error().Err(rbErr).Msg("failed to rollback product update")
			}
		}
	}()

	query := `
		UPDATE products
		SET name = $2, price = $3, barcode = $4, discount_percent = $5
		WHERE id = $1
		RETURNING id, name, price, barcode, discount_percent, created_at
	`

	var p model.ProductStock
	err = tx.QueryRow(ctx, query, id, in.Name, in.Price, in.Barcode, in.DiscountPercent).Scan(
		&p.ID, &p.Name, &p.Price, &p.Barcode, &p.DiscountPercent, &p.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Debug().Int64("product_id", id).Msg("product not found")
			return nil, nil
		}
		if derr := domainError(err); derr != err {
			r.logger.Warn().Int64("product_id", id).Str("barcode", in.Barcode).Msg("barcode already in use")
			return nil, derr
		}
		r.logger.Error().Err(err).Int64("product_id", id).Msg("failed to update product")
		return nil, fmt.Errorf("failed to update product: %w", err)
	}

	if _, err = tx.Exec(ctx, setStockQuery, id, in.Quantity); err != nil {
		r.logger.Error().Err(err).Int64("product_id", id).Msg("failed to set stock")
		return nil, fmt.Errorf("failed to set stock for product %d: %w", id, err)
	}
	p.Stock = in.Quantity

	if err = tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit product update: %w", err)
	}

	r.logger.Info().Int64("product_id", id).Int("stock", p.Stock).Msg("product updated")
	return &p, nil
}

// Delete removes a product. Its stock row goes with it through the cascade;
// order lines keep the product referenced, so ordered products cannot be
// deleted.
func (r *productRepository) Delete(ctx context.Context, id int64) (bool, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		if derr := domainError(err); derr != err {
			r.logger.Warn().Int64("product_id", id).Msg("product is referenced by orders")
			return false, derr
		}
		r.logger.Error().Err(err).Int64("product_id", id).Msg("failed to delete product")
		return false, fmt.Errorf("failed to delete product: %w", err)
	}

	if tag.RowsAffected() == 0 {
		r.logger.Debug().Int64("product_id", id).Msg("product not found")
		return false, nil
	}

	r.logger.Info().Int64("product_id", id).Msg("product deleted")
	return true, nil
}

func scanProductStocks(rows pgx.Rows) ([]model.ProductStock, error) {
	defer rows.Close()

	products := []model.ProductStock{}
	for rows.Next() {
		var p model.ProductStock
		if err := rows.Scan(&p.ID, &p.Name, &p.Price, &p.Barcode, &p.DiscountPercent, &p.CreatedAt, &p.Stock); err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating products: %w", err)
	}
	return products, nil
}
