package repository

import (
	"context"
	"fmt"

	"rosemary-store/internal/model"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog"
)

// reportRepository implements ReportRepository. Reports are read-only
// aggregates, scanned into the report models by column name with sqlx over
// the shared pgx pool.
type reportRepository struct {
	db     *sqlx.DB
	logger zerolog.Logger
}

// NewReportRepository creates a new PostgreSQL-backed report repository.
func NewReportRepository(pool *pgxpool.Pool, logger zerolog.Logger) ReportRepository {
	return &reportRepository{
		db:     sqlx.NewDb(stdlib.OpenDBFromPool(pool), "pgx"),
		logger: logger.With().Str("repository", "report").Logger(),
	}
}

func (r *reportRepository) LowStock(ctx context.Context, threshold int) ([]model.LowStockItem, error) {
	query := `
		SELECT p.id AS product_id, p.name, p.barcode, COALESCE(s.quantity, 0) AS quantity
		FROM products p
		LEFT JOIN stock_records s ON s.product_id = p.id
		WHERE COALESCE(s.quantity, 0) < $1
		ORDER BY quantity, p.name
	`

	items := []model.LowStockItem{}
	if err := r.db.SelectContext(ctx, &items, query, threshold); err != nil {
		r.logger.Error().Err(err).Int("threshold", threshold).Msg("failed to query low stock")
		return nil, fmt.Errorf("failed to query low stock: %w", err)
	}
	return items, nil
}

func (r *reportRepository) MonthlySales(ctx context.Context, months int) ([]model.MonthlySales, error) {
	query := `
		SELECT to_char(date_trunc('month', placed_at), 'YYYY-MM') AS month,
			COUNT(*) AS order_count,
			COALESCE(SUM(total_price), 0)::float8 AS total_sales,
			COALESCE(SUM(total_discount), 0)::float8 AS total_discount
		FROM orders
		WHERE status = 'accepted'
		GROUP BY month
		ORDER BY month DESC
		LIMIT $1
	`

	sales := []model.MonthlySales{}
	if err := r.db.SelectContext(ctx, &sales, query, months); err != nil {
		r.logger.Error().Err(err).Msg("failed to query monthly sales")
		return nil, fmt.Errorf("failed to query monthly sales: %w", err)
	}
	return sales, nil
}

func (r *reportRepository) EmployeeSales(ctx context.Context) ([]model.EmployeeSales, error) {
	query := `
		SELECT e.id AS employee_id, e.name,
			COUNT(DISTINCT o.id) AS order_count,
			COALESCE(SUM(li.quantity), 0) AS units_sold,
			COALESCE((SELECT SUM(o2.total_price) FROM orders o2
				WHERE o2.employee_id = e.id AND o2.status = 'accepted'), 0)::float8 AS total_sales
		FROM employees e
		JOIN orders o ON o.employee_id = e.id AND o.status = 'accepted'
		LEFT JOIN order_line_items li ON li.order_id = o.id
		GROUP BY e.id, e.name
		ORDER BY total_sales DESC, e.id
	`

	sales := []model.EmployeeSales{}
	if err := r.db.SelectContext(ctx, &sales, query); err != nil {
		r.logger.Error().Err(err).Msg("failed to query employee sales")
		return nil, fmt.Errorf("failed to query employee sales: %w", err)
	}
	return sales, nil
}
