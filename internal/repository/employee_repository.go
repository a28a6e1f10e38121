package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// The online system employee is the default attribution for self-checkout
// orders. It is an ordinary employee row keyed by its email.
const (
	SystemEmployeeName  = "Online System"
	SystemEmployeeEmail = "online-system@rosemary-store.local"
)

// employeeRepository implements the EmployeeRepository interface using PostgreSQL.
type employeeRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewEmployeeRepository creates a new PostgreSQL-backed employee repository.
func NewEmployeeRepository(pool *pgxpool.Pool, logger zerolog.Logger) EmployeeRepository {
	return &employeeRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "employee").Logger(),
	}
}

// EnsureSystemEmployee creates the online system employee if it is missing
// and returns its id.
func (r *employeeRepository) EnsureSystemEmployee(ctx context.Context) (int64, error) {
	query := `
		INSERT INTO employees (name, email)
		VALUES ($1, $2)
		ON CONFLICT (email) DO UPDATE SET name = EXCLUDED.name
		RETURNING id
	`

	var id int64
	if err := r.pool.QueryRow(ctx, query, SystemEmployeeName, SystemEmployeeEmail).Scan(&id); err != nil {
		r.logger.Error().Err(err).Msg("failed to provision system employee")
		return 0, fmt.Errorf("failed to provision system employee: %w", err)
	}

	r.logger.Debug().Int64("employee_id", id).Msg("system employee provisioned")
	return id, nil
}

// Exists reports whether an employee row with id exists.
func (r *employeeRepository) Exists(ctx context.Context, id int64) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM employees WHERE id = $1)`, id).Scan(&exists)
	if err != nil {
		r.logger.Error().Err(err).Int64("employee_id", id).Msg("failed to look up employee")
		return false, fmt.Errorf("failed to look up employee: %w", err)
	}
	return exists, nil
}
