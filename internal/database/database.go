package database

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"rosemary-store/internal/config"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// NewPool creates the store's PostgreSQL connection pool. Every connection
// runs in UTC, so monthly sales buckets do not depend on the server's zone,
// and carries the configured statement timeout as a ceiling above the
// checkout lock timeout.
func NewPool(ctx context.Context, cfg config.DatabaseConfig, logger zerolog.Logger) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.ConnectionString())
	if err != nil {
		return nil, fmt.Errorf("failed to parse database config: %w", err)
	}

	poolConfig.MaxConns = int32(cfg.MaxConnections)
	poolConfig.MinConns = int32(cfg.MinConnections)
	poolConfig.MaxConnLifetime = time.Duration(cfg.MaxConnLifetime) * time.Second
	poolConfig.MaxConnIdleTime = 30 * time.Minute
	poolConfig.HealthCheckPeriod = 1 * time.Minute

	for name, value := range sessionParams(cfg) {
		poolConfig.ConnConfig.RuntimeParams[name] = value
	}

	logger.Info().
		Str("host", cfg.Host).
		Int("port", cfg.Port).
		Str("database", cfg.Database).
		Int("max_connections", cfg.MaxConnections).
		Int("min_connections", cfg.MinConnections).
		Dur("statement_timeout", cfg.StatementTimeout).
		Msg("creating database connection pool")

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logger.Info().Msg("database connection pool ready")

	return pool, nil
}

// sessionParams are sent in the startup message of every pooled connection.
func sessionParams(cfg config.DatabaseConfig) map[string]string {
	params := map[string]string{
		"application_name": cfg.ApplicationName,
		"timezone":         "UTC",
	}
	if params["application_name"] == "" {
		params["application_name"] = "rosemary-store"
	}
	if cfg.StatementTimeout > 0 {
		ms := cfg.StatementTimeout.Milliseconds()
		if ms == 0 {
			ms = 1
		}
		params["statement_timeout"] = strconv.FormatInt(ms, 10)
	}
	return params
}
