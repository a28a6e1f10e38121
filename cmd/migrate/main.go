package main

import (
	"context"
	"fmt"
	"os"

	"rosemary-store/internal/catalogseed"
	"rosemary-store/internal/config"
	"rosemary-store/internal/database"
	"rosemary-store/internal/repository"
	"rosemary-store/internal/service"
)

// migrate checks the database connection, applies the schema and, when
// SEED_ENABLED is set, loads the configured catalog files from local disk.
func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Unable to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger := config.NewLogger(cfg.Logger)
	ctx := context.Background()

	pool, err := database.NewPool(ctx, cfg.Database, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Unable to connect to database: %v\n", err)
		os.Exit(1)
	}
	defer pool.Close()

	var dbName string
	if err := pool.QueryRow(ctx, "SELECT current_database()").Scan(&dbName); err != nil {
		fmt.Fprintf(os.Stderr, "QueryRow failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Successfully connected to database: %s\n", dbName)

	if err := database.Migrate(ctx, pool, logger); err != nil {
		fmt.Fprintf(os.Stderr, "Migration failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("Schema is up to date")

	systemEmployeeID, err := service.ResolveSystemEmployee(ctx, repository.NewEmployeeRepository(pool, logger), cfg.Checkout.SystemEmployeeID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "System employee check failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Self-checkout orders are attributed to employee %d\n", systemEmployeeID)

	if !cfg.Seed.Enabled {
		return
	}

	seeder := catalogseed.NewSeeder(
		catalogseed.NewFileLoader(logger),
		repository.NewProductRepository(pool, logger),
		logger,
	)
	written, err := seeder.Seed(ctx, cfg.Seed.Files)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Seeding failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Seeded %d products from %d files\n", written, len(cfg.Seed.Files))
}
