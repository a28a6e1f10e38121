package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"rosemary-store/internal/cart"
	"rosemary-store/internal/catalogseed"
	"rosemary-store/internal/config"
	"rosemary-store/internal/database"
	"rosemary-store/internal/handler"
	"rosemary-store/internal/repository"
	"rosemary-store/internal/router"
	"rosemary-store/internal/service"

	"github.com/rs/zerolog"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Initialize logger
	logger := config.NewLogger(cfg.Logger)
	logger.Info().Msg("starting rosemary-store API server")

	// Create context for application lifecycle
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize database connection pool
	pool, err := database.NewPool(ctx, cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer pool.Close()

	if err := database.Migrate(ctx, pool, logger); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	// Initialize repositories
	productRepo := repository.NewProductRepository(pool, logger)
	orderRepo := repository.NewOrderRepository(pool, logger)
	reportRepo := repository.NewReportRepository(pool, logger)

	systemEmployeeID, err := service.ResolveSystemEmployee(ctx, repository.NewEmployeeRepository(pool, logger), cfg.Checkout.SystemEmployeeID)
	if err != nil {
		return fmt.Errorf("failed to resolve system employee: %w", err)
	}
	logger.Info().Int64("employee_id", systemEmployeeID).Msg("self-checkout orders attributed to system employee")

	if cfg.Seed.Enabled {
		if err := seedCatalog(ctx, cfg.Seed, productRepo, logger); err != nil {
			return err
		}
	}

	// Session carts live in memory and expire when idle
	carts := cart.NewStore(cfg.Cart.MaxIdle, logger)
	go carts.Run(ctx)

	// Initialize services
	productService := service.NewProductService(productRepo, logger)
	cartService := service.NewCartService(productRepo, logger)
	checkoutService := service.NewCheckoutService(orderRepo, service.CheckoutOptions{
		SystemEmployeeID: systemEmployeeID,
		LockTimeout:      cfg.Checkout.LockTimeout,
	}, logger)
	fulfillmentService := service.NewFulfillmentService(orderRepo, cfg.Checkout.LockTimeout, logger)
	reportService := service.NewReportService(reportRepo, logger)

	// Initialize router
	mux := router.New(router.Handlers{
		Product:  handler.NewProductHandler(productService, logger),
		Cart:     handler.NewCartHandler(carts, cartService, logger),
		Checkout: handler.NewCheckoutHandler(carts, checkoutService, logger),
		Order:    handler.NewOrderHandler(fulfillmentService, logger),
		Report:   handler.NewReportHandler(reportService, logger),
	}, router.Options{
		APIKey:     cfg.Auth.APIKey,
		CartMaxAge: cfg.Cart.MaxIdle,
	}, logger)

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Channel to listen for errors from the server
	serverErrors := make(chan error, 1)

	// Start HTTP server in a goroutine
	go func() {
		logger.Info().
			Str("address", cfg.Server.Address()).
			Msg("HTTP server started")
		serverErrors <- server.ListenAndServe()
	}()

	// Channel to listen for interrupt signals
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// Block until we receive a signal or an error
	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		logger.Info().
			Str("signal", sig.String()).
			Msg("shutdown signal received, starting graceful shutdown")

		// Create a context with timeout for shutdown
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		// In-flight checkouts finish or roll back before the pool closes
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("failed to shutdown server gracefully")
			// Force close
			if closeErr := server.Close(); closeErr != nil {
				logger.Error().Err(closeErr).Msg("failed to close server")
			}
			return fmt.Errorf("server shutdown failed: %w", err)
		}

		logger.Info().Msg("server shutdown completed")
	}

	return nil
}

// seedCatalog upserts the configured catalog files, from S3 when enabled
// with the local file system as fallback.
func seedCatalog(ctx context.Context, cfg config.SeedConfig, writer catalogseed.CatalogWriter, logger zerolog.Logger) error {
	fileLoader := catalogseed.NewFileLoader(logger)

	var s3Loader catalogseed.Loader
	if cfg.S3Enabled {
		loader, err := catalogseed.NewS3Loader(ctx, cfg.S3Bucket, cfg.S3Region, logger)
		if err != nil {
			logger.Warn().
				Err(err).
				Msg("failed to initialise S3 loader, falling back to local file system only")
		} else {
			s3Loader = loader
		}
	} else {
		logger.Info().Msg("using local file system for catalog files (S3 disabled)")
	}

	loader := catalogseed.NewFallbackLoader(s3Loader, fileLoader, cfg.S3Prefix, cfg.S3Enabled, logger)
	seeder := catalogseed.NewSeeder(loader, writer, logger)

	if _, err := seeder.Seed(ctx, cfg.Files); err != nil {
		return fmt.Errorf("failed to seed catalog: %w", err)
	}
	return nil
}
