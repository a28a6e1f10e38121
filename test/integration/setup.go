package integration

import (
	"compress/gzip"
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"rosemary-store/internal/catalogseed"
	"rosemary-store/internal/config"
	"rosemary-store/internal/database"
	"rosemary-store/internal/model"
	"rosemary-store/internal/repository"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// TestDB represents a test database instance.
type TestDB struct {
	Container *postgres.PostgresContainer
	Pool      *pgxpool.Pool
	Config    config.DatabaseConfig
}

// SetupTestDB starts a PostgreSQL container, connects a pool through the
// application's database package and applies the schema.
func SetupTestDB(t *testing.T) *TestDB {
	t.Helper()

	ctx := context.Background()

	// Create PostgreSQL container
	postgresContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}

	host, err := postgresContainer.Host(ctx)
	if err != nil {
		t.Fatalf("failed to get container host: %v", err)
	}
	port, err := postgresContainer.MappedPort(ctx, "5432/tcp")
	if err != nil {
		t.Fatalf("failed to get container port: %v", err)
	}
	portNum, err := strconv.Atoi(port.Port())
	if err != nil {
		t.Fatalf("failed to parse container port: %v", err)
	}

	dbConfig := config.DatabaseConfig{
		Host:            host,
		Port:            portNum,
		User:            "testuser",
		Password:        "testpass",
		Database:        "testdb",
		MaxConnections:  30,
		MinConnections:  2,
		MaxConnLifetime: 300,
	}

	logger := zerolog.Nop()
	pool, err := database.NewPool(ctx, dbConfig, logger)
	if err != nil {
		t.Fatalf("failed to create connection pool: %v", err)
	}

	if err := database.Migrate(ctx, pool, logger); err != nil {
		t.Fatalf("failed to create schema: %v", err)
	}

	t.Cleanup(func() {
		pool.Close()
		if err := postgresContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	return &TestDB{
		Container: postgresContainer,
		Pool:      pool,
		Config:    dbConfig,
	}
}

// SeedCatalog writes entries to a gzipped catalog file and seeds it through
// the catalog seeder. Returns product ids keyed by barcode.
func SeedCatalog(t *testing.T, pool *pgxpool.Pool, entries []model.CatalogEntry) map[string]int64 {
	t.Helper()

	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "catalog.csv.gz")
	writeCatalogFile(t, path, entries)

	logger := zerolog.Nop()
	seeder := catalogseed.NewSeeder(
		catalogseed.NewFileLoader(logger),
		repository.NewProductRepository(pool, logger),
		logger,
	)
	if _, err := seeder.Seed(ctx, []string{path}); err != nil {
		t.Fatalf("failed to seed catalog: %v", err)
	}

	ids := make(map[string]int64, len(entries))
	rows, err := pool.Query(ctx, `SELECT barcode, id FROM products`)
	if err != nil {
		t.Fatalf("failed to read product ids: %v", err)
	}
	defer rows.Close()
	for rows.Next() {
		var barcode string
		var id int64
		if err := rows.Scan(&barcode, &id); err != nil {
			t.Fatalf("failed to scan product id: %v", err)
		}
		ids[barcode] = id
	}
	if err := rows.Err(); err != nil {
		t.Fatalf("failed to read product ids: %v", err)
	}
	return ids
}

func writeCatalogFile(t *testing.T, path string, entries []model.CatalogEntry) {
	t.Helper()

	file, err := os.Create(path)
	if err != nil {
		t.Fatalf("failed to create catalog file: %v", err)
	}
	defer file.Close()

	gz := gzip.NewWriter(file)
	w := csv.NewWriter(gz)
	_ = w.Write([]string{"barcode", "name", "price", "discount_percent", "quantity"})
	for _, e := range entries {
		_ = w.Write([]string{
			e.Barcode,
			e.Name,
			strconv.FormatFloat(e.Price, 'f', 2, 64),
			strconv.Itoa(e.DiscountPercent),
			strconv.Itoa(e.Quantity),
		})
	}
	w.Flush()
	if err := w.Error(); err != nil {
		t.Fatalf("failed to write catalog file: %v", err)
	}
	if err := gz.Close(); err != nil {
		t.Fatalf("failed to close catalog file: %v", err)
	}
}

// SeedCustomer inserts a customer and returns its id.
func SeedCustomer(t *testing.T, pool *pgxpool.Pool, name string) int64 {
	t.Helper()

	var id int64
	err := pool.QueryRow(context.Background(),
		`INSERT INTO customers (name, email) VALUES ($1, $2) RETURNING id`,
		name, name+"@example.com",
	).Scan(&id)
	if err != nil {
		t.Fatalf("failed to seed customer %s: %v", name, err)
	}
	return id
}

// SeedEmployee inserts an employee and returns its id.
func SeedEmployee(t *testing.T, pool *pgxpool.Pool, name string) int64 {
	t.Helper()

	var id int64
	err := pool.QueryRow(context.Background(),
		`INSERT INTO employees (name, email) VALUES ($1, $2) RETURNING id`,
		name, name+"@store.example.com",
	).Scan(&id)
	if err != nil {
		t.Fatalf("failed to seed employee %s: %v", name, err)
	}
	return id
}

// StockOf returns the product's stock, 0 when it has no stock record.
func StockOf(t *testing.T, pool *pgxpool.Pool, productID int64) int {
	t.Helper()

	var qty int
	err := pool.QueryRow(context.Background(),
		`SELECT COALESCE((SELECT quantity FROM stock_records WHERE product_id = $1), 0)`, productID,
	).Scan(&qty)
	if err != nil {
		t.Fatalf("failed to read stock of %d: %v", productID, err)
	}
	return qty
}

// CountRows returns the number of rows in table.
func CountRows(t *testing.T, pool *pgxpool.Pool, table string) int {
	t.Helper()

	var n int
	if err := pool.QueryRow(context.Background(), "SELECT count(*) FROM "+table).Scan(&n); err != nil {
		t.Fatalf("failed to count %s: %v", table, err)
	}
	return n
}

// CleanupDB cleans all data from test tables.
func CleanupDB(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()

	_, err := pool.Exec(context.Background(), `
		TRUNCATE order_line_items, orders, stock_records, products, customers, employees
		RESTART IDENTITY CASCADE`)
	if err != nil {
		t.Fatalf("failed to clean tables: %v", err)
	}
}
