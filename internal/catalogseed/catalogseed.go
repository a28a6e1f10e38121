// Package catalogseed loads the store catalog from gzipped CSV files and
// writes it to the catalog store.
//
// Each row has the columns barcode, name, price, discount_percent, quantity.
// A header row is optional. Files are read from the local file system or from
// S3, with S3 tried first when enabled.
package catalogseed

import (
	"context"

	"rosemary-store/internal/model"
)

// Loader reads one catalog file.
type Loader interface {
	// Load reads the catalog at path and returns its entries in file order.
	Load(ctx context.Context, path string) ([]model.CatalogEntry, error)
}

// CatalogWriter is the part of the catalog store used for seeding.
type CatalogWriter interface {
	UpsertCatalog(ctx context.Context, entries []model.CatalogEntry) (int, error)
}
