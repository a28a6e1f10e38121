package main

import (
	"compress/gzip"
	"encoding/csv"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
)

type sampleProduct struct {
	barcode  string
	name     string
	price    string
	discount int
	quantity int
}

// generateSampleCatalog creates sample catalog files for local seeding.
// products.csv.gz holds the base catalog; offers.csv.gz repeats two barcodes
// with new discounts and stock, so seeding both files exercises the merge.
func main() {
	dataDir := "data/catalog"

	// Create directory if it doesn't exist
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		log.Fatalf("Failed to create directory: %v", err)
	}

	catalogs := map[string][]sampleProduct{
		"products.csv.gz": {
			{"4006381333931", "Whole Milk 1L", "1.19", 0, 40},
			{"4006381333948", "Sourdough Bread", "3.49", 0, 12},
			{"4006381333955", "Free Range Eggs (10)", "3.99", 0, 25},
			{"4006381333962", "Cheddar 200g", "2.79", 10, 18},
			{"4006381333979", "Bananas 1kg", "1.49", 0, 60},
			{"4006381333986", "Ground Coffee 500g", "10.00", 40, 4},
			{"4006381333993", "Olive Oil 750ml", "7.95", 0, 2},
			{"4006381334006", "Basmati Rice 1kg", "2.25", 0, 0},
		},
		"offers.csv.gz": {
			{"4006381333948", "Sourdough Bread", "3.49", 20, 15},
			{"4006381333993", "Olive Oil 750ml", "7.95", 15, 10},
		},
	}

	for filename, products := range catalogs {
		filePath := filepath.Join(dataDir, filename)

		if err := createCatalogFile(filePath, products); err != nil {
			log.Fatalf("Failed to create %s: %v", filename, err)
		}

		fmt.Printf("Created %s with %d products\n", filePath, len(products))
	}

	fmt.Println("\nSample catalog files created successfully!")
	fmt.Println("Seed with SEED_ENABLED=true SEED_FILES=data/catalog/products.csv.gz,data/catalog/offers.csv.gz")
}

func createCatalogFile(filePath string, products []sampleProduct) error {
	file, err := os.Create(filePath)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	gzipWriter := gzip.NewWriter(file)
	defer gzipWriter.Close()

	w := csv.NewWriter(gzipWriter)
	if err := w.Write([]string{"barcode", "name", "price", "discount_percent", "quantity"}); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for _, p := range products {
		record := []string{p.barcode, p.name, p.price, strconv.Itoa(p.discount), strconv.Itoa(p.quantity)}
		if err := w.Write(record); err != nil {
			return fmt.Errorf("failed to write product %s: %w", p.barcode, err)
		}
	}
	w.Flush()

	return w.Error()
}
