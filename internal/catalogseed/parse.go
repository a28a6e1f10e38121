package catalogseed

import (
	"compress/gzip"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"rosemary-store/internal/model"

	"github.com/shopspring/decimal"
)

const columnCount = 5

// checkEvery is how many rows are read between context checks.
const checkEvery = 10_000

// parseGzipCSV decompresses r and parses its catalog rows.
func parseGzipCSV(ctx context.Context, r io.Reader, source string) ([]model.CatalogEntry, error) {
	gzipReader, err := gzip.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to create gzip reader for %s: %w", source, err)
	}
	defer gzipReader.Close()

	return parseCSV(ctx, gzipReader, source)
}

// parseCSV parses uncompressed catalog rows. Blank lines are skipped.
func parseCSV(ctx context.Context, r io.Reader, source string) ([]model.CatalogEntry, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = columnCount
	reader.TrimLeadingSpace = true

	var entries []model.CatalogEntry
	row := 0
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		row++
		if err != nil {
			return nil, fmt.Errorf("%s: %w", source, err)
		}

		if row%checkEvery == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		if row == 1 && isHeader(record) {
			continue
		}

		entry, err := parseRecord(record)
		if err != nil {
			return nil, fmt.Errorf("%s row %d: %w", source, row, err)
		}
		entries = append(entries, entry)
	}

	return entries, nil
}

func isHeader(record []string) bool {
	return strings.EqualFold(strings.TrimSpace(record[0]), "barcode")
}

func parseRecord(record []string) (model.CatalogEntry, error) {
	for i := range record {
		record[i] = strings.TrimSpace(record[i])
	}

	barcode, name := record[0], record[1]
	if barcode == "" {
		return model.CatalogEntry{}, errors.New("barcode is required")
	}
	if name == "" {
		return model.CatalogEntry{}, errors.New("name is required")
	}

	price, err := decimal.NewFromString(record[2])
	if err != nil {
		return model.CatalogEntry{}, fmt.Errorf("invalid price %q: %w", record[2], err)
	}
	if price.IsNegative() {
		return model.CatalogEntry{}, fmt.Errorf("price must not be negative: %s", record[2])
	}

	discount := 0
	if record[3] != "" {
		discount, err = strconv.Atoi(record[3])
		if err != nil || discount < 0 || discount > 100 {
			return model.CatalogEntry{}, fmt.Errorf("discount percent must be an integer in 0..100: %q", record[3])
		}
	}

	quantity, err := strconv.Atoi(record[4])
	if err != nil || quantity < 0 {
		return model.CatalogEntry{}, fmt.Errorf("quantity must be a non-negative integer: %q", record[4])
	}

	return model.CatalogEntry{
		Barcode:         barcode,
		Name:            name,
		Price:           price.Round(2).InexactFloat64(),
		DiscountPercent: discount,
		Quantity:        quantity,
	}, nil
}
