package catalogseed

import (
	"context"
	"fmt"
	"sync"

	"rosemary-store/internal/model"

	"github.com/rs/zerolog"
)

// Seeder loads catalog files and writes them to the catalog store.
type Seeder struct {
	loader Loader
	writer CatalogWriter
	logger zerolog.Logger
}

// NewSeeder creates a new seeder.
func NewSeeder(loader Loader, writer CatalogWriter, logger zerolog.Logger) *Seeder {
	return &Seeder{
		loader: loader,
		writer: writer,
		logger: logger.With().Str("component", "catalog-seeder").Logger(),
	}
}

// Seed loads every file and upserts the merged catalog in one transaction.
// Returns the number of products written.
func (s *Seeder) Seed(ctx context.Context, paths []string) (int, error) {
	entries, err := s.LoadAll(ctx, paths)
	if err != nil {
		return 0, err
	}

	written, err := s.writer.UpsertCatalog(ctx, entries)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to write catalog")
		return 0, fmt.Errorf("failed to write catalog: %w", err)
	}

	s.logger.Info().
		Int("files", len(paths)).
		Int("products", written).
		Msg("catalog seeded")

	return written, nil
}

// LoadAll reads all files concurrently and merges them by barcode. When a
// barcode appears in several files the entry from the later path wins.
func (s *Seeder) LoadAll(ctx context.Context, paths []string) ([]model.CatalogEntry, error) {
	type loadResult struct {
		index   int
		entries []model.CatalogEntry
		err     error
	}

	resultChan := make(chan loadResult, len(paths))
	var wg sync.WaitGroup

	for i, path := range paths {
		wg.Add(1)
		go func(index int, path string) {
			defer wg.Done()

			entries, err := s.loader.Load(ctx, path)
			resultChan <- loadResult{index: index, entries: entries, err: err}
		}(i, path)
	}

	wg.Wait()
	close(resultChan)

	results := make([]loadResult, len(paths))
	for result := range resultChan {
		results[result.index] = result
	}

	for i, result := range results {
		if result.err != nil {
			s.logger.Error().Err(result.err).Str("file", paths[i]).Msg("failed to load catalog file")
			return nil, fmt.Errorf("failed to load catalog file %s: %w", paths[i], result.err)
		}
	}

	lists := make([][]model.CatalogEntry, len(results))
	for i, result := range results {
		lists[i] = result.entries
	}
	return merge(lists), nil
}

// merge keeps the first position of each barcode and the last value seen.
func merge(lists [][]model.CatalogEntry) []model.CatalogEntry {
	index := make(map[string]int)
	merged := []model.CatalogEntry{}
	for _, entries := range lists {
		for _, e := range entries {
			if i, ok := index[e.Barcode]; ok {
				merged[i] = e
				continue
			}
			index[e.Barcode] = len(merged)
			merged = append(merged, e)
		}
	}
	return merged
}
