package catalogseed

import (
	"context"
	"fmt"
	"os"

	"rosemary-store/internal/model"

	"github.com/rs/zerolog"
)

// fileLoader implements Loader for gzipped catalog files on local disk.
type fileLoader struct {
	logger zerolog.Logger
}

// NewFileLoader creates a new file-based catalog loader.
func NewFileLoader(logger zerolog.Logger) Loader {
	return &fileLoader{
		logger: logger.With().Str("component", "catalog-loader").Logger(),
	}
}

// Load reads a gzipped CSV catalog file.
func (l *fileLoader) Load(ctx context.Context, filePath string) ([]model.CatalogEntry, error) {
	l.logger.Info().Str("file", filePath).Msg("loading catalog file")

	file, err := os.Open(filePath)
	if err != nil {
		l.logger.Error().Err(err).Str("file", filePath).Msg("failed to open catalog file")
		return nil, fmt.Errorf("failed to open catalog file %s: %w", filePath, err)
	}
	defer file.Close()

	entries, err := parseGzipCSV(ctx, file, filePath)
	if err != nil {
		l.logger.Error().Err(err).Str("file", filePath).Msg("failed to read catalog file")
		return nil, err
	}

	l.logger.Info().
		Str("file", filePath).
		Int("entries", len(entries)).
		Msg("catalog file loaded")

	return entries, nil
}
