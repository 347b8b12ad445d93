package gazetteer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"exifatlas/internal/catalog"
	"exifatlas/internal/logging"
	"exifatlas/internal/services"
)

// ImportOptions tunes Import.
type ImportOptions struct {
	// Force re-imports even when a completion marker exists.
	Force  bool
	Logger *slog.Logger
}

// ImportResult summarizes an import.
type ImportResult struct {
	Source          string
	Rows            int
	Skipped         int
	AlreadyImported bool
	Duration        time.Duration
}

// Import loads the GeoNames file at path into the catalog's places table.
// A completed prior import is left alone unless opts.Force is set.
func Import(ctx context.Context, store *catalog.Store, path string, opts ImportOptions) (ImportResult, error) {
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	result := ImportResult{Source: filepath.Base(path)}

	if !opts.Force {
		marker, err := store.ImportMarker(ctx)
		if err != nil {
			return result, err
		}
		if marker != nil {
			result.AlreadyImported = true
			result.Source = marker.Source
			result.Rows = marker.Rows
			result.Skipped = marker.Skipped
			logger.Debug("gazetteer already imported",
				logging.String("source", marker.Source),
				logging.Int("rows", marker.Rows),
			)
			return result, nil
		}
	}

	file, err := os.Open(path)
	if err != nil {
		return result, services.Wrap(services.ErrGeocodeUnavailable, "gazetteer", "open", path, err)
	}
	defer file.Close()
	if info, err := file.Stat(); err != nil {
		return result, services.Wrap(services.ErrGeocodeUnavailable, "gazetteer", "stat", path, err)
	} else if !info.Mode().IsRegular() {
		return result, services.Wrap(services.ErrGeocodeUnavailable, "gazetteer", "open", path+" is not a regular file", nil)
	}

	start := time.Now()
	logger.Info("importing gazetteer", logging.String("source", path))

	var stats ReadStats
	rows, err := store.ReplacePlaces(ctx, Read(file, &stats))
	switch {
	case err == nil:
	case errors.Is(err, services.ErrStore), errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return result, fmt.Errorf("import %s: %w", path, err)
	default:
		// The source could not be read to the end.
		return result, services.Wrap(services.ErrGeocodeUnavailable, "gazetteer", "read", path, err)
	}
	if err := store.RecordImport(ctx, catalog.ImportMarker{
		Source:  result.Source,
		Rows:    rows,
		Skipped: stats.Skipped,
	}); err != nil {
		return result, err
	}

	result.Rows = rows
	result.Skipped = stats.Skipped
	result.Duration = time.Since(start)
	logger.Info("gazetteer imported",
		logging.String("source", path),
		logging.Int("rows", rows),
		logging.Int("skipped_rows", stats.Skipped),
		logging.Duration("duration", result.Duration),
	)
	return result, nil
}
