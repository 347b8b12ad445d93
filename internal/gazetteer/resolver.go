package gazetteer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"

	"exifatlas/internal/catalog"
	"exifatlas/internal/config"
	"exifatlas/internal/logging"
	"exifatlas/internal/services"
)

// Unknown is returned when no place lies within range.
const Unknown = "unknown"

// ResolverOptions configures a Resolver.
type ResolverOptions struct {
	GazetteerFile string
	MaxDistanceKm float64
	Backend       string
	CountryFormat string
}

// OptionsFromConfig maps the geocode section onto ResolverOptions.
func OptionsFromConfig(cfg *config.Config) ResolverOptions {
	return ResolverOptions{
		GazetteerFile: cfg.Paths.GazetteerFile,
		MaxDistanceKm: cfg.Geocode.MaxDistanceKm,
		Backend:       cfg.Geocode.Index,
		CountryFormat: cfg.Geocode.CountryFormat,
	}
}

// Resolver maps coordinates to place labels. The index is built by Prepare
// or on first use; when no places can be loaded every lookup returns Unknown.
// A failed build is retried on the next call.
type Resolver struct {
	store  *catalog.Store
	opts   ResolverOptions
	logger *slog.Logger

	mu       sync.Mutex
	ready    bool
	index    Index
	degraded bool
}

// NewResolver constructs a Resolver backed by store.
func NewResolver(store *catalog.Store, opts ResolverOptions, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = logging.NewNop()
	}
	if opts.MaxDistanceKm <= 0 {
		opts.MaxDistanceKm = 50
	}
	if opts.Backend == "" {
		opts.Backend = BackendMemory
	}
	if opts.CountryFormat == "" {
		opts.CountryFormat = CountryAlpha3
	}
	return &Resolver{store: store, opts: opts, logger: logger}
}

// Prepare imports the gazetteer if needed and builds the index. The import
// writes to the catalog, so callers holding a write transaction must call
// Prepare before opening it.
func (r *Resolver) Prepare(ctx context.Context) error {
	return r.ensure(ctx)
}

// Degraded reports whether the resolver has no places to search. It forces
// the lazy build.
func (r *Resolver) Degraded(ctx context.Context) bool {
	if err := r.ensure(ctx); err != nil {
		return false
	}
	return r.degraded
}

// Resolve returns the label of the nearest place, or Unknown.
func (r *Resolver) Resolve(ctx context.Context, lat, lon float64) (string, error) {
	match, ok, err := r.Lookup(ctx, lat, lon)
	if err != nil {
		return "", err
	}
	if !ok {
		return Unknown, nil
	}
	return r.Label(match.Place), nil
}

// Lookup returns the nearest match within the configured radius.
func (r *Resolver) Lookup(ctx context.Context, lat, lon float64) (Match, bool, error) {
	if err := r.ensure(ctx); err != nil {
		return Match{}, false, err
	}
	if r.degraded {
		return Match{}, false, nil
	}
	match, ok, err := Nearest(ctx, r.index, lat, lon, r.opts.MaxDistanceKm)
	if err != nil {
		return Match{}, false, services.Wrap(services.ErrGeocodeUnavailable, "gazetteer", "lookup", fmt.Sprintf("%.5f,%.5f", lat, lon), err)
	}
	return match, ok, nil
}

// Label formats p with the configured country format.
func (r *Resolver) Label(p catalog.Place) string {
	return Label(p.Name, p.AdminCode, p.CountryCode, r.opts.CountryFormat)
}

func (r *Resolver) ensure(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.ready {
		return nil
	}
	if err := r.build(ctx); err != nil {
		return err
	}
	r.ready = true
	return nil
}

func (r *Resolver) build(ctx context.Context) error {
	count, err := r.store.PlaceCount(ctx)
	if err != nil {
		return services.Wrap(services.ErrGeocodeUnavailable, "gazetteer", "count places", "", err)
	}
	marker, err := r.store.ImportMarker(ctx)
	if err != nil {
		return services.Wrap(services.ErrGeocodeUnavailable, "gazetteer", "read import marker", "", err)
	}

	if marker == nil && strings.TrimSpace(r.opts.GazetteerFile) != "" {
		result, importErr := Import(ctx, r.store, r.opts.GazetteerFile, ImportOptions{Logger: r.logger})
		switch {
		case importErr == nil:
			count = result.Rows
		case errors.Is(importErr, services.ErrGeocodeUnavailable) && errors.Is(importErr, os.ErrNotExist):
			// No source file; use whatever an earlier import left behind.
			r.logger.Debug("gazetteer source missing", logging.Error(importErr))
			if count, err = r.store.PlaceCount(ctx); err != nil {
				return services.Wrap(services.ErrGeocodeUnavailable, "gazetteer", "count places", "", err)
			}
		case errors.Is(importErr, services.ErrGeocodeUnavailable):
			// Unreadable or truncated source; partial rows are not trusted.
			r.logger.Debug("gazetteer source unreadable", logging.Error(importErr))
			count = 0
		default:
			return importErr
		}
	}

	if count == 0 {
		r.degraded = true
		logging.WarnWithContext(r.logger, "gazetteer has no places; locations will be unknown", "gazetteer_degraded",
			logging.String("gazetteer_file", r.opts.GazetteerFile),
			logging.String(logging.FieldErrorHint, "download cities500.txt from GeoNames and run `exifatlas places import`"),
			logging.String(logging.FieldImpact, "photos are stored without a resolved location"),
		)
		return nil
	}

	switch r.opts.Backend {
	case BackendSQLite:
		r.index = NewSQLiteIndex(r.store, count)
	default:
		places, err := r.store.AllPlaces(ctx)
		if err != nil {
			return services.Wrap(services.ErrGeocodeUnavailable, "gazetteer", "load places", "", err)
		}
		r.index = NewMemoryIndex(places)
	}
	r.logger.Info("gazetteer index ready",
		logging.String("backend", r.opts.Backend),
		logging.Int("places", r.index.Len()),
	)
	return nil
}
