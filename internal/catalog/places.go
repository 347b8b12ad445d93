package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"iter"
	"time"

	"exifatlas/internal/services"
)

// placeChunkSize bounds each import transaction.
const placeChunkSize = 10000

const placeColumns = "id, name, admin_code, country_code, lat, lon, population"

func scanPlace(scanner interface{ Scan(dest ...any) error }) (Place, error) {
	var (
		p       Place
		admin   sql.NullString
		country sql.NullString
	)
	if err := scanner.Scan(&p.ID, &p.Name, &admin, &country, &p.Lat, &p.Lon, &p.Population); err != nil {
		return Place{}, err
	}
	p.AdminCode = admin.String
	p.CountryCode = country.String
	return p, nil
}

// PlaceCount returns the number of stored reference places.
func (s *Store) PlaceCount(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ensureContext(ctx), "SELECT COUNT(1) FROM places").Scan(&count); err != nil {
		return 0, fmt.Errorf("count places: %w", err)
	}
	return count, nil
}

// ImportMarker returns the completed-import marker, or nil when no import has
// finished.
func (s *Store) ImportMarker(ctx context.Context) (*ImportMarker, error) {
	row := s.db.QueryRowContext(ensureContext(ctx),
		"SELECT source, rows, skipped, completed_at FROM gazetteer_imports ORDER BY completed_at DESC LIMIT 1")
	var (
		marker    ImportMarker
		completed string
	)
	if err := row.Scan(&marker.Source, &marker.Rows, &marker.Skipped, &completed); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("read import marker: %w", err)
	}
	if ts, err := parseTimeString(completed); err == nil {
		marker.CompletedAt = ts
	}
	return &marker, nil
}

// ReplacePlaces discards any existing places and marker, then inserts every
// place yielded by places in chunked transactions. Callers write the marker
// with RecordImport once the source is exhausted; an import cut short leaves
// no marker and is redone from scratch next time.
func (s *Store) ReplacePlaces(ctx context.Context, places iter.Seq2[Place, error]) (int, error) {
	ctx = ensureContext(ctx)
	if err := retryOnBusy(ctx, func() error {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return err
		}
		defer func() { _ = tx.Rollback() }()
		if _, err := tx.ExecContext(ctx, "DELETE FROM gazetteer_imports"); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, "DELETE FROM places"); err != nil {
			return err
		}
		return tx.Commit()
	}); err != nil {
		return 0, services.Wrap(services.ErrStore, "catalog", "clear places", "", err)
	}

	inserted := 0
	chunk := make([]Place, 0, placeChunkSize)
	flush := func() error {
		if len(chunk) == 0 {
			return nil
		}
		if err := s.insertPlaces(ctx, chunk); err != nil {
			return err
		}
		inserted += len(chunk)
		chunk = chunk[:0]
		return nil
	}

	for place, err := range places {
		if err != nil {
			return inserted, err
		}
		if ctx.Err() != nil {
			return inserted, ctx.Err()
		}
		chunk = append(chunk, place)
		if len(chunk) >= placeChunkSize {
			if err := flush(); err != nil {
				return inserted, err
			}
		}
	}
	if err := flush(); err != nil {
		return inserted, err
	}
	return inserted, nil
}

// RecordImport writes the completed-import marker. A zero CompletedAt is
// stamped with the current time.
func (s *Store) RecordImport(ctx context.Context, marker ImportMarker) error {
	if marker.CompletedAt.IsZero() {
		marker.CompletedAt = time.Now()
	}
	if _, err := s.execWithRetry(ctx,
		"INSERT INTO gazetteer_imports (source, rows, skipped, completed_at) VALUES (?, ?, ?, ?)",
		marker.Source, marker.Rows, marker.Skipped, formatTime(marker.CompletedAt)); err != nil {
		return services.Wrap(services.ErrStore, "catalog", "write import marker", "", err)
	}
	return nil
}

func (s *Store) insertPlaces(ctx context.Context, places []Place) error {
	err := retryOnBusy(ctx, func() error {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return err
		}
		defer func() { _ = tx.Rollback() }()
		stmt, err := tx.PrepareContext(ctx,
			"INSERT INTO places (name, admin_code, country_code, lat, lon, population) VALUES (?, ?, ?, ?, ?, ?)")
		if err != nil {
			return err
		}
		defer stmt.Close()
		for _, p := range places {
			if _, err := stmt.ExecContext(ctx, p.Name, nullableString(p.AdminCode), nullableString(p.CountryCode), p.Lat, p.Lon, p.Population); err != nil {
				return err
			}
		}
		return tx.Commit()
	})
	if err != nil {
		return services.Wrap(services.ErrStore, "catalog", "insert places", fmt.Sprintf("%d rows", len(places)), err)
	}
	return nil
}

// PlacesInBox returns places inside the latitude/longitude box, bounds
// inclusive. It is served by idx_places_lat_lon.
func (s *Store) PlacesInBox(ctx context.Context, minLat, maxLat, minLon, maxLon float64) ([]Place, error) {
	rows, err := s.db.QueryContext(ensureContext(ctx),
		"SELECT "+placeColumns+" FROM places WHERE lat BETWEEN ? AND ? AND lon BETWEEN ? AND ?",
		minLat, maxLat, minLon, maxLon)
	if err != nil {
		return nil, fmt.Errorf("query places in box: %w", err)
	}
	defer rows.Close()
	return collectPlaces(rows)
}

// AllPlaces loads every reference place, for building an in-memory index.
func (s *Store) AllPlaces(ctx context.Context) ([]Place, error) {
	rows, err := s.db.QueryContext(ensureContext(ctx), "SELECT "+placeColumns+" FROM places")
	if err != nil {
		return nil, fmt.Errorf("query places: %w", err)
	}
	defer rows.Close()
	return collectPlaces(rows)
}

func collectPlaces(rows *sql.Rows) ([]Place, error) {
	var out []Place
	for rows.Next() {
		p, err := scanPlace(rows)
		if err != nil {
			return nil, fmt.Errorf("scan place: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
