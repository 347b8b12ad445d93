package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// filenameSeparator joins grouped filenames in SQL; callers re-join for display.
const filenameSeparator = "\x1f"

const dayExpr = "SUBSTR(capture_time, 1, 10)"

// DayLocations groups processed photos with GPS and a resolved location by
// capture day and place, ordered by each group's first capture. Capture
// years in excludeYears are left out.
func (s *Store) DayLocations(ctx context.Context, excludeYears []int) ([]DayLocation, error) {
	query := `SELECT ` + dayExpr + ` AS day, resolved_location, AVG(gps_lat), AVG(gps_lon), COUNT(1), MIN(capture_time)
FROM photos
WHERE capture_time IS NOT NULL
  AND resolved_location IS NOT NULL
  AND gps_lat IS NOT NULL
  AND gps_lon IS NOT NULL
  AND status = 'processed'`
	args := make([]any, 0, len(excludeYears))
	if len(excludeYears) > 0 {
		query += " AND CAST(SUBSTR(capture_time, 1, 4) AS INTEGER) NOT IN (" + makePlaceholders(len(excludeYears)) + ")"
		for _, year := range excludeYears {
			args = append(args, year)
		}
	}
	query += " GROUP BY day, resolved_location ORDER BY MIN(capture_time) ASC, resolved_location ASC"

	rows, err := s.db.QueryContext(ensureContext(ctx), query, args...)
	if err != nil {
		return nil, fmt.Errorf("query day locations: %w", err)
	}
	defer rows.Close()

	var out []DayLocation
	for rows.Next() {
		var dl DayLocation
		if err := rows.Scan(&dl.Day, &dl.Location, &dl.Lat, &dl.Lon, &dl.PhotoCount, &dl.FirstCapture); err != nil {
			return nil, fmt.Errorf("scan day location: %w", err)
		}
		out = append(out, dl)
	}
	return out, rows.Err()
}

// PhotosForDayLocation lists processed photos captured on day (YYYY-MM-DD)
// at location, in capture order.
func (s *Store) PhotosForDayLocation(ctx context.Context, day, location string) ([]*PhotoRecord, error) {
	rows, err := s.db.QueryContext(ensureContext(ctx),
		"SELECT "+photoColumns+" FROM photos WHERE "+dayExpr+" = ? AND resolved_location = ? AND status = 'processed' ORDER BY capture_time ASC, path ASC",
		strings.TrimSpace(day), location)
	if err != nil {
		return nil, fmt.Errorf("query photos for %s/%s: %w", day, location, err)
	}
	defer rows.Close()

	var out []*PhotoRecord
	for rows.Next() {
		rec, err := scanPhoto(rows)
		if err != nil {
			return nil, fmt.Errorf("scan photo: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// ExportAll streams every record, newest capture first, to fn.
func (s *Store) ExportAll(ctx context.Context, fn func(*PhotoRecord) error) error {
	rows, err := s.db.QueryContext(ensureContext(ctx),
		"SELECT "+photoColumns+" FROM photos ORDER BY capture_time DESC, path ASC")
	if err != nil {
		return fmt.Errorf("query export: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		rec, err := scanPhoto(rows)
		if err != nil {
			return fmt.Errorf("scan photo: %w", err)
		}
		if err := fn(rec); err != nil {
			return err
		}
	}
	return rows.Err()
}

// GroupByDay counts photos per capture day, newest day first.
func (s *Store) GroupByDay(ctx context.Context) ([]DayGroup, error) {
	rows, err := s.db.QueryContext(ensureContext(ctx), `SELECT `+dayExpr+` AS day, COUNT(1),
    GROUP_CONCAT(filename, char(31) ORDER BY capture_time, filename)
FROM photos
WHERE capture_time IS NOT NULL
GROUP BY day
ORDER BY day DESC`)
	if err != nil {
		return nil, fmt.Errorf("group by day: %w", err)
	}
	defer rows.Close()

	var out []DayGroup
	for rows.Next() {
		var (
			g     DayGroup
			names sql.NullString
		)
		if err := rows.Scan(&g.Day, &g.PhotoCount, &names); err != nil {
			return nil, fmt.Errorf("scan day group: %w", err)
		}
		g.Filenames = splitFilenames(names)
		out = append(out, g)
	}
	return out, rows.Err()
}

// GroupByLocation counts photos per resolved location, largest first.
func (s *Store) GroupByLocation(ctx context.Context) ([]LocationGroup, error) {
	rows, err := s.db.QueryContext(ensureContext(ctx), `SELECT resolved_location, COUNT(1) AS photo_count,
    GROUP_CONCAT(filename, char(31) ORDER BY capture_time, filename)
FROM photos
WHERE resolved_location IS NOT NULL
GROUP BY resolved_location
ORDER BY photo_count DESC, resolved_location ASC`)
	if err != nil {
		return nil, fmt.Errorf("group by location: %w", err)
	}
	defer rows.Close()

	var out []LocationGroup
	for rows.Next() {
		var (
			g     LocationGroup
			names sql.NullString
		)
		if err := rows.Scan(&g.Location, &g.PhotoCount, &names); err != nil {
			return nil, fmt.Errorf("scan location group: %w", err)
		}
		g.Filenames = splitFilenames(names)
		out = append(out, g)
	}
	return out, rows.Err()
}

// GroupByDayLocation counts photos per capture day and location. Photos
// without a location form their own group with an empty Location.
func (s *Store) GroupByDayLocation(ctx context.Context) ([]DayLocationGroup, error) {
	rows, err := s.db.QueryContext(ensureContext(ctx), `SELECT `+dayExpr+` AS day, resolved_location, COUNT(1),
    GROUP_CONCAT(filename, char(31) ORDER BY capture_time, filename)
FROM photos
WHERE capture_time IS NOT NULL
GROUP BY day, resolved_location
ORDER BY day DESC, resolved_location ASC`)
	if err != nil {
		return nil, fmt.Errorf("group by day and location: %w", err)
	}
	defer rows.Close()

	var out []DayLocationGroup
	for rows.Next() {
		var (
			g        DayLocationGroup
			location sql.NullString
			names    sql.NullString
		)
		if err := rows.Scan(&g.Day, &location, &g.PhotoCount, &names); err != nil {
			return nil, fmt.Errorf("scan day/location group: %w", err)
		}
		g.Location = location.String
		g.Filenames = splitFilenames(names)
		out = append(out, g)
	}
	return out, rows.Err()
}
