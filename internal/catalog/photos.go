package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

const upsertPhotoSQL = `INSERT INTO photos (
    path, filename, capture_time, capture_source, camera_model, lens_model, iso, orientation,
    aperture, focal_length, exposure_time, gps_lat, gps_lon, resolved_location, status,
    content_fingerprint, file_mtime, file_size, processed_at, error_kind, error_message
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(path) DO UPDATE SET
    filename = excluded.filename,
    capture_time = excluded.capture_time,
    capture_source = excluded.capture_source,
    camera_model = excluded.camera_model,
    lens_model = excluded.lens_model,
    iso = excluded.iso,
    orientation = excluded.orientation,
    aperture = excluded.aperture,
    focal_length = excluded.focal_length,
    exposure_time = excluded.exposure_time,
    gps_lat = excluded.gps_lat,
    gps_lon = excluded.gps_lon,
    resolved_location = excluded.resolved_location,
    status = excluded.status,
    content_fingerprint = excluded.content_fingerprint,
    file_mtime = excluded.file_mtime,
    file_size = excluded.file_size,
    processed_at = excluded.processed_at,
    error_kind = excluded.error_kind,
    error_message = excluded.error_message`

// markPendingSQL keeps prior metadata so an interrupted reprocess still shows
// the last known values, but clears the fingerprint so the row reads as
// incomplete until a terminal write lands.
const markPendingSQL = `INSERT INTO photos (path, filename, status, file_mtime, file_size)
VALUES (?, ?, 'pending', ?, ?)
ON CONFLICT(path) DO UPDATE SET
    filename = excluded.filename,
    status = 'pending',
    content_fingerprint = NULL,
    file_mtime = excluded.file_mtime,
    file_size = excluded.file_size,
    error_kind = NULL,
    error_message = NULL`

func validateRecord(rec *PhotoRecord) error {
	if rec == nil {
		return errors.New("photo record is nil")
	}
	if strings.TrimSpace(rec.Path) == "" {
		return errors.New("photo record path is empty")
	}
	switch rec.Status {
	case StatusProcessed:
		if rec.Fingerprint == "" || rec.ProcessedAt == nil {
			return fmt.Errorf("processed record %s requires fingerprint and processed_at", rec.Path)
		}
	case StatusFailed:
		if rec.ErrorMessage == "" {
			return fmt.Errorf("failed record %s requires an error message", rec.Path)
		}
	case StatusPending:
	default:
		return fmt.Errorf("record %s has unknown status %q", rec.Path, rec.Status)
	}
	return nil
}

func upsertPhoto(ctx context.Context, ex execer, rec *PhotoRecord) error {
	if err := validateRecord(rec); err != nil {
		return err
	}
	filename := rec.Filename
	if filename == "" {
		filename = filepath.Base(rec.Path)
	}
	_, err := ex.ExecContext(ctx, upsertPhotoSQL,
		rec.Path,
		filename,
		nullableCaptureTime(rec.CaptureTime),
		nullableString(string(rec.CaptureSource)),
		nullableString(rec.CameraModel),
		nullableString(rec.LensModel),
		nullableInt(rec.ISO),
		nullableInt(rec.Orientation),
		nullableFloat(rec.Aperture),
		nullableFloat(rec.FocalLength),
		nullableString(rec.ExposureTime),
		nullableFloat(rec.GPSLat),
		nullableFloat(rec.GPSLon),
		nullableString(rec.Location),
		string(rec.Status),
		nullableString(rec.Fingerprint),
		rec.FileMtime.UnixNano(),
		rec.FileSize,
		nullableTime(rec.ProcessedAt),
		nullableString(rec.ErrorKind),
		nullableString(rec.ErrorMessage),
	)
	if err != nil {
		return fmt.Errorf("upsert photo %s: %w", rec.Path, err)
	}
	return nil
}

// Upsert writes a single record outside of a batch.
func (s *Store) Upsert(ctx context.Context, rec *PhotoRecord) error {
	ctx = ensureContext(ctx)
	return retryOnBusy(ctx, func() error {
		return upsertPhoto(ctx, s.db, rec)
	})
}

// GetByPath fetches a record by path. A missing record returns nil, nil.
func (s *Store) GetByPath(ctx context.Context, path string) (*PhotoRecord, error) {
	row := s.db.QueryRowContext(ensureContext(ctx), "SELECT "+photoColumns+" FROM photos WHERE path = ?", path)
	rec, err := scanPhoto(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get photo %s: %w", path, err)
	}
	return rec, nil
}

// GetByID fetches a record by row id. A missing record returns nil, nil.
func (s *Store) GetByID(ctx context.Context, id int64) (*PhotoRecord, error) {
	row := s.db.QueryRowContext(ensureContext(ctx), "SELECT "+photoColumns+" FROM photos WHERE id = ?", id)
	rec, err := scanPhoto(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get photo %d: %w", id, err)
	}
	return rec, nil
}

// Snapshots returns change-detection state for every record under root,
// keyed by path.
func (s *Store) Snapshots(ctx context.Context, root string) (map[string]Snapshot, error) {
	root = filepath.Clean(root)
	prefix := strings.TrimSuffix(root, string(filepath.Separator)) + string(filepath.Separator)
	// '0' sorts directly after '/', so the range covers every path with the prefix.
	upper := strings.TrimSuffix(prefix, string(filepath.Separator)) + string(rune(filepath.Separator+1))
	rows, err := s.db.QueryContext(ensureContext(ctx),
		`SELECT path, status, content_fingerprint, file_mtime FROM photos WHERE path = ? OR (path >= ? AND path < ?)`,
		root, prefix, upper)
	if err != nil {
		return nil, fmt.Errorf("load snapshots: %w", err)
	}
	defer rows.Close()

	out := make(map[string]Snapshot)
	for rows.Next() {
		var (
			path        string
			status      string
			fingerprint sql.NullString
			mtime       int64
		)
		if err := rows.Scan(&path, &status, &fingerprint, &mtime); err != nil {
			return nil, fmt.Errorf("scan snapshot: %w", err)
		}
		out[path] = Snapshot{Status: Status(status), Fingerprint: fingerprint.String, FileMtime: time.Unix(0, mtime)}
	}
	return out, rows.Err()
}

// List returns records filtered by status (all when empty), ordered by path.
// A non-positive limit returns every match.
func (s *Store) List(ctx context.Context, limit int, statuses ...Status) ([]*PhotoRecord, error) {
	query := "SELECT " + photoColumns + " FROM photos"
	args := make([]any, 0, len(statuses)+1)
	if len(statuses) > 0 {
		query += " WHERE status IN (" + makePlaceholders(len(statuses)) + ")"
		for _, status := range statuses {
			args = append(args, string(status))
		}
	}
	query += " ORDER BY path"
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ensureContext(ctx), query, args...)
	if err != nil {
		return nil, fmt.Errorf("list photos: %w", err)
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
