package catalog

import (
	"database/sql"
	"errors"
	"strings"
	"time"
)

const photoColumns = "id, path, filename, capture_time, capture_source, camera_model, lens_model, iso, orientation, aperture, focal_length, exposure_time, gps_lat, gps_lon, resolved_location, status, content_fingerprint, file_mtime, file_size, processed_at, error_kind, error_message"

func scanPhoto(scanner interface{ Scan(dest ...any) error }) (*PhotoRecord, error) {
	var (
		rec           PhotoRecord
		captureRaw    sql.NullString
		captureSource sql.NullString
		cameraModel   sql.NullString
		lensModel     sql.NullString
		iso           sql.NullInt64
		orientation   sql.NullInt64
		aperture      sql.NullFloat64
		focalLength   sql.NullFloat64
		exposure      sql.NullString
		gpsLat        sql.NullFloat64
		gpsLon        sql.NullFloat64
		location      sql.NullString
		status        string
		fingerprint   sql.NullString
		mtimeNanos    int64
		processedRaw  sql.NullString
		errorKind     sql.NullString
		errorMessage  sql.NullString
	)
	if err := scanner.Scan(
		&rec.ID,
		&rec.Path,
		&rec.Filename,
		&captureRaw,
		&captureSource,
		&cameraModel,
		&lensModel,
		&iso,
		&orientation,
		&aperture,
		&focalLength,
		&exposure,
		&gpsLat,
		&gpsLon,
		&location,
		&status,
		&fingerprint,
		&mtimeNanos,
		&rec.FileSize,
		&processedRaw,
		&errorKind,
		&errorMessage,
	); err != nil {
		return nil, err
	}

	if captureRaw.Valid {
		if ts, err := time.Parse(CaptureTimeLayout, captureRaw.String); err == nil {
			rec.CaptureTime = &ts
		}
	}
	rec.CaptureSource = CaptureSource(captureSource.String)
	rec.CameraModel = cameraModel.String
	rec.LensModel = lensModel.String
	rec.ISO = intPtr(iso)
	rec.Orientation = intPtr(orientation)
	rec.Aperture = floatPtr(aperture)
	rec.FocalLength = floatPtr(focalLength)
	rec.ExposureTime = exposure.String
	rec.GPSLat = floatPtr(gpsLat)
	rec.GPSLon = floatPtr(gpsLon)
	rec.Location = location.String
	rec.Status = Status(status)
	rec.Fingerprint = fingerprint.String
	rec.FileMtime = time.Unix(0, mtimeNanos)
	if processedRaw.Valid {
		if ts, err := parseTimeString(processedRaw.String); err == nil {
			rec.ProcessedAt = &ts
		}
	}
	rec.ErrorKind = errorKind.String
	rec.ErrorMessage = errorMessage.String
	return &rec, nil
}

func intPtr(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}
	out := int(v.Int64)
	return &out
}

func floatPtr(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	out := v.Float64
	return &out
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func nullableInt(value *int) any {
	if value == nil {
		return nil
	}
	return *value
}

func nullableFloat(value *float64) any {
	if value == nil {
		return nil
	}
	return *value
}

func nullableTime(value *time.Time) any {
	if value == nil {
		return nil
	}
	return formatTime(*value)
}

func nullableCaptureTime(value *time.Time) any {
	if value == nil {
		return nil
	}
	return value.Format(CaptureTimeLayout)
}

func formatTime(value time.Time) string {
	return value.UTC().Format(time.RFC3339Nano)
}

func boolToInt(value bool) int {
	if value {
		return 1
	}
	return 0
}

func parseTimeString(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, errors.New("empty")
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02 15:04:05", value)
}

func makePlaceholders(count int) string {
	if count <= 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("?,", count), ",")
}

func splitFilenames(joined sql.NullString) []string {
	if !joined.Valid || joined.String == "" {
		return nil
	}
	return strings.Split(joined.String, filenameSeparator)
}
