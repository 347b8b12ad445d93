package api

import (
	"time"

	"exifatlas/internal/catalog"
)

// FromPhotoRecord converts a catalog record to its API representation.
func FromPhotoRecord(rec *catalog.PhotoRecord) Photo {
	if rec == nil {
		return Photo{}
	}
	dto := Photo{
		ID:            rec.ID,
		Path:          rec.Path,
		Filename:      rec.Filename,
		CaptureSource: string(rec.CaptureSource),
		CameraModel:   rec.CameraModel,
		LensModel:     rec.LensModel,
		ISO:           rec.ISO,
		Orientation:   rec.Orientation,
		Aperture:      rec.Aperture,
		FocalLength:   rec.FocalLength,
		ExposureTime:  rec.ExposureTime,
		Latitude:      rec.GPSLat,
		Longitude:     rec.GPSLon,
		Location:      rec.Location,
		Status:        string(rec.Status),
		FileSize:      rec.FileSize,
		ErrorKind:     rec.ErrorKind,
		ErrorMessage:  rec.ErrorMessage,
	}
	if rec.CaptureTime != nil {
		dto.CaptureTime = rec.CaptureTime.Format(catalog.CaptureTimeLayout)
	}
	dto.ProcessedAt = formatTimestamp(rec.ProcessedAt)
	return dto
}

// FromPhotoRecords converts a slice of records. The result is never nil so
// it encodes as an empty JSON array.
func FromPhotoRecords(recs []*catalog.PhotoRecord) []Photo {
	out := make([]Photo, 0, len(recs))
	for _, rec := range recs {
		out = append(out, FromPhotoRecord(rec))
	}
	return out
}

// FromDayLocations converts timeline groups.
func FromDayLocations(groups []catalog.DayLocation) []TimelineEntry {
	out := make([]TimelineEntry, 0, len(groups))
	for _, g := range groups {
		out = append(out, TimelineEntry{
			Day:          g.Day,
			Location:     g.Location,
			Latitude:     g.Lat,
			Longitude:    g.Lon,
			PhotoCount:   g.PhotoCount,
			FirstCapture: g.FirstCapture,
		})
	}
	return out
}

// FromHealth converts the catalog summary. Every status appears in Counts,
// zero or not.
func FromHealth(h catalog.HealthSummary) Stats {
	return Stats{
		Counts: MergeStatusCounts(map[catalog.Status]int{
			catalog.StatusPending:   h.Pending,
			catalog.StatusProcessed: h.Processed,
			catalog.StatusFailed:    h.Failed,
		}),
		Total:   h.Total,
		WithGPS: h.WithGPS,
		Located: h.Located,
		Places:  h.Places,
	}
}

// MergeStatusCounts keys counts by status string and fills absent statuses
// with zero.
func MergeStatusCounts(stats map[catalog.Status]int) map[string]int {
	out := make(map[string]int, len(stats))
	for _, status := range catalog.AllStatuses() {
		out[string(status)] = 0
	}
	for status, count := range stats {
		out[string(status)] = count
	}
	return out
}

// FromRun converts an ingest run row.
func FromRun(run catalog.Run) Run {
	dto := Run{
		ID:           run.ID,
		Root:         run.Root,
		Seen:         run.Seen,
		Skipped:      run.Skipped,
		Processed:    run.Processed,
		Updated:      run.Updated,
		Failed:       run.Failed,
		Located:      run.Located,
		BytesHashed:  run.BytesHashed,
		Interrupted:  run.Interrupted,
		ErrorMessage: run.ErrorMessage,
	}
	if !run.StartedAt.IsZero() {
		dto.StartedAt = run.StartedAt.UTC().Format(dateTimeFormat)
	}
	dto.FinishedAt = formatTimestamp(run.FinishedAt)
	return dto
}

// FromRuns converts run rows, preserving order.
func FromRuns(runs []catalog.Run) []Run {
	out := make([]Run, 0, len(runs))
	for _, run := range runs {
		out = append(out, FromRun(run))
	}
	return out
}

func formatTimestamp(t *time.Time) string {
	if t == nil || t.IsZero() {
		return ""
	}
	return t.UTC().Format(dateTimeFormat)
}
