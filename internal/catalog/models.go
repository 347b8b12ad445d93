package catalog

import (
	"fmt"
	"strings"
	"time"
)

// Status represents the processing lifecycle of a photo record.
type Status string

const (
	StatusPending   Status = "pending"
	StatusProcessed Status = "processed"
	StatusFailed    Status = "failed"
)

var allStatuses = []Status{StatusPending, StatusProcessed, StatusFailed}

// AllStatuses returns every status in display order.
func AllStatuses() []Status {
	out := make([]Status, len(allStatuses))
	copy(out, allStatuses)
	return out
}

// ParseStatus normalizes a status string.
func ParseStatus(value string) (Status, error) {
	normalized := Status(strings.ToLower(strings.TrimSpace(value)))
	for _, status := range allStatuses {
		if status == normalized {
			return status, nil
		}
	}
	return "", fmt.Errorf("unknown status %q", value)
}

// CaptureSource records which source supplied capture_time.
type CaptureSource string

const (
	CaptureNone         CaptureSource = ""
	CaptureEXIFOriginal CaptureSource = "exif_original"
	CaptureEXIFDateTime CaptureSource = "exif_datetime"
	CaptureFileMtime    CaptureSource = "file_mtime"
)

// CaptureTimeLayout is the persisted naive wall-clock format.
const CaptureTimeLayout = "2006-01-02T15:04:05"

// PhotoRecord is one row of the photos table. Empty strings and nil pointers
// are stored as NULL.
type PhotoRecord struct {
	ID       int64
	Path     string
	Filename string

	// CaptureTime is a naive wall clock; its Location is meaningless.
	CaptureTime   *time.Time
	CaptureSource CaptureSource

	CameraModel  string
	LensModel    string
	ISO          *int
	Orientation  *int
	Aperture     *float64
	FocalLength  *float64
	ExposureTime string

	GPSLat   *float64
	GPSLon   *float64
	Location string

	Status       Status
	Fingerprint  string
	FileMtime    time.Time
	FileSize     int64
	ProcessedAt  *time.Time
	ErrorKind    string
	ErrorMessage string
}

// HasGPS reports whether both coordinates are present.
func (r *PhotoRecord) HasGPS() bool {
	return r != nil && r.GPSLat != nil && r.GPSLon != nil
}

// Snapshot is the subset of a record the change detector needs.
type Snapshot struct {
	Status      Status
	Fingerprint string
	FileMtime   time.Time
}

// Place is one gazetteer reference point.
type Place struct {
	ID          int64
	Name        string
	AdminCode   string
	CountryCode string
	Lat         float64
	Lon         float64
	Population  int64
}

// ImportMarker records a completed gazetteer import.
type ImportMarker struct {
	Source      string
	Rows        int
	Skipped     int
	CompletedAt time.Time
}

// Run is one ingest_runs row.
type Run struct {
	ID           string
	Root         string
	StartedAt    time.Time
	FinishedAt   *time.Time
	Seen         int
	Skipped      int
	Processed    int
	Updated      int
	Failed       int
	Located      int
	BytesHashed  int64
	Interrupted  bool
	ErrorMessage string
}

// DayLocation groups processed, geolocated photos by capture day and place.
type DayLocation struct {
	Day          string
	Location     string
	Lat          float64
	Lon          float64
	PhotoCount   int
	FirstCapture string
}

// DayGroup is a per-day export row.
type DayGroup struct {
	Day        string
	PhotoCount int
	Filenames  []string
}

// LocationGroup is a per-location export row.
type LocationGroup struct {
	Location   string
	PhotoCount int
	Filenames  []string
}

// DayLocationGroup is a per-day-and-location export row.
type DayLocationGroup struct {
	Day        string
	Location   string
	PhotoCount int
	Filenames  []string
}

// HealthSummary aggregates photo counts by status.
type HealthSummary struct {
	Total     int
	Pending   int
	Processed int
	Failed    int
	WithGPS   int
	Located   int
	Places    int
}

// DatabaseHealth describes catalog diagnostics.
type DatabaseHealth struct {
	DBPath           string
	DatabaseExists   bool
	DatabaseReadable bool
	SchemaVersion    string
	TableExists      bool
	ColumnsPresent   []string
	MissingColumns   []string
	IntegrityCheck   bool
	TotalPhotos      int
	Error            string
}
