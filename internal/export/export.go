package export

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"exifatlas/internal/catalog"
	"exifatlas/internal/fileutil"
	"exifatlas/internal/services"
)

// Mode selects the CSV projection.
type Mode string

const (
	ModeAll           Mode = "all"
	ModeByDay         Mode = "by_day"
	ModeByLocation    Mode = "by_location"
	ModeByDayLocation Mode = "by_day_location"
)

// FilenameSeparator joins grouped filenames within one CSV cell.
const FilenameSeparator = "; "

// Source is the subset of the catalog the exporter reads.
type Source interface {
	ExportAll(ctx context.Context, fn func(*catalog.PhotoRecord) error) error
	GroupByDay(ctx context.Context) ([]catalog.DayGroup, error)
	GroupByLocation(ctx context.Context) ([]catalog.LocationGroup, error)
	GroupByDayLocation(ctx context.Context) ([]catalog.DayLocationGroup, error)
}

// ModeFor maps the CLI grouping flags to a mode.
func ModeFor(byDay, byLocation bool) Mode {
	switch {
	case byDay && byLocation:
		return ModeByDayLocation
	case byDay:
		return ModeByDay
	case byLocation:
		return ModeByLocation
	default:
		return ModeAll
	}
}

// Header returns the column names written for m.
func (m Mode) Header() []string {
	switch m {
	case ModeByDay:
		return []string{"Day", "Photo Count", "Filenames"}
	case ModeByLocation:
		return []string{"Location", "Photo Count", "Filenames"}
	case ModeByDayLocation:
		return []string{"Day", "Location", "Photo Count", "Filenames"}
	default:
		return []string{
			"ID", "Filename", "Filepath", "DateTime", "Camera Model", "Lens Model",
			"ISO", "F-Number", "Exposure Time", "Focal Length", "Orientation",
			"GPS Latitude", "GPS Longitude", "Location", "Status", "Processed At", "Error Message",
		}
	}
}

// FileName is the auto-generated export name for m at now.
func (m Mode) FileName(now time.Time) string {
	stamp := now.Format("20060102_150405")
	if m == ModeAll || m == "" {
		return "photo_export_" + stamp + ".csv"
	}
	return "photo_export_" + string(m) + "_" + stamp + ".csv"
}

// Write streams the projection for mode to w and returns the number of data
// rows written.
func Write(ctx context.Context, src Source, mode Mode, w io.Writer) (int, error) {
	cw := csv.NewWriter(w)
	if err := cw.Write(mode.Header()); err != nil {
		return 0, err
	}

	rows := 0
	emit := func(record []string) error {
		rows++
		return cw.Write(record)
	}

	var err error
	switch mode {
	case ModeByDay:
		var groups []catalog.DayGroup
		if groups, err = src.GroupByDay(ctx); err == nil {
			for _, g := range groups {
				if err = emit([]string{g.Day, strconv.Itoa(g.PhotoCount), joinNames(g.Filenames)}); err != nil {
					break
				}
			}
		}
	case ModeByLocation:
		var groups []catalog.LocationGroup
		if groups, err = src.GroupByLocation(ctx); err == nil {
			for _, g := range groups {
				if err = emit([]string{g.Location, strconv.Itoa(g.PhotoCount), joinNames(g.Filenames)}); err != nil {
					break
				}
			}
		}
	case ModeByDayLocation:
		var groups []catalog.DayLocationGroup
		if groups, err = src.GroupByDayLocation(ctx); err == nil {
			for _, g := range groups {
				if err = emit([]string{g.Day, g.Location, strconv.Itoa(g.PhotoCount), joinNames(g.Filenames)}); err != nil {
					break
				}
			}
		}
	case ModeAll, "":
		err = src.ExportAll(ctx, func(rec *catalog.PhotoRecord) error {
			return emit(recordRow(rec))
		})
	default:
		return 0, services.Wrap(services.ErrValidation, "export", "mode", fmt.Sprintf("unknown mode %q", mode), nil)
	}
	if err != nil {
		return rows, fmt.Errorf("export %s: %w", mode, err)
	}
	cw.Flush()
	return rows, cw.Error()
}

// Result describes a finished file export.
type Result struct {
	Path string
	Mode Mode
	Rows int
}

// ToFile writes the projection atomically to path. An empty path generates a
// name in dir.
func ToFile(ctx context.Context, src Source, mode Mode, path, dir string, now time.Time) (Result, error) {
	if strings.TrimSpace(path) == "" {
		path = filepath.Join(dir, mode.FileName(now))
	}
	result := Result{Path: path, Mode: mode}
	err := fileutil.WriteFileAtomic(path, 0o644, func(w io.Writer) error {
		n, err := Write(ctx, src, mode, w)
		result.Rows = n
		return err
	})
	if err != nil {
		return Result{}, err
	}
	return result, nil
}

func joinNames(names []string) string {
	return strings.Join(names, FilenameSeparator)
}

func recordRow(rec *catalog.PhotoRecord) []string {
	return []string{
		strconv.FormatInt(rec.ID, 10),
		rec.Filename,
		rec.Path,
		formatCapture(rec.CaptureTime),
		rec.CameraModel,
		rec.LensModel,
		formatInt(rec.ISO),
		formatFloat(rec.Aperture),
		rec.ExposureTime,
		formatFloat(rec.FocalLength),
		formatInt(rec.Orientation),
		formatFloat(rec.GPSLat),
		formatFloat(rec.GPSLon),
		rec.Location,
		string(rec.Status),
		formatTimestamp(rec.ProcessedAt),
		rec.ErrorMessage,
	}
}

func formatCapture(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(catalog.CaptureTimeLayout)
}

func formatTimestamp(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

func formatInt(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}

func formatFloat(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}
