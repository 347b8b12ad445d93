package exifmeta

import (
	"errors"
	"time"

	"exifatlas/internal/services"
)

// CaptureSource names the origin of a capture time. Values match the
// catalog's capture_source column.
type CaptureSource string

const (
	SourceNone         CaptureSource = ""
	SourceEXIFOriginal CaptureSource = "exif_original"
	SourceEXIFDateTime CaptureSource = "exif_datetime"
	SourceFileMtime    CaptureSource = "file_mtime"
)

// Container is the detected file format.
type Container string

const (
	ContainerJPEG Container = "jpeg"
	ContainerTIFF Container = "tiff"
	ContainerPNG  Container = "png"
)

// Coordinate is a validated GPS position in signed decimal degrees.
type Coordinate struct {
	Lat float64
	Lon float64
}

// Metadata is the typed extraction result. Every field is optional.
type Metadata struct {
	Container Container

	// CaptureTime is a naive wall clock expressed in UTC.
	CaptureTime   *time.Time
	CaptureSource CaptureSource

	CameraModel  string
	LensModel    string
	ISO          *int
	Orientation  *int
	Aperture     *float64
	FocalLength  *float64
	ExposureTime string

	GPS *Coordinate

	Size    int64
	ModTime time.Time
}

// Failure is a per-file extraction failure.
type Failure struct {
	Kind services.Kind
	Err  error
}

func (f *Failure) Error() string {
	if f == nil || f.Err == nil {
		return string(f.kind())
	}
	return f.Err.Error()
}

func (f *Failure) Unwrap() error {
	if f == nil {
		return nil
	}
	return f.Err
}

func (f *Failure) kind() services.Kind {
	if f == nil {
		return ""
	}
	return f.Kind
}

func newFailure(kind services.Kind, operation, message string, err error) *Failure {
	return &Failure{
		Kind: kind,
		Err:  services.Wrap(services.MarkerFor(kind), "extract", operation, message, err),
	}
}

// Result is either Metadata or a Failure.
type Result struct {
	Metadata *Metadata
	Failure  *Failure
}

// OK reports whether extraction succeeded.
func (r Result) OK() bool {
	return r.Failure == nil && r.Metadata != nil
}

// Err returns the failure as an error, or nil on success.
func (r Result) Err() error {
	if r.Failure == nil {
		if r.Metadata == nil {
			return errors.New("extract: empty result")
		}
		return nil
	}
	return r.Failure
}
