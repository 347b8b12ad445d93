package exifmeta

import (
	"context"
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"exifatlas/internal/services"
	"exifatlas/internal/testsupport"
)

func newTestExtractor(now time.Time) *Extractor {
	e := New(nil)
	e.now = func() time.Time { return now }
	return e
}

func writeFixture(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	testsupport.WriteBytes(t, path, data)
	return path
}

func mustMetadata(t *testing.T, res Result) *Metadata {
	t.Helper()
	if res.Failure != nil {
		t.Fatalf("extract failed: %v (kind %s)", res.Failure, res.Failure.Kind)
	}
	if res.Metadata == nil {
		t.Fatal("expected metadata")
	}
	return res.Metadata
}

func expectFailure(t *testing.T, res Result, kind services.Kind) {
	t.Helper()
	if res.Failure == nil {
		t.Fatalf("expected %s failure, got metadata %+v", kind, res.Metadata)
	}
	if res.Metadata != nil {
		t.Fatal("failure result must not carry metadata")
	}
	if res.Failure.Kind != kind {
		t.Fatalf("expected kind %s, got %s (%v)", kind, res.Failure.Kind, res.Failure)
	}
	if got, ok := services.KindOf(res.Failure); !ok || got != kind {
		t.Fatalf("KindOf = %s,%v; want %s", got, ok, kind)
	}
}

func TestExtractJPEGFullTagSet(t *testing.T) {
	path := writeFixture(t, "IMG_0001.jpg", testsupport.JPEGWithExif(testsupport.ExifFixture{
		Model:            "Canon EOS R5",
		LensModel:        "RF24-70mm F2.8 L IS USM",
		DateTime:         "2023:05:02 09:00:00",
		DateTimeOriginal: "2023:05:01 14:22:10",
		ISO:              200,
		Orientation:      6,
		FNumber:          testsupport.Rational{28, 10},
		ExposureTime:     testsupport.Rational{10, 2500},
		FocalLength:      testsupport.Rational{50, 1},
		GPS:              &[2]float64{39.12711, -84.51439},
	}))

	meta := mustMetadata(t, newTestExtractor(time.Now()).Extract(context.Background(), path))

	if meta.Container != ContainerJPEG {
		t.Fatalf("container = %q", meta.Container)
	}
	if meta.CameraModel != "Canon EOS R5" || meta.LensModel != "RF24-70mm F2.8 L IS USM" {
		t.Fatalf("unexpected model/lens: %q / %q", meta.CameraModel, meta.LensModel)
	}
	if meta.ISO == nil || *meta.ISO != 200 {
		t.Fatalf("iso = %v", meta.ISO)
	}
	if meta.Orientation == nil || *meta.Orientation != 6 {
		t.Fatalf("orientation = %v", meta.Orientation)
	}
	if meta.Aperture == nil || math.Abs(*meta.Aperture-2.8) > 1e-9 {
		t.Fatalf("aperture = %v", meta.Aperture)
	}
	if meta.FocalLength == nil || *meta.FocalLength != 50 {
		t.Fatalf("focal length = %v", meta.FocalLength)
	}
	if meta.ExposureTime != "1/250" {
		t.Fatalf("exposure = %q", meta.ExposureTime)
	}
	want := time.Date(2023, 5, 1, 14, 22, 10, 0, time.UTC)
	if meta.CaptureTime == nil || !meta.CaptureTime.Equal(want) {
		t.Fatalf("capture time = %v, want %v", meta.CaptureTime, want)
	}
	if meta.CaptureSource != SourceEXIFOriginal {
		t.Fatalf("capture source = %q", meta.CaptureSource)
	}
	if meta.GPS == nil {
		t.Fatal("expected gps")
	}
	if math.Abs(meta.GPS.Lat-39.12711) > 1e-6 || math.Abs(meta.GPS.Lon+84.51439) > 1e-6 {
		t.Fatalf("gps = %+v", *meta.GPS)
	}
}

func TestExtractWholeExposureAndSouthernHemisphere(t *testing.T) {
	path := writeFixture(t, "night.jpg", testsupport.JPEGWithExif(testsupport.ExifFixture{
		DateTimeOriginal: "2022:12:31 23:59:59",
		ExposureTime:     testsupport.Rational{2, 1},
		GPS:              &[2]float64{-33.86785, 151.20732},
	}))
	meta := mustMetadata(t, newTestExtractor(time.Now()).Extract(context.Background(), path))
	if meta.ExposureTime != "2" {
		t.Fatalf("exposure = %q", meta.ExposureTime)
	}
	if meta.GPS == nil || meta.GPS.Lat >= 0 || meta.GPS.Lon <= 0 {
		t.Fatalf("expected southern/eastern coordinate, got %+v", meta.GPS)
	}
}

func TestExtractCaptureTimeFallsBackToDateTime(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		name     string
		original string
	}{
		{name: "missing original"},
		{name: "before 1900", original: "1850:01:01 00:00:00"},
		{name: "far future", original: "2030:01:01 00:00:00"},
		{name: "unparsable", original: "0000:00:00 00:00:00"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFixture(t, "a.jpg", testsupport.JPEGWithExif(testsupport.ExifFixture{
				DateTime:         "2019:07:04 18:30:00",
				DateTimeOriginal: tt.original,
			}))
			meta := mustMetadata(t, newTestExtractor(now).Extract(context.Background(), path))
			want := time.Date(2019, 7, 4, 18, 30, 0, 0, time.UTC)
			if meta.CaptureTime == nil || !meta.CaptureTime.Equal(want) {
				t.Fatalf("capture time = %v, want %v", meta.CaptureTime, want)
			}
			if meta.CaptureSource != SourceEXIFDateTime {
				t.Fatalf("capture source = %q", meta.CaptureSource)
			}
		})
	}
}

func TestExtractCaptureTimeFallsBackToMtime(t *testing.T) {
	path := writeFixture(t, "plain.jpg", testsupport.PlainJPEG())
	mtime := time.Date(2021, 3, 14, 15, 9, 26, 0, time.Local)
	testsupport.SetMtime(t, path, mtime)

	meta := mustMetadata(t, newTestExtractor(time.Now()).Extract(context.Background(), path))
	want := time.Date(2021, 3, 14, 15, 9, 26, 0, time.UTC)
	if meta.CaptureTime == nil || !meta.CaptureTime.Equal(want) {
		t.Fatalf("capture time = %v, want %v", meta.CaptureTime, want)
	}
	if meta.CaptureSource != SourceFileMtime {
		t.Fatalf("capture source = %q", meta.CaptureSource)
	}
	if meta.CameraModel != "" || meta.GPS != nil || meta.ISO != nil {
		t.Fatalf("expected empty tag fields, got %+v", meta)
	}
}

func TestCaptureFallbackRejectsImplausibleMtime(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.Local)
	e := newTestExtractor(now)
	tests := []struct {
		name  string
		mtime time.Time
		want  bool
	}{
		{name: "before 1900", mtime: time.Date(1890, 1, 1, 12, 0, 0, 0, time.Local), want: false},
		{name: "far future", mtime: now.AddDate(1, 0, 0), want: false},
		{name: "zero", mtime: time.Time{}, want: false},
		{name: "recent", mtime: now.AddDate(0, -1, 0), want: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			meta := &Metadata{}
			e.applyCaptureFallback(meta, tt.mtime)
			if got := meta.CaptureTime != nil; got != tt.want {
				t.Fatalf("capture time set = %v, want %v (%v)", got, tt.want, meta.CaptureTime)
			}
			if !tt.want && meta.CaptureSource != SourceNone {
				t.Fatalf("capture source = %q, want none", meta.CaptureSource)
			}
			if tt.want && meta.CaptureSource != SourceFileMtime {
				t.Fatalf("capture source = %q, want %q", meta.CaptureSource, SourceFileMtime)
			}
		})
	}
}

func TestExtractGPSRejectedAsPair(t *testing.T) {
	valid := [3]testsupport.Rational{{10, 1}, {30, 1}, {0, 1}}
	tests := []struct {
		name string
		lat  [3]testsupport.Rational
		lon  [3]testsupport.Rational
	}{
		{
			name: "zero denominator",
			lat:  [3]testsupport.Rational{{39, 1}, {7, 0}, {0, 1}},
			lon:  valid,
		},
		{
			name: "latitude out of range",
			lat:  [3]testsupport.Rational{{95, 1}, {0, 1}, {0, 1}},
			lon:  valid,
		},
		{
			name: "longitude out of range",
			lat:  valid,
			lon:  [3]testsupport.Rational{{181, 1}, {0, 1}, {0, 1}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lat, lon := tt.lat, tt.lon
			path := writeFixture(t, "gps.jpg", testsupport.JPEGWithExif(testsupport.ExifFixture{
				Model:     "Pixel 8",
				GPSLatDMS: &lat,
				GPSLonDMS: &lon,
			}))
			meta := mustMetadata(t, newTestExtractor(time.Now()).Extract(context.Background(), path))
			if meta.GPS != nil {
				t.Fatalf("expected gps to be absent, got %+v", *meta.GPS)
			}
			if meta.CameraModel != "Pixel 8" {
				t.Fatalf("other tags should survive, model = %q", meta.CameraModel)
			}
		})
	}
}

func TestExtractTIFFAndPNG(t *testing.T) {
	fixture := testsupport.ExifFixture{
		Model:            "NIKON Z 6",
		DateTimeOriginal: "2020:02:29 06:45:00",
		GPS:              &[2]float64{51.50853, -0.12574},
	}
	tests := []struct {
		name      string
		file      string
		data      []byte
		container Container
	}{
		{name: "tiff", file: "scan.tif", data: testsupport.TIFFWithExif(fixture), container: ContainerTIFF},
		{name: "raw named nef", file: "DSC_0001.NEF", data: testsupport.TIFFWithExif(fixture), container: ContainerTIFF},
		{name: "png", file: "shot.png", data: testsupport.PNGWithExif(&fixture), container: ContainerPNG},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFixture(t, tt.file, tt.data)
			meta := mustMetadata(t, newTestExtractor(time.Now()).Extract(context.Background(), path))
			if meta.Container != tt.container {
				t.Fatalf("container = %q, want %q", meta.Container, tt.container)
			}
			if meta.CameraModel != "NIKON Z 6" {
				t.Fatalf("model = %q", meta.CameraModel)
			}
			if meta.CaptureSource != SourceEXIFOriginal {
				t.Fatalf("capture source = %q", meta.CaptureSource)
			}
			if meta.GPS == nil || math.Abs(meta.GPS.Lat-51.50853) > 1e-6 {
				t.Fatalf("gps = %+v", meta.GPS)
			}
		})
	}
}

func TestExtractPNGWithoutExif(t *testing.T) {
	path := writeFixture(t, "bare.png", testsupport.PNGWithExif(nil))
	meta := mustMetadata(t, newTestExtractor(time.Now()).Extract(context.Background(), path))
	if meta.Container != ContainerPNG || meta.CameraModel != "" {
		t.Fatalf("unexpected metadata %+v", meta)
	}
	if meta.CaptureSource != SourceFileMtime {
		t.Fatalf("capture source = %q", meta.CaptureSource)
	}
}

func TestExtractFailureKinds(t *testing.T) {
	dir := t.TempDir()
	empty := filepath.Join(dir, "empty.jpg")
	testsupport.WriteBytes(t, empty, nil)
	random := filepath.Join(dir, "random.jpg")
	testsupport.WriteFile(t, random, 4096)
	corrupt := filepath.Join(dir, "corrupt.jpg")
	testsupport.WriteBytes(t, corrupt, testsupport.CorruptExifJPEG())
	truncated := filepath.Join(dir, "truncated.jpg")
	full := testsupport.JPEGWithExif(testsupport.ExifFixture{Model: "X"})
	testsupport.WriteBytes(t, truncated, full[:30])
	subdir := filepath.Join(dir, "folder.jpg")
	if err := os.Mkdir(subdir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	tests := []struct {
		name string
		path string
		kind services.Kind
	}{
		{name: "missing", path: filepath.Join(dir, "missing.jpg"), kind: services.KindUnreadable},
		{name: "empty", path: empty, kind: services.KindUnreadable},
		{name: "directory", path: subdir, kind: services.KindUnreadable},
		{name: "random bytes", path: random, kind: services.KindUnsupportedFormat},
		{name: "corrupt exif", path: corrupt, kind: services.KindCorruptMetadata},
		{name: "truncated segment", path: truncated, kind: services.KindCorruptMetadata},
	}
	e := newTestExtractor(time.Now())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			expectFailure(t, e.Extract(context.Background(), tt.path), tt.kind)
		})
	}
}

func TestExtractCancelledContext(t *testing.T) {
	path := writeFixture(t, "a.jpg", testsupport.PlainJPEG())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	res := newTestExtractor(time.Now()).Extract(ctx, path)
	expectFailure(t, res, services.KindUnreadable)
	if !errors.Is(res.Failure, context.Canceled) {
		t.Fatalf("expected context.Canceled in chain, got %v", res.Failure)
	}
}

func TestFindJPEGExifSkipsNonExifAPP1(t *testing.T) {
	xmp := []byte{0xFF, 0xD8, 0xFF, 0xE1, 0x00, 0x07, 'h', 't', 't', 'p', ':'}
	exifSeg := testsupport.JPEGWithExif(testsupport.ExifFixture{Model: "Second"})[2:]
	data := append(xmp, exifSeg...)
	path := writeFixture(t, "xmp-first.jpg", data)
	meta := mustMetadata(t, newTestExtractor(time.Now()).Extract(context.Background(), path))
	if meta.CameraModel != "Second" {
		t.Fatalf("model = %q", meta.CameraModel)
	}
}

func TestResultErr(t *testing.T) {
	if (Result{}).Err() == nil {
		t.Fatal("empty result should report an error")
	}
	if err := (Result{Metadata: &Metadata{}}).Err(); err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	fail := newFailure(services.KindUnreadable, "open", "open file", os.ErrNotExist)
	if !errors.Is(Result{Failure: fail}.Err(), services.ErrUnreadable) {
		t.Fatal("failure should wrap the unreadable marker")
	}
	if !errors.Is(fail, os.ErrNotExist) {
		t.Fatal("failure should wrap the cause")
	}
}
