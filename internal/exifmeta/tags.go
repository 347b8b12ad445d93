package exifmeta

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/rwcarlsen/goexif/exif"
	"github.com/rwcarlsen/goexif/tiff"
)

const exifTimeLayout = "2006:01:02 15:04:05"

const (
	minPlausibleYear = 1900
	futureTolerance  = 24 * time.Hour
)

func (e *Extractor) mapTags(x *exif.Exif, meta *Metadata) {
	meta.CameraModel = stringTag(x, exif.Model)
	meta.LensModel = stringTag(x, exif.LensModel)
	meta.ISO = intTag(x, exif.ISOSpeedRatings)
	meta.Orientation = intTag(x, exif.Orientation)
	meta.Aperture = ratFloatTag(x, exif.FNumber)
	meta.FocalLength = ratFloatTag(x, exif.FocalLength)
	meta.ExposureTime = exposureTag(x)

	for _, candidate := range []struct {
		field  exif.FieldName
		source CaptureSource
	}{
		{exif.DateTimeOriginal, SourceEXIFOriginal},
		{exif.DateTime, SourceEXIFDateTime},
	} {
		ts, ok := e.timeTag(x, candidate.field)
		if !ok {
			continue
		}
		meta.CaptureTime = &ts
		meta.CaptureSource = candidate.source
		break
	}

	if coord, ok := gpsTags(x); ok {
		meta.GPS = &coord
	}
}

// applyCaptureFallback fills the capture time from the file mtime when no
// tag supplied one.
func (e *Extractor) applyCaptureFallback(meta *Metadata, mtime time.Time) {
	if meta.CaptureTime != nil || mtime.IsZero() {
		return
	}
	local := mtime.Local()
	naive := time.Date(local.Year(), local.Month(), local.Day(), local.Hour(), local.Minute(), local.Second(), 0, time.UTC)
	if !e.plausible(naive) {
		return
	}
	meta.CaptureTime = &naive
	meta.CaptureSource = SourceFileMtime
}

func (e *Extractor) plausible(ts time.Time) bool {
	if ts.Year() < minPlausibleYear {
		return false
	}
	// Naive wall clocks are compared against local now re-tagged as UTC.
	now := e.now().Local()
	ceiling := time.Date(now.Year(), now.Month(), now.Day(), now.Hour(), now.Minute(), now.Second(), 0, time.UTC).Add(futureTolerance)
	return !ts.After(ceiling)
}

func (e *Extractor) timeTag(x *exif.Exif, field exif.FieldName) (time.Time, bool) {
	raw := stringTag(x, field)
	if raw == "" {
		return time.Time{}, false
	}
	ts, err := time.ParseInLocation(exifTimeLayout, raw, time.UTC)
	if err != nil {
		return time.Time{}, false
	}
	if !e.plausible(ts) {
		return time.Time{}, false
	}
	return ts, true
}

func getTag(x *exif.Exif, field exif.FieldName) *tiff.Tag {
	tag, err := x.Get(field)
	if err != nil || tag == nil || tag.Count == 0 {
		return nil
	}
	return tag
}

func stringTag(x *exif.Exif, field exif.FieldName) string {
	tag := getTag(x, field)
	if tag == nil || tag.Format() != tiff.StringVal {
		return ""
	}
	value, err := tag.StringVal()
	if err != nil {
		return ""
	}
	return strings.TrimSpace(value)
}

func intTag(x *exif.Exif, field exif.FieldName) *int {
	tag := getTag(x, field)
	if tag == nil || tag.Format() != tiff.IntVal {
		return nil
	}
	value, err := tag.Int(0)
	if err != nil {
		return nil
	}
	return &value
}

func ratTag(x *exif.Exif, field exif.FieldName) (int64, int64, bool) {
	tag := getTag(x, field)
	if tag == nil || tag.Format() != tiff.RatVal {
		return 0, 0, false
	}
	num, den, err := tag.Rat2(0)
	if err != nil || den == 0 {
		return 0, 0, false
	}
	return num, den, true
}

func ratFloatTag(x *exif.Exif, field exif.FieldName) *float64 {
	num, den, ok := ratTag(x, field)
	if !ok {
		return nil
	}
	value := float64(num) / float64(den)
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return nil
	}
	return &value
}

// exposureTag renders ExposureTime as a reduced fraction ("1/250"), or the
// bare numerator when the fraction is whole.
func exposureTag(x *exif.Exif) string {
	num, den, ok := ratTag(x, exif.ExposureTime)
	if !ok {
		return ""
	}
	if num < 0 {
		num = -num
	}
	if g := gcd(num, den); g > 1 {
		num /= g
		den /= g
	}
	if den == 1 {
		return fmt.Sprintf("%d", num)
	}
	return fmt.Sprintf("%d/%d", num, den)
}

func gcd(a, b int64) int64 {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}
