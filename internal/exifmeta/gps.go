package exifmeta

import (
	"errors"
	"fmt"
	"strings"

	"github.com/rwcarlsen/goexif/exif"
	"github.com/rwcarlsen/goexif/tiff"
)

var (
	gpsLatitude     = exif.FieldName("GPSLatitude")
	gpsLatitudeRef  = exif.FieldName("GPSLatitudeRef")
	gpsLongitude    = exif.FieldName("GPSLongitude")
	gpsLongitudeRef = exif.FieldName("GPSLongitudeRef")
)

var errZeroDenominator = errors.New("zero denominator")

// gpsTags returns the coordinate only when both axes parse and lie in range.
func gpsTags(x *exif.Exif) (Coordinate, bool) {
	lat, err := gpsAxis(x, gpsLatitude, gpsLatitudeRef, "N", "S", 90)
	if err != nil {
		return Coordinate{}, false
	}
	lon, err := gpsAxis(x, gpsLongitude, gpsLongitudeRef, "E", "W", 180)
	if err != nil {
		return Coordinate{}, false
	}
	return Coordinate{Lat: lat, Lon: lon}, true
}

func gpsAxis(x *exif.Exif, valueField, refField exif.FieldName, positive, negative string, limit float64) (float64, error) {
	tag, err := x.Get(valueField)
	if err != nil {
		return 0, err
	}
	if tag.Format() != tiff.RatVal || tag.Count < 3 {
		return 0, fmt.Errorf("%s: expected 3 rationals", valueField)
	}
	var parts [3]float64
	for i := range parts {
		num, den, err := tag.Rat2(i)
		if err != nil {
			return 0, err
		}
		if den == 0 {
			return 0, fmt.Errorf("%s[%d]: %w", valueField, i, errZeroDenominator)
		}
		parts[i] = float64(num) / float64(den)
	}
	value := dmsToDecimal(parts[0], parts[1], parts[2])

	ref := strings.ToUpper(stringTag(x, refField))
	switch ref {
	case "", positive:
	case negative:
		value = -value
	default:
		return 0, fmt.Errorf("%s: unexpected reference %q", refField, ref)
	}
	if value < -limit || value > limit {
		return 0, fmt.Errorf("%s: %f out of range", valueField, value)
	}
	return value, nil
}

func dmsToDecimal(degrees, minutes, seconds float64) float64 {
	return degrees + minutes/60 + seconds/3600
}
