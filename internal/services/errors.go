package services

import (
	"errors"
	"fmt"
	"strings"
)

// Kind classifies a per-file failure. The string value is persisted in
// photos.error_kind.
type Kind string

const (
	KindUnreadable         Kind = "unreadable"
	KindUnsupportedFormat  Kind = "unsupported-format"
	KindCorruptMetadata    Kind = "corrupt-metadata"
	KindGeocodeUnavailable Kind = "geocode-unavailable"
)

var (
	// Per-file markers. A file failing with one of these is recorded as
	// failed and the run continues.
	ErrUnreadable         = errors.New(string(KindUnreadable))
	ErrUnsupportedFormat  = errors.New(string(KindUnsupportedFormat))
	ErrCorruptMetadata    = errors.New(string(KindCorruptMetadata))
	ErrGeocodeUnavailable = errors.New(string(KindGeocodeUnavailable))

	// ErrStore marks catalog failures that abort a run.
	ErrStore         = errors.New("store error")
	ErrConfiguration = errors.New("configuration error")
	ErrValidation    = errors.New("validation error")
	ErrNotFound      = errors.New("not found")
)

var kindMarkers = []struct {
	marker error
	kind   Kind
}{
	{ErrUnreadable, KindUnreadable},
	{ErrUnsupportedFormat, KindUnsupportedFormat},
	{ErrCorruptMetadata, KindCorruptMetadata},
	{ErrGeocodeUnavailable, KindGeocodeUnavailable},
}

// Wrap builds an error message that includes stage context while tagging it with
// the provided marker for later classification. The marker should be one
// of the exported sentinel errors above.
func Wrap(marker error, stage, operation, message string, err error) error {
	detail := buildDetail(stage, operation, message)
	if marker == nil {
		marker = ErrStore
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// KindOf reports the per-file failure kind carried by err.
func KindOf(err error) (Kind, bool) {
	if err == nil {
		return "", false
	}
	for _, km := range kindMarkers {
		if errors.Is(err, km.marker) {
			return km.kind, true
		}
	}
	return "", false
}

// MarkerFor returns the sentinel error for a failure kind.
func MarkerFor(kind Kind) error {
	for _, km := range kindMarkers {
		if km.kind == kind {
			return km.marker
		}
	}
	return ErrStore
}

// ParseKind validates a persisted error_kind value.
func ParseKind(value string) (Kind, bool) {
	value = strings.TrimSpace(value)
	for _, km := range kindMarkers {
		if string(km.kind) == value {
			return km.kind, true
		}
	}
	return "", false
}

func buildDetail(stage, operation, message string) string {
	parts := make([]string, 0, 3)
	if stage = strings.TrimSpace(stage); stage != "" {
		parts = append(parts, stage)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "failure"
	}
	return strings.Join(parts, ": ")
}
