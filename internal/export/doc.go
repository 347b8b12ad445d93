// Package export writes catalog projections as CSV: every record, or counts
// grouped by capture day, by location, or by both.
package export
