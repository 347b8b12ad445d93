// Package api defines wire-format types and converters shared by the browse
// HTTP server and the CLI's JSON output. It translates catalog models into
// transport-friendly DTOs so consumers never depend on storage types.
//
// # Key Types
//
// Photo: one catalogued file with its metadata, status and failure detail.
//
// TimelineEntry: a capture day at one resolved location, with the averaged
// coordinate for map placement.
//
// Stats: per-status counts plus GPS and location coverage.
//
// Run: one ingest run's counters.
//
// # Design Notes
//
// DTOs use camelCase JSON tags. Statuses are lowercase strings. Timestamps use
// RFC3339 with milliseconds; capture times are naive wall clocks and are
// rendered without a zone.
package api
