// Package browse serves the catalog over a read-only HTTP JSON API: stats,
// the day/location timeline, photos per timeline entry, recent ingest runs,
// the photo files themselves, and Prometheus metrics.
package browse
