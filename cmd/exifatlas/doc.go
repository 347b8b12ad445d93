// Package main hosts the exifatlas CLI entrypoint and command graph.
//
// The Cobra command tree resolves configuration, picks the catalog database
// for the invocation, and hands off to the internal packages: ingest for
// walking a photo folder, export for CSV output, gazetteer for place imports
// and lookups, and browse for the read-only HTTP server. Reporting commands
// (status, timeline, runs) read through the same api views the server uses.
//
// Keep this package thin. New behaviour belongs in an internal package first
// and is surfaced here as a command or flag.
package main
