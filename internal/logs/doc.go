// Package logs reads the JSON log file written beside each catalog.
//
// Tail returns the last N matching lines or the lines appended after an
// offset, optionally waiting for new output. Filter narrows lines to one
// ingest run, a minimum level, or an event type, and Entry renders a JSON
// line for terminal display.
package logs
