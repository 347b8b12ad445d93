// Package logging builds the slog loggers used across exifatlas.
//
// New and NewFromConfig assemble a console or JSON handler for the terminal
// and tee a JSON copy into the configured log directory. Attr helpers,
// NewComponentLogger and WarnWithContext keep field names consistent so log
// lines can be filtered by run_id, path, or component.
package logging
