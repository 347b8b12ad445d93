// Package services defines the error taxonomy and context helpers shared by
// the ingestion pipeline.
//
// Per-file failures carry one of the Kind markers (unreadable,
// unsupported-format, corrupt-metadata, geocode-unavailable) through Wrap so
// the coordinator can persist them as failed rows and keep going. ErrStore
// marks catalog failures that end a run. Context helpers stamp the run id and
// photo path for logging.
package services
