// Package catalog persists photo records, gazetteer places, and ingest run
// history in SQLite.
//
// Open applies WAL and busy-timeout pragmas and runs the embedded,
// forward-only migrations tracked in schema_migrations. Writes during an
// ingest go through Batch so that a pending mark and the terminal record for
// a file land in the same transaction. Read helpers back the timeline,
// export, and status surfaces; none of them mutate rows.
//
// Records are never deleted. Reprocessing a path overwrites its row in place
// through an ON CONFLICT(path) upsert.
package catalog
