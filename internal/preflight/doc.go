// Package preflight provides readiness checks for the filesystem paths
// exifatlas depends on.
//
// These checks run in two contexts:
//   - The ingest command calls RunAll before walking a folder. A failed
//     required check aborts the run before any catalog write.
//   - The CLI "exifatlas status --check" command prints every result.
//
// The gazetteer check is advisory: without it, ingest still records metadata
// and leaves locations unresolved.
package preflight
