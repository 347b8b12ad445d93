// Package ingest walks a photo tree and drives each file through change
// detection, metadata extraction and location resolution, committing the
// results to the catalog in bounded batches.
//
// A run is resumable: files are staged as pending before extraction and the
// pending state is committed together with the terminal record, so an
// interrupted batch is simply redone on the next run. Cancellation is
// checked between files; an in-flight file always completes.
package ingest
