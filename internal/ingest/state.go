package ingest

import (
	"time"

	"exifatlas/internal/catalog"
)

// RunState holds the counters for the current invocation.
type RunState struct {
	Total       int
	Seen        int
	Skipped     int
	Processed   int
	// Updated counts the processed files that already had a row.
	Updated     int
	Failed      int
	WithGPS     int
	Located     int
	BytesHashed int64
	Batches     int
}

// Summary is returned by Run.
type Summary struct {
	RunState
	RunID       string
	Root        string
	StartedAt   time.Time
	FinishedAt  time.Time
	Interrupted bool
}

// Duration is the wall time of the run.
func (s Summary) Duration() time.Duration {
	if s.FinishedAt.IsZero() {
		return 0
	}
	return s.FinishedAt.Sub(s.StartedAt)
}

func (s *Summary) record(errMessage string) catalog.Run {
	run := catalog.Run{
		ID:           s.RunID,
		Root:         s.Root,
		StartedAt:    s.StartedAt,
		Seen:         s.Seen,
		Skipped:      s.Skipped,
		Processed:    s.Processed,
		Updated:      s.Updated,
		Failed:       s.Failed,
		Located:      s.Located,
		BytesHashed:  s.BytesHashed,
		Interrupted:  s.Interrupted,
		ErrorMessage: errMessage,
	}
	if !s.FinishedAt.IsZero() {
		finished := s.FinishedAt
		run.FinishedAt = &finished
	}
	return run
}
