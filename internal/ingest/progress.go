package ingest

import (
	"log/slog"

	"exifatlas/internal/logging"
)

// Progress is a point-in-time view of a run.
type Progress struct {
	Total     int
	Seen      int
	Skipped   int
	Processed int
	Updated   int
	Failed    int
	Path      string
}

// ProgressSink receives progress after every file. Implementations must not
// block for long; Report runs on the ingest goroutine.
type ProgressSink interface {
	Report(Progress)
}

// NopSink discards progress.
type NopSink struct{}

func (NopSink) Report(Progress) {}

// LogSink logs progress, sampled at fixed percentage buckets.
type LogSink struct {
	logger  *slog.Logger
	sampler *logging.ProgressSampler
}

// NewLogSink logs through logger every bucketPercent of completion.
func NewLogSink(logger *slog.Logger, bucketPercent float64) *LogSink {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &LogSink{logger: logger, sampler: logging.NewProgressSampler(bucketPercent)}
}

func (s *LogSink) Report(p Progress) {
	if !s.sampler.ShouldLog(p.Seen, p.Total) {
		return
	}
	s.logger.Info("ingest progress",
		logging.String(logging.FieldEventType, "ingest_progress"),
		logging.Float64(logging.FieldProgressPercent, logging.Percent(p.Seen, p.Total)),
		logging.Int("seen", p.Seen),
		logging.Int("total", p.Total),
		logging.Int("skipped", p.Skipped),
		logging.Int("processed", p.Processed),
		logging.Int("failed", p.Failed),
	)
}

func (s *RunState) progress(path string) Progress {
	return Progress{
		Total:     s.Total,
		Seen:      s.Seen,
		Skipped:   s.Skipped,
		Processed: s.Processed,
		Updated:   s.Updated,
		Failed:    s.Failed,
		Path:      path,
	}
}
