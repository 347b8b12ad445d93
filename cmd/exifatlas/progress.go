package main

import (
	"io"
	"log/slog"
	"time"

	"github.com/schollz/progressbar/v3"

	"exifatlas/internal/ingest"
)

// progressReporter is an ingest sink that must be finished once the run
// returns.
type progressReporter interface {
	ingest.ProgressSink
	Finish()
}

// newProgressReporter draws a bar on terminals and falls back to sampled log
// lines elsewhere.
func newProgressReporter(w io.Writer, disabled bool, logger *slog.Logger) progressReporter {
	switch {
	case disabled:
		return quietReporter{}
	case shouldColorize(w):
		return &barReporter{out: w}
	default:
		return logReporter{ingest.NewLogSink(logger, 10)}
	}
}

type quietReporter struct{ ingest.NopSink }

func (quietReporter) Finish() {}

type logReporter struct{ *ingest.LogSink }

func (logReporter) Finish() {}

// barReporter sizes its bar from the first report, once the walk has counted
// the files.
type barReporter struct {
	out io.Writer
	bar *progressbar.ProgressBar
}

func (r *barReporter) Report(p ingest.Progress) {
	if r.bar == nil {
		r.bar = progressbar.NewOptions64(int64(p.Total),
			progressbar.OptionSetWriter(r.out),
			progressbar.OptionSetDescription("ingesting"),
			progressbar.OptionShowCount(),
			progressbar.OptionSetWidth(30),
			progressbar.OptionThrottle(100*time.Millisecond),
			progressbar.OptionClearOnFinish(),
		)
	}
	_ = r.bar.Set(p.Seen)
}

func (r *barReporter) Finish() {
	if r.bar != nil {
		_ = r.bar.Finish()
	}
}
