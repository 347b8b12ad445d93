package ingest

import (
	"time"

	"exifatlas/internal/config"
)

const (
	defaultBatchSize   = 500
	defaultFileTimeout = 30 * time.Second
)

// Options controls one Run.
type Options struct {
	Root          string
	Force         bool
	SkipLocation  bool
	BatchSize     int
	FileTimeout   time.Duration
	VerifyContent bool
}

// OptionsFromConfig seeds Options from the ingest section.
func OptionsFromConfig(cfg *config.Config, root string) Options {
	return Options{
		Root:          root,
		BatchSize:     cfg.Ingest.BatchSize,
		FileTimeout:   time.Duration(cfg.Ingest.FileTimeoutSeconds) * time.Second,
		VerifyContent: cfg.Ingest.VerifyContent,
	}
}

func (o Options) withDefaults() Options {
	if o.BatchSize <= 0 {
		o.BatchSize = defaultBatchSize
	}
	if o.FileTimeout <= 0 {
		o.FileTimeout = defaultFileTimeout
	}
	return o
}
