package testsupport

import (
	"path/filepath"
	"testing"

	"exifatlas/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.DBDir = filepath.Join(base, "db")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Paths.ExportDir = filepath.Join(base, "exports")
	cfgVal.Paths.GazetteerFile = filepath.Join(base, "cities500.txt")
	cfgVal.Browse.Bind = "127.0.0.1:0"

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithGazetteer writes the given places as a GeoNames file and points the
// config at it.
func WithGazetteer(places ...GazetteerPlace) ConfigOption {
	return func(b *configBuilder) {
		WriteGazetteer(b.t, b.cfg.Paths.GazetteerFile, places...)
	}
}

// WithGeocodeIndex selects the gazetteer backend.
func WithGeocodeIndex(index string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Geocode.Index = index
	}
}

// WithBatchSize overrides ingest.batch_size.
func WithBatchSize(n int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Ingest.BatchSize = n
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.DBDir)
}
