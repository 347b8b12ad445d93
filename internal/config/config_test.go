package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"exifatlas/internal/config"
)

func TestLoadDefaultConfigWhenMissing(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Setenv("XDG_DATA_HOME", "")
	t.Setenv("EXIFATLAS_GAZETTEER", "")
	t.Setenv("EXIFATLAS_DB_DIR", "")
	t.Chdir(t.TempDir())

	cfg, path, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if exists {
		t.Fatalf("expected exists=false for default config, got true (path=%q)", path)
	}

	expectedDBDir := filepath.Join(tempHome, ".local", "share", "exifatlas")
	if cfg.Paths.DBDir != expectedDBDir {
		t.Fatalf("unexpected db dir: got %q want %q", cfg.Paths.DBDir, expectedDBDir)
	}
	if cfg.Ingest.BatchSize != 500 {
		t.Fatalf("unexpected batch size: %d", cfg.Ingest.BatchSize)
	}
	if cfg.Ingest.FileTimeoutSeconds != 30 {
		t.Fatalf("unexpected file timeout: %d", cfg.Ingest.FileTimeoutSeconds)
	}
	if !cfg.Ingest.VerifyContent {
		t.Fatal("expected verify_content to default to true")
	}
	if cfg.Geocode.MaxDistanceKm != 50 {
		t.Fatalf("unexpected max distance: %v", cfg.Geocode.MaxDistanceKm)
	}
	if cfg.Geocode.Index != "memory" || cfg.Geocode.CountryFormat != "alpha3" {
		t.Fatalf("unexpected geocode defaults: %+v", cfg.Geocode)
	}
	if cfg.Logging.Format != "console" || cfg.Logging.Level != "info" {
		t.Fatalf("unexpected logging defaults: %+v", cfg.Logging)
	}
}

func TestLoadCustomConfig(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Setenv("EXIFATLAS_GAZETTEER", "")
	t.Setenv("EXIFATLAS_DB_DIR", "")

	configPath := filepath.Join(tempHome, "config.toml")
	content := `[paths]
db_dir = "~/catalogs"
gazetteer_file = "~/geo/cities500.txt"

[ingest]
batch_size = 50
verify_content = false

[geocode]
max_distance_km = 12.5
index = "SQLite"
country_format = "alpha2"

[browse]
exclude_years = [2001, 1970, 2001]

[logging]
format = "JSON"
level = "DEBUG"
`
	if err := os.WriteFile(configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists || resolved != configPath {
		t.Fatalf("unexpected resolution: exists=%v path=%q", exists, resolved)
	}
	if cfg.Paths.DBDir != filepath.Join(tempHome, "catalogs") {
		t.Fatalf("unexpected db dir: %q", cfg.Paths.DBDir)
	}
	if cfg.Paths.GazetteerFile != filepath.Join(tempHome, "geo", "cities500.txt") {
		t.Fatalf("unexpected gazetteer file: %q", cfg.Paths.GazetteerFile)
	}
	if cfg.Ingest.BatchSize != 50 || cfg.Ingest.VerifyContent {
		t.Fatalf("unexpected ingest config: %+v", cfg.Ingest)
	}
	if cfg.Geocode.MaxDistanceKm != 12.5 || cfg.Geocode.Index != "sqlite" || cfg.Geocode.CountryFormat != "alpha2" {
		t.Fatalf("unexpected geocode config: %+v", cfg.Geocode)
	}
	if len(cfg.Browse.ExcludeYears) != 2 || cfg.Browse.ExcludeYears[0] != 1970 || cfg.Browse.ExcludeYears[1] != 2001 {
		t.Fatalf("unexpected exclude years: %v", cfg.Browse.ExcludeYears)
	}
	if cfg.Logging.Format != "json" || cfg.Logging.Level != "debug" {
		t.Fatalf("unexpected logging config: %+v", cfg.Logging)
	}
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	configPath := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(configPath, []byte("[ingest]\nbatch = 5\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, _, _, err := config.Load(configPath); err == nil {
		t.Fatal("expected unknown key to be rejected")
	}
}

func TestEnvironmentOverrides(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	gazetteer := filepath.Join(tempHome, "alt", "places.tsv")
	dbDir := filepath.Join(tempHome, "dbs")
	t.Setenv("EXIFATLAS_GAZETTEER", gazetteer)
	t.Setenv("EXIFATLAS_DB_DIR", dbDir)

	cfg, _, _, err := config.Load(filepath.Join(tempHome, "missing.toml"))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Paths.GazetteerFile != gazetteer {
		t.Fatalf("expected gazetteer override, got %q", cfg.Paths.GazetteerFile)
	}
	if cfg.Paths.DBDir != dbDir {
		t.Fatalf("expected db dir override, got %q", cfg.Paths.DBDir)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
		want   string
	}{
		{"negative batch", func(c *config.Config) { c.Ingest.BatchSize = -1 }, "ingest.batch_size"},
		{"zero timeout", func(c *config.Config) { c.Ingest.FileTimeoutSeconds = 0 }, "ingest.file_timeout_seconds"},
		{"zero distance", func(c *config.Config) { c.Geocode.MaxDistanceKm = 0 }, "geocode.max_distance_km"},
		{"bad index", func(c *config.Config) { c.Geocode.Index = "btree" }, "geocode.index"},
		{"bad country format", func(c *config.Config) { c.Geocode.CountryFormat = "name" }, "geocode.country_format"},
		{"bad bind", func(c *config.Config) { c.Browse.Bind = "localhost" }, "browse.bind"},
		{"bad level", func(c *config.Config) { c.Logging.Level = "trace" }, "logging.level"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatalf("expected validation error containing %q", tt.want)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestDBPathForFolder(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.DBDir = "/var/lib/exifatlas"

	if got := cfg.DBPathForFolder("/photos/library7/"); got != "/var/lib/exifatlas/library7.db" {
		t.Fatalf("unexpected db path: %q", got)
	}
	if got := cfg.DBPathForFolder("/"); got != "/var/lib/exifatlas/photos.db" {
		t.Fatalf("expected fallback for root folder, got %q", got)
	}
}

func TestCreateSampleRoundTrips(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("EXIFATLAS_GAZETTEER", "")
	t.Setenv("EXIFATLAS_DB_DIR", "")
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample failed: %v", err)
	}
	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load sample failed: %v", err)
	}
	if !exists {
		t.Fatal("expected sample to exist")
	}
	if cfg.Browse.Bind != "127.0.0.1:7488" {
		t.Fatalf("unexpected bind: %q", cfg.Browse.Bind)
	}
}
