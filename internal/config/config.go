package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains file and directory locations.
type Paths struct {
	DBDir         string `toml:"db_dir"`
	GazetteerFile string `toml:"gazetteer_file"`
	LogDir        string `toml:"log_dir"`
	ExportDir     string `toml:"export_dir"`
}

// Ingest contains configuration for the ingestion coordinator.
type Ingest struct {
	BatchSize          int  `toml:"batch_size"`
	FileTimeoutSeconds int  `toml:"file_timeout_seconds"`
	VerifyContent      bool `toml:"verify_content"`
}

// Geocode contains configuration for offline location resolution.
type Geocode struct {
	MaxDistanceKm float64 `toml:"max_distance_km"`
	// Index selects the gazetteer backend: "memory" (R-tree) or "sqlite".
	Index string `toml:"index"`
	// CountryFormat is "alpha3" (USA) or "alpha2" (US).
	CountryFormat string `toml:"country_format"`
}

// Browse contains configuration for the read-only browse server.
type Browse struct {
	Bind         string `toml:"bind"`
	ExcludeYears []int  `toml:"exclude_years"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for exifatlas.
//
// Configuration sections by subsystem:
//   - Paths: catalog directory, gazetteer source, logs and exports
//   - Ingest: batch size, per-file deadline, content verification
//   - Geocode: lookup radius, index backend, country rendering
//   - Browse: HTTP bind address and timeline filters
//   - Logging: log format and level
type Config struct {
	Paths   Paths   `toml:"paths"`
	Ingest  Ingest  `toml:"ingest"`
	Geocode Geocode `toml:"geocode"`
	Browse  Browse  `toml:"browse"`
	Logging Logging `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/exifatlas/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&cfg); err != nil {
			var strict *toml.StrictMissingError
			if errors.As(err, &strict) {
				return nil, "", false, fmt.Errorf("parse config: %s", strict.String())
			}
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("exifatlas.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the catalog and log directories.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.DBDir, c.Paths.LogDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// DefaultDBPath returns the catalog used when neither a database nor a photo
// folder is given on the command line.
func (c *Config) DefaultDBPath() string {
	return filepath.Join(c.Paths.DBDir, defaultDBName)
}

// DBPathForFolder derives the catalog path from a photo folder name, so
// /photos/library7 maps to <db_dir>/library7.db.
func (c *Config) DBPathForFolder(folder string) string {
	cleaned := filepath.Clean(strings.TrimSpace(folder))
	base := filepath.Base(cleaned)
	if base == "." || base == string(filepath.Separator) || base == "" {
		return c.DefaultDBPath()
	}
	return filepath.Join(c.Paths.DBDir, base+".db")
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

func defaultDataDir() string {
	if base, ok := os.LookupEnv("XDG_DATA_HOME"); ok && strings.TrimSpace(base) != "" {
		return filepath.Join(base, "exifatlas")
	}
	return "~/.local/share/exifatlas"
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
