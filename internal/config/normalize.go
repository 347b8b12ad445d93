package config

import (
	"fmt"
	"os"
	"sort"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeIngest()
	c.normalizeGeocode()
	c.normalizeBrowse()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if value, ok := os.LookupEnv("EXIFATLAS_DB_DIR"); ok && strings.TrimSpace(value) != "" {
		c.Paths.DBDir = strings.TrimSpace(value)
	}
	if strings.TrimSpace(c.Paths.DBDir) == "" {
		c.Paths.DBDir = defaultDataDir()
	}
	if c.Paths.DBDir, err = expandPath(c.Paths.DBDir); err != nil {
		return fmt.Errorf("paths.db_dir: %w", err)
	}
	if value, ok := os.LookupEnv("EXIFATLAS_GAZETTEER"); ok && strings.TrimSpace(value) != "" {
		c.Paths.GazetteerFile = strings.TrimSpace(value)
	}
	if c.Paths.GazetteerFile, err = expandPath(strings.TrimSpace(c.Paths.GazetteerFile)); err != nil {
		return fmt.Errorf("paths.gazetteer_file: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultDataDir() + "/logs"
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.ExportDir) == "" {
		c.Paths.ExportDir = defaultExportDir
	}
	if c.Paths.ExportDir, err = expandPath(c.Paths.ExportDir); err != nil {
		return fmt.Errorf("paths.export_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeIngest() {
	if c.Ingest.BatchSize == 0 {
		c.Ingest.BatchSize = defaultBatchSize
	}
	if c.Ingest.FileTimeoutSeconds == 0 {
		c.Ingest.FileTimeoutSeconds = defaultFileTimeoutSeconds
	}
}

func (c *Config) normalizeGeocode() {
	if c.Geocode.MaxDistanceKm == 0 {
		c.Geocode.MaxDistanceKm = defaultMaxDistanceKm
	}
	c.Geocode.Index = strings.ToLower(strings.TrimSpace(c.Geocode.Index))
	if c.Geocode.Index == "" {
		c.Geocode.Index = defaultGeocodeIndex
	}
	c.Geocode.CountryFormat = strings.ToLower(strings.TrimSpace(c.Geocode.CountryFormat))
	if c.Geocode.CountryFormat == "" {
		c.Geocode.CountryFormat = defaultCountryFormat
	}
}

func (c *Config) normalizeBrowse() {
	c.Browse.Bind = strings.TrimSpace(c.Browse.Bind)
	if c.Browse.Bind == "" {
		c.Browse.Bind = defaultBrowseBind
	}
	if len(c.Browse.ExcludeYears) > 0 {
		seen := make(map[int]struct{}, len(c.Browse.ExcludeYears))
		years := make([]int, 0, len(c.Browse.ExcludeYears))
		for _, year := range c.Browse.ExcludeYears {
			if _, ok := seen[year]; ok {
				continue
			}
			seen[year] = struct{}{}
			years = append(years, year)
		}
		sort.Ints(years)
		c.Browse.ExcludeYears = years
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
