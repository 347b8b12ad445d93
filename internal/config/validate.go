package config

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

const maxBatchSize = 100000

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateIngest(); err != nil {
		return err
	}
	if err := c.validateGeocode(); err != nil {
		return err
	}
	if err := c.validateBrowse(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validatePaths() error {
	if strings.TrimSpace(c.Paths.DBDir) == "" {
		return errors.New("paths.db_dir must be set")
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		return errors.New("paths.log_dir must be set")
	}
	return nil
}

func (c *Config) validateIngest() error {
	if c.Ingest.BatchSize <= 0 {
		return errors.New("ingest.batch_size must be positive")
	}
	if c.Ingest.BatchSize > maxBatchSize {
		return fmt.Errorf("ingest.batch_size must not exceed %d", maxBatchSize)
	}
	if c.Ingest.FileTimeoutSeconds <= 0 {
		return errors.New("ingest.file_timeout_seconds must be positive")
	}
	return nil
}

func (c *Config) validateGeocode() error {
	if math.IsNaN(c.Geocode.MaxDistanceKm) || c.Geocode.MaxDistanceKm <= 0 {
		return errors.New("geocode.max_distance_km must be positive")
	}
	// Half the earth's circumference; anything larger is meaningless on a sphere.
	if c.Geocode.MaxDistanceKm > 20015 {
		return errors.New("geocode.max_distance_km must not exceed 20015")
	}
	switch c.Geocode.Index {
	case "memory", "sqlite":
	default:
		return fmt.Errorf("geocode.index must be memory or sqlite (got %q)", c.Geocode.Index)
	}
	switch c.Geocode.CountryFormat {
	case "alpha2", "alpha3":
	default:
		return fmt.Errorf("geocode.country_format must be alpha2 or alpha3 (got %q)", c.Geocode.CountryFormat)
	}
	return nil
}

func (c *Config) validateBrowse() error {
	if !strings.Contains(c.Browse.Bind, ":") {
		return errors.New("browse.bind must be host:port")
	}
	for _, year := range c.Browse.ExcludeYears {
		if year < 1 || year > 9999 {
			return fmt.Errorf("browse.exclude_years contains invalid year %d", year)
		}
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
		return nil
	default:
		return fmt.Errorf("logging.level must be debug, info, warn, or error (got %q)", c.Logging.Level)
	}
}
