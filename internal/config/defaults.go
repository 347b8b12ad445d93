package config

const (
	defaultDBName             = "photos.db"
	defaultGazetteerFileName  = "cities500.txt"
	defaultExportDir          = "."
	defaultBatchSize          = 500
	defaultFileTimeoutSeconds = 30
	defaultMaxDistanceKm      = 50.0
	defaultGeocodeIndex       = "memory"
	defaultCountryFormat      = "alpha3"
	defaultBrowseBind         = "127.0.0.1:7488"
	defaultLogFormat          = "console"
	defaultLogLevel           = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	dataDir := defaultDataDir()
	return Config{
		Paths: Paths{
			DBDir:         dataDir,
			GazetteerFile: dataDir + "/" + defaultGazetteerFileName,
			LogDir:        dataDir + "/logs",
			ExportDir:     defaultExportDir,
		},
		Ingest: Ingest{
			BatchSize:          defaultBatchSize,
			FileTimeoutSeconds: defaultFileTimeoutSeconds,
			VerifyContent:      true,
		},
		Geocode: Geocode{
			MaxDistanceKm: defaultMaxDistanceKm,
			Index:         defaultGeocodeIndex,
			CountryFormat: defaultCountryFormat,
		},
		Browse: Browse{
			Bind: defaultBrowseBind,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
