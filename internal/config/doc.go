// Package config reads exifatlas settings from a TOML file.
//
// A missing file is not an error: Default supplies every value, and the
// EXIFATLAS_DB_DIR and EXIFATLAS_GAZETTEER environment variables override the
// catalog directory and the GeoNames file. Load expands "~" in paths, fills
// zero values, and rejects settings the ingest run could not honour, such as
// a non-positive batch size or an unknown gazetteer index.
package config
