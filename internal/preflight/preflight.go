package preflight

import (
	"strings"

	"exifatlas/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	// Optional results never block a run.
	Optional bool
	Detail   string
}

// RunAll executes the preflight checks for cfg. Root is the photo folder to
// ingest; an empty root skips that check.
func RunAll(cfg *config.Config, root string) []Result {
	if cfg == nil {
		return nil
	}

	var results []Result

	results = append(results, CheckDirectoryAccess("Catalog directory", cfg.Paths.DBDir))

	if strings.TrimSpace(root) != "" {
		results = append(results, CheckDirectoryReadable("Photo folder", root))
	}

	gazetteer := CheckFileReadable("Gazetteer file", cfg.Paths.GazetteerFile)
	gazetteer.Optional = true
	results = append(results, gazetteer)

	return results
}

// Blocking returns the failed results that are not optional.
func Blocking(results []Result) []Result {
	var out []Result
	for _, r := range results {
		if !r.Passed && !r.Optional {
			out = append(out, r)
		}
	}
	return out
}
