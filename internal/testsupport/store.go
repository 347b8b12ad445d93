package testsupport

import (
	"path/filepath"
	"testing"

	"exifatlas/internal/catalog"
	"exifatlas/internal/config"
)

// DBPath returns the catalog path used by MustOpenStore.
func DBPath(cfg *config.Config) string {
	return filepath.Join(cfg.Paths.DBDir, "photos.db")
}

// MustOpenStore opens the catalog for cfg and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *catalog.Store {
	t.Helper()
	store, err := catalog.Open(DBPath(cfg))
	if err != nil {
		t.Fatalf("catalog.Open: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})
	return store
}
