package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"exifatlas/internal/config"
	"exifatlas/internal/testsupport"
)

type cliTestEnv struct {
	cfg        *config.Config
	configPath string
	photoDir   string
	baseDir    string
}

func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()

	cfg := testsupport.NewConfig(t, testsupport.WithGazetteer(testsupport.Cincinnati))
	base := testsupport.BaseDir(cfg)
	homeDir := filepath.Join(base, "home")
	if err := os.MkdirAll(homeDir, 0o755); err != nil {
		t.Fatalf("mkdir home: %v", err)
	}
	t.Setenv("HOME", homeDir)
	t.Setenv("EXIFATLAS_DB_DIR", "")
	t.Setenv("EXIFATLAS_GAZETTEER", "")

	configPath := filepath.Join(homeDir, ".config", "exifatlas", "config.toml")
	writeTestConfig(t, configPath, cfg)

	photoDir := filepath.Join(base, "photos")
	if err := os.MkdirAll(photoDir, 0o755); err != nil {
		t.Fatalf("mkdir photos: %v", err)
	}

	return &cliTestEnv{
		cfg:        cfg,
		configPath: configPath,
		photoDir:   photoDir,
		baseDir:    base,
	}
}

// writePhotos lays down one located photo, one without GPS, one corrupt file
// and one ignored text file.
func (e *cliTestEnv) writePhotos(t *testing.T) {
	t.Helper()
	testsupport.WriteBytes(t, filepath.Join(e.photoDir, "cincy.jpg"), testsupport.JPEGWithExif(testsupport.ExifFixture{
		Model:            "Pixel 8",
		DateTimeOriginal: "2023:05:01 14:22:10",
		GPS:              &[2]float64{39.1031, -84.5120},
	}))
	testsupport.WriteBytes(t, filepath.Join(e.photoDir, "nogps.jpg"), testsupport.JPEGWithExif(testsupport.ExifFixture{
		Model:            "Canon EOS R5",
		DateTimeOriginal: "2023:05:02 09:00:00",
	}))
	testsupport.WriteFile(t, filepath.Join(e.photoDir, "corrupt.jpg"), 2048)
	testsupport.WriteFile(t, filepath.Join(e.photoDir, "notes.txt"), 64)
}

func (e *cliTestEnv) run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	return runCLI(t, args, e.configPath)
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	return runCLIContext(t, context.Background(), args, configPath)
}

func runCLIContext(t *testing.T, ctx context.Context, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.ExecuteContext(ctx)
	return stdout.String(), stderr.String(), err
}

func writeTestConfig(t *testing.T, path string, cfg *config.Config) {
	t.Helper()
	data, err := toml.Marshal(cfg)
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir config dir: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}
