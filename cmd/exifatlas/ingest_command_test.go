package main

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"exifatlas/internal/api"
	"exifatlas/internal/catalog"
	"exifatlas/internal/services"
)

func TestIngestThenBrowseCommands(t *testing.T) {
	env := setupCLITestEnv(t)
	env.writePhotos(t)

	out, _, err := env.run(t, "ingest", env.photoDir, "--no-progress")
	if err != nil {
		t.Fatalf("ingest: %v", err)
	}
	requireContains(t, out, "Ingest complete")
	requireContains(t, out, filepath.Join(env.cfg.Paths.DBDir, "photos.db"))

	out, _, err = env.run(t, "--folder", env.photoDir, "status", "--json")
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	var stats api.Stats
	if err := json.Unmarshal([]byte(out), &stats); err != nil {
		t.Fatalf("decode status: %v\n%s", err, out)
	}
	if stats.Total != 3 || stats.Counts["processed"] != 2 || stats.Counts["failed"] != 1 || stats.Located != 1 {
		t.Fatalf("unexpected stats %+v", stats)
	}

	out, _, err = env.run(t, "--folder", env.photoDir, "status")
	if err != nil {
		t.Fatalf("status table: %v", err)
	}
	requireContains(t, out, "Processed")
	requireContains(t, out, "TOTAL")

	out, _, err = env.run(t, "--folder", env.photoDir, "timeline", "--json")
	if err != nil {
		t.Fatalf("timeline: %v", err)
	}
	var timeline api.TimelineResponse
	if err := json.Unmarshal([]byte(out), &timeline); err != nil {
		t.Fatalf("decode timeline: %v", err)
	}
	if len(timeline.Entries) != 1 || timeline.Entries[0].Day != "2023-05-01" || timeline.Entries[0].Location != "Cincinnati, OH, USA" {
		t.Fatalf("unexpected timeline %+v", timeline.Entries)
	}

	out, _, err = env.run(t, "--folder", env.photoDir, "timeline", "--day", "2023-05-01", "--location", "Cincinnati, OH, USA")
	if err != nil {
		t.Fatalf("timeline photos: %v", err)
	}
	requireContains(t, out, "cincy.jpg")
	requireContains(t, out, "Pixel 8")

	out, _, err = env.run(t, "--folder", env.photoDir, "timeline", "--search", "nowhere")
	if err != nil {
		t.Fatalf("timeline search: %v", err)
	}
	requireContains(t, out, "No located photos")

	out, _, err = env.run(t, "--folder", env.photoDir, "status", "--failed")
	if err != nil {
		t.Fatalf("status failed: %v", err)
	}
	requireContains(t, out, "corrupt.jpg")
	requireContains(t, out, string(services.KindUnsupportedFormat))

	out, _, err = env.run(t, "--folder", env.photoDir, "runs", "--json")
	if err != nil {
		t.Fatalf("runs: %v", err)
	}
	var runs api.RunListResponse
	if err := json.Unmarshal([]byte(out), &runs); err != nil {
		t.Fatalf("decode runs: %v", err)
	}
	if len(runs.Runs) != 1 || runs.Runs[0].Seen != 3 || runs.Runs[0].Failed != 1 {
		t.Fatalf("unexpected runs %+v", runs.Runs)
	}
}

func TestIngestRerunSkipsUnchanged(t *testing.T) {
	env := setupCLITestEnv(t)
	env.writePhotos(t)

	if _, _, err := env.run(t, "ingest", env.photoDir, "--no-progress"); err != nil {
		t.Fatalf("first ingest: %v", err)
	}
	out, _, err := env.run(t, "process", env.photoDir, "--json")
	if err != nil {
		t.Fatalf("second ingest: %v", err)
	}
	var summary ingestSummaryView
	if err := json.Unmarshal([]byte(out), &summary); err != nil {
		t.Fatalf("decode summary: %v\n%s", err, out)
	}
	if summary.Seen != 3 || summary.Skipped != 3 || summary.Processed != 0 || summary.Failed != 0 || summary.Interrupted {
		t.Fatalf("unexpected rerun summary %+v", summary)
	}
}

func TestIngestHonoursDBFlag(t *testing.T) {
	env := setupCLITestEnv(t)
	env.writePhotos(t)
	dbPath := filepath.Join(env.baseDir, "custom", "atlas.db")

	if _, _, err := env.run(t, "--db", dbPath, "ingest", env.photoDir, "--no-progress", "--skip-location"); err != nil {
		t.Fatalf("ingest: %v", err)
	}
	if _, err := os.Stat(dbPath); err != nil {
		t.Fatalf("expected catalog at %s: %v", dbPath, err)
	}
	out, _, err := env.run(t, "--db", dbPath, "status", "--json")
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	var stats api.Stats
	if err := json.Unmarshal([]byte(out), &stats); err != nil {
		t.Fatalf("decode status: %v", err)
	}
	if stats.Total != 3 || stats.Located != 0 {
		t.Fatalf("skip-location run should store no places, got %+v", stats)
	}
}

func TestIngestValidatesFlags(t *testing.T) {
	env := setupCLITestEnv(t)

	cases := [][]string{
		{"ingest", env.photoDir, "--batch-size", "0"},
		{"ingest", env.photoDir, "--max-distance", "-1"},
		{"ingest", env.photoDir, "--file-timeout", "0s"},
	}
	for _, args := range cases {
		_, _, err := env.run(t, args...)
		if !errors.Is(err, services.ErrValidation) {
			t.Fatalf("%v: expected validation error, got %v", args, err)
		}
	}
}

func TestIngestRejectsMissingFolder(t *testing.T) {
	env := setupCLITestEnv(t)

	_, _, err := env.run(t, "ingest", filepath.Join(env.baseDir, "missing"))
	if !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected preflight configuration error, got %v", err)
	}
	if !strings.Contains(err.Error(), "Photo folder") {
		t.Fatalf("expected photo folder in error, got %v", err)
	}
}

func TestIngestRefusesLockedCatalog(t *testing.T) {
	env := setupCLITestEnv(t)
	env.writePhotos(t)

	if err := os.MkdirAll(env.cfg.Paths.DBDir, 0o755); err != nil {
		t.Fatalf("mkdir db dir: %v", err)
	}
	lock, err := catalog.AcquireWriterLock(env.cfg.DBPathForFolder(env.photoDir))
	if err != nil {
		t.Fatalf("acquire lock: %v", err)
	}
	defer lock.Release()

	_, _, err = env.run(t, "ingest", env.photoDir, "--no-progress")
	if !errors.Is(err, catalog.ErrLocked) {
		t.Fatalf("expected ErrLocked, got %v", err)
	}
}
