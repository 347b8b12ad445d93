package api

import (
	"context"
	"errors"
	"testing"

	"exifatlas/internal/catalog"
	"exifatlas/internal/services"
)

type mockCatalogReader struct {
	health       catalog.HealthSummary
	groups       []catalog.DayLocation
	photos       []*catalog.PhotoRecord
	runs         []catalog.Run
	err          error
	excludeYears []int
	dayArgs      [2]string
	statuses     []catalog.Status
}

func (m *mockCatalogReader) Health(context.Context) (catalog.HealthSummary, error) {
	return m.health, m.err
}

func (m *mockCatalogReader) DayLocations(_ context.Context, excludeYears []int) ([]catalog.DayLocation, error) {
	m.excludeYears = excludeYears
	return m.groups, m.err
}

func (m *mockCatalogReader) PhotosForDayLocation(_ context.Context, day, location string) ([]*catalog.PhotoRecord, error) {
	m.dayArgs = [2]string{day, location}
	return m.photos, m.err
}

func (m *mockCatalogReader) GetByID(_ context.Context, id int64) (*catalog.PhotoRecord, error) {
	for _, p := range m.photos {
		if p.ID == id {
			return p, m.err
		}
	}
	return nil, m.err
}

func (m *mockCatalogReader) List(_ context.Context, _ int, statuses ...catalog.Status) ([]*catalog.PhotoRecord, error) {
	m.statuses = statuses
	return m.photos, m.err
}

func (m *mockCatalogReader) RecentRuns(context.Context, int) ([]catalog.Run, error) {
	return m.runs, m.err
}

func TestCatalogServiceTimeline(t *testing.T) {
	reader := &mockCatalogReader{groups: []catalog.DayLocation{
		{Day: "2023-05-01", Location: "Cincinnati, OH, USA", PhotoCount: 2},
		{Day: "2023-05-02", Location: "Straße, BY, DEU", PhotoCount: 1},
		{Day: "2023-05-03", Location: "Covington, KY, USA", PhotoCount: 4},
	}}
	svc := NewCatalogService(reader, []int{1999})

	all, err := svc.Timeline(context.Background(), "")
	if err != nil || len(all) != 3 {
		t.Fatalf("Timeline = %v, %v", all, err)
	}
	if len(reader.excludeYears) != 1 || reader.excludeYears[0] != 1999 {
		t.Fatalf("exclude years not forwarded: %v", reader.excludeYears)
	}

	tests := map[string]int{
		"cincinnati": 1,
		"  USA ":     2,
		"STRASSE":    1,
		"paris":      0,
	}
	for search, want := range tests {
		got, err := svc.Timeline(context.Background(), search)
		if err != nil {
			t.Fatalf("Timeline(%q) failed: %v", search, err)
		}
		if len(got) != want {
			t.Fatalf("Timeline(%q) = %d entries, want %d", search, len(got), want)
		}
	}
}

func TestCatalogServiceDayPhotosValidates(t *testing.T) {
	reader := &mockCatalogReader{photos: []*catalog.PhotoRecord{{ID: 1, Path: "/p/a.jpg", Status: catalog.StatusProcessed}}}
	svc := NewCatalogService(reader, nil)

	if _, err := svc.DayPhotos(context.Background(), "2023-13-01", "X"); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error for bad day, got %v", err)
	}
	if _, err := svc.DayPhotos(context.Background(), "2023-05-01", " "); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error for empty location, got %v", err)
	}
	photos, err := svc.DayPhotos(context.Background(), " 2023-05-01 ", "Cincinnati, OH, USA")
	if err != nil || len(photos) != 1 {
		t.Fatalf("DayPhotos = %v, %v", photos, err)
	}
	if reader.dayArgs != [2]string{"2023-05-01", "Cincinnati, OH, USA"} {
		t.Fatalf("unexpected query args %v", reader.dayArgs)
	}
}

func TestCatalogServiceDescribe(t *testing.T) {
	reader := &mockCatalogReader{photos: []*catalog.PhotoRecord{{ID: 4, Path: "/p/a.jpg", Filename: "a.jpg"}}}
	svc := NewCatalogService(reader, nil)
	photo, err := svc.Describe(context.Background(), 4)
	if err != nil || photo.Filename != "a.jpg" {
		t.Fatalf("Describe = %+v, %v", photo, err)
	}
	if _, err := svc.Describe(context.Background(), 5); !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestCatalogServiceFailuresAndErrors(t *testing.T) {
	reader := &mockCatalogReader{}
	svc := NewCatalogService(reader, nil)
	if _, err := svc.Failures(context.Background(), 10); err != nil {
		t.Fatalf("Failures failed: %v", err)
	}
	if len(reader.statuses) != 1 || reader.statuses[0] != catalog.StatusFailed {
		t.Fatalf("expected failed filter, got %v", reader.statuses)
	}

	reader.err = errors.New("db gone")
	if _, err := svc.Stats(context.Background()); err == nil {
		t.Fatal("expected Stats error")
	}
	if _, err := svc.Runs(context.Background(), 5); err == nil {
		t.Fatal("expected Runs error")
	}
}

func TestNilCatalogService(t *testing.T) {
	var svc *CatalogService
	if NewCatalogService(nil, nil) != nil {
		t.Fatal("expected nil service for nil reader")
	}
	stats, err := svc.Stats(context.Background())
	if err != nil || stats.Counts["processed"] != 0 {
		t.Fatalf("nil Stats = %+v, %v", stats, err)
	}
	if runs, err := svc.Runs(context.Background(), 1); err != nil || runs == nil {
		t.Fatalf("nil Runs = %v, %v", runs, err)
	}
}

func TestTimelineDays(t *testing.T) {
	days := TimelineDays([]TimelineEntry{{Day: "a"}, {Day: "b"}, {Day: "a"}, {Day: "c"}})
	if len(days) != 3 || days[0] != "a" || days[2] != "c" {
		t.Fatalf("TimelineDays = %v", days)
	}
}
