package api

import (
	"context"
	"strings"

	"exifatlas/internal/catalog"
	"exifatlas/internal/services"
)

// CatalogReader abstracts the catalog queries needed for API views.
type CatalogReader interface {
	Health(ctx context.Context) (catalog.HealthSummary, error)
	DayLocations(ctx context.Context, excludeYears []int) ([]catalog.DayLocation, error)
	PhotosForDayLocation(ctx context.Context, day, location string) ([]*catalog.PhotoRecord, error)
	GetByID(ctx context.Context, id int64) (*catalog.PhotoRecord, error)
	List(ctx context.Context, limit int, statuses ...catalog.Status) ([]*catalog.PhotoRecord, error)
	RecentRuns(ctx context.Context, limit int) ([]catalog.Run, error)
}

// CatalogService exposes read-only catalog operations returning API DTOs.
type CatalogService struct {
	store        CatalogReader
	excludeYears []int
}

// NewCatalogService wraps store. Timeline queries leave out capture years
// listed in excludeYears.
func NewCatalogService(store CatalogReader, excludeYears []int) *CatalogService {
	if store == nil {
		return nil
	}
	return &CatalogService{store: store, excludeYears: append([]int(nil), excludeYears...)}
}

// Stats returns catalog counts.
func (s *CatalogService) Stats(ctx context.Context) (Stats, error) {
	if s == nil {
		return Stats{Counts: MergeStatusCounts(nil)}, nil
	}
	health, err := s.store.Health(ctx)
	if err != nil {
		return Stats{}, err
	}
	return FromHealth(health), nil
}

// Timeline returns day/location entries filtered by search.
func (s *CatalogService) Timeline(ctx context.Context, search string) ([]TimelineEntry, error) {
	if s == nil {
		return []TimelineEntry{}, nil
	}
	groups, err := s.store.DayLocations(ctx, s.excludeYears)
	if err != nil {
		return nil, err
	}
	return FilterTimeline(FromDayLocations(groups), search), nil
}

// DayPhotos lists photos captured on day at location.
func (s *CatalogService) DayPhotos(ctx context.Context, day, location string) ([]Photo, error) {
	day, err := ParseDay(day)
	if err != nil {
		return nil, services.Wrap(services.ErrValidation, "api", "day photos", "", err)
	}
	if strings.TrimSpace(location) == "" {
		return nil, services.Wrap(services.ErrValidation, "api", "day photos", "location is required", nil)
	}
	if s == nil {
		return []Photo{}, nil
	}
	recs, err := s.store.PhotosForDayLocation(ctx, day, location)
	if err != nil {
		return nil, err
	}
	return FromPhotoRecords(recs), nil
}

// Describe fetches a single photo. A missing id returns services.ErrNotFound.
func (s *CatalogService) Describe(ctx context.Context, id int64) (*Photo, error) {
	if s == nil {
		return nil, services.Wrap(services.ErrNotFound, "api", "describe", "", nil)
	}
	rec, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, services.Wrap(services.ErrNotFound, "api", "describe", "photo not found", nil)
	}
	dto := FromPhotoRecord(rec)
	return &dto, nil
}

// Failures lists failed photos, at most limit when positive.
func (s *CatalogService) Failures(ctx context.Context, limit int) ([]Photo, error) {
	if s == nil {
		return []Photo{}, nil
	}
	recs, err := s.store.List(ctx, limit, catalog.StatusFailed)
	if err != nil {
		return nil, err
	}
	return FromPhotoRecords(recs), nil
}

// Runs returns the most recent ingest runs, newest first.
func (s *CatalogService) Runs(ctx context.Context, limit int) ([]Run, error) {
	if s == nil {
		return []Run{}, nil
	}
	runs, err := s.store.RecentRuns(ctx, limit)
	if err != nil {
		return nil, err
	}
	return FromRuns(runs), nil
}
