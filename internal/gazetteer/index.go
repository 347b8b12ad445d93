package gazetteer

import (
	"context"
	"fmt"

	"github.com/tidwall/rtree"

	"exifatlas/internal/catalog"
)

// Backend names accepted by geocode.index.
const (
	BackendMemory = "memory"
	BackendSQLite = "sqlite"
)

// Index returns candidate places inside a set of boxes. Candidates may
// include points outside the radius; callers filter by distance.
type Index interface {
	Candidates(ctx context.Context, boxes []Box) ([]catalog.Place, error)
	Len() int
}

// MemoryIndex is an R-tree over place coordinates, keyed (lon, lat).
type MemoryIndex struct {
	tree rtree.RTreeG[catalog.Place]
}

// NewMemoryIndex builds an R-tree from places.
func NewMemoryIndex(places []catalog.Place) *MemoryIndex {
	idx := &MemoryIndex{}
	for _, p := range places {
		pt := [2]float64{p.Lon, p.Lat}
		idx.tree.Insert(pt, pt, p)
	}
	return idx
}

func (m *MemoryIndex) Candidates(ctx context.Context, boxes []Box) ([]catalog.Place, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var out []catalog.Place
	for _, b := range boxes {
		m.tree.Search([2]float64{b.MinLon, b.MinLat}, [2]float64{b.MaxLon, b.MaxLat},
			func(_, _ [2]float64, p catalog.Place) bool {
				out = append(out, p)
				return true
			})
	}
	return out, nil
}

func (m *MemoryIndex) Len() int {
	return m.tree.Len()
}

// SQLiteIndex queries the catalog's places table through its (lat, lon)
// index.
type SQLiteIndex struct {
	store *catalog.Store
	count int
}

// NewSQLiteIndex wraps store. count is reported by Len.
func NewSQLiteIndex(store *catalog.Store, count int) *SQLiteIndex {
	return &SQLiteIndex{store: store, count: count}
}

func (s *SQLiteIndex) Candidates(ctx context.Context, boxes []Box) ([]catalog.Place, error) {
	var out []catalog.Place
	for _, b := range boxes {
		places, err := s.store.PlacesInBox(ctx, b.MinLat, b.MaxLat, b.MinLon, b.MaxLon)
		if err != nil {
			return nil, fmt.Errorf("places in box: %w", err)
		}
		out = append(out, places...)
	}
	return out, nil
}

func (s *SQLiteIndex) Len() int {
	return s.count
}

// Match is the nearest place to a query point.
type Match struct {
	Place      catalog.Place
	DistanceKm float64
}

// distanceTieKm treats distances this close as equal for tie-breaking.
const distanceTieKm = 1e-9

// better orders matches by distance, then larger population, then name.
func better(a, b Match) bool {
	if d := a.DistanceKm - b.DistanceKm; d < -distanceTieKm || d > distanceTieKm {
		return d < 0
	}
	if a.Place.Population != b.Place.Population {
		return a.Place.Population > b.Place.Population
	}
	return a.Place.Name < b.Place.Name
}

// Nearest finds the closest place within maxDistanceKm of (lat, lon).
func Nearest(ctx context.Context, idx Index, lat, lon, maxDistanceKm float64) (Match, bool, error) {
	candidates, err := idx.Candidates(ctx, BoundingBoxes(lat, lon, maxDistanceKm))
	if err != nil {
		return Match{}, false, err
	}
	var (
		best  Match
		found bool
	)
	for _, p := range candidates {
		d := HaversineKm(lat, lon, p.Lat, p.Lon)
		if d > maxDistanceKm+DistanceToleranceKm {
			continue
		}
		m := Match{Place: p, DistanceKm: d}
		if !found || better(m, best) {
			best, found = m, true
		}
	}
	return best, found, nil
}
