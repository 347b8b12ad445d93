package gazetteer

import (
	"context"
	"math"
	"testing"

	"exifatlas/internal/catalog"
)

func TestHaversineKnownDistance(t *testing.T) {
	// One degree of latitude on the 6371 km sphere.
	want := EarthRadiusKm * math.Pi / 180
	if got := HaversineKm(0, 0, 1, 0); math.Abs(got-want) > 1e-9 {
		t.Fatalf("HaversineKm = %f, want %f", got, want)
	}
	if got := HaversineKm(10, 179.9, 10, -179.9); got > 25 {
		t.Fatalf("distance across antimeridian should be short, got %f", got)
	}
}

func TestBoundingBoxesMeridianConvergence(t *testing.T) {
	boxes := BoundingBoxes(60, 10, 50)
	if len(boxes) != 1 {
		t.Fatalf("expected one box, got %+v", boxes)
	}
	b := boxes[0]
	latSpan := b.MaxLat - b.MinLat
	lonSpan := b.MaxLon - b.MinLon
	// At 60 degrees the longitude span is roughly twice the latitude span.
	if ratio := lonSpan / latSpan; ratio < 1.95 || ratio > 2.05 {
		t.Fatalf("expected lon/lat span ratio near 2, got %f", ratio)
	}
}

func TestBoundingBoxesAntimeridianSplit(t *testing.T) {
	boxes := BoundingBoxes(-17, 179.9, 50)
	if len(boxes) != 2 {
		t.Fatalf("expected split boxes, got %+v", boxes)
	}
	if boxes[0].MaxLon != 180 || boxes[1].MinLon != -180 {
		t.Fatalf("unexpected split %+v", boxes)
	}
	if boxes[1].MaxLon >= -179 || boxes[0].MinLon <= 179 {
		t.Fatalf("split boxes should hug the antimeridian, got %+v", boxes)
	}
}

func TestBoundingBoxesNearPole(t *testing.T) {
	boxes := BoundingBoxes(89.9, 45, 50)
	if len(boxes) != 1 || boxes[0].MinLon != -180 || boxes[0].MaxLon != 180 || boxes[0].MaxLat != 90 {
		t.Fatalf("expected full-longitude polar cap, got %+v", boxes)
	}
}

func backends(places []catalog.Place) map[string]Index {
	return map[string]Index{
		"memory": NewMemoryIndex(places),
		"linear": linearIndex(places),
	}
}

// linearIndex returns every place, exercising the selection logic without
// any spatial pruning.
type linearIndex []catalog.Place

func (l linearIndex) Candidates(context.Context, []Box) ([]catalog.Place, error) {
	return l, nil
}

func (l linearIndex) Len() int { return len(l) }

func TestNearestBoundaryIsInclusive(t *testing.T) {
	place := catalog.Place{Name: "Edge", Lat: 10, Lon: 20, Population: 1}
	exact := 10 + degrees(50/EarthRadiusKm)
	for name, idx := range backends([]catalog.Place{place}) {
		t.Run(name, func(t *testing.T) {
			match, ok, err := Nearest(context.Background(), idx, exact, 20, 50)
			if err != nil {
				t.Fatalf("Nearest failed: %v", err)
			}
			if !ok || match.Place.Name != "Edge" {
				t.Fatalf("expected boundary place to resolve, got %+v %v", match, ok)
			}
			if _, ok, _ := Nearest(context.Background(), idx, exact+0.001, 20, 50); ok {
				t.Fatal("place just beyond the radius must not resolve")
			}
		})
	}
}

func TestNearestAcrossAntimeridian(t *testing.T) {
	places := []catalog.Place{
		{Name: "Taveuni", Lat: -16.85, Lon: -179.95, Population: 100},
		{Name: "Far", Lat: -16.85, Lon: 170, Population: 100000},
	}
	for name, idx := range backends(places) {
		t.Run(name, func(t *testing.T) {
			match, ok, err := Nearest(context.Background(), idx, -16.85, 179.95, 50)
			if err != nil {
				t.Fatalf("Nearest failed: %v", err)
			}
			if !ok || match.Place.Name != "Taveuni" {
				t.Fatalf("expected Taveuni across the antimeridian, got %+v %v", match, ok)
			}
		})
	}
}

func TestNearestNearPole(t *testing.T) {
	places := []catalog.Place{{Name: "Camp", Lat: 89.8, Lon: -150}}
	for name, idx := range backends(places) {
		t.Run(name, func(t *testing.T) {
			match, ok, err := Nearest(context.Background(), idx, 89.9, 30, 50)
			if err != nil {
				t.Fatalf("Nearest failed: %v", err)
			}
			if !ok || match.Place.Name != "Camp" {
				t.Fatalf("expected polar match across longitudes, got %+v %v", match, ok)
			}
		})
	}
}

func TestNearestTieBreak(t *testing.T) {
	places := []catalog.Place{
		{Name: "Bravo", Lat: 0, Lon: 0.1, Population: 500},
		{Name: "Alpha", Lat: 0, Lon: -0.1, Population: 500},
		{Name: "Small", Lat: 0.1, Lon: 0, Population: 10},
	}
	for name, idx := range backends(places) {
		t.Run(name, func(t *testing.T) {
			match, ok, err := Nearest(context.Background(), idx, 0, 0, 50)
			if err != nil || !ok {
				t.Fatalf("Nearest = %v %v", ok, err)
			}
			if match.Place.Name != "Alpha" {
				t.Fatalf("expected population then name tie-break to pick Alpha, got %s", match.Place.Name)
			}
		})
	}
}

func TestNearestEmptyIndex(t *testing.T) {
	_, ok, err := Nearest(context.Background(), NewMemoryIndex(nil), 39, -84, 50)
	if err != nil || ok {
		t.Fatalf("expected no match, got %v %v", ok, err)
	}
}

func TestLabelFormatting(t *testing.T) {
	tests := []struct {
		name, admin, country, format, want string
	}{
		{"Cincinnati", "OH", "US", CountryAlpha3, "Cincinnati, OH, USA"},
		{"Cincinnati", "OH", "us", CountryAlpha2, "Cincinnati, OH, US"},
		{"Monaco", "", "MC", CountryAlpha3, "Monaco, MCO"},
		{"Nowhere", "", "", CountryAlpha3, "Nowhere"},
	}
	for _, tt := range tests {
		if got := Label(tt.name, tt.admin, tt.country, tt.format); got != tt.want {
			t.Fatalf("Label(%q,%q,%q,%q) = %q, want %q", tt.name, tt.admin, tt.country, tt.format, got, tt.want)
		}
	}
}
