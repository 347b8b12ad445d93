package gazetteer

import "math"

// EarthRadiusKm is the mean Earth radius used for every distance.
const EarthRadiusKm = 6371.0

// DistanceToleranceKm absorbs float error at the radius boundary (1 mm).
const DistanceToleranceKm = 1e-6

// boxPaddingDeg widens query boxes so points sitting exactly on an edge are
// not lost to rounding; the haversine check decides the final answer.
const boxPaddingDeg = 1e-6

func radians(deg float64) float64 { return deg * math.Pi / 180 }
func degrees(rad float64) float64 { return rad * 180 / math.Pi }

// HaversineKm returns the great-circle distance between two points.
func HaversineKm(lat1, lon1, lat2, lon2 float64) float64 {
	phi1, phi2 := radians(lat1), radians(lat2)
	dPhi := radians(lat2 - lat1)
	dLambda := radians(lon2 - lon1)
	a := math.Sin(dPhi/2)*math.Sin(dPhi/2) +
		math.Cos(phi1)*math.Cos(phi2)*math.Sin(dLambda/2)*math.Sin(dLambda/2)
	a = math.Min(1, math.Max(0, a))
	return 2 * EarthRadiusKm * math.Asin(math.Sqrt(a))
}

// Box is a latitude/longitude rectangle with MinLon <= MaxLon.
type Box struct {
	MinLat, MaxLat float64
	MinLon, MaxLon float64
}

// BoundingBoxes returns the rectangles covering every point within radiusKm
// of (lat, lon). The result has two boxes when the circle crosses the
// antimeridian and spans all longitudes when it reaches a pole.
func BoundingBoxes(lat, lon, radiusKm float64) []Box {
	angular := radiusKm / EarthRadiusKm
	dLat := degrees(angular) + boxPaddingDeg
	minLat, maxLat := lat-dLat, lat+dLat

	if minLat <= -90 || maxLat >= 90 || angular >= math.Pi/2 {
		return []Box{{
			MinLat: math.Max(minLat, -90),
			MaxLat: math.Min(maxLat, 90),
			MinLon: -180,
			MaxLon: 180,
		}}
	}

	ratio := math.Sin(angular) / math.Cos(radians(lat))
	if ratio >= 1 {
		return []Box{{MinLat: minLat, MaxLat: maxLat, MinLon: -180, MaxLon: 180}}
	}
	dLon := degrees(math.Asin(ratio)) + boxPaddingDeg
	minLon, maxLon := lon-dLon, lon+dLon

	switch {
	case minLon < -180:
		return []Box{
			{MinLat: minLat, MaxLat: maxLat, MinLon: minLon + 360, MaxLon: 180},
			{MinLat: minLat, MaxLat: maxLat, MinLon: -180, MaxLon: maxLon},
		}
	case maxLon > 180:
		return []Box{
			{MinLat: minLat, MaxLat: maxLat, MinLon: minLon, MaxLon: 180},
			{MinLat: minLat, MaxLat: maxLat, MinLon: -180, MaxLon: maxLon - 360},
		}
	default:
		return []Box{{MinLat: minLat, MaxLat: maxLat, MinLon: minLon, MaxLon: maxLon}}
	}
}
