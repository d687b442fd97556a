// Package geo provides flight path parsing and geodesic distance calculations.
package geo

import (
	"errors"
	"math"
)

const (
	// EarthRadiusMeters is the mean radius of Earth used for path lengths.
	EarthRadiusMeters = 6371008.8
	// EarthRadiusKm is the mean radius of Earth in kilometers.
	EarthRadiusKm = EarthRadiusMeters / 1000
	// EarthRadiusNM is the mean radius of Earth in nautical miles.
	EarthRadiusNM = EarthRadiusMeters / 1852
)

// Units selects the unit a distance is reported in.
type Units string

const (
	NauticalMiles Units = "nauticalmiles"
	Kilometers    Units = "kilometers"
)

// ParseUnits maps a query value onto Units. Unknown or empty values fall back
// to nautical miles.
func ParseUnits(s string) Units {
	switch Units(s) {
	case Kilometers:
		return Kilometers
	default:
		return NauticalMiles
	}
}

// Radius returns the Earth radius expressed in u.
func (u Units) Radius() float64 {
	if u == Kilometers {
		return EarthRadiusKm
	}
	return EarthRadiusNM
}

// Haversine calculates the great-circle distance between two points
// on Earth given their latitude and longitude in decimal degrees.
// Returns the distance in nautical miles.
func Haversine(lat1, lon1, lat2, lon2 float64) float64 {
	return HaversineWithRadius(lat1, lon1, lat2, lon2, EarthRadiusNM)
}

// HaversineKm calculates the great-circle distance in kilometers.
func HaversineKm(lat1, lon1, lat2, lon2 float64) float64 {
	return HaversineWithRadius(lat1, lon1, lat2, lon2, EarthRadiusKm)
}

// HaversineWithRadius calculates the great-circle distance using a custom radius.
func HaversineWithRadius(lat1, lon1, lat2, lon2, radius float64) float64 {
	lat1Rad := degreesToRadians(lat1)
	lat2Rad := degreesToRadians(lat2)
	deltaLat := degreesToRadians(lat2 - lat1)
	deltaLon := degreesToRadians(lon2 - lon1)

	a := math.Sin(deltaLat/2)*math.Sin(deltaLat/2) +
		math.Cos(lat1Rad)*math.Cos(lat2Rad)*
			math.Sin(deltaLon/2)*math.Sin(deltaLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return radius * c
}

func degreesToRadians(degrees float64) float64 {
	return degrees * math.Pi / 180
}

// DistanceBetween calculates the distance between two points in the given units.
func DistanceBetween(from, to Point, units Units) float64 {
	return HaversineWithRadius(from.Lat, from.Lon, to.Lat, to.Lon, units.Radius())
}

// PathLength sums the great-circle length of consecutive segments of path.
// Paths with fewer than two points have zero length.
func PathLength(path []Point, units Units) float64 {
	var total float64
	for i := 1; i < len(path); i++ {
		total += DistanceBetween(path[i-1], path[i], units)
	}
	return total
}

// CalcDistance parses every WKT line string in paths and returns their summed
// geodesic length. Degenerate paths (fewer than two points) are skipped.
// Paths that fail to parse are skipped as well; their FormatErrors are joined
// into the returned error while the total over the remaining paths is still
// returned.
func CalcDistance(paths []string, units Units) (float64, error) {
	var (
		total float64
		errs  []error
	)
	for _, wkt := range paths {
		path, err := ParseWKT(wkt)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if len(path) < 2 {
			continue
		}
		total += PathLength(path, units)
	}
	return total, errors.Join(errs...)
}
