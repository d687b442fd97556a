package geo

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

const lineStringToken = "LINESTRING"

// Point is a coordinate in decimal degrees.
type Point struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// IsValid returns true if the coordinates are within valid ranges.
// Latitude must be between -90 and 90, longitude between -180 and 180.
func (p Point) IsValid() bool {
	return p.Lat >= -90 && p.Lat <= 90 && p.Lon >= -180 && p.Lon <= 180
}

// FormatError reports WKT input that cannot be parsed as a line string.
type FormatError struct {
	Input  string
	Reason string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("invalid WKT: %s", e.Reason)
}

// ParseWKT parses a LINESTRING(lon lat, lon lat, ...) string into points in
// input order. Coordinates are not range checked; numeric tokens that do not
// parse become NaN.
func ParseWKT(wkt string) ([]Point, error) {
	if !strings.HasPrefix(wkt, lineStringToken) {
		return nil, &FormatError{Input: wkt, Reason: "unsupported WKT type"}
	}

	body := strings.TrimSpace(strings.Replace(strings.TrimSpace(wkt), lineStringToken, "", 1))
	body = strings.NewReplacer("(", "", ")", "").Replace(body)
	if strings.TrimSpace(body) == "" {
		return []Point{}, nil
	}

	pairs := strings.Split(body, ",")
	points := make([]Point, 0, len(pairs))
	for _, pair := range pairs {
		fields := strings.Fields(pair)
		// WKT order is x y, i.e. lon lat.
		points = append(points, Point{
			Lat: parseCoord(fields, 1),
			Lon: parseCoord(fields, 0),
		})
	}
	return points, nil
}

func parseCoord(fields []string, i int) float64 {
	if i >= len(fields) {
		return math.NaN()
	}
	v, err := strconv.ParseFloat(fields[i], 64)
	if err != nil {
		return math.NaN()
	}
	return v
}
