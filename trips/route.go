package trips

import (
	"regexp"
	"strings"
)

var legSeparator = regexp.MustCompile(`-| to `)

// Waypoints splits a dash-delimited route into its waypoint codes.
func Waypoints(route string) []string {
	return strings.Split(route, "-")
}

// IsRoundTrip reports whether the waypoint sequence reads the same in both
// directions, e.g. "CRW-LWB-CRW".
func IsRoundTrip(route string) bool {
	wp := Waypoints(route)
	for i, j := 0, len(wp)-1; i < j; i, j = i+1, j-1 {
		if wp[i] != wp[j] {
			return false
		}
	}
	return true
}

// FormatRoute renders a route for display. One-way routes use arrows
// ("CRW → LWB"); round trips show the outbound half ("CRW ⇄ LWB").
func FormatRoute(route string) string {
	if !IsRoundTrip(route) {
		return strings.ReplaceAll(route, "-", " → ")
	}
	wp := Waypoints(route)
	half := (len(wp) + 1) / 2
	return strings.Join(wp[:half], " ⇄ ")
}

// FlightCount returns the number of legs flown on a route.
func FlightCount(route string) int {
	return len(legSeparator.Split(route, -1)) - 1
}
