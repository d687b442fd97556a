package trips

import "strings"

// Matches reports whether t satisfies every predicate set in p.
//
// Aircraft, department and division are exact matches. Dates are inclusive
// bounds compared as yyyy-MM-dd strings. Search is a case-insensitive
// substring match over the route, passengers, department, division and
// comments; absent fields are skipped rather than contributing any text.
func Matches(t Trip, p SearchParams) bool {
	if p.Aircraft != "" && t.TailNo != p.Aircraft {
		return false
	}
	if p.Department != "" && t.Department != p.Department {
		return false
	}
	if p.Division != "" && t.Division != p.Division {
		return false
	}
	if p.StartDate != "" && t.Date < p.StartDate {
		return false
	}
	if p.EndDate != "" && t.Date > p.EndDate {
		return false
	}
	if p.Search != "" {
		haystack := strings.ToLower(SearchText(t))
		if !strings.Contains(haystack, strings.ToLower(p.Search)) {
			return false
		}
	}
	return true
}

// SearchText joins the searchable fields of t that are present with a single
// space.
func SearchText(t Trip) string {
	fields := make([]string, 0, 5)
	for _, f := range []string{t.Route, t.Passengers, t.Department, t.Division, t.Comments} {
		if f != "" {
			fields = append(fields, f)
		}
	}
	return strings.Join(fields, " ")
}

// Filter returns the trips matching p, in input order. The input slice is
// not modified.
func Filter(trips []FleetTrip, p SearchParams) []FleetTrip {
	out := make([]FleetTrip, 0, len(trips))
	for _, t := range trips {
		if Matches(t.Trip, p) {
			out = append(out, t)
		}
	}
	return out
}

// FilterPassenger returns the trips whose passenger field names the
// passenger with the given slug.
func FilterPassenger(trips []FleetTrip, slug string) []FleetTrip {
	out := make([]FleetTrip, 0)
	for _, t := range trips {
		if hasPax(t, slug) {
			out = append(out, t)
		}
	}
	return out
}
