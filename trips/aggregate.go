package trips

import (
	"fmt"
	"sort"
	"time"

	"github.com/wvflights/flightlog-api/pkg/geo"
	"github.com/wvflights/flightlog-api/pkg/pax"
)

// GroupBy selects how trips are grouped.
type GroupBy string

const (
	ByPassenger  GroupBy = "passenger"
	ByDepartment GroupBy = "department"
	ByDivision   GroupBy = "division"
	ByMonth      GroupBy = "month"
	ByAircraft   GroupBy = "aircraft"
)

// SortBy selects the primary ordering of aggregated groups.
type SortBy string

const (
	SortTrips SortBy = "trips"
	SortHours SortBy = "hours"
	SortCost  SortBy = "cost"
	SortKey   SortBy = "key"
)

// AggregateOptions controls Aggregate.
type AggregateOptions struct {
	By              GroupBy
	Sort            SortBy
	Descending      bool
	IncludeDistance bool
	Units           geo.Units
}

// Validate checks that the grouping and ordering are known.
func (o AggregateOptions) Validate() error {
	switch o.By {
	case ByPassenger, ByDepartment, ByDivision, ByMonth, ByAircraft:
	default:
		return fmt.Errorf("unsupported grouping %q", o.By)
	}
	switch o.Sort {
	case "", SortTrips, SortHours, SortCost, SortKey:
	default:
		return fmt.Errorf("unsupported sort %q", o.Sort)
	}
	return nil
}

// Group holds the statistics of one group of trips.
//
// For passenger groups InvoicedCost is the passenger's share: each trip's
// cost divided evenly among its passengers. Trips with unknown cost are
// counted in UnknownCostTrips and excluded from InvoicedCost. InvalidPaths
// counts flight paths that could not be parsed for Distance.
type Group struct {
	Key              string   `json:"key"`
	Label            string   `json:"label"`
	Trips            int      `json:"trips"`
	FlightHours      float64  `json:"flight_hours"`
	InvoicedCost     float64  `json:"invoiced_cost"`
	UnknownCostTrips int      `json:"unknown_cost_trips"`
	Distance         *float64 `json:"distance,omitempty"`
	InvalidPaths     int      `json:"invalid_paths,omitempty"`

	paths []string
}

// Aggregate groups trips and computes per-group counts, flight hours,
// invoiced cost and optionally distance. Results are ordered by opts.Sort,
// with ties broken by ascending key. An empty input yields an empty result.
func Aggregate(trips []FleetTrip, opts AggregateOptions) ([]Group, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	index := make(map[string]int)
	groups := make([]Group, 0)
	add := func(key, label string, t FleetTrip, share float64) {
		i, ok := index[key]
		if !ok {
			i = len(groups)
			index[key] = i
			groups = append(groups, Group{Key: key, Label: label})
		}
		g := &groups[i]
		g.Trips++
		g.FlightHours += t.FlightHours
		if cost, known := t.Cost(); known {
			g.InvoicedCost += cost * share
		} else {
			g.UnknownCostTrips++
		}
		if t.FlightPath != "" {
			g.paths = append(g.paths, t.FlightPath)
		}
	}

	for _, t := range trips {
		switch opts.By {
		case ByPassenger:
			names := distinctPassengers(t)
			if len(names) == 0 {
				continue
			}
			share := 1 / float64(len(names))
			for _, name := range names {
				add(pax.Slugify(name), name, t, share)
			}
		case ByDepartment:
			add(t.Department, t.Department, t, 1)
		case ByDivision:
			if t.Division == "" {
				continue
			}
			add(t.Division, t.Division, t, 1)
		case ByMonth:
			key := monthKey(t.Date)
			add(key, monthLabel(key), t, 1)
		case ByAircraft:
			label := t.TailNo
			if t.Aircraft != nil && t.Aircraft.Name != "" {
				label = t.Aircraft.Name
			}
			add(t.TailNo, label, t, 1)
		}
	}

	if opts.IncludeDistance {
		units := opts.Units
		if units == "" {
			units = geo.NauticalMiles
		}
		for i := range groups {
			d := groupDistance(&groups[i], units)
			groups[i].Distance = &d
		}
	}
	for i := range groups {
		groups[i].paths = nil
	}

	sortGroups(groups, opts.Sort, opts.Descending)
	return groups, nil
}

func groupDistance(g *Group, units geo.Units) float64 {
	var total float64
	for _, wkt := range g.paths {
		d, err := geo.CalcDistance([]string{wkt}, units)
		if err != nil {
			g.InvalidPaths++
			continue
		}
		total += d
	}
	return total
}

func sortGroups(groups []Group, by SortBy, desc bool) {
	primary := func(a, b Group) int {
		switch by {
		case SortHours:
			return compareFloat(a.FlightHours, b.FlightHours)
		case SortCost:
			return compareFloat(a.InvoicedCost, b.InvoicedCost)
		case SortKey:
			return compareString(a.Key, b.Key)
		default:
			return compareInt(a.Trips, b.Trips)
		}
	}
	sort.SliceStable(groups, func(i, j int) bool {
		c := primary(groups[i], groups[j])
		if desc {
			c = -c
		}
		if c != 0 {
			return c < 0
		}
		return groups[i].Key < groups[j].Key
	})
}

// distinctPassengers returns the first name seen for each passenger slug on
// the trip. Cost shares are split across these, so a name listed twice is
// charged once.
func distinctPassengers(t FleetTrip) []string {
	seen := make(map[string]bool, len(t.Pax))
	names := make([]string, 0, len(t.Pax))
	for _, name := range t.Pax {
		slug := pax.Slugify(name)
		if slug == "" || seen[slug] {
			continue
		}
		seen[slug] = true
		names = append(names, name)
	}
	return names
}

func monthKey(date string) string {
	if len(date) >= 7 {
		return date[:7]
	}
	return date
}

func monthLabel(key string) string {
	m, err := time.Parse("2006-01", key)
	if err != nil {
		return key
	}
	return m.Format("Jan 2006")
}

func compareFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func compareInt(a, b int) int {
	return compareFloat(float64(a), float64(b))
}

func compareString(a, b string) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
