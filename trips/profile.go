package trips

import (
	"github.com/wvflights/flightlog-api/pkg/geo"
	"github.com/wvflights/flightlog-api/pkg/pax"
)

// PassengerProfile summarises the trips taken by one passenger.
type PassengerProfile struct {
	Slug             string      `json:"slug"`
	Name             string      `json:"name"`
	TripCount        int         `json:"trip_count"`
	FlightHours      float64     `json:"flight_hours"`
	DistanceNM       float64     `json:"distance_nm"`
	DistanceKM       float64     `json:"distance_km"`
	PassengerCost    float64     `json:"passenger_cost"`
	UnknownCostTrips int         `json:"unknown_cost_trips"`
	Trips            []FleetTrip `json:"trips"`
}

// Summary holds fleet-wide totals.
type Summary struct {
	Trips       int     `json:"trips"`
	Flights     int     `json:"flights"`
	FlightHours float64 `json:"flight_hours"`
	Passengers  int     `json:"passengers"`
	Aircraft    int     `json:"aircraft"`
	FirstDate   string  `json:"first_date,omitempty"`
	LastDate    string  `json:"last_date,omitempty"`
	DistanceNM  float64 `json:"distance_nm"`
	DistanceKM  float64 `json:"distance_km"`
}

// TripDay is every trip one aircraft flew on one date.
type TripDay struct {
	Aircraft    Aircraft     `json:"aircraft"`
	Date        string       `json:"date"`
	Trips       []FleetTrip  `json:"trips"`
	FlightPath  string       `json:"flight_path,omitempty"`
	FlightHours float64      `json:"flight_hours"`
	Sources     []DataSource `json:"sources"`
}

func hasPax(t FleetTrip, slug string) bool {
	return pax.Has(t.Passengers, slug)
}

// FlightPaths returns the non-empty flight paths of trips.
func FlightPaths(trips []FleetTrip) []string {
	paths := make([]string, 0, len(trips))
	for _, t := range trips {
		if t.FlightPath != "" {
			paths = append(paths, t.FlightPath)
		}
	}
	return paths
}

// TotalHours sums the flight hours of trips.
func TotalHours(trips []FleetTrip) float64 {
	var total float64
	for _, t := range trips {
		total += t.FlightHours
	}
	return total
}

// BuildPassengerProfile selects the trips naming slug and summarises them.
// The display name comes from the first matching trip. It returns nil when
// no trip names the passenger. Flight paths that fail to parse are skipped
// and reported through the returned error.
func BuildPassengerProfile(trips []FleetTrip, slug string) (*PassengerProfile, error) {
	matched := FilterPassenger(trips, slug)
	if len(matched) == 0 {
		return nil, nil
	}

	p := &PassengerProfile{
		Slug:        slug,
		Name:        pax.Map(matched[0].Passengers)[slug],
		TripCount:   len(matched),
		FlightHours: TotalHours(matched),
		Trips:       matched,
	}
	for _, t := range matched {
		cost, known := t.Cost()
		if !known {
			p.UnknownCostTrips++
			continue
		}
		if n := len(distinctPassengers(t)); n > 0 {
			p.PassengerCost += cost / float64(n)
		}
	}

	paths := FlightPaths(matched)
	nm, err := geo.CalcDistance(paths, geo.NauticalMiles)
	km, _ := geo.CalcDistance(paths, geo.Kilometers)
	p.DistanceNM, p.DistanceKM = nm, km
	return p, err
}

// Summarize computes fleet totals over trips and the loaded fleet.
func Summarize(trips []FleetTrip, fleet []Aircraft) (*Summary, error) {
	s := &Summary{
		Trips:       len(trips),
		FlightHours: TotalHours(trips),
		Aircraft:    len(fleet),
	}

	passengers := make(map[string]struct{})
	for _, t := range trips {
		s.Flights += FlightCount(t.Route)
		for _, name := range t.Pax {
			if slug := pax.Slugify(name); slug != "" {
				passengers[slug] = struct{}{}
			}
		}
		if t.Date == "" {
			continue
		}
		if s.FirstDate == "" || t.Date < s.FirstDate {
			s.FirstDate = t.Date
		}
		if t.Date > s.LastDate {
			s.LastDate = t.Date
		}
	}
	s.Passengers = len(passengers)

	paths := FlightPaths(trips)
	nm, err := geo.CalcDistance(paths, geo.NauticalMiles)
	km, _ := geo.CalcDistance(paths, geo.Kilometers)
	s.DistanceNM, s.DistanceKM = nm, km
	return s, err
}
