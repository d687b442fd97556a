// Package trips holds the flight log domain model together with the filter
// and aggregation engines that derive views from loaded trip records.
package trips

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
)

// AircraftStatus is the service status of an aircraft.
type AircraftStatus string

const (
	StatusActive   AircraftStatus = "active"
	StatusInactive AircraftStatus = "inactive"
)

// AircraftType distinguishes fixed-wing from rotary aircraft.
type AircraftType string

const (
	TypeAirplane   AircraftType = "airplane"
	TypeHelicopter AircraftType = "helicopter"
)

// AircraftContent is the optional structured content attached to an aircraft.
type AircraftContent struct {
	Image     string            `json:"image,omitempty"`
	Resources map[string]string `json:"resources,omitempty"`
}

// Aircraft represents a fleet member row.
type Aircraft struct {
	TailNo      string           `json:"tail_no"`
	Name        string           `json:"name"`
	Status      AircraftStatus   `json:"status"`
	Type        AircraftType     `json:"type"`
	Rate        float64          `json:"rate"`
	Seats       int              `json:"seats"`
	ICAONo      string           `json:"icao_no"`
	Content     string           `json:"content,omitempty"`
	ContentJSON *AircraftContent `json:"content_json,omitempty"`
	TripCount   int              `json:"trip_count"`
}

// ParseContent decodes the raw content blob into ContentJSON. An empty blob
// leaves ContentJSON nil. A malformed blob also leaves it nil and returns the
// decode error so the caller can log it without dropping the aircraft.
func (a *Aircraft) ParseContent() error {
	a.ContentJSON = nil
	if strings.TrimSpace(a.Content) == "" {
		return nil
	}
	var content AircraftContent
	if err := json.Unmarshal([]byte(a.Content), &content); err != nil {
		return fmt.Errorf("invalid content JSON for aircraft %s: %w", a.TailNo, err)
	}
	a.ContentJSON = &content
	return nil
}

// Trip represents a single trip report row. Optional text columns are empty
// when absent.
type Trip struct {
	ID               *int64  `json:"id"`
	Date             string  `json:"date"`
	TailNo           string  `json:"tail_no"`
	Route            string  `json:"route"`
	Passengers       string  `json:"passengers,omitempty"`
	Department       string  `json:"department"`
	Division         string  `json:"division,omitempty"`
	FlightHours      float64 `json:"flight_hours"`
	Comments         string  `json:"comments,omitempty"`
	JustificationLWB string  `json:"justification_lwb,omitempty"`
	FlightPath       string  `json:"flight_path,omitempty"`
	Unknown          bool    `json:"unknown,omitempty"`
}

// FleetTrip is a trip joined with its aircraft and derived fields.
// InvoicedCost is nil when the aircraft could not be resolved.
type FleetTrip struct {
	Trip
	Aircraft     *Aircraft `json:"aircraft,omitempty"`
	Pax          []string  `json:"pax"`
	InvoicedCost *float64  `json:"invoiced_cost"`
}

// Cost returns the invoiced cost and whether it is known.
func (t FleetTrip) Cost() (float64, bool) {
	if t.InvoicedCost == nil {
		return 0, false
	}
	return *t.InvoicedCost, true
}

// DataSource is a document that cites one or more trips.
type DataSource struct {
	ID      int64       `json:"id"`
	Name    string      `json:"name"`
	Source  string      `json:"source"`
	Date    string      `json:"date"`
	Path    string      `json:"path"`
	TripIDs []int64     `json:"trip_ids"`
	Trips   []FleetTrip `json:"trips,omitempty"`
}

// Cites reports whether the data source cites the trip with the given id.
func (ds DataSource) Cites(tripID int64) bool {
	for _, id := range ds.TripIDs {
		if id == tripID {
			return true
		}
	}
	return false
}

// SearchParams is the filter specification applied to a trip collection.
// Empty fields impose no constraint.
type SearchParams struct {
	Search     string `json:"search,omitempty" form:"search"`
	Aircraft   string `json:"aircraft,omitempty" form:"aircraft"`
	Department string `json:"department,omitempty" form:"department"`
	Division   string `json:"division,omitempty" form:"division"`
	StartDate  string `json:"startDate,omitempty" form:"startDate"`
	EndDate    string `json:"endDate,omitempty" form:"endDate"`
}

// IsZero reports whether no filter is set.
func (p SearchParams) IsZero() bool {
	return p == SearchParams{}
}

// Key returns a stable string form of the params for cache keys. Values are
// query-escaped so distinct params never share a key.
func (p SearchParams) Key() string {
	v := url.Values{}
	for name, val := range map[string]string{
		"search":     p.Search,
		"aircraft":   p.Aircraft,
		"department": p.Department,
		"division":   p.Division,
		"startDate":  p.StartDate,
		"endDate":    p.EndDate,
	} {
		if val != "" {
			v.Set(name, val)
		}
	}
	return v.Encode()
}
