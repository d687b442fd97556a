package trips

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wvflights/flightlog-api/pkg/geo"
)

func TestBuildPassengerProfile(t *testing.T) {
	p, err := BuildPassengerProfile(enriched(t), "a")
	require.NoError(t, err)
	require.NotNil(t, p)

	assert.Equal(t, "A", p.Name)
	assert.Equal(t, 2, p.TripCount)
	assert.Equal(t, 3.0, p.FlightHours)
	assert.Equal(t, 200.0, p.PassengerCost)
	assert.Zero(t, p.UnknownCostTrips)
	assert.Zero(t, p.DistanceNM)
}

func TestBuildPassengerProfile_NotFound(t *testing.T) {
	p, err := BuildPassengerProfile(enriched(t), "nobody")
	require.NoError(t, err)
	assert.Nil(t, p)
}

func TestBuildPassengerProfile_Distance(t *testing.T) {
	path := "LINESTRING(-81.5932 38.3731, -80.3995 37.8583)"
	rows := []Trip{
		{ID: id(1), TailNo: "N1WV", Passengers: "Jane Doe (Sec.)", FlightHours: 1, FlightPath: path},
		{ID: id(2), TailNo: "N1WV", Passengers: "Jane Doe (Sec.), Bob", FlightHours: 1, FlightPath: path},
	}
	all, _ := Enrich(rows, fleet())

	p, err := BuildPassengerProfile(all, "jane-doe-sec")
	require.NoError(t, err)
	require.NotNil(t, p)

	leg, _ := geo.CalcDistance([]string{path}, geo.NauticalMiles)
	assert.InDelta(t, 2*leg, p.DistanceNM, 1e-9)
	assert.InDelta(t, 2*leg*1.852, p.DistanceKM, 1e-6)
	assert.Equal(t, 150.0, p.PassengerCost)
}

func TestSummarize(t *testing.T) {
	s, err := Summarize(enriched(t), fleet())
	require.NoError(t, err)

	assert.Equal(t, 4, s.Trips)
	assert.Equal(t, 5, s.Flights)
	assert.Equal(t, 5.5, s.FlightHours)
	assert.Equal(t, 4, s.Passengers)
	assert.Equal(t, 2, s.Aircraft)
	assert.Equal(t, "2022-12-31", s.FirstDate)
	assert.Equal(t, "2023-02-01", s.LastDate)
}

func TestFlightPathsAndHours(t *testing.T) {
	all := []FleetTrip{
		{Trip: Trip{FlightHours: 1, FlightPath: "LINESTRING(1 2, 3 4)"}},
		{Trip: Trip{FlightHours: 0.5}},
	}
	assert.Equal(t, []string{"LINESTRING(1 2, 3 4)"}, FlightPaths(all))
	assert.Equal(t, 1.5, TotalHours(all))
}
