package service

import (
	"context"

	"github.com/wvflights/flightlog-api/trips"
)

// FlightLog is the read API consumed by the HTTP and MCP front ends.
type FlightLog interface {
	Aircraft(ctx context.Context) ([]trips.Aircraft, error)
	AircraftByTail(ctx context.Context, tailNo string) (*trips.Aircraft, error)
	Trips(ctx context.Context, p trips.SearchParams) ([]trips.FleetTrip, error)
	Passengers(ctx context.Context, p trips.SearchParams, opts trips.AggregateOptions) ([]trips.Group, error)
	Passenger(ctx context.Context, slug string, p trips.SearchParams) (*trips.PassengerProfile, error)
	TripDay(ctx context.Context, tailNo, date string) (*trips.TripDay, error)
	DataSources(ctx context.Context) ([]trips.DataSource, error)
	Departments(ctx context.Context, tailNo string) ([]string, error)
	Divisions(ctx context.Context, department string) ([]string, error)
	Aggregate(ctx context.Context, p trips.SearchParams, opts trips.AggregateOptions) ([]trips.Group, error)
	Summary(ctx context.Context, p trips.SearchParams) (*trips.Summary, error)
	Warm(ctx context.Context) error
	Invalidate(ctx context.Context) error
}

var _ FlightLog = (*Service)(nil)
