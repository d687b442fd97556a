package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/wvflights/flightlog-api/service"
	"github.com/wvflights/flightlog-api/trips"
)

// MockFlightLog implements service.FlightLog
type MockFlightLog struct {
	mock.Mock
}

func get[T any](args mock.Arguments, i int) T {
	var zero T
	if v, ok := args.Get(i).(T); ok {
		return v
	}
	return zero
}

func (m *MockFlightLog) Aircraft(ctx context.Context) ([]trips.Aircraft, error) {
	args := m.Called(ctx)
	return get[[]trips.Aircraft](args, 0), args.Error(1)
}

func (m *MockFlightLog) AircraftByTail(ctx context.Context, tailNo string) (*trips.Aircraft, error) {
	args := m.Called(ctx, tailNo)
	return get[*trips.Aircraft](args, 0), args.Error(1)
}

func (m *MockFlightLog) Trips(ctx context.Context, p trips.SearchParams) ([]trips.FleetTrip, error) {
	args := m.Called(ctx, p)
	return get[[]trips.FleetTrip](args, 0), args.Error(1)
}

func (m *MockFlightLog) Passengers(ctx context.Context, p trips.SearchParams, opts trips.AggregateOptions) ([]trips.Group, error) {
	args := m.Called(ctx, p, opts)
	return get[[]trips.Group](args, 0), args.Error(1)
}

func (m *MockFlightLog) Passenger(ctx context.Context, slug string, p trips.SearchParams) (*trips.PassengerProfile, error) {
	args := m.Called(ctx, slug, p)
	return get[*trips.PassengerProfile](args, 0), args.Error(1)
}

func (m *MockFlightLog) TripDay(ctx context.Context, tailNo, date string) (*trips.TripDay, error) {
	args := m.Called(ctx, tailNo, date)
	return get[*trips.TripDay](args, 0), args.Error(1)
}

func (m *MockFlightLog) DataSources(ctx context.Context) ([]trips.DataSource, error) {
	args := m.Called(ctx)
	return get[[]trips.DataSource](args, 0), args.Error(1)
}

func (m *MockFlightLog) Departments(ctx context.Context, tailNo string) ([]string, error) {
	args := m.Called(ctx, tailNo)
	return get[[]string](args, 0), args.Error(1)
}

func (m *MockFlightLog) Divisions(ctx context.Context, department string) ([]string, error) {
	args := m.Called(ctx, department)
	return get[[]string](args, 0), args.Error(1)
}

func (m *MockFlightLog) Aggregate(ctx context.Context, p trips.SearchParams, opts trips.AggregateOptions) ([]trips.Group, error) {
	args := m.Called(ctx, p, opts)
	return get[[]trips.Group](args, 0), args.Error(1)
}

func (m *MockFlightLog) Summary(ctx context.Context, p trips.SearchParams) (*trips.Summary, error) {
	args := m.Called(ctx, p)
	return get[*trips.Summary](args, 0), args.Error(1)
}

func (m *MockFlightLog) Warm(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *MockFlightLog) Invalidate(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

var _ service.FlightLog = (*MockFlightLog)(nil)
