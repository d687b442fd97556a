package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/wvflights/flightlog-api/db"
	"github.com/wvflights/flightlog-api/trips"
)

// MockPostgresDB implements db.PostgresDB
type MockPostgresDB struct {
	mock.Mock
}

func (m *MockPostgresDB) LoadAircraft(ctx context.Context, tailNo string) ([]trips.Aircraft, error) {
	args := m.Called(ctx, tailNo)
	var out []trips.Aircraft
	if v := args.Get(0); v != nil {
		out = v.([]trips.Aircraft)
	}
	return out, args.Error(1)
}

func (m *MockPostgresDB) LoadTrips(ctx context.Context, p trips.SearchParams) ([]trips.Trip, error) {
	args := m.Called(ctx, p)
	var out []trips.Trip
	if v := args.Get(0); v != nil {
		out = v.([]trips.Trip)
	}
	return out, args.Error(1)
}

func (m *MockPostgresDB) LoadDataSources(ctx context.Context, tripIDs []int64) ([]trips.DataSource, error) {
	args := m.Called(ctx, tripIDs)
	var out []trips.DataSource
	if v := args.Get(0); v != nil {
		out = v.([]trips.DataSource)
	}
	return out, args.Error(1)
}

func (m *MockPostgresDB) Departments(ctx context.Context, tailNo string) ([]string, error) {
	args := m.Called(ctx, tailNo)
	var out []string
	if v := args.Get(0); v != nil {
		out = v.([]string)
	}
	return out, args.Error(1)
}

func (m *MockPostgresDB) Divisions(ctx context.Context, department string) ([]string, error) {
	args := m.Called(ctx, department)
	var out []string
	if v := args.Get(0); v != nil {
		out = v.([]string)
	}
	return out, args.Error(1)
}

func (m *MockPostgresDB) Ping(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *MockPostgresDB) Close() error {
	return m.Called().Error(0)
}

var _ db.PostgresDB = (*MockPostgresDB)(nil)
