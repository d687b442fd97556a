package db

import (
	"database/sql"
	"errors"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wvflights/flightlog-api/trips"
)

func TestBuildTripWhere(t *testing.T) {
	tests := []struct {
		name   string
		params trips.SearchParams
		where  string
		args   []interface{}
	}{
		{
			name:  "empty",
			where: "TRUE",
		},
		{
			name:   "aircraft and dates",
			params: trips.SearchParams{Aircraft: "N1WV", StartDate: "2023-01-01", EndDate: "2023-01-31"},
			where:  "tail_no = $1 AND date >= $2 AND date <= $3",
			args:   []interface{}{"N1WV", "2023-01-01", "2023-01-31"},
		},
		{
			name:   "department and division",
			params: trips.SearchParams{Department: "Governor", Division: "Office of the Governor"},
			where:  "department = $1 AND division = $2",
			args:   []interface{}{"Governor", "Office of the Governor"},
		},
		{
			name:   "search is escaped",
			params: trips.SearchParams{Search: "50%_off"},
			where:  searchExpr + ` ILIKE $1 ESCAPE '\'`,
			args:   []interface{}{`%50\%\_off%`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			where, args := BuildTripWhere(tt.params)
			assert.Equal(t, tt.where, where)
			assert.Equal(t, tt.args, args)
		})
	}
}

func TestBuildTripWhere_AllFieldsNumbered(t *testing.T) {
	where, args := BuildTripWhere(trips.SearchParams{
		Search: "x", Aircraft: "a", Department: "d", Division: "v", StartDate: "s", EndDate: "e",
	})
	require.Len(t, args, 6)
	for i := 1; i <= 6; i++ {
		assert.Contains(t, where, "$"+string(rune('0'+i)))
	}
}

func TestEscapeLike(t *testing.T) {
	assert.Equal(t, `a\\b`, EscapeLike(`a\b`))
	assert.Equal(t, "plain", EscapeLike("plain"))
}

func TestTripRow_ToTrip(t *testing.T) {
	r := TripRow{
		ID:          sql.NullInt64{Int64: 7, Valid: true},
		Date:        sql.NullString{String: "2023-01-05", Valid: true},
		TailNo:      "N1WV",
		Route:       sql.NullString{String: "CRW-LWB", Valid: true},
		FlightHours: sql.NullFloat64{Float64: 1.5, Valid: true},
	}
	trip := r.ToTrip()
	require.NotNil(t, trip.ID)
	assert.Equal(t, int64(7), *trip.ID)
	assert.False(t, trip.Unknown)
	assert.Equal(t, "CRW-LWB", trip.Route)
	assert.Empty(t, trip.Passengers)
	assert.Equal(t, 1.5, trip.FlightHours)

	unknown := TripRow{TailNo: "N1WV", FlightPath: sql.NullString{String: "LINESTRING(1 2, 3 4)", Valid: true}}.ToTrip()
	assert.Nil(t, unknown.ID)
	assert.True(t, unknown.Unknown)
}

func TestAircraftRow_ToAircraft(t *testing.T) {
	a := AircraftRow{
		TailNo:    "N1WV",
		Name:      sql.NullString{String: "King Air 350", Valid: true},
		Status:    sql.NullString{String: "active", Valid: true},
		Type:      sql.NullString{String: "airplane", Valid: true},
		Rate:      sql.NullFloat64{Float64: 1250, Valid: true},
		Seats:     sql.NullInt64{Int64: 9, Valid: true},
		TripCount: 12,
	}.ToAircraft()

	assert.Equal(t, trips.StatusActive, a.Status)
	assert.Equal(t, trips.TypeAirplane, a.Type)
	assert.Equal(t, 1250.0, a.Rate)
	assert.Equal(t, 9, a.Seats)
	assert.Equal(t, 12, a.TripCount)
}

func TestDataSourceRow_ToDataSource(t *testing.T) {
	row := DataSourceRow{ID: 3, Name: sql.NullString{String: "FOIA 2023", Valid: true}, TripIDs: []int64{1, 2}}
	ds := row.ToDataSource()
	assert.Equal(t, []int64{1, 2}, ds.TripIDs)

	row.TripIDs[0] = 99
	assert.Equal(t, int64(1), ds.TripIDs[0])

	empty := DataSourceRow{ID: 4}.ToDataSource()
	assert.NotNil(t, empty.TripIDs)
	assert.Empty(t, empty.TripIDs)
}

func TestStorageError(t *testing.T) {
	cause := errors.New("connection refused")
	err := storageErr("load trips", cause)

	var se *StorageError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, "load trips", se.Op)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "storage: load trips: connection refused", err.Error())

	assert.NoError(t, storageErr("noop", nil))
}

func TestLoadMigrations(t *testing.T) {
	fsys := fstest.MapFS{
		"migrations/002_b.sql": {Data: []byte("SELECT 2;")},
		"migrations/001_a.sql": {Data: []byte("SELECT 1;")},
		"migrations/README.md": {Data: []byte("ignored")},
	}
	ms, err := loadMigrations(fsys)
	require.NoError(t, err)
	require.Len(t, ms, 2)
	assert.Equal(t, "001_a.sql", ms[0].version)
	assert.Equal(t, "002_b.sql", ms[1].version)
	assert.Len(t, ms[0].checksum, 64)
	assert.NotEqual(t, ms[0].checksum, ms[1].checksum)
}

func TestEmbeddedMigrations(t *testing.T) {
	ms, err := loadMigrations(migrationsFS)
	require.NoError(t, err)
	require.NotEmpty(t, ms)
	assert.Equal(t, "001_init.sql", ms[0].version)
	assert.Contains(t, ms[0].sql, "CREATE TABLE IF NOT EXISTS trips")
}
