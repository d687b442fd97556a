package db

import (
	"database/sql"

	"github.com/lib/pq"

	"github.com/wvflights/flightlog-api/trips"
)

// RowScanner defines the interface for scanning a single row result.
// Both *sql.Row and *sql.Rows satisfy it.
type RowScanner interface {
	Scan(dest ...interface{}) error
}

// --- Struct Definitions for Query Results ---

// AircraftRow is an aircraft row with its trip count.
type AircraftRow struct {
	TailNo    string
	Name      sql.NullString
	Status    sql.NullString
	Type      sql.NullString
	Rate      sql.NullFloat64
	Seats     sql.NullInt64
	ICAONo    sql.NullString
	Content   sql.NullString
	TripCount int
}

func scanAircraft(s RowScanner) (AircraftRow, error) {
	var r AircraftRow
	err := s.Scan(&r.TailNo, &r.Name, &r.Status, &r.Type, &r.Rate, &r.Seats, &r.ICAONo, &r.Content, &r.TripCount)
	return r, err
}

// ToAircraft converts the row into the domain type. Content is left
// unparsed.
func (r AircraftRow) ToAircraft() trips.Aircraft {
	return trips.Aircraft{
		TailNo:    r.TailNo,
		Name:      r.Name.String,
		Status:    trips.AircraftStatus(r.Status.String),
		Type:      trips.AircraftType(r.Type.String),
		Rate:      r.Rate.Float64,
		Seats:     int(r.Seats.Int64),
		ICAONo:    r.ICAONo.String,
		Content:   r.Content.String,
		TripCount: r.TripCount,
	}
}

// TripRow is a trips row. Every column but tail_no may be NULL.
type TripRow struct {
	ID               sql.NullInt64
	Date             sql.NullString
	TailNo           string
	Route            sql.NullString
	Passengers       sql.NullString
	Department       sql.NullString
	Division         sql.NullString
	FlightHours      sql.NullFloat64
	Comments         sql.NullString
	JustificationLWB sql.NullString
	FlightPath       sql.NullString
}

func scanTrip(s RowScanner) (TripRow, error) {
	var r TripRow
	err := s.Scan(&r.ID, &r.Date, &r.TailNo, &r.Route, &r.Passengers, &r.Department,
		&r.Division, &r.FlightHours, &r.Comments, &r.JustificationLWB, &r.FlightPath)
	return r, err
}

// ToTrip converts the row into the domain type. A NULL id marks the trip
// as unknown.
func (r TripRow) ToTrip() trips.Trip {
	t := trips.Trip{
		Date:             r.Date.String,
		TailNo:           r.TailNo,
		Route:            r.Route.String,
		Passengers:       r.Passengers.String,
		Department:       r.Department.String,
		Division:         r.Division.String,
		FlightHours:      r.FlightHours.Float64,
		Comments:         r.Comments.String,
		JustificationLWB: r.JustificationLWB.String,
		FlightPath:       r.FlightPath.String,
	}
	if r.ID.Valid {
		id := r.ID.Int64
		t.ID = &id
	} else {
		t.Unknown = true
	}
	return t
}

// DataSourceRow is a datasources row with the ids of the trips it cites.
type DataSourceRow struct {
	ID      int64
	Name    sql.NullString
	Source  sql.NullString
	Date    sql.NullString
	Path    sql.NullString
	TripIDs pq.Int64Array
}

func scanDataSource(s RowScanner) (DataSourceRow, error) {
	var r DataSourceRow
	err := s.Scan(&r.ID, &r.Name, &r.Source, &r.Date, &r.Path, &r.TripIDs)
	return r, err
}

func (r DataSourceRow) ToDataSource() trips.DataSource {
	ids := make([]int64, len(r.TripIDs))
	copy(ids, r.TripIDs)
	return trips.DataSource{
		ID:      r.ID,
		Name:    r.Name.String,
		Source:  r.Source.String,
		Date:    r.Date.String,
		Path:    r.Path.String,
		TripIDs: ids,
	}
}
