package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/lib/pq"

	"github.com/wvflights/flightlog-api/config"
	"github.com/wvflights/flightlog-api/pkg/logger"
	"github.com/wvflights/flightlog-api/trips"
)

// PostgresDB loads flight log records. Every method returns a
// *StorageError when the store fails.
type PostgresDB interface {
	// LoadAircraft returns every aircraft with its trip count, or only the
	// aircraft whose tail number equals tailNo ignoring case.
	LoadAircraft(ctx context.Context, tailNo string) ([]trips.Aircraft, error)
	// LoadTrips returns the trips matching p, newest first.
	LoadTrips(ctx context.Context, p trips.SearchParams) ([]trips.Trip, error)
	// LoadDataSources returns every data source. A non-nil tripIDs restricts
	// each source's TripIDs to those ids.
	LoadDataSources(ctx context.Context, tripIDs []int64) ([]trips.DataSource, error)
	Departments(ctx context.Context, tailNo string) ([]string, error)
	Divisions(ctx context.Context, department string) ([]string, error)
	Ping(ctx context.Context) error
	Close() error
}

// PostgresDBImpl implements PostgresDB on database/sql.
type PostgresDBImpl struct {
	db      *sql.DB
	timeout time.Duration
}

// NewPostgresDB opens and pings a connection using the configured driver:
// "postgres" selects lib/pq, "pgx" the pgx stdlib adapter.
func NewPostgresDB(cfg config.PostgresConfig) (*PostgresDBImpl, error) {
	driver := cfg.Driver
	if driver == "" {
		driver = "postgres"
	}
	conn, err := sql.Open(driver, cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}
	if cfg.MaxOpenConns > 0 {
		conn.SetMaxOpenConns(cfg.MaxOpenConns)
		conn.SetMaxIdleConns(cfg.MaxOpenConns)
	}

	p := NewPostgresDBFromConn(conn, cfg.QueryTimeout)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := p.Ping(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping PostgreSQL: %w", err)
	}
	return p, nil
}

// NewPostgresDBFromConn wraps an open connection.
func NewPostgresDBFromConn(conn *sql.DB, timeout time.Duration) *PostgresDBImpl {
	return &PostgresDBImpl{db: conn, timeout: timeout}
}

// GetDB returns the underlying database connection
func (p *PostgresDBImpl) GetDB() *sql.DB {
	return p.db
}

// Close closes the database connection
func (p *PostgresDBImpl) Close() error {
	return p.db.Close()
}

func (p *PostgresDBImpl) Ping(ctx context.Context) error {
	return storageErr("ping", p.db.PingContext(ctx))
}

func (p *PostgresDBImpl) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if p.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, p.timeout)
}

const aircraftQuery = `
	SELECT a.tail_no, a.name, a.status, a.type, a.rate, a.seats, a.icao_no, a.content,
		COUNT(t.id) AS trip_count
	FROM aircraft a
	LEFT JOIN trips t ON a.tail_no = t.tail_no
	WHERE %s
	GROUP BY a.tail_no
	ORDER BY a.tail_no`

// LoadAircraft implements PostgresDB. Malformed content JSON is logged and
// leaves ContentJSON nil; the aircraft is still returned.
func (p *PostgresDBImpl) LoadAircraft(ctx context.Context, tailNo string) ([]trips.Aircraft, error) {
	ctx, cancel := p.withTimeout(ctx)
	defer cancel()

	where, args := "TRUE", []interface{}{}
	if tailNo != "" {
		where, args = "UPPER(a.tail_no) = $1", []interface{}{strings.ToUpper(tailNo)}
	}

	rows, err := p.db.QueryContext(ctx, fmt.Sprintf(aircraftQuery, where), args...)
	if err != nil {
		return nil, storageErr("load aircraft", err)
	}
	defer rows.Close()

	fleet := make([]trips.Aircraft, 0)
	for rows.Next() {
		r, err := scanAircraft(rows)
		if err != nil {
			return nil, storageErr("scan aircraft", err)
		}
		a := r.ToAircraft()
		if err := a.ParseContent(); err != nil {
			logger.WithContext(ctx).Warn("invalid aircraft content", "tail_no", a.TailNo, "error", err)
		}
		fleet = append(fleet, a)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("load aircraft", err)
	}
	return fleet, nil
}

const tripColumns = `id, date, tail_no, route, passengers, department, division,
	flight_hours, comments, justification_lwb, flight_path`

// LoadTrips implements PostgresDB. Filters are pushed down with
// BuildTripWhere.
func (p *PostgresDBImpl) LoadTrips(ctx context.Context, params trips.SearchParams) ([]trips.Trip, error) {
	ctx, cancel := p.withTimeout(ctx)
	defer cancel()

	where, args := BuildTripWhere(params)
	query := fmt.Sprintf(`SELECT %s FROM trips WHERE %s ORDER BY date DESC, row_id`, tripColumns, where)

	rows, err := p.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, storageErr("load trips", err)
	}
	defer rows.Close()

	out := make([]trips.Trip, 0)
	for rows.Next() {
		r, err := scanTrip(rows)
		if err != nil {
			return nil, storageErr("scan trip", err)
		}
		out = append(out, r.ToTrip())
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("load trips", err)
	}
	return out, nil
}

// LoadDataSources implements PostgresDB.
func (p *PostgresDBImpl) LoadDataSources(ctx context.Context, tripIDs []int64) ([]trips.DataSource, error) {
	ctx, cancel := p.withTimeout(ctx)
	defer cancel()

	linkFilter, args := "", []interface{}{}
	if tripIDs != nil {
		linkFilter = " AND dt.trip_id = ANY($1)"
		args = append(args, pq.Array(tripIDs))
	}

	query := fmt.Sprintf(`
		SELECT d.id, d.name, d.source, d.date, d.path,
			COALESCE(array_agg(dt.trip_id ORDER BY dt.trip_id) FILTER (WHERE dt.trip_id IS NOT NULL), '{}') AS trip_ids
		FROM datasources d
		LEFT JOIN datasource_trips dt ON dt.datasource_id = d.id%s
		GROUP BY d.id
		ORDER BY d.date DESC, d.id`, linkFilter)

	rows, err := p.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, storageErr("load data sources", err)
	}
	defer rows.Close()

	out := make([]trips.DataSource, 0)
	for rows.Next() {
		r, err := scanDataSource(rows)
		if err != nil {
			return nil, storageErr("scan data source", err)
		}
		out = append(out, r.ToDataSource())
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("load data sources", err)
	}
	return out, nil
}

// Departments returns the distinct non-empty departments, optionally for a
// single aircraft, in ascending order.
func (p *PostgresDBImpl) Departments(ctx context.Context, tailNo string) ([]string, error) {
	where, args := "TRUE", []interface{}{}
	if tailNo != "" {
		where, args = "tail_no = $1", []interface{}{tailNo}
	}
	return p.distinct(ctx, "departments", "department", where, args)
}

// Divisions returns the distinct non-empty divisions, optionally within a
// single department, in ascending order.
func (p *PostgresDBImpl) Divisions(ctx context.Context, department string) ([]string, error) {
	where, args := "TRUE", []interface{}{}
	if department != "" {
		where, args = "department = $1", []interface{}{department}
	}
	return p.distinct(ctx, "divisions", "division", where, args)
}

func (p *PostgresDBImpl) distinct(ctx context.Context, op, column, where string, args []interface{}) ([]string, error) {
	ctx, cancel := p.withTimeout(ctx)
	defer cancel()

	query := fmt.Sprintf(`SELECT DISTINCT %[1]s FROM trips WHERE %[1]s IS NOT NULL AND %[1]s <> '' AND %[2]s ORDER BY %[1]s`, column, where)
	rows, err := p.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, storageErr(op, err)
	}
	defer rows.Close()

	out := make([]string, 0)
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, storageErr(op, err)
		}
		out = append(out, v)
	}
	return out, storageErr(op, rows.Err())
}

var _ PostgresDB = (*PostgresDBImpl)(nil)
