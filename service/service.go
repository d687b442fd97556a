// Package service composes storage, caching and the trips engines into the
// read operations exposed over HTTP and MCP.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/wvflights/flightlog-api/db"
	"github.com/wvflights/flightlog-api/pkg/cache"
	"github.com/wvflights/flightlog-api/pkg/logger"
	"github.com/wvflights/flightlog-api/trips"
)

var (
	// ErrNotFound reports an unknown aircraft, passenger or trip day.
	ErrNotFound = errors.New("not found")
	// ErrInvalidArgument reports a malformed request parameter.
	ErrInvalidArgument = errors.New("invalid argument")
)

// Service answers flight log queries. The cache is optional.
type Service struct {
	store db.PostgresDB
	cache *cache.CacheManager
	ttl   time.Duration
}

// New creates a Service. A nil cm disables load caching.
func New(store db.PostgresDB, cm *cache.CacheManager, ttl time.Duration) *Service {
	if ttl <= 0 {
		ttl = cache.MediumTTL
	}
	return &Service{store: store, cache: cm, ttl: ttl}
}

// ValidateParams rejects malformed date filters.
func ValidateParams(p trips.SearchParams) error {
	for name, v := range map[string]string{"startDate": p.StartDate, "endDate": p.EndDate} {
		if v != "" && !trips.IsValidDate(v) {
			return fmt.Errorf("%w: %s must be a yyyy-MM-dd date from 2010 on, got %q", ErrInvalidArgument, name, v)
		}
	}
	return nil
}

func (s *Service) fleet(ctx context.Context) ([]trips.Aircraft, error) {
	return cache.GetOrLoad(ctx, s.cache, cache.AircraftKey(""), s.ttl, func(ctx context.Context) ([]trips.Aircraft, error) {
		return s.store.LoadAircraft(ctx, "")
	})
}

func (s *Service) rows(ctx context.Context, p trips.SearchParams) ([]trips.Trip, error) {
	return cache.GetOrLoad(ctx, s.cache, cache.TripsKey(p.Key()), s.ttl, func(ctx context.Context) ([]trips.Trip, error) {
		return s.store.LoadTrips(ctx, p)
	})
}

// Aircraft returns the whole fleet with trip counts.
func (s *Service) Aircraft(ctx context.Context) ([]trips.Aircraft, error) {
	return s.fleet(ctx)
}

// AircraftByTail looks up one aircraft, ignoring case.
func (s *Service) AircraftByTail(ctx context.Context, tailNo string) (*trips.Aircraft, error) {
	if strings.TrimSpace(tailNo) == "" {
		return nil, fmt.Errorf("%w: empty tail number", ErrInvalidArgument)
	}
	found, err := cache.GetOrLoad(ctx, s.cache, cache.AircraftKey(tailNo), s.ttl, func(ctx context.Context) ([]trips.Aircraft, error) {
		return s.store.LoadAircraft(ctx, tailNo)
	})
	if err != nil {
		return nil, err
	}
	if len(found) == 0 {
		return nil, fmt.Errorf("aircraft %s: %w", tailNo, ErrNotFound)
	}
	a := found[0]
	if a.ContentJSON == nil && a.Content != "" {
		_ = a.ParseContent()
	}
	return &a, nil
}

// Trips loads the trips matching p, newest first, joined with the fleet.
// Trips whose aircraft is missing are kept with an unknown cost and logged.
func (s *Service) Trips(ctx context.Context, p trips.SearchParams) ([]trips.FleetTrip, error) {
	if err := ValidateParams(p); err != nil {
		return nil, err
	}
	fleet, err := s.fleet(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := s.rows(ctx, p)
	if err != nil {
		return nil, err
	}

	enriched, problems := trips.Enrich(rows, fleet)
	if len(problems) > 0 {
		log := logger.WithContext(ctx)
		for _, perr := range problems {
			var missing *trips.MissingAircraftError
			if errors.As(perr, &missing) {
				log.Warn("trip references unknown aircraft", "tail_no", missing.TailNo, "date", missing.Date)
			}
		}
	}
	// Storage already applied p; filtering again keeps cached rows honest.
	return trips.Filter(enriched, p), nil
}

// Passengers aggregates the matching trips by passenger.
func (s *Service) Passengers(ctx context.Context, p trips.SearchParams, opts trips.AggregateOptions) ([]trips.Group, error) {
	opts.By = trips.ByPassenger
	return s.Aggregate(ctx, p, opts)
}

// Passenger builds the profile of the passenger with the given slug.
func (s *Service) Passenger(ctx context.Context, slug string, p trips.SearchParams) (*trips.PassengerProfile, error) {
	all, err := s.Trips(ctx, p)
	if err != nil {
		return nil, err
	}
	profile, err := trips.BuildPassengerProfile(all, slug)
	if err != nil {
		logger.WithContext(ctx).Warn("skipped invalid flight paths", "passenger", slug, "error", err)
	}
	if profile == nil {
		return nil, fmt.Errorf("passenger %s: %w", slug, ErrNotFound)
	}
	return profile, nil
}

// TripDay returns every trip one aircraft flew on one date with the data
// sources citing them.
func (s *Service) TripDay(ctx context.Context, tailNo, date string) (*trips.TripDay, error) {
	if !trips.IsValidDate(date) {
		return nil, fmt.Errorf("%w: invalid date %q", ErrInvalidArgument, date)
	}
	aircraft, err := s.AircraftByTail(ctx, tailNo)
	if err != nil {
		return nil, err
	}
	day, err := s.Trips(ctx, trips.SearchParams{Aircraft: aircraft.TailNo, StartDate: date, EndDate: date})
	if err != nil {
		return nil, err
	}
	if len(day) == 0 {
		return nil, fmt.Errorf("trips of %s on %s: %w", aircraft.TailNo, date, ErrNotFound)
	}

	ids := make([]int64, 0, len(day))
	for _, t := range day {
		if t.ID != nil {
			ids = append(ids, *t.ID)
		}
	}
	sources, err := s.store.LoadDataSources(ctx, ids)
	if err != nil {
		return nil, err
	}
	cited := make([]trips.DataSource, 0, len(sources))
	for _, ds := range attachTrips(sources, day) {
		if len(ds.Trips) > 0 {
			cited = append(cited, ds)
		}
	}

	return &trips.TripDay{
		Aircraft:    *aircraft,
		Date:        date,
		Trips:       day,
		FlightPath:  day[0].FlightPath,
		FlightHours: trips.TotalHours(day),
		Sources:     cited,
	}, nil
}

// DataSources returns every data source with the trips it cites.
func (s *Service) DataSources(ctx context.Context) ([]trips.DataSource, error) {
	sources, err := cache.GetOrLoad(ctx, s.cache, cache.DataSourcesKey(), s.ttl, func(ctx context.Context) ([]trips.DataSource, error) {
		return s.store.LoadDataSources(ctx, nil)
	})
	if err != nil {
		return nil, err
	}
	all, err := s.Trips(ctx, trips.SearchParams{})
	if err != nil {
		return nil, err
	}
	return attachTrips(sources, all), nil
}

func attachTrips(sources []trips.DataSource, all []trips.FleetTrip) []trips.DataSource {
	byID := make(map[int64]trips.FleetTrip, len(all))
	for _, t := range all {
		if t.ID != nil {
			byID[*t.ID] = t
		}
	}
	out := make([]trips.DataSource, len(sources))
	for i, ds := range sources {
		ds.Trips = make([]trips.FleetTrip, 0, len(ds.TripIDs))
		for _, id := range ds.TripIDs {
			if t, ok := byID[id]; ok {
				ds.Trips = append(ds.Trips, t)
			}
		}
		out[i] = ds
	}
	return out
}

// Departments lists distinct departments, optionally for one aircraft.
func (s *Service) Departments(ctx context.Context, tailNo string) ([]string, error) {
	return cache.GetOrLoad(ctx, s.cache, cache.DepartmentsKey(tailNo), s.ttl, func(ctx context.Context) ([]string, error) {
		return s.store.Departments(ctx, tailNo)
	})
}

// Divisions lists distinct divisions, optionally within one department.
func (s *Service) Divisions(ctx context.Context, department string) ([]string, error) {
	return cache.GetOrLoad(ctx, s.cache, cache.DivisionsKey(department), s.ttl, func(ctx context.Context) ([]string, error) {
		return s.store.Divisions(ctx, department)
	})
}

// Aggregate groups the trips matching p.
func (s *Service) Aggregate(ctx context.Context, p trips.SearchParams, opts trips.AggregateOptions) ([]trips.Group, error) {
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidArgument, err)
	}
	all, err := s.Trips(ctx, p)
	if err != nil {
		return nil, err
	}
	return trips.Aggregate(all, opts)
}

// Summary computes fleet totals over the trips matching p.
func (s *Service) Summary(ctx context.Context, p trips.SearchParams) (*trips.Summary, error) {
	all, err := s.Trips(ctx, p)
	if err != nil {
		return nil, err
	}
	fleet, err := s.fleet(ctx)
	if err != nil {
		return nil, err
	}
	summary, err := trips.Summarize(all, fleet)
	if err != nil {
		logger.WithContext(ctx).Warn("skipped invalid flight paths", "error", err)
	}
	return summary, nil
}

// Warm preloads the unfiltered views into the cache.
func (s *Service) Warm(ctx context.Context) error {
	if s.cache == nil {
		return nil
	}
	if err := s.Invalidate(ctx); err != nil {
		return err
	}
	if _, err := s.DataSources(ctx); err != nil {
		return err
	}
	if _, err := s.Departments(ctx, ""); err != nil {
		return err
	}
	_, err := s.Divisions(ctx, "")
	return err
}

// Invalidate drops every cached load.
func (s *Service) Invalidate(ctx context.Context) error {
	if s.cache == nil {
		return nil
	}
	return s.cache.Clear(ctx)
}
