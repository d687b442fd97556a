package api

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/wvflights/flightlog-api/db"
	"github.com/wvflights/flightlog-api/pkg/buildinfo"
	"github.com/wvflights/flightlog-api/pkg/health"
	"github.com/wvflights/flightlog-api/pkg/logger"
	"github.com/wvflights/flightlog-api/pkg/registry"
	"github.com/wvflights/flightlog-api/service"
	"github.com/wvflights/flightlog-api/trips"
)

// Warmer rebuilds the cached views on demand.
type Warmer interface {
	RunOnce(ctx context.Context) error
}

// InstanceLister lists replicas that reported recently.
type InstanceLister interface {
	ListActive(ctx context.Context, within time.Duration, limit int64) ([]registry.Heartbeat, error)
}

// TripView is a trip with its display fields.
type TripView struct {
	trips.FleetTrip
	RouteDisplay    string `json:"route_display"`
	RoundTrip       bool   `json:"round_trip"`
	Flights         int    `json:"flights"`
	DurationDisplay string `json:"duration_display"`
	CostDisplay     string `json:"cost_display,omitempty"`
}

func newTripView(t trips.FleetTrip) TripView {
	v := TripView{
		FleetTrip:       t,
		RouteDisplay:    trips.FormatRoute(t.Route),
		RoundTrip:       trips.IsRoundTrip(t.Route),
		Flights:         trips.FlightCount(t.Route),
		DurationDisplay: trips.FormatDuration(t.FlightHours),
	}
	if cost, known := t.Cost(); known {
		v.CostDisplay = trips.FormatCurrency(cost)
	}
	return v
}

func tripViews(all []trips.FleetTrip) []TripView {
	out := make([]TripView, len(all))
	for i, t := range all {
		out[i] = newTripView(t)
	}
	return out
}

// respondError maps service and storage errors onto HTTP statuses.
func respondError(c *gin.Context, err error, msg string) {
	status := http.StatusInternalServerError
	var storageErr *db.StorageError
	switch {
	case errors.Is(err, service.ErrInvalidArgument):
		status = http.StatusBadRequest
	case errors.Is(err, service.ErrNotFound):
		status = http.StatusNotFound
	case errors.As(err, &storageErr):
		status = http.StatusServiceUnavailable
	}

	if status >= http.StatusInternalServerError {
		logger.WithContext(c.Request.Context()).WithFields(map[string]interface{}{
			"path":   c.FullPath(),
			"status": status,
		}).Error(err, msg)
		c.JSON(status, gin.H{"error": msg})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

// ListAircraft returns a handler listing the fleet.
func ListAircraft(svc service.FlightLog) gin.HandlerFunc {
	return func(c *gin.Context) {
		fleet, err := svc.Aircraft(c.Request.Context())
		if err != nil {
			respondError(c, err, "Failed to load aircraft")
			return
		}
		c.JSON(http.StatusOK, fleet)
	}
}

// GetAircraft returns a handler for one aircraft by tail number.
func GetAircraft(svc service.FlightLog) gin.HandlerFunc {
	return func(c *gin.Context) {
		a, err := svc.AircraftByTail(c.Request.Context(), c.Param("tail_no"))
		if err != nil {
			respondError(c, err, "Failed to load aircraft")
			return
		}
		c.JSON(http.StatusOK, a)
	}
}

// ListTrips returns a handler for a page of matching trips, newest first.
func ListTrips(svc service.FlightLog) gin.HandlerFunc {
	return func(c *gin.Context) {
		q, err := bindList(c)
		if err != nil {
			respondError(c, err, "Invalid query")
			return
		}
		all, err := svc.Trips(c.Request.Context(), q.SearchParams)
		if err != nil {
			respondError(c, err, "Failed to load trips")
			return
		}
		c.JSON(http.StatusOK, trips.Paginate(tripViews(all), q.Page, q.PageSize))
	}
}

// GetTripDay returns a handler for every trip of one aircraft on one date.
func GetTripDay(svc service.FlightLog) gin.HandlerFunc {
	return func(c *gin.Context) {
		day, err := svc.TripDay(c.Request.Context(), c.Param("tail_no"), c.Param("date"))
		if err != nil {
			respondError(c, err, "Failed to load trip day")
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"aircraft":         day.Aircraft,
			"date":             day.Date,
			"trips":            tripViews(day.Trips),
			"flight_path":      day.FlightPath,
			"flight_hours":     day.FlightHours,
			"duration_display": trips.FormatDuration(day.FlightHours),
			"sources":          day.Sources,
		})
	}
}

// ListPassengers returns a handler for a page of per-passenger aggregates.
func ListPassengers(svc service.FlightLog) gin.HandlerFunc {
	return func(c *gin.Context) {
		q, err := bindAggregate(c)
		if err != nil {
			respondError(c, err, "Invalid query")
			return
		}
		opts, err := q.Options()
		if err != nil {
			respondError(c, err, "Invalid query")
			return
		}
		groups, err := svc.Passengers(c.Request.Context(), q.SearchParams, opts)
		if err != nil {
			respondError(c, err, "Failed to aggregate passengers")
			return
		}
		c.JSON(http.StatusOK, trips.Paginate(groups, q.Page, q.PageSize))
	}
}

// GetPassenger returns a handler for one passenger's profile.
func GetPassenger(svc service.FlightLog) gin.HandlerFunc {
	return func(c *gin.Context) {
		q, err := bindList(c)
		if err != nil {
			respondError(c, err, "Invalid query")
			return
		}
		slug := strings.ToLower(c.Param("slug"))
		profile, err := svc.Passenger(c.Request.Context(), slug, q.SearchParams)
		if err != nil {
			respondError(c, err, "Failed to load passenger")
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"slug":               profile.Slug,
			"name":               profile.Name,
			"trip_count":         profile.TripCount,
			"flight_hours":       profile.FlightHours,
			"duration_display":   trips.FormatDuration(profile.FlightHours),
			"distance_nm":        profile.DistanceNM,
			"distance_km":        profile.DistanceKM,
			"passenger_cost":     profile.PassengerCost,
			"cost_display":       trips.FormatCurrency(profile.PassengerCost),
			"unknown_cost_trips": profile.UnknownCostTrips,
			"trips":              tripViews(profile.Trips),
		})
	}
}

// ListDepartments returns a handler listing departments, optionally for one
// aircraft.
func ListDepartments(svc service.FlightLog) gin.HandlerFunc {
	return func(c *gin.Context) {
		deps, err := svc.Departments(c.Request.Context(), strings.TrimSpace(c.Query("aircraft")))
		if err != nil {
			respondError(c, err, "Failed to load departments")
			return
		}
		c.JSON(http.StatusOK, deps)
	}
}

// ListDivisions returns a handler listing divisions, optionally within one
// department.
func ListDivisions(svc service.FlightLog) gin.HandlerFunc {
	return func(c *gin.Context) {
		divs, err := svc.Divisions(c.Request.Context(), strings.TrimSpace(c.Query("department")))
		if err != nil {
			respondError(c, err, "Failed to load divisions")
			return
		}
		c.JSON(http.StatusOK, divs)
	}
}

// ListDataSources returns a handler listing data sources with cited trips.
func ListDataSources(svc service.FlightLog) gin.HandlerFunc {
	return func(c *gin.Context) {
		sources, err := svc.DataSources(c.Request.Context())
		if err != nil {
			respondError(c, err, "Failed to load data sources")
			return
		}
		c.JSON(http.StatusOK, sources)
	}
}

// GetAggregates returns a handler grouping matching trips.
func GetAggregates(svc service.FlightLog) gin.HandlerFunc {
	return func(c *gin.Context) {
		q, err := bindAggregate(c)
		if err != nil {
			respondError(c, err, "Invalid query")
			return
		}
		opts, err := q.Options()
		if err != nil {
			respondError(c, err, "Invalid query")
			return
		}
		groups, err := svc.Aggregate(c.Request.Context(), q.SearchParams, opts)
		if err != nil {
			respondError(c, err, "Failed to aggregate trips")
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"by":     opts.By,
			"sort":   opts.Sort,
			"units":  opts.Units,
			"groups": groups,
		})
	}
}

// GetStats returns a handler for fleet totals over matching trips.
func GetStats(svc service.FlightLog) gin.HandlerFunc {
	return func(c *gin.Context) {
		q, err := bindList(c)
		if err != nil {
			respondError(c, err, "Invalid query")
			return
		}
		s, err := svc.Summary(c.Request.Context(), q.SearchParams)
		if err != nil {
			respondError(c, err, "Failed to summarize trips")
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"summary":          s,
			"trips_display":    trips.FormatCount(s.Trips),
			"flights_display":  trips.FormatCount(s.Flights),
			"duration_display": trips.FormatDuration(s.FlightHours),
		})
	}
}

// ClearCache returns a handler dropping every cached load.
func ClearCache(svc service.FlightLog) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := svc.Invalidate(c.Request.Context()); err != nil {
			respondError(c, err, "Failed to clear cache")
			return
		}
		logger.WithContext(c.Request.Context()).Info("cache cleared")
		c.JSON(http.StatusOK, gin.H{"status": "cleared"})
	}
}

// WarmCache returns a handler rebuilding the cache now. A nil warmer warms
// through the service directly.
func WarmCache(svc service.FlightLog, warmer Warmer) gin.HandlerFunc {
	return func(c *gin.Context) {
		warm := svc.Warm
		if warmer != nil {
			warm = warmer.RunOnce
		}
		if err := warm(c.Request.Context()); err != nil {
			respondError(c, err, "Failed to warm cache")
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "warmed"})
	}
}

// ListInstances returns a handler listing replicas with a recent heartbeat.
func ListInstances(lister InstanceLister, within time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		active, err := lister.ListActive(c.Request.Context(), within, 100)
		if err != nil {
			respondError(c, err, "Failed to list instances")
			return
		}
		c.JSON(http.StatusOK, gin.H{"instances": active, "count": len(active)})
	}
}

func healthStatus(report health.HealthReport) int {
	if report.Status == health.StatusUp {
		return http.StatusOK
	}
	return http.StatusServiceUnavailable
}

// Health returns a handler running every health check.
func Health(h *health.HealthChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		report := h.CheckHealth(c.Request.Context())
		c.JSON(healthStatus(report), report)
	}
}

// Ready returns a handler running only the critical checks.
func Ready(h *health.HealthChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		report := h.CheckReadiness(c.Request.Context())
		c.JSON(healthStatus(report), report)
	}
}

// Live returns a handler reporting that the process is serving.
func Live(h *health.HealthChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, h.CheckLiveness(c.Request.Context()))
	}
}

// Version returns a handler describing the running build.
func Version() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, buildinfo.Get())
	}
}
