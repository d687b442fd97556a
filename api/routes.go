package api

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/wvflights/flightlog-api/config"
	"github.com/wvflights/flightlog-api/pkg/cache"
	"github.com/wvflights/flightlog-api/pkg/health"
	"github.com/wvflights/flightlog-api/pkg/middleware"
	"github.com/wvflights/flightlog-api/service"
)

// Deps bundles what RegisterRoutes wires into the handlers. Cache and Warmer
// are optional.
type Deps struct {
	Service service.FlightLog
	Health  *health.HealthChecker
	Warmer  Warmer
	Cache   *cache.CacheManager
	Config  *config.Config

	// Instances lists live replicas. Nil when Redis is disabled.
	Instances InstanceLister
}

func heartbeatWindow(cfg *config.Config) time.Duration {
	if cfg == nil || cfg.WorkerConfig.HeartbeatInterval <= 0 {
		return 0
	}
	return 3 * cfg.WorkerConfig.HeartbeatInterval
}

// RegisterRoutes registers all API routes
func RegisterRoutes(router *gin.Engine, deps Deps) {
	router.Use(middleware.RequestID())
	router.Use(middleware.RequestLogger())
	router.Use(middleware.Recovery())

	if deps.Health != nil {
		router.GET("/health", Health(deps.Health))
		router.GET("/health/ready", Ready(deps.Health))
		router.GET("/health/live", Live(deps.Health))
	}
	router.GET("/version", Version())

	svc := deps.Service
	v1 := router.Group("/api/v1")

	admin := v1.Group("/admin")
	if deps.Config != nil && deps.Config.AdminAuthConfig.Enabled {
		admin.Use(middleware.AdminAuth(deps.Config.AdminAuthConfig))
	}
	{
		admin.POST("/cache/clear", ClearCache(svc))
		admin.POST("/cache/warm", WarmCache(svc, deps.Warmer))
		if deps.Instances != nil {
			admin.GET("/instances", ListInstances(deps.Instances, heartbeatWindow(deps.Config)))
		}
	}

	ttl := cache.ShortTTL
	if deps.Config != nil && deps.Config.CacheConfig.ResponseTTL > 0 {
		ttl = deps.Config.CacheConfig.ResponseTTL
	}
	read := v1.Group("")
	read.Use(middleware.ResponseCache(deps.Cache, middleware.CacheConfig{
		TTL:       ttl,
		KeyPrefix: "http",
		SkipPaths: []string{"/api/v1/admin"},
	}))
	{
		read.GET("/aircraft", ListAircraft(svc))
		read.GET("/aircraft/:tail_no", GetAircraft(svc))

		read.GET("/trips", ListTrips(svc))
		read.GET("/trips/:tail_no/:date", GetTripDay(svc))

		read.GET("/passengers", ListPassengers(svc))
		read.GET("/passengers/:slug", GetPassenger(svc))

		read.GET("/departments", ListDepartments(svc))
		read.GET("/divisions", ListDivisions(svc))
		read.GET("/datasources", ListDataSources(svc))

		read.GET("/aggregates", GetAggregates(svc))
		read.GET("/stats", GetStats(svc))
	}
}
