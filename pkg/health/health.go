package health

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/wvflights/flightlog-api/db"
)

// Status represents the health status of a component
type Status string

const (
	StatusUp   Status = "up"
	StatusDown Status = "down"
)

// Check represents a single health check
type Check struct {
	Name      string            `json:"name"`
	Status    Status            `json:"status"`
	Message   string            `json:"message,omitempty"`
	Details   map[string]string `json:"details,omitempty"`
	Duration  time.Duration     `json:"duration"`
	Timestamp time.Time         `json:"timestamp"`
}

// HealthReport represents the overall health of the application
type HealthReport struct {
	Status    Status           `json:"status"`
	Version   string           `json:"version"`
	Timestamp time.Time        `json:"timestamp"`
	Checks    map[string]Check `json:"checks"`
	Uptime    time.Duration    `json:"uptime"`
}

// Checker defines the interface for health checks
type Checker interface {
	Check(ctx context.Context) Check
}

// Critical checkers gate readiness.
type Critical interface {
	Critical() bool
}

func timed(name, what string, fn func() (map[string]string, error)) Check {
	start := time.Now()
	details, err := fn()
	check := Check{
		Name:      name,
		Timestamp: start,
		Duration:  time.Since(start),
		Details:   map[string]string{"response_time": time.Since(start).String()},
	}
	for k, v := range details {
		check.Details[k] = v
	}
	if err != nil {
		check.Status = StatusDown
		check.Message = fmt.Sprintf("%s failed: %v", what, err)
		check.Details["error"] = err.Error()
		return check
	}
	check.Status = StatusUp
	check.Message = what + " successful"
	return check
}

// PostgresChecker checks PostgreSQL connectivity
type PostgresChecker struct {
	DB   db.PostgresDB
	Name string
}

func (c *PostgresChecker) Check(ctx context.Context) Check {
	return timed(c.Name, "Database connection", func() (map[string]string, error) {
		return nil, c.DB.Ping(ctx)
	})
}

func (c *PostgresChecker) Critical() bool { return true }

// RedisChecker checks Redis connectivity
type RedisChecker struct {
	Client *redis.Client
	Name   string
}

func (c *RedisChecker) Check(ctx context.Context) Check {
	return timed(c.Name, "Redis connection", func() (map[string]string, error) {
		pong, err := c.Client.Ping(ctx).Result()
		if err != nil {
			return nil, err
		}
		return map[string]string{"ping_response": pong}, nil
	})
}

// LastRunner reports when a background job last completed.
type LastRunner interface {
	LastRun() (time.Time, error)
}

// WarmerChecker reports on the cache warmer. A warmer that has not run yet
// is healthy; one whose last run failed is down.
type WarmerChecker struct {
	Warmer LastRunner
	Name   string
}

func (c *WarmerChecker) Check(ctx context.Context) Check {
	return timed(c.Name, "Cache warm", func() (map[string]string, error) {
		at, err := c.Warmer.LastRun()
		if at.IsZero() {
			return map[string]string{"last_run": "never"}, nil
		}
		return map[string]string{"last_run": at.UTC().Format(time.RFC3339)}, err
	})
}

// HealthChecker orchestrates multiple health checks
type HealthChecker struct {
	checkers  []Checker
	version   string
	timeout   time.Duration
	startTime time.Time
}

// NewHealthChecker creates a new health checker
func NewHealthChecker(version string) *HealthChecker {
	return &HealthChecker{
		version:   version,
		timeout:   5 * time.Second,
		startTime: time.Now(),
	}
}

// AddChecker adds a health checker
func (h *HealthChecker) AddChecker(checker Checker) {
	h.checkers = append(h.checkers, checker)
}

// CheckHealth runs every check concurrently.
func (h *HealthChecker) CheckHealth(ctx context.Context) HealthReport {
	return h.run(ctx, h.checkers)
}

// CheckReadiness runs only the critical checks.
func (h *HealthChecker) CheckReadiness(ctx context.Context) HealthReport {
	critical := make([]Checker, 0, len(h.checkers))
	for _, c := range h.checkers {
		if cc, ok := c.(Critical); ok && cc.Critical() {
			critical = append(critical, c)
		}
	}
	return h.run(ctx, critical)
}

// CheckLiveness reports that the process is serving.
func (h *HealthChecker) CheckLiveness(ctx context.Context) HealthReport {
	return HealthReport{
		Status:    StatusUp,
		Version:   h.version,
		Timestamp: time.Now(),
		Checks: map[string]Check{
			"application": {
				Name:      "application",
				Status:    StatusUp,
				Message:   "Application is running",
				Timestamp: time.Now(),
			},
		},
		Uptime: time.Since(h.startTime),
	}
}

func (h *HealthChecker) run(ctx context.Context, checkers []Checker) HealthReport {
	ctx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()

	var (
		mu     sync.Mutex
		checks = make(map[string]Check, len(checkers))
		g      errgroup.Group
	)
	for _, c := range checkers {
		c := c
		g.Go(func() error {
			check := c.Check(ctx)
			mu.Lock()
			checks[check.Name] = check
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	status := StatusUp
	for _, check := range checks {
		if check.Status == StatusDown {
			status = StatusDown
		}
	}
	return HealthReport{
		Status:    status,
		Version:   h.version,
		Timestamp: time.Now(),
		Checks:    checks,
		Uptime:    time.Since(h.startTime),
	}
}
