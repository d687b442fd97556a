// Package worker runs background maintenance: the scheduled cache warm and
// the leader election that keeps it to a single replica.
package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/wvflights/flightlog-api/pkg/logger"
)

// Cronner is the subset of *cron.Cron the warmer uses.
type Cronner interface {
	AddFunc(spec string, cmd func()) (cron.EntryID, error)
	Start()
	Stop() context.Context
}

// Warmable rebuilds cached views.
type Warmable interface {
	Warm(ctx context.Context) error
}

// Leader reports whether this replica should run scheduled work.
type Leader interface {
	IsLeader() bool
}

// CacheWarmer periodically calls Warm on its target.
type CacheWarmer struct {
	target   Warmable
	cron     Cronner
	leader   Leader
	schedule string
	timeout  time.Duration
	log      *logger.Logger

	mu      sync.Mutex
	lastRun time.Time
	lastErr error
}

// NewCacheWarmer creates a warmer for target. A nil cronner uses a new
// cron.Cron; a nil leader runs on every replica.
func NewCacheWarmer(target Warmable, cronner Cronner, leader Leader, schedule string, timeout time.Duration) *CacheWarmer {
	if cronner == nil {
		cronner = cron.New()
	}
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}
	return &CacheWarmer{
		target:   target,
		cron:     cronner,
		leader:   leader,
		schedule: schedule,
		timeout:  timeout,
		log:      logger.WithField("component", "cache_warmer"),
	}
}

// Start registers the schedule and starts the cron loop.
func (w *CacheWarmer) Start() error {
	if _, err := w.cron.AddFunc(w.schedule, w.runScheduled); err != nil {
		return fmt.Errorf("invalid cache warm schedule %q: %w", w.schedule, err)
	}
	w.cron.Start()
	w.log.Info("cache warmer started", "schedule", w.schedule)
	return nil
}

// Stop waits for a running warm to finish.
func (w *CacheWarmer) Stop() {
	<-w.cron.Stop().Done()
	w.log.Info("cache warmer stopped")
}

func (w *CacheWarmer) runScheduled() {
	if w.leader != nil && !w.leader.IsLeader() {
		w.log.Debug("skipping cache warm: not leader")
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), w.timeout)
	defer cancel()
	_ = w.RunOnce(ctx)
}

// RunOnce warms the cache now and records the outcome.
func (w *CacheWarmer) RunOnce(ctx context.Context) error {
	start := time.Now()
	err := w.target.Warm(ctx)

	w.mu.Lock()
	w.lastRun, w.lastErr = time.Now(), err
	w.mu.Unlock()

	if err != nil {
		w.log.Error(err, "cache warm failed", "duration", time.Since(start))
		return err
	}
	w.log.Info("cache warmed", "duration", time.Since(start))
	return nil
}

// LastRun returns when the last warm finished and its error.
func (w *CacheWarmer) LastRun() (time.Time, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.lastRun, w.lastErr
}
