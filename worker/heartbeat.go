package worker

import (
	"context"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/wvflights/flightlog-api/pkg/logger"
	"github.com/wvflights/flightlog-api/pkg/registry"
)

// Publisher stores replica heartbeats.
type Publisher interface {
	Publish(ctx context.Context, hb registry.Heartbeat, ttl time.Duration) error
}

// LastRunner reports the outcome of the last cache warm.
type LastRunner interface {
	LastRun() (time.Time, error)
}

// Heartbeater periodically publishes this replica's status.
type Heartbeater struct {
	publisher Publisher
	leader    Leader
	warmer    LastRunner
	interval  time.Duration

	id        string
	hostname  string
	version   string
	startedAt time.Time

	stopChan chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// NewHeartbeater creates a heartbeater. An empty id gets a fresh uuid;
// leader and warmer may be nil.
func NewHeartbeater(publisher Publisher, id, version string, leader Leader, warmer LastRunner, interval time.Duration) *Heartbeater {
	if id == "" {
		id = uuid.New().String()
	}
	if interval <= 0 {
		interval = 15 * time.Second
	}
	hostname, _ := os.Hostname()
	return &Heartbeater{
		publisher: publisher,
		leader:    leader,
		warmer:    warmer,
		interval:  interval,
		id:        id,
		hostname:  hostname,
		version:   version,
		startedAt: time.Now().UTC(),
		stopChan:  make(chan struct{}),
	}
}

// ID returns the id heartbeats are published under.
func (h *Heartbeater) ID() string {
	return h.id
}

// Start publishes immediately and then every interval.
func (h *Heartbeater) Start() {
	h.wg.Add(1)
	go func() {
		defer h.wg.Done()
		ticker := time.NewTicker(h.interval)
		defer ticker.Stop()

		h.beatLogged()
		for {
			select {
			case <-h.stopChan:
				return
			case <-ticker.C:
				h.beatLogged()
			}
		}
	}()
}

// Stop ends the publish loop.
func (h *Heartbeater) Stop() {
	h.stopOnce.Do(func() { close(h.stopChan) })
	h.wg.Wait()
}

func (h *Heartbeater) beatLogged() {
	ctx, cancel := context.WithTimeout(context.Background(), h.interval)
	defer cancel()
	if err := h.Beat(ctx); err != nil {
		logger.WithField("instance_id", h.id).Warn("heartbeat publish failed", "error", err)
	}
}

// Beat publishes one heartbeat.
func (h *Heartbeater) Beat(ctx context.Context) error {
	hb := registry.Heartbeat{
		ID:            h.id,
		Hostname:      h.hostname,
		Version:       h.version,
		StartedAt:     h.startedAt,
		LastHeartbeat: time.Now().UTC(),
	}
	if h.leader != nil {
		hb.Leader = h.leader.IsLeader()
	}
	if h.warmer != nil {
		at, err := h.warmer.LastRun()
		hb.LastWarm = at
		if err != nil {
			hb.WarmError = err.Error()
		}
	}
	return h.publisher.Publish(ctx, hb, 3*h.interval)
}
