package worker

import (
	"context"
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/wvflights/flightlog-api/pkg/logger"
)

// LeaderElector holds a Redis lock so that only one replica runs the
// scheduled cache warm.
type LeaderElector struct {
	redisClient   *redis.Client
	lockKey       string
	lockTTL       time.Duration
	renewInterval time.Duration
	instanceID    string
	isLeader      atomic.Bool
	stopChan      chan struct{}
	stopOnce      sync.Once
	wg            sync.WaitGroup
	log           *logger.Logger
}

// NewLeaderElector creates a new leader elector. The lock is renewed every
// renewInterval and expires after lockTTL if the holder disappears.
func NewLeaderElector(redisClient *redis.Client, lockKey string, lockTTL, renewInterval time.Duration) *LeaderElector {
	hostname, err := os.Hostname()
	if err != nil || hostname == "" {
		hostname = "flightlog"
	}
	instanceID := fmt.Sprintf("%s-%d", hostname, time.Now().UnixNano())

	return &LeaderElector{
		redisClient:   redisClient,
		lockKey:       lockKey,
		lockTTL:       lockTTL,
		renewInterval: renewInterval,
		instanceID:    instanceID,
		stopChan:      make(chan struct{}),
		log:           logger.WithFields(map[string]interface{}{"component": "leader", "instance": instanceID}),
	}
}

// Start begins the election loop in the background.
func (le *LeaderElector) Start() {
	le.wg.Add(1)
	go le.electionLoop()
	le.log.Info("leader election started", "key", le.lockKey, "ttl", le.lockTTL)
}

// Stop ends the loop and releases the lock if held.
func (le *LeaderElector) Stop() {
	le.stopOnce.Do(func() { close(le.stopChan) })
	le.wg.Wait()

	if le.isLeader.Swap(false) {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		le.releaseLock(ctx)
	}
}

// IsLeader returns whether this instance currently holds leadership.
func (le *LeaderElector) IsLeader() bool {
	return le.isLeader.Load()
}

// InstanceID returns the unique identifier for this instance.
func (le *LeaderElector) InstanceID() string {
	return le.instanceID
}

func (le *LeaderElector) electionLoop() {
	defer le.wg.Done()

	le.tryMaintainLeadership()

	ticker := time.NewTicker(le.renewInterval)
	defer ticker.Stop()
	for {
		select {
		case <-le.stopChan:
			return
		case <-ticker.C:
			le.tryMaintainLeadership()
		}
	}
}

func (le *LeaderElector) tryMaintainLeadership() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if le.isLeader.Load() {
		if !le.renewLock(ctx) {
			le.isLeader.Store(false)
			le.log.Warn("lost leadership")
		}
		return
	}
	if le.tryAcquireLock(ctx) {
		le.isLeader.Store(true)
		le.log.Info("acquired leadership")
	}
}

func (le *LeaderElector) tryAcquireLock(ctx context.Context) bool {
	ok, err := le.redisClient.SetNX(ctx, le.lockKey, le.instanceID, le.lockTTL).Result()
	if err != nil {
		le.log.Error(err, "acquire leader lock")
		return false
	}
	return ok
}

// Both scripts act only when the lock still holds our instance id.
var (
	renewScript = redis.NewScript(`
	if redis.call("GET", KEYS[1]) == ARGV[1] then
		return redis.call("PEXPIRE", KEYS[1], ARGV[2])
	end
	return 0
`)
	releaseScript = redis.NewScript(`
	if redis.call("GET", KEYS[1]) == ARGV[1] then
		return redis.call("DEL", KEYS[1])
	end
	return 0
`)
)

func (le *LeaderElector) renewLock(ctx context.Context) bool {
	n, err := renewScript.Run(ctx, le.redisClient, []string{le.lockKey}, le.instanceID, le.lockTTL.Milliseconds()).Int()
	if err != nil {
		le.log.Error(err, "renew leader lock")
		return false
	}
	return n == 1
}

func (le *LeaderElector) releaseLock(ctx context.Context) {
	n, err := releaseScript.Run(ctx, le.redisClient, []string{le.lockKey}, le.instanceID).Int()
	if err != nil {
		le.log.Error(err, "release leader lock")
		return
	}
	le.log.Info("leader election stopped", "released", n == 1)
}
