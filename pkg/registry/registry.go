// Package registry tracks the API replicas sharing one Redis through
// periodic heartbeats.
package registry

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultTTL = 45 * time.Second

// Heartbeat describes one replica at the time it last reported.
type Heartbeat struct {
	ID            string    `json:"id"`
	Hostname      string    `json:"hostname"`
	Version       string    `json:"version"`
	Leader        bool      `json:"leader"`
	LastWarm      time.Time `json:"last_warm"`
	WarmError     string    `json:"warm_error,omitempty"`
	StartedAt     time.Time `json:"started_at"`
	LastHeartbeat time.Time `json:"last_heartbeat"`
}

// Registry stores heartbeats in a sorted set scored by report time, with a
// hash of details per replica.
type Registry struct {
	redisClient *redis.Client
	namespace   string
}

// New creates a registry. A nil client makes every call a no-op.
func New(redisClient *redis.Client, namespace string) *Registry {
	return &Registry{
		redisClient: redisClient,
		namespace:   namespace,
	}
}

func (r *Registry) heartbeatsKey() string {
	return fmt.Sprintf("registry:%s:heartbeats", r.namespace)
}

func (r *Registry) metaKey(id string) string {
	return fmt.Sprintf("registry:%s:instance:%s", r.namespace, id)
}

func unix(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return strconv.FormatInt(t.Unix(), 10)
}

func parseUnix(s string) time.Time {
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return time.Time{}
	}
	return time.Unix(v, 0).UTC()
}

// Publish records hb and prunes replicas silent for ten TTLs.
func (r *Registry) Publish(ctx context.Context, hb Heartbeat, ttl time.Duration) error {
	if r == nil || r.redisClient == nil {
		return nil
	}
	if hb.ID == "" {
		return errors.New("instance id is required")
	}
	if ttl <= 0 {
		ttl = defaultTTL
	}

	now := time.Now().UTC()
	if hb.StartedAt.IsZero() {
		hb.StartedAt = now
	}
	if hb.LastHeartbeat.IsZero() {
		hb.LastHeartbeat = now
	}

	pipe := r.redisClient.Pipeline()
	pipe.ZAdd(ctx, r.heartbeatsKey(), redis.Z{
		Score:  float64(hb.LastHeartbeat.Unix()),
		Member: hb.ID,
	})
	pipe.HSet(ctx, r.metaKey(hb.ID),
		"hostname", hb.Hostname,
		"version", hb.Version,
		"leader", strconv.FormatBool(hb.Leader),
		"last_warm", unix(hb.LastWarm),
		"warm_error", hb.WarmError,
		"started_at", unix(hb.StartedAt),
		"last_heartbeat", unix(hb.LastHeartbeat),
	)
	pipe.Expire(ctx, r.metaKey(hb.ID), ttl*3)
	pipe.ZRemRangeByScore(ctx, r.heartbeatsKey(), "0", strconv.FormatInt(now.Add(-ttl*10).Unix(), 10))
	if _, err := pipe.Exec(ctx); err != nil && !errors.Is(err, redis.Nil) {
		return err
	}
	return nil
}

// ListActive returns replicas that reported within the window, most recent
// first.
func (r *Registry) ListActive(ctx context.Context, within time.Duration, limit int64) ([]Heartbeat, error) {
	if r == nil || r.redisClient == nil {
		return []Heartbeat{}, nil
	}
	if within <= 0 {
		within = defaultTTL
	}
	if limit <= 0 {
		limit = 100
	}

	now := time.Now().UTC()
	zs, err := r.redisClient.ZRevRangeByScoreWithScores(ctx, r.heartbeatsKey(), &redis.ZRangeBy{
		Max:   strconv.FormatInt(now.Unix(), 10),
		Min:   strconv.FormatInt(now.Add(-within).Unix(), 10),
		Count: limit,
	}).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, err
	}
	if len(zs) == 0 {
		return []Heartbeat{}, nil
	}

	type metaCmd struct {
		id    string
		cmd   *redis.MapStringStringCmd
		score time.Time
	}
	pipe := r.redisClient.Pipeline()
	cmds := make([]metaCmd, 0, len(zs))
	for _, z := range zs {
		id, ok := z.Member.(string)
		if !ok || id == "" {
			continue
		}
		var score time.Time
		if !math.IsNaN(z.Score) && !math.IsInf(z.Score, 0) {
			score = time.Unix(int64(z.Score), 0).UTC()
		}
		cmds = append(cmds, metaCmd{id: id, cmd: pipe.HGetAll(ctx, r.metaKey(id)), score: score})
	}
	if _, err := pipe.Exec(ctx); err != nil && !errors.Is(err, redis.Nil) {
		return nil, err
	}

	out := make([]Heartbeat, 0, len(cmds))
	for _, mc := range cmds {
		m := mc.cmd.Val()
		hb := Heartbeat{
			ID:            mc.id,
			Hostname:      m["hostname"],
			Version:       m["version"],
			Leader:        m["leader"] == "true",
			LastWarm:      parseUnix(m["last_warm"]),
			WarmError:     m["warm_error"],
			StartedAt:     parseUnix(m["started_at"]),
			LastHeartbeat: parseUnix(m["last_heartbeat"]),
		}
		// the hash may have expired before the set entry
		if hb.LastHeartbeat.IsZero() {
			hb.LastHeartbeat = mc.score
		}
		out = append(out, hb)
	}
	return out, nil
}
