package registry

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRegistry(t *testing.T) (*miniredis.Miniredis, *Registry) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return mr, New(rdb, "test")
}

func TestRegistry_PublishAndListActive(t *testing.T) {
	_, reg := newRegistry(t)
	ctx := context.Background()

	now := time.Now().UTC().Truncate(time.Second)
	hb := Heartbeat{
		ID:            "api-1",
		Hostname:      "host-a",
		Version:       "1.2.0",
		Leader:        true,
		LastWarm:      now.Add(-time.Minute),
		WarmError:     "db down",
		StartedAt:     now.Add(-10 * time.Minute),
		LastHeartbeat: now,
	}
	require.NoError(t, reg.Publish(ctx, hb, 30*time.Second))
	require.NoError(t, reg.Publish(ctx, Heartbeat{ID: "api-2", Hostname: "host-b"}, 30*time.Second))

	active, err := reg.ListActive(ctx, 35*time.Second, 100)
	require.NoError(t, err)
	require.Len(t, active, 2)

	byID := map[string]Heartbeat{}
	for _, a := range active {
		byID[a.ID] = a
	}
	got := byID["api-1"]
	assert.Equal(t, hb.Hostname, got.Hostname)
	assert.Equal(t, hb.Version, got.Version)
	assert.True(t, got.Leader)
	assert.Equal(t, hb.LastWarm, got.LastWarm)
	assert.Equal(t, "db down", got.WarmError)
	assert.Equal(t, hb.StartedAt, got.StartedAt)

	other := byID["api-2"]
	assert.False(t, other.Leader)
	assert.True(t, other.LastWarm.IsZero())
	assert.False(t, other.StartedAt.IsZero())
}

func TestRegistry_ExcludesStale(t *testing.T) {
	_, reg := newRegistry(t)
	ctx := context.Background()

	old := time.Now().UTC().Add(-5 * time.Minute)
	require.NoError(t, reg.Publish(ctx, Heartbeat{ID: "stale", LastHeartbeat: old}, time.Minute))
	require.NoError(t, reg.Publish(ctx, Heartbeat{ID: "fresh"}, time.Minute))

	active, err := reg.ListActive(ctx, time.Minute, 10)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "fresh", active[0].ID)
}

func TestRegistry_RequiresID(t *testing.T) {
	_, reg := newRegistry(t)
	assert.Error(t, reg.Publish(context.Background(), Heartbeat{}, time.Second))
}

func TestRegistry_NilClient(t *testing.T) {
	reg := New(nil, "test")
	assert.NoError(t, reg.Publish(context.Background(), Heartbeat{ID: "x"}, time.Second))

	active, err := reg.ListActive(context.Background(), time.Second, 1)
	require.NoError(t, err)
	assert.Empty(t, active)
}
