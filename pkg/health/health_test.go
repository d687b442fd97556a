package health

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubChecker struct {
	name     string
	err      error
	critical bool
}

func (s stubChecker) Check(ctx context.Context) Check {
	return timed(s.name, "stub", func() (map[string]string, error) { return nil, s.err })
}

func (s stubChecker) Critical() bool { return s.critical }

type stubRunner struct {
	at  time.Time
	err error
}

func (s stubRunner) LastRun() (time.Time, error) { return s.at, s.err }

func TestHealthChecker(t *testing.T) {
	h := NewHealthChecker("v1")
	h.AddChecker(stubChecker{name: "db", critical: true})
	h.AddChecker(stubChecker{name: "warm", err: errors.New("boom")})

	report := h.CheckHealth(context.Background())
	assert.Equal(t, StatusDown, report.Status)
	require.Len(t, report.Checks, 2)
	assert.Equal(t, StatusUp, report.Checks["db"].Status)
	assert.Equal(t, "boom", report.Checks["warm"].Details["error"])

	ready := h.CheckReadiness(context.Background())
	assert.Equal(t, StatusUp, ready.Status)
	assert.Len(t, ready.Checks, 1)

	live := h.CheckLiveness(context.Background())
	assert.Equal(t, StatusUp, live.Status)
	assert.Equal(t, "v1", live.Version)
}

func TestRedisChecker(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	c := &RedisChecker{Client: client, Name: "redis"}
	check := c.Check(context.Background())
	assert.Equal(t, StatusUp, check.Status)
	assert.Equal(t, "PONG", check.Details["ping_response"])

	mr.Close()
	check = c.Check(context.Background())
	assert.Equal(t, StatusDown, check.Status)
}

func TestWarmerChecker(t *testing.T) {
	never := (&WarmerChecker{Warmer: stubRunner{}, Name: "warm"}).Check(context.Background())
	assert.Equal(t, StatusUp, never.Status)
	assert.Equal(t, "never", never.Details["last_run"])

	failed := (&WarmerChecker{Warmer: stubRunner{at: time.Now(), err: errors.New("db down")}, Name: "warm"}).Check(context.Background())
	assert.Equal(t, StatusDown, failed.Status)
}
