package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestLoad tests the Load function which reads from environment variables.
func TestLoad(t *testing.T) {
	// Clear existing env vars that might interfere
	os.Clearenv()

	t.Run("defaults", func(t *testing.T) {
		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "8080", cfg.Port)
		assert.Equal(t, "development", cfg.Environment)
		assert.True(t, cfg.APIEnabled)
		assert.False(t, cfg.InitSchema)
		assert.Empty(t, cfg.SQLFile)
		assert.Equal(t, "postgres", cfg.PostgresConfig.Driver)
		assert.Equal(t, "postgres", cfg.PostgresConfig.Host)
		assert.Equal(t, "flightlog", cfg.PostgresConfig.DBName)
		assert.Equal(t, 10*time.Second, cfg.PostgresConfig.QueryTimeout)
		assert.True(t, cfg.RedisConfig.Enabled)
		assert.Equal(t, "redis:6379", cfg.RedisConfig.Addr())
		assert.Equal(t, "flightlog", cfg.CacheConfig.Prefix)
		assert.Equal(t, time.Hour, cfg.CacheConfig.TTL)
		assert.Equal(t, 5*time.Minute, cfg.CacheConfig.ResponseTTL)
		assert.Equal(t, "@every 30m", cfg.WorkerConfig.CacheWarmSchedule)
		assert.Equal(t, 15*time.Second, cfg.WorkerConfig.HeartbeatInterval)
		assert.Equal(t, "leader:flightlog:warmer", cfg.WorkerConfig.LeaderLockKey)
		assert.True(t, cfg.WorkerConfig.CacheWarmEnabled)
		assert.Equal(t, "json", cfg.LoggingConfig.Format)
	})

	t.Run("environment variable override", func(t *testing.T) {
		t.Setenv("PORT", "9090")
		t.Setenv("ENVIRONMENT", "production")
		t.Setenv("DB_DRIVER", "PGX")
		t.Setenv("DB_HOST", "db.example.com")
		t.Setenv("DB_QUERY_TIMEOUT", "3s")
		t.Setenv("REDIS_ENABLED", "false")
		t.Setenv("CACHE_TTL", "15m")
		t.Setenv("SQL_FILE", " data/data.sql ")
		t.Setenv("CACHE_WARM_SCHEDULE", "0 */2 * * *")

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "9090", cfg.Port)
		assert.Equal(t, "production", cfg.Environment)
		assert.Equal(t, "pgx", cfg.PostgresConfig.Driver)
		assert.Equal(t, "db.example.com", cfg.PostgresConfig.Host)
		assert.Equal(t, 3*time.Second, cfg.PostgresConfig.QueryTimeout)
		assert.False(t, cfg.RedisConfig.Enabled)
		assert.Equal(t, 15*time.Minute, cfg.CacheConfig.TTL)
		assert.Equal(t, "data/data.sql", cfg.SQLFile)
		assert.Equal(t, "0 */2 * * *", cfg.WorkerConfig.CacheWarmSchedule)
	})

	t.Run("bad duration falls back", func(t *testing.T) {
		t.Setenv("CACHE_TTL", "soon")
		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, time.Hour, cfg.CacheConfig.TTL)
	})

	t.Run("unsupported driver", func(t *testing.T) {
		t.Setenv("DB_DRIVER", "mysql")
		_, err := Load()
		assert.Error(t, err)
	})

	t.Run("leader lock inside cache namespace", func(t *testing.T) {
		t.Setenv("LEADER_LOCK_KEY", "flightlog:warmer:leader")
		_, err := Load()
		assert.Error(t, err)

		t.Setenv("CACHE_PREFIX", "fl")
		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, "flightlog:warmer:leader", cfg.WorkerConfig.LeaderLockKey)
	})

	t.Run("admin auth without credentials", func(t *testing.T) {
		t.Setenv("ADMIN_AUTH_ENABLED", "true")
		_, err := Load()
		assert.Error(t, err)

		t.Setenv("ADMIN_AUTH_TOKEN", "s3cret")
		cfg, err := Load()
		require.NoError(t, err)
		assert.True(t, cfg.AdminAuthConfig.Enabled)
	})
}

func TestPostgresConfig_DSN(t *testing.T) {
	c := PostgresConfig{Host: "db", Port: "5432", User: "wv", Password: "p@ss word", DBName: "flights", SSLMode: "disable"}
	assert.Equal(t, "postgres://wv:p%40ss%20word@db:5432/flights?sslmode=disable", c.DSN())

	c.Password = ""
	assert.Equal(t, "postgres://wv@db:5432/flights?sslmode=disable", c.DSN())
}

func TestTestConfig(t *testing.T) {
	cfg := TestConfig()
	assert.Equal(t, "test", cfg.Environment)
	assert.False(t, cfg.RedisConfig.Enabled)
	assert.False(t, cfg.WorkerConfig.CacheWarmEnabled)
	require.NoError(t, cfg.Validate())
}
