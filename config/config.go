package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	Port            string
	HTTPBindAddr    string
	APIEnabled      bool
	Environment     string
	LoggingConfig   LoggingConfig
	PostgresConfig  PostgresConfig
	RedisConfig     RedisConfig
	CacheConfig     CacheConfig
	WorkerConfig    WorkerConfig
	AdminAuthConfig AdminAuthConfig
	InitSchema      bool
	SQLFile         string
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level      string
	Format     string
	File       string
	MaxSizeMB  int
	MaxBackups int
}

// PostgresConfig holds PostgreSQL connection configuration
type PostgresConfig struct {
	Driver       string // "postgres" (lib/pq) or "pgx"
	Host         string
	Port         string
	User         string
	Password     string
	DBName       string
	SSLMode      string
	MaxOpenConns int
	QueryTimeout time.Duration
}

// DSN renders the connection URL accepted by both supported drivers.
func (c PostgresConfig) DSN() string {
	u := url.URL{
		Scheme: "postgres",
		Host:   c.Host + ":" + c.Port,
		Path:   "/" + c.DBName,
	}
	if c.Password != "" {
		u.User = url.UserPassword(c.User, c.Password)
	} else {
		u.User = url.User(c.User)
	}
	q := url.Values{}
	q.Set("sslmode", c.SSLMode)
	u.RawQuery = q.Encode()
	return u.String()
}

// RedisConfig holds Redis connection configuration
type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     string
	Password string
	DB       int
}

// Addr returns host:port.
func (c RedisConfig) Addr() string {
	return c.Host + ":" + c.Port
}

// CacheConfig controls the load cache and the HTTP response cache.
type CacheConfig struct {
	Prefix      string
	TTL         time.Duration
	ResponseTTL time.Duration
	LocalSize   int // entries held in-process when Redis is disabled
}

// WorkerConfig holds the cache warmer schedule.
type WorkerConfig struct {
	CacheWarmEnabled  bool
	CacheWarmSchedule string
	JobTimeout        time.Duration
	LeaderLockKey     string
	LeaderLockTTL     time.Duration
	LeaderLockRenew   time.Duration
	HeartbeatInterval time.Duration
}

// AdminAuthConfig holds admin authentication configuration
type AdminAuthConfig struct {
	Enabled  bool
	Username string
	Password string
	Token    string // Alternative: Bearer token auth
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load(".env")

	apiEnabled, _ := strconv.ParseBool(getEnv("API_ENABLED", "true"))
	initSchema, _ := strconv.ParseBool(getEnv("INIT_SCHEMA", "false"))

	logMaxSize, _ := strconv.Atoi(getEnv("LOG_MAX_SIZE_MB", "100"))
	logMaxBackups, _ := strconv.Atoi(getEnv("LOG_MAX_BACKUPS", "3"))
	loggingConfig := LoggingConfig{
		Level:      getEnv("LOG_LEVEL", "info"),
		Format:     getEnv("LOG_FORMAT", "json"),
		File:       getEnv("LOG_FILE", ""),
		MaxSizeMB:  logMaxSize,
		MaxBackups: logMaxBackups,
	}

	maxOpen, _ := strconv.Atoi(getEnv("DB_MAX_OPEN_CONNS", "10"))
	queryTimeout := getDuration("DB_QUERY_TIMEOUT", 10*time.Second)
	postgresConfig := PostgresConfig{
		Driver:       strings.ToLower(getEnv("DB_DRIVER", "postgres")),
		Host:         getEnv("DB_HOST", "postgres"),
		Port:         getEnv("DB_PORT", "5432"),
		User:         getEnv("DB_USER", "flightlog"),
		Password:     getEnv("DB_PASSWORD", ""),
		DBName:       getEnv("DB_NAME", "flightlog"),
		SSLMode:      getEnv("DB_SSLMODE", "disable"),
		MaxOpenConns: maxOpen,
		QueryTimeout: queryTimeout,
	}

	redisEnabled, _ := strconv.ParseBool(getEnv("REDIS_ENABLED", "true"))
	redisDB, _ := strconv.Atoi(getEnv("REDIS_DB", "0"))
	redisConfig := RedisConfig{
		Enabled:  redisEnabled,
		Host:     getEnv("REDIS_HOST", "redis"),
		Port:     getEnv("REDIS_PORT", "6379"),
		Password: getEnv("REDIS_PASSWORD", ""),
		DB:       redisDB,
	}

	localSize, _ := strconv.Atoi(getEnv("CACHE_LOCAL_SIZE", "256"))
	cacheConfig := CacheConfig{
		Prefix:      getEnv("CACHE_PREFIX", "flightlog"),
		TTL:         getDuration("CACHE_TTL", time.Hour),
		ResponseTTL: getDuration("RESPONSE_CACHE_TTL", 5*time.Minute),
		LocalSize:   localSize,
	}

	warmEnabled, _ := strconv.ParseBool(getEnv("CACHE_WARM_ENABLED", "true"))
	workerConfig := WorkerConfig{
		CacheWarmEnabled:  warmEnabled,
		CacheWarmSchedule: getEnv("CACHE_WARM_SCHEDULE", "@every 30m"),
		JobTimeout:        getDuration("CACHE_WARM_TIMEOUT", 2*time.Minute),
		LeaderLockKey:     getEnv("LEADER_LOCK_KEY", "leader:flightlog:warmer"),
		LeaderLockTTL:     getDuration("LEADER_LOCK_TTL", 30*time.Second),
		LeaderLockRenew:   getDuration("LEADER_LOCK_RENEW", 10*time.Second),
		HeartbeatInterval: getDuration("HEARTBEAT_INTERVAL", 15*time.Second),
	}

	// Admin authentication config
	adminAuthEnabled, _ := strconv.ParseBool(getEnv("ADMIN_AUTH_ENABLED", "false"))
	adminAuthConfig := AdminAuthConfig{
		Enabled:  adminAuthEnabled,
		Username: getEnv("ADMIN_AUTH_USERNAME", ""),
		Password: getEnv("ADMIN_AUTH_PASSWORD", ""),
		Token:    getEnv("ADMIN_AUTH_TOKEN", ""),
	}

	cfg := &Config{
		Port:            getEnv("PORT", "8080"),
		HTTPBindAddr:    getEnv("HTTP_BIND_ADDR", ""),
		APIEnabled:      apiEnabled,
		Environment:     getEnv("ENVIRONMENT", "development"),
		LoggingConfig:   loggingConfig,
		PostgresConfig:  postgresConfig,
		RedisConfig:     redisConfig,
		CacheConfig:     cacheConfig,
		WorkerConfig:    workerConfig,
		AdminAuthConfig: adminAuthConfig,
		InitSchema:      initSchema,
		SQLFile:         getEnv("SQL_FILE", ""),
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings the service cannot start with.
func (c *Config) Validate() error {
	switch c.PostgresConfig.Driver {
	case "postgres", "pgx":
	default:
		return fmt.Errorf("config: unsupported DB_DRIVER %q (want postgres or pgx)", c.PostgresConfig.Driver)
	}
	// Cache clears delete every key under the cache prefix.
	if c.CacheConfig.Prefix != "" && strings.HasPrefix(c.WorkerConfig.LeaderLockKey, c.CacheConfig.Prefix+":") {
		return fmt.Errorf("config: LEADER_LOCK_KEY %q must not sit under CACHE_PREFIX %q", c.WorkerConfig.LeaderLockKey, c.CacheConfig.Prefix)
	}
	if c.AdminAuthConfig.Enabled && c.AdminAuthConfig.Token == "" &&
		(c.AdminAuthConfig.Username == "" || c.AdminAuthConfig.Password == "") {
		return fmt.Errorf("config: admin auth enabled without token or username/password")
	}
	return nil
}

// TestConfig returns a default test configuration
func TestConfig() *Config {
	return &Config{
		Port:        "8080",
		APIEnabled:  true,
		Environment: "test",
		LoggingConfig: LoggingConfig{
			Level:  "debug",
			Format: "text",
		},
		PostgresConfig: PostgresConfig{
			Driver:       "postgres",
			Host:         getEnv("DB_HOST", "localhost"),
			Port:         getEnv("DB_PORT", "5432"),
			User:         getEnv("DB_USER", "flightlog"),
			Password:     getEnv("DB_PASSWORD", ""),
			DBName:       getEnv("DB_NAME_TEST", "flightlog_test"),
			SSLMode:      "disable",
			MaxOpenConns: 2,
			QueryTimeout: 5 * time.Second,
		},
		CacheConfig: CacheConfig{
			Prefix:      "flightlog_test",
			TTL:         time.Minute,
			ResponseTTL: time.Minute,
			LocalSize:   16,
		},
	}
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if len(strings.TrimSpace(value)) == 0 {
		return defaultValue
	}
	return strings.TrimSpace(value)
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	d, err := time.ParseDuration(getEnv(key, defaultValue.String()))
	if err != nil || d <= 0 {
		return defaultValue
	}
	return d
}
