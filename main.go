package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/wvflights/flightlog-api/api"
	"github.com/wvflights/flightlog-api/config"
	"github.com/wvflights/flightlog-api/db"
	"github.com/wvflights/flightlog-api/pkg/buildinfo"
	"github.com/wvflights/flightlog-api/pkg/cache"
	"github.com/wvflights/flightlog-api/pkg/health"
	"github.com/wvflights/flightlog-api/pkg/logger"
	"github.com/wvflights/flightlog-api/pkg/registry"
	"github.com/wvflights/flightlog-api/service"
	"github.com/wvflights/flightlog-api/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal(err, "Failed to load configuration")
	}

	logger.Init(logger.Config{
		Level:      cfg.LoggingConfig.Level,
		Format:     cfg.LoggingConfig.Format,
		File:       cfg.LoggingConfig.File,
		MaxSizeMB:  cfg.LoggingConfig.MaxSizeMB,
		MaxBackups: cfg.LoggingConfig.MaxBackups,
	})
	build := buildinfo.Get()
	logger.Info("Starting flightlog-api", "version", build.Version, "commit", build.Commit, "environment", cfg.Environment)

	ctx := context.Background()

	postgresDB, err := db.NewPostgresDB(cfg.PostgresConfig)
	if err != nil {
		logger.Fatal(err, "Failed to connect to PostgreSQL")
	}
	defer postgresDB.Close()

	if cfg.InitSchema {
		if err := postgresDB.Migrate(ctx); err != nil {
			logger.Fatal(err, "Failed to migrate PostgreSQL schema")
		}
	}
	if cfg.SQLFile != "" {
		if err := postgresDB.LoadSQLFile(ctx, cfg.SQLFile); err != nil {
			logger.Fatal(err, "Failed to load SQL file", "path", cfg.SQLFile)
		}
	}

	healthChecker := health.NewHealthChecker(build.Version)
	healthChecker.AddChecker(&health.PostgresChecker{DB: postgresDB, Name: "postgres"})

	var (
		redisClient *redis.Client
		backend     cache.Cache
	)
	if cfg.RedisConfig.Enabled {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisConfig.Addr(),
			Password: cfg.RedisConfig.Password,
			DB:       cfg.RedisConfig.DB,
		})
		defer redisClient.Close()
		if err := redisClient.Ping(ctx).Err(); err != nil {
			logger.Warn("Redis unreachable at startup; cache reads will fall through to PostgreSQL", "addr", cfg.RedisConfig.Addr(), "error", err)
		}
		backend = cache.NewRedisCache(redisClient, cfg.CacheConfig.Prefix)
		healthChecker.AddChecker(&health.RedisChecker{Client: redisClient, Name: "redis"})
	} else {
		backend = cache.NewLocalCache(cfg.CacheConfig.LocalSize, cfg.CacheConfig.TTL)
	}
	cacheManager := cache.NewCacheManager(backend)

	svc := service.New(postgresDB, cacheManager, cfg.CacheConfig.TTL)

	var (
		warmer     *worker.CacheWarmer
		leader     *worker.LeaderElector
		instanceID string
	)
	if cfg.WorkerConfig.CacheWarmEnabled {
		var l worker.Leader
		if redisClient != nil {
			leader = worker.NewLeaderElector(redisClient, cfg.WorkerConfig.LeaderLockKey, cfg.WorkerConfig.LeaderLockTTL, cfg.WorkerConfig.LeaderLockRenew)
			leader.Start()
			defer leader.Stop()
			l = leader
			instanceID = leader.InstanceID()
		}
		warmer = worker.NewCacheWarmer(svc, nil, l, cfg.WorkerConfig.CacheWarmSchedule, cfg.WorkerConfig.JobTimeout)
		if err := warmer.Start(); err != nil {
			logger.Fatal(err, "Failed to start cache warmer")
		}
		defer warmer.Stop()
		healthChecker.AddChecker(&health.WarmerChecker{Warmer: warmer, Name: "cache_warmer"})
	}

	var instances *registry.Registry
	if redisClient != nil {
		instances = registry.New(redisClient, cfg.CacheConfig.Prefix)
		var (
			l  worker.Leader
			lr worker.LastRunner
		)
		if leader != nil {
			l = leader
		}
		if warmer != nil {
			lr = warmer
		}
		hb := worker.NewHeartbeater(instances, instanceID, build.Version, l, lr, cfg.WorkerConfig.HeartbeatInterval)
		hb.Start()
		defer hb.Stop()
		logger.Info("Publishing heartbeats", "instance_id", hb.ID())
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	if !cfg.APIEnabled {
		logger.Info("API disabled; running background jobs only")
		<-quit
		return
	}

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	deps := api.Deps{
		Service: svc,
		Health:  healthChecker,
		Cache:   cacheManager,
		Config:  cfg,
	}
	if warmer != nil {
		deps.Warmer = warmer
	}
	if instances != nil {
		deps.Instances = instances
	}
	api.RegisterRoutes(router, deps)

	srv := &http.Server{
		Addr:              cfg.HTTPBindAddr + ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("Server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal(err, "Failed to start server")
		}
	}()

	<-quit
	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error(err, "Server forced to shutdown")
		return
	}
	logger.Info("Server exited properly")
}
