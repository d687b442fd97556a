package main

import (
	"fmt"
	"os"

	"github.com/mark3labs/mcp-go/server"

	"github.com/wvflights/flightlog-api/config"
	"github.com/wvflights/flightlog-api/db"
	"github.com/wvflights/flightlog-api/pkg/buildinfo"
	"github.com/wvflights/flightlog-api/pkg/cache"
	"github.com/wvflights/flightlog-api/pkg/logger"
	"github.com/wvflights/flightlog-api/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		os.Exit(1)
	}

	// stdout carries the protocol
	logger.Init(logger.Config{
		Level:  cfg.LoggingConfig.Level,
		Format: cfg.LoggingConfig.Format,
		Output: os.Stderr,
	})

	store, err := db.NewPostgresDB(cfg.PostgresConfig)
	if err != nil {
		logger.Fatal(err, "Failed to connect to PostgreSQL")
	}
	defer store.Close()

	cm := cache.NewCacheManager(cache.NewLocalCache(cfg.CacheConfig.LocalSize, cfg.CacheConfig.TTL))
	svc := service.New(store, cm, cfg.CacheConfig.TTL)

	s := server.NewMCPServer(
		"wv-flightlog-mcp",
		buildinfo.Get().Version,
		server.WithLogging(),
	)
	registerTools(s, svc)

	if err := server.ServeStdio(s); err != nil {
		fmt.Fprintf(os.Stderr, "Server error: %v\n", err)
	}
}
