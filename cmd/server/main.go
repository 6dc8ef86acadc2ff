package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/mcoot/tabletag-go/internal/api"
	"github.com/mcoot/tabletag-go/internal/factory"
	"github.com/mcoot/tabletag-go/internal/services/identity"
	redisstorage "github.com/mcoot/tabletag-go/internal/storage/redis"
	sqlitestorage "github.com/mcoot/tabletag-go/internal/storage/sqlite"
)

func main() {
	// Set up logging with JSON output
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	// Build factory config from environment
	storageType := os.Getenv("STORAGE_TYPE")
	if storageType == "" {
		storageType = factory.StorageTypeSQLite
	}

	identityCfg := identity.DefaultConfig()
	identityCfg.RootToken = os.Getenv("ROOT_TOKEN")

	cfg := factory.Config{
		Logger:         logger,
		StorageType:    storageType,
		IdentityConfig: identityCfg,
	}

	switch storageType {
	case factory.StorageTypeRedis:
		redisURL := os.Getenv("REDIS_URL")
		if redisURL == "" {
			logger.Error("REDIS_URL required when STORAGE_TYPE=redis")
			os.Exit(1)
		}
		redisCfg := redisstorage.DefaultConfig()
		redisCfg.URL = redisURL
		cfg.RedisConfig = &redisCfg
	case factory.StorageTypeSQLite:
		sqliteCfg := sqlitestorage.DefaultConfig()
		if path := os.Getenv("SQLITE_PATH"); path != "" {
			sqliteCfg.Path = path
		}
		cfg.SQLiteConfig = &sqliteCfg
	}

	// Create application factory
	app, err := factory.New(cfg)
	if err != nil {
		logger.Error("failed to create application", slog.String("error", err.Error()))
		os.Exit(1)
	}

	devMode := os.Getenv("DEV_MODE") == "true"
	if devMode {
		logger.Warn("dev mode enabled, session cookies are not marked Secure")
	}
	if identityCfg.RootToken != "" {
		logger.Info("root token configured")
	}

	// Create API router
	router := api.NewRouter(api.RouterConfig{
		Logger:          logger,
		Guard:           app.Guard,
		IdentityService: app.IdentityService,
		PlayerService:   app.PlayerService,
		DevMode:         devMode,
	})

	// Create server
	serverConfig := api.DefaultServerConfig()
	if port := os.Getenv("PORT"); port != "" {
		p, err := strconv.Atoi(port)
		if err != nil {
			logger.Error("invalid PORT", slog.String("port", port))
			os.Exit(1)
		}
		serverConfig.Port = p
	}
	server := api.NewServer(router, serverConfig, logger)

	// Handle graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		logger.Info("shutdown signal received")
		cancel()
	}()

	// Start server in goroutine
	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	logger.Info("server started", slog.String("addr", server.Addr()))

	// Wait for shutdown or error
	select {
	case err := <-errCh:
		if err != nil {
			logger.Error("server error", slog.String("error", err.Error()))
			os.Exit(1)
		}
	case <-ctx.Done():
		if err := server.Shutdown(context.Background()); err != nil {
			logger.Error("shutdown error", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}

	if err := app.Close(); err != nil {
		logger.Error("failed to close storage", slog.String("error", err.Error()))
	}

	logger.Info("server stopped")
}
