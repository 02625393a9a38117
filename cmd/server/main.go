package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/duelhub/duelhub/internal/api"
	"github.com/duelhub/duelhub/internal/config"
	"github.com/duelhub/duelhub/internal/factory"
	"github.com/duelhub/duelhub/internal/services/lobby"
	"github.com/duelhub/duelhub/internal/services/match"
	redisstorage "github.com/duelhub/duelhub/internal/storage/redis"
	"github.com/duelhub/duelhub/internal/supervisor"
)

func main() {
	// Set up logging with JSON output
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		logger.Error("invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	factoryCfg := factory.Config{
		Logger:      logger,
		StorageType: cfg.StorageType,
		LobbyConfig: lobby.Config{
			Timeout:           cfg.LobbyTimeout,
			WarnWindow:        cfg.LobbyWarnWindow,
			RecentLogLength:   lobby.DefaultConfig().RecentLogLength,
			ExtendedLogLength: lobby.DefaultConfig().ExtendedLogLength,
		},
		MatchConfig: match.Config{
			WarnThreshold:    cfg.MatchWarnThreshold,
			TimeoutThreshold: cfg.MatchTimeoutThreshold,
			EndGraceDelay:    cfg.MatchEndGraceDelay,
			RecentLimit:      match.DefaultConfig().RecentLimit,
		},
	}
	if cfg.StorageType == factory.StorageTypeRedis {
		redisCfg := redisstorage.DefaultConfig()
		redisCfg.URL = cfg.RedisURL
		factoryCfg.RedisConfig = &redisCfg
	}

	app, err := factory.New(factoryCfg)
	if err != nil {
		logger.Error("failed to create application", slog.String("error", err.Error()))
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Seed the match id counter and load the account roster
	if err := app.MatchEngine.Start(ctx); err != nil {
		logger.Error("failed to start match engine", slog.String("error", err.Error()))
		os.Exit(1)
	}
	if err := app.AccountPool.Load(ctx); err != nil {
		logger.Error("failed to load account pool", slog.String("error", err.Error()))
		os.Exit(1)
	}

	router := api.NewRouter(api.RouterConfig{
		Logger:      logger,
		LobbyQueue:  app.LobbyQueue,
		MatchEngine: app.MatchEngine,
		AccountPool: app.AccountPool,
		Presence:    app.Presence,
		Storage:     app.Storage,
	})

	serverConfig := api.DefaultServerConfig()
	serverConfig.Host = cfg.Host
	serverConfig.Port = cfg.Port
	server := api.NewServer(router, serverConfig, logger)

	super := supervisor.New(supervisor.Config{
		LobbySweepInterval: cfg.LobbySweepInterval,
		MatchTickInterval:  cfg.MatchTickInterval,
	}, app.LobbyQueue, app.MatchEngine, logger)
	if err := super.Start(ctx); err != nil {
		logger.Error("failed to start supervisor", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Handle graceful shutdown
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
		if err := super.Stop(); err != nil {
			logger.Error("supervisor stop error", slog.String("error", err.Error()))
		}
		if err := server.Shutdown(context.Background()); err != nil {
			logger.Error("shutdown error", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}

	logger.Info("server stopped")
}
