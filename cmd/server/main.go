package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/oggyb/mockmatch/internal/app"
	"github.com/oggyb/mockmatch/internal/cache"
	"github.com/oggyb/mockmatch/internal/config"
	"github.com/oggyb/mockmatch/internal/db"
	"github.com/oggyb/mockmatch/internal/logger"
	"github.com/oggyb/mockmatch/internal/server"
	"github.com/oggyb/mockmatch/internal/service/matching"
)

func main() {
	cfg := config.New()

	// Init logger (global singleton)
	logger.InitFromConfig(cfg)
	log := logger.L()

	// Init DB
	database, err := db.NewDB(cfg)
	if err != nil {
		log.Error("failed to init db", "err", err)
		os.Exit(1)
	}

	// Init Redis
	redisCache := cache.NewRedisCache(cfg, log)
	if err := redisCache.Ping(context.Background()); err != nil {
		log.Error("failed to connect to redis", "err", err)
		os.Exit(1)
	}
	defer redisCache.Close()

	appCtx, err := app.New(cfg, database, redisCache, log)
	if err != nil {
		log.Error("failed to build app context", "err", err)
		os.Exit(1)
	}

	if cfg.App.ENV == "development" {
		if err := db.SeedTestData(database, log); err != nil {
			log.Error("failed to seed", "err", err)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	addr := cfg.GRPC.Host + ":" + cfg.GRPC.Port
	log.Info("starting gRPC server", "addr", addr)

	if err := server.StartGRPCServer(ctx, cfg, log, matching.NewRegistrar(appCtx)); err != nil {
		log.Error("failed to start gRPC server", "err", err)
		os.Exit(1)
	}
}
