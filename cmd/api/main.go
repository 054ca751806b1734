package main

import (
	"context"
	"errors"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"estatescout/internal/cache"
	"estatescout/internal/config"
	"estatescout/internal/database"
	"estatescout/internal/handlers"
	"estatescout/internal/jobs"
	"estatescout/internal/log"
	"estatescout/internal/queue"
	"estatescout/internal/repository"
	"estatescout/internal/security"
	"estatescout/internal/server"
	"estatescout/internal/service"
	"estatescout/internal/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := log.New(cfg.Environment, cfg.Logging.Level)

	ctx := context.Background()

	stores, err := database.OpenStores(ctx, cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Str("driver", cfg.Database.Driver).Msg("failed to open stores")
	}

	redisClient, err := cache.Connect(ctx, cfg.Redis)
	switch {
	case errors.Is(err, cache.ErrDisabled):
		logger.Warn().Msg("redis disabled; listing cache and media tasks are off")
	case err != nil:
		logger.Fatal().Err(err).Msg("failed to connect redis")
	}

	objectStore, err := storage.NewObjectStore(cfg.Storage)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to init object store")
	}
	if err := objectStore.EnsureBucket(ctx); err != nil {
		logger.Warn().Err(err).Msg("ensure bucket failed")
	}

	tokens, err := security.NewTokenService(
		cfg.Security.AccessSecret,
		cfg.Security.RefreshSecret,
		security.WithTTL(cfg.Security.AccessTTL, cfg.Security.RefreshTTL),
	)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to init token service")
	}

	producer := queue.NewProducer(redisClient, cfg.Worker.Stream)
	listings := cache.NewListings(redisClient, cfg.Redis.CacheTTL)
	media := service.NewMediaService(objectStore, cfg.Storage.MaxBytes, logger)

	services := handlers.Services{
		Auth:       service.NewAuthService(stores.Users, tokens, cfg.Security.BcryptCost, logger),
		Users:      service.NewUserService(stores.Users, stores.Properties, producer, logger),
		Properties: service.NewPropertyService(stores.Properties, stores.Users, media, listings, producer, logger),
	}
	checks := handlers.Checks{
		Database: stores.Ping,
		Storage:  objectStore.Ping,
	}
	if redisClient != nil {
		checks.Cache = func(ctx context.Context) error { return redisClient.Ping(ctx).Err() }
	}

	handlerSet := handlers.NewHandlerSet(logger, cfg.Environment, services, checks)
	httpServer := server.NewHTTPServer(cfg, logger, handlerSet)

	var scheduler *jobs.Scheduler
	if redisClient != nil {
		scheduler = jobs.NewScheduler(producer, cfg.Worker.SweepSchedule, logger)
		if err := scheduler.Start(); err != nil {
			logger.Error().Err(err).Msg("scheduler start failed")
		}
	}

	go func() {
		if err := httpServer.Start(); err != nil {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	waitForShutdown(logger, httpServer, scheduler, stores, redisClient)
}

func waitForShutdown(logger zerolog.Logger, srv *server.HTTPServer, scheduler *jobs.Scheduler, stores repository.Stores, redisClient *redis.Client) {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()
	logger.Info().Msg("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
	}

	if scheduler != nil {
		scheduler.Stop(shutdownCtx)
	}

	if err := stores.Close(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("store close error")
	}
	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			logger.Error().Err(err).Msg("redis close error")
		}
	}

	logger.Info().Msg("server exited cleanly")
}
