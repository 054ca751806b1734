package main

import (
	"context"
	"errors"
	"os/signal"
	"syscall"
	"time"

	"estatescout/internal/cache"
	"estatescout/internal/config"
	"estatescout/internal/database"
	"estatescout/internal/log"
	"estatescout/internal/queue"
	"estatescout/internal/service"
	"estatescout/internal/storage"
	"estatescout/internal/tasks"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := log.New(cfg.Environment, cfg.Logging.Level).With().Str("component", "worker").Logger()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client, err := cache.Connect(ctx, cfg.Redis)
	if err != nil {
		logger.Fatal().Err(err).Msg("redis connection failed")
	}
	defer client.Close()

	stores, err := database.OpenStores(ctx, cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to open stores")
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := stores.Close(closeCtx); err != nil {
			logger.Error().Err(err).Msg("store close error")
		}
	}()

	objectStore, err := storage.NewObjectStore(cfg.Storage)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to init object store")
	}

	media := service.NewMediaService(objectStore, cfg.Storage.MaxBytes, logger)
	listings := cache.NewListings(client, cfg.Redis.CacheTTL)
	properties := service.NewPropertyService(stores.Properties, stores.Users, media, listings, nil, logger)

	processor := tasks.NewProcessor(media, properties, logger)
	consumer := queue.NewConsumer(
		client,
		cfg.Worker.Stream,
		cfg.Worker.Group,
		cfg.Worker.Consumer,
		cfg.Worker.ClaimInterval,
		logger,
		processor,
	)

	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := consumer.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error().Err(err).Msg("consumer stopped unexpectedly")
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info().Msg("shutdown signal received")

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		logger.Warn().Msg("consumer did not stop in time")
	}
}
