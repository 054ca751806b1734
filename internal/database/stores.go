package database

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"estatescout/internal/config"
	"estatescout/internal/repository"
	"estatescout/internal/repository/memory"
)

// OpenStores connects the backend selected by database.driver and returns
// its user and property stores.
func OpenStores(ctx context.Context, cfg *config.AppConfig, log zerolog.Logger) (repository.Stores, error) {
	switch cfg.Database.Driver {
	case config.DriverPostgres:
		pool, err := NewPostgresPool(ctx, cfg.Postgres)
		if err != nil {
			return repository.Stores{}, err
		}
		if cfg.Postgres.AutoMigrate {
			if err := Migrate(ctx, pool); err != nil {
				pool.Close()
				return repository.Stores{}, err
			}
			log.Info().Msg("postgres migrations applied")
		}
		return repository.Stores{
			Users:      repository.NewUserRepository(pool),
			Properties: repository.NewPropertyRepository(pool),
			Ping:       pool.Ping,
			Close: func(context.Context) error {
				pool.Close()
				return nil
			},
		}, nil

	case config.DriverMongo:
		db, err := NewMongoDatabase(ctx, cfg.Mongo)
		if err != nil {
			return repository.Stores{}, err
		}
		return mongoStores(ctx, db, log)

	case config.DriverMemory:
		log.Warn().Msg("using in-memory stores; data is lost on restart")
		return memory.NewStores(), nil
	}

	return repository.Stores{}, fmt.Errorf("unknown database driver %q", cfg.Database.Driver)
}

// mongoStores prepares the collections on db. The client is disconnected when
// the indexes cannot be created.
func mongoStores(ctx context.Context, db *mongo.Database, log zerolog.Logger) (repository.Stores, error) {
	users := repository.NewMongoUserRepository(db)
	properties := repository.NewMongoPropertyRepository(db)
	if err := ensureIndexes(ctx, users, properties); err != nil {
		if dErr := db.Client().Disconnect(context.Background()); dErr != nil {
			log.Warn().Err(dErr).Msg("mongo disconnect after index failure")
		}
		return repository.Stores{}, err
	}
	return repository.Stores{
		Users:      users,
		Properties: properties,
		Ping: func(ctx context.Context) error {
			return db.Client().Ping(ctx, nil)
		},
		Close: db.Client().Disconnect,
	}, nil
}

type indexer interface {
	EnsureIndexes(ctx context.Context) error
}

func ensureIndexes(ctx context.Context, collections ...indexer) error {
	for _, c := range collections {
		if err := c.EnsureIndexes(ctx); err != nil {
			return fmt.Errorf("ensure indexes: %w", err)
		}
	}
	return nil
}
