package database

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"estatescout/internal/config"
)

type stubIndexer struct {
	err   error
	calls int
}

func (s *stubIndexer) EnsureIndexes(context.Context) error {
	s.calls++
	return s.err
}

func TestEnsureIndexesStopsAtFirstFailure(t *testing.T) {
	boom := errors.New("boom")
	first := &stubIndexer{err: boom}
	second := &stubIndexer{}

	err := ensureIndexes(context.Background(), first, second)
	require.ErrorIs(t, err, boom)
	assert.Equal(t, 1, first.calls)
	assert.Zero(t, second.calls)
}

func TestMongoStoresDisconnectsOnIndexFailure(t *testing.T) {
	client, err := mongo.Connect(options.Client().
		ApplyURI("mongodb://127.0.0.1:1/?serverSelectionTimeoutMS=200&connectTimeoutMS=200"))
	require.NoError(t, err)

	_, err = mongoStores(context.Background(), client.Database("estatescout_test"), zerolog.Nop())
	require.Error(t, err)

	// A second disconnect only fails this way when the first already ran.
	assert.ErrorIs(t, client.Disconnect(context.Background()), mongo.ErrClientDisconnected)
}

func TestOpenStoresMemory(t *testing.T) {
	cfg := &config.AppConfig{Database: config.DatabaseConfig{Driver: config.DriverMemory}}
	stores, err := OpenStores(context.Background(), cfg, zerolog.Nop())
	require.NoError(t, err)
	assert.NotNil(t, stores.Users)
	assert.NotNil(t, stores.Properties)
}

func TestOpenStoresUnknownDriver(t *testing.T) {
	cfg := &config.AppConfig{Database: config.DatabaseConfig{Driver: "sqlite"}}
	_, err := OpenStores(context.Background(), cfg, zerolog.Nop())
	assert.ErrorContains(t, err, `unknown database driver "sqlite"`)
}
