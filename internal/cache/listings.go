package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const listingsKey = "properties:all"

// Listings caches the rendered listing index. A nil client disables caching.
type Listings struct {
	client *redis.Client
	ttl    time.Duration
}

func NewListings(client *redis.Client, ttl time.Duration) *Listings {
	return &Listings{client: client, ttl: ttl}
}

// Get decodes the cached index into out. It reports false on a miss.
func (l *Listings) Get(ctx context.Context, out any) (bool, error) {
	if l == nil || l.client == nil {
		return false, nil
	}
	raw, err := l.client.Get(ctx, listingsKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return false, err
	}
	return true, nil
}

func (l *Listings) Set(ctx context.Context, value any) error {
	if l == nil || l.client == nil {
		return nil
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return l.client.Set(ctx, listingsKey, raw, l.ttl).Err()
}

func (l *Listings) Invalidate(ctx context.Context) error {
	if l == nil || l.client == nil {
		return nil
	}
	return l.client.Del(ctx, listingsKey).Err()
}
