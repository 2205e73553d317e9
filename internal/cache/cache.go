package cache

import (
	"context"
	"time"
)

// Cache stores JSON-serializable values for a bounded time.
type Cache interface {
	Get(ctx context.Context, key string, dest any) (bool, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
}

type NoopCache struct{}

func (NoopCache) Get(ctx context.Context, key string, dest any) (bool, error) {
	return false, nil
}

func (NoopCache) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	return nil
}
