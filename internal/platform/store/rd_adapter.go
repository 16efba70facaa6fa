package store

import (
	"context"
	"errors"
	"time"

	"trimline/internal/platform/store/rd"
)

// newRDAdapter is called by openers.go to wrap an existing *rd.RD
// and return the store.Cache seam (single return value)
func newRDAdapter(c *rd.RD) Cache {
	return &redisAdapter{inner: c}
}

// redisAdapter adapts *rd.RD to the store.Cache interface
type redisAdapter struct {
	inner *rd.RD
}

var _ Cache = (*redisAdapter)(nil)

func (a *redisAdapter) Get(ctx context.Context, key string) (string, bool, error) {
	if a == nil || a.inner == nil {
		return "", false, errors.New("store: nil redis adapter")
	}
	return a.inner.Get(ctx, key)
}

func (a *redisAdapter) Set(ctx context.Context, key, val string, ttl time.Duration) error {
	if a == nil || a.inner == nil {
		return errors.New("store: nil redis adapter")
	}
	return a.inner.Set(ctx, key, val, ttl)
}

func (a *redisAdapter) SetNX(ctx context.Context, key, val string, ttl time.Duration) (bool, error) {
	if a == nil || a.inner == nil {
		return false, errors.New("store: nil redis adapter")
	}
	return a.inner.SetNX(ctx, key, val, ttl)
}

func (a *redisAdapter) Del(ctx context.Context, keys ...string) error {
	if a == nil || a.inner == nil {
		return errors.New("store: nil redis adapter")
	}
	return a.inner.Del(ctx, keys...)
}

func (a *redisAdapter) Close() error { return a.inner.Close() }

// Ping verifies connectivity with Redis
func (a *redisAdapter) Ping(ctx context.Context) error {
	if a == nil || a.inner == nil {
		return errors.New("store: nil redis adapter")
	}
	return a.inner.Ping(ctx)
}
