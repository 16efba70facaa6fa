// Package rd provides a Redis client used as the optional cache backend
package rd

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// Config configures redis connectivity
type Config struct {
	Addr     string
	Password string
	DB       int
}

// RD is a redis client wrapper
type RD struct {
	Client *redis.Client
}

// Open creates a redis client; connectivity is verified by the caller via Ping
func Open(_ context.Context, cfg Config) (*RD, error) {
	if cfg.Addr == "" {
		return nil, errors.New("rd: empty addr")
	}
	c := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	return &RD{Client: c}, nil
}

// Get returns the value for key; ok is false on a cache miss
func (r *RD) Get(ctx context.Context, key string) (string, bool, error) {
	v, err := r.Client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return v, true, nil
}

// Set stores val under key with a ttl; ttl <= 0 means no expiry
func (r *RD) Set(ctx context.Context, key, val string, ttl time.Duration) error {
	return r.Client.Set(ctx, key, val, ttl).Err()
}

// SetNX stores val only when key is absent; reports whether the write won
func (r *RD) SetNX(ctx context.Context, key, val string, ttl time.Duration) (bool, error) {
	return r.Client.SetNX(ctx, key, val, ttl).Result()
}

// Del removes the given keys
func (r *RD) Del(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return r.Client.Del(ctx, keys...).Err()
}

// Ping verifies connectivity
func (r *RD) Ping(ctx context.Context) error {
	return r.Client.Ping(ctx).Err()
}

// Close releases the underlying connection pool
func (r *RD) Close() error {
	if r == nil || r.Client == nil {
		return nil
	}
	return r.Client.Close()
}
