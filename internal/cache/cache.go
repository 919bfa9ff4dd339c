// Package cache stores JSON-encoded values for a limited time.
package cache

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/dgraph-io/ristretto"
	"github.com/m-mizutani/goerr/v2"
	"github.com/redis/go-redis/v9"
)

// Cache is a TTL bound key/value store. Get reports whether key was found and decodes it into v.
type Cache interface {
	Get(ctx context.Context, key string, v any) (bool, error)
	Set(ctx context.Context, key string, v any, ttl time.Duration) error
}

// Memory is an in-process cache backed by ristretto.
type Memory struct {
	store  *ristretto.Cache
	logger *slog.Logger
}

func NewMemory(logger *slog.Logger) (*Memory, error) {
	store, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: 1e4,
		MaxCost:     32 << 20,
		BufferItems: 64,
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create memory cache")
	}
	return &Memory{store: store, logger: logger}, nil
}

func (m *Memory) Get(_ context.Context, key string, v any) (bool, error) {
	raw, ok := m.store.Get(key)
	if !ok {
		return false, nil
	}
	data, ok := raw.([]byte)
	if !ok {
		return false, goerr.New("unexpected cache entry", goerr.V("key", key))
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false, goerr.Wrap(err, "failed to decode cache entry", goerr.V("key", key))
	}
	return true, nil
}

func (m *Memory) Set(_ context.Context, key string, v any, ttl time.Duration) error {
	data, err := json.Marshal(v)
	if err != nil {
		return goerr.Wrap(err, "failed to encode cache entry", goerr.V("key", key))
	}
	// A rejected admission is not an error; the next Get simply misses.
	if !m.store.SetWithTTL(key, data, int64(len(data)), ttl) {
		m.logger.Debug("cache entry rejected", "key", key, "ttl", ttl, "size", len(data))
		return nil
	}
	// ristretto applies writes asynchronously.
	m.store.Wait()
	return nil
}

// Redis is a cache shared between instances.
type Redis struct {
	client *redis.Client
}

func NewRedis(addr string) *Redis {
	return &Redis{client: redis.NewClient(&redis.Options{Addr: addr})}
}

func (r *Redis) Get(ctx context.Context, key string, v any) (bool, error) {
	data, err := r.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, goerr.Wrap(err, "failed to read from redis", goerr.V("key", key))
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false, goerr.Wrap(err, "failed to decode cache entry", goerr.V("key", key))
	}
	return true, nil
}

func (r *Redis) Set(ctx context.Context, key string, v any, ttl time.Duration) error {
	data, err := json.Marshal(v)
	if err != nil {
		return goerr.Wrap(err, "failed to encode cache entry", goerr.V("key", key))
	}
	if err := r.client.Set(ctx, key, data, ttl).Err(); err != nil {
		return goerr.Wrap(err, "failed to write to redis", goerr.V("key", key))
	}
	return nil
}

func (r *Redis) Close() error {
	return r.client.Close()
}
