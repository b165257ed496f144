// Package cache provides TTL key/value backends used for text record caching and
// section mount state.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"
)

// Backend is a byte-oriented TTL cache
type Backend interface {
	// Get returns (value, found, error)
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Open returns a Redis backend when redisURL is set, otherwise a memory backend.
// A failing Redis connection falls back to memory holding at most maxEntries items.
func Open(redisURL, prefix string, maxEntries int) (Backend, string) {
	if redisURL != "" {
		rc, err := NewRedis(redisURL, prefix)
		if err == nil {
			slog.Info("cache backend initialized", "backend", "redis")
			return rc, "redis"
		}
		slog.Warn("redis connection failed, using memory cache", "error", err)
	}
	slog.Info("cache backend initialized", "backend", "memory")
	return NewMemory(maxEntries, time.Minute), "memory"
}

// GetJSON decodes a cached JSON value into v
func GetJSON(ctx context.Context, b Backend, key string, v any) (bool, error) {
	data, found, err := b.Get(ctx, key)
	if err != nil || !found {
		return false, err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false, fmt.Errorf("decode cached %s: %w", key, err)
	}
	return true, nil
}

// SetJSON encodes v and stores it under key
func SetJSON(ctx context.Context, b Backend, key string, v any, ttl time.Duration) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return b.Set(ctx, key, data, ttl)
}
