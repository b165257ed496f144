package records

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"golang.org/x/sync/singleflight"

	"profile-frames/internal/cache"
	"profile-frames/internal/types"
)

// CacheStats receives cache hit/miss notifications
type CacheStats interface {
	CacheHit()
	CacheMiss()
}

// CachedStore wraps a Store with a TTL cache for text records and profiles.
// Concurrent misses for the same username share one backend read.
type CachedStore struct {
	Store
	backend cache.Backend
	ttl     time.Duration
	group   singleflight.Group
	stats   CacheStats
}

// NewCachedStore wraps s; stats may be nil
func NewCachedStore(s Store, backend cache.Backend, ttl time.Duration, stats CacheStats) *CachedStore {
	return &CachedStore{Store: s, backend: backend, ttl: ttl, stats: stats}
}

func recordsKey(username string) string { return "records:" + username }
func profileKey(username string) string { return "profile:" + username }

func (c *CachedStore) TextRecords(ctx context.Context, username string) (types.TextRecords, error) {
	username = types.NormalizeUsername(username)
	var recs types.TextRecords
	if found, err := cache.GetJSON(ctx, c.backend, recordsKey(username), &recs); err != nil {
		slog.Warn("text record cache read failed", "username", username, "error", err)
	} else if found {
		c.hit()
		return recs, nil
	}
	c.miss()

	v, err, shared := c.group.Do(recordsKey(username), func() (interface{}, error) {
		recs, err := c.Store.TextRecords(ctx, username)
		if err != nil {
			return nil, err
		}
		if err := cache.SetJSON(ctx, c.backend, recordsKey(username), recs, c.ttl); err != nil {
			slog.Warn("text record cache write failed", "username", username, "error", err)
		}
		return recs, nil
	})
	if shared {
		slog.Debug("singleflight: shared text record fetch", "username", username)
	}
	if err != nil {
		return nil, err
	}
	return v.(types.TextRecords), nil
}

func (c *CachedStore) Profile(ctx context.Context, username string) (types.Profile, error) {
	username = types.NormalizeUsername(username)
	var p types.Profile
	if found, err := cache.GetJSON(ctx, c.backend, profileKey(username), &p); err == nil && found {
		c.hit()
		return p, nil
	}
	c.miss()

	v, err, _ := c.group.Do(profileKey(username), func() (interface{}, error) {
		p, err := c.Store.Profile(ctx, username)
		if err != nil {
			return nil, err
		}
		if err := cache.SetJSON(ctx, c.backend, profileKey(username), p, c.ttl); err != nil {
			slog.Warn("profile cache write failed", "username", username, "error", err)
		}
		return p, nil
	})
	if err != nil {
		return types.Profile{}, err
	}
	return v.(types.Profile), nil
}

func (c *CachedStore) SetTextRecord(ctx context.Context, username string, key types.TextRecordKey, value string) error {
	if err := c.Store.SetTextRecord(ctx, username, key, value); err != nil {
		return err
	}
	return c.invalidate(ctx, recordsKey(types.NormalizeUsername(username)))
}

func (c *CachedStore) RegisterProfile(ctx context.Context, p types.Profile) error {
	if err := c.Store.RegisterProfile(ctx, p); err != nil {
		return err
	}
	username := types.NormalizeUsername(p.Username)
	return errors.Join(
		c.invalidate(ctx, profileKey(username)),
		c.invalidate(ctx, recordsKey(username)),
	)
}

func (c *CachedStore) invalidate(ctx context.Context, key string) error {
	c.group.Forget(key)
	return c.backend.Delete(ctx, key)
}

func (c *CachedStore) hit() {
	if c.stats != nil {
		c.stats.CacheHit()
	}
}

func (c *CachedStore) miss() {
	if c.stats != nil {
		c.stats.CacheMiss()
	}
}
