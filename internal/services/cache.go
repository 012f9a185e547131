package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/AnshRaj112/afterthedoll-backend/internal/models"
)

const (
	// CacheKeyPrefix is the Redis key prefix for cached data
	CacheKeyPrefix = "cache:"
	// DefaultProfileTTL bounds how stale a cached profile may get if an
	// invalidation is lost.
	DefaultProfileTTL = 10 * time.Minute
)

// ProfileCache caches public profiles by username. Only profile data is cached;
// visibility decisions are always recomputed.
type ProfileCache struct {
	kv  KV
	ttl time.Duration
}

func NewProfileCache(kv KV, ttl time.Duration) *ProfileCache {
	if ttl <= 0 {
		ttl = DefaultProfileTTL
	}
	return &ProfileCache{kv: kv, ttl: ttl}
}

// CacheKey generates a cache key for a specific resource
func CacheKey(resource string, identifier string) string {
	return fmt.Sprintf("%s%s:%s", CacheKeyPrefix, resource, identifier)
}

// Get returns the cached profile, or nil on a miss or a broken entry.
func (c *ProfileCache) Get(ctx context.Context, username string) *models.User {
	if c == nil {
		return nil
	}
	val, err := c.kv.Get(ctx, CacheKey("profile", username))
	if err != nil {
		return nil
	}
	var u models.User
	if err := json.Unmarshal([]byte(val), &u); err != nil {
		return nil
	}
	if err := u.Validate(); err != nil {
		return nil
	}
	return &u
}

func (c *ProfileCache) Set(ctx context.Context, u *models.User) error {
	if c == nil {
		return nil
	}
	data, err := json.Marshal(u)
	if err != nil {
		return err
	}
	return c.kv.Set(ctx, CacheKey("profile", u.Username), string(data), c.ttl)
}

func (c *ProfileCache) Delete(ctx context.Context, username string) error {
	if c == nil {
		return nil
	}
	return c.kv.Del(ctx, CacheKey("profile", username))
}
