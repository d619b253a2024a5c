// Package storage caches upstream market responses in Redis.
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	apperrors "github.com/insight-sphere/internal/errors"
	"github.com/insight-sphere/internal/types"
	"github.com/redis/go-redis/v9"
)

// KeyPrefix namespaces every key written by the cache service
const KeyPrefix = "insightsphere:"

// CacheService stores JSON values under a fixed TTL
type CacheService struct {
	redis *RedisCache
	ttl   time.Duration
	now   func() time.Time
}

// NewCacheService creates a new cache service
func NewCacheService(redis *RedisCache, ttl time.Duration) *CacheService {
	return &CacheService{
		redis: redis,
		ttl:   ttl,
		now:   time.Now,
	}
}

func (c *CacheService) key(name string) string {
	return KeyPrefix + name
}

// Set stores value under name with the configured TTL
func (c *CacheService) Set(ctx context.Context, name string, value interface{}) error {
	data, err := json.Marshal(value)
	if err != nil {
		return apperrors.NewCacheError("marshal", err)
	}
	if err := c.redis.Set(ctx, c.key(name), data, c.ttl); err != nil {
		return apperrors.NewCacheError("set", err)
	}
	return nil
}

// Get decodes the value under name into dest. A miss is not an error.
func (c *CacheService) Get(ctx context.Context, name string, dest interface{}) (bool, error) {
	data, err := c.redis.Get(ctx, c.key(name))
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, apperrors.NewCacheError("get", err)
	}

	if err := json.Unmarshal([]byte(data), dest); err != nil {
		// a value we cannot read is as good as missing
		_ = c.redis.Del(ctx, c.key(name))
		return false, nil
	}
	return true, nil
}

// Invalidate removes the named entries
func (c *CacheService) Invalidate(ctx context.Context, names ...string) error {
	if len(names) == 0 {
		return nil
	}
	keys := make([]string, len(names))
	for i, n := range names {
		keys[i] = c.key(n)
	}
	return c.redis.Del(ctx, keys...)
}

// TTL returns the configured TTL
func (c *CacheService) TTL() time.Duration {
	return c.ttl
}

// Status lists the live entries with their expiry
func (c *CacheService) Status(ctx context.Context) (*types.CacheStatus, error) {
	keys, err := c.redis.Scan(ctx, KeyPrefix+"*")
	if err != nil {
		return nil, apperrors.NewCacheError("scan", err)
	}
	sort.Strings(keys)

	now := c.now()
	status := &types.CacheStatus{CacheDetails: make(map[string]types.CacheEntryStatus, len(keys))}
	for _, key := range keys {
		ttl, err := c.redis.TTL(ctx, key)
		if err != nil {
			return nil, apperrors.NewCacheError(fmt.Sprintf("ttl %s", key), err)
		}
		// expired between SCAN and TTL, or stored without expiry
		if ttl <= 0 {
			continue
		}
		status.CacheDetails[strings.TrimPrefix(key, KeyPrefix)] = types.CacheEntryStatus{
			ExpiresAt:        now.Add(ttl),
			ExpiresInSeconds: ttl.Seconds(),
		}
	}
	status.CacheCount = len(status.CacheDetails)
	return status, nil
}
