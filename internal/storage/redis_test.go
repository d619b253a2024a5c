package storage

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/insight-sphere/internal/config"
)

func newTestRedis(t *testing.T) (*RedisCache, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	cache, err := NewRedisCache(&config.RedisConfig{
		Host:           mr.Host(),
		Port:           mr.Port(),
		MaxConnections: 2,
	})
	if err != nil {
		t.Fatalf("NewRedisCache() error = %v", err)
	}
	t.Cleanup(func() { _ = cache.Close() })
	return cache, mr
}

func TestNewRedisCache_Unreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	host, port := mr.Host(), mr.Port()
	mr.Close()

	if _, err := NewRedisCache(&config.RedisConfig{Host: host, Port: port, MaxConnections: 1}); err == nil {
		t.Error("NewRedisCache() expected error for a closed server")
	}
}

func TestRedisCache_SetGetDel(t *testing.T) {
	cache, _ := newTestRedis(t)
	ctx := context.Background()

	if err := cache.Ping(ctx); err != nil {
		t.Fatalf("Ping() error = %v", err)
	}
	if err := cache.Set(ctx, "k", "v", time.Minute); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	got, err := cache.Get(ctx, "k")
	if err != nil || got != "v" {
		t.Errorf("Get() = %q, %v, want v", got, err)
	}

	ttl, err := cache.TTL(ctx, "k")
	if err != nil || ttl != time.Minute {
		t.Errorf("TTL() = %v, %v, want 1m", ttl, err)
	}

	if err := cache.Del(ctx, "k"); err != nil {
		t.Fatalf("Del() error = %v", err)
	}
	if _, err := cache.Get(ctx, "k"); err == nil {
		t.Error("Get() after Del expected redis.Nil")
	}
}

func TestRedisCache_Scan(t *testing.T) {
	cache, _ := newTestRedis(t)
	ctx := context.Background()

	for _, k := range []string{"a:1", "a:2", "b:1"} {
		if err := cache.Set(ctx, k, "x", time.Minute); err != nil {
			t.Fatalf("Set() error = %v", err)
		}
	}

	keys, err := cache.Scan(ctx, "a:*")
	if err != nil {
		t.Fatalf("Scan() error = %v", err)
	}
	if len(keys) != 2 {
		t.Errorf("Scan() = %v, want 2 keys", keys)
	}
}
