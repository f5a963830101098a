package cache

import (
	"context"
	"os"
	"testing"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/armory-backend/internal/platform/logger"
)

func TestKey(t *testing.T) {
	if got := Key("weapon", 7, "power"); got != "weapon:7:power" {
		t.Fatalf("Key: got %q", got)
	}
	if got := revisionedKey(3, "weapon:7:power"); got != "armory:r3:weapon:7:power" {
		t.Fatalf("revisionedKey: got %q", got)
	}
}

func TestNoopResultCache(t *testing.T) {
	c := NewNoopResultCache()
	ctx := context.Background()
	if _, ok := c.Revision(ctx); ok {
		t.Fatalf("noop cache: want no revision")
	}
	c.Set(ctx, 0, "k", 5)
	if _, ok := c.Get(ctx, 0, "k"); ok {
		t.Fatalf("noop cache: want miss")
	}
	c.Invalidate(ctx)
}

func TestNilClientFallsBackToNoop(t *testing.T) {
	log, _ := logger.New("test")
	if _, ok := NewRedisResultCache(nil, time.Second, log).(noopResultCache); !ok {
		t.Fatalf("nil client: want noop cache")
	}
}

func TestRedisResultCacheInvalidate(t *testing.T) {
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("set TEST_REDIS_ADDR to run redis cache tests")
	}
	rdb := goredis.NewClient(&goredis.Options{Addr: addr})
	t.Cleanup(func() { _ = rdb.Close() })

	log, _ := logger.New("test")
	c := NewRedisResultCache(rdb, time.Minute, log)
	ctx := context.Background()

	name := Key("weapon", time.Now().UnixNano(), "power")
	rev, ok := c.Revision(ctx)
	if !ok {
		t.Fatalf("Revision: want ok")
	}
	c.Set(ctx, rev, name, 42)
	if v, ok := c.Get(ctx, rev, name); !ok || v != 42 {
		t.Fatalf("Get after Set: want=42 got=%d ok=%v", v, ok)
	}
	c.Invalidate(ctx)
	next, ok := c.Revision(ctx)
	if !ok || next <= rev {
		t.Fatalf("Revision after Invalidate: want > %d got=%d", rev, next)
	}
	if _, ok := c.Get(ctx, next, name); ok {
		t.Fatalf("Get after Invalidate: want miss")
	}
}
