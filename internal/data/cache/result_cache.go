package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/armory-backend/internal/platform/logger"
)

const RevisionKey = "armory:revision"

// ResultCache stores computed integers (power, max build quantity) keyed by
// name under a global revision. Readers fetch the revision before loading
// their snapshot and use it for both Get and Set; every write to materials,
// compositions or weapons calls Invalidate after commit, which moves the
// revision forward so results computed from older data are never served.
type ResultCache interface {
	Revision(ctx context.Context) (int64, bool)
	Get(ctx context.Context, rev int64, name string) (int64, bool)
	Set(ctx context.Context, rev int64, name string, value int64)
	Invalidate(ctx context.Context)
}

// Key builds a cache name such as "weapon:7:power".
func Key(kind string, id int64, metric string) string {
	return kind + ":" + strconv.FormatInt(id, 10) + ":" + metric
}

type redisResultCache struct {
	rdb *goredis.Client
	ttl time.Duration
	log *logger.Logger
}

// NewRedisResultCache returns a revisioned cache. Keys embed the current
// value of RevisionKey, so Invalidate (INCR) orphans every earlier entry and
// the TTL reclaims them. Redis failures are logged and treated as misses.
func NewRedisResultCache(rdb *goredis.Client, ttl time.Duration, baseLog *logger.Logger) ResultCache {
	if rdb == nil {
		return NewNoopResultCache()
	}
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &redisResultCache{rdb: rdb, ttl: ttl, log: baseLog.With("cache", "RedisResultCache")}
}

func (c *redisResultCache) Revision(ctx context.Context) (int64, bool) {
	rev, err := c.rdb.Get(ctx, RevisionKey).Int64()
	if errors.Is(err, goredis.Nil) {
		return 0, true
	}
	if err != nil {
		c.log.Warn("cache revision read failed", "error", err)
		return 0, false
	}
	return rev, true
}

func revisionedKey(rev int64, name string) string {
	return fmt.Sprintf("armory:r%d:%s", rev, name)
}

func (c *redisResultCache) Get(ctx context.Context, rev int64, name string) (int64, bool) {
	v, err := c.rdb.Get(ctx, revisionedKey(rev, name)).Int64()
	if err != nil {
		if !errors.Is(err, goredis.Nil) {
			c.log.Warn("cache read failed", "key", name, "error", err)
		}
		return 0, false
	}
	return v, true
}

func (c *redisResultCache) Set(ctx context.Context, rev int64, name string, value int64) {
	if err := c.rdb.Set(ctx, revisionedKey(rev, name), value, c.ttl).Err(); err != nil {
		c.log.Warn("cache write failed", "key", name, "error", err)
	}
}

func (c *redisResultCache) Invalidate(ctx context.Context) {
	if err := c.rdb.Incr(ctx, RevisionKey).Err(); err != nil {
		c.log.Warn("cache invalidate failed", "error", err)
	}
}

type noopResultCache struct{}

func NewNoopResultCache() ResultCache { return noopResultCache{} }

func (noopResultCache) Revision(context.Context) (int64, bool)          { return 0, false }
func (noopResultCache) Get(context.Context, int64, string) (int64, bool) { return 0, false }
func (noopResultCache) Set(context.Context, int64, string, int64)        {}
func (noopResultCache) Invalidate(context.Context)                       {}
