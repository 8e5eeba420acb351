package rating

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Cached keeps successful lookups in Redis for ttl.  Misses are not
// cached, so a title that gains a rating shows up on the next request.
type Cached struct {
	next   Lookup
	rdb    *redis.Client
	ttl    time.Duration
	prefix string
	log    *zap.Logger
}

// NewCached wraps next with a Redis cache.
func NewCached(next Lookup, rdb *redis.Client, ttl time.Duration, prefix string, log *zap.Logger) *Cached {
	if ttl <= 0 {
		ttl = time.Hour
	}
	if prefix == "" {
		prefix = "rating"
	}
	return &Cached{next: next, rdb: rdb, ttl: ttl, prefix: prefix, log: log.Named("rating_cache")}
}

func (c *Cached) key(title string) string {
	return c.prefix + ":" + strings.ToLower(strings.TrimSpace(title))
}

// Lookup serves title from Redis when possible and fills the cache on a
// hit from the wrapped lookup.  Redis errors fall through to next.
func (c *Cached) Lookup(ctx context.Context, title string) (*Movie, bool) {
	key := c.key(title)
	if bs, err := c.rdb.Get(ctx, key).Bytes(); err == nil {
		var m Movie
		if err := json.Unmarshal(bs, &m); err == nil {
			return &m, true
		}
		c.log.Warn("dropping undecodable cache entry", zap.String("key", key))
		_ = c.rdb.Del(ctx, key).Err()
	} else if !errors.Is(err, redis.Nil) {
		c.log.Warn("rating cache read failed", zap.Error(err))
	}

	m, ok := c.next.Lookup(ctx, title)
	if !ok {
		return nil, false
	}
	if bs, err := json.Marshal(m); err == nil {
		if err := c.rdb.Set(ctx, key, bs, c.ttl).Err(); err != nil {
			c.log.Warn("rating cache write failed", zap.Error(err))
		}
	}
	return m, true
}

// Invalidate drops the cached entries for titles.
func (c *Cached) Invalidate(ctx context.Context, titles ...string) error {
	if len(titles) == 0 {
		return nil
	}
	keys := make([]string, 0, len(titles))
	for _, t := range titles {
		keys = append(keys, c.key(t))
	}
	return c.rdb.Del(ctx, keys...).Err()
}
