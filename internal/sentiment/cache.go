package sentiment

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/marketlens/marketlens/internal/core"
	"github.com/redis/go-redis/v9"
)

// RedisCache caches per-(symbol, day) scores so re-running a day's batch
// does not re-fetch news. Cache errors fall through to the inner provider.
type RedisCache struct {
	inner  Provider
	client *redis.Client
	ttl    time.Duration
}

// NewRedisCache wraps a provider with a Redis-backed day cache.
func NewRedisCache(inner Provider, addr string, db int, ttl time.Duration) *RedisCache {
	return &RedisCache{
		inner: inner,
		client: redis.NewClient(&redis.Options{
			Addr: addr,
			DB:   db,
		}),
		ttl: ttl,
	}
}

func (c *RedisCache) Name() string { return c.inner.Name() }

// Score returns the cached score or delegates and caches the result.
func (c *RedisCache) Score(ctx context.Context, symbol string, date time.Time) (float64, error) {
	key := fmt.Sprintf("sentiment:%s:%s:%s", c.inner.Name(), symbol, core.DateKey(date))

	if val, err := c.client.Get(ctx, key).Result(); err == nil {
		if score, perr := strconv.ParseFloat(val, 64); perr == nil {
			return score, nil
		}
	}

	score, err := c.inner.Score(ctx, symbol, date)
	if err != nil {
		return 0, err
	}

	// Best effort; a failed cache write never fails the lookup.
	c.client.Set(ctx, key, strconv.FormatFloat(score, 'f', -1, 64), c.ttl)

	return score, nil
}

// Close releases the Redis connection.
func (c *RedisCache) Close() error {
	return c.client.Close()
}
