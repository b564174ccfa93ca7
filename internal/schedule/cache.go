package schedule

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// CachedFetcher wraps a Fetcher with a short-TTL Redis cache so the polling
// loops share one upstream fetch per window instead of bursting the external
// API. Cache failures fall through to the upstream fetch.
type CachedFetcher struct {
	inner Fetcher
	redis *redis.Client
	group string
	ttl   time.Duration
}

// NewCachedFetcher creates a cached fetcher for one subscriber group.
func NewCachedFetcher(inner Fetcher, redisClient *redis.Client, group string, ttl time.Duration) *CachedFetcher {
	return &CachedFetcher{
		inner: inner,
		redis: redisClient,
		group: group,
		ttl:   ttl,
	}
}

func (c *CachedFetcher) cacheKey() string {
	return fmt.Sprintf("schedule:group:%s", c.group)
}

// Fetch returns the cached group block when present, otherwise fetches from
// the upstream and caches the result.
func (c *CachedFetcher) Fetch(ctx context.Context) (*GroupDays, error) {
	key := c.cacheKey()

	data, err := c.redis.Get(ctx, key).Result()
	if err == nil {
		var days GroupDays
		if err := json.Unmarshal([]byte(data), &days); err == nil {
			return &days, nil
		}
		// Corrupt cache entry: drop it and refetch.
		c.redis.Del(ctx, key)
	} else if err != redis.Nil {
		log.Printf("schedule cache read failed: %v", err)
	}

	days, err := c.inner.Fetch(ctx)
	if err != nil {
		return nil, err
	}

	encoded, err := json.Marshal(days)
	if err == nil {
		if err := c.redis.Set(ctx, key, encoded, c.ttl).Err(); err != nil {
			log.Printf("schedule cache write failed: %v", err)
		}
	}

	return days, nil
}
