package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"pawfeed/internal/observability"

	"github.com/redis/go-redis/v9"
)

const (
	PostKeyPrefix     = "post:%s"
	FeedPageKeyPrefix = "feed:%s:first"
)

const (
	PostTTL     = 30 * time.Minute
	FeedPageTTL = 30 * time.Second
)

// PostKey returns the cache key for a single post document.
func PostKey(postID string) string {
	return fmt.Sprintf(PostKeyPrefix, postID)
}

// FeedPageKey returns the cache key for the first page of a tag filter.
func FeedPageKey(tag string) string {
	return fmt.Sprintf(FeedPageKeyPrefix, tag)
}

// Aside implements the cache-aside pattern: on hit, dest is decoded from the
// cached JSON; on miss, load runs and its result (dest) is stored with ttl.
// A nil client degrades to calling load directly.
func Aside(ctx context.Context, key string, dest interface{}, ttl time.Duration, load func() error) error {
	if client == nil {
		observability.CacheRequests.WithLabelValues("bypass").Inc()
		return load()
	}

	raw, err := client.Get(ctx, key).Bytes()
	if err == nil {
		if unmarshalErr := json.Unmarshal(raw, dest); unmarshalErr == nil {
			observability.CacheRequests.WithLabelValues("hit").Inc()
			return nil
		}
		// Corrupt entry; fall through to reload.
		client.Del(ctx, key)
	} else if err != redis.Nil {
		observability.RedisErrors.WithLabelValues("get").Inc()
	}

	observability.CacheRequests.WithLabelValues("miss").Inc()
	if err := load(); err != nil {
		return err
	}
	if encoded, err := json.Marshal(dest); err == nil {
		client.Set(ctx, key, encoded, ttl)
	}
	return nil
}

// Invalidate removes a single cache key.
func Invalidate(ctx context.Context, key string) {
	if client != nil {
		client.Del(ctx, key)
	}
}

// InvalidatePost removes the cached document for a post.
func InvalidatePost(ctx context.Context, postID string) {
	Invalidate(ctx, PostKey(postID))
}

// InvalidateFeed removes all cached first pages. Mutations that change feed
// membership or ordering call this.
func InvalidateFeed(ctx context.Context) {
	if client == nil {
		return
	}
	iter := client.Scan(ctx, 0, fmt.Sprintf(FeedPageKeyPrefix, "*"), 100).Iterator()
	for iter.Next(ctx) {
		client.Del(ctx, iter.Val())
	}
}
