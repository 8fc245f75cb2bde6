// internal/matching/cache.go

package matching

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
)

const likeCountTTL = time.Hour

// LikeCountCache keeps per-user "how many people liked me" counters in Redis
// so the count endpoint does not hit the reactions table on every call. The
// database stays the source of truth; the cache is repopulated on miss.
type LikeCountCache struct {
	client *redis.Client
}

// NewLikeCountCache creates a cache backed by the given Redis client
func NewLikeCountCache(client *redis.Client) *LikeCountCache {
	return &LikeCountCache{client: client}
}

func (c *LikeCountCache) key(userID int64) string {
	return fmt.Sprintf("likes:count:%d", userID)
}

// Get returns the cached count, or (0, false) on miss
func (c *LikeCountCache) Get(ctx context.Context, userID int64) (int64, bool) {
	val, err := c.client.Get(ctx, c.key(userID)).Result()
	if err != nil {
		return 0, false
	}

	count, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0, false
	}

	// refresh TTL on access
	_ = c.client.Expire(ctx, c.key(userID), likeCountTTL).Err()
	return count, true
}

// Set stores the count with a fresh TTL
func (c *LikeCountCache) Set(ctx context.Context, userID int64, count int64) {
	_ = c.client.Set(ctx, c.key(userID), count, likeCountTTL).Err()
}

// Invalidate drops the counter so the next read goes to the database.
// Called after a new like lands; cheaper to recount than to keep the cached
// value consistent with the distinct-liker semantics of the count query.
func (c *LikeCountCache) Invalidate(ctx context.Context, userID int64) {
	_ = c.client.Del(ctx, c.key(userID)).Err()
}
