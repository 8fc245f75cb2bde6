// internal/matching/cache_test.go

package matching

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) (*LikeCountCache, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	return NewLikeCountCache(client), mr
}

func TestLikeCountCache(t *testing.T) {
	ctx := context.Background()

	t.Run("miss then hit", func(t *testing.T) {
		cache, _ := newTestCache(t)

		_, ok := cache.Get(ctx, 1)
		assert.False(t, ok)

		cache.Set(ctx, 1, 7)

		count, ok := cache.Get(ctx, 1)
		require.True(t, ok)
		assert.Equal(t, int64(7), count)
	})

	t.Run("invalidate forces a miss", func(t *testing.T) {
		cache, _ := newTestCache(t)

		cache.Set(ctx, 2, 3)
		cache.Invalidate(ctx, 2)

		_, ok := cache.Get(ctx, 2)
		assert.False(t, ok)
	})

	t.Run("entries expire", func(t *testing.T) {
		cache, mr := newTestCache(t)

		cache.Set(ctx, 3, 1)
		mr.FastForward(likeCountTTL + 1)

		_, ok := cache.Get(ctx, 3)
		assert.False(t, ok)
	})

	t.Run("counters are per user", func(t *testing.T) {
		cache, _ := newTestCache(t)

		cache.Set(ctx, 4, 10)
		cache.Set(ctx, 5, 20)

		count, ok := cache.Get(ctx, 4)
		require.True(t, ok)
		assert.Equal(t, int64(10), count)

		count, ok = cache.Get(ctx, 5)
		require.True(t, ok)
		assert.Equal(t, int64(20), count)
	})
}
