package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type cachedDoc struct {
	ID    string `json:"id"`
	Count int    `json:"count"`
}

func setupMiniredis(t *testing.T) *miniredis.Miniredis {
	t.Helper()
	mr := miniredis.RunT(t)
	SetClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { SetClient(nil) })
	return mr
}

func TestAside(t *testing.T) {
	ctx := context.Background()

	t.Run("miss loads and stores", func(t *testing.T) {
		mr := setupMiniredis(t)
		loads := 0

		var doc cachedDoc
		err := Aside(ctx, PostKey("p1"), &doc, PostTTL, func() error {
			loads++
			doc = cachedDoc{ID: "p1", Count: 3}
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, 1, loads)
		assert.True(t, mr.Exists(PostKey("p1")))

		// Second read is served from the cache.
		var again cachedDoc
		err = Aside(ctx, PostKey("p1"), &again, PostTTL, func() error {
			loads++
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, 1, loads, "hit must not call load")
		assert.Equal(t, doc, again)
	})

	t.Run("corrupt entry falls back to load", func(t *testing.T) {
		mr := setupMiniredis(t)
		require.NoError(t, mr.Set(PostKey("p1"), "{not json"))

		var doc cachedDoc
		err := Aside(ctx, PostKey("p1"), &doc, PostTTL, func() error {
			doc = cachedDoc{ID: "p1", Count: 1}
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, 1, doc.Count)
	})

	t.Run("load error is surfaced and nothing is stored", func(t *testing.T) {
		mr := setupMiniredis(t)

		var doc cachedDoc
		err := Aside(ctx, PostKey("p1"), &doc, PostTTL, func() error {
			return assert.AnError
		})
		assert.ErrorIs(t, err, assert.AnError)
		assert.False(t, mr.Exists(PostKey("p1")))
	})

	t.Run("nil client bypasses the cache", func(t *testing.T) {
		SetClient(nil)
		loads := 0
		var doc cachedDoc
		for i := 0; i < 2; i++ {
			require.NoError(t, Aside(ctx, PostKey("p1"), &doc, PostTTL, func() error {
				loads++
				return nil
			}))
		}
		assert.Equal(t, 2, loads)
	})
}

func TestInvalidate(t *testing.T) {
	ctx := context.Background()
	mr := setupMiniredis(t)

	require.NoError(t, mr.Set(PostKey("p1"), "{}"))
	InvalidatePost(ctx, "p1")
	assert.False(t, mr.Exists(PostKey("p1")))
}

func TestInvalidateFeed(t *testing.T) {
	ctx := context.Background()
	mr := setupMiniredis(t)

	require.NoError(t, mr.Set(FeedPageKey("all"), "{}"))
	require.NoError(t, mr.Set(FeedPageKey("training"), "{}"))
	require.NoError(t, mr.Set(PostKey("p1"), "{}"))

	InvalidateFeed(ctx)

	assert.False(t, mr.Exists(FeedPageKey("all")))
	assert.False(t, mr.Exists(FeedPageKey("training")))
	assert.True(t, mr.Exists(PostKey("p1")), "post entries are untouched")
}

func TestAside_RespectsTTL(t *testing.T) {
	ctx := context.Background()
	mr := setupMiniredis(t)

	var doc cachedDoc
	require.NoError(t, Aside(ctx, FeedPageKey("all"), &doc, FeedPageTTL, func() error {
		doc = cachedDoc{ID: "page"}
		return nil
	}))
	assert.InDelta(t, FeedPageTTL, mr.TTL(FeedPageKey("all")), float64(time.Second))
}
