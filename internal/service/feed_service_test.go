package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"pawfeed/internal/cache"
	"pawfeed/internal/models"
	"pawfeed/internal/repository"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makePosts(n int, base time.Time) []*models.Post {
	posts := make([]*models.Post, n)
	for i := 0; i < n; i++ {
		posts[i] = &models.Post{
			ID:        fmt.Sprintf("post-%02d", n-i),
			Title:     fmt.Sprintf("Post %d", n-i),
			CreatedAt: base.Add(-time.Duration(i) * time.Minute),
		}
	}
	return posts
}

func TestFeedService_FetchPage(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	t.Run("full page implies more may follow", func(t *testing.T) {
		posts := makePosts(PageSize, base)
		svc := NewFeedService(&postRepoStub{
			pageFn: func(_ context.Context, tag string, before *repository.PageCursor, limit int) ([]*models.Post, error) {
				assert.Equal(t, models.TagAll, tag)
				assert.Nil(t, before)
				assert.Equal(t, PageSize, limit)
				return posts, nil
			},
		})

		page, err := svc.FetchPage(context.Background(), "", nil)
		require.NoError(t, err)
		assert.Len(t, page.Items, PageSize)
		assert.True(t, page.HasMore)
		require.NotNil(t, page.NextCursor)
		last := posts[len(posts)-1]
		assert.Equal(t, last.ID, page.NextCursor.ID)
		assert.Equal(t, last.CreatedAt, page.NextCursor.CreatedAt)
	})

	t.Run("short page ends pagination", func(t *testing.T) {
		svc := NewFeedService(&postRepoStub{
			pageFn: func(_ context.Context, _ string, _ *repository.PageCursor, _ int) ([]*models.Post, error) {
				return makePosts(3, base), nil
			},
		})

		page, err := svc.FetchPage(context.Background(), "training", nil)
		require.NoError(t, err)
		assert.Len(t, page.Items, 3)
		assert.False(t, page.HasMore)
		assert.NotNil(t, page.NextCursor)
	})

	t.Run("empty page has no cursor", func(t *testing.T) {
		svc := NewFeedService(&postRepoStub{
			pageFn: func(_ context.Context, _ string, _ *repository.PageCursor, _ int) ([]*models.Post, error) {
				return nil, nil
			},
		})

		page, err := svc.FetchPage(context.Background(), "", nil)
		require.NoError(t, err)
		assert.Empty(t, page.Items)
		assert.False(t, page.HasMore)
		assert.Nil(t, page.NextCursor)
	})

	t.Run("store errors pass through", func(t *testing.T) {
		svc := NewFeedService(&postRepoStub{
			pageFn: func(_ context.Context, _ string, _ *repository.PageCursor, _ int) ([]*models.Post, error) {
				return nil, models.NewTransientError(assert.AnError)
			},
		})

		_, err := svc.FetchPage(context.Background(), "", nil)
		assert.True(t, models.IsTransient(err))
	})
}

func TestCursorEncoding(t *testing.T) {
	t.Run("round trip", func(t *testing.T) {
		in := &repository.PageCursor{
			CreatedAt: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
			ID:        "post-07",
		}
		token := EncodeCursor(in)
		require.NotEmpty(t, token)

		out, err := DecodeCursor(token)
		require.NoError(t, err)
		assert.Equal(t, in.ID, out.ID)
		assert.True(t, in.CreatedAt.Equal(out.CreatedAt))
	})

	t.Run("empty token is the first page", func(t *testing.T) {
		out, err := DecodeCursor("")
		require.NoError(t, err)
		assert.Nil(t, out)
		assert.Equal(t, "", EncodeCursor(nil))
	})

	t.Run("malformed token", func(t *testing.T) {
		_, err := DecodeCursor("!!not-base64!!")
		assert.True(t, models.IsValidation(err))

		_, err = DecodeCursor("bm90LWpzb24")
		assert.True(t, models.IsValidation(err))
	})
}

func TestFeedService_FirstPageCache(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	cache.SetClient(client)
	t.Cleanup(func() {
		cache.SetClient(nil)
		client.Close()
	})

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	calls := 0
	svc := NewFeedService(&postRepoStub{
		pageFn: func(_ context.Context, _ string, _ *repository.PageCursor, _ int) ([]*models.Post, error) {
			calls++
			return makePosts(PageSize, base), nil
		},
	})

	first, err := svc.FetchPage(context.Background(), "", nil)
	require.NoError(t, err)
	require.Equal(t, 1, calls)

	// A repeat first-page fetch is served from the cache.
	again, err := svc.FetchPage(context.Background(), "", nil)
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
	assert.Equal(t, len(first.Items), len(again.Items))
	assert.Equal(t, first.NextCursor.ID, again.NextCursor.ID)
	assert.True(t, mr.Exists(cache.FeedPageKey(models.TagAll)))

	// Cursor-addressed pages bypass the cache.
	_, err = svc.FetchPage(context.Background(), "", first.NextCursor)
	require.NoError(t, err)
	assert.Equal(t, 2, calls)

	// Feed invalidation forces a reload.
	cache.InvalidateFeed(context.Background())
	_, err = svc.FetchPage(context.Background(), "", nil)
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}
