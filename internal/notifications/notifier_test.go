package notifications

import (
	"context"
	"testing"
	"time"

	"pawfeed/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupNotifier(t *testing.T) *Notifier {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewNotifier(client)
}

func TestNotifier_PublishSubscribe(t *testing.T) {
	notifier := setupNotifier(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events := notifier.Subscribe(ctx)
	// Give the subscription a moment to attach before publishing.
	time.Sleep(50 * time.Millisecond)

	notifier.PublishChange(ChangeEvent{
		Kind:   EventPostUpdated,
		PostID: "p1",
		Post:   &models.Post{ID: "p1", Title: "t", LikeCount: 2},
	})

	select {
	case event := <-events:
		assert.Equal(t, EventPostUpdated, event.Kind)
		assert.Equal(t, "p1", event.PostID)
		require.NotNil(t, event.Post)
		assert.Equal(t, 2, event.Post.LikeCount)
		assert.False(t, event.At.IsZero(), "publish stamps the event time")
	case <-time.After(2 * time.Second):
		t.Fatal("event never arrived")
	}
}

func TestNotifier_SubscribeClosesOnCancel(t *testing.T) {
	notifier := setupNotifier(t)
	ctx, cancel := context.WithCancel(context.Background())

	events := notifier.Subscribe(ctx)
	cancel()

	select {
	case _, open := <-events:
		assert.False(t, open)
	case <-time.After(2 * time.Second):
		t.Fatal("channel never closed")
	}
}

func TestNotifier_NilSafety(t *testing.T) {
	var notifier *Notifier
	notifier.PublishChange(ChangeEvent{Kind: EventPostCreated})

	events := notifier.Subscribe(context.Background())
	_, open := <-events
	assert.False(t, open)

	// A notifier without a Redis client drops events instead of panicking.
	NewNotifier(nil).PublishChange(ChangeEvent{Kind: EventPostCreated})
}

func TestNotifier_HubFanout(t *testing.T) {
	notifier := setupNotifier(t)
	hub := NewHub()
	client, err := hub.Register("alice", nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx, notifier)
	time.Sleep(50 * time.Millisecond)

	notifier.PublishChange(ChangeEvent{Kind: EventCommentAdded, PostID: "p1", CommentID: "c1"})

	select {
	case payload := <-client.send:
		assert.Contains(t, string(payload), `"comment_added"`)
	case <-time.After(2 * time.Second):
		t.Fatal("hub never fanned the event out")
	}
}
