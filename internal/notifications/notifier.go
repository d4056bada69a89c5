package notifications

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"pawfeed/internal/observability"

	"github.com/redis/go-redis/v9"
)

// changeChannel is the Redis pub/sub channel carrying feed change events.
const changeChannel = "pawfeed:changes"

// Notifier publishes change events to Redis pub/sub so every server
// instance's hub can fan them out to its own connections.
type Notifier struct {
	redis *redis.Client
}

// NewNotifier creates a Notifier over the given Redis client.
func NewNotifier(redisClient *redis.Client) *Notifier {
	return &Notifier{redis: redisClient}
}

// PublishChange implements Publisher. Publish failures are logged and
// dropped; the store transaction already committed and must not be rolled
// back for a lost push.
func (n *Notifier) PublishChange(event ChangeEvent) {
	if n == nil || n.redis == nil {
		return
	}
	if event.At.IsZero() {
		event.At = time.Now().UTC()
	}
	payload, err := json.Marshal(event)
	if err != nil {
		observability.GlobalLogger.Error("failed to encode change event",
			slog.String("kind", event.Kind), slog.String("error", err.Error()))
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := n.redis.Publish(ctx, changeChannel, payload).Err(); err != nil {
		observability.GlobalLogger.Error("failed to publish change event",
			slog.String("kind", event.Kind), slog.String("error", err.Error()))
		return
	}
	observability.ChangeEventsPublished.WithLabelValues(event.Kind).Inc()
}

// Subscribe returns a channel of decoded change events. The channel closes
// when ctx is cancelled.
func (n *Notifier) Subscribe(ctx context.Context) <-chan ChangeEvent {
	out := make(chan ChangeEvent, 64)
	if n == nil || n.redis == nil {
		close(out)
		return out
	}
	sub := n.redis.Subscribe(ctx, changeChannel)
	go func() {
		defer close(out)
		defer sub.Close()
		ch := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				var event ChangeEvent
				if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
					observability.GlobalLogger.Warn("dropping malformed change event",
						slog.String("error", err.Error()))
					continue
				}
				select {
				case out <- event:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out
}
