package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// LikeToggles counts like toggles by outcome (liked/unliked/error).
	LikeToggles = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pawfeed_like_toggles_total",
		Help: "Total number of like toggles by outcome",
	}, []string{"outcome"})

	// TxRetries counts internal transaction retries after write-write conflicts.
	TxRetries = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pawfeed_tx_retries_total",
		Help: "Total number of store transaction retries by operation",
	}, []string{"operation"})

	// CacheRequests counts cache lookups by result (hit/miss/bypass).
	CacheRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pawfeed_cache_requests_total",
		Help: "Total number of cache lookups by result",
	}, []string{"result"})

	// RedisErrors counts Redis errors by operation type.
	RedisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pawfeed_redis_errors_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// FeedPageLatency records feed page fetch latency by tag filter kind.
	FeedPageLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "pawfeed_feed_page_latency_seconds",
		Help:    "Feed page fetch latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"filter"})

	// ModerationTransitions counts moderation state transitions by kind.
	ModerationTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pawfeed_moderation_transitions_total",
		Help: "Total number of moderation transitions by kind and entity",
	}, []string{"transition", "entity"})

	// WebSocketConnections is the gauge of active change-feed connections.
	WebSocketConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "pawfeed_websocket_connections",
		Help: "Number of active change-feed WebSocket connections",
	})

	// ChangeEventsPublished counts change events published by kind.
	ChangeEventsPublished = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pawfeed_change_events_published_total",
		Help: "Total number of change events published by kind",
	}, []string{"kind"})
)

// TrackFeedPage returns a function recording page fetch latency when called.
func TrackFeedPage(filter string) func() {
	start := time.Now()
	return func() {
		FeedPageLatency.WithLabelValues(filter).Observe(time.Since(start).Seconds())
	}
}
