package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RedisErrors counts failed Redis commands by command name.
	RedisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "potluck_redis_errors_total",
		Help: "Total number of failed Redis commands",
	}, []string{"command"})

	// DatabaseQueryLatency records repository query latency by operation and table.
	DatabaseQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "potluck_database_query_latency_seconds",
		Help:    "Database query latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "table"})

	// LikesToggled counts like toggles by resulting action ("like" or "unlike").
	LikesToggled = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "potluck_likes_toggled_total",
		Help: "Total number of like toggles by resulting action",
	}, []string{"action"})

	// PostsDeleted counts cascaded post deletions.
	PostsDeleted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "potluck_posts_deleted_total",
		Help: "Total number of posts deleted with their engagement",
	})
)

// TrackQuery starts a latency observation; call the returned func when the
// query finishes, typically with defer.
func TrackQuery(operation, table string) func() {
	start := time.Now()
	return func() {
		DatabaseQueryLatency.WithLabelValues(operation, table).Observe(time.Since(start).Seconds())
	}
}

// RecordLikeToggle increments LikesToggled for the resulting state.
func RecordLikeToggle(liked bool) {
	action := "unlike"
	if liked {
		action = "like"
	}
	LikesToggled.WithLabelValues(action).Inc()
}
