package metrics

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Registry holds the application-specific Prometheus collectors.
	Registry = prometheus.NewRegistry()

	httpInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "thefreed",
			Subsystem: "http",
			Name:      "inflight_requests",
			Help:      "Current number of in-flight HTTP requests.",
		},
	)

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "thefreed",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		},
		[]string{"method", "path", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "thefreed",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10), // 5ms to ~5s
		},
		[]string{"method", "path"},
	)

	directMessages = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "thefreed",
			Subsystem: "dm",
			Name:      "messages_total",
			Help:      "Total number of direct messages accepted.",
		},
		[]string{"status"},
	)

	messagesRead = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "thefreed",
			Subsystem: "dm",
			Name:      "messages_read_total",
			Help:      "Total number of messages stamped with a read receipt.",
		},
	)

	conversationsCreated = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "thefreed",
			Subsystem: "dm",
			Name:      "conversations_created_total",
			Help:      "Total number of conversations created on first contact.",
		},
	)

	feedBuilds = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "thefreed",
			Subsystem: "feed",
			Name:      "builds_total",
			Help:      "Total number of feed pages assembled.",
		},
		[]string{"mode"},
	)

	feedBuildDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "thefreed",
			Subsystem: "feed",
			Name:      "build_duration_seconds",
			Help:      "Duration of feed page assembly.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
		},
		[]string{"mode"},
	)

	feedItems = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "thefreed",
			Subsystem: "feed",
			Name:      "page_items",
			Help:      "Number of items per assembled feed page.",
			Buckets:   prometheus.LinearBuckets(0, 10, 11),
		},
		[]string{"mode"},
	)

	cacheHits = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "thefreed",
			Subsystem: "cache",
			Name:      "hits_total",
			Help:      "Total number of cache hits.",
		},
		[]string{"cache"},
	)

	cacheMisses = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "thefreed",
			Subsystem: "cache",
			Name:      "misses_total",
			Help:      "Total number of cache misses.",
		},
		[]string{"cache"},
	)
)

func init() {
	Registry.MustRegister(
		httpInFlight,
		httpRequests,
		httpDuration,
		directMessages,
		messagesRead,
		conversationsCreated,
		feedBuilds,
		feedBuildDuration,
		feedItems,
		cacheHits,
		cacheMisses,
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
		prometheus.NewGoCollector(),
	)
}

// Handler returns an HTTP handler exposing the registered Prometheus metrics.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// InstrumentHandler wraps the provided handler with HTTP metrics collection.
func InstrumentHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/metrics" {
			next.ServeHTTP(w, r)
			return
		}

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()

		httpInFlight.Inc()
		defer httpInFlight.Dec()

		next.ServeHTTP(rec, r)

		duration := time.Since(start)
		path := canonicalPath(r.URL.Path)
		method := strings.ToUpper(r.Method)

		httpRequests.WithLabelValues(method, path, strconv.Itoa(rec.status)).Inc()
		httpDuration.WithLabelValues(method, path).Observe(duration.Seconds())
	})
}

// RecordDirectMessage records an accepted direct message by delivery status.
func RecordDirectMessage(status string) {
	if status == "" {
		status = "sent"
	}
	directMessages.WithLabelValues(status).Inc()
}

// RecordMessagesRead records how many messages a read receipt covered.
func RecordMessagesRead(count int) {
	if count <= 0 {
		return
	}
	messagesRead.Add(float64(count))
}

// RecordConversationCreated records a first-contact conversation creation.
func RecordConversationCreated() {
	conversationsCreated.Inc()
}

// RecordFeedBuilt records metrics for an assembled feed page.
func RecordFeedBuilt(mode string, duration time.Duration, items int) {
	if mode == "" {
		mode = "unknown"
	}
	if duration <= 0 {
		duration = time.Millisecond
	}
	feedBuilds.WithLabelValues(mode).Inc()
	feedBuildDuration.WithLabelValues(mode).Observe(duration.Seconds())
	feedItems.WithLabelValues(mode).Observe(float64(items))
}

// RecordCacheHit records a hit on the named cache.
func RecordCacheHit(cache string) {
	cacheHits.WithLabelValues(cache).Inc()
}

// RecordCacheMiss records a miss on the named cache.
func RecordCacheMiss(cache string) {
	cacheMisses.WithLabelValues(cache).Inc()
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	return r.ResponseWriter.Write(b)
}

func canonicalPath(raw string) string {
	if raw == "" || raw == "/" {
		return "/"
	}
	trimmed := strings.Trim(raw, "/")
	if trimmed == "" {
		return "/"
	}
	parts := strings.Split(trimmed, "/")
	if parts[0] != "dm" {
		return "/" + parts[0]
	}
	if len(parts) == 1 {
		return "/dm"
	}
	if parts[1] == "with" {
		return "/dm/with/:user"
	}
	if len(parts) == 3 && parts[2] == "read" {
		return "/dm/:conversation/read"
	}
	return "/dm/:conversation"
}
