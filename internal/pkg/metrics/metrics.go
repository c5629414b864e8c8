package metrics

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"
)

var (
	// HTTP metrics
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "crimemap",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Total HTTP requests processed",
	}, []string{"method", "path", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "crimemap",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency in seconds",
		Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 15},
	}, []string{"method", "path"})

	httpResponseSize = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "crimemap",
		Subsystem: "http",
		Name:      "response_size_bytes",
		Help:      "HTTP response size in bytes",
		Buckets:   prometheus.ExponentialBuckets(100, 10, 6),
	}, []string{"method", "path"})

	// Upstream (data.police.uk) metrics
	UpstreamRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "crimemap",
		Subsystem: "upstream",
		Name:      "requests_total",
		Help:      "Total requests sent to the crime data service",
	}, []string{"endpoint", "status"})

	UpstreamDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "crimemap",
		Subsystem: "upstream",
		Name:      "request_duration_seconds",
		Help:      "Latency of crime data service calls",
		Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 15},
	}, []string{"endpoint"})

	// Latest-month cache
	DatesCacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "crimemap",
		Subsystem: "dates_cache",
		Name:      "hits_total",
		Help:      "Latest-month lookups answered from memory",
	})

	DatesCacheRefreshes = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "crimemap",
		Subsystem: "dates_cache",
		Name:      "refreshes_total",
		Help:      "Latest-month refresh attempts by result",
	}, []string{"result"})

	DatesCacheFallbacks = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "crimemap",
		Subsystem: "dates_cache",
		Name:      "fallbacks_total",
		Help:      "Times the hard-coded fallback month was served",
	})

	// Response cache (valkey)
	CacheHits = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "crimemap",
		Subsystem: "cache",
		Name:      "hits_total",
		Help:      "Total cache hits",
	}, []string{"operation"})

	CacheMisses = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "crimemap",
		Subsystem: "cache",
		Name:      "misses_total",
		Help:      "Total cache misses",
	}, []string{"operation"})

	ContactSubmissions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "crimemap",
		Subsystem: "contact",
		Name:      "submissions_total",
		Help:      "Contact form submissions by result",
	}, []string{"result"})
)

// ObserveUpstream records one upstream call.
func ObserveUpstream(endpoint string, status int, took time.Duration) {
	label := strconv.Itoa(status)
	if status == 0 {
		label = "error"
	}
	UpstreamRequests.WithLabelValues(endpoint, label).Inc()
	UpstreamDuration.WithLabelValues(endpoint).Observe(took.Seconds())
}

// Middleware records request metrics.
func Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		err := c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Response().StatusCode())
		// fiber resolves the route pattern, which keeps /city/:name to one series
		path := c.Route().Path
		if path == "" {
			path = c.Path()
		}
		method := c.Method()

		httpRequestsTotal.WithLabelValues(method, path, status).Inc()
		httpRequestDuration.WithLabelValues(method, path).Observe(duration)
		httpResponseSize.WithLabelValues(method, path).Observe(float64(len(c.Response().Body())))

		return err
	}
}

// Handler returns a Fiber handler serving Prometheus /metrics endpoint.
func Handler() fiber.Handler {
	handler := promhttp.Handler()
	return func(c *fiber.Ctx) error {
		fasthttpadaptor.NewFastHTTPHandler(handler)(c.Context())
		return nil
	}
}
