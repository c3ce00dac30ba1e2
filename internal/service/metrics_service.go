package service

import (
	"net/http"
	"runtime"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/noah-isme/coursehub-web/internal/session"
)

// MetricsSnapshot is a lightweight summary for the readiness endpoint.
type MetricsSnapshot struct {
	RequestsTotal            uint64    `json:"requestsTotal"`
	AverageRequestDurationMs float64   `json:"averageRequestDurationMs"`
	BackendCalls             uint64    `json:"backendCalls"`
	BackendFailures          uint64    `json:"backendFailures"`
	CacheHitRatio            float64   `json:"cacheHitRatio"`
	ActiveSessions           int64     `json:"activeSessions"`
	Goroutines               int       `json:"goroutines"`
	GeneratedAt              time.Time `json:"generatedAt"`
}

// MetricsService owns the Prometheus registry of the gateway.
type MetricsService struct {
	registry           *prometheus.Registry
	handler            http.Handler
	requestDuration    *prometheus.HistogramVec
	requestTotal       *prometheus.CounterVec
	backendDuration    *prometheus.HistogramVec
	backendTotal       *prometheus.CounterVec
	cacheLatency       prometheus.Observer
	cacheWrite         prometheus.Observer
	cacheHitRatio      prometheus.Gauge
	cacheHits          prometheus.Counter
	cacheMisses        prometheus.Counter
	sessionTransitions *prometheus.CounterVec
	activeSessions     prometheus.Gauge

	requestCount         uint64
	requestDurationTotal uint64
	backendCount         uint64
	backendFailureCount  uint64
	cacheHitCount        uint64
	cacheMissCount       uint64
	activeSessionCount   int64
}

// NewMetricsService registers the gateway collectors.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	backendDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "backend_request_duration_seconds",
		Help:    "Duration of calls to the marketplace API",
		Buckets: prometheus.DefBuckets,
	}, []string{"endpoint", "status"})

	backendTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "backend_requests_total",
		Help: "Total calls to the marketplace API",
	}, []string{"endpoint", "status"})

	cacheLatency := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "cache_latency_seconds",
		Help:    "Latency for cache operations",
		Buckets: prometheus.DefBuckets,
	})

	cacheWrite := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "cache_write_seconds",
		Help:    "Latency for cache set operations",
		Buckets: prometheus.DefBuckets,
	})

	cacheHitRatio := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "cache_hit_ratio",
		Help: "Ratio of cache hits to total cache lookups",
	})

	cacheHits := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cache_hits_total",
		Help: "Total cache hits",
	})

	cacheMisses := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cache_misses_total",
		Help: "Total cache misses",
	})

	sessionTransitions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "session_transitions_total",
		Help: "Session state transitions by target status",
	}, []string{"status"})

	activeSessions := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "session_controllers_active",
		Help: "Session controllers currently held in memory",
	})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, backendDuration, backendTotal, cacheLatency, cacheWrite,
		cacheHitRatio, cacheHits, cacheMisses, sessionTransitions, activeSessions, goroutines)

	return &MetricsService{
		registry:           registry,
		handler:            promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration:    requestDuration,
		requestTotal:       requestTotal,
		backendDuration:    backendDuration,
		backendTotal:       backendTotal,
		cacheLatency:       cacheLatency,
		cacheWrite:         cacheWrite,
		cacheHitRatio:      cacheHitRatio,
		cacheHits:          cacheHits,
		cacheMisses:        cacheMisses,
		sessionTransitions: sessionTransitions,
		activeSessions:     activeSessions,
	}
}

// Registry exposes the underlying registry for tests.
func (m *MetricsService) Registry() *prometheus.Registry {
	return m.registry
}

// Handler exposes the Prometheus HTTP handler.
func (m *MetricsService) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// ObserveHTTPRequest records inbound request metrics.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := strconv.Itoa(status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
	atomic.AddUint64(&m.requestCount, 1)
	atomic.AddUint64(&m.requestDurationTotal, uint64(duration.Nanoseconds()))
}

// ObserveBackendCall records an outbound call. Status 0 means the request never got an answer.
func (m *MetricsService) ObserveBackendCall(endpoint string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	label := strconv.Itoa(status)
	if status == 0 {
		label = "error"
	}
	m.backendDuration.WithLabelValues(endpoint, label).Observe(duration.Seconds())
	m.backendTotal.WithLabelValues(endpoint, label).Inc()
	atomic.AddUint64(&m.backendCount, 1)
	if status == 0 || status >= http.StatusInternalServerError {
		atomic.AddUint64(&m.backendFailureCount, 1)
	}
}

// RecordCacheOperation records cache hit/miss metrics and updates hit ratio.
func (m *MetricsService) RecordCacheOperation(hit bool, duration time.Duration) {
	if m == nil {
		return
	}
	m.cacheLatency.Observe(duration.Seconds())
	if hit {
		m.cacheHits.Inc()
		atomic.AddUint64(&m.cacheHitCount, 1)
	} else {
		m.cacheMisses.Inc()
		atomic.AddUint64(&m.cacheMissCount, 1)
	}
	if ratio, ok := m.hitRatio(); ok {
		m.cacheHitRatio.Set(ratio)
	}
}

// ObserveCacheWrite tracks the duration for cache write operations.
func (m *MetricsService) ObserveCacheWrite(duration time.Duration) {
	if m == nil {
		return
	}
	m.cacheWrite.Observe(duration.Seconds())
}

// RecordSessionTransition counts a published session state.
func (m *MetricsService) RecordSessionTransition(status session.Status) {
	if m == nil {
		return
	}
	m.sessionTransitions.WithLabelValues(string(status)).Inc()
}

// SetActiveSessions reports how many controllers the registry holds.
func (m *MetricsService) SetActiveSessions(n int) {
	if m == nil {
		return
	}
	atomic.StoreInt64(&m.activeSessionCount, int64(n))
	m.activeSessions.Set(float64(n))
}

// Snapshot returns aggregated counters.
func (m *MetricsService) Snapshot() MetricsSnapshot {
	if m == nil {
		return MetricsSnapshot{}
	}
	requests := atomic.LoadUint64(&m.requestCount)
	reqDuration := atomic.LoadUint64(&m.requestDurationTotal)

	var avgRequestMs float64
	if requests > 0 {
		avgRequestMs = float64(reqDuration) / float64(requests) / float64(time.Millisecond)
	}
	ratio, _ := m.hitRatio()

	return MetricsSnapshot{
		RequestsTotal:            requests,
		AverageRequestDurationMs: avgRequestMs,
		BackendCalls:             atomic.LoadUint64(&m.backendCount),
		BackendFailures:          atomic.LoadUint64(&m.backendFailureCount),
		CacheHitRatio:            ratio,
		ActiveSessions:           atomic.LoadInt64(&m.activeSessionCount),
		Goroutines:               runtime.NumGoroutine(),
		GeneratedAt:              time.Now().UTC(),
	}
}

func (m *MetricsService) hitRatio() (float64, bool) {
	hits := atomic.LoadUint64(&m.cacheHitCount)
	misses := atomic.LoadUint64(&m.cacheMissCount)
	total := hits + misses
	if total == 0 {
		return 0, false
	}
	return float64(hits) / float64(total), true
}
