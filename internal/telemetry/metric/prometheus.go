package metric

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "pixmesh"

// Registry holds all application metrics.
type Registry struct {
	registry *prometheus.Registry

	// Canvas metrics
	PixelsSet      prometheus.Counter
	WritesRejected *prometheus.CounterVec
	CanvasClears   prometheus.Counter
	LedgerEntries  prometheus.Gauge

	// Persistence metrics
	PersistDuration prometheus.Histogram
	PersistFailures prometheus.Counter

	// Request metrics
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	RequestsLimited prometheus.Counter
}

// NewRegistry creates a registry with the application metrics plus the Go
// runtime and process collectors.
func NewRegistry() *Registry {
	r := &Registry{
		registry: prometheus.NewRegistry(),

		PixelsSet: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "canvas",
			Name:      "pixels_set_total",
			Help:      "Accepted single-pixel writes",
		}),
		WritesRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "canvas",
			Name:      "writes_rejected_total",
			Help:      "Rejected pixel writes by reason",
		}, []string{"reason"}),
		CanvasClears: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "canvas",
			Name:      "clears_total",
			Help:      "Whole-canvas clears",
		}),
		LedgerEntries: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "cooldown",
			Name:      "ledger_entries",
			Help:      "Identities currently tracked by the cooldown ledger",
		}),

		PersistDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "snapshot",
			Name:      "save_duration_seconds",
			Help:      "Time spent saving a canvas snapshot",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 14),
		}),
		PersistFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "snapshot",
			Name:      "save_failures_total",
			Help:      "Snapshot saves that returned an error",
		}),

		RequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by method, route and status code",
		}, []string{"method", "route", "code"}),
		RequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		RequestsLimited: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_throttled_total",
			Help:      "Requests rejected by the per-client request throttle",
		}),
	}

	r.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		r.PixelsSet,
		r.WritesRejected,
		r.CanvasClears,
		r.LedgerEntries,
		r.PersistDuration,
		r.PersistFailures,
		r.RequestsTotal,
		r.RequestDuration,
		r.RequestsLimited,
	)

	return r
}

var (
	globalOnce     sync.Once
	globalRegistry *Registry
)

// Global returns the process-wide registry, creating it on first use.
func Global() *Registry {
	globalOnce.Do(func() {
		globalRegistry = NewRegistry()
	})
	return globalRegistry
}

// Registerer exposes the underlying registry for components that register
// their own metrics.
func (r *Registry) Registerer() prometheus.Registerer {
	return r.registry
}

// Gatherer exposes the underlying registry for scraping and tests.
func (r *Registry) Gatherer() prometheus.Gatherer {
	return r.registry
}

// Handler returns an HTTP handler for the /metrics endpoint.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{
		Registry: r.registry,
	})
}

// PixelSet counts an accepted write.
func (r *Registry) PixelSet() {
	r.PixelsSet.Inc()
}

// WriteRejected counts a rejected write.
func (r *Registry) WriteRejected(reason string) {
	r.WritesRejected.WithLabelValues(reason).Inc()
}

// CanvasCleared counts a clear.
func (r *Registry) CanvasCleared() {
	r.CanvasClears.Inc()
}

// PersistObserved records one snapshot save.
func (r *Registry) PersistObserved(elapsed time.Duration, err error) {
	r.PersistDuration.Observe(elapsed.Seconds())
	if err != nil {
		r.PersistFailures.Inc()
	}
}

// LedgerSize sets the number of tracked cooldown identities.
func (r *Registry) LedgerSize(n int) {
	r.LedgerEntries.Set(float64(n))
}

// ObserveRequest records a finished HTTP request.
func (r *Registry) ObserveRequest(method, route string, code int, elapsed time.Duration) {
	r.RequestsTotal.WithLabelValues(method, route, strconv.Itoa(code)).Inc()
	r.RequestDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// RequestThrottled counts a request rejected by the request throttle.
func (r *Registry) RequestThrottled() {
	r.RequestsLimited.Inc()
}
