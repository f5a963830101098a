package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"

	"github.com/yungbote/armory-backend/internal/platform/logger"
)

// Metrics holds the service's Prometheus collectors. A nil *Metrics is valid
// and records nothing, so callers never need to check whether metrics are on.
type Metrics struct {
	registry *prometheus.Registry

	apiRequests *prometheus.CounterVec
	apiLatency  *prometheus.HistogramVec
	apiInflight prometheus.Gauge

	computeTotal   *prometheus.CounterVec
	computeLatency *prometheus.HistogramVec
	cacheLookups   *prometheus.CounterVec
	mirrorFailures *prometheus.CounterVec
	cascadeSize    prometheus.Histogram
}

// New builds the collectors on a private registry. db may be nil; when set,
// connection pool stats are exported as well.
func New(log *logger.Logger, db *gorm.DB) *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		apiRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "armory",
			Subsystem: "api",
			Name:      "requests_total",
			Help:      "Total API requests by method/route/status.",
		}, []string{"method", "route", "status"}),
		apiLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "armory",
			Subsystem: "api",
			Name:      "request_duration_seconds",
			Help:      "API request latency in seconds by method/route/status.",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5},
		}, []string{"method", "route", "status"}),
		apiInflight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "armory",
			Subsystem: "api",
			Name:      "inflight_requests",
			Help:      "In-flight API requests.",
		}),
		computeTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "armory",
			Subsystem: "compute",
			Name:      "total",
			Help:      "Graph computations by kind (power, max_build) and outcome.",
		}, []string{"kind", "status"}),
		computeLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "armory",
			Subsystem: "compute",
			Name:      "duration_seconds",
			Help:      "Snapshot load plus computation time in seconds.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 12),
		}, []string{"kind"}),
		cacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "armory",
			Subsystem: "cache",
			Name:      "lookups_total",
			Help:      "Result cache lookups by outcome (hit, miss).",
		}, []string{"result"}),
		mirrorFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "armory",
			Subsystem: "graph_mirror",
			Name:      "failures_total",
			Help:      "Failed graph mirror writes by operation.",
		}, []string{"op"}),
		cascadeSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "armory",
			Subsystem: "material",
			Name:      "cascade_delete_size",
			Help:      "Materials removed per delete request.",
			Buckets:   prometheus.LinearBuckets(1, 2, 8),
		}),
	}
	reg.MustRegister(
		m.apiRequests,
		m.apiLatency,
		m.apiInflight,
		m.computeTotal,
		m.computeLatency,
		m.cacheLookups,
		m.mirrorFailures,
		m.cascadeSize,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	if db != nil {
		if sqlDB, err := db.DB(); err == nil {
			reg.MustRegister(collectors.NewDBStatsCollector(sqlDB, "armory"))
		} else if log != nil {
			log.Warn("metrics: db stats unavailable", "error", err)
		}
	}
	return m
}

func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

func (m *Metrics) ObserveAPI(method, route, status string, dur time.Duration) {
	if m == nil {
		return
	}
	m.apiRequests.WithLabelValues(method, route, status).Inc()
	m.apiLatency.WithLabelValues(method, route, status).Observe(dur.Seconds())
}

func (m *Metrics) ApiInflightInc() {
	if m == nil {
		return
	}
	m.apiInflight.Inc()
}

func (m *Metrics) ApiInflightDec() {
	if m == nil {
		return
	}
	m.apiInflight.Dec()
}

func (m *Metrics) ObserveCompute(kind, status string, dur time.Duration) {
	if m == nil {
		return
	}
	m.computeTotal.WithLabelValues(kind, status).Inc()
	m.computeLatency.WithLabelValues(kind).Observe(dur.Seconds())
}

func (m *Metrics) IncCacheLookup(hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.cacheLookups.WithLabelValues(result).Inc()
}

func (m *Metrics) IncMirrorFailure(op string) {
	if m == nil {
		return
	}
	m.mirrorFailures.WithLabelValues(op).Inc()
}

func (m *Metrics) ObserveCascade(n int) {
	if m == nil {
		return
	}
	m.cascadeSize.Observe(float64(n))
}
