package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// EngineMetrics holds all Prometheus metrics for the outbreak engine.
type EngineMetrics struct {
	ScansTotal         *prometheus.CounterVec
	ScanDuration       prometheus.Histogram
	AlertsEmitted      *prometheus.CounterVec
	NotificationsTotal *prometheus.CounterVec
	CacheEntries       prometheus.Gauge
}

// NewEngineMetrics initializes and registers the Prometheus metrics.
func NewEngineMetrics() *EngineMetrics {
	return &EngineMetrics{
		ScansTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "outbreak_engine",
			Subsystem: "scan",
			Name:      "scans_total",
			Help:      "Total number of scans by outcome.",
		}, []string{"outcome"}), // outcome: cache_hit, computed
		ScanDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: "outbreak_engine",
			Subsystem: "scan",
			Name:      "duration_seconds",
			Help:      "Duration of full scan computations (cache misses only).",
			Buckets:   prometheus.DefBuckets,
		}),
		AlertsEmitted: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "outbreak_engine",
			Subsystem: "scan",
			Name:      "alerts_emitted_total",
			Help:      "Total number of outbreak alerts emitted by risk level.",
		}, []string{"risk_level"}),
		NotificationsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "outbreak_engine",
			Subsystem: "notify",
			Name:      "notifications_total",
			Help:      "Total number of notification attempts by status.",
		}, []string{"status"}), // status: sent, deduplicated, failed
		CacheEntries: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: "outbreak_engine",
			Subsystem: "cache",
			Name:      "entries",
			Help:      "Number of resident result-cache entries (in-memory cache only).",
		}),
	}
}
