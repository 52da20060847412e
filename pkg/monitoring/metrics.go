// Package monitoring exposes Prometheus metrics for audit and cleaning passes.
package monitoring

import (
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	// Service name for metrics
	ServiceName = "osmaudit"
)

var (
	// Audit pass metrics
	AuditsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "osmaudit_audits_total",
			Help: "Total number of audit passes run",
		},
		[]string{"classifier", "status"},
	)

	AuditDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "osmaudit_audit_duration_seconds",
			Help:    "Audit pass duration in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0, 60.0, 300.0},
		},
		[]string{"classifier"},
	)

	AnomaliesFound = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "osmaudit_anomalies_total",
			Help: "Total number of distinct anomalous values recorded",
		},
		[]string{"field", "classifier"},
	)

	// Scan metrics
	ElementsScanned = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "osmaudit_elements_scanned_total",
			Help: "Total number of nodes and ways read",
		},
		[]string{"format", "type"},
	)

	ScanDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "osmaudit_scan_duration_seconds",
			Help:    "Time from opening an extract to closing it",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0, 60.0, 300.0},
		},
		[]string{"format", "status"},
	)

	// Cleaning metrics
	CleanerChanges = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "osmaudit_cleaner_changes_total",
			Help: "Total number of values rewritten by a normalizer",
		},
		[]string{"normalizer"},
	)

	// MCP request metrics
	MCPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "osmaudit_mcp_requests_total",
			Help: "Total number of MCP requests processed",
		},
		[]string{"tool", "status"},
	)

	MCPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "osmaudit_mcp_request_duration_seconds",
			Help:    "MCP request duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0},
		},
		[]string{"tool"},
	)

	// Rate limiting metrics
	RateLimitExceeded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "osmaudit_rate_limit_exceeded_total",
			Help: "Total number of tool calls rejected by the rate limiter",
		},
		[]string{"tool"},
	)

	// Cache metrics
	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "osmaudit_cache_hits_total",
			Help: "Total number of cache hits",
		},
		[]string{"cache_type"},
	)

	CacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "osmaudit_cache_misses_total",
			Help: "Total number of cache misses",
		},
		[]string{"cache_type"},
	)

	CacheSize = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "osmaudit_cache_size",
			Help: "Current number of items in cache",
		},
		[]string{"cache_type"},
	)

	// Error metrics
	ErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "osmaudit_errors_total",
			Help: "Total number of errors",
		},
		[]string{"component", "error_type"},
	)

	// System metrics
	SystemInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "osmaudit_system_info",
			Help: "System information",
		},
		[]string{"version", "go_version"},
	)
)

func statusLabel(success bool) string {
	if success {
		return "success"
	}
	return "error"
}

// Helper functions for common metric updates
func RecordAudit(classifier string, duration time.Duration, success bool) {
	AuditsTotal.WithLabelValues(classifier, statusLabel(success)).Inc()
	AuditDuration.WithLabelValues(classifier).Observe(duration.Seconds())
}

func RecordAnomalies(field, classifier string, count int) {
	AnomaliesFound.WithLabelValues(field, classifier).Add(float64(count))
}

func RecordElementScanned(format, elementType string) {
	ElementsScanned.WithLabelValues(format, elementType).Inc()
}

func RecordScan(format string, duration time.Duration, success bool) {
	ScanDuration.WithLabelValues(format, statusLabel(success)).Observe(duration.Seconds())
}

func RecordCleanerChange(normalizer string) {
	CleanerChanges.WithLabelValues(normalizer).Inc()
}

func RecordMCPRequest(tool string, duration time.Duration, success bool) {
	MCPRequestsTotal.WithLabelValues(tool, statusLabel(success)).Inc()
	MCPRequestDuration.WithLabelValues(tool).Observe(duration.Seconds())
}

func RecordRateLimitExceeded(tool string) {
	RateLimitExceeded.WithLabelValues(tool).Inc()
}

func RecordCacheHit(cacheType string) {
	CacheHits.WithLabelValues(cacheType).Inc()
}

func RecordCacheMiss(cacheType string) {
	CacheMisses.WithLabelValues(cacheType).Inc()
}

func UpdateCacheSize(cacheType string, size int) {
	CacheSize.WithLabelValues(cacheType).Set(float64(size))
}

func RecordError(component, errorType string) {
	ErrorsTotal.WithLabelValues(component, errorType).Inc()
}

// SetSystemInfo publishes the build version
func SetSystemInfo(version string) {
	SystemInfo.WithLabelValues(version, runtime.Version()).Set(1)
}
