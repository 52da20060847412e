package monitoring

import (
	"runtime"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetricsInitialization(t *testing.T) {
	// Test that all metrics are properly registered
	metrics := []prometheus.Collector{
		AuditsTotal,
		AuditDuration,
		AnomaliesFound,
		ElementsScanned,
		ScanDuration,
		CleanerChanges,
		MCPRequestsTotal,
		MCPRequestDuration,
		RateLimitExceeded,
		CacheHits,
		CacheMisses,
		CacheSize,
		ErrorsTotal,
		SystemInfo,
	}

	for _, metric := range metrics {
		if metric == nil {
			t.Error("Metric is nil")
		}
	}
}

func TestRecordAudit(t *testing.T) {
	AuditsTotal.Reset()

	RecordAudit("lorong", 100*time.Millisecond, true)
	if got := testutil.ToFloat64(AuditsTotal.WithLabelValues("lorong", "success")); got != 1 {
		t.Errorf("Expected 1 successful audit, got %v", got)
	}

	RecordAudit("lorong", 200*time.Millisecond, false)
	if got := testutil.ToFloat64(AuditsTotal.WithLabelValues("lorong", "error")); got != 1 {
		t.Errorf("Expected 1 failed audit, got %v", got)
	}
}

func TestRecordAnomalies(t *testing.T) {
	AnomaliesFound.Reset()

	RecordAnomalies("addr:postcode", "postcode", 3)
	RecordAnomalies("addr:postcode", "postcode", 2)
	if got := testutil.ToFloat64(AnomaliesFound.WithLabelValues("addr:postcode", "postcode")); got != 5 {
		t.Errorf("Expected 5 anomalies, got %v", got)
	}
}

func TestScanMetrics(t *testing.T) {
	ElementsScanned.Reset()

	RecordElementScanned("xml", "node")
	RecordElementScanned("xml", "node")
	RecordElementScanned("xml", "way")
	if got := testutil.ToFloat64(ElementsScanned.WithLabelValues("xml", "node")); got != 2 {
		t.Errorf("Expected 2 nodes, got %v", got)
	}
	if got := testutil.ToFloat64(ElementsScanned.WithLabelValues("xml", "way")); got != 1 {
		t.Errorf("Expected 1 way, got %v", got)
	}

	// histogram, only check it doesn't panic
	RecordScan("xml", time.Second, true)
}

func TestRecordMCPRequest(t *testing.T) {
	MCPRequestsTotal.Reset()

	RecordMCPRequest("test_tool", 100*time.Millisecond, true)
	if got := testutil.ToFloat64(MCPRequestsTotal.WithLabelValues("test_tool", "success")); got != 1 {
		t.Errorf("Expected 1 successful request, got %v", got)
	}

	RecordMCPRequest("test_tool", 200*time.Millisecond, false)
	if got := testutil.ToFloat64(MCPRequestsTotal.WithLabelValues("test_tool", "error")); got != 1 {
		t.Errorf("Expected 1 failed request, got %v", got)
	}
}

func TestCacheMetrics(t *testing.T) {
	CacheHits.Reset()
	CacheMisses.Reset()
	CacheSize.Reset()

	RecordCacheHit("test_cache")
	if got := testutil.ToFloat64(CacheHits.WithLabelValues("test_cache")); got != 1 {
		t.Errorf("Expected 1 cache hit, got %v", got)
	}

	RecordCacheMiss("test_cache")
	if got := testutil.ToFloat64(CacheMisses.WithLabelValues("test_cache")); got != 1 {
		t.Errorf("Expected 1 cache miss, got %v", got)
	}

	UpdateCacheSize("test_cache", 42)
	if got := testutil.ToFloat64(CacheSize.WithLabelValues("test_cache")); got != 42 {
		t.Errorf("Expected cache size 42, got %v", got)
	}
}

func TestCleanerAndLimiterMetrics(t *testing.T) {
	CleanerChanges.Reset()
	RateLimitExceeded.Reset()

	RecordCleanerChange("postcode")
	if got := testutil.ToFloat64(CleanerChanges.WithLabelValues("postcode")); got != 1 {
		t.Errorf("Expected 1 cleaner change, got %v", got)
	}

	RecordRateLimitExceeded("audit_osm_file")
	if got := testutil.ToFloat64(RateLimitExceeded.WithLabelValues("audit_osm_file")); got != 1 {
		t.Errorf("Expected 1 rate limit rejection, got %v", got)
	}
}

func TestErrorMetrics(t *testing.T) {
	ErrorsTotal.Reset()

	RecordError("test_component", "test_error")
	if got := testutil.ToFloat64(ErrorsTotal.WithLabelValues("test_component", "test_error")); got != 1 {
		t.Errorf("Expected 1 error, got %v", got)
	}
}

func TestSetSystemInfo(t *testing.T) {
	SystemInfo.Reset()

	SetSystemInfo("1.2.3")
	if got := testutil.ToFloat64(SystemInfo.WithLabelValues("1.2.3", runtime.Version())); got != 1 {
		t.Errorf("Expected system info gauge 1, got %v", got)
	}
}

func BenchmarkRecordElementScanned(b *testing.B) {
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		RecordElementScanned("xml", "node")
	}
}

func BenchmarkRecordCacheHit(b *testing.B) {
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		RecordCacheHit("benchmark_cache")
	}
}
