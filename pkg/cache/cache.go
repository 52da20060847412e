// Package cache keeps recent audit reports so that repeated audits of an
// unchanged extract are answered without rereading it.
package cache

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/singleflight"

	"github.com/NERVsystems/osmaudit/pkg/audit"
	"github.com/NERVsystems/osmaudit/pkg/monitoring"
	"github.com/NERVsystems/osmaudit/pkg/tracing"
)

const (
	// DefaultSize is the number of reports kept
	DefaultSize = 128

	// DefaultTTL bounds how long a report is reused
	DefaultTTL = 30 * time.Minute
)

// ReportCache memoizes audit reports by file identity, field and classifier.
// Concurrent requests for the same key share one pass. Cached reports are
// shared and must not be modified.
type ReportCache struct {
	reports *expirable.LRU[string, *audit.Report]
	group   singleflight.Group
	run     audit.RunFunc
}

// NewReportCache returns a cache holding up to size reports for ttl, computing misses with run.
// A nil run uses audit.Run.
func NewReportCache(size int, ttl time.Duration, run audit.RunFunc) *ReportCache {
	if size <= 0 {
		size = DefaultSize
	}
	if run == nil {
		run = audit.Run
	}
	return &ReportCache{
		reports: expirable.NewLRU[string, *audit.Report](size, nil, ttl),
		run:     run,
	}
}

// Key identifies a job by the absolute path, size and modification time of
// its file plus the resolved field and classifier.
func Key(job audit.Job) (string, error) {
	field := job.Field
	if field == "" {
		info, err := audit.Lookup(job.Classifier)
		if err != nil {
			return "", err
		}
		field = info.DefaultField
	}

	abs, err := filepath.Abs(job.Path)
	if err != nil {
		return "", err
	}
	st, err := os.Stat(abs)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s|%d|%d|%s|%s", abs, st.Size(), st.ModTime().UnixNano(), field, job.Classifier), nil
}

// Run returns the cached report for job or runs it
func (c *ReportCache) Run(ctx context.Context, job audit.Job) (*audit.Report, error) {
	key, err := Key(job)
	if err != nil {
		// let the pass report the open or lookup failure
		return c.run(ctx, job)
	}

	if report, ok := c.reports.Get(key); ok {
		monitoring.RecordCacheHit(tracing.CacheTypeReport)
		tracing.SetAttributes(ctx, tracing.CacheAttributes(tracing.CacheTypeReport, true, key)...)
		return report, nil
	}
	monitoring.RecordCacheMiss(tracing.CacheTypeReport)
	tracing.SetAttributes(ctx, tracing.CacheAttributes(tracing.CacheTypeReport, false, key)...)
	tracing.AddEvent(ctx, tracing.EventCacheMiss, attribute.String(tracing.AttrCacheKey, key))

	v, err, _ := c.group.Do(key, func() (interface{}, error) {
		report, err := c.run(ctx, job)
		if err != nil {
			return nil, err
		}
		c.reports.Add(key, report)
		monitoring.UpdateCacheSize(tracing.CacheTypeReport, c.reports.Len())
		tracing.AddEvent(ctx, tracing.EventCacheFill, attribute.Int(tracing.AttrCacheSize, c.reports.Len()))
		return report, nil
	})
	if err != nil {
		tracing.RecordFailure(ctx, err)
		return nil, err
	}
	return v.(*audit.Report), nil
}

// Len returns the number of cached reports
func (c *ReportCache) Len() int {
	return c.reports.Len()
}

// Purge drops every cached report
func (c *ReportCache) Purge() {
	c.reports.Purge()
	monitoring.UpdateCacheSize(tracing.CacheTypeReport, 0)
}

// Global cache instance
var (
	globalCache     *ReportCache
	globalCacheOnce sync.Once
)

// GetGlobalCache returns the process-wide report cache used by the MCP tools
func GetGlobalCache() *ReportCache {
	globalCacheOnce.Do(func() {
		globalCache = NewReportCache(DefaultSize, DefaultTTL, nil)
	})
	return globalCache
}

// StopGlobalCache drops the reports held by the global cache
func StopGlobalCache() {
	if globalCache != nil {
		globalCache.Purge()
	}
}
