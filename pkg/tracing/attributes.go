package tracing

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel/attribute"
)

// Attribute keys for audit operations
const (
	// MCP tool attributes
	AttrMCPToolName     = "mcp.tool.name"
	AttrMCPToolStatus   = "mcp.tool.status"
	AttrMCPToolDuration = "mcp.tool.duration_ms"
	AttrMCPResultSize   = "mcp.tool.result_size"

	// Audit pass attributes
	AttrAuditRunID      = "osm.audit.run_id"
	AttrAuditPath       = "osm.audit.path"
	AttrAuditField      = "osm.audit.field"
	AttrAuditClassifier = "osm.audit.classifier"
	AttrAuditElements   = "osm.audit.elements"
	AttrAuditMatched    = "osm.audit.matched"
	AttrAuditBuckets    = "osm.audit.buckets"

	// Cleaning pass attributes
	AttrCleanPath    = "osm.clean.path"
	AttrCleanChanges = "osm.clean.changes"

	// Cache attributes
	AttrCacheType = "osm.cache.type"
	AttrCacheHit  = "osm.cache.hit"
	AttrCacheKey  = "osm.cache.key"
	AttrCacheSize = "osm.cache.size"

	// Error attributes
	AttrErrorType    = "error.type"
	AttrErrorMessage = "error.message"
)

// Status values
const (
	StatusSuccess     = "success"
	StatusError       = "error"
	StatusRateLimited = "rate_limited"
)

// Cache types
const (
	CacheTypeReport = "report"
)

// MCPToolAttributes returns attributes for MCP tool execution
func MCPToolAttributes(toolName string, status string, durationMs int64, resultSize int) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String(AttrMCPToolName, toolName),
		attribute.String(AttrMCPToolStatus, status),
		attribute.Int64(AttrMCPToolDuration, durationMs),
		attribute.Int(AttrMCPResultSize, resultSize),
	}
}

// AuditAttributes returns attributes identifying an audit pass
func AuditAttributes(runID, path, field, classifier string) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String(AttrAuditRunID, runID),
		attribute.String(AttrAuditPath, path),
		attribute.String(AttrAuditField, field),
		attribute.String(AttrAuditClassifier, classifier),
	}
}

// AuditResultAttributes returns attributes describing the outcome of an audit pass
func AuditResultAttributes(elements, matched, buckets int) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.Int(AttrAuditElements, elements),
		attribute.Int(AttrAuditMatched, matched),
		attribute.Int(AttrAuditBuckets, buckets),
	}
}

// CacheAttributes returns attributes for cache operations
func CacheAttributes(cacheType string, hit bool, key string) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String(AttrCacheType, cacheType),
		attribute.Bool(AttrCacheHit, hit),
		attribute.String(AttrCacheKey, key),
	}
}

// Error types
const (
	ErrorTypeCanceled = "canceled"
	ErrorTypeTimeout  = "timeout"
	ErrorTypeOther    = "error"
)

// ErrorAttributes returns attributes for errors
func ErrorAttributes(err error) []attribute.KeyValue {
	if err == nil {
		return nil
	}
	errType := ErrorTypeOther
	switch {
	case errors.Is(err, context.Canceled):
		errType = ErrorTypeCanceled
	case errors.Is(err, context.DeadlineExceeded):
		errType = ErrorTypeTimeout
	}
	return []attribute.KeyValue{
		attribute.String(AttrErrorType, errType),
		attribute.String(AttrErrorMessage, err.Error()),
	}
}
