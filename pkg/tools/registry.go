package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/NERVsystems/osmaudit/pkg/core"
	"github.com/NERVsystems/osmaudit/pkg/monitoring"
	"github.com/NERVsystems/osmaudit/pkg/tracing"
)

// ToolHandler is the signature shared by every tool handler
type ToolHandler func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error)

// Registry contains all tool definitions and handlers
type Registry struct {
	logger  *slog.Logger
	limiter *RateLimiter
}

// NewRegistry creates a new tool registry. A nil limiter disables rate limiting.
func NewRegistry(logger *slog.Logger, limiter *RateLimiter) *Registry {
	return &Registry{
		logger:  logger,
		limiter: limiter,
	}
}

// ToolDefinition represents an osmaudit MCP tool definition.
type ToolDefinition struct {
	Name        string
	Description string
	Tool        mcp.Tool
	Handler     ToolHandler
}

// GetToolDefinitions returns the list of all available tools.
func (r *Registry) GetToolDefinitions() []ToolDefinition {
	return []ToolDefinition{
		{
			Name:        "get_version",
			Description: "Get the version information for this service",
			Tool:        GetVersionTool(),
			Handler:     HandleGetVersion,
		},

		// Audit tools
		{
			Name:        "audit_osm_file",
			Description: "Audit one tag of an OSM extract. Parameters: path (string), classifier (string), field (string), use_cache (boolean)",
			Tool:        AuditOSMFileTool(),
			Handler:     HandleAuditOSMFile,
		},
		{
			Name:        "audit_osm_batch",
			Description: "Audit several OSM extracts. Parameters: paths (array of paths or globs), classifier (string), field (string), concurrency (number)",
			Tool:        AuditOSMBatchTool(),
			Handler:     HandleAuditOSMBatch,
		},
		{
			Name:        "list_classifiers",
			Description: "List the available classifiers",
			Tool:        ListClassifiersTool(),
			Handler:     HandleListClassifiers,
		},

		// Cleaning tools
		{
			Name:        "clean_postcode",
			Description: "Clean a single postcode. Parameters: postcode (string)",
			Tool:        CleanPostcodeTool(),
			Handler:     HandleCleanPostcode,
		},
		{
			Name:        "clean_street_name",
			Description: "Clean a single street name. Parameters: street_name (string)",
			Tool:        CleanStreetNameTool(),
			Handler:     HandleCleanStreetName,
		},
		{
			Name:        "clean_osm_file",
			Description: "Report the rewrites cleaning would apply to an extract. Parameters: path (string)",
			Tool:        CleanOSMFileTool(),
			Handler:     HandleCleanOSMFile,
		},
	}
}

// RegisterTools registers all tools with the MCP server.
func (r *Registry) RegisterTools(mcpServer *server.MCPServer) {
	for _, def := range r.GetToolDefinitions() {
		r.logger.Info("registering tool", "name", def.Name)
		mcpServer.AddTool(def.Tool, server.ToolHandlerFunc(r.Wrap(def.Name, def.Handler)))
	}
}

// Wrap applies rate limiting, tracing and request metrics to a handler
func (r *Registry) Wrap(toolName string, handler ToolHandler) ToolHandler {
	return r.wrapWithTracing(toolName, r.wrapWithRateLimit(toolName, handler))
}

func (r *Registry) wrapWithRateLimit(toolName string, handler ToolHandler) ToolHandler {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		if !r.limiter.Allow(toolName) {
			monitoring.RecordRateLimitExceeded(toolName)
			tracing.AddEvent(ctx, tracing.EventRateLimited, attribute.String(tracing.AttrMCPToolName, toolName))
			r.logger.Warn("rate limit exceeded", "tool", toolName, "status", tracing.StatusRateLimited, "limit", r.limiter.String())
			return core.NewError(core.ErrRateLimit, fmt.Sprintf("rate limit exceeded for %s", toolName)).
				WithGuidance("Retry the call later.").
				ToMCPResult(), nil
		}
		return handler(ctx, req)
	}
}

// wrapWithTracing wraps a tool handler with OpenTelemetry tracing
func (r *Registry) wrapWithTracing(toolName string, handler ToolHandler) ToolHandler {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		spanName := fmt.Sprintf("mcp.tool.%s", toolName)
		ctx, span := tracing.StartSpan(ctx, spanName,
			trace.WithAttributes(
				attribute.String(tracing.AttrMCPToolName, toolName),
			),
		)
		defer span.End()

		startTime := time.Now()
		result, err := handler(ctx, req)
		duration := time.Since(startTime)

		status := tracing.StatusSuccess
		switch {
		case err != nil:
			status = tracing.StatusError
			tracing.RecordFailure(ctx, err)
		case result != nil && result.IsError:
			status = tracing.StatusError
			span.SetStatus(codes.Error, "tool returned an error result")
		default:
			tracing.RecordSuccess(ctx)
		}
		monitoring.RecordMCPRequest(toolName, duration, status == tracing.StatusSuccess)

		resultSize := 0
		if result != nil && result.Content != nil {
			if data, marshalErr := json.Marshal(result.Content); marshalErr == nil {
				resultSize = len(data)
			}
		}

		span.SetAttributes(tracing.MCPToolAttributes(toolName, status, duration.Milliseconds(), resultSize)...)

		r.logger.Debug("tool execution traced",
			"tool", toolName,
			"duration_ms", duration.Milliseconds(),
			"status", status,
			"result_size", resultSize,
		)

		return result, err
	}
}

// GetToolNames returns a list of all tool names.
func (r *Registry) GetToolNames() []string {
	defs := r.GetToolDefinitions()
	names := make([]string, len(defs))
	for i, def := range defs {
		names[i] = def.Name
	}
	return names
}
