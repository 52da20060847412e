// Package tools provides the osmaudit MCP tool implementations.
package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/NERVsystems/osmaudit/pkg/core"
)

// ErrorResponse returns a plain error result
func ErrorResponse(message string) *mcp.CallToolResult {
	return mcp.NewToolResultError(message)
}

// JSONResponse marshals v into a text result
func JSONResponse(logger *slog.Logger, v interface{}) *mcp.CallToolResult {
	resultBytes, err := json.Marshal(v)
	if err != nil {
		logger.Error("failed to marshal result", "error", err)
		return ErrorResponse("Failed to generate result")
	}
	return mcp.NewToolResultText(string(resultBytes))
}

// InputParser is a generic function to parse request arguments into a strongly typed struct
func InputParser[T any](req mcp.CallToolRequest) (T, *mcp.CallToolResult, error) {
	var input T

	// Convert the arguments to JSON
	inputJSON, err := json.Marshal(req.Params.Arguments)
	if err != nil {
		return input, ErrorResponse(fmt.Sprintf("Invalid input format: %v", err)), err
	}

	// Parse into the specified type
	if err := json.Unmarshal(inputJSON, &input); err != nil {
		return input, ErrorResponse(fmt.Sprintf("Failed to parse input: %v", err)), err
	}

	return input, nil, nil
}

// WithParsedInput is a higher-order function that handles request parsing and error handling.
// Errors returned by handler are reported as coded AuditError results.
func WithParsedInput[T any](
	handlerName string,
	handler func(ctx context.Context, input T, logger *slog.Logger) (interface{}, error),
) func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		logger := slog.Default().With("tool", handlerName)

		// Parse the input
		input, errResult, err := InputParser[T](req)
		if err != nil {
			logger.Error("failed to parse input", "error", err)
			return errResult, nil
		}

		// Call the handler with the parsed input
		result, err := handler(ctx, input, logger)
		if err != nil {
			logger.Error("handler error", "error", err)
			return core.FromError(err, "").ToMCPResult(), nil
		}

		return JSONResponse(logger, result), nil
	}
}
