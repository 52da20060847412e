// Package core provides shared utilities for the osmaudit MCP tools.
package core

import (
	"context"
	"encoding/json"
	"encoding/xml"
	"errors"
	"fmt"
	"os"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/NERVsystems/osmaudit/pkg/audit"
	"github.com/NERVsystems/osmaudit/pkg/osm"
)

// ErrorCode defines standard error codes for MCP tools
type ErrorCode string

// Standard error codes
const (
	// Input validation errors
	ErrInvalidInput      ErrorCode = "INVALID_INPUT"
	ErrMissingParameter  ErrorCode = "MISSING_PARAMETER"
	ErrInvalidParameter  ErrorCode = "INVALID_PARAMETER"
	ErrUnknownClassifier ErrorCode = "UNKNOWN_CLASSIFIER"
	ErrUnsupportedFormat ErrorCode = "UNSUPPORTED_FORMAT"

	// File errors
	ErrFileNotFound ErrorCode = "FILE_NOT_FOUND"
	ErrFileAccess   ErrorCode = "FILE_ACCESS"

	// Data errors
	ErrParseError ErrorCode = "PARSE_ERROR"
	ErrRateLimit  ErrorCode = "RATE_LIMIT"
	ErrCanceled   ErrorCode = "CANCELED"

	ErrInternalError ErrorCode = "INTERNAL_ERROR"
)

// AuditError represents a detailed error structure for MCP tool responses
type AuditError struct {
	Code        string   `json:"code"`
	Message     string   `json:"message"`
	Path        string   `json:"path,omitempty"`
	Suggestions []string `json:"suggestions,omitempty"`
	Guidance    string   `json:"guidance,omitempty"`
}

// Error implements the error interface
func (e AuditError) Error() string {
	if e.Guidance != "" {
		return fmt.Sprintf("%s: %s. %s", e.Code, e.Message, e.Guidance)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewError creates a new AuditError with the given code and message
func NewError(code ErrorCode, message string) *AuditError {
	return &AuditError{
		Code:    string(code),
		Message: message,
	}
}

// WithPath adds the input path to the error
func (e *AuditError) WithPath(path string) *AuditError {
	e.Path = path
	return e
}

// WithGuidance adds guidance information to the error
func (e *AuditError) WithGuidance(guidance string) *AuditError {
	e.Guidance = guidance
	return e
}

// WithSuggestions adds suggestions to the error
func (e *AuditError) WithSuggestions(suggestions ...string) *AuditError {
	e.Suggestions = append(e.Suggestions, suggestions...)
	return e
}

// ToMCPResult converts the error to an MCP tool result
func (e *AuditError) ToMCPResult() *mcp.CallToolResult {
	errorJSON, err := json.Marshal(e)
	if err != nil {
		// Fallback if marshaling fails
		return mcp.NewToolResultError(fmt.Sprintf("ERROR: %s - %s", e.Code, e.Message))
	}

	return mcp.NewToolResultError(string(errorJSON))
}

// FromError classifies an error returned by an audit or cleaning pass
func FromError(err error, path string) *AuditError {
	var ae *AuditError
	if errors.As(err, &ae) {
		return ae
	}

	var syntaxErr *xml.SyntaxError
	switch {
	case errors.Is(err, audit.ErrUnknownClassifier):
		return NewError(ErrUnknownClassifier, err.Error()).
			WithSuggestions(audit.Names()...)
	case errors.Is(err, osm.ErrUnsupportedFormat):
		return NewError(ErrUnsupportedFormat, err.Error()).WithPath(path).
			WithGuidance("Use an .osm/.xml extract or an .osm.pbf file.")
	case errors.Is(err, os.ErrNotExist):
		return NewError(ErrFileNotFound, fmt.Sprintf("file not found: %s", path)).WithPath(path).
			WithGuidance("Check the path; relative paths are resolved against the server's working directory.")
	case errors.Is(err, os.ErrPermission):
		return NewError(ErrFileAccess, err.Error()).WithPath(path)
	case errors.Is(err, osm.ErrMissingKey), errors.Is(err, osm.ErrMalformed),
		errors.Is(err, audit.ErrMissingValue), errors.As(err, &syntaxErr):
		return NewError(ErrParseError, err.Error()).WithPath(path).
			WithGuidance("The extract is not well-formed OSM data; no partial results are reported.")
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return NewError(ErrCanceled, err.Error()).WithPath(path)
	default:
		return NewError(ErrInternalError, err.Error()).WithPath(path)
	}
}

// NewValidationError creates an error for validation failures
func NewValidationError(code ErrorCode, message string) *AuditError {
	return NewError(code, message).
		WithGuidance("Please correct the parameters and try again.")
}
