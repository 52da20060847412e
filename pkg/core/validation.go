package core

import (
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/NERVsystems/osmaudit/pkg/audit"
	"github.com/NERVsystems/osmaudit/pkg/osm"
)

// MaxValueLength bounds values passed to the single-value cleaning tools
const MaxValueLength = 1024

// ValidatePath checks that path is non-empty and has a readable extension
func ValidatePath(path string) *AuditError {
	if strings.TrimSpace(path) == "" {
		return NewValidationError(ErrMissingParameter, "path is required")
	}
	if strings.ContainsRune(path, 0) {
		return NewValidationError(ErrInvalidParameter, "path contains a NUL byte")
	}
	if _, err := osm.DetectFormat(path); err != nil {
		return FromError(err, path)
	}
	return nil
}

// ValidateField checks that an OSM tag key is usable
func ValidateField(field string) *AuditError {
	if field == "" {
		return nil
	}
	if strings.TrimSpace(field) != field || strings.ContainsAny(field, " \t\n") {
		return NewValidationError(ErrInvalidParameter, fmt.Sprintf("field %q must not contain whitespace", field))
	}
	return nil
}

// ValidateValue checks a single value handed to a cleaning tool
func ValidateValue(name, value string) *AuditError {
	if value == "" {
		return NewValidationError(ErrMissingParameter, fmt.Sprintf("%s is required", name))
	}
	if len(value) > MaxValueLength {
		return NewValidationError(ErrInvalidParameter, fmt.Sprintf("%s must be at most %d bytes", name, MaxValueLength))
	}
	return nil
}

// ParseJob extracts and validates an audit job from a CallToolRequest
func ParseJob(req mcp.CallToolRequest) (audit.Job, *AuditError) {
	job := audit.Job{
		Path:       mcp.ParseString(req, "path", ""),
		Field:      mcp.ParseString(req, "field", ""),
		Classifier: mcp.ParseString(req, "classifier", "lorong"),
	}

	if err := ValidatePath(job.Path); err != nil {
		return job, err
	}
	if err := ValidateField(job.Field); err != nil {
		return job, err
	}
	if _, err := audit.Lookup(job.Classifier); err != nil {
		return job, FromError(err, job.Path)
	}
	return job, nil
}
