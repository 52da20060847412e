package core

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/NERVsystems/osmaudit/pkg/audit"
	"github.com/NERVsystems/osmaudit/pkg/osm"
)

func TestFromError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code ErrorCode
	}{
		{name: "unknown classifier", err: fmt.Errorf("x: %w", audit.ErrUnknownClassifier), code: ErrUnknownClassifier},
		{name: "unsupported format", err: osm.ErrUnsupportedFormat, code: ErrUnsupportedFormat},
		{name: "missing file", err: fmt.Errorf("opening: %w", os.ErrNotExist), code: ErrFileNotFound},
		{name: "permission", err: os.ErrPermission, code: ErrFileAccess},
		{name: "missing key", err: osm.ErrMissingKey, code: ErrParseError},
		{name: "missing value", err: audit.ErrMissingValue, code: ErrParseError},
		{name: "malformed document", err: fmt.Errorf("auditing a.osm: %w", osm.ErrMalformed), code: ErrParseError},
		{name: "canceled", err: context.Canceled, code: ErrCanceled},
		{name: "other", err: errors.New("boom"), code: ErrInternalError},
		{name: "already coded", err: NewError(ErrRateLimit, "slow down"), code: ErrRateLimit},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FromError(tt.err, "sample.osm")
			if got.Code != string(tt.code) {
				t.Errorf("expected code %s, got %s", tt.code, got.Code)
			}
		})
	}
}

func TestAuditErrorToMCPResult(t *testing.T) {
	result := NewError(ErrFileNotFound, "file not found").WithPath("a.osm").WithGuidance("check it").ToMCPResult()
	if !result.IsError {
		t.Fatal("expected error result")
	}

	text := result.Content[0].(mcp.TextContent).Text
	var decoded AuditError
	if err := json.Unmarshal([]byte(text), &decoded); err != nil {
		t.Fatalf("failed to decode error: %v", err)
	}
	if decoded.Code != string(ErrFileNotFound) || decoded.Path != "a.osm" {
		t.Errorf("unexpected error payload: %+v", decoded)
	}
	if !strings.Contains(decoded.Error(), "check it") {
		t.Errorf("expected guidance in message, got %s", decoded.Error())
	}
}

func TestValidatePath(t *testing.T) {
	if err := ValidatePath("sample.osm"); err != nil {
		t.Errorf("expected valid path, got %v", err)
	}
	if err := ValidatePath(""); err == nil || err.Code != string(ErrMissingParameter) {
		t.Errorf("expected missing parameter, got %v", err)
	}
	if err := ValidatePath("data.csv"); err == nil || err.Code != string(ErrUnsupportedFormat) {
		t.Errorf("expected unsupported format, got %v", err)
	}
}

func TestValidateField(t *testing.T) {
	if err := ValidateField("addr:street"); err != nil {
		t.Errorf("expected valid field, got %v", err)
	}
	if err := ValidateField(""); err != nil {
		t.Errorf("empty field selects the default, got %v", err)
	}
	if err := ValidateField("addr street"); err == nil {
		t.Error("expected error for field with whitespace")
	}
}

func TestValidateValue(t *testing.T) {
	if err := ValidateValue("postcode", "S123456"); err != nil {
		t.Errorf("expected valid value, got %v", err)
	}
	if err := ValidateValue("postcode", ""); err == nil {
		t.Error("expected error for empty value")
	}
	if err := ValidateValue("postcode", strings.Repeat("1", MaxValueLength+1)); err == nil {
		t.Error("expected error for oversized value")
	}
}

func TestParseJob(t *testing.T) {
	req := mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Name: "audit_osm_file",
			Arguments: map[string]any{
				"path":       "sample.osm",
				"classifier": "postcode",
			},
		},
	}

	job, err := ParseJob(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if job.Path != "sample.osm" || job.Classifier != "postcode" || job.Field != "" {
		t.Errorf("unexpected job: %+v", job)
	}

	req.Params.Arguments = map[string]any{"path": "sample.osm", "classifier": "nope"}
	if _, err := ParseJob(req); err == nil || err.Code != string(ErrUnknownClassifier) {
		t.Errorf("expected unknown classifier, got %v", err)
	}
}
