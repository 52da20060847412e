package tools

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NERVsystems/osmaudit/pkg/core"
)

const extractXML = `<?xml version="1.0" encoding="UTF-8"?>
<osm version="0.6">
  <node id="1" lat="1.33" lon="103.85">
    <tag k="addr:street" v="Lor 1 Toa Payoh"/>
    <tag k="addr:postcode" v="12345"/>
  </node>
  <node id="2" lat="1.34" lon="103.86">
    <tag k="addr:street" v="Lorong 2 Toa Payoh"/>
  </node>
  <way id="3">
    <tag k="addr:street" v="Orchard Road"/>
    <tag k="addr:postcode" v="238801"/>
  </way>
</osm>`

func errorCode(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	var ae core.AuditError
	require.NoError(t, ParseResultJSON(result, &ae))
	return ae.Code
}

func TestHandleAuditOSMFile(t *testing.T) {
	path := WriteExtract(t, t.TempDir(), "sg.osm", extractXML)

	tests := []struct {
		name     string
		args     map[string]any
		field    string
		expected map[string][]string
		matched  int
	}{
		{
			name:  "Default classifier",
			args:  map[string]any{"path": path},
			field: "addr:street",
			expected: map[string][]string{
				"Lor":    {"Lor 1 Toa Payoh"},
				"Lorong": {"Lorong 2 Toa Payoh"},
			},
			matched: 3,
		},
		{
			name:     "Postcode classifier",
			args:     map[string]any{"path": path, "classifier": "postcode", "use_cache": false},
			field:    "addr:postcode",
			expected: map[string][]string{"12345": {"12345"}},
			matched:  2,
		},
		{
			name:     "Explicit field",
			args:     map[string]any{"path": path, "classifier": "postcode", "field": "addr:street"},
			field:    "addr:street",
			expected: map[string][]string{"Lor 1 Toa Payoh": {"Lor 1 Toa Payoh"}, "Lorong 2 Toa Payoh": {"Lorong 2 Toa Payoh"}, "Orchard Road": {"Orchard Road"}},
			matched:  3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := HandleAuditOSMFile(context.Background(), NewRequest("audit_osm_file", tt.args))
			require.NoError(t, err)
			AssertSuccessResult(t, result, "audit should succeed")

			var out AuditOutput
			require.NoError(t, ParseResultJSON(result, &out))
			assert.Equal(t, tt.field, out.Field)
			assert.Equal(t, tt.expected, out.Buckets)
			assert.Equal(t, 3, out.Elements)
			assert.Equal(t, tt.matched, out.Matched)
			assert.NotEmpty(t, out.RunID)
		})
	}
}

func TestHandleAuditOSMFileErrors(t *testing.T) {
	dir := t.TempDir()
	broken := WriteExtract(t, dir, "broken.osm", `<osm><node id="1"><tag v="x"/></node></osm>`)

	tests := []struct {
		name string
		args map[string]any
		code core.ErrorCode
	}{
		{"Missing path", map[string]any{}, core.ErrMissingParameter},
		{"Unknown classifier", map[string]any{"path": filepath.Join(dir, "a.osm"), "classifier": "zip"}, core.ErrUnknownClassifier},
		{"Unsupported extension", map[string]any{"path": filepath.Join(dir, "a.csv")}, core.ErrUnsupportedFormat},
		{"Missing file", map[string]any{"path": filepath.Join(dir, "missing.osm")}, core.ErrFileNotFound},
		{"Tag without key", map[string]any{"path": broken}, core.ErrParseError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := HandleAuditOSMFile(context.Background(), NewRequest("audit_osm_file", tt.args))
			require.NoError(t, err)
			AssertErrorResult(t, result, "expected an error result")
			assert.Equal(t, string(tt.code), errorCode(t, result))
		})
	}
}

func TestHandleAuditOSMBatch(t *testing.T) {
	dir := t.TempDir()
	first := WriteExtract(t, dir, "a.osm", extractXML)
	WriteExtract(t, dir, "notes.txt", "not an extract")
	second := WriteExtract(t, t.TempDir(), "b.osm",
		`<osm><node id="9"><tag k="addr:street" v="LOR 3 Geylang"/></node></osm>`)

	result, err := HandleAuditOSMBatch(context.Background(), NewRequest("audit_osm_batch", map[string]any{
		"paths":       []any{filepath.Join(dir, "*.osm"), second},
		"classifier":  "lorong",
		"concurrency": 2,
	}))
	require.NoError(t, err)
	AssertSuccessResult(t, result, "batch should succeed")

	var out AuditBatchOutput
	require.NoError(t, ParseResultJSON(result, &out))
	require.Len(t, out.Reports, 2)
	assert.Equal(t, first, out.Reports[0].Path)
	assert.Equal(t, map[string][]string{
		"Lor":    {"Lor 1 Toa Payoh"},
		"Lorong": {"Lorong 2 Toa Payoh"},
	}, out.Reports[0].Buckets)
	assert.Equal(t, second, out.Reports[1].Path)
	assert.Equal(t, map[string][]string{"LOR": {"LOR 3 Geylang"}}, out.Reports[1].Buckets)
}

func TestHandleAuditOSMBatchErrors(t *testing.T) {
	tests := []struct {
		name string
		args map[string]any
		code core.ErrorCode
	}{
		{"No paths", map[string]any{"paths": []any{}}, core.ErrMissingParameter},
		{"Unknown classifier", map[string]any{"paths": []any{"a.osm"}, "classifier": "zip"}, core.ErrUnknownClassifier},
		{"Glob without match", map[string]any{"paths": []any{filepath.Join(t.TempDir(), "*.osm")}}, core.ErrInvalidParameter},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := HandleAuditOSMBatch(context.Background(), NewRequest("audit_osm_batch", tt.args))
			require.NoError(t, err)
			AssertErrorResult(t, result, "expected an error result")
			assert.Equal(t, string(tt.code), errorCode(t, result))
		})
	}
}

func TestHandleListClassifiers(t *testing.T) {
	result, err := HandleListClassifiers(context.Background(), NewRequest("list_classifiers", nil))
	require.NoError(t, err)
	AssertSuccessResult(t, result, "listing should succeed")

	var out struct {
		Classifiers []map[string]string `json:"classifiers"`
	}
	require.NoError(t, ParseResultJSON(result, &out))
	require.Len(t, out.Classifiers, 2)
	assert.Equal(t, "lorong", out.Classifiers[0]["name"])
	assert.Equal(t, "addr:street", out.Classifiers[0]["default_field"])
	assert.Equal(t, "postcode", out.Classifiers[1]["name"])
}

func TestHandleGetVersion(t *testing.T) {
	result, err := HandleGetVersion(context.Background(), NewRequest("get_version", nil))
	require.NoError(t, err)
	AssertSuccessResult(t, result, "version should succeed")

	var info map[string]any
	require.NoError(t, ParseResultJSON(result, &info))
	assert.Contains(t, info, "version")
}
