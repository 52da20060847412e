package tools

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NERVsystems/osmaudit/pkg/clean"
	"github.com/NERVsystems/osmaudit/pkg/core"
)

func TestHandleCleanPostcode(t *testing.T) {
	tests := []struct {
		name     string
		postcode string
		expected string
		changed  bool
	}{
		{"Six digits", "238801", "238801", false},
		{"Five digits", "12345", "12345", false},
		{"Prefixed", "S238801", "238801", true},
		{"Too short", "12-34", clean.SentinelPostcode, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := HandleCleanPostcode(context.Background(), NewRequest("clean_postcode", map[string]any{"postcode": tt.postcode}))
			require.NoError(t, err)
			AssertSuccessResult(t, result, "cleaning should succeed")

			var out CleanValueOutput
			require.NoError(t, ParseResultJSON(result, &out))
			assert.Equal(t, tt.postcode, out.Original)
			assert.Equal(t, tt.expected, out.Cleaned)
			assert.Equal(t, tt.changed, out.Changed)
		})
	}
}

func TestHandleCleanStreetName(t *testing.T) {
	tests := []struct {
		name     string
		street   string
		expected string
	}{
		{"Expand abbreviation", "Lor 1 Toa Payoh", "Lorong 1 Toa Payoh"},
		{"Move trailing lorong", "Toa Payoh Lor 1", "Lorong 1 Toa Payoh "},
		{"Leading digit", "1 Lor Ampas", "1 Lorong Ampas"},
		{"Untouched", "Orchard Road", "Orchard Road"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := HandleCleanStreetName(context.Background(), NewRequest("clean_street_name", map[string]any{"street_name": tt.street}))
			require.NoError(t, err)
			AssertSuccessResult(t, result, "cleaning should succeed")

			var out CleanValueOutput
			require.NoError(t, ParseResultJSON(result, &out))
			assert.Equal(t, tt.expected, out.Cleaned)
		})
	}
}

func TestHandleCleanValueMissing(t *testing.T) {
	result, err := HandleCleanPostcode(context.Background(), NewRequest("clean_postcode", map[string]any{}))
	require.NoError(t, err)
	AssertErrorResult(t, result, "expected an error for a missing postcode")
	assert.Equal(t, string(core.ErrMissingParameter), errorCode(t, result))
}

func TestHandleCleanOSMFile(t *testing.T) {
	path := WriteExtract(t, t.TempDir(), "sg.osm", `<osm>
  <node id="1"><tag k="addr:street" v="Toa Payoh Lor 1"/><tag k="addr:postcode" v="S238801"/></node>
  <way id="2"><tag k="addr:street" v="Orchard Road"/><tag k="addr:postcode"/></way>
</osm>`)

	result, err := HandleCleanOSMFile(context.Background(), NewRequest("clean_osm_file", map[string]any{"path": path}))
	require.NoError(t, err)
	AssertSuccessResult(t, result, "cleaning should succeed")

	var out CleanFileOutput
	require.NoError(t, ParseResultJSON(result, &out))
	assert.Equal(t, 2, out.Total)
	assert.False(t, out.Truncated)
	assert.ElementsMatch(t, []clean.Change{
		{ElementType: "node", ElementID: 1, Key: "addr:street", Original: "Toa Payoh Lor 1", Cleaned: "Lorong 1 Toa Payoh "},
		{ElementType: "node", ElementID: 1, Key: "addr:postcode", Original: "S238801", Cleaned: "238801"},
	}, out.Changes)
}

func TestHandleCleanOSMFileMissing(t *testing.T) {
	result, err := HandleCleanOSMFile(context.Background(), NewRequest("clean_osm_file", map[string]any{"path": "nowhere/missing.osm"}))
	require.NoError(t, err)
	AssertErrorResult(t, result, "expected an error for a missing file")
	assert.Equal(t, string(core.ErrFileNotFound), errorCode(t, result))
}
