package tools

import (
	"context"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/NERVsystems/osmaudit/pkg/clean"
	"github.com/NERVsystems/osmaudit/pkg/core"
)

// MaxReportedChanges caps the changes returned by clean_osm_file
const MaxReportedChanges = 1000

// CleanValueOutput describes a single cleaned value
type CleanValueOutput struct {
	Original string `json:"original"`
	Cleaned  string `json:"cleaned"`
	Changed  bool   `json:"changed"`
}

// CleanPostcodeTool returns a tool definition for cleaning one postcode
func CleanPostcodeTool() mcp.Tool {
	return core.NewToolFactory().CreateValueTool("clean_postcode",
		"Normalize a postcode: five or six digits are kept, other values are stripped to digits or replaced by "+clean.SentinelPostcode,
		"postcode", "The postcode value to clean")
}

// HandleCleanPostcode implements postcode cleaning
func HandleCleanPostcode(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return handleCleanValue(req, "clean_postcode", "postcode", clean.Postcode)
}

// CleanStreetNameTool returns a tool definition for cleaning one street name
func CleanStreetNameTool() mcp.Tool {
	return core.NewToolFactory().CreateValueTool("clean_street_name",
		"Normalize a street name: expands Lor to Lorong and moves a trailing Lorong part to the front",
		"street_name", "The street name to clean")
}

// HandleCleanStreetName implements street name cleaning
func HandleCleanStreetName(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return handleCleanValue(req, "clean_street_name", "street_name", clean.StreetName)
}

func handleCleanValue(req mcp.CallToolRequest, tool, param string, apply func(string) string) (*mcp.CallToolResult, error) {
	logger := slog.Default().With("tool", tool)

	value := mcp.ParseString(req, param, "")
	if verr := core.ValidateValue(param, value); verr != nil {
		logger.Warn("invalid value", "error", verr)
		return verr.ToMCPResult(), nil
	}

	cleaned := apply(value)
	return JSONResponse(logger, CleanValueOutput{
		Original: value,
		Cleaned:  cleaned,
		Changed:  cleaned != value,
	}), nil
}

// CleanFileOutput lists the rewrites a cleaning pass would make
type CleanFileOutput struct {
	Path      string         `json:"path"`
	Total     int            `json:"total"`
	Truncated bool           `json:"truncated,omitempty"`
	Changes   []clean.Change `json:"changes"`
}

// CleanOSMFileTool returns a tool definition for a dry-run cleaning pass over an extract
func CleanOSMFileTool() mcp.Tool {
	return core.NewToolFactory().CreateFileTool("clean_osm_file",
		"Report how addr:postcode and addr:street values in an OSM extract would be rewritten. The file is not modified.")
}

// HandleCleanOSMFile implements the dry-run cleaning pass
func HandleCleanOSMFile(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	logger := slog.Default().With("tool", "clean_osm_file")

	path := mcp.ParseString(req, "path", "")
	if verr := core.ValidatePath(path); verr != nil {
		return verr.ToMCPResult(), nil
	}

	// diagnostics must never reach stdout, which carries the protocol
	changes, err := clean.File(ctx, path, clean.DefaultRules(nil))
	if err != nil {
		logger.Error("cleaning failed", "path", path, "error", err)
		return core.FromError(err, path).ToMCPResult(), nil
	}

	out := CleanFileOutput{Path: path, Total: len(changes), Changes: changes}
	if out.Changes == nil {
		out.Changes = []clean.Change{}
	}
	if len(out.Changes) > MaxReportedChanges {
		out.Changes = out.Changes[:MaxReportedChanges]
		out.Truncated = true
	}
	return JSONResponse(logger, out), nil
}
