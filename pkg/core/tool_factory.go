package core

import (
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/NERVsystems/osmaudit/pkg/audit"
)

// ToolFactory creates tool definitions with standardized parameters
type ToolFactory struct{}

// NewToolFactory creates a new tool factory
func NewToolFactory() *ToolFactory {
	return &ToolFactory{}
}

// CreateBasicTool creates a new tool with the specified name and description
func (f *ToolFactory) CreateBasicTool(name, description string) mcp.Tool {
	return mcp.NewTool(name, mcp.WithDescription(description))
}

// CreateFileTool creates a tool that reads an extract from disk
func (f *ToolFactory) CreateFileTool(name, description string, opts ...mcp.ToolOption) mcp.Tool {
	base := []mcp.ToolOption{
		mcp.WithDescription(description),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("Path to an OSM XML (.osm, .xml) or PBF (.pbf) extract"),
		),
	}
	return mcp.NewTool(name, append(base, opts...)...)
}

// CreateAuditTool creates a file tool taking a classifier and an optional field
func (f *ToolFactory) CreateAuditTool(name, description string, opts ...mcp.ToolOption) mcp.Tool {
	base := []mcp.ToolOption{
		mcp.WithString("classifier",
			mcp.Description("Classifier to apply: "+strings.Join(audit.Names(), ", ")),
			mcp.DefaultString("lorong"),
			mcp.Enum(audit.Names()...),
		),
		mcp.WithString("field",
			mcp.Description("Tag key to audit; defaults to the classifier's usual field"),
		),
	}
	return f.CreateFileTool(name, description, append(base, opts...)...)
}

// CreateValueTool creates a tool that transforms a single string argument
func (f *ToolFactory) CreateValueTool(name, description, param, paramDescription string) mcp.Tool {
	return mcp.NewTool(name,
		mcp.WithDescription(description),
		mcp.WithString(param,
			mcp.Required(),
			mcp.Description(paramDescription),
		),
	)
}
