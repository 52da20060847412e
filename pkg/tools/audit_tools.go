package tools

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/NERVsystems/osmaudit/pkg/audit"
	"github.com/NERVsystems/osmaudit/pkg/cache"
	"github.com/NERVsystems/osmaudit/pkg/core"
)

// MaxBatchConcurrency caps the passes a batch request may run at once
const MaxBatchConcurrency = 8

// AuditOutput is the result of one audit pass
type AuditOutput struct {
	RunID      string              `json:"run_id"`
	Path       string              `json:"path"`
	Field      string              `json:"field"`
	Classifier string              `json:"classifier"`
	Buckets    map[string][]string `json:"buckets"`
	Elements   int                 `json:"elements"`
	Matched    int                 `json:"matched"`
	DurationMs int64               `json:"duration_ms"`
}

func newAuditOutput(r *audit.Report) AuditOutput {
	return AuditOutput{
		RunID:      r.RunID,
		Path:       r.Path,
		Field:      r.Field,
		Classifier: r.Classifier,
		Buckets:    r.Buckets.Map(),
		Elements:   r.Elements,
		Matched:    r.Matched,
		DurationMs: r.Duration.Milliseconds(),
	}
}

// AuditOSMFileTool returns a tool definition for auditing one extract
func AuditOSMFileTool() mcp.Tool {
	return core.NewToolFactory().CreateAuditTool("audit_osm_file",
		"Scan the nodes and ways of an OSM extract and group tag values that do not match the expected format",
		mcp.WithBoolean("use_cache",
			mcp.Description("Reuse the report of an earlier pass over the same unchanged file"),
			mcp.DefaultBool(true),
		),
	)
}

// HandleAuditOSMFile implements a single audit pass
func HandleAuditOSMFile(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	logger := slog.Default().With("tool", "audit_osm_file")

	job, verr := core.ParseJob(req)
	if verr != nil {
		logger.Warn("invalid audit request", "error", verr)
		return verr.ToMCPResult(), nil
	}

	var (
		report *audit.Report
		err    error
	)
	if mcp.ParseBoolean(req, "use_cache", true) {
		report, err = cache.GetGlobalCache().Run(ctx, job)
	} else {
		report, err = audit.Run(ctx, job)
	}
	if err != nil {
		logger.Error("audit failed", "path", job.Path, "error", err)
		return core.FromError(err, job.Path).ToMCPResult(), nil
	}

	return JSONResponse(logger, newAuditOutput(report)), nil
}

// AuditBatchInput defines the input parameters for a batch audit
type AuditBatchInput struct {
	Paths       []string `json:"paths"`
	Classifier  string   `json:"classifier"`
	Field       string   `json:"field,omitempty"`
	Concurrency int      `json:"concurrency,omitempty"`
}

// AuditBatchOutput holds one report per resolved file, in path order
type AuditBatchOutput struct {
	Reports []AuditOutput `json:"reports"`
}

// AuditOSMBatchTool returns a tool definition for auditing several extracts
func AuditOSMBatchTool() mcp.Tool {
	return mcp.NewTool("audit_osm_batch",
		mcp.WithDescription("Audit several OSM extracts with one classifier. Paths may be glob patterns, including **."),
		mcp.WithArray("paths",
			mcp.Required(),
			mcp.Description("Extract paths or glob patterns"),
			mcp.Items(map[string]any{"type": "string"}),
		),
		mcp.WithString("classifier",
			mcp.Description("Classifier to apply: "+strings.Join(audit.Names(), ", ")),
			mcp.DefaultString("lorong"),
			mcp.Enum(audit.Names()...),
		),
		mcp.WithString("field",
			mcp.Description("Tag key to audit; defaults to the classifier's usual field"),
		),
		mcp.WithNumber("concurrency",
			mcp.Description(fmt.Sprintf("Passes to run at once (max %d)", MaxBatchConcurrency)),
			mcp.DefaultNumber(2),
		),
	)
}

// HandleAuditOSMBatch implements batch auditing
func HandleAuditOSMBatch(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return WithParsedInput("audit_osm_batch", func(ctx context.Context, input AuditBatchInput, logger *slog.Logger) (interface{}, error) {
		if len(input.Paths) == 0 {
			return nil, core.NewValidationError(core.ErrMissingParameter, "paths is required")
		}
		if input.Classifier == "" {
			input.Classifier = "lorong"
		}
		if _, err := audit.Lookup(input.Classifier); err != nil {
			return nil, err
		}
		if verr := core.ValidateField(input.Field); verr != nil {
			return nil, verr
		}
		concurrency := input.Concurrency
		if concurrency <= 0 {
			concurrency = 2
		}
		if concurrency > MaxBatchConcurrency {
			concurrency = MaxBatchConcurrency
		}

		paths, err := audit.ExpandInputs(input.Paths)
		if err != nil {
			return nil, core.NewValidationError(core.ErrInvalidParameter, err.Error())
		}
		for _, p := range paths {
			if verr := core.ValidatePath(p); verr != nil {
				return nil, verr
			}
		}

		logger.Info("running batch audit", "files", len(paths), "classifier", input.Classifier, "concurrency", concurrency)
		reports, err := audit.RunBatch(ctx, audit.Jobs(paths, input.Field, input.Classifier), concurrency, cache.GetGlobalCache().Run)
		if err != nil {
			return nil, err
		}

		out := AuditBatchOutput{Reports: make([]AuditOutput, len(reports))}
		for i, r := range reports {
			out.Reports[i] = newAuditOutput(r)
		}
		return out, nil
	})(ctx, req)
}

// ListClassifiersOutput lists the available classifiers
type ListClassifiersOutput struct {
	Classifiers []audit.ClassifierInfo `json:"classifiers"`
}

// ListClassifiersTool returns a tool definition for listing classifiers
func ListClassifiersTool() mcp.Tool {
	return core.NewToolFactory().CreateBasicTool("list_classifiers",
		"List the classifiers available to audit_osm_file and their default fields")
}

// HandleListClassifiers implements classifier listing
func HandleListClassifiers(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	logger := slog.Default().With("tool", "list_classifiers")
	return JSONResponse(logger, ListClassifiersOutput{Classifiers: audit.Classifiers()}), nil
}
