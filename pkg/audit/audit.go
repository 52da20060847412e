// Package audit scans OSM extracts and collects tag values that do not match an
// expected format.
package audit

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"

	"github.com/NERVsystems/osmaudit/pkg/monitoring"
	"github.com/NERVsystems/osmaudit/pkg/osm"
	"github.com/NERVsystems/osmaudit/pkg/tracing"
)

// ErrMissingValue is returned when a tag matching the audited field has no v attribute
var ErrMissingValue = errors.New("audited tag without v attribute")

// Stats counts what a pass looked at
type Stats struct {
	Elements int `json:"elements"`
	Matched  int `json:"matched"`
}

// Scan runs classify over every tag of s whose key equals field.
// It consumes s in a single pass and does not close it. On error no
// accumulator is returned.
func Scan(ctx context.Context, s osm.Scanner, field string, classify Classifier) (*Accumulator, Stats, error) {
	acc := NewAccumulator()
	var stats Stats

	for s.Scan() {
		e := s.Element()
		stats.Elements++

		for _, tag := range e.Tags {
			if tag.Key != field {
				continue
			}
			if !tag.HasValue() {
				return nil, stats, fmt.Errorf("%w: %s %d", ErrMissingValue, e.Type, e.ID)
			}
			stats.Matched++
			classify(acc, tag.Value)
		}
	}
	if err := s.Err(); err != nil {
		return nil, stats, err
	}
	if err := ctx.Err(); err != nil {
		return nil, stats, err
	}

	return acc, stats, nil
}

// Audit reads OSM XML from r and classifies the values of field
func Audit(ctx context.Context, r io.Reader, field string, classify Classifier) (*Accumulator, error) {
	s := osm.NewXMLScanner(ctx, r)
	defer s.Close()

	acc, _, err := Scan(ctx, s, field, classify)
	return acc, err
}

// AuditFile opens path, audits it and closes it again
func AuditFile(ctx context.Context, path string, field string, classify Classifier) (*Accumulator, error) {
	s, err := osm.OpenFile(ctx, path)
	if err != nil {
		return nil, err
	}
	defer s.Close()

	acc, _, err := Scan(ctx, s, field, classify)
	return acc, err
}

// Job names one audit pass
type Job struct {
	Path       string `json:"path" yaml:"path"`
	Field      string `json:"field" yaml:"field"`
	Classifier string `json:"classifier" yaml:"classifier"`
}

// Report is the outcome of one Job
type Report struct {
	RunID      string        `json:"run_id"`
	Path       string        `json:"path"`
	Field      string        `json:"field"`
	Classifier string        `json:"classifier"`
	Buckets    *Accumulator  `json:"buckets"`
	Elements   int           `json:"elements"`
	Matched    int           `json:"matched"`
	Duration   time.Duration `json:"duration_ns"`
}

// Run executes job against the file it names, recording metrics and a span
func Run(ctx context.Context, job Job) (*Report, error) {
	info, err := Lookup(job.Classifier)
	if err != nil {
		return nil, err
	}
	field := job.Field
	if field == "" {
		field = info.DefaultField
	}

	runID := uuid.New().String()
	logger := slog.Default().With("run_id", runID, "path", job.Path, "field", field, "classifier", info.Name)

	ctx, span := tracing.StartSpan(ctx, "audit.run",
		trace.WithAttributes(tracing.AuditAttributes(runID, job.Path, field, info.Name)...),
	)
	defer span.End()

	start := time.Now()
	acc, stats, err := runFile(ctx, job.Path, field, info.Classify)
	duration := time.Since(start)

	monitoring.RecordAudit(info.Name, duration, err == nil)
	if err != nil {
		tracing.RecordFailure(ctx, err)
		logger.Error("audit failed", "error", err, "elements", stats.Elements)
		return nil, fmt.Errorf("auditing %s: %w", job.Path, err)
	}

	monitoring.RecordAnomalies(field, info.Name, acc.Count())
	tracing.RecordSuccess(ctx, tracing.AuditResultAttributes(stats.Elements, stats.Matched, acc.Len())...)

	logger.Debug("audit complete",
		"elements", stats.Elements,
		"matched", stats.Matched,
		"buckets", acc.Len(),
		"duration", duration)

	return &Report{
		RunID:      runID,
		Path:       job.Path,
		Field:      field,
		Classifier: info.Name,
		Buckets:    acc,
		Elements:   stats.Elements,
		Matched:    stats.Matched,
		Duration:   duration,
	}, nil
}

func runFile(ctx context.Context, path, field string, classify Classifier) (*Accumulator, Stats, error) {
	s, err := osm.OpenFile(ctx, path)
	if err != nil {
		return nil, Stats{}, err
	}
	defer s.Close()

	return Scan(ctx, s, field, classify)
}
