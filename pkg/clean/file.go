package clean

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/NERVsystems/osmaudit/pkg/monitoring"
	"github.com/NERVsystems/osmaudit/pkg/osm"
	"github.com/NERVsystems/osmaudit/pkg/tracing"
)

// Rule applies a normalizer to the values of one tag key
type Rule struct {
	Key   string
	Name  string
	Apply func(string) string
}

// DefaultRules cleans addr:postcode and addr:street with n
func DefaultRules(n *Normalizer) []Rule {
	return []Rule{
		{Key: "addr:postcode", Name: "postcode", Apply: n.Postcode},
		{Key: "addr:street", Name: "street", Apply: n.StreetName},
	}
}

// Change records a value a rule rewrote
type Change struct {
	ElementType string `json:"element_type"`
	ElementID   int64  `json:"element_id"`
	Key         string `json:"key"`
	Original    string `json:"original"`
	Cleaned     string `json:"cleaned"`
}

// Scan applies rules to every node and way of s and returns the values that changed.
// Tags without a v attribute are skipped.
func Scan(ctx context.Context, s osm.Scanner, rules []Rule) ([]Change, error) {
	byKey := make(map[string][]Rule, len(rules))
	for _, r := range rules {
		byKey[r.Key] = append(byKey[r.Key], r)
	}

	var changes []Change
	for s.Scan() {
		e := s.Element()
		for _, tag := range e.Tags {
			if !tag.HasValue() {
				continue
			}
			for _, r := range byKey[tag.Key] {
				cleaned := r.Apply(tag.Value)
				if cleaned == tag.Value {
					continue
				}
				monitoring.RecordCleanerChange(r.Name)
				changes = append(changes, Change{
					ElementType: string(e.Type),
					ElementID:   e.ID,
					Key:         tag.Key,
					Original:    tag.Value,
					Cleaned:     cleaned,
				})
			}
		}
	}
	if err := s.Err(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return changes, nil
}

// File runs Scan over the extract at path
func File(ctx context.Context, path string, rules []Rule) ([]Change, error) {
	ctx, span := tracing.StartSpan(ctx, "clean.file",
		trace.WithAttributes(attribute.String(tracing.AttrCleanPath, path)),
	)
	defer span.End()

	s, err := osm.OpenFile(ctx, path)
	if err != nil {
		tracing.RecordFailure(ctx, err)
		return nil, err
	}
	defer s.Close()

	changes, err := Scan(ctx, s, rules)
	if err != nil {
		tracing.RecordFailure(ctx, err)
		return nil, fmt.Errorf("cleaning %s: %w", path, err)
	}

	tracing.RecordSuccess(ctx, attribute.Int(tracing.AttrCleanChanges, len(changes)))
	return changes, nil
}
