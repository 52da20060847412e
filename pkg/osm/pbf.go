package osm

import (
	"context"
	"fmt"
	"io"

	paulosm "github.com/paulmach/osm"
	"github.com/paulmach/osm/osmpbf"
)

// PBFScanner reads nodes and ways from an OSM PBF extract.
// Blocks are decoded by a single goroutine so elements arrive in file order.
type PBFScanner struct {
	scanner *osmpbf.Scanner
	current *Element
}

var _ Scanner = (*PBFScanner)(nil)

// NewPBFScanner returns a scanner reading PBF data from r
func NewPBFScanner(ctx context.Context, r io.Reader) *PBFScanner {
	s := osmpbf.New(ctx, r, 1)
	s.SkipRelations = true
	return &PBFScanner{scanner: s}
}

// Scan advances to the next node or way
func (s *PBFScanner) Scan() bool {
	for s.scanner.Scan() {
		switch o := s.scanner.Object().(type) {
		case *paulosm.Node:
			s.current = &Element{Type: TypeNode, ID: int64(o.ID), Tags: convertTags(o.Tags)}
			return true
		case *paulosm.Way:
			s.current = &Element{Type: TypeWay, ID: int64(o.ID), Tags: convertTags(o.Tags)}
			return true
		}
	}
	return false
}

// Element returns the element produced by the last successful Scan
func (s *PBFScanner) Element() *Element {
	return s.current
}

// Err returns the first decoding error
func (s *PBFScanner) Err() error {
	if err := s.scanner.Err(); err != nil {
		return fmt.Errorf("parsing osm pbf: %w", err)
	}
	return nil
}

// Close stops the decoder
func (s *PBFScanner) Close() error {
	return s.scanner.Close()
}

func convertTags(tags paulosm.Tags) []Tag {
	if len(tags) == 0 {
		return nil
	}
	out := make([]Tag, len(tags))
	for i, t := range tags {
		out[i] = NewTag(t.Key, t.Value)
	}
	return out
}
