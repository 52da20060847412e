// Package osm provides streaming readers for OpenStreetMap extracts.
package osm

import (
	paulosm "github.com/paulmach/osm"
)

// Element types visited by the readers. Relations and changesets are skipped.
const (
	TypeNode = paulosm.TypeNode
	TypeWay  = paulosm.TypeWay
)

// Tag is a single k/v record attached to an element
type Tag struct {
	Key   string `json:"k"`
	Value string `json:"v"`

	// hasValue is false when the source carried no v attribute
	hasValue bool
}

// NewTag returns a tag with both key and value present
func NewTag(key, value string) Tag {
	return Tag{Key: key, Value: value, hasValue: true}
}

// HasValue reports whether the v attribute was present in the source
func (t Tag) HasValue() bool {
	return t.hasValue
}

// Element is a node or way together with every tag record found beneath it
type Element struct {
	Type paulosm.Type `json:"type"`
	ID   int64        `json:"id"`
	Tags []Tag        `json:"tags,omitempty"`
}

// Find returns the tags of the element whose key equals key, in document order
func (e *Element) Find(key string) []Tag {
	var out []Tag
	for _, t := range e.Tags {
		if t.Key == key {
			out = append(out, t)
		}
	}
	return out
}
