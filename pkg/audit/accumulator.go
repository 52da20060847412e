package audit

import (
	"encoding/json"
	"fmt"
	"sort"
)

// Accumulator maps a classification key to the set of distinct raw values
// recorded under it. It is filled by a single pass and is not safe for
// concurrent writers.
type Accumulator struct {
	buckets map[string]map[string]struct{}
}

// NewAccumulator returns an empty accumulator
func NewAccumulator() *Accumulator {
	return &Accumulator{buckets: make(map[string]map[string]struct{})}
}

// Add records value under key. Duplicate values collapse.
func (a *Accumulator) Add(key, value string) {
	bucket, ok := a.buckets[key]
	if !ok {
		bucket = make(map[string]struct{})
		a.buckets[key] = bucket
	}
	bucket[value] = struct{}{}
}

// Has reports whether value was recorded under key
func (a *Accumulator) Has(key, value string) bool {
	_, ok := a.buckets[key][value]
	return ok
}

// Len returns the number of buckets
func (a *Accumulator) Len() int {
	return len(a.buckets)
}

// Count returns the number of distinct values across all buckets
func (a *Accumulator) Count() int {
	n := 0
	for _, b := range a.buckets {
		n += len(b)
	}
	return n
}

// Keys returns the bucket keys in sorted order
func (a *Accumulator) Keys() []string {
	keys := make([]string, 0, len(a.buckets))
	for k := range a.buckets {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Values returns the values of one bucket in sorted order, or nil if the bucket does not exist
func (a *Accumulator) Values(key string) []string {
	bucket, ok := a.buckets[key]
	if !ok {
		return nil
	}
	values := make([]string, 0, len(bucket))
	for v := range bucket {
		values = append(values, v)
	}
	sort.Strings(values)
	return values
}

// Map returns a copy of the accumulator with sorted value slices
func (a *Accumulator) Map() map[string][]string {
	out := make(map[string][]string, len(a.buckets))
	for k := range a.buckets {
		out[k] = a.Values(k)
	}
	return out
}

// String renders the accumulator in Go's map notation, e.g. map[Lor:[Lor 1 Toa Payoh]]
func (a *Accumulator) String() string {
	return fmt.Sprint(a.Map())
}

// MarshalJSON encodes the accumulator as an object of sorted string arrays
func (a *Accumulator) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.Map())
}

// UnmarshalJSON decodes the form produced by MarshalJSON
func (a *Accumulator) UnmarshalJSON(data []byte) error {
	var m map[string][]string
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}
	a.buckets = make(map[string]map[string]struct{}, len(m))
	for k, values := range m {
		for _, v := range values {
			a.Add(k, v)
		}
	}
	return nil
}
