package audit

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
)

// Classifier inspects one tag value and records it in acc when it is an anomaly
type Classifier func(acc *Accumulator, value string)

var (
	postcodeRe = regexp.MustCompile(`^\d{6}$`)
	lorongRe   = regexp.MustCompile(`(?i)(\blor\b)|(\blorong\b)`)
)

// ClassifyPostcode records every value that is not exactly six digits.
// Each offending value becomes its own bucket.
func ClassifyPostcode(acc *Accumulator, postcode string) {
	if !postcodeRe.MatchString(postcode) {
		acc.Add(postcode, postcode)
	}
}

// ClassifyLorong records street names containing the word "lor" or "lorong" in any case.
// The bucket key is the matched text as spelled in the value, so "Lor" and "LOR" are
// kept apart.
func ClassifyLorong(acc *Accumulator, streetName string) {
	if match := lorongRe.FindString(streetName); match != "" {
		acc.Add(match, streetName)
	}
}

// ErrUnknownClassifier is returned by Lookup for names that are not registered
var ErrUnknownClassifier = errors.New("unknown classifier")

// ClassifierInfo describes a registered classifier
type ClassifierInfo struct {
	Name         string     `json:"name"`
	DefaultField string     `json:"default_field"`
	Description  string     `json:"description"`
	Classify     Classifier `json:"-"`
}

var classifiers = map[string]ClassifierInfo{
	"lorong": {
		Name:         "lorong",
		DefaultField: "addr:street",
		Description:  "Groups street names containing the word Lor or Lorong by the spelling found",
		Classify:     ClassifyLorong,
	},
	"postcode": {
		Name:         "postcode",
		DefaultField: "addr:postcode",
		Description:  "Collects postcodes that are not exactly six digits",
		Classify:     ClassifyPostcode,
	},
}

// Lookup returns the registered classifier with the given name
func Lookup(name string) (ClassifierInfo, error) {
	info, ok := classifiers[name]
	if !ok {
		return ClassifierInfo{}, fmt.Errorf("%w: %q (known: %v)", ErrUnknownClassifier, name, Names())
	}
	return info, nil
}

// Names returns the registered classifier names in sorted order
func Names() []string {
	names := make([]string, 0, len(classifiers))
	for name := range classifiers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Classifiers returns every registered classifier sorted by name
func Classifiers() []ClassifierInfo {
	names := Names()
	out := make([]ClassifierInfo, len(names))
	for i, name := range names {
		out[i] = classifiers[name]
	}
	return out
}
