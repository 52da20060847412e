// Package config loads audit profiles: YAML files listing several audits to run together.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/NERVsystems/osmaudit/pkg/audit"
)

// Profile describes a set of audits over one or more extracts.
//
//	inputs:
//	  - extracts/**/*.osm
//	concurrency: 4
//	verbose: true
//	audits:
//	  - classifier: lorong
//	  - classifier: postcode
//	    field: addr:postcode
type Profile struct {
	Inputs      []string      `yaml:"inputs"`
	Concurrency int           `yaml:"concurrency"`
	Verbose     bool          `yaml:"verbose"`
	Audits      []AuditConfig `yaml:"audits"`
}

// AuditConfig selects a classifier and the field it reads
type AuditConfig struct {
	Classifier string `yaml:"classifier"`
	Field      string `yaml:"field,omitempty"`
}

// DefaultProfile returns the profile used when no file is given
func DefaultProfile() *Profile {
	return &Profile{
		Inputs:      []string{"sample.osm"},
		Concurrency: 1,
		Audits: []AuditConfig{
			{Classifier: "lorong", Field: "addr:street"},
		},
	}
}

// Validate checks that the profile can be run
func (p *Profile) Validate() error {
	if len(p.Inputs) == 0 {
		return fmt.Errorf("inputs is required")
	}
	if len(p.Audits) == 0 {
		return fmt.Errorf("audits is required")
	}
	if p.Concurrency < 0 {
		return fmt.Errorf("concurrency must not be negative")
	}
	for i, a := range p.Audits {
		if _, err := audit.Lookup(a.Classifier); err != nil {
			return fmt.Errorf("audits[%d]: %w", i, err)
		}
	}
	return nil
}

// Jobs expands the inputs and crosses them with the audits, input-major
func (p *Profile) Jobs() ([]audit.Job, error) {
	paths, err := audit.ExpandInputs(p.Inputs)
	if err != nil {
		return nil, err
	}

	jobs := make([]audit.Job, 0, len(paths)*len(p.Audits))
	for _, path := range paths {
		for _, a := range p.Audits {
			jobs = append(jobs, audit.Job{Path: path, Field: a.Field, Classifier: a.Classifier})
		}
	}
	return jobs, nil
}

// LoadFromFile loads a profile from a YAML file
func LoadFromFile(path string) (*Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read profile: %w", err)
	}

	profile := DefaultProfile()
	profile.Audits = nil
	if err := yaml.Unmarshal(data, profile); err != nil {
		return nil, fmt.Errorf("failed to parse profile: %w", err)
	}

	if err := profile.Validate(); err != nil {
		return nil, fmt.Errorf("invalid profile %s: %w", path, err)
	}
	return profile, nil
}
