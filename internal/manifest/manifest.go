// Package manifest loads an optional YAML step plan that replaces the
// built-in create/load/counts/KPI sequence.
package manifest

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

type Kind string

const (
	// KindScript executes a file for effect without capturing rows.
	KindScript Kind = "script"
	// KindQuery executes a file and reports its result set.
	KindQuery Kind = "query"
)

type Step struct {
	Name string `yaml:"name"`
	Kind Kind   `yaml:"kind"`
	File string `yaml:"file"`
}

type Plan struct {
	Steps []Step `yaml:"steps"`
}

func Load(path string) (Plan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Plan{}, fmt.Errorf("read manifest %q: %w", path, err)
	}
	return Parse(data)
}

func Parse(data []byte) (Plan, error) {
	decoder := yaml.NewDecoder(strings.NewReader(string(data)))
	decoder.KnownFields(true)

	var plan Plan
	if err := decoder.Decode(&plan); err != nil {
		return Plan{}, fmt.Errorf("decode manifest: %w", err)
	}
	if len(plan.Steps) == 0 {
		return Plan{}, fmt.Errorf("manifest declares no steps")
	}
	for i, step := range plan.Steps {
		if strings.TrimSpace(step.Name) == "" {
			return Plan{}, fmt.Errorf("step %d: name is required", i+1)
		}
		if strings.TrimSpace(step.File) == "" {
			return Plan{}, fmt.Errorf("step %d (%s): file is required", i+1, step.Name)
		}
		switch step.Kind {
		case KindScript, KindQuery:
		default:
			return Plan{}, fmt.Errorf("step %d (%s): invalid kind %q", i+1, step.Name, step.Kind)
		}
	}
	return plan, nil
}
