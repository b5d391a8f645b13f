// Package catalog resolves model names and roles to generation options from
// a YAML catalog file. The engine treats the resolved options as opaque
// pass-through; the catalog is where sampling parameters and provider
// routing actually live.
package catalog

import (
	"fmt"
	"os"
	"strings"

	"github.com/goccy/go-yaml"

	"github.com/arbiterhq/arbiter-go/types"
)

type Role string

const (
	RoleTest  Role = "test"
	RoleJudge Role = "judge"
)

// Store resolves a model name for a role into wire options. An empty name
// selects the role's default model.
type Store interface {
	ModelOptions(name string, role Role) (types.GenerateOptions, error)
}

type modelSpec struct {
	Provider        string         `yaml:"provider"`
	Temperature     *float64       `yaml:"temperature"`
	TopP            *float64       `yaml:"top_p"`
	ReasoningEffort string         `yaml:"reasoning_effort"`
	MaxOutputTokens int            `yaml:"max_output_tokens"`
	Extra           map[string]any `yaml:"extra"`
}

type fileContents struct {
	Models map[string]modelSpec `yaml:"models"`
	Roles  map[string]string    `yaml:"roles"`
}

// File is a catalog loaded from a YAML file. It is immutable after Load.
type File struct {
	path     string
	contents fileContents
}

func Load(path string) (*File, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("catalog path is required")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file: %w", err)
	}
	var contents fileContents
	if err := yaml.Unmarshal(data, &contents); err != nil {
		return nil, fmt.Errorf("failed to decode catalog file %q: %w", path, err)
	}
	if len(contents.Models) == 0 {
		return nil, fmt.Errorf("catalog file %q defines no models", path)
	}
	for role, name := range contents.Roles {
		if _, ok := contents.Models[name]; !ok {
			return nil, fmt.Errorf("catalog role %q points at unknown model %q", role, name)
		}
	}
	return &File{path: path, contents: contents}, nil
}

func (f *File) ModelOptions(name string, role Role) (types.GenerateOptions, error) {
	if f == nil {
		return types.GenerateOptions{}, fmt.Errorf("catalog is not loaded")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		name = f.contents.Roles[string(role)]
	}
	if name == "" {
		return types.GenerateOptions{}, fmt.Errorf("no model configured for role %q", role)
	}
	spec, ok := f.contents.Models[name]
	if !ok {
		return types.GenerateOptions{}, fmt.Errorf("model %q not found in catalog %s", name, f.path)
	}

	opts := types.GenerateOptions{
		Model:           name,
		Provider:        spec.Provider,
		Temperature:     spec.Temperature,
		TopP:            spec.TopP,
		ReasoningEffort: spec.ReasoningEffort,
		MaxOutputTokens: spec.MaxOutputTokens,
	}
	if len(spec.Extra) > 0 {
		opts.Extra = make(map[string]any, len(spec.Extra))
		for k, v := range spec.Extra {
			opts.Extra[k] = v
		}
	}
	return opts, nil
}

var _ Store = (*File)(nil)
