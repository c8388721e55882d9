// Package manifest reads the YAML batch descriptor that lists test files,
// their run modes and the shared environment.
package manifest

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/dkoosis/unit/unit"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

// ErrNoTests is returned when a manifest lists no test files.
var ErrNoTests = errors.New("manifest lists no tests")

// Manifest is a parsed batch descriptor.
//
//	env:
//	  base_url: http://localhost:8080
//	group_prefix: api
//	tests:
//	  - path: users.star
//	  - path: orders.star
//	    mode: only
type Manifest struct {
	Env         map[string]any `yaml:"env"`
	GroupPrefix string         `yaml:"group_prefix"`
	Tests       []Test         `yaml:"tests"`

	// Dir is the directory of the manifest file. Relative test paths are
	// resolved against it.
	Dir string `yaml:"-"`
}

// Test is one manifest entry. An empty Mode means run.
type Test struct {
	Path string `yaml:"path"`
	Mode string `yaml:"mode"`
}

// Load reads and validates the manifest at path.
func Load(fs afero.Fs, path string) (*Manifest, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, fmt.Errorf("reading manifest: %w", err)
	}
	m, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("manifest %s: %w", path, err)
	}
	m.Dir = filepath.Dir(path)
	return m, nil
}

// Parse decodes a manifest without resolving paths.
func Parse(data []byte) (*Manifest, error) {
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing YAML: %w", err)
	}
	if len(m.Tests) == 0 {
		return nil, ErrNoTests
	}
	for i, t := range m.Tests {
		if t.Path == "" {
			return nil, fmt.Errorf("tests[%d]: missing path", i)
		}
		if _, err := unit.ParseMode(t.Mode); err != nil {
			return nil, fmt.Errorf("tests[%d] (%s): %w", i, t.Path, err)
		}
	}
	return &m, nil
}

// Entries converts the listed tests to batch entries, in order.
func (m *Manifest) Entries() ([]unit.Entry, error) {
	entries := make([]unit.Entry, 0, len(m.Tests))
	for _, t := range m.Tests {
		mode, err := unit.ParseMode(t.Mode)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", t.Path, err)
		}
		entries = append(entries, unit.Entry{Path: m.resolve(t.Path), Mode: mode})
	}
	return entries, nil
}

// Environment returns a copy of the manifest environment, never nil.
func (m *Manifest) Environment() unit.Env {
	env := make(unit.Env, len(m.Env))
	for k, v := range m.Env {
		env[k] = v
	}
	return env
}

func (m *Manifest) resolve(path string) string {
	if m.Dir == "" || m.Dir == "." || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(m.Dir, path)
}
