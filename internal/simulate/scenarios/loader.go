// Package scenarios embeds the scripted conversation suite.
package scenarios

import (
	"embed"
	"fmt"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"prescreen/internal/simulate"
)

//go:embed *.yaml
var scenarioFS embed.FS

// Load reads a scenario by name from the embedded YAML files.
func Load(name string) (*simulate.Scenario, error) {
	data, err := scenarioFS.ReadFile(name + ".yaml")
	if err != nil {
		return nil, fmt.Errorf("scenario %q not found (available: %s): %w",
			name, strings.Join(List(), ", "), err)
	}
	var s simulate.Scenario
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse scenario %q: %w", name, err)
	}
	if s.Name == "" {
		s.Name = name
	}
	if err := s.Input.Validate(); err != nil {
		return nil, fmt.Errorf("scenario %q input: %w", name, err)
	}
	return &s, nil
}

// List returns the names of all embedded scenarios, sorted.
func List() []string {
	entries, _ := scenarioFS.ReadDir(".")
	var names []string
	for _, e := range entries {
		if strings.HasSuffix(e.Name(), ".yaml") {
			names = append(names, strings.TrimSuffix(e.Name(), ".yaml"))
		}
	}
	sort.Strings(names)
	return names
}

// LoadAll loads every embedded scenario.
func LoadAll() ([]*simulate.Scenario, error) {
	var out []*simulate.Scenario
	for _, name := range List() {
		s, err := Load(name)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}
