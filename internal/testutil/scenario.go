// Package testutil provides shared helpers for conformance tests.
package testutil

import (
	"encoding/json"
	"os"
	"path/filepath"
)

// Scenario is a conformance case loaded from a scenario.json file. The
// program itself lives next to it as a serialized program unit.
type Scenario struct {
	Program string         `json:"program,omitempty"` // defaults to program.json
	Expect  ExpectedResult `json:"expect"`
}

// ExpectedResult describes the expected outcome of running a scenario.
type ExpectedResult struct {
	Output    []string `json:"output,omitempty"` // printed lines, in order
	Value     string   `json:"value,omitempty"`  // display form of the final value
	ErrorCode string   `json:"errorCode,omitempty"`
}

// LoadScenario loads a scenario from a directory containing scenario.json.
func LoadScenario(dir string) (*Scenario, error) {
	data, err := os.ReadFile(filepath.Join(dir, "scenario.json"))
	if err != nil {
		return nil, err
	}
	var s Scenario
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, err
	}
	if s.Program == "" {
		s.Program = "program.json"
	}
	return &s, nil
}

// ListScenarios returns all scenario directories under the given root.
func ListScenarios(root string) ([]string, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, err
	}
	var dirs []string
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		if _, err := os.Stat(filepath.Join(root, e.Name(), "scenario.json")); err == nil {
			dirs = append(dirs, filepath.Join(root, e.Name()))
		}
	}
	return dirs, nil
}

// ReadProgram reads the serialized program referenced by a scenario.
func ReadProgram(dir string, s *Scenario) ([]byte, error) {
	return os.ReadFile(filepath.Join(dir, s.Program))
}
