package scenario

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Default returns a Scenario with the optional fields filled to sane
// defaults; required fields (BaseLoadMW, Price, ...) are left zero-valued
// and must be supplied by the caller or the loaded file.
func Default() *Scenario {
	return &Scenario{
		TimeStepHours: 1.0,
		BESS: BESS{
			EfficiencyCharge:    1.0,
			EfficiencyDischarge: 1.0,
		},
	}
}

// Load reads a Scenario from a JSON file and validates it.
func Load(path string) (*Scenario, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open scenario file: %w", err)
	}
	defer file.Close()

	return LoadFromReader(file)
}

// LoadFromReader reads a Scenario from JSON and validates it.
func LoadFromReader(r io.Reader) (*Scenario, error) {
	s := Default()

	decoder := json.NewDecoder(r)
	if err := decoder.Decode(s); err != nil {
		return nil, fmt.Errorf("failed to decode scenario JSON: %w", err)
	}

	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return s, nil
}

// LoadYAML reads a Scenario from a YAML file and validates it.
func LoadYAML(path string) (*Scenario, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open scenario file: %w", err)
	}
	defer file.Close()

	return LoadYAMLFromReader(file)
}

// LoadYAMLFromReader reads a Scenario from YAML and validates it.
func LoadYAMLFromReader(r io.Reader) (*Scenario, error) {
	s := Default()

	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario YAML: %w", err)
	}
	if err := yaml.Unmarshal(raw, s); err != nil {
		return nil, fmt.Errorf("failed to decode scenario YAML: %w", err)
	}

	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return s, nil
}

// SaveToWriter writes the scenario as indented JSON.
func (s *Scenario) SaveToWriter(w io.Writer) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(s); err != nil {
		return fmt.Errorf("failed to encode scenario JSON: %w", err)
	}
	return nil
}

// String returns a JSON representation of the scenario, for logging.
func (s *Scenario) String() string {
	data, _ := json.MarshalIndent(s, "", "  ")
	return string(data)
}
