package problem

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// bankFile is the on-disk layout of an import file.
type bankFile struct {
	Problems []Problem `json:"problems" yaml:"problems"`
}

// LoadFile reads problems from a YAML or JSON file. The format is chosen by
// extension; anything other than .json is parsed as YAML. Problems without
// a correct_rate field get -1 (unknown).
func LoadFile(path string) ([]Problem, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return Parse(data, strings.EqualFold(filepath.Ext(path), ".json"))
}

// Parse decodes an import document.
func Parse(data []byte, isJSON bool) ([]Problem, error) {
	var raw struct {
		Problems []map[string]any `json:"problems" yaml:"problems"`
	}
	var bank bankFile
	if isJSON {
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("parse json: %w", err)
		}
		if err := json.Unmarshal(data, &bank); err != nil {
			return nil, fmt.Errorf("parse json: %w", err)
		}
	} else {
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("parse yaml: %w", err)
		}
		if err := yaml.Unmarshal(data, &bank); err != nil {
			return nil, fmt.Errorf("parse yaml: %w", err)
		}
	}

	seen := make(map[string]bool, len(bank.Problems))
	for i := range bank.Problems {
		p := &bank.Problems[i]
		if _, ok := raw.Problems[i]["correct_rate"]; !ok {
			p.CorrectRate = -1
		}
		if err := p.Validate(); err != nil {
			return nil, fmt.Errorf("problem %d: %w", i+1, err)
		}
		if seen[p.ID] {
			return nil, fmt.Errorf("duplicate problem id %q", p.ID)
		}
		seen[p.ID] = true
	}
	return bank.Problems, nil
}
