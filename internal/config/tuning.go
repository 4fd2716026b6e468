package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Tuning is the game-balance knob file. Everything here has a sane default
// so a missing file or a partial file is never fatal; the YAML only
// overrides what it names.
type Tuning struct {
	Committee CommitteeTuning `yaml:"committee"`
}

type CommitteeTuning struct {
	MaxQuestions        int                `yaml:"max_questions"`
	PitchSeconds        int                `yaml:"pitch_seconds"`
	ResponseSeconds     int                `yaml:"response_seconds"`
	DeliberationSeconds int                `yaml:"deliberation_seconds"`
	Weights             map[string]float64 `yaml:"weights"`
	Thresholds          struct {
		Approved    float64 `yaml:"approved"`
		Conditional float64 `yaml:"conditional"`
		Tabled      float64 `yaml:"tabled"`
	} `yaml:"thresholds"`
}

// LoadTuning reads a YAML tuning file. An empty path returns the zero
// Tuning, which consumers treat as all-defaults.
func LoadTuning(path string) (Tuning, error) {
	var t Tuning
	if path == "" {
		return t, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return t, fmt.Errorf("read tuning file: %w", err)
	}
	if err := yaml.Unmarshal(raw, &t); err != nil {
		return t, fmt.Errorf("parse tuning file %s: %w", path, err)
	}
	return t, nil
}
