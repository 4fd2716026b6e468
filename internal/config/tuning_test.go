package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadTuningEmptyPath(t *testing.T) {
	tun, err := LoadTuning("")
	if err != nil {
		t.Fatalf("empty path: %v", err)
	}
	if tun.Committee.MaxQuestions != 0 {
		t.Fatalf("empty path should yield zero tuning, got %+v", tun)
	}
}

func TestLoadTuningPartialFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tuning.yaml")
	data := `committee:
  max_questions: 8
  pitch_seconds: 240
  weights:
    financial_rigor: 0.4
  thresholds:
    approved: 80
`
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatal(err)
	}

	tun, err := LoadTuning(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	c := tun.Committee
	if c.MaxQuestions != 8 || c.PitchSeconds != 240 {
		t.Fatalf("overrides not applied: %+v", c)
	}
	if c.ResponseSeconds != 0 {
		t.Fatalf("unnamed field should stay zero, got %d", c.ResponseSeconds)
	}
	if c.Weights["financial_rigor"] != 0.4 {
		t.Fatalf("weights = %v", c.Weights)
	}
	if c.Thresholds.Approved != 80 || c.Thresholds.Conditional != 0 {
		t.Fatalf("thresholds = %+v", c.Thresholds)
	}
}

func TestLoadTuningMissingFile(t *testing.T) {
	if _, err := LoadTuning(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("missing file should error")
	}
}

func TestLoadTuningBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("committee: ["), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadTuning(path); err == nil {
		t.Fatal("malformed yaml should error")
	}
}
