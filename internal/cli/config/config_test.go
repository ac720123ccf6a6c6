package config

import (
	"os"
	"testing"
)

func TestLoad(t *testing.T) {
	// Test loading with no config file (should use defaults)
	tmpDir := t.TempDir()
	oldWd, _ := os.Getwd()
	os.Chdir(tmpDir)
	defer os.Chdir(oldWd)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("expected no error loading defaults, got %v", err)
	}

	if cfg == nil {
		t.Fatal("expected config to be non-nil")
	}

	// Check defaults
	if cfg.Network.BalanceTolerance != 1e-6 {
		t.Errorf("expected default balance tolerance 1e-6, got %g", cfg.Network.BalanceTolerance)
	}

	if cfg.Costs.Weighting != "energy" {
		t.Errorf("expected default weighting 'energy', got %s", cfg.Costs.Weighting)
	}

	if cfg.Costs.TemperatureK != 1073.0 {
		t.Errorf("expected default temperature 1073, got %g", cfg.Costs.TemperatureK)
	}

	if cfg.Search.MaxPathLength != 10 {
		t.Errorf("expected default max path length 10, got %d", cfg.Search.MaxPathLength)
	}

	if cfg.Search.K != 5 {
		t.Errorf("expected default k 5, got %d", cfg.Search.K)
	}
}

func TestLoadWithConfigFile(t *testing.T) {
	// Create temporary directory with config file
	tmpDir := t.TempDir()
	oldWd, _ := os.Getwd()
	os.Chdir(tmpDir)
	defer os.Chdir(oldWd)

	// Write config file
	configContent := `
network:
  balance_tolerance: 1e-8
costs:
  weighting: softplus
  temperature_k: 873
search:
  max_path_length: 4
  cost_tolerance: 0.05
  k: 12
cycle:
  instability_penalty: 0.5
`
	os.WriteFile("chemloop.yml", []byte(configContent), 0644)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("expected no error loading config, got %v", err)
	}

	if cfg.Network.BalanceTolerance != 1e-8 {
		t.Errorf("expected balance tolerance 1e-8, got %g", cfg.Network.BalanceTolerance)
	}

	if cfg.Costs.Weighting != "softplus" {
		t.Errorf("expected weighting 'softplus', got %s", cfg.Costs.Weighting)
	}

	if cfg.Costs.TemperatureK != 873 {
		t.Errorf("expected temperature 873, got %g", cfg.Costs.TemperatureK)
	}

	if cfg.Search.MaxPathLength != 4 {
		t.Errorf("expected max path length 4, got %d", cfg.Search.MaxPathLength)
	}

	if cfg.Search.CostTolerance != 0.05 {
		t.Errorf("expected cost tolerance 0.05, got %g", cfg.Search.CostTolerance)
	}

	if cfg.Search.K != 12 {
		t.Errorf("expected k 12, got %d", cfg.Search.K)
	}

	if cfg.Cycle.InstabilityPenalty != 0.5 {
		t.Errorf("expected instability penalty 0.5, got %g", cfg.Cycle.InstabilityPenalty)
	}
}

func TestLoadInvalidWeighting(t *testing.T) {
	tmpDir := t.TempDir()
	oldWd, _ := os.Getwd()
	os.Chdir(tmpDir)
	defer os.Chdir(oldWd)

	os.WriteFile("chemloop.yml", []byte("costs:\n  weighting: gibbs\n"), 0644)

	if _, err := Load(); err == nil {
		t.Error("expected error for unknown weighting, got nil")
	}
}

func TestLoadInvalidTemperature(t *testing.T) {
	tmpDir := t.TempDir()
	oldWd, _ := os.Getwd()
	os.Chdir(tmpDir)
	defer os.Chdir(oldWd)

	os.WriteFile("chemloop.yml", []byte("costs:\n  temperature_k: -10\n"), 0644)

	if _, err := Load(); err == nil {
		t.Error("expected error for negative temperature, got nil")
	}
}

func TestLoadInvalidSearch(t *testing.T) {
	tmpDir := t.TempDir()
	oldWd, _ := os.Getwd()
	os.Chdir(tmpDir)
	defer os.Chdir(oldWd)

	os.WriteFile("chemloop.yml", []byte("search:\n  k: 0\n"), 0644)

	if _, err := Load(); err == nil {
		t.Error("expected error for zero k, got nil")
	}
}
