package project

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/piwi3910/lazor/internal/engine"
)

func TestLoadAppConfigMissingFile(t *testing.T) {
	cfg, err := LoadAppConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("LoadAppConfig failed: %v", err)
	}
	if cfg.BatchTimeoutSeconds != 120 || !cfg.HasFormat(FormatSol) {
		t.Errorf("expected defaults, got %+v", cfg)
	}
	if cfg.Solver != engine.DefaultSettings() {
		t.Errorf("expected default solver settings, got %+v", cfg.Solver)
	}
}

func TestSaveAndLoadAppConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := DefaultAppConfig()
	cfg.Solver.Workers = 4
	cfg.Solver.StateCache = true
	cfg.Formats = []string{FormatXLSX, FormatDXF}
	cfg.OutputDir = "/tmp/out"

	if err := SaveAppConfig(path, cfg); err != nil {
		t.Fatalf("SaveAppConfig failed: %v", err)
	}
	loaded, err := LoadAppConfig(path)
	if err != nil {
		t.Fatalf("LoadAppConfig failed: %v", err)
	}
	if loaded.Solver.Workers != 4 || !loaded.Solver.StateCache {
		t.Errorf("solver settings not preserved: %+v", loaded.Solver)
	}
	if !loaded.HasFormat(FormatDXF) || loaded.HasFormat(FormatSol) {
		t.Errorf("unexpected formats %v", loaded.Formats)
	}
	if loaded.OutputDir != "/tmp/out" {
		t.Errorf("expected output dir /tmp/out, got %q", loaded.OutputDir)
	}
}

func TestLoadAppConfigPartialKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := []byte("batch_timeout_seconds: 5\nsolver:\n  workers: 3\n")
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadAppConfig(path)
	if err != nil {
		t.Fatalf("LoadAppConfig failed: %v", err)
	}
	if cfg.BatchTimeout() != 5*time.Second {
		t.Errorf("expected 5s timeout, got %v", cfg.BatchTimeout())
	}
	if cfg.Solver.Workers != 3 {
		t.Errorf("expected 3 workers, got %d", cfg.Solver.Workers)
	}
	if cfg.Solver.MaxIterations != 5000 || cfg.LogLevel != "info" {
		t.Errorf("unset keys lost their defaults: %+v", cfg)
	}
}

func TestLoadAppConfigInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("solver: [unclosed"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadAppConfig(path); err == nil {
		t.Fatal("expected error for invalid YAML")
	}
}

func TestApplyToSettings(t *testing.T) {
	cfg := DefaultAppConfig()
	cfg.Solver.MaxIterations = 0
	cfg.Solver.Workers = 8
	cfg.Solver.OrderSlots = false

	s := engine.Settings{MaxIterations: 42}
	cfg.ApplyToSettings(&s)

	if s.MaxIterations != 42 {
		t.Errorf("zero config limit should keep current value, got %d", s.MaxIterations)
	}
	if s.Workers != 8 || s.OrderSlots || s.BoundsMargin != 10 {
		t.Errorf("unexpected settings %+v", s)
	}
}

func TestBatchTimeoutDisabled(t *testing.T) {
	cfg := AppConfig{BatchTimeoutSeconds: 0}
	if cfg.BatchTimeout() != 0 {
		t.Errorf("expected no timeout, got %v", cfg.BatchTimeout())
	}
}
