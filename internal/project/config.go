// Package project persists the solver's configuration, run history and
// compressed result archives under the user's ~/.lazor directory.
package project

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/piwi3910/lazor/internal/engine"
	"gopkg.in/yaml.v3"
)

// Output formats understood by the CLI.
const (
	FormatSol   = "sol"
	FormatPDF   = "pdf"
	FormatCards = "cards"
	FormatDXF   = "dxf"
	FormatXLSX  = "xlsx"
)

// AppConfig holds user defaults for the solver and its outputs.
type AppConfig struct {
	Solver engine.Settings `json:"solver" yaml:"solver"`

	// Batch
	BatchTimeoutSeconds int    `json:"batch_timeout_seconds" yaml:"batch_timeout_seconds"` // Per-puzzle limit, 0 = none
	OutputDir           string `json:"output_dir" yaml:"output_dir"`                       // Where .sol and reports go, empty = next to the puzzle

	// Outputs
	Formats []string `json:"formats" yaml:"formats"`

	// Persistence
	HistoryDB  string `json:"history_db" yaml:"history_db"`   // SQLite run history, empty = disabled
	ArchiveDir string `json:"archive_dir" yaml:"archive_dir"` // zstd JSONL run archives, empty = disabled

	LogLevel string `json:"log_level" yaml:"log_level"` // zerolog level name
}

// DefaultAppConfig returns the configuration used when no file exists.
func DefaultAppConfig() AppConfig {
	dir := DefaultConfigDir()
	return AppConfig{
		Solver:              engine.DefaultSettings(),
		BatchTimeoutSeconds: 120,
		Formats:             []string{FormatSol},
		HistoryDB:           filepath.Join(dir, "history.db"),
		ArchiveDir:          filepath.Join(dir, "archive"),
		LogLevel:            "info",
	}
}

// BatchTimeout returns the per-puzzle limit as a duration. Zero means none.
func (c AppConfig) BatchTimeout() time.Duration {
	if c.BatchTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(c.BatchTimeoutSeconds) * time.Second
}

// HasFormat reports whether the named output format is enabled.
func (c AppConfig) HasFormat(name string) bool {
	for _, f := range c.Formats {
		if f == name {
			return true
		}
	}
	return false
}

// ApplyToSettings copies the configured solver defaults onto s. Zero limits
// in the config leave the current values alone.
func (c AppConfig) ApplyToSettings(s *engine.Settings) {
	if c.Solver.MaxIterations > 0 {
		s.MaxIterations = c.Solver.MaxIterations
	}
	if c.Solver.BoundsMargin > 0 {
		s.BoundsMargin = c.Solver.BoundsMargin
	}
	if c.Solver.Workers > 0 {
		s.Workers = c.Solver.Workers
	}
	s.ProgressEvery = c.Solver.ProgressEvery
	s.OrderSlots = c.Solver.OrderSlots
	s.StateCache = c.Solver.StateCache
}

// DefaultConfigDir returns the default directory for application data.
// On all platforms this is ~/.lazor/
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return filepath.Join(home, ".lazor")
}

// DefaultConfigPath returns the default path for the application config file.
func DefaultConfigPath() string {
	return filepath.Join(DefaultConfigDir(), "config.yaml")
}

// SaveAppConfig persists an AppConfig to the given path as YAML.
// It creates any missing parent directories automatically.
func SaveAppConfig(path string, config AppConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}

// LoadAppConfig reads an AppConfig from the given path. Keys missing from the
// file keep their defaults. If the file does not exist, it returns
// DefaultAppConfig with no error.
func LoadAppConfig(path string) (AppConfig, error) {
	config := DefaultAppConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return config, nil
		}
		return AppConfig{}, fmt.Errorf("failed to read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &config); err != nil {
		return AppConfig{}, fmt.Errorf("%s: %w", path, err)
	}
	if config.Formats == nil {
		config.Formats = []string{}
	}
	return config, nil
}
