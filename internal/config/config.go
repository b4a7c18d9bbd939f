// Package config holds ambient, non-domain settings that varp's callers need
// but that are not part of the Manifest/Plan data model: logging behavior,
// source-scan conventions, co-change filtering, and coupling-threshold
// overrides. The core packages accept a *Config value; they never load one
// from disk themselves.
package config

import (
	"fmt"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

// Config is varp's top-level ambient configuration document.
type Config struct {
	Logging  LoggingConfig  `yaml:"logging"`
	Scan     ScanConfig     `yaml:"scan"`
	CoChange CoChangeConfig `yaml:"co_change"`
	Coupling CouplingConfig `yaml:"coupling"`
}

// LoggingConfig mirrors the corpus's own categorized-logging shape.
type LoggingConfig struct {
	DebugMode  bool            `yaml:"debug_mode"`
	Categories map[string]bool `yaml:"categories"`
	Level      string          `yaml:"level"`
	JSONFormat bool            `yaml:"json_format"`
}

// ScanConfig configures the import scanner and doc-discovery collapse rule.
type ScanConfig struct {
	// SourceExtensions are the file extensions the import scanner walks.
	SourceExtensions []string `yaml:"source_extensions"`
	// IndexSuffixes are tried, in order, when a relative import does not
	// name an existing file as written.
	IndexSuffixes []string `yaml:"index_suffixes"`
	// ConventionalSourceDirs are directory basenames treated as
	// "transparent" by the doc-discovery collapse rule (e.g. "src").
	ConventionalSourceDirs []string `yaml:"conventional_source_dirs"`
}

// CoChangeConfig configures commit filtering and edge weighting for the
// co-change graph.
type CoChangeConfig struct {
	MaxFilesPerCommit int      `yaml:"max_files_per_commit"`
	SkipMessagePatterns []string `yaml:"skip_message_patterns"`
	ExcludeGlobs      []string `yaml:"exclude_globs"`
	// TypeWeights maps a conventional-commit type prefix (e.g. "refactor")
	// to a multiplier applied to that commit's edge weights.
	TypeWeights map[string]float64 `yaml:"type_weights"`
}

// CouplingConfig allows overriding the median-of-positive-weights threshold
// calibration the coupling matrix uses by default.
type CouplingConfig struct {
	StructuralThreshold *int     `yaml:"structural_threshold,omitempty"`
	BehavioralThreshold *float64 `yaml:"behavioral_threshold,omitempty"`
}

// DefaultConfig returns varp's default configuration.
func DefaultConfig() *Config {
	return &Config{
		Logging: LoggingConfig{
			DebugMode:  false,
			Categories: map[string]bool{},
			Level:      "info",
			JSONFormat: false,
		},
		Scan: ScanConfig{
			SourceExtensions:       []string{".ts", ".tsx", ".js", ".jsx", ".mjs", ".cjs"},
			IndexSuffixes:          []string{"/index.ts", "/index.tsx", "/index.js", "/index.jsx", ".ts", ".tsx", ".js", ".jsx"},
			ConventionalSourceDirs: []string{"src"},
		},
		CoChange: CoChangeConfig{
			MaxFilesPerCommit:   50,
			SkipMessagePatterns: []string{"(?i)merge", "(?i)revert"},
			ExcludeGlobs:        []string{"*.lock", "*-lock.json", "*.generated.*", "dist/*", "vendor/*"},
			TypeWeights:         map[string]float64{},
		},
		Coupling: CouplingConfig{},
	}
}

// LoadConfig reads and unmarshals a YAML config file through fs. It is used
// only by cmd/varp; the core never calls it.
func LoadConfig(fs afero.Fs, path string) (*Config, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}
