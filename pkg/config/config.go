package config

import (
	"fmt"
	"os"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config holds all configuration for the ontology extractor.
// Configuration can come from YAML file (config.yaml) or environment variables.
// Environment variables always override YAML values.
type Config struct {
	Env     string `yaml:"env" env:"ENVIRONMENT" env-default:"local"`
	Version string `yaml:"-"` // Set at load time, not from config

	// ScratchDir is the root directory for archive extraction scratch areas.
	// Empty means the OS default temp directory.
	ScratchDir string `yaml:"scratch_dir" env:"SCRATCH_DIR" env-default:""`

	Drift    DriftConfig    `yaml:"drift"`
	Analyzer AnalyzerConfig `yaml:"analyzer"`
}

// DriftConfig holds the rename-detection tunables used by drift detection.
// The defaults match the heuristic the binding format was designed against.
// They are tunables, not invariants: the character-overlap rule can both
// under- and over-match on real column-naming schemes.
type DriftConfig struct {
	// RenameLengthSlack is the maximum length difference between a missing
	// and a new column name for the overlap rule to apply.
	RenameLengthSlack int `yaml:"rename_length_slack" env:"DRIFT_RENAME_LENGTH_SLACK" env-default:"3"`
	// RenameOverlapThreshold is the minimum fraction of the shorter name's
	// characters that must appear in the longer name.
	RenameOverlapThreshold float64 `yaml:"rename_overlap_threshold" env:"DRIFT_RENAME_OVERLAP_THRESHOLD" env-default:"0.7"`
}

// AnalyzerConfig holds the unit costs used for semantic debt scoring.
type AnalyzerConfig struct {
	CostPerConflict    float64 `yaml:"cost_per_conflict" env:"ANALYZER_COST_PER_CONFLICT" env-default:"50000"`
	CostPerDuplication float64 `yaml:"cost_per_duplication" env:"ANALYZER_COST_PER_DUPLICATION" env-default:"10000"`
}

// Load reads configuration from config.yaml with environment variable
// overrides. The config file is optional; when absent only environment
// variables and defaults apply. The version parameter is injected at build
// time and set on the returned Config.
func Load(version string) (*Config, error) {
	cfg := &Config{
		Version: version,
	}

	if _, err := os.Stat("config.yaml"); err == nil {
		if err := cleanenv.ReadConfig("config.yaml", cfg); err != nil {
			return nil, fmt.Errorf("failed to read config.yaml: %w", err)
		}
	} else {
		if err := cleanenv.ReadEnv(cfg); err != nil {
			return nil, fmt.Errorf("failed to read environment: %w", err)
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.Drift.RenameLengthSlack < 0 {
		return fmt.Errorf("drift.rename_length_slack must be >= 0, got %d", c.Drift.RenameLengthSlack)
	}
	if c.Drift.RenameOverlapThreshold < 0 || c.Drift.RenameOverlapThreshold > 1 {
		return fmt.Errorf("drift.rename_overlap_threshold must be in [0,1], got %g", c.Drift.RenameOverlapThreshold)
	}
	if c.ScratchDir != "" {
		if _, err := os.Stat(c.ScratchDir); err != nil {
			return fmt.Errorf("scratch_dir does not exist: %w", err)
		}
	}
	return nil
}
