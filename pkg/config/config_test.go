package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	// The working directory of the test run has no config.yaml, so only
	// defaults and environment variables apply.
	cfg, err := Load("test-version")
	require.NoError(t, err)

	assert.Equal(t, "test-version", cfg.Version)
	assert.Equal(t, "local", cfg.Env)
	assert.Empty(t, cfg.ScratchDir)
	assert.Equal(t, 3, cfg.Drift.RenameLengthSlack)
	assert.InDelta(t, 0.7, cfg.Drift.RenameOverlapThreshold, 0.0001)
	assert.InDelta(t, 50000, cfg.Analyzer.CostPerConflict, 0.0001)
	assert.InDelta(t, 10000, cfg.Analyzer.CostPerDuplication, 0.0001)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("DRIFT_RENAME_LENGTH_SLACK", "5")
	t.Setenv("DRIFT_RENAME_OVERLAP_THRESHOLD", "0.9")
	t.Setenv("ANALYZER_COST_PER_CONFLICT", "25000")

	cfg, err := Load("v1")
	require.NoError(t, err)

	assert.Equal(t, "production", cfg.Env)
	assert.Equal(t, 5, cfg.Drift.RenameLengthSlack)
	assert.InDelta(t, 0.9, cfg.Drift.RenameOverlapThreshold, 0.0001)
	assert.InDelta(t, 25000, cfg.Analyzer.CostPerConflict, 0.0001)
}

func TestValidateRejectsNegativeSlack(t *testing.T) {
	t.Setenv("DRIFT_RENAME_LENGTH_SLACK", "-1")

	_, err := Load("v1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rename_length_slack")
}

func TestValidateRejectsThresholdOutOfRange(t *testing.T) {
	t.Setenv("DRIFT_RENAME_OVERLAP_THRESHOLD", "1.5")

	_, err := Load("v1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rename_overlap_threshold")
}

func TestValidateRejectsMissingScratchDir(t *testing.T) {
	t.Setenv("SCRATCH_DIR", "/definitely/not/a/real/path")

	_, err := Load("v1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "scratch_dir")
}

func TestValidateAcceptsExistingScratchDir(t *testing.T) {
	t.Setenv("SCRATCH_DIR", t.TempDir())

	cfg, err := Load("v1")
	require.NoError(t, err)
	assert.NotEmpty(t, cfg.ScratchDir)
}
