package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultEngine(t *testing.T) {
	e := DefaultEngine()

	assert.Equal(t, 0.7, e.Scoring.ProbabilityWeight)
	assert.Equal(t, 0.3, e.Scoring.CostWeight)
	assert.Equal(t, 150.0, e.Production.TonsPerHour)
	assert.Equal(t, 2, e.DeliveryLeadHours)
	require.NoError(t, e.validate())
}

func TestLoadEngineEmptyPathReturnsDefaults(t *testing.T) {
	e, err := LoadEngine("")

	require.NoError(t, err)
	assert.Equal(t, DefaultEngine(), e)
}

func TestLoadEngineOverlaysFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "engine.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
scoring:
  rule_bonus: 0.1
quarry:
  cost: 400
`), 0o644))

	e, err := LoadEngine(path)

	require.NoError(t, err)
	assert.Equal(t, 0.1, e.Scoring.RuleBonus)
	assert.Equal(t, 400.0, e.Quarry.Cost)
	// Untouched keys keep their defaults.
	assert.Equal(t, 0.7, e.Scoring.ProbabilityWeight)
	assert.Equal(t, 0.85, e.Quarry.OnTimeProbability)
}

func TestLoadEngineRejectsBadValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "engine.yaml")
	require.NoError(t, os.WriteFile(path, []byte("production:\n  tons_per_hour: -5\n"), 0o644))

	_, err := LoadEngine(path)

	assert.ErrorContains(t, err, "tons_per_hour must be positive")
}

func TestLoadEngineMissingFile(t *testing.T) {
	_, err := LoadEngine(filepath.Join(t.TempDir(), "missing.yaml"))

	assert.ErrorContains(t, err, "read engine config")
}
