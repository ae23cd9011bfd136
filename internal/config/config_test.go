package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dispatch-portal/internal/distribution"
	"dispatch-portal/internal/models"
)

func TestLoadConfig_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)

	assert.Equal(t, distribution.DefaultWeights(), cfg.Engine.Weights)
	assert.Equal(t, distribution.DefaultSectorBonus, cfg.Engine.SectorAffinityBonus)
	assert.Equal(t, "06:00", cfg.Distribution.DailyRunTime)
	assert.True(t, cfg.RateLimit.Enabled)
}

func TestLoadConfig_OverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := []byte(`
engine:
  weights:
    rooms: 5
    area: 1
    distance: 3
    difficulty: 8
  sector_affinity_bonus: 10
distribution:
  daily_run_enabled: true
  daily_run_time: "03:30"
`)
	require.NoError(t, os.WriteFile(path, data, 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 5.0, cfg.Engine.Weights.Rooms)
	assert.Equal(t, 10.0, cfg.Engine.SectorAffinityBonus)
	assert.True(t, cfg.Distribution.DailyRunEnabled)
	assert.Equal(t, "03:30", cfg.Distribution.DailyRunTime)
	// Untouched sections keep their defaults
	assert.Equal(t, 365, cfg.Cleanup.RetentionDays)
}

func TestLoadConfig_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("engine: ["), 0o644))

	_, err := LoadConfig(path)
	assert.Error(t, err)
}

func TestEngineConfig_NewEngineFallsBackOnZeroValues(t *testing.T) {
	var c EngineConfig
	e := c.NewEngine()

	// Engine built from an empty section behaves like the default engine
	u := models.Unit{Rooms: 2, AreaM2: 50, DistanceKm: 5, Difficulty: 3}
	assert.Equal(t, 100.0, e.UnitScore(u))
}
