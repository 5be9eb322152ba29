package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, 30, cfg.Simulation.Days)
	assert.Equal(t, int64(2000), cfg.Simulation.PickingCapacity)
	assert.Equal(t, "normal", cfg.Simulation.Scenario)
	assert.Equal(t, uint64(42), cfg.Simulation.Seed)
	assert.Equal(t, 10, cfg.Demand.MinOrders)
	assert.Equal(t, 15, cfg.Demand.MaxOrders)
	assert.Equal(t, 90.0, cfg.Alerts.OTIFPct)
	assert.Equal(t, 95.0, cfg.Alerts.FillRatePct)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_FileAndEnvironment(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "run.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
simulation:
  days: 45
  scenario: seasonal_demand
demand:
  max_orders: 20
`), 0o600))

	t.Setenv("SUPPLYSIM_SIMULATION_SEED", "7")
	t.Setenv("SUPPLYSIM_LOG_LEVEL", "debug")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 45, cfg.Simulation.Days)
	assert.Equal(t, "seasonal_demand", cfg.Simulation.Scenario)
	assert.Equal(t, 20, cfg.Demand.MaxOrders)
	assert.Equal(t, 10, cfg.Demand.MinOrders)
	assert.Equal(t, uint64(7), cfg.Simulation.Seed)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestLoad_RejectsInvalidValues(t *testing.T) {
	t.Setenv("SUPPLYSIM_SIMULATION_SCENARIO", "apocalypse")

	path := filepath.Join(t.TempDir(), "run.yaml")
	require.NoError(t, os.WriteFile(path, []byte("simulation:\n  days: 10\n"), 0o600))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Scenario")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{name: "zero days", mutate: func(c *Config) { c.Simulation.Days = 0 }},
		{name: "zero picking capacity", mutate: func(c *Config) { c.Simulation.PickingCapacity = 0 }},
		{name: "inverted order range", mutate: func(c *Config) { c.Demand.MaxOrders = c.Demand.MinOrders - 1 }},
		{name: "threshold above 100", mutate: func(c *Config) { c.Alerts.OTIFPct = 101 }},
		{name: "unknown log level", mutate: func(c *Config) { c.Log.Level = "loud" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
