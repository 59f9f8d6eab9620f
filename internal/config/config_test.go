package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/peter-guba/benchmaker/internal/scenario"
)

func TestLoadDefaults(t *testing.T) {
	c, err := Load(New())
	require.NoError(t, err)

	assert.Equal(t, "DefaultEnv.xml", c.Environment)
	assert.Equal(t, "ai", c.AgentsDir)
	assert.Equal(t, "../CMS.Benchmark/Resources", c.ResourcesDir)
	assert.Equal(t, "out/Resources", c.OutDir)
	assert.Equal(t, UnitCount{Min: 48, Max: 49, Step: 16}, c.UnitCount)
	assert.Equal(t, []float64{1.0}, c.ForceRatios)
	assert.Equal(t, []float64{0.25, 0.75}, c.BattleshipRatios)
	assert.Equal(t, 5, c.Layouts)
	assert.Equal(t, 12, c.SearchMargin)
	assert.Equal(t, 10000, c.MaxAttempts)
	assert.Equal(t, scenario.DefaultSettings(), c.Settings())
	assert.Equal(t, scenario.DefaultUnitTemplates(), c.Templates())
	assert.Zero(t, c.Seed)
	assert.Equal(t, 1, c.Workers)
	assert.Empty(t, c.Catalog)
}

func TestLoadEnvironmentOverrides(t *testing.T) {
	t.Setenv("BENCHMAKER_LAYOUTS", "9")
	t.Setenv("BENCHMAKER_UNIT_COUNT_MAX", "80")
	t.Setenv("BENCHMAKER_BS_RATIOS", "0.5,1")
	t.Setenv("BENCHMAKER_UNITS_DESTROYER", "destroyer_1")

	c, err := Load(New())
	require.NoError(t, err)
	assert.Equal(t, 9, c.Layouts)
	assert.Equal(t, 80, c.UnitCount.Max)
	assert.Equal(t, []float64{0.5, 1}, c.BattleshipRatios)
	assert.Equal(t, "destroyer_1", c.Templates().Destroyer)
}

func TestReadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.yaml")
	yaml := `
environment: maps/Nebula.xml
unit_count:
  min: 16
  max: 64
  step: 16
force_ratios: [1.0, 0.5]
workers: 4
seed: 42
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o644))

	v := New()
	require.NoError(t, ReadFile(v, path))
	c, err := Load(v)
	require.NoError(t, err)

	assert.Equal(t, "maps/Nebula.xml", c.Environment)
	assert.Equal(t, UnitCount{Min: 16, Max: 64, Step: 16}, c.UnitCount)
	assert.Equal(t, []float64{1.0, 0.5}, c.ForceRatios)
	assert.Equal(t, 4, c.Workers)
	assert.Equal(t, int64(42), c.GeneratorOptions().Seed)
	assert.Equal(t, []float64{0.25, 0.75}, c.BattleshipRatios, "unset keys keep defaults")
}

func TestReadFileMissing(t *testing.T) {
	err := ReadFile(New(), filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)

	t.Chdir(t.TempDir())
	assert.NoError(t, ReadFile(New(), ""), "the implicit config file is optional")
}

func TestValidate(t *testing.T) {
	base, err := Load(New())
	require.NoError(t, err)

	tests := map[string]func(c *Config){
		"empty range":        func(c *Config) { c.UnitCount.Max = c.UnitCount.Min },
		"zero step":          func(c *Config) { c.UnitCount.Step = 0 },
		"force ratio below":  func(c *Config) { c.ForceRatios = []float64{-0.5} },
		"no bs ratios":       func(c *Config) { c.BattleshipRatios = nil },
		"bs ratio negative":  func(c *Config) { c.BattleshipRatios = []float64{-0.1} },
		"no layouts":         func(c *Config) { c.Layouts = 0 },
		"negative margin":    func(c *Config) { c.SearchMargin = -1 },
		"no attempts":        func(c *Config) { c.MaxAttempts = 0 },
		"no workers":         func(c *Config) { c.Workers = 0 },
		"same unit template": func(c *Config) { c.Units.Destroyer = c.Units.Battleship },
		"no environment":     func(c *Config) { c.Environment = "" },
	}
	for name, mutate := range tests {
		t.Run(name, func(t *testing.T) {
			c := base
			c.ForceRatios = append([]float64(nil), base.ForceRatios...)
			mutate(&c)
			assert.ErrorIs(t, c.Validate(), ErrInvalidConfig)
		})
	}
}

func TestLoadAcceptsStrongerSecondSide(t *testing.T) {
	v := New()
	v.Set(KeyForceRatios, []float64{1.0, 1.5, 0})
	c, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, []float64{1.0, 1.5, 0}, c.ForceRatios)
}

func TestValidateReportsEverySetting(t *testing.T) {
	c := Config{}
	err := c.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "environment is required")
	assert.Contains(t, err.Error(), "workers 0 must be positive")
}
