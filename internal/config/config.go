// Package config resolves generation settings from flags, BENCHMAKER_*
// environment variables, an optional YAML file and defaults.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/peter-guba/benchmaker/internal/generator"
	"github.com/peter-guba/benchmaker/internal/scenario"
)

// EnvPrefix prefixes every environment variable read into the config.
const EnvPrefix = "BENCHMAKER"

// Keys.
const (
	KeyEnvironment     = "environment"
	KeyAgentsDir       = "agents_dir"
	KeyResourcesDir    = "resources_dir"
	KeyOutDir          = "out_dir"
	KeyUnitMin         = "unit_count.min"
	KeyUnitMax         = "unit_count.max"
	KeyUnitStep        = "unit_count.step"
	KeyForceRatios     = "force_ratios"
	KeyBattleshipRatio = "bs_ratios"
	KeyLayouts         = "layouts"
	KeySearchMargin    = "search_margin"
	KeyMaxAttempts     = "max_attempts"
	KeyMaxRounds       = "max_rounds"
	KeyRepeats         = "repeats"
	KeySeed            = "seed"
	KeyWorkers         = "workers"
	KeyCatalog         = "catalog"
	KeyExclude         = "exclude"
	KeyBattleshipUnit  = "units.battleship"
	KeyDestroyerUnit   = "units.destroyer"
)

var ErrInvalidConfig = errors.New("invalid configuration")

type UnitCount struct {
	Min  int `mapstructure:"min"`
	Max  int `mapstructure:"max"` // exclusive
	Step int `mapstructure:"step"`
}

type Units struct {
	Battleship string `mapstructure:"battleship"`
	Destroyer  string `mapstructure:"destroyer"`
}

// Config holds everything one generation run needs.
type Config struct {
	Environment      string    `mapstructure:"environment"`
	AgentsDir        string    `mapstructure:"agents_dir"`
	ResourcesDir     string    `mapstructure:"resources_dir"`
	OutDir           string    `mapstructure:"out_dir"`
	UnitCount        UnitCount `mapstructure:"unit_count"`
	ForceRatios      []float64 `mapstructure:"force_ratios"`
	BattleshipRatios []float64 `mapstructure:"bs_ratios"`
	Layouts          int       `mapstructure:"layouts"`
	SearchMargin     int       `mapstructure:"search_margin"`
	MaxAttempts      int       `mapstructure:"max_attempts"`
	MaxRounds        int       `mapstructure:"max_rounds"`
	Repeats          int       `mapstructure:"repeats"`
	Seed             int64     `mapstructure:"seed"`
	Workers          int       `mapstructure:"workers"`
	Catalog          string    `mapstructure:"catalog"`
	Exclude          string    `mapstructure:"exclude"`
	Units            Units     `mapstructure:"units"`
}

// New returns a viper instance reading BENCHMAKER_* variables, with every
// default registered.
func New() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	SetDefaults(v)
	return v
}

func SetDefaults(v *viper.Viper) {
	settings := scenario.DefaultSettings()
	units := scenario.DefaultUnitTemplates()

	v.SetDefault(KeyEnvironment, "DefaultEnv.xml")
	v.SetDefault(KeyAgentsDir, "ai")
	v.SetDefault(KeyResourcesDir, "../CMS.Benchmark/Resources")
	v.SetDefault(KeyOutDir, "out/Resources")
	v.SetDefault(KeyUnitMin, 48)
	v.SetDefault(KeyUnitMax, 49)
	v.SetDefault(KeyUnitStep, 16)
	v.SetDefault(KeyForceRatios, []float64{1.0})
	v.SetDefault(KeyBattleshipRatio, []float64{0.25, 0.75})
	v.SetDefault(KeyLayouts, 5)
	v.SetDefault(KeySearchMargin, generator.DefaultSearchMargin)
	v.SetDefault(KeyMaxAttempts, generator.DefaultMaxAttempts)
	v.SetDefault(KeyMaxRounds, settings.MaxRounds)
	v.SetDefault(KeyRepeats, settings.Repeats)
	v.SetDefault(KeySeed, 0)
	v.SetDefault(KeyWorkers, 1)
	v.SetDefault(KeyCatalog, "")
	v.SetDefault(KeyExclude, "")
	v.SetDefault(KeyBattleshipUnit, units.Battleship)
	v.SetDefault(KeyDestroyerUnit, units.Destroyer)
}

// ReadFile merges a YAML config file into v. With an empty path it looks for
// benchmaker.yaml in the working directory and tolerates its absence.
func ReadFile(v *viper.Viper, path string) error {
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("read config %s: %w", path, err)
		}
		return nil
	}

	v.SetConfigName("benchmaker")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}
	return nil
}

// Load decodes and validates the configuration held by v.
func Load(v *viper.Viper) (Config, error) {
	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Validate reports every out-of-range setting.
func (c Config) Validate() error {
	var errs []error
	check := func(ok bool, format string, args ...any) {
		if !ok {
			errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalidConfig}, args...)...))
		}
	}

	check(c.Environment != "", "environment is required")
	check(c.AgentsDir != "", "agents_dir is required")
	check(c.OutDir != "", "out_dir is required")
	check(c.UnitCount.Min >= 0, "unit_count.min %d is negative", c.UnitCount.Min)
	check(c.UnitCount.Max > c.UnitCount.Min, "unit_count.max %d must exceed min %d", c.UnitCount.Max, c.UnitCount.Min)
	check(c.UnitCount.Step > 0, "unit_count.step %d must be positive", c.UnitCount.Step)
	check(len(c.ForceRatios) > 0, "force_ratios is empty")
	for _, r := range c.ForceRatios {
		check(r >= 0, "force ratio %g is negative", r)
	}
	check(len(c.BattleshipRatios) > 0, "bs_ratios is empty")
	for _, r := range c.BattleshipRatios {
		check(r >= 0 && r <= 1, "battleship ratio %g outside [0, 1]", r)
	}
	check(c.Layouts > 0, "layouts %d must be positive", c.Layouts)
	check(c.SearchMargin >= 0, "search_margin %d is negative", c.SearchMargin)
	check(c.MaxAttempts > 0, "max_attempts %d must be positive", c.MaxAttempts)
	check(c.MaxRounds > 0, "max_rounds %d must be positive", c.MaxRounds)
	check(c.Repeats > 0, "repeats %d must be positive", c.Repeats)
	check(c.Workers > 0, "workers %d must be positive", c.Workers)
	check(c.Units.Battleship != "" && c.Units.Destroyer != "", "unit templates are required")
	check(c.Units.Battleship != c.Units.Destroyer, "unit templates must differ, both are %q", c.Units.Battleship)
	return errors.Join(errs...)
}

// Settings returns the benchmark settings shared by the run.
func (c Config) Settings() scenario.Settings {
	return scenario.Settings{MaxRounds: c.MaxRounds, Repeats: c.Repeats}
}

// Templates returns the unit templates written into battles.
func (c Config) Templates() scenario.UnitTemplates {
	return scenario.UnitTemplates{Battleship: c.Units.Battleship, Destroyer: c.Units.Destroyer}
}

// GeneratorOptions returns the placement options for the run.
func (c Config) GeneratorOptions() *generator.Options {
	return &generator.Options{
		SearchMargin: c.SearchMargin,
		MaxAttempts:  c.MaxAttempts,
		Seed:         c.Seed,
	}
}
