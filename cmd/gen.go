package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/peter-guba/benchmaker/internal/board"
	"github.com/peter-guba/benchmaker/internal/catalog"
	"github.com/peter-guba/benchmaker/internal/config"
	"github.com/peter-guba/benchmaker/internal/resources"
	"github.com/peter-guba/benchmaker/internal/suite"
	"github.com/peter-guba/benchmaker/internal/sweep"
)

func init() {
	genCmd := &cobra.Command{
		Use:   "gen",
		Short: "Generate a benchmark suite",
		Long: `Generate battles, battle sets, benchmarks and benchmark sets for every force
composition of the sweep, then copy the environment, agents, unit templates
and schemas next to them.

Examples:
  benchmaker gen
  benchmaker gen --units 16:65:16 --bs-ratios 0.25,0.5,0.75
  benchmaker gen --units 32 --force-ratios 1,0.5 -n 10 --seed 7 -j 4
  benchmaker gen --exclude "bs_ratio == 0.5 && units > 32" --catalog run.db`,
		RunE: runGen,
	}

	flags := genCmd.Flags()
	flags.String("env", "DefaultEnv.xml", "Environment file the battles take place in")
	flags.String("agents", "ai", "Directory holding one XML definition per agent")
	flags.String("resources", "../CMS.Benchmark/Resources", "Harness resources providing unit templates and schemas")
	flags.StringP("out", "o", "out/Resources", "Output resource root (cleared before generation)")
	flags.String("units", "48:49:16", "First player's unit count: N, or range min:max[:step] with max exclusive")
	flags.Float64Slice("force-ratios", []float64{1.0}, "Second player's unit count as a fraction of the first's")
	flags.Float64Slice("bs-ratios", []float64{0.25, 0.75}, "Fractions of each side that are battleships")
	flags.IntP("layouts", "n", 5, "Battles per force composition")
	flags.Int("margin", 12, "Radius of the disk each player's units are scattered in")
	flags.Int("max-attempts", 10000, "Draws allowed per anchor or unit before giving up")
	flags.Int("max-rounds", 999999, "Round limit written into every benchmark")
	flags.Int("repeats", 1, "Repetitions written into every benchmark")
	flags.Int64("seed", 0, "Seed for reproducible suites (0 = random)")
	flags.IntP("workers", "j", 1, "Compositions generated in parallel")
	flags.String("catalog", "", "Also record the suite in this SQLite file (recreated every run)")
	flags.String("exclude", "", "Drop compositions matching this expression")

	rootCmd.AddCommand(genCmd)
}

var genKeys = map[string]string{
	config.KeyEnvironment:  "env",
	config.KeyAgentsDir:    "agents",
	config.KeyResourcesDir: "resources",
	config.KeyOutDir:       "out",
	config.KeyLayouts:      "layouts",
	config.KeySearchMargin: "margin",
	config.KeyMaxAttempts:  "max-attempts",
	config.KeyMaxRounds:    "max-rounds",
	config.KeyRepeats:      "repeats",
	config.KeySeed:         "seed",
	config.KeyWorkers:      "workers",
	config.KeyCatalog:      "catalog",
	config.KeyExclude:      "exclude",
}

// bindGenFlags feeds the gen flags into v. Slice and range flags are only set
// when given, since their defaults already live in the config layer.
func bindGenFlags(cmd *cobra.Command) error {
	flags := cmd.Flags()
	if err := bindFlags(v, flags, genKeys); err != nil {
		return err
	}

	if flags.Changed("units") {
		s, _ := flags.GetString("units")
		lo, hi, step, err := parseUnitRange(s)
		if err != nil {
			return err
		}
		v.Set(config.KeyUnitMin, lo)
		v.Set(config.KeyUnitMax, hi)
		if step > 0 {
			v.Set(config.KeyUnitStep, step)
		}
	}
	for key, name := range map[string]string{
		config.KeyForceRatios:     "force-ratios",
		config.KeyBattleshipRatio: "bs-ratios",
	} {
		if flags.Changed(name) {
			ratios, err := flags.GetFloat64Slice(name)
			if err != nil {
				return err
			}
			v.Set(key, ratios)
		}
	}
	return nil
}

// parseUnitRange parses a unit count string which can be:
// - A single count: "32"
// - A range: "16:64", max exclusive, keeping the configured step
// - A range with step: "16:65:16"
// A zero step means the step was not given.
func parseUnitRange(s string) (lo, hi, step int, err error) {
	parts := strings.Split(s, ":")
	nums := make([]int, len(parts))
	for i, p := range parts {
		nums[i], err = strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return 0, 0, 0, fmt.Errorf("invalid unit count %q: %w", s, err)
		}
	}

	switch len(nums) {
	case 1:
		lo, hi = nums[0], nums[0]+1
	case 2:
		lo, hi = nums[0], nums[1]
	case 3:
		lo, hi, step = nums[0], nums[1], nums[2]
		if step <= 0 {
			return 0, 0, 0, fmt.Errorf("unit count step (%d) must be positive", step)
		}
	default:
		return 0, 0, 0, fmt.Errorf("invalid unit count format: %s (use format like '48', '16:64' or '16:65:16')", s)
	}
	if lo < 0 {
		return 0, 0, 0, fmt.Errorf("unit count min (%d) cannot be negative", lo)
	}
	if lo >= hi {
		return 0, 0, 0, fmt.Errorf("unit count max (%d) must be greater than min (%d)", hi, lo)
	}
	return lo, hi, step, nil
}

func runGen(cmd *cobra.Command, args []string) error {
	if err := bindGenFlags(cmd); err != nil {
		return err
	}
	cfg, err := config.Load(v)
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	b, err := board.Load(cfg.Environment)
	if err != nil {
		return err
	}
	agents, err := resources.Agents(cfg.AgentsDir)
	if err != nil {
		return err
	}
	if len(agents) < 2 {
		slog.Warn("fewer than two agents, benchmark sets will be empty", "agents", len(agents))
	}

	templates := cfg.Templates()
	writer := resources.NewWriter(cfg.OutDir, templates)
	sink := suite.MultiSink{writer}

	var store catalog.Store
	if cfg.Catalog != "" {
		store, err = openCatalog(ctx, cfg.Catalog, cfg.OutDir)
		if err != nil {
			return err
		}
		defer func() {
			if err := catalog.CloseIfSupported(store); err != nil {
				slog.Warn("close catalog", "error", err)
			}
		}()
		sink = append(sink, store)
	}

	d := &sweep.Driver{
		Board:  b,
		Agents: agents,
		Grid: sweep.Grid{
			MinUnits:         cfg.UnitCount.Min,
			MaxUnits:         cfg.UnitCount.Max,
			Step:             cfg.UnitCount.Step,
			ForceRatios:      cfg.ForceRatios,
			BattleshipRatios: cfg.BattleshipRatios,
			Exclude:          cfg.Exclude,
		},
		Layouts:  cfg.Layouts,
		Settings: cfg.Settings(),
		Options:  *cfg.GeneratorOptions(),
		Workers:  cfg.Workers,
		Sink:     sink,
		Publisher: &resources.Publisher{
			Resources:   cfg.ResourcesDir,
			Out:         cfg.OutDir,
			Environment: cfg.Environment,
			Agents:      cfg.AgentsDir,
			Templates:   templates,
		},
		Out: cfg.OutDir,
	}

	slog.Info("generating suite",
		"environment", b.Name,
		"radius", b.Radius,
		"agents", len(agents),
		"out", cfg.OutDir)

	start := time.Now()
	m, err := d.Run(ctx)
	if err != nil {
		return fmt.Errorf("generation failed: %w", err)
	}

	files, bytes := writer.Stats()
	battles, benchmarks := m.Counts()
	fmt.Fprintf(cmd.OutOrStdout(), "Generated %s battles and %s benchmarks over %d compositions in %s\n",
		humanize.Comma(int64(battles)), humanize.Comma(int64(benchmarks)), len(m.Compositions),
		time.Since(start).Round(time.Millisecond))
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s documents (%s) to %s, run %s\n",
		humanize.Comma(files), humanize.Bytes(uint64(bytes)), cfg.OutDir, m.RunID)

	if store != nil {
		sum, err := store.Summary(ctx)
		if err != nil {
			return fmt.Errorf("summarize catalog: %w", err)
		}
		slog.Info("catalog written",
			"path", cfg.Catalog,
			"battles", sum.Battles,
			"placements", sum.Placements,
			"benchmarks", sum.Benchmarks)
	}
	return nil
}

// openCatalog recreates the SQLite catalog at path. The catalog may not live
// inside out, which is cleared once generation starts.
func openCatalog(ctx context.Context, path, out string) (catalog.Store, error) {
	if within(path, out) {
		return nil, fmt.Errorf("catalog %s must not be inside the output directory %s", path, out)
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("remove old catalog: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	store, err := catalog.NewStore("sqlite", path)
	if err != nil {
		return nil, err
	}
	if err := store.Init(ctx); err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	return store, nil
}

func within(path, dir string) bool {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return false
	}
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return false
	}
	rel, err := filepath.Rel(absDir, absPath)
	return err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
