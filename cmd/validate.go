package cmd

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/peter-guba/benchmaker/internal/audit"
	"github.com/peter-guba/benchmaker/internal/board"
	"github.com/peter-guba/benchmaker/internal/config"
	"github.com/peter-guba/benchmaker/internal/sweep"
)

func init() {
	validateCmd := &cobra.Command{
		Use:   "validate",
		Short: "Check a generated suite before handing it to the harness",
		Long: `Follow every reference of a generated resource tree, from benchmark sets down
to agents, environments and unit templates, and re-check every battle against
the environment: units on passable cells inside the board, no two on one
cell, counts matching the battle name.

Examples:
  benchmaker validate
  benchmaker validate --out out/Resources --env maps/Nebula.xml`,
		Args: cobra.NoArgs,
		RunE: runValidate,
	}

	flags := validateCmd.Flags()
	flags.StringP("out", "o", "out/Resources", "Resource root to check")
	flags.String("env", "DefaultEnv.xml", "Environment file the battles were generated for")

	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	if err := bindFlags(v, cmd.Flags(), map[string]string{
		config.KeyOutDir:      "out",
		config.KeyEnvironment: "env",
	}); err != nil {
		return err
	}
	cfg, err := config.Load(v)
	if err != nil {
		return err
	}

	b, err := board.Load(cfg.Environment)
	if err != nil {
		return err
	}

	m, err := sweep.ReadManifest(cfg.OutDir)
	switch {
	case err == nil:
		slog.Info("checking run", "run", m.RunID, "created", m.Created, "compositions", len(m.Compositions))
	case errors.Is(err, os.ErrNotExist):
		slog.Debug("no manifest found", "out", cfg.OutDir)
	default:
		return err
	}

	report, err := audit.Tree(cmd.Context(), cfg.OutDir, b, cfg.Templates())
	fmt.Fprintf(cmd.OutOrStdout(), "Checked %d benchmark sets, %d benchmarks, %d battle sets, %d battles\n",
		report.BenchmarkSets, report.Benchmarks, report.BattleSets, report.Battles)
	if err != nil {
		return fmt.Errorf("suite is not valid:\n%w", err)
	}
	if report.BenchmarkSets == 0 {
		slog.Warn("no benchmark sets found", "out", cfg.OutDir)
	}
	return nil
}
