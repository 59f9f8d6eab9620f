package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/peter-guba/benchmaker/internal/config"
	"github.com/peter-guba/benchmaker/internal/resources"
)

var numParts int

func init() {
	partitionCmd := &cobra.Command{
		Use:   "partition <benchmark-set>",
		Short: "Split a benchmark set so it can run on several machines",
		Long: `Split a benchmark set into smaller sets named <benchmark-set>_Pt_1,
<benchmark-set>_Pt_2 and so on, keeping benchmark order. Part sizes differ by
at most one.

Examples:
  benchmaker partition "(12+36)vs(12+36)" -p 4`,
		Args: cobra.ExactArgs(1),
		RunE: runPartition,
	}

	partitionCmd.Flags().IntVarP(&numParts, "parts", "p", 2, "Number of parts")
	partitionCmd.Flags().StringP("out", "o", "out/Resources", "Resource root holding the set")

	rootCmd.AddCommand(partitionCmd)
}

func runPartition(cmd *cobra.Command, args []string) error {
	if err := bindFlags(v, cmd.Flags(), map[string]string{config.KeyOutDir: "out"}); err != nil {
		return err
	}
	cfg, err := config.Load(v)
	if err != nil {
		return err
	}

	w := resources.NewWriter(cfg.OutDir, cfg.Templates())
	parts, err := resources.Partition(cmd.Context(), w, args[0], numParts)
	if err != nil {
		return err
	}
	for _, p := range parts {
		fmt.Fprintf(cmd.OutOrStdout(), "%s (%d benchmarks)\n", p.ID, len(p.Benchmarks))
	}
	return nil
}
