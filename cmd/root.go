package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/peter-guba/benchmaker/internal/config"
)

var (
	cfgFile   string
	logLevel  string
	logFormat string

	v = config.New()
)

var rootCmd = &cobra.Command{
	Use:   "benchmaker",
	Short: "Generate benchmark suites for the hex fleet combat harness",
	Long: `benchmaker writes battles, battle sets, benchmarks and benchmark sets as
XML resources for the evaluation harness, sweeping over force compositions
and pairing every agent with every other.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := setupLogging(cmd.ErrOrStderr(), logLevel, logFormat); err != nil {
			return err
		}
		return config.ReadFile(v, cfgFile)
	},
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "Config file (default ./benchmaker.yaml if present)")
	flags.StringVar(&logLevel, "log-level", "info", "Log level: debug, info, warn or error")
	flags.StringVar(&logFormat, "log-format", "text", "Log format: text or json")
}

// Execute runs the command line with ctx cancelling long operations.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func setupLogging(w io.Writer, level, format string) error {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return fmt.Errorf("invalid log level %q", level)
	}
	opts := &slog.HandlerOptions{Level: lvl}

	var handler slog.Handler
	switch strings.ToLower(format) {
	case "text":
		handler = slog.NewTextHandler(w, opts)
	case "json":
		handler = slog.NewJSONHandler(w, opts)
	default:
		return fmt.Errorf("invalid log format %q (use text or json)", format)
	}
	slog.SetDefault(slog.New(handler))
	return nil
}

// bindFlags binds config keys to the flags of the running command. Binding
// happens per run since several commands share keys.
func bindFlags(v *viper.Viper, flags *pflag.FlagSet, keys map[string]string) error {
	for key, name := range keys {
		if err := v.BindPFlag(key, flags.Lookup(name)); err != nil {
			return fmt.Errorf("bind --%s: %w", name, err)
		}
	}
	return nil
}
