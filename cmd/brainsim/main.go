package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/nvandessel/brainsim/internal/config"
	"github.com/nvandessel/brainsim/internal/logging"
	"github.com/spf13/cobra"
)

// Set at build time via -ldflags.
var (
	version = "0.1.0-dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "brainsim",
		Short: "Spiking neural network simulator with reward-modulated learning",
		Long: `brainsim runs a leaky integrate-and-fire network that learns from
stimuli and dopamine rewards.

Typed characters are injected as text stimuli, '+' and '-' deliver reward
and punishment, and the network speaks by firing its speaker neurons.`,
		SilenceUsage: true,
	}

	// Global flags
	rootCmd.PersistentFlags().Bool("json", false, "Output as JSON (for agent consumption)")
	rootCmd.PersistentFlags().String("config", "", "Config file (default ~/.brainsim/config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: info, debug or trace (overrides config)")

	rootCmd.AddCommand(
		newVersionCmd(),
		newRunCmd(),
		newTrainCmd(),
		newStatusCmd(),
		newGraphCmd(),
		newPlotCmd(),
		newExportCmd(),
		newRecordCmd(),
		newMCPServerCmd(),
		newConfigCmd(),
	)
	return rootCmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			jsonOut, _ := cmd.Flags().GetBool("json")
			if jsonOut {
				json.NewEncoder(cmd.OutOrStdout()).Encode(map[string]string{
					"version": version,
					"commit":  commit,
					"date":    date,
				})
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "brainsim version %s (commit: %s, built: %s)\n", version, commit, date)
			}
		},
	}
}

// loadConfig reads --config if given, otherwise the default locations, then
// environment overrides and --log-level, and validates the result.
func loadConfig(cmd *cobra.Command) (*config.BrainsimConfig, error) {
	path, _ := cmd.Flags().GetString("config")

	cfg, err := config.LoadPath(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if level, _ := cmd.Flags().GetString("log-level"); level != "" {
		cfg.Logging.Level = level
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// newLogger writes operational logs to stderr. Stdout is reserved for
// command output and, under mcp-server, the protocol stream.
func newLogger(cmd *cobra.Command, cfg *config.BrainsimConfig) *slog.Logger {
	return logging.NewLogger(cfg.Logging.Level, cmd.ErrOrStderr())
}
