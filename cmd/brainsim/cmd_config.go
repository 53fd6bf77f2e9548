package main

import (
	"encoding/json"
	"fmt"

	"github.com/nvandessel/brainsim/internal/config"
	"github.com/spf13/cobra"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show and check brainsim configuration",
		Long: `View brainsim configuration settings.

Configuration is read from ~/.brainsim/config.yaml (or --config) and
BRAINSIM_* environment variables, on top of built-in defaults.

Examples:
  brainsim config show > ~/.brainsim/config.yaml   # start from defaults
  brainsim config validate my-config.yaml`,
	}

	cmd.AddCommand(
		newConfigShowCmd(),
		newConfigValidateCmd(),
	)
	return cmd
}

func newConfigShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration as YAML",
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOut, _ := cmd.Flags().GetBool("json")
			defaults, _ := cmd.Flags().GetBool("defaults")

			var cfg *config.BrainsimConfig
			if defaults {
				cfg = config.Default()
			} else {
				var err error
				if cfg, err = loadConfig(cmd); err != nil {
					return err
				}
			}

			if jsonOut {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(cfg)
			}
			data, err := cfg.Marshal()
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}

	cmd.Flags().Bool("defaults", false, "Print built-in defaults, ignoring files and environment")
	return cmd
}

func newConfigValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate [file]",
		Short: "Check a configuration file",
		Long:  `Validate the given file, or the effective configuration when no file is given.`,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOut, _ := cmd.Flags().GetBool("json")

			var cfg *config.BrainsimConfig
			var err error
			source := "effective configuration"
			if len(args) == 1 {
				source = args[0]
				cfg, err = config.LoadFromFile(args[0])
			} else {
				path, _ := cmd.Flags().GetString("config")
				if path != "" {
					source = path
				}
				cfg, err = config.LoadPath(path)
			}
			if err == nil {
				err = cfg.Validate()
			}

			if jsonOut {
				result := map[string]interface{}{"source": source, "valid": err == nil}
				if err != nil {
					result["error"] = err.Error()
				}
				if encErr := json.NewEncoder(cmd.OutOrStdout()).Encode(result); encErr != nil {
					return encErr
				}
				return err
			}
			if err != nil {
				return fmt.Errorf("%s: %w", source, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s is valid\n", source)
			return nil
		},
	}
}
