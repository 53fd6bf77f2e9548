package main

import (
	"encoding/json"
	"fmt"

	"github.com/nvandessel/brainsim/internal/brain"
	"github.com/nvandessel/brainsim/internal/export"
	"github.com/spf13/cobra"
)

func newExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the synapse table",
		Long: `Build a network from the config, optionally pre-train it, and write one
row per synapse (endpoints, weight, context mask, eligibility, frozen state).

The format follows the output extension unless --format is given:
.arrow, .ipc and .feather write Apache Arrow IPC; anything else writes JSONL.

Examples:
  brainsim export -o synapses.arrow --pretrain
  brainsim export -o synapses.jsonl`,
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOut, _ := cmd.Flags().GetBool("json")
			output, _ := cmd.Flags().GetString("output")
			format, _ := cmd.Flags().GetString("format")
			pretrain, _ := cmd.Flags().GetBool("pretrain")

			if output == "" {
				return fmt.Errorf("--output is required")
			}
			f := export.Format(format)
			switch f {
			case "":
				f = export.FormatFor(output)
			case export.FormatJSONL, export.FormatArrow:
			default:
				return fmt.Errorf("unsupported format %q (use 'jsonl' or 'arrow')", format)
			}

			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			s, err := newSim(cfg, newLogger(cmd, cfg))
			if err != nil {
				return err
			}
			defer s.Close()

			if pretrain {
				ctx, cancel := signalContext(cmd.Context())
				defer cancel()
				if err := s.preTrain(ctx); err != nil {
					return fmt.Errorf("pre-training: %w", err)
				}
			}

			var rows []export.SynapseRow
			s.session.Do(func(net *brain.Network) { rows = export.Rows(net) })
			if err := export.WriteFile(output, f, rows); err != nil {
				return err
			}

			if jsonOut {
				return json.NewEncoder(cmd.OutOrStdout()).Encode(map[string]interface{}{
					"path":     output,
					"format":   f,
					"synapses": len(rows),
				})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d synapses to %s (%s)\n", len(rows), output, f)
			return nil
		},
	}

	cmd.Flags().StringP("output", "o", "", "Output file path (required)")
	cmd.Flags().String("format", "", "Output format: jsonl or arrow (default from extension)")
	cmd.Flags().Bool("pretrain", false, "Replay the configured pre-training patterns first")
	return cmd
}
