package main

import (
	"context"
	"fmt"

	"github.com/nvandessel/brainsim/internal/brain"
	"github.com/nvandessel/brainsim/internal/recording"
	"github.com/nvandessel/brainsim/internal/visualization"
	"github.com/spf13/cobra"
)

func newPlotCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plot",
		Short: "Chart recorded runs and weight distributions",
	}

	cmd.AddCommand(
		newPlotTraceCmd(),
		newPlotWeightsCmd(),
	)
	return cmd
}

func newPlotTraceCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "trace <run-id>",
		Short: "Chart dopamine and weights of a recorded run",
		Long: `Read the snapshots of a recorded run from brainsim.db and chart dopamine,
baseline and mean |weight| over ticks. The image format follows the output
extension (.png, .svg, .pdf).`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output, _ := cmd.Flags().GetString("output")

			rec, err := openRecorder(cmd)
			if err != nil {
				return err
			}
			defer rec.Close()

			snaps, err := rec.Snapshots(context.Background(), args[0])
			if err != nil {
				return err
			}
			if len(snaps) == 0 {
				return fmt.Errorf("run %s has no snapshots", args[0])
			}

			samples := make([]visualization.Sample, 0, len(snaps))
			for _, sn := range snaps {
				samples = append(samples, visualization.Sample{
					Tick:      sn.Tick,
					Dopamine:  sn.Dopamine,
					Baseline:  sn.Baseline,
					AvgWeight: sn.AvgWeight,
					Frozen:    sn.Frozen,
				})
			}
			if err := visualization.PlotTrace(samples, "run "+shortID(args[0]), output); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Trace of %d snapshots written to %s\n", len(samples), output)
			return nil
		},
	}

	cmd.Flags().StringP("output", "o", "trace.png", "Output image path")
	return cmd
}

func newPlotWeightsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "weights",
		Short: "Chart the synaptic weight distribution",
		Long: `Build a network from the config, optionally pre-train it, and chart a
histogram of its synaptic weights.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			output, _ := cmd.Flags().GetString("output")
			bins, _ := cmd.Flags().GetInt("bins")
			pretrain, _ := cmd.Flags().GetBool("pretrain")

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

			var plotErr error
			s.session.Do(func(net *brain.Network) {
				plotErr = visualization.PlotWeights(net, bins, output)
			})
			if plotErr != nil {
				return plotErr
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Weight histogram written to %s\n", output)
			return nil
		},
	}

	cmd.Flags().StringP("output", "o", "weights.png", "Output image path")
	cmd.Flags().Int("bins", 40, "Histogram bins")
	cmd.Flags().Bool("pretrain", false, "Replay the configured pre-training patterns first")
	return cmd
}

// openRecorder opens brainsim.db in the configured data directory.
func openRecorder(cmd *cobra.Command) (*recording.Recorder, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	dir, err := cfg.DataDir()
	if err != nil {
		return nil, err
	}
	return recording.Open(dir)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
