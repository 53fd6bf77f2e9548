package main

import (
	"encoding/json"
	"fmt"

	"github.com/nvandessel/brainsim/internal/brain"
	"github.com/nvandessel/brainsim/internal/config"
	"github.com/nvandessel/brainsim/internal/constants"
	"github.com/nvandessel/brainsim/internal/export"
	"github.com/nvandessel/brainsim/internal/session"
	"github.com/nvandessel/brainsim/internal/visualization"
	"github.com/spf13/cobra"
)

func newTrainCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "train",
		Short: "Train the network on a text pattern",
		Long: `Replay a pattern through the text modality with a reward after every
repetition, then report the network status.

The run can be charted with --trace and the learned synapse table written
with --export.

Examples:
  brainsim train --pattern hello --reps 20
  brainsim train --pattern abc --trace abc.png --export abc.arrow`,
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOut, _ := cmd.Flags().GetBool("json")
			pattern, _ := cmd.Flags().GetString("pattern")
			reps, _ := cmd.Flags().GetInt("reps")
			ticksPerSymbol, _ := cmd.Flags().GetInt("ticks-per-symbol")
			reward, _ := cmd.Flags().GetFloat64("reward")
			tracePath, _ := cmd.Flags().GetString("trace")
			sampleEvery, _ := cmd.Flags().GetInt64("sample-every")
			exportPath, _ := cmd.Flags().GetString("export")

			if pattern == "" {
				return fmt.Errorf("--pattern is required")
			}
			if reps <= 0 || ticksPerSymbol <= 0 {
				return fmt.Errorf("--reps and --ticks-per-symbol must be positive")
			}

			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if !cfg.Encoders.Text.Enabled {
				return fmt.Errorf("training needs the text encoder; enable encoders.text in the config")
			}
			s, err := newSim(cfg, newLogger(cmd, cfg))
			if err != nil {
				return err
			}
			defer s.Close()

			ctx, cancel := signalContext(cmd.Context())
			defer cancel()

			if err := s.startRecording(ctx); err != nil {
				return err
			}

			var samples []visualization.Sample
			if tracePath != "" {
				samples = append(samples, visualization.SampleFromStatus(s.session.Status()))
				s.session.Observe(sampleEvery, func(st brain.Status) {
					samples = append(samples, visualization.SampleFromStatus(st))
				})
			}

			watch := s.session.NewSpeakerWatch(session.TextModality)
			p := config.PreTrainConfig{
				Pattern:        pattern,
				Repetitions:    reps,
				TicksPerSymbol: ticksPerSymbol,
				Reward:         reward,
			}
			if err := s.session.PreTrain(ctx, p); err != nil {
				return err
			}
			s.recordReward(reward*float64(reps), "train")

			var said []byte
			for _, sp := range watch.Poll() {
				s.recordSpoken(sp)
				said = append(said, sp.Symbol...)
			}

			if tracePath != "" {
				title := fmt.Sprintf("train %q x%d", pattern, reps)
				if err := visualization.PlotTrace(samples, title, tracePath); err != nil {
					return fmt.Errorf("plot trace: %w", err)
				}
			}

			exported := 0
			if exportPath != "" {
				var rows []export.SynapseRow
				s.session.Do(func(net *brain.Network) { rows = export.Rows(net) })
				if err := export.WriteFile(exportPath, export.FormatFor(exportPath), rows); err != nil {
					return fmt.Errorf("export synapses: %w", err)
				}
				exported = len(rows)
			}

			st := s.session.Status()
			out := cmd.OutOrStdout()
			if jsonOut {
				return json.NewEncoder(out).Encode(map[string]interface{}{
					"pattern":  pattern,
					"reps":     reps,
					"status":   st,
					"spoken":   string(said),
					"run_id":   s.runID,
					"trace":    tracePath,
					"exported": exported,
				})
			}

			fmt.Fprintf(out, "Trained %q x%d in %d ticks\n", pattern, reps, st.Ticks)
			fmt.Fprintf(out, "  spikes:    %d\n", st.Spikes)
			fmt.Fprintf(out, "  dopamine:  %.4f (baseline %.4f)\n", st.Dopamine, st.Baseline)
			fmt.Fprintf(out, "  frozen:    %d / %d synapses\n", st.FrozenSynapses, st.TotalSynapses)
			fmt.Fprintf(out, "  spoken:    %q\n", string(said))
			if tracePath != "" {
				fmt.Fprintf(out, "Trace written to %s\n", tracePath)
			}
			if exportPath != "" {
				fmt.Fprintf(out, "Exported %d synapses to %s\n", exported, exportPath)
			}
			return nil
		},
	}

	cmd.Flags().String("pattern", "", "Text pattern to replay (required)")
	cmd.Flags().Int("reps", 10, "Number of repetitions")
	cmd.Flags().Int("ticks-per-symbol", constants.DefaultTicksPerSymbol, "Ticks between symbols")
	cmd.Flags().Float64("reward", constants.DefaultTrainReward, "Reward after each repetition")
	cmd.Flags().String("trace", "", "Write a dopamine/weight chart to this file (.png, .svg, .pdf)")
	cmd.Flags().Int64("sample-every", 100, "Ticks between trace samples")
	cmd.Flags().String("export", "", "Write the synapse table to this file (.arrow or .jsonl)")

	return cmd
}
