package main

import (
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/nvandessel/brainsim/internal/brain"
	"github.com/nvandessel/brainsim/internal/session"
	"github.com/spf13/cobra"
)

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show how the last run ended",
		Long:  `Print the session summary written by the last 'brainsim run'.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOut, _ := cmd.Flags().GetBool("json")

			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			dir, err := cfg.DataDir()
			if err != nil {
				return err
			}

			summary, err := session.LoadSummary(dir)
			if err != nil {
				return err
			}
			if summary == nil {
				if jsonOut {
					return json.NewEncoder(cmd.OutOrStdout()).Encode(map[string]string{"status": "no runs"})
				}
				fmt.Fprintf(cmd.OutOrStdout(), "No session summary in %s. Run 'brainsim run' first.\n", dir)
				return nil
			}

			if jsonOut {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(summary)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Last run: %s - %s (%s)\n",
				summary.StartedAt.Format("2006-01-02 15:04:05"),
				summary.EndedAt.Format("15:04:05"),
				summary.EndedAt.Sub(summary.StartedAt).Round(time.Second))
			fmt.Fprintf(out, "  stimuli:  %d\n", summary.Injected)
			fmt.Fprintf(out, "  rewards:  %d\n", summary.Rewarded)
			printStatus(cmd, summary.Status)
			return nil
		},
	}
}

func printStatus(cmd *cobra.Command, st brain.Status) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "  ticks:    %d\n", st.Ticks)
	fmt.Fprintf(out, "  spikes:   %d\n", st.Spikes)
	fmt.Fprintf(out, "  dopamine: %.4f (baseline %.4f)\n", st.Dopamine, st.Baseline)
	fmt.Fprintf(out, "  synapses: %d total, %d frozen, mean |w| %.4f\n", st.TotalSynapses, st.FrozenSynapses, st.AvgAbsWeight)
	fmt.Fprintf(out, "  neurons:  %d\n", st.Neurons)
	fmt.Fprintf(out, "  context:  %#x\n", st.Context)

	names := make([]string, 0, len(st.Modalities))
	for name := range st.Modalities {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(out, "  modality: %s (%d)\n", name, st.Modalities[name])
	}
}
