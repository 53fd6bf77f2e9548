package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

func newRecordCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "record",
		Short: "Inspect recorded runs",
		Long: `List and show runs recorded to brainsim.db.

Recording is enabled with recording.enabled in the config, BRAINSIM_RECORD=1,
or 'brainsim run --record'.`,
	}

	cmd.AddCommand(
		newRecordListCmd(),
		newRecordShowCmd(),
	)
	return cmd
}

func newRecordListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List recorded runs, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOut, _ := cmd.Flags().GetBool("json")

			rec, err := openRecorder(cmd)
			if err != nil {
				return err
			}
			defer rec.Close()

			runs, err := rec.Runs(cmd.Context())
			if err != nil {
				return err
			}

			if jsonOut {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(map[string]interface{}{"runs": runs, "count": len(runs)})
			}

			if len(runs) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No recorded runs.")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%-36s  %-19s  %20s  %9s  %6s\n", "RUN", "STARTED", "SEED", "SNAPSHOTS", "SPOKEN")
			for _, r := range runs {
				fmt.Fprintf(cmd.OutOrStdout(), "%-36s  %-19s  %20d  %9d  %6d\n",
					r.ID, r.StartedAt.Local().Format("2006-01-02 15:04:05"), r.Seed, r.Snapshots, r.Spoken)
			}
			return nil
		},
	}
}

func newRecordShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show <run-id>",
		Short: "Show the snapshots, rewards and speech of a run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOut, _ := cmd.Flags().GetBool("json")
			limit, _ := cmd.Flags().GetInt("limit")
			runID := args[0]

			rec, err := openRecorder(cmd)
			if err != nil {
				return err
			}
			defer rec.Close()

			ctx := cmd.Context()
			snaps, err := rec.Snapshots(ctx, runID)
			if err != nil {
				return err
			}
			spoken, err := rec.SpokenSymbols(ctx, runID)
			if err != nil {
				return err
			}
			rewards, err := rec.RewardTotal(ctx, runID)
			if err != nil {
				return err
			}
			if len(snaps) == 0 && spoken == "" && rewards == 0 {
				return fmt.Errorf("run %s not found or empty", runID)
			}

			if jsonOut {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(map[string]interface{}{
					"run_id":       runID,
					"snapshots":    snaps,
					"spoken":       spoken,
					"reward_total": rewards,
				})
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Run %s\n", runID)
			fmt.Fprintf(out, "  rewards: %+.3f total\n", rewards)
			fmt.Fprintf(out, "  spoken:  %q\n", spoken)
			fmt.Fprintf(out, "  snapshots (%d):\n", len(snaps))
			fmt.Fprintf(out, "    %10s  %10s  %10s  %10s  %8s  %10s\n", "TICK", "SPIKES", "DOPAMINE", "BASELINE", "FROZEN", "MEAN|W|")
			start := 0
			if limit > 0 && len(snaps) > limit {
				start = len(snaps) - limit
			}
			for _, sn := range snaps[start:] {
				fmt.Fprintf(out, "    %10d  %10d  %10.4f  %10.4f  %8d  %10.4f\n",
					sn.Tick, sn.Spikes, sn.Dopamine, sn.Baseline, sn.Frozen, sn.AvgWeight)
			}
			return nil
		},
	}

	cmd.Flags().Int("limit", 20, "Show only the last N snapshots (0 for all)")
	return cmd
}
