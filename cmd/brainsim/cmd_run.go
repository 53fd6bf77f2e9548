package main

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/nvandessel/brainsim/internal/console"
	"github.com/nvandessel/brainsim/internal/session"
	"github.com/nvandessel/brainsim/internal/visualization"
	"github.com/spf13/cobra"
)

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the network interactively",
		Long: `Build a network, pre-train it, then tick until interrupted.

Characters typed on stdin are injected into the text modality. '+' rewards
the network and '-' punishes it. Symbols the network speaks are printed to
stdout. The run ends on Ctrl-C or when stdin closes, and a session summary
is written to the data directory.

Examples:
  brainsim run
  brainsim run --serve localhost:8080     # also serve the live network view
  BRAINSIM_RECORD=1 brainsim run          # record snapshots to brainsim.db`,
		RunE: func(cmd *cobra.Command, args []string) error {
			noPretrain, _ := cmd.Flags().GetBool("no-pretrain")
			serveAddr, _ := cmd.Flags().GetString("serve")
			noOpen, _ := cmd.Flags().GetBool("no-open")
			record, _ := cmd.Flags().GetBool("record")

			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if record {
				cfg.Recording.Enabled = true
			}
			logger := newLogger(cmd, cfg)

			s, err := newSim(cfg, logger)
			if err != nil {
				return err
			}
			defer s.Close()

			ctx, cancel := signalContext(cmd.Context())
			defer cancel()

			if err := s.startRecording(ctx); err != nil {
				return err
			}
			if !noPretrain {
				if err := s.preTrain(ctx); err != nil {
					return fmt.Errorf("pre-training: %w", err)
				}
			}

			sensor := console.NewKeySensor(s.session, cmd.InOrStdin(), logger)
			sensor.OnReward = func(amount float64) { s.recordReward(amount, "keyboard") }
			speaker := console.NewSpeaker(s.session, cmd.OutOrStdout(), cfg.Runtime.SpeakerPoll, logger)
			speaker.OnSpoken = s.recordSpoken

			var wg sync.WaitGroup
			errCh := make(chan error, 3)
			spawn := func(name string, fn func(context.Context) error) {
				wg.Add(1)
				go func() {
					defer wg.Done()
					if err := fn(ctx); err != nil && !errors.Is(err, context.Canceled) {
						errCh <- fmt.Errorf("%s: %w", name, err)
						cancel()
					}
				}()
			}

			spawn("tick loop", s.session.Run)
			spawn("speaker", speaker.Run)
			// The sensor is not waited for: a blocked terminal read only
			// returns when the process exits. EOF on stdin ends the run.
			go func() {
				defer cancel()
				if err := sensor.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
					logger.Warn("key sensor stopped", "error", err)
				}
			}()
			if serveAddr != "" {
				srv := visualization.NewServer(s.session, visualization.Options{})
				spawn("visualization server", func(ctx context.Context) error {
					return srv.ListenAndServe(ctx, serveAddr)
				})
				go announceServer(cmd, ctx, srv, noOpen)
			}

			fmt.Fprintln(cmd.ErrOrStderr(), "Network running. Type to stimulate, '+' to reward, '-' to punish, Ctrl-C to stop.")

			<-ctx.Done()
			wg.Wait()
			close(errCh)

			if err := session.SaveSummary(s.session, s.dataDir); err != nil {
				logger.Warn("failed to save session summary", "error", err)
			}
			st := s.session.Status()
			logger.Info("run finished", "ticks", st.Ticks, "frozen", st.FrozenSynapses, "dopamine", st.Dopamine)

			return <-errCh
		},
	}

	cmd.Flags().Bool("no-pretrain", false, "Skip the configured pre-training patterns")
	cmd.Flags().String("serve", "", "Serve the live network view on this address (e.g. localhost:8080)")
	cmd.Flags().Bool("no-open", false, "Don't open a browser for --serve")
	cmd.Flags().Bool("record", false, "Record this run to brainsim.db (overrides config)")

	return cmd
}
