package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/nvandessel/brainsim/internal/mcp"
	"github.com/spf13/cobra"
)

func newMCPServerCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mcp-server",
		Short: "Serve the network over the Model Context Protocol (stdio)",
		Long: `Start an MCP server on stdin/stdout so an agent can drive the network.

Tools: brain_inject, brain_reward, brain_tick, brain_status, brain_spoken,
brain_graph, brain_export. By default time only advances through brain_tick; --free-run
also ticks the network continuously in the background.

Calls are audited to audit.jsonl in the data directory.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			noPretrain, _ := cmd.Flags().GetBool("no-pretrain")
			freeRun, _ := cmd.Flags().GetBool("free-run")

			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			logger := newLogger(cmd, cfg)

			s, err := newSim(cfg, logger)
			if err != nil {
				return err
			}
			defer s.Close()

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			if err := s.startRecording(ctx); err != nil {
				return err
			}
			if !noPretrain {
				if err := s.preTrain(ctx); err != nil {
					return fmt.Errorf("pre-training: %w", err)
				}
			}

			server, err := mcp.NewServer(s.session, &mcp.Config{
				Name:     "brainsim",
				Version:  version,
				DataDir:  s.dataDir,
				Recorder: s.recorder,
				RunID:    s.runID,
				Logger:   logger,
			})
			if err != nil {
				return fmt.Errorf("failed to create MCP server: %w", err)
			}

			if freeRun {
				go s.session.Run(ctx)
			}

			if err := server.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				return fmt.Errorf("mcp server: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().Bool("no-pretrain", false, "Skip the configured pre-training patterns")
	cmd.Flags().Bool("free-run", false, "Tick continuously instead of only on brain_tick")
	return cmd
}
