package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/nvandessel/brainsim/internal/brain"
	"github.com/nvandessel/brainsim/internal/models"
	"github.com/nvandessel/brainsim/internal/visualization"
	"github.com/spf13/cobra"
)

func newGraphCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "graph",
		Short: "Visualize the network wiring",
		Long: `Output the sensory, reservoir, predictor and speaker populations in DOT
(Graphviz), JSON, or HTML format.

The network is built from the current config. With --pretrain the configured
patterns are replayed first, so the graph shows learned weights.

Examples:
  brainsim graph | dot -Tsvg > net.svg
  brainsim graph --format json --min-weight 0.3
  brainsim graph --serve                  # live view while the network runs`,
		RunE: func(cmd *cobra.Command, args []string) error {
			format, _ := cmd.Flags().GetString("format")
			output, _ := cmd.Flags().GetString("output")
			noOpen, _ := cmd.Flags().GetBool("no-open")
			serve, _ := cmd.Flags().GetBool("serve")
			addr, _ := cmd.Flags().GetString("addr")
			pretrain, _ := cmd.Flags().GetBool("pretrain")
			minWeight, _ := cmd.Flags().GetFloat64("min-weight")
			frozenOnly, _ := cmd.Flags().GetBool("frozen-only")
			all, _ := cmd.Flags().GetBool("all")
			top, _ := cmd.Flags().GetInt("top")

			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			s, err := newSim(cfg, newLogger(cmd, cfg))
			if err != nil {
				return err
			}
			defer s.Close()

			ctx, cancel := signalContext(cmd.Context())
			defer cancel()

			if pretrain {
				if err := s.preTrain(ctx); err != nil {
					return fmt.Errorf("pre-training: %w", err)
				}
			}

			opts := visualization.Options{MinWeight: minWeight, FrozenOnly: frozenOnly}
			if all {
				opts.Roles = models.AllRoles()
			}

			if serve {
				return runGraphServer(cmd, ctx, s, opts, addr, noOpen)
			}

			var rendered []byte
			var renderErr error
			s.session.Do(func(net *brain.Network) {
				switch visualization.Format(format) {
				case visualization.FormatDOT:
					rendered = []byte(visualization.RenderDOT(net, opts))
				case visualization.FormatJSON:
					rendered, renderErr = json.MarshalIndent(visualization.RenderJSON(net, opts), "", "  ")
					rendered = append(rendered, '\n')
				case visualization.FormatHTML:
					rendered, renderErr = visualization.RenderHTML(net, opts, top, 0)
				default:
					renderErr = fmt.Errorf("unsupported format %q (use 'dot', 'json', or 'html')", format)
				}
			})
			if renderErr != nil {
				return fmt.Errorf("render graph: %w", renderErr)
			}

			if visualization.Format(format) == visualization.FormatHTML {
				return writeStaticHTML(cmd, rendered, output, noOpen)
			}
			cmd.OutOrStdout().Write(rendered)
			return nil
		},
	}

	cmd.Flags().String("format", "dot", "Output format: dot, json, or html")
	cmd.Flags().StringP("output", "o", "", "Output file path (html format only)")
	cmd.Flags().Bool("no-open", false, "Don't open browser after generating HTML")
	cmd.Flags().Bool("serve", false, "Run the network and serve a live view until Ctrl-C")
	cmd.Flags().String("addr", "localhost:0", "Listen address for --serve")
	cmd.Flags().Bool("pretrain", false, "Replay the configured pre-training patterns first")
	cmd.Flags().Float64("min-weight", 0, "Drop synapses with |weight| below this")
	cmd.Flags().Bool("frozen-only", false, "Show only consolidated synapses")
	cmd.Flags().Bool("all", false, "Include interneurons")
	cmd.Flags().Int("top", 50, "Strongest synapses listed in HTML output")

	return cmd
}

// writeStaticHTML writes a rendered page and optionally opens it.
func writeStaticHTML(cmd *cobra.Command, htmlBytes []byte, output string, noOpen bool) error {
	outPath := output
	if outPath == "" {
		outPath = filepath.Join(os.TempDir(), "brainsim-graph.html")
	}

	if err := os.WriteFile(outPath, htmlBytes, 0644); err != nil {
		return fmt.Errorf("write HTML file: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Graph written to %s\n", outPath)

	if !noOpen {
		if err := visualization.OpenBrowser(outPath); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "Could not open browser: %v\nOpen %s manually.\n", err, outPath)
		}
	}
	return nil
}

// runGraphServer ticks the network and serves the live view until ctx ends.
func runGraphServer(cmd *cobra.Command, ctx context.Context, s *sim, opts visualization.Options, addr string, noOpen bool) error {
	srv := visualization.NewServer(s.session, opts)

	srvCtx, srvCancel := context.WithCancel(ctx)
	defer srvCancel()

	go s.session.Run(srvCtx)

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe(srvCtx, addr) }()

	if !announceServer(cmd, srvCtx, srv, noOpen) {
		srvCancel()
		if err := <-errCh; err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return fmt.Errorf("server failed to start")
	}

	if err := <-errCh; err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// announceServer waits for srv to bind, prints its URL and opens a browser.
// It reports whether the server came up.
func announceServer(cmd *cobra.Command, ctx context.Context, srv *visualization.Server, noOpen bool) bool {
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) && ctx.Err() == nil {
		if srv.Addr() != "" {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}

	addr := srv.Addr()
	if addr == "" {
		return false
	}

	url := "http://" + addr
	fmt.Fprintf(cmd.OutOrStdout(), "Graph server running at %s\n", url)
	fmt.Fprintf(cmd.OutOrStdout(), "Press Ctrl-C to stop.\n")

	if !noOpen {
		if err := visualization.OpenBrowser(url); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "Could not open browser: %v\nOpen %s manually.\n", err, url)
		}
	}
	return true
}
