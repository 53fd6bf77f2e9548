// Package mcp provides an MCP (Model Context Protocol) server that lets an
// agent drive a running brainsim session: inject stimuli, deliver reward,
// advance time and read what the network says.
package mcp

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/nvandessel/brainsim/internal/logging"
	"github.com/nvandessel/brainsim/internal/ratelimit"
	"github.com/nvandessel/brainsim/internal/recording"
	"github.com/nvandessel/brainsim/internal/session"
)

// MaxTicksPerCall bounds a single brain_tick call.
const MaxTicksPerCall = 1_000_000

// Server wraps the MCP SDK server around one session.
type Server struct {
	server   *sdk.Server
	session  *session.Session
	logger   *slog.Logger
	limiters ratelimit.ToolLimiters
	audit    *AuditLogger

	recorder *recording.Recorder
	runID    string
	dataDir  string

	mu      sync.Mutex
	watches map[string]*session.SpeakerWatch
}

// Config holds server configuration.
type Config struct {
	Name    string // Server name (e.g., "brainsim")
	Version string // Server version

	// DataDir receives audit.jsonl and brain_export files. Empty disables both.
	DataDir string

	// Recorder, when set, receives rewards and spoken symbols under RunID.
	Recorder *recording.Recorder
	RunID    string

	Logger *slog.Logger
}

// NewServer creates a new MCP server with brain tools bound to s.
func NewServer(s *session.Session, cfg *Config) (*Server, error) {
	if s == nil {
		return nil, fmt.Errorf("nil session")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = logging.Discard()
	}

	mcpServer := sdk.NewServer(&sdk.Implementation{
		Name:    cfg.Name,
		Version: cfg.Version,
	}, nil)

	srv := &Server{
		server:   mcpServer,
		session:  s,
		logger:   logger,
		limiters: ratelimit.NewToolLimiters(),
		recorder: cfg.Recorder,
		runID:    cfg.RunID,
		dataDir:  cfg.DataDir,
		watches:  make(map[string]*session.SpeakerWatch),
	}
	if cfg.DataDir != "" {
		srv.audit = NewAuditLogger(cfg.DataDir)
	}

	// Start the text watch now so the first brain_tick reports its spikes.
	srv.poll(session.TextModality)

	srv.registerTools()
	srv.registerResources()
	return srv, nil
}

// Run serves over stdio until the client disconnects, the context is
// cancelled, or the process receives an interrupt.
func (s *Server) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	notifySignals(sigChan)
	done := watchSignals(ctx, cancel, sigChan)

	s.logger.Info("mcp server listening on stdio")
	err := s.server.Run(ctx, &sdk.StdioTransport{})
	cancel()
	<-done
	s.Close()
	return err
}

// watchSignals cancels on the first signal from sigChan and unregisters the
// channel once ctx ends. The returned channel closes after unregistering.
func watchSignals(ctx context.Context, cancel context.CancelFunc, sigChan chan os.Signal) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		defer signal.Stop(sigChan)
		select {
		case <-sigChan:
			cancel()
		case <-ctx.Done():
		}
	}()
	return done
}

// Close releases the audit log. The session and recorder belong to the caller.
func (s *Server) Close() error {
	return s.audit.Close()
}

// poll reads new spoken symbols for modality. Each modality has one watch
// shared by all tools, created on first use.
func (s *Server) poll(modality string) []session.Spoken {
	s.mu.Lock()
	defer s.mu.Unlock()

	w, ok := s.watches[modality]
	if !ok {
		w = s.session.NewSpeakerWatch(modality)
		s.watches[modality] = w
	}
	return w.Poll()
}
