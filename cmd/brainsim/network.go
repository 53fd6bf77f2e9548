package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/nvandessel/brainsim/internal/brain"
	"github.com/nvandessel/brainsim/internal/config"
	"github.com/nvandessel/brainsim/internal/encoding"
	"github.com/nvandessel/brainsim/internal/logging"
	"github.com/nvandessel/brainsim/internal/recording"
	"github.com/nvandessel/brainsim/internal/session"
)

// Modality names for the optional encoders.
const (
	visualModality = "visual"
	audioModality  = "audio"
)

// sim bundles everything a command needs to drive one network.
type sim struct {
	cfg     *config.BrainsimConfig
	logger  *slog.Logger
	events  *logging.EventLogger
	session *session.Session
	seed    int64
	dataDir string

	recorder *recording.Recorder
	runID    string
}

// newSim builds a network from cfg and registers the enabled encoders.
// A zero seed is replaced by a time-based one so recorded runs can be
// reproduced.
func newSim(cfg *config.BrainsimConfig, logger *slog.Logger) (*sim, error) {
	dataDir, err := cfg.DataDir()
	if err != nil {
		return nil, err
	}

	seed := cfg.Network.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	netCfg := cfg.Network
	netCfg.Seed = seed

	statusEvery := cfg.Runtime.StatusEvery
	if statusEvery == 0 {
		statusEvery = -1
	}

	events := logging.NewEventLogger(dataDir, cfg.Logging.Level)
	net := brain.New(netCfg,
		brain.WithLogger(logger),
		brain.WithEventLogger(events),
		brain.WithStatusEvery(statusEvery))

	if err := registerEncoders(net, cfg.Encoders); err != nil {
		events.Close()
		return nil, err
	}

	return &sim{
		cfg:     cfg,
		logger:  logger,
		events:  events,
		session: session.New(net, session.Config{TickInterval: cfg.Runtime.TickInterval}, logger),
		seed:    seed,
		dataDir: dataDir,
	}, nil
}

func registerEncoders(net *brain.Network, enc config.EncodersConfig) error {
	if t := enc.Text; t.Enabled {
		text, err := encoding.NewTextEncoder(t.Alphabet, t.PointerDim, t.Sparsity, t.PopulationSize)
		if err != nil {
			return fmt.Errorf("text encoder: %w", err)
		}
		if err := net.RegisterModality(session.TextModality, text); err != nil {
			return err
		}
	}
	if v := enc.Visual; v.Enabled {
		visual, err := encoding.NewVisualEncoder(v.Width, v.Height)
		if err != nil {
			return fmt.Errorf("visual encoder: %w", err)
		}
		if err := net.RegisterModality(visualModality, visual); err != nil {
			return err
		}
	}
	if a := enc.Audio; a.Enabled {
		audio, err := encoding.NewAudioEncoder(a.Bands, a.Sparsity)
		if err != nil {
			return fmt.Errorf("audio encoder: %w", err)
		}
		if err := net.RegisterModality(audioModality, audio); err != nil {
			return err
		}
	}
	return nil
}

// preTrain replays the configured patterns.
func (s *sim) preTrain(ctx context.Context) error {
	if !s.cfg.Encoders.Text.Enabled {
		return nil
	}
	for _, p := range s.cfg.Runtime.PreTrain {
		if err := s.session.PreTrain(ctx, p); err != nil {
			return err
		}
	}
	return nil
}

// startRecording opens the recorder and begins a run when recording is
// enabled. Status snapshots are recorded every Recording.SnapshotEvery ticks.
func (s *sim) startRecording(ctx context.Context) error {
	if !s.cfg.Recording.Enabled {
		return nil
	}

	rec, err := recording.Open(s.dataDir)
	if err != nil {
		return fmt.Errorf("open recorder: %w", err)
	}
	cfgYAML, err := s.cfg.Marshal()
	if err != nil {
		rec.Close()
		return err
	}
	runID, err := rec.StartRun(ctx, s.seed, string(cfgYAML))
	if err != nil {
		rec.Close()
		return err
	}
	s.recorder, s.runID = rec, runID
	s.logger.Info("recording run", "run", runID, "db", rec.Path())

	s.session.Observe(s.cfg.Recording.SnapshotEvery, func(st brain.Status) {
		if err := rec.RecordSnapshot(context.Background(), runID, recording.SnapshotFromStatus(st)); err != nil {
			s.logger.Warn("failed to record snapshot", "tick", st.Ticks, "error", err)
		}
	})
	return nil
}

// recordReward is a no-op unless recording is on.
func (s *sim) recordReward(amount float64, source string) {
	if s.recorder == nil {
		return
	}
	tick := s.session.Status().Ticks
	if err := s.recorder.RecordReward(context.Background(), s.runID, tick, amount, source); err != nil {
		s.logger.Warn("failed to record reward", "error", err)
	}
}

func (s *sim) recordSpoken(sp session.Spoken) {
	if s.recorder == nil {
		return
	}
	if err := s.recorder.RecordSpoken(context.Background(), s.runID, sp.Tick, sp.Modality, sp.Symbol); err != nil {
		s.logger.Warn("failed to record spoken symbol", "error", err)
	}
}

// Close flushes the final snapshot and releases the recorder and event log.
func (s *sim) Close() {
	if s.recorder != nil {
		st := s.session.Status()
		if err := s.recorder.RecordSnapshot(context.Background(), s.runID, recording.SnapshotFromStatus(st)); err != nil {
			s.logger.Warn("failed to record final snapshot", "error", err)
		}
		s.recorder.Close()
	}
	s.events.Close()
}

// signalContext returns a context cancelled on interrupt.
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)
	sigCh := make(chan os.Signal, 1)
	notifySignals(sigCh)
	go func() {
		defer signal.Stop(sigCh)
		select {
		case <-sigCh:
			cancel()
		case <-ctx.Done():
		}
	}()
	return ctx, cancel
}
