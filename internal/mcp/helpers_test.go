package mcp

import (
	"math/rand"
	"testing"

	"github.com/nvandessel/brainsim/internal/brain"
	"github.com/nvandessel/brainsim/internal/config"
	"github.com/nvandessel/brainsim/internal/encoding"
	"github.com/nvandessel/brainsim/internal/recording"
	"github.com/nvandessel/brainsim/internal/session"
)

// setupTestServer builds a small silent network with a text modality over
// "abc" and a generic modality of 8 inputs.
func setupTestServer(t *testing.T) *Server {
	t.Helper()
	return setupTestServerWithConfig(t, &Config{Name: "brainsim-test", Version: "v0.0.0-test"})
}

func setupTestServerWithConfig(t *testing.T, cfg *Config) *Server {
	t.Helper()

	netCfg := config.DefaultNetwork()
	netCfg.ExcitatoryInterneurons = 10
	netCfg.InhibitoryInterneurons = 2
	netCfg.ReservoirSize = 4
	netCfg.BaselineFraction = 0.5
	netCfg.Neuron.SpontaneousRate = 0

	net := brain.New(netCfg, brain.WithRand(rand.New(rand.NewSource(3))), brain.WithStatusEvery(-1))
	text, err := encoding.NewTextEncoder("abc", 64, 0.25, 16)
	if err != nil {
		t.Fatalf("NewTextEncoder() error = %v", err)
	}
	if err := net.RegisterModality(session.TextModality, text); err != nil {
		t.Fatalf("RegisterModality(text) error = %v", err)
	}
	generic, err := encoding.NewGenericEncoder(8)
	if err != nil {
		t.Fatalf("NewGenericEncoder() error = %v", err)
	}
	if err := net.RegisterModality("touch", generic); err != nil {
		t.Fatalf("RegisterModality(touch) error = %v", err)
	}

	srv, err := NewServer(session.New(net, session.Config{}, nil), cfg)
	if err != nil {
		t.Fatalf("NewServer() error = %v", err)
	}
	t.Cleanup(func() { srv.Close() })
	return srv
}

func openTestRecorder(t *testing.T) (*recording.Recorder, string) {
	t.Helper()
	rec, err := recording.Open(t.TempDir())
	if err != nil {
		t.Fatalf("recording.Open() error = %v", err)
	}
	t.Cleanup(func() { rec.Close() })

	runID, err := rec.StartRun(t.Context(), 3, "")
	if err != nil {
		t.Fatalf("StartRun() error = %v", err)
	}
	return rec, runID
}

// fireSpeaker forces the text speaker for sym to fire on the next tick.
func fireSpeaker(srv *Server, sym string) {
	srv.session.Do(func(net *brain.Network) {
		net.Stimulate(net.Speakers(session.TextModality)[sym], 100)
	})
}
