package session

import (
	"math/rand"
	"testing"

	"github.com/nvandessel/brainsim/internal/brain"
	"github.com/nvandessel/brainsim/internal/config"
	"github.com/nvandessel/brainsim/internal/encoding"
)

func newTestSession(t *testing.T) *Session {
	t.Helper()
	cfg := config.DefaultNetwork()
	cfg.ExcitatoryInterneurons = 20
	cfg.InhibitoryInterneurons = 5
	cfg.ReservoirSize = 10
	cfg.BaselineFraction = 0
	cfg.Neuron.SpontaneousRate = 0

	net := brain.New(cfg, brain.WithRand(rand.New(rand.NewSource(3))), brain.WithStatusEvery(-1))
	enc, err := encoding.NewTextEncoder("abc", 128, 0.25, 32)
	if err != nil {
		t.Fatalf("NewTextEncoder() error = %v", err)
	}
	if err := net.RegisterModality(TextModality, enc); err != nil {
		t.Fatalf("RegisterModality() error = %v", err)
	}
	return New(net, Config{}, nil)
}
