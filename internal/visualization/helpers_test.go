package visualization

import (
	"math/rand"
	"testing"

	"github.com/nvandessel/brainsim/internal/brain"
	"github.com/nvandessel/brainsim/internal/config"
	"github.com/nvandessel/brainsim/internal/encoding"
	"github.com/nvandessel/brainsim/internal/session"
)

func newTestNetwork(t *testing.T) *brain.Network {
	t.Helper()
	cfg := config.DefaultNetwork()
	cfg.ExcitatoryInterneurons = 10
	cfg.InhibitoryInterneurons = 2
	cfg.ReservoirSize = 4
	cfg.BaselineFraction = 0.5
	cfg.Neuron.SpontaneousRate = 0

	net := brain.New(cfg, brain.WithRand(rand.New(rand.NewSource(5))), brain.WithStatusEvery(-1))
	enc, err := encoding.NewTextEncoder("ab", 64, 0.25, 16)
	if err != nil {
		t.Fatalf("NewTextEncoder() error = %v", err)
	}
	if err := net.RegisterModality(session.TextModality, enc); err != nil {
		t.Fatalf("RegisterModality() error = %v", err)
	}
	return net
}
