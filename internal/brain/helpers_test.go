package brain

import (
	"math/rand"
	"testing"

	"github.com/nvandessel/brainsim/internal/config"
	"github.com/nvandessel/brainsim/internal/encoding"
)

// drive is large enough to push any resting neuron over threshold in one tick.
const drive = 100.0

// quietConfig returns a 10 neuron network config with no spontaneous activity.
func quietConfig() config.NetworkConfig {
	cfg := config.DefaultNetwork()
	cfg.ExcitatoryInterneurons = 8
	cfg.InhibitoryInterneurons = 0
	cfg.ReservoirSize = 2
	cfg.BaselineFraction = 0
	cfg.Neuron.SpontaneousRate = 0
	return cfg
}

func newQuiet(t *testing.T, cfg config.NetworkConfig) *Network {
	t.Helper()
	return New(cfg, WithRand(rand.New(rand.NewSource(1))), WithoutBaseline(), WithStatusEvery(-1))
}

func textEncoder(t *testing.T, alphabet string) *encoding.TextEncoder {
	t.Helper()
	enc, err := encoding.NewTextEncoder(alphabet, 128, 0.25, 32)
	if err != nil {
		t.Fatalf("NewTextEncoder() error = %v", err)
	}
	return enc
}

// buffers snapshots every input buffer.
func buffers(n *Network) [][]float64 {
	out := make([][]float64, n.NumNeurons())
	for i := range out {
		out[i] = n.Buffer(i)
	}
	return out
}

func mustPanic(t *testing.T, name string, fn func()) {
	t.Helper()
	defer func() {
		if recover() == nil {
			t.Errorf("%s: expected panic", name)
		}
	}()
	fn()
}
