// Package brain implements a discrete-time leaky integrate-and-fire network
// with context-gated, reward-modulated plasticity and a reservoir temporal
// memory.
//
// A Network is a single explicit state struct. Neurons and synapses live in
// two arenas and are addressed by integer index only; indices are never
// reused and nothing is ever deleted. A Network is not safe for concurrent
// use: callers serialize injection, reward and ticking (see package session).
package brain

import (
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/nvandessel/brainsim/internal/config"
	"github.com/nvandessel/brainsim/internal/encoding"
	"github.com/nvandessel/brainsim/internal/logging"
	"github.com/nvandessel/brainsim/internal/models"
)

var (
	// ErrUnknownModality is returned when a stimulus names a modality that was never registered.
	ErrUnknownModality = errors.New("unknown modality")

	// ErrModalityExists is returned when a modality name is registered twice.
	ErrModalityExists = errors.New("modality already registered")
)

// modality holds the populations built for one registered encoder.
type modality struct {
	name    string
	encoder encoding.Encoder

	// offset is the absolute index of the first input neuron for encoders
	// without a symbol cache. Relative index i maps to offset+i.
	offset int
	size   int

	// symbols is sorted so critic passes and logs are deterministic.
	symbols    []string
	sensory    map[string][]int
	predictors map[string]int
	speakers   map[string]int
}

// Network is the simulation state: neuron and synapse arenas, per-neuron
// input buffers, the reservoir, modality populations and global signals.
type Network struct {
	cfg    config.NetworkConfig
	rng    *rand.Rand
	logger *slog.Logger
	events *logging.EventLogger

	neurons  []models.Neuron
	synapses []models.Synapse
	incoming [][]int
	buffers  [][]float64

	reservoir []int

	// slots maps a sensory neuron to the reservoir position it kicks on firing.
	slots map[int]int

	modalities map[string]*modality
	order      []string

	t        int64
	context  uint32
	dopamine float64
	baseline float64
	spikes   int64
	frozen   int

	statusInterval int64
	skipBaseline   bool
}

// Option configures a Network at construction time.
type Option func(*Network)

// WithRand sets the random source. Tests pass a seeded source.
func WithRand(r *rand.Rand) Option {
	return func(n *Network) { n.rng = r }
}

// WithLogger sets the operational logger.
func WithLogger(l *slog.Logger) Option {
	return func(n *Network) {
		if l != nil {
			n.logger = l
		}
	}
}

// WithEventLogger sets the JSONL event sink. A nil logger disables events.
func WithEventLogger(el *logging.EventLogger) Option {
	return func(n *Network) { n.events = el }
}

// WithStatusEvery sets how many ticks pass between status log lines.
// Negative disables the periodic status line.
func WithStatusEvery(ticks int64) Option {
	return func(n *Network) { n.statusInterval = ticks }
}

// WithoutBaseline skips the sparse random baseline wiring, leaving only
// explicitly connected synapses.
func WithoutBaseline() Option {
	return func(n *Network) { n.skipBaseline = true }
}

// New allocates the interneurons and the reservoir, then wires the sparse
// random baseline. cfg is assumed valid (see config.NetworkConfig.Validate).
func New(cfg config.NetworkConfig, opts ...Option) *Network {
	n := &Network{
		cfg:        cfg,
		logger:     logging.Discard(),
		slots:      make(map[int]int),
		modalities: make(map[string]*modality),
		context:    1,
	}
	for _, opt := range opts {
		opt(n)
	}
	if n.rng == nil {
		seed := cfg.Seed
		if seed == 0 {
			seed = time.Now().UnixNano()
		}
		n.rng = rand.New(rand.NewSource(seed))
	}

	for i := 0; i < cfg.ExcitatoryInterneurons; i++ {
		n.AddNeuron("", true)
	}
	for i := 0; i < cfg.InhibitoryInterneurons; i++ {
		n.AddNeuron("", false)
	}
	n.logger.Info("created interneurons",
		"excitatory", cfg.ExcitatoryInterneurons,
		"inhibitory", cfg.InhibitoryInterneurons)

	n.reservoir = make([]int, 0, cfg.ReservoirSize)
	for i := 0; i < cfg.ReservoirSize; i++ {
		n.reservoir = append(n.reservoir, n.AddNeuronWithRole(fmt.Sprintf("RES_%d", i), true, models.RoleReservoir))
	}

	if !n.skipBaseline {
		n.WireBaseline()
	}

	n.logger.Info("network initialized", "neurons", len(n.neurons), "synapses", len(n.synapses))
	return n
}

// Config returns the parameters the network was built with.
func (n *Network) Config() config.NetworkConfig { return n.cfg }

// Time returns the current tick.
func (n *Network) Time() int64 { return n.t }

// Context returns the active context bitmask.
func (n *Network) Context() uint32 { return n.context }

// Dopamine returns the instantaneous dopamine level.
func (n *Network) Dopamine() float64 { return n.dopamine }

// Baseline returns the slow moving dopamine baseline.
func (n *Network) Baseline() float64 { return n.baseline }

// NumNeurons returns the size of the neuron arena.
func (n *Network) NumNeurons() int { return len(n.neurons) }

// NumSynapses returns the size of the synapse arena.
func (n *Network) NumSynapses() int { return len(n.synapses) }

// Reservoir returns a copy of the reservoir neuron indices.
func (n *Network) Reservoir() []int {
	out := make([]int, len(n.reservoir))
	copy(out, n.reservoir)
	return out
}

// Neuron returns a copy of neuron idx. Out is shared with the arena and must
// not be modified.
func (n *Network) Neuron(idx int) models.Neuron {
	n.checkNeuron(idx)
	return n.neurons[idx]
}

// LastSpike returns the last spike tick of neuron idx.
func (n *Network) LastSpike(idx int) int64 {
	n.checkNeuron(idx)
	return n.neurons[idx].LastSpike
}

// Synapse returns a copy of synapse idx.
func (n *Network) Synapse(idx int) models.Synapse {
	if idx < 0 || idx >= len(n.synapses) {
		panic(fmt.Sprintf("brain: synapse index %d out of range [0, %d)", idx, len(n.synapses)))
	}
	return n.synapses[idx]
}

// Synapses calls fn for every synapse in arena order until fn returns false.
func (n *Network) Synapses(fn func(idx int, s models.Synapse) bool) {
	for i := range n.synapses {
		if !fn(i, n.synapses[i]) {
			return
		}
	}
}

// Incoming returns a copy of the synapse indices targeting neuron idx.
func (n *Network) Incoming(idx int) []int {
	n.checkNeuron(idx)
	out := make([]int, len(n.incoming[idx]))
	copy(out, n.incoming[idx])
	return out
}

// Buffer returns a copy of the input queued for neuron idx.
func (n *Network) Buffer(idx int) []float64 {
	n.checkNeuron(idx)
	out := make([]float64, len(n.buffers[idx]))
	copy(out, n.buffers[idx])
	return out
}

// Stimulate queues amount into neuron idx for the next integration step.
func (n *Network) Stimulate(idx int, amount float64) {
	n.checkNeuron(idx)
	n.buffers[idx] = append(n.buffers[idx], amount)
}

// Modalities returns registered modality names in registration order.
func (n *Network) Modalities() []string {
	out := make([]string, len(n.order))
	copy(out, n.order)
	return out
}

// Sensory returns a copy of the cached input neurons per symbol for a modality.
func (n *Network) Sensory(name string) map[string][]int {
	m, ok := n.modalities[name]
	if !ok {
		return nil
	}
	out := make(map[string][]int, len(m.sensory))
	for sym, idx := range m.sensory {
		out[sym] = append([]int(nil), idx...)
	}
	return out
}

// Predictors returns the predictor neuron per symbol for a modality.
func (n *Network) Predictors(name string) map[string]int {
	m, ok := n.modalities[name]
	if !ok {
		return nil
	}
	return copyIndex(m.predictors)
}

// Speakers returns the speaker neuron per symbol for a modality.
func (n *Network) Speakers(name string) map[string]int {
	m, ok := n.modalities[name]
	if !ok {
		return nil
	}
	return copyIndex(m.speakers)
}

// InputRange returns the absolute index range [start, end) of a modality's
// generic input population. ok is false for unknown or symbol-cached modalities.
func (n *Network) InputRange(name string) (start, end int, ok bool) {
	m, found := n.modalities[name]
	if !found || m.size == 0 {
		return 0, 0, false
	}
	return m.offset, m.offset + m.size, true
}

func copyIndex(in map[string]int) map[string]int {
	out := make(map[string]int, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

// checkNeuron panics on an index outside the arena. Indices come from the
// network itself, so a bad one is a programming error.
func (n *Network) checkNeuron(idx int) {
	if idx < 0 || idx >= len(n.neurons) {
		panic(fmt.Sprintf("brain: neuron index %d out of range [0, %d)", idx, len(n.neurons)))
	}
}
