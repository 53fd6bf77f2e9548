package brain

import (
	"fmt"
	"sort"
	"strings"

	"github.com/nvandessel/brainsim/internal/constants"
	"github.com/nvandessel/brainsim/internal/encoding"
	"github.com/nvandessel/brainsim/internal/models"
)

// AddNeuron appends an interneuron and returns its index.
func (n *Network) AddNeuron(label string, excitatory bool) int {
	return n.AddNeuronWithRole(label, excitatory, models.RoleInterneuron)
}

// AddNeuronWithRole appends a resting neuron with the given role and
// allocates its input buffer and incoming list.
func (n *Network) AddNeuronWithRole(label string, excitatory bool, role models.NeuronRole) int {
	idx := len(n.neurons)
	nr := models.NewNeuron(idx, excitatory, n.cfg.Neuron.Rest)
	nr.Label = label
	nr.Role = role
	n.neurons = append(n.neurons, nr)
	n.incoming = append(n.incoming, nil)
	n.buffers = append(n.buffers, nil)
	return idx
}

// Connect appends a synapse from pre to post with a random context mask and
// returns its index. A nil weight draws a magnitude in [0.01, 0.05) signed by
// the presynaptic polarity.
func (n *Network) Connect(pre, post int, weight *float64) int {
	n.checkNeuron(pre)
	var w float64
	if weight != nil {
		w = *weight
	} else {
		w = 0.01 + n.rng.Float64()*0.04
		if !n.neurons[pre].Excitatory {
			w = -w
		}
	}
	return n.ConnectMasked(pre, post, w, n.randomMask())
}

// ConnectMasked appends a synapse with an explicit context mask. A mask with
// bits beyond the configured context width is a programming error.
func (n *Network) ConnectMasked(pre, post int, weight float64, mask uint32) int {
	n.checkNeuron(pre)
	n.checkNeuron(post)
	if bits := n.cfg.Learning.ContextBits; bits < 32 && mask>>uint(bits) != 0 {
		panic(fmt.Sprintf("brain: mask %#x wider than %d context bits", mask, bits))
	}

	idx := len(n.synapses)
	n.synapses = append(n.synapses, models.NewSynapse(pre, post, weight, mask))
	n.neurons[pre].Out = append(n.neurons[pre].Out, idx)
	n.incoming[post] = append(n.incoming[post], idx)
	return idx
}

// randomMask draws uniformly over all masks of the configured width,
// including zero. A zero mask is never in context.
func (n *Network) randomMask() uint32 {
	bits := n.cfg.Learning.ContextBits
	if bits >= 32 {
		return n.rng.Uint32()
	}
	return uint32(n.rng.Int63n(1 << uint(bits)))
}

// WireBaseline connects every neuron to floor(BaselineFraction*N) distinct
// random targets with random weights. It returns the number of synapses added.
func (n *Network) WireBaseline() int {
	total := len(n.neurons)
	k := int(n.cfg.BaselineFraction * float64(total))
	if k <= 0 {
		return 0
	}

	added := 0
	for pre := 0; pre < total; pre++ {
		for _, post := range n.rng.Perm(total)[:k] {
			n.Connect(pre, post, nil)
			added++
		}
	}
	n.logger.Info("wired baseline connectivity", "synapses", added, "per_neuron", k)
	return added
}

func weightPtr(w float64) *float64 { return &w }

// RegisterModality builds the input population for enc and wires it into
// the reservoir.
//
// Symbol encoders (text) get a cached input set per symbol plus a predictor
// and a speaker per symbol, closing the loop
// sensory -> reservoir -> predictor -> speaker -> reservoir.
// Other encoders get RequiredNeurons input neurons addressed by offset.
func (n *Network) RegisterModality(name string, enc encoding.Encoder) error {
	if _, ok := n.modalities[name]; ok {
		return fmt.Errorf("registering %q: %w", name, ErrModalityExists)
	}
	if enc == nil {
		return fmt.Errorf("registering %q: nil encoder", name)
	}

	m := &modality{
		name:       name,
		encoder:    enc,
		sensory:    make(map[string][]int),
		predictors: make(map[string]int),
		speakers:   make(map[string]int),
	}

	if se, ok := enc.(encoding.SymbolEncoder); ok {
		if err := n.buildSymbolPopulations(m, se); err != nil {
			return err
		}
	} else {
		n.buildGenericPopulation(m)
	}

	n.modalities[name] = m
	n.order = append(n.order, name)
	n.logger.Info("registered modality",
		"modality", name,
		"kind", enc.Kind(),
		"symbols", len(m.symbols),
		"neurons", len(n.neurons))
	return nil
}

func (n *Network) buildSymbolPopulations(m *modality, enc encoding.SymbolEncoder) error {
	r := len(n.reservoir)
	for _, sym := range enc.Symbols() {
		code, err := enc.Encode(sym)
		if err != nil {
			return fmt.Errorf("registering %q: encoding %q: %w", m.name, sym, err)
		}

		inputs := make([]int, 0, len(code))
		for _, idx := range code {
			in := n.AddNeuronWithRole(enc.Label(sym, idx), true, models.RoleSensory)
			inputs = append(inputs, in)
			n.slots[in] = idx % r
			n.Connect(in, n.reservoir[idx%r], weightPtr(constants.TextInputToReservoirWeight))
		}
		m.sensory[sym] = inputs

		pred := n.AddNeuronWithRole("PRED_"+sym, true, models.RolePredictor)
		speak := n.AddNeuronWithRole("SPEAK_"+sym, true, models.RoleSpeaker)
		m.predictors[sym] = pred
		m.speakers[sym] = speak

		for i := 0; i < n.cfg.PredictorFanIn; i++ {
			n.Connect(n.randomReservoir(), pred, weightPtr(constants.ReservoirToPredictorWeight))
		}
		n.Connect(pred, speak, weightPtr(constants.PredictorToSpeakerWeight))
		for i := 0; i < n.cfg.SpeakerFanOut; i++ {
			n.Connect(speak, n.randomReservoir(), weightPtr(constants.SpeakerToReservoirWeight))
		}

		m.symbols = append(m.symbols, sym)
	}
	sort.Strings(m.symbols)
	return nil
}

func (n *Network) buildGenericPopulation(m *modality) {
	size := m.encoder.RequiredNeurons()
	m.offset = len(n.neurons)
	m.size = size
	prefix := strings.ToUpper(m.name)
	for i := 0; i < size; i++ {
		in := n.AddNeuronWithRole(fmt.Sprintf("%s_%d", prefix, i), true, models.RoleSensory)
		n.Connect(in, n.reservoir[i%len(n.reservoir)], weightPtr(constants.GenericInputToReservoirWeight))
	}
}

func (n *Network) randomReservoir() int {
	return n.reservoir[n.rng.Intn(len(n.reservoir))]
}
