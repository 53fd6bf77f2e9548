package models

import (
	"strconv"

	"github.com/nvandessel/brainsim/internal/constants"
)

// NeuronRole describes what part of the network a neuron belongs to.
type NeuronRole string

const (
	RoleInterneuron NeuronRole = "interneuron" // Baseline recurrent substrate
	RoleReservoir   NeuronRole = "reservoir"   // Temporal memory pool
	RoleSensory     NeuronRole = "sensory"     // Input population of a modality
	RolePredictor   NeuronRole = "predictor"   // Predicts the next sensory spike for a symbol
	RoleSpeaker     NeuronRole = "speaker"     // Output neuron observed by I/O adapters
)

// AllRoles returns every neuron role in wiring order.
func AllRoles() []NeuronRole {
	return []NeuronRole{RoleInterneuron, RoleReservoir, RoleSensory, RolePredictor, RoleSpeaker}
}

// Neuron is a leaky integrate-and-fire unit. Index is its permanent arena slot
// in the owning network and is never reused.
type Neuron struct {
	// Index is the neuron's handle in the network arena.
	Index int `json:"index"`

	// Excitatory is fixed at creation; inhibitory neurons draw negative weights.
	Excitatory bool `json:"excitatory"`

	// V is the membrane potential (mV).
	V float64 `json:"v"`

	// Refractory is the remaining refractory time in ticks. Zero means the
	// neuron is integrating.
	Refractory float64 `json:"refractory"`

	// LastSpike is the tick of the most recent spike, or NeverFired.
	LastSpike int64 `json:"last_spike"`

	// Label is an optional human-readable name, e.g. "PRED_a".
	Label string `json:"label,omitempty"`

	// Role records which population the neuron was built for.
	Role NeuronRole `json:"role"`

	// Out holds indices into the network's synapse arena for which this
	// neuron is the presynaptic side. The network owns the synapses.
	Out []int `json:"-"`
}

// NewNeuron returns a resting neuron at the given index.
func NewNeuron(index int, excitatory bool, rest float64) Neuron {
	return Neuron{
		Index:      index,
		Excitatory: excitatory,
		V:          rest,
		LastSpike:  constants.NeverFired,
		Role:       RoleInterneuron,
	}
}

// HasFired reports whether the neuron has spiked at least once.
func (n Neuron) HasFired() bool {
	return n.LastSpike >= 0
}

// InRefractory reports whether the neuron is still blocked after a spike.
func (n Neuron) InRefractory() bool {
	return n.Refractory > 0
}

// Name returns the label, or a generated "N<index>" name for unlabeled neurons.
func (n Neuron) Name() string {
	if n.Label != "" {
		return n.Label
	}
	return "N" + strconv.Itoa(n.Index)
}
