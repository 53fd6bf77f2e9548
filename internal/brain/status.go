package brain

import "math"

// Status is a point-in-time summary of the network.
type Status struct {
	Ticks          int64          `json:"ticks"`
	Spikes         int64          `json:"spikes"`
	Dopamine       float64        `json:"dopamine"`
	Baseline       float64        `json:"baseline"`
	FrozenSynapses int            `json:"frozen_synapses"`
	ActiveSynapses int            `json:"active_synapses"`
	TotalSynapses  int            `json:"total_synapses"`
	Neurons        int            `json:"neurons"`
	AvgAbsWeight   float64        `json:"avg_abs_weight"`
	Context        uint32         `json:"context"`
	Modalities     map[string]int `json:"modalities"`
}

// Status summarizes the network. Modalities counts mapped inputs per
// modality: cached symbols for symbol modalities, input neurons otherwise.
func (n *Network) Status() Status {
	st := Status{
		Ticks:          n.t,
		Spikes:         n.spikes,
		Dopamine:       n.dopamine,
		Baseline:       n.baseline,
		FrozenSynapses: n.frozen,
		TotalSynapses:  len(n.synapses),
		Neurons:        len(n.neurons),
		Context:        n.context,
		Modalities:     make(map[string]int, len(n.order)),
	}

	sum := 0.0
	for i := range n.synapses {
		sum += math.Abs(n.synapses[i].Weight)
	}
	if len(n.synapses) > 0 {
		st.AvgAbsWeight = sum / float64(len(n.synapses))
	}
	st.ActiveSynapses = len(n.synapses) - n.frozen

	for _, name := range n.order {
		m := n.modalities[name]
		if len(m.sensory) > 0 {
			st.Modalities[name] = len(m.sensory)
		} else {
			st.Modalities[name] = m.size
		}
	}
	return st
}
