package models

import "github.com/nvandessel/brainsim/internal/constants"

// Synapse is a directed, plastic connection between two neurons. Pre and Post
// are arena indices and never change after creation.
type Synapse struct {
	Pre  int `json:"pre"`
	Post int `json:"post"`

	// Weight is added to the postsynaptic input buffer when the synapse
	// transmits. Its sign usually follows the presynaptic polarity.
	Weight float64 `json:"weight"`

	// Mask is the context bit pattern the synapse is active in.
	Mask uint32 `json:"mask"`

	// Eligibility is set to 1 on a presynaptic spike and decays while the
	// synapse is in context.
	Eligibility float64 `json:"eligibility"`

	// Frozen synapses are consolidated into long-term memory and no longer learn.
	Frozen bool `json:"frozen"`

	// AboveSince is the tick at which |Weight| last crossed the consolidation
	// threshold, or NotAbove.
	AboveSince int64 `json:"above_since"`
}

// NewSynapse returns an unfrozen synapse with an empty eligibility trace.
func NewSynapse(pre, post int, weight float64, mask uint32) Synapse {
	return Synapse{
		Pre:        pre,
		Post:       post,
		Weight:     weight,
		Mask:       mask,
		AboveSince: constants.NotAbove,
	}
}

// InContext reports whether the synapse shares a bit with the context register.
func (s Synapse) InContext(context uint32) bool {
	return s.Mask&context != 0
}
