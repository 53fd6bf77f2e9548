// Package visualization renders network structure and run traces in
// various output formats.
package visualization

import (
	"math"
	"sort"

	"github.com/nvandessel/brainsim/internal/brain"
	"github.com/nvandessel/brainsim/internal/models"
)

// Options selects which part of the network is rendered. A full network has
// tens of thousands of synapses, so the default view drops interneurons and
// weak edges.
type Options struct {
	// Roles lists the neuron roles to include. Empty means every role
	// except interneurons.
	Roles []models.NeuronRole

	// MinWeight drops synapses with |weight| below it.
	MinWeight float64

	// FrozenOnly keeps only consolidated synapses.
	FrozenOnly bool
}

// Node is one rendered neuron.
type Node struct {
	ID         string            `json:"id"`
	Index      int               `json:"index"`
	Role       models.NeuronRole `json:"role"`
	Excitatory bool              `json:"excitatory"`
	LastSpike  int64             `json:"last_spike"`
}

// Edge is one rendered synapse.
type Edge struct {
	Source string  `json:"source"`
	Target string  `json:"target"`
	Weight float64 `json:"weight"`
	Mask   uint32  `json:"mask"`
	Frozen bool    `json:"frozen"`
}

// Graph is the filtered view of a network.
type Graph struct {
	Tick  int64  `json:"tick"`
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
}

func (o Options) wants(role models.NeuronRole) bool {
	if len(o.Roles) == 0 {
		return role != models.RoleInterneuron
	}
	for _, r := range o.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// CollectGraph extracts the nodes and edges selected by opts. The caller must
// own net for the duration of the call (see session.Session.Do).
func CollectGraph(net *brain.Network, opts Options) Graph {
	g := Graph{Tick: net.Time()}
	names := make(map[int]string)

	for i := 0; i < net.NumNeurons(); i++ {
		nr := net.Neuron(i)
		if !opts.wants(nr.Role) {
			continue
		}
		names[i] = nr.Name()
		g.Nodes = append(g.Nodes, Node{
			ID:         nr.Name(),
			Index:      i,
			Role:       nr.Role,
			Excitatory: nr.Excitatory,
			LastSpike:  nr.LastSpike,
		})
	}

	net.Synapses(func(_ int, s models.Synapse) bool {
		src, okSrc := names[s.Pre]
		dst, okDst := names[s.Post]
		if !okSrc || !okDst {
			return true
		}
		if math.Abs(s.Weight) < opts.MinWeight || (opts.FrozenOnly && !s.Frozen) {
			return true
		}
		g.Edges = append(g.Edges, Edge{
			Source: src,
			Target: dst,
			Weight: s.Weight,
			Mask:   s.Mask,
			Frozen: s.Frozen,
		})
		return true
	})

	sort.SliceStable(g.Edges, func(i, j int) bool {
		if g.Edges[i].Source != g.Edges[j].Source {
			return g.Edges[i].Source < g.Edges[j].Source
		}
		return g.Edges[i].Target < g.Edges[j].Target
	})
	return g
}
