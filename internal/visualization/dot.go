package visualization

import (
	"fmt"
	"strings"

	"github.com/nvandessel/brainsim/internal/brain"
	"github.com/nvandessel/brainsim/internal/models"
)

// Format specifies the output format for graph rendering.
type Format string

const (
	FormatDOT  Format = "dot"
	FormatJSON Format = "json"
	FormatHTML Format = "html"
)

// nodeColors maps neuron roles to DOT colors.
var nodeColors = map[models.NeuronRole]string{
	models.RoleSensory:     "steelblue",
	models.RoleReservoir:   "lightgray",
	models.RolePredictor:   "goldenrod",
	models.RoleSpeaker:     "mediumseagreen",
	models.RoleInterneuron: "white",
}

// RenderDOT produces a Graphviz DOT representation of the network.
// Excitatory edges are solid, inhibitory edges dashed, frozen edges bold.
func RenderDOT(net *brain.Network, opts Options) string {
	g := CollectGraph(net, opts)

	var b strings.Builder
	b.WriteString("digraph brainsim {\n")
	b.WriteString("  rankdir=LR;\n")
	b.WriteString("  node [shape=circle, style=filled, fontname=\"Helvetica\"];\n")
	b.WriteString("  edge [fontname=\"Helvetica\", fontsize=9];\n\n")

	for _, n := range g.Nodes {
		color := nodeColors[n.Role]
		if color == "" {
			color = "white"
		}
		shape := "circle"
		if !n.Excitatory {
			shape = "doublecircle"
		}
		fmt.Fprintf(&b, "  %q [fillcolor=%q, shape=%s, tooltip=\"last_spike=%d\"];\n",
			n.ID, color, shape, n.LastSpike)
	}
	b.WriteString("\n")

	for _, e := range g.Edges {
		style := "solid"
		if e.Weight < 0 {
			style = "dashed"
		}
		if e.Frozen {
			style += ",bold"
		}
		fmt.Fprintf(&b, "  %q -> %q [label=\"%.3f\", style=%q];\n",
			e.Source, e.Target, e.Weight, style)
	}

	b.WriteString("}\n")
	return b.String()
}

// RenderJSON produces a JSON-ready graph representation with nodes and edges.
func RenderJSON(net *brain.Network, opts Options) map[string]interface{} {
	g := CollectGraph(net, opts)
	return map[string]interface{}{
		"tick":       g.Tick,
		"nodes":      g.Nodes,
		"edges":      g.Edges,
		"node_count": len(g.Nodes),
		"edge_count": len(g.Edges),
	}
}
