package visualization

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/nvandessel/brainsim/internal/models"
)

func TestCollectGraph_DefaultSkipsInterneurons(t *testing.T) {
	net := newTestNetwork(t)
	g := CollectGraph(net, Options{})

	if len(g.Nodes) == 0 {
		t.Fatal("expected nodes")
	}
	for _, n := range g.Nodes {
		if n.Role == models.RoleInterneuron {
			t.Errorf("interneuron %s rendered by default", n.ID)
		}
	}

	found := false
	for _, e := range g.Edges {
		if e.Source == "PRED_a" && e.Target == "SPEAK_a" {
			found = true
		}
	}
	if !found {
		t.Error("expected PRED_a -> SPEAK_a edge")
	}
}

func TestCollectGraph_Filters(t *testing.T) {
	net := newTestNetwork(t)

	tests := []struct {
		name  string
		opts  Options
		check func(t *testing.T, g Graph)
	}{
		{
			name: "roles",
			opts: Options{Roles: []models.NeuronRole{models.RolePredictor, models.RoleSpeaker}},
			check: func(t *testing.T, g Graph) {
				if len(g.Nodes) != 4 {
					t.Errorf("nodes = %d, want 4", len(g.Nodes))
				}
				if len(g.Edges) != 2 {
					t.Errorf("edges = %d, want 2 predictor->speaker edges", len(g.Edges))
				}
			},
		},
		{
			name: "min weight",
			opts: Options{MinWeight: 0.7},
			check: func(t *testing.T, g Graph) {
				for _, e := range g.Edges {
					if e.Weight < 0.7 {
						t.Errorf("edge %s->%s weight %f below minimum", e.Source, e.Target, e.Weight)
					}
				}
				if len(g.Edges) == 0 {
					t.Error("expected strong edges to survive")
				}
			},
		},
		{
			name: "frozen only on fresh network",
			opts: Options{FrozenOnly: true},
			check: func(t *testing.T, g Graph) {
				if len(g.Edges) != 0 {
					t.Errorf("edges = %d, want 0", len(g.Edges))
				}
			},
		},
		{
			name: "interneurons requested",
			opts: Options{Roles: []models.NeuronRole{models.RoleInterneuron}},
			check: func(t *testing.T, g Graph) {
				if len(g.Nodes) != 12 {
					t.Errorf("nodes = %d, want 12", len(g.Nodes))
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.check(t, CollectGraph(net, tt.opts))
		})
	}
}

func TestRenderDOT(t *testing.T) {
	net := newTestNetwork(t)
	dot := RenderDOT(net, Options{})

	if !strings.HasPrefix(dot, "digraph brainsim {") {
		t.Error("expected digraph header")
	}
	if !strings.HasSuffix(strings.TrimSpace(dot), "}") {
		t.Error("expected closing brace")
	}
	if !strings.Contains(dot, `"PRED_a" -> "SPEAK_a" [label="0.800"`) {
		t.Errorf("missing predictor edge in:\n%s", dot)
	}
	if !strings.Contains(dot, `"SPEAK_b" [fillcolor="mediumseagreen"`) {
		t.Error("speaker not colored")
	}
}

func TestRenderJSON(t *testing.T) {
	net := newTestNetwork(t)
	out := RenderJSON(net, Options{})

	data, err := json.Marshal(out)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var decoded struct {
		Tick      int64 `json:"tick"`
		NodeCount int   `json:"node_count"`
		EdgeCount int   `json:"edge_count"`
		Nodes     []Node
	}
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if decoded.NodeCount != len(decoded.Nodes) || decoded.NodeCount == 0 {
		t.Errorf("node_count = %d, nodes = %d", decoded.NodeCount, len(decoded.Nodes))
	}
	if decoded.EdgeCount == 0 {
		t.Error("expected edges")
	}
}

func TestRenderHTML(t *testing.T) {
	net := newTestNetwork(t)
	net.TickN(3)

	page, err := RenderHTML(net, Options{}, 5, 2)
	if err != nil {
		t.Fatalf("RenderHTML: %v", err)
	}
	html := string(page)
	if !strings.Contains(html, "<title>brainsim t=3</title>") {
		t.Error("missing tick in title")
	}
	if !strings.Contains(html, `http-equiv="refresh"`) {
		t.Error("missing refresh")
	}
	if got := strings.Count(html, "<tr class="); got != 5 {
		t.Errorf("edge rows = %d, want 5", got)
	}
}

func TestStrongest(t *testing.T) {
	edges := []Edge{{Weight: 0.1}, {Weight: -0.9}, {Weight: 0.5}}
	got := strongest(edges, 2)
	if len(got) != 2 || got[0].Weight != -0.9 || got[1].Weight != 0.5 {
		t.Errorf("strongest = %+v", got)
	}
	if edges[0].Weight != 0.1 {
		t.Error("input reordered")
	}
	if len(strongest(edges, 0)) != 3 {
		t.Error("n=0 should keep all")
	}
}
