package visualization

import (
	"bytes"
	"fmt"
	"html/template"
	"sort"

	"github.com/nvandessel/brainsim/internal/brain"
)

var pageTemplate = template.Must(template.New("status").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
{{if .Refresh}}<meta http-equiv="refresh" content="{{.Refresh}}">{{end}}
<title>brainsim t={{.Status.Ticks}}</title>
<style>
body { font-family: Helvetica, sans-serif; margin: 2em; }
table { border-collapse: collapse; margin-bottom: 2em; }
td, th { border: 1px solid #ccc; padding: 2px 8px; text-align: left; }
.neg { color: #b22; }
.frozen { font-weight: bold; }
</style>
</head>
<body>
<h1>brainsim</h1>
<table>
<tr><th>tick</th><td>{{.Status.Ticks}}</td></tr>
<tr><th>spikes</th><td>{{.Status.Spikes}}</td></tr>
<tr><th>dopamine</th><td>{{printf "%.4f" .Status.Dopamine}}</td></tr>
<tr><th>baseline</th><td>{{printf "%.4f" .Status.Baseline}}</td></tr>
<tr><th>frozen synapses</th><td>{{.Status.FrozenSynapses}} / {{.Status.TotalSynapses}}</td></tr>
<tr><th>avg |w|</th><td>{{printf "%.4f" .Status.AvgAbsWeight}}</td></tr>
<tr><th>context</th><td>{{printf "%#x" .Status.Context}}</td></tr>
</table>
<h2>Strongest synapses</h2>
<table>
<tr><th>pre</th><th>post</th><th>weight</th><th>mask</th></tr>
{{range .Edges}}<tr class="{{if .Frozen}}frozen{{end}}"><td>{{.Source}}</td><td>{{.Target}}</td><td{{if lt .Weight 0.0}} class="neg"{{end}}>{{printf "%.4f" .Weight}}</td><td>{{printf "%#x" .Mask}}</td></tr>
{{end}}</table>
</body>
</html>
`))

type pageData struct {
	Status  brain.Status
	Edges   []Edge
	Refresh int
}

// RenderHTML produces a self-contained status page listing the top edges by
// absolute weight. refresh > 0 adds an auto-reload interval in seconds.
func RenderHTML(net *brain.Network, opts Options, top, refresh int) ([]byte, error) {
	g := CollectGraph(net, opts)
	edges := strongest(g.Edges, top)

	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, pageData{Status: net.Status(), Edges: edges, Refresh: refresh}); err != nil {
		return nil, fmt.Errorf("execute HTML template: %w", err)
	}
	return buf.Bytes(), nil
}

// strongest returns up to n edges by descending |weight|. n <= 0 keeps all.
func strongest(edges []Edge, n int) []Edge {
	out := append([]Edge(nil), edges...)
	sort.SliceStable(out, func(i, j int) bool {
		return abs(out[i].Weight) > abs(out[j].Weight)
	})
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}
