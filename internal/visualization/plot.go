package visualization

import (
	"fmt"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"github.com/nvandessel/brainsim/internal/brain"
	"github.com/nvandessel/brainsim/internal/models"
)

// Plot dimensions.
const (
	PlotWidth  = 8 * vg.Inch
	PlotHeight = 4 * vg.Inch
)

// Sample is one point of a recorded run trace.
type Sample struct {
	Tick      int64
	Dopamine  float64
	Baseline  float64
	AvgWeight float64
	Frozen    int
}

// SampleFromStatus converts a status snapshot to a plot sample.
func SampleFromStatus(st brain.Status) Sample {
	return Sample{
		Tick:      st.Ticks,
		Dopamine:  st.Dopamine,
		Baseline:  st.Baseline,
		AvgWeight: st.AvgAbsWeight,
		Frozen:    st.FrozenSynapses,
	}
}

// PlotTrace renders dopamine, baseline and mean |weight| over ticks. The
// output format follows the file extension (.png, .svg, .pdf).
func PlotTrace(samples []Sample, title, path string) error {
	if len(samples) == 0 {
		return fmt.Errorf("no samples to plot")
	}

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "tick"
	p.Y.Label.Text = "value"

	series := []struct {
		name string
		get  func(Sample) float64
	}{
		{"dopamine", func(s Sample) float64 { return s.Dopamine }},
		{"baseline", func(s Sample) float64 { return s.Baseline }},
		{"avg |w|", func(s Sample) float64 { return s.AvgWeight }},
	}

	for i, sr := range series {
		xy := make(plotter.XYs, len(samples))
		for j, s := range samples {
			xy[j].X = float64(s.Tick)
			xy[j].Y = sr.get(s)
		}
		l, err := plotter.NewLine(xy)
		if err != nil {
			return fmt.Errorf("line %s: %w", sr.name, err)
		}
		l.LineStyle.Width = vg.Points(1)
		l.LineStyle.Color = plotutil.Color(i)
		p.Add(l)
		p.Legend.Add(sr.name, l)
	}
	p.Legend.Top = true

	if err := p.Save(PlotWidth, PlotHeight, path); err != nil {
		return fmt.Errorf("save plot: %w", err)
	}
	return nil
}

// PlotWeights renders a histogram of synapse weights.
func PlotWeights(net *brain.Network, bins int, path string) error {
	var vals plotter.Values
	net.Synapses(func(_ int, s models.Synapse) bool {
		if !math.IsNaN(s.Weight) {
			vals = append(vals, s.Weight)
		}
		return true
	})
	if len(vals) == 0 {
		return fmt.Errorf("network has no synapses")
	}
	if bins <= 0 {
		bins = 50
	}

	p := plot.New()
	p.Title.Text = fmt.Sprintf("synapse weights at t=%d", net.Time())
	p.X.Label.Text = "weight"
	p.Y.Label.Text = "count"

	h, err := plotter.NewHist(vals, bins)
	if err != nil {
		return fmt.Errorf("histogram: %w", err)
	}
	p.Add(h)

	if err := p.Save(PlotWidth, PlotHeight, path); err != nil {
		return fmt.Errorf("save plot: %w", err)
	}
	return nil
}
