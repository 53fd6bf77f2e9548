package brain

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/nvandessel/brainsim/internal/constants"
	"github.com/nvandessel/brainsim/internal/logging"
	"github.com/nvandessel/brainsim/internal/models"
)

// Tick advances the network by one step of DT ticks.
//
// All neurons integrate before any neuron fires, so a spike emitted this
// tick lands in a buffer that is drained at the start of the next one.
func (n *Network) Tick() {
	// Step 1: Spontaneous reservoir activity.
	n.spontaneous()

	// Step 2: Leak and integrate, or count down refractory time.
	n.integrate()

	// Step 3: Fire and propagate through in-context synapses.
	fired := n.fire()

	// Step 4: Plasticity.
	n.learn()

	// Step 5: Critic, then mean-center and decay dopamine.
	n.runCritic()
	n.updateDopamine()

	// Step 6: Advance time and rotate the context register.
	n.advance(fired)
}

// TickN runs count ticks.
func (n *Network) TickN(count int) {
	for i := 0; i < count; i++ {
		n.Tick()
	}
}

func (n *Network) spontaneous() {
	nc := n.cfg.Neuron
	if len(n.reservoir) == 0 || nc.SpontaneousRate <= 0 {
		return
	}
	if n.rng.Float64() < nc.SpontaneousRate {
		idx := n.randomReservoir()
		n.buffers[idx] = append(n.buffers[idx], nc.SpontaneousInput)
		n.trace("spontaneous activity", "neuron", n.neurons[idx].Name())
	}
}

func (n *Network) integrate() {
	nc := n.cfg.Neuron
	dt := float64(nc.DT)
	leak := dt / nc.TauM

	for i := range n.neurons {
		nr := &n.neurons[i]
		if nr.Refractory > 0 {
			// Input keeps queueing while refractory and lands once integration resumes.
			nr.Refractory -= dt
			if nr.Refractory < 0 {
				nr.Refractory = 0
			}
			continue
		}

		nr.V += (nc.Rest - nr.V) * leak
		for _, in := range n.buffers[i] {
			nr.V += in
		}
		n.buffers[i] = n.buffers[i][:0]
	}
}

// fire spikes every integrating neuron at or above threshold and returns their indices.
func (n *Network) fire() []int {
	var fired []int
	for i := range n.neurons {
		nr := &n.neurons[i]
		if nr.V < n.cfg.Neuron.Threshold || nr.Refractory != 0 {
			continue
		}
		n.spike(nr)
		fired = append(fired, i)
	}
	n.spikes += int64(len(fired))
	return fired
}

func (n *Network) spike(nr *models.Neuron) {
	nr.LastSpike = n.t
	nr.V = n.cfg.Neuron.Reset
	nr.Refractory = n.cfg.Neuron.RefractoryPeriod

	transmitted := 0
	for _, si := range nr.Out {
		s := &n.synapses[si]
		if s.InContext(n.context) {
			n.buffers[s.Post] = append(n.buffers[s.Post], s.Weight)
			transmitted++
		}
		s.Eligibility = 1.0
	}

	switch nr.Role {
	case models.RolePredictor, models.RoleSpeaker:
		n.logger.Debug("output neuron fired", "neuron", nr.Label, "tick", n.t, "transmitted", transmitted)
	case models.RoleSensory:
		if slot, ok := n.slots[nr.Index]; ok && n.cfg.SensoryReservoirKick {
			res := n.reservoir[slot]
			n.buffers[res] = append(n.buffers[res], constants.StimulusInput)
		}
	}
	if n.tracing() {
		n.trace("spike", "neuron", nr.Name(), "tick", n.t)
	}
}

func (n *Network) advance(fired []int) {
	if len(fired) > 0 && n.t%constants.SpikeLogEvery == 0 {
		names := make([]string, 0, 5)
		for _, idx := range fired {
			if len(names) == cap(names) {
				break
			}
			names = append(names, n.neurons[idx].Name())
		}
		n.logger.Debug("spikes", "tick", n.t, "count", len(fired), "sample", names)
		n.events.Log(logging.EventSpikes, n.t, map[string]any{"count": len(fired), "sample": names})
	}

	n.t += n.cfg.Neuron.DT

	if n.cfg.Learning.ContextPeriod > 0 && n.t%n.cfg.Learning.ContextPeriod == 0 {
		n.shiftContext()
	}

	if every := n.statusEvery(); every > 0 && n.t%every == 0 {
		n.logStatus()
	}
}

// shiftContext moves the context register one bit left, wrapping to 1 once
// it would leave the configured width.
func (n *Network) shiftContext() {
	old := n.context
	next := uint64(n.context) << 1
	if next >= uint64(1)<<uint(n.cfg.Learning.ContextBits) {
		next = 1
	}
	n.context = uint32(next)
	n.logger.Info("context shift", "tick", n.t, "from", fmt.Sprintf("%#04x", old), "to", fmt.Sprintf("%#04x", n.context))
	n.events.Log(logging.EventContextShift, n.t, map[string]any{"from": old, "to": n.context})
}

func (n *Network) statusEvery() int64 {
	if n.statusInterval != 0 {
		return n.statusInterval
	}
	return constants.DefaultStatusEvery
}

func (n *Network) tracing() bool {
	return n.logger.Enabled(context.Background(), logging.LevelTrace)
}

func (n *Network) trace(msg string, args ...any) {
	n.logger.Log(context.Background(), logging.LevelTrace, msg, args...)
}

func (n *Network) logStatus() {
	st := n.Status()
	attrs := []any{
		"tick", st.Ticks,
		"spikes", st.Spikes,
		"dopamine", fmt.Sprintf("%.3f", st.Dopamine),
		"baseline", fmt.Sprintf("%.3f", st.Baseline),
		"active_synapses", st.ActiveSynapses,
		"total_synapses", st.TotalSynapses,
		"avg_abs_weight", fmt.Sprintf("%.3f", st.AvgAbsWeight),
		"context", fmt.Sprintf("%#04x", st.Context),
	}
	for _, name := range n.order {
		attrs = append(attrs, slog.Int(name+"_inputs", st.Modalities[name]))
	}
	n.logger.Info("status", attrs...)
	n.events.Log(logging.EventStatus, n.t, map[string]any{
		"spikes":   st.Spikes,
		"dopamine": st.Dopamine,
		"baseline": st.Baseline,
		"frozen":   st.FrozenSynapses,
		"context":  st.Context,
	})
}
