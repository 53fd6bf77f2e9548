package brain

import (
	"github.com/nvandessel/brainsim/internal/critic"
	"github.com/nvandessel/brainsim/internal/logging"
	"github.com/nvandessel/brainsim/internal/plasticity"
)

// learn runs one plasticity pass over the synapse arena. Frozen synapses are
// skipped. Out-of-context synapses neither learn nor, under the default
// policy, decay their eligibility.
func (n *Network) learn() {
	cfg := n.cfg.Learning
	newlyFrozen := 0

	for i := range n.synapses {
		s := &n.synapses[i]
		if s.Frozen {
			continue
		}
		if !s.InContext(n.context) {
			plasticity.Stale(s, cfg)
			continue
		}

		out := plasticity.Apply(s,
			n.neurons[s.Pre].LastSpike,
			n.neurons[s.Post].LastSpike,
			n.dopamine, n.t, cfg)
		if out.Froze {
			newlyFrozen++
			n.events.Log(logging.EventFreeze, n.t, map[string]any{
				"synapse": i,
				"pre":     s.Pre,
				"post":    s.Post,
				"weight":  s.Weight,
			})
		}
	}

	if newlyFrozen > 0 {
		n.frozen += newlyFrozen
		n.logger.Info("synapses frozen", "tick", n.t, "new", newlyFrozen, "total", n.frozen)
	}
}

// runCritic rewards or punishes each predictor by how closely its last spike
// matches the first sensory spike of its symbol.
func (n *Network) runCritic() {
	for _, name := range n.order {
		m := n.modalities[name]
		for _, sym := range m.symbols {
			pred, ok := m.predictors[sym]
			if !ok {
				continue
			}
			inputs := m.sensory[sym]
			times := make([]int64, len(inputs))
			for i, idx := range inputs {
				times[i] = n.neurons[idx].LastSpike
			}

			reward, err, ok := critic.Evaluate(times, n.neurons[pred].LastSpike, n.cfg.Reward)
			if !ok || reward == 0 {
				continue
			}
			n.logger.Debug("prediction",
				"modality", name,
				"symbol", sym,
				"tier", critic.Classify(err, n.cfg.Reward),
				"error", err)
			n.addReward(reward, "critic")
		}
	}
}

// updateDopamine tracks the baseline as an exponential moving average, then
// mean-centers and decays the instantaneous level.
func (n *Network) updateDopamine() {
	rc := n.cfg.Reward
	n.baseline = (1-rc.BaselineRate)*n.baseline + rc.BaselineRate*n.dopamine
	n.dopamine -= n.baseline
	n.dopamine *= rc.DopamineDecay
}

// Reward adds amount to the instantaneous dopamine level.
func (n *Network) Reward(amount float64) {
	n.addReward(amount, "external")
}

func (n *Network) addReward(amount float64, source string) {
	before := n.dopamine
	n.dopamine += amount
	n.logger.Debug("reward", "amount", amount, "source", source, "from", before, "to", n.dopamine)
	n.events.Log(logging.EventReward, n.t, map[string]any{"amount": amount, "source": source})
}
