// Package plasticity implements the synaptic learning rule: spike-timing
// dependent plasticity plus a dopamine-gated eligibility term, followed by
// consolidation of synapses whose weight stays large.
//
// Everything here is a pure function of a single synapse and the spike
// times of its endpoints. Context gating and iteration over the synapse
// arena live in package brain.
package plasticity

import (
	"math"

	"github.com/nvandessel/brainsim/internal/config"
	"github.com/nvandessel/brainsim/internal/constants"
	"github.com/nvandessel/brainsim/internal/models"
)

// Outcome reports what a learning step did to a synapse.
type Outcome struct {
	// Delta is the weight change applied.
	Delta float64

	// Froze is true if this step consolidated the synapse.
	Froze bool

	// Skipped is true if the synapse was frozen and left untouched.
	Skipped bool
}

// HebbianTerm returns the timing-dependent weight change for dt = post - pre.
//
//	+rate  if 0 < dt <= window   (pre before post)
//	-rate  if -window <= dt < 0  (post before pre)
//	0      otherwise
func HebbianTerm(dt int64, cfg config.LearningConfig) float64 {
	switch {
	case dt > 0 && dt <= cfg.STDPWindow:
		return cfg.LearningRate
	case dt < 0 && dt >= -cfg.STDPWindow:
		return -cfg.LearningRate
	default:
		return 0
	}
}

// RewardTerm returns the dopamine-modulated weight change.
func RewardTerm(dopamine, eligibility float64, cfg config.LearningConfig) float64 {
	return dopamine * eligibility * cfg.LearningRate
}

// Apply runs one in-context learning step on s at tick now.
//
// Weights are not clamped. The only bound is consolidation: once |w| has
// stayed above ConsolidateThreshold for ConsolidateTime ticks the synapse
// freezes and Apply becomes a no-op for it.
func Apply(s *models.Synapse, preLast, postLast int64, dopamine float64, now int64, cfg config.LearningConfig) Outcome {
	if s.Frozen {
		return Outcome{Skipped: true}
	}

	delta := HebbianTerm(postLast-preLast, cfg) + RewardTerm(dopamine, s.Eligibility, cfg)
	s.Weight += delta
	s.Eligibility *= cfg.EligibilityDecay

	out := Outcome{Delta: delta}
	out.Froze = Consolidate(s, now, cfg)
	return out
}

// Consolidate advances the consolidation timer of s and reports whether s
// froze at tick now. Dropping back to or below the threshold resets the timer.
func Consolidate(s *models.Synapse, now int64, cfg config.LearningConfig) bool {
	if s.Frozen {
		return false
	}
	if math.Abs(s.Weight) <= cfg.ConsolidateThreshold {
		s.AboveSince = constants.NotAbove
		return false
	}
	if s.AboveSince == constants.NotAbove {
		s.AboveSince = now
		return false
	}
	if now-s.AboveSince >= cfg.ConsolidateTime {
		s.Frozen = true
		return true
	}
	return false
}

// Stale handles a synapse that is out of the active context this tick.
// Under the preserve policy nothing happens. Under the decay policy an
// unfrozen trace still decays; the weight never changes.
func Stale(s *models.Synapse, cfg config.LearningConfig) {
	if s.Frozen || cfg.StaleEligibility != constants.EligibilityDecay {
		return
	}
	s.Eligibility *= cfg.EligibilityDecay
}
