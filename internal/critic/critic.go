// Package critic turns prediction timing errors into reward. A predictor
// neuron that fires together with the first sensory spike of its symbol is
// rewarded; one that is far off is punished.
package critic

import "github.com/nvandessel/brainsim/internal/config"

// Tier names the reward band an error fell into.
type Tier string

const (
	TierPerfect Tier = "perfect"
	TierGood    Tier = "good"
	TierNeutral Tier = "neutral"
	TierBad     Tier = "bad"
)

// Classify returns the reward tier for an absolute timing error in ticks.
func Classify(err int64, cfg config.RewardConfig) Tier {
	switch {
	case err == 0:
		return TierPerfect
	case err <= cfg.GoodError:
		return TierGood
	case err > cfg.BadError:
		return TierBad
	default:
		return TierNeutral
	}
}

// Reward returns the dopamine delivered for an absolute timing error.
func Reward(err int64, cfg config.RewardConfig) float64 {
	switch Classify(err, cfg) {
	case TierPerfect:
		return cfg.PerfectReward
	case TierGood:
		return cfg.GoodReward
	case TierBad:
		return cfg.BadReward
	default:
		return 0
	}
}

// Evaluate compares the earliest sensory spike of a symbol with its
// predictor's last spike. ok is false when there are no sensors or either
// side has never fired, in which case no reward applies.
func Evaluate(sensorLast []int64, predLast int64, cfg config.RewardConfig) (reward float64, err int64, ok bool) {
	if len(sensorLast) == 0 || predLast < 0 {
		return 0, 0, false
	}
	actual := sensorLast[0]
	for _, t := range sensorLast[1:] {
		if t < actual {
			actual = t
		}
	}
	if actual < 0 {
		return 0, 0, false
	}

	err = actual - predLast
	if err < 0 {
		err = -err
	}
	return Reward(err, cfg), err, true
}
