package simulation

import (
	"math"
	"strings"
	"testing"

	"github.com/nvandessel/brainsim/internal/models"
)

// AssertNoNaN asserts that no synapse weight or tracked statistic went NaN or infinite.
func AssertNoNaN(t *testing.T, result SimulationResult) {
	t.Helper()
	for _, snap := range result.Snapshots {
		st := snap.Status
		for name, v := range map[string]float64{
			"dopamine":   st.Dopamine,
			"baseline":   st.Baseline,
			"avg_weight": st.AvgAbsWeight,
		} {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				t.Errorf("AssertNoNaN: tick %d: %s = %v", st.Ticks, name, v)
			}
		}
	}
	result.Network.Synapses(func(idx int, s models.Synapse) bool {
		if math.IsNaN(s.Weight) || math.IsInf(s.Weight, 0) {
			t.Errorf("AssertNoNaN: synapse %d weight = %v", idx, s.Weight)
			return false
		}
		return true
	})
}

// AssertFrozenMonotonic asserts that the frozen synapse count never decreases.
func AssertFrozenMonotonic(t *testing.T, result SimulationResult) {
	t.Helper()
	prev := 0
	for _, snap := range result.Snapshots {
		if snap.Status.FrozenSynapses < prev {
			t.Errorf("AssertFrozenMonotonic: tick %d: frozen %d < previous %d",
				snap.Status.Ticks, snap.Status.FrozenSynapses, prev)
		}
		prev = snap.Status.FrozenSynapses
	}
}

// AssertFrozenWeightsConstant asserts that a tracked synapse never changes
// weight once the network reports it frozen.
func AssertFrozenWeightsConstant(t *testing.T, result SimulationResult, idx int) {
	t.Helper()
	s := result.Network.Synapse(idx)
	if !s.Frozen {
		return
	}
	final := result.Final().Weights[idx]
	if final != s.Weight {
		t.Errorf("AssertFrozenWeightsConstant: synapse %d final snapshot %.6f != live %.6f", idx, final, s.Weight)
	}
}

// AssertWeightBounded asserts that every tracked weight stays within [min, max].
func AssertWeightBounded(t *testing.T, result SimulationResult, min, max float64) {
	t.Helper()
	for _, snap := range result.Snapshots {
		for idx, w := range snap.Weights {
			if w < min || w > max {
				t.Errorf("AssertWeightBounded: tick %d: synapse %d weight %.6f not in [%.4f, %.4f]",
					snap.Status.Ticks, idx, w, min, max)
			}
		}
	}
}

// AssertWeightIncreased asserts that a tracked synapse ends stronger than it started.
func AssertWeightIncreased(t *testing.T, result SimulationResult, idx int) {
	t.Helper()
	if len(result.Snapshots) < 2 {
		t.Fatal("AssertWeightIncreased: need at least two snapshots")
	}
	first := result.Snapshots[0].Weights[idx]
	last := result.Final().Weights[idx]
	if last <= first {
		t.Errorf("AssertWeightIncreased: synapse %d went %.6f -> %.6f", idx, first, last)
	}
}

// AssertDopamineSettles asserts that |dopamine| is below eps in the final snapshot.
func AssertDopamineSettles(t *testing.T, result SimulationResult, eps float64) {
	t.Helper()
	if d := result.Final().Status.Dopamine; math.Abs(d) > eps {
		t.Errorf("AssertDopamineSettles: final dopamine %.6f, want |d| <= %.6f", d, eps)
	}
}

// AssertSpoke asserts that every symbol in want was spoken at least once.
func AssertSpoke(t *testing.T, result SimulationResult, want string) {
	t.Helper()
	seen := make(map[string]bool)
	for _, sp := range result.Spoken {
		seen[sp.Symbol] = true
	}
	var missing []string
	for _, r := range want {
		if !seen[string(r)] {
			missing = append(missing, string(r))
		}
	}
	if len(missing) > 0 {
		t.Errorf("AssertSpoke: never spoke %s", strings.Join(missing, ","))
	}
}

// AssertSpokenOrdered asserts that spoken ticks never go backwards.
func AssertSpokenOrdered(t *testing.T, result SimulationResult) {
	t.Helper()
	for i := 1; i < len(result.Spoken); i++ {
		if result.Spoken[i].Tick < result.Spoken[i-1].Tick {
			t.Errorf("AssertSpokenOrdered: spoken[%d] tick %d before spoken[%d] tick %d",
				i, result.Spoken[i].Tick, i-1, result.Spoken[i-1].Tick)
		}
	}
}
