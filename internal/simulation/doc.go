// Package simulation provides a scripted test harness for validating the
// emergent dynamics of the spiking network.
//
// The harness exercises the real brain.Network, encoders and session
// plumbing with no mocks. A Scenario is a Go builder describing the network
// size, a timeline of stimuli and rewards, and which synapses to track.
// Runs capture status snapshots and tracked weights for property-based
// assertions.
//
// Each test gets a sandboxed HOME so nothing touches user data.
//
// Usage:
//
//	func TestFrozenNeverThaw(t *testing.T) {
//	    r := simulation.NewRunner(t)
//	    result := r.Run(simulation.Scenario{
//	        Name:     "repeat-abc",
//	        Alphabet: "abc",
//	        Events:   simulation.Sequence("abc", 0, 20, 50),
//	        Ticks:    3000,
//	    })
//	    simulation.AssertFrozenMonotonic(t, result)
//	}
package simulation
