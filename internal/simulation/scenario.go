package simulation

import (
	"github.com/nvandessel/brainsim/internal/brain"
	"github.com/nvandessel/brainsim/internal/config"
	"github.com/nvandessel/brainsim/internal/session"
)

// Scenario defines a complete simulation experiment.
type Scenario struct {
	Name string

	// Network overrides the default small network. Nil uses SmallNetwork().
	Network *config.NetworkConfig

	// Seed for the network RNG. Zero means 1 so runs are reproducible.
	Seed int64

	// Alphabet registers a text modality when non-empty.
	Alphabet string

	// Events are applied before the tick they are scheduled at.
	Events []Event

	// Schedule, when non-nil, adds events once the network is built, for
	// timelines that depend on neuron indices created in Setup.
	Schedule func(net *brain.Network) []Event

	// Ticks is the total number of ticks to run.
	Ticks int64

	// SnapshotEvery controls status sampling. Zero means every 100 ticks.
	SnapshotEvery int64

	// Track, when non-nil, returns synapse indices whose weights are recorded
	// with every snapshot. It runs once after the network is built.
	Track func(net *brain.Network) []int

	// Setup, when non-nil, runs after construction and modality registration.
	// Use it to register extra modalities or hand-wire synapses.
	Setup func(net *brain.Network)
}

// Event is one scheduled input.
type Event struct {
	At int64

	// Modality defaults to the text modality.
	Modality string

	// Stimulus is injected when non-nil.
	Stimulus any

	// Reward is delivered when non-zero.
	Reward float64

	// Apply, when non-nil, runs with exclusive access to the network.
	Apply func(net *brain.Network)
}

// Sequence schedules pattern as text stimuli, one symbol every gap ticks,
// starting at start and repeated reps times.
func Sequence(pattern string, start, gap int64, reps int) []Event {
	var events []Event
	at := start
	for i := 0; i < reps; i++ {
		for _, r := range pattern {
			events = append(events, Event{At: at, Modality: session.TextModality, Stimulus: string(r)})
			at += gap
		}
	}
	return events
}

// RewardAt schedules a reward.
func RewardAt(at int64, amount float64) Event {
	return Event{At: at, Reward: amount}
}

// Pairing schedules drive into pre and then post, lag ticks apart, every
// period ticks starting at start.
func Pairing(pre, post int, lag, start, period int64, reps int, drive float64) []Event {
	var events []Event
	for i := 0; i < reps; i++ {
		at := start + int64(i)*period
		events = append(events,
			Event{At: at, Apply: func(net *brain.Network) { net.Stimulate(pre, drive) }},
			Event{At: at + lag, Apply: func(net *brain.Network) { net.Stimulate(post, drive) }},
		)
	}
	return events
}

// SmallNetwork returns a network config sized for fast tests.
func SmallNetwork() config.NetworkConfig {
	cfg := config.DefaultNetwork()
	cfg.ExcitatoryInterneurons = 40
	cfg.InhibitoryInterneurons = 10
	cfg.ReservoirSize = 20
	cfg.BaselineFraction = 0.1
	cfg.PredictorFanIn = 8
	cfg.SpeakerFanOut = 4
	return cfg
}

// Snapshot is the network state sampled at one tick.
type Snapshot struct {
	Status  brain.Status
	Weights map[int]float64
}

// SimulationResult captures all snapshots, spoken output and the final network.
type SimulationResult struct {
	Name      string
	Snapshots []Snapshot
	Spoken    []session.Spoken
	Rejected  int
	Network   *brain.Network
}

// Final returns the last snapshot.
func (r SimulationResult) Final() Snapshot {
	if len(r.Snapshots) == 0 {
		return Snapshot{}
	}
	return r.Snapshots[len(r.Snapshots)-1]
}
