package simulation

import (
	"math/rand"
	"sort"
	"testing"

	"github.com/nvandessel/brainsim/internal/brain"
	"github.com/nvandessel/brainsim/internal/encoding"
	"github.com/nvandessel/brainsim/internal/session"
)

const defaultSnapshotEvery = 100

// Runner orchestrates scripted simulation experiments against a real network.
type Runner struct {
	t *testing.T
}

// NewRunner creates a simulation runner with a sandboxed HOME directory.
func NewRunner(t *testing.T) *Runner {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	return &Runner{t: t}
}

// Run executes the scenario and returns the collected results.
func (r *Runner) Run(scenario Scenario) SimulationResult {
	r.t.Helper()

	// Phase 1: Build the network.
	net := r.build(scenario)
	s := session.New(net, session.Config{}, nil)

	var tracked []int
	if scenario.Track != nil {
		tracked = scenario.Track(net)
	}

	every := scenario.SnapshotEvery
	if every <= 0 {
		every = defaultSnapshotEvery
	}

	events := append([]Event(nil), scenario.Events...)
	if scenario.Schedule != nil {
		events = append(events, scenario.Schedule(net)...)
	}
	sort.SliceStable(events, func(i, j int) bool { return events[i].At < events[j].At })

	// Phase 2: Tick through the timeline.
	result := SimulationResult{Name: scenario.Name, Network: net}
	result.Snapshots = append(result.Snapshots, r.snapshot(s, tracked))

	var watch *session.SpeakerWatch
	if scenario.Alphabet != "" {
		watch = s.NewSpeakerWatch(session.TextModality)
	}

	next := 0
	for tick := int64(0); tick < scenario.Ticks; tick++ {
		for next < len(events) && events[next].At <= tick {
			if !r.apply(s, events[next]) {
				result.Rejected++
			}
			next++
		}

		s.Tick()

		if watch != nil {
			result.Spoken = append(result.Spoken, watch.Poll()...)
		}
		if (tick+1)%every == 0 {
			result.Snapshots = append(result.Snapshots, r.snapshot(s, tracked))
		}
	}

	return result
}

func (r *Runner) build(scenario Scenario) *brain.Network {
	r.t.Helper()

	cfg := SmallNetwork()
	if scenario.Network != nil {
		cfg = *scenario.Network
	}
	if err := cfg.Validate(); err != nil {
		r.t.Fatalf("scenario %s: invalid network config: %v", scenario.Name, err)
	}

	seed := scenario.Seed
	if seed == 0 {
		seed = 1
	}
	net := brain.New(cfg, brain.WithRand(rand.New(rand.NewSource(seed))), brain.WithStatusEvery(-1))

	if scenario.Alphabet != "" {
		enc, err := encoding.NewTextEncoder(scenario.Alphabet, 256, 0.25, 64)
		if err != nil {
			r.t.Fatalf("scenario %s: text encoder: %v", scenario.Name, err)
		}
		if err := net.RegisterModality(session.TextModality, enc); err != nil {
			r.t.Fatalf("scenario %s: register text: %v", scenario.Name, err)
		}
	}

	if scenario.Setup != nil {
		scenario.Setup(net)
	}
	return net
}

// apply delivers one event and reports whether the stimulus was accepted.
func (r *Runner) apply(s *session.Session, ev Event) bool {
	r.t.Helper()

	if ev.Apply != nil {
		s.Do(ev.Apply)
	}
	if ev.Reward != 0 {
		s.Reward(ev.Reward)
	}
	if ev.Stimulus == nil {
		return true
	}

	modality := ev.Modality
	if modality == "" {
		modality = session.TextModality
	}
	if err := s.Inject(modality, ev.Stimulus); err != nil {
		r.t.Logf("tick %d: inject %q: %v (counted as rejected)", ev.At, modality, err)
		return false
	}
	return true
}

func (r *Runner) snapshot(s *session.Session, tracked []int) Snapshot {
	snap := Snapshot{Status: s.Status()}
	if len(tracked) == 0 {
		return snap
	}
	snap.Weights = make(map[int]float64, len(tracked))
	s.Do(func(net *brain.Network) {
		for _, idx := range tracked {
			snap.Weights[idx] = net.Synapse(idx).Weight
		}
	})
	return snap
}
