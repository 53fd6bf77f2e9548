package console

import (
	"bytes"
	"context"
	"errors"
	"math/rand"
	"strings"
	"testing"
	"time"

	"github.com/nvandessel/brainsim/internal/brain"
	"github.com/nvandessel/brainsim/internal/config"
	"github.com/nvandessel/brainsim/internal/encoding"
	"github.com/nvandessel/brainsim/internal/session"
)

func newTestSession(t *testing.T) *session.Session {
	t.Helper()
	cfg := config.DefaultNetwork()
	cfg.ExcitatoryInterneurons = 10
	cfg.InhibitoryInterneurons = 0
	cfg.ReservoirSize = 10
	cfg.BaselineFraction = 0
	cfg.Neuron.SpontaneousRate = 0

	net := brain.New(cfg, brain.WithRand(rand.New(rand.NewSource(9))), brain.WithStatusEvery(-1))
	enc, err := encoding.NewTextEncoder("ab", 128, 0.25, 32)
	if err != nil {
		t.Fatalf("NewTextEncoder() error = %v", err)
	}
	if err := net.RegisterModality(session.TextModality, enc); err != nil {
		t.Fatalf("RegisterModality() error = %v", err)
	}
	return session.New(net, session.Config{}, nil)
}

func TestKeySensor_Handle(t *testing.T) {
	tests := []struct {
		key  rune
		want Action
	}{
		{'a', ActionStimulus},
		{'b', ActionStimulus},
		{'z', ActionIgnored},
		{'+', ActionReward},
		{'-', ActionPunish},
		{'\n', ActionIgnored},
	}

	for _, tt := range tests {
		t.Run(string(tt.key), func(t *testing.T) {
			k := NewKeySensor(newTestSession(t), strings.NewReader(""), nil)
			if got := k.Handle(tt.key); got != tt.want {
				t.Errorf("Handle(%q) = %v, want %v", tt.key, got, tt.want)
			}
		})
	}
}

func TestKeySensor_RewardSign(t *testing.T) {
	s := newTestSession(t)
	k := NewKeySensor(s, strings.NewReader(""), nil)

	var rewards []float64
	k.OnReward = func(amount float64) { rewards = append(rewards, amount) }

	k.Handle('+')
	if d := s.Status().Dopamine; d != 1 {
		t.Errorf("dopamine after '+' = %v, want 1", d)
	}
	k.Handle('-')
	k.Handle('-')
	if d := s.Status().Dopamine; d != -1 {
		t.Errorf("dopamine after '-' '-' = %v, want -1", d)
	}
	if len(rewards) != 3 || rewards[0] != 1 || rewards[2] != -1 {
		t.Errorf("OnReward calls = %v", rewards)
	}
}

func TestKeySensor_Run(t *testing.T) {
	s := newTestSession(t)
	k := NewKeySensor(s, strings.NewReader("ab+?a"), nil)

	if err := k.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	injected, rewarded := s.Counters()
	if injected != 3 || rewarded != 1 {
		t.Errorf("Counters() = %d, %d; want 3, 1", injected, rewarded)
	}
}

func TestKeySensor_RunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	k := NewKeySensor(newTestSession(t), strings.NewReader("aaaa"), nil)
	if err := k.Run(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("Run() error = %v, want context.Canceled", err)
	}
}

func TestSpeaker_Flush(t *testing.T) {
	s := newTestSession(t)
	var out bytes.Buffer
	sp := NewSpeaker(s, &out, time.Millisecond, nil)

	var seen []string
	sp.OnSpoken = func(s session.Spoken) { seen = append(seen, s.Symbol) }

	s.Do(func(net *brain.Network) {
		net.Stimulate(net.Speakers(session.TextModality)["b"], 100)
	})
	s.Tick()

	said, err := sp.Flush()
	if err != nil {
		t.Fatalf("Flush() error = %v", err)
	}
	if len(said) != 1 || said[0].Symbol != "b" {
		t.Fatalf("Flush() = %+v, want b", said)
	}
	if out.String() != "b" {
		t.Errorf("output = %q, want %q", out.String(), "b")
	}
	if len(seen) != 1 {
		t.Errorf("OnSpoken calls = %v", seen)
	}
	if got := sp.Spoken(); len(got) != 1 {
		t.Errorf("Spoken() = %v", got)
	}
}

func TestSpeaker_HistoryIsBounded(t *testing.T) {
	sp := NewSpeaker(newTestSession(t), &bytes.Buffer{}, 0, nil)
	if sp.history != SpokenHistory {
		t.Fatalf("history = %d, want %d", sp.history, SpokenHistory)
	}
	sp.history = 3

	for tick := int64(0); tick < 5; tick++ {
		sp.remember([]session.Spoken{{Modality: session.TextModality, Symbol: "a", Tick: tick}})
	}
	sp.remember(nil)

	got := sp.Spoken()
	if len(got) != 3 {
		t.Fatalf("len(Spoken()) = %d, want 3", len(got))
	}
	for i, want := range []int64{2, 3, 4} {
		if got[i].Tick != want {
			t.Errorf("Spoken()[%d].Tick = %d, want %d", i, got[i].Tick, want)
		}
	}
}

func TestSpeaker_RunStopsOnCancel(t *testing.T) {
	s := newTestSession(t)
	sp := NewSpeaker(s, &bytes.Buffer{}, 0, nil)
	if sp.poll != DefaultPoll {
		t.Errorf("poll = %v, want default", sp.poll)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := sp.Run(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Run() error = %v, want DeadlineExceeded", err)
	}
}
