package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/nvandessel/brainsim/internal/brain"
	"github.com/nvandessel/brainsim/internal/config"
)

func TestSession_InjectRewardTick(t *testing.T) {
	s := newTestSession(t)

	if err := s.Inject(TextModality, "a"); err != nil {
		t.Fatalf("Inject() error = %v", err)
	}
	s.Reward(0.5)

	st := s.TickN(3)
	if st.Ticks != 3 {
		t.Errorf("Ticks = %d, want 3", st.Ticks)
	}
	if st.Dopamine == 0 {
		t.Error("expected dopamine to reflect reward")
	}

	injected, rewarded := s.Counters()
	if injected != 1 || rewarded != 1 {
		t.Errorf("Counters() = %d, %d; want 1, 1", injected, rewarded)
	}
}

func TestSession_InjectUnknownModality(t *testing.T) {
	s := newTestSession(t)

	err := s.Inject("smell", "rose")
	if !errors.Is(err, brain.ErrUnknownModality) {
		t.Errorf("Inject() error = %v, want ErrUnknownModality", err)
	}
	if injected, _ := s.Counters(); injected != 0 {
		t.Errorf("rejected stimulus was counted")
	}
}

func TestSession_Observe(t *testing.T) {
	s := newTestSession(t)

	var got []int64
	s.Observe(5, func(st brain.Status) { got = append(got, st.Ticks) })
	s.Observe(0, func(brain.Status) { t.Error("observer with zero period should be ignored") })

	s.TickN(12)

	if len(got) != 2 || got[0] != 5 || got[1] != 10 {
		t.Errorf("observed ticks = %v, want [5 10]", got)
	}
}

func TestSession_ObserverMayUseSession(t *testing.T) {
	s := newTestSession(t)

	done := make(chan brain.Status, 1)
	s.Observe(1, func(brain.Status) {
		// Observers run outside the lock, so calling back must not deadlock.
		select {
		case done <- s.Status():
		default:
		}
	})
	s.Tick()

	select {
	case st := <-done:
		if st.Ticks != 1 {
			t.Errorf("Ticks = %d, want 1", st.Ticks)
		}
	default:
		t.Fatal("observer did not run")
	}
}

func TestSession_ConcurrentAccess(t *testing.T) {
	s := newTestSession(t)

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(3)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				s.Tick()
			}
		}()
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				_ = s.Inject(TextModality, "b")
			}
		}()
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				s.Reward(0.01)
				_ = s.Status()
			}
		}()
	}
	wg.Wait()

	if st := s.Status(); st.Ticks != 200 {
		t.Errorf("Ticks = %d, want 200", st.Ticks)
	}
	injected, rewarded := s.Counters()
	if injected != 200 || rewarded != 200 {
		t.Errorf("Counters() = %d, %d; want 200, 200", injected, rewarded)
	}
}

func TestSession_RunStopsOnCancel(t *testing.T) {
	s := newTestSession(t)
	ctx, cancel := context.WithCancel(context.Background())

	errCh := make(chan error, 1)
	go func() { errCh <- s.Run(ctx) }()

	deadline := time.Now().Add(5 * time.Second)
	for s.Status().Ticks < 10 {
		if time.Now().After(deadline) {
			t.Fatal("tick loop made no progress")
		}
		time.Sleep(time.Millisecond)
	}
	cancel()

	select {
	case err := <-errCh:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Run() error = %v, want context.Canceled", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not stop after cancel")
	}
}

func TestSession_RunWithInterval(t *testing.T) {
	s := newTestSession(t)
	s.config.TickInterval = time.Millisecond

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	if err := s.Run(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Run() error = %v, want DeadlineExceeded", err)
	}
	if ticks := s.Status().Ticks; ticks == 0 || ticks > 60 {
		t.Errorf("Ticks = %d, want paced ticking", ticks)
	}
}

func TestSession_PreTrain(t *testing.T) {
	s := newTestSession(t)

	err := s.PreTrain(context.Background(), config.PreTrainConfig{
		Pattern:        "abc",
		Repetitions:    2,
		TicksPerSymbol: 4,
		Reward:         0.5,
	})
	if err != nil {
		t.Fatalf("PreTrain() error = %v", err)
	}

	if st := s.Status(); st.Ticks != 2*3*4 {
		t.Errorf("Ticks = %d, want 24", st.Ticks)
	}
	injected, rewarded := s.Counters()
	if injected != 6 || rewarded != 2 {
		t.Errorf("Counters() = %d, %d; want 6, 2", injected, rewarded)
	}
}

func TestSession_PreTrainCancelled(t *testing.T) {
	s := newTestSession(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := s.PreTrain(ctx, config.PreTrainConfig{Pattern: "abc", Repetitions: 1, TicksPerSymbol: 1})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("PreTrain() error = %v, want context.Canceled", err)
	}
	if st := s.Status(); st.Ticks != 0 {
		t.Errorf("Ticks = %d, want 0", st.Ticks)
	}
}
