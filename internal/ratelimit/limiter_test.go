package ratelimit

import (
	"sync"
	"testing"
	"time"
)

func fixedClock(l *Limiter, start time.Time) *time.Time {
	now := start
	l.now = func() time.Time { return now }
	return &now
}

func TestAllow_WithinBurst(t *testing.T) {
	l := NewLimiter(1.0, 3)
	for i := 0; i < 3; i++ {
		if !l.Allow("key1") {
			t.Errorf("request %d should be allowed (within burst)", i+1)
		}
	}
	if l.Allow("key1") {
		t.Error("4th request should be rate limited")
	}
}

func TestAllow_RefillAfterWait(t *testing.T) {
	l := NewLimiter(1.0, 2)
	now := fixedClock(l, time.Now())

	l.Allow("k")
	l.Allow("k")
	if l.Allow("k") {
		t.Fatal("expected bucket to be empty")
	}

	*now = now.Add(1500 * time.Millisecond)
	if !l.Allow("k") {
		t.Error("expected one token after 1.5s")
	}
	if l.Allow("k") {
		t.Error("expected only half a token left")
	}
}

func TestAllow_BurstCapsRefill(t *testing.T) {
	l := NewLimiter(10.0, 3)
	now := fixedClock(l, time.Now())

	l.Allow("k")
	*now = now.Add(time.Hour)
	if got := l.Tokens("k"); got != 3 {
		t.Errorf("Tokens() = %f, want burst 3", got)
	}
}

func TestAllow_IndependentKeys(t *testing.T) {
	l := NewLimiter(0, 1)
	if !l.Allow("a") || !l.Allow("b") {
		t.Fatal("first request per key should be allowed")
	}
	if l.Allow("a") {
		t.Error("key a should be exhausted")
	}
}

func TestAllowN(t *testing.T) {
	tests := []struct {
		name  string
		burst int
		costs []int
		want  []bool
	}{
		{"fits", 5, []int{2, 3, 1}, []bool{true, true, false}},
		{"zero cost always allowed", 1, []int{1, 0, 0}, []bool{true, true, true}},
		{"oversized cost clamps to burst", 4, []int{100, 1}, []bool{true, false}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := NewLimiter(0, tt.burst)
			for i, c := range tt.costs {
				if got := l.AllowN("k", c); got != tt.want[i] {
					t.Errorf("AllowN(%d) #%d = %v, want %v", c, i, got, tt.want[i])
				}
			}
		})
	}
}

func TestAllow_ConcurrentAccess(t *testing.T) {
	l := NewLimiter(0, 100)
	var wg sync.WaitGroup
	var mu sync.Mutex
	allowed := 0

	for i := 0; i < 200; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if l.Allow("shared") {
				mu.Lock()
				allowed++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if allowed != 100 {
		t.Errorf("allowed = %d, want exactly 100", allowed)
	}
}

func TestTickCost(t *testing.T) {
	tests := []struct {
		ticks int
		want  int
	}{
		{0, 0},
		{-5, 0},
		{1, 1},
		{TickCostUnit, 1},
		{TickCostUnit + 1, 2},
		{250_000, 25},
	}
	for _, tt := range tests {
		if got := TickCost(tt.ticks); got != tt.want {
			t.Errorf("TickCost(%d) = %d, want %d", tt.ticks, got, tt.want)
		}
	}
}

func TestNewToolLimiters(t *testing.T) {
	limiters := NewToolLimiters()
	for _, name := range []string{"brain_inject", "brain_reward", "brain_tick", "brain_status", "brain_spoken", "brain_graph", "brain_export"} {
		if limiters[name] == nil {
			t.Errorf("missing limiter for %s", name)
		}
	}
}

func TestCheckLimit(t *testing.T) {
	limiters := ToolLimiters{"t": NewLimiter(0, 2)}

	if err := CheckLimit(limiters, "unlimited"); err != nil {
		t.Errorf("unlimited tool: %v", err)
	}
	if err := CheckLimitN(limiters, "t", 2); err != nil {
		t.Errorf("first call: %v", err)
	}
	if err := CheckLimit(limiters, "t"); err == nil {
		t.Error("expected rate limit error")
	}
}
