// Package session owns a brain.Network for interactive use. The network is
// single-owner, so every caller (keyboard sensor, speaker, MCP tools, the
// tick loop) goes through a Session, which serializes access behind a mutex.
//
// All public methods are safe for concurrent use.
package session

import (
	"context"
	"log/slog"
	"runtime"
	"sync"
	"time"

	"github.com/nvandessel/brainsim/internal/brain"
	"github.com/nvandessel/brainsim/internal/logging"
)

// Config holds session configuration.
type Config struct {
	// TickInterval is the wall-clock pause between ticks in Run.
	// Zero runs as fast as possible, yielding between ticks.
	TickInterval time.Duration
}

// observer receives a status snapshot every `every` ticks.
type observer struct {
	every int64
	fn    func(brain.Status)
}

// Session serializes all access to one Network.
type Session struct {
	mu        sync.Mutex
	net       *brain.Network
	config    Config
	logger    *slog.Logger
	observers []observer
	started   time.Time
	injected  int
	rewarded  int
}

// New creates a session around net. A nil logger discards output.
func New(net *brain.Network, config Config, logger *slog.Logger) *Session {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Session{
		net:     net,
		config:  config,
		logger:  logger,
		started: time.Now(),
	}
}

// Observe registers fn to receive a status snapshot after every tick that is
// a multiple of every. fn runs outside the session lock. Register observers
// before calling Run.
func (s *Session) Observe(every int64, fn func(brain.Status)) {
	if every <= 0 || fn == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.observers = append(s.observers, observer{every: every, fn: fn})
}

// Inject queues a stimulus for the next tick.
func (s *Session) Inject(modality string, stimulus any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.net.InjectStimulus(modality, stimulus); err != nil {
		return err
	}
	s.injected++
	return nil
}

// Reward adds amount to the network's dopamine level.
func (s *Session) Reward(amount float64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.net.Reward(amount)
	s.rewarded++
}

// Tick advances the network by one step.
func (s *Session) Tick() {
	s.TickN(1)
}

// TickN advances the network by count steps and returns the resulting status.
func (s *Session) TickN(count int) brain.Status {
	var due []func()
	s.mu.Lock()
	for i := 0; i < count; i++ {
		s.net.Tick()
		due = s.collect(due)
	}
	st := s.net.Status()
	s.mu.Unlock()

	for _, fn := range due {
		fn()
	}
	return st
}

// collect appends observer calls due at the current tick. Caller holds mu.
func (s *Session) collect(due []func()) []func() {
	if len(s.observers) == 0 {
		return due
	}
	now := s.net.Time()
	var st *brain.Status
	for _, o := range s.observers {
		if now%o.every != 0 {
			continue
		}
		if st == nil {
			snap := s.net.Status()
			st = &snap
		}
		fn, snap := o.fn, *st
		due = append(due, func() { fn(snap) })
	}
	return due
}

// Status returns a snapshot of the network.
func (s *Session) Status() brain.Status {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.net.Status()
}

// Do runs fn with exclusive access to the network. fn must not retain net.
func (s *Session) Do(fn func(net *brain.Network)) {
	s.mu.Lock()
	defer s.mu.Unlock()

	fn(s.net)
}

// Counters returns how many stimuli and external rewards were accepted.
func (s *Session) Counters() (injected, rewarded int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.injected, s.rewarded
}

// Run ticks the network until ctx is cancelled. The lock is released between
// ticks so injections and rewards from other goroutines interleave.
func (s *Session) Run(ctx context.Context) error {
	s.logger.Info("tick loop started", "interval", s.config.TickInterval)
	defer s.logger.Info("tick loop stopped")

	if s.config.TickInterval <= 0 {
		for {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
			s.Tick()
			runtime.Gosched()
		}
	}

	ticker := time.NewTicker(s.config.TickInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.Tick()
		}
	}
}
