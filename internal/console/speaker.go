package console

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/nvandessel/brainsim/internal/logging"
	"github.com/nvandessel/brainsim/internal/session"
)

// DefaultPoll is how often the speaker checks output neurons.
const DefaultPoll = 50 * time.Millisecond

// SpokenHistory is how many recent symbols a speaker keeps for Spoken.
const SpokenHistory = 256

// Speaker prints every symbol whose speaker neuron fired since the last poll.
type Speaker struct {
	watch  *session.SpeakerWatch
	out    io.Writer
	poll   time.Duration
	logger *slog.Logger

	mu      sync.Mutex
	spoken  []session.Spoken
	history int

	// OnSpoken, if set, is called for every spoken symbol.
	OnSpoken func(session.Spoken)
}

// NewSpeaker creates a speaker for the text modality writing to out.
func NewSpeaker(s *session.Session, out io.Writer, poll time.Duration, logger *slog.Logger) *Speaker {
	if poll <= 0 {
		poll = DefaultPoll
	}
	if logger == nil {
		logger = logging.Discard()
	}
	return &Speaker{
		watch:   s.NewSpeakerWatch(session.TextModality),
		out:     out,
		poll:    poll,
		logger:  logger,
		history: SpokenHistory,
	}
}

// Flush polls once and writes whatever was spoken. It returns the symbols written.
func (sp *Speaker) Flush() ([]session.Spoken, error) {
	said := sp.watch.Poll()
	for _, s := range said {
		sp.logger.Info("speaking", "symbol", s.Symbol, "tick", s.Tick)
		if _, err := fmt.Fprint(sp.out, s.Symbol); err != nil {
			return nil, fmt.Errorf("writing spoken symbol: %w", err)
		}
		if sp.OnSpoken != nil {
			sp.OnSpoken(s)
		}
	}

	sp.remember(said)
	return said, nil
}

// remember appends said to the history, dropping the oldest entries past the cap.
func (sp *Speaker) remember(said []session.Spoken) {
	if len(said) == 0 {
		return
	}
	sp.mu.Lock()
	defer sp.mu.Unlock()

	sp.spoken = append(sp.spoken, said...)
	if over := len(sp.spoken) - sp.history; over > 0 {
		sp.spoken = append(sp.spoken[:0], sp.spoken[over:]...)
	}
}

// Spoken returns the most recent spoken symbols, oldest first, at most SpokenHistory.
func (sp *Speaker) Spoken() []session.Spoken {
	sp.mu.Lock()
	defer sp.mu.Unlock()

	out := make([]session.Spoken, len(sp.spoken))
	copy(out, sp.spoken)
	return out
}

// Run polls at the configured cadence until ctx is cancelled.
func (sp *Speaker) Run(ctx context.Context) error {
	ticker := time.NewTicker(sp.poll)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			_, _ = sp.Flush()
			return ctx.Err()
		case <-ticker.C:
			if _, err := sp.Flush(); err != nil {
				return err
			}
		}
	}
}
