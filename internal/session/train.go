package session

import (
	"context"
	"fmt"

	"github.com/nvandessel/brainsim/internal/config"
)

// TextModality is the modality name the text encoder is registered under.
const TextModality = "text"

// PreTrain replays pattern through the text modality. Each symbol is
// injected and followed by TicksPerSymbol ticks; after every repetition the
// network receives Reward. The lock is taken per symbol, so other callers
// are not starved during long runs.
func (s *Session) PreTrain(ctx context.Context, p config.PreTrainConfig) error {
	s.logger.Info("pre-training", "pattern", p.Pattern, "repetitions", p.Repetitions)

	for rep := 0; rep < p.Repetitions; rep++ {
		for _, r := range p.Pattern {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := s.Inject(TextModality, string(r)); err != nil {
				return fmt.Errorf("pre-training %q: %w", p.Pattern, err)
			}
			s.TickN(p.TicksPerSymbol)
		}
		s.Reward(p.Reward)
	}

	st := s.Status()
	s.logger.Info("pre-training done",
		"pattern", p.Pattern,
		"ticks", st.Ticks,
		"dopamine", st.Dopamine)
	return nil
}
