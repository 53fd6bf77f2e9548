// Package console connects a session to a terminal: a key sensor that turns
// typed characters into stimuli and rewards, and a speaker that prints the
// symbols the network says.
package console

import (
	"bufio"
	"context"
	"errors"
	"io"
	"log/slog"

	"github.com/nvandessel/brainsim/internal/brain"
	"github.com/nvandessel/brainsim/internal/logging"
	"github.com/nvandessel/brainsim/internal/session"
)

// Key actions.
const (
	RewardKey = '+'
	PunishKey = '-'
)

// Action is what a key press did.
type Action int

const (
	ActionIgnored Action = iota
	ActionStimulus
	ActionReward
	ActionPunish
)

// KeySensor feeds characters read from a terminal into the text modality.
// Characters in the alphabet become stimuli, '+' rewards +1 and '-' punishes -1.
type KeySensor struct {
	session  *session.Session
	in       io.Reader
	logger   *slog.Logger
	alphabet map[rune]bool

	// OnReward, if set, is called after each key reward.
	OnReward func(amount float64)
}

// NewKeySensor creates a sensor reading from in.
func NewKeySensor(s *session.Session, in io.Reader, logger *slog.Logger) *KeySensor {
	if logger == nil {
		logger = logging.Discard()
	}
	k := &KeySensor{
		session:  s,
		in:       in,
		logger:   logger,
		alphabet: make(map[rune]bool),
	}
	s.Do(func(net *brain.Network) {
		for sym := range net.Sensory(session.TextModality) {
			for _, r := range sym {
				k.alphabet[r] = true
			}
		}
	})
	return k
}

// Handle applies one key press.
func (k *KeySensor) Handle(r rune) Action {
	switch {
	case k.alphabet[r]:
		if err := k.session.Inject(session.TextModality, string(r)); err != nil {
			k.logger.Warn("key stimulus rejected", "key", string(r), "error", err)
			return ActionIgnored
		}
		return ActionStimulus
	case r == RewardKey:
		k.reward(1)
		return ActionReward
	case r == PunishKey:
		k.reward(-1)
		return ActionPunish
	default:
		return ActionIgnored
	}
}

func (k *KeySensor) reward(amount float64) {
	k.session.Reward(amount)
	k.logger.Info("key reward", "amount", amount)
	if k.OnReward != nil {
		k.OnReward(amount)
	}
}

// Run reads runes until EOF or until ctx is cancelled. Cancellation is only
// noticed between reads; a blocked terminal read returns when the process exits.
func (k *KeySensor) Run(ctx context.Context) error {
	br := bufio.NewReader(k.in)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		r, _, err := br.ReadRune()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		k.Handle(r)
	}
}
