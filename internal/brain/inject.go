package brain

import (
	"fmt"

	"github.com/nvandessel/brainsim/internal/constants"
)

// InjectStimulus queues StimulusInput into every input neuron the stimulus
// maps to. Registered symbols use the cached population directly; anything
// else goes through the encoder and the modality's offset.
//
// Unknown modalities and encoder errors are logged and returned without
// touching network state. The simulation keeps running either way.
func (n *Network) InjectStimulus(name string, stimulus any) error {
	m, ok := n.modalities[name]
	if !ok {
		n.logger.Warn("unknown modality", "modality", name)
		return fmt.Errorf("injecting into %q: %w", name, ErrUnknownModality)
	}

	if sym, isSym := symbolOf(stimulus); isSym {
		if inputs, cached := m.sensory[sym]; cached {
			for _, idx := range inputs {
				n.buffers[idx] = append(n.buffers[idx], constants.StimulusInput)
			}
			n.logger.Debug("injected symbol", "modality", name, "symbol", sym, "neurons", len(inputs))
			return nil
		}
	}

	rel, err := m.encoder.Encode(stimulus)
	if err != nil {
		n.logger.Warn("stimulus rejected", "modality", name, "error", err)
		return fmt.Errorf("injecting into %q: %w", name, err)
	}
	if m.size == 0 {
		// Symbol modality and a symbol outside its alphabet.
		n.logger.Debug("stimulus not mapped", "modality", name)
		return nil
	}

	for _, r := range rel {
		if r < 0 || r >= m.size {
			panic(fmt.Sprintf("brain: encoder for %q returned index %d outside [0, %d)", name, r, m.size))
		}
		idx := m.offset + r
		n.buffers[idx] = append(n.buffers[idx], constants.StimulusInput)
	}
	n.logger.Debug("injected stimulus", "modality", name, "neurons", len(rel))
	return nil
}

func symbolOf(stimulus any) (string, bool) {
	switch s := stimulus.(type) {
	case string:
		return s, true
	case rune:
		return string(s), true
	case byte:
		return string(rune(s)), true
	default:
		return "", false
	}
}
