// Package encoding converts external stimuli into sets of relative neuron
// indices. Encoders are pure: they never touch network state, and the same
// stimulus always yields the same indices for a given encoder instance.
package encoding

import (
	"errors"
	"fmt"
)

// Kind identifies an encoder variant.
type Kind string

const (
	KindText    Kind = "text"
	KindVisual  Kind = "visual"
	KindAudio   Kind = "audio"
	KindGeneric Kind = "generic"
)

var (
	// ErrStimulusType is returned when a stimulus has the wrong Go type for the encoder.
	ErrStimulusType = errors.New("unsupported stimulus type")

	// ErrStimulusShape is returned when a stimulus has the wrong size or
	// addresses neurons outside the encoder's population.
	ErrStimulusShape = errors.New("stimulus shape mismatch")
)

// Encoder maps a stimulus to indices relative to the encoder's own input
// population. Callers translate them into absolute neuron indices.
type Encoder interface {
	Kind() Kind
	RequiredNeurons() int
	Encode(stimulus any) ([]int, error)
}

// SymbolEncoder is implemented by encoders with a finite symbol set whose
// populations are built up front and cached by the network.
type SymbolEncoder interface {
	Encoder
	Symbols() []string
	Label(symbol string, idx int) string
}

func typeError(kind Kind, stimulus any) error {
	return fmt.Errorf("%s encoder: %w %T", kind, ErrStimulusType, stimulus)
}
