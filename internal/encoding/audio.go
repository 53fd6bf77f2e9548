package encoding

import (
	"fmt"
	"sort"
)

// AudioEncoder activates the strongest frequency bands of a spectrum.
type AudioEncoder struct {
	bands    int
	sparsity float64
}

// NewAudioEncoder returns an encoder over bands frequency bands that
// activates the top bands*sparsity of them (at least one).
func NewAudioEncoder(bands int, sparsity float64) (*AudioEncoder, error) {
	if bands <= 0 {
		return nil, fmt.Errorf("audio encoder: bands must be positive, got %d", bands)
	}
	if sparsity < 0 || sparsity > 1 {
		return nil, fmt.Errorf("audio encoder: sparsity must be in [0, 1], got %f", sparsity)
	}
	return &AudioEncoder{bands: bands, sparsity: sparsity}, nil
}

func (e *AudioEncoder) Kind() Kind           { return KindAudio }
func (e *AudioEncoder) RequiredNeurons() int { return e.bands }

// Active is the number of bands activated per stimulus.
func (e *AudioEncoder) Active() int {
	n := int(float64(e.bands) * e.sparsity)
	if n < 1 {
		return 1
	}
	return n
}

// Encode accepts a []float64 of band powers. Ties keep the lower band.
func (e *AudioEncoder) Encode(stimulus any) ([]int, error) {
	power, ok := stimulus.([]float64)
	if !ok {
		return nil, typeError(KindAudio, stimulus)
	}
	if len(power) != e.bands {
		return nil, fmt.Errorf("audio encoder: %w: %d bands, want %d", ErrStimulusShape, len(power), e.bands)
	}

	idx := make([]int, e.bands)
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return power[idx[a]] > power[idx[b]]
	})
	return idx[:e.Active()], nil
}
