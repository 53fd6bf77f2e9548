package encoding

import "fmt"

// GenericEncoder passes relative indices straight through. It lets callers
// drive a modality whose feature extraction happens elsewhere.
type GenericEncoder struct {
	size int
}

// NewGenericEncoder returns an encoder over a population of size neurons.
func NewGenericEncoder(size int) (*GenericEncoder, error) {
	if size <= 0 {
		return nil, fmt.Errorf("generic encoder: size must be positive, got %d", size)
	}
	return &GenericEncoder{size: size}, nil
}

func (e *GenericEncoder) Kind() Kind           { return KindGeneric }
func (e *GenericEncoder) RequiredNeurons() int { return e.size }

// Encode accepts a []int of relative indices. Duplicates are dropped.
func (e *GenericEncoder) Encode(stimulus any) ([]int, error) {
	in, ok := stimulus.([]int)
	if !ok {
		return nil, typeError(KindGeneric, stimulus)
	}
	seen := make(map[int]bool, len(in))
	out := make([]int, 0, len(in))
	for _, i := range in {
		if i < 0 || i >= e.size {
			return nil, fmt.Errorf("generic encoder: %w: index %d outside [0, %d)", ErrStimulusShape, i, e.size)
		}
		if seen[i] {
			continue
		}
		seen[i] = true
		out = append(out, i)
	}
	return out, nil
}
