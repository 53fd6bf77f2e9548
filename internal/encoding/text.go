package encoding

import (
	"fmt"
	"hash/fnv"
	"math/bits"
	"math/rand"
)

// TextEncoder population-codes single symbols. Every symbol of the alphabet
// owns a sparse random semantic pointer, seeded by a stable hash of the
// symbol, which is folded into a fixed-width population code.
type TextEncoder struct {
	alphabet []string
	dim      int
	popSize  int
	pointers map[string][]uint64
	codes    map[string][]int
}

// NewTextEncoder builds pointers and population codes for every symbol in alphabet.
// dim is the pointer width in bits, sparsity the fraction of bits set, and
// popSize the number of input neurons per symbol.
func NewTextEncoder(alphabet string, dim int, sparsity float64, popSize int) (*TextEncoder, error) {
	if alphabet == "" {
		return nil, fmt.Errorf("text encoder: empty alphabet")
	}
	if popSize <= 0 {
		return nil, fmt.Errorf("text encoder: population size must be positive, got %d", popSize)
	}
	if dim < 4*popSize {
		return nil, fmt.Errorf("text encoder: pointer dim %d too small for population %d", dim, popSize)
	}
	if sparsity <= 0 || sparsity > 1 {
		return nil, fmt.Errorf("text encoder: sparsity must be in (0, 1], got %f", sparsity)
	}

	e := &TextEncoder{
		dim:      dim,
		popSize:  popSize,
		pointers: make(map[string][]uint64),
		codes:    make(map[string][]int),
	}
	need := int(float64(dim) * sparsity)
	for _, r := range alphabet {
		sym := string(r)
		if _, dup := e.pointers[sym]; dup {
			continue
		}
		e.alphabet = append(e.alphabet, sym)
		p := randPointer(sym, dim, need)
		e.pointers[sym] = p
		e.codes[sym] = e.pointerToPopulation(sym, p)
	}
	return e, nil
}

func (e *TextEncoder) Kind() Kind { return KindText }

// RequiredNeurons is the worst case: a full population per symbol.
func (e *TextEncoder) RequiredNeurons() int { return len(e.alphabet) * e.popSize }

// Symbols returns the alphabet in declaration order.
func (e *TextEncoder) Symbols() []string {
	out := make([]string, len(e.alphabet))
	copy(out, e.alphabet)
	return out
}

// Label names the input neuron for population index idx of symbol.
func (e *TextEncoder) Label(symbol string, idx int) string {
	return fmt.Sprintf("IN_%s_%d", symbol, idx)
}

// Encode accepts a string or rune holding one symbol. Symbols outside the
// alphabet encode to an empty set.
func (e *TextEncoder) Encode(stimulus any) ([]int, error) {
	var sym string
	switch s := stimulus.(type) {
	case string:
		sym = s
	case rune:
		sym = string(s)
	case byte:
		sym = string(rune(s))
	default:
		return nil, typeError(KindText, stimulus)
	}

	code, ok := e.codes[sym]
	if !ok {
		return nil, nil
	}
	out := make([]int, len(code))
	copy(out, code)
	return out, nil
}

// Pointer returns a copy of the semantic pointer for symbol, or nil.
func (e *TextEncoder) Pointer(symbol string) []uint64 {
	p, ok := e.pointers[symbol]
	if !ok {
		return nil
	}
	out := make([]uint64, len(p))
	copy(out, p)
	return out
}

// pointerToPopulation keeps index i when the low bit of the i-th 4-bit slice
// of the pointer is set. An empty code falls back to a single index derived
// from the symbol hash so every symbol drives at least one neuron.
func (e *TextEncoder) pointerToPopulation(sym string, p []uint64) []int {
	var out []int
	for i := 0; i < e.popSize; i++ {
		if bitSet(p, 4*i) {
			out = append(out, i)
		}
	}
	if len(out) == 0 {
		out = []int{int(symbolHash(sym) % uint64(e.popSize))}
	}
	return out
}

func randPointer(sym string, dim, need int) []uint64 {
	rng := rand.New(rand.NewSource(int64(symbolHash(sym))))
	p := make([]uint64, (dim+63)/64)
	for popcount(p) < need {
		b := rng.Intn(dim)
		p[b/64] |= 1 << (b % 64)
	}
	return p
}

func symbolHash(sym string) uint64 {
	h := fnv.New64a()
	h.Write([]byte(sym))
	return h.Sum64()
}

func bitSet(p []uint64, b int) bool {
	return p[b/64]&(1<<(b%64)) != 0
}

func popcount(p []uint64) int {
	n := 0
	for _, w := range p {
		n += bits.OnesCount64(w)
	}
	return n
}
