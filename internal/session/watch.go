package session

import (
	"sort"

	"github.com/nvandessel/brainsim/internal/brain"
)

// Spoken is one output event: the speaker neuron for Symbol fired at Tick.
type Spoken struct {
	Modality string `json:"modality"`
	Symbol   string `json:"symbol"`
	Tick     int64  `json:"tick"`
}

// SpeakerWatch detects speaker neurons that fired since the previous poll.
// It does no debouncing: every new last-spike time is one Spoken event, and
// several spikes between polls collapse into one.
type SpeakerWatch struct {
	session  *Session
	modality string
	prev     map[int]int64
}

// NewSpeakerWatch starts watching the speakers of modality. Spikes that
// happened before the watch was created are not reported.
func (s *Session) NewSpeakerWatch(modality string) *SpeakerWatch {
	w := &SpeakerWatch{
		session:  s,
		modality: modality,
		prev:     make(map[int]int64),
	}
	s.Do(func(net *brain.Network) {
		for _, idx := range net.Speakers(modality) {
			w.prev[idx] = net.LastSpike(idx)
		}
	})
	return w
}

// Poll returns the symbols whose speaker fired since the last call, ordered
// by tick, then symbol. Poll is not safe for concurrent use by itself.
func (w *SpeakerWatch) Poll() []Spoken {
	var out []Spoken
	w.session.Do(func(net *brain.Network) {
		for sym, idx := range net.Speakers(w.modality) {
			last := net.LastSpike(idx)
			if prev, seen := w.prev[idx]; seen && prev == last {
				continue
			}
			w.prev[idx] = last
			if last < 0 {
				continue
			}
			out = append(out, Spoken{Modality: w.modality, Symbol: sym, Tick: last})
		}
	})

	sort.Slice(out, func(i, j int) bool {
		if out[i].Tick != out[j].Tick {
			return out[i].Tick < out[j].Tick
		}
		return out[i].Symbol < out[j].Symbol
	})
	return out
}
