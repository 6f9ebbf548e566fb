package rng

import "fmt"

// Sequence replays a fixed list of draws. It is meant for tests that need
// to force a specific card order, roll or spin.
type Sequence struct {
	values []float64
	pos    int
}

func NewSequence(values ...float64) *Sequence {
	return &Sequence{values: values}
}

// Next panics once the scripted values run out.
func (s *Sequence) Next() float64 {
	if s.pos >= len(s.values) {
		panic(fmt.Sprintf("rng: sequence exhausted after %d draws", s.pos))
	}
	v := s.values[s.pos]
	s.pos++
	return v
}

// Consumed is the number of values handed out so far.
func (s *Sequence) Consumed() int {
	return s.pos
}

// Pick returns the draw that makes Intn(src, n) land on index i.
func Pick(i, n int) float64 {
	return (float64(i) + 0.5) / float64(n)
}
