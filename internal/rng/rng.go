// Package rng supplies the uniform random draws that every shuffle, die,
// reel and pocket in the casino is derived from.
package rng

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
)

// Source yields uniform floats in [0, 1).
type Source interface {
	Next() float64
}

// Service is the live-play Source backed by crypto/rand.
type Service struct {
	entropy io.Reader
	mu      sync.Mutex

	samplesGenerated atomic.Int64
}

// New creates a Service reading from crypto/rand.
func New() *Service {
	return &Service{entropy: rand.Reader}
}

// Next returns a float with 53 bits of precision.
func (s *Service) Next() float64 {
	var buf [8]byte

	s.mu.Lock()
	_, err := io.ReadFull(s.entropy, buf[:])
	s.mu.Unlock()
	if err != nil {
		panic(fmt.Sprintf("rng: entropy source failed: %v", err))
	}

	s.samplesGenerated.Add(1)
	return float64(binary.BigEndian.Uint64(buf[:])>>11) / (1 << 53)
}

// SamplesGenerated reports how many draws the service has produced.
func (s *Service) SamplesGenerated() int64 {
	return s.samplesGenerated.Load()
}
