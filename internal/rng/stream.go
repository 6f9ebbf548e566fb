package rng

import (
	"crypto/sha256"
	"encoding/binary"
	"sync"

	"golang.org/x/crypto/chacha20"
)

// Stream is a reproducible Source driven by a ChaCha20 keystream. Two
// streams built from the same seed produce identical draws.
type Stream struct {
	mu     sync.Mutex
	cipher *chacha20.Cipher
	seed   string
}

// NewStream keys a Stream with the SHA-256 digest of seed.
func NewStream(seed string) *Stream {
	key := sha256.Sum256([]byte(seed))
	nonce := make([]byte, chacha20.NonceSize)

	c, err := chacha20.NewUnauthenticatedCipher(key[:], nonce)
	if err != nil {
		// key and nonce lengths are fixed above
		panic(err)
	}
	return &Stream{cipher: c, seed: seed}
}

func (s *Stream) Next() float64 {
	var buf [8]byte

	s.mu.Lock()
	s.cipher.XORKeyStream(buf[:], buf[:])
	s.mu.Unlock()

	return float64(binary.BigEndian.Uint64(buf[:])>>11) / (1 << 53)
}

// Seed returns the seed the stream was built from.
func (s *Stream) Seed() string {
	return s.seed
}
