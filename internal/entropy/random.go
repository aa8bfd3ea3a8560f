// Package entropy provides the random source behind interdiction rolls and
// casualty realization. The engine never touches math/rand directly: callers
// inject a Source, so battle and logistics outcomes are reproducible in tests.
package entropy

import (
	"crypto/rand"
	"encoding/binary"
	mathrand "math/rand"
	"sync"
)

// Source yields uniform random values in [0, 1).
type Source interface {
	Float64() float64
}

// Seeded is a deterministic source backed by math/rand. Two Seeded sources
// created with the same seed produce identical streams.
type Seeded struct {
	mu  sync.Mutex
	rng *mathrand.Rand
}

// NewSeeded creates a deterministic source from a seed.
func NewSeeded(seed int64) *Seeded {
	return &Seeded{rng: mathrand.New(mathrand.NewSource(seed))}
}

// Float64 returns the next value in the seeded stream.
func (s *Seeded) Float64() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.Float64()
}

// Crypto is a non-deterministic source backed by crypto/rand, for live play
// where reproducibility is not wanted.
type Crypto struct{}

// Float64 returns a uniform value in [0, 1) from the OS entropy pool.
func (Crypto) Float64() float64 {
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		// Should never happen; 0.5 keeps rolls unbiased if it somehow does.
		return 0.5
	}
	// 53 bits for a uniform float64 in [0, 1).
	n := binary.LittleEndian.Uint64(buf[:]) >> 11
	return float64(n) / float64(1<<53)
}

// Scripted replays a fixed sequence of values, cycling when exhausted.
// Test helper for forcing interdiction hits and variance outcomes.
type Scripted struct {
	Values []float64
	next   int
}

// Float64 returns the next scripted value.
func (s *Scripted) Float64() float64 {
	if len(s.Values) == 0 {
		return 0.5
	}
	v := s.Values[s.next%len(s.Values)]
	s.next++
	return v
}
