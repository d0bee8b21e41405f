package minigame

import (
	crand "crypto/rand"
	"fmt"
	"math/rand/v2"
	"sync"
)

// Rand is the uniform random source used for game draws. It does not need to be
// cryptographically strong. *rand.Rand satisfies it.
type Rand interface {
	IntN(n int) int
	Float64() float64
}

// lockedRand makes a *rand.Rand safe for concurrent requests.
type lockedRand struct {
	mu  sync.Mutex
	rng *rand.Rand
}

func (r *lockedRand) IntN(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rng.IntN(n)
}

func (r *lockedRand) Float64() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rng.Float64()
}

// NewSource returns a concurrency-safe ChaCha8 generator seeded from crypto/rand.
func NewSource() (Rand, error) {
	var seed [32]byte
	if _, err := crand.Read(seed[:]); err != nil {
		return nil, fmt.Errorf("read random seed: %w", err)
	}
	return &lockedRand{rng: rand.New(rand.NewChaCha8(seed))}, nil
}

// NewSeeded returns a concurrency-safe PCG generator with a fixed seed.
// Primarily used for testing.
func NewSeeded(seed uint64) Rand {
	return &lockedRand{rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}
