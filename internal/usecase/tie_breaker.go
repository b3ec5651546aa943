package usecase

import (
	"math/rand"
	"sync"
	"time"
)

// TieBreaker chooses among n equally ranked candidates
type TieBreaker interface {
	Choose(n int) int
}

// RandomTieBreaker picks uniformly at random. It is safe for concurrent use.
type RandomTieBreaker struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewRandomTieBreaker creates a tie-breaker from a seed. A zero seed uses
// the current time, so only non-zero seeds are reproducible.
func NewRandomTieBreaker(seed int64) *RandomTieBreaker {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &RandomTieBreaker{
		rng: rand.New(rand.NewSource(seed)), //nolint:gosec // selection shuffling, not security
	}
}

// Choose returns an index in [0, n)
func (t *RandomTieBreaker) Choose(n int) int {
	if n <= 1 {
		return 0
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.rng.Intn(n)
}

// FirstTieBreaker always picks the first candidate, keeping catalog order
type FirstTieBreaker struct{}

// Choose returns 0
func (FirstTieBreaker) Choose(int) int { return 0 }
