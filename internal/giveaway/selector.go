package giveaway

import (
	"math/rand"
	"sync"
	"time"
)

// Selector picks winners uniformly at random, without replacement.
// The shuffle guarantees join order never leaks into the result.
type Selector struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewSelector creates a Selector seeded from the clock.
func NewSelector() *Selector {
	return NewSelectorWithSource(rand.NewSource(time.Now().UnixNano()))
}

// NewSelectorWithSource creates a Selector over a caller-provided source.
// Used by tests that need reproducible draws.
func NewSelectorWithSource(src rand.Source) *Selector {
	return &Selector{rng: rand.New(src)}
}

// Select returns min(count, len(participants)) distinct entries of
// participants in uniformly shuffled order. An empty pool returns nil
// regardless of count. The input slice is never modified.
func (s *Selector) Select(participants []string, count int) []string {
	if len(participants) == 0 || count <= 0 {
		return nil
	}

	pool := make([]string, len(participants))
	copy(pool, participants)

	s.mu.Lock()
	s.rng.Shuffle(len(pool), func(i, j int) {
		pool[i], pool[j] = pool[j], pool[i]
	})
	s.mu.Unlock()

	if count > len(pool) {
		count = len(pool)
	}
	return pool[:count]
}
