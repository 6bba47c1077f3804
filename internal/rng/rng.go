// Package rng provides the single seeded pseudo-random source for the
// simulation. Every stochastic decision in the tick engine — seed drops,
// NPC spawn rolls, patrol wandering — draws from one owned Source so that
// identical (seed, action sequence) pairs replay identically.
package rng

import "math/rand"

// Source is the world's single owned PRNG. It is never shared or copied
// across goroutines — only the tick loop goroutine touches it.
type Source struct {
	r *rand.Rand
}

// New creates a seeded source. The same seed always produces the same
// sequence of draws given the same call order.
func New(seed int64) *Source {
	return &Source{r: rand.New(rand.NewSource(seed))}
}

// Float64 returns a pseudo-random float64 in [0, 1).
func (s *Source) Float64() float64 {
	return s.r.Float64()
}

// Intn returns a pseudo-random int in [0, n).
func (s *Source) Intn(n int) int {
	if n <= 0 {
		return 0
	}
	return s.r.Intn(n)
}

// Bool returns true with probability p (clamped to [0, 1]).
func (s *Source) Bool(p float64) bool {
	if p <= 0 {
		return false
	}
	if p >= 1 {
		return true
	}
	return s.r.Float64() < p
}

// Keyed derives a deterministic sub-draw from a key (e.g. resourceID, tick)
// without disturbing the main sequence — used where a roll must be
// reproducible independent of how many other draws happened first this tick
// (seed-drop rolls keyed by (resourceID, tick), spec.md §4.4).
func Keyed(seed int64, key uint64) *Source {
	// Mix the world seed and key with a fixed-point splitmix-style step so
	// nearby keys don't produce correlated sequences.
	mixed := uint64(seed) ^ (key * 0x9E3779B97F4A7C15)
	mixed ^= mixed >> 30
	mixed *= 0xBF58476D1CE4E5B9
	mixed ^= mixed >> 27
	mixed *= 0x94D049BB133111EB
	mixed ^= mixed >> 31
	return New(int64(mixed))
}
