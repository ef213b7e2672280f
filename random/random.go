// Package random isolates every probabilistic decision behind one interface so
// that generation can be replayed from a seed or driven by a script in tests.
package random

import (
	"math/rand"
	"time"
)

type Source interface {
	// Float64 returns a uniform draw in [0, 1).
	Float64() float64
	// Intn returns a uniform draw in [0, n). n must be positive.
	Intn(n int) int
	// Choice returns an index into weights with probability proportional to its weight.
	Choice(weights []float64) int
}

type Seeded struct {
	r *rand.Rand
}

func NewSeeded(seed int64) *Seeded {
	return &Seeded{r: rand.New(rand.NewSource(seed))}
}

// NewFromClock is used when no seed was configured.
func NewFromClock() (*Seeded, int64) {
	seed := time.Now().UnixNano()
	return NewSeeded(seed), seed
}

func (s *Seeded) Float64() float64 { return s.r.Float64() }

func (s *Seeded) Intn(n int) int { return s.r.Intn(n) }

func (s *Seeded) Choice(weights []float64) int {
	return WeightedIndex(s.Float64(), weights)
}

// WeightedIndex maps a uniform draw u in [0, 1) onto weights: the result is the
// first index whose cumulative weight exceeds u*total. Non-positive totals pick
// the last index.
func WeightedIndex(u float64, weights []float64) int {
	var total float64
	for _, w := range weights {
		total += w
	}
	if len(weights) == 0 {
		return -1
	}
	r := u * total
	var cum float64
	for i, w := range weights {
		cum += w
		if r < cum {
			return i
		}
	}
	return len(weights) - 1
}
