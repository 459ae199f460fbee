// Package erand provides the seedable random source and recurrent-delay
// samplers used by the genome mutation operators and the coordinator's
// pheromone-distribution lifecycle.
package erand

import (
	"golang.org/x/exp/rand"
)

// Rand is a single seedable random source. Exactly one Rand lives on the
// Coordinator and is only ever touched while holding its mutex; a worker
// that needs randomness during training (example shuffle, dropout) owns a
// private Rand that worker.Pool seeds once per worker, never the
// coordinator's.
type Rand struct {
	src *rand.Rand
}

// NewRand returns a Rand seeded with seed.
func NewRand(seed int64) *Rand {
	return &Rand{src: rand.New(rand.NewSource(uint64(seed)))}
}

// Source exposes the underlying rand.Source for consumers (such as
// gonum's distuv distributions) that need to drive their own sampling
// from the same stream.
func (r *Rand) Source() rand.Source {
	return r.src
}

// IntRange returns a uniform random integer in [min, max], inclusive of
// both endpoints.
func (r *Rand) IntRange(min, max int) int {
	if max < min {
		min, max = max, min
	}
	if max == min {
		return min
	}
	return min + r.src.Intn(max-min+1)
}

// Float64 returns a uniform random float64 in [0, 1).
func (r *Rand) Float64() float64 {
	return r.src.Float64()
}

// Bool returns true with probability p.
func (r *Rand) Bool(p float64) bool {
	return r.src.Float64() < p
}

// NormFloat64 returns a value drawn from a standard normal distribution
// (mean 0, stddev 1); callers scale and shift as needed.
func (r *Rand) NormFloat64() float64 {
	return r.src.NormFloat64()
}

// Choose returns a uniform random index in [0, n).
func (r *Rand) Choose(n int) int {
	return r.src.Intn(n)
}

// Seed reseeds this Rand in place, restarting its stream as NewRand(seed)
// would.
func (r *Rand) Seed(seed int64) {
	r.src.Seed(uint64(seed))
}

// ShuffleInts performs an in-place Fisher-Yates shuffle, used for the
// per-epoch seeded shuffle of training example order.
func (r *Rand) ShuffleInts(s []int) {
	for i := len(s) - 1; i > 0; i-- {
		j := r.src.Intn(i + 1)
		s[i], s[j] = s[j], s[i]
	}
}
