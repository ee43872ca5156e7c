// Package mmrand provides the seedable random sources agents draw from.
// Given equal seeds, two RNGs produce identical streams; simulation
// reproducibility also depends on a fixed draw order across agents.
package mmrand

import (
	"math"
	"math/rand"
)

// RNG wraps a seeded math/rand source with the distributions the agents
// need. Not safe for concurrent use; the simulation is single-threaded.
type RNG struct {
	r *rand.Rand
}

// New creates an RNG seeded with seed.
func New(seed uint64) *RNG {
	return &RNG{r: rand.New(rand.NewSource(int64(seed)))}
}

// Seed resets the generator to the start of the stream for seed.
func (g *RNG) Seed(seed uint64) {
	g.r = rand.New(rand.NewSource(int64(seed)))
}

// Uniform returns a uniform float in [0, 1).
func (g *RNG) Uniform() float64 { return g.r.Float64() }

// UniformRange returns a uniform float in [min, max).
func (g *RNG) UniformRange(min, max float64) float64 {
	return min + (max-min)*g.r.Float64()
}

// UniformInt returns a uniform integer in [min, max] inclusive.
func (g *RNG) UniformInt(min, max int64) int64 {
	if max <= min {
		return min
	}
	return min + g.r.Int63n(max-min+1)
}

// Exponential returns an exponential variate with rate lambda
// (mean 1/lambda). Returns 0 for non-positive lambda.
func (g *RNG) Exponential(lambda float64) float64 {
	if lambda <= 0 {
		return 0
	}
	return g.r.ExpFloat64() / lambda
}

// Normal returns a normal variate with the given mean and stddev.
func (g *RNG) Normal(mean, stddev float64) float64 {
	return mean + stddev*g.r.NormFloat64()
}

// poissonNormalCutover is where Knuth's product method gets slow and the
// normal approximation is accurate to well under one count.
const poissonNormalCutover = 30.0

// Poisson returns a Poisson variate with mean lambda. Small means use
// Knuth's product method; large means a rounded normal approximation.
func (g *RNG) Poisson(lambda float64) int {
	if lambda <= 0 {
		return 0
	}
	if lambda > poissonNormalCutover {
		n := math.Round(g.Normal(lambda, math.Sqrt(lambda)))
		if n < 0 {
			return 0
		}
		return int(n)
	}
	limit := math.Exp(-lambda)
	k := 0
	p := 1.0
	for {
		p *= g.r.Float64()
		if p <= limit {
			return k
		}
		k++
	}
}

// Geometric returns the number of failures before the first success in
// Bernoulli(p) trials. p is clamped into (0, 1].
func (g *RNG) Geometric(p float64) int {
	if p >= 1 {
		return 0
	}
	if p <= 0 {
		p = math.SmallestNonzeroFloat64
	}
	u := g.r.Float64()
	return int(math.Floor(math.Log1p(-u) / math.Log1p(-p)))
}

// Bernoulli returns true with probability p.
func (g *RNG) Bernoulli(p float64) bool {
	return g.r.Float64() < p
}

// Shuffle permutes n elements via the provided swap function.
func (g *RNG) Shuffle(n int, swap func(i, j int)) {
	g.r.Shuffle(n, swap)
}
