// Package policy provides action generators used to drive environments
// under test.
package policy

import (
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/roach88/suitecheck/internal/env"
)

// Fallback bounds substituted for infinite action bounds before sampling.
const (
	FallbackMinimum = -1.0
	FallbackMaximum = 1.0
)

// Policy maps a TimeStep to an action vector.
type Policy func(ts env.TimeStep) []float64

// EffectiveBounds returns the sampling bounds for spec, replacing infinite
// bounds with the fallback bounds.
func EffectiveBounds(spec env.BoundedArraySpec) (lower, upper []float64) {
	lower = make([]float64, len(spec.Minimum))
	upper = make([]float64, len(spec.Maximum))
	for i, lo := range spec.Minimum {
		if math.IsInf(lo, 0) {
			lo = FallbackMinimum
		}
		lower[i] = lo
	}
	for i, hi := range spec.Maximum {
		if math.IsInf(hi, 0) {
			hi = FallbackMaximum
		}
		upper[i] = hi
	}
	return lower, upper
}

// UniformRandom returns a policy drawing each action element uniformly from
// its effective bounds. A non-nil seed makes the action sequence
// reproducible; with a nil seed the generator is seeded randomly.
// The returned policy ignores the TimeStep it is given.
func UniformRandom(spec env.BoundedArraySpec, seed *int64) Policy {
	lower, upper := EffectiveBounds(spec)
	src := NewSource(seed)
	dims := make([]distuv.Uniform, len(lower))
	for i := range dims {
		dims[i] = distuv.Uniform{Min: lower[i], Max: upper[i], Src: src}
	}
	return func(env.TimeStep) []float64 {
		action := make([]float64, len(dims))
		for i, d := range dims {
			action[i] = d.Rand()
		}
		return action
	}
}

// Zeros returns a policy that always emits the all-zero action.
func Zeros(spec env.BoundedArraySpec) Policy {
	n := spec.Size()
	return func(env.TimeStep) []float64 {
		return make([]float64, n)
	}
}

// Seed returns a pointer to s, for use as an optional seed argument.
func Seed(s int64) *int64 {
	return &s
}

// NewSource returns a PCG source. A nil seed draws a random seed.
func NewSource(seed *int64) rand.Source {
	if seed == nil {
		return rand.NewPCG(rand.Uint64(), rand.Uint64())
	}
	s := uint64(*seed)
	return rand.NewPCG(s, s^0x9e3779b97f4a7c15)
}
