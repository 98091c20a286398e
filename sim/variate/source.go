package variate

import (
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/distuv"
)

// Source produces one independent sample per call from the given law.
// Implementations must never return NaN, ±Inf or a negative value for a
// distribution that passed Validate.
type Source interface {
	Sample(d Distribution) float64
}

// RandSource samples using gonum's distuv laws over a PCG stream.
//
// Thread-safety: NOT thread-safe. Each simulation run owns its own RandSource.
type RandSource struct {
	src rand.Source
	rng *rand.Rand
}

// pcgIncrement is the second PCG word; the first is the caller's seed.
const pcgIncrement = 0x9e3779b97f4a7c15

// NewRandSource creates a deterministic source from a 64-bit seed.
func NewRandSource(seed uint64) *RandSource {
	src := rand.NewPCG(seed, pcgIncrement)
	return &RandSource{src: src, rng: rand.New(src)}
}

// Sample draws one value. Unknown types yield NaN, which the kernel reports as
// a sampling failure.
func (s *RandSource) Sample(d Distribution) float64 {
	p := d.Params
	switch d.Type {
	case TypeConstant:
		return p["value"]
	case TypeUniform:
		if p["min"] == p["max"] {
			return p["min"]
		}
		return distuv.Uniform{Min: p["min"], Max: p["max"], Src: s.src}.Rand()
	case TypeExponential:
		return distuv.Exponential{Rate: p["rate"], Src: s.src}.Rand()
	case TypeNormal:
		v := distuv.Normal{Mu: p["mean"], Sigma: p["std_dev"], Src: s.src}.Rand()
		// durations cannot be negative; the lower tail is folded onto zero
		return math.Max(0, v)
	case TypeErlang:
		k := p["k"]
		return distuv.Gamma{Alpha: k, Beta: k * p["rate"], Src: s.src}.Rand()
	case TypeUniformInt:
		lo, hi := int(p["min"]), int(p["max"])
		return float64(lo + s.rng.IntN(hi-lo+1))
	default:
		return math.NaN()
	}
}
