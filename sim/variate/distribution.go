// Package variate describes the probability laws used by the simulation kernel
// and provides the random-variate sources that sample from them.
//
// The kernel never draws random numbers itself: every inter-arrival time,
// service duration, categorical draw and rejection draw goes through
// Source.Sample, so a test can replace the whole random stream with a script.
package variate

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// Distribution type names accepted in configuration files.
const (
	TypeConstant    = "constant"
	TypeUniform     = "uniform"
	TypeExponential = "exponential"
	TypeNormal      = "normal"
	TypeErlang      = "erlang"
	TypeUniformInt  = "uniform_int"
)

// MaxUniformInt bounds uniform_int parameters so that the range width fits an int
// on every platform.
const MaxUniformInt = math.MaxInt32 - 1

// Distribution is a descriptor of a named probability law.
// Params keys depend on Type:
//
//	constant     value
//	uniform      min, max          continuous on [min, max)
//	exponential  rate              mean 1/rate
//	normal       mean, std_dev
//	erlang       k, rate           sum of k exponentials, mean 1/rate
//	uniform_int  min, max          integers in [min, max]
type Distribution struct {
	Type   string             `yaml:"type" json:"type"`
	Params map[string]float64 `yaml:"params,omitempty" json:"params,omitempty"`
}

// Constant returns a zero-variance distribution.
func Constant(value float64) Distribution {
	return Distribution{Type: TypeConstant, Params: map[string]float64{"value": value}}
}

// Uniform returns a continuous uniform distribution on [min, max).
func Uniform(min, max float64) Distribution {
	return Distribution{Type: TypeUniform, Params: map[string]float64{"min": min, "max": max}}
}

// Exponential returns an exponential distribution with the given rate.
func Exponential(rate float64) Distribution {
	return Distribution{Type: TypeExponential, Params: map[string]float64{"rate": rate}}
}

// Normal returns a normal distribution.
func Normal(mean, stdDev float64) Distribution {
	return Distribution{Type: TypeNormal, Params: map[string]float64{"mean": mean, "std_dev": stdDev}}
}

// Erlang returns an Erlang distribution of order k whose mean is 1/rate.
func Erlang(k int, rate float64) Distribution {
	return Distribution{Type: TypeErlang, Params: map[string]float64{"k": float64(k), "rate": rate}}
}

// UniformInt returns a discrete uniform distribution on the closed range [min, max].
func UniformInt(min, max int) Distribution {
	return Distribution{Type: TypeUniformInt, Params: map[string]float64{"min": float64(min), "max": float64(max)}}
}

// requireParam checks that all required keys exist in a params map and are finite.
func requireParam(params map[string]float64, keys ...string) error {
	for _, k := range keys {
		v, ok := params[k]
		if !ok {
			return fmt.Errorf("distribution requires parameter %q", k)
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("parameter %q must be finite, got %v", k, v)
		}
	}
	return nil
}

func isInteger(v float64) bool {
	return v == math.Trunc(v)
}

// Validate reports whether the descriptor names a known law with well-formed
// parameters. Every distribution used for durations must also be non-negative,
// which Validate enforces for all types except normal (sources clamp normal
// samples at zero).
func (d Distribution) Validate() error {
	p := d.Params
	switch d.Type {
	case TypeConstant:
		if err := requireParam(p, "value"); err != nil {
			return err
		}
		if p["value"] < 0 {
			return fmt.Errorf("constant value must be >= 0, got %v", p["value"])
		}
	case TypeUniform:
		if err := requireParam(p, "min", "max"); err != nil {
			return err
		}
		if p["min"] < 0 {
			return fmt.Errorf("uniform min must be >= 0, got %v", p["min"])
		}
		if p["min"] > p["max"] {
			return fmt.Errorf("uniform min %v exceeds max %v", p["min"], p["max"])
		}
	case TypeExponential:
		if err := requireParam(p, "rate"); err != nil {
			return err
		}
		if p["rate"] <= 0 {
			return fmt.Errorf("exponential rate must be > 0, got %v", p["rate"])
		}
	case TypeNormal:
		if err := requireParam(p, "mean", "std_dev"); err != nil {
			return err
		}
		if p["std_dev"] < 0 {
			return fmt.Errorf("normal std_dev must be >= 0, got %v", p["std_dev"])
		}
	case TypeErlang:
		if err := requireParam(p, "k", "rate"); err != nil {
			return err
		}
		if p["k"] < 1 || !isInteger(p["k"]) {
			return fmt.Errorf("erlang k must be an integer >= 1, got %v", p["k"])
		}
		if p["rate"] <= 0 {
			return fmt.Errorf("erlang rate must be > 0, got %v", p["rate"])
		}
	case TypeUniformInt:
		if err := requireParam(p, "min", "max"); err != nil {
			return err
		}
		if !isInteger(p["min"]) || !isInteger(p["max"]) {
			return fmt.Errorf("uniform_int bounds must be integers, got [%v, %v]", p["min"], p["max"])
		}
		if p["min"] < 0 {
			return fmt.Errorf("uniform_int min must be >= 0, got %v", p["min"])
		}
		if p["max"] > MaxUniformInt {
			return fmt.Errorf("uniform_int max must be <= %d, got %v", MaxUniformInt, p["max"])
		}
		if p["min"] > p["max"] {
			return fmt.Errorf("uniform_int min %v exceeds max %v", p["min"], p["max"])
		}
	case "":
		return fmt.Errorf("distribution type is empty")
	default:
		return fmt.Errorf("unknown distribution type %q", d.Type)
	}
	return nil
}

// Mean returns the expected value of a valid distribution.
// A normal law reports its untruncated mean.
func (d Distribution) Mean() float64 {
	p := d.Params
	switch d.Type {
	case TypeConstant:
		return p["value"]
	case TypeUniform, TypeUniformInt:
		return (p["min"] + p["max"]) / 2
	case TypeExponential, TypeErlang:
		return 1 / p["rate"]
	case TypeNormal:
		return p["mean"]
	default:
		return math.NaN()
	}
}

// IsDeterministic is true for zero-variance laws.
func (d Distribution) IsDeterministic() bool {
	p := d.Params
	switch d.Type {
	case TypeConstant:
		return true
	case TypeUniform, TypeUniformInt:
		return p["min"] == p["max"]
	case TypeNormal:
		return p["std_dev"] == 0
	default:
		return false
	}
}

func (d Distribution) String() string {
	keys := make([]string, 0, len(d.Params))
	for k := range d.Params {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%g", k, d.Params[k]))
	}
	return fmt.Sprintf("%s(%s)", d.Type, strings.Join(parts, ", "))
}
