// Package testutil provides shared test infrastructure for the queuenet kernel:
// a scripted variate source and float assertion helpers used across sim/ and
// its sub-packages.
package testutil

import (
	"math"
	"testing"

	"github.com/queuenet/queuenet/sim/variate"
)

// ScriptedSource is a variate.Source that replays values queued per
// distribution type. Once a type's script runs out it falls back to a
// deterministic value: the lower bound for uniform_int, the mean otherwise.
// Every request is recorded in Calls.
type ScriptedSource struct {
	scripts map[string][]float64
	Calls   []variate.Distribution
}

// NewScriptedSource returns a source with no scripted values.
func NewScriptedSource() *ScriptedSource {
	return &ScriptedSource{scripts: make(map[string][]float64)}
}

// Push appends values returned by the next samples of distType.
func (s *ScriptedSource) Push(distType string, values ...float64) *ScriptedSource {
	s.scripts[distType] = append(s.scripts[distType], values...)
	return s
}

// Remaining returns the number of scripted values not yet consumed for distType.
func (s *ScriptedSource) Remaining(distType string) int {
	return len(s.scripts[distType])
}

// CallsOf counts the samples requested from distType.
func (s *ScriptedSource) CallsOf(distType string) int {
	n := 0
	for _, d := range s.Calls {
		if d.Type == distType {
			n++
		}
	}
	return n
}

func (s *ScriptedSource) Sample(d variate.Distribution) float64 {
	s.Calls = append(s.Calls, d)
	if q := s.scripts[d.Type]; len(q) > 0 {
		s.scripts[d.Type] = q[1:]
		return q[0]
	}
	if d.Type == variate.TypeUniformInt {
		return d.Params["min"]
	}
	return d.Mean()
}

// AssertFloat64Equal compares two float64 values with relative tolerance.
func AssertFloat64Equal(t *testing.T, name string, want, got, relTol float64) {
	t.Helper()
	if want == 0 && got == 0 {
		return
	}
	diff := math.Abs(want - got)
	maxVal := math.Max(math.Abs(want), math.Abs(got))
	if diff/maxVal > relTol {
		t.Errorf("%s: got %v, want %v (diff=%v, relDiff=%v)", name, got, want, diff, diff/maxVal)
	}
}
