package scenario

import (
	"github.com/queuenet/queuenet/sim"
	"github.com/queuenet/queuenet/sim/variate"
)

// Feedback is a single server with an unbounded queue where a fraction of the
// completed tasks return to the queue tail.
type Feedback struct {
	Tasks     int
	Generator variate.Distribution
	Processor variate.Distribution
	// Repeat is the probability that a served task is served again.
	Repeat float64
	// Step is the time step of the stepped variant.
	Step float64
}

// DefaultFeedback returns 1000 tasks arriving uniform(0, 1) apart, served in
// normal(0.5, 0.1), without feedback, stepped at 0.01.
func DefaultFeedback() Feedback {
	return Feedback{
		Tasks:     1000,
		Generator: variate.Uniform(0, 1),
		Processor: variate.Normal(0.5, 0.1),
		Repeat:    0,
		Step:      0.01,
	}
}

// Stepped returns the fixed-step form of the model.
func (f Feedback) Stepped() sim.SteppedConfig {
	return sim.SteppedConfig{
		Target:       f.Tasks,
		InterArrival: f.Generator,
		Service:      f.Processor,
		Feedback:     f.Repeat,
		Step:         f.Step,
	}
}

// Config returns the event-driven network.
func (f Feedback) Config() *sim.Config {
	return f.Stepped().EventConfig()
}
