package scenario

import (
	"github.com/queuenet/queuenet/sim"
	"github.com/queuenet/queuenet/sim/variate"
)

// InformationCenter is a pool of operators that turns clients away when all are
// busy. Operators 1 and 2 pass their requests to computer 1, operator 3 to
// computer 2; each computer has an unbounded accumulator.
type InformationCenter struct {
	Requests  int
	Arrival   variate.Distribution
	Operators [3]variate.Distribution
	Computers [2]variate.Distribution
}

// DefaultInformationCenter returns the classic 300-request setup.
func DefaultInformationCenter() InformationCenter {
	return InformationCenter{
		Requests: 300,
		Arrival:  variate.Uniform(8, 12),
		Operators: [3]variate.Distribution{
			variate.Uniform(15, 25),
			variate.Uniform(30, 50),
			variate.Uniform(20, 60),
		},
		Computers: [2]variate.Distribution{
			variate.Constant(15),
			variate.Constant(30),
		},
	}
}

// Config returns the network. Only the operator pool can reject, so
// Result.RejectionRate is the probability of refusal.
func (ic InformationCenter) Config() *sim.Config {
	return &sim.Config{
		Target:       ic.Requests,
		InterArrival: ic.Arrival,
		Stations: []sim.StationConfig{
			{Name: "operators", Servers: 3, Policy: sim.PolicyBlock, ServerService: ic.Operators[:]},
			{Name: "computer1", Servers: 1, ServerService: ic.Computers[:1]},
			{Name: "computer2", Servers: 1, ServerService: ic.Computers[1:]},
		},
		Categories: []sim.CategoryConfig{{
			Name:   "request",
			Weight: 1,
			Route: []sim.StageConfig{
				{Station: "operators"},
				{Handoff: []string{"computer1", "computer1", "computer2"}},
			},
		}},
	}
}
