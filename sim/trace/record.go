// Package trace provides event-trace recording for post-run analysis of a simulation.
// This package has no dependencies on sim/; it stores pure data types.
package trace

// Event kinds as recorded.
const (
	KindArrival   = "arrival"
	KindStageDone = "stage_done"
)

// Entity outcomes as recorded.
const (
	OutcomeSuccess  = "success"
	OutcomeRejected = "rejected"
	OutcomeBlocked  = "blocked"
)

// StationState is the observable state of a station right after an event handler returned.
type StationState struct {
	Name     string
	QueueLen int
	Busy     int
	Servers  int
}

// EventRecord captures a single executed event.
type EventRecord struct {
	Seq      uint64
	Clock    float64
	Kind     string
	Station  string // empty for arrivals
	Server   int    // -1 when the event is not bound to a server
	EntityID int64
	Stations []StationState // nil unless the trace level is events
}

// OutcomeRecord captures an entity leaving the network.
type OutcomeRecord struct {
	EntityID int64
	Category string
	Size     int
	Clock    float64
	Outcome  string
	Station  string // station where the entity was rejected or last served
}
