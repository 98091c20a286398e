package sim

import "errors"

// Sentinel errors. Callers match them with errors.Is; the engine always wraps
// them with the context of the failure.
var (
	// ErrInvalidConfig is returned by Config.Validate and NewSimulator before any event is scheduled.
	ErrInvalidConfig = errors.New("invalid configuration")
	// ErrSampling marks a variate source that returned a non-finite, negative or out-of-range value.
	ErrSampling = errors.New("invalid sample")
	// ErrQueueUnderflow marks an event queue that ran dry while the target was unmet.
	ErrQueueUnderflow = errors.New("event queue drained before target was reached")
	// ErrClockRegression marks an event popped earlier than the current clock.
	ErrClockRegression = errors.New("simulation clock moved backwards")
)
