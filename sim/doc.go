// Package sim provides the discrete-event kernel for stochastic service networks.
//
// # Reading Guide
//
// Start with these files to understand the kernel:
//   - event.go, event_queue.go: Arrival and StageDone events, ordered by (time, insertion sequence)
//   - station.go: server pools, FIFO wait queues, queue-or-block admission
//   - routing.go: weighted category draw and per-category station routes
//   - simulator.go: the event loop, handlers, stopping rule and Result
//
// # Configuration
//
// A network is described by Config (config.go), loaded from YAML with
// LoadConfig or built by the presets in sim/scenario. NewSimulator validates
// the whole configuration before any event exists; all configuration errors
// wrap ErrInvalidConfig.
//
// # Randomness
//
// Every random draw goes through a variate.Source. The kernel never owns a
// generator, so a run is fully determined by its Config and the values its
// Source returns. Tests use the scripted source in sim/internal/testutil.
//
// # Sub-packages
//   - sim/variate/: distribution descriptors, gonum-backed source, partitioned seeding
//   - sim/trace/: optional event and outcome recording
//   - sim/scenario/: preset networks (feedback queue, information center, airport)
//   - sim/experiment/: parallel independent replications and their summary
//
// RunStepped (stepped.go) is a separate fixed-Δt approximation of a single
// queue with feedback, kept for comparison with the event model.
package sim
