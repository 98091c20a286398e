// Package experiment runs independent replications of one network and
// aggregates their results.
package experiment

import (
	"context"
	"fmt"
	"runtime"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/queuenet/queuenet/sim"
	"github.com/queuenet/queuenet/sim/variate"
)

// Options controls a batch of replications.
type Options struct {
	// Replications is the number of independent runs (>= 1).
	Replications int
	// Parallelism bounds the number of concurrent runs; <= 0 means GOMAXPROCS.
	Parallelism int
	// Key seeds the batch. Replication i draws from the stream
	// variate.SubsystemReplication(i), so replication 0 matches a single run
	// with the same seed.
	Key variate.SimulationKey
}

// Replication is the outcome of one run.
type Replication struct {
	Index  int         `json:"index"`
	RunID  uuid.UUID   `json:"run_id"`
	Result *sim.Result `json:"result"`
}

// Report holds every replication in index order and their summary.
type Report struct {
	Replications []Replication `json:"replications"`
	Summary      Summary       `json:"summary"`
}

// Replicate runs opts.Replications independent copies of cfg. Each run owns
// its simulator and its random stream; nothing is shared between goroutines.
// The first failing run cancels the rest and its error is returned.
func Replicate(ctx context.Context, cfg *sim.Config, opts Options) (*Report, error) {
	if opts.Replications < 1 {
		return nil, fmt.Errorf("%w: replications must be >= 1, got %d", sim.ErrInvalidConfig, opts.Replications)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if opts.Replications > 1 && cfg.Deterministic() {
		logrus.Warnf("network has no randomness; all %d replications will be identical", opts.Replications)
	}
	parallelism := opts.Parallelism
	if parallelism <= 0 {
		parallelism = runtime.GOMAXPROCS(0)
	}

	// Sources are derived up front: PartitionedRNG is not safe for concurrent use.
	rng := variate.NewPartitionedRNG(opts.Key)
	sources := make([]*variate.RandSource, opts.Replications)
	for i := range sources {
		sources[i] = rng.ForSubsystem(variate.SubsystemReplication(i))
	}

	logrus.Infof("Running %d replications (parallelism %d, seed %d)", opts.Replications, parallelism, opts.Key)
	reps := make([]Replication, opts.Replications)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(parallelism)
	for i := range reps {
		g.Go(func() error {
			runID, err := uuid.NewV7()
			if err != nil {
				return fmt.Errorf("replication %d: run id: %w", i, err)
			}
			s, err := sim.NewSimulator(cfg, sources[i])
			if err != nil {
				return fmt.Errorf("replication %d: %w", i, err)
			}
			res, err := s.Run(gctx)
			if err != nil {
				return fmt.Errorf("replication %d (%s): %w", i, runID, err)
			}
			reps[i] = Replication{Index: i, RunID: runID, Result: res}
			logrus.Debugf("replication %d (%s) done: processed=%d clock=%.4f", i, runID, res.Processed, res.Clock)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	results := make([]*sim.Result, len(reps))
	for i, r := range reps {
		results[i] = r.Result
	}
	return &Report{Replications: reps, Summary: Summarize(results)}, nil
}
