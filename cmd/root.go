package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/queuenet/queuenet/sim"
	"github.com/queuenet/queuenet/sim/experiment"
	"github.com/queuenet/queuenet/sim/scenario"
	"github.com/queuenet/queuenet/sim/trace"
	"github.com/queuenet/queuenet/sim/variate"
)

var (
	// CLI flags shared by the simulation commands
	seed         int64  // Master seed of the random streams
	logLevel     string // Log verbosity level
	scenarioName string // Preset network to run when no --config is given
	configPath   string // YAML network file
	target       int    // Overrides the configured target when > 0
	completion   string // Overrides the configured completion mode when set
	outputFormat string // text or json
	traceLevel   string // none, outcomes or events

	// CLI flags for replicate
	replications int // Number of independent runs
	parallelism  int // Concurrent runs (0 = GOMAXPROCS)

	// CLI flags for stepped
	step     float64 // Time step of the stepped model
	feedback float64 // Overrides the feedback probability of the feedback preset when >= 0
)

// rootCmd is the base command for the CLI
var rootCmd = &cobra.Command{
	Use:   "queuenet",
	Short: "Discrete-event simulator for stochastic service networks",
}

// setupLogging applies --log to the global logger.
func setupLogging() {
	level, err := logrus.ParseLevel(logLevel)
	if err != nil {
		logrus.Fatalf("Invalid log level: %s", logLevel)
	}
	logrus.SetLevel(level)
}

// loadNetwork resolves --config or --scenario and applies the CLI overrides.
func loadNetwork() (*sim.Config, error) {
	var (
		cfg *sim.Config
		err error
	)
	if configPath != "" {
		cfg, err = sim.LoadConfig(configPath)
	} else {
		cfg, err = scenario.Lookup(scenarioName)
	}
	if err != nil {
		return nil, err
	}
	if target > 0 {
		cfg.Target = target
	}
	if completion != "" {
		cfg.Completion = sim.CompletionMode(completion)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// signalContext is cancelled on interrupt so a long run stops consuming events.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt)
}

// runNetwork executes one simulation of cfg and writes its result to w.
func runNetwork(ctx context.Context, cfg *sim.Config, w io.Writer) error {
	if !trace.IsValidTraceLevel(traceLevel) {
		return fmt.Errorf("unknown trace level %q", traceLevel)
	}
	var opts []sim.Option
	var st *trace.SimulationTrace
	if level := trace.TraceLevel(traceLevel); level != "" && level != trace.TraceLevelNone {
		st = trace.NewSimulationTrace(trace.TraceConfig{Level: level})
		opts = append(opts, sim.WithTrace(st))
	}

	src := variate.NewPartitionedRNG(variate.NewSimulationKey(seed)).ForSubsystem(variate.SubsystemKernel)
	s, err := sim.NewSimulator(cfg, src, opts...)
	if err != nil {
		return err
	}
	res, err := s.Run(ctx)
	if err != nil {
		return err
	}

	var summary *trace.TraceSummary
	if st != nil {
		summary = trace.Summarize(st)
	}
	return writeRunOutput(w, outputFormat, res, summary)
}

// runCmd executes one simulation of a preset or a YAML network
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run one simulation of a network",
	Run: func(cmd *cobra.Command, args []string) {
		setupLogging()
		cfg, err := loadNetwork()
		if err != nil {
			logrus.Fatalf("Invalid network: %v", err)
		}
		ctx, stop := signalContext()
		defer stop()
		if err := runNetwork(ctx, cfg, cmd.OutOrStdout()); err != nil {
			logrus.Fatalf("Simulation failed: %v", err)
		}
		logrus.Info("Simulation complete.")
	},
}

// replicateCmd runs independent replications in parallel and summarizes them
var replicateCmd = &cobra.Command{
	Use:   "replicate",
	Short: "Run independent replications of a network and summarize them",
	Run: func(cmd *cobra.Command, args []string) {
		setupLogging()
		cfg, err := loadNetwork()
		if err != nil {
			logrus.Fatalf("Invalid network: %v", err)
		}
		ctx, stop := signalContext()
		defer stop()
		report, err := experiment.Replicate(ctx, cfg, experiment.Options{
			Replications: replications,
			Parallelism:  parallelism,
			Key:          variate.NewSimulationKey(seed),
		})
		if err != nil {
			logrus.Fatalf("Replication failed: %v", err)
		}
		if err := writeReport(cmd.OutOrStdout(), outputFormat, report); err != nil {
			logrus.Fatalf("Writing report: %v", err)
		}
	},
}

// runStepped runs the feedback preset both ways and writes the comparison to w.
func runStepped(ctx context.Context, f scenario.Feedback, w io.Writer) error {
	rng := variate.NewPartitionedRNG(variate.NewSimulationKey(seed))
	stepped, err := sim.RunStepped(ctx, f.Stepped(), rng.ForSubsystem("stepped"))
	if err != nil {
		return err
	}
	s, err := sim.NewSimulator(f.Config(), rng.ForSubsystem(variate.SubsystemKernel))
	if err != nil {
		return err
	}
	event, err := s.Run(ctx)
	if err != nil {
		return err
	}
	return writeComparison(w, outputFormat, event, stepped, f.Step)
}

// steppedCmd compares the event model of the feedback queue with its fixed-step form
var steppedCmd = &cobra.Command{
	Use:   "stepped",
	Short: "Compare the event-driven and fixed-step models of the feedback queue",
	Run: func(cmd *cobra.Command, args []string) {
		setupLogging()
		f := scenario.DefaultFeedback()
		if target > 0 {
			f.Tasks = target
		}
		if step > 0 {
			f.Step = step
		}
		if feedback >= 0 {
			f.Repeat = feedback
		}
		ctx, stop := signalContext()
		defer stop()
		if err := runStepped(ctx, f, cmd.OutOrStdout()); err != nil {
			logrus.Fatalf("Simulation failed: %v", err)
		}
	},
}

// Execute runs the CLI root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	for _, c := range []*cobra.Command{runCmd, replicateCmd, steppedCmd} {
		c.Flags().Int64Var(&seed, "seed", 42, "Master seed of the random streams")
		c.Flags().StringVar(&logLevel, "log", "warn", "Log level (trace, debug, info, warn, error, fatal, panic)")
		c.Flags().IntVar(&target, "target", 0, "Entities to process before stopping (0 keeps the configured value)")
		c.Flags().StringVar(&outputFormat, "output", "text", "Output format (text, json)")
	}
	for _, c := range []*cobra.Command{runCmd, replicateCmd} {
		c.Flags().StringVar(&scenarioName, "scenario", scenario.NameAirport, fmt.Sprintf("Preset network %v", scenario.Names()))
		c.Flags().StringVar(&configPath, "config", "", "YAML network file (overrides --scenario)")
		c.Flags().StringVar(&completion, "completion", "", "Completion mode once the target is met (abandon, drain)")
	}
	runCmd.Flags().StringVar(&traceLevel, "trace", "none", "Trace level (none, outcomes, events); prints a trace summary")

	replicateCmd.Flags().IntVarP(&replications, "replications", "n", 10, "Number of independent replications")
	replicateCmd.Flags().IntVarP(&parallelism, "parallelism", "p", 0, "Concurrent replications (0 = GOMAXPROCS)")

	steppedCmd.Flags().Float64Var(&step, "step", 0, "Time step (0 keeps the preset's 0.01)")
	steppedCmd.Flags().Float64Var(&feedback, "feedback", -1, "Feedback probability in [0, 1) (negative keeps the preset's value)")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(replicateCmd)
	rootCmd.AddCommand(steppedCmd)
	rootCmd.AddCommand(scenariosCmd)
}
