package sim

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/queuenet/queuenet/sim/internal/testutil"
	"github.com/queuenet/queuenet/sim/trace"
	"github.com/queuenet/queuenet/sim/variate"
)

func mustRun(t *testing.T, cfg *Config, src variate.Source, opts ...Option) *Result {
	t.Helper()
	s, err := NewSimulator(cfg, src, opts...)
	require.NoError(t, err)
	res, err := s.Run(context.Background())
	require.NoError(t, err)
	return res
}

// airportConfig is a three-pool passport hall feeding a shared scanner, with
// random laws everywhere so that every code path draws.
func airportConfig(target int) *Config {
	pass := func(station string) StageConfig {
		return StageConfig{Station: station, Service: variate.Uniform(2, 6), Reject: 0.05}
	}
	scan := StageConfig{Station: "scanner", Service: variate.Exponential(1), PerIndividual: true, Reject: 0.02}
	return &Config{
		Target:       target,
		InterArrival: variate.Exponential(1),
		Stations: []StationConfig{
			{Name: "citizens", Servers: 2},
			{Name: "foreigners", Servers: 1},
			{Name: "families", Servers: 1},
			{Name: "scanner", Servers: 3},
		},
		Categories: []CategoryConfig{
			{Name: "citizen", Weight: 6, Route: []StageConfig{pass("citizens"), scan}},
			{Name: "foreigner", Weight: 3, Route: []StageConfig{pass("foreigners"), scan}},
			{Name: "family", Weight: 1, Size: ptr(variate.UniformInt(2, 5)), Route: []StageConfig{pass("families"), scan}},
		},
	}
}

func TestSimulator_SingleEntity(t *testing.T) {
	// GIVEN target=1, one server, fixed laws and no rejection
	cfg := singleStationConfig(1, variate.Constant(2), variate.Constant(3), 1, PolicyQueue)

	// WHEN the simulation runs
	res := mustRun(t, cfg, testutil.NewScriptedSource())

	// THEN exactly one entity was generated, processed and succeeded
	assert.Equal(t, 1, res.Generated)
	assert.Equal(t, 1, res.Processed)
	assert.Equal(t, Tally{Groups: 1, Individuals: 1}, res.Succeeded)
	assert.Equal(t, Tally{}, res.Rejected())
	desk, ok := res.Station("desk")
	require.True(t, ok)
	assert.Equal(t, 0, desk.MaxQueue)
	assert.Equal(t, 5.0, res.Clock)
	assert.Equal(t, StateDrained, res.State)
	assert.Equal(t, 0, res.Discarded)
}

func TestSimulator_DeterministicCadence_MaxQueueIsArithmetic(t *testing.T) {
	// GIVEN arrivals every 1 and service of 2 at a single server
	// After the arrival at time t, floor((t-1)/2) entities have left and one
	// is in service, so the queue holds floor(t/2).
	for _, target := range []int{2, 10, 25} {
		cfg := singleStationConfig(target, variate.Constant(1), variate.Constant(2), 1, PolicyQueue)

		// WHEN it runs to the target
		res := mustRun(t, cfg, testutil.NewScriptedSource())

		// THEN the largest queue is floor(target/2) and the last completion is at 1+2*target
		desk, _ := res.Station("desk")
		assert.Equal(t, target/2, desk.MaxQueue, "target %d", target)
		assert.Equal(t, float64(1+2*target), res.Clock, "target %d", target)
		assert.Equal(t, target, res.Succeeded.Groups)
	}
}

func TestSimulator_Overload_QueueGrowsAndTargetIsMet(t *testing.T) {
	// GIVEN target=100, service always longer than the inter-arrival time
	cfg := singleStationConfig(100, variate.Constant(1), variate.Constant(2), 1, PolicyQueue)
	st := trace.NewSimulationTrace(trace.TraceConfig{Level: trace.TraceLevelEvents})

	// WHEN the simulation runs with event tracing
	res := mustRun(t, cfg, testutil.NewScriptedSource(), WithTrace(st))

	// THEN the running maximum queue rises over the early arrivals
	var maxima []int
	running := 0
	for _, ev := range st.Events {
		if ev.Kind != trace.KindArrival || ev.Clock > 20 {
			continue
		}
		if q := ev.Stations[0].QueueLen; q > running {
			running = q
		}
		maxima = append(maxima, running)
	}
	require.NotEmpty(t, maxima)
	assert.Less(t, maxima[0], maxima[len(maxima)-1])
	assert.IsNonDecreasing(t, maxima)

	// AND every entity succeeds
	assert.Equal(t, 100, res.Succeeded.Groups)
	assert.GreaterOrEqual(t, res.Generated, 100)
}

func TestSimulator_BlockingStation_RejectsWhenFull(t *testing.T) {
	// GIVEN two blocking servers of service 10 and an arrival every 1
	cfg := singleStationConfig(50, variate.Constant(1), variate.Constant(10), 2, PolicyBlock)

	// WHEN it runs to 50 processed
	res := mustRun(t, cfg, testutil.NewScriptedSource())

	// THEN each 10-unit cycle completes 2 and blocks 8
	assert.Equal(t, 50, res.Generated)
	assert.Equal(t, 10, res.Succeeded.Groups)
	blocked := res.Rejection(ReasonBlocked, "desk")
	assert.Equal(t, 40, blocked.Groups)
	assert.Equal(t, res.Generated-2*5, blocked.Groups)
	desk, _ := res.Station("desk")
	assert.Equal(t, 0, desk.MaxQueue)
}

func TestSimulator_ProbabilisticRejection(t *testing.T) {
	// GIVEN a stage that rejects with probability 0.5 and scripted unit draws
	cfg := singleStationConfig(3, variate.Constant(1), variate.Constant(0.5), 1, PolicyQueue)
	cfg.Categories[0].Route[0].Reject = 0.5
	src := testutil.NewScriptedSource().Push(variate.TypeUniform, 0.1, 0.9, 0.3)

	// WHEN three entities pass
	res := mustRun(t, cfg, src)

	// THEN draws below the probability reject
	assert.Equal(t, 1, res.Succeeded.Groups)
	assert.Equal(t, Tally{Groups: 2, Individuals: 2}, res.Rejection(ReasonRejected, "desk"))
	assert.InDelta(t, 2.0/3.0, res.RejectionRate(), 1e-12)
}

func TestSimulator_ZeroProbabilities_DrawNothing(t *testing.T) {
	// GIVEN a single category with no rejection or feedback
	cfg := singleStationConfig(4, variate.Constant(1), variate.Constant(0.5), 1, PolicyQueue)
	src := testutil.NewScriptedSource()

	// WHEN it runs
	mustRun(t, cfg, src)

	// THEN only inter-arrival and service laws are sampled
	assert.Equal(t, 0, src.CallsOf(variate.TypeUniform))
	assert.Equal(t, 0, src.CallsOf(variate.TypeUniformInt))
}

func TestSimulator_Feedback_ReentersSameStation(t *testing.T) {
	// GIVEN feedback probability 0.5 and scripted unit draws
	cfg := singleStationConfig(2, variate.Constant(1), variate.Constant(0.25), 1, PolicyQueue)
	cfg.Categories[0].Route[0].Feedback = 0.5
	src := testutil.NewScriptedSource().Push(variate.TypeUniform, 0.2, 0.8, 0.9)

	// WHEN two entities pass
	res := mustRun(t, cfg, src)

	// THEN the first is served twice, and feedback does not count as processed
	assert.Equal(t, 1, res.Feedbacks)
	assert.Equal(t, 2, res.Processed)
	assert.Equal(t, 2.25, res.Clock)
	desk, _ := res.Station("desk")
	assert.Equal(t, 3, desk.Served)
}

func TestSimulator_Handoff_FollowsServingOperator(t *testing.T) {
	// GIVEN two operators with their own laws handing off to different computers
	cfg := &Config{
		Target:       2,
		InterArrival: variate.Constant(0.1),
		Stations: []StationConfig{
			{Name: "operators", Servers: 2, Policy: PolicyBlock,
				ServerService: []variate.Distribution{variate.Constant(1), variate.Constant(3)}},
			{Name: "c1", Servers: 1},
			{Name: "c2", Servers: 1},
		},
		Categories: []CategoryConfig{{
			Name:   "request",
			Weight: 1,
			Route: []StageConfig{
				{Station: "operators"},
				{Handoff: []string{"c1", "c2"}, Service: variate.Constant(0.5)},
			},
		}},
	}

	// WHEN two requests pass
	res := mustRun(t, cfg, testutil.NewScriptedSource())

	// THEN operator 0's request went to c1 and operator 1's to c2
	c1, _ := res.Station("c1")
	c2, _ := res.Station("c2")
	assert.Equal(t, 1, c1.Served)
	assert.Equal(t, 1, c2.Served)
	assert.Equal(t, 2, res.Succeeded.Groups)
	assert.InDelta(t, 3.7, res.Clock, 1e-9)
}

func TestSimulator_FeedbackOnHandoffStage_ReentersServingStation(t *testing.T) {
	// GIVEN two operators handing off to B (operator 0) or A (operator 1),
	// where the handoff stage feeds back with probability 0.5
	cfg := &Config{
		Target:       2,
		InterArrival: variate.Constant(0.1),
		Stations: []StationConfig{
			{Name: "ops", Servers: 2},
			{Name: "A", Servers: 1},
			{Name: "B", Servers: 1},
		},
		Categories: []CategoryConfig{{
			Name:   "request",
			Weight: 1,
			Route: []StageConfig{
				{Station: "ops", Service: variate.Constant(1)},
				{Handoff: []string{"B", "A"}, Service: variate.Constant(0.5), Feedback: 0.5},
			},
		}},
	}
	// entity 1 leaves B at 1.6; entity 2 feeds back at A at 1.7, then leaves at 2.2
	src := testutil.NewScriptedSource().Push(variate.TypeUniform, 0.9, 0.2, 0.9)
	st := trace.NewSimulationTrace(trace.TraceConfig{Level: trace.TraceLevelEvents})

	// WHEN both requests pass
	res := mustRun(t, cfg, src, WithTrace(st))

	// THEN the re-entry stays at A instead of following the handoff of A's server
	var stations []string
	for _, ev := range st.Events {
		if ev.Kind == trace.KindStageDone {
			stations = append(stations, ev.Station)
		}
	}
	assert.Equal(t, []string{"ops", "ops", "B", "A", "A"}, stations)
	a, _ := res.Station("A")
	b, _ := res.Station("B")
	assert.Equal(t, 2, a.Served)
	assert.Equal(t, 1, b.Served)
	assert.Equal(t, 1, res.Feedbacks)
	assert.Equal(t, 2, res.Succeeded.Groups)
	assert.InDelta(t, 2.2, res.Clock, 1e-9)
	assert.Equal(t, 0, src.Remaining(variate.TypeUniform))
}

func TestSimulator_FeedbackOnHandoffStage_IgnoresPoolSizeOfTarget(t *testing.T) {
	// GIVEN one operator handing off to a three-server pool C that feeds back
	cfg := &Config{
		Target:       2,
		InterArrival: variate.Constant(0.1),
		Stations: []StationConfig{
			{Name: "ops", Servers: 1},
			{Name: "C", Servers: 3},
		},
		Categories: []CategoryConfig{{
			Name:   "request",
			Weight: 1,
			Route: []StageConfig{
				{Station: "ops", Service: variate.Constant(0.05)},
				{Handoff: []string{"C"}, Service: variate.Constant(1), Feedback: 0.5},
			},
		}},
	}
	// entity 2 is served by C's server 1 and feeds back at 1.25
	src := testutil.NewScriptedSource().Push(variate.TypeUniform, 0.9, 0.2, 0.9)

	// WHEN the run proceeds
	res := mustRun(t, cfg, src)

	// THEN the re-entry is served again by C
	c, _ := res.Station("C")
	assert.Equal(t, 3, c.Served)
	assert.Equal(t, 1, res.Feedbacks)
	assert.Equal(t, 2, res.Succeeded.Groups)
	assert.InDelta(t, 2.25, res.Clock, 1e-9)
}

func TestSimulator_Abandon_DiscardsInFlightWork(t *testing.T) {
	// GIVEN unbounded arrivals faster than service and the default abandon mode
	cfg := singleStationConfig(3, variate.Constant(1), variate.Constant(2), 1, PolicyQueue)
	cfg.ArrivalLimit = UnboundedArrivals

	// WHEN the third completion happens at t=7
	res := mustRun(t, cfg, testutil.NewScriptedSource())

	// THEN the run stops there with entities still in the network
	assert.Equal(t, CompletionAbandon, res.Completion)
	assert.Equal(t, 3, res.Processed)
	assert.Equal(t, 7.0, res.Clock)
	assert.Equal(t, 3, res.InFlight)
	assert.Equal(t, 2, res.Discarded)
	assert.Equal(t, 7, res.Generated)
}

func TestSimulator_Drain_FinishesInFlightWork(t *testing.T) {
	// GIVEN the same network in drain mode
	cfg := singleStationConfig(3, variate.Constant(1), variate.Constant(2), 1, PolicyQueue)
	cfg.ArrivalLimit = UnboundedArrivals
	cfg.Completion = CompletionDrain

	// WHEN it runs
	res := mustRun(t, cfg, testutil.NewScriptedSource())

	// THEN arrivals stop at the target and everything already inside completes
	assert.Equal(t, CompletionDrain, res.Completion)
	assert.Equal(t, 0, res.InFlight)
	assert.Equal(t, 6, res.Processed)
	assert.Equal(t, 6, res.Arrived.Groups)
	assert.Equal(t, 13.0, res.Clock)
	assert.Equal(t, 1, res.Discarded)
}

func TestSimulator_SameSeed_IdenticalResults(t *testing.T) {
	// GIVEN the same network and seed
	run := func() *Result {
		return mustRun(t, airportConfig(400), variate.NewRandSource(20251016))
	}

	// WHEN it runs twice
	first, second := run(), run()

	// THEN the results are identical
	assert.Equal(t, first, second)
}

func TestSimulator_Airport_CountsAreConsistent(t *testing.T) {
	// GIVEN a multi-pool network with groups and rejections at two stages
	st := trace.NewSimulationTrace(trace.TraceConfig{Level: trace.TraceLevelEvents})

	// WHEN it runs
	res := mustRun(t, airportConfig(500), variate.NewRandSource(7), WithTrace(st))

	// THEN processed is successes plus every rejection class
	assert.Equal(t, 500, res.Processed)
	assert.Equal(t, res.Processed, res.Succeeded.Groups+res.Rejected().Groups)
	assert.GreaterOrEqual(t, res.Arrived.Individuals, res.Arrived.Groups)
	assert.LessOrEqual(t, res.Generated, 500)

	// AND the clock never runs backwards and no server idles beside a queue
	summary := trace.Summarize(st)
	assert.True(t, summary.ClockMonotone)
	assert.Equal(t, 0, summary.IdleWithQueue)
	assert.Equal(t, res.Processed, len(st.Outcomes))
	assert.Equal(t, res.Succeeded.Individuals, summary.People[trace.OutcomeSuccess])
	for _, s := range res.Stations {
		assert.Equal(t, s.MaxQueue, summary.MaxQueue[s.Name], s.Name)
	}
}

func TestNewSimulator_InvalidConfig_FailsBeforeRun(t *testing.T) {
	cfg := singleStationConfig(1, variate.Exponential(-2), variate.Constant(1), 1, PolicyQueue)

	_, err := NewSimulator(cfg, testutil.NewScriptedSource())
	assert.ErrorIs(t, err, ErrInvalidConfig)

	_, err = NewSimulator(nil, testutil.NewScriptedSource())
	assert.ErrorIs(t, err, ErrInvalidConfig)

	_, err = NewSimulator(singleStationConfig(1, variate.Constant(1), variate.Constant(1), 1, PolicyQueue), nil)
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestSimulator_Run_NegativeDraw_IsSamplingError(t *testing.T) {
	// GIVEN a source that returns a negative inter-arrival time
	cfg := singleStationConfig(3, variate.Exponential(1), variate.Constant(1), 1, PolicyQueue)
	src := testutil.NewScriptedSource().Push(variate.TypeExponential, 1, -0.5)

	// WHEN the simulation runs
	s, err := NewSimulator(cfg, src)
	require.NoError(t, err)
	_, err = s.Run(context.Background())

	// THEN it stops with a sampling error
	assert.ErrorIs(t, err, ErrSampling)
}

func TestSimulator_Run_NoEventsBeforeTarget_IsQueueUnderflow(t *testing.T) {
	// GIVEN target=2 but an engine allowed to generate a single arrival
	cfg := singleStationConfig(2, variate.Constant(1), variate.Constant(1), 1, PolicyQueue)
	singleArrival := func(s *Simulator) { s.arrivalLimit = 1 }
	s, err := NewSimulator(cfg, testutil.NewScriptedSource(), singleArrival)
	require.NoError(t, err)

	// WHEN the only entity finishes and the queue runs dry
	_, err = s.Run(context.Background())

	// THEN the run fails with ErrQueueUnderflow
	assert.ErrorIs(t, err, ErrQueueUnderflow)
	assert.Equal(t, 2.0, s.Clock)
}

func TestSimulator_Run_CancelledContext(t *testing.T) {
	s, err := NewSimulator(singleStationConfig(10, variate.Constant(1), variate.Constant(1), 1, PolicyQueue), testutil.NewScriptedSource())
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = s.Run(ctx)

	assert.ErrorIs(t, err, context.Canceled)
}

func TestSimulator_Run_Twice_Errors(t *testing.T) {
	s, err := NewSimulator(singleStationConfig(1, variate.Constant(1), variate.Constant(1), 1, PolicyQueue), testutil.NewScriptedSource())
	require.NoError(t, err)
	_, err = s.Run(context.Background())
	require.NoError(t, err)

	_, err = s.Run(context.Background())
	assert.Error(t, err)
}
