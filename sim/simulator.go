// sim/simulator.go
package sim

import (
	"context"
	"fmt"
	"math"

	"github.com/sirupsen/logrus"

	"github.com/queuenet/queuenet/sim/trace"
	"github.com/queuenet/queuenet/sim/variate"
)

// EngineState is the lifecycle state of a Simulator.
type EngineState string

const (
	// StateRunning is the state from construction until the stopping rule fires.
	StateRunning EngineState = "running"
	// StateDrained is terminal: the target was met and the loop stopped consuming events.
	StateDrained EngineState = "drained"
)

// unitInterval is the law of every rejection and feedback draw.
var unitInterval = variate.Uniform(0, 1)

// Option configures a Simulator.
type Option func(*Simulator)

// WithTrace records events and outcomes into st according to its level.
func WithTrace(st *trace.SimulationTrace) Option {
	return func(s *Simulator) {
		s.trace = st
	}
}

// Simulator is the core object that holds simulation time, network state, and the event loop.
// It is single-threaded: every handler runs to completion before the next event is popped.
type Simulator struct {
	Clock      float64
	EventQueue *EventQueue
	Stations   []*Station
	Routing    *RoutingTable
	State      EngineState

	src          variate.Source
	interArrival variate.Distribution
	target       int
	arrivalLimit int
	completion   CompletionMode

	stats        statistics
	inFlight     int  // arrived entities not yet terminal
	stopArrivals bool // drain mode: target met, arrivals are ignored
	discarded    int
	started      bool
	trace        *trace.SimulationTrace
}

// NewSimulator validates cfg, resolves the routing table and builds all
// stations. Configuration errors are returned here, before any event exists.
func NewSimulator(cfg *Config, src variate.Source, opts ...Option) (*Simulator, error) {
	if cfg == nil {
		return nil, fmt.Errorf("%w: config is nil", ErrInvalidConfig)
	}
	if src == nil {
		return nil, fmt.Errorf("%w: variate source is nil", ErrInvalidConfig)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	rt, err := NewRoutingTable(cfg)
	if err != nil {
		return nil, err
	}

	s := &Simulator{
		EventQueue:   NewEventQueue(),
		Stations:     make([]*Station, len(cfg.Stations)),
		Routing:      rt,
		State:        StateRunning,
		src:          src,
		interArrival: cfg.InterArrival,
		target:       cfg.Target,
		arrivalLimit: cfg.EffectiveArrivalLimit(),
		completion:   cfg.EffectiveCompletion(),
		stats:        newStatistics(len(cfg.Stations)),
	}
	for i, sc := range cfg.Stations {
		s.Stations[i] = NewStation(i, sc)
		if !rt.Reaches(i) {
			logrus.Warnf("station %q is not on the route of any category with positive weight", sc.Name)
		}
	}
	for _, c := range rt.Categories {
		for k, st := range c.Stages {
			if st.RejectProbability == 1 {
				logrus.Warnf("category %q stage %d rejects every entity; the category never succeeds", c.Name, k)
				break
			}
		}
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Schedule pushes an event into the simulator's EventQueue.
func (sim *Simulator) Schedule(ev Event) {
	sim.EventQueue.Schedule(ev)
}

// Run drives the event loop until the stopping rule fires and returns the
// result. A Simulator runs once; cancelling ctx stops consumption and returns
// ctx.Err().
func (sim *Simulator) Run(ctx context.Context) (*Result, error) {
	if sim.started {
		return nil, fmt.Errorf("simulator already ran")
	}
	sim.started = true

	logrus.Infof("Starting simulation: target=%d, arrival limit=%d, completion=%s, stations=%d, categories=%d",
		sim.target, sim.arrivalLimit, sim.completion, len(sim.Stations), len(sim.Routing.Categories))

	first, err := sim.sample(sim.interArrival, "inter-arrival")
	if err != nil {
		return nil, err
	}
	sim.Schedule(newArrivalEvent(first))
	sim.stats.generated = 1

	for !sim.finished() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		ev, ok := sim.EventQueue.PopEarliest()
		if !ok {
			return nil, fmt.Errorf("%w: processed %d of %d at t=%.4f with %d in flight",
				ErrQueueUnderflow, sim.stats.processed, sim.target, sim.Clock, sim.inFlight)
		}
		if ev.Time < sim.Clock {
			return nil, fmt.Errorf("%w: event %s popped at clock %.4f", ErrClockRegression, ev, sim.Clock)
		}
		sim.Clock = ev.Time
		logrus.Debugf("[t=%.4f] Executing %s", sim.Clock, ev)

		switch ev.Kind {
		case KindArrival:
			err = sim.handleArrival(ev)
		case KindStageDone:
			err = sim.handleStageDone(ev)
		default:
			err = fmt.Errorf("unknown event kind %v", ev.Kind)
		}
		if err != nil {
			return nil, err
		}
		sim.recordEvent(ev)
	}

	if sim.completion == CompletionDrain {
		for _, st := range sim.Stations {
			if !st.Idle() {
				return nil, fmt.Errorf("station %q still holds %d busy and %d waiting after drain",
					st.Name, st.BusyCount(), st.QueueLen())
			}
		}
	}
	sim.State = StateDrained
	if next, ok := sim.EventQueue.Peek(); ok {
		logrus.Debugf("[t=%.4f] Discarding %d pending events, next %s", sim.Clock, sim.EventQueue.Len(), next)
	}
	sim.discarded += sim.EventQueue.Clear()
	logrus.Infof("[t=%.4f] Simulation ended: processed=%d, succeeded=%d, discarded events=%d",
		sim.Clock, sim.stats.processed, sim.stats.succeeded.Groups, sim.discarded)
	return sim.Result(), nil
}

// finished applies the stopping rule. In drain mode reaching the target only
// stops arrivals; the run ends once nothing is left in the network.
func (sim *Simulator) finished() bool {
	if sim.stats.processed < sim.target {
		return false
	}
	if sim.completion == CompletionAbandon {
		return true
	}
	sim.stopArrivals = true
	return sim.inFlight == 0
}

func (sim *Simulator) handleArrival(ev Event) error {
	if sim.stopArrivals {
		sim.discarded++
		return nil
	}
	if sim.arrivalLimit == UnboundedArrivals || sim.stats.generated < sim.arrivalLimit {
		dt, err := sim.sample(sim.interArrival, "inter-arrival")
		if err != nil {
			return err
		}
		sim.Schedule(newArrivalEvent(ev.Time + dt))
		sim.stats.generated++
	}

	cat, err := sim.Routing.Draw(sim.src)
	if err != nil {
		return err
	}
	size, err := sim.Routing.SampleSize(cat, sim.src)
	if err != nil {
		return err
	}
	sim.stats.arrived.add(size)
	sim.inFlight++
	e := &Entity{
		ID:          int64(sim.stats.arrived.Groups),
		Category:    cat.Name,
		Size:        size,
		ArrivalTime: ev.Time,
		route:       cat,
		lastServer:  -1,
	}
	logrus.Debugf("<< Arrival: %s at %.4f", e, ev.Time)
	return sim.admit(e, ev.Time)
}

func (sim *Simulator) handleStageDone(ev Event) error {
	st := sim.Stations[ev.Station]
	next, ok, err := st.Release(ev.Server, ev.Time, sim.src)
	if err != nil {
		return err
	}
	if ok {
		sim.Schedule(next)
	}

	e := ev.Entity
	stage := e.currentStage()

	if stage.RejectProbability > 0 {
		u, err := sim.sample(unitInterval, "rejection")
		if err != nil {
			return err
		}
		if u < stage.RejectProbability {
			sim.terminate(e, ReasonRejected, st)
			return nil
		}
	}
	if stage.FeedbackProbability > 0 {
		u, err := sim.sample(unitInterval, "feedback")
		if err != nil {
			return err
		}
		if u < stage.FeedbackProbability {
			sim.stats.feedbacks++
			return sim.admitAt(e, ev.Station, ev.Time)
		}
	}

	e.lastServer = ev.Server
	e.stage++
	if e.stage == len(e.route.Stages) {
		sim.terminate(e, "", st)
		return nil
	}
	return sim.admit(e, ev.Time)
}

// admit offers e to the station of its current stage.
func (sim *Simulator) admit(e *Entity, now float64) error {
	idx, err := e.route.StationFor(e.stage, e.lastServer)
	if err != nil {
		return err
	}
	return sim.admitAt(e, idx, now)
}

// admitAt offers e to station idx. Feedback uses it directly: a re-entry goes
// back to the station that just served e, whatever a handoff would pick.
func (sim *Simulator) admitAt(e *Entity, idx int, now float64) error {
	st := sim.Stations[idx]
	ev, outcome, err := st.Admit(e, now, sim.src)
	if err != nil {
		return err
	}
	switch outcome {
	case AdmitServed:
		sim.Schedule(ev)
	case AdmitBlocked:
		sim.terminate(e, ReasonBlocked, st)
	}
	return nil
}

// terminate counts e as processed. An empty reason is a success.
func (sim *Simulator) terminate(e *Entity, reason string, st *Station) {
	sim.stats.processed++
	sim.inFlight--
	outcome := trace.OutcomeSuccess
	switch reason {
	case "":
		sim.stats.succeeded.add(e.Size)
	case ReasonBlocked:
		outcome = trace.OutcomeBlocked
		sim.stats.rejections[st.Index][reasonSlot(reason)].add(e.Size)
	default:
		outcome = trace.OutcomeRejected
		sim.stats.rejections[st.Index][reasonSlot(reason)].add(e.Size)
	}
	if sim.trace.RecordsOutcomes() {
		sim.trace.RecordOutcome(trace.OutcomeRecord{
			EntityID: e.ID,
			Category: e.Category,
			Size:     e.Size,
			Clock:    sim.Clock,
			Outcome:  outcome,
			Station:  st.Name,
		})
	}
}

// sample draws from d and rejects values the kernel cannot schedule with.
func (sim *Simulator) sample(d variate.Distribution, what string) (float64, error) {
	v := sim.src.Sample(d)
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0, fmt.Errorf("%w: %s draw %v from %s", ErrSampling, what, v, d)
	}
	return v, nil
}

func (sim *Simulator) recordEvent(ev Event) {
	if !sim.trace.RecordsEvents() {
		return
	}
	rec := trace.EventRecord{
		Seq:    ev.seq,
		Clock:  ev.Time,
		Kind:   trace.KindArrival,
		Server: ev.Server,
	}
	if ev.Kind == KindStageDone {
		rec.Kind = trace.KindStageDone
		rec.Station = sim.Stations[ev.Station].Name
		rec.EntityID = ev.Entity.ID
	}
	rec.Stations = make([]trace.StationState, len(sim.Stations))
	for i, st := range sim.Stations {
		rec.Stations[i] = st.snapshot()
	}
	sim.trace.RecordEvent(rec)
}

// Result builds the read-only view of the run.
func (sim *Simulator) Result() *Result {
	r := &Result{
		Generated:  sim.stats.generated,
		Arrived:    sim.stats.arrived,
		Processed:  sim.stats.processed,
		Succeeded:  sim.stats.succeeded,
		Feedbacks:  sim.stats.feedbacks,
		InFlight:   sim.inFlight,
		Discarded:  sim.discarded,
		Clock:      sim.Clock,
		State:      sim.State,
		Completion: sim.completion,
		Rejections: make([]RejectionTally, 0),
		Stations:   make([]StationResult, len(sim.Stations)),
	}
	for i, st := range sim.Stations {
		for slot, reason := range [2]string{ReasonBlocked, ReasonRejected} {
			if t := sim.stats.rejections[i][slot]; t.Groups > 0 {
				r.Rejections = append(r.Rejections, RejectionTally{Reason: reason, Station: st.Name, Tally: t})
			}
		}
		served := 0
		for _, srv := range st.Servers {
			served += srv.Served
		}
		r.Stations[i] = StationResult{
			Name:     st.Name,
			Servers:  len(st.Servers),
			Policy:   string(st.Policy),
			MaxQueue: st.MaxQueue,
			Served:   served,
			Queued:   st.QueueLen(),
			Busy:     st.BusyCount(),
		}
	}
	return r
}
