package sim

import (
	"fmt"
	"math"

	"github.com/queuenet/queuenet/sim/trace"
	"github.com/queuenet/queuenet/sim/variate"
)

// QueuePolicy selects what a station does with an entity that finds every
// server busy.
type QueuePolicy string

const (
	// PolicyQueue appends the entity to an unbounded FIFO line.
	PolicyQueue QueuePolicy = "queue"
	// PolicyBlock rejects the entity on the spot; capacity equals the server count.
	PolicyBlock QueuePolicy = "block"
)

// ValidQueuePolicies is the set of recognized queue policy names ("" means queue).
var ValidQueuePolicies = map[QueuePolicy]bool{"": true, PolicyQueue: true, PolicyBlock: true}

// AdmitOutcome reports what Station.Admit did with an entity.
type AdmitOutcome int

const (
	// AdmitServed means a free server took the entity; a StageDone event was returned.
	AdmitServed AdmitOutcome = iota
	// AdmitQueued means the entity joined the wait queue.
	AdmitQueued
	// AdmitBlocked means the station is blocking-on-full and every server was busy.
	AdmitBlocked
)

func (o AdmitOutcome) String() string {
	switch o {
	case AdmitServed:
		return "served"
	case AdmitQueued:
		return "queued"
	case AdmitBlocked:
		return "blocked"
	default:
		return fmt.Sprintf("AdmitOutcome(%d)", int(o))
	}
}

// Server is one service slot of a station.
type Server struct {
	ID     int
	Busy   bool
	FreeAt float64
	Served int // completed services
	// Service, when non-nil, replaces the stage's service law for every entity
	// this server handles (per-operator rates).
	Service *variate.Distribution
}

// Station is a service point: a fixed pool of servers and a FIFO wait queue.
//
// Invariant: WaitQ is non-empty only while every server is busy.
type Station struct {
	Name     string
	Index    int
	Policy   QueuePolicy
	Servers  []*Server
	WaitQ    *WaitQueue
	MaxQueue int // largest wait queue length observed
}

// NewStation builds a station with all servers idle.
func NewStation(index int, cfg StationConfig) *Station {
	policy := cfg.Policy
	if policy == "" {
		policy = PolicyQueue
	}
	st := &Station{
		Name:    cfg.Name,
		Index:   index,
		Policy:  policy,
		Servers: make([]*Server, cfg.Servers),
		WaitQ:   &WaitQueue{},
	}
	for i := range st.Servers {
		srv := &Server{ID: i}
		if i < len(cfg.ServerService) {
			law := cfg.ServerService[i]
			srv.Service = &law
		}
		st.Servers[i] = srv
	}
	return st
}

// Admit offers an entity to the station at time now.
// The first free server in pool order takes it; otherwise the entity is queued,
// or blocked under PolicyBlock. The returned event is only meaningful for AdmitServed.
func (st *Station) Admit(e *Entity, now float64, src variate.Source) (Event, AdmitOutcome, error) {
	if st.AllBusy() {
		if st.Policy == PolicyBlock {
			return Event{}, AdmitBlocked, nil
		}
		st.WaitQ.Enqueue(e)
		if st.WaitQ.Len() > st.MaxQueue {
			st.MaxQueue = st.WaitQ.Len()
		}
		return Event{}, AdmitQueued, nil
	}
	ev, err := st.start(e, st.freeServer(), now, src)
	if err != nil {
		return Event{}, AdmitServed, err
	}
	return ev, AdmitServed, nil
}

// Release frees the given server at time now. If entities are waiting, the head
// of the queue is started on the same server and its StageDone event is returned
// with ok=true.
func (st *Station) Release(server int, now float64, src variate.Source) (ev Event, ok bool, err error) {
	if server < 0 || server >= len(st.Servers) {
		return Event{}, false, fmt.Errorf("station %q: release of unknown server %d", st.Name, server)
	}
	srv := st.Servers[server]
	if !srv.Busy {
		return Event{}, false, fmt.Errorf("station %q: release of idle server %d", st.Name, server)
	}
	srv.Busy = false
	srv.Served++

	next := st.WaitQ.Dequeue()
	if next == nil {
		return Event{}, false, nil
	}
	ev, err = st.start(next, srv, now, src)
	if err != nil {
		return Event{}, false, err
	}
	return ev, true, nil
}

// BusyCount returns the number of busy servers.
func (st *Station) BusyCount() int {
	n := 0
	for _, srv := range st.Servers {
		if srv.Busy {
			n++
		}
	}
	return n
}

// AllBusy reports whether no server is free.
func (st *Station) AllBusy() bool {
	return st.freeServer() == nil
}

// Idle reports whether no server is busy and nobody is waiting.
func (st *Station) Idle() bool {
	return st.WaitQ.Len() == 0 && st.BusyCount() == 0
}

// QueueLen returns the current wait queue length.
func (st *Station) QueueLen() int {
	return st.WaitQ.Len()
}

func (st *Station) freeServer() *Server {
	for _, srv := range st.Servers {
		if !srv.Busy {
			return srv
		}
	}
	return nil
}

func (st *Station) start(e *Entity, srv *Server, now float64, src variate.Source) (Event, error) {
	d, err := st.serviceTime(e, srv, src)
	if err != nil {
		return Event{}, err
	}
	srv.Busy = true
	srv.FreeAt = now + d
	return newStageDoneEvent(srv.FreeAt, st.Index, srv.ID, e), nil
}

// serviceTime samples the duration of e's current stage on srv. Per-individual
// stages draw once per member of the group and sum the draws.
func (st *Station) serviceTime(e *Entity, srv *Server, src variate.Source) (float64, error) {
	stage := e.currentStage()
	law := stage.Service
	if srv.Service != nil {
		law = *srv.Service
	}
	draws := 1
	if stage.PerIndividual {
		draws = e.Size
	}
	total := 0.0
	for i := 0; i < draws; i++ {
		v := src.Sample(law)
		if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
			return 0, fmt.Errorf("%w: station %q server %d drew %v from %s", ErrSampling, st.Name, srv.ID, v, law)
		}
		total += v
	}
	return total, nil
}

func (st *Station) snapshot() trace.StationState {
	return trace.StationState{
		Name:     st.Name,
		QueueLen: st.WaitQ.Len(),
		Busy:     st.BusyCount(),
		Servers:  len(st.Servers),
	}
}
