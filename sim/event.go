package sim

import "fmt"

// EventKind discriminates the two things that can happen in the network.
type EventKind int

const (
	// KindArrival is a new entity entering the network.
	KindArrival EventKind = iota
	// KindStageDone is a server finishing service of an entity.
	KindStageDone
)

func (k EventKind) String() string {
	switch k {
	case KindArrival:
		return "arrival"
	case KindStageDone:
		return "stage_done"
	default:
		return fmt.Sprintf("EventKind(%d)", int(k))
	}
}

// Event is an immutable scheduled occurrence. Events are ordered by Time;
// ties are broken by the insertion sequence number assigned by EventQueue.Schedule,
// so a fixed random stream always replays identically.
type Event struct {
	Time    float64
	Kind    EventKind
	Station int     // station index, -1 for arrivals
	Server  int     // server index within the station, -1 for arrivals
	Entity  *Entity // nil for arrivals
	seq     uint64
}

// Seq returns the insertion sequence number (0 until scheduled).
func (e Event) Seq() uint64 {
	return e.seq
}

func (e Event) String() string {
	if e.Kind == KindArrival {
		return fmt.Sprintf("%s@%.4f#%d", e.Kind, e.Time, e.seq)
	}
	return fmt.Sprintf("%s@%.4f#%d(station=%d server=%d entity=%d)", e.Kind, e.Time, e.seq, e.Station, e.Server, e.Entity.ID)
}

func newArrivalEvent(time float64) Event {
	return Event{Time: time, Kind: KindArrival, Station: -1, Server: -1}
}

func newStageDoneEvent(time float64, station, server int, e *Entity) Event {
	return Event{Time: time, Kind: KindStageDone, Station: station, Server: server, Entity: e}
}
