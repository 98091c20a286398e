// Tracks run-wide counters and per-station maxima, and renders the final summary.

package sim

import (
	"fmt"
	"io"
)

// Rejection reasons.
const (
	// ReasonRejected is a probabilistic rejection drawn after service at a stage.
	ReasonRejected = "rejected"
	// ReasonBlocked is an arrival turned away by a blocking-on-full station.
	ReasonBlocked = "blocked"
)

// Tally counts groups and the individuals they represent.
type Tally struct {
	Groups      int `json:"groups"`
	Individuals int `json:"individuals"`
}

func (t *Tally) add(size int) {
	t.Groups++
	t.Individuals += size
}

// statistics holds the monotone counters of a run. Mutated only by the
// simulator's event handlers.
type statistics struct {
	generated int   // arrivals scheduled
	arrived   Tally // arrivals handled
	processed int   // entities that reached a terminal outcome
	succeeded Tally
	feedbacks int
	// rejections[station][0] is blocked, [1] is rejected
	rejections [][2]Tally
}

func newStatistics(stations int) statistics {
	return statistics{rejections: make([][2]Tally, stations)}
}

func reasonSlot(reason string) int {
	if reason == ReasonBlocked {
		return 0
	}
	return 1
}

// RejectionTally is the count of one rejection cause.
type RejectionTally struct {
	Reason  string `json:"reason"`
	Station string `json:"station"`
	Tally
}

// StationResult is the end-of-run view of one station.
type StationResult struct {
	Name     string `json:"name"`
	Servers  int    `json:"servers"`
	Policy   string `json:"policy"`
	MaxQueue int    `json:"max_queue"`
	Served   int    `json:"served"`
	Queued   int    `json:"queued_at_end"`
	Busy     int    `json:"busy_at_end"`
}

// Result is the only state surfaced to callers once a run ends.
type Result struct {
	Generated  int            `json:"generated"`
	Arrived    Tally          `json:"arrived"`
	Processed  int            `json:"processed"`
	Succeeded  Tally          `json:"succeeded"`
	Feedbacks  int            `json:"feedbacks"`
	InFlight   int            `json:"in_flight"`
	Discarded  int            `json:"discarded_events"`
	Clock      float64        `json:"clock"`
	State      EngineState    `json:"state"`
	Completion CompletionMode `json:"completion"`

	Rejections []RejectionTally `json:"rejections"`
	Stations   []StationResult  `json:"stations"`
}

// Rejected sums every rejection cause.
func (r *Result) Rejected() Tally {
	var t Tally
	for _, rj := range r.Rejections {
		t.Groups += rj.Groups
		t.Individuals += rj.Individuals
	}
	return t
}

// Rejection returns the tally of one cause, zero if it never occurred.
func (r *Result) Rejection(reason, station string) Tally {
	for _, rj := range r.Rejections {
		if rj.Reason == reason && rj.Station == station {
			return rj.Tally
		}
	}
	return Tally{}
}

// RejectionsByReason sums the tallies of one reason over all stations.
func (r *Result) RejectionsByReason(reason string) Tally {
	var t Tally
	for _, rj := range r.Rejections {
		if rj.Reason == reason {
			t.Groups += rj.Groups
			t.Individuals += rj.Individuals
		}
	}
	return t
}

// RejectionRate is the fraction of processed groups that were rejected.
func (r *Result) RejectionRate() float64 {
	if r.Processed == 0 {
		return 0
	}
	return float64(r.Rejected().Groups) / float64(r.Processed)
}

// Station returns the result of the named station.
func (r *Result) Station(name string) (StationResult, bool) {
	for _, s := range r.Stations {
		if s.Name == name {
			return s, true
		}
	}
	return StationResult{}, false
}

// Print writes the terminal summary: counts and maxima only.
func (r *Result) Print(w io.Writer) {
	fmt.Fprintln(w, "=== Simulation Summary ===")
	fmt.Fprintf(w, "Generated            : %d\n", r.Generated)
	fmt.Fprintf(w, "Arrived              : %d groups, %d individuals\n", r.Arrived.Groups, r.Arrived.Individuals)
	fmt.Fprintf(w, "Processed            : %d\n", r.Processed)
	fmt.Fprintf(w, "Succeeded            : %d groups, %d individuals\n", r.Succeeded.Groups, r.Succeeded.Individuals)
	rejected := r.Rejected()
	fmt.Fprintf(w, "Rejected             : %d groups, %d individuals (rate %.4f)\n", rejected.Groups, rejected.Individuals, r.RejectionRate())
	for _, rj := range r.Rejections {
		fmt.Fprintf(w, "  %-8s at %-10s: %d groups, %d individuals\n", rj.Reason, rj.Station, rj.Groups, rj.Individuals)
	}
	if r.Feedbacks > 0 {
		fmt.Fprintf(w, "Feedbacks            : %d\n", r.Feedbacks)
	}
	fmt.Fprintf(w, "In flight at end     : %d\n", r.InFlight)
	fmt.Fprintf(w, "Final clock          : %.4f (%s, %s)\n", r.Clock, r.State, r.Completion)
	fmt.Fprintln(w, "=== Stations ===")
	for _, s := range r.Stations {
		fmt.Fprintf(w, "%-12s servers=%d policy=%s max_queue=%d served=%d\n", s.Name, s.Servers, s.Policy, s.MaxQueue, s.Served)
	}
}
