package trace

// TraceSummary aggregates statistics from a SimulationTrace.
type TraceSummary struct {
	TotalEvents int `json:"total_events"`
	Arrivals    int `json:"arrivals"`
	StageDones  int `json:"stage_dones"`

	// ClockMonotone is false if any recorded event precedes its predecessor in time.
	ClockMonotone bool `json:"clock_monotone"`
	// IdleWithQueue counts snapshots where a station had a waiting entity and a free server.
	IdleWithQueue int  `json:"idle_with_queue"`

	MaxQueue map[string]int `json:"max_queue"` // station name → largest observed queue length
	Outcomes map[string]int `json:"outcomes"`  // outcome → entity count
	People   map[string]int `json:"people"`    // outcome → individual count
}

// Summarize computes aggregate statistics from a SimulationTrace.
// Safe for nil or empty traces (returns zero-value fields, ClockMonotone=true).
func Summarize(st *SimulationTrace) *TraceSummary {
	summary := &TraceSummary{
		ClockMonotone: true,
		MaxQueue:      make(map[string]int),
		Outcomes:      make(map[string]int),
		People:        make(map[string]int),
	}
	if st == nil {
		return summary
	}

	summary.TotalEvents = len(st.Events)
	for i, ev := range st.Events {
		switch ev.Kind {
		case KindArrival:
			summary.Arrivals++
		case KindStageDone:
			summary.StageDones++
		}
		if i > 0 && ev.Clock < st.Events[i-1].Clock {
			summary.ClockMonotone = false
		}
		for _, s := range ev.Stations {
			if s.QueueLen > summary.MaxQueue[s.Name] {
				summary.MaxQueue[s.Name] = s.QueueLen
			}
			if s.QueueLen > 0 && s.Busy < s.Servers {
				summary.IdleWithQueue++
			}
		}
	}

	for _, o := range st.Outcomes {
		summary.Outcomes[o.Outcome]++
		summary.People[o.Outcome] += o.Size
	}

	return summary
}
