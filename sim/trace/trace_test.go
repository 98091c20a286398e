package trace

import (
	"testing"
)

func TestSimulationTrace_RecordEvent_AppendsRecord(t *testing.T) {
	// GIVEN a trace configured for events
	st := NewSimulationTrace(TraceConfig{Level: TraceLevelEvents})

	// WHEN an event record is recorded
	st.RecordEvent(EventRecord{Seq: 1, Clock: 10, Kind: KindArrival, Server: -1, EntityID: 1})

	// THEN the trace contains one event record with correct data
	if len(st.Events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(st.Events))
	}
	if st.Events[0].Kind != KindArrival || st.Events[0].EntityID != 1 {
		t.Errorf("unexpected record %+v", st.Events[0])
	}
}

func TestSimulationTrace_RecordOutcome_PreservesOrder(t *testing.T) {
	st := NewSimulationTrace(TraceConfig{Level: TraceLevelOutcomes})

	st.RecordOutcome(OutcomeRecord{EntityID: 2, Outcome: OutcomeSuccess, Size: 1})
	st.RecordOutcome(OutcomeRecord{EntityID: 1, Outcome: OutcomeRejected, Size: 3})

	if len(st.Outcomes) != 2 {
		t.Fatalf("expected 2 outcomes, got %d", len(st.Outcomes))
	}
	if st.Outcomes[0].EntityID != 2 || st.Outcomes[1].EntityID != 1 {
		t.Error("outcome order not preserved")
	}
}

func TestSimulationTrace_LevelGates(t *testing.T) {
	tests := []struct {
		level        TraceLevel
		wantEvents   bool
		wantOutcomes bool
	}{
		{TraceLevelNone, false, false},
		{"", false, false},
		{TraceLevelOutcomes, false, true},
		{TraceLevelEvents, true, true},
	}
	for _, tt := range tests {
		t.Run(string(tt.level), func(t *testing.T) {
			st := NewSimulationTrace(TraceConfig{Level: tt.level})
			if got := st.RecordsEvents(); got != tt.wantEvents {
				t.Errorf("RecordsEvents() = %v, want %v", got, tt.wantEvents)
			}
			if got := st.RecordsOutcomes(); got != tt.wantOutcomes {
				t.Errorf("RecordsOutcomes() = %v, want %v", got, tt.wantOutcomes)
			}
		})
	}
}

func TestSimulationTrace_NilIsSilent(t *testing.T) {
	var st *SimulationTrace
	if st.RecordsEvents() || st.RecordsOutcomes() {
		t.Error("nil trace must record nothing")
	}
}

func TestIsValidTraceLevel_ValidLevels(t *testing.T) {
	tests := []struct {
		level string
		valid bool
	}{
		{"none", true},
		{"outcomes", true},
		{"events", true},
		{"", true},
		{"decisions", false},
		{"EVENTS", false},
	}
	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			if got := IsValidTraceLevel(tt.level); got != tt.valid {
				t.Errorf("IsValidTraceLevel(%q) = %v, want %v", tt.level, got, tt.valid)
			}
		})
	}
}
