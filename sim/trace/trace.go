package trace

// TraceLevel controls the verbosity of event tracing.
type TraceLevel string

const (
	// TraceLevelNone disables tracing (zero overhead).
	TraceLevelNone TraceLevel = "none"
	// TraceLevelOutcomes captures one record per entity leaving the network.
	TraceLevelOutcomes TraceLevel = "outcomes"
	// TraceLevelEvents additionally captures every executed event with station snapshots.
	TraceLevelEvents TraceLevel = "events"
)

// validTraceLevels maps accepted trace level strings.
var validTraceLevels = map[TraceLevel]bool{
	TraceLevelNone:     true,
	TraceLevelOutcomes: true,
	TraceLevelEvents:   true,
	"":                 true, // empty defaults to none
}

// IsValidTraceLevel returns true if the given level string is a recognized trace level.
func IsValidTraceLevel(level string) bool {
	return validTraceLevels[TraceLevel(level)]
}

// TraceConfig controls trace collection behavior.
type TraceConfig struct {
	Level TraceLevel
}

// SimulationTrace collects records during a simulation run.
type SimulationTrace struct {
	Config   TraceConfig
	Events   []EventRecord
	Outcomes []OutcomeRecord
}

// NewSimulationTrace creates a SimulationTrace ready for recording.
func NewSimulationTrace(config TraceConfig) *SimulationTrace {
	return &SimulationTrace{
		Config:   config,
		Events:   make([]EventRecord, 0),
		Outcomes: make([]OutcomeRecord, 0),
	}
}

// RecordsEvents reports whether per-event records are wanted.
func (st *SimulationTrace) RecordsEvents() bool {
	return st != nil && st.Config.Level == TraceLevelEvents
}

// RecordsOutcomes reports whether per-entity outcome records are wanted.
func (st *SimulationTrace) RecordsOutcomes() bool {
	return st != nil && (st.Config.Level == TraceLevelOutcomes || st.Config.Level == TraceLevelEvents)
}

// RecordEvent appends an event record.
func (st *SimulationTrace) RecordEvent(record EventRecord) {
	st.Events = append(st.Events, record)
}

// RecordOutcome appends an outcome record.
func (st *SimulationTrace) RecordOutcome(record OutcomeRecord) {
	st.Outcomes = append(st.Outcomes, record)
}
