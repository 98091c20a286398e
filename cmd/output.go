package cmd

import (
	"fmt"
	"io"
	"sort"

	jsoniter "github.com/json-iterator/go"

	"github.com/queuenet/queuenet/sim"
	"github.com/queuenet/queuenet/sim/experiment"
	"github.com/queuenet/queuenet/sim/trace"
)

// Output formats accepted by --output.
const (
	outputText = "text"
	outputJSON = "json"
)

var jsonAPI = jsoniter.ConfigCompatibleWithStandardLibrary

func writeJSON(w io.Writer, v any) error {
	data, err := jsonAPI.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding output: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

func checkFormat(format string) error {
	if format != outputText && format != outputJSON {
		return fmt.Errorf("unknown output format %q (text, json)", format)
	}
	return nil
}

// runOutput is the JSON document written by `run --output json`.
type runOutput struct {
	Result *sim.Result         `json:"result"`
	Trace  *trace.TraceSummary `json:"trace,omitempty"`
}

func writeRunOutput(w io.Writer, format string, res *sim.Result, summary *trace.TraceSummary) error {
	if err := checkFormat(format); err != nil {
		return err
	}
	if format == outputJSON {
		return writeJSON(w, runOutput{Result: res, Trace: summary})
	}
	res.Print(w)
	if summary != nil {
		printTraceSummary(w, summary)
	}
	return nil
}

func printTraceSummary(w io.Writer, s *trace.TraceSummary) {
	fmt.Fprintln(w, "=== Trace Summary ===")
	fmt.Fprintf(w, "Events               : %d (%d arrivals, %d stage completions)\n", s.TotalEvents, s.Arrivals, s.StageDones)
	fmt.Fprintf(w, "Clock monotone       : %t\n", s.ClockMonotone)
	fmt.Fprintf(w, "Idle beside a queue  : %d\n", s.IdleWithQueue)
	outcomes := make([]string, 0, len(s.Outcomes))
	for o := range s.Outcomes {
		outcomes = append(outcomes, o)
	}
	sort.Strings(outcomes)
	for _, o := range outcomes {
		fmt.Fprintf(w, "  %-18s : %d groups, %d individuals\n", o, s.Outcomes[o], s.People[o])
	}
}

func writeReport(w io.Writer, format string, report *experiment.Report) error {
	if err := checkFormat(format); err != nil {
		return err
	}
	if format == outputJSON {
		return writeJSON(w, report)
	}
	report.Summary.Print(w)
	return nil
}

// comparison is the JSON document written by `stepped --output json`.
type comparison struct {
	Event   *sim.Result        `json:"event"`
	Stepped *sim.SteppedResult `json:"stepped"`
}

func writeComparison(w io.Writer, format string, event *sim.Result, stepped *sim.SteppedResult, dt float64) error {
	if err := checkFormat(format); err != nil {
		return err
	}
	if format == outputJSON {
		return writeJSON(w, comparison{Event: event, Stepped: stepped})
	}
	eventMax := 0
	if len(event.Stations) > 0 {
		eventMax = event.Stations[0].MaxQueue
	}
	fmt.Fprintln(w, "=== Feedback Queue ===")
	fmt.Fprintf(w, "%-22s %10s %10s\n", "model", "processed", "max_queue")
	fmt.Fprintf(w, "%-22s %10d %10d\n", "event", event.Processed, eventMax)
	fmt.Fprintf(w, "%-22s %10d %10d\n", fmt.Sprintf("stepped (dt=%g)", dt), stepped.Processed, stepped.MaxQueue)
	return nil
}
