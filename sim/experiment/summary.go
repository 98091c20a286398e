package experiment

import (
	"fmt"
	"io"
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/queuenet/queuenet/sim"
)

// Estimate is the sample mean and standard deviation of one figure across replications.
type Estimate struct {
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"std_dev"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
}

// Summary aggregates the figures reported by each replication.
type Summary struct {
	Replications          int                 `json:"replications"`
	Processed             Estimate            `json:"processed"`
	SucceededGroups       Estimate            `json:"succeeded_groups"`
	SucceededIndividuals  Estimate            `json:"succeeded_individuals"`
	RejectedGroups        Estimate            `json:"rejected_groups"`
	RejectedIndividuals   Estimate            `json:"rejected_individuals"`
	RejectionRate         Estimate            `json:"rejection_rate"`
	Clock                 Estimate            `json:"clock"`
	Stations              []string            `json:"stations"`
	MaxQueue              map[string]Estimate `json:"max_queue"`
}

// estimate returns the mean and sample standard deviation of xs. A single
// observation has a standard deviation of zero.
func estimate(xs []float64) Estimate {
	if len(xs) == 0 {
		return Estimate{}
	}
	e := Estimate{Min: math.Inf(1), Max: math.Inf(-1)}
	for _, x := range xs {
		e.Min = math.Min(e.Min, x)
		e.Max = math.Max(e.Max, x)
	}
	if len(xs) == 1 {
		e.Mean = xs[0]
		return e
	}
	e.Mean, e.StdDev = stat.MeanStdDev(xs, nil)
	return e
}

// Summarize computes per-figure estimates over results. Stations are matched
// by name, in the order of the first result.
func Summarize(results []*sim.Result) Summary {
	s := Summary{Replications: len(results), MaxQueue: make(map[string]Estimate)}
	if len(results) == 0 {
		return s
	}
	column := func(f func(r *sim.Result) float64) []float64 {
		xs := make([]float64, len(results))
		for i, r := range results {
			xs[i] = f(r)
		}
		return xs
	}
	s.Processed = estimate(column(func(r *sim.Result) float64 { return float64(r.Processed) }))
	s.SucceededGroups = estimate(column(func(r *sim.Result) float64 { return float64(r.Succeeded.Groups) }))
	s.SucceededIndividuals = estimate(column(func(r *sim.Result) float64 { return float64(r.Succeeded.Individuals) }))
	s.RejectedGroups = estimate(column(func(r *sim.Result) float64 { return float64(r.Rejected().Groups) }))
	s.RejectedIndividuals = estimate(column(func(r *sim.Result) float64 { return float64(r.Rejected().Individuals) }))
	s.RejectionRate = estimate(column((*sim.Result).RejectionRate))
	s.Clock = estimate(column(func(r *sim.Result) float64 { return r.Clock }))
	for _, st := range results[0].Stations {
		name := st.Name
		s.Stations = append(s.Stations, name)
		s.MaxQueue[name] = estimate(column(func(r *sim.Result) float64 {
			got, _ := r.Station(name)
			return float64(got.MaxQueue)
		}))
	}
	return s
}

// Print writes the summary table.
func (s Summary) Print(w io.Writer) {
	fmt.Fprintf(w, "=== Replication Summary (n=%d) ===\n", s.Replications)
	row := func(label string, e Estimate) {
		fmt.Fprintf(w, "%-22s: mean=%.4f sd=%.4f min=%.4f max=%.4f\n", label, e.Mean, e.StdDev, e.Min, e.Max)
	}
	row("Processed", s.Processed)
	row("Succeeded groups", s.SucceededGroups)
	row("Succeeded individuals", s.SucceededIndividuals)
	row("Rejected groups", s.RejectedGroups)
	row("Rejected individuals", s.RejectedIndividuals)
	row("Rejection rate", s.RejectionRate)
	row("Final clock", s.Clock)
	for _, name := range s.Stations {
		row("Max queue "+name, s.MaxQueue[name])
	}
}
