package sim

import (
	"fmt"
	"math"

	"github.com/queuenet/queuenet/sim/variate"
)

// Stage is a resolved station visit of a category's route.
type Stage struct {
	Station             int   // station index, -1 when Handoff decides
	Handoff             []int // station index by the server that completed the previous stage
	Service             variate.Distribution
	PerIndividual       bool
	RejectProbability   float64
	FeedbackProbability float64
}

// Category is a resolved entity category.
type Category struct {
	Name   string
	Weight int
	Size   *variate.Distribution // nil means every entity has size 1
	Stages []Stage

	upper int // exclusive cumulative weight bound
}

// StationFor returns the station index of the given stage for an entity whose
// previous stage was completed by lastServer.
func (c *Category) StationFor(stage, lastServer int) (int, error) {
	if stage < 0 || stage >= len(c.Stages) {
		return 0, fmt.Errorf("category %q has no stage %d", c.Name, stage)
	}
	s := c.Stages[stage]
	if s.Station >= 0 {
		return s.Station, nil
	}
	if lastServer < 0 || lastServer >= len(s.Handoff) {
		return 0, fmt.Errorf("category %q stage %d: no handoff for server %d", c.Name, stage, lastServer)
	}
	return s.Handoff[lastServer], nil
}

// RoutingTable is the static category → route mapping, resolved once at
// simulator construction and read-only afterwards.
type RoutingTable struct {
	Categories  []*Category
	totalWeight int
}

// NewRoutingTable resolves station names of a validated Config into indices.
func NewRoutingTable(cfg *Config) (*RoutingTable, error) {
	index := make(map[string]int, len(cfg.Stations))
	for i, s := range cfg.Stations {
		index[s.Name] = i
	}
	lookup := func(name string) (int, error) {
		i, ok := index[name]
		if !ok {
			return 0, fmt.Errorf("%w: unknown station %q", ErrInvalidConfig, name)
		}
		return i, nil
	}

	rt := &RoutingTable{Categories: make([]*Category, 0, len(cfg.Categories))}
	for _, cc := range cfg.Categories {
		rt.totalWeight += cc.Weight
		cat := &Category{
			Name:   cc.Name,
			Weight: cc.Weight,
			Size:   cc.Size,
			Stages: make([]Stage, len(cc.Route)),
			upper:  rt.totalWeight,
		}
		for k, sc := range cc.Route {
			stage := Stage{
				Station:             -1,
				Service:             sc.Service,
				PerIndividual:       sc.PerIndividual,
				RejectProbability:   sc.Reject,
				FeedbackProbability: sc.Feedback,
			}
			if sc.Station != "" {
				idx, err := lookup(sc.Station)
				if err != nil {
					return nil, err
				}
				stage.Station = idx
			}
			for _, name := range sc.Handoff {
				idx, err := lookup(name)
				if err != nil {
					return nil, err
				}
				stage.Handoff = append(stage.Handoff, idx)
			}
			cat.Stages[k] = stage
		}
		rt.Categories = append(rt.Categories, cat)
	}
	if rt.totalWeight <= 0 {
		return nil, fmt.Errorf("%w: category weights are all zero", ErrInvalidConfig)
	}
	return rt, nil
}

// TotalWeight returns the sum of all category weights.
func (rt *RoutingTable) TotalWeight() int {
	return rt.totalWeight
}

// Draw selects a category: one uniform integer in [0, totalWeight) is drawn and
// the categories are walked in configuration order; the first whose cumulative
// upper bound exceeds the draw wins. A table with a single category consumes no
// randomness.
func (rt *RoutingTable) Draw(src variate.Source) (*Category, error) {
	if len(rt.Categories) == 1 {
		return rt.Categories[0], nil
	}
	v := src.Sample(variate.UniformInt(0, rt.totalWeight-1))
	if math.IsNaN(v) || v < 0 || v >= float64(rt.totalWeight) || v != math.Trunc(v) {
		return nil, fmt.Errorf("%w: categorical draw %v outside [0, %d)", ErrSampling, v, rt.totalWeight)
	}
	r := int(v)
	for _, c := range rt.Categories {
		if r < c.upper {
			return c, nil
		}
	}
	// unreachable: the last upper bound equals totalWeight
	return nil, fmt.Errorf("categorical draw %d not covered by weights", r)
}

// SampleSize draws the group size of a new entity of category c.
func (rt *RoutingTable) SampleSize(c *Category, src variate.Source) (int, error) {
	if c.Size == nil {
		return 1, nil
	}
	v := src.Sample(*c.Size)
	if math.IsNaN(v) || v < 1 || v != math.Trunc(v) || v > math.MaxInt32 {
		return 0, fmt.Errorf("%w: category %q size draw %v is not an integer >= 1", ErrSampling, c.Name, v)
	}
	return int(v), nil
}

// Reaches reports whether any category can visit station idx.
func (rt *RoutingTable) Reaches(idx int) bool {
	for _, c := range rt.Categories {
		if c.Weight == 0 {
			continue
		}
		for _, s := range c.Stages {
			if s.Station == idx {
				return true
			}
			for _, h := range s.Handoff {
				if h == idx {
					return true
				}
			}
		}
	}
	return false
}
