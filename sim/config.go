package sim

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/queuenet/queuenet/sim/variate"
)

// CompletionMode decides what happens to in-flight work once the target is met.
type CompletionMode string

const (
	// CompletionAbandon stops on the count; pending events are discarded unread.
	CompletionAbandon CompletionMode = "abandon"
	// CompletionDrain stops generating arrivals and finishes every entity already in the network.
	CompletionDrain CompletionMode = "drain"
)

// ValidCompletionModes is the set of recognized completion modes ("" means abandon).
var ValidCompletionModes = map[CompletionMode]bool{"": true, CompletionAbandon: true, CompletionDrain: true}

// UnboundedArrivals as ArrivalLimit keeps generating arrivals until the run ends.
const UnboundedArrivals = -1

// Config is the complete description of a network and its stopping rule.
// Loaded from YAML via LoadConfig(path) or built by the scenario presets.
type Config struct {
	// Target is the number of entities that must be processed (succeeded or
	// rejected) before the run stops.
	Target int `yaml:"target" json:"target"`
	// ArrivalLimit caps the number of generated entities: 0 means Target,
	// UnboundedArrivals means no cap, any other value must be >= Target.
	ArrivalLimit int                  `yaml:"arrival_limit,omitempty" json:"arrival_limit,omitempty"`
	Completion   CompletionMode       `yaml:"completion,omitempty" json:"completion,omitempty"`
	InterArrival variate.Distribution `yaml:"inter_arrival" json:"inter_arrival"`
	Stations     []StationConfig      `yaml:"stations" json:"stations"`
	Categories   []CategoryConfig     `yaml:"categories" json:"categories"`
}

// StationConfig declares one station.
type StationConfig struct {
	Name    string      `yaml:"name" json:"name"`
	Servers int         `yaml:"servers" json:"servers"`
	Policy  QueuePolicy `yaml:"policy,omitempty" json:"policy,omitempty"`
	// ServerService optionally gives each server its own service law
	// (length must equal Servers). It overrides the stage law.
	ServerService []variate.Distribution `yaml:"server_service,omitempty" json:"server_service,omitempty"`
}

// CategoryConfig declares one entity category and its route.
type CategoryConfig struct {
	Name   string `yaml:"name" json:"name"`
	Weight int    `yaml:"weight" json:"weight"`
	// Size draws the number of individuals in a group; nil means 1.
	// Must be constant or uniform_int with a lower bound >= 1.
	Size  *variate.Distribution `yaml:"size,omitempty" json:"size,omitempty"`
	Route []StageConfig         `yaml:"route" json:"route"`
}

// StageConfig declares one station visit.
type StageConfig struct {
	// Station names the station of this stage. Mutually exclusive with Handoff.
	Station string `yaml:"station,omitempty" json:"station,omitempty"`
	// Handoff picks the station by the index of the server that completed the
	// previous stage: Handoff[i] is used after server i.
	Handoff []string `yaml:"handoff,omitempty" json:"handoff,omitempty"`
	// Service may be omitted when every candidate station overrides it per server.
	Service       variate.Distribution `yaml:"service,omitempty" json:"service,omitempty"`
	PerIndividual bool                 `yaml:"per_individual,omitempty" json:"per_individual,omitempty"`
	// Reject is the probability of rejecting the entity after service here.
	Reject float64 `yaml:"reject,omitempty" json:"reject,omitempty"`
	// Feedback is the probability that an entity not rejected here is served
	// again at the same station instead of advancing.
	Feedback float64 `yaml:"feedback,omitempty" json:"feedback,omitempty"`
}

// LoadConfig reads and validates a YAML network file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading network config: %w", err)
	}
	return ParseConfig(data)
}

// ParseConfig decodes YAML with strict field checking and validates the result.
func ParseConfig(data []byte) (*Config, error) {
	var cfg Config
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: empty network config", ErrInvalidConfig)
		}
		return nil, fmt.Errorf("%w: parsing network config: %v", ErrInvalidConfig, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// YAML encodes the configuration in the format LoadConfig reads.
func (c *Config) YAML() ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(c); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// EffectiveArrivalLimit resolves the 0 default of ArrivalLimit.
func (c *Config) EffectiveArrivalLimit() int {
	if c.ArrivalLimit == 0 {
		return c.Target
	}
	return c.ArrivalLimit
}

// EffectiveCompletion resolves the "" default of Completion.
func (c *Config) EffectiveCompletion() CompletionMode {
	if c.Completion == "" {
		return CompletionAbandon
	}
	return c.Completion
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidConfig, fmt.Sprintf(format, args...))
}

// Validate checks every range and cross-reference of the configuration.
// All returned errors wrap ErrInvalidConfig.
func (c *Config) Validate() error {
	if c.Target < 1 {
		return invalid("target must be >= 1, got %d", c.Target)
	}
	if c.ArrivalLimit != 0 && c.ArrivalLimit != UnboundedArrivals && c.ArrivalLimit < c.Target {
		return invalid("arrival_limit %d is below target %d; the target could never be reached", c.ArrivalLimit, c.Target)
	}
	if !ValidCompletionModes[c.Completion] {
		return invalid("unknown completion mode %q", c.Completion)
	}
	if err := c.InterArrival.Validate(); err != nil {
		return invalid("inter_arrival: %v", err)
	}
	if c.InterArrival.Mean() <= 0 {
		return invalid("inter_arrival must have a positive mean, got %s", c.InterArrival)
	}

	if len(c.Stations) == 0 {
		return invalid("at least one station is required")
	}
	stations := make(map[string]StationConfig, len(c.Stations))
	for i, s := range c.Stations {
		if s.Name == "" {
			return invalid("station %d has no name", i)
		}
		if _, dup := stations[s.Name]; dup {
			return invalid("duplicate station %q", s.Name)
		}
		if s.Servers < 1 {
			return invalid("station %q must have at least one server, got %d", s.Name, s.Servers)
		}
		if !ValidQueuePolicies[s.Policy] {
			return invalid("station %q: unknown policy %q", s.Name, s.Policy)
		}
		if len(s.ServerService) != 0 && len(s.ServerService) != s.Servers {
			return invalid("station %q: server_service has %d entries for %d servers", s.Name, len(s.ServerService), s.Servers)
		}
		for j, d := range s.ServerService {
			if err := d.Validate(); err != nil {
				return invalid("station %q server %d service: %v", s.Name, j, err)
			}
		}
		stations[s.Name] = s
	}

	if len(c.Categories) == 0 {
		return invalid("at least one category is required")
	}
	seen := make(map[string]bool, len(c.Categories))
	totalWeight := 0
	for _, cat := range c.Categories {
		if cat.Name == "" {
			return invalid("category has no name")
		}
		if seen[cat.Name] {
			return invalid("duplicate category %q", cat.Name)
		}
		seen[cat.Name] = true
		if cat.Weight < 0 {
			return invalid("category %q: weight must be >= 0, got %d", cat.Name, cat.Weight)
		}
		totalWeight += cat.Weight
		if err := validateSize(cat.Size); err != nil {
			return invalid("category %q size: %v", cat.Name, err)
		}
		if len(cat.Route) == 0 {
			return invalid("category %q has no routing entry", cat.Name)
		}
		for k := range cat.Route {
			if err := validateStage(stations, cat.Route, k); err != nil {
				return invalid("category %q stage %d: %v", cat.Name, k, err)
			}
		}
	}
	if totalWeight == 0 {
		return invalid("category weights are all zero")
	}
	if totalWeight-1 > variate.MaxUniformInt {
		return invalid("category weights sum to %d, above %d", totalWeight, variate.MaxUniformInt+1)
	}
	return nil
}

// Deterministic reports whether every run of c follows the same path: all
// laws have zero variance, at most one category can be drawn, and every
// rejection or feedback probability is 0 or 1.
func (c *Config) Deterministic() bool {
	if !c.InterArrival.IsDeterministic() {
		return false
	}
	for _, s := range c.Stations {
		for _, d := range s.ServerService {
			if !d.IsDeterministic() {
				return false
			}
		}
	}
	drawable := 0
	for _, cat := range c.Categories {
		if cat.Weight > 0 {
			drawable++
		}
		if cat.Size != nil && !cat.Size.IsDeterministic() {
			return false
		}
		for _, st := range cat.Route {
			if st.Service.Type != "" && !st.Service.IsDeterministic() {
				return false
			}
			if (st.Reject != 0 && st.Reject != 1) || st.Feedback != 0 {
				return false
			}
		}
	}
	return drawable <= 1
}

func validateSize(d *variate.Distribution) error {
	if d == nil {
		return nil
	}
	if d.Type != variate.TypeConstant && d.Type != variate.TypeUniformInt {
		return fmt.Errorf("must be constant or uniform_int, got %q", d.Type)
	}
	if err := d.Validate(); err != nil {
		return err
	}
	lo := d.Params["value"]
	if d.Type == variate.TypeUniformInt {
		lo = d.Params["min"]
	}
	if lo < 1 || lo != float64(int(lo)) {
		return fmt.Errorf("smallest group size must be an integer >= 1, got %v", lo)
	}
	return nil
}

func validateStage(stations map[string]StationConfig, route []StageConfig, k int) error {
	stage := route[k]
	var candidates []string
	switch {
	case stage.Station != "" && len(stage.Handoff) > 0:
		return fmt.Errorf("station and handoff are mutually exclusive")
	case stage.Station != "":
		candidates = []string{stage.Station}
	case len(stage.Handoff) > 0:
		if k == 0 {
			return fmt.Errorf("handoff needs a previous stage")
		}
		prev := route[k-1]
		if prev.Station == "" {
			return fmt.Errorf("handoff must follow a stage with a fixed station")
		}
		if n := stations[prev.Station].Servers; len(stage.Handoff) != n {
			return fmt.Errorf("handoff has %d entries for %d servers of %q", len(stage.Handoff), n, prev.Station)
		}
		candidates = stage.Handoff
	default:
		return fmt.Errorf("no station given")
	}

	for _, name := range candidates {
		s, ok := stations[name]
		if !ok {
			return fmt.Errorf("unknown station %q", name)
		}
		if stage.Service.Type == "" && len(s.ServerService) == 0 {
			return fmt.Errorf("no service law and station %q has no per-server laws", name)
		}
	}
	if stage.Service.Type != "" {
		if err := stage.Service.Validate(); err != nil {
			return fmt.Errorf("service: %v", err)
		}
	}
	if stage.Reject < 0 || stage.Reject > 1 {
		return fmt.Errorf("reject probability must be in [0, 1], got %v", stage.Reject)
	}
	if stage.Feedback < 0 || stage.Feedback >= 1 {
		return fmt.Errorf("feedback probability must be in [0, 1), got %v", stage.Feedback)
	}
	return nil
}
