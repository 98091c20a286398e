package scenario

import (
	"github.com/queuenet/queuenet/sim"
	"github.com/queuenet/queuenet/sim/variate"
)

// Passport holds one category's passport-control parameters.
type Passport struct {
	Weight  int
	Service variate.Distribution
	Reject  float64
}

// Airport is a passport hall with dedicated pools for citizens, foreigners and
// families, followed by a shared security scanner that screens every member
// of a group in turn.
type Airport struct {
	Groups    int
	Arrival   variate.Distribution
	Citizen   Passport
	Foreigner Passport
	Family    Passport
	// FamilySize draws the number of people in a family group.
	FamilySize    variate.Distribution
	ScanPerPerson variate.Distribution
	ScanReject    float64
}

// DefaultAirport returns the classic 300-group setup.
func DefaultAirport() Airport {
	return Airport{
		Groups:        300,
		Arrival:       variate.Uniform(1, 3),
		Citizen:       Passport{Weight: 60, Service: variate.Uniform(1, 2), Reject: 0.001},
		Foreigner:     Passport{Weight: 20, Service: variate.Uniform(3, 6), Reject: 0.05},
		Family:        Passport{Weight: 20, Service: variate.Uniform(4, 8), Reject: 0.01},
		FamilySize:    variate.UniformInt(2, 4),
		ScanPerPerson: variate.Uniform(1.5, 3),
		ScanReject:    0.02,
	}
}

// Config returns the network. Rejections are reported per station, so the
// passport and scanner tallies stay apart.
func (a Airport) Config() *sim.Config {
	scan := sim.StageConfig{Station: "scanner", Service: a.ScanPerPerson, PerIndividual: true, Reject: a.ScanReject}
	route := func(station string, p Passport) []sim.StageConfig {
		return []sim.StageConfig{{Station: station, Service: p.Service, Reject: p.Reject}, scan}
	}
	size := a.FamilySize
	return &sim.Config{
		Target:       a.Groups,
		InterArrival: a.Arrival,
		Stations: []sim.StationConfig{
			{Name: "citizens", Servers: 2},
			{Name: "foreigners", Servers: 1},
			{Name: "families", Servers: 1},
			{Name: "scanner", Servers: 3},
		},
		Categories: []sim.CategoryConfig{
			{Name: "citizen", Weight: a.Citizen.Weight, Route: route("citizens", a.Citizen)},
			{Name: "foreigner", Weight: a.Foreigner.Weight, Route: route("foreigners", a.Foreigner)},
			{Name: "family", Weight: a.Family.Weight, Size: &size, Route: route("families", a.Family)},
		},
	}
}

