// Package scenario builds the preset networks shipped with queuenet.
//
// Each preset is a parameter struct whose defaults reproduce a classic
// laboratory model, and a Config method that lays the model out as stations
// and category routes for the generic kernel.
package scenario

import (
	"fmt"
	"sort"

	"github.com/queuenet/queuenet/sim"
)

// Preset names.
const (
	NameFeedback          = "feedback"
	NameInformationCenter = "infocenter"
	NameAirport           = "airport"
)

// presets maps each name to a builder of its default network.
var presets = map[string]func() *sim.Config{
	NameFeedback:          func() *sim.Config { return DefaultFeedback().Config() },
	NameInformationCenter: func() *sim.Config { return DefaultInformationCenter().Config() },
	NameAirport:           func() *sim.Config { return DefaultAirport().Config() },
}

// Names returns the preset names in sorted order.
func Names() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Lookup returns a fresh copy of the named preset's default network.
func Lookup(name string) (*sim.Config, error) {
	build, ok := presets[name]
	if !ok {
		return nil, fmt.Errorf("unknown scenario %q; valid scenarios: %v", name, Names())
	}
	return build(), nil
}
