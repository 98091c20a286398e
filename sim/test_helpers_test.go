package sim

import (
	"github.com/queuenet/queuenet/sim/variate"
)

// singleStageCategory returns a category visiting station index station once.
func singleStageCategory(station int, service variate.Distribution) *Category {
	return &Category{
		Name:   "client",
		Weight: 1,
		Stages: []Stage{{Station: station, Service: service}},
		upper:  1,
	}
}

func newTestEntity(id int64, cat *Category, size int) *Entity {
	return &Entity{ID: id, Category: cat.Name, Size: size, route: cat, lastServer: -1}
}

// singleStationConfig is one station, one category, fixed service law.
func singleStationConfig(target int, interArrival, service variate.Distribution, servers int, policy QueuePolicy) *Config {
	return &Config{
		Target:       target,
		InterArrival: interArrival,
		Stations:     []StationConfig{{Name: "desk", Servers: servers, Policy: policy}},
		Categories: []CategoryConfig{{
			Name:   "client",
			Weight: 1,
			Route:  []StageConfig{{Station: "desk", Service: service}},
		}},
	}
}
