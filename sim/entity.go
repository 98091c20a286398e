package sim

import "fmt"

// Entity is a unit flowing through the network: one client, or a group of
// Size individuals that is served and rejected as a whole.
type Entity struct {
	ID          int64
	Category    string
	Size        int
	ArrivalTime float64

	route      *Category
	stage      int // index into route.Stages of the stage being visited
	lastServer int // server that completed the previous stage, -1 before the first; unchanged by feedback
}

// Stage returns the index of the routing stage the entity is visiting.
func (e *Entity) Stage() int {
	return e.stage
}

func (e *Entity) currentStage() *Stage {
	return &e.route.Stages[e.stage]
}

func (e *Entity) String() string {
	return fmt.Sprintf("%s#%d(size=%d, stage=%d)", e.Category, e.ID, e.Size, e.stage)
}
