// Package agent defines the per-agent view the coordination layer works from.
package agent

import (
	"github.com/wardenworks/outrider/internal/zone"
)

// Role determines what an agent does once it reaches its target zone.
type Role uint8

const (
	RoleHarvester Role = iota // Works a deposit until full, then returns
	RoleHauler                // Ferries harvested resources home
	RoleScout                 // Walks zones to refresh observations
)

// String returns the role name used in store keys and logs.
func (r Role) String() string {
	switch r {
	case RoleHarvester:
		return "harvester"
	case RoleHauler:
		return "hauler"
	case RoleScout:
		return "scout"
	default:
		return "unknown"
	}
}

// Snapshot is the read-only slice of agent state the coordination layer
// consumes each step. The world owns the agent; the layer never mutates it
// directly, only through movement and work orders.
type Snapshot struct {
	Name string `json:"name"`
	Role Role   `json:"role"`

	// Location
	Home zone.ID `json:"home"` // Zone the agent delivers to
	Zone zone.ID `json:"zone"` // Zone the agent currently occupies

	// Cargo
	Capacity float64 `json:"capacity"`
	Carried  float64 `json:"carried"`
}

// Full reports whether the agent cannot pick up any more cargo.
func (s Snapshot) Full() bool {
	return s.Capacity > 0 && s.Carried >= s.Capacity
}

// SpareCapacity returns how much more the agent can carry.
func (s Snapshot) SpareCapacity() float64 {
	if s.Carried >= s.Capacity {
		return 0
	}
	return s.Capacity - s.Carried
}
