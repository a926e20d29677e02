// Package zone defines the zone-level data model shared by the coordination
// layer and its collaborators: safety and ownership classifications, per-zone
// observations, routing results, and the provider interfaces the world must
// implement.
package zone

// ID uniquely names a zone. The coordination layer treats IDs as opaque;
// the world decides their shape (the generated world uses sector names
// like "E3S2").
type ID string

// SafetyStatus classifies a zone for planning purposes.
type SafetyStatus uint8

const (
	StatusUnknown      SafetyStatus = iota // Not currently observable; never treated as safe
	StatusSafe                             // Fresh observation, no hostile triggers
	StatusUnsafe                           // Fresh observation, at least one hostile trigger
	StatusInaccessible                     // No route from the querying side
)

// String returns the status name for logs and the inspect command.
func (s SafetyStatus) String() string {
	switch s {
	case StatusSafe:
		return "safe"
	case StatusUnsafe:
		return "unsafe"
	case StatusInaccessible:
		return "inaccessible"
	default:
		return "unknown"
	}
}

// Ownership classifies who, if anyone, controls a zone.
type Ownership uint8

const (
	OwnershipNeutral  Ownership = iota // Unclaimed
	OwnershipOwned                     // Claimed by us
	OwnershipReserved                  // Reserved by us, not fully claimed
	OwnershipHostile                   // Claimed or reserved by someone else
)

// String returns the ownership name.
func (o Ownership) String() string {
	switch o {
	case OwnershipOwned:
		return "owned"
	case OwnershipReserved:
		return "reserved"
	case OwnershipHostile:
		return "hostile"
	default:
		return "neutral"
	}
}

// Direction is one of the six hex exits a zone border can sit on.
type Direction uint8

const (
	DirEast Direction = iota
	DirNortheast
	DirNorthwest
	DirWest
	DirSouthwest
	DirSoutheast
)

// NumDirections is the number of zone exit directions.
const NumDirections = 6

var directionNames = [NumDirections]string{"E", "NE", "NW", "W", "SW", "SE"}

// String returns the compass abbreviation for the direction.
func (d Direction) String() string {
	if int(d) < len(directionNames) {
		return directionNames[d]
	}
	return "?"
}

// Opposite returns the direction an agent enters by when leaving through d.
func (d Direction) Opposite() Direction {
	return Direction((int(d) + 3) % NumDirections)
}

// Deposit is one harvestable resource site inside a zone, as observed.
type Deposit struct {
	ID       string  `json:"id"`
	Zone     ID      `json:"zone"`
	Amount   float64 `json:"amount"`   // Remaining harvestable units
	Capacity float64 `json:"capacity"` // Amount when fully replenished
	RegenIn  uint64  `json:"regen_in"` // Ticks until the next full replenish (0 = full)
	Workers  int     `json:"workers"`  // Agents currently working the deposit
}

// Ratio returns remaining/capacity in [0, 1].
func (d Deposit) Ratio() float64 {
	if d.Capacity <= 0 {
		return 0
	}
	r := d.Amount / d.Capacity
	if r < 0 {
		return 0
	}
	if r > 1 {
		return 1
	}
	return r
}

// Observation is what the observation provider reports for a visible zone.
type Observation struct {
	Zone              ID        `json:"zone"`
	HostileAgents     int       `json:"hostile_agents"`
	HostileStructures int       `json:"hostile_structures"`
	Ownership         Ownership `json:"ownership"`
	Owner             string    `json:"owner,omitempty"`
	ControllerLevel   int       `json:"controller_level"`
	ResourceValue     float64   `json:"resource_value"` // Total deposit capacity in the zone
	Deposits          []Deposit `json:"deposits"`
}

// Route describes a path between two zones as reported by the route provider.
type Route struct {
	From ID        `json:"from"`
	To   ID        `json:"to"`
	Exit Direction `json:"exit"` // Border to leave From through
	Cost float64   `json:"cost"` // Path cost in travel effort, 0 for same-zone
}

// MoveResult is the outcome of one movement attempt toward a destination zone.
type MoveResult uint8

const (
	MoveProgress      MoveResult = iota // Stepped (or still stepping) toward the destination
	MoveArrived                         // Agent is in the destination zone
	MoveBlocked                         // Temporarily obstructed; retry next tick
	MoveNoPath                          // No route exists from the agent's position
	MoveInvalidTarget                   // Destination unknown to the movement layer
)

// String returns the result name.
func (m MoveResult) String() string {
	switch m {
	case MoveArrived:
		return "arrived"
	case MoveBlocked:
		return "blocked"
	case MoveNoPath:
		return "no_path"
	case MoveInvalidTarget:
		return "invalid_target"
	default:
		return "progress"
	}
}

// Observer supplies live zone observations. The second return is false when
// the zone is not currently visible; callers must treat that as UNKNOWN,
// never as safe.
type Observer interface {
	Observe(z ID) (Observation, bool)
}

// Router answers topology questions: adjacency for bounded exploration and
// point-to-point routes with cost. Route's second return is false when no
// route exists.
type Router interface {
	Exits(z ID) map[Direction]ID
	Route(from, to ID) (Route, bool)
}

// Mover executes one step of movement for a named agent toward a destination
// zone. It never blocks; multi-tick travel is reported as MoveProgress until
// the agent arrives.
type Mover interface {
	Step(agent string, dest ID) MoveResult
}
