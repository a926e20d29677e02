package world

import (
	"sort"

	"github.com/wardenworks/outrider/internal/agent"
	"github.com/wardenworks/outrider/internal/mathx"
	"github.com/wardenworks/outrider/internal/zone"
)

// Harvest and cargo tuning for the live harness.
const (
	harvestRate       = 20.0 // Units mined per work step
	depositRegenTicks = 120  // Ticks from first draw to full replenish
	harvesterCapacity = 200.0
	haulerCapacity    = 320.0
)

// World is the live simulation the coordinator steers. It owns the grid and
// the agents, answers observation and routing queries, and applies movement
// and work orders one tick at a time.
type World struct {
	grid  *Grid
	owner string
	homes []zone.ID

	agents  map[string]*agent.Snapshot
	working map[string]string // agent name -> deposit ID being drawn from

	banked float64
}

// NewWorld wraps a generated grid, claiming the given bases for owner.
func NewWorld(g *Grid, bases []zone.ID, owner string) *World {
	w := &World{
		grid:    g,
		owner:   owner,
		homes:   append([]zone.ID(nil), bases...),
		agents:  make(map[string]*agent.Snapshot),
		working: make(map[string]string),
	}
	for _, base := range bases {
		ClaimBase(g, base, owner, 2)
	}
	return w
}

// Grid exposes the underlying sector grid for inspection.
func (w *World) Grid() *Grid {
	return w.grid
}

// Banked returns the total delivered so far.
func (w *World) Banked() float64 {
	return w.banked
}

// AddAgent spawns an agent at its home base. Capacity follows the role;
// scouts carry nothing.
func (w *World) AddAgent(name string, role agent.Role, home zone.ID) {
	capacity := 0.0
	switch role {
	case agent.RoleHarvester:
		capacity = harvesterCapacity
	case agent.RoleHauler:
		capacity = haulerCapacity
	}
	w.agents[name] = &agent.Snapshot{
		Name:     name,
		Role:     role,
		Home:     home,
		Zone:     home,
		Capacity: capacity,
	}
}

// Agents returns a snapshot of every live agent, ordered by name.
func (w *World) Agents() []agent.Snapshot {
	names := make([]string, 0, len(w.agents))
	for name := range w.agents {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]agent.Snapshot, len(names))
	for i, name := range names {
		out[i] = *w.agents[name]
	}
	return out
}

// Homes returns the claimed home bases.
func (w *World) Homes() []zone.ID {
	return append([]zone.ID(nil), w.homes...)
}

// Visible returns every zone with one of our agents in it, plus the homes.
func (w *World) Visible() []zone.ID {
	seen := make(map[zone.ID]bool)
	for _, home := range w.homes {
		seen[home] = true
	}
	for _, ag := range w.agents {
		seen[ag.Zone] = true
	}

	out := make([]zone.ID, 0, len(seen))
	for z := range seen {
		out = append(out, z)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Observe reports the sector's current state if it is visible. Zones with no
// agent presence return false; the coordination layer treats that as unknown.
func (w *World) Observe(z zone.ID) (zone.Observation, bool) {
	sector := w.grid.Lookup(z)
	if sector == nil || !w.visible(z) {
		return zone.Observation{}, false
	}

	deposits := make([]zone.Deposit, len(sector.Deposits))
	for i, d := range sector.Deposits {
		deposits[i] = *d
	}
	return zone.Observation{
		Zone:              z,
		HostileAgents:     sector.HostileAgents,
		HostileStructures: sector.HostileStructures,
		Ownership:         sector.Ownership,
		Owner:             sector.Owner,
		ControllerLevel:   sector.ControllerLevel,
		ResourceValue:     sector.ResourceValue(),
		Deposits:          deposits,
	}, true
}

func (w *World) visible(z zone.ID) bool {
	for _, home := range w.homes {
		if home == z {
			return true
		}
	}
	for _, ag := range w.agents {
		if ag.Zone == z {
			return true
		}
	}
	return false
}

// Exits returns the open borders of a sector and the zones behind them.
func (w *World) Exits(z zone.ID) map[zone.Direction]zone.ID {
	sector := w.grid.Lookup(z)
	if sector == nil {
		return nil
	}
	exits := make(map[zone.Direction]zone.ID)
	for d := zone.Direction(0); d < zone.NumDirections; d++ {
		if sector.Blocked[d] {
			continue
		}
		nc := sector.Coord.Neighbor(d)
		if w.grid.Get(nc) == nil {
			continue
		}
		exits[d] = SectorID(nc)
	}
	return exits
}

// Route finds a shortest path between two sectors. Cost is the hop count.
func (w *World) Route(from, to zone.ID) (zone.Route, bool) {
	fromSector := w.grid.Lookup(from)
	toSector := w.grid.Lookup(to)
	if fromSector == nil || toSector == nil {
		return zone.Route{}, false
	}
	if from == to {
		return zone.Route{From: from, To: to, Cost: 0}, true
	}
	dir, hops, ok := w.path(fromSector.Coord, toSector.Coord)
	if !ok {
		return zone.Route{}, false
	}
	return zone.Route{From: from, To: to, Exit: dir, Cost: float64(hops)}, true
}

// path runs a breadth-first search from one coordinate to another, honoring
// closed borders. Returns the first-hop direction and the hop count.
func (w *World) path(from, to Coord) (zone.Direction, int, bool) {
	if from == to {
		return 0, 0, true
	}

	visited := map[Coord]bool{from: true}
	firstDir := make(map[Coord]zone.Direction)
	dist := map[Coord]int{from: 0}
	queue := []Coord{from}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		sector := w.grid.Get(cur)
		if sector == nil {
			continue
		}
		for d := zone.Direction(0); d < zone.NumDirections; d++ {
			if sector.Blocked[d] {
				continue
			}
			nc := cur.Neighbor(d)
			if visited[nc] || w.grid.Get(nc) == nil {
				continue
			}
			visited[nc] = true
			dist[nc] = dist[cur] + 1
			if cur == from {
				firstDir[nc] = d
			} else {
				firstDir[nc] = firstDir[cur]
			}
			if nc == to {
				return firstDir[nc], dist[nc], true
			}
			queue = append(queue, nc)
		}
	}
	return 0, 0, false
}

// Step moves the named agent one sector toward dest. Arrival is reported on
// the step that enters the destination, and again on later calls.
func (w *World) Step(name string, dest zone.ID) zone.MoveResult {
	ag, ok := w.agents[name]
	if !ok {
		return zone.MoveInvalidTarget
	}
	if w.grid.Lookup(dest) == nil {
		return zone.MoveInvalidTarget
	}
	if ag.Zone == dest {
		return zone.MoveArrived
	}

	cur, err := ParseSector(ag.Zone)
	if err != nil {
		return zone.MoveNoPath
	}
	destCoord, _ := ParseSector(dest)
	dir, _, found := w.path(cur, destCoord)
	if !found {
		return zone.MoveNoPath
	}

	ag.Zone = SectorID(cur.Neighbor(dir))
	// Leaving a sector abandons whatever deposit was being worked.
	delete(w.working, name)

	if ag.Zone == dest {
		return zone.MoveArrived
	}
	return zone.MoveProgress
}

// Work performs one step of the agent's role task in its current sector.
// Harvesters and haulers draw from the best deposit until full or the sector
// runs dry; scouts have nothing to do here.
func (w *World) Work(now uint64, name string) bool {
	ag, ok := w.agents[name]
	if !ok || ag.Role == agent.RoleScout {
		return true
	}
	if ag.Full() {
		delete(w.working, name)
		return true
	}
	sector := w.grid.Lookup(ag.Zone)
	if sector == nil {
		return true
	}

	dep := w.pickDeposit(sector, name)
	if dep == nil {
		delete(w.working, name)
		return true
	}
	w.working[name] = dep.ID

	take := mathx.Min(mathx.Min(harvestRate, ag.SpareCapacity()), dep.Amount)
	dep.Amount -= take
	ag.Carried += take
	if dep.RegenIn == 0 {
		dep.RegenIn = depositRegenTicks
	}

	return ag.Full()
}

// pickDeposit keeps the agent on its current deposit while it lasts, then
// moves it to the fullest remaining one.
func (w *World) pickDeposit(s *Sector, name string) *zone.Deposit {
	if id := w.working[name]; id != "" {
		for _, d := range s.Deposits {
			if d.ID == id && d.Amount > 0 {
				return d
			}
		}
	}
	var best *zone.Deposit
	for _, d := range s.Deposits {
		if d.Amount <= 0 {
			continue
		}
		if best == nil || d.Amount > best.Amount || (d.Amount == best.Amount && d.ID < best.ID) {
			best = d
		}
	}
	return best
}

// Deliver banks the agent's cargo if it is standing in its home base.
func (w *World) Deliver(now uint64, name string) float64 {
	ag, ok := w.agents[name]
	if !ok || ag.Zone != ag.Home || ag.Carried <= 0 {
		return 0
	}
	amount := ag.Carried
	ag.Carried = 0
	w.banked += amount
	delete(w.working, name)
	return amount
}

// Advance runs one tick of world time: deposit replenishment and worker
// counts. Call once per tick before the coordination step.
func (w *World) Advance(now uint64) {
	for _, sector := range w.grid.Sectors {
		for _, d := range sector.Deposits {
			if d.RegenIn > 0 {
				d.RegenIn--
				if d.RegenIn == 0 {
					d.Amount = d.Capacity
				}
			}
			d.Workers = 0
		}
	}

	for name, depID := range w.working {
		ag := w.agents[name]
		if ag == nil {
			continue
		}
		sector := w.grid.Lookup(ag.Zone)
		if sector == nil {
			continue
		}
		for _, d := range sector.Deposits {
			if d.ID == depID {
				d.Workers++
			}
		}
	}
}
