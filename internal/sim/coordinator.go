package sim

import (
	"log/slog"
	"sort"

	"github.com/wardenworks/outrider/internal/agent"
	"github.com/wardenworks/outrider/internal/assign"
	"github.com/wardenworks/outrider/internal/config"
	"github.com/wardenworks/outrider/internal/profit"
	"github.com/wardenworks/outrider/internal/scout"
	"github.com/wardenworks/outrider/internal/store"
	"github.com/wardenworks/outrider/internal/survey"
	"github.com/wardenworks/outrider/internal/transit"
	"github.com/wardenworks/outrider/internal/zone"
)

// Overcrowding is rechecked on this cadence, not every tick.
const redistributeInterval = 50

// World is everything the coordinator needs from the simulation it steers:
// observation, routing and movement, plus the agent roster and the role
// action layer.
type World interface {
	zone.Observer
	zone.Router
	zone.Mover

	// Agents returns a snapshot of every live agent, in stable order.
	Agents() []agent.Snapshot
	// Homes returns the home zones agents deliver to.
	Homes() []zone.ID
	// Visible returns the zones currently observable.
	Visible() []zone.ID
	// Work performs one step of the agent's role task in its current zone
	// and reports whether the run is complete.
	Work(now uint64, agentName string) bool
	// Deliver drops the agent's cargo at its current zone, returning the
	// amount delivered.
	Deliver(now uint64, agentName string) float64
}

// StepReport summarizes what one coordination step did.
type StepReport struct {
	Tick         uint64
	ZonesScanned int
	SurveyRuns   int
	Assigned     int
	Departures   int
	Arrivals     int
	Retreats     int
	Aborts       int
	Returns      int
	Delivered    float64
	Evicted      int
	BudgetUsed   float64
}

// Totals accumulates step reports across a run.
type Totals struct {
	Delivered  float64
	Trips      int
	Aborts     int
	Retreats   int
	Scans      int
	Surveys    int
	Evictions  int
	BudgetUsed float64
	Steps      int
}

// Coordinator runs the multi-zone coordination layer: it keeps the
// intelligence caches warm, assigns agents to resource nodes, and drives
// each agent's border-crossing state machine, all inside the per-step
// compute budget.
type Coordinator struct {
	cfg      config.Config
	world    World
	assessor *scout.Assessor
	surveys  *survey.Engine
	scorer   *profit.Scorer
	board    *assign.Board
	transit  *transit.Controller

	totals Totals
}

// NewCoordinator wires the coordination layer over a world and a store.
func NewCoordinator(st store.Store, w World, cfg config.Config) *Coordinator {
	assessor := scout.New(st, w, w, cfg)
	surveys := survey.New(st, assessor, w, w, cfg)
	scorer := profit.New(st, cfg)
	board := assign.New(st, cfg, func(now uint64, ag agent.Snapshot, n survey.Node) float64 {
		return assessor.PathCost(now, ag.Zone, n.Zone)
	})
	ctrl := transit.New(st, assessor, w, w, cfg)
	return &Coordinator{
		cfg:      cfg,
		world:    w,
		assessor: assessor,
		surveys:  surveys,
		scorer:   scorer,
		board:    board,
		transit:  ctrl,
	}
}

// Assessor exposes the safety assessor, mainly for inspection tooling.
func (c *Coordinator) Assessor() *scout.Assessor { return c.assessor }

// Totals returns the accumulated run statistics.
func (c *Coordinator) Totals() Totals { return c.totals }

// Step runs one full coordination pass: refresh intelligence under budget,
// assign harvesters to nodes, then walk every agent's state machine one
// tick. Agents run sequentially; writes by earlier agents are visible to
// later ones in the same step.
func (c *Coordinator) Step(now uint64) StepReport {
	budget := NewBudget(c.cfg.StepBudget)
	report := StepReport{Tick: now}

	scanned := c.assessor.RefreshVisible(now, c.world.Visible(), budget.Cap(CostScan))
	budget.Spend(float64(scanned) * CostScan)
	report.ZonesScanned = scanned

	homes := c.world.Homes()
	runs := c.surveys.Refresh(now, homes, budget.Cap(CostSurvey))
	budget.Spend(float64(runs) * CostSurvey)
	report.SurveyRuns = runs

	agents := c.world.Agents()
	report.Assigned = c.assignHarvesters(now, budget, homes, agents)

	for _, ag := range agents {
		c.stepAgent(now, ag, &report)
	}

	if now%redistributeInterval == 0 {
		report.Evicted = c.board.RedistributeOvercrowded(now)
	}

	report.BudgetUsed = budget.Used()
	c.accumulate(report)
	return report
}

// assignHarvesters gives every home's harvester crew a node from that home's
// discovery cache. An empty cache triggers one budgeted walk.
func (c *Coordinator) assignHarvesters(now uint64, budget *Budget, homes []zone.ID, agents []agent.Snapshot) int {
	byHome := map[zone.ID][]agent.Snapshot{}
	for _, ag := range agents {
		if ag.Role == agent.RoleHarvester {
			byHome[ag.Home] = append(byHome[ag.Home], ag)
		}
	}

	assigned := 0
	for _, home := range homes {
		crew := byHome[home]
		if len(crew) == 0 {
			continue
		}
		nodes := c.surveys.CachedNodes(home)
		if nodes == nil && budget.Spend(CostSurvey) {
			nodes = c.surveys.FindNodes(now, home, c.cfg.SurveyDepth, false)
		}
		if len(nodes) == 0 {
			continue
		}
		assigned += len(c.board.AssignTargets(now, crew, nodes))
	}
	return assigned
}

// stepAgent drives one agent: dispatch it from home if it has somewhere to
// be, advance its transition, and bank its cargo when it gets back.
func (c *Coordinator) stepAgent(now uint64, ag agent.Snapshot, report *StepReport) {
	st := c.transit.Load(ag.Name, ag.Home)

	if st.Phase == transit.PhaseHome && ag.Zone == ag.Home {
		if c.dispatch(now, ag) {
			report.Departures++
		} else if ag.Role != agent.RoleScout {
			// Single-zone fallback: work the home zone and bank on the spot.
			if c.world.Work(now, ag.Name) {
				report.Delivered += c.world.Deliver(now, ag.Name)
			}
			return
		}
	}

	var task transit.TaskFunc
	switch ag.Role {
	case agent.RoleScout:
		task = c.scoutTask()
	default:
		task = c.fieldTask(st.NodeID)
	}

	_, event := c.transit.Step(now, ag, task)
	switch event {
	case transit.EventArrived:
		report.Arrivals++
	case transit.EventRetreat:
		report.Retreats++
	case transit.EventAborted:
		report.Aborts++
	case transit.EventReturned:
		report.Returns++
		report.Delivered += c.world.Deliver(now, ag.Name)
	}
}

// dispatch sends a home-idle agent out: harvesters to their assigned node,
// haulers to a round-robin collection node, scouts to the stalest neighbor
// zone. Returns true when the agent departed.
func (c *Coordinator) dispatch(now uint64, ag agent.Snapshot) bool {
	switch ag.Role {
	case agent.RoleHarvester:
		rec, ok := c.board.Get(ag.Name)
		if !ok {
			return false
		}
		_, departed := c.transit.Depart(now, ag, rec.Zone, rec.NodeID)
		return departed

	case agent.RoleHauler:
		nodes := c.surveys.CachedNodes(ag.Home)
		remote := make([]string, 0, len(nodes))
		zoneOf := make(map[string]zone.ID, len(nodes))
		for _, n := range nodes {
			if n.Zone != ag.Home {
				remote = append(remote, n.ID)
				zoneOf[n.ID] = n.Zone
			}
		}
		target := c.board.NextRoundRobin(now, ag.Home, agent.RoleHauler, remote)
		if target == "" {
			return false
		}
		_, departed := c.transit.Depart(now, ag, zoneOf[target], target)
		return departed

	case agent.RoleScout:
		dest, ok := c.scoutDestination(now, ag.Home)
		if !ok {
			return false
		}
		_, departed := c.transit.Depart(now, ag, dest, "")
		return departed
	}
	return false
}

// scoutDestination picks the neighbor of home with the stalest exploration
// report, skipping zones scanned within the safety TTL.
func (c *Coordinator) scoutDestination(now uint64, home zone.ID) (zone.ID, bool) {
	exits := c.world.Exits(home)
	neighbors := make([]zone.ID, 0, len(exits))
	for _, z := range exits {
		neighbors = append(neighbors, z)
	}
	sort.Slice(neighbors, func(i, j int) bool { return neighbors[i] < neighbors[j] })

	var best zone.ID
	bestAge := uint64(0)
	found := false
	for _, z := range neighbors {
		rec, ok := c.assessor.Exploration(z)
		if !ok {
			return z, true
		}
		if now-rec.ScannedAt < c.cfg.SafetyCacheTicks {
			continue
		}
		if age := now - rec.ScannedAt; !found || age > bestAge {
			best, bestAge, found = z, age, true
		}
	}
	return best, found
}

// scoutTask files an exploration report for the zone the scout stands in.
func (c *Coordinator) scoutTask() transit.TaskFunc {
	return func(now uint64, ag agent.Snapshot) bool {
		obs, ok := c.world.Observe(ag.Zone)
		if !ok {
			return true
		}
		status, _ := c.assessor.Grade(obs)
		c.assessor.RecordScan(now, scout.ExplorationRecord{
			Zone:          ag.Zone,
			Status:        status,
			HostileCount:  obs.HostileAgents,
			NodeCount:     len(obs.Deposits),
			Owner:         obs.Owner,
			ScoutName:     ag.Name,
			RemoteEnabled: status == zone.StatusSafe,
		})
		return true
	}
}

// fieldTask works the assigned node, breaking off early when the
// profitability scorer recommends moving on.
func (c *Coordinator) fieldTask(nodeID string) transit.TaskFunc {
	return func(now uint64, ag agent.Snapshot) bool {
		if nodeID != "" && c.shouldAbandon(now, ag, nodeID) {
			c.board.Clear(ag.Name)
			return true
		}
		return c.world.Work(now, ag.Name)
	}
}

// shouldAbandon checks the working agent's node against the rest of the
// field. A node that fell out of the discovery cache is stale and abandoned
// outright.
func (c *Coordinator) shouldAbandon(now uint64, ag agent.Snapshot, nodeID string) bool {
	nodes := c.surveys.CachedNodes(ag.Home)
	var current *survey.Node
	for i := range nodes {
		if nodes[i].ID == nodeID {
			current = &nodes[i]
			break
		}
	}
	if current == nil {
		return true
	}
	return c.scorer.ShouldMigrate(now, *current, nodes, ag.Name, c.board.Loads())
}

// Cleanup runs the cache GC sweeps: stale intelligence, dead profitability
// verdicts, and transit records for agents that no longer exist.
func (c *Coordinator) Cleanup(now uint64) {
	evicted := c.assessor.Cleanup(now)

	live := map[string]bool{}
	for _, home := range c.world.Homes() {
		for _, n := range c.surveys.CachedNodes(home) {
			live[n.ID] = true
		}
	}
	purged := c.scorer.Cleanup(now, live)

	liveAgents := map[string]bool{}
	for _, ag := range c.world.Agents() {
		liveAgents[ag.Name] = true
	}
	dropped := c.transit.Cleanup(liveAgents)

	slog.Debug("cache cleanup", "tick", now, "intel_evicted", evicted,
		"profit_purged", purged, "transit_dropped", dropped)
}

// Report logs the accumulated run statistics.
func (c *Coordinator) Report(now uint64) {
	slog.Info("coordination report",
		"tick", now,
		"delivered", c.totals.Delivered,
		"trips", c.totals.Trips,
		"aborts", c.totals.Aborts,
		"retreats", c.totals.Retreats,
		"zones_scanned", c.totals.Scans,
		"survey_walks", c.totals.Surveys,
		"evictions", c.totals.Evictions,
		"avg_budget", c.avgBudget(),
	)
}

func (c *Coordinator) accumulate(r StepReport) {
	c.totals.Delivered += r.Delivered
	c.totals.Trips += r.Returns
	c.totals.Aborts += r.Aborts
	c.totals.Retreats += r.Retreats
	c.totals.Scans += r.ZonesScanned
	c.totals.Surveys += r.SurveyRuns
	c.totals.Evictions += r.Evicted
	c.totals.BudgetUsed += r.BudgetUsed
	c.totals.Steps++
}

func (c *Coordinator) avgBudget() float64 {
	if c.totals.Steps == 0 {
		return 0
	}
	return c.totals.BudgetUsed / float64(c.totals.Steps)
}
