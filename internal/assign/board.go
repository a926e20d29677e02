// Package assign distributes agents across discovered resource nodes so that
// no node is oversubscribed, with round-robin rotation for targets that have
// no capacity tracking of their own.
package assign

import (
	"log/slog"
	"sort"

	"github.com/wardenworks/outrider/internal/agent"
	"github.com/wardenworks/outrider/internal/config"
	"github.com/wardenworks/outrider/internal/store"
	"github.com/wardenworks/outrider/internal/survey"
	"github.com/wardenworks/outrider/internal/zone"
)

const (
	assignPrefix     = "assign/"
	roundRobinPrefix = "rr/"
)

// DistanceFunc reports the travel distance from an agent to a node's zone
// as of the given tick.
type DistanceFunc func(now uint64, ag agent.Snapshot, n survey.Node) float64

// Assignment binds one agent to one resource node.
type Assignment struct {
	Agent      string  `json:"agent"`
	NodeID     string  `json:"node_id"`
	Zone       zone.ID `json:"zone"`
	Distance   float64 `json:"distance"`
	AssignedAt uint64  `json:"assigned_at"`
}

// Board owns the agent-to-node assignment records.
type Board struct {
	store store.Store
	cfg   config.Config
	dist  DistanceFunc
}

// New returns a board over the given store. dist supplies agent-to-node
// travel distances for sorting and eviction decisions.
func New(st store.Store, cfg config.Config, dist DistanceFunc) *Board {
	return &Board{store: st, cfg: cfg, dist: dist}
}

func assignKey(agentName string) string { return assignPrefix + agentName }

// Get returns the agent's current assignment, if any.
func (b *Board) Get(agentName string) (Assignment, bool) {
	var rec Assignment
	found, err := b.store.Get(assignKey(agentName), &rec)
	if err != nil {
		slog.Warn("assignment read failed", "agent", agentName, "error", err)
		return Assignment{}, false
	}
	return rec, found
}

// Clear drops the agent's assignment, freeing its slot.
func (b *Board) Clear(agentName string) {
	if err := b.store.Delete(assignKey(agentName)); err != nil {
		slog.Warn("assignment clear failed", "agent", agentName, "error", err)
	}
}

// Loads returns the number of assigned agents per node ID.
func (b *Board) Loads() map[string]int {
	loads := map[string]int{}
	keys, err := b.store.Keys(assignPrefix)
	if err != nil {
		slog.Warn("assignment scan failed", "error", err)
		return loads
	}
	for _, key := range keys {
		var rec Assignment
		if found, err := b.store.Get(key, &rec); err == nil && found {
			loads[rec.NodeID]++
		}
	}
	return loads
}

// AssignTargets gives each agent a node, respecting the per-node capacity.
// Greedy least-loaded: big carriers pick first (ties go to whoever sits
// closer to the field), an agent keeps its current node while that node
// still exists and has room, and otherwise takes the emptiest node with a
// free slot, preferring higher-priority nodes on equal load. Agents that
// cannot be placed come back unassigned.
func (b *Board) AssignTargets(now uint64, agents []agent.Snapshot, nodes []survey.Node) map[string]string {
	assigned := make(map[string]string, len(agents))
	if len(agents) == 0 {
		return assigned
	}

	byID := make(map[string]survey.Node, len(nodes))
	for _, n := range nodes {
		byID[n.ID] = n
	}

	// Slots already taken by agents outside this batch still count.
	inBatch := make(map[string]bool, len(agents))
	for _, ag := range agents {
		inBatch[ag.Name] = true
	}
	loads := map[string]int{}
	existing := map[string]Assignment{}
	keys, err := b.store.Keys(assignPrefix)
	if err != nil {
		slog.Warn("assignment scan failed", "error", err)
	}
	for _, key := range keys {
		var rec Assignment
		if found, err := b.store.Get(key, &rec); err != nil || !found {
			continue
		}
		if inBatch[rec.Agent] {
			existing[rec.Agent] = rec
		} else {
			loads[rec.NodeID]++
		}
	}

	order := b.sortAgents(now, agents, nodes)
	for _, ag := range order {
		node, ok := b.place(existing[ag.Name], byID, nodes, loads)
		if !ok {
			if _, had := existing[ag.Name]; had {
				b.Clear(ag.Name)
			}
			continue
		}
		loads[node.ID]++
		assigned[ag.Name] = node.ID
		rec := Assignment{
			Agent:      ag.Name,
			NodeID:     node.ID,
			Zone:       node.Zone,
			Distance:   b.dist(now, ag, node),
			AssignedAt: now,
		}
		if err := b.store.Set(assignKey(ag.Name), rec); err != nil {
			slog.Warn("assignment write failed", "agent", ag.Name, "error", err)
		}
	}
	return assigned
}

// sortAgents orders agents by carrying capacity descending, breaking ties by
// average distance to the field ascending so closer agents pick first.
func (b *Board) sortAgents(now uint64, agents []agent.Snapshot, nodes []survey.Node) []agent.Snapshot {
	avg := make(map[string]float64, len(agents))
	for _, ag := range agents {
		if len(nodes) == 0 {
			continue
		}
		total := 0.0
		for _, n := range nodes {
			total += b.dist(now, ag, n)
		}
		avg[ag.Name] = total / float64(len(nodes))
	}

	order := make([]agent.Snapshot, len(agents))
	copy(order, agents)
	sort.SliceStable(order, func(i, j int) bool {
		if order[i].Capacity != order[j].Capacity {
			return order[i].Capacity > order[j].Capacity
		}
		return avg[order[i].Name] < avg[order[j].Name]
	})
	return order
}

// place picks a node for one agent: its existing node if still live and
// under capacity, else the least-loaded node with a free slot. nodes arrive
// priority-ordered, so on equal load the better node wins.
func (b *Board) place(prev Assignment, byID map[string]survey.Node, nodes []survey.Node, loads map[string]int) (survey.Node, bool) {
	if prev.NodeID != "" {
		if node, live := byID[prev.NodeID]; live && loads[prev.NodeID] < b.cfg.MaxAgentsPerNode {
			return node, true
		}
	}

	best := -1
	for i, n := range nodes {
		if loads[n.ID] >= b.cfg.MaxAgentsPerNode {
			continue
		}
		if best == -1 || loads[n.ID] < loads[nodes[best].ID] {
			best = i
		}
	}
	if best == -1 {
		return survey.Node{}, false
	}
	return nodes[best], true
}

// RedistributeOvercrowded evicts agents from any node holding more than the
// per-node capacity, farthest agents first. Evicted agents lose their
// assignment and get a fresh one on the next assignment pass. Returns the
// number of evictions.
func (b *Board) RedistributeOvercrowded(now uint64) int {
	byNode := map[string][]Assignment{}
	keys, err := b.store.Keys(assignPrefix)
	if err != nil {
		slog.Warn("assignment scan failed", "error", err)
		return 0
	}
	for _, key := range keys {
		var rec Assignment
		if found, err := b.store.Get(key, &rec); err == nil && found {
			byNode[rec.NodeID] = append(byNode[rec.NodeID], rec)
		}
	}

	evicted := 0
	for nodeID, recs := range byNode {
		excess := len(recs) - b.cfg.MaxAgentsPerNode
		if excess <= 0 {
			continue
		}
		sort.Slice(recs, func(i, j int) bool {
			if recs[i].Distance != recs[j].Distance {
				return recs[i].Distance > recs[j].Distance
			}
			return recs[i].Agent > recs[j].Agent
		})
		for _, rec := range recs[:excess] {
			b.Clear(rec.Agent)
			evicted++
			slog.Debug("agent evicted from crowded node", "agent", rec.Agent, "node", nodeID,
				"distance", rec.Distance)
		}
	}
	return evicted
}
