// Package survey discovers harvestable resource nodes around a home zone.
// Discovery is a bounded breadth-first walk over zone exits, gated by the
// safety and accessibility caches, and its result is itself cached per home
// zone so a step never pays for more than one walk.
package survey

import (
	"log/slog"
	"math"
	"sort"

	"github.com/wardenworks/outrider/internal/config"
	"github.com/wardenworks/outrider/internal/scout"
	"github.com/wardenworks/outrider/internal/store"
	"github.com/wardenworks/outrider/internal/zone"
)

const surveyPrefix = "survey/"

// Node is one discovered resource deposit, annotated with everything the
// assignment and profitability layers need. Nodes are ephemeral; they live
// only inside the discovery cache and are rebuilt on every walk.
type Node struct {
	ID            string            `json:"id"`
	Zone          zone.ID           `json:"zone"`
	Distance      int               `json:"distance"` // Zone-hops from home
	Priority      int               `json:"priority"`
	Safety        zone.SafetyStatus `json:"safety"`
	Accessible    bool              `json:"accessible"`
	Amount        float64           `json:"amount"`
	Capacity      float64           `json:"capacity"`
	RegenIn       uint64            `json:"regen_in"`
	ResourceValue float64           `json:"resource_value"` // Zone aggregate, for rich-zone ranking
}

// Ratio returns the node's fill fraction in [0, 1].
func (n Node) Ratio() float64 {
	if n.Capacity <= 0 {
		return 0
	}
	return n.Amount / n.Capacity
}

// Cache is the per-home-zone discovery result.
type Cache struct {
	Home      zone.ID `json:"home"`
	Nodes     []Node  `json:"nodes"`
	UpdatedAt uint64  `json:"updated_at"`
	Depth     int     `json:"depth"`
}

// Engine runs discovery walks and owns the per-home cache records.
type Engine struct {
	store    store.Store
	assessor *scout.Assessor
	observer zone.Observer
	router   zone.Router
	cfg      config.Config
}

// New returns a discovery engine over the given collaborators.
func New(st store.Store, assessor *scout.Assessor, obs zone.Observer, router zone.Router, cfg config.Config) *Engine {
	return &Engine{store: st, assessor: assessor, observer: obs, router: router, cfg: cfg}
}

func surveyKey(home zone.ID) string { return surveyPrefix + string(home) }

// FindNodes returns the prioritized resource nodes reachable from home
// within depth zone-hops, filtered to safe and accessible zones. A cached
// result younger than the survey TTL is returned as-is unless force is set
// or it was walked at a different depth.
func (e *Engine) FindNodes(now uint64, home zone.ID, depth int, force bool) []Node {
	if !force {
		var cached Cache
		found, err := e.store.Get(surveyKey(home), &cached)
		if err != nil {
			slog.Warn("survey cache read failed", "home", home, "error", err)
		}
		if found && cached.Depth == depth && now-cached.UpdatedAt < e.cfg.SurveyCacheTicks {
			return cached.Nodes
		}
	}

	nodes := e.discover(now, home, depth)
	cache := Cache{Home: home, Nodes: nodes, UpdatedAt: now, Depth: depth}
	if err := e.store.Set(surveyKey(home), cache); err != nil {
		slog.Warn("survey cache write failed", "home", home, "error", err)
	}
	slog.Debug("survey complete", "home", home, "depth", depth, "nodes", len(nodes))
	return nodes
}

// CachedNodes returns whatever the cache currently holds for home, however
// stale. Consumers that cannot afford a walk use this and tolerate staleness.
func (e *Engine) CachedNodes(home zone.ID) []Node {
	var cached Cache
	found, err := e.store.Get(surveyKey(home), &cached)
	if err != nil || !found {
		return nil
	}
	return cached.Nodes
}

// Refresh re-walks discovery for any home whose cache is older than the
// refresh interval, up to maxRuns walks. Returns the number of walks run.
func (e *Engine) Refresh(now uint64, homes []zone.ID, maxRuns int) int {
	runs := 0
	for _, home := range homes {
		if runs >= maxRuns {
			break
		}
		var cached Cache
		found, err := e.store.Get(surveyKey(home), &cached)
		if err != nil {
			slog.Warn("survey cache read failed", "home", home, "error", err)
		}
		if found && now-cached.UpdatedAt < e.cfg.SurveyRefreshTicks {
			continue
		}
		e.FindNodes(now, home, e.cfg.SurveyDepth, true)
		runs++
	}
	return runs
}

// discover walks zones breadth-first from home, visiting each zone once and
// collecting deposits until the node cap is hit. Zones that are not safe,
// not reachable from home, or flagged off for remote use are neither
// harvested nor expanded through.
func (e *Engine) discover(now uint64, home zone.ID, depth int) []Node {
	type hop struct {
		z    zone.ID
		dist int
	}
	frontier := []hop{{z: home, dist: 0}}
	visited := map[zone.ID]bool{home: true}

	var nodes []Node
	for len(frontier) > 0 {
		cur := frontier[0]
		frontier = frontier[1:]

		if cur.z != home {
			if !e.assessor.ZoneSafe(now, cur.z, false) ||
				!e.assessor.ZoneAccessible(now, home, cur.z, false) ||
				!e.assessor.RemoteEnabled(now, cur.z) {
				continue
			}
		}

		if obs, ok := e.observer.Observe(cur.z); ok {
			nodes = e.collect(nodes, obs, cur.dist)
			if len(nodes) >= e.cfg.SurveyMaxNodes {
				break
			}
		}

		if cur.dist >= depth {
			continue
		}
		for _, next := range e.router.Exits(cur.z) {
			if visited[next] {
				continue
			}
			visited[next] = true
			frontier = append(frontier, hop{z: next, dist: cur.dist + 1})
		}
	}

	sort.Slice(nodes, func(i, j int) bool {
		a, b := nodes[i], nodes[j]
		if a.Priority != b.Priority {
			return a.Priority > b.Priority
		}
		if a.Distance != b.Distance {
			return a.Distance < b.Distance
		}
		if a.ResourceValue != b.ResourceValue {
			return a.ResourceValue > b.ResourceValue
		}
		return a.ID < b.ID
	})
	return nodes
}

func (e *Engine) collect(nodes []Node, obs zone.Observation, dist int) []Node {
	for _, dep := range obs.Deposits {
		if len(nodes) >= e.cfg.SurveyMaxNodes {
			break
		}
		if dep.Amount < e.cfg.MinDepositAmount {
			continue
		}
		node := Node{
			ID:            dep.ID,
			Zone:          obs.Zone,
			Distance:      dist,
			Safety:        zone.StatusSafe,
			Accessible:    true,
			Amount:        dep.Amount,
			Capacity:      dep.Capacity,
			RegenIn:       dep.RegenIn,
			ResourceValue: obs.ResourceValue,
		}
		node.Priority = e.priority(node, obs)
		nodes = append(nodes, node)
	}
	return nodes
}

// priority scores a node for the discovery ordering. Closer, fuller deposits
// in owned or rich zones rank higher.
func (e *Engine) priority(n Node, obs zone.Observation) int {
	score := 100.0
	score *= distanceMultiplier(n.Distance)
	score *= 0.5 + 0.5*n.Ratio()
	score *= ownershipWeight(obs.Ownership)
	if obs.ResourceValue > e.cfg.RichZoneValue {
		score *= 1.2
	}
	return int(math.Round(score))
}

// distanceMultiplier decays priority with zone-hop distance. Beyond three
// hops it keeps shrinking geometrically but never below 0.25.
func distanceMultiplier(hops int) float64 {
	switch hops {
	case 0:
		return 1.0
	case 1:
		return 0.75
	case 2:
		return 0.55
	case 3:
		return 0.4
	}
	m := 0.4 * math.Pow(0.85, float64(hops-3))
	if m < 0.25 {
		return 0.25
	}
	return m
}

func ownershipWeight(o zone.Ownership) float64 {
	switch o {
	case zone.OwnershipOwned:
		return 1.3
	case zone.OwnershipReserved:
		return 1.15
	case zone.OwnershipHostile:
		return 0.5
	default:
		return 1.0
	}
}
