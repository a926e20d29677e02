package survey

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wardenworks/outrider/internal/config"
	"github.com/wardenworks/outrider/internal/scout"
	"github.com/wardenworks/outrider/internal/store"
	"github.com/wardenworks/outrider/internal/zone"
)

// fakeWorld is a small zone graph serving canned observations. It counts
// scans per zone so tests can prove cache hits do no extra work. Routes are
// derived from the exit graph; blocked pairs simulate walled-off zones.
type fakeWorld struct {
	obs     map[zone.ID]zone.Observation
	exits   map[zone.ID]map[zone.Direction]zone.ID
	blocked map[string]bool
	scans   map[zone.ID]int
}

func newFakeWorld() *fakeWorld {
	return &fakeWorld{
		obs:     map[zone.ID]zone.Observation{},
		exits:   map[zone.ID]map[zone.Direction]zone.ID{},
		blocked: map[string]bool{},
		scans:   map[zone.ID]int{},
	}
}

func (w *fakeWorld) see(z zone.ID, o zone.Observation) {
	o.Zone = z
	w.obs[z] = o
}

func (w *fakeWorld) link(a, b zone.ID, dir zone.Direction) {
	if w.exits[a] == nil {
		w.exits[a] = map[zone.Direction]zone.ID{}
	}
	if w.exits[b] == nil {
		w.exits[b] = map[zone.Direction]zone.ID{}
	}
	w.exits[a][dir] = b
	w.exits[b][dir.Opposite()] = a
}

func (w *fakeWorld) block(from, to zone.ID) {
	w.blocked[string(from)+"|"+string(to)] = true
}

func (w *fakeWorld) Observe(z zone.ID) (zone.Observation, bool) {
	w.scans[z]++
	o, ok := w.obs[z]
	return o, ok
}

func (w *fakeWorld) Exits(z zone.ID) map[zone.Direction]zone.ID { return w.exits[z] }

func (w *fakeWorld) Route(from, to zone.ID) (zone.Route, bool) {
	if w.blocked[string(from)+"|"+string(to)] {
		return zone.Route{}, false
	}
	// Breadth-first over exits; cost is the hop count.
	type hop struct {
		z    zone.ID
		dist int
	}
	frontier := []hop{{z: from}}
	visited := map[zone.ID]bool{from: true}
	for len(frontier) > 0 {
		cur := frontier[0]
		frontier = frontier[1:]
		for dir, next := range w.exits[cur.z] {
			if visited[next] {
				continue
			}
			if next == to {
				return zone.Route{From: from, To: to, Exit: dir, Cost: float64(cur.dist + 1)}, true
			}
			visited[next] = true
			frontier = append(frontier, hop{z: next, dist: cur.dist + 1})
		}
	}
	return zone.Route{}, false
}

func deposit(id string, amount, capacity float64) zone.Deposit {
	return zone.Deposit{ID: id, Amount: amount, Capacity: capacity}
}

func newEngine(w *fakeWorld, cfg config.Config) (*Engine, store.Store) {
	st := store.NewMemory()
	assessor := scout.New(st, w, w, cfg)
	return New(st, assessor, w, w, cfg), st
}

func TestFindNodesFiltersUnsafeZones(t *testing.T) {
	w := newFakeWorld()
	w.see("A", zone.Observation{})
	w.see("B", zone.Observation{Deposits: []zone.Deposit{deposit("n1", 1000, 2000)}})
	w.see("C", zone.Observation{HostileAgents: 2, Deposits: []zone.Deposit{deposit("n2", 1500, 2000)}})
	w.link("A", "B", zone.DirEast)
	w.link("A", "C", zone.DirWest)

	e, _ := newEngine(w, config.Default())

	nodes := e.FindNodes(100, "A", 1, false)
	require.Len(t, nodes, 1)
	assert.Equal(t, "n1", nodes[0].ID)
	assert.Equal(t, zone.ID("B"), nodes[0].Zone)
	assert.Equal(t, 1, nodes[0].Distance)
	require.Equal(t, 1, w.scans["C"])

	// Within the TTL the cached list comes back untouched; no zone is
	// re-scanned, hostile C included.
	again := e.FindNodes(120, "A", 1, false)
	assert.Equal(t, nodes, again)
	assert.Equal(t, 1, w.scans["C"])
}

func TestFindNodesPriority(t *testing.T) {
	w := newFakeWorld()
	w.see("A", zone.Observation{})
	w.see("B", zone.Observation{Deposits: []zone.Deposit{deposit("n1", 1000, 2000)}})
	w.link("A", "B", zone.DirEast)

	e, _ := newEngine(w, config.Default())

	nodes := e.FindNodes(100, "A", 1, false)
	require.Len(t, nodes, 1)
	// One hop, half full, neutral, not rich: 100 × 0.75 × 0.75 = 56.25.
	assert.Equal(t, 56, nodes[0].Priority)
}

func TestFindNodesRichZoneBonus(t *testing.T) {
	cfg := config.Default()
	w := newFakeWorld()
	w.see("A", zone.Observation{})
	w.see("B", zone.Observation{
		ResourceValue: cfg.RichZoneValue + 1,
		Deposits:      []zone.Deposit{deposit("n1", 2000, 2000)},
	})
	w.link("A", "B", zone.DirEast)

	e, _ := newEngine(w, cfg)

	nodes := e.FindNodes(100, "A", 1, false)
	require.Len(t, nodes, 1)
	// 100 × 0.75 × 1.0 × 1.2 = 90.
	assert.Equal(t, 90, nodes[0].Priority)
}

func TestFindNodesOrdering(t *testing.T) {
	w := newFakeWorld()
	// Home deposit half full scores 75; the full one-hop deposit also 75.
	// Equal priority breaks by distance, so the home node leads.
	w.see("A", zone.Observation{Deposits: []zone.Deposit{deposit("near", 1000, 2000)}})
	w.see("B", zone.Observation{Deposits: []zone.Deposit{deposit("far", 2000, 2000)}})
	w.link("A", "B", zone.DirEast)

	e, _ := newEngine(w, config.Default())

	nodes := e.FindNodes(100, "A", 1, false)
	require.Len(t, nodes, 2)
	assert.Equal(t, nodes[0].Priority, nodes[1].Priority)
	assert.Equal(t, "near", nodes[0].ID)
	assert.Equal(t, "far", nodes[1].ID)
}

func TestFindNodesDepthBound(t *testing.T) {
	w := newFakeWorld()
	w.see("A", zone.Observation{})
	w.see("B", zone.Observation{})
	w.see("D", zone.Observation{Deposits: []zone.Deposit{deposit("deep", 2000, 2000)}})
	w.link("A", "B", zone.DirEast)
	w.link("B", "D", zone.DirEast)

	e, _ := newEngine(w, config.Default())

	assert.Empty(t, e.FindNodes(100, "A", 1, false))
	assert.Len(t, e.FindNodes(100, "A", 2, false), 1)
}

func TestFindNodesHonorsNodeCap(t *testing.T) {
	cfg := config.Default()
	cfg.SurveyMaxNodes = 2

	w := newFakeWorld()
	var deps []zone.Deposit
	for i := 0; i < 5; i++ {
		deps = append(deps, deposit(fmt.Sprintf("n%d", i), 2000, 2000))
	}
	w.see("A", zone.Observation{Deposits: deps})

	e, _ := newEngine(w, cfg)
	assert.Len(t, e.FindNodes(100, "A", 0, false), 2)
}

func TestFindNodesSkipsThinDeposits(t *testing.T) {
	cfg := config.Default()
	w := newFakeWorld()
	w.see("A", zone.Observation{Deposits: []zone.Deposit{
		deposit("thin", cfg.MinDepositAmount-1, 2000),
		deposit("fat", cfg.MinDepositAmount+1, 2000),
	}})

	e, _ := newEngine(w, cfg)
	nodes := e.FindNodes(100, "A", 0, false)
	require.Len(t, nodes, 1)
	assert.Equal(t, "fat", nodes[0].ID)
}

func TestFindNodesSkipsBlockedZones(t *testing.T) {
	w := newFakeWorld()
	w.see("A", zone.Observation{})
	w.see("B", zone.Observation{Deposits: []zone.Deposit{deposit("n1", 2000, 2000)}})
	w.link("A", "B", zone.DirEast)
	w.block("A", "B")

	e, _ := newEngine(w, config.Default())
	assert.Empty(t, e.FindNodes(100, "A", 1, false))
}

func TestFindNodesSkipsExpiredZones(t *testing.T) {
	w := newFakeWorld()
	w.see("A", zone.Observation{})
	w.see("B", zone.Observation{Deposits: []zone.Deposit{deposit("n1", 2000, 2000)}})
	w.link("A", "B", zone.DirEast)

	cfg := config.Default()
	st := store.NewMemory()
	assessor := scout.New(st, w, w, cfg)
	e := New(st, assessor, w, w, cfg)

	assessor.MarkExpired(100, "B")
	assert.Empty(t, e.FindNodes(100, "A", 1, false))
}

func TestRefreshRewalksStaleCaches(t *testing.T) {
	cfg := config.Default()
	w := newFakeWorld()
	w.see("A", zone.Observation{Deposits: []zone.Deposit{deposit("n1", 2000, 2000)}})

	e, _ := newEngine(w, cfg)
	e.FindNodes(100, "A", cfg.SurveyDepth, false)

	homes := []zone.ID{"A"}
	assert.Equal(t, 0, e.Refresh(100+cfg.SurveyRefreshTicks-1, homes, 5))
	assert.Equal(t, 1, e.Refresh(100+cfg.SurveyRefreshTicks+1, homes, 5))
	assert.Equal(t, 0, e.Refresh(100+cfg.SurveyRefreshTicks+2, homes, 0))
}

func TestCachedNodesToleratesStaleness(t *testing.T) {
	cfg := config.Default()
	w := newFakeWorld()
	w.see("A", zone.Observation{Deposits: []zone.Deposit{deposit("n1", 2000, 2000)}})

	e, _ := newEngine(w, cfg)
	assert.Nil(t, e.CachedNodes("A"))

	e.FindNodes(100, "A", 0, false)
	assert.Len(t, e.CachedNodes("A"), 1)
}
