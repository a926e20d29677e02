package scout

import (
	"log/slog"
	"math"

	"github.com/wardenworks/outrider/internal/zone"
)

// AccessRecord caches the route verdict for one ordered zone pair. Routes are
// directional; (A,B) and (B,A) are separate entries.
type AccessRecord struct {
	From       zone.ID        `json:"from"`
	To         zone.ID        `json:"to"`
	Accessible bool           `json:"accessible"`
	Exit       zone.Direction `json:"exit"`
	Cost       float64        `json:"cost"` // -1 when no route exists
	CheckedAt  uint64         `json:"checked_at"`
}

// PathCost returns the stored route cost, or +Inf when no route exists.
func (r AccessRecord) PathCost() float64 {
	if !r.Accessible || r.Cost < 0 {
		return math.Inf(1)
	}
	return r.Cost
}

// ZoneAccessible reports whether a route from one zone to another exists.
// Same-zone pairs are trivially accessible. Verdicts are cached per ordered
// pair with the access TTL.
func (a *Assessor) ZoneAccessible(now uint64, from, to zone.ID, force bool) bool {
	if from == to {
		return true
	}
	return a.access(now, from, to, force).Accessible
}

// PathCost returns the route cost between two zones, querying or refreshing
// the cache as needed. Returns 0 for same-zone pairs and +Inf when no route
// exists.
func (a *Assessor) PathCost(now uint64, from, to zone.ID) float64 {
	if from == to {
		return 0
	}
	return a.access(now, from, to, false).PathCost()
}

func (a *Assessor) access(now uint64, from, to zone.ID, force bool) AccessRecord {
	key := accessKey(from, to)

	if !force {
		var rec AccessRecord
		found, err := a.store.Get(key, &rec)
		if err != nil {
			slog.Warn("access cache read failed", "from", from, "to", to, "error", err)
		}
		if found && now-rec.CheckedAt < a.cfg.AccessCacheTicks {
			return rec
		}
	}

	rec := AccessRecord{From: from, To: to, CheckedAt: now, Cost: -1}
	if route, ok := a.router.Route(from, to); ok {
		rec.Accessible = true
		rec.Exit = route.Exit
		rec.Cost = route.Cost
	}
	if err := a.store.Set(key, rec); err != nil {
		slog.Warn("access cache write failed", "from", from, "to", to, "error", err)
	}
	return rec
}
