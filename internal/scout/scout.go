// Package scout maintains the zone intelligence caches: safety verdicts,
// route accessibility, and exploration reports filed by scouting agents.
// Every verdict is cached in the shared store with a TTL so repeated queries
// within a step cost nothing beyond the first.
package scout

import (
	"github.com/wardenworks/outrider/internal/config"
	"github.com/wardenworks/outrider/internal/store"
	"github.com/wardenworks/outrider/internal/zone"
)

const (
	safetyPrefix  = "safety/"
	accessPrefix  = "access/"
	explorePrefix = "explore/"

	metaSafetySweep = "meta/safety-sweep"
)

// Assessor answers safety and accessibility queries about zones, caching
// verdicts in the shared store. It never mutates the world; it only observes
// through the injected collaborators.
type Assessor struct {
	store    store.Store
	observer zone.Observer
	router   zone.Router
	cfg      config.Config
}

// New returns an assessor backed by the given store and world views.
func New(st store.Store, obs zone.Observer, router zone.Router, cfg config.Config) *Assessor {
	return &Assessor{store: st, observer: obs, router: router, cfg: cfg}
}

func safetyKey(z zone.ID) string { return safetyPrefix + string(z) }

func accessKey(from, to zone.ID) string { return accessPrefix + string(from) + "|" + string(to) }

func exploreKey(z zone.ID) string { return explorePrefix + string(z) }

// Cleanup evicts cache entries old enough to be useless: safety and
// exploration records beyond twice the safety TTL, accessibility records
// beyond twice the access TTL. Returns the number of evicted records.
func (a *Assessor) Cleanup(now uint64) int {
	evicted := 0
	evicted += a.sweepExpired(now, safetyPrefix, 2*a.cfg.SafetyCacheTicks, func(raw safetyAge) uint64 { return raw.CheckedAt })
	evicted += a.sweepExpired(now, explorePrefix, 2*a.cfg.SafetyCacheTicks, func(raw safetyAge) uint64 { return raw.ScannedAt })
	evicted += a.sweepExpired(now, accessPrefix, 2*a.cfg.AccessCacheTicks, func(raw safetyAge) uint64 { return raw.CheckedAt })
	return evicted
}

// safetyAge is the minimal shape shared by all cache records for GC.
type safetyAge struct {
	CheckedAt uint64 `json:"checked_at"`
	ScannedAt uint64 `json:"scanned_at"`
}

func (a *Assessor) sweepExpired(now uint64, prefix string, maxAge uint64, at func(safetyAge) uint64) int {
	keys, err := a.store.Keys(prefix)
	if err != nil {
		return 0
	}
	evicted := 0
	for _, key := range keys {
		var rec safetyAge
		found, err := a.store.Get(key, &rec)
		if err != nil || !found {
			continue
		}
		if now-at(rec) > maxAge {
			if err := a.store.Delete(key); err == nil {
				evicted++
			}
		}
	}
	return evicted
}
