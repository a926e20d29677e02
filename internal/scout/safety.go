package scout

import (
	"log/slog"

	"github.com/wardenworks/outrider/internal/zone"
)

// SafetyRecord is the cached threat verdict for one zone.
type SafetyRecord struct {
	Zone              zone.ID           `json:"zone"`
	Status            zone.SafetyStatus `json:"status"`
	CheckedAt         uint64            `json:"checked_at"`
	HostileAgents     int               `json:"hostile_agents"`
	HostileStructures int               `json:"hostile_structures"`
	ControllerLevel   int               `json:"controller_level"`
	Ownership         zone.Ownership    `json:"ownership"`
	ResourceValue     float64           `json:"resource_value"`
	Reason            string            `json:"reason,omitempty"`
}

// Assess returns the zone's safety status. A cached verdict younger than the
// safety TTL is returned as-is unless force is set. Otherwise the zone is
// re-observed if visible; an out-of-sight zone falls back to a fresh scout
// report, and failing that the verdict is StatusUnknown. The status never
// moves to SAFE or UNSAFE without an observation behind it.
func (a *Assessor) Assess(now uint64, z zone.ID, force bool) zone.SafetyStatus {
	if !force {
		var rec SafetyRecord
		found, err := a.store.Get(safetyKey(z), &rec)
		if err != nil {
			slog.Warn("safety cache read failed", "zone", z, "error", err)
		}
		if found && now-rec.CheckedAt < a.cfg.SafetyCacheTicks {
			return rec.Status
		}
	}

	if obs, ok := a.observer.Observe(z); ok {
		rec := a.grade(now, z, obs)
		if err := a.store.Set(safetyKey(z), rec); err != nil {
			slog.Warn("safety cache write failed", "zone", z, "error", err)
		}
		return rec.Status
	}

	// Out of sight. A recent scout report substitutes for our own eyes.
	var exp ExplorationRecord
	found, err := a.store.Get(exploreKey(z), &exp)
	if err != nil {
		slog.Warn("exploration cache read failed", "zone", z, "error", err)
	}
	if found && now-exp.ScannedAt < a.cfg.SafetyCacheTicks {
		return exp.Status
	}
	return zone.StatusUnknown
}

// ZoneSafe reports whether the zone is confirmed safe. StatusUnknown counts
// as not safe for planning purposes.
func (a *Assessor) ZoneSafe(now uint64, z zone.ID, force bool) bool {
	return a.Assess(now, z, force) == zone.StatusSafe
}

// Grade derives a safety verdict from an observation, with the trigger that
// fired, if any. Pure; it touches no caches.
func (a *Assessor) Grade(obs zone.Observation) (zone.SafetyStatus, string) {
	switch {
	case obs.Ownership == zone.OwnershipHostile:
		return zone.StatusUnsafe, "hostile ownership"
	case obs.HostileAgents > a.cfg.MaxHostileAgents:
		return zone.StatusUnsafe, "hostile agents"
	case obs.HostileStructures > a.cfg.MaxHostileStructures:
		return zone.StatusUnsafe, "hostile structures"
	case a.cfg.MinControllerLevel > 0 &&
		(obs.Ownership == zone.OwnershipOwned || obs.Ownership == zone.OwnershipReserved) &&
		obs.ControllerLevel < a.cfg.MinControllerLevel:
		return zone.StatusUnsafe, "controller level"
	default:
		return zone.StatusSafe, ""
	}
}

// grade builds the cache record for a live observation.
func (a *Assessor) grade(now uint64, z zone.ID, obs zone.Observation) SafetyRecord {
	rec := SafetyRecord{
		Zone:              z,
		Status:            zone.StatusSafe,
		CheckedAt:         now,
		HostileAgents:     obs.HostileAgents,
		HostileStructures: obs.HostileStructures,
		ControllerLevel:   obs.ControllerLevel,
		Ownership:         obs.Ownership,
		ResourceValue:     obs.ResourceValue,
	}
	rec.Status, rec.Reason = a.Grade(obs)

	if rec.Status == zone.StatusUnsafe {
		slog.Debug("zone graded unsafe", "zone", z, "reason", rec.Reason,
			"hostile_agents", rec.HostileAgents, "hostile_structures", rec.HostileStructures)
	}
	return rec
}

// RefreshVisible proactively re-grades visible zones whose verdicts are
// missing or stale, at most once per safety sweep interval and at most
// maxScans zones per call. Returns the number of zones scanned.
func (a *Assessor) RefreshVisible(now uint64, visible []zone.ID, maxScans int) int {
	if maxScans <= 0 {
		return 0
	}

	var last uint64
	found, err := a.store.Get(metaSafetySweep, &last)
	if err != nil {
		slog.Warn("safety sweep meta read failed", "error", err)
	}
	if found && now-last < a.cfg.SafetySweepTicks {
		return 0
	}

	scanned := 0
	for _, z := range visible {
		if scanned >= maxScans {
			break
		}
		var rec SafetyRecord
		found, err := a.store.Get(safetyKey(z), &rec)
		if err == nil && found && now-rec.CheckedAt < a.cfg.SafetyCacheTicks {
			continue
		}
		obs, ok := a.observer.Observe(z)
		if !ok {
			continue
		}
		fresh := a.grade(now, z, obs)
		if err := a.store.Set(safetyKey(z), fresh); err != nil {
			slog.Warn("safety cache write failed", "zone", z, "error", err)
			continue
		}
		scanned++
	}

	if err := a.store.Set(metaSafetySweep, now); err != nil {
		slog.Warn("safety sweep meta write failed", "error", err)
	}
	return scanned
}
