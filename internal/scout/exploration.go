package scout

import (
	"log/slog"

	"github.com/wardenworks/outrider/internal/zone"
)

// ExplorationRecord is a scout's report on one zone. Reports stand in for
// live observation when a zone is out of sight and gate which zones resource
// discovery may hand out.
type ExplorationRecord struct {
	Zone          zone.ID           `json:"zone"`
	Status        zone.SafetyStatus `json:"status"`
	ScannedAt     uint64            `json:"scanned_at"`
	HostileCount  int               `json:"hostile_count"`
	NodeCount     int               `json:"node_count"`
	Owner         string            `json:"owner,omitempty"`
	ScoutName     string            `json:"scout,omitempty"`
	RemoteEnabled bool              `json:"remote_enabled"`
}

// RecordScan files a scout's report for a zone, stamping it with the current
// tick.
func (a *Assessor) RecordScan(now uint64, rec ExplorationRecord) {
	rec.ScannedAt = now
	if err := a.store.Set(exploreKey(rec.Zone), rec); err != nil {
		slog.Warn("exploration report write failed", "zone", rec.Zone, "error", err)
	}
}

// MarkExpired flags a zone as unusable for remote work, typically after a
// transition toward it timed out. The mark ages out with the exploration
// cache, after which the zone becomes eligible again.
func (a *Assessor) MarkExpired(now uint64, z zone.ID) {
	var rec ExplorationRecord
	found, err := a.store.Get(exploreKey(z), &rec)
	if err != nil {
		slog.Warn("exploration cache read failed", "zone", z, "error", err)
	}
	if !found {
		rec = ExplorationRecord{Zone: z, Status: zone.StatusUnknown}
	}
	rec.RemoteEnabled = false
	rec.ScannedAt = now
	if err := a.store.Set(exploreKey(z), rec); err != nil {
		slog.Warn("exploration mark write failed", "zone", z, "error", err)
	}
	slog.Debug("zone marked expired for remote use", "zone", z)
}

// Exploration returns the stored scout report for a zone, if any.
func (a *Assessor) Exploration(z zone.ID) (ExplorationRecord, bool) {
	var rec ExplorationRecord
	found, err := a.store.Get(exploreKey(z), &rec)
	if err != nil {
		slog.Warn("exploration cache read failed", "zone", z, "error", err)
		return ExplorationRecord{}, false
	}
	return rec, found
}

// RemoteEnabled reports whether discovery may hand out work in the zone. A
// zone with no report is fair game; an expired mark holds until it goes
// stale.
func (a *Assessor) RemoteEnabled(now uint64, z zone.ID) bool {
	var rec ExplorationRecord
	found, err := a.store.Get(exploreKey(z), &rec)
	if err != nil {
		slog.Warn("exploration cache read failed", "zone", z, "error", err)
		return true
	}
	if !found || rec.RemoteEnabled {
		return true
	}
	// Stale marks no longer bind; the GC sweep will collect them.
	return now-rec.ScannedAt > 2*a.cfg.SafetyCacheTicks
}
