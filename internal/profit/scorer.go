// Package profit scores resource nodes for specific agents and decides when
// an agent should abandon a depleting node for a better one.
package profit

import (
	"log/slog"
	"math"

	"github.com/wardenworks/outrider/internal/config"
	"github.com/wardenworks/outrider/internal/store"
	"github.com/wardenworks/outrider/internal/survey"
)

const profitPrefix = "profit/"

// Record is one cached profitability verdict for a (node, agent) pair.
type Record struct {
	NodeID    string  `json:"node_id"`
	Agent     string  `json:"agent"`
	Score     float64 `json:"score"`
	Remaining float64 `json:"remaining"`
	Distance  int     `json:"distance"`
	Crowding  float64 `json:"crowding"`
	UpdatedAt uint64  `json:"updated_at"`
}

// Scorer evaluates how worthwhile a node is for an agent right now.
type Scorer struct {
	store store.Store
	cfg   config.Config
}

// New returns a scorer over the given store.
func New(st store.Store, cfg config.Config) *Scorer {
	return &Scorer{store: st, cfg: cfg}
}

func profitKey(nodeID, agent string) string { return profitPrefix + nodeID + "|" + agent }

// ScoreNode scores a node for an agent. Fuller nodes score higher; distance
// and crowding past the per-node capacity pull the score down; a deposit
// about to replenish gets a small boost. Verdicts are cached per
// (node, agent) for the profit TTL, so within that window the score holds
// still even as crowding shifts.
func (s *Scorer) ScoreNode(now uint64, n survey.Node, agentName string, workers int) float64 {
	key := profitKey(n.ID, agentName)

	var rec Record
	found, err := s.store.Get(key, &rec)
	if err != nil {
		slog.Warn("profit cache read failed", "node", n.ID, "agent", agentName, "error", err)
	}
	if found && now-rec.UpdatedAt < s.cfg.ProfitCacheTicks {
		return rec.Score
	}

	crowding := 15 * math.Max(0, float64(workers-s.cfg.MaxAgentsPerNode))
	score := 100*n.Ratio() - 10*float64(n.Distance) - crowding
	if n.RegenIn > 0 && n.RegenIn <= s.cfg.ReplenishSoonTicks {
		score += 10
	}

	rec = Record{
		NodeID:    n.ID,
		Agent:     agentName,
		Score:     score,
		Remaining: n.Amount,
		Distance:  n.Distance,
		Crowding:  crowding,
		UpdatedAt: now,
	}
	if err := s.store.Set(key, rec); err != nil {
		slog.Warn("profit cache write failed", "node", n.ID, "agent", agentName, "error", err)
	}
	return score
}

// ShouldMigrate decides whether an agent working current should move on.
// While the node still holds more than the migration floor the answer is no;
// once it runs low, the best alternative must beat the current score by more
// than the migration margin. workers maps node IDs to their current worker
// counts.
func (s *Scorer) ShouldMigrate(now uint64, current survey.Node, alts []survey.Node, agentName string, workers map[string]int) bool {
	if current.Amount > s.cfg.MigrationFloor {
		return false
	}

	cur := s.ScoreNode(now, current, agentName, workers[current.ID])
	best := math.Inf(-1)
	for _, alt := range alts {
		if alt.ID == current.ID {
			continue
		}
		if sc := s.ScoreNode(now, alt, agentName, workers[alt.ID]); sc > best {
			best = sc
		}
	}
	if best > cur+s.cfg.MigrationMargin {
		slog.Debug("migration recommended", "agent", agentName, "from", current.ID,
			"current_score", cur, "best_alternative", best)
		return true
	}
	return false
}

// Cleanup purges verdicts that are past the max age or refer to nodes no
// longer in anyone's discovery cache. Returns the number purged.
func (s *Scorer) Cleanup(now uint64, live map[string]bool) int {
	keys, err := s.store.Keys(profitPrefix)
	if err != nil {
		slog.Warn("profit cache scan failed", "error", err)
		return 0
	}
	purged := 0
	for _, key := range keys {
		var rec Record
		found, err := s.store.Get(key, &rec)
		if err != nil || !found {
			continue
		}
		if now-rec.UpdatedAt <= s.cfg.ProfitMaxAgeTicks && live[rec.NodeID] {
			continue
		}
		if err := s.store.Delete(key); err == nil {
			purged++
		}
	}
	return purged
}
