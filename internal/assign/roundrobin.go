package assign

import (
	"log/slog"

	"github.com/wardenworks/outrider/internal/agent"
	"github.com/wardenworks/outrider/internal/zone"
)

// cursor remembers the last target handed out per (zone, role).
type cursor struct {
	LastTarget string `json:"last_target"`
	UpdatedAt  uint64 `json:"updated_at"`
}

func roundRobinKey(z zone.ID, role agent.Role) string {
	return roundRobinPrefix + string(z) + "|" + role.String()
}

// NextRoundRobin rotates through targets in list order for the given zone
// and role, wrapping around, so repeated calls spread agents evenly across
// targets that have no capacity tracking. Returns "" when targets is empty.
func (b *Board) NextRoundRobin(now uint64, z zone.ID, role agent.Role, targets []string) string {
	if len(targets) == 0 {
		return ""
	}

	key := roundRobinKey(z, role)
	var cur cursor
	found, err := b.store.Get(key, &cur)
	if err != nil {
		slog.Warn("round-robin cursor read failed", "zone", z, "role", role, "error", err)
	}

	next := targets[0]
	if found {
		for i, target := range targets {
			if target == cur.LastTarget {
				next = targets[(i+1)%len(targets)]
				break
			}
		}
	}

	cur = cursor{LastTarget: next, UpdatedAt: now}
	if err := b.store.Set(key, cur); err != nil {
		slog.Warn("round-robin cursor write failed", "zone", z, "role", role, "error", err)
	}
	return next
}
