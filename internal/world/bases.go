// Base placement: scores sectors for home bases and claims the winners.
package world

import (
	"math"
	"sort"

	"github.com/wardenworks/outrider/internal/zone"
)

// minBaseDist keeps home bases from crowding each other's harvest range.
const minBaseDist = 3

// PlaceBases picks the best home-base sectors on the grid and returns their
// zone names, best first. It does not claim them; see ClaimBase.
func PlaceBases(g *Grid, count int) []zone.ID {
	type scored struct {
		coord Coord
		score float64
	}
	var candidates []scored

	for coord, sector := range g.Sectors {
		s := baseScore(g, coord, sector)
		if s > 0 {
			candidates = append(candidates, scored{coord, s})
		}
	}

	// Sort by score descending; coordinates break ties so the pick is
	// stable across runs of the same seed.
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].score != candidates[j].score {
			return candidates[i].score > candidates[j].score
		}
		return less(candidates[i].coord, candidates[j].coord)
	})

	var bases []zone.ID
	var taken []Coord
	for _, c := range candidates {
		if len(bases) >= count {
			break
		}
		if tooClose(c.coord, taken, minBaseDist) {
			continue
		}
		taken = append(taken, c.coord)
		bases = append(bases, SectorID(c.coord))
	}
	return bases
}

// baseScore evaluates how desirable a sector is for a home base.
// Prefers calm unclaimed ground with deposits and rich neighbors.
func baseScore(g *Grid, coord Coord, sector *Sector) float64 {
	if sector.HostileAgents > 0 || sector.Ownership == zone.OwnershipHostile {
		return 0
	}
	if len(sector.Deposits) == 0 {
		return 0
	}

	score := 2.0
	score += math.Log1p(sector.ResourceValue()) * 0.3
	score -= sector.Threat * 4.0

	// Bonus for harvestable neighbors, penalty for camps next door.
	for _, nc := range coord.Neighbors() {
		neighbor := g.Get(nc)
		if neighbor == nil {
			continue
		}
		score += neighbor.Richness * 0.6
		if neighbor.HostileAgents > 0 {
			score -= 2.0
		}
	}

	return score
}

// ClaimBase marks a sector as our owned base and reserves its calm neighbors.
func ClaimBase(g *Grid, id zone.ID, owner string, level int) bool {
	sector := g.Lookup(id)
	if sector == nil {
		return false
	}
	sector.Ownership = zone.OwnershipOwned
	sector.Owner = owner
	sector.ControllerLevel = level

	for _, nc := range sector.Coord.Neighbors() {
		neighbor := g.Get(nc)
		if neighbor == nil || neighbor.Ownership != zone.OwnershipNeutral {
			continue
		}
		if neighbor.HostileAgents > 0 {
			continue
		}
		neighbor.Ownership = zone.OwnershipReserved
		neighbor.Owner = owner
	}
	return true
}

func tooClose(coord Coord, existing []Coord, minDist int) bool {
	for _, c := range existing {
		if Distance(coord, c) < minDist {
			return true
		}
	}
	return false
}
