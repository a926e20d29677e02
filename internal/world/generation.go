// World generation using layered simplex noise.
// Generates threat and richness fields, then derives deposits, raider camps,
// rival claims, and closed borders.
package world

import (
	"fmt"
	"math"
	"math/rand"
	"sort"

	"github.com/google/uuid"
	opensimplex "github.com/ojrac/opensimplex-go"

	"github.com/wardenworks/outrider/internal/mathx"
	"github.com/wardenworks/outrider/internal/zone"
)

// GenConfig holds world generation parameters.
type GenConfig struct {
	Radius      int     // Sector grid radius (6 = 127 sectors)
	Seed        int64   // Random seed (0 = random)
	CampLvl     float64 // Threat threshold for raider camps (0.0 to 1.0)
	RichLvl     float64 // Richness threshold for multi-deposit sectors (0.0 to 1.0)
	ClosedFrac  float64 // Fraction of borders sealed off (0.0 to 1.0)
	RivalClaims int     // Number of sectors claimed by rival factions
}

// DefaultGenConfig returns a reasonable starting configuration.
func DefaultGenConfig() GenConfig {
	return GenConfig{
		Radius:      6,
		Seed:        0,
		CampLvl:     0.68,
		RichLvl:     0.58,
		ClosedFrac:  0.06,
		RivalClaims: 3,
	}
}

// SmallTestConfig returns a tiny world for rapid iteration.
func SmallTestConfig() GenConfig {
	return GenConfig{
		Radius:      3,
		Seed:        42,
		CampLvl:     0.72,
		RichLvl:     0.55,
		ClosedFrac:  0.05,
		RivalClaims: 1,
	}
}

// Generate creates a complete sector grid with deposits and hostile presence.
func Generate(cfg GenConfig) *Grid {
	seed := cfg.Seed
	if seed == 0 {
		seed = rand.Int63()
	}

	// Two noise generators for independent fields.
	threatNoise := opensimplex.NewNormalized(seed)
	richNoise := opensimplex.NewNormalized(seed + 1)

	g := NewGrid(cfg.Radius)

	// Generate each sector within radius.
	for q := -cfg.Radius; q <= cfg.Radius; q++ {
		for r := -cfg.Radius; r <= cfg.Radius; r++ {
			coord := Coord{Q: q, R: r}
			if !withinRadius(coord, cfg.Radius) {
				continue
			}

			// Convert hex coords to continuous space for noise sampling.
			// Hex axial to cartesian: x = q + r*0.5, y = r * sqrt(3)/2
			x := float64(q) + float64(r)*0.5
			y := float64(r) * math.Sqrt(3.0) / 2.0

			// Multi-octave noise for natural-looking fields.
			threat := octaveNoise(threatNoise, x, y, 4, 0.11, 0.5)
			rich := octaveNoise(richNoise, x, y, 3, 0.09, 0.5)

			// Frontier shaping: the rim is wilder and richer than the core,
			// so the worthwhile harvesting is also the dangerous kind.
			distFromCenter := mathx.Clamp01(math.Sqrt(x*x+y*y) / float64(cfg.Radius))
			threat = threat*0.65 + distFromCenter*0.35
			rich = rich*0.75 + distFromCenter*0.25

			id := SectorID(coord)
			sector := &Sector{
				Coord:    coord,
				ID:       id,
				Threat:   threat,
				Richness: rich,
				Deposits: makeDeposits(id, rich, cfg.RichLvl),
				Blocked:  make(map[zone.Direction]bool),
			}

			g.Set(sector)
		}
	}

	// Post-pass: settle raider camps on the highest-threat sectors.
	placeCamps(g, seed, cfg.CampLvl)

	// Post-pass: hand a few sectors to rival factions.
	placeRivals(g, seed, cfg.RivalClaims)

	// Post-pass: seal a fraction of borders.
	closeBorders(g, seed, cfg.ClosedFrac)

	return g
}

// withinRadius applies the cube coordinate constraint max(|q|,|r|,|s|) <= radius.
func withinRadius(c Coord, radius int) bool {
	aq, ar, as := mathx.Abs(c.Q), mathx.Abs(c.R), mathx.Abs(c.S())
	return mathx.Max(aq, mathx.Max(ar, as)) <= radius
}

// makeDeposits populates a sector's harvestable deposits from its richness.
// Barren sectors get none; sectors past richLvl get extra veins.
func makeDeposits(id zone.ID, rich, richLvl float64) []*zone.Deposit {
	count := 1
	switch {
	case rich < 0.2:
		count = 0
	case rich > richLvl+0.2:
		count = 3
	case rich > richLvl:
		count = 2
	}

	deposits := make([]*zone.Deposit, 0, count)
	for i := 0; i < count; i++ {
		// Capacity rounds to 50s; later veins in a sector run smaller.
		capacity := (1200 + rich*2800) * (1 - 0.15*float64(i))
		capacity = math.Round(capacity/50) * 50
		deposits = append(deposits, &zone.Deposit{
			ID:       uuid.NewString(),
			Zone:     id,
			Amount:   capacity,
			Capacity: capacity,
		})
	}
	return deposits
}

// placeCamps settles raider camps on high-threat sectors. Only a handful of
// candidates become camps; the rest stay tense but empty.
func placeCamps(g *Grid, seed int64, campLvl float64) {
	rng := rand.New(rand.NewSource(seed + 100))

	var candidates []Coord
	for coord, sector := range g.Sectors {
		if sector.Threat > campLvl {
			candidates = append(candidates, coord)
		}
	}
	// Map iteration order is random; sort before shuffling for determinism.
	sort.Slice(candidates, func(i, j int) bool {
		return less(candidates[i], candidates[j])
	})

	numCamps := mathx.Clamp(len(candidates)/3, 2, 8)
	if numCamps > len(candidates) {
		numCamps = len(candidates)
	}

	rng.Shuffle(len(candidates), func(i, j int) {
		candidates[i], candidates[j] = candidates[j], candidates[i]
	})

	for _, coord := range candidates[:numCamps] {
		sector := g.Get(coord)
		over := sector.Threat - campLvl
		sector.HostileAgents = mathx.Min(1+int(over*10), 4)
		if over > 0.12 {
			sector.HostileStructures = 1
		}
		if over > 0.2 {
			sector.Ownership = zone.OwnershipHostile
			sector.Owner = "warband"
		}
	}
}

// rivalNames are the factions that hold claims outside our reach.
var rivalNames = []string{"threshers", "red-march", "kestrel", "hollowfolk"}

// placeRivals assigns claimed sectors to rival factions. Claims go to calm,
// deposit-bearing sectors so they read as working colonies, not camps.
func placeRivals(g *Grid, seed int64, claims int) {
	if claims <= 0 {
		return
	}
	rng := rand.New(rand.NewSource(seed + 200))

	var candidates []Coord
	for coord, sector := range g.Sectors {
		if sector.Threat < 0.45 && len(sector.Deposits) > 0 && sector.Ownership == zone.OwnershipNeutral {
			candidates = append(candidates, coord)
		}
	}
	sort.Slice(candidates, func(i, j int) bool {
		return less(candidates[i], candidates[j])
	})
	rng.Shuffle(len(candidates), func(i, j int) {
		candidates[i], candidates[j] = candidates[j], candidates[i]
	})

	if claims > len(candidates) {
		claims = len(candidates)
	}
	for i := 0; i < claims; i++ {
		sector := g.Get(candidates[i])
		sector.Ownership = zone.OwnershipHostile
		sector.Owner = rivalNames[rng.Intn(len(rivalNames))]
		sector.ControllerLevel = 1 + rng.Intn(4)
	}
}

// closeBorders seals a fraction of sector borders from both sides.
func closeBorders(g *Grid, seed int64, frac float64) {
	if frac <= 0 {
		return
	}
	rng := rand.New(rand.NewSource(seed + 300))

	var coords []Coord
	for coord := range g.Sectors {
		coords = append(coords, coord)
	}
	sort.Slice(coords, func(i, j int) bool {
		return less(coords[i], coords[j])
	})

	for _, coord := range coords {
		sector := g.Get(coord)
		for d := zone.Direction(0); d < zone.NumDirections; d++ {
			// Visit each border once, from its lexically smaller side.
			nc := coord.Neighbor(d)
			neighbor := g.Get(nc)
			if neighbor == nil || !less(coord, nc) {
				continue
			}
			if rng.Float64() < frac {
				sector.Blocked[d] = true
				neighbor.Blocked[d.Opposite()] = true
			}
		}
	}
}

// less orders coordinates by (q, r) for deterministic candidate lists.
func less(a, b Coord) bool {
	if a.Q != b.Q {
		return a.Q < b.Q
	}
	return a.R < b.R
}

// octaveNoise generates fractal noise by layering multiple frequencies.
func octaveNoise(noise opensimplex.Noise, x, y float64, octaves int, frequency, persistence float64) float64 {
	total := 0.0
	amplitude := 1.0
	maxVal := 0.0

	for i := 0; i < octaves; i++ {
		total += noise.Eval2(x*frequency, y*frequency) * amplitude
		maxVal += amplitude
		amplitude *= persistence
		frequency *= 2
	}

	return total / maxVal
}

// ThreatCounts buckets the grid's sectors by threat band for summaries.
func ThreatCounts(g *Grid) map[string]int {
	counts := make(map[string]int)
	for _, sector := range g.Sectors {
		switch {
		case sector.HostileAgents > 0:
			counts["camp"]++
		case sector.Threat > 0.6:
			counts["tense"]++
		default:
			counts["calm"]++
		}
	}
	return counts
}

// Describe returns a one-line summary of a sector for logs and inspection.
func Describe(s *Sector) string {
	return fmt.Sprintf("%s threat=%.2f rich=%.2f deposits=%d hostiles=%d owner=%s",
		s.ID, s.Threat, s.Richness, len(s.Deposits), s.HostileAgents, s.Ownership)
}
