package world

import (
	"fmt"

	"github.com/wardenworks/outrider/internal/zone"
)

// Sector is one zone-sized tile of the generated world.
type Sector struct {
	Coord Coord   `json:"coord"`
	ID    zone.ID `json:"id"`

	// Environmental fields (set during generation).
	Threat   float64 `json:"threat"`   // 0.0 (calm) to 1.0 (raider country)
	Richness float64 `json:"richness"` // 0.0 (barren) to 1.0 (dense veins)

	// Control
	Ownership       zone.Ownership `json:"ownership"`
	Owner           string         `json:"owner,omitempty"`
	ControllerLevel int            `json:"controller_level"`

	// Hostile presence, if any.
	HostileAgents     int `json:"hostile_agents"`
	HostileStructures int `json:"hostile_structures"`

	// Harvestable deposits. Empty for barren sectors.
	Deposits []*zone.Deposit `json:"deposits"`

	// Impassable borders. A closed border is closed from both sides.
	Blocked map[zone.Direction]bool `json:"blocked,omitempty"`
}

// ResourceValue returns the total deposit capacity in the sector.
func (s *Sector) ResourceValue() float64 {
	total := 0.0
	for _, d := range s.Deposits {
		total += d.Capacity
	}
	return total
}

// Grid holds the complete sector map.
type Grid struct {
	Sectors map[Coord]*Sector `json:"-"` // All sectors keyed by coordinate
	Radius  int               `json:"radius"`
}

// NewGrid creates an empty grid with the given radius.
// A grid of radius R contains sectors where max(|q|, |r|, |s|) <= R.
func NewGrid(radius int) *Grid {
	return &Grid{
		Sectors: make(map[Coord]*Sector),
		Radius:  radius,
	}
}

// Get returns the sector at the given coordinate, or nil if out of bounds.
func (g *Grid) Get(coord Coord) *Sector {
	return g.Sectors[coord]
}

// Lookup resolves a sector by zone name. Returns nil for names that do not
// parse or fall outside the grid.
func (g *Grid) Lookup(id zone.ID) *Sector {
	coord, err := ParseSector(id)
	if err != nil {
		return nil
	}
	return g.Sectors[coord]
}

// Set places a sector at its coordinate.
func (g *Grid) Set(s *Sector) {
	g.Sectors[s.Coord] = s
}

// InBounds returns true if the coordinate is within the grid radius.
func (g *Grid) InBounds(coord Coord) bool {
	return withinRadius(coord, g.Radius)
}

// SectorCount returns the total number of sectors in the grid.
func (g *Grid) SectorCount() int {
	return len(g.Sectors)
}

// String returns a summary of the grid.
func (g *Grid) String() string {
	return fmt.Sprintf("Grid(radius=%d, sectors=%d)", g.Radius, g.SectorCount())
}
