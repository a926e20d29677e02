// Package world provides the generated sector grid the coordination layer
// runs against: hex topology, threat and richness fields, deposits, and the
// live harness implementing the observer, router, and mover contracts.
// Sectors use axial coordinates (q, r); r grows southward.
package world

import (
	"fmt"

	"github.com/wardenworks/outrider/internal/mathx"
	"github.com/wardenworks/outrider/internal/zone"
)

// Coord is a sector position in axial coordinates.
// The third cube coordinate s is derived: s = -q - r.
type Coord struct {
	Q int `json:"q"`
	R int `json:"r"`
}

// S returns the implicit third cube coordinate.
func (c Coord) S() int {
	return -c.Q - c.R
}

// neighborOffsets lists the six adjacent offsets in zone.Direction order:
// E, NE, NW, W, SW, SE.
var neighborOffsets = [zone.NumDirections]Coord{
	{Q: 1, R: 0},
	{Q: 1, R: -1},
	{Q: 0, R: -1},
	{Q: -1, R: 0},
	{Q: -1, R: 1},
	{Q: 0, R: 1},
}

// Neighbor returns the coordinate one step in the given direction.
func (c Coord) Neighbor(d zone.Direction) Coord {
	off := neighborOffsets[d]
	return Coord{Q: c.Q + off.Q, R: c.R + off.R}
}

// Neighbors returns the six adjacent coordinates in direction order.
func (c Coord) Neighbors() [zone.NumDirections]Coord {
	var result [zone.NumDirections]Coord
	for d := range neighborOffsets {
		result[d] = c.Neighbor(zone.Direction(d))
	}
	return result
}

// Distance returns the hex distance between two coordinates.
func Distance(a, b Coord) int {
	dq := mathx.Abs(a.Q - b.Q)
	dr := mathx.Abs(a.R - b.R)
	ds := mathx.Abs(a.S() - b.S())
	return mathx.Max(dq, mathx.Max(dr, ds))
}

// SectorID names a coordinate in compass form: east/west from q, south/north
// from r. The origin is "E0S0".
func SectorID(c Coord) zone.ID {
	ew := 'E'
	q := c.Q
	if q < 0 {
		ew = 'W'
		q = -q
	}
	ns := 'S'
	r := c.R
	if r < 0 {
		ns = 'N'
		r = -r
	}
	return zone.ID(fmt.Sprintf("%c%d%c%d", ew, q, ns, r))
}

// ParseSector converts a sector name back to its coordinate.
func ParseSector(id zone.ID) (Coord, error) {
	s := string(id)
	if len(s) < 4 {
		return Coord{}, fmt.Errorf("parsing sector %q: too short", id)
	}
	if s[0] != 'E' && s[0] != 'W' {
		return Coord{}, fmt.Errorf("parsing sector %q: expected E or W", id)
	}
	i := 1
	q, n, err := parseNumber(s, i)
	if err != nil {
		return Coord{}, fmt.Errorf("parsing sector %q: %w", id, err)
	}
	i += n
	if i >= len(s) || (s[i] != 'N' && s[i] != 'S') {
		return Coord{}, fmt.Errorf("parsing sector %q: expected N or S", id)
	}
	ns := s[i]
	i++
	r, n, err := parseNumber(s, i)
	if err != nil {
		return Coord{}, fmt.Errorf("parsing sector %q: %w", id, err)
	}
	if i+n != len(s) {
		return Coord{}, fmt.Errorf("parsing sector %q: trailing characters", id)
	}
	if s[0] == 'W' {
		q = -q
	}
	if ns == 'N' {
		r = -r
	}
	return Coord{Q: q, R: r}, nil
}

// parseNumber reads a decimal run starting at offset i and returns its value
// and length.
func parseNumber(s string, i int) (int, int, error) {
	v := 0
	n := 0
	for i+n < len(s) && s[i+n] >= '0' && s[i+n] <= '9' {
		v = v*10 + int(s[i+n]-'0')
		n++
	}
	if n == 0 {
		return 0, 0, fmt.Errorf("expected digits at offset %d", i)
	}
	return v, n, nil
}
