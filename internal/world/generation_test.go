package world

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wardenworks/outrider/internal/zone"
)

func TestGenerateIsDeterministicBySeed(t *testing.T) {
	a := Generate(SmallTestConfig())
	b := Generate(SmallTestConfig())

	require.Equal(t, a.SectorCount(), b.SectorCount())
	for coord, sa := range a.Sectors {
		sb := b.Get(coord)
		require.NotNil(t, sb, "sector %v missing from second grid", coord)
		assert.Equal(t, sa.Threat, sb.Threat)
		assert.Equal(t, sa.Richness, sb.Richness)
		assert.Equal(t, sa.Ownership, sb.Ownership)
		assert.Equal(t, sa.HostileAgents, sb.HostileAgents)
		assert.Equal(t, sa.Blocked, sb.Blocked)
		require.Len(t, sb.Deposits, len(sa.Deposits))
		for i := range sa.Deposits {
			assert.Equal(t, sa.Deposits[i].Capacity, sb.Deposits[i].Capacity)
		}
	}
}

func TestGenerateFillsTheRadius(t *testing.T) {
	cfg := SmallTestConfig()
	g := Generate(cfg)

	// A hex disc of radius R holds 3R^2+3R+1 cells.
	want := 3*cfg.Radius*cfg.Radius + 3*cfg.Radius + 1
	assert.Equal(t, want, g.SectorCount())
	for coord := range g.Sectors {
		assert.True(t, withinRadius(coord, cfg.Radius))
	}
}

func TestGeneratePlacesCampsAndClaims(t *testing.T) {
	g := Generate(GenConfig{Radius: 5, Seed: 7, CampLvl: 0.6, RichLvl: 0.55, ClosedFrac: 0, RivalClaims: 2})

	camps := 0
	claims := 0
	for _, sector := range g.Sectors {
		if sector.HostileAgents > 0 {
			camps++
			assert.Greater(t, sector.Threat, 0.6)
		}
		if sector.Ownership == zone.OwnershipHostile && sector.HostileAgents == 0 {
			claims++
			assert.NotEmpty(t, sector.Owner)
		}
	}
	assert.GreaterOrEqual(t, camps, 2)
	assert.Equal(t, 2, claims)
}

func TestClosedBordersAreSymmetric(t *testing.T) {
	g := Generate(GenConfig{Radius: 4, Seed: 11, CampLvl: 0.7, RichLvl: 0.55, ClosedFrac: 0.3, RivalClaims: 0})

	closed := 0
	for coord, sector := range g.Sectors {
		for d, blocked := range sector.Blocked {
			if !blocked {
				continue
			}
			closed++
			neighbor := g.Get(coord.Neighbor(d))
			require.NotNil(t, neighbor)
			assert.True(t, neighbor.Blocked[d.Opposite()],
				"border %s/%s closed on one side only", sector.ID, neighbor.ID)
		}
	}
	assert.Greater(t, closed, 0)
}

func TestSectorNamesRoundTrip(t *testing.T) {
	cases := map[Coord]zone.ID{
		{Q: 0, R: 0}:   "E0S0",
		{Q: 3, R: -2}:  "E3N2",
		{Q: -1, R: 4}:  "W1S4",
		{Q: -6, R: -6}: "W6N6",
	}
	for coord, want := range cases {
		assert.Equal(t, want, SectorID(coord))
		got, err := ParseSector(want)
		require.NoError(t, err)
		assert.Equal(t, coord, got)
	}

	for _, bad := range []zone.ID{"", "E1", "X1S1", "E1Q1", "E1S", "E1S2x"} {
		_, err := ParseSector(bad)
		assert.Error(t, err, "parsed %q", bad)
	}
}

func TestPlaceBasesPrefersCalmGround(t *testing.T) {
	g := Generate(GenConfig{Radius: 5, Seed: 3, CampLvl: 0.6, RichLvl: 0.55, ClosedFrac: 0, RivalClaims: 0})

	bases := PlaceBases(g, 2)
	require.Len(t, bases, 2)

	var coords []Coord
	for _, base := range bases {
		sector := g.Lookup(base)
		require.NotNil(t, sector)
		assert.Zero(t, sector.HostileAgents)
		assert.NotEmpty(t, sector.Deposits)
		coords = append(coords, sector.Coord)
	}
	assert.GreaterOrEqual(t, Distance(coords[0], coords[1]), minBaseDist)
}

func TestClaimBaseReservesCalmNeighbors(t *testing.T) {
	g := flatGrid(2, 1000)
	camp := g.Lookup("E1S0")
	camp.HostileAgents = 2

	require.True(t, ClaimBase(g, "E0S0", "outrider", 2))

	base := g.Lookup("E0S0")
	assert.Equal(t, zone.OwnershipOwned, base.Ownership)
	assert.Equal(t, "outrider", base.Owner)
	assert.Equal(t, 2, base.ControllerLevel)

	assert.Equal(t, zone.OwnershipReserved, g.Lookup("W1S0").Ownership)
	assert.Equal(t, zone.OwnershipNeutral, camp.Ownership, "camps are not reservable")

	assert.False(t, ClaimBase(g, "E9S9", "outrider", 2))
}
