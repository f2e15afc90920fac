package fabric

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBELNames(t *testing.T) {
	cases := []struct {
		bel  BEL
		name string
	}{
		{BEL{Slot: SlotA, Kind: KindLUT}, "A6LUT"},
		{BEL{Slot: SlotD, Kind: KindLUT}, "D6LUT"},
		{BEL{Slot: SlotB, Kind: KindRegister}, "BFF"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.name, tc.bel.String())
		parsed, err := ParseBEL(tc.name)
		require.NoError(t, err)
		assert.Equal(t, tc.bel, parsed)
	}

	_, err := ParseBEL("E6LUT")
	assert.Error(t, err)
	_, err = ParseBEL("A5FF")
	assert.Error(t, err)
}

func TestWireIDParts(t *testing.T) {
	w := WireID("INT_X0Y0/NE2BEG0")
	assert.Equal(t, "INT_X0Y0", w.Tile())
	assert.Equal(t, "NE2BEG0", w.Name())
	assert.True(t, w.Matches("NE2BEG0"))
	assert.True(t, w.Matches("INT_X0Y0/NE2BEG0"))
	assert.False(t, w.Matches("NE2BEG1"))

	bare := WireID("VCC_WIRE")
	assert.Equal(t, "", bare.Tile())
	assert.Equal(t, "VCC_WIRE", bare.Name())
}

func TestKnownCapacity(t *testing.T) {
	cells, ok := KnownCapacity("xc7a35ticsg324-1L")
	require.True(t, ok)
	assert.Equal(t, 20800, cells)

	_, ok = KnownCapacity("xcku040")
	assert.False(t, ok)

	m := NewMemory("xc7a35ticsg324-1L")
	assert.Equal(t, 20800, m.Capacity())
	m.SetCapacity(8)
	assert.Equal(t, 8, m.Capacity())
	assert.Equal(t, Unbounded, NewMemory("other").Capacity())
}

func TestMemoryEdgeOrderIsStable(t *testing.T) {
	m := NewMemory("dev")
	require.NoError(t, m.AddEdge("T/a", "T/x", EdgeBuffered))
	require.NoError(t, m.AddEdge("T/a", "T/y", EdgeAscend))
	require.NoError(t, m.AddEdge("T/a", "T/z", EdgeBuffered))

	first := m.OutgoingEdges("T/a")
	second := m.OutgoingEdges("T/a")
	require.Len(t, first, 3)
	assert.Equal(t, first, second)
	assert.Equal(t, WireID("T/y"), first[1].DestWire)
	assert.Equal(t, EdgeAscend, first[1].Kind)
	assert.Equal(t, NodeID("T/y"), first[1].DestNode)
}

func TestMemoryNodeAggregatesWires(t *testing.T) {
	m := NewMemory("dev")
	require.NoError(t, m.AddWire("T/seg0", "N"))
	require.NoError(t, m.AddWire("T/seg1", "N"))
	require.NoError(t, m.AddEdge("T/seg0", "T/p", EdgeBuffered))
	require.NoError(t, m.AddEdge("T/seg1", "T/q", EdgeBuffered))
	require.NoError(t, m.AddEdge("T/seg0", "T/r", EdgeBuffered))
	require.NoError(t, m.AddEdge("T/src", "T/seg1", EdgeAscend))

	edges := m.DownhillEdges("N")
	var dests []WireID
	for _, e := range edges {
		dests = append(dests, e.DestWire)
	}
	assert.Equal(t, []WireID{"T/p", "T/r", "T/q"}, dests)

	up := m.OutgoingEdges("T/src")
	require.Len(t, up, 1)
	assert.Equal(t, NodeID("N"), up[0].DestNode)

	assert.Error(t, m.AddWire("T/seg0", "OTHER"))
}

func TestMemoryRejectsOverlappingSites(t *testing.T) {
	m := NewMemory("dev")
	_, err := m.AddSite(Site{Name: "S0", Type: SiteSliceL, Coord: Coord{0, 0}, Tile: "T"})
	require.NoError(t, err)
	_, err = m.AddSite(Site{Name: "S0", Type: SiteSliceL, Coord: Coord{1, 0}, Tile: "T"})
	assert.Error(t, err)
	_, err = m.AddSite(Site{Name: "S1", Type: SiteSliceL, Coord: Coord{0, 0}, Tile: "T"})
	assert.Error(t, err)
	_, err = m.AddSite(Site{Name: "S2", Type: SiteSliceL, Coord: Coord{2, 0}})
	assert.Error(t, err)
}

func TestGridLayout(t *testing.T) {
	spec := GridSpec{Device: "grid", Columns: 3, Rows: 2, Shared: 2, HoleColumns: []int{1}, BRAMColumns: []int{2}}
	m, err := Grid(spec)
	require.NoError(t, err)

	s0, ok := m.SiteAt(Coord{0, 1})
	require.True(t, ok)
	assert.Equal(t, "SLICE_X0Y1", s0.Name)
	assert.Equal(t, SiteSliceL, s0.Type)

	s1, ok := m.SiteAt(Coord{1, 1})
	require.True(t, ok)
	assert.Equal(t, SiteSliceM, s1.Type)
	assert.Equal(t, s0.Tile, s1.Tile)
	assert.Equal(t, []*Site{s0, s1}, m.SitesInTile(s0.Tile))

	_, ok = m.SiteAt(Coord{2, 0})
	assert.False(t, ok, "hole column must not host sites")

	bram, ok := m.SiteAt(Coord{4, 0})
	require.True(t, ok)
	assert.False(t, bram.Type.IsLogic())

	lut, err := m.EntryWire(s0, BEL{Slot: SlotC, Kind: KindLUT})
	require.NoError(t, err)
	assert.Equal(t, WireID("CLB_X0Y1/CLB_L_C"), lut)
	ff, err := m.EntryWire(s1, BEL{Slot: SlotC, Kind: KindRegister})
	require.NoError(t, err)
	assert.Equal(t, WireID("CLB_X0Y1/CLB_M_CQ"), ff)

	edges := m.OutgoingEdges(lut)
	require.Len(t, edges, 2)
	assert.Equal(t, EdgeBuffered, edges[0].Kind)
	assert.Equal(t, EdgeAscend, edges[1].Kind)

	down := m.DownhillEdges(edges[1].DestNode)
	require.Len(t, down, 1+spec.Shared)
	assert.Equal(t, "NE2BEG2", down[1].DestWire.Name())
	assert.Equal(t, "NW2BEG2", down[2].DestWire.Name())
}

func TestGridSpecValidate(t *testing.T) {
	assert.NoError(t, DefaultGridSpec().Validate())
	assert.Error(t, GridSpec{Columns: 0, Rows: 1, Shared: 1}.Validate())
	assert.Error(t, GridSpec{Columns: 1, Rows: 1, Shared: MaxShared + 1}.Validate())
	assert.Error(t, GridSpec{Columns: 1, Rows: 1, Shared: 1, Capacity: -1}.Validate())
}
