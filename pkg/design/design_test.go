package design

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OpenTraceLab/OpenTraceShorts/pkg/fabric"
)

func testSite(name string, x int) *fabric.Site {
	return &fabric.Site{Name: name, Type: fabric.SiteSliceL, Coord: fabric.Coord{X: x}, Tile: "CLB_X0Y0", Index: x}
}

func lutAt(site *fabric.Site, slot fabric.SlotID) fabric.Location {
	return fabric.Location{Site: site, BEL: fabric.BEL{Slot: slot, Kind: fabric.KindLUT}}
}

func ffAt(site *fabric.Site, slot fabric.SlotID) fabric.Location {
	return fabric.Location{Site: site, BEL: fabric.BEL{Slot: slot, Kind: fabric.KindRegister}}
}

func TestCreatePrimitiveAt(t *testing.T) {
	d := New("top", "xc7a35t")
	site := testSite("SLICE_X0Y0", 0)

	lut, err := d.CreatePrimitiveAt(lutAt(site, fabric.SlotB), Low)
	require.NoError(t, err)
	assert.Equal(t, "shortCell_SLICE_X0Y0_B6LUT_inst", lut.Name())
	assert.Equal(t, TypeLUT6, lut.Type())
	assert.Equal(t, "64'h0", lut.Init())
	assert.Equal(t, "O", lut.OutputPin())
	assert.True(t, lut.FixedPins())

	ff, err := d.CreatePrimitiveAt(ffAt(site, fabric.SlotB), High)
	require.NoError(t, err)
	assert.Equal(t, TypeFDSE, ff.Type())
	assert.Equal(t, "1", ff.Init())
	assert.Equal(t, "Q", ff.OutputPin())
	assert.False(t, ff.FixedPins())

	assert.Equal(t, "SLICE_X0Y0_B6LUT-SLICE_X0Y0_BFF-shorted_net", ShortNetName(lut, ff))
	assert.Equal(t, 2, d.PlacedCells())

	_, err = d.CreatePrimitiveAt(lutAt(site, fabric.SlotB), High)
	assert.True(t, errors.Is(err, ErrDuplicateName), "got %v", err)
}

func TestUnplaceReleasesLocation(t *testing.T) {
	d := New("top", "dev")
	site := testSite("SLICE_X0Y0", 0)
	lut, err := d.CreatePrimitiveAt(lutAt(site, fabric.SlotA), Low)
	require.NoError(t, err)

	n, err := d.CreateNet("n")
	require.NoError(t, err)
	require.NoError(t, n.Connect(lut, lut.OutputPin()))

	require.NoError(t, lut.Unplace())
	assert.False(t, lut.Placed())
	assert.Equal(t, 0, d.PlacedCells())
	assert.Empty(t, n.Pins())
	_, ok := d.Cell(lut.Name())
	assert.False(t, ok)

	err = lut.Unplace()
	assert.True(t, errors.Is(err, ErrNotPlaced))

	_, err = d.CreatePrimitiveAt(lutAt(site, fabric.SlotA), Low)
	assert.NoError(t, err, "location must be free again")
}

func TestNetLockAndUnroute(t *testing.T) {
	d := New("top", "dev")
	n, err := d.CreateNet("n")
	require.NoError(t, err)

	_, err = d.CreateNet("n")
	assert.True(t, errors.Is(err, ErrDuplicateName))

	same, err := d.GetOrCreateNet("n")
	require.NoError(t, err)
	assert.Same(t, n, same)

	require.NoError(t, n.AddEdge(fabric.Edge{From: "T/a", DestWire: "T/b"}))
	n.Lock()
	assert.True(t, n.Locked())
	err = n.AddEdge(fabric.Edge{From: "T/b", DestWire: "T/c"})
	assert.True(t, errors.Is(err, ErrNetLocked))
	assert.Equal(t, []fabric.WireID{"T/b"}, d.UsedWires())

	n.Unroute()
	assert.False(t, n.Locked())
	assert.Empty(t, n.Edges())
	assert.Empty(t, d.UsedWires())

	d.RemoveNet("n")
	_, ok := d.Net("n")
	assert.False(t, ok)
}

func TestConnectRejectsForeignCell(t *testing.T) {
	a := New("a", "dev")
	b := New("b", "dev")
	cell, err := a.CreatePrimitiveAt(lutAt(testSite("S", 0), fabric.SlotA), Low)
	require.NoError(t, err)
	n, err := b.CreateNet("n")
	require.NoError(t, err)
	assert.True(t, errors.Is(n.Connect(cell, "O"), ErrUnknownCell))
}

func TestJSONRoundTrip(t *testing.T) {
	d := New("top", "xc7a35t")
	site := testSite("SLICE_X1Y0", 1)
	site.Type = fabric.SiteSliceM
	lut, err := d.CreatePrimitiveAt(lutAt(site, fabric.SlotC), Low)
	require.NoError(t, err)
	ff, err := d.CreatePrimitiveAt(ffAt(site, fabric.SlotC), High)
	require.NoError(t, err)

	n, err := d.CreateNet(ShortNetName(lut, ff))
	require.NoError(t, err)
	require.NoError(t, n.Connect(lut, lut.OutputPin()))
	require.NoError(t, n.Connect(ff, ff.OutputPin()))
	require.NoError(t, n.AddEdge(fabric.Edge{Kind: fabric.EdgeAscend, From: "T/a", DestWire: "T/b", DestNode: "T/b"}))
	n.Lock()

	var buf bytes.Buffer
	require.NoError(t, d.WriteJSON(&buf))

	got, err := ReadJSON(&buf)
	require.NoError(t, err)
	assert.Equal(t, "top", got.Name())
	assert.Equal(t, "xc7a35t", got.Device())
	assert.Equal(t, 2, got.PlacedCells())

	gotLUT, ok := got.Cell(lut.Name())
	require.True(t, ok)
	assert.Equal(t, Low, gotLUT.Level())
	assert.Equal(t, *site, *gotLUT.Location().Site)
	assert.Equal(t, lut.Location().BEL, gotLUT.Location().BEL)

	gotFF, ok := got.Cell(ff.Name())
	require.True(t, ok)
	assert.Equal(t, High, gotFF.Level())

	gotNet, ok := got.Net(n.Name())
	require.True(t, ok)
	assert.True(t, gotNet.Locked())
	assert.Equal(t, n.Pins(), gotNet.Pins())
	assert.Equal(t, n.Edges(), gotNet.Edges())
}

func TestReadJSONRejectsBadInit(t *testing.T) {
	input := `{"version":"1.0","name":"x","device":"d","cells":[{"name":"c","type":"LUT6","init":"64'h5","site":"S","tile":"T","bel":"A6LUT"}],"nets":[]}`
	_, err := ReadJSON(bytes.NewBufferString(input))
	assert.Error(t, err)
}
