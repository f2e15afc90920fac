package fdl

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/OpenTraceLab/OpenTraceShorts/pkg/fabric"
)

const tinyFabric = `
# two slices sharing one switchbox
device "xc7a35ticsg324-1L" capacity 16;

site "SLICE_X0Y0" type SLICEL at 0 0 tile "CLB_X0Y0" index 0;
site "SLICE_X1Y0" type SLICEM at 1 0 tile "CLB_X0Y0" index 1;

entry "SLICE_X0Y0" "A6LUT" "CLB_X0Y0/CLB_L_A";
entry "SLICE_X0Y0" "AFF" "CLB_X0Y0/CLB_L_AQ";

wire "INT_X0Y0/LOGIC_OUTS_L0" node "INT_X0Y0/LOGIC_OUTS_L0";
wire "INT_X0Y0/LOGIC_OUTS_L0_EXT" node "INT_X0Y0/LOGIC_OUTS_L0";

edge "CLB_X0Y0/CLB_L_A" -> "CLB_X0Y0/CLB_L_AMUX";
edge "CLB_X0Y0/CLB_L_A" -> "INT_X0Y0/LOGIC_OUTS_L0" ascend;
edge "CLB_X0Y0/CLB_L_AQ" -> "INT_X0Y0/LOGIC_OUTS_L4" ascend;
edge "INT_X0Y0/LOGIC_OUTS_L0" -> "INT_X0Y0/NE2BEG0";
edge "INT_X0Y0/LOGIC_OUTS_L0_EXT" -> "INT_X0Y0/NW2BEG0" bidir;
edge "INT_X0Y0/LOGIC_OUTS_L4" -> "INT_X0Y0/NE2BEG0";
`

func TestParseTinyFabric(t *testing.T) {
	m, err := LoadString(tinyFabric)
	if err != nil {
		t.Fatalf("LoadString failed: %v", err)
	}

	if m.Device() != "xc7a35ticsg324-1L" {
		t.Errorf("device = %q", m.Device())
	}
	if m.Capacity() != 16 {
		t.Errorf("capacity = %d, want explicit 16", m.Capacity())
	}

	site, ok := m.SiteAt(fabric.Coord{X: 1, Y: 0})
	if !ok {
		t.Fatal("SLICE_X1Y0 not found")
	}
	if site.Type != fabric.SiteSliceM || site.Index != 1 || site.Tile != "CLB_X0Y0" {
		t.Errorf("unexpected site %+v", site)
	}

	s0, _ := m.SiteAt(fabric.Coord{})
	w, err := m.EntryWire(s0, fabric.BEL{Slot: fabric.SlotA, Kind: fabric.KindRegister})
	if err != nil {
		t.Fatalf("EntryWire failed: %v", err)
	}
	if w != "CLB_X0Y0/CLB_L_AQ" {
		t.Errorf("entry wire = %s", w)
	}

	edges := m.OutgoingEdges("CLB_X0Y0/CLB_L_A")
	if len(edges) != 2 || edges[1].Kind != fabric.EdgeAscend {
		t.Fatalf("unexpected edges %v", edges)
	}
	if edges[0].Kind != fabric.EdgeBuffered {
		t.Errorf("default edge kind = %s, want buffered", edges[0].Kind)
	}

	down := m.DownhillEdges(edges[1].DestNode)
	if len(down) != 2 {
		t.Fatalf("node should aggregate two wires' edges, got %v", down)
	}
	if down[1].Kind != fabric.EdgeBidirectional || down[1].DestWire.Name() != "NW2BEG0" {
		t.Errorf("unexpected second downhill edge %v", down[1])
	}
}

func TestParseErrorsCarryPosition(t *testing.T) {
	cases := map[string]string{
		"missing device":   `site "S" type SLICEL at 0 0 tile "T";`,
		"duplicate device": "device \"a\";\ndevice \"b\";",
		"bad bel":          "device \"a\";\nsite \"S\" type SLICEL at 0 0 tile \"T\";\nentry \"S\" \"Q6LUT\" \"T/w\";",
		"bad kind":         "device \"a\";\nedge \"T/a\" -> \"T/b\" sideways;",
		"syntax":           `device "a" capacity;`,
	}
	for name, input := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := LoadString(input); err == nil {
				t.Fatalf("expected error")
			}
		})
	}

	_, err := LoadString("device \"a\";\n\nedge \"T/a\" -> \"T/b\" sideways;")
	if err == nil || !strings.Contains(err.Error(), "3:1") {
		t.Errorf("error should point at line 3, got %v", err)
	}
}

func TestWriteRoundTrip(t *testing.T) {
	spec := fabric.GridSpec{Device: "roundtrip", Columns: 2, Rows: 2, Shared: 3, Capacity: 40, BRAMColumns: []int{1}}
	original, err := fabric.Grid(spec)
	if err != nil {
		t.Fatalf("Grid failed: %v", err)
	}

	var buf bytes.Buffer
	if err := Write(&buf, original); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	path := filepath.Join(t.TempDir(), "grid.fdl")
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	reloaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v\n%s", err, buf.String())
	}

	if diff := cmp.Diff(original.Sites(), reloaded.Sites()); diff != "" {
		t.Errorf("sites differ (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(original.Entries(), reloaded.Entries()); diff != "" {
		t.Errorf("entries differ (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(original.Edges(), reloaded.Edges()); diff != "" {
		t.Errorf("edges differ (-want +got):\n%s", diff)
	}
	if reloaded.Capacity() != 40 {
		t.Errorf("capacity = %d, want 40", reloaded.Capacity())
	}
}

func TestWriteKeepsNodeMembership(t *testing.T) {
	m, err := LoadString(tinyFabric)
	if err != nil {
		t.Fatalf("LoadString failed: %v", err)
	}
	var buf bytes.Buffer
	if err := Write(&buf, m); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	again, err := LoadString(buf.String())
	if err != nil {
		t.Fatalf("reparse failed: %v\n%s", err, buf.String())
	}
	node := fabric.NodeID("INT_X0Y0/LOGIC_OUTS_L0")
	if diff := cmp.Diff(m.DownhillEdges(node), again.DownhillEdges(node)); diff != "" {
		t.Errorf("downhill edges differ (-want +got):\n%s", diff)
	}
}
