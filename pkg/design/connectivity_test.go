package design

import (
	"testing"

	"github.com/OpenTraceLab/OpenTraceShorts/pkg/fabric"
)

type nodeMap map[fabric.WireID]fabric.NodeID

func (m nodeMap) NodeOf(w fabric.WireID) (fabric.NodeID, bool) {
	n, ok := m[w]
	return n, ok
}

func TestWiresConnect(t *testing.T) {
	w := NewWires()
	w.Connect("T/a", "T/b")
	w.Connect("T/c", "T/d")

	if !w.Joined("T/a", "T/b") {
		t.Errorf("a and b should be joined")
	}
	if w.Joined("T/a", "T/c") {
		t.Errorf("a and c should be separate")
	}

	// Transitive: a-b-c-d
	w.Connect("T/b", "T/c")
	if !w.Joined("T/a", "T/d") {
		t.Errorf("a and d should be joined transitively")
	}
	if w.Joined("T/a", "T/unknown") {
		t.Errorf("unknown wires are never joined")
	}
}

func TestConnectivityJoinsNodeMembers(t *testing.T) {
	d := New("top", "dev")
	n, err := d.CreateNet("n")
	if err != nil {
		t.Fatalf("CreateNet failed: %v", err)
	}
	edges := []fabric.Edge{
		{Kind: fabric.EdgeAscend, From: "CLB/A", DestWire: "INT/OUT0"},
		{Kind: fabric.EdgeAscend, From: "CLB/AQ", DestWire: "INT/OUT4"},
		{From: "INT/OUT0_EXT", DestWire: "INT/NE2BEG0"},
		{From: "INT/OUT4", DestWire: "INT/NE2BEG0"},
	}
	for _, e := range edges {
		if err := n.AddEdge(e); err != nil {
			t.Fatalf("AddEdge failed: %v", err)
		}
	}

	plain := Connectivity(n, nil)
	if plain.Joined("CLB/A", "CLB/AQ") {
		t.Errorf("without node information OUT0 and OUT0_EXT are separate")
	}

	nodes := nodeMap{"INT/OUT0": "INT/OUT0", "INT/OUT0_EXT": "INT/OUT0"}
	full := Connectivity(n, nodes)
	if !full.Joined("CLB/A", "CLB/AQ") {
		t.Errorf("entry wires should be joined through the shared wire")
	}

	groups := full.Groups()
	if len(groups) != 1 {
		t.Fatalf("expected one group, got %v", groups)
	}
	if groups[0][0] != "CLB/A" || len(groups[0]) != 6 {
		t.Errorf("unexpected group %v", groups[0])
	}
}
