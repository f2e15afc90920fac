package fdl

import (
	"bufio"
	"fmt"
	"io"
	"strconv"

	"github.com/OpenTraceLab/OpenTraceShorts/pkg/fabric"
)

// Write serializes m so that Build(Parse(output)) reproduces the same sites,
// entries, nodes and edge order.
func Write(w io.Writer, m *fabric.Memory) error {
	bw := bufio.NewWriter(w)
	q := strconv.Quote

	fmt.Fprintf(bw, "# fabric description for %s\n", m.Device())
	if cells, ok := m.ExplicitCapacity(); ok {
		fmt.Fprintf(bw, "device %s capacity %d;\n", q(m.Device()), cells)
	} else {
		fmt.Fprintf(bw, "device %s;\n", q(m.Device()))
	}

	sites := m.Sites()
	if len(sites) > 0 {
		fmt.Fprintln(bw)
	}
	for _, s := range sites {
		fmt.Fprintf(bw, "site %s type %s at %d %d tile %s index %d;\n",
			q(s.Name), s.Type, s.Coord.X, s.Coord.Y, q(s.Tile), s.Index)
	}

	entries := m.Entries()
	if len(entries) > 0 {
		fmt.Fprintln(bw)
	}
	for _, e := range entries {
		fmt.Fprintf(bw, "entry %s %s %s;\n", q(e.Site), q(e.BEL.String()), q(string(e.Wire)))
	}

	first := true
	for _, wire := range m.Wires() {
		node, _ := m.NodeOf(wire)
		if node == fabric.NodeID(wire) && len(m.NodeMembers(node)) == 1 {
			continue
		}
		if first {
			fmt.Fprintln(bw)
			first = false
		}
		fmt.Fprintf(bw, "wire %s node %s;\n", q(string(wire)), q(string(node)))
	}

	edges := m.Edges()
	if len(edges) > 0 {
		fmt.Fprintln(bw)
	}
	for _, e := range edges {
		fmt.Fprintf(bw, "edge %s -> %s %s;\n", q(string(e.From)), q(string(e.DestWire)), e.Kind)
	}

	return bw.Flush()
}
