package design

import (
	"sort"

	"github.com/OpenTraceLab/OpenTraceShorts/pkg/fabric"
)

// Wires tracks which wires a net's routing joins electrically, using a
// union-find structure over wire ids.
type Wires struct {
	parent map[fabric.WireID]fabric.WireID
	rank   map[fabric.WireID]int
	order  []fabric.WireID
}

// NewWires creates an empty connectivity set.
func NewWires() *Wires {
	return &Wires{
		parent: make(map[fabric.WireID]fabric.WireID),
		rank:   make(map[fabric.WireID]int),
	}
}

// Connectivity builds the wire connectivity of a net from its edges. When
// nodes is non-nil, wires belonging to the same node are joined too.
func Connectivity(n *Net, nodes fabric.NodeResolver) *Wires {
	w := NewWires()
	byNode := make(map[fabric.NodeID]fabric.WireID)
	join := func(wire fabric.WireID) {
		w.add(wire)
		if nodes == nil {
			return
		}
		node, ok := nodes.NodeOf(wire)
		if !ok {
			return
		}
		if first, ok := byNode[node]; ok {
			w.Connect(first, wire)
		} else {
			byNode[node] = wire
		}
	}
	for _, e := range n.Edges() {
		join(e.From)
		join(e.DestWire)
		w.Connect(e.From, e.DestWire)
	}
	return w
}

func (w *Wires) add(wire fabric.WireID) {
	if _, ok := w.parent[wire]; ok {
		return
	}
	w.parent[wire] = wire
	w.rank[wire] = 0
	w.order = append(w.order, wire)
}

// Connect marks two wires as electrically joined.
func (w *Wires) Connect(a, b fabric.WireID) {
	w.add(a)
	w.add(b)
	rootA := w.Find(a)
	rootB := w.Find(b)
	if rootA == rootB {
		return
	}

	// Union by rank
	switch {
	case w.rank[rootA] < w.rank[rootB]:
		w.parent[rootA] = rootB
	case w.rank[rootA] > w.rank[rootB]:
		w.parent[rootB] = rootA
	default:
		w.parent[rootB] = rootA
		w.rank[rootA]++
	}
}

// Find returns the representative wire of the set holding wire. Unknown
// wires are their own representative.
func (w *Wires) Find(wire fabric.WireID) fabric.WireID {
	if _, ok := w.parent[wire]; !ok {
		return wire
	}
	root := wire
	for w.parent[root] != root {
		root = w.parent[root]
	}

	// Path compression
	for cur := wire; cur != root; {
		next := w.parent[cur]
		w.parent[cur] = root
		cur = next
	}
	return root
}

// Joined reports whether a and b are in the same set. A wire the routing
// never touches is joined with nothing, not even itself.
func (w *Wires) Joined(a, b fabric.WireID) bool {
	if _, ok := w.parent[a]; !ok {
		return false
	}
	if _, ok := w.parent[b]; !ok {
		return false
	}
	return w.Find(a) == w.Find(b)
}

// Groups returns every set with its wires sorted, ordered by first wire.
func (w *Wires) Groups() [][]fabric.WireID {
	byRoot := make(map[fabric.WireID][]fabric.WireID)
	var roots []fabric.WireID
	for _, wire := range w.order {
		root := w.Find(wire)
		if _, ok := byRoot[root]; !ok {
			roots = append(roots, root)
		}
		byRoot[root] = append(byRoot[root], wire)
	}

	groups := make([][]fabric.WireID, 0, len(roots))
	for _, root := range roots {
		g := byRoot[root]
		sort.Slice(g, func(i, j int) bool { return g[i] < g[j] })
		groups = append(groups, g)
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i][0] < groups[j][0] })
	return groups
}
