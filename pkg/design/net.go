package design

import (
	"fmt"

	"github.com/OpenTraceLab/OpenTraceShorts/pkg/fabric"
)

// PinRef names one pin of one cell.
type PinRef struct {
	Cell string `json:"cell"`
	Pin  string `json:"pin"`
}

func (p PinRef) String() string {
	return p.Cell + "." + p.Pin
}

// Net is a named signal with connected pins and the routing edges that
// implement it.
type Net struct {
	name   string
	pins   []PinRef
	edges  []fabric.Edge
	locked bool
	d      *Design
}

func (n *Net) Name() string { return n.name }

// Connect attaches a pin of cell to the net. Connecting the same pin twice
// is a no-op.
func (n *Net) Connect(cell *Cell, pin string) error {
	if cell == nil {
		return fmt.Errorf("design: connect nil cell to %s", n.name)
	}
	n.d.mu.Lock()
	defer n.d.mu.Unlock()
	if existing, ok := n.d.cells[cell.name]; !ok || existing != cell {
		return fmt.Errorf("%w: %s", ErrUnknownCell, cell.name)
	}
	ref := PinRef{Cell: cell.name, Pin: pin}
	for _, p := range n.pins {
		if p == ref {
			return nil
		}
	}
	n.pins = append(n.pins, ref)
	return nil
}

// AddEdge appends a routing edge. Locked nets reject new edges.
func (n *Net) AddEdge(e fabric.Edge) error {
	n.d.mu.Lock()
	defer n.d.mu.Unlock()
	if n.locked {
		return fmt.Errorf("%w: %s", ErrNetLocked, n.name)
	}
	n.edges = append(n.edges, e)
	return nil
}

// Lock freezes the routing of the net.
func (n *Net) Lock() {
	n.d.mu.Lock()
	defer n.d.mu.Unlock()
	n.locked = true
}

func (n *Net) Locked() bool {
	n.d.mu.RLock()
	defer n.d.mu.RUnlock()
	return n.locked
}

// Unroute drops every routing edge and unlocks the net.
func (n *Net) Unroute() {
	n.d.mu.Lock()
	defer n.d.mu.Unlock()
	n.edges = nil
	n.locked = false
}

// Edges returns the routing edges in insertion order.
func (n *Net) Edges() []fabric.Edge {
	n.d.mu.RLock()
	defer n.d.mu.RUnlock()
	out := make([]fabric.Edge, len(n.edges))
	copy(out, n.edges)
	return out
}

// Pins returns the connected pins in connection order.
func (n *Net) Pins() []PinRef {
	n.d.mu.RLock()
	defer n.d.mu.RUnlock()
	out := make([]PinRef, len(n.pins))
	copy(out, n.pins)
	return out
}

func (n *Net) disconnectLocked(cell string) {
	kept := n.pins[:0]
	for _, p := range n.pins {
		if p.Cell != cell {
			kept = append(kept, p)
		}
	}
	n.pins = kept
}

func (n *Net) String() string {
	return n.name
}
