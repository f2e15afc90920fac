package shorts

import (
	"errors"
	"fmt"

	"github.com/OpenTraceLab/OpenTraceShorts/pkg/design"
	"github.com/OpenTraceLab/OpenTraceShorts/pkg/fabric"
)

// State is the lifecycle state of a Short.
type State uint8

const (
	Unrouted State = iota
	Routed
	Deleted
)

func (s State) String() string {
	switch s {
	case Unrouted:
		return "unrouted"
	case Routed:
		return "routed"
	case Deleted:
		return "deleted"
	default:
		return fmt.Sprintf("State(%d)", uint8(s))
	}
}

// Ref is the persisted form of a short: the names of both cells and the net.
type Ref struct {
	CellA string `json:"cell_a"`
	CellB string `json:"cell_b"`
	Net   string `json:"net"`
}

// Short pairs two opposite constant drivers of one tile with the net that
// joins them.
type Short struct {
	fabric fabric.Provider
	design *design.Design
	a, b   *Primitive
	net    *design.Net
	state  State
}

func checkPair(a, b *Primitive) error {
	if a == nil || b == nil {
		return fmt.Errorf("shorts: pair needs two primitives")
	}
	if a.loc.Site.Tile != b.loc.Site.Tile {
		return fmt.Errorf("%w: %s in %s, %s in %s", ErrTileMismatch, a.loc, a.loc.Site.Tile, b.loc, b.loc.Site.Tile)
	}
	if a.level == b.level {
		return fmt.Errorf("%w: %s and %s both drive %s", ErrConflictingLogicLevel, a.loc, b.loc, a.level)
	}
	return nil
}

// NewShort pairs a and b and connects both outputs to a new net. The
// primitives must share a tile and drive opposite levels.
func NewShort(env Env, a, b *Primitive) (*Short, error) {
	if err := checkPair(a, b); err != nil {
		return nil, err
	}
	net, err := env.Design.CreateNet(design.ShortNetName(a.cell, b.cell))
	if err != nil {
		return nil, fmt.Errorf("shorts: create net: %w", err)
	}
	for _, p := range []*Primitive{a, b} {
		if err := net.Connect(p.cell, p.cell.OutputPin()); err != nil {
			env.Design.RemoveNet(net.Name())
			return nil, fmt.Errorf("shorts: connect %s: %w", p.cell.Name(), err)
		}
	}
	return &Short{fabric: env.Fabric, design: env.Design, a: a, b: b, net: net}, nil
}

// Rehydrate rebuilds a short from its persisted names. A net that is locked
// and carries edges is treated as routed.
func Rehydrate(env Env, ref Ref) (*Short, error) {
	cellA, ok := env.Design.Cell(ref.CellA)
	if !ok {
		return nil, fmt.Errorf("%w: cell %s", ErrBrokenReference, ref.CellA)
	}
	cellB, ok := env.Design.Cell(ref.CellB)
	if !ok {
		return nil, fmt.Errorf("%w: cell %s", ErrBrokenReference, ref.CellB)
	}
	net, ok := env.Design.Net(ref.Net)
	if !ok {
		return nil, fmt.Errorf("%w: net %s", ErrBrokenReference, ref.Net)
	}
	for _, c := range []*design.Cell{cellA, cellB} {
		if !connected(net, c) {
			return nil, fmt.Errorf("%w: %s does not drive %s", ErrBrokenReference, c.Name(), ref.Net)
		}
	}

	a, err := adopt(env.Fabric, env.Ledger, cellA)
	if err != nil {
		return nil, err
	}
	b, err := adopt(env.Fabric, env.Ledger, cellB)
	if err != nil {
		return nil, err
	}
	if err := checkPair(a, b); err != nil {
		return nil, err
	}

	s := &Short{fabric: env.Fabric, design: env.Design, a: a, b: b, net: net}
	if net.Locked() && len(net.Edges()) > 0 {
		s.state = Routed
	}
	return s, nil
}

func connected(net *design.Net, c *design.Cell) bool {
	want := design.PinRef{Cell: c.Name(), Pin: c.OutputPin()}
	for _, p := range net.Pins() {
		if p == want {
			return true
		}
	}
	return false
}

func (s *Short) State() State                   { return s.state }
func (s *Short) Net() *design.Net               { return s.net }
func (s *Short) Primitives() (a, b *Primitive) { return s.a, s.b }

// Ref returns the names needed to rehydrate the short.
func (s *Short) Ref() Ref {
	return Ref{CellA: s.a.cell.Name(), CellB: s.b.cell.Name(), Net: s.net.Name()}
}

// Candidates lists every shared wire for this pair without changing anything.
func (s *Short) Candidates() ([]Candidate, error) {
	if s.state == Deleted {
		return nil, ErrDeleted
	}
	_, out, err := FindCandidates(s.fabric, s.a.entry, s.b.entry)
	return out, err
}

// Route searches for shared wires, adds the edges to the net, locks it and
// reserves the chosen wires in ledger. On failure the short and its net are
// left as they were.
func (s *Short) Route(ledger *Ledger, q Query) ([]Candidate, error) {
	switch s.state {
	case Deleted:
		return nil, ErrDeleted
	case Routed:
		return nil, fmt.Errorf("%w: %s", ErrAlreadyRouted, s.net.Name())
	}

	ascent, chosen, err := Search(s.fabric, ledger, s.a.entry, s.b.entry, q)
	if err != nil {
		return nil, fmt.Errorf("shorts: route %s: %w", s.net.Name(), err)
	}
	if len(chosen) == 0 {
		return nil, fmt.Errorf("shorts: route %s: %w: every shared wire is consumed", s.net.Name(), ErrNoRouteFound)
	}

	edges := []fabric.Edge{ascent.A, ascent.B}
	for _, c := range chosen {
		edges = append(edges, c.EdgeA, c.EdgeB)
	}
	for _, e := range edges {
		if err := s.net.AddEdge(e); err != nil {
			s.net.Unroute()
			return nil, fmt.Errorf("shorts: route %s: %w", s.net.Name(), err)
		}
	}
	s.net.Lock()

	if ledger != nil {
		for _, c := range chosen {
			ledger.Reserve(c.Wire)
		}
	}
	s.state = Routed
	return chosen, nil
}

// SharedWires returns the wires joining the two drivers, in route order.
func (s *Short) SharedWires() []fabric.WireID {
	seen := make(map[fabric.WireID]bool)
	var out []fabric.WireID
	for _, e := range s.net.Edges() {
		if e.Kind == fabric.EdgeAscend || seen[e.DestWire] {
			continue
		}
		seen[e.DestWire] = true
		out = append(out, e.DestWire)
	}
	return out
}

// Delete unplaces both primitives, refunding their cells, unroutes the net
// and removes it from the design. Consumed wires stay reserved. Deleted is
// terminal.
func (s *Short) Delete() error {
	if s.state == Deleted {
		return fmt.Errorf("%w: %s", ErrDeleted, s.net.Name())
	}
	var errs []error
	for _, p := range []*Primitive{s.a, s.b} {
		if p.released {
			continue
		}
		if err := p.Unplace(); err != nil {
			errs = append(errs, err)
		}
	}
	s.net.Unroute()
	s.design.RemoveNet(s.net.Name())
	s.state = Deleted
	return errors.Join(errs...)
}

// ConnectConfig wires net into the inputs of the LUT primitive so the short
// can be gated from outside. With no pins given every LUT input is used.
func (s *Short) ConnectConfig(net *design.Net, pins ...string) error {
	if s.state == Deleted {
		return ErrDeleted
	}
	var lut *Primitive
	for _, p := range []*Primitive{s.a, s.b} {
		if p.Kind() == fabric.KindLUT {
			lut = p
			break
		}
	}
	if lut == nil {
		return fmt.Errorf("%w: %s", ErrNoLUT, s.net.Name())
	}
	if len(pins) == 0 {
		for i := 0; i < design.LUTInputs; i++ {
			pins = append(pins, design.LUTInputPin(i))
		}
	}
	for _, pin := range pins {
		if err := net.Connect(lut.cell, pin); err != nil {
			return fmt.Errorf("shorts: config %s.%s: %w", lut.cell.Name(), pin, err)
		}
	}
	return nil
}

// Verify checks that the routed net joins both entry wires.
func (s *Short) Verify() error {
	if s.state != Routed {
		return fmt.Errorf("shorts: verify %s: short is %s", s.net.Name(), s.state)
	}
	for _, p := range []*Primitive{s.a, s.b} {
		if !connected(s.net, p.cell) {
			return fmt.Errorf("shorts: verify %s: %s output not connected", s.net.Name(), p.cell.Name())
		}
	}
	nodes, _ := s.fabric.(fabric.NodeResolver)
	wires := design.Connectivity(s.net, nodes)
	if !wires.Joined(s.a.entry, s.b.entry) {
		return fmt.Errorf("shorts: verify %s: %s and %s are not joined", s.net.Name(), s.a.entry, s.b.entry)
	}
	return nil
}

func (s *Short) String() string {
	return fmt.Sprintf("%s [%s]", s.net.Name(), s.state)
}
