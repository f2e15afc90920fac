package shorts

import (
	"fmt"

	"github.com/OpenTraceLab/OpenTraceShorts/pkg/fabric"
)

// Mode selects how Search picks among candidate shared wires.
type Mode uint8

const (
	// ModeEnumerate returns every candidate.
	ModeEnumerate Mode = iota
	// ModeTarget returns the first candidate with a given name.
	ModeTarget
	// ModeAvoid returns up to Count candidates the ledger has not consumed.
	ModeAvoid
)

func (m Mode) String() string {
	switch m {
	case ModeEnumerate:
		return "enumerate"
	case ModeTarget:
		return "target"
	case ModeAvoid:
		return "avoid"
	default:
		return fmt.Sprintf("Mode(%d)", uint8(m))
	}
}

// Query parameterizes Search.
type Query struct {
	Mode   Mode
	Target string // full wire id or bare wire name, ModeTarget only
	Count  int    // ModeAvoid only
}

// Enumerate returns a query selecting every candidate.
func Enumerate() Query { return Query{Mode: ModeEnumerate} }

// Target returns a query selecting the candidate named id.
func Target(id string) Query { return Query{Mode: ModeTarget, Target: id} }

// Avoiding returns a query selecting up to n unconsumed candidates.
func Avoiding(n int) Query { return Query{Mode: ModeAvoid, Count: n} }

func (q Query) validate() error {
	switch q.Mode {
	case ModeEnumerate:
	case ModeTarget:
		if q.Target == "" {
			return fmt.Errorf("shorts: target query without target")
		}
	case ModeAvoid:
		if q.Count < 1 {
			return fmt.Errorf("shorts: avoid query needs a positive count, got %d", q.Count)
		}
	default:
		return fmt.Errorf("shorts: unknown query mode %s", q.Mode)
	}
	return nil
}

// Ascent holds the two edges that lift the entry wires into the switchbox.
type Ascent struct {
	A fabric.Edge
	B fabric.Edge
}

// Candidate is a wire both switchbox nodes can drive, with the edge used
// from each side.
type Candidate struct {
	Wire  fabric.WireID
	Node  fabric.NodeID
	EdgeA fabric.Edge
	EdgeB fabric.Edge
}

func (c Candidate) String() string {
	return string(c.Wire)
}

// firstAscend returns the first ascend edge leaving w in provider order.
func firstAscend(p fabric.Provider, w fabric.WireID) (fabric.Edge, error) {
	for _, e := range p.OutgoingEdges(w) {
		if e.Kind == fabric.EdgeAscend {
			return e, nil
		}
	}
	return fabric.Edge{}, fmt.Errorf("%w: no switchbox edge leaves %s", ErrNoRouteFound, w)
}

// FindCandidates lists every shared wire reachable from both entry wires,
// ordered by the edges of w0's node first and w1's node second.
func FindCandidates(p fabric.Provider, w0, w1 fabric.WireID) (Ascent, []Candidate, error) {
	a, err := firstAscend(p, w0)
	if err != nil {
		return Ascent{}, nil, err
	}
	b, err := firstAscend(p, w1)
	if err != nil {
		return Ascent{}, nil, err
	}
	ascent := Ascent{A: a, B: b}

	setA := p.DownhillEdges(a.DestNode)
	setB := p.DownhillEdges(b.DestNode)
	var out []Candidate
	for _, ea := range setA {
		for _, eb := range setB {
			if ea.DestWire == eb.DestWire {
				out = append(out, Candidate{
					Wire:  ea.DestWire,
					Node:  ea.DestNode,
					EdgeA: ea,
					EdgeB: eb,
				})
			}
		}
	}
	return ascent, out, nil
}

// Search finds shared wires for two entry wires according to q. ledger may
// be nil, in which case nothing counts as consumed. ModeAvoid returning
// fewer than q.Count candidates, or none, is not an error here.
func Search(p fabric.Provider, ledger *Ledger, w0, w1 fabric.WireID, q Query) (Ascent, []Candidate, error) {
	if err := q.validate(); err != nil {
		return Ascent{}, nil, err
	}
	ascent, all, err := FindCandidates(p, w0, w1)
	if err != nil {
		return Ascent{}, nil, err
	}

	switch q.Mode {
	case ModeTarget:
		for _, c := range all {
			if c.Wire.Matches(q.Target) {
				return ascent, []Candidate{c}, nil
			}
		}
		return Ascent{}, nil, fmt.Errorf("%w: %s is not shared by %s and %s", ErrNoRouteFound, q.Target, w0, w1)
	case ModeAvoid:
		accepted := make(map[fabric.WireID]bool)
		var out []Candidate
		for _, c := range all {
			if len(out) == q.Count {
				break
			}
			if accepted[c.Wire] || (ledger != nil && ledger.Consumed(c.Wire)) {
				continue
			}
			accepted[c.Wire] = true
			out = append(out, c)
		}
		return ascent, out, nil
	default:
		return ascent, all, nil
	}
}
