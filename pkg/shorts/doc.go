// Package shorts builds structural short circuits between two constant
// drivers placed in the same tile.
//
// A short is created in three steps:
//
//  1. Place a LUT driving one level and a register driving the other
//     (Place).
//  2. Pair them into a Short, which creates the net joining both outputs
//     (NewShort).
//  3. Route the short: starting from both entry wires, follow the first
//     ascend edge into the switchbox and look for a wire that both switchbox
//     nodes can drive (Search). The chosen edges are added to the net and the
//     wire is reserved in the Ledger so later shorts pick different wires.
//
// Search never optimizes path cost: the first candidate in fabric edge
// order wins, which keeps results deterministic for a given fabric.
//
// Example:
//
//	env := shorts.Env{Fabric: fab, Design: d, Ledger: shorts.NewLedger(fab.Capacity())}
//	lut, _ := shorts.Place(env, lutLoc, shorts.Low)
//	ff, _ := shorts.Place(env, ffLoc, shorts.High)
//	s, _ := shorts.NewShort(env, lut, ff)
//	chosen, err := s.Route(env.Ledger, shorts.Avoiding(1))
package shorts
