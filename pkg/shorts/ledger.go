package shorts

import (
	"fmt"

	"github.com/OpenTraceLab/OpenTraceShorts/pkg/design"
	"github.com/OpenTraceLab/OpenTraceShorts/pkg/fabric"
)

// Ledger tracks consumed routing wires and the placement budget of a batch.
// It has a single owner and is not safe for concurrent use.
type Ledger struct {
	consumed map[fabric.WireID]struct{}
	order    []fabric.WireID
	used     int
	capacity int
}

// NewLedger creates a ledger allowing capacity cells. Pass fabric.Unbounded
// for devices without a limit.
func NewLedger(capacity int) *Ledger {
	return &Ledger{
		consumed: make(map[fabric.WireID]struct{}),
		capacity: capacity,
	}
}

// Reserve marks wires as consumed and returns how many were new.
func (l *Ledger) Reserve(ids ...fabric.WireID) int {
	added := 0
	for _, id := range ids {
		if _, ok := l.consumed[id]; ok {
			continue
		}
		l.consumed[id] = struct{}{}
		l.order = append(l.order, id)
		added++
	}
	return added
}

// Consumed reports whether id was reserved.
func (l *Ledger) Consumed(id fabric.WireID) bool {
	_, ok := l.consumed[id]
	return ok
}

// ConsumedWires returns the reserved wires in reservation order.
func (l *Ledger) ConsumedWires() []fabric.WireID {
	out := make([]fabric.WireID, len(l.order))
	copy(out, l.order)
	return out
}

// ResetWires forgets every reserved wire. The cell count is kept.
func (l *Ledger) ResetWires() {
	l.consumed = make(map[fabric.WireID]struct{})
	l.order = nil
}

func (l *Ledger) Used() int     { return l.used }
func (l *Ledger) Capacity() int { return l.capacity }

// CapacityRemaining is capacity minus used cells, never negative.
func (l *Ledger) CapacityRemaining() int {
	if l.capacity == fabric.Unbounded {
		return fabric.Unbounded
	}
	if l.used >= l.capacity {
		return 0
	}
	return l.capacity - l.used
}

// MayPlace reports whether n more cells fit.
func (l *Ledger) MayPlace(n int) bool {
	return n <= l.CapacityRemaining()
}

// Charge counts n placed cells.
func (l *Ledger) Charge(n int) error {
	if !l.MayPlace(n) {
		return fmt.Errorf("%w: %d used, %d requested, capacity %d", ErrCapacityExceeded, l.used, n, l.capacity)
	}
	l.used += n
	return nil
}

// Release returns n cells to the budget when primitives are unplaced.
func (l *Ledger) Release(n int) {
	l.used -= n
	if l.used < 0 {
		l.used = 0
	}
}

// SeedFromDesign accounts for resources an existing design already holds:
// every routed destination wire is reserved and every placed cell counted.
func (l *Ledger) SeedFromDesign(d *design.Design) {
	l.Reserve(d.UsedWires()...)
	l.used += d.PlacedCells()
}
