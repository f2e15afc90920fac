// Package design is the mutable netlist the synthesis engine writes into:
// placed primitive cells, named nets and the routing edges they own.
//
// Cell and net names are derived here and are stable enough to be persisted
// with WriteJSON and resolved again after ReadJSON.
package design

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/OpenTraceLab/OpenTraceShorts/pkg/fabric"
)

var (
	// ErrDuplicateName is returned when a cell or net name is already taken.
	ErrDuplicateName = errors.New("design: duplicate name")
	// ErrLocationOccupied is returned when a BEL already hosts a cell.
	ErrLocationOccupied = errors.New("design: location occupied")
	// ErrNotPlaced is returned when unplacing a cell that is no longer placed.
	ErrNotPlaced = errors.New("design: cell not placed")
	// ErrNetLocked is returned when editing the routing of a locked net.
	ErrNetLocked = errors.New("design: net locked")
	// ErrUnknownCell is returned when connecting a cell the design does not hold.
	ErrUnknownCell = errors.New("design: unknown cell")
)

// Level is the constant a primitive drives on its output.
type Level uint8

const (
	Low Level = iota
	High
)

func (l Level) String() string {
	if l == High {
		return "HIGH"
	}
	return "LOW"
}

// Opposite returns the other level.
func (l Level) Opposite() Level {
	if l == High {
		return Low
	}
	return High
}

// LUTInputs is the number of input pins of a LUT6 cell.
const LUTInputs = 6

// LUTInputPin returns the name of LUT input i.
func LUTInputPin(i int) string {
	return fmt.Sprintf("I%d", i)
}

type belKey struct {
	site string
	bel  fabric.BEL
}

// Design holds cells and nets for one device.
//
// The design is safe for concurrent reads; mutation is expected to come from
// a single owner.
type Design struct {
	mu sync.RWMutex

	name   string
	device string

	cells     map[string]*Cell
	cellOrder []string
	nets      map[string]*Net
	netOrder  []string
	occupied  map[belKey]*Cell
}

// New creates an empty design targeting device.
func New(name, device string) *Design {
	return &Design{
		name:     name,
		device:   device,
		cells:    make(map[string]*Cell),
		nets:     make(map[string]*Net),
		occupied: make(map[belKey]*Cell),
	}
}

// Name returns the design name.
func (d *Design) Name() string { return d.name }

// Device returns the target device name.
func (d *Design) Device() string { return d.device }

// CellName returns the name a primitive placed at loc receives.
func CellName(loc fabric.Location) string {
	return fmt.Sprintf("shortCell_%s_%s_inst", loc.Site.Name, loc.BEL)
}

// ShortNetName returns the name of the net joining two cells.
func ShortNetName(a, b *Cell) string {
	return fmt.Sprintf("%s_%s-%s_%s-shorted_net", a.site.Name, a.bel, b.site.Name, b.bel)
}

// CreatePrimitiveAt places a constant driver at loc. LUT BELs receive a
// LUT6 cell, register BELs an FDSE cell.
func (d *Design) CreatePrimitiveAt(loc fabric.Location, level Level) (*Cell, error) {
	if loc.Site == nil {
		return nil, fmt.Errorf("design: primitive without site")
	}
	cell := newCell(d, CellName(loc), loc, level)

	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.addCellLocked(cell); err != nil {
		return nil, err
	}
	return cell, nil
}

func (d *Design) addCellLocked(cell *Cell) error {
	if _, ok := d.cells[cell.name]; ok {
		return fmt.Errorf("%w: cell %s", ErrDuplicateName, cell.name)
	}
	key := belKey{site: cell.site.Name, bel: cell.bel}
	if cell.placed {
		if other, ok := d.occupied[key]; ok {
			return fmt.Errorf("%w: %s/%s holds %s", ErrLocationOccupied, key.site, key.bel, other.name)
		}
		d.occupied[key] = cell
	}
	d.cells[cell.name] = cell
	d.cellOrder = append(d.cellOrder, cell.name)
	return nil
}

// CreateNet adds an empty net.
func (d *Design) CreateNet(name string) (*Net, error) {
	if name == "" {
		return nil, fmt.Errorf("design: net without name")
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.nets[name]; ok {
		return nil, fmt.Errorf("%w: net %s", ErrDuplicateName, name)
	}
	n := &Net{name: name, d: d}
	d.nets[name] = n
	d.netOrder = append(d.netOrder, name)
	return n, nil
}

// GetOrCreateNet returns the named net, creating it if needed.
func (d *Design) GetOrCreateNet(name string) (*Net, error) {
	if n, ok := d.Net(name); ok {
		return n, nil
	}
	return d.CreateNet(name)
}

// RemoveNet drops a net and its routing. Removing an unknown net is a no-op.
func (d *Design) RemoveNet(name string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.nets[name]; !ok {
		return
	}
	delete(d.nets, name)
	d.netOrder = removeName(d.netOrder, name)
}

// Cell looks up a cell by name.
func (d *Design) Cell(name string) (*Cell, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	c, ok := d.cells[name]
	return c, ok
}

// Net looks up a net by name.
func (d *Design) Net(name string) (*Net, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	n, ok := d.nets[name]
	return n, ok
}

// Cells returns every cell in creation order.
func (d *Design) Cells() []*Cell {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]*Cell, 0, len(d.cellOrder))
	for _, name := range d.cellOrder {
		out = append(out, d.cells[name])
	}
	return out
}

// Nets returns every net in creation order.
func (d *Design) Nets() []*Net {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]*Net, 0, len(d.netOrder))
	for _, name := range d.netOrder {
		out = append(out, d.nets[name])
	}
	return out
}

// PlacedCells returns the number of cells occupying a BEL.
func (d *Design) PlacedCells() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.occupied)
}

// UsedWires returns the destination wire of every routing edge in the
// design, sorted.
func (d *Design) UsedWires() []fabric.WireID {
	d.mu.RLock()
	defer d.mu.RUnlock()
	seen := make(map[fabric.WireID]bool)
	var out []fabric.WireID
	for _, name := range d.netOrder {
		for _, e := range d.nets[name].edges {
			if !seen[e.DestWire] {
				seen[e.DestWire] = true
				out = append(out, e.DestWire)
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// unplaceLocked releases the BEL of cell and drops it with its pins.
func (d *Design) unplaceLocked(cell *Cell) {
	delete(d.occupied, belKey{site: cell.site.Name, bel: cell.bel})
	delete(d.cells, cell.name)
	d.cellOrder = removeName(d.cellOrder, cell.name)
	for _, n := range d.nets {
		n.disconnectLocked(cell.name)
	}
}

func removeName(names []string, name string) []string {
	for i, n := range names {
		if n == name {
			return append(names[:i], names[i+1:]...)
		}
	}
	return names
}
