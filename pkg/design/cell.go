package design

import (
	"fmt"

	"github.com/OpenTraceLab/OpenTraceShorts/pkg/fabric"
)

// Primitive cell types.
const (
	TypeLUT6 = "LUT6"
	TypeFDSE = "FDSE"
)

// Cell is a placed constant-driver primitive.
type Cell struct {
	name   string
	typ    string
	level  Level
	site   *fabric.Site
	bel    fabric.BEL
	placed bool
	d      *Design
}

func newCell(d *Design, name string, loc fabric.Location, level Level) *Cell {
	typ := TypeFDSE
	if loc.BEL.Kind == fabric.KindLUT {
		typ = TypeLUT6
	}
	return &Cell{
		name:   name,
		typ:    typ,
		level:  level,
		site:   loc.Site,
		bel:    loc.BEL,
		placed: true,
		d:      d,
	}
}

func (c *Cell) Name() string { return c.name }

// Type returns TypeLUT6 or TypeFDSE.
func (c *Cell) Type() string { return c.typ }

func (c *Cell) Level() Level { return c.level }

// Location returns where the cell was placed.
func (c *Cell) Location() fabric.Location {
	return fabric.Location{Site: c.site, BEL: c.bel}
}

// Init returns the INIT property encoding the driven constant.
func (c *Cell) Init() string {
	return initValue(c.typ, c.level)
}

// OutputPin is the pin that carries the constant.
func (c *Cell) OutputPin() string {
	if c.typ == TypeLUT6 {
		return "O"
	}
	return "Q"
}

// FixedPins reports whether the cell's BEL and pin mapping may not be moved
// by a placer. LUTs are fixed so their inputs stay where they were wired.
func (c *Cell) FixedPins() bool {
	return c.typ == TypeLUT6
}

// Placed reports whether the cell still occupies its BEL.
func (c *Cell) Placed() bool {
	c.d.mu.RLock()
	defer c.d.mu.RUnlock()
	return c.placed
}

// Unplace releases the cell's BEL and removes it from the design together
// with its net connections.
func (c *Cell) Unplace() error {
	c.d.mu.Lock()
	defer c.d.mu.Unlock()
	if !c.placed {
		return fmt.Errorf("%w: %s", ErrNotPlaced, c.name)
	}
	c.placed = false
	c.d.unplaceLocked(c)
	return nil
}

func (c *Cell) String() string {
	return c.name
}

func initValue(typ string, level Level) string {
	switch {
	case typ == TypeLUT6 && level == High:
		return "64'hFFFFFFFFFFFFFFFF"
	case typ == TypeLUT6:
		return "64'h0"
	case level == High:
		return "1"
	default:
		return "0"
	}
}

func parseInit(typ, init string) (Level, error) {
	for _, level := range []Level{Low, High} {
		if initValue(typ, level) == init {
			return level, nil
		}
	}
	return Low, fmt.Errorf("design: %s INIT %q is not a constant", typ, init)
}
