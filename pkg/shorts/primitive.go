package shorts

import (
	"errors"
	"fmt"

	"github.com/OpenTraceLab/OpenTraceShorts/pkg/design"
	"github.com/OpenTraceLab/OpenTraceShorts/pkg/fabric"
)

// Level is the constant a primitive drives.
type Level = design.Level

const (
	Low  = design.Low
	High = design.High
)

// Env bundles the collaborators primitives and shorts operate on.
type Env struct {
	Fabric fabric.Provider
	Design *design.Design
	Ledger *Ledger
}

// Primitive is a placed constant driver: a LUT or a register.
type Primitive struct {
	loc      fabric.Location
	level    Level
	entry    fabric.WireID
	cell     *design.Cell
	ledger   *Ledger
	released bool
}

// Place creates a constant driver at loc. The site must be a logic slice
// and the ledger must have room for one more cell. Unplacing the primitive
// returns the cell to the same ledger.
func Place(env Env, loc fabric.Location, level Level) (*Primitive, error) {
	if loc.Site == nil {
		return nil, fmt.Errorf("shorts: place without site")
	}
	if !loc.Site.Type.IsLogic() {
		return nil, fmt.Errorf("%w: %s is %s", ErrInvalidSiteKind, loc.Site.Name, loc.Site.Type)
	}
	if env.Ledger != nil && !env.Ledger.MayPlace(1) {
		return nil, fmt.Errorf("shorts: place %s: %w", loc, ErrCapacityExceeded)
	}
	entry, err := env.Fabric.EntryWire(loc.Site, loc.BEL)
	if err != nil {
		return nil, fmt.Errorf("shorts: place %s: %w", loc, err)
	}
	cell, err := env.Design.CreatePrimitiveAt(loc, level)
	if err != nil {
		return nil, fmt.Errorf("shorts: place %s: %w", loc, err)
	}
	if env.Ledger != nil {
		if err := env.Ledger.Charge(1); err != nil {
			return nil, errors.Join(err, cell.Unplace())
		}
	}
	return &Primitive{loc: loc, level: level, entry: entry, cell: cell, ledger: env.Ledger}, nil
}

// adopt wraps a cell that already exists in the design, resolving its site
// against the live fabric. The cell is expected to be counted in ledger
// already, e.g. by SeedFromDesign.
func adopt(p fabric.Provider, ledger *Ledger, cell *design.Cell) (*Primitive, error) {
	stored := cell.Location()
	site, ok := p.SiteAt(stored.Site.Coord)
	if !ok || site.Name != stored.Site.Name {
		return nil, fmt.Errorf("%w: cell %s: site %s not in fabric", ErrBrokenReference, cell.Name(), stored.Site.Name)
	}
	loc := fabric.Location{Site: site, BEL: stored.BEL}
	entry, err := p.EntryWire(site, stored.BEL)
	if err != nil {
		return nil, fmt.Errorf("%w: cell %s: %v", ErrBrokenReference, cell.Name(), err)
	}
	return &Primitive{loc: loc, level: cell.Level(), entry: entry, cell: cell, ledger: ledger}, nil
}

func (p *Primitive) Location() fabric.Location { return p.loc }
func (p *Primitive) Kind() fabric.BELKind      { return p.loc.BEL.Kind }
func (p *Primitive) Level() Level              { return p.level }
func (p *Primitive) Cell() *design.Cell        { return p.cell }

// EntryWire is the fabric wire the primitive's output drives.
func (p *Primitive) EntryWire() fabric.WireID { return p.entry }

// Released reports whether Unplace has been called.
func (p *Primitive) Released() bool { return p.released }

// Unplace releases the primitive's BEL and refunds its cell to the ledger.
// It fails when called twice.
func (p *Primitive) Unplace() error {
	if p.released {
		return fmt.Errorf("%w: %s", ErrAlreadyReleased, p.cell.Name())
	}
	if err := p.cell.Unplace(); err != nil {
		return fmt.Errorf("shorts: unplace %s: %w", p.cell.Name(), err)
	}
	p.released = true
	if p.ledger != nil {
		p.ledger.Release(1)
	}
	return nil
}

func (p *Primitive) String() string {
	return fmt.Sprintf("%s(%s)", p.loc, p.level)
}
