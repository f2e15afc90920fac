package fabric

import "fmt"

// switchboxFamilies are the interconnect wire families every logic output
// node fans out to, in fan-out order.
var switchboxFamilies = []string{
	"NE2BEG", "NW2BEG", "SE2BEG", "SW2BEG",
	"NN2BEG", "SS2BEG", "EE2BEG", "WW2BEG",
}

// MaxShared is the largest GridSpec.Shared value.
var MaxShared = len(switchboxFamilies)

// GridSpec describes a regular synthetic fabric.
//
// Every CLB tile holds two slices: index 0 is a SLICEL at even X, index 1 a
// SLICEM at odd X. Both slices share one interconnect tile, so the two pairs
// in the same slot compete for the same switchbox wires.
type GridSpec struct {
	Device   string
	Columns  int // CLB tile columns; slice X spans 0..2*Columns-1
	Rows     int
	Shared   int // switchbox wires reachable from every logic output, 1..MaxShared
	Capacity int // 0 keeps the device default

	HoleColumns []int // tile columns without any site
	BRAMColumns []int // tile columns hosting a RAMB18 site instead of slices
}

// DefaultGridSpec returns a small fabric useful for experiments.
func DefaultGridSpec() GridSpec {
	return GridSpec{
		Device:  "xcsim-grid",
		Columns: 4,
		Rows:    4,
		Shared:  4,
	}
}

// Validate checks the grid dimensions.
func (g GridSpec) Validate() error {
	if g.Columns < 1 || g.Rows < 1 {
		return fmt.Errorf("fabric: grid needs at least one column and row, got %dx%d", g.Columns, g.Rows)
	}
	if g.Shared < 1 || g.Shared > MaxShared {
		return fmt.Errorf("fabric: shared wires must be within 1..%d, got %d", MaxShared, g.Shared)
	}
	if g.Capacity < 0 {
		return fmt.Errorf("fabric: negative capacity %d", g.Capacity)
	}
	return nil
}

// Grid builds an in-memory fabric from spec.
func Grid(spec GridSpec) (*Memory, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	device := spec.Device
	if device == "" {
		device = DefaultGridSpec().Device
	}
	m := NewMemory(device)
	if spec.Capacity > 0 {
		m.SetCapacity(spec.Capacity)
	}

	holes := columnSet(spec.HoleColumns)
	brams := columnSet(spec.BRAMColumns)

	for y := 0; y < spec.Rows; y++ {
		for tx := 0; tx < spec.Columns; tx++ {
			switch {
			case holes[tx]:
				continue
			case brams[tx]:
				if _, err := m.AddSite(Site{
					Name:  fmt.Sprintf("RAMB18_X%dY%d", tx, y),
					Type:  SiteRAMB18,
					Coord: Coord{X: 2 * tx, Y: y},
					Tile:  fmt.Sprintf("BRAM_X%dY%d", tx, y),
				}); err != nil {
					return nil, err
				}
			default:
				if err := addCLBTile(m, tx, y, spec.Shared); err != nil {
					return nil, err
				}
			}
		}
	}
	return m, nil
}

func addCLBTile(m *Memory, tx, y, shared int) error {
	clb := fmt.Sprintf("CLB_X%dY%d", tx, y)
	sw := fmt.Sprintf("INT_X%dY%d", tx, y)

	for index, typ := range []SiteType{SiteSliceL, SiteSliceM} {
		x := 2*tx + index
		site, err := m.AddSite(Site{
			Name:  fmt.Sprintf("SLICE_X%dY%d", x, y),
			Type:  typ,
			Coord: Coord{X: x, Y: y},
			Tile:  clb,
			Index: index,
		})
		if err != nil {
			return err
		}
		side := "L"
		if index == 1 {
			side = "M"
		}

		for _, slot := range Slots {
			for _, kind := range []BELKind{KindLUT, KindRegister} {
				bel := BEL{Slot: slot, Kind: kind}
				entry := WireID(fmt.Sprintf("%s/CLB_%s_%s", clb, side, sitePinName(bel)))
				if err := m.SetEntry(site.Name, bel, entry); err != nil {
					return err
				}

				out := index*8 + int(kind)*4 + int(slot)
				logicOut := WireID(fmt.Sprintf("%s/LOGIC_OUTS_%s%d", sw, side, out))
				if err := m.AddWire(logicOut, NodeID(logicOut)); err != nil {
					return err
				}

				// LUT outputs also feed the slice output mux before the
				// switchbox, so the ascend edge is not always first.
				if kind == KindLUT {
					mux := WireID(fmt.Sprintf("%s/CLB_%s_%sMUX", clb, side, slot))
					if err := m.AddEdge(entry, mux, EdgeBuffered); err != nil {
						return err
					}
				}
				if err := m.AddEdge(entry, logicOut, EdgeAscend); err != nil {
					return err
				}

				private := WireID(fmt.Sprintf("%s/BYP_ALT%d", sw, out))
				if err := m.AddEdge(logicOut, private, EdgeBuffered); err != nil {
					return err
				}
				for _, fam := range switchboxFamilies[:shared] {
					dest := WireID(fmt.Sprintf("%s/%s%d", sw, fam, int(slot)))
					if err := m.AddEdge(logicOut, dest, EdgeBuffered); err != nil {
						return err
					}
				}
			}
		}
	}
	return nil
}

// sitePinName is the site pin a BEL output drives: the slot letter for LUTs
// and the letter plus "Q" for registers.
func sitePinName(bel BEL) string {
	if bel.Kind == KindLUT {
		return bel.Slot.String()
	}
	return bel.Slot.String() + "Q"
}

func columnSet(cols []int) map[int]bool {
	set := make(map[int]bool, len(cols))
	for _, c := range cols {
		set[c] = true
	}
	return set
}
