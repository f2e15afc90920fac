// Package fabric models the routing fabric of a programmable device: sites,
// tiles, wires, nodes and the directed edges (programmable interconnect
// points) between wires.
//
// Everything that knows how fabric resources are named lives here. Callers
// address resources through structured lookups (Provider.EntryWire,
// Provider.SiteAt) and never assemble wire or pin names themselves.
package fabric

import (
	"fmt"
	"math"
	"strings"
)

// Unbounded is the capacity reported for devices without a known cell limit.
const Unbounded = math.MaxInt

// Coord is a site coordinate in the device's logic-site grid.
type Coord struct {
	X int
	Y int
}

func (c Coord) String() string {
	return fmt.Sprintf("X%dY%d", c.X, c.Y)
}

// SiteType identifies the primitive family a site hosts.
type SiteType string

const (
	SiteSliceL SiteType = "SLICEL"
	SiteSliceM SiteType = "SLICEM"
	SiteRAMB18 SiteType = "RAMB18"
	SiteDSP48  SiteType = "DSP48"
)

// IsLogic reports whether the site type is a logic slice.
func (t SiteType) IsLogic() bool {
	return t == SiteSliceL || t == SiteSliceM
}

// Site is a physical location hosting a fixed set of BELs.
type Site struct {
	Name  string
	Type  SiteType
	Coord Coord
	Tile  string
	Index int // position of the site within its tile
}

func (s *Site) String() string {
	if s == nil {
		return "<nil site>"
	}
	return s.Name
}

// SlotID is the letter position of a BEL inside a logic slice.
type SlotID uint8

const (
	SlotA SlotID = iota
	SlotB
	SlotC
	SlotD
)

// Slots lists every slot of a logic slice in canonical order.
var Slots = []SlotID{SlotA, SlotB, SlotC, SlotD}

func (s SlotID) String() string {
	if s > SlotD {
		return fmt.Sprintf("SlotID(%d)", uint8(s))
	}
	return string(rune('A' + s))
}

// ParseSlot converts "A".."D" (case-insensitive) into a SlotID.
func ParseSlot(s string) (SlotID, error) {
	if len(s) != 1 {
		return 0, fmt.Errorf("fabric: invalid slot %q", s)
	}
	c := strings.ToUpper(s)[0]
	if c < 'A' || c > 'D' {
		return 0, fmt.Errorf("fabric: invalid slot %q", s)
	}
	return SlotID(c - 'A'), nil
}

// BELKind distinguishes the two constant-driver BEL families.
type BELKind uint8

const (
	KindLUT BELKind = iota
	KindRegister
)

func (k BELKind) String() string {
	switch k {
	case KindLUT:
		return "LUT"
	case KindRegister:
		return "REG"
	default:
		return fmt.Sprintf("BELKind(%d)", uint8(k))
	}
}

// BEL identifies one basic element inside a logic slice.
type BEL struct {
	Slot SlotID
	Kind BELKind
}

// String returns the vendor BEL name, e.g. "A6LUT" or "AFF".
func (b BEL) String() string {
	switch b.Kind {
	case KindLUT:
		return b.Slot.String() + "6LUT"
	default:
		return b.Slot.String() + "FF"
	}
}

// ParseBEL parses a vendor BEL name such as "C6LUT" or "CFF".
func ParseBEL(name string) (BEL, error) {
	if len(name) < 2 {
		return BEL{}, fmt.Errorf("fabric: invalid BEL %q", name)
	}
	slot, err := ParseSlot(name[:1])
	if err != nil {
		return BEL{}, fmt.Errorf("fabric: invalid BEL %q", name)
	}
	switch strings.ToUpper(name[1:]) {
	case "6LUT":
		return BEL{Slot: slot, Kind: KindLUT}, nil
	case "FF":
		return BEL{Slot: slot, Kind: KindRegister}, nil
	default:
		return BEL{}, fmt.Errorf("fabric: invalid BEL %q", name)
	}
}

// Location is where a primitive is placed.
type Location struct {
	Site *Site
	BEL  BEL
}

func (l Location) String() string {
	return l.Site.String() + "/" + l.BEL.String()
}

// WireID identifies a wire as "TILE/WIRE".
type WireID string

// Tile returns the tile part of the id.
func (w WireID) Tile() string {
	if i := strings.IndexByte(string(w), '/'); i >= 0 {
		return string(w[:i])
	}
	return ""
}

// Name returns the wire name without its tile.
func (w WireID) Name() string {
	if i := strings.IndexByte(string(w), '/'); i >= 0 {
		return string(w[i+1:])
	}
	return string(w)
}

// Matches reports whether id is either the full wire id or its bare name.
func (w WireID) Matches(id string) bool {
	return string(w) == id || w.Name() == id
}

// NodeID identifies a node, the electrical aggregate of equivalent wires.
type NodeID string

// EdgeKind classifies a programmable edge.
type EdgeKind uint8

const (
	EdgeBuffered EdgeKind = iota
	EdgeBidirectional
	// EdgeAscend connects a site-local wire to the interconnect switchbox.
	EdgeAscend
)

func (k EdgeKind) String() string {
	switch k {
	case EdgeBuffered:
		return "buffered"
	case EdgeBidirectional:
		return "bidir"
	case EdgeAscend:
		return "ascend"
	default:
		return fmt.Sprintf("EdgeKind(%d)", uint8(k))
	}
}

// ParseEdgeKind is the inverse of EdgeKind.String.
func ParseEdgeKind(s string) (EdgeKind, error) {
	switch s {
	case "", "buffered":
		return EdgeBuffered, nil
	case "bidir":
		return EdgeBidirectional, nil
	case "ascend":
		return EdgeAscend, nil
	default:
		return 0, fmt.Errorf("fabric: unknown edge kind %q", s)
	}
}

// Edge is a directed, enableable connection between two wires.
type Edge struct {
	Kind     EdgeKind
	From     WireID
	DestWire WireID
	DestNode NodeID
}

func (e Edge) String() string {
	return fmt.Sprintf("%s->%s", e.From, e.DestWire)
}

// Provider is the read-only connectivity model the synthesis engine queries.
//
// Edge slices are returned in a stable, deterministic order; search
// tie-breaking depends on it.
type Provider interface {
	Device() string
	SiteAt(c Coord) (*Site, bool)
	SitesInTile(tile string) []*Site
	EntryWire(site *Site, bel BEL) (WireID, error)
	OutgoingEdges(w WireID) []Edge
	DownhillEdges(n NodeID) []Edge
	Capacity() int
}

// NodeResolver is implemented by providers that can map a wire back to its
// node. Connectivity checks use it to join wires of the same node.
type NodeResolver interface {
	NodeOf(w WireID) (NodeID, bool)
}
