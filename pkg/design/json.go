package design

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/OpenTraceLab/OpenTraceShorts/pkg/fabric"
)

const formatVersion = "1.0"

type jsonDesign struct {
	Version string     `json:"version"`
	Name    string     `json:"name"`
	Device  string     `json:"device"`
	Cells   []jsonCell `json:"cells"`
	Nets    []jsonNet  `json:"nets"`
}

type jsonCell struct {
	Name     string          `json:"name"`
	Type     string          `json:"type"`
	Init     string          `json:"init"`
	Site     string          `json:"site"`
	SiteType fabric.SiteType `json:"site_type"`
	Tile     string          `json:"tile"`
	X        int             `json:"x"`
	Y        int             `json:"y"`
	Index    int             `json:"index"`
	BEL      string          `json:"bel"`
}

type jsonNet struct {
	Name   string     `json:"name"`
	Locked bool       `json:"locked,omitempty"`
	Pins   []PinRef   `json:"pins"`
	Edges  []jsonEdge `json:"edges,omitempty"`
}

type jsonEdge struct {
	From string `json:"from"`
	To   string `json:"to"`
	Node string `json:"node,omitempty"`
	Kind string `json:"kind"`
}

// WriteJSON writes the design as indented JSON.
func (d *Design) WriteJSON(w io.Writer) error {
	d.mu.RLock()
	out := jsonDesign{
		Version: formatVersion,
		Name:    d.name,
		Device:  d.device,
		Cells:   make([]jsonCell, 0, len(d.cellOrder)),
		Nets:    make([]jsonNet, 0, len(d.netOrder)),
	}
	for _, name := range d.cellOrder {
		c := d.cells[name]
		out.Cells = append(out.Cells, jsonCell{
			Name:     c.name,
			Type:     c.typ,
			Init:     initValue(c.typ, c.level),
			Site:     c.site.Name,
			SiteType: c.site.Type,
			Tile:     c.site.Tile,
			X:        c.site.Coord.X,
			Y:        c.site.Coord.Y,
			Index:    c.site.Index,
			BEL:      c.bel.String(),
		})
	}
	for _, name := range d.netOrder {
		n := d.nets[name]
		jn := jsonNet{Name: n.name, Locked: n.locked, Pins: append([]PinRef{}, n.pins...)}
		for _, e := range n.edges {
			jn.Edges = append(jn.Edges, jsonEdge{
				From: string(e.From),
				To:   string(e.DestWire),
				Node: string(e.DestNode),
				Kind: e.Kind.String(),
			})
		}
		out.Nets = append(out.Nets, jn)
	}
	d.mu.RUnlock()

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("design: encode: %w", err)
	}
	if _, err := w.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("design: write: %w", err)
	}
	return nil
}

// ReadJSON loads a design written by WriteJSON. Cells keep the site
// coordinates they were placed at so callers can resolve them against a
// live fabric.
func ReadJSON(r io.Reader) (*Design, error) {
	var in jsonDesign
	if err := json.NewDecoder(r).Decode(&in); err != nil {
		return nil, fmt.Errorf("design: decode: %w", err)
	}
	if in.Version != formatVersion {
		return nil, fmt.Errorf("design: unsupported format version %q", in.Version)
	}

	d := New(in.Name, in.Device)
	for _, jc := range in.Cells {
		bel, err := fabric.ParseBEL(jc.BEL)
		if err != nil {
			return nil, fmt.Errorf("design: cell %s: %w", jc.Name, err)
		}
		level, err := parseInit(jc.Type, jc.Init)
		if err != nil {
			return nil, fmt.Errorf("design: cell %s: %w", jc.Name, err)
		}
		site := &fabric.Site{
			Name:  jc.Site,
			Type:  jc.SiteType,
			Coord: fabric.Coord{X: jc.X, Y: jc.Y},
			Tile:  jc.Tile,
			Index: jc.Index,
		}
		cell := newCell(d, jc.Name, fabric.Location{Site: site, BEL: bel}, level)
		if cell.typ != jc.Type {
			return nil, fmt.Errorf("design: cell %s: type %s does not fit BEL %s", jc.Name, jc.Type, bel)
		}
		if err := d.addCellLocked(cell); err != nil {
			return nil, err
		}
	}

	for _, jn := range in.Nets {
		n, err := d.CreateNet(jn.Name)
		if err != nil {
			return nil, err
		}
		for _, p := range jn.Pins {
			cell, ok := d.cells[p.Cell]
			if !ok {
				return nil, fmt.Errorf("%w: net %s references %s", ErrUnknownCell, jn.Name, p.Cell)
			}
			if err := n.Connect(cell, p.Pin); err != nil {
				return nil, err
			}
		}
		for _, je := range jn.Edges {
			kind, err := fabric.ParseEdgeKind(je.Kind)
			if err != nil {
				return nil, fmt.Errorf("design: net %s: %w", jn.Name, err)
			}
			n.edges = append(n.edges, fabric.Edge{
				Kind:     kind,
				From:     fabric.WireID(je.From),
				DestWire: fabric.WireID(je.To),
				DestNode: fabric.NodeID(je.Node),
			})
		}
		n.locked = jn.Locked
	}
	return d, nil
}
