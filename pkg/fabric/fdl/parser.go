// Package fdl reads and writes the fabric description language, a small
// declarative text format for routing fabrics consumed by fabric.Memory.
package fdl

import (
	"fmt"
	"io"
	"os"

	"github.com/alecthomas/participle/v2"

	"github.com/OpenTraceLab/OpenTraceShorts/pkg/fabric"
)

// Parser represents a fabric description parser.
type Parser struct {
	parser *participle.Parser[File]
}

// NewParser creates a new parser instance.
func NewParser() (*Parser, error) {
	parser, err := participle.Build[File](
		participle.Lexer(FDLLexer),
		participle.Elide("Comment", "Whitespace"),
		participle.Unquote("String"),
	)
	if err != nil {
		return nil, fmt.Errorf("fdl: failed to build parser: %w", err)
	}
	return &Parser{parser: parser}, nil
}

// Parse parses a description from a reader.
func (p *Parser) Parse(name string, r io.Reader) (*File, error) {
	file, err := p.parser.Parse(name, r)
	if err != nil {
		return nil, fmt.Errorf("fdl: parse error: %w", err)
	}
	return file, nil
}

// ParseString parses a description held in a string.
func (p *Parser) ParseString(input string) (*File, error) {
	file, err := p.parser.ParseString("", input)
	if err != nil {
		return nil, fmt.Errorf("fdl: parse error: %w", err)
	}
	return file, nil
}

// ParseFile parses a description from a file path.
func (p *Parser) ParseFile(filename string) (*File, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("fdl: failed to open file: %w", err)
	}
	defer f.Close()

	return p.Parse(filename, f)
}

// Load parses a description file and builds the fabric it describes.
func Load(filename string) (*fabric.Memory, error) {
	p, err := NewParser()
	if err != nil {
		return nil, err
	}
	file, err := p.ParseFile(filename)
	if err != nil {
		return nil, err
	}
	return Build(file)
}

// LoadString is Load for in-memory text.
func LoadString(input string) (*fabric.Memory, error) {
	p, err := NewParser()
	if err != nil {
		return nil, err
	}
	file, err := p.ParseString(input)
	if err != nil {
		return nil, err
	}
	return Build(file)
}

// Build turns a parsed description into a fabric. Statements apply in file
// order, so edge order in the fabric is edge order in the file.
func Build(file *File) (*fabric.Memory, error) {
	var device *DeviceDecl
	for _, st := range file.Statements {
		if st.Device == nil {
			continue
		}
		if device != nil {
			return nil, fmt.Errorf("fdl: %s: duplicate device declaration", st.Pos)
		}
		device = st.Device
	}
	if device == nil {
		return nil, fmt.Errorf("fdl: missing device declaration")
	}

	m := fabric.NewMemory(device.Name)
	if device.Capacity != nil {
		if *device.Capacity < 0 {
			return nil, fmt.Errorf("fdl: negative capacity %d", *device.Capacity)
		}
		m.SetCapacity(*device.Capacity)
	}

	for _, st := range file.Statements {
		if err := apply(m, st); err != nil {
			return nil, fmt.Errorf("fdl: %s: %w", st.Pos, err)
		}
	}
	return m, nil
}

func apply(m *fabric.Memory, st *Statement) error {
	switch {
	case st.Site != nil:
		_, err := m.AddSite(fabric.Site{
			Name:  st.Site.Name,
			Type:  fabric.SiteType(st.Site.Type),
			Coord: fabric.Coord{X: st.Site.X, Y: st.Site.Y},
			Tile:  st.Site.Tile,
			Index: st.Site.Index,
		})
		return err
	case st.Entry != nil:
		bel, err := fabric.ParseBEL(st.Entry.BEL)
		if err != nil {
			return err
		}
		return m.SetEntry(st.Entry.Site, bel, fabric.WireID(st.Entry.Wire))
	case st.Wire != nil:
		return m.AddWire(fabric.WireID(st.Wire.Wire), fabric.NodeID(st.Wire.Node))
	case st.Edge != nil:
		kind, err := fabric.ParseEdgeKind(st.Edge.Kind)
		if err != nil {
			return err
		}
		return m.AddEdge(fabric.WireID(st.Edge.From), fabric.WireID(st.Edge.To), kind)
	}
	return nil
}
