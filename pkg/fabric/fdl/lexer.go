package fdl

import (
	"github.com/alecthomas/participle/v2/lexer"
)

// FDLLexer defines the lexical structure of fabric description files.
var FDLLexer = lexer.MustSimple([]lexer.SimpleRule{
	// Comments run from '#' to end of line
	{Name: "Comment", Pattern: `#[^\n]*`},
	{Name: "Whitespace", Pattern: `[\s\t\n\r]+`},

	// Statement keywords
	{Name: "KwDevice", Pattern: `\bdevice\b`},
	{Name: "KwCapacity", Pattern: `\bcapacity\b`},
	{Name: "KwSite", Pattern: `\bsite\b`},
	{Name: "KwType", Pattern: `\btype\b`},
	{Name: "KwAt", Pattern: `\bat\b`},
	{Name: "KwTile", Pattern: `\btile\b`},
	{Name: "KwIndex", Pattern: `\bindex\b`},
	{Name: "KwEntry", Pattern: `\bentry\b`},
	{Name: "KwWire", Pattern: `\bwire\b`},
	{Name: "KwNode", Pattern: `\bnode\b`},
	{Name: "KwEdge", Pattern: `\bedge\b`},

	{Name: "Arrow", Pattern: `->`},
	{Name: "Semicolon", Pattern: `;`},

	{Name: "String", Pattern: `"(?:[^"\\]|\\.)*"`},
	{Name: "Integer", Pattern: `[-+]?[0-9]+`},
	{Name: "Ident", Pattern: `[a-zA-Z_][a-zA-Z0-9_]*`},
})
