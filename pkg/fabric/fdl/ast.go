package fdl

import "github.com/alecthomas/participle/v2/lexer"

// File is a complete fabric description.
type File struct {
	Statements []*Statement `parser:"@@*"`
}

// Statement is one declaration terminated by a semicolon.
type Statement struct {
	Pos lexer.Position

	Device *DeviceDecl `parser:"  @@"`
	Site   *SiteDecl   `parser:"| @@"`
	Entry  *EntryDecl  `parser:"| @@"`
	Wire   *WireDecl   `parser:"| @@"`
	Edge   *EdgeDecl   `parser:"| @@"`
}

// DeviceDecl names the device and optionally its cell budget.
// Example: device "xc7a35t" capacity 20800;
type DeviceDecl struct {
	Name     string `parser:"KwDevice @String"`
	Capacity *int   `parser:"( KwCapacity @Integer )? Semicolon"`
}

// SiteDecl declares a site.
// Example: site "SLICE_X0Y0" type SLICEL at 0 0 tile "CLB_X0Y0" index 0;
type SiteDecl struct {
	Name  string `parser:"KwSite @String"`
	Type  string `parser:"KwType @Ident"`
	X     int    `parser:"KwAt @Integer"`
	Y     int    `parser:"@Integer"`
	Tile  string `parser:"KwTile @String"`
	Index int    `parser:"( KwIndex @Integer )? Semicolon"`
}

// EntryDecl maps a BEL output onto its tile wire.
// Example: entry "SLICE_X0Y0" "A6LUT" "CLB_X0Y0/CLB_L_A";
type EntryDecl struct {
	Site string `parser:"KwEntry @String"`
	BEL  string `parser:"@String"`
	Wire string `parser:"@String Semicolon"`
}

// WireDecl places a wire in a node.
// Example: wire "INT_X0Y0/EE2BEG0" node "INT_X0Y0/EE2BEG0";
type WireDecl struct {
	Wire string `parser:"KwWire @String"`
	Node string `parser:"KwNode @String Semicolon"`
}

// EdgeDecl declares a directed edge, "buffered" when no kind is given.
// Example: edge "CLB_X0Y0/CLB_L_A" -> "INT_X0Y0/LOGIC_OUTS_L0" ascend;
type EdgeDecl struct {
	From string `parser:"KwEdge @String"`
	To   string `parser:"Arrow @String"`
	Kind string `parser:"@Ident? Semicolon"`
}
