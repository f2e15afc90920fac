package fabric

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// knownCapacities maps device name fragments to their logic cell budget.
var knownCapacities = []struct {
	fragment string
	cells    int
}{
	{fragment: "xc7a35t", cells: 20800},
}

// KnownCapacity returns the cell budget of a known device, matching by
// substring so full part names ("xc7a35ticsg324-1L") resolve too.
func KnownCapacity(device string) (int, bool) {
	lower := strings.ToLower(device)
	for _, kc := range knownCapacities {
		if strings.Contains(lower, kc.fragment) {
			return kc.cells, true
		}
	}
	return 0, false
}

// EntryDecl records which wire a BEL output lands on.
type EntryDecl struct {
	Site string
	BEL  BEL
	Wire WireID
}

// Memory is an in-memory Provider assembled with builder calls, by Grid, or
// by the fdl reader.
type Memory struct {
	mu sync.RWMutex

	device      string
	capacity    int
	hasCapacity bool

	sites       []*Site
	sitesByName map[string]*Site
	sitesAt     map[Coord]*Site
	tiles       map[string][]*Site

	entries     map[string]map[BEL]WireID
	entryOrder  []EntryDecl
	wireNode    map[WireID]NodeID
	nodeWires   map[NodeID][]WireID
	wireOrder   []WireID
	edgesByWire map[WireID][]Edge
	edgeOrder   []Edge
}

// NewMemory creates an empty fabric for the named device.
func NewMemory(device string) *Memory {
	return &Memory{
		device:      device,
		sitesByName: make(map[string]*Site),
		sitesAt:     make(map[Coord]*Site),
		tiles:       make(map[string][]*Site),
		entries:     make(map[string]map[BEL]WireID),
		wireNode:    make(map[WireID]NodeID),
		nodeWires:   make(map[NodeID][]WireID),
		edgesByWire: make(map[WireID][]Edge),
	}
}

// SetCapacity overrides the device cell budget.
func (m *Memory) SetCapacity(cells int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.capacity = cells
	m.hasCapacity = true
}

// ExplicitCapacity returns the capacity set with SetCapacity, if any.
func (m *Memory) ExplicitCapacity() (int, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.capacity, m.hasCapacity
}

// AddSite registers a site. Names and coordinates must be unique.
func (m *Memory) AddSite(s Site) (*Site, error) {
	if s.Name == "" {
		return nil, fmt.Errorf("fabric: site without name")
	}
	if s.Tile == "" {
		return nil, fmt.Errorf("fabric: site %s without tile", s.Name)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sitesByName[s.Name]; ok {
		return nil, fmt.Errorf("fabric: duplicate site %s", s.Name)
	}
	if other, ok := m.sitesAt[s.Coord]; ok {
		return nil, fmt.Errorf("fabric: site %s overlaps %s at %s", s.Name, other.Name, s.Coord)
	}
	site := s
	m.sites = append(m.sites, &site)
	m.sitesByName[site.Name] = &site
	m.sitesAt[site.Coord] = &site
	m.tiles[site.Tile] = append(m.tiles[site.Tile], &site)
	sort.SliceStable(m.tiles[site.Tile], func(i, j int) bool {
		return m.tiles[site.Tile][i].Index < m.tiles[site.Tile][j].Index
	})
	return &site, nil
}

// SetEntry records the tile wire a BEL output connects to.
func (m *Memory) SetEntry(siteName string, bel BEL, wire WireID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sitesByName[siteName]; !ok {
		return fmt.Errorf("fabric: entry for unknown site %s", siteName)
	}
	byBEL, ok := m.entries[siteName]
	if !ok {
		byBEL = make(map[BEL]WireID)
		m.entries[siteName] = byBEL
	}
	if _, dup := byBEL[bel]; dup {
		return fmt.Errorf("fabric: duplicate entry %s/%s", siteName, bel)
	}
	byBEL[bel] = wire
	m.entryOrder = append(m.entryOrder, EntryDecl{Site: siteName, BEL: bel, Wire: wire})
	m.addWireLocked(wire, NodeID(wire))
	return nil
}

// AddWire declares a wire as a member of node. Wires are implicitly their own
// node until declared otherwise; redeclaring with a different node fails.
func (m *Memory) AddWire(wire WireID, node NodeID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.wireNode[wire]; ok {
		if existing == node {
			return nil
		}
		if existing != NodeID(wire) {
			return fmt.Errorf("fabric: wire %s already belongs to node %s", wire, existing)
		}
		m.removeFromNodeLocked(wire, existing)
		delete(m.wireNode, wire)
	}
	m.addWireLocked(wire, node)
	return nil
}

// AddEdge appends an edge from one wire to another. Edge order per wire is
// the order of AddEdge calls.
func (m *Memory) AddEdge(from, to WireID, kind EdgeKind) error {
	if from == "" || to == "" {
		return fmt.Errorf("fabric: edge with empty endpoint")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.addWireLocked(from, NodeID(from))
	m.addWireLocked(to, NodeID(to))
	e := Edge{
		Kind:     kind,
		From:     from,
		DestWire: to,
	}
	m.edgesByWire[from] = append(m.edgesByWire[from], e)
	m.edgeOrder = append(m.edgeOrder, e)
	return nil
}

func (m *Memory) addWireLocked(wire WireID, node NodeID) {
	if _, ok := m.wireNode[wire]; ok {
		return
	}
	m.wireNode[wire] = node
	m.nodeWires[node] = append(m.nodeWires[node], wire)
	m.wireOrder = append(m.wireOrder, wire)
}

func (m *Memory) removeFromNodeLocked(wire WireID, node NodeID) {
	members := m.nodeWires[node]
	for i, w := range members {
		if w == wire {
			m.nodeWires[node] = append(members[:i], members[i+1:]...)
			break
		}
	}
	if len(m.nodeWires[node]) == 0 {
		delete(m.nodeWires, node)
	}
	for i, w := range m.wireOrder {
		if w == wire {
			m.wireOrder = append(m.wireOrder[:i], m.wireOrder[i+1:]...)
			break
		}
	}
}

// Device implements Provider.
func (m *Memory) Device() string {
	return m.device
}

// Capacity implements Provider.
func (m *Memory) Capacity() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.hasCapacity {
		return m.capacity
	}
	if cells, ok := KnownCapacity(m.device); ok {
		return cells
	}
	return Unbounded
}

// SiteAt implements Provider.
func (m *Memory) SiteAt(c Coord) (*Site, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sitesAt[c]
	return s, ok
}

// Site looks a site up by name.
func (m *Memory) Site(name string) (*Site, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sitesByName[name]
	return s, ok
}

// Sites returns every site in declaration order.
func (m *Memory) Sites() []*Site {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*Site, len(m.sites))
	copy(out, m.sites)
	return out
}

// SitesInTile implements Provider.
func (m *Memory) SitesInTile(tile string) []*Site {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*Site, len(m.tiles[tile]))
	copy(out, m.tiles[tile])
	return out
}

// EntryWire implements Provider.
func (m *Memory) EntryWire(site *Site, bel BEL) (WireID, error) {
	if site == nil {
		return "", fmt.Errorf("fabric: nil site")
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	w, ok := m.entries[site.Name][bel]
	if !ok {
		return "", fmt.Errorf("fabric: no entry wire for %s/%s", site.Name, bel)
	}
	return w, nil
}

// OutgoingEdges implements Provider.
func (m *Memory) OutgoingEdges(w WireID) []Edge {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.resolveLocked(nil, m.edgesByWire[w])
}

// DownhillEdges implements Provider. Edges are grouped by member wire in
// node declaration order.
func (m *Memory) DownhillEdges(n NodeID) []Edge {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []Edge
	for _, w := range m.nodeWires[n] {
		out = m.resolveLocked(out, m.edgesByWire[w])
	}
	return out
}

// resolveLocked appends edges to dst with DestNode filled in from the
// current node membership of each destination wire.
func (m *Memory) resolveLocked(dst, edges []Edge) []Edge {
	if dst == nil {
		dst = make([]Edge, 0, len(edges))
	}
	for _, e := range edges {
		e.DestNode = m.wireNode[e.DestWire]
		dst = append(dst, e)
	}
	return dst
}

// NodeOf returns the node a wire belongs to.
func (m *Memory) NodeOf(w WireID) (NodeID, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n, ok := m.wireNode[w]
	return n, ok
}

// NodeMembers returns the wires of a node in declaration order.
func (m *Memory) NodeMembers(n NodeID) []WireID {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]WireID, len(m.nodeWires[n]))
	copy(out, m.nodeWires[n])
	return out
}

// Entries returns entry declarations in declaration order.
func (m *Memory) Entries() []EntryDecl {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]EntryDecl, len(m.entryOrder))
	copy(out, m.entryOrder)
	return out
}

// Wires returns every known wire in declaration order.
func (m *Memory) Wires() []WireID {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]WireID, len(m.wireOrder))
	copy(out, m.wireOrder)
	return out
}

// Edges returns every edge in declaration order.
func (m *Memory) Edges() []Edge {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.resolveLocked(nil, m.edgeOrder)
}
