// Package synth places and routes shorts in bulk over rectangular regions
// of a device.
package synth

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/OpenTraceLab/OpenTraceShorts/pkg/design"
	"github.com/OpenTraceLab/OpenTraceShorts/pkg/fabric"
	"github.com/OpenTraceLab/OpenTraceShorts/pkg/shorts"
)

// cellsPerShort is the ledger cost of one LUT/register pair.
const cellsPerShort = 2

// Option configures a Synthesizer.
type Option func(*Synthesizer)

// WithLogger sets the logger. The default discards everything.
func WithLogger(log *zap.Logger) Option {
	return func(s *Synthesizer) {
		if log != nil {
			s.log = log
		}
	}
}

// WithConfig replaces the default configuration.
func WithConfig(cfg *Config) Option {
	return func(s *Synthesizer) {
		if cfg != nil {
			s.cfg = cfg
		}
	}
}

// WithLedger makes the synthesizer charge an existing ledger instead of a
// fresh one seeded from the design.
func WithLedger(l *shorts.Ledger) Option {
	return func(s *Synthesizer) {
		s.ledger = l
	}
}

// Result summarizes a region run.
type Result struct {
	Shorts  []*shorts.Short
	Sites   int  // logic sites visited
	Stopped bool // the ledger ran out of capacity before the region was done
}

// Synthesizer owns one batch of shorts over a design: the ledger that keeps
// them from colliding and the records themselves.
//
// A Synthesizer is not safe for concurrent use, and two synthesizers must not
// operate on the same design at the same time.
type Synthesizer struct {
	fabric fabric.Provider
	design *design.Design
	ledger *shorts.Ledger
	cfg    *Config
	log    *zap.Logger
	runID  uuid.UUID
	shorts []*shorts.Short
}

// New creates a synthesizer writing into d. Unless WithLedger is given, the
// ledger takes the fabric's capacity and accounts for everything d already
// holds.
func New(p fabric.Provider, d *design.Design, opts ...Option) (*Synthesizer, error) {
	if p == nil || d == nil {
		return nil, fmt.Errorf("synth: fabric and design are required")
	}
	s := &Synthesizer{
		fabric: p,
		design: d,
		cfg:    DefaultConfig(),
		log:    zap.NewNop(),
		runID:  uuid.New(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if err := s.cfg.Validate(); err != nil {
		return nil, err
	}
	if s.ledger == nil {
		s.ledger = shorts.NewLedger(p.Capacity())
		s.ledger.SeedFromDesign(d)
	}
	s.log = s.log.With(zap.String("run", s.runID.String()))
	s.log.Debug("synthesizer ready",
		zap.String("device", p.Device()),
		zap.Int("capacity", s.ledger.Capacity()),
		zap.Int("used", s.ledger.Used()),
		zap.Int("consumed_wires", len(s.ledger.ConsumedWires())))
	return s, nil
}

// checkCount rejects a shared-wire count before anything is placed.
func checkCount(shortsPerPair int) error {
	if shortsPerPair < 1 {
		return fmt.Errorf("synth: shorts per pair must be positive, got %d", shortsPerPair)
	}
	return nil
}

func (s *Synthesizer) env() shorts.Env {
	return shorts.Env{Fabric: s.fabric, Design: s.design, Ledger: s.ledger}
}

// Shorts returns every record of this batch in creation order.
func (s *Synthesizer) Shorts() []*shorts.Short {
	return append([]*shorts.Short(nil), s.shorts...)
}

func (s *Synthesizer) Ledger() *shorts.Ledger { return s.ledger }
func (s *Synthesizer) RunID() uuid.UUID       { return s.runID }
func (s *Synthesizer) Config() *Config        { return s.cfg }

// CreateShortedRegion walks the region rows ascending, columns ascending and
// shorts every slot of every logic site, routing shortsPerPair shared wires
// per pair. Running out of capacity stops the walk and is not an error; any
// other failure aborts and is returned with the records built so far.
func (s *Synthesizer) CreateShortedRegion(b Bounds, shortsPerPair int) (Result, error) {
	var res Result
	if err := b.Validate(); err != nil {
		return res, err
	}
	if err := checkCount(shortsPerPair); err != nil {
		return res, err
	}
	s.log.Info("shorting region",
		zap.Stringer("bounds", b),
		zap.Int("shorts_per_pair", shortsPerPair))

	for y := b.YMin; y <= b.YMax; y++ {
		for x := b.XMin; x <= b.XMax; x++ {
			site, ok := s.fabric.SiteAt(fabric.Coord{X: x, Y: y})
			if !ok || !site.Type.IsLogic() {
				continue
			}
			res.Sites++
			for _, slot := range s.cfg.Slots {
				if !s.ledger.MayPlace(cellsPerShort) {
					res.Stopped = true
					s.log.Info("capacity reached, stopping region",
						zap.Int("used", s.ledger.Used()),
						zap.Int("capacity", s.ledger.Capacity()),
						zap.Int("shorts", len(res.Shorts)))
					return res, nil
				}
				short, err := s.placePair(site, slot)
				if err != nil {
					return res, err
				}
				if _, err := s.RouteShort(short, shorts.Avoiding(shortsPerPair)); err != nil {
					return res, err
				}
				res.Shorts = append(res.Shorts, short)
			}
		}
	}
	s.log.Info("region done",
		zap.Int("sites", res.Sites),
		zap.Int("shorts", len(res.Shorts)))
	return res, nil
}

// placePair places the LUT and register of one slot and pairs them.
func (s *Synthesizer) placePair(site *fabric.Site, slot fabric.SlotID) (*shorts.Short, error) {
	if !s.ledger.MayPlace(cellsPerShort) {
		return nil, fmt.Errorf("synth: pair %s/%s: %w", site, slot, shorts.ErrCapacityExceeded)
	}
	env := s.env()
	lutLoc := fabric.Location{Site: site, BEL: fabric.BEL{Slot: slot, Kind: fabric.KindLUT}}
	regLoc := fabric.Location{Site: site, BEL: fabric.BEL{Slot: slot, Kind: fabric.KindRegister}}

	lut, err := shorts.Place(env, lutLoc, s.cfg.LUTLevel)
	if err != nil {
		return nil, err
	}
	reg, err := shorts.Place(env, regLoc, s.cfg.LUTLevel.Opposite())
	if err != nil {
		return nil, errors.Join(err, lut.Unplace())
	}
	short, err := shorts.NewShort(env, lut, reg)
	if err != nil {
		return nil, errors.Join(err, lut.Unplace(), reg.Unplace())
	}
	s.shorts = append(s.shorts, short)
	s.log.Debug("placed pair", zap.String("net", short.Net().Name()))
	return short, nil
}

// PlaceSite places one unrouted pair per configured slot of the site at c.
func (s *Synthesizer) PlaceSite(c fabric.Coord) ([]*shorts.Short, error) {
	site, ok := s.fabric.SiteAt(c)
	if !ok {
		return nil, fmt.Errorf("synth: no site at %s", c)
	}
	if !site.Type.IsLogic() {
		return nil, fmt.Errorf("%w: %s is %s", shorts.ErrInvalidSiteKind, site, site.Type)
	}
	var out []*shorts.Short
	for _, slot := range s.cfg.Slots {
		short, err := s.placePair(site, slot)
		if err != nil {
			return out, err
		}
		out = append(out, short)
	}
	return out, nil
}

// PlaceTile places pairs in every logic site of the tile holding c.
func (s *Synthesizer) PlaceTile(c fabric.Coord) ([]*shorts.Short, error) {
	site, ok := s.fabric.SiteAt(c)
	if !ok {
		return nil, fmt.Errorf("synth: no site at %s", c)
	}
	var out []*shorts.Short
	for _, member := range s.fabric.SitesInTile(site.Tile) {
		if !member.Type.IsLogic() {
			continue
		}
		placed, err := s.PlaceSite(member.Coord)
		out = append(out, placed...)
		if err != nil {
			return out, err
		}
	}
	return out, nil
}

// ShortSite places and routes the pairs of one site.
func (s *Synthesizer) ShortSite(c fabric.Coord, shortsPerPair int) ([]*shorts.Short, error) {
	if err := checkCount(shortsPerPair); err != nil {
		return nil, err
	}
	placed, err := s.PlaceSite(c)
	if err != nil {
		return placed, err
	}
	return placed, s.routeAll(placed, shortsPerPair)
}

// ShortTile places and routes the pairs of every logic site in a tile.
func (s *Synthesizer) ShortTile(c fabric.Coord, shortsPerPair int) ([]*shorts.Short, error) {
	if err := checkCount(shortsPerPair); err != nil {
		return nil, err
	}
	placed, err := s.PlaceTile(c)
	if err != nil {
		return placed, err
	}
	return placed, s.routeAll(placed, shortsPerPair)
}

func (s *Synthesizer) routeAll(list []*shorts.Short, shortsPerPair int) error {
	for _, short := range list {
		if short.State() != shorts.Unrouted {
			continue
		}
		if _, err := s.RouteShort(short, shorts.Avoiding(shortsPerPair)); err != nil {
			return err
		}
	}
	return nil
}

// RouteShorts routes every unrouted record and returns how many it routed.
func (s *Synthesizer) RouteShorts(shortsPerPair int) (int, error) {
	if err := checkCount(shortsPerPair); err != nil {
		return 0, err
	}
	routed := 0
	for _, short := range s.shorts {
		if short.State() != shorts.Unrouted {
			continue
		}
		if _, err := s.RouteShort(short, shorts.Avoiding(shortsPerPair)); err != nil {
			return routed, err
		}
		routed++
	}
	return routed, nil
}

// RouteShort routes one record against the synthesizer's ledger.
func (s *Synthesizer) RouteShort(short *shorts.Short, q shorts.Query) ([]shorts.Candidate, error) {
	chosen, err := short.Route(s.ledger, q)
	if err != nil {
		s.log.Warn("route failed",
			zap.String("net", short.Net().Name()),
			zap.Stringer("mode", q.Mode),
			zap.Error(err))
		return nil, err
	}
	s.log.Debug("routed",
		zap.String("net", short.Net().Name()),
		zap.Stringers("wires", chosen))
	return chosen, nil
}

// AddShorts rehydrates persisted records against the design and adds them
// to this batch. A net already held by a live record of the batch is a
// broken reference.
func (s *Synthesizer) AddShorts(refs []shorts.Ref) ([]*shorts.Short, error) {
	live := make(map[string]bool, len(s.shorts))
	for _, short := range s.shorts {
		if short.State() != shorts.Deleted {
			live[short.Net().Name()] = true
		}
	}
	out := make([]*shorts.Short, 0, len(refs))
	for _, ref := range refs {
		if live[ref.Net] {
			return out, fmt.Errorf("%w: net %s is already in this batch", shorts.ErrBrokenReference, ref.Net)
		}
		short, err := shorts.Rehydrate(s.env(), ref)
		if err != nil {
			return out, err
		}
		live[ref.Net] = true
		s.shorts = append(s.shorts, short)
		out = append(out, short)
	}
	s.log.Info("rehydrated shorts", zap.Int("count", len(out)))
	return out, nil
}

// ConnectConfig wires the LUT inputs of every live short to the named net,
// creating it if needed. An empty name uses the configured net.
func (s *Synthesizer) ConnectConfig(netName string) (*design.Net, error) {
	if netName == "" {
		netName = s.cfg.ConfigNet
	}
	net, err := s.design.GetOrCreateNet(netName)
	if err != nil {
		return nil, err
	}
	for _, short := range s.shorts {
		if short.State() == shorts.Deleted {
			continue
		}
		if err := short.ConnectConfig(net); err != nil {
			return net, err
		}
	}
	return net, nil
}

// Abandon deletes every record that is still live.
func (s *Synthesizer) Abandon() error {
	var errs []error
	deleted := 0
	for _, short := range s.shorts {
		if short.State() == shorts.Deleted {
			continue
		}
		if err := short.Delete(); err != nil {
			errs = append(errs, err)
		}
		deleted++
	}
	s.log.Info("abandoned batch", zap.Int("deleted", deleted))
	return errors.Join(errs...)
}
