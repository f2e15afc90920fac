package synth

import (
	"fmt"

	"github.com/OpenTraceLab/OpenTraceShorts/pkg/design"
	"github.com/OpenTraceLab/OpenTraceShorts/pkg/fabric"
)

// DefaultConfigNet is the net gating every LUT of a shorted design.
const DefaultConfigNet = "lut_config"

// Config controls how the synthesizer builds shorts.
type Config struct {
	ShortsPerPair int             // shared wires routed per pair (default: 1)
	ConfigNet     string          // net used by ConnectConfig (default: lut_config)
	LUTLevel      design.Level    // level driven by the LUT; the register drives the opposite
	Slots         []fabric.SlotID // slots shorted per site (default: A..D)
}

// DefaultConfig returns the configuration the bulk tools run with.
func DefaultConfig() *Config {
	return &Config{
		ShortsPerPair: 1,
		ConfigNet:     DefaultConfigNet,
		LUTLevel:      design.Low,
		Slots:         append([]fabric.SlotID(nil), fabric.Slots...),
	}
}

// Validate fills in defaults and rejects unusable values.
func (c *Config) Validate() error {
	if c.ShortsPerPair < 1 {
		c.ShortsPerPair = 1
	}
	if c.ConfigNet == "" {
		c.ConfigNet = DefaultConfigNet
	}
	if len(c.Slots) == 0 {
		c.Slots = append([]fabric.SlotID(nil), fabric.Slots...)
	}
	seen := make(map[fabric.SlotID]bool)
	for _, s := range c.Slots {
		if s > fabric.SlotD {
			return fmt.Errorf("synth: invalid slot %s", s)
		}
		if seen[s] {
			return fmt.Errorf("synth: slot %s listed twice", s)
		}
		seen[s] = true
	}
	if c.LUTLevel != design.Low && c.LUTLevel != design.High {
		return fmt.Errorf("synth: invalid LUT level %d", c.LUTLevel)
	}
	return nil
}

// Bounds is an inclusive rectangle of site coordinates.
type Bounds struct {
	XMin, XMax int
	YMin, YMax int
}

// Validate checks that the rectangle is not empty.
func (b Bounds) Validate() error {
	if b.XMin > b.XMax || b.YMin > b.YMax {
		return fmt.Errorf("synth: empty region X%d..%d Y%d..%d", b.XMin, b.XMax, b.YMin, b.YMax)
	}
	return nil
}

func (b Bounds) String() string {
	return fmt.Sprintf("X%d..%d Y%d..%d", b.XMin, b.XMax, b.YMin, b.YMax)
}
