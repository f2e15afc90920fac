// Package config loads the YAML run configuration of the shorty tool.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"github.com/OpenTraceLab/OpenTraceShorts/pkg/design"
	"github.com/OpenTraceLab/OpenTraceShorts/pkg/fabric"
	"github.com/OpenTraceLab/OpenTraceShorts/pkg/synth"
)

// Config is the complete run configuration.
type Config struct {
	Fabric  FabricConfig  `yaml:"fabric"`
	Region  RegionConfig  `yaml:"region"`
	Synth   SynthConfig   `yaml:"synth"`
	Output  OutputConfig  `yaml:"output"`
	Logging LoggingConfig `yaml:"logging"`
}

// FabricConfig selects the fabric: an fdl file when File is set, otherwise
// a generated grid.
type FabricConfig struct {
	File string     `yaml:"file"`
	Grid GridConfig `yaml:"grid"`
}

// GridConfig mirrors fabric.GridSpec.
type GridConfig struct {
	Device      string `yaml:"device"`
	Columns     int    `yaml:"columns"`
	Rows        int    `yaml:"rows"`
	Shared      int    `yaml:"shared"`
	Capacity    int    `yaml:"capacity"`
	HoleColumns []int  `yaml:"hole_columns"`
	BRAMColumns []int  `yaml:"bram_columns"`
}

// RegionConfig is the rectangle to short, inclusive.
type RegionConfig struct {
	XMin          int `yaml:"x_min"`
	XMax          int `yaml:"x_max"`
	YMin          int `yaml:"y_min"`
	YMax          int `yaml:"y_max"`
	ShortsPerPair int `yaml:"shorts_per_pair"`
}

// SynthConfig holds synthesizer settings.
type SynthConfig struct {
	Slots         []string `yaml:"slots"`     // "A".."D"
	LUTLevel      string   `yaml:"lut_level"` // low or high
	ConfigNet     string   `yaml:"config_net"`
	ConnectConfig bool     `yaml:"connect_config"`
}

// OutputConfig names the files a run writes.
type OutputConfig struct {
	Design   string `yaml:"design"`
	Manifest string `yaml:"manifest"`
}

// LoggingConfig sets the log level (debug, info, warn, error).
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() *Config {
	grid := fabric.DefaultGridSpec()
	return &Config{
		Fabric: FabricConfig{
			Grid: GridConfig{
				Device:  grid.Device,
				Columns: grid.Columns,
				Rows:    grid.Rows,
				Shared:  grid.Shared,
			},
		},
		Region: RegionConfig{
			XMin:          0,
			XMax:          1,
			YMin:          0,
			YMax:          1,
			ShortsPerPair: 1,
		},
		Synth: SynthConfig{
			Slots:     []string{"A", "B", "C", "D"},
			LUTLevel:  "low",
			ConfigNet: synth.DefaultConfigNet,
		},
		Output: OutputConfig{
			Design:   "design.json",
			Manifest: "shorts.json",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load reads a configuration file over the defaults. A missing file yields
// the defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.applyEnvOverrides()
			return cfg, nil
		}
		return nil, fmt.Errorf("config: failed to read %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: failed to parse %s: %w", path, err)
	}

	cfg.applyEnvOverrides()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the configuration as YAML.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("config: failed to create directory: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("config: failed to marshal: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("config: failed to write %s: %w", path, err)
	}
	return nil
}

// applyEnvOverrides lets SHORTY_FABRIC and SHORTY_LOG_LEVEL override the file.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("SHORTY_FABRIC"); v != "" {
		c.Fabric.File = v
	}
	if v := os.Getenv("SHORTY_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
}

// Validate checks every section.
func (c *Config) Validate() error {
	if c.Fabric.File == "" {
		if err := c.GridSpec().Validate(); err != nil {
			return fmt.Errorf("config: %w", err)
		}
	}
	if err := c.Bounds().Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if c.Region.ShortsPerPair < 1 {
		return fmt.Errorf("config: shorts_per_pair must be positive, got %d", c.Region.ShortsPerPair)
	}
	if _, err := c.SynthConfig(); err != nil {
		return err
	}
	if _, err := c.LogLevel(); err != nil {
		return err
	}
	return nil
}

// GridSpec converts the grid section.
func (c *Config) GridSpec() fabric.GridSpec {
	g := c.Fabric.Grid
	return fabric.GridSpec{
		Device:      g.Device,
		Columns:     g.Columns,
		Rows:        g.Rows,
		Shared:      g.Shared,
		Capacity:    g.Capacity,
		HoleColumns: g.HoleColumns,
		BRAMColumns: g.BRAMColumns,
	}
}

// Bounds converts the region section.
func (c *Config) Bounds() synth.Bounds {
	r := c.Region
	return synth.Bounds{XMin: r.XMin, XMax: r.XMax, YMin: r.YMin, YMax: r.YMax}
}

// SynthConfig converts the synth section into a validated synth.Config.
func (c *Config) SynthConfig() (*synth.Config, error) {
	out := synth.DefaultConfig()
	out.ShortsPerPair = c.Region.ShortsPerPair
	out.ConfigNet = c.Synth.ConfigNet

	switch strings.ToLower(c.Synth.LUTLevel) {
	case "", "low":
		out.LUTLevel = design.Low
	case "high":
		out.LUTLevel = design.High
	default:
		return nil, fmt.Errorf("config: lut_level must be low or high, got %q", c.Synth.LUTLevel)
	}

	if len(c.Synth.Slots) > 0 {
		out.Slots = out.Slots[:0]
		for _, name := range c.Synth.Slots {
			slot, err := fabric.ParseSlot(name)
			if err != nil {
				return nil, fmt.Errorf("config: %w", err)
			}
			out.Slots = append(out.Slots, slot)
		}
	}
	if err := out.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return out, nil
}

// LogLevel parses the logging level.
func (c *Config) LogLevel() (zapcore.Level, error) {
	if c.Logging.Level == "" {
		return zapcore.InfoLevel, nil
	}
	level, err := zapcore.ParseLevel(c.Logging.Level)
	if err != nil {
		return zapcore.InfoLevel, fmt.Errorf("config: %w", err)
	}
	return level, nil
}
