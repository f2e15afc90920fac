package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/OpenTraceLab/OpenTraceShorts/pkg/design"
	"github.com/OpenTraceLab/OpenTraceShorts/pkg/synth"
)

var (
	// Flags for region command
	regionXMin          int
	regionXMax          int
	regionYMin          int
	regionYMax          int
	regionShorts        int
	regionInput         string
	regionOutput        string
	regionManifest      string
	regionConnectConfig bool
)

var regionCmd = &cobra.Command{
	Use:   "region",
	Short: "Short every slot of every logic site in a region",
	Long: `Walk the sites of a rectangular region, rows ascending then columns
ascending, and short each slot A..D: place a LUT and a register with opposite
constants and route them onto shared switchbox wires no earlier short uses.

The run stops early, without error, when the device runs out of cells. Any
other failure aborts the run.

Examples:
  # 2x2 region on the default grid, one shared wire per pair
  shorty region --xmax 1 --ymax 1

  # Extend an existing design and gate every LUT with lut_config
  shorty region --fabric grid.fdl --in design.json --xmin 4 --xmax 7 \
    --connect-config --out design.json --manifest shorts.json`,
	RunE: runRegion,
}

func init() {
	rootCmd.AddCommand(regionCmd)

	regionCmd.Flags().IntVar(&regionXMin, "xmin", 0, "first site column")
	regionCmd.Flags().IntVar(&regionXMax, "xmax", 1, "last site column")
	regionCmd.Flags().IntVar(&regionYMin, "ymin", 0, "first site row")
	regionCmd.Flags().IntVar(&regionYMax, "ymax", 1, "last site row")
	regionCmd.Flags().IntVarP(&regionShorts, "shorts", "n", 1, "shared wires routed per pair")
	regionCmd.Flags().StringVarP(&regionInput, "in", "i", "", "existing design JSON to extend")
	regionCmd.Flags().StringVarP(&regionOutput, "out", "o", "", "output design JSON (default from config)")
	regionCmd.Flags().StringVarP(&regionManifest, "manifest", "m", "", "output shorts manifest (default from config)")
	regionCmd.Flags().BoolVar(&regionConnectConfig, "connect-config", false, "wire every LUT input to the config net")
}

func runRegion(cmd *cobra.Command, args []string) error {
	flags := cmd.Flags()
	if flags.Changed("xmin") {
		runCfg.Region.XMin = regionXMin
	}
	if flags.Changed("xmax") {
		runCfg.Region.XMax = regionXMax
	}
	if flags.Changed("ymin") {
		runCfg.Region.YMin = regionYMin
	}
	if flags.Changed("ymax") {
		runCfg.Region.YMax = regionYMax
	}
	if flags.Changed("shorts") {
		runCfg.Region.ShortsPerPair = regionShorts
	}
	if flags.Changed("out") {
		runCfg.Output.Design = regionOutput
	}
	if flags.Changed("manifest") {
		runCfg.Output.Manifest = regionManifest
	}
	if flags.Changed("connect-config") {
		runCfg.Synth.ConnectConfig = regionConnectConfig
	}
	if err := runCfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	sc, err := runCfg.SynthConfig()
	if err != nil {
		return err
	}

	fab, err := loadFabric()
	if err != nil {
		return err
	}

	d := design.New("shorted", fab.Device())
	if regionInput != "" {
		d, err = readDesign(regionInput)
		if err != nil {
			return err
		}
	}

	s, err := synth.New(fab, d, synth.WithLogger(logger), synth.WithConfig(sc))
	if err != nil {
		return err
	}

	bounds := runCfg.Bounds()
	fmt.Printf("Device: %s (capacity %s cells, %d already used)\n",
		fab.Device(), capacityString(s.Ledger().Capacity()), s.Ledger().Used())
	fmt.Printf("Region: %s, %d shared wire(s) per pair\n\n", bounds, sc.ShortsPerPair)

	res, err := s.CreateShortedRegion(bounds, sc.ShortsPerPair)
	if err != nil {
		logger.Error("region failed", zap.Error(err), zap.Int("shorts", len(res.Shorts)))
		if abandonErr := s.Abandon(); abandonErr != nil {
			logger.Warn("abandon failed", zap.Error(abandonErr))
		}
		return fmt.Errorf("region synthesis failed after %d short(s): %w", len(res.Shorts), err)
	}

	if runCfg.Synth.ConnectConfig {
		net, err := s.ConnectConfig("")
		if err != nil {
			return fmt.Errorf("failed to connect config net: %w", err)
		}
		fmt.Printf("Config net %s: %d pin(s)\n", net.Name(), len(net.Pins()))
	}

	fmt.Printf("✓ Shorted %d site(s), %d pair(s)\n", res.Sites, len(res.Shorts))
	if res.Stopped {
		fmt.Printf("  • Stopped early: capacity reached (%d/%s cells)\n",
			s.Ledger().Used(), capacityString(s.Ledger().Capacity()))
	}
	fmt.Printf("  • Cells used: %d\n", s.Ledger().Used())
	fmt.Printf("  • Wires consumed: %d\n", len(s.Ledger().ConsumedWires()))

	if err := writeDesign(d, runCfg.Output.Design); err != nil {
		return err
	}
	fmt.Printf("\n✓ Design saved to: %s\n", runCfg.Output.Design)

	if err := writeManifest(s, runCfg.Output.Manifest); err != nil {
		return err
	}
	fmt.Printf("✓ Manifest saved to: %s (run %s)\n", runCfg.Output.Manifest, s.RunID())
	return nil
}

func readDesign(path string) (*design.Design, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open design: %w", err)
	}
	defer f.Close()
	return design.ReadJSON(f)
}

func writeDesign(d *design.Design, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create design file: %w", err)
	}
	if err := d.WriteJSON(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func writeManifest(s *synth.Synthesizer, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create manifest file: %w", err)
	}
	if err := s.WriteManifest(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
