package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/OpenTraceLab/OpenTraceShorts/internal/config"
	"github.com/OpenTraceLab/OpenTraceShorts/pkg/fabric"
	"github.com/OpenTraceLab/OpenTraceShorts/pkg/fabric/fdl"
)

var (
	// Global flags
	verbose    bool
	configPath string
	fabricFile string

	runCfg *config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "shorty",
	Short: "Short-circuit synthesis and routing for FPGA fabrics",
	Long: `shorty places pairs of constant drivers (a LUT driving one level and a
register driving the other) in the same tile, finds switchbox wires both
drivers can reach, and routes the pair onto them.

The fabric is either described in an .fdl file or generated as a regular
grid. Designs and the list of shorts they contain are written as JSON so a
later run can pick them up again.

Examples:
  shorty fabric gen --columns 4 --rows 4 --out grid.fdl    # Write a synthetic fabric
  shorty region --fabric grid.fdl --xmax 3 --ymax 3         # Short a 4x4 region
  shorty find --fabric grid.fdl --site 0,0 --slot B         # List shared wires
  shorty inspect --fabric grid.fdl --design design.json     # Verify a shorted design`,
	Version:      "0.1.0",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		if configPath != "" {
			runCfg, err = config.Load(configPath)
			if err != nil {
				return err
			}
		} else {
			runCfg = config.DefaultConfig()
		}
		if fabricFile != "" {
			runCfg.Fabric.File = fabricFile
		}

		level, err := runCfg.LogLevel()
		if err != nil {
			return err
		}
		zc := zap.NewProductionConfig()
		zc.Level = zap.NewAtomicLevelAt(level)
		if verbose {
			zc.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		logger, err = zc.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "YAML run configuration")
	rootCmd.PersistentFlags().StringVarP(&fabricFile, "fabric", "f", "", "fabric description (.fdl); a grid is generated when empty")
}

// loadFabric reads the configured fabric file or generates the configured
// grid.
func loadFabric() (*fabric.Memory, error) {
	if runCfg.Fabric.File != "" {
		logger.Debug("loading fabric", zap.String("file", runCfg.Fabric.File))
		fab, err := fdl.Load(runCfg.Fabric.File)
		if err != nil {
			return nil, fmt.Errorf("failed to load fabric: %w", err)
		}
		return fab, nil
	}
	spec := runCfg.GridSpec()
	logger.Debug("generating grid fabric",
		zap.String("device", spec.Device),
		zap.Int("columns", spec.Columns),
		zap.Int("rows", spec.Rows))
	fab, err := fabric.Grid(spec)
	if err != nil {
		return nil, fmt.Errorf("failed to generate fabric: %w", err)
	}
	return fab, nil
}

func capacityString(n int) string {
	if n == fabric.Unbounded {
		return "unbounded"
	}
	return fmt.Sprintf("%d", n)
}
