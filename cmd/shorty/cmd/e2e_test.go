package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// resetFlags restores every flag of c and its subcommands to its default
// and clears the Changed marks that runRegion reads.
func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

// execute runs the root command with args and returns captured stdout.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	// Capture stdout
	old := os.Stdout
	r, w, _ := os.Pipe()
	os.Stdout = w

	// Read in background to prevent pipe buffer from blocking
	var buf bytes.Buffer
	done := make(chan struct{})
	go func() {
		buf.ReadFrom(r)
		close(done)
	}()

	// Reset flags to prevent accumulation between runs
	resetFlags(rootCmd)

	rootCmd.SetArgs(args)
	err := rootCmd.Execute()

	w.Close()
	os.Stdout = old
	<-done
	return buf.String(), err
}

func TestShortyE2E(t *testing.T) {
	dir := t.TempDir()
	grid := filepath.Join(dir, "grid.fdl")
	designFile := filepath.Join(dir, "design.json")
	manifestFile := filepath.Join(dir, "shorts.json")

	tests := []struct {
		name        string
		args        []string
		wantErr     bool
		wantContain []string
		wantMissing []string
	}{
		{
			name:        "generate fabric",
			args:        []string{"fabric", "gen", "--columns", "1", "--rows", "2", "--shared", "4", "--out", grid},
			wantContain: []string{"Wrote 4 site(s)"},
		},
		{
			name:        "check fabric",
			args:        []string{"fabric", "check", grid},
			wantContain: []string{"Device: xcsim-grid", "Sites: 4 (4 logic)", "Capacity: unbounded"},
		},
		{
			name: "short region",
			args: []string{"region", "--fabric", grid, "--xmin", "0", "--xmax", "1", "--ymin", "0", "--ymax", "1",
				"--shorts", "1", "--connect-config", "--out", designFile, "--manifest", manifestFile},
			wantContain: []string{
				"Shorted 4 site(s), 16 pair(s)",
				"Config net lut_config: 96 pin(s)",
				"Cells used: 32",
				"Wires consumed: 16",
				"Design saved to:",
			},
		},
		{
			name: "inspect design",
			args: []string{"inspect", "--fabric", grid, "--design", designFile, "--manifest", manifestFile, "--wires"},
			wantContain: []string{
				"Shorts: 16 (routed 16, unrouted 0)",
				"All routed shorts verified",
				"INT_X0Y0/NE2BEG0",
			},
		},
		{
			name: "list candidates",
			args: []string{"find", "--fabric", grid, "--site", "1,1", "--slot", "B"},
			wantContain: []string{
				"Site SLICE_X1Y1 slot B (tile CLB_X0Y1)",
				"Shared wires (4):",
				"[0] INT_X0Y1/NE2BEG1",
				"[3] INT_X0Y1/SW2BEG1",
			},
		},
		{
			name:        "select target",
			args:        []string{"find", "--fabric", grid, "--site", "0,0", "--slot", "A", "--target", "SE2BEG0"},
			wantContain: []string{"Shared wires (1):", "INT_X0Y0/SE2BEG0"},
		},
		{
			name:    "target not shared",
			args:    []string{"find", "--fabric", grid, "--site", "0,0", "--slot", "A", "--target", "NN2BEG0"},
			wantErr: true,
		},
		{
			name:    "bad site",
			args:    []string{"find", "--fabric", grid, "--site", "zero"},
			wantErr: true,
		},
		{
			name: "narrow region with two wires per pair",
			args: []string{"region", "--fabric", grid, "--xmax", "0", "--ymax", "0", "--shorts", "2",
				"--out", filepath.Join(dir, "narrow.json"), "--manifest", filepath.Join(dir, "narrow-shorts.json")},
			wantContain: []string{"Region: X0..0 Y0..0, 2 shared wire(s) per pair", "Shorted 1 site(s), 4 pair(s)"},
		},
		{
			name: "region defaults after overrides",
			args: []string{"region", "--fabric", grid,
				"--out", filepath.Join(dir, "default.json"), "--manifest", filepath.Join(dir, "default-shorts.json")},
			wantContain: []string{"Region: X0..1 Y0..1, 1 shared wire(s) per pair", "Shorted 4 site(s), 16 pair(s)"},
			wantMissing: []string{"Config net"},
		},
		{
			name:    "empty region",
			args:    []string{"region", "--fabric", grid, "--xmin", "3", "--xmax", "1"},
			wantErr: true,
		},
		{
			name:    "missing fabric file",
			args:    []string{"fabric", "check", filepath.Join(dir, "absent.fdl")},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			output, err := execute(t, tt.args...)

			if tt.wantErr {
				if err == nil {
					t.Errorf("Expected error but got none")
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v\nOutput: %s", err, output)
			}
			for _, want := range tt.wantContain {
				if !strings.Contains(output, want) {
					t.Errorf("Output missing expected string: %q\nGot:\n%s", want, output)
				}
			}
			for _, unwanted := range tt.wantMissing {
				if strings.Contains(output, unwanted) {
					t.Errorf("Output should not contain %q\nGot:\n%s", unwanted, output)
				}
			}
		})
	}
}

func TestParseCoord(t *testing.T) {
	c, err := parseCoord(" 3, 7")
	if err != nil {
		t.Fatalf("parseCoord failed: %v", err)
	}
	if c.X != 3 || c.Y != 7 {
		t.Errorf("got %s", c)
	}
	for _, bad := range []string{"", "1", "1,2,3", "a,1", "1,b"} {
		if _, err := parseCoord(bad); err == nil {
			t.Errorf("parseCoord(%q) should fail", bad)
		}
	}
}
