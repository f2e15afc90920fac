package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/OpenTraceLab/OpenTraceShorts/pkg/design"
	"github.com/OpenTraceLab/OpenTraceShorts/pkg/fabric"
	"github.com/OpenTraceLab/OpenTraceShorts/pkg/shorts"
)

var (
	// Flags for find command
	findSite   string
	findSlot   string
	findTarget string
)

var findCmd = &cobra.Command{
	Use:   "find",
	Short: "List the shared wires a LUT/register pair can short through",
	Long: `Place a LUT and a register in one slot of a site (in a scratch design) and
list every switchbox wire both can reach, in fabric order.

With --target the first candidate with that name is selected instead; the
command fails when the wire is not shared.

Examples:
  shorty find --site 0,0 --slot A
  shorty find --fabric grid.fdl --site 3,1 --slot C --target NE2BEG2`,
	RunE: runFind,
}

func init() {
	rootCmd.AddCommand(findCmd)

	findCmd.Flags().StringVarP(&findSite, "site", "s", "0,0", "site coordinate X,Y")
	findCmd.Flags().StringVar(&findSlot, "slot", "A", "slot A..D")
	findCmd.Flags().StringVarP(&findTarget, "target", "t", "", "select this wire (full id or wire name)")
}

func runFind(cmd *cobra.Command, args []string) error {
	coord, err := parseCoord(findSite)
	if err != nil {
		return err
	}
	slot, err := fabric.ParseSlot(findSlot)
	if err != nil {
		return err
	}

	fab, err := loadFabric()
	if err != nil {
		return err
	}
	site, ok := fab.SiteAt(coord)
	if !ok {
		return fmt.Errorf("no site at %s", coord)
	}

	env := shorts.Env{Fabric: fab, Design: design.New("scratch", fab.Device())}
	lut, err := shorts.Place(env, fabric.Location{Site: site, BEL: fabric.BEL{Slot: slot, Kind: fabric.KindLUT}}, shorts.Low)
	if err != nil {
		return err
	}
	reg, err := shorts.Place(env, fabric.Location{Site: site, BEL: fabric.BEL{Slot: slot, Kind: fabric.KindRegister}}, shorts.High)
	if err != nil {
		return err
	}

	q := shorts.Enumerate()
	if findTarget != "" {
		q = shorts.Target(findTarget)
	}
	ascent, cands, err := shorts.Search(fab, nil, lut.EntryWire(), reg.EntryWire(), q)
	if err != nil {
		return err
	}

	fmt.Printf("Site %s slot %s (tile %s)\n", site.Name, slot, site.Tile)
	fmt.Printf("  LUT:      %s -> %s\n", lut.EntryWire(), ascent.A.DestWire)
	fmt.Printf("  Register: %s -> %s\n\n", reg.EntryWire(), ascent.B.DestWire)
	if len(cands) == 0 {
		fmt.Println("No shared wires")
		return nil
	}
	fmt.Printf("Shared wires (%d):\n", len(cands))
	for i, c := range cands {
		fmt.Printf("  [%d] %s\n", i, c.Wire)
	}
	return nil
}

// parseCoord parses "X,Y".
func parseCoord(s string) (fabric.Coord, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return fabric.Coord{}, fmt.Errorf("invalid site coordinate %q, want X,Y", s)
	}
	x, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return fabric.Coord{}, fmt.Errorf("invalid site X in %q: %w", s, err)
	}
	y, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return fabric.Coord{}, fmt.Errorf("invalid site Y in %q: %w", s, err)
	}
	return fabric.Coord{X: x, Y: y}, nil
}
