package main

import (
	"fmt"
	"io"
	"math/rand"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/pthm-cable/universe25/colony"
	"github.com/pthm-cable/universe25/components"
	"github.com/pthm-cable/universe25/config"
	"github.com/pthm-cable/universe25/inspector"
	"github.com/pthm-cable/universe25/telemetry"
)

func newInspectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inspect <snapshot>",
		Short: "Summarize a colony snapshot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			snap, err := telemetry.LoadSnapshot(args[0])
			if err != nil {
				return err
			}

			path, _ := cmd.Flags().GetString("config")
			cfg, err := config.Load(path)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			c, err := colony.Restore(cfg, snap, rand.New(rand.NewSource(snap.Seed)))
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if mouse, _ := cmd.Flags().GetString("mouse"); mouse != "" {
				id, err := strconv.ParseUint(mouse, 10, 64)
				if err != nil {
					return fmt.Errorf("invalid mouse id %q", mouse)
				}
				return writeMouse(out, snap, components.MouseID(id))
			}
			printSnapshot(out, snap, c.Statistics())
			return nil
		},
	}

	cmd.Flags().String("config", "", "Path to config.yaml used for derived statistics")
	cmd.Flags().String("mouse", "", "Print every component of one mouse")
	return cmd
}

func writeMouse(w io.Writer, snap *telemetry.Snapshot, id components.MouseID) error {
	for _, s := range snap.Mice {
		if s.Identity.ID == id {
			return inspector.WriteMouse(w, s)
		}
	}
	return fmt.Errorf("mouse %d not in snapshot", id)
}

func printSnapshot(w io.Writer, snap *telemetry.Snapshot, stats telemetry.AggregateStats) {
	fmt.Fprintf(w, "Snapshot of run %s (seed %d)\n", snap.RunID, snap.Seed)
	fmt.Fprintf(w, "  Tick:        %s\n", humanize.Comma(snap.Tick))
	fmt.Fprintf(w, "  Grid:        %dx%d, capacity %s\n", snap.Width, snap.Height, humanize.Comma(int64(snap.MaxCapacity)))
	fmt.Fprintf(w, "  Phase:       %s (density %.3f)\n", stats.Phase, stats.DensityFactor)
	if bm := snap.Bookmark; bm != nil {
		fmt.Fprintf(w, "  Bookmark:    %s: %s\n", bm.Type, bm.Description)
	}
	fmt.Fprintf(w, "  Population:  %s (%d male, %d female; %d juvenile, %d adult)\n",
		humanize.Comma(int64(stats.Population)), stats.GenderRatio.Male, stats.GenderRatio.Female,
		stats.AgeGroups.Juvenile, stats.AgeGroups.Adult)
	fmt.Fprintf(w, "  Dead:        %s, mean lifespan %.1f ticks\n",
		humanize.Comma(int64(stats.DeadCount)), stats.Mortality.MeanLifespan)
	fmt.Fprintf(w, "  Births:      %s\n", humanize.Comma(int64(snap.TotalBirths)))
	t := stats.AvgTraits
	fmt.Fprintf(w, "  Traits:      aggression %.1f, sociability %.1f, parenting %.1f, grooming %.1f\n",
		t.Aggression, t.Sociability, t.Parenting, t.Grooming)

	var states [components.NumMentalStates]int
	for _, s := range snap.Mice {
		if int(s.Mind.State) < len(states) {
			states[s.Mind.State]++
		}
	}
	fmt.Fprintf(w, "  States:     ")
	for i, name := range components.MentalStateNames() {
		fmt.Fprintf(w, " %s %d", name, states[i])
	}
	fmt.Fprintln(w)
}
