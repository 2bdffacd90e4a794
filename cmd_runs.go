package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/pthm-cable/universe25/telemetry"
)

func newRunsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "runs <database>",
		Short: "List runs recorded in a run store",
		Long: `List the runs recorded in a SQLite run store written with --db.

With --run, print the last ticks and the bookmarks of one run instead.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := os.Stat(args[0]); err != nil {
				return fmt.Errorf("run store: %w", err)
			}
			store, err := telemetry.OpenStore(args[0])
			if err != nil {
				return err
			}
			defer store.Close()

			out := cmd.OutOrStdout()
			runID, _ := cmd.Flags().GetString("run")
			if runID == "" {
				runs, err := store.Runs()
				if err != nil {
					return fmt.Errorf("listing runs: %w", err)
				}
				printRuns(out, runs)
				return nil
			}

			epoch, _ := cmd.Flags().GetInt("epoch")
			limit, _ := cmd.Flags().GetInt("limit")
			ticks, err := store.Ticks(runID, epoch, limit)
			if err != nil {
				return fmt.Errorf("loading ticks: %w", err)
			}
			if len(ticks) == 0 {
				return fmt.Errorf("no ticks for run %s epoch %d", runID, epoch)
			}
			bookmarks, err := store.Bookmarks(runID, epoch)
			if err != nil {
				return fmt.Errorf("loading bookmarks: %w", err)
			}
			printRunTicks(out, ticks, bookmarks)
			return nil
		},
	}

	cmd.Flags().String("run", "", "Show ticks and bookmarks of this run id")
	cmd.Flags().Int("epoch", 0, "Reset epoch of the run")
	cmd.Flags().Int("limit", 20, "Number of trailing ticks to show (0 = all)")
	return cmd
}

func printRuns(w io.Writer, runs []telemetry.RunRecord) {
	fmt.Fprintf(w, "%-36s %5s %20s %9s %10s %8s  %s\n", "RUN", "EPOCH", "SEED", "GRID", "TICKS", "PEAK", "STARTED")
	for _, r := range runs {
		fmt.Fprintf(w, "%-36s %5d %20d %9s %10s %8s  %s\n", r.RunID, r.Epoch, r.Seed,
			fmt.Sprintf("%dx%d", r.Width, r.Height), humanize.Comma(r.Ticks),
			humanize.Comma(int64(r.PeakPop)), humanize.Time(time.Unix(r.StartedAt, 0)))
	}
}

func printRunTicks(w io.Writer, ticks []telemetry.TickRecord, bookmarks []telemetry.Bookmark) {
	fmt.Fprintf(w, "%8s %8s %6s %6s %8s  %s\n", "TICK", "POP", "BIRTHS", "DEATHS", "DENSITY", "PHASE")
	for _, t := range ticks {
		fmt.Fprintf(w, "%8d %8d %6d %6d %8.3f  %s\n", t.Tick, t.Population, t.Births, t.Deaths, t.DensityFactor, t.Phase)
	}
	if len(bookmarks) == 0 {
		return
	}
	fmt.Fprintln(w)
	for _, b := range bookmarks {
		fmt.Fprintf(w, "tick %s: %s\n", humanize.Comma(b.Tick), b.Description)
	}
}
