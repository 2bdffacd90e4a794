package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/stat"

	"github.com/pthm-cable/universe25/config"
	"github.com/pthm-cable/universe25/host"
)

// sweepSpeed is the number of ticks advanced per step in a sweep.
const sweepSpeed = 100

// SweepResult aggregates headless runs over several seeds.
type SweepResult struct {
	Runs           int        `json:"runs"`
	MaxTicks       int64      `json:"max_ticks"`
	PeakMean       float64    `json:"peak_population_mean"`
	PeakStdDev     float64    `json:"peak_population_stddev"`
	Collapsed      int        `json:"collapsed"`
	CollapseMean   float64    `json:"collapse_tick_mean"`
	CollapseStdDev float64    `json:"collapse_tick_stddev"`
	Extinct        int        `json:"extinct"`
	Seeds          []SweepRun `json:"seeds"`
}

// SweepRun is the per-seed line of a sweep.
type SweepRun struct {
	Seed         int64 `json:"seed"`
	Ticks        int64 `json:"ticks"`
	PeakPop      int   `json:"peak_population"`
	CollapseTick int64 `json:"collapse_tick"`
	Population   int   `json:"population"`
}

func newSweepCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Run several seeds headless and compare them",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, _ := cmd.Flags().GetString("config")
			cfg, err := config.Load(path)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			seeds, _ := cmd.Flags().GetInt("seeds")
			baseSeed, _ := cmd.Flags().GetInt64("base-seed")
			maxTicks, _ := cmd.Flags().GetInt64("max-ticks")
			if seeds < 1 || maxTicks < 1 {
				return fmt.Errorf("--seeds and --max-ticks must be positive")
			}
			if cmd.Flags().Changed("db") {
				cfg.Telemetry.Database, _ = cmd.Flags().GetString("db")
			}

			res, err := sweep(cfg, seeds, baseSeed, maxTicks)
			if err != nil {
				return err
			}

			if jsonOut, _ := cmd.Flags().GetBool("json"); jsonOut {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(res)
			}
			printSweep(cmd.OutOrStdout(), res)
			return nil
		},
	}

	cmd.Flags().String("config", "", "Path to config.yaml (empty = use defaults)")
	cmd.Flags().Int("seeds", 5, "Number of seeds to run")
	cmd.Flags().Int64("base-seed", 42, "First seed; seeds are consecutive")
	cmd.Flags().Int64("max-ticks", 5000, "Ticks per run")
	cmd.Flags().String("db", "", "SQLite run store shared by every seed")
	cmd.Flags().Bool("json", false, "Output as JSON")
	return cmd
}

// sweep runs one headless colony per seed. Runs stop early on extinction.
// Only the run store is kept from the base telemetry settings.
func sweep(base *config.Config, seeds int, baseSeed, maxTicks int64) (SweepResult, error) {
	cfg := base.Clone()
	cfg.Host.MaxTicks = maxTicks
	cfg.Host.FrameIntervalMs = 0
	cfg.Telemetry.OutputDir = ""
	cfg.Telemetry.SnapshotDir = ""
	cfg.Observer.Listen = ""
	cfg.Refresh()

	res := SweepResult{Runs: seeds, MaxTicks: maxTicks}
	var peaks, collapses []float64
	for i := 0; i < seeds; i++ {
		seed := baseSeed + int64(i)
		h, err := host.New(cfg, seed)
		if err != nil {
			return res, fmt.Errorf("seed %d: %w", seed, err)
		}
		h.SetSpeed(sweepSpeed)
		for !h.Done() && h.Colony().Population() > 0 {
			h.Step()
		}
		s := h.Summary()
		h.Close()

		slog.Info("sweep run finished", "summary", s)
		res.Seeds = append(res.Seeds, SweepRun{
			Seed:         seed,
			Ticks:        s.Ticks,
			PeakPop:      s.PeakPop,
			CollapseTick: s.CollapseTick,
			Population:   s.Stats.Population,
		})
		peaks = append(peaks, float64(s.PeakPop))
		if s.CollapseTick > 0 {
			collapses = append(collapses, float64(s.CollapseTick))
		}
		if s.Stats.Population == 0 {
			res.Extinct++
		}
	}

	res.PeakMean, res.PeakStdDev = meanStdDev(peaks)
	res.Collapsed = len(collapses)
	res.CollapseMean, res.CollapseStdDev = meanStdDev(collapses)
	return res, nil
}

// meanStdDev returns the sample mean and standard deviation. The deviation
// is zero for fewer than two values.
func meanStdDev(x []float64) (mean, std float64) {
	switch len(x) {
	case 0:
		return 0, 0
	case 1:
		return x[0], 0
	}
	return stat.MeanStdDev(x, nil)
}

func printSweep(w io.Writer, r SweepResult) {
	fmt.Fprintf(w, "%-8s %10s %12s %12s %10s\n", "SEED", "TICKS", "PEAK", "COLLAPSE", "ALIVE")
	for _, s := range r.Seeds {
		collapse := "-"
		if s.CollapseTick > 0 {
			collapse = humanize.Comma(s.CollapseTick)
		}
		fmt.Fprintf(w, "%-8d %10s %12s %12s %10s\n", s.Seed, humanize.Comma(s.Ticks),
			humanize.Comma(int64(s.PeakPop)), collapse, humanize.Comma(int64(s.Population)))
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Peak population: %s ± %s\n",
		humanize.CommafWithDigits(r.PeakMean, 1), humanize.CommafWithDigits(r.PeakStdDev, 1))
	if r.Collapsed > 0 {
		fmt.Fprintf(w, "Collapse tick:   %s ± %s (%d of %d runs)\n",
			humanize.CommafWithDigits(r.CollapseMean, 0), humanize.CommafWithDigits(r.CollapseStdDev, 0),
			r.Collapsed, r.Runs)
	} else {
		fmt.Fprintf(w, "Collapse tick:   never reached in %d runs\n", r.Runs)
	}
	fmt.Fprintf(w, "Extinct:         %d of %d runs\n", r.Extinct, r.Runs)
}
