package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/pthm-cable/universe25/config"
	"github.com/pthm-cable/universe25/host"
	"github.com/pthm-cable/universe25/observer"
)

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run a colony",
		Long: `Run a colony until the tick limit or until interrupted.

Without --listen the colony runs headless as fast as possible. With
--listen an observer serves stats over HTTP and WebSocket and frames are
paced by host.frame_interval_ms.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			seed, _ := cmd.Flags().GetInt64("seed")
			if seed == 0 {
				seed = time.Now().UnixNano()
			}

			h, err := host.New(cfg, seed)
			if err != nil {
				return err
			}
			defer h.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			var obsErr chan error
			if cfg.Observer.Listen != "" {
				obs := observer.NewServer(h, cfg.Observer.HistoryLimit)
				h.Subscribe(obs.Publish)
				obsErr = make(chan error, 1)
				go func() { obsErr <- obs.ListenAndServe(ctx, cfg.Observer.Listen) }()
			}

			start := time.Now()
			runErr := h.Run(ctx)
			elapsed := time.Since(start)
			stop()

			if obsErr != nil {
				if err := <-obsErr; err != nil {
					slog.Error("observer failed", "error", err)
				}
			}
			if runErr != nil {
				return runErr
			}

			summary := h.Summary()
			slog.Info("run finished", "summary", summary)
			printSummary(cmd.OutOrStdout(), summary, elapsed)
			return nil
		},
	}

	cmd.Flags().String("config", "", "Path to config.yaml (empty = use defaults)")
	cmd.Flags().Int64("seed", 0, "RNG seed (0 = time-based)")
	cmd.Flags().Int64("max-ticks", 0, "Stop after N ticks (0 = unlimited)")
	cmd.Flags().Int("speed", 1, "Ticks per frame")
	cmd.Flags().String("output-dir", "", "Output directory for CSV logs and config snapshot")
	cmd.Flags().String("snapshot-dir", "", "Directory for bookmark snapshots")
	cmd.Flags().String("db", "", "SQLite run store for ticks and bookmarks")
	cmd.Flags().String("listen", "", "Serve the observer on this address, e.g. :8080")
	return cmd
}

// loadConfig reads --config and applies the flags the user set.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	flags := cmd.Flags()
	if flags.Changed("max-ticks") {
		cfg.Host.MaxTicks, _ = flags.GetInt64("max-ticks")
	}
	if flags.Changed("speed") {
		cfg.Host.InitialSpeed, _ = flags.GetInt("speed")
	}
	if flags.Changed("output-dir") {
		cfg.Telemetry.OutputDir, _ = flags.GetString("output-dir")
	}
	if flags.Changed("snapshot-dir") {
		cfg.Telemetry.SnapshotDir, _ = flags.GetString("snapshot-dir")
	}
	if flags.Changed("db") {
		cfg.Telemetry.Database, _ = flags.GetString("db")
	}
	if flags.Changed("listen") {
		cfg.Observer.Listen, _ = flags.GetString("listen")
	}

	// Headless runs are not paced.
	if cfg.Observer.Listen == "" {
		cfg.Host.FrameIntervalMs = 0
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg.Refresh()
	return cfg, nil
}

func printSummary(w io.Writer, s host.Summary, elapsed time.Duration) {
	rate := 0.0
	if elapsed > 0 {
		rate = float64(s.Ticks) / elapsed.Seconds()
	}
	m := s.Stats.Mortality

	fmt.Fprintf(w, "Run %s (seed %d)\n", s.RunID, s.Seed)
	fmt.Fprintf(w, "  Ticks:       %s in %s (%s ticks/s)\n",
		humanize.Comma(s.Ticks), elapsed.Round(time.Millisecond), humanize.CommafWithDigits(rate, 0))
	fmt.Fprintf(w, "  Population:  %s alive, peak %s at tick %s\n",
		humanize.Comma(int64(s.Stats.Population)), humanize.Comma(int64(s.PeakPop)), humanize.Comma(s.PeakTick))
	fmt.Fprintf(w, "  Births:      %s\n", humanize.Comma(int64(s.TotalBirths)))
	fmt.Fprintf(w, "  Deaths:      %s (old age %s, starvation %s, injury %s)\n",
		humanize.Comma(int64(s.Stats.DeadCount)), humanize.Comma(int64(m.OldAge)),
		humanize.Comma(int64(m.Starvation)), humanize.Comma(int64(m.Injury)))
	fmt.Fprintf(w, "  Phase:       %s", s.Stats.Phase)
	if s.CollapseTick > 0 {
		fmt.Fprintf(w, " (collapse at tick %s)", humanize.Comma(s.CollapseTick))
	}
	fmt.Fprintln(w)
}
