// Package host drives a colony: pause, speed, reset and the frame loop.
package host

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/pthm-cable/universe25/colony"
	"github.com/pthm-cable/universe25/components"
	"github.com/pthm-cable/universe25/config"
	"github.com/pthm-cable/universe25/telemetry"
)

// resetSeedStride separates the seeds of successive resets.
const resetSeedStride = 0x9E3779B9

// Frame is what subscribers receive after every frame that advanced the colony.
type Frame struct {
	RunID  string                   `json:"run_id"`
	Ticks  []telemetry.TickStats    `json:"ticks"`
	Stats  telemetry.AggregateStats `json:"stats"`
	Paused bool                     `json:"paused"`
	Speed  int                      `json:"speed"`
}

// Summary describes a finished or stopped run.
type Summary struct {
	RunID        string
	Seed         int64
	Ticks        int64
	Stats        telemetry.AggregateStats
	TotalBirths  int
	PeakPop      int
	PeakTick     int64
	CollapseTick int64 // 0 when Collapse was never reached
	Perf         telemetry.PerfStats
}

// LogValue implements slog.LogValuer for structured logging.
func (s Summary) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("run_id", s.RunID),
		slog.Int64("seed", s.Seed),
		slog.Int64("ticks", s.Ticks),
		slog.Int("population", s.Stats.Population),
		slog.Int("dead", s.Stats.DeadCount),
		slog.Int("births", s.TotalBirths),
		slog.Int("peak_population", s.PeakPop),
		slog.Int64("peak_tick", s.PeakTick),
		slog.Int64("collapse_tick", s.CollapseTick),
		slog.String("phase", s.Stats.Phase),
	)
}

// Host owns one colony and the controls around it. Methods other than
// Submit and Subscribe must be called from the goroutine running the colony.
type Host struct {
	cfg      *config.Config
	runID    string
	baseSeed int64
	seed     int64

	colony *colony.Colony
	resets int

	paused bool
	speed  int

	output    *telemetry.OutputManager
	store     *telemetry.Store
	bookmarks *telemetry.BookmarkDetector
	perf      *telemetry.PerfCollector

	commands chan Command

	mu          sync.Mutex
	subscribers []func(Frame)
}

// New creates a host with a freshly seeded colony.
// If cfg.Telemetry.OutputDir is set, CSV output is written there; if
// cfg.Telemetry.Database is set, ticks and bookmarks are also stored in SQLite.
func New(cfg *config.Config, seed int64) (*Host, error) {
	h := &Host{
		cfg:      cfg,
		runID:    uuid.NewString(),
		baseSeed: seed,
		speed:    max(1, min(cfg.Host.InitialSpeed, maxSpeed(cfg))),
		perf:     telemetry.NewPerfCollector(cfg.Telemetry.LogEvery),
		commands: make(chan Command, 64),
	}
	if err := h.newColony(seed); err != nil {
		return nil, err
	}

	output, err := telemetry.NewOutputManager(cfg.Telemetry.OutputDir)
	if err != nil {
		return nil, fmt.Errorf("creating output manager: %w", err)
	}
	h.output = output
	if err := h.output.WriteConfig(cfg); err != nil {
		h.output.Close()
		return nil, fmt.Errorf("writing config: %w", err)
	}

	store, err := telemetry.OpenStore(cfg.Telemetry.Database)
	if err != nil {
		h.output.Close()
		return nil, fmt.Errorf("opening run store: %w", err)
	}
	h.store = store
	if err := h.startEpoch(); err != nil {
		h.Close()
		return nil, err
	}

	slog.Info("colony created",
		"run_id", h.runID,
		"seed", seed,
		"width", cfg.World.Width,
		"height", cfg.World.Height,
		"population", h.colony.Population(),
		"capacity", h.colony.Capacity(),
		"output_dir", h.output.Dir(),
	)
	return h, nil
}

func (h *Host) newColony(seed int64) error {
	c, err := colony.New(h.cfg, rand.New(rand.NewSource(seed)))
	if err != nil {
		return fmt.Errorf("creating colony: %w", err)
	}
	c.SetPerf(h.perf)
	h.colony = c
	h.seed = seed
	h.bookmarks = telemetry.NewBookmarkDetector(h.runID)
	return nil
}

// startEpoch registers the current colony with the run store.
func (h *Host) startEpoch() error {
	err := h.store.StartRun(telemetry.RunRecord{
		RunID:    h.runID,
		Epoch:    h.resets,
		Seed:     h.seed,
		Width:    h.colony.Width(),
		Height:   h.colony.Height(),
		Capacity: h.colony.Capacity(),
	})
	if err != nil {
		return fmt.Errorf("recording run: %w", err)
	}
	return nil
}

// Close flushes and closes run output.
func (h *Host) Close() error {
	return errors.Join(h.output.Close(), h.store.Close())
}

// RunID returns the identifier stamped on output, bookmarks and snapshots.
func (h *Host) RunID() string { return h.runID }

// Seed returns the seed of the current colony.
func (h *Host) Seed() int64 { return h.seed }

// Colony returns the current colony.
func (h *Host) Colony() *colony.Colony { return h.colony }

// Pause stops the colony from advancing.
func (h *Host) Pause() { h.paused = true }

// Resume lets the colony advance again.
func (h *Host) Resume() { h.paused = false }

// TogglePause flips the paused state.
func (h *Host) TogglePause() { h.paused = !h.paused }

// Paused reports whether the colony is paused.
func (h *Host) Paused() bool { return h.paused }

// Speed returns the number of ticks per frame.
func (h *Host) Speed() int { return h.speed }

// SetSpeed sets the number of ticks per frame, clamped to
// [1, host.max_speed].
func (h *Host) SetSpeed(n int) {
	h.speed = max(1, min(n, maxSpeed(h.cfg)))
}

func maxSpeed(cfg *config.Config) int {
	if cfg.Host.MaxSpeed <= 0 {
		return MaxSpeed
	}
	return min(cfg.Host.MaxSpeed, MaxSpeed)
}

// CycleSpeed moves to the next configured speed, wrapping to the first.
func (h *Host) CycleSpeed() {
	speeds := h.cfg.Host.Speeds
	if len(speeds) == 0 {
		return
	}
	for _, s := range speeds {
		if s > h.speed {
			h.speed = s
			return
		}
	}
	h.speed = speeds[0]
}

// Reset discards the colony and seeds a new one with the same dimensions
// and initial population. Each reset derives a new seed from the run seed.
func (h *Host) Reset() error {
	h.resets++
	seed := h.baseSeed + int64(h.resets)*resetSeedStride
	if err := h.newColony(seed); err != nil {
		return err
	}
	if err := h.startEpoch(); err != nil {
		return err
	}
	slog.Info("colony reset", "run_id", h.runID, "seed", seed, "resets", h.resets)
	return nil
}

// Done reports whether the configured tick limit has been reached.
func (h *Host) Done() bool {
	limit := h.cfg.Host.MaxTicks
	return limit > 0 && h.colony.Tick() >= limit
}

// Step advances the colony by up to Speed ticks unless paused.
func (h *Host) Step() []telemetry.TickStats {
	if h.paused {
		return nil
	}
	var ticks []telemetry.TickStats
	for i := 0; i < h.speed && !h.Done(); i++ {
		stats := h.colony.Update()
		h.record(stats)
		ticks = append(ticks, stats)
	}
	if err := h.store.SaveTicks(h.runID, h.resets, ticks); err != nil {
		slog.Error("failed to store ticks", "error", err)
	}
	return ticks
}

// record handles per-tick output, periodic logging and bookmarks.
func (h *Host) record(stats telemetry.TickStats) {
	if err := h.output.WriteTick(stats); err != nil {
		slog.Error("failed to write tick", "error", err)
	}

	if every := h.cfg.Telemetry.LogEvery; every > 0 && stats.Tick%int64(every) == 0 {
		slog.Info("stats", "stats", stats)
		slog.Debug("perf", "perf", h.perf.Stats())
	}

	for _, bm := range h.bookmarks.Check(stats) {
		bm.LogBookmark()
		if err := h.output.WriteBookmark(bm); err != nil {
			slog.Error("failed to write bookmark", "error", err)
		}
		if err := h.store.SaveBookmark(h.resets, bm); err != nil {
			slog.Error("failed to store bookmark", "error", err)
		}
		if h.cfg.Telemetry.SnapshotDir != "" {
			h.saveSnapshot(&bm)
		}
	}
}

// saveSnapshot writes a diagnostic snapshot for a bookmark.
func (h *Host) saveSnapshot(bm *telemetry.Bookmark) {
	snap := h.Snapshot()
	snap.Bookmark = bm
	path, err := telemetry.SaveSnapshot(snap, h.cfg.Telemetry.SnapshotDir)
	if err != nil {
		slog.Error("failed to save snapshot", "error", err)
		return
	}
	slog.Info("snapshot saved", "path", path, "tick", snap.Tick)
}

// Snapshot captures the current colony stamped with run metadata.
func (h *Host) Snapshot() *telemetry.Snapshot {
	snap := h.colony.Snapshot()
	snap.RunID = h.runID
	snap.Seed = h.seed
	return snap
}

// Summary describes the current colony.
func (h *Host) Summary() Summary {
	hist := h.colony.History()
	peakPop, peakTick := hist.Peak()
	collapse, _ := hist.FirstTickInPhase(components.PhaseCollapse)
	stats := h.colony.Statistics()
	return Summary{
		RunID:        h.runID,
		Seed:         h.seed,
		Ticks:        h.colony.Tick(),
		Stats:        stats,
		TotalBirths:  h.colony.TotalBirths(),
		PeakPop:      peakPop,
		PeakTick:     peakTick,
		CollapseTick: collapse,
		Perf:         h.perf.Stats(),
	}
}

// Submit queues a command for the goroutine in Run. It is safe for
// concurrent use and reports false when the queue is full.
func (h *Host) Submit(cmd Command) bool {
	select {
	case h.commands <- cmd:
		return true
	default:
		return false
	}
}

// Subscribe registers fn to receive every frame. fn runs on the
// simulation goroutine and must not block.
func (h *Host) Subscribe(fn func(Frame)) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.subscribers = append(h.subscribers, fn)
}

// Apply executes a command immediately.
func (h *Host) Apply(cmd Command) error {
	switch cmd.Kind {
	case CmdPause:
		h.Pause()
	case CmdResume:
		h.Resume()
	case CmdTogglePause:
		h.TogglePause()
	case CmdSetSpeed:
		h.SetSpeed(cmd.Value)
	case CmdCycleSpeed:
		h.CycleSpeed()
	case CmdReset:
		return h.Reset()
	default:
		return fmt.Errorf("unknown command kind %d", cmd.Kind)
	}
	slog.Debug("command applied", "command", cmd.Kind.String(), "paused", h.paused, "speed", h.speed)
	return nil
}

// Run advances the colony one frame per frame interval until ctx is done
// or the tick limit is reached. A zero interval runs frames back to back.
func (h *Host) Run(ctx context.Context) error {
	var frames <-chan time.Time
	if interval := h.cfg.Derived.FrameInterval; interval > 0 {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		frames = ticker.C
	} else {
		ready := make(chan time.Time)
		close(ready)
		frames = ready
	}

	slog.Info("host started", "run_id", h.runID, "speed", h.speed, "max_ticks", h.cfg.Host.MaxTicks)
	defer func() {
		slog.Info("host stopped", "run_id", h.runID, "tick", h.colony.Tick())
	}()
	h.publish(nil)

	for {
		if h.Done() {
			return nil
		}

		// While paused only commands can change anything.
		idle := frames
		if h.paused {
			idle = nil
		}

		select {
		case <-ctx.Done():
			return nil
		case cmd := <-h.commands:
			if err := h.Apply(cmd); err != nil {
				slog.Error("command failed", "command", cmd.Kind.String(), "error", err)
			}
			h.publish(nil)
		case <-idle:
			if ticks := h.Step(); len(ticks) > 0 {
				h.publish(ticks)
			}
		}
	}
}

// publish delivers a frame to every subscriber.
func (h *Host) publish(ticks []telemetry.TickStats) {
	h.mu.Lock()
	subs := h.subscribers
	h.mu.Unlock()
	if len(subs) == 0 {
		return
	}

	frame := Frame{
		RunID:  h.runID,
		Ticks:  ticks,
		Stats:  h.colony.Statistics(),
		Paused: h.paused,
		Speed:  h.speed,
	}
	for _, fn := range subs {
		fn(frame)
	}
}
