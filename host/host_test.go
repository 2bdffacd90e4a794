package host

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pthm-cable/universe25/config"
	"github.com/pthm-cable/universe25/telemetry"
)

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.World.Width = 20
	cfg.World.Height = 20
	cfg.World.InitialPopulation = 10
	cfg.Host.FrameIntervalMs = 0
	cfg.Telemetry.LogEvery = 0
	cfg.Refresh()
	return cfg
}

func newTestHost(t *testing.T, cfg *config.Config) *Host {
	t.Helper()
	h, err := New(cfg, 1)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { h.Close() })
	return h
}

func TestNewRejectsInvalidWorld(t *testing.T) {
	cfg := testConfig()
	cfg.World.Width = 0
	if _, err := New(cfg, 1); err == nil {
		t.Fatal("expected error for zero width")
	}
}

func TestPauseStopsTicks(t *testing.T) {
	h := newTestHost(t, testConfig())

	h.Pause()
	if got := h.Step(); len(got) != 0 {
		t.Fatalf("paused step advanced %d ticks", len(got))
	}
	if h.Colony().Tick() != 0 {
		t.Fatalf("tick = %d, want 0", h.Colony().Tick())
	}

	h.TogglePause()
	if h.Paused() {
		t.Fatal("toggle did not resume")
	}
	if got := h.Step(); len(got) != 1 {
		t.Fatalf("step advanced %d ticks, want 1", len(got))
	}

	h.TogglePause()
	h.Resume()
	if h.Paused() {
		t.Fatal("resume did not clear pause")
	}
}

func TestSpeed(t *testing.T) {
	h := newTestHost(t, testConfig())

	h.SetSpeed(0)
	if h.Speed() != 1 {
		t.Errorf("SetSpeed(0) = %d, want 1", h.Speed())
	}

	h.SetSpeed(5)
	ticks := h.Step()
	if len(ticks) != 5 || ticks[4].Tick != 5 {
		t.Fatalf("step produced %d ticks", len(ticks))
	}
}

func TestSpeedClampedToMaxSpeed(t *testing.T) {
	cfg := testConfig()
	cfg.Host.MaxSpeed = 50
	h := newTestHost(t, cfg)

	cmd, err := ParseCommand("speed", 1<<20)
	if err != nil {
		t.Fatalf("ParseCommand: %v", err)
	}
	if err := h.Apply(cmd); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if h.Speed() != 50 {
		t.Fatalf("speed = %d, want max_speed 50", h.Speed())
	}
	if ticks := h.Step(); len(ticks) != 50 {
		t.Errorf("step produced %d ticks, want 50", len(ticks))
	}

	h.SetSpeed(1 << 40)
	if h.Speed() != 50 {
		t.Errorf("SetSpeed(1<<40) = %d, want 50", h.Speed())
	}
}

func TestCycleSpeed(t *testing.T) {
	h := newTestHost(t, testConfig())

	want := []int{2, 5, 10, 20, 1, 2}
	for _, w := range want {
		h.CycleSpeed()
		if h.Speed() != w {
			t.Fatalf("CycleSpeed -> %d, want %d", h.Speed(), w)
		}
	}

	h.SetSpeed(7)
	h.CycleSpeed()
	if h.Speed() != 10 {
		t.Errorf("CycleSpeed from 7 -> %d, want 10", h.Speed())
	}
}

func TestReset(t *testing.T) {
	cfg := testConfig()
	h := newTestHost(t, cfg)

	h.SetSpeed(20)
	h.Step()
	seed := h.Seed()

	if err := h.Reset(); err != nil {
		t.Fatalf("Reset: %v", err)
	}
	c := h.Colony()
	if c.Tick() != 0 || c.Population() != cfg.World.InitialPopulation {
		t.Errorf("after reset tick %d population %d", c.Tick(), c.Population())
	}
	if c.Width() != 20 || c.Height() != 20 {
		t.Errorf("after reset grid %dx%d", c.Width(), c.Height())
	}
	if h.Seed() == seed {
		t.Error("reset reused the seed")
	}
	if c.History().Len() != 0 {
		t.Error("reset kept history")
	}
}

func TestMaxTicks(t *testing.T) {
	cfg := testConfig()
	cfg.Host.MaxTicks = 7
	h := newTestHost(t, cfg)
	h.SetSpeed(5)

	if got := len(h.Step()); got != 5 {
		t.Fatalf("first step = %d ticks, want 5", got)
	}
	if got := len(h.Step()); got != 2 {
		t.Fatalf("second step = %d ticks, want 2", got)
	}
	if !h.Done() {
		t.Fatal("host not done at tick limit")
	}
	if got := len(h.Step()); got != 0 {
		t.Fatalf("step after limit = %d ticks", got)
	}
}

func TestRunPublishesFrames(t *testing.T) {
	cfg := testConfig()
	cfg.Host.MaxTicks = 20
	h := newTestHost(t, cfg)
	h.SetSpeed(3)

	var frames []Frame
	h.Subscribe(func(f Frame) { frames = append(frames, f) })

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := h.Run(ctx); err != nil {
		t.Fatalf("Run: %v", err)
	}

	total := 0
	for _, f := range frames {
		total += len(f.Ticks)
		if f.RunID != h.RunID() || f.Speed != 3 {
			t.Errorf("frame run %q speed %d", f.RunID, f.Speed)
		}
	}
	if total != 20 {
		t.Fatalf("frames carried %d ticks, want 20", total)
	}
	last := frames[len(frames)-1]
	if last.Stats.Tick != 20 {
		t.Errorf("last frame stats at tick %d", last.Stats.Tick)
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	h := newTestHost(t, testConfig())
	h.Pause()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- h.Run(ctx) }()
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not stop after cancel")
	}
}

func TestRunAppliesSubmittedCommands(t *testing.T) {
	cfg := testConfig()
	cfg.Host.MaxTicks = 10
	h := newTestHost(t, cfg)
	h.Pause()

	if !h.Submit(Command{Kind: CmdSetSpeed, Value: 10}) {
		t.Fatal("submit rejected")
	}
	if !h.Submit(Command{Kind: CmdResume}) {
		t.Fatal("submit rejected")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := h.Run(ctx); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if h.Speed() != 10 || h.Colony().Tick() != 10 {
		t.Errorf("speed %d tick %d, want 10 and 10", h.Speed(), h.Colony().Tick())
	}
}

func TestParseCommand(t *testing.T) {
	tests := []struct {
		name    string
		value   int
		want    CommandKind
		wantErr bool
	}{
		{"pause", 0, CmdPause, false},
		{"Resume", 0, CmdResume, false},
		{"toggle", 0, CmdTogglePause, false},
		{"speed", 5, CmdSetSpeed, false},
		{"speed", 0, 0, true},
		{"speed", MaxSpeed, CmdSetSpeed, false},
		{"speed", MaxSpeed + 1, 0, true},
		{"speed", 1 << 40, 0, true},
		{"cycle_speed", 0, CmdCycleSpeed, false},
		{" reset ", 0, CmdReset, false},
		{"explode", 0, 0, true},
	}
	for _, tt := range tests {
		cmd, err := ParseCommand(tt.name, tt.value)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseCommand(%q) error = %v", tt.name, err)
			continue
		}
		if !tt.wantErr && cmd.Kind != tt.want {
			t.Errorf("ParseCommand(%q) = %s, want %s", tt.name, cmd.Kind, tt.want)
		}
	}
}

func TestOutputAndSnapshots(t *testing.T) {
	dir := t.TempDir()
	cfg := testConfig()
	cfg.World.InitialPopulation = 5
	cfg.Lifecycle.AdultAge = 1
	cfg.Lifecycle.MaxAge = 3
	cfg.Telemetry.OutputDir = filepath.Join(dir, "out")
	cfg.Telemetry.SnapshotDir = filepath.Join(dir, "snapshots")

	h, err := New(cfg, 3)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	h.SetSpeed(5)
	h.Step()
	if err := h.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	history, err := os.ReadFile(filepath.Join(cfg.Telemetry.OutputDir, "history.csv"))
	if err != nil {
		t.Fatalf("reading history: %v", err)
	}
	if lines := strings.Count(string(history), "\n"); lines != 6 {
		t.Errorf("history.csv has %d lines, want 6", lines)
	}
	if _, err := os.Stat(filepath.Join(cfg.Telemetry.OutputDir, "config.yaml")); err != nil {
		t.Errorf("config.yaml missing: %v", err)
	}

	bookmarks, err := os.ReadFile(filepath.Join(cfg.Telemetry.OutputDir, "bookmarks.csv"))
	if err != nil {
		t.Fatalf("reading bookmarks: %v", err)
	}
	if !strings.Contains(string(bookmarks), string(telemetry.BookmarkExtinction)) {
		t.Errorf("bookmarks.csv missing extinction:\n%s", bookmarks)
	}

	path := filepath.Join(cfg.Telemetry.SnapshotDir, "snapshot_3_extinction.json.zst")
	snap, err := telemetry.LoadSnapshot(path)
	if err != nil {
		t.Fatalf("LoadSnapshot: %v", err)
	}
	if snap.RunID != h.RunID() || snap.Seed != 3 || snap.Tick != 3 {
		t.Errorf("snapshot run %q seed %d tick %d", snap.RunID, snap.Seed, snap.Tick)
	}
	if snap.Bookmark == nil || snap.Bookmark.Type != telemetry.BookmarkExtinction {
		t.Errorf("snapshot bookmark = %+v", snap.Bookmark)
	}
	if len(snap.Mice) != 0 || snap.DeadCount != 5 {
		t.Errorf("snapshot mice %d dead %d", len(snap.Mice), snap.DeadCount)
	}
}

func TestSummary(t *testing.T) {
	h := newTestHost(t, testConfig())
	h.SetSpeed(10)
	h.Step()

	s := h.Summary()
	if s.Ticks != 10 || s.RunID != h.RunID() || s.Seed != 1 {
		t.Errorf("summary = %+v", s)
	}
	if s.PeakPop < 10 {
		t.Errorf("peak population %d below initial", s.PeakPop)
	}
}

func TestRunStore(t *testing.T) {
	cfg := testConfig()
	cfg.Telemetry.Database = filepath.Join(t.TempDir(), "runs.db")

	h, err := New(cfg, 5)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	h.SetSpeed(10)
	h.Step()
	if err := h.Reset(); err != nil {
		t.Fatalf("Reset: %v", err)
	}
	h.SetSpeed(4)
	h.Step()
	if err := h.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	store, err := telemetry.OpenStore(cfg.Telemetry.Database)
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()

	runs, err := store.Runs()
	if err != nil {
		t.Fatalf("Runs: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("runs: got %d, want one per epoch", len(runs))
	}
	for i, want := range []int64{10, 4} {
		r := runs[i]
		if r.RunID != h.RunID() || r.Epoch != i || r.Ticks != want || r.Capacity != 320 {
			t.Errorf("epoch %d = %+v", i, r)
		}
	}
	if runs[0].Seed != 5 || runs[1].Seed == 5 {
		t.Errorf("seeds %d, %d: reset should derive a new seed", runs[0].Seed, runs[1].Seed)
	}
}

func TestRunSurvivesFailedReset(t *testing.T) {
	cfg := testConfig()
	cfg.Host.MaxTicks = 15
	cfg.Telemetry.Database = filepath.Join(t.TempDir(), "runs.db")
	h := newTestHost(t, cfg)

	// A closed store makes the reset's run record fail.
	if err := h.store.Close(); err != nil {
		t.Fatal(err)
	}
	if !h.Submit(Command{Kind: CmdReset}) {
		t.Fatal("submit rejected")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := h.Run(ctx); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if h.Colony().Tick() != 15 {
		t.Errorf("tick %d, want the run to continue to 15", h.Colony().Tick())
	}
}
