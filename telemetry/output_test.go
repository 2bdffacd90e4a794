package telemetry

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pthm-cable/universe25/components"
	"github.com/pthm-cable/universe25/config"
)

func TestOutputManagerDisabled(t *testing.T) {
	om, err := NewOutputManager("")
	if err != nil || om != nil {
		t.Fatalf("expected nil manager, got %v, %v", om, err)
	}
	// Nil manager is safe to use
	if err := om.WriteTick(TickStats{}); err != nil {
		t.Error(err)
	}
	if err := om.WriteBookmark(Bookmark{}); err != nil {
		t.Error(err)
	}
	if err := om.Close(); err != nil {
		t.Error(err)
	}
}

func TestOutputManagerWritesCSV(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	om, err := NewOutputManager(dir)
	if err != nil {
		t.Fatalf("NewOutputManager: %v", err)
	}

	for i := 1; i <= 3; i++ {
		if err := om.WriteTick(TickStats{Tick: int64(i), Population: 10 * i, Phase: components.PhaseGrowth}); err != nil {
			t.Fatalf("WriteTick: %v", err)
		}
	}
	if err := om.WriteBookmark(Bookmark{Type: BookmarkPhaseChange, Tick: 2, From: "EXPLORATION", To: "GROWTH"}); err != nil {
		t.Fatalf("WriteBookmark: %v", err)
	}
	if err := om.WriteConfig(config.Default()); err != nil {
		t.Fatalf("WriteConfig: %v", err)
	}
	if err := om.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "history.csv"))
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 4 {
		t.Fatalf("history.csv lines: got %d, want 4 (header + 3)", len(lines))
	}
	if !strings.HasPrefix(lines[0], "tick,population,births,deaths") {
		t.Errorf("unexpected header: %q", lines[0])
	}
	if strings.Count(string(data), "tick,") != 1 {
		t.Error("header written more than once")
	}

	bm, err := os.ReadFile(filepath.Join(dir, "bookmarks.csv"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(bm), "phase_change") {
		t.Errorf("bookmarks.csv missing record: %q", bm)
	}
	if _, err := os.Stat(filepath.Join(dir, "config.yaml")); err != nil {
		t.Errorf("config.yaml not written: %v", err)
	}
}
