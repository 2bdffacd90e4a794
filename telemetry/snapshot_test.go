package telemetry

import (
	"encoding/json"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/pthm-cable/universe25/components"
)

func testSnapshot() *Snapshot {
	return &Snapshot{
		Version:     SnapshotVersion,
		RunID:       "abc",
		Seed:        42,
		Width:       10,
		Height:      8,
		MaxCapacity: 64,
		Tick:        250,
		Phase:       components.PhaseBreakdown,
		NextID:      17,
		DeadCount:   3,
		Mice: []components.MouseState{
			{
				Identity:     components.Identity{ID: 4, Parent1: 1, Parent2: 2, Generation: 1, BornTick: 100, Alive: true},
				Position:     components.Position{X: 3, Y: 7},
				Body:         components.Body{Age: 150, Hunger: 12.5, Energy: 80.3, Health: 99.8, Gender: components.Female},
				Traits:       components.Traits{Aggression: 31.7, Sociability: 70.1, Parenting: 64.2, Grooming: 48.9},
				Mind:         components.Mind{State: components.StateStressed, Role: components.RoleNormal, LocalDensity: 3},
				Reproduction: components.Reproduction{Drive: 4.2, Pregnant: true, Timer: 20, Mate: 9, Children: []components.MouseID{11, 12}},
			},
		},
		Bookmark: &Bookmark{Type: BookmarkPhaseChange, Tick: 250, From: "GROWTH", To: "BREAKDOWN"},
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	dir := t.TempDir()
	snap := testSnapshot()

	path, err := SaveSnapshot(snap, dir)
	if err != nil {
		t.Fatalf("SaveSnapshot: %v", err)
	}
	if filepath.Base(path) != "snapshot_250_phase_change.json.zst" {
		t.Errorf("unexpected filename: %s", filepath.Base(path))
	}

	loaded, err := LoadSnapshot(path)
	if err != nil {
		t.Fatalf("LoadSnapshot: %v", err)
	}
	if !reflect.DeepEqual(loaded, snap) {
		t.Errorf("round trip mismatch:\n got %+v\nwant %+v", loaded, snap)
	}
}

func TestLoadSnapshotPlainJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snap.json")
	data, err := json.Marshal(testSnapshot())
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}
	loaded, err := LoadSnapshot(path)
	if err != nil {
		t.Fatalf("LoadSnapshot: %v", err)
	}
	if loaded.Tick != 250 || len(loaded.Mice) != 1 {
		t.Errorf("unexpected snapshot: %+v", loaded)
	}
}

func TestLoadSnapshotRejectsVersion(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snap.json")
	if err := os.WriteFile(path, []byte(`{"version": 99}`), 0644); err != nil {
		t.Fatal(err)
	}
	_, err := LoadSnapshot(path)
	if err == nil || !strings.Contains(err.Error(), "version") {
		t.Errorf("expected version error, got %v", err)
	}
}
