package colony

import (
	"fmt"
	"math/rand"

	"github.com/pthm-cable/universe25/config"
	"github.com/pthm-cable/universe25/telemetry"
)

// Snapshot captures the colony state. Run metadata (run ID, seed, bookmark)
// is left for the caller to fill in.
func (c *Colony) Snapshot() *telemetry.Snapshot {
	return &telemetry.Snapshot{
		Version:     telemetry.SnapshotVersion,
		Width:       c.width,
		Height:      c.height,
		MaxCapacity: c.capacity,
		Tick:        c.tick,
		Phase:       c.phase,
		NextID:      c.nextID,
		DeadCount:   c.deadCount,
		TotalBirths: c.collector.TotalBirths(),
		Mortality:   c.collector.Mortality(),
		Mice:        c.MouseStates(),
	}
}

// Restore rebuilds a colony from a snapshot. Grid dimensions and capacity
// come from the snapshot; behaviour constants come from cfg.
func Restore(cfg *config.Config, snap *telemetry.Snapshot, rng *rand.Rand) (*Colony, error) {
	if snap.Version != telemetry.SnapshotVersion {
		return nil, fmt.Errorf("unsupported snapshot version %d", snap.Version)
	}

	restored := cfg.Clone()
	restored.World.Width = snap.Width
	restored.World.Height = snap.Height
	restored.World.InitialPopulation = 0

	c, err := newEmpty(restored, rng)
	if err != nil {
		return nil, fmt.Errorf("restore snapshot: %w", err)
	}
	if snap.MaxCapacity > 0 {
		c.capacity = snap.MaxCapacity
	}

	for _, s := range snap.Mice {
		if !c.IsValidPosition(s.Position.X, s.Position.Y) {
			return nil, fmt.Errorf("restore snapshot: mouse %d outside grid at (%d,%d)",
				s.Identity.ID, s.Position.X, s.Position.Y)
		}
		c.Spawn(s)
	}

	c.tick = snap.Tick
	c.phase = snap.Phase
	if snap.NextID > c.nextID {
		c.nextID = snap.NextID
	}
	c.deadCount = snap.DeadCount
	c.collector.Restore(snap.TotalBirths, snap.Mortality)
	return c, nil
}
