// Package colony owns the grid, the live mouse population and the tick driver.
package colony

import (
	"errors"
	"fmt"
	"log/slog"
	"math/rand"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/universe25/components"
	"github.com/pthm-cable/universe25/config"
	"github.com/pthm-cable/universe25/systems"
	"github.com/pthm-cable/universe25/telemetry"
)

var (
	// ErrInvalidDimensions is returned for a grid with a non-positive side.
	ErrInvalidDimensions = errors.New("invalid colony dimensions")
	// ErrInvalidPopulation is returned for a negative initial population.
	ErrInvalidPopulation = errors.New("invalid initial population")
)

type mouseMap = ecs.Map6[
	components.Identity, components.Position, components.Body,
	components.Traits, components.Mind, components.Reproduction]

type mouseFilter = ecs.Filter6[
	components.Identity, components.Position, components.Body,
	components.Traits, components.Mind, components.Reproduction]

type mouseQuery = ecs.Query6[
	components.Identity, components.Position, components.Body,
	components.Traits, components.Mind, components.Reproduction]

func newMouseMap(w *ecs.World) *mouseMap {
	return ecs.NewMap6[
		components.Identity, components.Position, components.Body,
		components.Traits, components.Mind, components.Reproduction](w)
}

func newMouseFilter(w *ecs.World) *mouseFilter {
	return ecs.NewFilter6[
		components.Identity, components.Position, components.Body,
		components.Traits, components.Mind, components.Reproduction](w)
}

// Colony is the simulated environment. It is not safe for concurrent use.
type Colony struct {
	cfg *config.Config
	rng *rand.Rand

	width, height int
	capacity      int

	// ECS
	world  *ecs.World
	mapper *mouseMap
	filter *mouseFilter
	index map[components.MouseID]ecs.Entity

	// State
	tick      int64
	phase     components.Phase
	nextID    components.MouseID
	deadCount int
	inTick    bool
	pending   []*components.MouseState // newborns registered during the current tick
	order     []ecs.Entity             // reused per-tick iteration order

	collector *telemetry.Collector
	history   *telemetry.History
	perf      *telemetry.PerfCollector
}

// New creates a colony and seeds cfg.World.InitialPopulation founders at
// random cells. Founders beyond capacity are rejected like any other mouse.
func New(cfg *config.Config, rng *rand.Rand) (*Colony, error) {
	c, err := newEmpty(cfg, rng)
	if err != nil {
		return nil, err
	}

	for i := 0; i < cfg.World.InitialPopulation; i++ {
		x := rng.Intn(c.width)
		y := rng.Intn(c.height)
		founder := systems.NewFounder(x, y, 0, rng)
		c.AddMouse(&founder)
	}
	return c, nil
}

func newEmpty(cfg *config.Config, rng *rand.Rand) (*Colony, error) {
	w, h := cfg.World.Width, cfg.World.Height
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, w, h)
	}
	if cfg.World.InitialPopulation < 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidPopulation, cfg.World.InitialPopulation)
	}

	world := ecs.NewWorld()
	return &Colony{
		cfg:       cfg,
		rng:       rng,
		width:     w,
		height:    h,
		capacity:  config.MaxCapacity(w, h, cfg.World.MaxDensity),
		world:     world,
		mapper:    newMouseMap(world),
		filter:    newMouseFilter(world),
		index:     make(map[components.MouseID]ecs.Entity),
		collector: telemetry.NewCollector(),
		history:   telemetry.NewHistory(),
	}, nil
}

// SetPerf attaches a tick timer. nil disables timing.
func (c *Colony) SetPerf(p *telemetry.PerfCollector) {
	c.perf = p
}

// Width returns the grid width.
func (c *Colony) Width() int { return c.width }

// Height returns the grid height.
func (c *Colony) Height() int { return c.height }

// Capacity returns the maximum live population.
func (c *Colony) Capacity() int { return c.capacity }

// Population returns the number of live mice.
func (c *Colony) Population() int { return len(c.index) }

// Phase returns the current phase.
func (c *Colony) Phase() components.Phase { return c.phase }

// DeadCount returns the number of mice that have died.
func (c *Colony) DeadCount() int { return c.deadCount }

// TotalBirths returns the number of newborns registered since creation.
func (c *Colony) TotalBirths() int { return c.collector.TotalBirths() }

// History returns the per-tick history buffers.
func (c *Colony) History() *telemetry.History { return c.history }

// Tick returns the index of the last completed (or current) tick.
func (c *Colony) Tick() int64 { return c.tick }

// Rand returns the colony's random source.
func (c *Colony) Rand() *rand.Rand { return c.rng }

// Lifecycle returns the physiology constants.
func (c *Colony) Lifecycle() *config.LifecycleConfig { return &c.cfg.Lifecycle }

// AddMouse registers a mouse if the colony is below capacity and assigns
// its ID. During a tick the mouse is queued and joins the live set after
// the update pass; the caller may still adjust s until then.
func (c *Colony) AddMouse(s *components.MouseState) bool {
	if len(c.index)+len(c.pending) >= c.capacity {
		slog.Debug("capacity reached, mouse rejected", "tick", c.tick, "capacity", c.capacity)
		return false
	}

	c.nextID++
	s.Identity.ID = c.nextID
	s.Identity.Alive = true

	if c.inTick {
		c.pending = append(c.pending, s)
		c.collector.RecordBirth()
		return true
	}
	c.createEntity(*s)
	return true
}

// Spawn inserts a fully specified mouse, bypassing the capacity check.
// A zero ID is replaced by a fresh one. Must not be called during Update.
func (c *Colony) Spawn(s components.MouseState) components.MouseID {
	if s.Identity.ID == 0 {
		c.nextID++
		s.Identity.ID = c.nextID
	} else if s.Identity.ID > c.nextID {
		c.nextID = s.Identity.ID
	}
	s.Identity.Alive = true
	c.createEntity(s)
	return s.Identity.ID
}

func (c *Colony) createEntity(s components.MouseState) ecs.Entity {
	s = s.Clone()
	e := c.mapper.NewEntity(&s.Identity, &s.Position, &s.Body, &s.Traits, &s.Mind, &s.Reproduction)
	c.index[s.Identity.ID] = e
	return e
}

// handle returns component pointers for a live entity.
func (c *Colony) handle(e ecs.Entity) systems.Mouse {
	id, pos, body, traits, mind, repro := c.mapper.Get(e)
	return systems.Mouse{Entity: e, ID: id, Pos: pos, Body: body, Traits: traits, Mind: mind, Repro: repro}
}

// Update advances the colony by one tick.
//
// Mice are updated in a fixed order captured at the start of the tick, so
// later mice observe the moves and injuries of earlier ones. A mouse that
// dies leaves the live set immediately. Newborns join after the pass.
func (c *Colony) Update() telemetry.TickStats {
	c.perf.StartTick()
	c.tick++

	c.perf.StartPhase(telemetry.PerfPhaseAgents)
	c.inTick = true
	c.order = c.order[:0]
	query := c.filter.Query()
	for query.Next() {
		c.order = append(c.order, query.Entity())
	}
	for _, e := range c.order {
		if !c.world.Alive(e) {
			continue
		}
		m := c.handle(e)
		if !systems.Update(m, c) {
			c.reap(m)
		}
	}
	c.inTick = false

	c.perf.StartPhase(telemetry.PerfPhaseBirths)
	for _, s := range c.pending {
		c.createEntity(*s)
	}
	c.pending = c.pending[:0]

	c.perf.StartPhase(telemetry.PerfPhaseStats)
	c.updatePhase()
	stats := c.tickStats()
	c.history.Append(stats)

	c.perf.EndTick()
	return stats
}

// reap moves a dead mouse into the archive counters and out of the world.
func (c *Colony) reap(m systems.Mouse) {
	cause := systems.CauseOfDeath(m.Body, c.Lifecycle())
	c.collector.RecordDeath(cause, m.Body.Age)
	c.deadCount++
	delete(c.index, m.ID.ID)
	c.world.RemoveEntity(m.Entity)
}

// updatePhase applies the forward-only phase ratchet.
func (c *Colony) updatePhase() {
	density := c.DensityFactor()
	next := NextPhase(c.phase, density, c.cfg.Phases)
	if next == c.phase {
		return
	}
	slog.Info("phase transition",
		"tick", c.tick,
		"from", c.phase.String(),
		"to", next.String(),
		"density", density,
		"population", len(c.index),
	)
	c.phase = next
}

// NextPhase returns the phase reached from current at the given density.
// Phases never move backwards; several thresholds may be crossed at once.
func NextPhase(current components.Phase, density float64, th config.PhasesConfig) components.Phase {
	for {
		switch {
		case current == components.PhaseExploration && density >= th.Growth:
			current = components.PhaseGrowth
		case current == components.PhaseGrowth && density >= th.Breakdown:
			current = components.PhaseBreakdown
		case current == components.PhaseBreakdown && density >= th.Collapse:
			current = components.PhaseCollapse
		default:
			return current
		}
	}
}
