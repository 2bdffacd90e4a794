// Package systems implements the per-mouse behaviour of the colony simulation.
package systems

import (
	"math/rand"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/universe25/components"
	"github.com/pthm-cable/universe25/config"
)

// Mouse bundles the component pointers of one live mouse.
// Pointers are only valid until the next structural change of the world.
type Mouse struct {
	Entity ecs.Entity
	ID     *components.Identity
	Pos    *components.Position
	Body   *components.Body
	Traits *components.Traits
	Mind   *components.Mind
	Repro  *components.Reproduction
}

// State returns a value copy of all components.
func (m Mouse) State() components.MouseState {
	s := components.MouseState{
		Identity:     *m.ID,
		Position:     *m.Pos,
		Body:         *m.Body,
		Traits:       *m.Traits,
		Mind:         *m.Mind,
		Reproduction: *m.Repro,
	}
	return s.Clone()
}

// Env is the view of the colony a mouse acts in.
type Env interface {
	Tick() int64
	Rand() *rand.Rand
	Lifecycle() *config.LifecycleConfig

	IsValidPosition(x, y int) bool
	LocalDensity(x, y, radius int) int
	DensityFactor() float64
	PotentialMates(m Mouse) []Mouse
	NearbyMice(x, y, radius int) []Mouse
	LeastCrowdedDirection(x, y int) (components.Offset, bool)

	// AddMouse registers a newborn, assigning its ID. It returns false when
	// the colony is at capacity. Accepted state may be adjusted by the caller
	// until the end of the current tick.
	AddMouse(s *components.MouseState) bool
}

// Update advances one mouse by one tick and reports whether it is still alive.
func Update(m Mouse, env Env) bool {
	if !m.ID.Alive {
		return false
	}
	lc := env.Lifecycle()
	body := m.Body

	body.Age++
	body.Hunger = clamp100(body.Hunger + lc.HungerRate)
	body.Energy = clamp100(body.Energy - lc.EnergyRate)

	if body.Age >= lc.AdultAge {
		switch {
		case body.Gender == components.Female && !m.Repro.Pregnant:
			m.Repro.Drive = clamp100(m.Repro.Drive + lc.FemaleDriveRate)
		case body.Gender == components.Male:
			m.Repro.Drive = clamp100(m.Repro.Drive + lc.MaleDriveRate)
		}
	}

	if CauseOfDeath(body, lc) != components.CauseNone {
		m.ID.Alive = false
		return false
	}

	if m.Repro.Pregnant {
		m.Repro.Timer++
		if m.Repro.Timer >= lc.Gestation {
			giveBirth(m, env)
		}
	}

	updateMentalState(m, env)
	performAction(m, env)
	return true
}

// CauseOfDeath classifies the first death condition a body meets.
func CauseOfDeath(body *components.Body, lc *config.LifecycleConfig) components.DeathCause {
	switch {
	case body.Age >= lc.MaxAge:
		return components.CauseOldAge
	case body.Hunger >= 100:
		return components.CauseStarvation
	case body.Health <= 0:
		return components.CauseInjury
	}
	return components.CauseNone
}

// NewFounder returns a first-generation mouse with randomized traits.
func NewFounder(x, y int, tick int64, rng *rand.Rand) components.MouseState {
	return components.MouseState{
		Identity: components.Identity{BornTick: tick, Alive: true},
		Position: components.Position{X: x, Y: y},
		Body:     newBody(rng),
		Traits: components.Traits{
			Aggression:  float64(randInclusive(rng, FounderAggressionMin, FounderAggressionMax)),
			Sociability: float64(randInclusive(rng, FounderSociabilityMin, FounderSociabilityMax)),
			Parenting:   float64(randInclusive(rng, FounderParentingMin, FounderParentingMax)),
			Grooming:    float64(randInclusive(rng, FounderGroomingMin, FounderGroomingMax)),
		},
	}
}

func newBody(rng *rand.Rand) components.Body {
	gender := components.Male
	if rng.Intn(2) == 1 {
		gender = components.Female
	}
	return components.Body{Energy: 100, Health: 100, Gender: gender}
}

func randInclusive(rng *rand.Rand, lo, hi int) int {
	return lo + rng.Intn(hi-lo+1)
}
