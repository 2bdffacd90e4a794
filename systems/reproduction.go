package systems

import (
	"math/rand"

	"github.com/pthm-cable/universe25/components"
)

func seekMate(m Mouse, env Env) {
	rng := env.Rand()
	if env.DensityFactor() > MateAvoidDensity && rng.Float64() < MateAvoidChance {
		moveRandomly(m, env)
		return
	}

	mates := env.PotentialMates(m)
	if len(mates) == 0 {
		moveRandomly(m, env)
		return
	}
	Mate(m, mates[rng.Intn(len(mates))], env.Tick())
}

// Mate pairs two mice. Both drives reset and the female conceives.
// A female that is already pregnant keeps her current pregnancy.
func Mate(a, b Mouse, tick int64) {
	a.Repro.Drive = 0
	b.Repro.Drive = 0
	a.Repro.LastMating = tick
	b.Repro.LastMating = tick

	mother, father := a, b
	if a.Body.Gender != components.Female {
		mother, father = b, a
	}
	if mother.Body.Gender != components.Female || mother.Repro.Pregnant {
		return
	}
	mother.Repro.Pregnant = true
	mother.Repro.Timer = 0
	mother.Repro.Mate = father.ID.ID
	mother.Repro.MateTraits = *father.Traits
}

// LitterSize returns the number of offspring slots for a birth.
func LitterSize(base int, density, parenting float64) int {
	size := base
	switch {
	case density >= LitterDensityHigh:
		size -= 2
	case density >= LitterDensityLow:
		size--
	}
	size = max(MinLitter, size)
	if parenting < NeglectParenting {
		size = max(MinLitter, size-1)
	}
	return size
}

// giveBirth ends the pregnancy and registers the surviving offspring.
func giveBirth(m Mouse, env Env) {
	m.Repro.Pregnant = false
	m.Repro.Timer = 0

	rng := env.Rand()
	lc := env.Lifecycle()
	litter := LitterSize(lc.BaseLitter, env.DensityFactor(), m.Traits.Parenting)

	for range litter {
		if env.DensityFactor() > MiscarriageDensity && rng.Float64() < MiscarriageChance {
			continue
		}

		child := components.MouseState{
			Identity: components.Identity{
				Parent1:    m.ID.ID,
				Parent2:    m.Repro.Mate,
				Generation: m.ID.Generation + 1,
				BornTick:   env.Tick(),
				Alive:      true,
			},
			Position: *m.Pos,
			Body:     newBody(rng),
			Traits:   Inherit(m.Traits, &m.Repro.MateTraits, rng),
		}
		if !env.AddMouse(&child) {
			continue
		}
		m.Repro.Children = append(m.Repro.Children, child.Identity.ID)

		if m.Traits.Parenting < NeglectParenting && rng.Float64() < AbandonChance {
			child.Body.Health = clamp100(child.Body.Health - AbandonPenalty)
		}
	}
}

// Inherit averages both parents' traits, adds a uniform jitter in
// [-InheritJitter, InheritJitter] per trait, and clamps to [0, 100].
func Inherit(a, b *components.Traits, rng *rand.Rand) components.Traits {
	mix := func(x, y float64) float64 {
		jitter := (rng.Float64()*2 - 1) * InheritJitter
		return clamp100((x+y)/2 + jitter)
	}
	return components.Traits{
		Aggression:  mix(a.Aggression, b.Aggression),
		Sociability: mix(a.Sociability, b.Sociability),
		Parenting:   mix(a.Parenting, b.Parenting),
		Grooming:    mix(a.Grooming, b.Grooming),
	}
}
