package systems

import (
	"math/rand"

	"github.com/pthm-cable/universe25/components"
)

// TargetState picks the mental state a mouse drifts toward at the given
// global density. Rolls are only drawn in the bands that need them.
func TargetState(t *components.Traits, density float64, rng *rand.Rand) components.MentalState {
	switch {
	case density < StressedDensity:
		return components.StateNormal
	case density < CrowdedDensity:
		if rng.Float64() < StressChance {
			return components.StateStressed
		}
		return components.StateNormal
	case density < ExtremeDensity:
		switch {
		case t.Sociability > CrowdedSociability:
			return components.StateStressed
		case t.Grooming > CrowdedGrooming:
			return components.StateWithdrawn
		case t.Aggression > CrowdedAggression:
			return components.StateAggressive
		}
		return components.StateStressed
	default:
		switch {
		case t.Grooming > ExtremeGrooming:
			if rng.Float64() < BeautifulOneChance {
				return components.StateBeautifulOne
			}
			return components.StateWithdrawn
		case t.Aggression > ExtremeAggression:
			return components.StateAggressive
		}
		return components.StateWithdrawn
	}
}

// RoleFor derives the social role of a mental state.
func RoleFor(state components.MentalState, parenting float64) components.SocialRole {
	switch state {
	case components.StateAggressive:
		return components.RoleAggressor
	case components.StateWithdrawn:
		return components.RoleWithdrawn
	case components.StateBeautifulOne:
		return components.RoleBeautifulOne
	}
	if parenting < NeglectParenting {
		return components.RoleNeglectfulParent
	}
	return components.RoleNormal
}

// updateMentalState records local density and moves toward the target state
// with TransitionChance per tick.
func updateMentalState(m Mouse, env Env) {
	m.Mind.LocalDensity = env.LocalDensity(m.Pos.X, m.Pos.Y, LocalDensityRadius)

	rng := env.Rand()
	target := TargetState(m.Traits, env.DensityFactor(), rng)
	if target == m.Mind.State {
		return
	}
	if rng.Float64() >= TransitionChance {
		return
	}
	setState(m, target)
}

// setState applies a transition and re-derives the role.
func setState(m Mouse, state components.MentalState) {
	m.Mind.State = state
	m.Mind.Role = RoleFor(state, m.Traits.Parenting)
	if state == components.StateBeautifulOne {
		m.Traits.Grooming = clamp100(m.Traits.Grooming + BeautifulOneGrooming)
	}
}
