package systems

import (
	"github.com/pthm-cable/universe25/components"
)

// Action identifies the branch chosen by the action policy.
type Action uint8

const (
	ActionEat Action = iota
	ActionSleep
	ActionSeekMate
	ActionSocialize
	ActionExplore
	ActionHide
	ActionAttack
	ActionGroom
)

// String returns the display name for an Action.
func (a Action) String() string {
	switch a {
	case ActionEat:
		return "eat"
	case ActionSleep:
		return "sleep"
	case ActionSeekMate:
		return "seek_mate"
	case ActionSocialize:
		return "socialize"
	case ActionExplore:
		return "explore"
	case ActionHide:
		return "hide"
	case ActionAttack:
		return "attack"
	case ActionGroom:
		return "groom"
	}
	return "unknown"
}

// wantsMate reports whether the mouse qualifies for the mating branch.
func wantsMate(m Mouse, adultAge int) bool {
	if m.Repro.Drive <= DriveThreshold || m.Body.Age < adultAge {
		return false
	}
	if m.Body.Gender == components.Female && m.Repro.Pregnant {
		return false
	}
	s := m.Mind.State
	return s != components.StateWithdrawn && s != components.StateBeautifulOne
}

// chooseAction applies the priority policy. Exactly one action is returned.
func chooseAction(m Mouse, env Env) Action {
	if m.Body.Hunger > HungerThreshold {
		return ActionEat
	}
	if m.Body.Energy < EnergyThreshold {
		return ActionSleep
	}
	if wantsMate(m, env.Lifecycle().AdultAge) {
		return ActionSeekMate
	}

	rng := env.Rand()
	switch m.Mind.State {
	case components.StateStressed:
		if rng.Float64() < StressedExplore {
			return ActionExplore
		}
		return ActionHide
	case components.StateAggressive:
		return ActionAttack
	case components.StateWithdrawn:
		return ActionHide
	case components.StateBeautifulOne:
		return ActionGroom
	}
	if rng.Float64() < SocializeChance {
		return ActionSocialize
	}
	return ActionExplore
}

func performAction(m Mouse, env Env) {
	switch chooseAction(m, env) {
	case ActionEat:
		m.Body.Hunger = clamp100(m.Body.Hunger - EatAmount)
		moveRandomly(m, env)
	case ActionSleep:
		m.Body.Energy = clamp100(m.Body.Energy + SleepAmount)
	case ActionSeekMate:
		seekMate(m, env)
	case ActionSocialize:
		socialize(m, env)
	case ActionExplore:
		moveRandomly(m, env)
	case ActionHide:
		hide(m, env)
	case ActionAttack:
		attack(m, env)
	case ActionGroom:
		groom(m, env)
	}
}

func socialize(m Mouse, env Env) {
	nearby := env.NearbyMice(m.Pos.X, m.Pos.Y, NearbyRadius)
	if len(nearby) == 0 {
		moveRandomly(m, env)
		return
	}
	other := nearby[env.Rand().Intn(len(nearby))]

	now := env.Tick()
	m.Mind.LastInteraction = now
	other.Mind.LastInteraction = now
	m.Traits.Sociability = clamp100(m.Traits.Sociability + SociabilityGain)

	moveToward(m, env, other.Pos.X, other.Pos.Y)
}

func hide(m Mouse, env Env) {
	off, ok := env.LeastCrowdedDirection(m.Pos.X, m.Pos.Y)
	if !ok {
		return
	}
	moveTo(m, env, m.Pos.X+off.DX, m.Pos.Y+off.DY)
}

func attack(m Mouse, env Env) {
	nearby := env.NearbyMice(m.Pos.X, m.Pos.Y, NearbyRadius)
	if len(nearby) == 0 {
		moveRandomly(m, env)
		return
	}
	target := nearby[env.Rand().Intn(len(nearby))]
	target.Body.Health = clamp100(target.Body.Health - m.Traits.Aggression*AttackDamage)
	moveToward(m, env, target.Pos.X, target.Pos.Y)
}

func groom(m Mouse, env Env) {
	m.Body.Health = clamp100(m.Body.Health + GroomHeal)
	if env.Rand().Float64() < GroomMoveChance {
		moveRandomly(m, env)
	}
}

// Movement primitives. Out-of-bounds targets are ignored: the grid has walls.

// RandomStep draws dx and dy independently from {-1, 0, 1}.
func RandomStep(env Env) components.Offset {
	rng := env.Rand()
	dx := rng.Intn(3) - 1
	dy := rng.Intn(3) - 1
	return components.Offset{DX: dx, DY: dy}
}

func moveRandomly(m Mouse, env Env) {
	off := RandomStep(env)
	moveTo(m, env, m.Pos.X+off.DX, m.Pos.Y+off.DY)
}

func moveToward(m Mouse, env Env, x, y int) {
	moveTo(m, env, m.Pos.X+sign(x-m.Pos.X), m.Pos.Y+sign(y-m.Pos.Y))
}

func moveTo(m Mouse, env Env, x, y int) {
	if env.IsValidPosition(x, y) {
		m.Pos.X = x
		m.Pos.Y = y
	}
}
