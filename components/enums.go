package components

import "fmt"

// Gender of a mouse.
type Gender uint8

const (
	Male Gender = iota
	Female
)

// String returns the display name for a Gender.
func (g Gender) String() string {
	if g == Female {
		return "female"
	}
	return "male"
}

// Opposite returns the other gender.
func (g Gender) Opposite() Gender {
	if g == Female {
		return Male
	}
	return Female
}

// MentalState is a mouse's current behavioural mode.
type MentalState uint8

const (
	StateNormal MentalState = iota
	StateStressed
	StateWithdrawn
	StateAggressive
	StateBeautifulOne
)

// NumMentalStates is the number of mental states.
const NumMentalStates = 5

// String returns the display name for a MentalState.
func (s MentalState) String() string {
	names := MentalStateNames()
	if int(s) < len(names) {
		return names[s]
	}
	return "UNKNOWN"
}

// MentalStateNames returns the display names for all mental states.
// The order matches the MentalState constants.
func MentalStateNames() []string {
	return []string{"NORMAL", "STRESSED", "WITHDRAWN", "AGGRESSIVE", "BEAUTIFUL_ONE"}
}

// SocialRole is a reporting label derived from MentalState and parenting.
type SocialRole uint8

const (
	RoleNormal SocialRole = iota
	RoleAggressor
	RoleWithdrawn
	RoleNeglectfulParent
	RoleBeautifulOne
)

// NumSocialRoles is the number of social roles.
const NumSocialRoles = 5

// String returns the display name for a SocialRole.
func (r SocialRole) String() string {
	names := SocialRoleNames()
	if int(r) < len(names) {
		return names[r]
	}
	return "UNKNOWN"
}

// SocialRoleNames returns the display names for all social roles.
// The order matches the SocialRole constants.
func SocialRoleNames() []string {
	return []string{"NORMAL", "AGGRESSOR", "WITHDRAWN", "NEGLECTFUL_PARENT", "BEAUTIFUL_ONE"}
}

// Phase is one of the four colony density regimes. Phases only move forward.
type Phase uint8

const (
	PhaseExploration Phase = iota
	PhaseGrowth
	PhaseBreakdown
	PhaseCollapse
)

// String returns the display name for a Phase.
func (p Phase) String() string {
	switch p {
	case PhaseExploration:
		return "EXPLORATION"
	case PhaseGrowth:
		return "GROWTH"
	case PhaseBreakdown:
		return "BREAKDOWN"
	case PhaseCollapse:
		return "COLLAPSE"
	}
	return "UNKNOWN"
}

// ParsePhase returns the Phase with the given display name.
func ParsePhase(name string) (Phase, error) {
	for p := PhaseExploration; p <= PhaseCollapse; p++ {
		if p.String() == name {
			return p, nil
		}
	}
	return 0, fmt.Errorf("unknown phase %q", name)
}

// MarshalText encodes a Phase as its display name.
func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText decodes a Phase from its display name.
func (p *Phase) UnmarshalText(b []byte) error {
	v, err := ParsePhase(string(b))
	if err != nil {
		return err
	}
	*p = v
	return nil
}

// DeathCause records why a mouse left the live population.
type DeathCause uint8

const (
	CauseNone DeathCause = iota
	CauseOldAge
	CauseStarvation
	CauseInjury
)

// NumDeathCauses is the number of DeathCause values including CauseNone.
const NumDeathCauses = 4

// String returns the display name for a DeathCause.
func (c DeathCause) String() string {
	switch c {
	case CauseOldAge:
		return "old_age"
	case CauseStarvation:
		return "starvation"
	case CauseInjury:
		return "injury"
	}
	return "none"
}
