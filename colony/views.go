package colony

import (
	"cmp"
	"slices"

	"github.com/pthm-cable/universe25/components"
	"github.com/pthm-cable/universe25/telemetry"
)

// tickStats summarizes the live set after a tick and drains the
// per-tick birth and death counters.
func (c *Colony) tickStats() telemetry.TickStats {
	var states [components.NumMentalStates]int
	var roles [components.NumSocialRoles]int
	total := 0

	query := c.filter.Query()
	for query.Next() {
		_, _, _, _, mind, _ := query.Get()
		if int(mind.State) < len(states) {
			states[mind.State]++
		}
		if int(mind.Role) < len(roles) {
			roles[mind.Role]++
		}
		total++
	}

	births, deaths := c.collector.Flush()
	return telemetry.TickStats{
		Tick:          c.tick,
		Population:    total,
		Births:        births,
		Deaths:        deaths,
		DensityFactor: c.DensityFactor(),
		Phase:         c.phase,
		States:        telemetry.NewStateDistribution(states, total),
		Roles:         telemetry.NewRoleDistribution(roles, total),
	}
}

// Statistics returns the colony-wide summary.
func (c *Colony) Statistics() telemetry.AggregateStats {
	adultAge := c.cfg.Lifecycle.AdultAge
	var (
		genders telemetry.GenderCounts
		ages    telemetry.AgeGroups
	)
	traits := make([]components.Traits, 0, len(c.index))

	query := c.filter.Query()
	for query.Next() {
		_, _, body, tr, _, _ := query.Get()
		if body.Gender == components.Male {
			genders.Male++
		} else {
			genders.Female++
		}
		if body.Age < adultAge {
			ages.Juvenile++
		} else {
			ages.Adult++
		}
		traits = append(traits, *tr)
	}

	return telemetry.AggregateStats{
		Population:    len(c.index),
		DeadCount:     c.deadCount,
		DensityFactor: c.DensityFactor(),
		Phase:         c.phase.String(),
		Tick:          c.tick,
		GenderRatio:   genders,
		AgeGroups:     ages,
		AvgTraits:     telemetry.AverageTraits(traits),
		Mortality:     c.collector.Mortality(),
	}
}

// MouseStates returns copies of every live mouse ordered by ID.
func (c *Colony) MouseStates() []components.MouseState {
	out := make([]components.MouseState, 0, len(c.index))
	query := c.filter.Query()
	for query.Next() {
		out = append(out, queryMouse(&query).State())
	}
	slices.SortFunc(out, func(a, b components.MouseState) int {
		return cmp.Compare(a.Identity.ID, b.Identity.ID)
	})
	return out
}

// Mice returns the info view of every live mouse ordered by ID.
func (c *Colony) Mice() []components.MouseInfo {
	states := c.MouseStates()
	out := make([]components.MouseInfo, len(states))
	for i := range states {
		out[i] = states[i].Info()
	}
	return out
}

// Mouse returns the info view of one live mouse.
func (c *Colony) Mouse(id components.MouseID) (components.MouseInfo, bool) {
	e, ok := c.index[id]
	if !ok {
		return components.MouseInfo{}, false
	}
	s := c.handle(e).State()
	return s.Info(), true
}
