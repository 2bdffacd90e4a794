package telemetry

import "github.com/pthm-cable/universe25/components"

// History holds the append-only per-tick series of a colony.
// Entry i of every series belongs to the same tick.
type History struct {
	Ticks      []int64
	Population []int
	Births     []int
	Deaths     []int
	Density    []float64
	Phases     []components.Phase
	States     []StateDistribution
	Roles      []RoleDistribution
}

// NewHistory creates an empty history.
func NewHistory() *History {
	return &History{}
}

// Append records one tick.
func (h *History) Append(s TickStats) {
	h.Ticks = append(h.Ticks, s.Tick)
	h.Population = append(h.Population, s.Population)
	h.Births = append(h.Births, s.Births)
	h.Deaths = append(h.Deaths, s.Deaths)
	h.Density = append(h.Density, s.DensityFactor)
	h.Phases = append(h.Phases, s.Phase)
	h.States = append(h.States, s.States)
	h.Roles = append(h.Roles, s.Roles)
}

// Len returns the number of recorded ticks.
func (h *History) Len() int {
	return len(h.Ticks)
}

// At rebuilds the TickStats recorded at index i.
func (h *History) At(i int) TickStats {
	return TickStats{
		Tick:          h.Ticks[i],
		Population:    h.Population[i],
		Births:        h.Births[i],
		Deaths:        h.Deaths[i],
		DensityFactor: h.Density[i],
		Phase:         h.Phases[i],
		States:        h.States[i],
		Roles:         h.Roles[i],
	}
}

// Last returns up to n most recent records, oldest first.
func (h *History) Last(n int) []TickStats {
	start := max(0, h.Len()-n)
	out := make([]TickStats, 0, h.Len()-start)
	for i := start; i < h.Len(); i++ {
		out = append(out, h.At(i))
	}
	return out
}

// Peak returns the largest population recorded and the tick it occurred.
func (h *History) Peak() (population int, tick int64) {
	for i, p := range h.Population {
		if p > population {
			population, tick = p, h.Ticks[i]
		}
	}
	return population, tick
}

// FirstTickInPhase returns the first tick recorded in phase p.
func (h *History) FirstTickInPhase(p components.Phase) (int64, bool) {
	for i, ph := range h.Phases {
		if ph == p {
			return h.Ticks[i], true
		}
	}
	return 0, false
}
