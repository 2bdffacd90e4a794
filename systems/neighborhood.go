package systems

import "github.com/pthm-cable/universe25/components"

// mooreOffsets lists the eight neighbour offsets in evaluation order.
// Ties in LeastCrowded resolve to the earliest entry.
var mooreOffsets = [8]components.Offset{
	{DX: -1, DY: -1}, {DX: -1, DY: 0}, {DX: -1, DY: 1},
	{DX: 0, DY: -1}, {DX: 0, DY: 1},
	{DX: 1, DY: -1}, {DX: 1, DY: 0}, {DX: 1, DY: 1},
}

// LeastCrowded returns the in-bounds neighbour offset whose target cell holds
// the fewest mice. ok is false when no neighbour is in bounds.
func LeastCrowded(x, y int, valid func(x, y int) bool, occupants func(x, y int) int) (best components.Offset, ok bool) {
	bestCount := 0
	for _, off := range mooreOffsets {
		nx, ny := x+off.DX, y+off.DY
		if !valid(nx, ny) {
			continue
		}
		n := occupants(nx, ny)
		if !ok || n < bestCount {
			best, bestCount, ok = off, n, true
		}
	}
	return best, ok
}

// CanMate reports whether candidate is an eligible partner for seeker.
// Pregnant females are never eligible.
func CanMate(seeker, candidate Mouse, adultAge int) bool {
	if candidate.ID.ID == seeker.ID.ID || !candidate.ID.Alive {
		return false
	}
	if candidate.Body.Gender == seeker.Body.Gender || candidate.Body.Age < adultAge {
		return false
	}
	if candidate.Mind.State == components.StateWithdrawn || candidate.Mind.State == components.StateBeautifulOne {
		return false
	}
	if candidate.Body.Gender == components.Female && candidate.Repro.Pregnant {
		return false
	}
	return WithinBox(seeker.Pos.X, seeker.Pos.Y, candidate.Pos.X, candidate.Pos.Y, MateRadius)
}

// IsNearby reports whether a mouse at (mx, my) counts as nearby (x, y):
// inside the radius box but not on the query cell itself.
func IsNearby(x, y, mx, my, radius int) bool {
	if mx == x && my == y {
		return false
	}
	return WithinBox(x, y, mx, my, radius)
}
