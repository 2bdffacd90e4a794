package colony

import (
	"github.com/pthm-cable/universe25/components"
	"github.com/pthm-cable/universe25/systems"
)

// Spatial queries scan the live set. Returned handles are valid until the
// next structural change, which never happens inside a mouse update.

// IsValidPosition reports whether (x, y) lies on the grid.
func (c *Colony) IsValidPosition(x, y int) bool {
	return x >= 0 && x < c.width && y >= 0 && y < c.height
}

// DensityFactor returns live population over capacity.
func (c *Colony) DensityFactor() float64 {
	if c.capacity <= 0 {
		return 0
	}
	return float64(len(c.index)) / float64(c.capacity)
}

// LocalDensity counts mice within the Chebyshev box around (x, y),
// including any mouse on (x, y) itself.
func (c *Colony) LocalDensity(x, y, radius int) int {
	n := 0
	query := c.filter.Query()
	for query.Next() {
		_, pos, _, _, _, _ := query.Get()
		if systems.WithinBox(x, y, pos.X, pos.Y, radius) {
			n++
		}
	}
	return n
}

// PotentialMates returns the mice m may mate with this tick.
func (c *Colony) PotentialMates(m systems.Mouse) []systems.Mouse {
	adultAge := c.cfg.Lifecycle.AdultAge
	var out []systems.Mouse
	query := c.filter.Query()
	for query.Next() {
		cand := queryMouse(&query)
		if systems.CanMate(m, cand, adultAge) {
			out = append(out, cand)
		}
	}
	return out
}

// NearbyMice returns live mice inside the radius box, excluding any on (x, y).
func (c *Colony) NearbyMice(x, y, radius int) []systems.Mouse {
	var out []systems.Mouse
	query := c.filter.Query()
	for query.Next() {
		id, pos, _, _, _, _ := query.Get()
		if id.Alive && systems.IsNearby(x, y, pos.X, pos.Y, radius) {
			out = append(out, queryMouse(&query))
		}
	}
	return out
}

// LeastCrowdedDirection returns the in-bounds neighbour offset with the
// fewest occupants.
func (c *Colony) LeastCrowdedDirection(x, y int) (components.Offset, bool) {
	var counts [3][3]int
	query := c.filter.Query()
	for query.Next() {
		_, pos, _, _, _, _ := query.Get()
		dx, dy := pos.X-x, pos.Y-y
		if dx >= -1 && dx <= 1 && dy >= -1 && dy <= 1 {
			counts[dx+1][dy+1]++
		}
	}
	return systems.LeastCrowded(x, y, c.IsValidPosition, func(nx, ny int) int {
		return counts[nx-x+1][ny-y+1]
	})
}

// queryMouse builds a handle for the query's current entity.
func queryMouse(q *mouseQuery) systems.Mouse {
	id, pos, body, traits, mind, repro := q.Get()
	return systems.Mouse{Entity: q.Entity(), ID: id, Pos: pos, Body: body, Traits: traits, Mind: mind, Repro: repro}
}
