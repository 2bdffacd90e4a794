// Package components defines ECS components for the colony simulation.
package components

// MouseID identifies a mouse for its whole lifetime. Zero means "none".
type MouseID uint64

// Position is an integer grid cell.
type Position struct {
	X, Y int
}

// Offset is a relative grid step.
type Offset struct {
	DX, DY int
}

// Identity holds identity, lineage and liveness.
// Parent IDs are weak references resolved through the colony registry.
type Identity struct {
	ID         MouseID `inspect:"label"`
	Parent1    MouseID `inspect:"label"`
	Parent2    MouseID `inspect:"label"`
	Generation int     `inspect:"label"`
	BornTick   int64   `inspect:"label"`
	Alive      bool    `inspect:"bool"`
}

// Body holds physiology. Hunger, Energy and Health live in [0, 100].
type Body struct {
	Age    int     `inspect:"label"` // ticks
	Hunger float64 `inspect:"bar,max:100"`
	Energy float64 `inspect:"bar,max:100"`
	Health float64 `inspect:"bar,max:100"`
	Gender Gender  `inspect:"label"`
}

// Traits holds the heritable traits, each in [0, 100].
type Traits struct {
	Aggression  float64 `inspect:"bar,max:100"`
	Sociability float64 `inspect:"bar,max:100"`
	Parenting   float64 `inspect:"bar,max:100"`
	Grooming    float64 `inspect:"bar,max:100"`
}

// Mind holds the behavioural state. Role is derived from State and
// Parenting on every state transition and is never set on its own.
type Mind struct {
	State           MentalState `inspect:"label"`
	Role            SocialRole  `inspect:"label"`
	LocalDensity    int         `inspect:"label"` // mice within radius 2 at last evaluation
	LastInteraction int64       `inspect:"label"` // tick of the last socialize event
}

// Reproduction holds mating and pregnancy state.
// A pregnant mouse always has Timer in [0, gestation).
type Reproduction struct {
	Drive      float64   `inspect:"bar,max:100"`
	Pregnant   bool      `inspect:"bool"`
	Timer      int       `inspect:"label"` // ticks since conception
	Mate       MouseID   `inspect:"label"` // father of the current pregnancy
	MateTraits Traits    `inspect:"skip"`  // father's heritable traits captured at conception
	LastMating int64     `inspect:"label"`
	Children   []MouseID `inspect:"skip"`
}
