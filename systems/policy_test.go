package systems

import (
	"math/rand"
	"testing"

	"github.com/pthm-cable/universe25/components"
)

func TestTargetStateDeterministicBands(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	tests := []struct {
		name    string
		traits  components.Traits
		density float64
		want    components.MentalState
	}{
		{"sparse", components.Traits{Aggression: 90, Grooming: 90}, 0.1, components.StateNormal},
		{"crowded sociable", components.Traits{Sociability: 80, Grooming: 80}, 0.7, components.StateStressed},
		{"crowded groomer", components.Traits{Sociability: 50, Grooming: 80}, 0.7, components.StateWithdrawn},
		{"crowded aggressor", components.Traits{Aggression: 80}, 0.7, components.StateAggressive},
		{"crowded default", components.Traits{Aggression: 70, Sociability: 70, Grooming: 70}, 0.65, components.StateStressed},
		{"extreme aggressor", components.Traits{Aggression: 60, Grooming: 50}, 0.9, components.StateAggressive},
		{"extreme default", components.Traits{Aggression: 50, Grooming: 60}, 0.8, components.StateWithdrawn},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TargetState(&tt.traits, tt.density, rng); got != tt.want {
				t.Errorf("TargetState mismatch: got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTargetStateStochasticBands(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	groomer := components.Traits{Grooming: 90}
	seen := map[components.MentalState]bool{}
	for range 500 {
		seen[TargetState(&groomer, 0.85, rng)] = true
	}
	if len(seen) != 2 || !seen[components.StateBeautifulOne] || !seen[components.StateWithdrawn] {
		t.Errorf("extreme-density groomer targets: got %v, want BeautifulOne and Withdrawn", seen)
	}

	seen = map[components.MentalState]bool{}
	for range 500 {
		seen[TargetState(&groomer, 0.45, rng)] = true
	}
	if len(seen) != 2 || !seen[components.StateStressed] || !seen[components.StateNormal] {
		t.Errorf("middle band targets: got %v, want Stressed and Normal", seen)
	}
}

func TestRoleFor(t *testing.T) {
	tests := []struct {
		state     components.MentalState
		parenting float64
		want      components.SocialRole
	}{
		{components.StateAggressive, 10, components.RoleAggressor},
		{components.StateWithdrawn, 10, components.RoleWithdrawn},
		{components.StateBeautifulOne, 10, components.RoleBeautifulOne},
		{components.StateStressed, 29.9, components.RoleNeglectfulParent},
		{components.StateNormal, 30, components.RoleNormal},
	}
	for _, tt := range tests {
		if got := RoleFor(tt.state, tt.parenting); got != tt.want {
			t.Errorf("RoleFor(%v, %v) = %v, want %v", tt.state, tt.parenting, got, tt.want)
		}
	}
}

func TestBeautifulOneTransitionBoostsGrooming(t *testing.T) {
	s := components.MouseState{Traits: components.Traits{Grooming: 95}}
	setState(handle(&s), components.StateBeautifulOne)
	if s.Traits.Grooming != 100 {
		t.Errorf("grooming mismatch: got %v, want 100", s.Traits.Grooming)
	}
	if s.Mind.Role != components.RoleBeautifulOne {
		t.Errorf("role mismatch: got %v", s.Mind.Role)
	}
}

func TestLitterSize(t *testing.T) {
	tests := []struct {
		density   float64
		parenting float64
		want      int
	}{
		{0, 70, 4},
		{0.29, 30, 4},
		{0.3, 70, 3},
		{0.6, 70, 2},
		{0.95, 70, 2},
		{0, 10, 3},
		{0.6, 10, 1},
	}
	for _, tt := range tests {
		if got := LitterSize(4, tt.density, tt.parenting); got != tt.want {
			t.Errorf("LitterSize(4, %v, %v) = %d, want %d", tt.density, tt.parenting, got, tt.want)
		}
	}
	if got := LitterSize(1, 0.9, 0); got != MinLitter {
		t.Errorf("LitterSize floor: got %d, want %d", got, MinLitter)
	}
}

func TestInherit(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	a := components.Traits{Aggression: 0, Sociability: 100, Parenting: 40, Grooming: 60}
	b := components.Traits{Aggression: 0, Sociability: 100, Parenting: 60, Grooming: 80}
	for range 1000 {
		c := Inherit(&a, &b, rng)
		if c.Aggression < 0 || c.Aggression > InheritJitter {
			t.Fatalf("aggression out of range: %v", c.Aggression)
		}
		if c.Sociability < 100-InheritJitter || c.Sociability > 100 {
			t.Fatalf("sociability out of range: %v", c.Sociability)
		}
		if c.Parenting < 40 || c.Parenting > 60 {
			t.Fatalf("parenting out of range: %v", c.Parenting)
		}
		if c.Grooming < 60 || c.Grooming > 80 {
			t.Fatalf("grooming out of range: %v", c.Grooming)
		}
	}
}

func TestNewFounder(t *testing.T) {
	rng := rand.New(rand.NewSource(4))
	genders := map[components.Gender]int{}
	for range 200 {
		s := NewFounder(1, 2, 0, rng)
		tr := s.Traits
		if tr.Aggression < 20 || tr.Aggression > 40 || tr.Sociability < 60 || tr.Sociability > 80 ||
			tr.Parenting < 60 || tr.Parenting > 80 || tr.Grooming < 40 || tr.Grooming > 60 {
			t.Fatalf("founder traits out of range: %+v", tr)
		}
		if s.Body.Hunger != 0 || s.Body.Energy != 100 || s.Body.Health != 100 || s.Reproduction.Drive != 0 {
			t.Fatalf("founder body mismatch: %+v", s.Body)
		}
		if !s.Identity.Alive {
			t.Fatal("founder not alive")
		}
		genders[s.Body.Gender]++
	}
	if genders[components.Male] == 0 || genders[components.Female] == 0 {
		t.Errorf("founder genders not mixed: %v", genders)
	}
}

func TestLeastCrowded(t *testing.T) {
	valid := func(w, h int) func(x, y int) bool {
		return func(x, y int) bool { return x >= 0 && x < w && y >= 0 && y < h }
	}
	empty := func(x, y int) int { return 0 }

	tests := []struct {
		name      string
		x, y      int
		w, h      int
		occupants func(x, y int) int
		want      components.Offset
		wantOK    bool
	}{
		{"empty neighbourhood", 1, 1, 3, 3, empty, components.Offset{DX: -1, DY: -1}, true},
		{"corner skips out of bounds", 0, 0, 3, 3, empty, components.Offset{DX: 0, DY: 1}, true},
		{"single cell grid", 0, 0, 1, 1, empty, components.Offset{}, false},
		{
			"prefers emptier cell", 1, 1, 3, 3,
			func(x, y int) int {
				if x == 2 && y == 2 {
					return 0
				}
				return 2
			},
			components.Offset{DX: 1, DY: 1}, true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := LeastCrowded(tt.x, tt.y, valid(tt.w, tt.h), tt.occupants)
			if ok != tt.wantOK || got != tt.want {
				t.Errorf("LeastCrowded = %+v, %v; want %+v, %v", got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestIsNearby(t *testing.T) {
	tests := []struct {
		mx, my int
		want   bool
	}{
		{5, 5, false},
		{4, 4, true},
		{6, 5, true},
		{7, 5, false},
	}
	for _, tt := range tests {
		if got := IsNearby(5, 5, tt.mx, tt.my, 1); got != tt.want {
			t.Errorf("IsNearby(5, 5, %d, %d, 1) = %v, want %v", tt.mx, tt.my, got, tt.want)
		}
	}
}

func TestChooseActionPriority(t *testing.T) {
	env := newFakeEnv(10, 10, 1)
	tests := []struct {
		name   string
		mutate func(s *components.MouseState)
		want   Action
	}{
		{"hungry", func(s *components.MouseState) { s.Body.Hunger = 71; s.Body.Energy = 10 }, ActionEat},
		{"tired", func(s *components.MouseState) { s.Body.Energy = 29; s.Reproduction.Drive = 90 }, ActionSleep},
		{"drive", func(s *components.MouseState) { s.Reproduction.Drive = 71 }, ActionSeekMate},
		{"withdrawn ignores drive", func(s *components.MouseState) {
			s.Reproduction.Drive = 90
			s.Mind.State = components.StateWithdrawn
		}, ActionHide},
		{"aggressive", func(s *components.MouseState) { s.Mind.State = components.StateAggressive }, ActionAttack},
		{"beautiful one", func(s *components.MouseState) { s.Mind.State = components.StateBeautifulOne }, ActionGroom},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := adult(components.Male, 3, 3)
			tt.mutate(&s)
			if got := chooseAction(handle(&s), env); got != tt.want {
				t.Errorf("chooseAction = %v, want %v", got, tt.want)
			}
		})
	}
}
