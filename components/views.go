package components

// MouseState is a full value copy of every component of one mouse.
// It is the unit of snapshots and the input for inserting fully specified mice.
type MouseState struct {
	Identity     Identity     `json:"identity"`
	Position     Position     `json:"position"`
	Body         Body         `json:"body"`
	Traits       Traits       `json:"traits"`
	Mind         Mind         `json:"mind"`
	Reproduction Reproduction `json:"reproduction"`
}

// Clone returns a deep copy (the children list is not shared).
func (s MouseState) Clone() MouseState {
	out := s
	if s.Reproduction.Children != nil {
		out.Reproduction.Children = append([]MouseID(nil), s.Reproduction.Children...)
	}
	return out
}

// MouseInfo is the read-only per-mouse view handed to hosts and observers.
type MouseInfo struct {
	ID                MouseID  `json:"id"`
	Age               int      `json:"age"`
	Gender            string   `json:"gender"`
	Position          Position `json:"position"`
	Hunger            float64  `json:"hunger"`
	Energy            float64  `json:"energy"`
	ReproductionDrive float64  `json:"reproduction_drive"`
	Aggression        float64  `json:"aggression"`
	Sociability       float64  `json:"sociability"`
	Parenting         float64  `json:"parenting"`
	Grooming          float64  `json:"grooming"`
	MentalState       string   `json:"mental_state"`
	PhysicalHealth    float64  `json:"physical_health"`
	SocialRole        string   `json:"social_role"`
	IsPregnant        bool     `json:"is_pregnant"`
	ChildrenCount     int      `json:"children_count"`
	IsAlive           bool     `json:"is_alive"`
}

// Info builds the read-only view of this state.
func (s *MouseState) Info() MouseInfo {
	return MouseInfo{
		ID:                s.Identity.ID,
		Age:               s.Body.Age,
		Gender:            s.Body.Gender.String(),
		Position:          s.Position,
		Hunger:            s.Body.Hunger,
		Energy:            s.Body.Energy,
		ReproductionDrive: s.Reproduction.Drive,
		Aggression:        s.Traits.Aggression,
		Sociability:       s.Traits.Sociability,
		Parenting:         s.Traits.Parenting,
		Grooming:          s.Traits.Grooming,
		MentalState:       s.Mind.State.String(),
		PhysicalHealth:    s.Body.Health,
		SocialRole:        s.Mind.Role.String(),
		IsPregnant:        s.Reproduction.Pregnant,
		ChildrenCount:     len(s.Reproduction.Children),
		IsAlive:           s.Identity.Alive,
	}
}
