// Package telemetry provides colony statistics, bookmarking, output and snapshots.
package telemetry

import (
	"encoding/json"
	"log/slog"

	"gonum.org/v1/gonum/stat"

	"github.com/pthm-cable/universe25/components"
)

// StateDistribution holds the percentage of the live population in each
// mental state, indexed by components.MentalState.
type StateDistribution [components.NumMentalStates]float64

// RoleDistribution holds the percentage of the live population in each
// social role, indexed by components.SocialRole.
type RoleDistribution [components.NumSocialRoles]float64

// NewStateDistribution converts per-state counts to percentages.
// All entries are zero when total is zero.
func NewStateDistribution(counts [components.NumMentalStates]int, total int) StateDistribution {
	var d StateDistribution
	if total == 0 {
		return d
	}
	for i, n := range counts {
		d[i] = float64(n) / float64(total) * 100
	}
	return d
}

// NewRoleDistribution converts per-role counts to percentages.
func NewRoleDistribution(counts [components.NumSocialRoles]int, total int) RoleDistribution {
	var d RoleDistribution
	if total == 0 {
		return d
	}
	for i, n := range counts {
		d[i] = float64(n) / float64(total) * 100
	}
	return d
}

// MarshalJSON encodes the distribution keyed by state name.
func (d StateDistribution) MarshalJSON() ([]byte, error) {
	names := components.MentalStateNames()
	m := make(map[string]float64, len(names))
	for i, name := range names {
		m[name] = d[i]
	}
	return json.Marshal(m)
}

// MarshalJSON encodes the distribution keyed by role name.
func (d RoleDistribution) MarshalJSON() ([]byte, error) {
	names := components.SocialRoleNames()
	m := make(map[string]float64, len(names))
	for i, name := range names {
		m[name] = d[i]
	}
	return json.Marshal(m)
}

// UnmarshalJSON decodes a distribution keyed by state name.
func (d *StateDistribution) UnmarshalJSON(b []byte) error {
	var m map[string]float64
	if err := json.Unmarshal(b, &m); err != nil {
		return err
	}
	for i, name := range components.MentalStateNames() {
		d[i] = m[name]
	}
	return nil
}

// UnmarshalJSON decodes a distribution keyed by role name.
func (d *RoleDistribution) UnmarshalJSON(b []byte) error {
	var m map[string]float64
	if err := json.Unmarshal(b, &m); err != nil {
		return err
	}
	for i, name := range components.SocialRoleNames() {
		d[i] = m[name]
	}
	return nil
}

// TickStats is the record produced by one colony tick.
type TickStats struct {
	Tick          int64             `json:"tick"`
	Population    int               `json:"population"`
	Births        int               `json:"births"`
	Deaths        int               `json:"deaths"`
	DensityFactor float64           `json:"density_factor"`
	Phase         components.Phase  `json:"phase"`
	States        StateDistribution `json:"state_distribution"`
	Roles         RoleDistribution  `json:"role_distribution"`
}

// LogValue implements slog.LogValuer for structured logging.
func (s TickStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int64("tick", s.Tick),
		slog.Int("population", s.Population),
		slog.Int("births", s.Births),
		slog.Int("deaths", s.Deaths),
		slog.Float64("density", s.DensityFactor),
		slog.String("phase", s.Phase.String()),
		slog.Float64("stressed_pct", s.States[components.StateStressed]),
		slog.Float64("withdrawn_pct", s.States[components.StateWithdrawn]),
		slog.Float64("aggressive_pct", s.States[components.StateAggressive]),
		slog.Float64("beautiful_one_pct", s.States[components.StateBeautifulOne]),
	)
}

// TickRecord is a flat struct for CSV export of TickStats.
type TickRecord struct {
	Tick          int64   `csv:"tick" db:"tick"`
	Population    int     `csv:"population" db:"population"`
	Births        int     `csv:"births" db:"births"`
	Deaths        int     `csv:"deaths" db:"deaths"`
	DensityFactor float64 `csv:"density_factor" db:"density_factor"`
	Phase         string  `csv:"phase" db:"phase"`

	StateNormal       float64 `csv:"state_normal_pct" db:"state_normal_pct"`
	StateStressed     float64 `csv:"state_stressed_pct" db:"state_stressed_pct"`
	StateWithdrawn    float64 `csv:"state_withdrawn_pct" db:"state_withdrawn_pct"`
	StateAggressive   float64 `csv:"state_aggressive_pct" db:"state_aggressive_pct"`
	StateBeautifulOne float64 `csv:"state_beautiful_one_pct" db:"state_beautiful_one_pct"`

	RoleNormal           float64 `csv:"role_normal_pct" db:"role_normal_pct"`
	RoleAggressor        float64 `csv:"role_aggressor_pct" db:"role_aggressor_pct"`
	RoleWithdrawn        float64 `csv:"role_withdrawn_pct" db:"role_withdrawn_pct"`
	RoleNeglectfulParent float64 `csv:"role_neglectful_parent_pct" db:"role_neglectful_parent_pct"`
	RoleBeautifulOne     float64 `csv:"role_beautiful_one_pct" db:"role_beautiful_one_pct"`
}

// ToCSV converts TickStats to a flat CSV-friendly struct.
func (s TickStats) ToCSV() TickRecord {
	return TickRecord{
		Tick:          s.Tick,
		Population:    s.Population,
		Births:        s.Births,
		Deaths:        s.Deaths,
		DensityFactor: s.DensityFactor,
		Phase:         s.Phase.String(),

		StateNormal:       s.States[components.StateNormal],
		StateStressed:     s.States[components.StateStressed],
		StateWithdrawn:    s.States[components.StateWithdrawn],
		StateAggressive:   s.States[components.StateAggressive],
		StateBeautifulOne: s.States[components.StateBeautifulOne],

		RoleNormal:           s.Roles[components.RoleNormal],
		RoleAggressor:        s.Roles[components.RoleAggressor],
		RoleWithdrawn:        s.Roles[components.RoleWithdrawn],
		RoleNeglectfulParent: s.Roles[components.RoleNeglectfulParent],
		RoleBeautifulOne:     s.Roles[components.RoleBeautifulOne],
	}
}

// GenderCounts counts live mice per gender.
type GenderCounts struct {
	Male   int `json:"male"`
	Female int `json:"female"`
}

// AgeGroups counts live mice below and at or above adult age.
type AgeGroups struct {
	Juvenile int `json:"juvenile"`
	Adult    int `json:"adult"`
}

// TraitAverages holds the population mean of each heritable trait.
type TraitAverages struct {
	Aggression  float64 `json:"aggression"`
	Sociability float64 `json:"sociability"`
	Parenting   float64 `json:"parenting"`
	Grooming    float64 `json:"grooming"`
}

// AverageTraits returns the mean of each trait. All zero for no mice.
func AverageTraits(traits []components.Traits) TraitAverages {
	if len(traits) == 0 {
		return TraitAverages{}
	}
	agg := make([]float64, len(traits))
	soc := make([]float64, len(traits))
	par := make([]float64, len(traits))
	groom := make([]float64, len(traits))
	for i, t := range traits {
		agg[i] = t.Aggression
		soc[i] = t.Sociability
		par[i] = t.Parenting
		groom[i] = t.Grooming
	}
	return TraitAverages{
		Aggression:  stat.Mean(agg, nil),
		Sociability: stat.Mean(soc, nil),
		Parenting:   stat.Mean(par, nil),
		Grooming:    stat.Mean(groom, nil),
	}
}

// AggregateStats is the colony-wide summary view.
type AggregateStats struct {
	Population    int           `json:"population"`
	DeadCount     int           `json:"dead_count"`
	DensityFactor float64       `json:"density_factor"`
	Phase         string        `json:"phase"`
	Tick          int64         `json:"tick"`
	GenderRatio   GenderCounts  `json:"gender_ratio"`
	AgeGroups     AgeGroups     `json:"age_groups"`
	AvgTraits     TraitAverages `json:"avg_traits"`
	Mortality     Mortality     `json:"mortality"`
}

// LogValue implements slog.LogValuer for structured logging.
func (s AggregateStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int64("tick", s.Tick),
		slog.Int("population", s.Population),
		slog.Int("dead", s.DeadCount),
		slog.Float64("density", s.DensityFactor),
		slog.String("phase", s.Phase),
		slog.Int("male", s.GenderRatio.Male),
		slog.Int("female", s.GenderRatio.Female),
		slog.Int("juvenile", s.AgeGroups.Juvenile),
		slog.Int("adult", s.AgeGroups.Adult),
		slog.Float64("avg_aggression", s.AvgTraits.Aggression),
		slog.Float64("avg_sociability", s.AvgTraits.Sociability),
		slog.Float64("avg_parenting", s.AvgTraits.Parenting),
		slog.Float64("avg_grooming", s.AvgTraits.Grooming),
		slog.Float64("mean_lifespan", s.Mortality.MeanLifespan),
	)
}
