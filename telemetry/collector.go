package telemetry

import "github.com/pthm-cable/universe25/components"

// Mortality summarizes all deaths since the colony was created.
type Mortality struct {
	OldAge       int     `json:"old_age"`
	Starvation   int     `json:"starvation"`
	Injury       int     `json:"injury"`
	MeanLifespan float64 `json:"mean_lifespan"` // ticks
}

// Collector accumulates birth and death events within a tick and
// keeps cumulative mortality counters.
type Collector struct {
	// Event counters for the current tick
	births int
	deaths int

	// Cumulative
	totalBirths int
	totalDeaths int
	byCause     [components.NumDeathCauses]int
	lifespanSum float64
}

// NewCollector creates a new stats collector.
func NewCollector() *Collector {
	return &Collector{}
}

// RecordBirth records a newborn registered with the colony.
func (c *Collector) RecordBirth() {
	c.births++
	c.totalBirths++
}

// RecordDeath records a death with its cause and the age reached.
func (c *Collector) RecordDeath(cause components.DeathCause, age int) {
	c.deaths++
	c.totalDeaths++
	if int(cause) < len(c.byCause) {
		c.byCause[cause]++
	}
	c.lifespanSum += float64(age)
}

// Flush returns the current tick's counts and resets them.
func (c *Collector) Flush() (births, deaths int) {
	births, deaths = c.births, c.deaths
	c.births = 0
	c.deaths = 0
	return births, deaths
}

// TotalBirths returns all births recorded so far.
func (c *Collector) TotalBirths() int {
	return c.totalBirths
}

// TotalDeaths returns all deaths recorded so far.
func (c *Collector) TotalDeaths() int {
	return c.totalDeaths
}

// Mortality returns the cumulative death summary.
func (c *Collector) Mortality() Mortality {
	m := Mortality{
		OldAge:     c.byCause[components.CauseOldAge],
		Starvation: c.byCause[components.CauseStarvation],
		Injury:     c.byCause[components.CauseInjury],
	}
	if c.totalDeaths > 0 {
		m.MeanLifespan = c.lifespanSum / float64(c.totalDeaths)
	}
	return m
}

// Restore seeds the cumulative counters, e.g. from a snapshot.
func (c *Collector) Restore(totalBirths int, m Mortality) {
	c.totalBirths = totalBirths
	c.byCause = [components.NumDeathCauses]int{}
	c.byCause[components.CauseOldAge] = m.OldAge
	c.byCause[components.CauseStarvation] = m.Starvation
	c.byCause[components.CauseInjury] = m.Injury
	c.totalDeaths = m.OldAge + m.Starvation + m.Injury
	c.lifespanSum = m.MeanLifespan * float64(c.totalDeaths)
}
