package systems

// Mental state policy
const (
	StressedDensity    = 0.3 // Below this everyone drifts to Normal
	CrowdedDensity     = 0.6 // Trait-driven state selection from here
	ExtremeDensity     = 0.8 // Withdrawal, Beautiful Ones and aggression from here
	StressChance       = 0.3 // Chance of a Stressed target in the middle band
	BeautifulOneChance = 0.4 // Chance a high-grooming mouse targets BeautifulOne at extreme density
	TransitionChance   = 0.1 // Per-tick chance of moving to the target state

	CrowdedSociability = 70.0
	CrowdedGrooming    = 70.0
	CrowdedAggression  = 70.0
	ExtremeGrooming    = 60.0
	ExtremeAggression  = 50.0

	BeautifulOneGrooming = 10.0 // Grooming gained on becoming a Beautiful One
	NeglectParenting     = 30.0 // Parenting below this marks a neglectful parent
)

// Action policy
const (
	HungerThreshold    = 70.0
	EatAmount          = 30.0
	EnergyThreshold    = 30.0
	SleepAmount        = 20.0
	DriveThreshold     = 70.0
	SocializeChance    = 0.3 // Normal mice socialize, otherwise explore
	StressedExplore    = 0.5 // Stressed mice explore, otherwise hide
	SociabilityGain    = 0.1
	AttackDamage       = 0.2 // Damage per point of aggression
	GroomHeal          = 0.2
	GroomMoveChance    = 0.2
	NearbyRadius       = 1
	LocalDensityRadius = 2
)

// Reproduction policy
const (
	MateAvoidDensity   = 0.7 // Above this, crowding may abort a mating attempt
	MateAvoidChance    = 0.7
	MateRadius         = 1
	LitterDensityLow   = 0.3 // Litter -1 from here
	LitterDensityHigh  = 0.6 // Litter -2 from here
	MiscarriageDensity = 0.9 // Above this, each offspring may be lost
	MiscarriageChance  = 0.7
	AbandonChance      = 0.5
	AbandonPenalty     = 20.0
	InheritJitter      = 10.0
	MinLitter          = 1
)

// Founder trait ranges, inclusive integer draws
const (
	FounderAggressionMin  = 20
	FounderAggressionMax  = 40
	FounderSociabilityMin = 60
	FounderSociabilityMax = 80
	FounderParentingMin   = 60
	FounderParentingMax   = 80
	FounderGroomingMin    = 40
	FounderGroomingMax    = 60
)
