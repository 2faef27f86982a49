package model

// Mode selects between a single simulation and three parallel plan scenarios.
type Mode string

const (
	ModeSingle Mode = "single"
	ModeMulti  Mode = "multi"
)

func (m Mode) Valid() bool {
	return m == ModeSingle || m == ModeMulti
}

// PlanTier names a multiplier bundle used to run what-if scenarios from one base config.
type PlanTier string

const (
	PlanDefault      PlanTier = "default"
	PlanConservative PlanTier = "conservative"
	PlanBalanced     PlanTier = "balanced"
	PlanAggressive   PlanTier = "aggressive"
)

// PlanTiers is the fixed multi-plan set, in output order.
var PlanTiers = []PlanTier{PlanConservative, PlanBalanced, PlanAggressive}

// PlanMultipliers scale the base configuration for one plan.
// AdBudget scales the monthly ad budget, CVR the base conversion rate,
// Traffic the organic visit baseline.
type PlanMultipliers struct {
	AdBudget float64
	CVR      float64
	Traffic  float64
}

// Plan is a resolved tier with its multipliers.
type Plan struct {
	Name        PlanTier
	Multipliers PlanMultipliers
}

var identityMultipliers = PlanMultipliers{AdBudget: 1.0, CVR: 1.0, Traffic: 1.0}

// DefaultPlanMultipliers returns a fresh copy of the built-in tier table.
func DefaultPlanMultipliers() map[PlanTier]PlanMultipliers {
	return map[PlanTier]PlanMultipliers{
		PlanConservative: {AdBudget: 0.5, CVR: 1.00, Traffic: 1.00},
		PlanBalanced:     {AdBudget: 1.0, CVR: 1.05, Traffic: 1.10},
		PlanAggressive:   {AdBudget: 2.0, CVR: 1.15, Traffic: 1.25},
	}
}

func (t PlanTier) Valid() bool {
	switch t {
	case PlanConservative, PlanBalanced, PlanAggressive:
		return true
	default:
		return false
	}
}
