package simulation

import (
	"fmt"

	"ec-simulator/internal/marketplace"
	"ec-simulator/internal/model"
)

// Conversion uplift coefficients. The same formula applies to every
// marketplace even though points and FBA are marketplace-specific settings.
const (
	pointUpliftPerMultiple = 0.01
	fbaUpliftAtFullUsage   = 0.1
)

type Engine struct{}

func New() *Engine { return &Engine{} }

// planBase is the plan-scaled part of the configuration shared by every
// month and marketplace of one plan.
type planBase struct {
	adSpend     float64
	adVisits    float64
	organicBase float64
	cvr         float64
}

// Run executes the 12-month simulation for every active plan and marketplace.
// The config is normalized first, so an empty marketplace selection runs the
// default marketplace instead of failing.
func (e *Engine) Run(cfg model.SimulationConfig) (*Result, error) {
	cfg = cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	rules := make([]marketplace.Rules, 0, len(cfg.Marketplaces))
	for _, m := range cfg.Marketplaces {
		r, err := marketplace.For(m, cfg)
		if err != nil {
			return nil, err
		}
		rules = append(rules, r)
	}

	plans := cfg.ActivePlans()
	rows := make([]Row, 0, len(plans)*model.MonthsPerYear*len(rules))

	for _, plan := range plans {
		base := scalePlan(cfg, plan)
		for mIdx := 0; mIdx < model.MonthsPerYear; mIdx++ {
			month := mIdx + 1
			sIdx := cfg.Seasonality[mIdx]

			organic := base.organicBase * sIdx
			baseTraffic := organic + base.adVisits

			for _, r := range rules {
				row, err := buildRow(cfg, plan.Name, base, month, sIdx, baseTraffic, r)
				if err != nil {
					return nil, fmt.Errorf("%s %s month %d: %w", plan.Name, r.Marketplace(), month, err)
				}
				rows = append(rows, row)
			}
		}
	}

	return &Result{
		Config: cfg,
		Plans:  plans,
		Rows:   rows,
	}, nil
}

func scalePlan(cfg model.SimulationConfig, plan model.Plan) planBase {
	m := plan.Multipliers
	b := planBase{
		adSpend:     cfg.Marketing.AdBudget * m.AdBudget,
		organicBase: cfg.General.OrganicVisits * m.Traffic,
	}
	// A zero CPC contributes no click traffic; the budget is still spent.
	if cfg.Marketing.TargetCPC > 0 {
		b.adVisits = b.adSpend / cfg.Marketing.TargetCPC
	}
	b.cvr = conversionRate(cfg, cfg.General.BaseCVR*m.CVR)
	return b
}

func conversionRate(cfg model.SimulationConfig, base float64) float64 {
	cvr := base
	cvr *= 1 + cfg.Rakuten.PointMultiplier*pointUpliftPerMultiple
	cvr *= 1 + cfg.Amazon.FBAUsage*fbaUpliftAtFullUsage
	return cvr
}

func buildRow(cfg model.SimulationConfig, plan model.PlanTier, base planBase, month int, sIdx, baseTraffic float64, r marketplace.Rules) (Row, error) {
	traffic := baseTraffic * r.TrafficMultiplier(month)

	gross := traffic * base.cvr * cfg.General.AverageOrderValue * r.CheckoutFactor()
	cogs := gross * cfg.General.COGSRate
	feeRate := r.CommissionRate()
	fee := gross * feeRate

	var rd wholeRounder
	visits := rd.round("visits", traffic)
	revenue := rd.round("revenue", gross)
	cogsR := rd.round("cogs", cogs)
	feeR := rd.round("commission", fee)
	adR := rd.round("ad_spend", base.adSpend)
	if rd.err != nil {
		return Row{}, rd.err
	}
	// Derived from the rounded parts so the identity holds exactly per row.
	margin, err := sumWhole(revenue, -cogsR, -feeR, -adR)
	if err != nil {
		return Row{}, fmt.Errorf("contribution_margin: %w", err)
	}

	return Row{
		Plan:        plan,
		Month:       month,
		MonthLabel:  monthLabel(month),
		Marketplace: r.Marketplace(),

		SeasonalityIndex: sIdx,
		Visits:           visits,
		CVR:              roundTo(base.cvr, 4),

		Revenue:    revenue,
		COGS:       cogsR,
		Commission: feeR,
		AdSpend:    adR,

		ContributionMargin: margin,

		CommissionRate: feeRate,
	}, nil
}
