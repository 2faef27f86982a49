package model

import (
	"errors"
	"fmt"
	"math"
)

// GeneralParams describes the shop itself.
// Units:
// - CurrentMonthlySales, AverageOrderValue: currency units (yen)
// - COGSRate, BaseCVR: fraction 0..1
// - OrganicVisits: visits per month
type GeneralParams struct {
	CurrentMonthlySales float64 // informational only
	AverageOrderValue   float64
	COGSRate            float64
	OrganicVisits       float64
	BaseCVR             float64
}

// MarketingParams describes paid acquisition.
// TargetCPC of 0 disables ad-driven traffic; the budget is still spent.
type MarketingParams struct {
	AdBudget   float64
	TargetCPC  float64
	TargetROAS float64 // informational only
}

type AmazonParams struct {
	BuyBoxRate    float64
	FBAUsage      float64
	PrimeDayBoost float64
}

type RakutenParams struct {
	SuperSaleBoost  float64
	PointMultiplier float64
}

type YahooParams struct {
	FiveDayBoost float64
	PROptionRate float64 // added on top of the base commission
}

// DefaultSeasonality is the per-month organic traffic index, January first.
var DefaultSeasonality = []float64{0.9, 0.8, 1.2, 1.0, 1.0, 1.3, 1.2, 0.9, 1.2, 1.0, 1.1, 1.5}

const MonthsPerYear = 12

// SimulationConfig is the immutable input bundle for one simulation request.
type SimulationConfig struct {
	General   GeneralParams
	Marketing MarketingParams

	Marketplaces []Marketplace

	Amazon  AmazonParams
	Rakuten RakutenParams
	Yahoo   YahooParams

	Seasonality []float64

	// Plans is only consulted in ModeMulti.
	Plans map[PlanTier]PlanMultipliers
	Mode  Mode
}

// DefaultConfig mirrors the dashboard's initial form values.
func DefaultConfig() SimulationConfig {
	return SimulationConfig{
		General: GeneralParams{
			CurrentMonthlySales: 5_000_000,
			AverageOrderValue:   5_000,
			COGSRate:            0.30,
			OrganicVisits:       30_000,
			BaseCVR:             0.02,
		},
		Marketing: MarketingParams{
			AdBudget:   500_000,
			TargetCPC:  50,
			TargetROAS: 3.0,
		},
		Marketplaces: append([]Marketplace(nil), AllMarketplaces...),
		Amazon: AmazonParams{
			BuyBoxRate:    0.90,
			FBAUsage:      0.80,
			PrimeDayBoost: 2.5,
		},
		Rakuten: RakutenParams{
			SuperSaleBoost:  3.0,
			PointMultiplier: 5.0,
		},
		Yahoo: YahooParams{
			FiveDayBoost: 1.5,
			PROptionRate: 0.05,
		},
		Seasonality: append([]float64(nil), DefaultSeasonality...),
		Plans:       DefaultPlanMultipliers(),
		Mode:        ModeSingle,
	}
}

// Normalize returns an independent copy with every optional part filled in.
// An empty marketplace selection falls back to DefaultMarketplace; duplicates are
// dropped and the order becomes canonical.
func (c SimulationConfig) Normalize() SimulationConfig {
	out := c

	seen := make(map[Marketplace]bool, len(c.Marketplaces))
	for _, m := range c.Marketplaces {
		seen[m] = true
	}
	out.Marketplaces = make([]Marketplace, 0, len(AllMarketplaces))
	for _, m := range AllMarketplaces {
		if seen[m] {
			out.Marketplaces = append(out.Marketplaces, m)
		}
	}
	// Unknown identifiers are kept at the end so Validate can report them.
	for _, m := range c.Marketplaces {
		if !m.Valid() {
			out.Marketplaces = append(out.Marketplaces, m)
		}
	}
	if len(out.Marketplaces) == 0 {
		out.Marketplaces = []Marketplace{DefaultMarketplace}
	}

	if len(c.Seasonality) == 0 {
		out.Seasonality = append([]float64(nil), DefaultSeasonality...)
	} else {
		out.Seasonality = append([]float64(nil), c.Seasonality...)
	}

	out.Plans = DefaultPlanMultipliers()
	for tier, m := range c.Plans {
		out.Plans[tier] = m
	}

	if out.Mode == "" {
		out.Mode = ModeSingle
	}
	return out
}

// Enabled reports whether m takes part in the simulation.
func (c SimulationConfig) Enabled(m Marketplace) bool {
	for _, x := range c.Marketplaces {
		if x == m {
			return true
		}
	}
	return false
}

// ActivePlans returns the plans to simulate: the single synthetic default plan,
// or exactly the three tiers in multi-plan mode.
func (c SimulationConfig) ActivePlans() []Plan {
	if c.Mode != ModeMulti {
		return []Plan{{Name: PlanDefault, Multipliers: identityMultipliers}}
	}
	plans := make([]Plan, 0, len(PlanTiers))
	defaults := DefaultPlanMultipliers()
	for _, tier := range PlanTiers {
		m, ok := c.Plans[tier]
		if !ok {
			m = defaults[tier]
		}
		plans = append(plans, Plan{Name: tier, Multipliers: m})
	}
	return plans
}

func (c SimulationConfig) Validate() error {
	if err := c.validateFinite(); err != nil {
		return err
	}

	g := c.General
	if g.AverageOrderValue <= 0 {
		return errors.New("AverageOrderValue must be > 0")
	}
	if !unit(g.COGSRate) {
		return errors.New("COGSRate must be in [0, 1]")
	}
	if g.OrganicVisits < 0 {
		return errors.New("OrganicVisits must be >= 0")
	}
	if !unit(g.BaseCVR) {
		return errors.New("BaseCVR must be in [0, 1]")
	}

	if c.Marketing.AdBudget < 0 {
		return errors.New("AdBudget must be >= 0")
	}
	if c.Marketing.TargetCPC < 0 {
		return errors.New("TargetCPC must be >= 0")
	}

	if len(c.Marketplaces) == 0 {
		return errors.New("at least one marketplace must be enabled")
	}
	for _, m := range c.Marketplaces {
		if !m.Valid() {
			return fmt.Errorf("unknown marketplace %q", m)
		}
	}

	if !unit(c.Amazon.BuyBoxRate) {
		return errors.New("Amazon.BuyBoxRate must be in [0, 1]")
	}
	if !unit(c.Amazon.FBAUsage) {
		return errors.New("Amazon.FBAUsage must be in [0, 1]")
	}
	if c.Amazon.PrimeDayBoost < 1 {
		return errors.New("Amazon.PrimeDayBoost must be >= 1")
	}
	if c.Rakuten.SuperSaleBoost < 1 {
		return errors.New("Rakuten.SuperSaleBoost must be >= 1")
	}
	if c.Rakuten.PointMultiplier < 1 {
		return errors.New("Rakuten.PointMultiplier must be >= 1")
	}
	if c.Yahoo.FiveDayBoost < 1 {
		return errors.New("Yahoo.FiveDayBoost must be >= 1")
	}
	if !unit(c.Yahoo.PROptionRate) {
		return errors.New("Yahoo.PROptionRate must be in [0, 1]")
	}

	if len(c.Seasonality) != MonthsPerYear {
		return fmt.Errorf("Seasonality must have %d entries, got %d", MonthsPerYear, len(c.Seasonality))
	}
	for i, s := range c.Seasonality {
		if s <= 0 {
			return fmt.Errorf("Seasonality[%d] must be > 0", i)
		}
	}

	if !c.Mode.Valid() {
		return fmt.Errorf("unknown mode %q", c.Mode)
	}
	for tier, m := range c.Plans {
		if !tier.Valid() {
			return fmt.Errorf("unknown plan tier %q", tier)
		}
		if m.AdBudget < 0 || m.CVR < 0 || m.Traffic < 0 {
			return fmt.Errorf("plan %s multipliers must be >= 0", tier)
		}
	}
	return nil
}

// validateFinite rejects NaN and infinities, which slip past every ordered comparison.
func (c SimulationConfig) validateFinite() error {
	fields := []struct {
		name string
		v    float64
	}{
		{"CurrentMonthlySales", c.General.CurrentMonthlySales},
		{"AverageOrderValue", c.General.AverageOrderValue},
		{"COGSRate", c.General.COGSRate},
		{"OrganicVisits", c.General.OrganicVisits},
		{"BaseCVR", c.General.BaseCVR},
		{"AdBudget", c.Marketing.AdBudget},
		{"TargetCPC", c.Marketing.TargetCPC},
		{"TargetROAS", c.Marketing.TargetROAS},
		{"Amazon.BuyBoxRate", c.Amazon.BuyBoxRate},
		{"Amazon.FBAUsage", c.Amazon.FBAUsage},
		{"Amazon.PrimeDayBoost", c.Amazon.PrimeDayBoost},
		{"Rakuten.SuperSaleBoost", c.Rakuten.SuperSaleBoost},
		{"Rakuten.PointMultiplier", c.Rakuten.PointMultiplier},
		{"Yahoo.FiveDayBoost", c.Yahoo.FiveDayBoost},
		{"Yahoo.PROptionRate", c.Yahoo.PROptionRate},
	}
	for _, f := range fields {
		if !finite(f.v) {
			return fmt.Errorf("%s must be a finite number", f.name)
		}
	}
	for i, s := range c.Seasonality {
		if !finite(s) {
			return fmt.Errorf("Seasonality[%d] must be a finite number", i)
		}
	}
	for tier, m := range c.Plans {
		if !finite(m.AdBudget) || !finite(m.CVR) || !finite(m.Traffic) {
			return fmt.Errorf("plan %s multipliers must be finite numbers", tier)
		}
	}
	return nil
}

func finite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}

func unit(x float64) bool {
	return x >= 0 && x <= 1
}
