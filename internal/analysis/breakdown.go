package analysis

import (
	"ec-simulator/internal/model"
	"ec-simulator/internal/simulation"
)

// CostBreakdown splits a plan's revenue into its cost components.
// Margin is clamped at 0 so the parts can be drawn as a composition.
type CostBreakdown struct {
	Plan       model.PlanTier `json:"plan"`
	COGS       int64          `json:"cogs"`
	Commission int64          `json:"commission"`
	AdSpend    int64          `json:"ad_spend"`
	Margin     int64          `json:"margin"`
}

func Costs(rows []simulation.Row) []CostBreakdown {
	out := []CostBreakdown{}
	for _, s := range OrderedSummaries(rows) {
		out = append(out, CostBreakdown{
			Plan:       s.Plan,
			COGS:       s.COGS,
			Commission: s.Commission,
			AdSpend:    s.AdSpend,
			Margin:     max(s.ContributionMargin, 0),
		})
	}
	return out
}

// MonthlySeries is one chart line: a plan/marketplace pair over twelve months.
type MonthlySeries struct {
	Plan        model.PlanTier    `json:"plan"`
	Marketplace model.Marketplace `json:"marketplace"`
	Labels      []string          `json:"labels"`
	Visits      []int64           `json:"visits"`
	Revenue     []int64           `json:"revenue"`
	Margin      []int64           `json:"contribution_margin"`
}

func Series(rows []simulation.Row) []MonthlySeries {
	type key struct {
		plan model.PlanTier
		mp   model.Marketplace
	}
	idx := map[key]int{}
	out := []MonthlySeries{}

	for _, r := range rows {
		k := key{r.Plan, r.Marketplace}
		i, ok := idx[k]
		if !ok {
			i = len(out)
			idx[k] = i
			out = append(out, MonthlySeries{Plan: r.Plan, Marketplace: r.Marketplace})
		}
		s := &out[i]
		s.Labels = append(s.Labels, r.MonthLabel)
		s.Visits = append(s.Visits, r.Visits)
		s.Revenue = append(s.Revenue, r.Revenue)
		s.Margin = append(s.Margin, r.ContributionMargin)
	}
	return out
}
