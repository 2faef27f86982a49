package analysis

import (
	"ec-simulator/internal/model"
	"ec-simulator/internal/simulation"
)

// Totals are plain sums of already-rounded row values.
type Totals struct {
	Visits             int64 `json:"visits"`
	Revenue            int64 `json:"revenue"`
	COGS               int64 `json:"cogs"`
	Commission         int64 `json:"commission"`
	AdSpend            int64 `json:"ad_spend"`
	ContributionMargin int64 `json:"contribution_margin"`
}

func (t *Totals) add(r simulation.Row) {
	t.Visits += r.Visits
	t.Revenue += r.Revenue
	t.COGS += r.COGS
	t.Commission += r.Commission
	t.AdSpend += r.AdSpend
	t.ContributionMargin += r.ContributionMargin
}

// ROAS is revenue per unit of ad spend, 0 without ad spend.
func (t Totals) ROAS() float64 {
	if t.AdSpend <= 0 {
		return 0
	}
	return float64(t.Revenue) / float64(t.AdSpend)
}

// MarginRate is contribution margin over revenue, 0 without revenue.
func (t Totals) MarginRate() float64 {
	if t.Revenue <= 0 {
		return 0
	}
	return float64(t.ContributionMargin) / float64(t.Revenue)
}

// Summary is a set of totals with its derived ratios.
type Summary struct {
	Totals
	ROAS       float64 `json:"roas"`
	MarginRate float64 `json:"margin_rate"`
}

func summarize(t Totals) Summary {
	return Summary{Totals: t, ROAS: t.ROAS(), MarginRate: t.MarginRate()}
}

type PlanSummary struct {
	Plan model.PlanTier `json:"plan"`
	Summary
}

type MarketplaceSummary struct {
	Plan        model.PlanTier    `json:"plan"`
	Marketplace model.Marketplace `json:"marketplace"`
	Summary
	// RevenueShare is this marketplace's share of the plan's revenue.
	RevenueShare float64 `json:"revenue_share"`
}

// Summarize aggregates rows per plan.
func Summarize(rows []simulation.Row) map[model.PlanTier]PlanSummary {
	totals := map[model.PlanTier]*Totals{}
	for _, r := range rows {
		t, ok := totals[r.Plan]
		if !ok {
			t = &Totals{}
			totals[r.Plan] = t
		}
		t.add(r)
	}

	out := make(map[model.PlanTier]PlanSummary, len(totals))
	for plan, t := range totals {
		out[plan] = PlanSummary{Plan: plan, Summary: summarize(*t)}
	}
	return out
}

// OrderedSummaries returns the plan summaries in the order plans appear in rows.
func OrderedSummaries(rows []simulation.Row) []PlanSummary {
	byPlan := Summarize(rows)
	out := make([]PlanSummary, 0, len(byPlan))
	for _, plan := range planOrder(rows) {
		out = append(out, byPlan[plan])
	}
	return out
}

// SummarizeMarketplaces aggregates rows per plan and marketplace, in row order.
func SummarizeMarketplaces(rows []simulation.Row) []MarketplaceSummary {
	type key struct {
		plan model.PlanTier
		mp   model.Marketplace
	}
	totals := map[key]*Totals{}
	planRevenue := map[model.PlanTier]int64{}
	var order []key

	for _, r := range rows {
		k := key{r.Plan, r.Marketplace}
		t, ok := totals[k]
		if !ok {
			t = &Totals{}
			totals[k] = t
			order = append(order, k)
		}
		t.add(r)
		planRevenue[r.Plan] += r.Revenue
	}

	out := make([]MarketplaceSummary, 0, len(order))
	for _, k := range order {
		t := *totals[k]
		s := MarketplaceSummary{Plan: k.plan, Marketplace: k.mp, Summary: summarize(t)}
		if pr := planRevenue[k.plan]; pr > 0 {
			s.RevenueShare = float64(t.Revenue) / float64(pr)
		}
		out = append(out, s)
	}
	return out
}

// Overall sums every row regardless of plan.
func Overall(rows []simulation.Row) Summary {
	var t Totals
	for _, r := range rows {
		t.add(r)
	}
	return summarize(t)
}

// planOrder lists plans by first appearance.
func planOrder(rows []simulation.Row) []model.PlanTier {
	seen := map[model.PlanTier]bool{}
	var out []model.PlanTier
	for _, r := range rows {
		if !seen[r.Plan] {
			seen[r.Plan] = true
			out = append(out, r.Plan)
		}
	}
	return out
}
