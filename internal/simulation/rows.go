package simulation

import (
	"time"

	"ec-simulator/internal/model"
)

// Row is one (plan, month, marketplace) line of simulation output.
// Monetary fields are whole currency units, rounded once at construction;
// aggregation only ever sums them.
type Row struct {
	Plan        model.PlanTier
	Month       int // 1..12
	MonthLabel  string
	Marketplace model.Marketplace

	SeasonalityIndex float64
	Visits           int64
	CVR              float64 // rounded to 4 decimals

	Revenue            int64
	COGS               int64
	Commission         int64
	AdSpend            int64
	ContributionMargin int64

	CommissionRate float64
}

// Result holds the full output table of one run. Results may be shared
// through the memo cache, so callers treat them as read-only.
type Result struct {
	Config model.SimulationConfig // normalized
	Plans  []model.Plan
	Rows   []Row
}

// PlanNames lists the simulated plans in output order.
func (r *Result) PlanNames() []model.PlanTier {
	out := make([]model.PlanTier, 0, len(r.Plans))
	for _, p := range r.Plans {
		out = append(out, p.Name)
	}
	return out
}

// RowsForPlan returns the rows of one plan, preserving order.
func (r *Result) RowsForPlan(plan model.PlanTier) []Row {
	out := make([]Row, 0, len(r.Rows)/max(len(r.Plans), 1))
	for _, row := range r.Rows {
		if row.Plan == plan {
			out = append(out, row)
		}
	}
	return out
}

// FilterMarketplace keeps the rows for a single marketplace.
func FilterMarketplace(rows []Row, m model.Marketplace) []Row {
	out := []Row{}
	for _, row := range rows {
		if row.Marketplace == m {
			out = append(out, row)
		}
	}
	return out
}

func monthLabel(month int) string {
	return time.Month(month).String()[:3]
}
