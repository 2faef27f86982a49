package analysis

import (
	"ec-simulator/internal/model"
	"ec-simulator/internal/simulation"
)

// Report is everything the dashboard renders for one simulation run.
type Report struct {
	Mode           model.Mode           `json:"mode"`
	Marketplaces   []model.Marketplace  `json:"marketplaces"`
	Overall        Summary              `json:"overall"`
	Plans          []PlanSummary        `json:"plans"`
	ByMarketplace  []MarketplaceSummary `json:"by_marketplace"`
	Costs          []CostBreakdown      `json:"costs"`
	Series         []MonthlySeries      `json:"series"`
	Recommendation Recommendation       `json:"recommendation"`
	Alerts         []Alert              `json:"alerts"`
}

func Analyze(res *simulation.Result, policy Policy) *Report {
	rows := res.Rows
	alerts := DeriveAlerts(rows, policy)
	if alerts == nil {
		alerts = []Alert{}
	}
	return &Report{
		Mode:           res.Config.Mode,
		Marketplaces:   res.Config.Marketplaces,
		Overall:        Overall(rows),
		Plans:          OrderedSummaries(rows),
		ByMarketplace:  SummarizeMarketplaces(rows),
		Costs:          Costs(rows),
		Series:         Series(rows),
		Recommendation: Recommend(Summarize(rows), policy.Baseline, policy),
		Alerts:         alerts,
	}
}
