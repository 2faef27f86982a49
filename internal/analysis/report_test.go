package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ec-simulator/internal/model"
	"ec-simulator/internal/simulation"
)

func multiResult(t *testing.T) *simulation.Result {
	t.Helper()
	cfg := model.DefaultConfig()
	cfg.Mode = model.ModeMulti
	res, err := simulation.New().Run(cfg)
	require.NoError(t, err)
	return res
}

func TestSummarize_MatchesRowSums(t *testing.T) {
	res := multiResult(t)

	sums := Summarize(res.Rows)
	require.Len(t, sums, 3)
	for _, plan := range res.PlanNames() {
		var revenue, margin int64
		for _, r := range res.RowsForPlan(plan) {
			revenue += r.Revenue
			margin += r.ContributionMargin
		}
		assert.Equal(t, revenue, sums[plan].Revenue)
		assert.Equal(t, margin, sums[plan].ContributionMargin)
	}

	assert.Equal(t, sums, Summarize(res.Rows))
}

func TestSummarize_ZeroGuards(t *testing.T) {
	sums := Summarize([]simulation.Row{row(model.PlanDefault, model.MarketplaceAmazon, 1, 0, 0, 0)})
	s := sums[model.PlanDefault]
	assert.Zero(t, s.ROAS)
	assert.Zero(t, s.MarginRate)
}

func TestSummarizeMarketplaces_SharesSumToOne(t *testing.T) {
	res := multiResult(t)

	shares := map[model.PlanTier]float64{}
	for _, ms := range SummarizeMarketplaces(res.Rows) {
		shares[ms.Plan] += ms.RevenueShare
	}
	require.Len(t, shares, 3)
	for plan, total := range shares {
		assert.InDelta(t, 1.0, total, 1e-9, "plan %s", plan)
	}
}

func TestAnalyze_Multi(t *testing.T) {
	res := multiResult(t)
	rep := Analyze(res, DefaultPolicy())

	assert.Equal(t, model.ModeMulti, rep.Mode)
	require.Len(t, rep.Plans, 3)
	assert.Equal(t, model.PlanConservative, rep.Plans[0].Plan)

	var revenue int64
	for _, p := range rep.Plans {
		revenue += p.Revenue
	}
	assert.Equal(t, revenue, rep.Overall.Revenue)

	assert.Len(t, rep.ByMarketplace, 9)
	require.Len(t, rep.Series, 9)
	for _, s := range rep.Series {
		assert.Len(t, s.Labels, 12)
		assert.Equal(t, "Jan", s.Labels[0])
	}

	require.Len(t, rep.Costs, 3)
	for _, c := range rep.Costs {
		assert.GreaterOrEqual(t, c.Margin, int64(0))
	}

	rec := rep.Recommendation
	require.Len(t, rec.Ranked, 3)
	assert.Equal(t, rec.Plan, rec.Ranked[0])
	assert.Len(t, rec.Evaluations, 2)
	assert.NotNil(t, rep.Alerts)
}

func TestAnalyze_SingleRecommendsDefault(t *testing.T) {
	res, err := simulation.New().Run(model.DefaultConfig())
	require.NoError(t, err)

	rep := Analyze(res, DefaultPolicy())
	assert.Equal(t, model.PlanDefault, rep.Recommendation.Plan)
	assert.Equal(t, []model.Marketplace{model.MarketplaceAmazon, model.MarketplaceRakuten, model.MarketplaceYahoo}, rep.Marketplaces)
}

func TestCosts_ClampsNegativeMargin(t *testing.T) {
	costs := Costs([]simulation.Row{
		{Plan: model.PlanDefault, Marketplace: model.MarketplaceAmazon, Month: 1, Revenue: 100, COGS: 30, Commission: 10, AdSpend: 200, ContributionMargin: -140},
	})
	require.Len(t, costs, 1)
	assert.Zero(t, costs[0].Margin)
	assert.Equal(t, int64(200), costs[0].AdSpend)
}
