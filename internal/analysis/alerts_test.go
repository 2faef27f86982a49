package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ec-simulator/internal/model"
	"ec-simulator/internal/simulation"
)

func row(plan model.PlanTier, mp model.Marketplace, month int, revenue, adSpend, margin int64) simulation.Row {
	return simulation.Row{
		Plan:               plan,
		Month:              month,
		Marketplace:        mp,
		Revenue:            revenue,
		AdSpend:            adSpend,
		ContributionMargin: margin,
	}
}

func kinds(alerts []Alert) []AlertKind {
	out := make([]AlertKind, 0, len(alerts))
	for _, a := range alerts {
		out = append(out, a.Kind)
	}
	return out
}

func TestDeriveAlerts_NegativeMarginAndLowROAS(t *testing.T) {
	rows := []simulation.Row{
		row(model.PlanDefault, model.MarketplaceAmazon, 1, 100, 100, -50),
		row(model.PlanDefault, model.MarketplaceAmazon, 2, 100, 100, -50),
	}

	alerts := DeriveAlerts(rows, DefaultPolicy())
	assert.Equal(t, []AlertKind{
		AlertMarginNegative, AlertLowROAS,
		AlertMarginNegative, AlertLowROAS,
		AlertNegativeMonths,
	}, kinds(alerts))

	assert.Empty(t, alerts[0].Marketplace)
	assert.Equal(t, model.MarketplaceAmazon, alerts[2].Marketplace)

	neg := alerts[4]
	assert.Equal(t, 2, neg.Count)
	require.Len(t, neg.Months, 2)
	assert.Equal(t, MonthRef{Marketplace: model.MarketplaceAmazon, Month: 1, ContributionMargin: -50}, neg.Months[0])
}

func TestDeriveAlerts_ChannelConcentration(t *testing.T) {
	rows := []simulation.Row{
		row(model.PlanDefault, model.MarketplaceAmazon, 1, 700, 0, 100),
		row(model.PlanDefault, model.MarketplaceRakuten, 1, 300, 0, 100),
	}

	alerts := DeriveAlerts(rows, DefaultPolicy())
	require.Len(t, alerts, 1)
	assert.Equal(t, AlertChannelConcentration, alerts[0].Kind)
	assert.Equal(t, model.MarketplaceAmazon, alerts[0].Marketplace)
	assert.Contains(t, alerts[0].Message, "70.0%")
}

func TestDeriveAlerts_NoConcentrationWithSingleMarketplace(t *testing.T) {
	rows := []simulation.Row{
		row(model.PlanDefault, model.MarketplaceYahoo, 1, 1000, 0, 200),
	}
	assert.Empty(t, DeriveAlerts(rows, DefaultPolicy()))
}

func TestDeriveAlerts_HighMarginRateNotice(t *testing.T) {
	rows := []simulation.Row{
		row(model.PlanDefault, model.MarketplaceRakuten, 1, 1000, 100, 500),
	}

	alerts := DeriveAlerts(rows, DefaultPolicy())
	require.Len(t, alerts, 2)
	for _, a := range alerts {
		assert.Equal(t, AlertHighMarginRate, a.Kind)
		assert.Equal(t, SeverityNotice, a.Severity)
	}
}

func TestDeriveAlerts_NegativeMonthsBeyondLimitOnlyCounted(t *testing.T) {
	var rows []simulation.Row
	for m := 1; m <= 7; m++ {
		rows = append(rows, row(model.PlanAggressive, model.MarketplaceYahoo, m, 1000, 100, -1))
	}

	var neg *Alert
	alerts := DeriveAlerts(rows, DefaultPolicy())
	for i := range alerts {
		if alerts[i].Kind == AlertNegativeMonths {
			neg = &alerts[i]
		}
	}
	require.NotNil(t, neg)
	assert.Equal(t, 7, neg.Count)
	assert.Nil(t, neg.Months)
	assert.Equal(t, model.PlanAggressive, neg.Plan)
}

func TestDeriveAlerts_ScopedPerPlan(t *testing.T) {
	rows := []simulation.Row{
		row(model.PlanConservative, model.MarketplaceAmazon, 1, 1000, 100, 300),
		row(model.PlanAggressive, model.MarketplaceAmazon, 1, 1000, 800, -100),
	}

	for _, a := range DeriveAlerts(rows, DefaultPolicy()) {
		assert.Equal(t, model.PlanAggressive, a.Plan, "unexpected alert %s", a.Kind)
	}
}
