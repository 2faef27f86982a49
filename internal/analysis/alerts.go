package analysis

import (
	"fmt"

	"ec-simulator/internal/model"
	"ec-simulator/internal/simulation"
)

type AlertKind string

const (
	AlertMarginNegative       AlertKind = "margin_negative"
	AlertLowROAS              AlertKind = "low_roas"
	AlertHighMarginRate       AlertKind = "high_margin_rate"
	AlertChannelConcentration AlertKind = "channel_concentration"
	AlertNegativeMonths       AlertKind = "negative_months"
)

type Severity string

const (
	SeverityWarning Severity = "warning"
	SeverityNotice  Severity = "notice"
)

// MonthRef identifies one negative-margin (marketplace, month) pair.
type MonthRef struct {
	Marketplace        model.Marketplace `json:"marketplace"`
	Month              int               `json:"month"`
	ContributionMargin int64             `json:"contribution_margin"`
}

type Alert struct {
	Kind        AlertKind         `json:"kind"`
	Severity    Severity          `json:"severity"`
	Plan        model.PlanTier    `json:"plan"`
	Marketplace model.Marketplace `json:"marketplace,omitempty"`
	Message     string            `json:"message"`

	// Set for negative_months only. Months is omitted once Count exceeds
	// the policy's listing limit.
	Count  int        `json:"count,omitempty"`
	Months []MonthRef `json:"months,omitempty"`
}

// DeriveAlerts checks every plan and every (plan, marketplace) pair.
func DeriveAlerts(rows []simulation.Row, policy Policy) []Alert {
	var out []Alert

	plans := Summarize(rows)
	marketplaces := SummarizeMarketplaces(rows)

	for _, plan := range planOrder(rows) {
		ps := plans[plan]
		out = append(out, summaryAlerts(ps.Summary, plan, "", policy)...)

		var scoped []MarketplaceSummary
		for _, ms := range marketplaces {
			if ms.Plan == plan {
				scoped = append(scoped, ms)
			}
		}
		for _, ms := range scoped {
			out = append(out, summaryAlerts(ms.Summary, plan, ms.Marketplace, policy)...)
			if len(scoped) > 1 && ms.RevenueShare > policy.ConcentrationShare {
				out = append(out, Alert{
					Kind:        AlertChannelConcentration,
					Severity:    SeverityWarning,
					Plan:        plan,
					Marketplace: ms.Marketplace,
					Message: fmt.Sprintf("%s accounts for %.1f%% of revenue",
						ms.Marketplace.DisplayName(), ms.RevenueShare*100),
				})
			}
		}

		if a, ok := negativeMonths(rows, plan, policy); ok {
			out = append(out, a)
		}
	}
	return out
}

func summaryAlerts(s Summary, plan model.PlanTier, mp model.Marketplace, policy Policy) []Alert {
	scope := string(plan)
	if mp != "" {
		scope = fmt.Sprintf("%s / %s", plan, mp.DisplayName())
	}

	var out []Alert
	if s.ContributionMargin < 0 {
		out = append(out, Alert{
			Kind:        AlertMarginNegative,
			Severity:    SeverityWarning,
			Plan:        plan,
			Marketplace: mp,
			Message:     fmt.Sprintf("%s: contribution margin is negative (%d)", scope, s.ContributionMargin),
		})
	}
	if s.AdSpend > 0 && s.ROAS < policy.LowROAS {
		out = append(out, Alert{
			Kind:        AlertLowROAS,
			Severity:    SeverityWarning,
			Plan:        plan,
			Marketplace: mp,
			Message:     fmt.Sprintf("%s: ROAS %.2f is below %.2f", scope, s.ROAS, policy.LowROAS),
		})
	}
	if s.MarginRate > policy.HighMarginRate {
		out = append(out, Alert{
			Kind:        AlertHighMarginRate,
			Severity:    SeverityNotice,
			Plan:        plan,
			Marketplace: mp,
			Message:     fmt.Sprintf("%s: margin rate %.1f%% leaves room to invest", scope, s.MarginRate*100),
		})
	}
	return out
}

func negativeMonths(rows []simulation.Row, plan model.PlanTier, policy Policy) (Alert, bool) {
	var months []MonthRef
	for _, r := range rows {
		if r.Plan == plan && r.ContributionMargin < 0 {
			months = append(months, MonthRef{
				Marketplace:        r.Marketplace,
				Month:              r.Month,
				ContributionMargin: r.ContributionMargin,
			})
		}
	}
	if len(months) == 0 {
		return Alert{}, false
	}

	a := Alert{
		Kind:     AlertNegativeMonths,
		Severity: SeverityWarning,
		Plan:     plan,
		Count:    len(months),
	}
	if len(months) <= policy.MaxListedNegativeMonths {
		a.Months = months
		a.Message = fmt.Sprintf("%s: %d month(s) with negative margin", plan, len(months))
	} else {
		a.Message = fmt.Sprintf("%s: %d marketplace-months with negative margin", plan, len(months))
	}
	return a, true
}
