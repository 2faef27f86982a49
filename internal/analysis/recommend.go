package analysis

import (
	"fmt"
	"sort"
	"strings"

	"ec-simulator/internal/model"
)

// Recommendation and alert thresholds.
const (
	DefaultMinIncrementalROAS = 3.0
	DefaultMinMarginRate      = 0.15

	DefaultLowROAS                 = 2.0
	DefaultHighMarginRate          = 0.40
	DefaultConcentrationShare      = 0.60
	DefaultMaxListedNegativeMonths = 6
)

// Policy holds the recommendation rule and alert thresholds.
type Policy struct {
	// Baseline is the plan the others are compared against.
	Baseline model.PlanTier `json:"baseline"`
	// Order is the evaluation order; the first qualifying plan wins.
	Order []model.PlanTier `json:"order"`

	MinIncrementalROAS float64 `json:"min_incremental_roas"`
	MinMarginRate      float64 `json:"min_margin_rate"`

	LowROAS                 float64 `json:"low_roas"`
	HighMarginRate          float64 `json:"high_margin_rate"`
	ConcentrationShare      float64 `json:"concentration_share"`
	MaxListedNegativeMonths int     `json:"max_listed_negative_months"`
}

func DefaultPolicy() Policy {
	return Policy{
		Baseline:                model.PlanConservative,
		Order:                   []model.PlanTier{model.PlanAggressive, model.PlanBalanced},
		MinIncrementalROAS:      DefaultMinIncrementalROAS,
		MinMarginRate:           DefaultMinMarginRate,
		LowROAS:                 DefaultLowROAS,
		HighMarginRate:          DefaultHighMarginRate,
		ConcentrationShare:      DefaultConcentrationShare,
		MaxListedNegativeMonths: DefaultMaxListedNegativeMonths,
	}
}

// Evaluation is the outcome of checking one plan against the baseline.
type Evaluation struct {
	Plan               model.PlanTier `json:"plan"`
	IncrementalAdSpend int64          `json:"incremental_ad_spend"`
	IncrementalRevenue int64          `json:"incremental_revenue"`
	IncrementalROAS    float64        `json:"incremental_roas"`
	ContributionMargin int64          `json:"contribution_margin"`
	MarginRate         float64        `json:"margin_rate"`
	Qualified          bool           `json:"qualified"`
	// Failed names the checks the plan did not pass.
	Failed []string `json:"failed,omitempty"`
}

type Recommendation struct {
	Plan        model.PlanTier   `json:"plan"`
	Ranked      []model.PlanTier `json:"ranked"`
	Rationale   string           `json:"rationale"`
	Evaluations []Evaluation     `json:"evaluations,omitempty"`
}

// Recommend picks a plan from per-plan summaries. Plans in policy.Order are
// checked against baseline in turn and the first that qualifies is chosen;
// otherwise baseline is recommended. With a single plan, that plan is returned.
func Recommend(summaries map[model.PlanTier]PlanSummary, baseline model.PlanTier, policy Policy) Recommendation {
	if len(summaries) == 0 {
		return Recommendation{Rationale: "no plans were simulated"}
	}
	if len(summaries) == 1 {
		for plan := range summaries {
			return Recommendation{
				Plan:      plan,
				Ranked:    []model.PlanTier{plan},
				Rationale: fmt.Sprintf("only the %s plan was simulated", plan),
			}
		}
	}

	base := summaries[baseline]
	var (
		chosen model.PlanTier
		evals  []Evaluation
	)
	for _, plan := range policy.Order {
		s, ok := summaries[plan]
		if !ok || plan == baseline {
			continue
		}
		ev := evaluate(s, base, policy)
		evals = append(evals, ev)
		if chosen == "" && ev.Qualified {
			chosen = plan
		}
	}

	rec := Recommendation{Evaluations: evals}
	if chosen != "" {
		rec.Plan = chosen
		rec.Rationale = qualifiedRationale(evals, chosen, baseline)
	} else {
		rec.Plan = baseline
		rec.Rationale = fallbackRationale(evals, baseline)
	}
	rec.Ranked = rank(summaries, rec.Plan)
	return rec
}

func evaluate(s, base PlanSummary, policy Policy) Evaluation {
	ev := Evaluation{
		Plan:               s.Plan,
		IncrementalAdSpend: s.AdSpend - base.AdSpend,
		IncrementalRevenue: s.Revenue - base.Revenue,
		ContributionMargin: s.ContributionMargin,
		MarginRate:         s.MarginRate,
	}
	if ev.IncrementalAdSpend > 0 {
		ev.IncrementalROAS = float64(ev.IncrementalRevenue) / float64(ev.IncrementalAdSpend)
	}

	if ev.ContributionMargin <= 0 {
		ev.Failed = append(ev.Failed, "margin_not_positive")
	}
	if ev.IncrementalROAS < policy.MinIncrementalROAS {
		ev.Failed = append(ev.Failed, "incremental_roas_below_threshold")
	}
	if ev.MarginRate < policy.MinMarginRate {
		ev.Failed = append(ev.Failed, "margin_rate_below_threshold")
	}
	ev.Qualified = len(ev.Failed) == 0
	return ev
}

// rank puts the recommended plan first, then the rest by margin descending.
func rank(summaries map[model.PlanTier]PlanSummary, first model.PlanTier) []model.PlanTier {
	rest := make([]PlanSummary, 0, len(summaries))
	for plan, s := range summaries {
		if plan != first {
			rest = append(rest, s)
		}
	}
	sort.Slice(rest, func(i, j int) bool {
		if rest[i].ContributionMargin != rest[j].ContributionMargin {
			return rest[i].ContributionMargin > rest[j].ContributionMargin
		}
		return tierIndex(rest[i].Plan) < tierIndex(rest[j].Plan)
	})

	out := make([]model.PlanTier, 0, len(summaries))
	if _, ok := summaries[first]; ok {
		out = append(out, first)
	}
	for _, s := range rest {
		out = append(out, s.Plan)
	}
	return out
}

func tierIndex(p model.PlanTier) int {
	for i, t := range model.PlanTiers {
		if t == p {
			return i
		}
	}
	return len(model.PlanTiers)
}

func qualifiedRationale(evals []Evaluation, chosen, baseline model.PlanTier) string {
	for _, ev := range evals {
		if ev.Plan == chosen {
			return fmt.Sprintf(
				"%s: incremental ROAS %.2f vs %s, margin rate %.1f%%, contribution margin %d",
				chosen, ev.IncrementalROAS, baseline, ev.MarginRate*100, ev.ContributionMargin,
			)
		}
	}
	return string(chosen)
}

func fallbackRationale(evals []Evaluation, baseline model.PlanTier) string {
	if len(evals) == 0 {
		return fmt.Sprintf("%s: no other plan to compare", baseline)
	}
	parts := make([]string, 0, len(evals))
	for _, ev := range evals {
		parts = append(parts, fmt.Sprintf("%s (%s)", ev.Plan, strings.Join(ev.Failed, ", ")))
	}
	return fmt.Sprintf("%s: no plan qualified; %s", baseline, strings.Join(parts, "; "))
}
