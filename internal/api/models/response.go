package models

import (
	"ec-simulator/internal/analysis"
	"ec-simulator/internal/config"
	"ec-simulator/internal/insight"
	"ec-simulator/internal/model"
	"ec-simulator/internal/simulation"
)

// SimulationResponse is the result of one simulation run.
type SimulationResponse struct {
	RunID    string           `json:"run_id"`
	Name     string           `json:"name,omitempty"`
	Cached   bool             `json:"cached"`
	RowCount int              `json:"row_count"`
	Report   *analysis.Report `json:"report"`
	Rows     []RowView        `json:"rows,omitempty"`
}

// RowView is the wire form of a simulation row; field names match the CSV header.
type RowView struct {
	Plan               model.PlanTier    `json:"plan"`
	Month              int               `json:"month"`
	MonthLabel         string            `json:"month_label"`
	Marketplace        model.Marketplace `json:"marketplace"`
	SeasonalityIndex   float64           `json:"seasonality_index"`
	Visits             int64             `json:"visits"`
	CVR                float64           `json:"cvr"`
	Revenue            int64             `json:"revenue"`
	COGS               int64             `json:"cogs"`
	Commission         int64             `json:"commission"`
	AdSpend            int64             `json:"ad_spend"`
	ContributionMargin int64             `json:"contribution_margin"`
	CommissionRate     float64           `json:"commission_rate"`
}

func NewRowViews(rows []simulation.Row) []RowView {
	out := make([]RowView, 0, len(rows))
	for _, r := range rows {
		out = append(out, RowView{
			Plan:               r.Plan,
			Month:              r.Month,
			MonthLabel:         r.MonthLabel,
			Marketplace:        r.Marketplace,
			SeasonalityIndex:   r.SeasonalityIndex,
			Visits:             r.Visits,
			CVR:                r.CVR,
			Revenue:            r.Revenue,
			COGS:               r.COGS,
			Commission:         r.Commission,
			AdSpend:            r.AdSpend,
			ContributionMargin: r.ContributionMargin,
			CommissionRate:     r.CommissionRate,
		})
	}
	return out
}

// PlanInfo describes one plan tier and its default multipliers.
type PlanInfo struct {
	Name           model.PlanTier `json:"name"`
	AdBudget       float64        `json:"ad_budget"`
	CVR            float64        `json:"cvr"`
	Traffic        float64        `json:"traffic"`
	Description    string         `json:"description"`
	IsBaseline     bool           `json:"is_baseline"`
	PreferenceRank int            `json:"preference_rank,omitempty"`
}

type PlansResponse struct {
	Plans  []PlanInfo      `json:"plans"`
	Policy analysis.Policy `json:"policy"`
}

// ParameterInfo describes a marketplace-specific scenario parameter.
type ParameterInfo struct {
	Name        string  `json:"name"`
	Type        string  `json:"type"`
	Description string  `json:"description"`
	Default     float64 `json:"default"`
}

// MarketplaceInfo describes one marketplace.
type MarketplaceInfo struct {
	ID             model.Marketplace `json:"id"`
	Name           string            `json:"name"`
	CommissionRate float64           `json:"commission_rate"`
	EventMonths    []int             `json:"event_months"`
	EventName      string            `json:"event_name"`
	Parameters     []ParameterInfo   `json:"parameters"`
}

type MarketplacesResponse struct {
	Marketplaces []MarketplaceInfo `json:"marketplaces"`
	Default      model.Marketplace `json:"default"`
}

type PresetsResponse struct {
	Presets []config.PresetInfo `json:"presets"`
}

// InsightAnalyzeResponse carries AI commentary for the requested period.
type InsightAnalyzeResponse struct {
	Model      string              `json:"model"`
	Period     insight.Period      `json:"period"`
	Commentary *insight.Commentary `json:"commentary"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains error information
type ErrorDetail struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// Error codes used by the handlers.
const (
	CodeInvalidRequest   = "INVALID_REQUEST"
	CodeInvalidConfig    = "INVALID_CONFIG"
	CodePresetNotFound   = "PRESET_NOT_FOUND"
	CodeMissingAPIKey    = "MISSING_API_KEY"
	CodeCompletionFailed = "COMPLETION_FAILED"
	CodeSourceFailed     = "SOURCE_FAILED"
	CodeInternal         = "INTERNAL_ERROR"
	CodeNotFound         = "NOT_FOUND"
)
