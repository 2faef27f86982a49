package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"ec-simulator/internal/analysis"
	"ec-simulator/internal/api/models"
	"ec-simulator/internal/config"
	"ec-simulator/internal/logger"
	"ec-simulator/internal/marketplace"
	"ec-simulator/internal/model"
)

var planDescriptions = map[model.PlanTier]string{
	model.PlanConservative: "Half the ad budget, no uplift. The baseline the other plans are measured against.",
	model.PlanBalanced:     "Current budget with a modest conversion and traffic uplift.",
	model.PlanAggressive:   "Double budget with the largest conversion and traffic uplift.",
}

// CatalogHandler serves the static reference data the dashboard needs to build its forms.
type CatalogHandler struct {
	presetDir string
	policy    analysis.Policy
	log       *logger.Logger
}

func NewCatalogHandler(presetDir string, policy analysis.Policy, log *logger.Logger) *CatalogHandler {
	if log == nil {
		log = logger.Nop()
	}
	return &CatalogHandler{presetDir: presetDir, policy: policy, log: log}
}

// ListPlans handles GET /api/v1/plans
func (h *CatalogHandler) ListPlans(c *gin.Context) {
	defaults := model.DefaultPlanMultipliers()
	plans := make([]models.PlanInfo, 0, len(model.PlanTiers))
	for _, tier := range model.PlanTiers {
		m := defaults[tier]
		info := models.PlanInfo{
			Name:        tier,
			AdBudget:    m.AdBudget,
			CVR:         m.CVR,
			Traffic:     m.Traffic,
			Description: planDescriptions[tier],
			IsBaseline:  tier == h.policy.Baseline,
		}
		for i, p := range h.policy.Order {
			if p == tier {
				info.PreferenceRank = i + 1
			}
		}
		plans = append(plans, info)
	}
	c.JSON(http.StatusOK, models.PlansResponse{Plans: plans, Policy: h.policy})
}

// ListMarketplaces handles GET /api/v1/marketplaces
func (h *CatalogHandler) ListMarketplaces(c *gin.Context) {
	defaults := model.DefaultConfig()
	out := make([]models.MarketplaceInfo, 0, len(model.AllMarketplaces))
	for _, m := range model.AllMarketplaces {
		out = append(out, marketplaceInfo(m, defaults))
	}
	c.JSON(http.StatusOK, models.MarketplacesResponse{
		Marketplaces: out,
		Default:      model.DefaultMarketplace,
	})
}

func marketplaceInfo(m model.Marketplace, d model.SimulationConfig) models.MarketplaceInfo {
	info := models.MarketplaceInfo{ID: m, Name: m.DisplayName()}
	switch m {
	case model.MarketplaceAmazon:
		info.CommissionRate = marketplace.AmazonCommissionRate
		info.EventMonths = marketplace.PrimeDayMonths
		info.EventName = "Prime Day"
		info.Parameters = []models.ParameterInfo{
			{Name: "buy_box_rate", Type: "ratio", Description: "Share of sales won through the buy box", Default: d.Amazon.BuyBoxRate},
			{Name: "fba_usage", Type: "ratio", Description: "Share of orders fulfilled by Amazon", Default: d.Amazon.FBAUsage},
			{Name: "prime_day_boost", Type: "multiplier", Description: "Traffic multiplier during Prime Day", Default: d.Amazon.PrimeDayBoost},
		}
	case model.MarketplaceRakuten:
		info.CommissionRate = marketplace.RakutenCommissionRate
		info.EventMonths = marketplace.SuperSaleMonths
		info.EventName = "Super Sale"
		info.Parameters = []models.ParameterInfo{
			{Name: "super_sale_boost", Type: "multiplier", Description: "Traffic multiplier during Super Sale months", Default: d.Rakuten.SuperSaleBoost},
			{Name: "point_multiplier", Type: "multiplier", Description: "Point campaign multiplier", Default: d.Rakuten.PointMultiplier},
		}
	case model.MarketplaceYahoo:
		info.CommissionRate = marketplace.YahooCommissionRate
		info.EventMonths = []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12}
		info.EventName = "5 no tsuku hi"
		info.Parameters = []models.ParameterInfo{
			{Name: "five_day_boost", Type: "multiplier", Description: "Average monthly lift from days ending in 5", Default: d.Yahoo.FiveDayBoost},
			{Name: "pr_option_rate", Type: "ratio", Description: "PR option fee added to the base commission", Default: d.Yahoo.PROptionRate},
		}
	}
	return info
}

// ListPresets handles GET /api/v1/presets
func (h *CatalogHandler) ListPresets(c *gin.Context) {
	presets, err := config.ListPresets(h.presetDir)
	if err != nil {
		h.log.Error(c.Request.Context(), "presets.list_failed", err)
		respondError(c, http.StatusInternalServerError, models.CodeInternal, "failed to list presets", nil)
		return
	}
	c.JSON(http.StatusOK, models.PresetsResponse{Presets: presets})
}
