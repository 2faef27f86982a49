package marketplace

import (
	"fmt"

	"ec-simulator/internal/model"
)

// Rules captures what makes one marketplace different from the others:
// its traffic events, how much of the demand it attributes to the seller,
// and what it charges.
type Rules interface {
	Marketplace() model.Marketplace
	// TrafficMultiplier scales the base traffic for month (1..12).
	TrafficMultiplier(month int) float64
	// CheckoutFactor is the share of converting demand the seller actually captures.
	CheckoutFactor() float64
	CommissionRate() float64
}

// Base commission rates before any optional fees.
const (
	AmazonCommissionRate  = 0.10
	RakutenCommissionRate = 0.06
	YahooCommissionRate   = 0.03
)

// Event months.
var (
	PrimeDayMonths  = []int{7}
	SuperSaleMonths = []int{3, 6, 9, 12}
)

// For builds the rules for m from the marketplace-specific part of cfg.
func For(m model.Marketplace, cfg model.SimulationConfig) (Rules, error) {
	switch m {
	case model.MarketplaceAmazon:
		return &AmazonRules{Params: cfg.Amazon}, nil
	case model.MarketplaceRakuten:
		return &RakutenRules{Params: cfg.Rakuten}, nil
	case model.MarketplaceYahoo:
		return &YahooRules{Params: cfg.Yahoo}, nil
	default:
		return nil, fmt.Errorf("unsupported marketplace: %q", m)
	}
}

// AmazonRules: Prime Day lifts traffic in July; only the buy-box share of sales is won.
type AmazonRules struct {
	Params model.AmazonParams
}

func (r *AmazonRules) Marketplace() model.Marketplace { return model.MarketplaceAmazon }

func (r *AmazonRules) TrafficMultiplier(month int) float64 {
	if inMonths(month, PrimeDayMonths) {
		return r.Params.PrimeDayBoost
	}
	return 1.0
}

func (r *AmazonRules) CheckoutFactor() float64 { return r.Params.BuyBoxRate }

func (r *AmazonRules) CommissionRate() float64 { return AmazonCommissionRate }

// RakutenRules: the quarterly Super Sale lifts traffic in its months.
type RakutenRules struct {
	Params model.RakutenParams
}

func (r *RakutenRules) Marketplace() model.Marketplace { return model.MarketplaceRakuten }

func (r *RakutenRules) TrafficMultiplier(month int) float64 {
	if inMonths(month, SuperSaleMonths) {
		return r.Params.SuperSaleBoost
	}
	return 1.0
}

func (r *RakutenRules) CheckoutFactor() float64 { return 1.0 }

func (r *RakutenRules) CommissionRate() float64 { return RakutenCommissionRate }

// YahooRules: "days ending in 5" promotions recur every month, so the boost is
// applied as a flat monthly average rather than a seasonal spike.
type YahooRules struct {
	Params model.YahooParams
}

func (r *YahooRules) Marketplace() model.Marketplace { return model.MarketplaceYahoo }

func (r *YahooRules) TrafficMultiplier(int) float64 { return r.Params.FiveDayBoost }

func (r *YahooRules) CheckoutFactor() float64 { return 1.0 }

func (r *YahooRules) CommissionRate() float64 {
	return YahooCommissionRate + r.Params.PROptionRate
}

// inMonths checks whether month is one of the event months.
func inMonths(month int, months []int) bool {
	for _, m := range months {
		if m == month {
			return true
		}
	}
	return false
}
