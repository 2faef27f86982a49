package model

import (
	"fmt"
	"strings"
)

// Marketplace identifies one of the supported online malls.
// Keep these values stable; they are intended for CSV output and API payloads.
type Marketplace string

const (
	MarketplaceAmazon  Marketplace = "amazon"
	MarketplaceRakuten Marketplace = "rakuten"
	MarketplaceYahoo   Marketplace = "yahoo"
)

// DefaultMarketplace is used when a configuration enables no marketplace at all.
const DefaultMarketplace = MarketplaceAmazon

// AllMarketplaces lists every marketplace in canonical (output) order.
var AllMarketplaces = []Marketplace{MarketplaceAmazon, MarketplaceRakuten, MarketplaceYahoo}

func (m Marketplace) Valid() bool {
	switch m {
	case MarketplaceAmazon, MarketplaceRakuten, MarketplaceYahoo:
		return true
	default:
		return false
	}
}

// DisplayName is the human-facing label used by dashboards.
func (m Marketplace) DisplayName() string {
	switch m {
	case MarketplaceAmazon:
		return "Amazon"
	case MarketplaceRakuten:
		return "Rakuten Ichiba"
	case MarketplaceYahoo:
		return "Yahoo! Shopping"
	default:
		return string(m)
	}
}

// ParseMarketplace accepts the identifier case-insensitively.
func ParseMarketplace(s string) (Marketplace, error) {
	m := Marketplace(strings.ToLower(strings.TrimSpace(s)))
	if !m.Valid() {
		return "", fmt.Errorf("unknown marketplace %q", s)
	}
	return m, nil
}
