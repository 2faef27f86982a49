package insight

import (
	"fmt"
	"strings"
	"time"
)

const dateLayout = "2006-01-02"

type Period string

const (
	PeriodDaily   Period = "daily"
	PeriodWeekly  Period = "weekly"
	PeriodMonthly Period = "monthly"
)

// ParsePeriod is case-insensitive; an empty value means daily.
func ParsePeriod(s string) (Period, error) {
	switch p := Period(strings.ToLower(strings.TrimSpace(s))); p {
	case "":
		return PeriodDaily, nil
	case PeriodDaily, PeriodWeekly, PeriodMonthly:
		return p, nil
	default:
		return "", fmt.Errorf("unknown period %q (expected daily, weekly or monthly)", s)
	}
}

// TrafficPoint is one bucket of site traffic. Date is the first day of the bucket.
type TrafficPoint struct {
	Date           string  `json:"date"`
	Users          int     `json:"users"`
	Sessions       int     `json:"sessions"`
	Revenue        int     `json:"revenue"`
	EngagementRate float64 `json:"engagement_rate"`
}

type PageStat struct {
	Rank           int     `json:"rank"`
	Path           string  `json:"page_path"`
	Title          string  `json:"page_title"`
	Views          int     `json:"views"`
	ActiveUsers    int     `json:"active_users"`
	EngagementRate float64 `json:"engagement_rate"`
}

// Snapshot is the raw daily data a Source provides.
type Snapshot struct {
	GeneratedAt time.Time      `json:"generated_at"`
	Series      []TrafficPoint `json:"series"`
	Pages       []PageStat     `json:"pages"`
}

// KPI compares the last two daily points.
type KPI struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
	Delta float64 `json:"delta"`
}

// Dashboard is a Snapshot prepared for display.
type Dashboard struct {
	Period      Period         `json:"period"`
	GeneratedAt time.Time      `json:"generated_at"`
	KPIs        []KPI          `json:"kpis"`
	Series      []TrafficPoint `json:"series"`
	TopPages    []PageStat     `json:"top_pages"`
}

// AgentComments holds one short comment per reviewer perspective.
type AgentComments struct {
	UI      string `json:"ui"`
	SEO     string `json:"seo"`
	Analyst string `json:"analyst"`
}

// MatrixItem is one prioritized improvement with per-perspective grades (S/A/B).
type MatrixItem struct {
	Priority     int    `json:"priority"`
	Task         string `json:"task"`
	UIScore      string `json:"ui_score"`
	SEOScore     string `json:"seo_score"`
	AnalystScore string `json:"analyst_score"`
	Total        string `json:"total"`
	Detail       string `json:"detail"`
}

type Commentary struct {
	Agents AgentComments `json:"agents"`
	Matrix []MatrixItem  `json:"matrix"`
}
