package insight

import (
	"sort"
	"time"
)

// BuildDashboard derives KPIs from the daily series and rolls the series
// up to period. topN <= 0 keeps every page.
func BuildDashboard(snap *Snapshot, period Period, topN int) Dashboard {
	d := Dashboard{
		Period:      period,
		GeneratedAt: snap.GeneratedAt,
		KPIs:        KPIs(snap.Series),
		Series:      Rollup(snap.Series, period),
		TopPages:    snap.Pages,
	}
	if topN > 0 && len(d.TopPages) > topN {
		d.TopPages = d.TopPages[:topN]
	}
	return d
}

// KPIs compares the latest point with the one before it.
func KPIs(series []TrafficPoint) []KPI {
	if len(series) == 0 {
		return []KPI{}
	}
	curr := series[len(series)-1]
	prev := curr
	if len(series) > 1 {
		prev = series[len(series)-2]
	}
	return []KPI{
		{Name: "users", Value: float64(curr.Users), Delta: float64(curr.Users - prev.Users)},
		{Name: "sessions", Value: float64(curr.Sessions), Delta: float64(curr.Sessions - prev.Sessions)},
		{Name: "engagement_rate", Value: curr.EngagementRate, Delta: round(curr.EngagementRate-prev.EngagementRate, 4)},
		{Name: "revenue", Value: float64(curr.Revenue), Delta: float64(curr.Revenue - prev.Revenue)},
	}
}

// Rollup sums daily points into weeks (starting Monday) or calendar months.
// Engagement rate is averaged over the days in the bucket. Points with an
// unparseable date are skipped. Input order does not matter; buckets come
// back sorted by date.
func Rollup(series []TrafficPoint, period Period) []TrafficPoint {
	if period == PeriodDaily || period == "" {
		return append([]TrafficPoint(nil), series...)
	}

	out := []TrafficPoint{}
	days := []int{}
	index := map[string]int{}
	for _, p := range series {
		day, err := time.Parse(dateLayout, p.Date)
		if err != nil {
			continue
		}
		key := bucketStart(day, period).Format(dateLayout)
		i, ok := index[key]
		if !ok {
			i = len(out)
			index[key] = i
			out = append(out, TrafficPoint{Date: key})
			days = append(days, 0)
		}
		b := &out[i]
		b.Users += p.Users
		b.Sessions += p.Sessions
		b.Revenue += p.Revenue
		b.EngagementRate += p.EngagementRate
		days[i]++
	}
	for i := range out {
		out[i].EngagementRate = round(out[i].EngagementRate/float64(days[i]), 4)
	}
	sort.Slice(out, func(a, b int) bool { return out[a].Date < out[b].Date })
	return out
}

func bucketStart(day time.Time, period Period) time.Time {
	switch period {
	case PeriodMonthly:
		return time.Date(day.Year(), day.Month(), 1, 0, 0, 0, 0, time.UTC)
	default:
		offset := (int(day.Weekday()) + 6) % 7
		return day.AddDate(0, 0, -offset)
	}
}
