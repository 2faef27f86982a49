package insight

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"math/rand"
	"os"
	"sort"
	"sync"
	"time"
)

const (
	DefaultSeriesDays = 30
	DefaultTopPages   = 20

	// activeUserRatio derives active users from page views.
	activeUserRatio = 0.7
)

// SnapshotTTL is how long a generated snapshot is served before regenerating.
const SnapshotTTL = time.Hour

// Source provides analytics data. Implementations must be safe for concurrent use.
type Source interface {
	Snapshot(ctx context.Context) (*Snapshot, error)
}

var mockPages = []string{
	"/", "/pricing", "/features", "/blog/ai-trends", "/contact",
	"/about", "/blog/dashboard-tips", "/products/dashboard", "/login", "/signup",
	"/docs/api", "/docs/start", "/careers", "/blog/seo", "/features/analytics",
	"/features/report", "/faq", "/case-a", "/case-b", "/terms",
}

// MockSource generates plausible, upward-trending traffic.
type MockSource struct {
	Days int
	Now  func() time.Time

	mu  sync.Mutex
	rnd *rand.Rand
}

// NewMockSource returns a generator. Generators with equal seeds and clocks
// produce the same sequence of snapshots.
func NewMockSource(seed int64) *MockSource {
	return &MockSource{
		Days: DefaultSeriesDays,
		Now:  time.Now,
		rnd:  rand.New(rand.NewSource(seed)),
	}
}

func (s *MockSource) Snapshot(ctx context.Context) (*Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.Now()
	days := s.Days
	if days <= 0 {
		days = DefaultSeriesDays
	}

	series := make([]TrafficPoint, 0, days)
	for i := 0; i < days; i++ {
		day := now.AddDate(0, 0, i-(days-1))
		series = append(series, TrafficPoint{
			Date:           day.Format(dateLayout),
			Users:          100 + i*5 + s.between(-20, 50),
			Sessions:       120 + i*6 + s.between(-10, 60),
			Revenue:        i*150 + s.between(0, 500),
			EngagementRate: round(0.55+float64(i)*0.003, 3),
		})
	}

	pages := make([]PageStat, 0, len(mockPages))
	for _, p := range mockPages {
		views := s.between(500, 10000)
		pages = append(pages, PageStat{
			Path:           p,
			Title:          "Title for " + p,
			Views:          views,
			ActiveUsers:    int(float64(views) * activeUserRatio),
			EngagementRate: round(0.3+s.rnd.Float64()*0.6, 2),
		})
	}
	rankPages(pages)

	return &Snapshot{GeneratedAt: now, Series: series, Pages: pages}, nil
}

// between returns a uniform int in [lo, hi].
func (s *MockSource) between(lo, hi int) int {
	return lo + s.rnd.Intn(hi-lo+1)
}

// rankPages sorts by views descending and assigns 1-based ranks.
func rankPages(pages []PageStat) {
	sort.SliceStable(pages, func(i, j int) bool { return pages[i].Views > pages[j].Views })
	for i := range pages {
		pages[i].Rank = i + 1
	}
}

func round(x float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(x*p) / p
}

// FileSource reads a snapshot exported as JSON. The series is sorted by date
// so KPIs compare the two most recent days.
type FileSource struct {
	Path string
}

func (s FileSource) Snapshot(ctx context.Context) (*Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	raw, err := os.ReadFile(s.Path)
	if err != nil {
		return nil, err
	}
	var snap Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return nil, fmt.Errorf("decode snapshot %s: %w", s.Path, err)
	}
	sort.SliceStable(snap.Series, func(i, j int) bool { return snap.Series[i].Date < snap.Series[j].Date })
	rankPages(snap.Pages)
	return &snap, nil
}

// SnapshotCache is satisfied by cache.Memory[*Snapshot] and cache.Redis[*Snapshot].
type SnapshotCache interface {
	Get(ctx context.Context, key string) (*Snapshot, bool)
	Set(ctx context.Context, key string, snap *Snapshot)
}

// CachedSource serves one snapshot until the cache expires it.
type CachedSource struct {
	src   Source
	cache SnapshotCache
	key   string
}

func NewCachedSource(src Source, cache SnapshotCache) *CachedSource {
	return &CachedSource{src: src, cache: cache, key: "snapshot"}
}

func (s *CachedSource) Snapshot(ctx context.Context) (*Snapshot, error) {
	if snap, ok := s.cache.Get(ctx, s.key); ok {
		return snap, nil
	}
	snap, err := s.src.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	s.cache.Set(ctx, s.key, snap)
	return snap, nil
}
