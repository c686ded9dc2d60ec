package app

import (
	"context"
	"fmt"
	"time"

	"fintech_sentiment/internal/domain"
)

// Chart selector values accepted by the dashboard endpoint.
const (
	ChartPie     = "pie"
	ChartBar     = "bar"
	ChartBox     = "box"
	ChartLine    = "line"
	ChartHeatmap = "heatmap"
	ChartAll     = "all"
)

var validCharts = map[string]struct{}{
	ChartPie: {}, ChartBar: {}, ChartBox: {}, ChartLine: {}, ChartHeatmap: {}, ChartAll: {},
}

func ValidChart(c string) bool {
	_, ok := validCharts[c]
	return ok
}

// DashboardService serves filtered aggregates from the memoized review table,
// with a cache-aside layer in front of the recomputation.
type DashboardService struct {
	source   domain.ReviewSource
	cache    domain.Cache
	cacheTTL time.Duration
}

func NewDashboardService(s domain.ReviewSource, c domain.Cache, ttl time.Duration) *DashboardService {
	return &DashboardService{source: s, cache: c, cacheTTL: ttl}
}

func (s *DashboardService) Apps(ctx context.Context) ([]string, error) {
	table, err := s.source.Load(ctx)
	if err != nil {
		return nil, err
	}
	return Apps(table), nil
}

func (s *DashboardService) Versions(ctx context.Context, app string) ([]string, error) {
	table, err := s.source.Load(ctx)
	if err != nil {
		return nil, err
	}
	if !contains(Apps(table), app) {
		return nil, domain.ErrNotFound
	}
	return Versions(table, app), nil
}

// Dashboard recomputes (or serves from cache) the aggregates for one
// app/version/chart selection. The input table is immutable for a run, so
// cached entries never need invalidation; TTL is the only expiry.
func (s *DashboardService) Dashboard(ctx context.Context, app, version, chart string) (domain.Dashboard, error) {
	if version == "" {
		version = VersionAll
	}
	key := fmt.Sprintf("dash:%s:%s:%s", app, version, chart)
	var d domain.Dashboard
	if ok, _ := s.cache.Get(ctx, key, &d); ok {
		return d, nil
	}

	table, err := s.source.Load(ctx)
	if err != nil {
		return domain.Dashboard{}, err
	}
	if !contains(Apps(table), app) {
		return domain.Dashboard{}, domain.ErrNotFound
	}

	view := Filter(table, app, version)
	d = domain.Dashboard{
		App:     app,
		Version: version,
		Chart:   chart,
		Total:   len(view),
	}
	if chart == ChartPie || chart == ChartBar || chart == ChartAll {
		d.SentimentCounts = SentimentCounts(view)
	}
	if chart == ChartLine || chart == ChartAll {
		d.DailyVolume = DailyVolume(view)
	}
	if chart == ChartHeatmap || chart == ChartAll {
		d.VersionMatrix = VersionSentimentMatrix(view)
	}
	if chart == ChartBox || chart == ChartAll {
		d.ScoreSummaries = ScoreSummaries(view)
	}

	_ = s.cache.Set(ctx, key, d, int(s.cacheTTL.Seconds()))
	return d, nil
}

func contains(ss []string, s string) bool {
	for _, v := range ss {
		if v == s {
			return true
		}
	}
	return false
}
