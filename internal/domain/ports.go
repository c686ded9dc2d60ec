package domain

import "context"

// ReviewSource loads the full review table. Implementations memoize the result
// for the process lifetime; the backing data is immutable for a given run.
type ReviewSource interface {
	Load(ctx context.Context) ([]Review, error)
}

// ReviewRepository is the durable write/read side (MySQL).
type ReviewRepository interface {
	UpsertReviews(ctx context.Context, rs []Review) error
	ListReviews(ctx context.Context) ([]Review, error)
}

type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttlSec int) error
	Del(ctx context.Context, key string) error
}

// Read models & aggregates

// LabelCount is one row of a sentiment-count aggregate, ordered by the
// producing function (descending count, label as tiebreak).
type LabelCount struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// DayCount is one point of the review-volume series, ascending by date.
type DayCount struct {
	Date  string `json:"date"` // YYYY-MM-DD, UTC calendar date
	Count int    `json:"count"`
}

// VersionMatrix is the version×label cross-tabulation behind the heatmap.
// Cells[i][j] counts reviews for Versions[i] with Labels[j]; absent
// combinations are zero.
type VersionMatrix struct {
	Versions []string `json:"versions"`
	Labels   []string `json:"labels"`
	Cells    [][]int  `json:"cells"`
}

// ScoreSummary is the five-number summary of sentiment scores for one label,
// the data behind one box of the box plot.
type ScoreSummary struct {
	Label  string  `json:"label"`
	Min    float64 `json:"min"`
	Q1     float64 `json:"q1"`
	Median float64 `json:"median"`
	Q3     float64 `json:"q3"`
	Max    float64 `json:"max"`
	N      int     `json:"n"`
}

// Dashboard bundles the aggregates for one app/version selection. Only the
// fields the requested chart needs are populated; "all" fills everything.
type Dashboard struct {
	App             string         `json:"app"`
	Version         string         `json:"version"`
	Chart           string         `json:"chart"`
	Total           int            `json:"total"`
	SentimentCounts []LabelCount   `json:"sentiment_counts,omitempty"`
	DailyVolume     []DayCount     `json:"daily_volume,omitempty"`
	VersionMatrix   *VersionMatrix `json:"version_matrix,omitempty"`
	ScoreSummaries  []ScoreSummary `json:"score_summaries,omitempty"`
}
