package app

import (
	"sort"

	"fintech_sentiment/internal/domain"
)

// VersionAll is the sentinel meaning "do not restrict by version".
const VersionAll = "All"

// Filter returns the rows matching app exactly and, unless version is
// VersionAll (or empty), matching version exactly. Rows without a version
// never match a concrete version. The result is a fresh slice; the source
// table is never mutated or aliased into.
func Filter(table []domain.Review, app, version string) []domain.Review {
	out := make([]domain.Review, 0, len(table))
	for _, r := range table {
		if r.AppName != app {
			continue
		}
		if version != "" && version != VersionAll {
			if r.Version == nil || *r.Version != version {
				continue
			}
		}
		out = append(out, r)
	}
	return out
}

// Apps lists distinct app names in first-seen table order.
func Apps(table []domain.Review) []string {
	seen := make(map[string]struct{}, 8)
	var out []string
	for _, r := range table {
		if _, ok := seen[r.AppName]; ok {
			continue
		}
		seen[r.AppName] = struct{}{}
		out = append(out, r.AppName)
	}
	return out
}

// Versions lists distinct non-empty versions observed for app, sorted.
// Rows with no recorded version are excluded from the enumeration.
func Versions(table []domain.Review, app string) []string {
	seen := make(map[string]struct{}, 8)
	var out []string
	for _, r := range table {
		if r.AppName != app || r.Version == nil || *r.Version == "" {
			continue
		}
		if _, ok := seen[*r.Version]; ok {
			continue
		}
		seen[*r.Version] = struct{}{}
		out = append(out, *r.Version)
	}
	sort.Strings(out)
	return out
}

// SentimentCounts group-counts the view by label, descending by count with
// label as the stable tiebreak.
func SentimentCounts(view []domain.Review) []domain.LabelCount {
	byLabel := make(map[string]int, 4)
	for _, r := range view {
		byLabel[r.Label]++
	}
	out := make([]domain.LabelCount, 0, len(byLabel))
	for l, n := range byLabel {
		out = append(out, domain.LabelCount{Label: l, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Label < out[j].Label
	})
	return out
}

// DailyVolume group-counts the view by UTC calendar date of the review
// timestamp, ascending by date. Dates are unique in the result.
func DailyVolume(view []domain.Review) []domain.DayCount {
	byDay := make(map[string]int, 32)
	for _, r := range view {
		byDay[r.At.UTC().Format("2006-01-02")]++
	}
	out := make([]domain.DayCount, 0, len(byDay))
	for d, n := range byDay {
		out = append(out, domain.DayCount{Date: d, Count: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out
}

// VersionSentimentMatrix cross-tabulates the view by (version, label).
// Rows cover the versions observed in the view (sorted), columns the labels
// observed (sorted); every absent combination is an explicit zero cell.
// Rows without a recorded version are skipped.
func VersionSentimentMatrix(view []domain.Review) *domain.VersionMatrix {
	cells := make(map[string]map[string]int, 8)
	labels := make(map[string]struct{}, 4)
	for _, r := range view {
		if r.Version == nil || *r.Version == "" {
			continue
		}
		row := cells[*r.Version]
		if row == nil {
			row = make(map[string]int, 4)
			cells[*r.Version] = row
		}
		row[r.Label]++
		labels[r.Label] = struct{}{}
	}

	m := &domain.VersionMatrix{
		Versions: make([]string, 0, len(cells)),
		Labels:   make([]string, 0, len(labels)),
	}
	for v := range cells {
		m.Versions = append(m.Versions, v)
	}
	for l := range labels {
		m.Labels = append(m.Labels, l)
	}
	sort.Strings(m.Versions)
	sort.Strings(m.Labels)

	m.Cells = make([][]int, len(m.Versions))
	for i, v := range m.Versions {
		m.Cells[i] = make([]int, len(m.Labels))
		for j, l := range m.Labels {
			m.Cells[i][j] = cells[v][l]
		}
	}
	return m
}

// ScoreSummaries computes the per-label five-number summary of sentiment
// scores (min, quartiles, median, max), one entry per label sorted by label.
func ScoreSummaries(view []domain.Review) []domain.ScoreSummary {
	byLabel := make(map[string][]float64, 4)
	for _, r := range view {
		byLabel[r.Label] = append(byLabel[r.Label], r.Score)
	}
	out := make([]domain.ScoreSummary, 0, len(byLabel))
	for l, scores := range byLabel {
		sort.Float64s(scores)
		out = append(out, domain.ScoreSummary{
			Label:  l,
			Min:    scores[0],
			Q1:     quantile(scores, 0.25),
			Median: quantile(scores, 0.5),
			Q3:     quantile(scores, 0.75),
			Max:    scores[len(scores)-1],
			N:      len(scores),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Label < out[j].Label })
	return out
}

// quantile interpolates linearly between closest ranks; sorted must be
// non-empty and ascending.
func quantile(sorted []float64, q float64) float64 {
	if len(sorted) == 1 {
		return sorted[0]
	}
	pos := q * float64(len(sorted)-1)
	lo := int(pos)
	if lo >= len(sorted)-1 {
		return sorted[len(sorted)-1]
	}
	frac := pos - float64(lo)
	return sorted[lo] + frac*(sorted[lo+1]-sorted[lo])
}
