package app_test

import (
	"testing"
	"time"

	"fintech_sentiment/internal/app"
	"fintech_sentiment/internal/domain"
)

func ptr[T any](v T) *T { return &v }

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02 15:04:05", s)
	if err != nil {
		panic(err)
	}
	return t
}

// sampleTable: three apps, mixed versions (incl. missing), mixed labels/dates.
func sampleTable() []domain.Review {
	return []domain.Review{
		{AppName: "Google Pay", Version: ptr("1.0"), Label: "negative", Score: 0.91, At: day("2023-07-02 09:00:00")},
		{AppName: "Google Pay", Version: ptr("1.0"), Label: "positive", Score: 0.80, At: day("2023-07-01 10:00:00")},
		{AppName: "Google Pay", Version: ptr("1.1"), Label: "negative", Score: 0.75, At: day("2023-07-02 17:30:00")},
		{AppName: "Google Pay", Version: nil, Label: "neutral", Score: 0.50, At: day("2023-07-03 08:00:00")},
		{AppName: "PhonePe", Version: ptr("2.3"), Label: "positive", Score: 0.95, At: day("2023-07-01 12:00:00")},
		{AppName: "PhonePe", Version: ptr("2.3"), Label: "positive", Score: 0.60, At: day("2023-07-04 12:00:00")},
		{AppName: "Paytm", Version: ptr("9.9"), Label: "negative", Score: 0.70, At: day("2023-07-05 23:59:59")},
	}
}

func TestFilter_AllVersions_PartitionsTable(t *testing.T) {
	table := sampleTable()

	total := 0
	for _, a := range app.Apps(table) {
		view := app.Filter(table, a, app.VersionAll)
		for _, r := range view {
			if r.AppName != a {
				t.Fatalf("app %s view contains row for %s", a, r.AppName)
			}
		}
		total += len(view)
	}
	if total != len(table) {
		t.Fatalf("views do not partition table: got %d rows, want %d", total, len(table))
	}
}

func TestFilter_VersionRestriction(t *testing.T) {
	table := sampleTable()

	view := app.Filter(table, "Google Pay", "1.0")
	if len(view) != 2 {
		t.Fatalf("want 2 rows for Google Pay 1.0, got %d", len(view))
	}
	for _, r := range view {
		if r.Version == nil || *r.Version != "1.0" {
			t.Fatalf("row with wrong version in view: %+v", r)
		}
	}

	// Rows without a version never match a concrete version.
	if got := app.Filter(table, "Google Pay", "nope"); len(got) != 0 {
		t.Fatalf("want empty view for unknown version, got %d rows", len(got))
	}
}

func TestFilter_DoesNotMutateSource(t *testing.T) {
	table := sampleTable()

	view := app.Filter(table, "Google Pay", app.VersionAll)
	if len(view) == 0 {
		t.Fatal("empty view")
	}
	view[0].AppName = "MUTATED"
	view[0].Label = "MUTATED"

	for _, r := range table {
		if r.AppName == "MUTATED" || r.Label == "MUTATED" {
			t.Fatal("filter aliased the source table")
		}
	}
}

func TestApps_FirstSeenOrder(t *testing.T) {
	got := app.Apps(sampleTable())
	want := []string{"Google Pay", "PhonePe", "Paytm"}
	if len(got) != len(want) {
		t.Fatalf("apps: got %v want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("apps: got %v want %v", got, want)
		}
	}
}

func TestVersions_ExcludesMissing(t *testing.T) {
	got := app.Versions(sampleTable(), "Google Pay")
	if len(got) != 2 || got[0] != "1.0" || got[1] != "1.1" {
		t.Fatalf("versions: got %v", got)
	}
}

func TestSentimentCounts_TotalsAndOrder(t *testing.T) {
	table := sampleTable()
	for _, a := range app.Apps(table) {
		for _, v := range append([]string{app.VersionAll}, app.Versions(table, a)...) {
			view := app.Filter(table, a, v)
			counts := app.SentimentCounts(view)

			sum := 0
			for _, c := range counts {
				sum += c.Count
			}
			if sum != len(view) {
				t.Fatalf("%s/%s: counts sum %d != view size %d", a, v, sum, len(view))
			}
			for i := 1; i < len(counts); i++ {
				if counts[i-1].Count < counts[i].Count {
					t.Fatalf("%s/%s: counts not descending: %+v", a, v, counts)
				}
				if counts[i-1].Count == counts[i].Count && counts[i-1].Label > counts[i].Label {
					t.Fatalf("%s/%s: tie not broken by label: %+v", a, v, counts)
				}
			}
		}
	}
}

func TestDailyVolume_SortedUniqueDates(t *testing.T) {
	view := app.Filter(sampleTable(), "Google Pay", app.VersionAll)
	vol := app.DailyVolume(view)

	if len(vol) != 3 {
		t.Fatalf("want 3 dates, got %v", vol)
	}
	sum := 0
	for i, dc := range vol {
		sum += dc.Count
		if i > 0 && vol[i-1].Date >= dc.Date {
			t.Fatalf("dates not strictly ascending: %v", vol)
		}
	}
	if sum != len(view) {
		t.Fatalf("volume sum %d != view size %d", sum, len(view))
	}
	if vol[0].Date != "2023-07-01" || vol[0].Count != 1 {
		t.Fatalf("unexpected first day: %+v", vol[0])
	}
	if vol[1].Date != "2023-07-02" || vol[1].Count != 2 {
		t.Fatalf("unexpected second day: %+v", vol[1])
	}
}

func TestVersionSentimentMatrix_ZerosAndObservedPairs(t *testing.T) {
	view := app.Filter(sampleTable(), "Google Pay", app.VersionAll)
	m := app.VersionSentimentMatrix(view)

	// versioned rows only: 1.0 and 1.1; labels observed on them
	if len(m.Versions) != 2 || m.Versions[0] != "1.0" || m.Versions[1] != "1.1" {
		t.Fatalf("versions: %v", m.Versions)
	}

	observed := map[[2]string]bool{}
	for _, r := range view {
		if r.Version != nil {
			observed[[2]string{*r.Version, r.Label}] = true
		}
	}
	for i, v := range m.Versions {
		for j, l := range m.Labels {
			c := m.Cells[i][j]
			if c < 0 {
				t.Fatalf("negative cell at %s/%s", v, l)
			}
			if observed[[2]string{v, l}] && c < 1 {
				t.Fatalf("observed pair %s/%s has count %d", v, l, c)
			}
			if !observed[[2]string{v, l}] && c != 0 {
				t.Fatalf("unobserved pair %s/%s has count %d", v, l, c)
			}
		}
	}
}

func TestScoreSummaries_FiveNumber(t *testing.T) {
	view := []domain.Review{
		{AppName: "A", Label: "positive", Score: 0.1, At: day("2023-01-01 00:00:00")},
		{AppName: "A", Label: "positive", Score: 0.2, At: day("2023-01-01 00:00:00")},
		{AppName: "A", Label: "positive", Score: 0.3, At: day("2023-01-01 00:00:00")},
		{AppName: "A", Label: "positive", Score: 0.4, At: day("2023-01-01 00:00:00")},
		{AppName: "A", Label: "positive", Score: 0.5, At: day("2023-01-01 00:00:00")},
		{AppName: "A", Label: "negative", Score: 0.9, At: day("2023-01-01 00:00:00")},
	}
	got := app.ScoreSummaries(view)
	if len(got) != 2 {
		t.Fatalf("want 2 summaries, got %v", got)
	}

	// sorted by label: negative first
	neg := got[0]
	if neg.Label != "negative" || neg.N != 1 || neg.Min != 0.9 || neg.Max != 0.9 || neg.Median != 0.9 {
		t.Fatalf("negative summary: %+v", neg)
	}

	pos := got[1]
	if pos.Label != "positive" || pos.N != 5 {
		t.Fatalf("positive summary: %+v", pos)
	}
	if pos.Min != 0.1 || pos.Max != 0.5 {
		t.Fatalf("positive min/max: %+v", pos)
	}
	if !approxEq(pos.Median, 0.3) || !approxEq(pos.Q1, 0.2) || !approxEq(pos.Q3, 0.4) {
		t.Fatalf("positive quartiles: %+v", pos)
	}
}

func approxEq(a, b float64) bool {
	d := a - b
	return d < 1e-9 && d > -1e-9
}
