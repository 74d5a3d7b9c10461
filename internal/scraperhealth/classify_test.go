package scraperhealth

import (
	"strings"
	"testing"
	"time"
)

func runSeries(name string, founds []int) []RunRecord {
	// Index 0 is the most recent run.
	base := time.Date(2026, 8, 30, 6, 0, 0, 0, time.UTC)
	runs := make([]RunRecord, 0, len(founds))
	for i, found := range founds {
		runs = append(runs, RunRecord{
			ScraperName: name,
			Found:       found,
			RunAt:       base.Add(-time.Duration(i) * 24 * time.Hour),
		})
	}
	return runs
}

func findReport(t *testing.T, reports []Report, name string) Report {
	t.Helper()
	for _, report := range reports {
		if report.ScraperName == name {
			return report
		}
	}
	t.Fatalf("no report for scraper %q", name)
	return Report{}
}

func TestClassify_SeasonalScraperGoesDormantNotBroken(t *testing.T) {
	t.Parallel()

	pattern := []int{0, 0, 0, 0, 0, 0, 12, 15}

	seasonal := runSeries("festspillene", pattern)
	other := runSeries("grieghallen", pattern)

	reports := Classify(append(seasonal, other...))

	if got := findReport(t, reports, "festspillene"); got.Status != StatusDormant {
		t.Fatalf("expected seasonal scraper to be dormant, got %q (%s)", got.Status, got.Reason)
	}
	if got := findReport(t, reports, "grieghallen"); got.Status != StatusBroken {
		t.Fatalf("expected non-seasonal scraper to be broken, got %q (%s)", got.Status, got.Reason)
	}
}

func TestClassify_IgnoresSkippedRuns(t *testing.T) {
	t.Parallel()

	base := time.Date(2026, 8, 30, 6, 0, 0, 0, time.UTC)
	runs := []RunRecord{
		{ScraperName: "hulen", Found: 0, Skipped: true, RunAt: base},
		{ScraperName: "hulen", Found: 0, Skipped: true, RunAt: base.Add(-24 * time.Hour)},
		{ScraperName: "hulen", Found: 15, RunAt: base.Add(-48 * time.Hour)},
	}

	reports := Classify(runs)
	got := findReport(t, reports, "hulen")
	if got.Status != StatusHealthy {
		t.Fatalf("expected healthy, got %q (%s)", got.Status, got.Reason)
	}
	if got.LastFound != 15 {
		t.Fatalf("expected skipped runs to be invisible, last found %d", got.LastFound)
	}
	if got.TotalRuns != 1 {
		t.Fatalf("expected one real run, got %d", got.TotalRuns)
	}
}

func TestClassify_ConsecutiveErrorsBreak(t *testing.T) {
	t.Parallel()

	base := time.Date(2026, 8, 30, 6, 0, 0, 0, time.UTC)
	longMessage := strings.Repeat("x", 150)
	runs := []RunRecord{
		{ScraperName: "kvarteret", Errored: true, ErrorMessage: longMessage, RunAt: base},
		{ScraperName: "kvarteret", Errored: true, RunAt: base.Add(-24 * time.Hour)},
		{ScraperName: "kvarteret", Errored: true, RunAt: base.Add(-48 * time.Hour)},
		{ScraperName: "kvarteret", Found: 8, RunAt: base.Add(-72 * time.Hour)},
	}

	got := findReport(t, Classify(runs), "kvarteret")
	if got.Status != StatusBroken {
		t.Fatalf("expected broken, got %q", got.Status)
	}
	if strings.Contains(got.Reason, longMessage) {
		t.Fatalf("expected error message to be truncated: %q", got.Reason)
	}
	if !strings.Contains(got.Reason, strings.Repeat("x", 100)) {
		t.Fatalf("expected first 100 chars of the error in the reason: %q", got.Reason)
	}
}

func TestClassify_SingleErrorWarnsOnly(t *testing.T) {
	t.Parallel()

	base := time.Date(2026, 8, 30, 6, 0, 0, 0, time.UTC)
	runs := []RunRecord{
		{ScraperName: "landmark", Errored: true, ErrorMessage: "timeout", RunAt: base},
		{ScraperName: "landmark", Found: 4, RunAt: base.Add(-24 * time.Hour)},
	}

	got := findReport(t, Classify(runs), "landmark")
	if got.Status != StatusWarning {
		t.Fatalf("expected warning, got %q", got.Status)
	}
	if !strings.Contains(got.Reason, "timeout") {
		t.Fatalf("expected reason to cite the error: %q", got.Reason)
	}
}

func TestClassify_SignificantDrop(t *testing.T) {
	t.Parallel()

	// avg (10+10+10+1)/4 = 7.75 >= 5, latest 1 < 7.75*0.3.
	got := findReport(t, Classify(runSeries("bergenkino", []int{1, 10, 10, 10})), "bergenkino")
	if got.Status != StatusWarning {
		t.Fatalf("expected significant-drop warning, got %q (%s)", got.Status, got.Reason)
	}
}

func TestClassify_ZeroStreakGatedOnAverage(t *testing.T) {
	t.Parallel()

	// avgFound < 2, so the zero-found rules never engage: day-one scrapers
	// with nothing to report stay healthy.
	got := findReport(t, Classify(runSeries("lydgalleriet", []int{0})), "lydgalleriet")
	if got.Status != StatusHealthy {
		t.Fatalf("expected healthy on insufficient data, got %q (%s)", got.Status, got.Reason)
	}

	// Two recent zeros against a solid average warn.
	got = findReport(t, Classify(runSeries("ricks", []int{0, 0, 9, 9})), "ricks")
	if got.Status != StatusWarning {
		t.Fatalf("expected zero-streak warning, got %q (%s)", got.Status, got.Reason)
	}
}

func TestClassify_AllZeroHistoryIsDormant(t *testing.T) {
	t.Parallel()

	founds := make([]int, 20)
	got := findReport(t, Classify(runSeries("sjufjellsturen", founds)), "sjufjellsturen")
	if got.Status != StatusDormant {
		t.Fatalf("expected dormant, got %q (%s)", got.Status, got.Reason)
	}
}

func TestClassify_OmitsScrapersWithOnlySkippedRuns(t *testing.T) {
	t.Parallel()

	runs := []RunRecord{
		{ScraperName: "garage", Skipped: true, RunAt: time.Date(2026, 8, 30, 6, 0, 0, 0, time.UTC)},
	}
	if reports := Classify(runs); len(reports) != 0 {
		t.Fatalf("expected no reports, got %d", len(reports))
	}
}

func TestClassify_SortsBySeverity(t *testing.T) {
	t.Parallel()

	runs := append(runSeries("grieghallen", []int{5, 5}),
		append(runSeries("ricks", []int{0, 0, 9, 9}),
			runSeries("dns", []int{0, 0, 0, 0, 0, 0, 12, 15})...)...)

	reports := Classify(runs)
	if len(reports) != 3 {
		t.Fatalf("expected 3 reports, got %d", len(reports))
	}
	if reports[0].ScraperName != "dns" || reports[0].Status != StatusBroken {
		t.Fatalf("expected broken first, got %q (%s)", reports[0].ScraperName, reports[0].Status)
	}
	if reports[1].ScraperName != "ricks" || reports[1].Status != StatusWarning {
		t.Fatalf("expected warning second, got %q (%s)", reports[1].ScraperName, reports[1].Status)
	}
	if reports[2].ScraperName != "grieghallen" || reports[2].Status != StatusHealthy {
		t.Fatalf("expected healthy last, got %q (%s)", reports[2].ScraperName, reports[2].Status)
	}
}
