// Package scraperhealth classifies scrapers as healthy, warning, broken or
// dormant from their historical run statistics. Classification is a pure
// function over the run log; it performs no I/O and may be called freely.
package scraperhealth

import (
	"fmt"
	"sort"
	"time"

	"fjord.fyi/byplakat/internal/sources"
)

type Status string

const (
	StatusBroken  Status = "broken"
	StatusWarning Status = "warning"
	StatusDormant Status = "dormant"
	StatusHealthy Status = "healthy"
)

const (
	brokenErrorStreak     = 3
	brokenZeroStreak      = 6
	warningZeroStreak     = 2
	zeroRuleMinAvgFound   = 2.0
	dropRuleMinAvgFound   = 5.0
	dropRuleFraction      = 0.3
	allZeroDormantMinRuns = 20
	maxErrorReasonLength  = 100
)

// RunRecord is one scraper invocation from the run log, consumed in
// reverse-chronological order.
type RunRecord struct {
	ScraperName  string
	Found        int
	Inserted     int
	Errored      bool
	ErrorMessage string
	Skipped      bool
	RunAt        time.Time
}

// Report is the classification verdict for one scraper.
type Report struct {
	ScraperName string    `json:"scraper_name"`
	Status      Status    `json:"status"`
	Reason      string    `json:"reason"`
	LastRunAt   time.Time `json:"last_run_at"`
	LastFound   int       `json:"last_found"`
	AvgFound    float64   `json:"avg_found"`
	TotalRuns   int       `json:"total_runs"`
}

var severityOrder = map[Status]int{
	StatusBroken:  0,
	StatusWarning: 1,
	StatusDormant: 2,
	StatusHealthy: 3,
}

// Classify groups run records by scraper, drops skipped runs before any
// statistic is computed, and applies the classification rules in precedence
// order. Scrapers with no real runs are omitted. Output is sorted broken,
// warning, dormant, healthy, stable within each bucket.
func Classify(runs []RunRecord) []Report {
	grouped := make(map[string][]RunRecord)
	order := make([]string, 0)
	for _, run := range runs {
		if run.Skipped {
			continue
		}
		if _, seen := grouped[run.ScraperName]; !seen {
			order = append(order, run.ScraperName)
		}
		grouped[run.ScraperName] = append(grouped[run.ScraperName], run)
	}

	reports := make([]Report, 0, len(order))
	for _, name := range order {
		reports = append(reports, classifyOne(name, grouped[name]))
	}

	sort.SliceStable(reports, func(i, j int) bool {
		return severityOrder[reports[i].Status] < severityOrder[reports[j].Status]
	})
	return reports
}

func classifyOne(name string, runs []RunRecord) Report {
	// Most recent first.
	sort.SliceStable(runs, func(i, j int) bool {
		return runs[i].RunAt.After(runs[j].RunAt)
	})

	latest := runs[0]
	total := len(runs)

	sum := 0
	for _, run := range runs {
		sum += run.Found
	}
	avgFound := float64(sum) / float64(total)

	consecutiveZeros := 0
	for _, run := range runs {
		if run.Found == 0 && !run.Errored {
			consecutiveZeros++
			continue
		}
		break
	}

	consecutiveErrors := 0
	for _, run := range runs {
		if run.Errored {
			consecutiveErrors++
			continue
		}
		break
	}

	report := Report{
		ScraperName: name,
		LastRunAt:   latest.RunAt,
		LastFound:   latest.Found,
		AvgFound:    avgFound,
		TotalRuns:   total,
	}

	status, reason := classifyStats(name, latest, avgFound, consecutiveZeros, consecutiveErrors, runs)
	report.Status = status
	report.Reason = reason
	return report
}

func classifyStats(
	name string,
	latest RunRecord,
	avgFound float64,
	consecutiveZeros int,
	consecutiveErrors int,
	runs []RunRecord,
) (Status, string) {
	if consecutiveErrors >= brokenErrorStreak {
		return StatusBroken, fmt.Sprintf("%d consecutive errors, last: %s",
			consecutiveErrors, truncateReason(latest.ErrorMessage))
	}

	if latest.Errored {
		return StatusWarning, "error on last run: " + truncateReason(latest.ErrorMessage)
	}

	if latest.Found == 0 && avgFound >= zeroRuleMinAvgFound {
		if sources.IsSeasonal(name) {
			return StatusDormant, "seasonal, 0 found"
		}
		if consecutiveZeros >= brokenZeroStreak {
			return StatusBroken, fmt.Sprintf("%d consecutive runs with 0 found", consecutiveZeros)
		}
		if consecutiveZeros >= warningZeroStreak {
			return StatusWarning, fmt.Sprintf("%d consecutive runs with 0 found", consecutiveZeros)
		}
	}

	if avgFound >= dropRuleMinAvgFound && latest.Found > 0 &&
		float64(latest.Found) < avgFound*dropRuleFraction {
		return StatusWarning, fmt.Sprintf("significant drop: found %d, average %.1f",
			latest.Found, avgFound)
	}

	if len(runs) >= allZeroDormantMinRuns && allZeroWithoutErrors(runs) {
		return StatusDormant, "no events in 14+ days"
	}

	return StatusHealthy, ""
}

func allZeroWithoutErrors(runs []RunRecord) bool {
	for _, run := range runs {
		if run.Found != 0 || run.Errored {
			return false
		}
	}
	return true
}

func truncateReason(message string) string {
	runes := []rune(message)
	if len(runes) <= maxErrorReasonLength {
		return message
	}
	return string(runes[:maxErrorReasonLength])
}
