package db

import (
	"context"
	"fmt"
	"time"
)

// StatsBucketCount is one row of a grouped count.
type StatsBucketCount struct {
	Bucket string `json:"bucket"`
	Events int64  `json:"events"`
}

// StatsTotals stores table-wide counts.
type StatsTotals struct {
	Events   int64 `json:"events"`
	Upcoming int64 `json:"upcoming"`
	Sources  int64 `json:"sources"`
}

// IngestThroughput stores today's ledger counters.
type IngestThroughput struct {
	RunsToday     int64 `json:"runs_today"`
	FoundToday    int64 `json:"found_today"`
	InsertedToday int64 `json:"inserted_today"`
	ErroredToday  int64 `json:"errored_today"`
}

// TableStats is the read model returned by the stats command.
type TableStats struct {
	Day        string             `json:"day"`
	Totals     StatsTotals        `json:"totals"`
	ByCategory []StatsBucketCount `json:"by_category"`
	ByBydel    []StatsBucketCount `json:"by_bydel"`
	BySource   []StatsBucketCount `json:"by_source"`
	Throughput IngestThroughput   `json:"throughput"`
}

// QueryTableStats returns event counts grouped by category, bydel and source
// plus today's run-ledger throughput.
func (p *Pool) QueryTableStats(ctx context.Context, dayStart, dayEnd time.Time) (*TableStats, error) {
	startUTC := dayStart.UTC()
	endUTC := dayEnd.UTC()
	if !startUTC.Before(endUTC) {
		return nil, fmt.Errorf("dayStart must be before dayEnd")
	}

	stats := &TableStats{
		Day: startUTC.Format("2006-01-02"),
	}

	const totalsQuery = `
SELECT
	COUNT(*)::BIGINT AS events,
	COUNT(*) FILTER (WHERE e.starts_at >= $1)::BIGINT AS upcoming,
	COUNT(DISTINCT e.source)::BIGINT AS sources
FROM byplakat.events e
`
	if err := p.QueryRow(ctx, totalsQuery, startUTC).Scan(
		&stats.Totals.Events,
		&stats.Totals.Upcoming,
		&stats.Totals.Sources,
	); err != nil {
		return nil, fmt.Errorf("query totals: %w", err)
	}

	var err error
	if stats.ByCategory, err = p.queryBucketCounts(ctx, "category"); err != nil {
		return nil, err
	}
	if stats.ByBydel, err = p.queryBucketCounts(ctx, "bydel"); err != nil {
		return nil, err
	}
	if stats.BySource, err = p.queryBucketCounts(ctx, "source"); err != nil {
		return nil, err
	}

	const throughputQuery = `
SELECT
	COUNT(*)::BIGINT AS runs_today,
	COALESCE(SUM(r.found), 0)::BIGINT AS found_today,
	COALESCE(SUM(r.inserted), 0)::BIGINT AS inserted_today,
	COUNT(*) FILTER (WHERE r.errored)::BIGINT AS errored_today
FROM byplakat.scraper_runs r
WHERE r.run_at >= $1 AND r.run_at < $2
`
	if err := p.QueryRow(ctx, throughputQuery, startUTC, endUTC).Scan(
		&stats.Throughput.RunsToday,
		&stats.Throughput.FoundToday,
		&stats.Throughput.InsertedToday,
		&stats.Throughput.ErroredToday,
	); err != nil {
		return nil, fmt.Errorf("query throughput: %w", err)
	}

	return stats, nil
}

func (p *Pool) queryBucketCounts(ctx context.Context, column string) ([]StatsBucketCount, error) {
	switch column {
	case "category", "bydel", "source":
	default:
		return nil, fmt.Errorf("unsupported stats column %q", column)
	}

	q := fmt.Sprintf(`
SELECT e.%s, COUNT(*)::BIGINT
FROM byplakat.events e
GROUP BY e.%s
ORDER BY COUNT(*) DESC, e.%s ASC
`, column, column, column)

	rows, err := p.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("query counts by %s: %w", column, err)
	}
	defer rows.Close()

	counts := make([]StatsBucketCount, 0, 16)
	for rows.Next() {
		var count StatsBucketCount
		if err := rows.Scan(&count.Bucket, &count.Events); err != nil {
			return nil, fmt.Errorf("scan count by %s: %w", column, err)
		}
		counts = append(counts, count)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate counts by %s: %w", column, err)
	}
	return counts, nil
}
