package db

import (
	"context"
	"fmt"
	"time"
)

// InsertScraperRun appends one row to the run ledger.
func (p *Pool) InsertScraperRun(ctx context.Context, run *ScraperRun) error {
	if run == nil {
		return fmt.Errorf("scraper run is nil")
	}

	const q = `
INSERT INTO byplakat.scraper_runs (
	scraper_name,
	found,
	inserted,
	errored,
	error_message,
	skipped,
	run_at
)
VALUES ($1, $2, $3, $4, $5, $6, $7)
`

	_, err := p.Exec(
		ctx,
		q,
		run.ScraperName,
		run.Found,
		run.Inserted,
		run.Errored,
		run.ErrorMessage,
		run.Skipped,
		run.RunAt,
	)
	if err != nil {
		return fmt.Errorf("insert scraper run %q: %w", run.ScraperName, err)
	}
	return nil
}

// FetchRunHistory reads run rows since the given instant, most recent first,
// as the health classifier expects them.
func (p *Pool) FetchRunHistory(ctx context.Context, since time.Time) ([]ScraperRun, error) {
	const q = `
SELECT
	r.run_id,
	r.scraper_name,
	r.found,
	r.inserted,
	r.errored,
	r.error_message,
	r.skipped,
	r.run_at
FROM byplakat.scraper_runs r
WHERE r.run_at >= $1
ORDER BY r.run_at DESC
`

	rows, err := p.Query(ctx, q, since.UTC())
	if err != nil {
		return nil, fmt.Errorf("fetch run history: %w", err)
	}
	defer rows.Close()

	runs := make([]ScraperRun, 0, 128)
	for rows.Next() {
		var run ScraperRun
		if err := rows.Scan(
			&run.RunID,
			&run.ScraperName,
			&run.Found,
			&run.Inserted,
			&run.Errored,
			&run.ErrorMessage,
			&run.Skipped,
			&run.RunAt,
		); err != nil {
			return nil, fmt.Errorf("scan scraper run: %w", err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate scraper runs: %w", err)
	}
	return runs, nil
}
