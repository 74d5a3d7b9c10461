package app

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"fjord.fyi/byplakat/internal/cli"
	"fjord.fyi/byplakat/internal/db"
	"fjord.fyi/byplakat/internal/globaltime"
	"fjord.fyi/byplakat/internal/scraperhealth"
)

func runScrapers(args []string) int {
	fs := flag.NewFlagSet("scrapers", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	envLoader := cli.AddEnvFlag(fs, ".env", "Path to the .env file")
	timeout := fs.Duration("timeout", 30*time.Second, "Command timeout")
	days := fs.Int("days", 0, "Run history window in days (defaults to RUN_HISTORY_DAYS)")
	format := fs.String("format", outputFormatTable, "Output format: table or json")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "scrapers does not accept positional arguments")
		return 2
	}

	outputFormat, err := parseOutputFormat(*format, outputFormatTable)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid format: %v\n", err)
		return 2
	}

	ctx, cancel, cfg, pool, err := connectPool(*timeout, envLoader)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	defer cancel()
	defer pool.Close()

	windowDays := *days
	if windowDays <= 0 {
		windowDays = cfg.RunHistoryDays
	}

	since := globaltime.UTC().AddDate(0, 0, -windowDays)
	runs, err := pool.FetchRunHistory(ctx, since)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to fetch run history: %v\n", err)
		return 1
	}

	reports := scraperhealth.Classify(runRecordsFromRows(runs))

	if outputFormat == outputFormatJSON {
		if err := printJSON(map[string]any{
			"items":       reports,
			"window_days": windowDays,
		}); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to encode JSON: %v\n", err)
			return 1
		}
		return 0
	}

	rows := make([][]string, 0, len(reports))
	for _, report := range reports {
		rows = append(rows, []string{
			report.ScraperName,
			string(report.Status),
			truncateForTable(report.Reason, 60),
			formatUTCTimestamp(report.LastRunAt),
			fmt.Sprintf("%d", report.LastFound),
			fmt.Sprintf("%.1f", report.AvgFound),
			fmt.Sprintf("%d", report.TotalRuns),
		})
	}

	if err := writeTable(
		[]string{"SCRAPER", "STATUS", "REASON", "LAST RUN", "LAST FOUND", "AVG FOUND", "RUNS"},
		rows,
	); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to write table: %v\n", err)
		return 1
	}
	return 0
}

func runRecordsFromRows(runs []db.ScraperRun) []scraperhealth.RunRecord {
	records := make([]scraperhealth.RunRecord, 0, len(runs))
	for _, run := range runs {
		record := scraperhealth.RunRecord{
			ScraperName: run.ScraperName,
			Found:       run.Found,
			Inserted:    run.Inserted,
			Errored:     run.Errored,
			Skipped:     run.Skipped,
			RunAt:       run.RunAt,
		}
		if run.ErrorMessage != nil {
			record.ErrorMessage = *run.ErrorMessage
		}
		records = append(records, record)
	}
	return records
}
