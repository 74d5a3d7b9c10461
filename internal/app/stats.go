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
)

func runStats(args []string) int {
	fs := flag.NewFlagSet("stats", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	envLoader := cli.AddEnvFlag(fs, ".env", "Path to the .env file")
	timeout := fs.Duration("timeout", 30*time.Second, "Command timeout")
	format := fs.String("format", outputFormatTable, "Output format: table or json")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "stats does not accept positional arguments")
		return 2
	}

	outputFormat, err := parseOutputFormat(*format, outputFormatTable)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid format: %v\n", err)
		return 2
	}

	ctx, cancel, _, pool, err := connectPool(*timeout, envLoader)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	defer cancel()
	defer pool.Close()

	dayStart := globaltime.DayUTC()
	_, dayEnd := utcDayBounds(dayStart)

	stats, err := pool.QueryTableStats(ctx, dayStart, dayEnd)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to query stats: %v\n", err)
		return 1
	}

	if outputFormat == outputFormatJSON {
		if err := printJSON(stats); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to encode JSON: %v\n", err)
			return 1
		}
		return 0
	}

	fmt.Printf("day=%s\n", stats.Day)
	fmt.Printf(
		"events=%d upcoming=%d sources=%d\n",
		stats.Totals.Events,
		stats.Totals.Upcoming,
		stats.Totals.Sources,
	)
	fmt.Printf(
		"runs_today=%d found_today=%d inserted_today=%d errored_today=%d\n",
		stats.Throughput.RunsToday,
		stats.Throughput.FoundToday,
		stats.Throughput.InsertedToday,
		stats.Throughput.ErroredToday,
	)

	printBucketTable := func(label string, buckets []db.StatsBucketCount) int {
		rows := make([][]string, 0, len(buckets))
		for _, bucket := range buckets {
			rows = append(rows, []string{
				truncateForTable(bucket.Bucket, 40),
				fmt.Sprintf("%d", bucket.Events),
			})
		}
		fmt.Printf("\n%s\n", label)
		if err := writeTable([]string{"BUCKET", "EVENTS"}, rows); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to write table: %v\n", err)
			return 1
		}
		return 0
	}

	if code := printBucketTable("By category:", stats.ByCategory); code != 0 {
		return code
	}
	if code := printBucketTable("By bydel:", stats.ByBydel); code != 0 {
		return code
	}
	if code := printBucketTable("By source:", stats.BySource); code != 0 {
		return code
	}
	return 0
}
