package app

import (
	"fmt"
	"os"
	"strings"
)

// Run executes the CLI command and returns a process exit code.
func Run(args []string) int {
	if len(args) == 0 {
		printUsage()
		return 2
	}

	switch strings.ToLower(strings.TrimSpace(args[0])) {
	case "help", "--help", "-h":
		printUsage()
		return 0
	case "health":
		return runHealth(args[1:])
	case "ingest":
		return runIngest(args[1:])
	case "validate":
		return runValidate(args[1:])
	case "dedup":
		return runDedup(args[1:])
	case "scrapers":
		return runScrapers(args[1:])
	case "stats":
		return runStats(args[1:])
	case "delete":
		return runDelete(args[1:])
	case "serve":
		return runServe(args[1:])
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n\n", args[0])
		printUsage()
		return 2
	}
}

func printUsage() {
	fmt.Fprintln(os.Stderr, "byplakat CLI")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "Usage:")
	fmt.Fprintln(os.Stderr, "  byplakat <command> [flags]")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "Commands:")
	fmt.Fprintln(os.Stderr, "  health    Verify database connectivity")
	fmt.Fprintln(os.Stderr, "  ingest    Ingest a scraper batch of event payloads")
	fmt.Fprintln(os.Stderr, "  validate  Validate event JSON files against the v1 schema")
	fmt.Fprintln(os.Stderr, "  dedup     Collapse duplicate events across sources")
	fmt.Fprintln(os.Stderr, "  scrapers  Report scraper health from the run ledger")
	fmt.Fprintln(os.Stderr, "  stats     Show event table and ingest throughput stats")
	fmt.Fprintln(os.Stderr, "  delete    Delete an event by source URL")
	fmt.Fprintln(os.Stderr, "  serve     Start the Echo API server")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "Use \"byplakat <command> -h\" for command-specific flags.")
}
