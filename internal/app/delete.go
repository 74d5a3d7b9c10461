package app

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"fjord.fyi/byplakat/internal/cli"
)

func runDelete(args []string) int {
	fs := flag.NewFlagSet("delete", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	envLoader := cli.AddEnvFlag(fs, ".env", "Path to the .env file")
	timeout := fs.Duration("timeout", 30*time.Second, "Command timeout")
	dryRun := fs.Bool("dry-run", false, "Preview the affected row without applying changes")
	force := fs.Bool("force", false, "Skip confirmation prompt")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Usage:")
		fmt.Fprintln(os.Stderr, "  byplakat delete <source_url> [--dry-run] [--force] [--env .env] [--timeout 30s]")
		return 2
	}

	sourceURL := strings.TrimSpace(fs.Arg(0))
	if sourceURL == "" {
		fmt.Fprintln(os.Stderr, "source_url must not be empty")
		return 2
	}

	if !*force && !*dryRun {
		ok, err := confirmDangerousAction(fmt.Sprintf("Proceed with delete of %q?", sourceURL))
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to read confirmation: %v\n", err)
			return 1
		}
		if !ok {
			fmt.Fprintln(os.Stderr, "Cancelled")
			return 1
		}
	}

	ctx, cancel, _, pool, err := connectPool(*timeout, envLoader)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	defer cancel()
	defer pool.Close()

	if *dryRun {
		exists, err := pool.ExistsEventBySourceURL(ctx, sourceURL)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Dry run failed: %v\n", err)
			return 1
		}
		affected := 0
		if exists {
			affected = 1
		}
		fmt.Printf("dry_run=true source_url=%s affected=%d\n", sourceURL, affected)
		return 0
	}

	deleted, err := pool.DeleteEventBySourceURL(ctx, sourceURL)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Delete failed: %v\n", err)
		return 1
	}

	fmt.Printf("source_url=%s deleted=%d\n", sourceURL, deleted)
	return 0
}

func confirmDangerousAction(prompt string) (bool, error) {
	fmt.Fprintf(os.Stderr, "%s [y/N]: ", strings.TrimSpace(prompt))
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false, err
	}

	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}
