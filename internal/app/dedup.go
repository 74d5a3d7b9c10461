package app

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"fjord.fyi/byplakat/internal/cli"
	"fjord.fyi/byplakat/internal/dedup"
	"fjord.fyi/byplakat/internal/logging"
)

func runDedup(args []string) int {
	fs := flag.NewFlagSet("dedup", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	envLoader := cli.AddEnvFlag(fs, ".env", "Path to the .env file")
	timeout := fs.Duration("timeout", 5*time.Minute, "Command timeout")
	batchSize := fs.Int("batch-size", 0, "Delete batch size (defaults to DEDUP_BATCH_SIZE)")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "dedup does not accept positional arguments")
		return 2
	}

	ctx, cancel, cfg, pool, err := connectPool(*timeout, envLoader)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	defer cancel()
	defer pool.Close()

	logger, err := logging.New(cfg.Environment, cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		return 1
	}

	size := *batchSize
	if size <= 0 {
		size = cfg.DedupBatchSize
	}

	svc := dedup.NewService(pool, logger, size)
	result, err := svc.Run(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Dedup failed: %v\n", err)
		return 1
	}

	fmt.Printf(
		"dedup scanned=%d days=%d clusters=%d deleted=%d\n",
		result.Scanned,
		result.Days,
		result.Clusters,
		result.Deleted,
	)
	return 0
}
