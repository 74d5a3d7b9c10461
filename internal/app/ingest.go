package app

import (
	"bytes"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"fjord.fyi/byplakat/internal/cli"
	"fjord.fyi/byplakat/internal/ingest"
	"fjord.fyi/byplakat/internal/logging"
	payloadschema "fjord.fyi/byplakat/schema"
)

func runIngest(args []string) int {
	fs := flag.NewFlagSet("ingest", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	envLoader := cli.AddEnvFlag(fs, ".env", "Path to the .env file")
	timeout := fs.Duration("timeout", 60*time.Second, "Command timeout")
	scraper := fs.String("scraper", "", "Scraper name for the run ledger")
	payloadFile := fs.String("payload-file", "", "Path to a JSON file holding one payload object or an array of payloads")
	markSkipped := fs.Bool("mark-skipped", false, "Record a skipped run instead of ingesting payloads")
	markFailed := fs.String("mark-failed", "", "Record a failed run with the given reason instead of ingesting payloads")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	scraperName := strings.TrimSpace(*scraper)
	if scraperName == "" {
		fmt.Fprintln(os.Stderr, "--scraper is required")
		return 2
	}
	if *markSkipped && strings.TrimSpace(*markFailed) != "" {
		fmt.Fprintln(os.Stderr, "--mark-skipped and --mark-failed are mutually exclusive")
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

	svc := ingest.NewService(pool, logger)

	if *markSkipped {
		if err := svc.RecordSkippedRun(ctx, scraperName); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to record skipped run: %v\n", err)
			return 1
		}
		fmt.Printf("scraper=%s skipped=true\n", scraperName)
		return 0
	}
	if reason := strings.TrimSpace(*markFailed); reason != "" {
		if err := svc.RecordFailedRun(ctx, scraperName, reason); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to record failed run: %v\n", err)
			return 1
		}
		fmt.Printf("scraper=%s errored=true\n", scraperName)
		return 0
	}

	if strings.TrimSpace(*payloadFile) == "" {
		fmt.Fprintln(os.Stderr, "--payload-file is required")
		return 2
	}

	payloads, invalid, err := loadPayloadBatch(strings.TrimSpace(*payloadFile))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid payload file: %v\n", err)
		return 2
	}

	result, err := svc.IngestBatch(ctx, scraperName, payloads)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Ingest failed: %v\n", err)
		return 1
	}

	fmt.Printf(
		"scraper=%s found=%d inserted=%d existing=%d failed=%d schema_rejected=%d\n",
		result.Scraper,
		result.Found,
		result.Inserted,
		result.Existing,
		result.Failed,
		invalid,
	)
	return 0
}

// loadPayloadBatch reads a payload file holding either a single object or an
// array, validates each entry against the v1 schema and returns the valid
// payloads plus the count of rejected entries.
func loadPayloadBatch(path string) ([]payloadschema.EventPayload, int, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, 0, fmt.Errorf("read %q: %w", path, err)
	}

	entries, err := splitPayloadEntries(raw)
	if err != nil {
		return nil, 0, err
	}

	payloads := make([]payloadschema.EventPayload, 0, len(entries))
	invalid := 0
	for i, entry := range entries {
		event, err := payloadschema.ValidateEventPayload(entry)
		if err != nil {
			invalid++
			fmt.Fprintf(os.Stderr, "INVALID payload[%d]: %v\n", i, err)
			continue
		}
		payloads = append(payloads, *event)
	}
	return payloads, invalid, nil
}

func splitPayloadEntries(raw []byte) ([]json.RawMessage, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("payload file is empty")
	}

	if trimmed[0] == '[' {
		var entries []json.RawMessage
		if err := json.Unmarshal(trimmed, &entries); err != nil {
			return nil, fmt.Errorf("decode payload array: %w", err)
		}
		return entries, nil
	}

	if !json.Valid(trimmed) {
		return nil, fmt.Errorf("malformed JSON")
	}
	return []json.RawMessage{json.RawMessage(trimmed)}, nil
}
