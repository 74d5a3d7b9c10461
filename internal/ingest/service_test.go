package ingest

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"fjord.fyi/byplakat/internal/db"
	payloadschema "fjord.fyi/byplakat/schema"
)

type fakeStore struct {
	existing    map[string]bool
	failExists  map[string]bool
	failInserts map[string]bool
	inserted    []string
	runs        []db.ScraperRun
}

func (f *fakeStore) ExistsEventBySourceURL(_ context.Context, sourceURL string) (bool, error) {
	if f.failExists[sourceURL] {
		return false, fmt.Errorf("connection reset")
	}
	return f.existing[sourceURL], nil
}

func (f *fakeStore) InsertEvent(_ context.Context, ev *db.Event) (bool, error) {
	if f.failInserts[ev.SourceURL] {
		return false, fmt.Errorf("connection reset")
	}
	f.inserted = append(f.inserted, ev.SourceURL)
	return true, nil
}

func (f *fakeStore) InsertScraperRun(_ context.Context, run *db.ScraperRun) error {
	f.runs = append(f.runs, *run)
	return nil
}

func batchPayload(sourceURL string) payloadschema.EventPayload {
	return payloadschema.EventPayload{
		PayloadVersion: "v1",
		Source:         "usf",
		Title:          "Jazzkveld",
		VenueName:      "USF Verftet",
		DateStart:      "2026-10-01",
		SourceURL:      sourceURL,
	}
}

func strPtr(s string) *string { return &s }

func TestIngestBatch_ContinuesPastBackendFailures(t *testing.T) {
	t.Parallel()

	fake := &fakeStore{
		failExists:  map[string]bool{"https://www.usf.no/program/b": true},
		failInserts: map[string]bool{"https://www.usf.no/program/c": true},
	}
	svc := &Service{store: fake, logger: zerolog.Nop()}

	result, err := svc.IngestBatch(context.Background(), "usf", []payloadschema.EventPayload{
		batchPayload("https://www.usf.no/program/a"),
		batchPayload("https://www.usf.no/program/b"),
		batchPayload("https://www.usf.no/program/c"),
		batchPayload("https://www.usf.no/program/d"),
	})
	if err != nil {
		t.Fatalf("backend failures must not abort the batch: %v", err)
	}

	if result.Found != 4 || result.Inserted != 2 || result.Failed != 2 {
		t.Fatalf("unexpected result: %+v", result)
	}
	if len(fake.inserted) != 2 || fake.inserted[0] != "https://www.usf.no/program/a" || fake.inserted[1] != "https://www.usf.no/program/d" {
		t.Fatalf("expected the surrounding payloads to be inserted, got %v", fake.inserted)
	}

	if len(fake.runs) != 1 {
		t.Fatalf("expected exactly one ledger row, got %d", len(fake.runs))
	}
	run := fake.runs[0]
	if run.ScraperName != "usf" || run.Found != 4 || run.Inserted != 2 {
		t.Fatalf("unexpected ledger row: %+v", run)
	}
	if run.ErrorMessage == nil || !strings.Contains(*run.ErrorMessage, "2 of 4") {
		t.Fatalf("expected failure count in error message, got %v", run.ErrorMessage)
	}
}

func TestIngestBatch_ExistingEventCountsAsExisting(t *testing.T) {
	t.Parallel()

	fake := &fakeStore{
		existing: map[string]bool{"https://www.usf.no/program/a": true},
	}
	svc := &Service{store: fake, logger: zerolog.Nop()}

	result, err := svc.IngestBatch(context.Background(), "usf", []payloadschema.EventPayload{
		batchPayload("https://www.usf.no/program/a"),
	})
	if err != nil {
		t.Fatalf("IngestBatch returned error: %v", err)
	}
	if result.Existing != 1 || result.Inserted != 0 {
		t.Fatalf("unexpected result: %+v", result)
	}
	if len(fake.runs) != 1 || fake.runs[0].ErrorMessage != nil {
		t.Fatalf("expected one clean ledger row, got %+v", fake.runs)
	}
}

func TestBuildEvent_FullPayload(t *testing.T) {
	t.Parallel()

	payload := payloadschema.EventPayload{
		PayloadVersion: "v1",
		Source:         "grieghallen",
		Title:          "Griegkonsert",
		VenueName:      "Grieghallen",
		DateStart:      "2026-09-12",
		DateEnd:        strPtr("2026-09-13"),
		SourceURL:      "https://www.grieghallen.no/program/griegkonsert",
		TicketURL:      strPtr("https://www.grieghallen.no/billetter"),
		Price:          strPtr("450 kr"),
		Description:    strPtr("The Bergen Philharmonic Orchestra performs the complete piano concerto together with a guest soloist from London."),
		Category:       strPtr("konsert"),
	}

	event, err := buildEvent(&payload)
	if err != nil {
		t.Fatalf("buildEvent returned error: %v", err)
	}

	if event.Slug != "griegkonsert-2026-09-12" {
		t.Fatalf("unexpected slug %q", event.Slug)
	}
	if got := event.StartsAt.Format("2006-01-02 15:04"); got != "2026-09-12 00:00" {
		t.Fatalf("unexpected starts_at %q", got)
	}
	if event.EndsAt == nil {
		t.Fatalf("expected ends_at to be set")
	}
	if event.Category != "musikk" {
		t.Fatalf("unexpected category %q", event.Category)
	}
	if event.Bydel != "Bergenhus" {
		t.Fatalf("unexpected bydel %q", event.Bydel)
	}
	if event.DescriptionLang != "en" {
		t.Fatalf("expected description_lang=en, got %q", event.DescriptionLang)
	}
	if event.Status != "upcoming" {
		t.Fatalf("unexpected status %q", event.Status)
	}
}

func TestBuildEvent_UnparseableStartDate(t *testing.T) {
	t.Parallel()

	payload := payloadschema.EventPayload{
		Source:    "usf",
		Title:     "Jazzkveld",
		VenueName: "USF Verftet",
		DateStart: "snarest",
		SourceURL: "https://www.usf.no/program/jazzkveld",
	}

	if _, err := buildEvent(&payload); err == nil {
		t.Fatalf("expected error for unparseable date_start")
	}
}

func TestBuildEvent_UnparseableEndDateDropsToNil(t *testing.T) {
	t.Parallel()

	payload := payloadschema.EventPayload{
		Source:    "usf",
		Title:     "Jazzkveld",
		VenueName: "USF Verftet",
		DateStart: "2026-10-01",
		DateEnd:   strPtr("løpende"),
		SourceURL: "https://www.usf.no/program/jazzkveld",
	}

	event, err := buildEvent(&payload)
	if err != nil {
		t.Fatalf("buildEvent returned error: %v", err)
	}
	if event.EndsAt != nil {
		t.Fatalf("expected ends_at to stay nil for unparseable date_end")
	}
}

func TestBuildEvent_EmptyDescriptionIsUndetermined(t *testing.T) {
	t.Parallel()

	payload := payloadschema.EventPayload{
		Source:    "usf",
		Title:     "Jazzkveld",
		VenueName: "USF Verftet",
		DateStart: "2026-10-01",
		SourceURL: "https://www.usf.no/program/jazzkveld",
	}

	event, err := buildEvent(&payload)
	if err != nil {
		t.Fatalf("buildEvent returned error: %v", err)
	}
	if event.DescriptionLang != "und" {
		t.Fatalf("expected description_lang=und, got %q", event.DescriptionLang)
	}
	if event.Category != "kultur" {
		t.Fatalf("expected default category, got %q", event.Category)
	}
}

func TestEventSlug_BlankTitleFallsBack(t *testing.T) {
	t.Parallel()

	start := time.Date(2026, time.October, 1, 0, 0, 0, 0, time.UTC)

	slug := eventSlug("!!!", start)
	if slug != "event-2026-10-01" {
		t.Fatalf("unexpected slug %q", slug)
	}
}

func TestTruncateError(t *testing.T) {
	t.Parallel()

	long := strings.Repeat("ø", maxRunErrorLength+50)
	truncated := truncateError(long)
	if got := len([]rune(truncated)); got != maxRunErrorLength {
		t.Fatalf("expected %d runes, got %d", maxRunErrorLength, got)
	}

	short := "scraper timed out"
	if truncateError(short) != short {
		t.Fatalf("short message must pass through unchanged")
	}
}

func TestTrimNullable(t *testing.T) {
	t.Parallel()

	if trimNullable(nil) != nil {
		t.Fatalf("nil must stay nil")
	}
	if trimNullable(strPtr("   ")) != nil {
		t.Fatalf("blank string must become nil")
	}
	if got := trimNullable(strPtr("  450 kr ")); got == nil || *got != "450 kr" {
		t.Fatalf("expected trimmed value, got %v", got)
	}
}
