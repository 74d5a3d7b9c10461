package httpapi

import (
	"testing"
	"time"

	"fjord.fyi/byplakat/internal/db"
)

func TestParsePositiveInt(t *testing.T) {
	t.Parallel()

	if got, err := parsePositiveInt("", 25, 1, 200); err != nil || got != 25 {
		t.Fatalf("empty must yield default, got %d err %v", got, err)
	}
	if got, err := parsePositiveInt(" 42 ", 25, 1, 200); err != nil || got != 42 {
		t.Fatalf("expected 42, got %d err %v", got, err)
	}
	if _, err := parsePositiveInt("0", 25, 1, 200); err == nil {
		t.Fatalf("below minimum must error")
	}
	if _, err := parsePositiveInt("201", 25, 1, 200); err == nil {
		t.Fatalf("above maximum must error")
	}
	if _, err := parsePositiveInt("abc", 25, 1, 200); err == nil {
		t.Fatalf("non-integer must error")
	}
}

func TestParseTimeFilter(t *testing.T) {
	t.Parallel()

	if got, err := parseTimeFilter("", false); err != nil || got != nil {
		t.Fatalf("empty must yield nil, got %v err %v", got, err)
	}

	from, err := parseTimeFilter("2026-06-15", false)
	if err != nil {
		t.Fatalf("date parse failed: %v", err)
	}
	if from.Hour() != 0 || from.Minute() != 0 {
		t.Fatalf("start of day expected, got %v", from)
	}

	to, err := parseTimeFilter("2026-06-15", true)
	if err != nil {
		t.Fatalf("date parse failed: %v", err)
	}
	if to.Hour() != 23 || to.Minute() != 59 {
		t.Fatalf("end of day expected, got %v", to)
	}

	rfc, err := parseTimeFilter("2026-06-15T18:30:00+02:00", false)
	if err != nil {
		t.Fatalf("RFC3339 parse failed: %v", err)
	}
	if rfc.Location() != time.UTC {
		t.Fatalf("RFC3339 values must normalize to UTC")
	}

	if _, err := parseTimeFilter("15.06.2026", false); err == nil {
		t.Fatalf("unsupported format must error")
	}
}

func TestToRunRecords(t *testing.T) {
	t.Parallel()

	message := "connection refused"
	runs := []db.ScraperRun{
		{ScraperName: "grieghallen", Found: 5, Inserted: 2},
		{ScraperName: "usf", Errored: true, ErrorMessage: &message},
	}

	records := toRunRecords(runs)
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records[0].ErrorMessage != "" {
		t.Fatalf("nil error message must map to empty string")
	}
	if records[1].ErrorMessage != message {
		t.Fatalf("expected error message %q, got %q", message, records[1].ErrorMessage)
	}
}

func TestToEventItem_DerivesStartOffset(t *testing.T) {
	t.Parallel()

	ev := db.Event{
		Slug:     "festspillene-opning-2026-05-20",
		Title:    "Festspillene opning",
		StartsAt: time.Date(2026, time.May, 20, 18, 0, 0, 0, time.UTC),
	}

	item := toEventItem(&ev)
	if item.StartOffset != "+02:00" {
		t.Fatalf("expected summer offset +02:00, got %q", item.StartOffset)
	}
}
