package normalize

import (
	"testing"
	"time"
)

func TestParseFlexibleDate_ISO(t *testing.T) {
	t.Parallel()

	ts, ok := ParseFlexibleDate("2026-06-15")
	if !ok {
		t.Fatalf("expected ISO date to parse")
	}
	want := time.Date(2026, 6, 15, 0, 0, 0, 0, time.UTC)
	if !ts.Equal(want) {
		t.Fatalf("unexpected instant: got %v want %v", ts, want)
	}
}

func TestParseFlexibleDate_NorwegianLongForm(t *testing.T) {
	t.Parallel()

	ts, ok := ParseFlexibleDate("5. januar 2026")
	if !ok {
		t.Fatalf("expected Norwegian date to parse")
	}
	want := time.Date(2026, 1, 5, 12, 0, 0, 0, time.UTC)
	if !ts.Equal(want) {
		t.Fatalf("unexpected instant: got %v want %v", ts, want)
	}
}

func TestParseFlexibleDate_Abbreviations(t *testing.T) {
	t.Parallel()

	cases := map[string]time.Time{
		"5. des. 2026": time.Date(2026, 12, 5, 12, 0, 0, 0, time.UTC),
		"5 des 2026":   time.Date(2026, 12, 5, 12, 0, 0, 0, time.UTC),
		"17 mai 2026":  time.Date(2026, 5, 17, 12, 0, 0, 0, time.UTC),
		"Okt 3, 2026":  time.Date(2026, 10, 3, 12, 0, 0, 0, time.UTC),
		"Dec 24, 2026": time.Date(2026, 12, 24, 12, 0, 0, 0, time.UTC),
		"24/12/2026":   time.Date(2026, 12, 24, 12, 0, 0, 0, time.UTC),
	}
	for raw, want := range cases {
		ts, ok := ParseFlexibleDate(raw)
		if !ok {
			t.Fatalf("expected %q to parse", raw)
		}
		if !ts.Equal(want) {
			t.Fatalf("unexpected instant for %q: got %v want %v", raw, ts, want)
		}
	}
}

func TestParseFlexibleDate_Rejects(t *testing.T) {
	t.Parallel()

	for _, raw := range []string{"", "   ", "imorgen", "32. januar 2026", "5. brumaire 2026", "24/13/2026", "2026-6-15"} {
		if _, ok := ParseFlexibleDate(raw); ok {
			t.Fatalf("expected %q to be rejected", raw)
		}
	}
}

func TestBergenOffset_DSTBoundaries(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"2026-03-28": "+01:00",
		"2026-03-29": "+02:00", // last Sunday of March 2026
		"2026-07-01": "+02:00",
		"2026-10-24": "+02:00",
		"2026-10-25": "+01:00", // last Sunday of October 2026
		"2026-12-24": "+01:00",
	}
	for raw, want := range cases {
		date, err := time.Parse("2006-01-02", raw)
		if err != nil {
			t.Fatalf("parse %q: %v", raw, err)
		}
		if got := BergenOffset(date); got != want {
			t.Fatalf("unexpected offset for %s: got %q want %q", raw, got, want)
		}
	}
}
