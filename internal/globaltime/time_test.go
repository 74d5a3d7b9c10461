package globaltime

import (
	"testing"
	"time"
)

func TestDayUTC_TruncatesMockedClock(t *testing.T) {
	SetMockTime(time.Date(2026, time.June, 12, 21, 45, 30, 0, time.FixedZone("CEST", 2*3600)))
	defer ResetTime()

	day := DayUTC()
	want := time.Date(2026, time.June, 12, 0, 0, 0, 0, time.UTC)
	if !day.Equal(want) {
		t.Fatalf("expected %v, got %v", want, day)
	}
}

func TestUTC_ConvertsMockedZone(t *testing.T) {
	SetMockTime(time.Date(2026, time.June, 13, 1, 30, 0, 0, time.FixedZone("CEST", 2*3600)))
	defer ResetTime()

	got := UTC()
	if got.Location() != time.UTC || got.Day() != 12 || got.Hour() != 23 {
		t.Fatalf("expected 2026-06-12T23:30Z, got %v", got)
	}
}
