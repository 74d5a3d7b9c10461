package normalize

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Times of events whose sources publish a bare date with no clock time are
// pinned to 12:00 UTC. Consumers must treat that instant as "date known, time
// unknown", never as a real start time.
const unknownTimeHourUTC = 12

var (
	isoDatePattern     = regexp.MustCompile(`^(\d{4})-(\d{2})-(\d{2})$`)
	dayFirstPattern    = regexp.MustCompile(`^(\d{1,2})\.?\s+([a-zæøå]+)\.?\s+(\d{4})$`)
	monthFirstPattern  = regexp.MustCompile(`^([a-z]+)\.?\s+(\d{1,2}),?\s+(\d{4})$`)
	slashedDatePattern = regexp.MustCompile(`^(\d{1,2})/(\d{1,2})/(\d{4})$`)
)

var monthNames = map[string]time.Month{
	"januar": time.January, "februar": time.February, "mars": time.March,
	"april": time.April, "mai": time.May, "juni": time.June,
	"juli": time.July, "august": time.August, "september": time.September,
	"oktober": time.October, "november": time.November, "desember": time.December,

	"january": time.January, "february": time.February, "march": time.March,
	"june": time.June, "july": time.July,
	"october": time.October, "december": time.December,

	"jan": time.January, "feb": time.February, "mar": time.March,
	"apr": time.April, "jun": time.June, "jul": time.July,
	"aug": time.August, "sep": time.September, "okt": time.October,
	"oct": time.October, "nov": time.November, "des": time.December,
	"dec": time.December, "may": time.May,
}

// ParseFlexibleDate parses the date formats observed across event sources:
// ISO "YYYY-MM-DD", Norwegian "D. month YYYY" (full names or three-letter
// abbreviations, trailing period optional), "D Mon YYYY", English
// "Mon D, YYYY" and slashed "DD/MM/YYYY". Non-ISO formats resolve to 12:00
// UTC. Returns ok=false on anything it cannot parse; it never panics.
func ParseFlexibleDate(raw string) (time.Time, bool) {
	value := strings.ToLower(strings.TrimSpace(raw))
	if value == "" {
		return time.Time{}, false
	}

	if m := isoDatePattern.FindStringSubmatch(value); m != nil {
		ts, err := time.Parse("2006-01-02", value)
		if err != nil {
			return time.Time{}, false
		}
		return ts, true
	}

	if m := dayFirstPattern.FindStringSubmatch(value); m != nil {
		day, _ := strconv.Atoi(m[1])
		year, _ := strconv.Atoi(m[3])
		month, ok := lookupMonth(m[2])
		if !ok {
			return time.Time{}, false
		}
		return dateAtNoon(year, month, day)
	}

	if m := monthFirstPattern.FindStringSubmatch(value); m != nil {
		month, ok := lookupMonth(m[1])
		if !ok {
			return time.Time{}, false
		}
		day, _ := strconv.Atoi(m[2])
		year, _ := strconv.Atoi(m[3])
		return dateAtNoon(year, month, day)
	}

	if m := slashedDatePattern.FindStringSubmatch(value); m != nil {
		day, _ := strconv.Atoi(m[1])
		month, _ := strconv.Atoi(m[2])
		year, _ := strconv.Atoi(m[3])
		if month < 1 || month > 12 {
			return time.Time{}, false
		}
		return dateAtNoon(year, time.Month(month), day)
	}

	return time.Time{}, false
}

func lookupMonth(name string) (time.Month, bool) {
	trimmed := strings.TrimSuffix(name, ".")
	if month, ok := monthNames[trimmed]; ok {
		return month, true
	}
	if len(trimmed) > 3 {
		if month, ok := monthNames[trimmed[:3]]; ok {
			return month, true
		}
	}
	return 0, false
}

func dateAtNoon(year int, month time.Month, day int) (time.Time, bool) {
	if day < 1 || day > 31 || year < 1000 {
		return time.Time{}, false
	}
	ts := time.Date(year, month, day, unknownTimeHourUTC, 0, 0, 0, time.UTC)
	if ts.Day() != day || ts.Month() != month {
		return time.Time{}, false
	}
	return ts, true
}

// BergenOffset reports the UTC offset in effect in Bergen on the given
// calendar date: "+02:00" while Central European Summer Time is active,
// "+01:00" otherwise. The EU rule switches at 01:00 UTC on the last Sundays
// of March and October; the offset is evaluated at local noon, so a
// transition day already reports the new offset.
func BergenOffset(date time.Time) string {
	year := date.UTC().Year()
	noon := time.Date(year, date.UTC().Month(), date.UTC().Day(), 12, 0, 0, 0, time.UTC)

	dstStart := lastSundayAt0100UTC(year, time.March)
	dstEnd := lastSundayAt0100UTC(year, time.October)

	if !noon.Before(dstStart) && noon.Before(dstEnd) {
		return "+02:00"
	}
	return "+01:00"
}

func lastSundayAt0100UTC(year int, month time.Month) time.Time {
	// Day 0 of the following month is the last day of this one.
	lastDay := time.Date(year, month+1, 0, 1, 0, 0, 0, time.UTC)
	return lastDay.AddDate(0, 0, -int(lastDay.Weekday()))
}
