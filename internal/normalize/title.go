package normalize

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

const maxSlugLength = 80

var (
	yearPattern      = regexp.MustCompile(`\b\d{4}\b`)
	cityNoisePattern = regexp.MustCompile(`\bi bergen\b|\bbergen\b`)
	hyphenRunPattern = regexp.MustCompile(`-{2,}`)
)

// Title reduces a raw event title to a dense alphanumeric fingerprint used as
// the comparison key for duplicate detection. The same title must fingerprint
// identically no matter which source produced it, so the reduction is
// deliberately aggressive: diacritics, years, the city name and every
// separator are all removed. Idempotent.
func Title(raw string) string {
	lowered := strings.ToLower(strings.TrimSpace(raw))
	if lowered == "" {
		return ""
	}

	folded := foldNorwegian(stripCombiningMarks(lowered))
	folded = yearPattern.ReplaceAllString(folded, "")
	folded = cityNoisePattern.ReplaceAllString(folded, "")

	var b strings.Builder
	b.Grow(len(folded))
	for _, r := range folded {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Slug derives a URL-safe human-readable slug. Callers typically append a date
// fragment; slugs are collision-tolerant and never used as a storage key.
func Slug(raw string) string {
	lowered := strings.ToLower(strings.TrimSpace(raw))
	if lowered == "" {
		return ""
	}

	folded := foldNorwegian(stripCombiningMarks(lowered))

	var b strings.Builder
	b.Grow(len(folded))
	for _, r := range folded {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		} else {
			b.WriteByte('-')
		}
	}

	slug := hyphenRunPattern.ReplaceAllString(b.String(), "-")
	slug = strings.Trim(slug, "-")
	if len(slug) > maxSlugLength {
		slug = strings.TrimRight(slug[:maxSlugLength], "-")
	}
	return slug
}

// stripCombiningMarks removes diacritics via NFD decomposition. This folds å
// to a bare "a" (ring above is a combining mark) but leaves æ and ø intact,
// which is why foldNorwegian runs afterwards.
func stripCombiningMarks(value string) string {
	decomposed := norm.NFD.String(value)
	var b strings.Builder
	b.Grow(len(decomposed))
	for _, r := range decomposed {
		if unicode.Is(unicode.Mn, r) {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func foldNorwegian(value string) string {
	value = strings.ReplaceAll(value, "æ", "ae")
	value = strings.ReplaceAll(value, "ø", "o")
	return value
}
