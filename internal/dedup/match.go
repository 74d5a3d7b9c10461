package dedup

import "strings"

// Matching thresholds. These are load-bearing: the boundary behavior of the
// whole dedup pass is tuned around them, so they are constants rather than
// options.
const (
	minLengthForFuzzyMatch  = 5
	containmentRatioFloor   = 0.6
	minLengthForPrefixMatch = 8
	lengthSimilarityCap     = 1.3
	prefixFraction          = 0.9
)

// TitlesMatch decides whether two normalized title fingerprints refer to the
// same real-world event. Three rules, evaluated in order, first hit wins:
// exact equality (any length); substring containment with a length ratio of
// at least 0.6 (both at least 5 chars); and prefix overlap for near-identical
// titles with a trailing divergence (both at least 8 chars, lengths within
// 1.3x, longer contains the first 90% of the shorter).
func TitlesMatch(a, b string) bool {
	if a == b {
		return true
	}

	if len(a) < minLengthForFuzzyMatch || len(b) < minLengthForFuzzyMatch {
		return false
	}

	shorter, longer := a, b
	if len(shorter) > len(longer) {
		shorter, longer = longer, shorter
	}

	if strings.Contains(longer, shorter) {
		ratio := float64(len(shorter)) / float64(len(longer))
		if ratio >= containmentRatioFloor {
			return true
		}
	}

	if len(shorter) >= minLengthForPrefixMatch {
		if float64(len(longer)) <= float64(len(shorter))*lengthSimilarityCap {
			prefix := shorter[:int(float64(len(shorter))*prefixFraction)]
			if strings.Contains(longer, prefix) {
				return true
			}
		}
	}

	return false
}
