// Package taxonomy maps free-text source categories and venue names onto the
// canonical category and bydel codes the front end filters on. Both tables are
// immutable after init; lookups fall back to substring containment with the
// longest keys checked first, and unknown input lands in a "most likely"
// default rather than an unknown state.
package taxonomy

import (
	"sort"
	"strings"
)

const (
	// DefaultCategory is the generic culture bucket for unmapped categories.
	DefaultCategory = "kultur"
	// DefaultBydel is the central district; most unmapped venues are downtown.
	DefaultBydel = "Bergenhus"
)

var categoryTable = map[string]string{
	"konsert":     "musikk",
	"konserter":   "musikk",
	"musikk":      "musikk",
	"livemusikk":  "musikk",
	"jazz":        "musikk",
	"klassisk":    "musikk",
	"korpsmusikk": "musikk",
	"festival":    "musikk",
	"dj":          "musikk",

	"teater/musikal": "scenekunst",
	"teater":         "scenekunst",
	"musikal":        "scenekunst",
	"revy":           "scenekunst",
	"opera":          "scenekunst",
	"dans":           "scenekunst",
	"ballett":        "scenekunst",
	"standup":        "scenekunst",
	"stand-up":       "scenekunst",
	"comedy":         "scenekunst",
	"humor":          "scenekunst",

	"utstilling": "kunst",
	"kunst":      "kunst",
	"galleri":    "kunst",
	"museum":     "kunst",
	"foto":       "kunst",

	"fotball":  "sport",
	"handball": "sport",
	"håndball": "sport",
	"idrett":   "sport",
	"sport":    "sport",
	"løp":      "sport",

	"familie":             "familie",
	"barn":                "familie",
	"barneteater":         "familie",
	"familieforestilling": "familie",

	"mat":         "mat",
	"matfestival": "mat",
	"ølsmaking":   "mat",
	"vinsmaking":  "mat",

	"litteratur":    "litteratur",
	"forfattermøte": "litteratur",
	"foredrag":      "litteratur",
	"debatt":        "litteratur",

	"film":        "film",
	"kino":        "film",
	"filmvisning": "film",

	"quiz":      "kultur",
	"omvisning": "kultur",
	"marked":    "kultur",
}

var bydelTable = map[string]string{
	"grieghallen":         "Bergenhus",
	"den nationale scene": "Bergenhus",
	"usf verftet":         "Bergenhus",
	"kode":                "Bergenhus",
	"bergen kunsthall":    "Bergenhus",
	"landmark":            "Bergenhus",
	"litteraturhuset":     "Bergenhus",
	"kvarteret":           "Bergenhus",
	"garage":              "Bergenhus",
	"madam felle":         "Bergenhus",
	"ricks":               "Bergenhus",
	"logen teater":        "Bergenhus",
	"logen":               "Bergenhus",
	"ole bull scene":      "Bergenhus",
	"bergen kino":         "Bergenhus",
	"magnus barfot":       "Bergenhus",
	"cornerteateret":      "Bergenhus",
	"bergen kjøtt":        "Bergenhus",
	"østre":               "Bergenhus",
	"lydgalleriet":        "Bergenhus",

	"hulen":         "Årstad",
	"forum scene":   "Årstad",
	"brann stadion": "Årstad",
	"ado arena":     "Årstad",
	"haukeland":     "Årstad",

	"fana kulturhus": "Fana",
	"fanahallen":     "Fana",
	"nesttun":        "Fana",
	"lagunen":        "Fana",

	"fyllingsdalen teater": "Fyllingsdalen",
	"oasen":                "Fyllingsdalen",

	"vannkanten":         "Laksevåg",
	"laksevåg kulturhus": "Laksevåg",
	"gravdal":            "Laksevåg",

	"åsane kulturhus":  "Åsane",
	"åsane storsenter": "Åsane",
	"flaktveit":        "Åsane",

	"arna idrettspark": "Arna",
	"øyrane torg":      "Arna",

	"bergen lufthavn": "Ytrebygda",
	"flesland":        "Ytrebygda",
	"siljustøl":       "Ytrebygda",
}

var (
	categoryKeysByLength []string
	bydelKeysByLength    []string
)

func init() {
	categoryKeysByLength = keysLongestFirst(categoryTable)
	bydelKeysByLength = keysLongestFirst(bydelTable)
}

// MapCategory resolves a source's free-text category to a canonical category
// code, defaulting to the generic culture bucket.
func MapCategory(raw string) string {
	return lookup(raw, categoryTable, categoryKeysByLength, DefaultCategory)
}

// MapBydel resolves a free-text venue name to the bydel it sits in,
// defaulting to the city centre.
func MapBydel(venueName string) string {
	return lookup(venueName, bydelTable, bydelKeysByLength, DefaultBydel)
}

func lookup(raw string, table map[string]string, keysByLength []string, fallback string) string {
	needle := strings.ToLower(strings.TrimSpace(raw))
	if needle == "" {
		return fallback
	}

	if value, ok := table[needle]; ok {
		return value
	}

	// Longest key first, so "teater/musikal" wins over "teater".
	for _, key := range keysByLength {
		if strings.Contains(needle, key) {
			return table[key]
		}
	}
	return fallback
}

func keysLongestFirst(table map[string]string) []string {
	keys := make([]string, 0, len(table))
	for key := range table {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		if len(keys[i]) != len(keys[j]) {
			return len(keys[i]) > len(keys[j])
		}
		return keys[i] < keys[j]
	})
	return keys
}
