// Package scoring ranks how desirable an event record is when several sources
// report the same real-world event. The model is deliberately a flat additive
// table, not a weighted one: the dedup pass keeps the highest-scored member of
// each duplicate cluster and deletes the rest.
package scoring

import (
	"strings"
	"unicode/utf8"

	"fjord.fyi/byplakat/internal/sources"
)

const (
	imageBonus       = 2
	ticketLinkBonus  = 2
	descriptionBonus = 1

	minDescriptionLength = 50
)

// Input carries the fields the score depends on. Empty strings mean the field
// is absent.
type Input struct {
	Source      string
	ImageURL    string
	TicketURL   string
	Description string
}

// Score computes the additive desirability score: the source's trust rank,
// plus bonuses for an image, a non-aggregator ticket link, and a substantive
// description. No ceiling.
func Score(in Input) int {
	score := sources.TrustRank(in.Source)

	if strings.TrimSpace(in.ImageURL) != "" {
		score += imageBonus
	}

	ticketURL := strings.TrimSpace(in.TicketURL)
	if ticketURL != "" && !sources.IsAggregatorURL(ticketURL) {
		score += ticketLinkBonus
	}

	if utf8.RuneCountInString(strings.TrimSpace(in.Description)) > minDescriptionLength {
		score += descriptionBonus
	}

	return score
}
