package scoring

import (
	"strings"
	"testing"
)

func TestScore_AccumulatesAdditively(t *testing.T) {
	t.Parallel()

	full := Input{
		Source:      "grieghallen", // rank 5
		ImageURL:    "https://grieghallen.no/bilde.jpg",
		TicketURL:   "https://grieghallen.no/billetter/123",
		Description: strings.Repeat("Edvard Grieg ", 5),
	}
	if got := Score(full); got != 10 {
		t.Fatalf("unexpected score: got %d want 10", got)
	}

	empty := Input{Source: "ukjent-kilde"}
	if got := Score(empty); got != 0 {
		t.Fatalf("expected unknown bare source to score 0, got %d", got)
	}
}

func TestScore_AggregatorTicketURLEarnsNoBonus(t *testing.T) {
	t.Parallel()

	withAggregator := Input{
		Source:    "visitbergen",
		TicketURL: "https://www.visitbergen.com/whats-on/konsert-123",
	}
	without := Input{Source: "visitbergen"}
	if Score(withAggregator) != Score(without) {
		t.Fatalf("aggregator ticket url must not change score: %d != %d",
			Score(withAggregator), Score(without))
	}
}

func TestScore_DescriptionLengthBoundary(t *testing.T) {
	t.Parallel()

	base := Input{Source: "hulen"} // rank 4
	exactly50 := base
	exactly50.Description = strings.Repeat("a", 50)
	over50 := base
	over50.Description = strings.Repeat("a", 51)

	if got := Score(exactly50); got != 4 {
		t.Fatalf("50-char description must not earn the bonus, got %d", got)
	}
	if got := Score(over50); got != 5 {
		t.Fatalf("51-char description must earn the bonus, got %d", got)
	}
}

func TestScore_DescriptionLengthCountsRunes(t *testing.T) {
	t.Parallel()

	// Norwegian letters are two bytes in UTF-8; the boundary is characters,
	// not bytes.
	base := Input{Source: "hulen"} // rank 4
	fifty := base
	fifty.Description = strings.Repeat("ø", 50)
	fiftyOne := base
	fiftyOne.Description = strings.Repeat("ø", 51)

	if got := Score(fifty); got != 4 {
		t.Fatalf("50 Norwegian characters must not earn the bonus, got %d", got)
	}
	if got := Score(fiftyOne); got != 5 {
		t.Fatalf("51 Norwegian characters must earn the bonus, got %d", got)
	}
}
