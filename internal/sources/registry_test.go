package sources

import "testing"

func TestTrustRank(t *testing.T) {
	t.Parallel()

	if got := TrustRank("grieghallen"); got != 5 {
		t.Fatalf("unexpected rank: %d", got)
	}
	if got := TrustRank("  Grieghallen  "); got != 5 {
		t.Fatalf("expected rank lookup to normalize case and whitespace, got %d", got)
	}
	if got := TrustRank("ukjent-kilde"); got != 0 {
		t.Fatalf("expected unknown source to rank 0, got %d", got)
	}
}

func TestIsSeasonal(t *testing.T) {
	t.Parallel()

	if !IsSeasonal("festspillene") {
		t.Fatalf("expected festspillene to be seasonal")
	}
	if IsSeasonal("grieghallen") {
		t.Fatalf("did not expect grieghallen to be seasonal")
	}
}

func TestIsAggregatorURL(t *testing.T) {
	t.Parallel()

	if !IsAggregatorURL("https://www.visitbergen.com/whats-on/konsert-123") {
		t.Fatalf("expected visitbergen subdomain to match denylist")
	}
	if !IsAggregatorURL("https://allevents.in/bergen/concert") {
		t.Fatalf("expected allevents to match denylist")
	}
	if IsAggregatorURL("https://grieghallen.no/konsert/123") {
		t.Fatalf("did not expect venue domain to match denylist")
	}
	if IsAggregatorURL("") {
		t.Fatalf("did not expect empty url to match denylist")
	}
	// Suffix matching must not catch lookalike domains.
	if IsAggregatorURL("https://notfacebook.com/events/1") {
		t.Fatalf("did not expect lookalike domain to match denylist")
	}
}
