package taxonomy

import "testing"

func TestMapCategory_DirectLookup(t *testing.T) {
	t.Parallel()

	if got := MapCategory("Konsert"); got != "musikk" {
		t.Fatalf("unexpected category: %q", got)
	}
	if got := MapCategory("  utstilling  "); got != "kunst" {
		t.Fatalf("unexpected category: %q", got)
	}
}

func TestMapCategory_SubstringFallbackPrefersLongestKey(t *testing.T) {
	t.Parallel()

	// "teater/musikal" must win over the shorter "teater" and "musikal".
	if got := MapCategory("scene: teater/musikal for voksne"); got != "scenekunst" {
		t.Fatalf("unexpected category: %q", got)
	}
	if got := MapCategory("jazzkonsert på kaien"); got != "musikk" {
		t.Fatalf("unexpected category: %q", got)
	}
}

func TestMapCategory_DefaultsToCulture(t *testing.T) {
	t.Parallel()

	if got := MapCategory("noe helt annet"); got != DefaultCategory {
		t.Fatalf("unexpected default category: %q", got)
	}
	if got := MapCategory(""); got != DefaultCategory {
		t.Fatalf("unexpected default category for empty input: %q", got)
	}
}

func TestMapBydel(t *testing.T) {
	t.Parallel()

	if got := MapBydel("Grieghallen"); got != "Bergenhus" {
		t.Fatalf("unexpected bydel: %q", got)
	}
	if got := MapBydel("Fana kulturhus, storsalen"); got != "Fana" {
		t.Fatalf("unexpected bydel via substring: %q", got)
	}
	if got := MapBydel("Ukjent scene"); got != DefaultBydel {
		t.Fatalf("unexpected default bydel: %q", got)
	}
}
