package game

import "testing"

func TestMapVisemeToKey_ConsonantGroups(t *testing.T) {
	cases := []struct {
		symbol string
		want   FartType
	}{
		{"t", FartT},
		{"d", FartT},
		{"D", FartT},
		{"p", FartP},
		{"m", FartP},
		{"k", FartK},
		{"N", FartK},
		{"f", FartF},
		{"v", FartF},
		{"r", FartR},
		{"l", FartR},
		{"s", FartZ},
		{"S", FartZ},
		{"C", FartZ},
	}
	for _, c := range cases {
		got, ok := MapVisemeToKey(c.symbol)
		if !ok {
			t.Fatalf("symbol %q should map to a key", c.symbol)
		}
		if got != c.want {
			t.Errorf("symbol %q mapped to %s, want %s", c.symbol, got, c.want)
		}
	}
}

func TestMapVisemeToKey_VowelsExcluded(t *testing.T) {
	for _, sym := range []string{"a", "e", "i", "o", "u", "@", "E", "O"} {
		if _, ok := MapVisemeToKey(sym); ok {
			t.Errorf("vowel/unknown symbol %q should not map to a key", sym)
		}
	}
}

func TestFartTypeFromLetter_RoundTrip(t *testing.T) {
	for ft := FartType(0); ft < fartTypeCount; ft++ {
		got, ok := FartTypeFromLetter(ft.Letter())
		if !ok || got != ft {
			t.Errorf("letter %q round-tripped to %s (ok=%v), want %s", ft.Letter(), got, ok, ft)
		}
	}
	// Case-insensitive.
	if got, ok := FartTypeFromLetter("T"); !ok || got != FartT {
		t.Errorf("uppercase T resolved to %s (ok=%v), want t", got, ok)
	}
	if _, ok := FartTypeFromLetter("q"); ok {
		t.Error("q is not a vent key")
	}
}

func TestVowelBucketOf(t *testing.T) {
	cases := []struct {
		symbol string
		want   VowelBucket
		ok     bool
	}{
		{"a", BucketA, true},
		{"E", BucketE, true},
		{"i", BucketI, true},
		{"o", BucketO, true},
		{"u", BucketU, true},
		{"t", 0, false},
		{"@", 0, false},
		{"", 0, false},
	}
	for _, c := range cases {
		got, ok := vowelBucketOf(c.symbol)
		if ok != c.ok {
			t.Fatalf("vowelBucketOf(%q) ok=%v, want %v", c.symbol, ok, c.ok)
		}
		if ok && got != c.want {
			t.Errorf("vowelBucketOf(%q)=%s, want %s", c.symbol, got, c.want)
		}
	}
}

func TestFallbackBuckets_CoverAllFive(t *testing.T) {
	seen := map[VowelBucket]bool{}
	for _, b := range fallbackBuckets {
		seen[b] = true
	}
	if len(seen) != vowelBucketCount {
		t.Fatalf("fallback rotation covers %d buckets, want %d", len(seen), vowelBucketCount)
	}
	if fallbackBuckets[0] != BucketE {
		t.Fatalf("fallback rotation starts at %s, want e", fallbackBuckets[0])
	}
}
