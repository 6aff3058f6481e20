package game

import (
	"math/rand"
	"testing"
)

func oppTestLevel(dialogues ...Dialogue) *Level {
	return &Level{
		ID: "test",
		Participants: []Participant{
			{ID: "player", Name: "Player", IsPlayer: true},
			{ID: "boss", Name: "Boss"},
		},
		Rules:     Rules{MaxPossibleFartsByWord: 2},
		Dialogues: dialogues,
	}
}

func TestGenerateOpportunities_PerWordCap(t *testing.T) {
	lvl := oppTestLevel(Dialogue{Speaker: "boss", Text: "strand", Kind: KindLine})
	marks := marksForWord("strand", []SpeechMark{
		{TimeMs: 0, Type: MarkViseme, Value: "s"},
		{TimeMs: 50, Type: MarkViseme, Value: "t"},
		{TimeMs: 100, Type: MarkViseme, Value: "r"},
	})
	ms := MarkSet{lvl.Key(0): marks}

	opps := GenerateOpportunities(lvl, ms, rand.New(rand.NewSource(1)))
	if len(opps) != 2 {
		t.Fatalf("got %d opportunities, want 2 (per-word cap)", len(opps))
	}
	if opps[0].Type != FartZ || opps[1].Type != FartT {
		t.Errorf("got types %s,%s; want z,t in time order", opps[0].Type, opps[1].Type)
	}
	if opps[0].WordIndex != 0 || opps[1].WordIndex != 0 {
		t.Errorf("word indices %d,%d; want 0,0", opps[0].WordIndex, opps[1].WordIndex)
	}
	if opps[0].VisemeIndex != 0 || opps[1].VisemeIndex != 1 {
		t.Errorf("viseme indices %d,%d; want 0,1", opps[0].VisemeIndex, opps[1].VisemeIndex)
	}
}

func TestGenerateOpportunities_OneKeyCategoryPerWord(t *testing.T) {
	lvl := oppTestLevel(Dialogue{Speaker: "boss", Text: "tidied", Kind: KindLine})
	marks := marksForWord("tidied", []SpeechMark{
		{TimeMs: 0, Type: MarkViseme, Value: "t"},
		{TimeMs: 80, Type: MarkViseme, Value: "d"}, // same category as t
	})
	ms := MarkSet{lvl.Key(0): marks}

	opps := GenerateOpportunities(lvl, ms, rand.New(rand.NewSource(1)))
	if len(opps) != 1 {
		t.Fatalf("got %d opportunities, want 1 (t and d share a category)", len(opps))
	}
	if opps[0].Type != FartT || opps[0].TimeMs != 0 {
		t.Errorf("kept %s at %.0fms, want the earlier t at 0", opps[0].Type, opps[0].TimeMs)
	}
}

func TestGenerateOpportunities_VowelsProduceNothing(t *testing.T) {
	lvl := oppTestLevel(Dialogue{Speaker: "boss", Text: "aeiou", Kind: KindLine})
	marks := marksForWord("aeiou", []SpeechMark{
		{TimeMs: 0, Type: MarkViseme, Value: "a"},
		{TimeMs: 75, Type: MarkViseme, Value: "o"},
	})
	ms := MarkSet{lvl.Key(0): marks}

	if opps := GenerateOpportunities(lvl, ms, rand.New(rand.NewSource(1))); len(opps) != 0 {
		t.Fatalf("vowel-only word produced %d opportunities, want 0", len(opps))
	}
}

func TestGenerateOpportunities_FallbackForMarklessAnswer(t *testing.T) {
	lvl := oppTestLevel(Dialogue{Speaker: "player", Text: "Nothing on my end", Kind: KindAnswer})

	opps := GenerateOpportunities(lvl, MarkSet{}, rand.New(rand.NewSource(7)))
	if len(opps) != len(fallbackOpportunityTimes) {
		t.Fatalf("got %d fallback opportunities, want %d", len(opps), len(fallbackOpportunityTimes))
	}
	for i, o := range opps {
		if o.TimeMs != fallbackOpportunityTimes[i] {
			t.Errorf("fallback %d at %.0fms, want %.0f", i, o.TimeMs, fallbackOpportunityTimes[i])
		}
	}
	// The key cycle advances one category per slot, so all three differ.
	if opps[0].Type == opps[1].Type || opps[1].Type == opps[2].Type || opps[0].Type == opps[2].Type {
		t.Errorf("fallback types %s,%s,%s should all differ", opps[0].Type, opps[1].Type, opps[2].Type)
	}
}

func TestGenerateOpportunities_WordlessMarksGetFallback(t *testing.T) {
	// Marks parsed fine but carry no word events: same fallback as a missing
	// file, for kinds that stay playable without marks.
	lvl := oppTestLevel(
		Dialogue{Speaker: "player", Text: "Nothing on my end", Kind: KindAnswer},
		Dialogue{Speaker: "boss", Text: "ok", Kind: KindLine},
	)
	wordless := []SpeechMark{
		{TimeMs: 0, Type: MarkViseme, Value: "t"},
		{TimeMs: 400, Type: MarkViseme, Value: "s"},
	}
	ms := MarkSet{lvl.Key(0): wordless, lvl.Key(1): wordless}

	opps := GenerateOpportunities(lvl, ms, rand.New(rand.NewSource(7)))
	if len(opps) != len(fallbackOpportunityTimes) {
		t.Fatalf("got %d opportunities, want %d fallbacks for the answer only", len(opps), len(fallbackOpportunityTimes))
	}
	for i, o := range opps {
		if o.DialogueIndex != 0 {
			t.Errorf("opportunity %d on dialogue %d, want 0 (the line gets none)", i, o.DialogueIndex)
		}
		if o.TimeMs != fallbackOpportunityTimes[i] {
			t.Errorf("fallback %d at %.0fms, want %.0f", i, o.TimeMs, fallbackOpportunityTimes[i])
		}
	}
}

func TestGenerateOpportunities_FallbackIsSeedDeterministic(t *testing.T) {
	lvl := oppTestLevel(Dialogue{Speaker: "player", Text: "hi", Kind: KindAside})

	a := GenerateOpportunities(lvl, MarkSet{}, rand.New(rand.NewSource(99)))
	b := GenerateOpportunities(lvl, MarkSet{}, rand.New(rand.NewSource(99)))
	if len(a) != len(b) {
		t.Fatalf("same seed produced %d vs %d opportunities", len(a), len(b))
	}
	for i := range a {
		if a[i].Type != b[i].Type {
			t.Fatalf("same seed diverged at %d: %s vs %s", i, a[i].Type, b[i].Type)
		}
	}
}

func TestGenerateOpportunities_MarklessLineSkipped(t *testing.T) {
	lvl := oppTestLevel(
		Dialogue{Speaker: "boss", Text: "no marks arrived", Kind: KindLine},
		Dialogue{Text: "(awkward silence)", Kind: KindLine}, // stage direction
	)
	if opps := GenerateOpportunities(lvl, MarkSet{}, rand.New(rand.NewSource(1))); len(opps) != 0 {
		t.Fatalf("got %d opportunities, want 0 for markless line and stage direction", len(opps))
	}
}

func TestGenerateOpportunities_AnimationKey(t *testing.T) {
	lvl := oppTestLevel(Dialogue{Speaker: "boss", Text: "tap", Kind: KindLine})
	marks := marksForWord("tap", []SpeechMark{
		{TimeMs: 10, Type: MarkViseme, Value: "p"},
	})
	ms := MarkSet{lvl.Key(0): marks}

	opps := GenerateOpportunities(lvl, ms, rand.New(rand.NewSource(1)))
	if len(opps) != 1 {
		t.Fatalf("got %d opportunities, want 1", len(opps))
	}
	if opps[0].AnimationKey != "letter_p" {
		t.Errorf("animation key %q, want letter_p", opps[0].AnimationKey)
	}
}

// marksForWord prefixes viseme marks with a single word mark at t=0.
func marksForWord(word string, visemes []SpeechMark) []SpeechMark {
	return append([]SpeechMark{{TimeMs: 0, Type: MarkWord, Value: word}}, visemes...)
}
