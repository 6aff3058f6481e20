package game

import (
	"fmt"
	"math/rand"
)

// Fallback opportunity times for dialogue whose speech marks never arrived.
var fallbackOpportunityTimes = [3]float64{500, 2000, 3500}

// FartOpportunity is one playable timing target within a level. Created once
// per level load; the runtime flags mutate every scheduler tick and reset only
// when the level unloads.
//
// Invariant (restored every tick by ScheduleTick): at most one opportunity per
// key type is active && !handled, and at most MaxSimultaneousLetters are
// active across all types.
type FartOpportunity struct {
	DialogueIndex int
	WordIndex     int
	VisemeIndex   int
	TimeMs        float64 // into the dialogue's playback, at 1x speed
	Type          FartType

	// Runtime flags.
	Active       bool
	Handled      bool
	Pressed      bool
	PressedMs    float64
	Result       FartResultType // ResultNone until pressed or expired
	AnimationKey string
}

// GenerateOpportunities produces the flat list of timing targets for a whole
// level. rng seeds the fallback key cycle for mark-less dialogue; inject a
// fixed-seed source for reproducible runs.
func GenerateOpportunities(level *Level, marks MarkSet, rng *rand.Rand) []FartOpportunity {
	rules := level.Rules.WithDefaults()
	var out []FartOpportunity
	for i, d := range level.Dialogues {
		if d.Speaker == "" {
			continue
		}
		opps := markOpportunities(i, marks[level.Key(i)], rules.MaxPossibleFartsByWord)
		// Marks that yielded nothing (missing, word-less, or all-vowel) get
		// the same fallback a missing file would.
		if len(opps) == 0 && d.Kind.PlayableWithoutMarks() {
			opps = fallbackOpportunities(i, rng)
		}
		out = append(out, opps...)
	}
	return out
}

// fallbackOpportunities synthesizes evenly spaced targets for an utterance
// with no speech marks, cycling through the key categories from a random
// starting point.
func fallbackOpportunities(dialogueIndex int, rng *rand.Rand) []FartOpportunity {
	start := rng.Intn(fartTypeCount)
	out := make([]FartOpportunity, 0, len(fallbackOpportunityTimes))
	for i, t := range fallbackOpportunityTimes {
		ft := FartType((start + i) % fartTypeCount)
		out = append(out, newOpportunity(dialogueIndex, i, 0, t, ft))
	}
	return out
}

// markOpportunities derives targets from real speech marks: visemes grouped by
// enclosing word, capped per word, at most one viseme per distinct mapped key
// category per word (first seen in time order).
func markOpportunities(dialogueIndex int, marks []SpeechMark, maxPerWord int) []FartOpportunity {
	words := filterMarks(marks, MarkWord)
	visemes := filterMarks(marks, MarkViseme)
	if len(words) == 0 || len(visemes) == 0 {
		return nil
	}

	var out []FartOpportunity
	for wi := range words {
		wStart := words[wi].TimeMs
		wEnd := wordEndMs(words, wi)

		seen := make(map[FartType]bool, fartTypeCount)
		taken := 0
		visemeIdx := -1
		for _, v := range visemes {
			if v.TimeMs < wStart || v.TimeMs >= wEnd {
				continue
			}
			visemeIdx++
			if taken >= maxPerWord {
				break
			}
			ft, ok := MapVisemeToKey(v.Value)
			if !ok || seen[ft] {
				continue
			}
			seen[ft] = true
			taken++
			out = append(out, newOpportunity(dialogueIndex, wi, visemeIdx, v.TimeMs, ft))
		}
	}
	return out
}

func newOpportunity(dialogueIndex, wordIndex, visemeIndex int, timeMs float64, ft FartType) FartOpportunity {
	return FartOpportunity{
		DialogueIndex: dialogueIndex,
		WordIndex:     wordIndex,
		VisemeIndex:   visemeIndex,
		TimeMs:        timeMs,
		Type:          ft,
		AnimationKey:  fmt.Sprintf("letter_%s", ft.Letter()),
	}
}
