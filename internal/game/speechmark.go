package game

import "sort"

// Speech mark event types as emitted by neural TTS engines (Amazon Polly).
const (
	MarkSentence = "sentence"
	MarkWord     = "word"
	MarkViseme   = "viseme"
	MarkSSML     = "ssml"
)

// SpeechMark is one timestamped event from TTS output. Produced externally
// (offline batch synthesis), consumed read-only by the core.
type SpeechMark struct {
	TimeMs float64 `json:"time"`  // milliseconds from utterance start
	Type   string  `json:"type"`  // sentence, word, viseme, ssml
	Value  string  `json:"value"` // word text or phoneme symbol
	Start  int     `json:"start"` // character offset into the source text
	End    int     `json:"end"`
}

// filterMarks returns the marks of one type, sorted by time.
func filterMarks(marks []SpeechMark, markType string) []SpeechMark {
	var out []SpeechMark
	for _, m := range marks {
		if m.Type == markType {
			out = append(out, m)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].TimeMs < out[j].TimeMs })
	return out
}

// wordEndMs estimates when a word stops being spoken: spoken duration is
// estimated as len(word)*75ms, capped at the next word's start so estimates
// never overlap. The cap does not apply to the last word.
func wordEndMs(words []SpeechMark, i int) float64 {
	est := words[i].TimeMs + float64(len(words[i].Value))*wordMsPerChar
	if i+1 < len(words) && words[i+1].TimeMs < est {
		return words[i+1].TimeMs
	}
	return est
}
