package game

import (
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
)

// debugReport renders a paste-friendly snapshot of the running scene: meters,
// the current dialogue with its zones, and every opportunity's flags. Bound to
// F1 in the scene; the same text is what bug reports should contain.
func (s *Scene) debugReport() string {
	st := s.state

	var b strings.Builder
	fmt.Fprintf(&b, "--- gaslighted debug report ---\n")
	fmt.Fprintf(&b, "level=%s difficulty=%d tick=%d speed=%.2fx\n", s.level.ID, s.level.Difficulty, s.tick, s.simSpeed)
	fmt.Fprintf(&b, "dialogue=%d/%d playback=%.0fms\n", st.DialogueIndex, len(s.level.Dialogues), st.PlaybackMs)
	fmt.Fprintf(&b, "pressure=%.1f shame=%.1f combo=%d score=%d playing=%v over=%v victory=%v\n",
		st.Pressure, st.Shame, st.Combo, st.Score, st.Playing, st.GameOver, st.Victory)
	if st.LastResult != nil {
		fmt.Fprintf(&b, "last_result=%s key=%s at=%.0fms word=%d\n",
			st.LastResult.Type, st.LastResult.FartType, st.LastResult.TimestampMs, st.LastResult.WordIndex)
	}

	if st.DialogueIndex < len(s.level.Dialogues) {
		d := s.level.Dialogues[st.DialogueIndex]
		fmt.Fprintf(&b, "\n== dialogue %d (%s, %s) ==\n", st.DialogueIndex, d.Speaker, d.Kind)
		fmt.Fprintf(&b, "%q\n", d.Text)
		fmt.Fprintf(&b, "zones:\n")
		for _, z := range s.zones[st.DialogueIndex] {
			fmt.Fprintf(&b, "  - [%.0f..%.0f]ms key=%s conf=%.2f\n", z.StartMs, z.EndMs, z.KeyToPress, z.Confidence)
		}
	}

	fmt.Fprintf(&b, "\n== opportunities ==\n")
	for i, o := range st.Opportunities {
		marker := " "
		if i == st.CurrentOpportunity {
			marker = ">"
		}
		fmt.Fprintf(&b, "%s %3d d=%d w=%d t=%.0fms key=%s active=%v handled=%v pressed=%v result=%s\n",
			marker, i, o.DialogueIndex, o.WordIndex, o.TimeMs, o.Type, o.Active, o.Handled, o.Pressed, o.Result)
	}
	return b.String()
}

// copyDebugReport puts the report on the system clipboard. Errors are shown
// in the HUD rather than crashing a running game.
func (s *Scene) copyDebugReport() {
	if err := clipboard.WriteAll(s.debugReport()); err != nil {
		s.debugNotice = fmt.Sprintf("clipboard: %v", err)
		return
	}
	s.debugNotice = "debug report copied"
}
