package game

import "sort"

// letterVisibleMs is how long a letter stays on screen (and pressable) after
// its ideal press time, at 1x speed.
const letterVisibleMs = 2000.0

// windowLeadFactor opens the press window ahead of the ideal time, as a
// multiple of the precision window. Presses in the earliest part of the lead
// land outside 2x the precision window and judge as bad.
const windowLeadFactor = 2.5

// ScheduleTick advances opportunity activation for one simulated tick.
// It is a functional update: the input slice is not mutated; the returned
// slice is a fresh copy with flags recomputed, so no caller ever observes a
// half-updated tick. The second return is the index of the single current
// opportunity, or -1 when none is actionable.
func ScheduleTick(opps []FartOpportunity, dialogueIndex int, playbackMs float64, rules Rules) ([]FartOpportunity, int) {
	rules = rules.WithDefaults()
	gs := rules.GameSpeed

	out := make([]FartOpportunity, len(opps))
	copy(out, opps)

	for i := range out {
		o := &out[i]
		if o.DialogueIndex != dialogueIndex {
			// Opportunities of other dialogues are inert, not cancelled.
			o.Active = false
			continue
		}
		if o.Handled || o.Pressed {
			o.Active = false
			continue
		}
		adjusted := o.TimeMs / gs
		winStart := adjusted - windowLeadFactor*rules.PrecisionWindowMs/gs
		winEnd := adjusted + letterVisibleMs/gs
		if playbackMs > winEnd {
			// Never pressed and the window has passed: silent expiry.
			o.Active = false
			o.Handled = true
			o.Result = ResultMissed
			continue
		}
		o.Active = playbackMs >= winStart
	}

	restoreInvariants(out, rules.MaxSimultaneousLetters)
	return out, currentIndex(out)
}

// restoreInvariants enforces the two scheduler invariants in place:
// one active instance per key type (most recent by time wins), and at most
// maxSimultaneous active opportunities overall (earliest by time kept).
func restoreInvariants(opps []FartOpportunity, maxSimultaneous int) {
	latest := make(map[FartType]int, fartTypeCount)
	for i := range opps {
		o := &opps[i]
		if !o.Active || o.Handled {
			continue
		}
		j, ok := latest[o.Type]
		if !ok {
			latest[o.Type] = i
			continue
		}
		if o.TimeMs > opps[j].TimeMs {
			opps[j].Active = false
			opps[j].Handled = true
			latest[o.Type] = i
		} else {
			o.Active = false
			o.Handled = true
		}
	}

	var active []int
	for i := range opps {
		if opps[i].Active && !opps[i].Handled {
			active = append(active, i)
		}
	}
	if len(active) <= maxSimultaneous {
		return
	}
	sort.Slice(active, func(a, b int) bool {
		return opps[active[a]].TimeMs < opps[active[b]].TimeMs
	})
	// Excess beyond the first N deactivates but stays unhandled; it may
	// reactivate on a later tick once a slot frees up.
	for _, i := range active[maxSimultaneous:] {
		opps[i].Active = false
	}
}

// currentIndex picks the single actionable opportunity: the earliest active
// one by scheduled time.
func currentIndex(opps []FartOpportunity) int {
	cur := -1
	for i := range opps {
		if !opps[i].Active || opps[i].Handled {
			continue
		}
		if cur == -1 || opps[i].TimeMs < opps[cur].TimeMs {
			cur = i
		}
	}
	return cur
}

// MarkPressed records a judged press on opportunity idx and returns the
// updated slice. Like ScheduleTick it never mutates its input.
func MarkPressed(opps []FartOpportunity, idx int, pressedMs float64, result FartResultType) []FartOpportunity {
	if idx < 0 || idx >= len(opps) {
		return opps
	}
	out := make([]FartOpportunity, len(opps))
	copy(out, opps)
	o := &out[idx]
	o.Pressed = true
	o.PressedMs = pressedMs
	o.Handled = true
	o.Active = false
	o.Result = result
	return out
}
