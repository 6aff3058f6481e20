package game

import (
	"math"
	"math/rand"
)

// Meter bounds. Pressure and shame are clamped to [0, meterMax] on every
// mutation.
const meterMax = 100.0

// autoReleaseChancePerPoint converts pressure above the critical threshold
// into a per-tick probability of an involuntary release.
const autoReleaseChancePerPoint = 0.02

// Score awarded per tier. Perfect scales with the running combo.
const (
	scorePerfectBase  = 100
	scorePerfectCombo = 10
	scoreOkay         = 50
	maxComboBonus     = 5
	comboReleaseStep  = 5.0
)

// State is the rolling game state. The core treats it as a value: every
// transformation returns a new State, so a single owner can drive the whole
// game from one tick source without locking.
type State struct {
	Pressure float64 // 0..100
	Shame    float64 // 0..100
	Combo    int
	Score    int

	DialogueIndex int
	PlaybackMs    float64 // into the current dialogue, wall-clock

	Opportunities      []FartOpportunity
	CurrentOpportunity int // index into Opportunities, -1 when none

	LastResult *FartResult

	Playing  bool
	GameOver bool
	Victory  bool
}

// NewState builds the initial state for a loaded level.
func NewState(opps []FartOpportunity) State {
	return State{
		Opportunities:      opps,
		CurrentOpportunity: -1,
		Playing:            true,
	}
}

func clampMeter(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > meterMax {
		return meterMax
	}
	return v
}

// releaseFor returns the configured pressure release for a tier. A terrible
// with no explicit rule derives from bad. Missed vents nothing.
func releaseFor(rules Rules, t FartResultType) float64 {
	switch t {
	case ResultPerfect:
		return rules.PressureRelease.Perfect
	case ResultOkay:
		return rules.PressureRelease.Okay
	case ResultBad:
		return rules.PressureRelease.Bad
	case ResultTerrible:
		if rules.PressureRelease.Terrible > 0 {
			return rules.PressureRelease.Terrible
		}
		return rules.PressureRelease.Bad / 2
	default:
		return 0
	}
}

// shameFor returns the configured shame gain for a tier, deriving terrible
// from bad when unconfigured.
func shameFor(rules Rules, t FartResultType) float64 {
	switch t {
	case ResultPerfect:
		return rules.ShameGain.Perfect
	case ResultOkay:
		return rules.ShameGain.Okay
	case ResultBad:
		return rules.ShameGain.Bad
	case ResultTerrible:
		if rules.ShameGain.Terrible > 0 {
			return rules.ShameGain.Terrible
		}
		return math.Ceil(rules.ShameGain.Bad * 1.5)
	default:
		return 0
	}
}

// ApplyResult folds a judged (or auto-triggered) result into the state:
// releases pressure with a combo bonus, raises shame, updates combo and
// score, and flags game over when shame saturates. No-op when the game is
// not running.
func ApplyResult(st State, rules Rules, res FartResult) State {
	if !st.Playing || st.GameOver {
		return st
	}

	switch res.Type {
	case ResultPerfect:
		st.Combo++
	case ResultBad, ResultTerrible:
		st.Combo = 0
	}

	release := releaseFor(rules, res.Type)
	if res.Type == ResultPerfect {
		release += float64(min(st.Combo, maxComboBonus)) * comboReleaseStep
	}
	st.Pressure = clampMeter(st.Pressure - release)
	st.Shame = clampMeter(st.Shame + shameFor(rules, res.Type))

	switch res.Type {
	case ResultPerfect:
		st.Score += scorePerfectBase + scorePerfectCombo*min(st.Combo, maxComboBonus)
	case ResultOkay:
		st.Score += scoreOkay
	}

	r := res
	st.LastResult = &r

	if st.Shame >= meterMax {
		st.GameOver = true
		st.Victory = false
		st.Playing = false
	}
	return st
}

// AutoRelease is the per-tick probabilistic trigger for an involuntary
// terrible release. Above the critical pressure threshold the chance grows
// linearly with excess pressure. This is the only source of terrible results;
// mistimed presses judge bad, never terrible.
func AutoRelease(st State, rules Rules, rng *rand.Rand) (State, bool) {
	if !st.Playing || st.GameOver {
		return st, false
	}
	rules = rules.WithDefaults()
	if st.Pressure < rules.CriticalPressure {
		return st, false
	}
	chance := (st.Pressure - rules.CriticalPressure) * autoReleaseChancePerPoint
	if rng.Float64() >= chance {
		return st, false
	}
	res := FartResult{
		Type:        ResultTerrible,
		FartType:    FartType(rng.Intn(fartTypeCount)),
		TimestampMs: st.PlaybackMs,
		WordIndex:   -1,
	}
	return ApplyResult(st, rules, res), true
}

// AdvancePlayback moves playback dtMs forward: pressure builds, finished
// dialogues advance the index, and exhausting the script ends the game —
// a victory when shame stayed below the cap.
func AdvancePlayback(st State, level *Level, rules Rules, dtMs float64) State {
	if !st.Playing || st.GameOver {
		return st
	}
	rules = rules.WithDefaults()

	st.PlaybackMs += dtMs
	st.Pressure = clampMeter(st.Pressure + rules.PressureBuildupPerSecond*dtMs/1000)

	if st.DialogueIndex >= len(level.Dialogues) {
		st.GameOver = true
		st.Victory = st.Shame < meterMax
		st.Playing = false
		return st
	}

	d := level.Dialogues[st.DialogueIndex]
	if st.PlaybackMs >= d.PlayDurationMs()/rules.GameSpeed {
		st.DialogueIndex++
		st.PlaybackMs = 0
		if st.DialogueIndex >= len(level.Dialogues) {
			st.GameOver = true
			st.Victory = st.Shame < meterMax
			st.Playing = false
		}
	}
	return st
}
