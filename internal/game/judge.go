package game

import (
	"math"
	"strings"
)

// FartResultType is the accuracy tier of a resolved press or auto-trigger.
type FartResultType int

const (
	ResultNone FartResultType = iota
	ResultPerfect
	ResultOkay
	ResultBad
	ResultTerrible
	ResultMissed
)

func (t FartResultType) String() string {
	switch t {
	case ResultPerfect:
		return "perfect"
	case ResultOkay:
		return "okay"
	case ResultBad:
		return "bad"
	case ResultTerrible:
		return "terrible"
	case ResultMissed:
		return "missed"
	default:
		return "none"
	}
}

// FartResult is the outcome of a resolved press or auto-trigger. Immutable
// once created; stored on State for edge-triggered side effects.
type FartResult struct {
	Type        FartResultType
	FartType    FartType
	TimestampMs float64
	WordIndex   int
}

// Accuracy tier thresholds, as multiples of the speed-adjusted precision
// window.
const (
	perfectWindowFactor = 0.75
	okayWindowFactor    = 2.0
)

// Judge classifies a live key press against the current opportunity.
// Returns nil when there is nothing to judge: no opportunity, an inactive or
// already-handled one, or a key that does not match its category
// (case-insensitive). The caller treats nil as an unrewarded press, not an
// error.
//
// The bad tier is reachable: the scheduler opens the window 2.5 precision
// windows before the ideal time, so an early press with elapsed error in
// (2.0, 2.5] windows arrives while the opportunity is active.
func Judge(pressedKey string, opp *FartOpportunity, nowMs, precisionWindowMs, gameSpeed float64) *FartResult {
	if opp == nil || !opp.Active || opp.Handled {
		return nil
	}
	if gameSpeed <= 0 {
		gameSpeed = 1
	}
	if !strings.EqualFold(pressedKey, opp.Type.Letter()) {
		return nil
	}

	diff := math.Abs(nowMs - opp.TimeMs/gameSpeed)
	adjustedWindow := precisionWindowMs / gameSpeed

	tier := ResultBad
	switch {
	case diff <= perfectWindowFactor*adjustedWindow:
		tier = ResultPerfect
	case diff <= okayWindowFactor*adjustedWindow:
		tier = ResultOkay
	}

	return &FartResult{
		Type:        tier,
		FartType:    opp.Type,
		TimestampMs: nowMs,
		WordIndex:   opp.WordIndex,
	}
}
