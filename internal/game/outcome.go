package game

// RunOutcome classifies how a playthrough ended.
type RunOutcome int

const (
	OutcomeInconclusive RunOutcome = iota
	OutcomeVictory
	OutcomeCaught
)

func (o RunOutcome) String() string {
	switch o {
	case OutcomeVictory:
		return "victory"
	case OutcomeCaught:
		return "caught"
	case OutcomeInconclusive:
		return "inconclusive"
	default:
		return "unknown"
	}
}

// RunOutcomeReason bundles the outcome with the evidence behind it.
type RunOutcomeReason struct {
	Outcome        RunOutcome
	FinalPressure  float64
	FinalShame     float64
	Score          int
	MaxCombo       int
	Counts         TierCounts
	DialoguesDone  int
	DialoguesTotal int
	Description    string
}

// DetermineRunOutcome classifies a finished (or truncated) run.
func DetermineRunOutcome(st State, level *Level, counts TierCounts, maxCombo int) RunOutcomeReason {
	reason := RunOutcomeReason{
		FinalPressure:  st.Pressure,
		FinalShame:     st.Shame,
		Score:          st.Score,
		MaxCombo:       maxCombo,
		Counts:         counts,
		DialoguesDone:  min(st.DialogueIndex, len(level.Dialogues)),
		DialoguesTotal: len(level.Dialogues),
	}

	switch {
	case st.GameOver && st.Victory:
		reason.Outcome = OutcomeVictory
		if counts.Terrible == 0 && counts.Bad == 0 {
			reason.Description = "clean_victory_meeting_survived"
		} else {
			reason.Description = "victory_meeting_survived"
		}
	case st.GameOver:
		reason.Outcome = OutcomeCaught
		if st.LastResult != nil && st.LastResult.Type == ResultTerrible {
			reason.Description = "caught_auto_release"
		} else {
			reason.Description = "caught_shame_saturated"
		}
	default:
		reason.Outcome = OutcomeInconclusive
		reason.Description = "inconclusive_run_truncated"
	}
	return reason
}
