package game

import "testing"

// dumpLog prints the full SimLog to t.Log so it appears in `go test -v` output.
func dumpLog(t *testing.T, ts *TestSim) {
	t.Helper()
	if len(ts.SimLog.Entries()) == 0 {
		t.Log("(no log entries)")
		return
	}
	t.Log("\n" + ts.SimLog.Format())
}

// runToEnd drives the sim until game over or the tick budget runs out.
func runToEnd(t *testing.T, ts *TestSim, maxTicks int) {
	t.Helper()
	ts.RunUntil(func(ts *TestSim) bool { return ts.State.GameOver }, maxTicks)
}

func TestScenario_PerfectRunSurvivesTheMeeting(t *testing.T) {
	ts := NewTestSim(
		WithSeed(3),
		WithAutoplayer(AutoplayPerfect),
	)
	runToEnd(t, ts, 60*120)

	if !ts.State.GameOver {
		dumpLog(t, ts)
		t.Fatal("run never finished")
	}
	out := ts.Outcome()
	if out.Outcome != OutcomeVictory {
		dumpLog(t, ts)
		t.Fatalf("outcome=%s (%s), want victory", out.Outcome, out.Description)
	}
	counts := ts.Reporter.Counts()
	if counts.Perfect == 0 {
		t.Fatal("perfect policy never landed a perfect press")
	}
	if counts.Terrible != 0 {
		t.Fatalf("perfect run produced %d terribles", counts.Terrible)
	}
	if ts.State.Score == 0 {
		t.Fatal("perfect presses scored nothing")
	}
	if ts.Reporter.MaxCombo() < 2 {
		t.Fatalf("max combo=%d, want a streak from consecutive perfects", ts.Reporter.MaxCombo())
	}
}

func TestScenario_PassiveRunGetsCaughtByAutoRelease(t *testing.T) {
	ts := NewTestSim(
		WithSeed(11),
		WithAutoplayer(AutoplayNone),
	)
	runToEnd(t, ts, 60*180)

	out := ts.Outcome()
	if out.Outcome != OutcomeCaught {
		dumpLog(t, ts)
		t.Fatalf("outcome=%s (%s), want caught", out.Outcome, out.Description)
	}
	if out.Description != "caught_auto_release" {
		t.Fatalf("description=%q, want caught_auto_release", out.Description)
	}
	counts := ts.Reporter.Counts()
	if counts.Terrible == 0 {
		t.Fatal("passive run never auto-released")
	}
	if !ts.SimLog.HasEntry("result", "terrible", "auto release") {
		t.Fatal("auto releases not logged as terribles")
	}
	if counts.Pressed() != 0 {
		t.Fatalf("passive run recorded %d presses", counts.Pressed())
	}
}

func TestScenario_SloppyRunMixesTiers(t *testing.T) {
	ts := NewTestSim(
		WithSeed(21),
		WithAutoplayer(AutoplaySloppy),
	)
	runToEnd(t, ts, 60*120)

	counts := ts.Reporter.Counts()
	if counts.Pressed() == 0 {
		dumpLog(t, ts)
		t.Fatal("sloppy run never pressed")
	}
	if counts.Perfect == 0 {
		t.Error("sloppy jitter should still land some perfects")
	}
	if counts.Okay+counts.Bad == 0 {
		t.Error("sloppy jitter should land some off-center presses")
	}
}

func TestScenario_UnpressedOpportunitiesExpire(t *testing.T) {
	ts := NewTestSim(
		WithSeed(5),
		WithAutoplayer(AutoplayNone),
	)
	ts.RunTicks(60 * 5)

	counts := ts.Reporter.Counts()
	if counts.Missed == 0 {
		dumpLog(t, ts)
		t.Fatal("unpressed opportunities never expired as missed")
	}
	// Five seconds of buildup stays well under critical pressure.
	if counts.Terrible != 0 {
		t.Fatalf("got %d terribles before critical pressure was reachable", counts.Terrible)
	}
	if _, ok := ts.SimLog.FirstOf("opportunity", "missed"); !ok {
		t.Fatal("missed expiries not logged")
	}
}

func TestScenario_DialogueAdvancesAreLogged(t *testing.T) {
	ts := NewTestSim(
		WithSeed(2),
		WithAutoplayer(AutoplayPerfect),
	)
	runToEnd(t, ts, 60*120)

	advances := ts.SimLog.CountCategory("playback", "dialogue_advance")
	want := len(ts.Level.Dialogues)
	if advances != want {
		dumpLog(t, ts)
		t.Fatalf("logged %d dialogue advances, want %d", advances, want)
	}
	if _, ok := ts.SimLog.LastOf("playback", "game_over"); !ok {
		t.Fatal("game over not logged")
	}
}

func TestScenario_CustomLevelWithExplicitMarks(t *testing.T) {
	lvl := &Level{
		ID: "solo",
		Participants: []Participant{
			{ID: "me", IsPlayer: true},
			{ID: "boss"},
		},
		Rules: Rules{
			PrecisionWindowMs:        200,
			PressureRelease:          TierValues{Perfect: 10, Okay: 5, Bad: 2},
			ShameGain:                TierValues{Bad: 5},
			PressureBuildupPerSecond: 2,
		},
		Dialogues: []Dialogue{
			{Speaker: "boss", Text: "take two", Kind: KindLine, DurationMs: 6000},
		},
	}
	ts := NewTestSim(
		WithSeed(9),
		WithAutoplayer(AutoplayPerfect),
		WithLevel(lvl),
		WithDialogueMarks(0, SynthesizeMarks("take two")),
	)
	runToEnd(t, ts, 60*30)

	counts := ts.Reporter.Counts()
	if counts.Perfect == 0 {
		dumpLog(t, ts)
		t.Fatal("explicit marks produced no pressable opportunities")
	}
	if ts.Outcome().Outcome != OutcomeVictory {
		t.Fatalf("outcome=%s, want victory on a single calm line", ts.Outcome().Outcome)
	}
}

func TestScenario_SameSeedIsReproducible(t *testing.T) {
	run := func() (int, TierCounts) {
		ts := NewTestSim(WithSeed(77), WithAutoplayer(AutoplaySloppy))
		runToEnd(t, ts, 60*120)
		return ts.State.Score, ts.Reporter.Counts()
	}
	scoreA, countsA := run()
	scoreB, countsB := run()
	if scoreA != scoreB || countsA != countsB {
		t.Fatalf("same seed diverged: score %d vs %d, counts %+v vs %+v",
			scoreA, scoreB, countsA, countsB)
	}
}
