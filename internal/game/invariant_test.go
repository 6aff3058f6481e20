package game

import (
	"strings"
	"testing"
)

// checkStateInvariants validates the structural invariants that must hold
// after every tick, at any seed and policy.
func checkStateInvariants(t *testing.T, ts *TestSim) {
	t.Helper()
	st := ts.State

	if st.Pressure < 0 || st.Pressure > meterMax {
		t.Fatalf("tick %d: pressure %.2f out of [0,%.0f]", ts.CurrentTick(), st.Pressure, meterMax)
	}
	if st.Shame < 0 || st.Shame > meterMax {
		t.Fatalf("tick %d: shame %.2f out of [0,%.0f]", ts.CurrentTick(), st.Shame, meterMax)
	}
	if st.Combo < 0 {
		t.Fatalf("tick %d: negative combo %d", ts.CurrentTick(), st.Combo)
	}

	active := 0
	perType := map[FartType]int{}
	for i := range st.Opportunities {
		o := &st.Opportunities[i]
		if o.Active && !o.Handled {
			active++
			perType[o.Type]++
		}
		if o.Pressed && !o.Handled {
			t.Fatalf("tick %d: opportunity %d pressed but unhandled", ts.CurrentTick(), i)
		}
	}
	if limit := ts.Rules.MaxSimultaneousLetters; active > limit {
		t.Fatalf("tick %d: %d active letters, cap is %d", ts.CurrentTick(), active, limit)
	}
	for ft, n := range perType {
		if n > 1 {
			t.Fatalf("tick %d: %d active %s letters, want at most 1 per category", ts.CurrentTick(), n, ft)
		}
	}

	cur := st.CurrentOpportunity
	if cur != -1 {
		if cur < 0 || cur >= len(st.Opportunities) {
			t.Fatalf("tick %d: current opportunity index %d out of range", ts.CurrentTick(), cur)
		}
		o := st.Opportunities[cur]
		if !o.Active || o.Handled {
			t.Fatalf("tick %d: current opportunity %d is not actionable", ts.CurrentTick(), cur)
		}
		for i := range st.Opportunities {
			other := &st.Opportunities[i]
			if other.Active && !other.Handled && other.TimeMs < o.TimeMs {
				t.Fatalf("tick %d: current=%d but %d is active and earlier", ts.CurrentTick(), cur, i)
			}
		}
	}
}

func TestInvariant_LongRunStateStaysSane(t *testing.T) {
	for _, policy := range []AutoplayPolicy{AutoplayNone, AutoplayPerfect, AutoplaySloppy} {
		for seed := int64(1); seed <= 4; seed++ {
			ts := NewTestSim(WithSeed(seed), WithAutoplayer(policy))
			for i := 0; i < 60*60; i++ {
				ts.RunTicks(1)
				checkStateInvariants(t, ts)
				if ts.State.GameOver {
					break
				}
			}
		}
	}
}

func TestInvariant_TerribleOnlyFromAutoRelease(t *testing.T) {
	ts := NewTestSim(WithSeed(13), WithAutoplayer(AutoplaySloppy))
	ts.RunUntil(func(ts *TestSim) bool { return ts.State.GameOver }, 60*180)

	terribles := ts.SimLog.Filter("result", "terrible")
	if len(terribles) != ts.Reporter.Counts().Terrible {
		t.Fatalf("%d terrible log entries vs %d counted", len(terribles), ts.Reporter.Counts().Terrible)
	}
	for _, e := range terribles {
		if !strings.Contains(e.Value, "auto release") {
			t.Fatalf("terrible from a source other than auto-release: %s", e.String())
		}
	}
}

func TestInvariant_ScoreNeverDecreases(t *testing.T) {
	ts := NewTestSim(WithSeed(8), WithAutoplayer(AutoplaySloppy))
	prev := 0
	for i := 0; i < 60*90; i++ {
		ts.RunTicks(1)
		if ts.State.Score < prev {
			t.Fatalf("tick %d: score fell %d -> %d", ts.CurrentTick(), prev, ts.State.Score)
		}
		prev = ts.State.Score
		if ts.State.GameOver {
			break
		}
	}
}

func TestInvariant_NothingMovesAfterGameOver(t *testing.T) {
	ts := NewTestSim(WithSeed(6), WithAutoplayer(AutoplayPerfect))
	if ts.RunUntil(func(ts *TestSim) bool { return ts.State.GameOver }, 60*180) == -1 {
		t.Fatal("run never finished")
	}
	snap := ts.State
	counts := ts.Reporter.Counts()
	overTick := ts.CurrentTick()

	ts.RunTicks(120)
	if ts.State.Score != snap.Score || ts.State.Pressure != snap.Pressure || ts.State.Shame != snap.Shame {
		t.Fatalf("state moved after game over: %+v vs %+v", ts.State, snap)
	}
	if ts.Reporter.Counts() != counts {
		t.Fatalf("results resolved after game over: %+v vs %+v", ts.Reporter.Counts(), counts)
	}
	if post := ts.SimLog.FilterTickRange(overTick+1, ts.CurrentTick()); len(post) > 0 {
		t.Fatalf("%d log entries after game over, first: %s", len(post), post[0].String())
	}
}

func TestInvariant_EveryResolvedResultIsTallied(t *testing.T) {
	ts := NewTestSim(WithSeed(17), WithAutoplayer(AutoplaySloppy))
	ts.RunUntil(func(ts *TestSim) bool { return ts.State.GameOver }, 60*180)

	counts := ts.Reporter.Counts()
	pressLogged := ts.SimLog.CountCategory("result", "perfect") +
		ts.SimLog.CountCategory("result", "okay") +
		ts.SimLog.CountCategory("result", "bad")
	if pressLogged != counts.Pressed() {
		t.Fatalf("%d press results logged vs %d tallied", pressLogged, counts.Pressed())
	}

	// Every press recorded on an opportunity has a matching terminal result.
	for i, o := range ts.State.Opportunities {
		if o.Pressed && o.Result == ResultNone {
			t.Fatalf("opportunity %d pressed without a result", i)
		}
		if o.Result == ResultMissed && o.Pressed {
			t.Fatalf("opportunity %d both pressed and missed", i)
		}
	}
}
