package main

import (
	"testing"

	"gaslighted/internal/game"
)

func TestFirstTick(t *testing.T) {
	sl := game.NewSimLog(false)
	sl.Add(10, "boss", "result", "okay", "t at 900ms", 900)
	sl.Add(25, "boss", "result", "terrible", "auto release at 1200ms", 80)
	sl.Add(30, "boss", "result", "terrible", "auto release at 1300ms", 82)

	if got := firstTick(sl, "result", ""); got != 10 {
		t.Fatalf("first result tick=%d, want 10", got)
	}
	if got := firstTick(sl, "result", "terrible"); got != 25 {
		t.Fatalf("first terrible tick=%d, want 25", got)
	}
	if got := firstTick(sl, "playback", "game_over"); got != -1 {
		t.Fatalf("absent event tick=%d, want -1", got)
	}
}

func TestAvg(t *testing.T) {
	if got := avg(10, 4); got != 2.5 {
		t.Fatalf("avg(10,4)=%v, want 2.5", got)
	}
	if got := avg(10, 0); got != 0 {
		t.Fatalf("avg over zero runs=%v, want 0", got)
	}
}

func TestTickSummary(t *testing.T) {
	if got := tickSummary(nil); got != "never" {
		t.Fatalf("empty summary=%q, want never", got)
	}
	got := tickSummary([]int{30, 10, 20})
	want := "min=10 max=30 avg=20.0 n=3"
	if got != want {
		t.Fatalf("summary=%q, want %q", got, want)
	}
}
