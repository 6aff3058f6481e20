package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/atotto/clipboard"

	"gaslighted/internal/game"
	"gaslighted/internal/level"
)

type runStats struct {
	runIndex int
	seed     int64

	firstResultTick   int
	firstTerribleTick int
	firstMissTick     int
	gameOverTick      int

	presses         int
	ignoredPresses  int
	dialogueAdvance int

	outcome game.RunOutcomeReason
	window  *game.WindowReport
}

func main() {
	var runs int
	var ticks int
	var seedBase int64
	var seedStep int64
	var policyName string
	var levelPath string
	var marksDir string
	var copyOut bool

	flag.IntVar(&runs, "runs", 5, "number of headless simulation runs")
	flag.IntVar(&ticks, "ticks", 3600, "ticks per run (60 per second)")
	flag.Int64Var(&seedBase, "seed-base", 42, "base RNG seed for run 1")
	flag.Int64Var(&seedStep, "seed-step", 1, "seed increment between runs")
	flag.StringVar(&policyName, "policy", "sloppy", "autoplay policy: none, perfect, sloppy")
	flag.StringVar(&levelPath, "level", "", "level YAML file (builtin standup level when empty)")
	flag.StringVar(&marksDir, "marks", "", "directory of per-dialogue speech mark JSON files")
	flag.BoolVar(&copyOut, "copy", false, "copy the report to the system clipboard")
	flag.Parse()

	if runs <= 0 {
		fmt.Println("error: -runs must be > 0")
		return
	}
	if ticks <= 0 {
		fmt.Println("error: -ticks must be > 0")
		return
	}
	policy, err := game.ParseAutoplayPolicy(policyName)
	if err != nil {
		fmt.Printf("error: %v\n", err)
		return
	}

	opts := []game.SimOption{game.WithAutoplayer(policy)}
	levelID := "standup (builtin)"
	if levelPath != "" {
		lvl, err := level.Load(levelPath)
		if err != nil {
			fmt.Printf("error: %v\n", err)
			os.Exit(1)
		}
		levelID = lvl.ID
		opts = append(opts, game.WithLevel(lvl))
		if marksDir != "" {
			marks, err := level.LoadMarkSet(marksDir, lvl)
			if err != nil {
				fmt.Printf("error: %v\n", err)
				os.Exit(1)
			}
			for i := range lvl.Dialogues {
				if ms, ok := marks[lvl.Key(i)]; ok {
					opts = append(opts, game.WithDialogueMarks(i, ms))
				}
			}
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "=== Headless Meeting Report ===\n")
	fmt.Fprintf(&b, "level=%s policy=%s runs=%d ticks=%d seed_base=%d seed_step=%d\n\n",
		levelID, policy, runs, ticks, seedBase, seedStep)

	all := make([]runStats, 0, runs)
	for i := 0; i < runs; i++ {
		seed := seedBase + int64(i)*seedStep
		stats := runOnce(i+1, seed, ticks, opts)
		all = append(all, stats)
		printRun(&b, stats)
	}
	printAggregate(&b, all)

	fmt.Print(b.String())
	if copyOut {
		if err := clipboard.WriteAll(b.String()); err != nil {
			fmt.Printf("clipboard copy failed: %v\n", err)
			return
		}
		fmt.Println("report copied to clipboard")
	}
}

func runOnce(runIndex int, seed int64, ticks int, base []game.SimOption) runStats {
	opts := append([]game.SimOption{game.WithSeed(seed)}, base...)
	ts := game.NewTestSim(opts...)
	ts.RunTicks(ticks)

	return runStats{
		runIndex:          runIndex,
		seed:              seed,
		firstResultTick:   firstTick(ts.SimLog, "result", ""),
		firstTerribleTick: firstTick(ts.SimLog, "result", "terrible"),
		firstMissTick:     firstTick(ts.SimLog, "opportunity", "missed"),
		gameOverTick:      firstTick(ts.SimLog, "playback", "game_over"),
		presses:           ts.SimLog.CountCategory("result", ""),
		ignoredPresses:    ts.SimLog.CountCategory("press", "ignored"),
		dialogueAdvance:   ts.SimLog.CountCategory("playback", "dialogue_advance"),
		outcome:           ts.Outcome(),
		window:            ts.Reporter.WindowSummary(),
	}
}

func firstTick(sl *game.SimLog, category, key string) int {
	for _, e := range sl.Entries() {
		if e.Category != category {
			continue
		}
		if key != "" && e.Key != key {
			continue
		}
		return e.Tick
	}
	return -1
}

func printRun(b *strings.Builder, rs runStats) {
	out := rs.outcome
	fmt.Fprintf(b, "--- Run %d (seed=%d) ---\n", rs.runIndex, rs.seed)
	fmt.Fprintf(b, "outcome: %s (%s)\n", out.Outcome, out.Description)
	fmt.Fprintf(b, "phase_markers: first_result=%d first_terrible=%d first_miss=%d game_over=%d\n",
		rs.firstResultTick, rs.firstTerribleTick, rs.firstMissTick, rs.gameOverTick)
	fmt.Fprintf(b, "tiers: perfect=%d okay=%d bad=%d terrible=%d missed=%d\n",
		out.Counts.Perfect, out.Counts.Okay, out.Counts.Bad, out.Counts.Terrible, out.Counts.Missed)
	fmt.Fprintf(b, "run_totals: score=%d max_combo=%d presses=%d ignored_presses=%d dialogues=%d/%d advances=%d\n",
		out.Score, out.MaxCombo, rs.presses, rs.ignoredPresses,
		out.DialoguesDone, out.DialoguesTotal, rs.dialogueAdvance)
	fmt.Fprintf(b, "final_meters: pressure=%.1f shame=%.1f\n", out.FinalPressure, out.FinalShame)
	if rs.window != nil {
		fmt.Fprintf(b, "window_samples=%d window_tick_range=%d..%d\n",
			rs.window.SampleCount, rs.window.FromTick, rs.window.ToTick)
		fmt.Fprintf(b, "window_meters: avg_pressure=%.1f max_pressure=%.1f avg_shame=%.1f max_shame=%.1f avg_combo=%.1f\n",
			rs.window.AvgPressure, rs.window.MaxPressure,
			rs.window.AvgShame, rs.window.MaxShame, rs.window.AvgCombo)
	}
	fmt.Fprintln(b)
}

func printAggregate(b *strings.Builder, all []runStats) {
	var counts game.TierCounts
	totalScore := 0
	totalPresses := 0
	totalAdvances := 0
	maxCombo := 0
	outcomes := map[string]int{}
	terribleTicks := make([]int, 0, len(all))
	gameOverTicks := make([]int, 0, len(all))

	for _, rs := range all {
		out := rs.outcome
		counts.Perfect += out.Counts.Perfect
		counts.Okay += out.Counts.Okay
		counts.Bad += out.Counts.Bad
		counts.Terrible += out.Counts.Terrible
		counts.Missed += out.Counts.Missed
		totalScore += out.Score
		totalPresses += rs.presses
		totalAdvances += rs.dialogueAdvance
		if out.MaxCombo > maxCombo {
			maxCombo = out.MaxCombo
		}
		outcomes[out.Outcome.String()]++
		if rs.firstTerribleTick >= 0 {
			terribleTicks = append(terribleTicks, rs.firstTerribleTick)
		}
		if rs.gameOverTick >= 0 {
			gameOverTicks = append(gameOverTicks, rs.gameOverTick)
		}
	}

	n := len(all)
	fmt.Fprintln(b, "=== Aggregate ===")
	fmt.Fprintf(b, "runs=%d outcomes: victory=%d caught=%d inconclusive=%d\n",
		n, outcomes["victory"], outcomes["caught"], outcomes["inconclusive"])
	fmt.Fprintf(b, "avg_tiers_per_run: perfect=%.1f okay=%.1f bad=%.1f terrible=%.1f missed=%.1f\n",
		avg(counts.Perfect, n), avg(counts.Okay, n), avg(counts.Bad, n),
		avg(counts.Terrible, n), avg(counts.Missed, n))
	fmt.Fprintf(b, "avg_score=%.1f avg_presses=%.1f avg_advances=%.1f best_combo=%d\n",
		avg(totalScore, n), avg(totalPresses, n), avg(totalAdvances, n), maxCombo)
	fmt.Fprintf(b, "first_terrible_ticks: %s\n", tickSummary(terribleTicks))
	fmt.Fprintf(b, "game_over_ticks: %s\n", tickSummary(gameOverTicks))
}

func avg(total, n int) float64 {
	if n == 0 {
		return 0
	}
	return float64(total) / float64(n)
}

func tickSummary(ticks []int) string {
	if len(ticks) == 0 {
		return "never"
	}
	minT, maxT, sum := ticks[0], ticks[0], 0
	for _, t := range ticks {
		if t < minT {
			minT = t
		}
		if t > maxT {
			maxT = t
		}
		sum += t
	}
	return fmt.Sprintf("min=%d max=%d avg=%.1f n=%d",
		minT, maxT, float64(sum)/float64(len(ticks)), len(ticks))
}
