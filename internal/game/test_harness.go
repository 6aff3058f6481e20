package game

import (
	"fmt"
	"math/rand"
	"strings"
)

// simTickMs is the wall-clock length of one headless tick (60 Hz, matching
// the rendered game loop).
const simTickMs = 1000.0 / 60.0

// reporterSampleTicks is how often the harness snapshots meters into the
// reporter history (every half second at 60 Hz).
const reporterSampleTicks = 30

// AutoplayPolicy selects how the harness plays the level.
type AutoplayPolicy int

const (
	// AutoplayNone never presses a key; pressure climbs until auto-release.
	AutoplayNone AutoplayPolicy = iota
	// AutoplayPerfect presses the right key on the first tick at or past the
	// ideal time.
	AutoplayPerfect
	// AutoplaySloppy presses with per-opportunity timing jitter and the
	// occasional wrong key.
	AutoplaySloppy
)

func (p AutoplayPolicy) String() string {
	switch p {
	case AutoplayPerfect:
		return "perfect"
	case AutoplaySloppy:
		return "sloppy"
	default:
		return "none"
	}
}

// ParseAutoplayPolicy parses a policy name as given on a command line.
func ParseAutoplayPolicy(s string) (AutoplayPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "none", "passive":
		return AutoplayNone, nil
	case "perfect":
		return AutoplayPerfect, nil
	case "sloppy":
		return AutoplaySloppy, nil
	default:
		return AutoplayNone, fmt.Errorf("unknown autoplay policy %q", s)
	}
}

// TestSim is a headless simulation harness used by tests and the report CLI.
// It mirrors the rendered game loop but has no Ebiten dependency and supports
// deterministic seeding and structured logging.
type TestSim struct {
	Level    *Level
	Marks    MarkSet
	Rules    Rules
	State    State
	SimLog   *SimLog
	Reporter *Reporter

	rng    *rand.Rand
	policy AutoplayPolicy
	tick   int

	rulesSet bool

	// Sloppy-policy press plan for the current opportunity.
	jitterFor int // CurrentOpportunity index the jitter was rolled for
	jitterMs  float64
	wrongKey  bool
}

// simOptionKind controls the pass in which an option is applied.
type simOptionKind int

const (
	simOptInfra simOptionKind = iota // level, rules, seed, verbose, policy — applied first
	simOptMarks                      // attach speech marks — applied after the level exists
)

// SimOption is a builder function applied to a TestSim during construction.
type SimOption struct {
	kind simOptionKind
	fn   func(*TestSim)
}

// WithLevel runs the simulation on the given level instead of the builtin one.
func WithLevel(l *Level) SimOption {
	return SimOption{simOptInfra, func(ts *TestSim) {
		ts.Level = l
	}}
}

// WithRules overrides the level's rules for this run.
func WithRules(r Rules) SimOption {
	return SimOption{simOptInfra, func(ts *TestSim) {
		ts.Rules = r
		ts.rulesSet = true
	}}
}

// WithSeed sets the RNG seed for deterministic runs.
func WithSeed(seed int64) SimOption {
	return SimOption{simOptInfra, func(ts *TestSim) {
		ts.rng = rand.New(rand.NewSource(seed)) // #nosec G404 -- test harness
	}}
}

// WithVerbose enables per-tick verbose logging.
func WithVerbose(v bool) SimOption {
	return SimOption{simOptInfra, func(ts *TestSim) {
		ts.SimLog = NewSimLog(v)
	}}
}

// WithAutoplayer sets the key-press policy for the run.
func WithAutoplayer(p AutoplayPolicy) SimOption {
	return SimOption{simOptInfra, func(ts *TestSim) {
		ts.policy = p
	}}
}

// WithDialogueMarks attaches speech marks to dialogue index i of the level.
func WithDialogueMarks(i int, marks []SpeechMark) SimOption {
	return SimOption{simOptMarks, func(ts *TestSim) {
		ts.Marks[ts.Level.Key(i)] = marks
	}}
}

// NewTestSim constructs a TestSim from the given options in ordered passes:
//  1. Infrastructure (level, rules, seed, verbose, policy)
//  2. Speech marks (synthesized for the builtin level when none are given)
//  3. Opportunity generation and initial state
func NewTestSim(opts ...SimOption) *TestSim {
	ts := &TestSim{
		Marks:     MarkSet{},
		SimLog:    NewSimLog(false),
		rng:       rand.New(rand.NewSource(1)), // #nosec G404 -- test harness default
		jitterFor: -1,
	}
	for _, o := range opts {
		if o.kind == simOptInfra {
			o.fn(ts)
		}
	}
	builtin := ts.Level == nil
	if builtin {
		ts.Level = BuiltinLevel()
	}
	if !ts.rulesSet {
		ts.Rules = ts.Level.Rules
	}
	ts.Rules = ts.Rules.WithDefaults()
	for _, o := range opts {
		if o.kind == simOptMarks {
			o.fn(ts)
		}
	}
	if builtin {
		for i, d := range ts.Level.Dialogues {
			key := ts.Level.Key(i)
			if _, ok := ts.Marks[key]; !ok && d.Speaker != "" {
				ts.Marks[key] = SynthesizeMarks(d.Text)
			}
		}
	}
	ts.Reporter = NewReporter(reportWindowTicks)
	ts.State = NewState(GenerateOpportunities(ts.Level, ts.Marks, ts.rng))
	return ts
}

// RunTicks advances the simulation n ticks, logging events to SimLog.
func (ts *TestSim) RunTicks(n int) {
	for i := 0; i < n; i++ {
		ts.runOneTick()
	}
}

// RunUntil advances the simulation up to maxTicks, stopping early if predicate
// returns true. Returns the tick at which the predicate was satisfied, or -1.
func (ts *TestSim) RunUntil(predicate func(*TestSim) bool, maxTicks int) int {
	for i := 0; i < maxTicks; i++ {
		ts.runOneTick()
		if predicate(ts) {
			return ts.tick
		}
	}
	return -1
}

// CurrentTick returns the current simulation tick.
func (ts *TestSim) CurrentTick() int {
	return ts.tick
}

// Outcome classifies the run as it stands now.
func (ts *TestSim) Outcome() RunOutcomeReason {
	return DetermineRunOutcome(ts.State, ts.Level, ts.Reporter.Counts(), ts.Reporter.MaxCombo())
}

// runOneTick mirrors the rendered game's update for the headless harness.
func (ts *TestSim) runOneTick() {
	ts.tick++
	tick := ts.tick
	st := ts.State

	prevIndex := st.DialogueIndex
	prevOver := st.GameOver

	// 1. PLAYBACK — wall clock, pressure buildup, dialogue advance.
	st = AdvancePlayback(st, ts.Level, ts.Rules, simTickMs)

	// 2. SCHEDULE — activate, expire, restore invariants.
	missedBefore := countMissed(st.Opportunities)
	opps, cur := ScheduleTick(st.Opportunities, st.DialogueIndex, st.PlaybackMs, ts.Rules)
	st.Opportunities = opps
	st.CurrentOpportunity = cur
	if d := countMissed(opps) - missedBefore; d > 0 {
		for i := 0; i < d; i++ {
			ts.Reporter.CountResult(ResultMissed)
		}
		ts.SimLog.Add(tick, ts.speakerAt(st.DialogueIndex), "opportunity", "missed",
			fmt.Sprintf("%d expired at %.0fms", d, st.PlaybackMs), float64(d))
	}

	// 3. PRESS — the autoplayer goes through the same judge path as a human.
	st = ts.autoplay(st, tick)

	// 4. AUTO-RELEASE — pressure past critical may pop on its own.
	st, fired := AutoRelease(st, ts.Rules, ts.rng)
	if fired {
		ts.Reporter.CountResult(ResultTerrible)
		ts.SimLog.Add(tick, ts.playerID(), "result", "terrible",
			fmt.Sprintf("auto release at %.0fms", st.PlaybackMs), st.Pressure)
	}

	// --- Post-tick logging ---

	if st.DialogueIndex != prevIndex {
		ts.SimLog.Add(tick, ts.speakerAt(st.DialogueIndex), "playback", "dialogue_advance",
			fmt.Sprintf("%d → %d", prevIndex, st.DialogueIndex), float64(st.DialogueIndex))
	}
	if st.GameOver && !prevOver {
		verdict := "caught"
		if st.Victory {
			verdict = "victory"
		}
		ts.SimLog.Add(tick, ts.playerID(), "playback", "game_over", verdict, st.Shame)
	}

	speaker := ts.speakerAt(st.DialogueIndex)
	ts.SimLog.AddVerbose(tick, speaker, "meter", "pressure", fmt.Sprintf("%.1f", st.Pressure), st.Pressure)
	ts.SimLog.AddVerbose(tick, speaker, "meter", "shame", fmt.Sprintf("%.1f", st.Shame), st.Shame)
	ts.SimLog.AddVerbose(tick, speaker, "meter", "combo", fmt.Sprintf("%d", st.Combo), float64(st.Combo))

	ts.State = st
	if tick%reporterSampleTicks == 0 {
		ts.Reporter.Collect(tick, st)
	}
}

// autoplay presses at most one key per tick according to the policy.
func (ts *TestSim) autoplay(st State, tick int) State {
	if ts.policy == AutoplayNone || st.GameOver {
		return st
	}
	cur := st.CurrentOpportunity
	if cur < 0 {
		ts.jitterFor = -1
		return st
	}
	opp := st.Opportunities[cur]
	adjusted := opp.TimeMs / ts.Rules.GameSpeed
	target := adjusted
	key := opp.Type.Letter()

	if ts.policy == AutoplaySloppy {
		if ts.jitterFor != cur {
			ts.jitterFor = cur
			// Jitter spans perfect through late-bad; larger late jitter lets
			// the opportunity expire into a miss instead.
			span := ts.Rules.PrecisionWindowMs / ts.Rules.GameSpeed
			ts.jitterMs = (ts.rng.Float64()*4.5 - 1.5) * span
			ts.wrongKey = ts.rng.Float64() < 0.1
		}
		target = adjusted + ts.jitterMs
		if ts.wrongKey {
			key = FartType(ts.rng.Intn(fartTypeCount)).Letter()
		}
	}

	if st.PlaybackMs < target {
		return st
	}
	res := Judge(key, &st.Opportunities[cur], st.PlaybackMs, ts.Rules.PrecisionWindowMs, ts.Rules.GameSpeed)
	if res == nil {
		// Wrong key or an unjudgeable press. Retry honestly next tick.
		ts.SimLog.AddVerbose(tick, ts.playerID(), "press", "ignored", key, st.PlaybackMs)
		ts.wrongKey = false
		return st
	}
	st.Opportunities = MarkPressed(st.Opportunities, cur, st.PlaybackMs, res.Type)
	st.CurrentOpportunity = -1
	st = ApplyResult(st, ts.Rules, *res)
	ts.Reporter.CountResult(res.Type)
	ts.SimLog.Add(tick, ts.playerID(), "result", res.Type.String(),
		fmt.Sprintf("%s at %.0fms", key, st.PlaybackMs), st.PlaybackMs)
	ts.jitterFor = -1
	return st
}

// speakerAt returns the speaker ID for a dialogue index, or "--".
func (ts *TestSim) speakerAt(i int) string {
	if i >= 0 && i < len(ts.Level.Dialogues) && ts.Level.Dialogues[i].Speaker != "" {
		return ts.Level.Dialogues[i].Speaker
	}
	return "--"
}

// playerID returns the player participant's ID, or "--".
func (ts *TestSim) playerID() string {
	if p, ok := ts.Level.Player(); ok {
		return p.ID
	}
	return "--"
}

func countMissed(opps []FartOpportunity) int {
	n := 0
	for _, o := range opps {
		if o.Result == ResultMissed {
			n++
		}
	}
	return n
}

// BuiltinLevel is the small meeting script the harness and report CLI run
// when no level file is given.
func BuiltinLevel() *Level {
	return &Level{
		ID:         "standup",
		Title:      "Sprint Standup",
		Difficulty: DifficultyNormal,
		Participants: []Participant{
			{ID: "gus", Name: "Gus", Role: "engineer", IsPlayer: true},
			{ID: "brenda", Name: "Brenda", Role: "manager"},
			{ID: "paul", Name: "Paul", Role: "engineer"},
		},
		Rules: Rules{
			PrecisionWindowMs:        200,
			MaxPossibleFartsByWord:   2,
			MaxSimultaneousLetters:   2,
			PressureRelease:          TierValues{Perfect: 15, Okay: 8, Bad: 4},
			ShameGain:                TierValues{Bad: 6, Terrible: 14},
			GameSpeed:                1,
			PressureBuildupPerSecond: 8,
			CriticalPressure:         75,
		},
		Dialogues: []Dialogue{
			{Speaker: "brenda", Text: "Okay team quick standup today", Kind: KindLine, Safety: SafetyNeutral},
			{Speaker: "paul", Text: "I finished the migration last night", Kind: KindLine, Safety: SafetySafe},
			{Speaker: "brenda", Text: "Any blockers before the demo", Kind: KindQuestion, Safety: SafetyDanger,
				Answers: []Answer{
					{ID: "a", Text: "Nothing on my end", Correct: true},
					{ID: "b", Text: "Everything is a blocker", Correct: false},
				}},
			{Speaker: "gus", Text: "Nothing on my end", Kind: KindAnswer, Safety: SafetySafe},
			{Speaker: "paul", Text: "The staging database is still rebuilding", Kind: KindLine, Safety: SafetyNeutral},
			{Speaker: "brenda", Text: "Great see everyone at the demo", Kind: KindFeedback, Safety: SafetySafe,
				CorrectText: "Great see everyone at the demo"},
		},
	}
}

// synthInterWordGapMs keeps synthesized words inside one speech segment
// (below the pause-split threshold).
const synthInterWordGapMs = 120

// SynthesizeMarks builds a plausible word+viseme mark stream for a line of
// text when real TTS output is unavailable. Deterministic for a given text.
func SynthesizeMarks(text string) []SpeechMark {
	var marks []SpeechMark
	t := 0.0
	byteOff := 0
	for _, w := range strings.Fields(text) {
		clean := cleanWord(w)
		if clean == "" {
			byteOff += len(w) + 1
			continue
		}
		dur := float64(len(clean)) * wordMsPerChar
		marks = append(marks, SpeechMark{
			TimeMs: t, Type: MarkWord, Value: clean,
			Start: byteOff, End: byteOff + len(w),
		})
		step := dur / float64(len(clean))
		for i := 0; i < len(clean); i++ {
			marks = append(marks, SpeechMark{
				TimeMs: t + float64(i)*step,
				Type:   MarkViseme,
				Value:  clean[i : i+1],
			})
		}
		t += dur + synthInterWordGapMs
		byteOff += len(w) + 1
	}
	return marks
}

// cleanWord lowercases a word and strips everything but ASCII letters.
func cleanWord(w string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(w) {
		if r >= 'a' && r <= 'z' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
