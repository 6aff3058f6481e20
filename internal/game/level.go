package game

import (
	"errors"
	"fmt"
)

// DialogueKind discriminates the playable variants of a script entry.
type DialogueKind int

const (
	KindLine     DialogueKind = iota // plain spoken line
	KindQuestion                     // a question put to the player, with answer options
	KindAnswer                       // the player's selected answer, spoken aloud
	KindFeedback                     // reaction to the chosen answer
	KindAside                        // off-script interjection
)

func (k DialogueKind) String() string {
	switch k {
	case KindLine:
		return "line"
	case KindQuestion:
		return "question"
	case KindAnswer:
		return "answer"
	case KindFeedback:
		return "feedback"
	case KindAside:
		return "aside"
	default:
		return "unknown"
	}
}

// ParseDialogueKind resolves a kind label from level content.
func ParseDialogueKind(s string) (DialogueKind, error) {
	switch s {
	case "line", "":
		return KindLine, nil
	case "question":
		return KindQuestion, nil
	case "answer":
		return KindAnswer, nil
	case "feedback":
		return KindFeedback, nil
	case "aside":
		return KindAside, nil
	default:
		return 0, fmt.Errorf("unknown dialogue kind %q", s)
	}
}

// PlayableWithoutMarks reports whether this dialogue kind should still produce
// opportunities when its speech marks are missing. Selected answers, feedback,
// and asides are synthesized at runtime and often ship without mark files.
func (k DialogueKind) PlayableWithoutMarks() bool {
	switch k {
	case KindAnswer, KindFeedback, KindAside:
		return true
	default:
		return false
	}
}

// SafetyStatus is the coarse hand-authored risk label on a dialogue line,
// used only when speech-mark derivation yields nothing.
type SafetyStatus int

const (
	SafetyNeutral SafetyStatus = iota
	SafetySafe
	SafetyDanger
)

func (s SafetyStatus) String() string {
	switch s {
	case SafetySafe:
		return "safe"
	case SafetyDanger:
		return "danger"
	default:
		return "neutral"
	}
}

// ParseSafetyStatus resolves a safety label from level content.
func ParseSafetyStatus(s string) (SafetyStatus, error) {
	switch s {
	case "neutral", "":
		return SafetyNeutral, nil
	case "safe":
		return SafetySafe, nil
	case "danger":
		return SafetyDanger, nil
	default:
		return 0, fmt.Errorf("unknown safety status %q", s)
	}
}

// Participant is one character in the meeting.
type Participant struct {
	ID       string
	Name     string
	Role     string
	IsPlayer bool
}

// Answer is one selectable option on a question dialogue.
type Answer struct {
	ID      string
	Text    string
	Correct bool
}

// Dialogue is one entry of a level's script.
type Dialogue struct {
	Speaker    string // participant ID; empty for stage directions
	Text       string
	Kind       DialogueKind
	DurationMs float64
	Safety     SafetyStatus

	// Question entries only.
	Answers []Answer

	// Feedback entries only.
	CorrectText   string
	IncorrectText string
}

// PlayDurationMs returns the authored duration, estimating from text length
// when the level omits it.
func (d Dialogue) PlayDurationMs() float64 {
	if d.DurationMs > 0 {
		return d.DurationMs
	}
	return float64(len(d.Text))*wordMsPerChar + 500
}

// TierValues holds a per-accuracy-tier rule value. A zero Terrible means
// "derive from Bad" in the resolver.
type TierValues struct {
	Perfect  float64
	Okay     float64
	Bad      float64
	Terrible float64
}

// Rules is the per-level gameplay configuration. Consumed, never mutated.
type Rules struct {
	PrecisionWindowMs        float64
	MaxPossibleFartsByWord   int
	MaxSimultaneousLetters   int
	PressureRelease          TierValues
	ShameGain                TierValues
	GameSpeed                float64
	PressureBuildupPerSecond float64
	CriticalPressure         float64
}

// Defaults applied when a level leaves a rule unset.
const (
	defaultPrecisionWindowMs = 200.0
	defaultMaxFartsByWord    = 2
	defaultMaxSimultaneous   = 1
	defaultPressureBuildup   = 5.0
	defaultCriticalPressure  = 80.0
	defaultGameSpeed         = 1.0
)

// WithDefaults fills unset rule fields so the core never divides by zero or
// schedules against an empty window.
func (r Rules) WithDefaults() Rules {
	if r.PrecisionWindowMs <= 0 {
		r.PrecisionWindowMs = defaultPrecisionWindowMs
	}
	if r.MaxPossibleFartsByWord <= 0 {
		r.MaxPossibleFartsByWord = defaultMaxFartsByWord
	}
	if r.MaxSimultaneousLetters <= 0 {
		r.MaxSimultaneousLetters = defaultMaxSimultaneous
	}
	if r.GameSpeed <= 0 {
		r.GameSpeed = defaultGameSpeed
	}
	if r.PressureBuildupPerSecond <= 0 {
		r.PressureBuildupPerSecond = defaultPressureBuildup
	}
	if r.CriticalPressure <= 0 {
		r.CriticalPressure = defaultCriticalPressure
	}
	return r
}

// Level is a full meeting script plus its rules and cast.
type Level struct {
	ID           string
	Title        string
	Difficulty   Difficulty
	Participants []Participant
	Rules        Rules
	Dialogues    []Dialogue
}

// Player returns the participant flagged as the player.
func (l *Level) Player() (Participant, bool) {
	for _, p := range l.Participants {
		if p.IsPlayer {
			return p, true
		}
	}
	return Participant{}, false
}

// Validate reports the fatal misconfigurations a level can carry. Missing
// speech marks are not among them — those degrade at runtime.
func (l *Level) Validate() error {
	if l.ID == "" {
		return errors.New("level has no id")
	}
	if len(l.Dialogues) == 0 {
		return fmt.Errorf("level %s has no dialogues", l.ID)
	}
	if _, ok := l.Player(); !ok {
		return fmt.Errorf("level %s has no player participant", l.ID)
	}
	ids := make(map[string]bool, len(l.Participants))
	for _, p := range l.Participants {
		ids[p.ID] = true
	}
	for i, d := range l.Dialogues {
		if d.Speaker != "" && !ids[d.Speaker] {
			return fmt.Errorf("level %s dialogue %d: unknown speaker %q", l.ID, i, d.Speaker)
		}
	}
	return nil
}

// UtteranceKey identifies the speech-mark array for one spoken dialogue.
type UtteranceKey struct {
	LevelID       string
	DialogueIndex int
	SpeakerID     string
	Kind          DialogueKind
}

// MarkSet maps utterances to their pre-loaded speech marks. Loading and
// caching happen externally, before gameplay reaches the utterance.
type MarkSet map[UtteranceKey][]SpeechMark

// Key builds the utterance key for dialogue index i of a level.
func (l *Level) Key(i int) UtteranceKey {
	return UtteranceKey{
		LevelID:       l.ID,
		DialogueIndex: i,
		SpeakerID:     l.Dialogues[i].Speaker,
		Kind:          l.Dialogues[i].Kind,
	}
}
