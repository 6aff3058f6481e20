// Package level loads meeting scripts and their TTS speech marks from disk.
package level

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"gaslighted/internal/game"
)

// File-shape structs, kept separate from the runtime types so the YAML layout
// can evolve without touching gameplay code.

type levelFile struct {
	ID           string            `yaml:"id"`
	Title        string            `yaml:"title"`
	Difficulty   int               `yaml:"difficulty"`
	Participants []participantFile `yaml:"participants"`
	Rules        rulesFile         `yaml:"rules"`
	Dialogues    []dialogueFile    `yaml:"dialogues"`
}

type participantFile struct {
	ID     string `yaml:"id"`
	Name   string `yaml:"name"`
	Role   string `yaml:"role"`
	Player bool   `yaml:"player"`
}

type rulesFile struct {
	PrecisionWindowMs        float64  `yaml:"precision_window_ms"`
	MaxPossibleFartsByWord   int      `yaml:"max_possible_farts_by_word"`
	MaxSimultaneousLetters   int      `yaml:"max_simultaneous_letters"`
	PressureRelease          tierFile `yaml:"pressure_release"`
	ShameGain                tierFile `yaml:"shame_gain"`
	GameSpeed                float64  `yaml:"game_speed"`
	PressureBuildupPerSecond float64  `yaml:"pressure_buildup_per_second"`
	CriticalPressure         float64  `yaml:"critical_pressure"`
}

type tierFile struct {
	Perfect  float64 `yaml:"perfect"`
	Okay     float64 `yaml:"okay"`
	Bad      float64 `yaml:"bad"`
	Terrible float64 `yaml:"terrible"`
}

type dialogueFile struct {
	Speaker       string       `yaml:"speaker"`
	Text          string       `yaml:"text"`
	Kind          string       `yaml:"kind"`
	DurationMs    float64      `yaml:"duration_ms"`
	Safety        string       `yaml:"safety"`
	Answers       []answerFile `yaml:"answers"`
	CorrectText   string       `yaml:"correct_text"`
	IncorrectText string       `yaml:"incorrect_text"`
}

type answerFile struct {
	ID      string `yaml:"id"`
	Text    string `yaml:"text"`
	Correct bool   `yaml:"correct"`
}

// Load reads and validates a level script from a YAML file.
func Load(path string) (*game.Level, error) {
	data, err := os.ReadFile(path) // #nosec G302 G304 -- operator-supplied path
	if err != nil {
		return nil, fmt.Errorf("reading level file: %w", err)
	}
	var lf levelFile
	if err := yaml.Unmarshal(data, &lf); err != nil {
		return nil, fmt.Errorf("parsing level file %s: %w", path, err)
	}
	lvl, err := lf.toLevel()
	if err != nil {
		return nil, fmt.Errorf("level file %s: %w", path, err)
	}
	if err := lvl.Validate(); err != nil {
		return nil, fmt.Errorf("level file %s: %w", path, err)
	}
	return lvl, nil
}

func (lf levelFile) toLevel() (*game.Level, error) {
	lvl := &game.Level{
		ID:         lf.ID,
		Title:      lf.Title,
		Difficulty: game.Difficulty(lf.Difficulty),
		Rules: game.Rules{
			PrecisionWindowMs:        lf.Rules.PrecisionWindowMs,
			MaxPossibleFartsByWord:   lf.Rules.MaxPossibleFartsByWord,
			MaxSimultaneousLetters:   lf.Rules.MaxSimultaneousLetters,
			PressureRelease:          lf.Rules.PressureRelease.toTier(),
			ShameGain:                lf.Rules.ShameGain.toTier(),
			GameSpeed:                lf.Rules.GameSpeed,
			PressureBuildupPerSecond: lf.Rules.PressureBuildupPerSecond,
			CriticalPressure:         lf.Rules.CriticalPressure,
		},
	}
	for _, p := range lf.Participants {
		lvl.Participants = append(lvl.Participants, game.Participant{
			ID:       p.ID,
			Name:     p.Name,
			Role:     p.Role,
			IsPlayer: p.Player,
		})
	}
	for i, d := range lf.Dialogues {
		kind, err := game.ParseDialogueKind(d.Kind)
		if err != nil {
			return nil, fmt.Errorf("dialogue %d: %w", i, err)
		}
		safety, err := game.ParseSafetyStatus(d.Safety)
		if err != nil {
			return nil, fmt.Errorf("dialogue %d: %w", i, err)
		}
		dlg := game.Dialogue{
			Speaker:       d.Speaker,
			Text:          d.Text,
			Kind:          kind,
			DurationMs:    d.DurationMs,
			Safety:        safety,
			CorrectText:   d.CorrectText,
			IncorrectText: d.IncorrectText,
		}
		for _, a := range d.Answers {
			dlg.Answers = append(dlg.Answers, game.Answer{ID: a.ID, Text: a.Text, Correct: a.Correct})
		}
		lvl.Dialogues = append(lvl.Dialogues, dlg)
	}
	return lvl, nil
}

func (t tierFile) toTier() game.TierValues {
	return game.TierValues{Perfect: t.Perfect, Okay: t.Okay, Bad: t.Bad, Terrible: t.Terrible}
}

// LoadSpeechMarks reads one utterance's speech marks. Both shapes emitted by
// TTS tooling are accepted: a JSON array, or one JSON object per line as
// Amazon Polly streams them.
func LoadSpeechMarks(path string) ([]game.SpeechMark, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- operator-supplied path
	if err != nil {
		return nil, fmt.Errorf("reading speech marks: %w", err)
	}
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, nil
	}
	if trimmed[0] == '[' {
		var marks []game.SpeechMark
		if err := json.Unmarshal(trimmed, &marks); err != nil {
			return nil, fmt.Errorf("parsing speech marks %s: %w", path, err)
		}
		return marks, nil
	}
	var marks []game.SpeechMark
	dec := json.NewDecoder(bytes.NewReader(trimmed))
	for {
		var m game.SpeechMark
		if err := dec.Decode(&m); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("parsing speech marks %s: %w", path, err)
		}
		marks = append(marks, m)
	}
	return marks, nil
}

// LoadMarkSet scans dir for per-dialogue speech mark files named
//
//	<levelID>_<index>_<speakerID>_<kind>.json
//	<levelID>_<index>_<speakerID>.json
//
// and returns whatever it finds. A dialogue without a file simply has no
// marks — the generator falls back to synthetic timings where the dialogue
// kind allows it. Unparseable files are reported.
func LoadMarkSet(dir string, lvl *game.Level) (game.MarkSet, error) {
	marks := game.MarkSet{}
	for i, d := range lvl.Dialogues {
		if d.Speaker == "" {
			continue
		}
		key := lvl.Key(i)
		candidates := []string{
			fmt.Sprintf("%s_%d_%s_%s.json", lvl.ID, i, d.Speaker, d.Kind),
			fmt.Sprintf("%s_%d_%s.json", lvl.ID, i, d.Speaker),
		}
		for _, name := range candidates {
			path := filepath.Join(dir, name)
			if _, err := os.Stat(path); err != nil {
				continue
			}
			ms, err := LoadSpeechMarks(path)
			if err != nil {
				return nil, err
			}
			marks[key] = ms
			break
		}
	}
	return marks, nil
}
