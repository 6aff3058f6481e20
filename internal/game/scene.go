package game

import (
	"fmt"
	"image/color"
	"math/rand"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/text"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"golang.org/x/image/font/basicfont"
)

const (
	sceneW = 960
	sceneH = 540

	meterW = 220
	meterH = 16

	timelineX = 40
	timelineY = 420
	timelineW = sceneW - 2*timelineX
	timelineH = 28
)

// letterKeys maps the playable keyboard keys to their fart letters.
var letterKeys = map[ebiten.Key]string{
	ebiten.KeyT: "t",
	ebiten.KeyP: "p",
	ebiten.KeyK: "k",
	ebiten.KeyF: "f",
	ebiten.KeyR: "r",
	ebiten.KeyZ: "z",
}

// simSpeeds are the selectable playback speeds, stepped with , and .
var simSpeeds = []float64{0.25, 0.5, 1, 2, 4}

// Scene is the rendered game: one level played at 60 ticks per second.
// All gameplay decisions live in the pure core; the scene owns input,
// the tick clock, and drawing.
type Scene struct {
	level *Level
	marks MarkSet
	rules Rules
	state State
	rng   *rand.Rand

	// Safe-zone overlays per dialogue, derived once at load.
	zones [][]SafeZone

	simSpeed  float64 // multiplier: 0=paused
	tickAccum float64 // fractional tick accumulator for sub-1x speeds
	tick      int
	prevKeys  map[ebiten.Key]bool

	debugNotice string
}

// NewScene builds a scene for a loaded level. Dialogue with speech marks gets
// derived safe zones; the rest gets synthesized ones from its safety label.
func NewScene(lvl *Level, marks MarkSet, seed int64) *Scene {
	rng := rand.New(rand.NewSource(seed)) // #nosec G404 -- gameplay, not crypto
	rules := lvl.Rules.WithDefaults()

	zones := make([][]SafeZone, len(lvl.Dialogues))
	for i, d := range lvl.Dialogues {
		dur := d.PlayDurationMs()
		if ms, ok := marks[lvl.Key(i)]; ok && len(ms) > 0 {
			zones[i] = DeriveSafeZones(ms, dur, lvl.Difficulty)
		}
		// Word-less marks derive nothing; fall back the same as missing marks.
		if len(zones[i]) == 0 {
			zones[i] = SynthesizeSafeZones(d.Safety, dur)
		}
	}

	return &Scene{
		level:    lvl,
		marks:    marks,
		rules:    rules,
		state:    NewState(GenerateOpportunities(lvl, marks, rng)),
		rng:      rng,
		zones:    zones,
		simSpeed: 1.0,
		prevKeys: make(map[ebiten.Key]bool),
	}
}

func (s *Scene) Update() error {
	// Input every frame regardless of sim speed.
	s.handleInput()

	if s.simSpeed <= 0 {
		return nil
	}
	s.tickAccum += s.simSpeed
	for s.tickAccum >= 1.0 {
		s.tickAccum -= 1.0
		s.simTick()
	}
	return nil
}

// simTick runs one simulation tick at 1x wall clock.
func (s *Scene) simTick() {
	s.tick++
	st := s.state

	st = AdvancePlayback(st, s.level, s.rules, simTickMs)

	opps, cur := ScheduleTick(st.Opportunities, st.DialogueIndex, st.PlaybackMs, s.rules)
	st.Opportunities = opps
	st.CurrentOpportunity = cur

	st, _ = AutoRelease(st, s.rules, s.rng)
	s.state = st
}

func (s *Scene) handleInput() {
	currentKeys := make(map[ebiten.Key]bool)

	for k, letter := range letterKeys {
		currentKeys[k] = ebiten.IsKeyPressed(k)
		if currentKeys[k] && !s.prevKeys[k] {
			s.pressLetter(letter)
		}
	}

	// Space pauses; P is a fart key here.
	currentKeys[ebiten.KeySpace] = ebiten.IsKeyPressed(ebiten.KeySpace)
	if currentKeys[ebiten.KeySpace] && !s.prevKeys[ebiten.KeySpace] {
		if s.simSpeed > 0 {
			s.simSpeed = 0
		} else {
			s.simSpeed = 1
		}
	}
	currentKeys[ebiten.KeyComma] = ebiten.IsKeyPressed(ebiten.KeyComma)
	if currentKeys[ebiten.KeyComma] && !s.prevKeys[ebiten.KeyComma] {
		for i, sp := range simSpeeds {
			if sp >= s.simSpeed && i > 0 {
				s.simSpeed = simSpeeds[i-1]
				break
			}
		}
	}
	currentKeys[ebiten.KeyF1] = ebiten.IsKeyPressed(ebiten.KeyF1)
	if currentKeys[ebiten.KeyF1] && !s.prevKeys[ebiten.KeyF1] {
		s.copyDebugReport()
	}
	currentKeys[ebiten.KeyPeriod] = ebiten.IsKeyPressed(ebiten.KeyPeriod)
	if currentKeys[ebiten.KeyPeriod] && !s.prevKeys[ebiten.KeyPeriod] {
		for i := len(simSpeeds) - 1; i >= 0; i-- {
			if simSpeeds[i] <= s.simSpeed && i < len(simSpeeds)-1 {
				s.simSpeed = simSpeeds[i+1]
				break
			}
		}
	}

	s.prevKeys = currentKeys
}

// pressLetter routes an edge-triggered key through the judge.
func (s *Scene) pressLetter(letter string) {
	st := s.state
	cur := st.CurrentOpportunity
	if cur < 0 || !st.Playing {
		return
	}
	res := Judge(letter, &st.Opportunities[cur], st.PlaybackMs, s.rules.PrecisionWindowMs, s.rules.GameSpeed)
	if res == nil {
		return
	}
	st.Opportunities = MarkPressed(st.Opportunities, cur, st.PlaybackMs, res.Type)
	st.CurrentOpportunity = -1
	s.state = ApplyResult(st, s.rules, *res)
}

func (s *Scene) Draw(screen *ebiten.Image) {
	screen.Fill(color.RGBA{R: 24, G: 24, B: 32, A: 255})

	s.drawMeters(screen)
	s.drawDialogue(screen)
	s.drawTimeline(screen)
	s.drawHUD(screen)
}

func (s *Scene) drawMeters(screen *ebiten.Image) {
	st := s.state

	drawBar := func(x, y float32, frac float64, fill color.RGBA, label string) {
		vector.FillRect(screen, x, y, meterW, meterH, color.RGBA{R: 40, G: 40, B: 50, A: 255}, false)
		vector.FillRect(screen, x, y, float32(frac)*meterW, meterH, fill, false)
		vector.StrokeRect(screen, x, y, meterW, meterH, 1.0, color.RGBA{R: 90, G: 90, B: 110, A: 255}, false)
		ebitenutil.DebugPrintAt(screen, label, int(x), int(y)-16)
	}

	pCol := color.RGBA{R: 90, G: 170, B: 90, A: 255}
	if st.Pressure >= s.rules.CriticalPressure {
		pCol = color.RGBA{R: 210, G: 80, B: 60, A: 255}
	}
	drawBar(40, 40, st.Pressure/meterMax, pCol, fmt.Sprintf("pressure %.0f", st.Pressure))
	drawBar(40, 84, st.Shame/meterMax, color.RGBA{R: 180, G: 90, B: 180, A: 255},
		fmt.Sprintf("shame %.0f", st.Shame))
}

func (s *Scene) drawDialogue(screen *ebiten.Image) {
	st := s.state
	if st.DialogueIndex >= len(s.level.Dialogues) {
		return
	}
	d := s.level.Dialogues[st.DialogueIndex]
	name := d.Speaker
	for _, p := range s.level.Participants {
		if p.ID == d.Speaker {
			name = p.Name
			break
		}
	}
	ebitenutil.DebugPrintAt(screen, fmt.Sprintf("%s:", name), 40, 180)
	ebitenutil.DebugPrintAt(screen, d.Text, 40, 196)
}

// drawTimeline renders the current dialogue's safe zones, the playback
// cursor, and the active opportunity letters.
func (s *Scene) drawTimeline(screen *ebiten.Image) {
	st := s.state
	if st.DialogueIndex >= len(s.level.Dialogues) {
		return
	}
	d := s.level.Dialogues[st.DialogueIndex]
	dur := d.PlayDurationMs() / s.rules.GameSpeed
	if dur <= 0 {
		return
	}
	toX := func(ms float64) float32 {
		frac := ms / dur
		if frac < 0 {
			frac = 0
		}
		if frac > 1 {
			frac = 1
		}
		return timelineX + float32(frac)*timelineW
	}

	vector.FillRect(screen, timelineX, timelineY, timelineW, timelineH,
		color.RGBA{R: 36, G: 36, B: 46, A: 255}, false)

	for _, z := range s.zones[st.DialogueIndex] {
		x0 := toX(z.StartMs / s.rules.GameSpeed)
		x1 := toX(z.EndMs / s.rules.GameSpeed)
		alpha := uint8(80 + 120*z.Confidence)
		vector.FillRect(screen, x0, timelineY, x1-x0, timelineH,
			color.RGBA{R: 60, G: 140, B: 70, A: alpha}, false)
	}

	face := basicfont.Face7x13
	for _, o := range st.Opportunities {
		if o.DialogueIndex != st.DialogueIndex || !o.Active || o.Handled {
			continue
		}
		x := toX(o.TimeMs / s.rules.GameSpeed)
		vector.FillCircle(screen, x, timelineY-14, 9, color.RGBA{R: 220, G: 190, B: 60, A: 255}, false)
		text.Draw(screen, o.Type.Letter(), face, int(x)-3, timelineY-10, color.Black)
	}

	cursor := toX(st.PlaybackMs)
	vector.StrokeLine(screen, cursor, timelineY-4, cursor, timelineY+timelineH+4, 2.0,
		color.RGBA{R: 230, G: 230, B: 230, A: 255}, false)

	vector.StrokeRect(screen, timelineX, timelineY, timelineW, timelineH, 1.0,
		color.RGBA{R: 90, G: 90, B: 110, A: 255}, false)
}

func (s *Scene) drawHUD(screen *ebiten.Image) {
	st := s.state
	ebitenutil.DebugPrintAt(screen,
		fmt.Sprintf("score: %d  combo: %d  dialogue: %d/%d  speed: %.2fx",
			st.Score, st.Combo, min(st.DialogueIndex+1, len(s.level.Dialogues)), len(s.level.Dialogues), s.simSpeed),
		40, sceneH-40)

	if st.LastResult != nil {
		ebitenutil.DebugPrintAt(screen,
			fmt.Sprintf("last: %s (%s)", st.LastResult.Type, st.LastResult.FartType.Letter()),
			40, sceneH-24)
	}

	if s.debugNotice != "" {
		ebitenutil.DebugPrintAt(screen, s.debugNotice, sceneW-200, sceneH-24)
	}

	if st.GameOver {
		msg := "CAUGHT. Press Space to stare at your shame."
		if st.Victory {
			msg = "MEETING SURVIVED."
		}
		ebitenutil.DebugPrintAt(screen, msg, sceneW/2-120, sceneH/2)
	}
}

func (s *Scene) Layout(outsideWidth, outsideHeight int) (int, int) {
	return sceneW, sceneH
}
