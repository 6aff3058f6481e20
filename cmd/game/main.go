package main

import (
	"flag"
	"log"
	"time"

	"github.com/hajimehoshi/ebiten/v2"

	"gaslighted/internal/game"
	"gaslighted/internal/level"
)

func main() {
	var levelPath string
	var marksDir string
	var seed int64

	flag.StringVar(&levelPath, "level", "", "level YAML file (builtin standup level when empty)")
	flag.StringVar(&marksDir, "marks", "", "directory of per-dialogue speech mark JSON files")
	flag.Int64Var(&seed, "seed", 0, "RNG seed (0 = time-based)")
	flag.Parse()

	lvl := game.BuiltinLevel()
	marks := game.MarkSet{}
	if levelPath != "" {
		var err error
		lvl, err = level.Load(levelPath)
		if err != nil {
			log.Fatal(err)
		}
		if marksDir != "" {
			marks, err = level.LoadMarkSet(marksDir, lvl)
			if err != nil {
				log.Fatal(err)
			}
		}
	} else {
		for i, d := range lvl.Dialogues {
			if d.Speaker != "" {
				marks[lvl.Key(i)] = game.SynthesizeMarks(d.Text)
			}
		}
	}

	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	ebiten.SetWindowTitle("Gaslighted — " + lvl.Title)
	ebiten.SetWindowSize(960, 540)
	if err := ebiten.RunGame(game.NewScene(lvl, marks, seed)); err != nil {
		log.Fatal(err)
	}
}
