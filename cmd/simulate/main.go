// Command simulate plays gravity putt headless with a naive bot, which is
// handy for balancing tuning files and checking level generation.
package main

import (
	"context"
	"flag"
	"math/rand/v2"
	"os"
	"time"

	"github.com/playmatatu/gravityputt/internal/config"
	"github.com/playmatatu/gravityputt/internal/game"
	"github.com/playmatatu/gravityputt/internal/levelgen"
	"github.com/playmatatu/gravityputt/internal/observability"
	"github.com/playmatatu/gravityputt/internal/physics"
)

func main() {
	holes := flag.Int("holes", 9, "holes to play")
	seed := flag.Uint64("seed", 1, "level seed")
	tuningFile := flag.String("tuning", "", "optional TOML tuning overlay")
	maxTicks := flag.Int("max-ticks", 60*60*5, "give up after this many ticks")
	level := flag.String("log-level", "info", "log level")
	flag.Parse()

	logger := observability.InitLogger("gravityputt-simulate", "development", *level)

	tuning, err := config.LoadTuning(*tuningFile, 60)
	if err != nil {
		logger.Fatal().Err(err).Msg("invalid tuning")
	}

	scene, err := game.NewScene(game.SceneConfig{
		Tuning:    tuning,
		SessionID: "simulation",
		Seed:      *seed,
		Factory:   levelgen.New(*seed, tuning),
		Engine:    physics.New(tuning),
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to build scene")
	}
	defer scene.Close()

	scene.OnHoleComplete = func(res game.HoleResult) {
		logger.Info().
			Int("hole", res.Hole).
			Int("strokes", res.Strokes).
			Dur("duration", res.Duration).
			Int("recoveries", res.Stats.Recoveries).
			Msg("hole completed")
	}

	if err := scene.Start(context.Background()); err != nil {
		logger.Fatal().Err(err).Msg("failed to start")
	}

	bot := &bot{rng: rand.New(rand.NewPCG(*seed, 0x5eed)), tuning: tuning}
	for tick := 0; tick < *maxTicks && scene.Stats.HoleNumber <= *holes; tick++ {
		bot.play(scene)
		if scene.Window.Pending() {
			// Ticks run faster than real time; give the generator room.
			time.Sleep(time.Millisecond)
		}
		if err := scene.Tick(); err != nil {
			logger.Error().Err(err).Int("tick", tick).Msg("scene halted")
			os.Exit(1)
		}
	}

	stats := scene.Stats
	logger.Info().
		Int("holes_completed", stats.HoleNumber-1).
		Int("total_strokes", stats.TotalStrokes).
		Int("recoveries", stats.Recoveries).
		Int("ticks", scene.TickCount()).
		Msg("simulation finished")
}

// bot putts straight at the goal whenever the ball is ready and settled.
type bot struct {
	rng    *rand.Rand
	tuning game.Tuning
}

func (b *bot) play(s *game.Scene) {
	ball := s.Ball
	if !ball.Ready || ball.Speed() > b.tuning.RestSpeed {
		return
	}
	goal := s.Window.Current().GoalCenter()
	dir := goal.Minus(ball.Position)
	if dir.Magnitude() == 0 {
		return
	}

	// Pull distance maps to impulse through the divisor; aim a little short
	// or long at random so stuck layouts get different attempts.
	pull := dir.Magnitude() * (0.6 + 0.8*b.rng.Float64())
	anchor := ball.Position
	release := anchor.Minus(dir.Normalize().Times(pull))

	s.BeginAim(anchor)
	s.UpdateAim(release)
	s.ReleaseAim(release)
}
