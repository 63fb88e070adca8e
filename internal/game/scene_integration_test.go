package game_test

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/playmatatu/gravityputt/internal/game"
	"github.com/playmatatu/gravityputt/internal/levelgen"
	"github.com/playmatatu/gravityputt/internal/physics"
)

// TestBotRunKeepsInvariants plays a real session with the gravity engine and
// generator, aiming straight at each goal, and checks the window and
// exclusivity invariants every tick.
func TestBotRunKeepsInvariants(t *testing.T) {
	tuning := game.DefaultTuning()
	scene, err := game.NewScene(game.SceneConfig{
		Tuning:  tuning,
		Seed:    2024,
		Factory: levelgen.New(2024, tuning),
		Engine:  physics.New(tuning),
	})
	if err != nil {
		t.Fatalf("NewScene failed: %v", err)
	}
	defer scene.Close()
	if err := scene.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	for tick := 0; tick < 20000 && scene.Stats.HoleNumber < 4; tick++ {
		if scene.Ball.Ready && !scene.Window.Pending() {
			aim := scene.Window.Current().GoalCenter().Minus(scene.Ball.Position)
			scene.BeginAim(game.Vec2{})
			scene.ReleaseAim(aim.Normalize().Times(-math.Min(aim.Magnitude()*2, 600)))
		}
		if err := scene.Tick(); err != nil {
			t.Fatalf("Tick %d failed: %v", tick, err)
		}
		if n := scene.Arbiter.ExclusiveCount(); n > 1 {
			t.Fatalf("Tick %d: %d exclusive sources", tick, n)
		}
		if n := scene.Window.Len(); n < 2 || n > 3 {
			t.Fatalf("Tick %d: window length %d", tick, n)
		}
		levels := scene.Window.Levels()
		for i := 0; i+1 < len(levels); i++ {
			if d := levels[i].GoalCenter().DistanceTo(levels[i+1].StartCenter()); d > 1e-9 {
				t.Fatalf("Tick %d: levels %d and %d are %.3g apart", tick, levels[i].Index, levels[i+1].Index, d)
			}
		}
		if scene.Window.Pending() {
			// Give the generator goroutine a chance before the next hole.
			time.Sleep(time.Millisecond)
		}
	}
	if scene.Stats.HoleNumber < 2 {
		t.Fatalf("Bot never completed a hole in %d ticks", scene.TickCount())
	}
}
