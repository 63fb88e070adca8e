// Package levelgen builds holes from a session seed. The same seed and index
// always produce the same level, which is what lets a session resume from a
// snapshot that only stores level indices.
package levelgen

import (
	"context"
	"fmt"
	"hash/fnv"
	"math/rand/v2"

	"github.com/playmatatu/gravityputt/internal/game"
)

const (
	startSize       = 60
	goalRadius      = 24
	goalFieldFactor = 6
	minPlanetRadius = 30
	maxPlanetRadius = 70
	planetFieldMul  = 3
	maxPlanets      = 5
	placeAttempts   = 64
)

// Generator is a deterministic game.LevelFactory.
type Generator struct {
	seed   uint64
	tuning game.Tuning
}

func New(seed uint64, tuning game.Tuning) *Generator {
	return &Generator{seed: seed, tuning: tuning}
}

// Generate lays out hole index: tee on the left, goal on the right, planets
// between them. It is safe to call from several goroutines.
func (g *Generator) Generate(ctx context.Context, size game.Vec2, index int) (*game.Level, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if size.X <= 0 || size.Y <= 0 {
		return nil, fmt.Errorf("level %d: invalid size %.0fx%.0f", index, size.X, size.Y)
	}
	rng := rand.New(rand.NewPCG(g.seed, uint64(index)))

	start := game.Rect{
		Origin: game.NewVec2(size.X*0.05, between(rng, size.Y*0.3, size.Y*0.7)-startSize/2),
		Size:   game.NewVec2(startSize, startSize),
	}
	goal := game.Circle{
		Center: game.NewVec2(size.X*0.88, between(rng, size.Y*0.25, size.Y*0.75)),
		Radius: goalRadius,
	}

	level := &game.Level{
		Index: index,
		Size:  size,
		Start: start,
		Goal:  goal,
		GoalSource: &game.GravitySource{
			ID:             game.GoalSourceID(index),
			Radius:         goal.Radius * goalFieldFactor,
			Strength:       g.tuning.GoalFieldStr,
			DesignStrength: g.tuning.GoalFieldStr,
		},
	}

	want := PlanetCount(index)
	for attempt := 0; attempt < placeAttempts && len(level.Planets) < want; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		r := between(rng, minPlanetRadius, maxPlanetRadius)
		body := game.Circle{
			Center: game.NewVec2(between(rng, size.X*0.25, size.X*0.75), between(rng, r, size.Y-r)),
			Radius: r,
		}
		if !fits(body, level) {
			continue
		}
		strength := g.tuning.PlanetFieldStr * r / 50
		level.Planets = append(level.Planets, game.Planet{
			Local: body,
			Source: &game.GravitySource{
				ID:             game.PlanetSourceID(index, len(level.Planets)),
				Radius:         r * planetFieldMul,
				Strength:       strength,
				DesignStrength: strength,
			},
		})
	}
	level.Place(game.Vec2{})
	return level, nil
}

// PlanetCount grows by one every three holes, capped.
func PlanetCount(index int) int {
	return min(1+index/3, maxPlanets)
}

// fits rejects planets that would cover the tee, crowd the goal or overlap
// another planet.
func fits(body game.Circle, l *game.Level) bool {
	if body.Center.DistanceTo(l.Start.Center()) < body.Radius+startSize*1.5 {
		return false
	}
	if body.Center.DistanceTo(l.Goal.Center) < body.Radius+l.Goal.Radius*3 {
		return false
	}
	for _, p := range l.Planets {
		if body.Center.DistanceTo(p.Local.Center) < body.Radius+p.Local.Radius+2*startSize {
			return false
		}
	}
	return true
}

func between(rng *rand.Rand, lo, hi float64) float64 {
	return lo + rng.Float64()*(hi-lo)
}

// Seed derives a session seed from a session id, for sessions created without
// an explicit seed.
func Seed(sessionID string) uint64 {
	h := fnv.New64a()
	h.Write([]byte(sessionID))
	return h.Sum64()
}

var _ game.LevelFactory = (*Generator)(nil)
