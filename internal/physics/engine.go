package physics

import (
	"math"

	"github.com/playmatatu/gravityputt/internal/game"
)

const (
	// DefaultFieldScale converts field strength to velocity change per tick.
	DefaultFieldScale = 0.02
	// DefaultRestitution is the share of normal speed kept after a bounce.
	DefaultRestitution = 0.35
	// restingNormalSpeed is the inbound speed below which a touch does not
	// bounce; the ball just sits on the surface.
	restingNormalSpeed = 0.5
	// maxSubstep bounds the distance travelled per substep as a fraction of
	// the ball radius so the ball cannot tunnel through a planet.
	maxSubstep = 0.5
)

// Engine integrates the ball under radial gravity fields and resolves planet
// collisions. It implements game.Engine and keeps the contact set between
// steps so it can report begin and end events.
type Engine struct {
	tuning      game.Tuning
	FieldScale  float64
	Restitution float64

	contacts []game.SourceID
}

func New(tuning game.Tuning) *Engine {
	return &Engine{
		tuning:      tuning,
		FieldScale:  DefaultFieldScale,
		Restitution: DefaultRestitution,
	}
}

// Step runs one tick. While the ball is not interacting it coasts without
// fields or collisions and every open contact ends.
func (e *Engine) Step(ball *game.Ball, sources []*game.GravitySource, planets []game.Planet) []game.ContactEvent {
	if ball.Interacting {
		ball.Velocity = ball.Velocity.Plus(e.Acceleration(ball.Position, sources))
	}

	speed := ball.Speed()
	steps := 1
	if limit := ball.Radius * maxSubstep; speed > limit && limit > 0 {
		steps = int(math.Ceil(speed / limit))
	}
	delta := ball.Velocity.Times(1 / float64(steps))
	for i := 0; i < steps; i++ {
		ball.Position = ball.Position.Plus(delta)
		if ball.Interacting && e.collide(ball, planets) {
			delta = ball.Velocity.Times(1 / float64(steps))
		}
	}

	var touching []game.SourceID
	if ball.Interacting {
		touching = e.touching(ball, planets)
	}
	return e.diff(touching)
}

// Acceleration sums the enabled fields covering p. When any covering field is
// exclusive only exclusive fields apply.
func (e *Engine) Acceleration(p game.Vec2, sources []*game.GravitySource) game.Vec2 {
	var all, exclusive game.Vec2
	hasExclusive := false
	for _, s := range sources {
		if s == nil || !s.Enabled {
			continue
		}
		toward := s.Center.Minus(p)
		d := toward.Magnitude()
		if d > s.Radius || d == 0 {
			continue
		}
		pull := toward.Times(s.Strength * e.FieldScale / d)
		all = all.Plus(pull)
		if s.Exclusive {
			exclusive = exclusive.Plus(pull)
			hasExclusive = true
		}
	}
	if hasExclusive {
		return exclusive
	}
	return all
}

// collide pushes the ball out of any planet it overlaps and reflects the
// inbound part of its velocity. It reports whether velocity changed.
func (e *Engine) collide(ball *game.Ball, planets []game.Planet) bool {
	hit := false
	for _, p := range planets {
		away := ball.Position.Minus(p.Body.Center)
		d := away.Magnitude()
		minDist := p.Body.Radius + ball.Radius
		if d >= minDist {
			continue
		}
		normal := game.Vec2{X: 0, Y: 1}
		if d > 0 {
			normal = away.Times(1 / d)
		}
		ball.Position = p.Body.Center.Plus(normal.Times(minDist))

		vn := ball.Velocity.Dot(normal)
		if vn >= 0 {
			continue
		}
		tangent := ball.Velocity.Minus(normal.Times(vn))
		bounce := -vn * e.Restitution
		if -vn < restingNormalSpeed {
			bounce = 0
		}
		ball.Velocity = tangent.Plus(normal.Times(bounce))
		hit = true
	}
	return hit
}

// touching lists planets whose surface is within the contact tolerance of the
// ball, in planet order.
func (e *Engine) touching(ball *game.Ball, planets []game.Planet) []game.SourceID {
	var out []game.SourceID
	for _, p := range planets {
		if p.Source == nil {
			continue
		}
		gap := ball.Position.DistanceTo(p.Body.Center) - p.Body.Radius - ball.Radius
		if gap <= e.tuning.ContactTolerance {
			out = append(out, p.Source.ID)
		}
	}
	return out
}

func (e *Engine) diff(touching []game.SourceID) []game.ContactEvent {
	var events []game.ContactEvent
	for _, id := range e.contacts {
		if !contains(touching, id) {
			events = append(events, game.ContactEvent{Source: id, Begin: false})
		}
	}
	for _, id := range touching {
		if !contains(e.contacts, id) {
			events = append(events, game.ContactEvent{Source: id, Begin: true})
		}
	}
	e.contacts = append(e.contacts[:0], touching...)
	return events
}

// Contacts returns the contact set as of the last step.
func (e *Engine) Contacts() []game.SourceID {
	return append([]game.SourceID(nil), e.contacts...)
}

func contains(ids []game.SourceID, id game.SourceID) bool {
	for _, c := range ids {
		if c == id {
			return true
		}
	}
	return false
}
