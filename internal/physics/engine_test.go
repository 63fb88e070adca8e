package physics

import (
	"math"
	"testing"

	"github.com/playmatatu/gravityputt/internal/game"
)

// Helper to create a planet with its field at (x, y).
func newPlanet(id string, x, y, r, fieldR, strength float64) game.Planet {
	c := game.Circle{Center: game.NewVec2(x, y), Radius: r}
	return game.Planet{
		Local: c,
		Body:  c,
		Source: &game.GravitySource{
			ID:             game.SourceID(id),
			Center:         c.Center,
			Radius:         fieldR,
			Strength:       strength,
			DesignStrength: strength,
			Enabled:        true,
		},
	}
}

func newBall(x, y float64) *game.Ball {
	b := game.NewBall(10)
	b.Position = game.NewVec2(x, y)
	b.Interacting = true
	return b
}

func TestFieldPullsOnlyWithinRadius(t *testing.T) {
	engine := New(game.DefaultTuning())
	p := newPlanet("a", 0, 0, 50, 200, 2.5)

	inside := engine.Acceleration(game.NewVec2(150, 0), []*game.GravitySource{p.Source})
	if inside.X >= 0 {
		t.Errorf("Expected pull toward planet, got %+v", inside)
	}

	outside := engine.Acceleration(game.NewVec2(250, 0), []*game.GravitySource{p.Source})
	if !outside.IsZero() {
		t.Errorf("Expected no pull outside field radius, got %+v", outside)
	}
}

func TestDisabledFieldIgnored(t *testing.T) {
	engine := New(game.DefaultTuning())
	p := newPlanet("a", 0, 0, 50, 200, 2.5)
	p.Source.Enabled = false

	acc := engine.Acceleration(game.NewVec2(100, 0), []*game.GravitySource{p.Source})
	if !acc.IsZero() {
		t.Errorf("Disabled field applied acceleration %+v", acc)
	}
}

func TestExclusiveFieldOverridesOthers(t *testing.T) {
	engine := New(game.DefaultTuning())
	left := newPlanet("left", -100, 0, 20, 300, 2.5)
	right := newPlanet("right", 100, 0, 20, 300, 2.5)
	right.Source.Exclusive = true

	acc := engine.Acceleration(game.NewVec2(0, 0), []*game.GravitySource{left.Source, right.Source})
	want := 2.5 * engine.FieldScale
	if math.Abs(acc.X-want) > 1e-9 || acc.Y != 0 {
		t.Errorf("Expected only exclusive pull (%.4f, 0), got %+v", want, acc)
	}
}

func TestBallDoesNotTunnelThroughPlanet(t *testing.T) {
	engine := New(game.DefaultTuning())
	p := newPlanet("a", 100, 0, 30, 0, 0)
	ball := newBall(0, 0)
	ball.Velocity = game.NewVec2(80, 0)

	engine.Step(ball, nil, []game.Planet{p})

	if ball.Position.X > 100 {
		t.Errorf("Ball passed through planet: x=%.2f", ball.Position.X)
	}
	if ball.Velocity.X >= 0 {
		t.Errorf("Ball should bounce back, velocity=%+v", ball.Velocity)
	}
}

func TestContactBeginAndEnd(t *testing.T) {
	engine := New(game.DefaultTuning())
	p := newPlanet("a", 0, 0, 50, 0, 0)
	ball := newBall(0, 60)

	events := engine.Step(ball, nil, []game.Planet{p})
	if len(events) != 1 || !events[0].Begin || events[0].Source != "a" {
		t.Fatalf("Expected one begin event, got %+v", events)
	}

	events = engine.Step(ball, nil, []game.Planet{p})
	if len(events) != 0 {
		t.Errorf("Expected no events while contact persists, got %+v", events)
	}

	ball.Position = game.NewVec2(0, 200)
	events = engine.Step(ball, nil, []game.Planet{p})
	if len(events) != 1 || events[0].Begin {
		t.Errorf("Expected one end event, got %+v", events)
	}
}

func TestNonInteractingBallEndsContacts(t *testing.T) {
	engine := New(game.DefaultTuning())
	p := newPlanet("a", 0, 0, 50, 100, 2.5)
	ball := newBall(0, 60)
	engine.Step(ball, []*game.GravitySource{p.Source}, []game.Planet{p})

	ball.Interacting = false
	ball.Velocity = game.NewVec2(0, 5)
	events := engine.Step(ball, []*game.GravitySource{p.Source}, []game.Planet{p})

	if len(events) != 1 || events[0].Begin {
		t.Fatalf("Expected end event once ball stops interacting, got %+v", events)
	}
	if ball.Velocity.Y != 5 {
		t.Errorf("Fields applied to non-interacting ball: velocity=%+v", ball.Velocity)
	}
	if len(engine.Contacts()) != 0 {
		t.Errorf("Contact set not cleared: %v", engine.Contacts())
	}
}

func TestRestingBallDoesNotBounce(t *testing.T) {
	engine := New(game.DefaultTuning())
	p := newPlanet("a", 0, 0, 50, 200, 2.5)
	p.Source.Exclusive = true
	ball := newBall(0, 60)

	for i := 0; i < 120; i++ {
		engine.Step(ball, []*game.GravitySource{p.Source}, []game.Planet{p})
	}

	if ball.Speed() >= game.DefaultTuning().CaptureSpeed {
		t.Errorf("Ball should settle on planet, speed=%.3f", ball.Speed())
	}
	if len(engine.Contacts()) != 1 {
		t.Errorf("Ball should stay in contact, contacts=%v", engine.Contacts())
	}
}
