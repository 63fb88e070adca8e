package game

import (
	"context"
	"math"
	"strings"
	"sync"
	"testing"
	"time"
)

// recordingRenderer keeps every animation it is asked to run.
type recordingRenderer struct {
	anims []Animation
}

func (r *recordingRenderer) Animate(a Animation) {
	r.anims = append(r.anims, a)
}

func (r *recordingRenderer) count(kind AnimationKind, targetPrefix string) int {
	n := 0
	for _, a := range r.anims {
		if a.Kind == kind && strings.HasPrefix(a.Target, targetPrefix) {
			n++
		}
	}
	return n
}

// stubFactory builds simple one-planet levels. Indices in fail return that
// error; when gate is set, indices in gated wait for it to close.
type stubFactory struct {
	mu    sync.Mutex
	fail  map[int]error
	gated map[int]bool
	gate  chan struct{}
	calls []int
}

func (f *stubFactory) Generate(ctx context.Context, size Vec2, index int) (*Level, error) {
	f.mu.Lock()
	f.calls = append(f.calls, index)
	err := f.fail[index]
	wait := f.gated[index]
	f.mu.Unlock()

	if wait {
		select {
		case <-f.gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err != nil {
		return nil, err
	}
	return testLevel(index, size), nil
}

// testLevel varies start and goal height with index so chaining moves in Y.
func testLevel(index int, size Vec2) *Level {
	l := &Level{
		Index: index,
		Size:  size,
		Start: Rect{Origin: NewVec2(40, 300+float64(index%5)*20), Size: NewVec2(60, 60)},
		Goal:  Circle{Center: NewVec2(900, 250+float64(index%7)*30), Radius: 24},
		Planets: []Planet{{
			Local: Circle{Center: NewVec2(500, 400), Radius: 50},
			Source: &GravitySource{
				ID:             PlanetSourceID(index, 0),
				Radius:         150,
				Strength:       2.5,
				DesignStrength: 2.5,
			},
		}},
		GoalSource: &GravitySource{
			ID:             GoalSourceID(index),
			Radius:         144,
			Strength:       1.5,
			DesignStrength: 1.5,
		},
	}
	l.Place(Vec2{})
	return l
}

// stillEngine never moves the ball and replays scripted contact batches.
type stillEngine struct {
	script [][]ContactEvent
}

func (e *stillEngine) Step(ball *Ball, sources []*GravitySource, planets []Planet) []ContactEvent {
	if len(e.script) == 0 {
		return nil
	}
	events := e.script[0]
	e.script = e.script[1:]
	return events
}

type recordingPersister struct {
	mu    sync.Mutex
	saved []Snapshot
}

func (p *recordingPersister) RequestSave(s Snapshot) {
	p.mu.Lock()
	p.saved = append(p.saved, s)
	p.mu.Unlock()
}

func (p *recordingPersister) last() (Snapshot, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.saved) == 0 {
		return Snapshot{}, false
	}
	return p.saved[len(p.saved)-1], true
}

// waitForNext polls the window until the in-flight level is spliced.
func waitForNext(t *testing.T, w *LevelWindow) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if err := w.Poll(); err != nil {
			t.Fatalf("Poll failed: %v", err)
		}
		if w.Next() != nil {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("Next level never arrived")
}

// pollUntilError polls the window until a generation result surfaces an error.
func pollUntilError(t *testing.T, w *LevelWindow) error {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if err := w.Poll(); err != nil {
			return err
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("Poll never returned an error")
	return nil
}

func assertContiguous(t *testing.T, levels []*Level) {
	t.Helper()
	for i := 0; i+1 < len(levels); i++ {
		goal := levels[i].GoalCenter()
		start := levels[i+1].StartCenter()
		if math.Abs(goal.X-start.X) > 1e-9 || math.Abs(goal.Y-start.Y) > 1e-9 {
			t.Errorf("Level %d goal %+v does not meet level %d start %+v",
				levels[i].Index, goal, levels[i+1].Index, start)
		}
	}
}

func newTestArbiter() (*Arbiter, *Scheduler) {
	sched := NewScheduler()
	return NewArbiter(DefaultTuning(), sched), sched
}
