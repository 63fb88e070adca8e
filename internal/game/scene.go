package game

import (
	"context"
	"fmt"
	"math"
	"time"
)

// Engine is the rigid-body collaborator. Step integrates one tick for the ball
// against the given fields and solid planets and reports contact changes.
type Engine interface {
	Step(ball *Ball, sources []*GravitySource, planets []Planet) []ContactEvent
}

// HoleResult is reported when a hole completes.
type HoleResult struct {
	Hole     int           `json:"hole"`
	Strokes  int           `json:"strokes"`
	Duration time.Duration `json:"duration"`
	Stats    GameStats     `json:"stats"`
}

// SceneConfig wires a Scene to its collaborators. Renderer and Persister may
// be nil.
type SceneConfig struct {
	Tuning    Tuning
	SessionID string
	Seed      uint64
	Factory   LevelFactory
	Engine    Engine
	Renderer  Renderer
	Persister Persister
}

// Scene runs one gravity-golf session. Every method must be called from the
// same goroutine: the tick goroutine.
type Scene struct {
	tuning    Tuning
	sessionID string
	seed      uint64
	engine    Engine
	renderer  Renderer

	sched   *Scheduler
	Ball    *Ball
	Stats   GameStats
	Arbiter *Arbiter
	Window  *LevelWindow
	Depth   *DepthLayers
	Camera  *Camera
	Stroke  *Stroke
	Goal    *GoalProximity

	tick      int
	holeStart int
	status    GameStatus
	err       error

	pathLast *Vec2
	pathIDs  []int
	pathNext int

	OnHoleComplete func(HoleResult)
	OnStroke       func(StrokeResult)
	OnRecovery     func(GameStats)
}

func NewScene(cfg SceneConfig) (*Scene, error) {
	if err := cfg.Tuning.Validate(); err != nil {
		return nil, err
	}
	if cfg.Factory == nil || cfg.Engine == nil {
		return nil, fmt.Errorf("%w: scene needs a level factory and an engine", ErrConfiguration)
	}
	renderer := cfg.Renderer
	if renderer == nil {
		renderer = nopRenderer{}
	}

	s := &Scene{
		tuning:    cfg.Tuning,
		sessionID: cfg.SessionID,
		seed:      cfg.Seed,
		engine:    cfg.Engine,
		renderer:  renderer,
		sched:     NewScheduler(),
		Ball:      NewBall(cfg.Tuning.BallRadius),
		Stats:     NewGameStats(),
		status:    StatusWaiting,
	}
	s.Arbiter = NewArbiter(s.tuning, s.sched)
	s.Window = NewLevelWindow(s.tuning, cfg.Factory, s.Arbiter, renderer, cfg.Persister)
	s.Depth = NewDepthLayers(s.tuning, renderer, cfg.Seed)
	s.Camera = NewCamera(s.tuning, s.sched, renderer, s.recover)
	s.Stroke = NewStroke(s.tuning, s.sched, renderer, s.Ball, s.Arbiter, &s.Stats, s.ballReady)
	s.Goal = NewGoalProximity(s.tuning, s.Arbiter, renderer)
	return s, nil
}

// Start builds the first two holes and tees up the ball.
func (s *Scene) Start(ctx context.Context) error {
	if err := s.Window.Init(ctx, s.Stats.HoleNumber); err != nil {
		return s.halt(err)
	}
	s.teeUp(true)
	return nil
}

// Resume rebuilds the scene from a persisted snapshot.
func (s *Scene) Resume(ctx context.Context, snap Snapshot) error {
	s.Stats = snap.Stats
	if err := s.Window.Restore(ctx, snap.Ghost, snap.Levels); err != nil {
		return s.halt(err)
	}
	s.teeUp(true)
	return nil
}

// Tick advances the simulation by one step. A returned error is fatal and the
// scene stays halted.
func (s *Scene) Tick() error {
	if s.status == StatusHalted {
		return s.err
	}
	s.tick++
	current := s.Window.Current()

	events := s.engine.Step(s.Ball, s.Window.Sources(), s.Window.Planets())

	s.Camera.Update(s.Ball.Position, current.Bounds())

	s.Arbiter.Apply(events)
	if s.Arbiter.Reconcile(s.Ball) {
		s.resetPath()
	}

	if s.Ball.Interacting && s.Ball.Damping != 1 {
		s.Ball.Velocity = s.Ball.Velocity.Times(s.Ball.Damping)
	}

	reading := s.Goal.Update(s.Ball, current)
	switch {
	case reading.Band == BandNear || reading.Band == BandInner:
		s.Ball.Damping = reading.Damping
	case s.Arbiter.InPlanetContact():
		s.Ball.Damping = s.tuning.PlanetDamping
	default:
		s.Ball.Damping = 1
	}

	if reading.Complete {
		if err := s.completeHole(); err != nil {
			return s.halt(err)
		}
	} else {
		s.tracePath()
	}

	s.sched.Advance(s.tuning.TickRate)

	if err := s.Window.Poll(); err != nil {
		return s.halt(err)
	}
	return nil
}

func (s *Scene) BeginAim(p Vec2) {
	if s.status != StatusInProgress {
		return
	}
	s.Stroke.BeginAim(p)
}

func (s *Scene) UpdateAim(p Vec2) {
	if s.status != StatusInProgress {
		return
	}
	s.Stroke.UpdateAim(p)
}

// ReleaseAim fires a stroke if the ball is ready.
func (s *Scene) ReleaseAim(p Vec2) (StrokeResult, bool) {
	if s.status != StatusInProgress {
		return StrokeResult{}, false
	}
	res, ok := s.Stroke.ReleaseAim(p)
	if !ok {
		return res, false
	}
	s.resetPath()
	if s.OnStroke != nil {
		s.OnStroke(res)
	}
	return res, true
}

// Snapshot describes the scene for persistence.
func (s *Scene) Snapshot() Snapshot {
	snap := Snapshot{SessionID: s.sessionID, Seed: s.seed, Stats: s.Stats}
	if g := s.Window.Ghost(); g != nil {
		snap.Ghost = &LevelRef{Index: g.Index, Offset: g.Offset}
	}
	for _, l := range []*Level{s.Window.Current(), s.Window.Next()} {
		if l != nil {
			snap.Levels = append(snap.Levels, LevelRef{Index: l.Index, Offset: l.Offset})
		}
	}
	return snap
}

func (s *Scene) Status() GameStatus {
	return s.status
}

// Err returns the fatal error that halted the scene.
func (s *Scene) Err() error {
	return s.err
}

// TickCount returns the number of ticks run.
func (s *Scene) TickCount() int {
	return s.tick
}

// Scheduler exposes the scene clock.
func (s *Scene) Scheduler() *Scheduler {
	return s.sched
}

// Close abandons in-flight generation.
func (s *Scene) Close() {
	s.Window.Close()
}

func (s *Scene) teeUp(instant bool) {
	current := s.Window.Current()
	s.Ball.PlaceAt(current.StartCenter())
	s.Arbiter.MarkReady()
	s.Camera.MoveTo(current.CameraCenter(), 0, instant)
	s.Depth.Initialize(current.Offset)
	s.holeStart = s.tick
	s.status = StatusInProgress
	s.renderer.Animate(Animation{Target: targetBall, Kind: AnimMove, To: s.Ball.Position})
	s.renderer.Animate(Animation{Target: targetScore, Kind: AnimText, Text: s.Stats.ScoreText()})
}

func (s *Scene) completeHole() error {
	done := s.Window.Current()
	result := HoleResult{
		Hole:     s.Stats.HoleNumber,
		Strokes:  s.Stats.HoleStrokes,
		Duration: time.Duration(s.tick-s.holeStart) * s.tuning.TickRate,
	}

	s.Stats.CompleteHole()
	s.Camera.CancelRecovery()
	s.Stroke.Cancel()
	s.Arbiter.Reset()

	snap := Snapshot{SessionID: s.sessionID, Seed: s.seed, Stats: s.Stats, HoleTicks: s.tick - s.holeStart}
	if err := s.Window.Advance(snap); err != nil {
		return err
	}
	s.animateCompletedGoal(done)

	current := s.Window.Current()
	transition := seconds(s.tuning.TransitionDuration)
	s.Goal.Reset()
	s.Ball.PlaceAt(current.StartCenter())
	s.Arbiter.MarkReady()
	s.resetPath()

	offset := s.Camera.MoveTo(current.CameraCenter(), transition, false)
	s.Depth.Update(s.Camera.Position, offset, transition)

	s.renderer.Animate(Animation{Target: goalTarget(current.Index), Kind: AnimFade, Value: 1, Delay: transition - seconds(0.5), Duration: seconds(0.75), Curve: CurveEaseInOut})
	s.renderer.Animate(Animation{Target: targetBall, Kind: AnimMove, To: s.Ball.Position})
	s.renderer.Animate(Animation{Target: targetScore, Kind: AnimText, Text: s.Stats.ScoreText()})

	s.holeStart = s.tick
	result.Stats = s.Stats
	if s.OnHoleComplete != nil {
		s.OnHoleComplete(result)
	}
	return nil
}

// animateCompletedGoal spins and shrinks the finished goal while it fades to a
// dim white ring.
func (s *Scene) animateCompletedGoal(l *Level) {
	transition := seconds(s.tuning.TransitionDuration)
	target := goalTarget(l.Index)

	// At least two and a half turns, ending on a quarter-turn boundary.
	turns := -math.Pi * 5
	quarter := -math.Pi / 2
	final := turns + (quarter - math.Mod(turns, quarter))

	s.renderer.Animate(Animation{Target: target, Kind: AnimScale, Value: 0.5, Duration: transition, Curve: CurveEaseInOut})
	s.renderer.Animate(Animation{Target: target, Kind: AnimRotate, Value: final, Duration: transition, Curve: CurveEaseInOut})
	s.renderer.Animate(Animation{Target: target, Kind: AnimTint, Value: 0.5, Duration: transition, Curve: CurveEaseInOut})
	s.renderer.Animate(Animation{Target: goalLabelTarget(l.Index), Kind: AnimFade, Value: 0, Duration: transition})
}

// recover runs when the camera's off-screen timer fires.
func (s *Scene) recover() {
	s.Stroke.Cancel()
	s.Arbiter.Reset()
	s.Ball.PlaceAt(s.Ball.Rest)
	s.Arbiter.MarkReady()
	s.Stats.Recoveries++
	s.resetPath()
	s.renderer.Animate(Animation{Target: targetBall, Kind: AnimMove, To: s.Ball.Position})
	if s.OnRecovery != nil {
		s.OnRecovery(s.Stats)
	}
}

func (s *Scene) ballReady() {
	s.Arbiter.MarkReady()
}

func (s *Scene) tracePath() {
	if !s.Ball.Interacting || s.Ball.Speed() <= s.tuning.RestSpeed {
		return
	}
	pos := s.Ball.Position
	var point Vec2
	if s.pathLast == nil {
		point = pos
	} else {
		last := *s.pathLast
		if pos.DistanceTo(last) <= s.tuning.PathSpacing {
			return
		}
		point = last.Plus(pos.Minus(last).Normalize().Times(s.tuning.PathSpacing))
	}
	s.pathLast = &point
	s.pathNext++
	s.pathIDs = append(s.pathIDs, s.pathNext)
	s.renderer.Animate(Animation{Target: pathTarget(s.pathNext), Kind: AnimSpawn, To: point, Value: 0.5})
}

func (s *Scene) resetPath() {
	for i, id := range s.pathIDs {
		s.renderer.Animate(Animation{
			Target:   pathTarget(id),
			Kind:     AnimRemove,
			Delay:    time.Duration(i) * 20 * time.Millisecond,
			Duration: 500 * time.Millisecond,
		})
	}
	s.pathIDs = s.pathIDs[:0]
	s.pathLast = nil
}

func (s *Scene) halt(err error) error {
	s.status = StatusHalted
	s.err = err
	s.Window.Close()
	return err
}

// Stop marks the scene as stopped without error.
func (s *Scene) Stop() {
	if s.status != StatusHalted {
		s.status = StatusStopped
	}
	s.Window.Close()
}
