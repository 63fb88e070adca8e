package game

import "math"

// StrokeResult describes an accepted stroke.
type StrokeResult struct {
	Impulse   Vec2    `json:"impulse"`
	Magnitude float64 `json:"magnitude"`
	Stroke    int     `json:"stroke"`
}

// Stroke turns resolved aim points into impulses. The player pulls back from
// an anchor; the ball is launched the opposite way.
type Stroke struct {
	tuning   Tuning
	sched    *Scheduler
	renderer Renderer

	ball    *Ball
	arbiter *Arbiter
	stats   *GameStats

	anchor Vec2
	aiming bool

	grace   Slot
	onReady func()
}

// NewStroke wires a stroke controller. onReady runs when the grace delay after
// a stroke ends and the ball can be hit again.
func NewStroke(tuning Tuning, sched *Scheduler, renderer Renderer, ball *Ball, arbiter *Arbiter, stats *GameStats, onReady func()) *Stroke {
	if renderer == nil {
		renderer = nopRenderer{}
	}
	return &Stroke{
		tuning:   tuning,
		sched:    sched,
		renderer: renderer,
		ball:     ball,
		arbiter:  arbiter,
		stats:    stats,
		onReady:  onReady,
	}
}

func (s *Stroke) BeginAim(p Vec2) {
	if !p.IsFinite() {
		return
	}
	s.anchor = p
	s.aiming = true
	s.renderer.Animate(Animation{Target: targetAim, Kind: AnimMove, To: p})
	s.renderer.Animate(Animation{Target: targetAim, Kind: AnimScale, Value: 0})
	s.renderer.Animate(Animation{Target: targetAim, Kind: AnimFade, Value: 1, Duration: seconds(0.15)})
	s.renderer.Animate(Animation{Target: targetAim, Kind: AnimTint, Value: s.readyTint()})
}

// UpdateAim returns the visual aim length, which is clamped, and the launch
// bearing in radians.
func (s *Stroke) UpdateAim(pull Vec2) (length, angle float64) {
	if !s.aiming {
		return 0, 0
	}
	delta := s.anchor.Minus(pull)
	if !delta.IsFinite() {
		return 0, 0
	}
	length = math.Min(delta.Magnitude(), s.tuning.AimVisualMax)
	angle = delta.Angle()
	s.renderer.Animate(Animation{Target: targetAim, Kind: AnimRotate, Value: angle})
	s.renderer.Animate(Animation{Target: targetAim, Kind: AnimScale, Value: length})
	return length, angle
}

// ReleaseAim fires the stroke. It is a silent no-op when the ball is not
// ready, no aim was started, or the pull has zero or non-finite length.
func (s *Stroke) ReleaseAim(pull Vec2) (StrokeResult, bool) {
	wasAiming := s.aiming
	s.aiming = false
	s.renderer.Animate(Animation{Target: targetAim, Kind: AnimFade, Value: 0, Duration: seconds(0.15)})

	if !wasAiming || !s.ball.Ready {
		return StrokeResult{}, false
	}
	delta := s.anchor.Minus(pull)
	pulled := delta.Magnitude()
	if pulled == 0 || math.IsInf(pulled, 0) || math.IsNaN(pulled) {
		return StrokeResult{}, false
	}

	mag := clamp(pulled/s.tuning.ImpulseDivisor, s.tuning.MinImpulse, s.tuning.MaxImpulse)
	impulse := delta.Normalize().Times(mag)

	s.arbiter.StartRamp()
	s.ball.ApplyImpulse(impulse, s.tuning.ImpulseScale)
	s.ball.Ready = false
	s.ball.Interacting = false
	s.stats.HoleStrokes++

	s.grace.Set(s.sched.After(seconds(s.tuning.StrokeGraceDelay), s.endGrace))
	s.renderer.Animate(Animation{Target: targetScore, Kind: AnimText, Text: s.stats.ScoreText()})

	return StrokeResult{Impulse: impulse, Magnitude: mag, Stroke: s.stats.HoleStrokes}, true
}

// Aiming reports whether an aim gesture is in progress.
func (s *Stroke) Aiming() bool {
	return s.aiming
}

// Cancel drops the grace timer, used when the ball is reset.
func (s *Stroke) Cancel() {
	s.grace.Stop()
}

func (s *Stroke) endGrace() {
	s.ball.Ready = true
	s.ball.Interacting = true
	if s.onReady != nil {
		s.onReady()
	}
}

func (s *Stroke) readyTint() float64 {
	if s.ball.Ready {
		return 1
	}
	return 0.5
}
