package game

import (
	"math"
	"time"
)

// Camera zooms out to keep the ball in view and, when even the widest zoom
// cannot contain it, schedules a one-shot recovery of the ball.
type Camera struct {
	tuning   Tuning
	sched    *Scheduler
	renderer Renderer

	Position Vec2
	Scale    float64

	recovery  Slot
	onRecover func()
}

// NewCamera returns a camera at scale 1. onRecover runs when a pending
// recovery fires.
func NewCamera(tuning Tuning, sched *Scheduler, renderer Renderer, onRecover func()) *Camera {
	if renderer == nil {
		renderer = nopRenderer{}
	}
	return &Camera{
		tuning:    tuning,
		sched:     sched,
		renderer:  renderer,
		Scale:     1,
		onRecover: onRecover,
	}
}

// RequiredScale is the zoom needed to contain ball inside the padded safe
// rectangle of bounds. Each axis grows linearly with overshoot; the larger
// axis wins.
func (c *Camera) RequiredScale(ball Vec2, bounds Rect) float64 {
	w, h := c.tuning.ViewportWidth, c.tuning.ViewportHeight
	safe := bounds.Inset(w*c.tuning.CameraSafeFraction, h*c.tuning.CameraSafeFraction)
	lo, hi := safe.Origin, safe.Max()

	scale := 1.0
	switch {
	case ball.X > hi.X:
		scale = math.Max(scale, 1+(ball.X-hi.X)/(w/2))
	case ball.X < lo.X:
		scale = math.Max(scale, 1+(lo.X-ball.X)/(w/2))
	}
	switch {
	case ball.Y > hi.Y:
		scale = math.Max(scale, 1+(ball.Y-hi.Y)/(h/2))
	case ball.Y < lo.Y:
		scale = math.Max(scale, 1+(lo.Y-ball.Y)/(h/2))
	}
	return scale
}

// Update applies the containment zoom for this tick and starts or cancels
// the off-screen recovery. It returns the displayed scale.
func (c *Camera) Update(ball Vec2, bounds Rect) float64 {
	required := c.RequiredScale(ball, bounds)
	shown := math.Min(required, c.tuning.CameraMaxScale)
	if shown != c.Scale {
		c.Scale = shown
		c.renderer.Animate(Animation{
			Target:   targetCamera,
			Kind:     AnimScale,
			Value:    shown,
			Duration: seconds(c.tuning.CameraScaleDuration),
			Curve:    CurveLinear,
		})
	}

	switch {
	case required > c.tuning.CameraMaxScale && !c.recovery.Pending():
		c.recovery.Set(c.sched.After(seconds(c.tuning.RecoveryDelay), c.fireRecovery))
	case required <= c.tuning.CameraMaxScale && c.recovery.Pending():
		c.recovery.Stop()
	}
	return shown
}

// MoveTo pans the camera and returns the displacement, which drives the
// parallax layers. instant skips the animation (first level, restore).
func (c *Camera) MoveTo(pos Vec2, duration time.Duration, instant bool) Vec2 {
	offset := pos.Minus(c.Position)
	c.Position = pos
	if instant {
		duration = 0
	}
	c.renderer.Animate(Animation{
		Target:   targetCamera,
		Kind:     AnimMove,
		To:       pos,
		Duration: duration,
		Curve:    CurveEaseInOut,
	})
	return offset
}

// RecoveryPending reports whether an off-screen recovery is scheduled.
func (c *Camera) RecoveryPending() bool {
	return c.recovery.Pending()
}

// CancelRecovery drops a pending recovery, for example when the hole ends.
func (c *Camera) CancelRecovery() {
	c.recovery.Stop()
}

func (c *Camera) fireRecovery() {
	if c.onRecover != nil {
		c.onRecover()
	}
}
