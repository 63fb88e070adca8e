package game

import "time"

// Timer is a one-shot action or a tween driven by simulation time. Timers only
// advance inside Scheduler.Advance, which runs on the tick goroutine.
type Timer struct {
	start    time.Duration
	duration time.Duration
	fire     func()
	step     func(progress float64)
	done     bool
}

// Stop cancels the timer without running it. It reports whether the timer was
// still pending.
func (t *Timer) Stop() bool {
	if t == nil || t.done {
		return false
	}
	t.done = true
	return true
}

// Finish runs the timer to completion immediately: a one-shot fires, a tween
// steps to progress 1.
func (t *Timer) Finish() {
	if t == nil || t.done {
		return
	}
	t.done = true
	if t.step != nil {
		t.step(1)
	}
	if t.fire != nil {
		t.fire()
	}
}

// Pending reports whether the timer has neither fired nor been stopped.
func (t *Timer) Pending() bool {
	return t != nil && !t.done
}

// Scheduler owns all timers of one scene.
type Scheduler struct {
	now    time.Duration
	timers []*Timer
}

func NewScheduler() *Scheduler {
	return &Scheduler{}
}

// Now returns elapsed simulation time.
func (s *Scheduler) Now() time.Duration {
	return s.now
}

// After schedules fn to run once d of simulation time has elapsed.
func (s *Scheduler) After(d time.Duration, fn func()) *Timer {
	t := &Timer{start: s.now, duration: d, fire: fn}
	s.timers = append(s.timers, t)
	return t
}

// Tween calls step with progress in (0, 1] on every advance until d has
// elapsed. step(1) is always the final call.
func (s *Scheduler) Tween(d time.Duration, step func(progress float64)) *Timer {
	t := &Timer{start: s.now, duration: d, step: step}
	s.timers = append(s.timers, t)
	return t
}

// Advance moves simulation time forward and runs everything that became due,
// in scheduling order. Timers scheduled by callbacks start on the next advance.
func (s *Scheduler) Advance(dt time.Duration) {
	s.now += dt
	due := s.timers
	s.timers = nil
	for _, t := range due {
		if t.done {
			continue
		}
		elapsed := s.now - t.start
		if t.step != nil {
			progress := 1.0
			if t.duration > 0 {
				progress = clamp(float64(elapsed)/float64(t.duration), 0, 1)
			}
			if progress >= 1 {
				t.done = true
			}
			t.step(progress)
			continue
		}
		if elapsed >= t.duration {
			t.done = true
			t.fire()
		}
	}
	kept := s.timers
	s.timers = make([]*Timer, 0, len(due)+len(kept))
	for _, t := range due {
		if !t.done {
			s.timers = append(s.timers, t)
		}
	}
	s.timers = append(s.timers, kept...)
}

// Len returns the number of pending timers.
func (s *Scheduler) Len() int {
	n := 0
	for _, t := range s.timers {
		if !t.done {
			n++
		}
	}
	return n
}

// Slot holds the single pending timer of one concern. Setting a new timer
// stops the previous one.
type Slot struct {
	t *Timer
}

func (sl *Slot) Set(t *Timer) {
	sl.t.Stop()
	sl.t = t
}

func (sl *Slot) Stop() bool {
	stopped := sl.t.Stop()
	sl.t = nil
	return stopped
}

// Finish completes the pending timer immediately, if any.
func (sl *Slot) Finish() {
	t := sl.t
	sl.t = nil
	t.Finish()
}

func (sl *Slot) Pending() bool {
	return sl.t.Pending()
}
