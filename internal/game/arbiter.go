package game

import "time"

// ContactEvent is reported by the physics engine when the ball starts or stops
// touching a body that owns a gravity source.
type ContactEvent struct {
	Source SourceID
	Begin  bool
}

// Arbiter is the single source of truth for field exclusivity. It is the only
// writer of GravitySource.Exclusive and GravitySource.Enabled, so at most one
// source in the window can be exclusive at any instant.
type Arbiter struct {
	tuning Tuning
	sched  *Scheduler

	sources map[SourceID]*GravitySource
	planets map[SourceID]bool

	// contacts is kept in begin order so reconciliation is deterministic.
	contacts []SourceID

	exclusive SourceID
	claimed   bool // exclusivity came from Claim, not a planet capture

	captured       SourceID
	capturePending bool
	suppressed     bool

	ramp Slot
}

func NewArbiter(tuning Tuning, sched *Scheduler) *Arbiter {
	return &Arbiter{
		tuning:  tuning,
		sched:   sched,
		sources: make(map[SourceID]*GravitySource),
		planets: make(map[SourceID]bool),
	}
}

// Register makes a level's fields known to the arbiter. Fields start enabled
// and non-exclusive; goal fields start disabled.
func (a *Arbiter) Register(l *Level) {
	for _, p := range l.Planets {
		if p.Source == nil {
			continue
		}
		a.sources[p.Source.ID] = p.Source
		a.planets[p.Source.ID] = true
		p.Source.Exclusive = false
		p.Source.Enabled = true
	}
	if l.GoalSource != nil {
		a.sources[l.GoalSource.ID] = l.GoalSource
		l.GoalSource.Exclusive = false
		l.GoalSource.Enabled = false
	}
}

// Unregister drops a level's fields, releasing any state that pointed at them.
func (a *Arbiter) Unregister(l *Level) {
	for _, s := range l.Sources() {
		if a.exclusive == s.ID {
			a.clearExclusive()
		}
		if a.captured == s.ID {
			a.captured = ""
			a.capturePending = false
		}
		a.removeContact(s.ID)
		s.Exclusive = false
		delete(a.sources, s.ID)
		delete(a.planets, s.ID)
	}
}

func (a *Arbiter) ContactBegin(id SourceID) {
	if _, ok := a.sources[id]; !ok || a.inContact(id) {
		return
	}
	a.contacts = append(a.contacts, id)
}

// ContactEnd removes id from the contact set. When id was the captured planet
// exclusivity is dropped and re-capture waits until the ball is ready again.
func (a *Arbiter) ContactEnd(id SourceID) {
	a.removeContact(id)
	if a.exclusive == id && !a.claimed {
		a.clearExclusive()
		a.suppressed = true
	}
}

// Apply feeds a batch of engine contact events through ContactBegin/End.
func (a *Arbiter) Apply(events []ContactEvent) {
	for _, ev := range events {
		if ev.Begin {
			a.ContactBegin(ev.Source)
		} else {
			a.ContactEnd(ev.Source)
		}
	}
}

// MarkReady lifts capture suppression. Called whenever the ball becomes ready.
func (a *Arbiter) MarkReady() {
	a.suppressed = false
}

// Exclusive returns the current exclusive source, if any.
func (a *Arbiter) Exclusive() (SourceID, bool) {
	return a.exclusive, a.exclusive != ""
}

// CapturePending reports whether the next stroke should ramp a captured field.
func (a *Arbiter) CapturePending() bool {
	return a.capturePending
}

// InPlanetContact reports whether the ball touches any planet.
func (a *Arbiter) InPlanetContact() bool {
	for _, id := range a.contacts {
		if a.planets[id] {
			return true
		}
	}
	return false
}

// Reconcile derives exclusivity from the current contact set. It reports
// whether the ball was captured this tick.
func (a *Arbiter) Reconcile(ball *Ball) bool {
	if a.suppressed || !ball.Interacting || ball.Speed() >= a.tuning.CaptureSpeed {
		return false
	}
	if a.exclusive != "" && (a.claimed || a.inContact(a.exclusive)) {
		return false
	}
	for _, id := range a.contacts {
		if !a.planets[id] {
			continue
		}
		a.setExclusive(id, false)
		a.captured = id
		a.capturePending = true
		a.ramp.Finish()
		ball.Settle()
		return true
	}
	return false
}

// Claim makes id exclusive on behalf of a controller (the goal field). A claim
// always wins over a planet capture.
func (a *Arbiter) Claim(id SourceID) {
	if _, ok := a.sources[id]; !ok {
		return
	}
	if a.exclusive == id {
		a.claimed = true
		return
	}
	a.setExclusive(id, true)
}

// Release drops a claim made with Claim.
func (a *Arbiter) Release(id SourceID) {
	if a.exclusive == id && a.claimed {
		a.clearExclusive()
	}
}

// SetEnabled switches a field on or off.
func (a *Arbiter) SetEnabled(id SourceID, enabled bool) {
	if s, ok := a.sources[id]; ok {
		s.Enabled = enabled
	}
}

// StartRamp eases the captured field from a low seed back to its design
// strength and clears the capture. It is a no-op without a pending capture.
func (a *Arbiter) StartRamp() {
	if !a.capturePending {
		return
	}
	a.capturePending = false
	src, ok := a.sources[a.captured]
	a.captured = ""
	if !ok {
		return
	}
	design := src.DesignStrength
	seed := design / a.tuning.RampSeedDivisor
	src.Strength = seed
	a.ramp.Set(a.sched.Tween(seconds(a.tuning.RampDuration), func(p float64) {
		src.Strength = lerp(seed, design, p)
	}))
}

// RampPending reports whether a field ramp is still running.
func (a *Arbiter) RampPending() bool {
	return a.ramp.Pending()
}

// Reset forgets contacts and captures, used when the ball is teleported.
func (a *Arbiter) Reset() {
	a.contacts = a.contacts[:0]
	if !a.claimed {
		a.clearExclusive()
	}
	a.captured = ""
	a.capturePending = false
	a.suppressed = false
}

// ExclusiveCount counts exclusive flags over every registered source.
func (a *Arbiter) ExclusiveCount() int {
	n := 0
	for _, s := range a.sources {
		if s.Exclusive {
			n++
		}
	}
	return n
}

func (a *Arbiter) setExclusive(id SourceID, claimed bool) {
	a.clearExclusive()
	a.exclusive = id
	a.claimed = claimed
	a.sources[id].Exclusive = true
}

func (a *Arbiter) clearExclusive() {
	if s, ok := a.sources[a.exclusive]; ok {
		s.Exclusive = false
	}
	a.exclusive = ""
	a.claimed = false
}

func (a *Arbiter) inContact(id SourceID) bool {
	for _, c := range a.contacts {
		if c == id {
			return true
		}
	}
	return false
}

func (a *Arbiter) removeContact(id SourceID) {
	for i, c := range a.contacts {
		if c == id {
			a.contacts = append(a.contacts[:i], a.contacts[i+1:]...)
			return
		}
	}
}

// rampDuration is exposed for tests that step the scheduler past a ramp.
func (a *Arbiter) rampDuration() time.Duration {
	return seconds(a.tuning.RampDuration)
}
